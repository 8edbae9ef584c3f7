package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tprlog/tprlog/pkg/replay"
	"github.com/tprlog/tprlog/pkg/store"
)

var diffCmd = &cobra.Command{
	Use:   "diff <a> <b>",
	Short: "Diff two replay lists by key and covered bytes",
	Long: `diff compares two replay lists and reports objects requested on one side
only, and objects whose byte coverage differs. Each argument is either a
product with a cached replay set, or a path to a replay set file (.json).

Exits non-zero when the lists differ.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDiff(args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

func runDiff(refA, refB string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		return err
	}

	setA, err := loadSetRef(st, refA)
	if err != nil {
		return err
	}
	setB, err := loadSetRef(st, refB)
	if err != nil {
		return err
	}

	d := replay.Compare(setA.Requests, setB.Requests)
	if jsonOutput {
		if err := printJSON(d); err != nil {
			return err
		}
	} else {
		printDiff(refA, refB, d)
	}

	if !d.Empty() {
		return fmt.Errorf("replay lists differ: %d only in %s, %d only in %s, %d changed",
			len(d.OnlyA), refA, len(d.OnlyB), refB, len(d.Changed))
	}
	return nil
}

// loadSetRef resolves a diff argument: a .json path loads that file, any
// other value is a product key in the store.
func loadSetRef(st *store.FileStore, ref string) (*store.ReplaySet, error) {
	if strings.HasSuffix(ref, ".json") {
		return store.LoadSetFile(ref)
	}
	set, ok, err := st.Load(ref)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no cached replay set for product %q (run: tprlog extract %s)", ref, ref)
	}
	return set, nil
}

func printDiff(refA, refB string, d replay.Diff) {
	if d.Empty() {
		fmt.Printf("Replay lists are coverage-equivalent (%d objects).\n", d.Common)
		return
	}
	for _, key := range d.OnlyA {
		fmt.Printf("- only in %s: %s\n", refA, formatKey(key))
	}
	for _, key := range d.OnlyB {
		fmt.Printf("+ only in %s: %s\n", refB, formatKey(key))
	}
	for _, delta := range d.Changed {
		fmt.Printf("~ %s: %s vs %s\n", formatKey(delta.Key),
			formatCoverage(delta.BytesA, delta.WholeA),
			formatCoverage(delta.BytesB, delta.WholeB))
	}
	fmt.Printf("%d objects identical.\n", d.Common)
}

func formatKey(key replay.Key) string {
	s := fmt.Sprintf("%s/%s/%s", key.ProductRootURI, key.RootFolder, key.ContentKey)
	if key.Index {
		s += " (index)"
	}
	return s
}

func formatCoverage(bytes uint64, whole bool) string {
	if whole {
		return "whole file"
	}
	return fmt.Sprintf("%d bytes", bytes)
}
