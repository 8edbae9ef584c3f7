package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tprlog/tprlog/pkg/archive"
	"github.com/tprlog/tprlog/pkg/config"
	"github.com/tprlog/tprlog/pkg/logparse"
	"github.com/tprlog/tprlog/pkg/replay"
	"github.com/tprlog/tprlog/pkg/store"
)

var extractCmd = &cobra.Command{
	Use:   "extract <product>",
	Short: "Extract a replay list from the newest log artifact for a product",
	Long: `extract locates the most recent log artifact for a product under the
configured log root, parses it, coalesces the requests, and persists the
resulting replay list in the data directory.

If the newest artifact is itself a previously extracted replay list
(.json), it is loaded directly instead of being re-parsed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(args[0])
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(product string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.LogRoot == "" {
		return fmt.Errorf("no log root configured: set --log-root, %s, or logRoot in the config file", config.EnvLogRoot)
	}
	logger := newLogger(cfg)

	artifact, err := archive.LocateNewest(cfg.LogRoot, product)
	if err != nil {
		return err
	}
	logger.Debug("located log artifact", "product", product, "path", artifact.Path)

	if artifact.Kind == archive.KindCached {
		set, err := store.LoadSetFile(artifact.Path)
		if err != nil {
			return err
		}
		logger.Info("loaded cached replay set", "product", product, "requests", set.RequestCount)
		return printSet(set)
	}

	lines, err := archive.ReadLines(artifact.Path)
	if err != nil {
		return err
	}

	raw, err := logparse.New(logger).Parse(lines)
	if err != nil {
		return fmt.Errorf("product %q: malformed capture in %s: %w", product, artifact.Path, err)
	}
	requests := replay.Coalesce(raw)

	set := store.NewReplaySet(product, filepath.Base(artifact.Path), len(lines), requests)

	st, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		return err
	}
	if err := st.Save(product, set); err != nil {
		return err
	}

	logger.Info("extracted replay set",
		"product", product,
		"source", set.Source,
		"lines", set.LineCount,
		"raw", len(raw),
		"coalesced", set.RequestCount)
	return printSet(set)
}
