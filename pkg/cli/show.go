package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tprlog/tprlog/pkg/store"
)

var showCmd = &cobra.Command{
	Use:   "show [product]",
	Short: "Show a cached replay list, or list cached products",
	Long: `show prints the replay list previously extracted for a product. With no
argument it lists every product that has a cached replay list in the data
directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runShowList()
		}
		return runShow(args[0])
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShowList() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		return err
	}
	keys, err := st.List()
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(keys)
	}
	if len(keys) == 0 {
		fmt.Println("No cached replay sets.")
		return nil
	}
	for _, k := range keys {
		fmt.Println(k)
	}
	return nil
}

func runShow(product string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		return err
	}
	set, ok, err := st.Load(product)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no cached replay set for product %q (run: tprlog extract %s)", product, product)
	}
	return printSet(set)
}
