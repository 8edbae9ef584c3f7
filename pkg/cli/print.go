package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/tprlog/tprlog/pkg/replay"
	"github.com/tprlog/tprlog/pkg/store"
)

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func printSet(set *store.ReplaySet) error {
	if jsonOutput {
		return printJSON(set)
	}

	fmt.Printf("Product:  %s\n", set.Product)
	fmt.Printf("Source:   %s\n", set.Source)
	fmt.Printf("Created:  %s\n", set.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Lines:    %d\n", set.LineCount)
	fmt.Printf("Requests: %d\n", set.RequestCount)

	covered, wholeFiles := replay.TotalCoveredBytes(set.Requests)
	fmt.Printf("Covered:  %d bytes in ranges, %d whole-file requests\n\n", covered, wholeFiles)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROOT\tFOLDER\tKEY\tINDEX\tRANGE")
	for _, r := range set.Requests {
		rangeCol := "whole file"
		if !r.WholeFile {
			rangeCol = fmt.Sprintf("%d-%d", *r.ByteLower, *r.ByteUpper)
		}
		indexCol := ""
		if r.Index {
			indexCol = "index"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.ProductRootURI, r.RootFolder, r.ContentKey, indexCol, rangeCol)
	}
	return w.Flush()
}
