package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/legalscan/internal/config"
	"github.com/dgallion1/legalscan/internal/sections"
)

var sectionsJSON bool

var sectionsCmd = &cobra.Command{
	Use:   "sections <file.pdf>",
	Short: "Print the sections located in a PDF",
	Long:  `Runs only the keyword locator. No model calls are made.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSections,
}

func init() {
	sectionsCmd.Flags().BoolVar(&sectionsJSON, "json", false, "output sections as JSON")
	rootCmd.AddCommand(sectionsCmd)
}

func runSections(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	locator, err := loadLocator(cfg)
	if err != nil {
		return err
	}
	tree, err := readDocument(args[0], cfg)
	if err != nil {
		return err
	}
	found := locator.Locate(tree.Text())
	out := cmd.OutOrStdout()

	if sectionsJSON {
		if found == nil {
			found = sections.Sections{}
		}
		data, err := json.MarshalIndent(found, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal sections: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(found) == 0 {
		fmt.Fprintln(out, "No sections found.")
		return nil
	}
	for _, sec := range found {
		fmt.Fprintf(out, "== %s (%q at %d) ==\n", sec.Title, sec.Keyword, sec.Start)
		fmt.Fprintln(out, sec.Text)
		fmt.Fprintln(out)
	}
	return nil
}
