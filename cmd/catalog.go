package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldserve/nameplate-cli/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and maintain the reference catalog",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the configured catalog and check its invariants",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.LoadFile(cfg.Catalog.Path)
		if err != nil {
			return err
		}
		fmt.Printf("ok: %d entries, %d patterns\n", cat.Len(), len(cat.Patterns()))
		return nil
	},
}

var catalogImportOut string

var catalogImportCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Convert a vendor spreadsheet into a yaml catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := catalog.ImportXLSX(args[0])
		if err != nil {
			return err
		}
		if err := catalog.WriteFile(catalogImportOut, entries, nil); err != nil {
			return err
		}
		fmt.Printf("imported %d entries to %s\n", len(entries), catalogImportOut)
		return nil
	},
}

func init() {
	catalogImportCmd.Flags().StringVarP(&catalogImportOut, "out", "o", "catalog.yaml", "output yaml path")
	catalogCmd.AddCommand(catalogValidateCmd, catalogImportCmd)
	rootCmd.AddCommand(catalogCmd)
}
