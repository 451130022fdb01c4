package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fieldserve/nameplate-cli/internal/engine"
)

var scanJSON bool

var scanCmd = &cobra.Command{
	Use:   "scan <image>",
	Short: "Recognize one nameplate photo against the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		image, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read image %s", args[0])
		}

		result, err := env.recognize(ctx, image)
		if err != nil {
			return err
		}

		if scanJSON {
			return json.NewEncoder(os.Stdout).Encode(result)
		}
		printResult(result)
		return nil
	},
}

func printResult(result *engine.RankedResult) {
	if result.Empty() {
		fmt.Println("no model recognized")
		if result.Diagnostic != "" {
			fmt.Printf("diagnostic: %s\n", result.Diagnostic)
		}
		return
	}

	fmt.Printf("source: %s\n", result.Source)
	for i, c := range result.Candidates {
		line := fmt.Sprintf("%2d. [%s/%s] %s", i+1, c.Tier, c.Kind, c.NormalizedCode)
		if c.Entry != nil {
			line += fmt.Sprintf("  %s %s (%s)", c.Entry.Brand, c.Entry.DisplayName, c.Entry.DeviceType)
		}
		if c.SimilarityPercent > 0 {
			line += fmt.Sprintf("  %d%%", c.SimilarityPercent)
		}
		fmt.Println(line)
	}
}

func init() {
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "print the ranked result as JSON")
	rootCmd.AddCommand(scanCmd)
}
