package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fieldserve/nameplate-cli/internal/store"
)

var (
	historyLimit  int
	historySource string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent scans from the history store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		s, err := openHistory(ctx)
		if err != nil {
			return err
		}
		if s == nil {
			return eris.New("history: no driver configured (set history.driver)")
		}
		defer s.Close() //nolint:errcheck

		scans, err := s.ListScans(ctx, store.Filter{Limit: historyLimit, Source: historySource})
		if err != nil {
			return err
		}

		for _, rec := range scans {
			outcome := "no match"
			if rec.TopCode != "" {
				outcome = fmt.Sprintf("%s [%s/%s] via %s", rec.TopCode, rec.Tier, rec.MatchKind, rec.Source)
			}
			fmt.Printf("%s  %s  %s  (%d candidates, %s)\n",
				rec.CreatedAt.Format("2006-01-02 15:04:05"), shortID(rec.ID), outcome, rec.Candidates, rec.Duration)
		}
		return nil
	},
}

// shortID abbreviates a scan id for the listing; ids written by other tools
// may be shorter than the uuid prefix.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "max scans to list")
	historyCmd.Flags().StringVar(&historySource, "source", "", "filter by winning source")
	rootCmd.AddCommand(historyCmd)
}
