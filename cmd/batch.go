package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// concurrencyLimit guards the configured limit: errgroup.SetLimit(0)
// never admits a goroutine, and negatives disable the limit. Both fall
// back to the config default.
func concurrencyLimit(n int) int {
	if n <= 0 {
		return 4
	}
	return n
}

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Recognize every nameplate photo in a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		entries, err := os.ReadDir(args[0])
		if err != nil {
			return eris.Wrapf(err, "read directory %s", args[0])
		}

		var paths []string
		for _, e := range entries {
			if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
				continue
			}
			paths = append(paths, filepath.Join(args[0], e.Name()))
		}
		if len(paths) == 0 {
			fmt.Println("no images found")
			return nil
		}

		var matched, empty, failed atomic.Int64

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrencyLimit(cfg.Batch.MaxConcurrentImages))
		for _, path := range paths {
			g.Go(func() error {
				image, err := os.ReadFile(path)
				if err != nil {
					zap.L().Error("read image failed", zap.String("path", path), zap.Error(err))
					failed.Add(1)
					return nil
				}

				result, err := env.recognize(gctx, image)
				if err != nil {
					// Cancellation ends the whole batch.
					return err
				}

				if result.Empty() {
					empty.Add(1)
					fmt.Printf("%s: no match\n", filepath.Base(path))
					return nil
				}

				matched.Add(1)
				top := result.Candidates[0]
				fmt.Printf("%s: %s [%s/%s] via %s\n",
					filepath.Base(path), top.NormalizedCode, top.Tier, top.Kind, result.Source)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		fmt.Printf("\n%d images: %d matched, %d unrecognized, %d unreadable\n",
			len(paths), matched.Load(), empty.Load(), failed.Load())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
}
