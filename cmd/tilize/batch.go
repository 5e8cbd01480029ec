package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wbrown/tilize"
)

type batchOptions struct {
	outDir string
	format string
	jobs   int
}

func newBatchCmd(a *app) *cobra.Command {
	o := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "batch [flags] <input>...",
		Short: "Process several images with bounded concurrency",
		Long: `Process several images with bounded concurrency.

Each output is named after its input with the extension replaced by
--format and written to --out-dir. The first failure cancels the images
still in progress.

Examples:
  tilize batch --out-dir mosaics *.png
  tilize batch --jobs 4 --format ans frames/*.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBatch(cmd.Context(), o, args)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.outDir, "out-dir", "o", ".", "Directory for output files")
	f.StringVar(&o.format, "format", "png", "Output extension (png, jpg, gif, bmp, tif, ans)")
	f.IntVarP(&o.jobs, "jobs", "j", 2, "Images processed at once")
	return cmd
}

// batchOutputPath names the output for input inside dir.
func batchOutputPath(dir, input, format string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+"."+strings.TrimPrefix(format, "."))
}

func (a *app) runBatch(ctx context.Context, o *batchOptions, inputs []string) error {
	begin := time.Now()
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	eng, err := a.newEngine(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(o.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(o.jobs, 1))

	token := tilize.NewCancellationToken()
	release := token.CancelOnDone(gctx)
	defer release()

	var (
		mu        sync.Mutex
		written   atomic.Int32
		cancelled atomic.Int32
	)
	for _, in := range inputs {
		in := in
		g.Go(func() error {
			if token.Cancelled() {
				cancelled.Add(1)
				return nil
			}
			buf, err := tilize.LoadImageFile(in)
			if err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			res, err := eng.Process(buf, token)
			if err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			switch res.Status {
			case tilize.StatusCancelled:
				cancelled.Add(1)
				return nil
			case tilize.StatusFailed:
				return fmt.Errorf("%s: %w", in, res.Err)
			}

			out := batchOutputPath(o.outDir, in, o.format)
			if err := writeOutput(res.Output, out); err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			written.Add(1)
			mu.Lock()
			fmt.Fprintf(a.stdout, "%s -> %s (%v)\n", in, out, res.Elapsed)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if n := cancelled.Load(); n > 0 {
		fmt.Fprintf(a.stderr, "Cancelled, %d of %d images not written\n", n, len(inputs))
	}
	fmt.Fprintf(a.stdout, "Processed %d images in %v\n", written.Load(), time.Since(begin))
	return nil
}
