package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/wbrown/tilize"
	"github.com/wbrown/tilize/config"
	"github.com/wbrown/tilize/display"
	"github.com/wbrown/tilize/tui"
)

// Preview modes.
const (
	previewAuto     = "auto"
	previewTUI      = "tui"
	previewTerminal = "terminal"
	previewNone     = "none"
)

// ansiExt selects ANSI text output instead of an image.
const ansiExt = ".ans"

type runOptions struct {
	preview string
	cols    int
	fps     float64
}

func newRunOptions() *runOptions {
	return &runOptions{}
}

func (o *runOptions) addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.preview, "preview", previewAuto,
		"Live preview: auto, tui, terminal or none")
	f.IntVar(&o.cols, "cols", 80,
		"Preview width in terminal columns (0 = full resolution)")
	f.Float64Var(&o.fps, "fps", display.DefaultMaxFPS,
		"Maximum preview frames per second (0 = unlimited)")
}

// mode resolves "auto" to the interactive preview when both ends of the
// terminal are attached.
func (o *runOptions) mode(out io.Writer) (string, error) {
	switch o.preview {
	case previewTUI, previewTerminal, previewNone:
		return o.preview, nil
	case previewAuto, "":
		if isTerminal(out) && isTerminal(os.Stdin) {
			return previewTUI, nil
		}
		return previewNone, nil
	default:
		return "", fmt.Errorf("unknown preview mode %q", o.preview)
	}
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// runOne processes a single input into output with the requested preview.
func (a *app) runOne(ctx context.Context, opts *runOptions, inPath, outPath string) error {
	begin := time.Now()
	mode, err := opts.mode(a.stdout)
	if err != nil {
		return err
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	input, err := tilize.LoadImageFile(inPath)
	if err != nil {
		return fmt.Errorf("failed to load input image: %w", err)
	}

	token := tilize.NewCancellationToken()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	release := token.CancelOnDone(ctx)
	defer release()

	var res *tilize.Result
	switch mode {
	case previewTUI:
		res, err = a.processTUI(cfg, opts, input, inPath, token)
	case previewTerminal:
		res, err = a.processTerminal(cfg, opts, input, token)
	default:
		var eng *tilize.Engine
		eng, err = a.newEngine(cfg)
		if err == nil {
			res, err = eng.Process(input, token)
		}
	}
	if err != nil {
		return err
	}
	return a.finish(res, outPath, time.Since(begin))
}

func (a *app) processTUI(cfg *config.Config, opts *runOptions, input *tilize.PixelBuffer,
	name string, token *tilize.CancellationToken) (*tilize.Result, error) {
	tilesX := (input.Width + cfg.TileWidth - 1) / cfg.TileWidth
	tilesY := (input.Height + cfg.TileHeight - 1) / cfg.TileHeight
	sess := tui.NewSession(filepath.Base(name), tilesX*tilesY, token, tea.WithOutput(a.stdout))

	sink, err := display.NewSink(input.Width, input.Height, sess.Presenter(opts.cols),
		display.WithMaxFPS(opts.fps), display.WithMetrics(a.metrics))
	if err != nil {
		return nil, err
	}
	eng, err := a.newEngine(cfg, tilize.WithDisplay(sink), tilize.WithProgress(sess.Progress))
	if err != nil {
		return nil, err
	}
	return sess.Run(func() (*tilize.Result, error) {
		res, err := eng.Process(input, token)
		if err == nil {
			sink.Flush()
		}
		return res, err
	})
}

func (a *app) processTerminal(cfg *config.Config, opts *runOptions, input *tilize.PixelBuffer,
	token *tilize.CancellationToken) (*tilize.Result, error) {
	sink, err := display.NewSink(input.Width, input.Height, display.NewTerminal(a.stderr, opts.cols),
		display.WithMaxFPS(opts.fps), display.WithMetrics(a.metrics))
	if err != nil {
		return nil, err
	}
	eng, err := a.newEngine(cfg, tilize.WithDisplay(sink))
	if err != nil {
		return nil, err
	}
	fmt.Fprint(a.stderr, display.Clear)
	res, err := eng.Process(input, token)
	if err == nil {
		sink.Flush()
	}
	return res, err
}

// finish persists a successful result and reports timing. Cancellation is
// not an error.
func (a *app) finish(res *tilize.Result, outPath string, total time.Duration) error {
	switch res.Status {
	case tilize.StatusCancelled:
		fmt.Fprintln(a.stderr, "Cancelled, no output written")
		return nil
	case tilize.StatusFailed:
		return fmt.Errorf("processing failed: %w", res.Err)
	}

	if err := writeOutput(res.Output, outPath); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Output written to %s\n", outPath)
	fmt.Fprintf(a.stdout, "Tiles: %d, workers: %d (%d degraded)\n",
		res.Tiles, res.Scheduler.Workers, res.Scheduler.Degraded)
	fmt.Fprintf(a.stdout, "Computation time: %v\n", res.Elapsed)
	fmt.Fprintf(a.stdout, "Total time: %v\n", total)
	return nil
}

// writeOutput saves buf as an image, or as ANSI text for .ans paths.
func writeOutput(buf *tilize.PixelBuffer, path string) error {
	if strings.EqualFold(filepath.Ext(path), ansiExt) {
		if err := os.WriteFile(path, []byte(display.RenderANSI(buf, 0)), 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if err := tilize.SaveImageFile(buf, path); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
