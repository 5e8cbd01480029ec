package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/wbrown/tilize"
)

func newWatchCmd(a *app) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch [flags] <input> <output>",
		Short: "Re-run whenever the input image or configuration changes",
		Long: `Re-run whenever the input image or configuration changes.

The input is processed once at start and again after every write to the
input file or the configuration file. Runs are headless. Stop with Ctrl+C.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWatch(cmd.Context(), args[0], args[1], debounce)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 200*time.Millisecond,
		"Wait this long after the last change before re-running")
	return cmd
}

// watchedFiles reports whether name is one of the files being watched.
type watchedFiles map[string]bool

func newWatchedFiles(paths ...string) watchedFiles {
	w := watchedFiles{}
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			w[abs] = true
		}
	}
	return w
}

func (w watchedFiles) matches(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	return err == nil && w[abs]
}

func (a *app) runWatch(ctx context.Context, inPath, outPath string, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch directories so editors that replace files by rename are seen.
	dirs := map[string]bool{filepath.Dir(inPath): true, filepath.Dir(a.configPath): true}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	files := newWatchedFiles(inPath, a.configPath)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := tilize.Logger()
	opts := &runOptions{preview: previewNone}
	process := func() {
		if err := a.runOne(ctx, opts, inPath, outPath); err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
		}
	}
	process()

	fire := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !files.matches(ev) {
				continue
			}
			log.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			process()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}
