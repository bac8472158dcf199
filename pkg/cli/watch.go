package cli

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/protodoc/pkg/config"
	"github.com/platinummonkey/protodoc/pkg/observability"
	"github.com/platinummonkey/protodoc/pkg/orchestrator"
)

// newWatchCommand creates the watch command
func newWatchCommand() *Command {
	flags := flag.NewFlagSet("watch", flag.ExitOnError)
	registerSettingFlags(flags)

	return &Command{
		Name:        "watch",
		Description: "Re-render documentation whenever proto files change",
		Flags:       flags,
		Run: func(args []string) error {
			if err := flags.Parse(args); err != nil {
				return err
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			ctx, logger, err := newRun(cfg)
			if err != nil {
				return err
			}

			return runWatch(ctx, cfg, logger, flags.Args())
		},
	}
}

// runWatch renders once and then again after every burst of proto changes
// until interrupted
func runWatch(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger, patterns []string) error {
	ctx, stop := observability.SignalContext(ctx)
	defer stop()

	o, err := orchestrator.New(cfg, logger)
	if err != nil {
		return err
	}

	w, err := newWatcher(cfg, o, logger, patterns)
	if err != nil {
		return err
	}

	shutdown := observability.NewShutdownManager(logger, 5*time.Second)
	shutdown.RegisterShutdownFunc(func(context.Context) error {
		return w.close()
	})

	runErr := w.run(ctx)
	if err := shutdown.Shutdown(); err != nil {
		logger.WithError(err).Warn("Shutdown incomplete")
	}
	return runErr
}

// watcher re-renders on proto file changes, debounced
type watcher struct {
	cfg          *config.Config
	orchestrator *orchestrator.Orchestrator
	logger       logrus.FieldLogger
	patterns     []string
	fsw          *fsnotify.Watcher

	// onRender is called after every render attempt
	onRender func(paths []string, err error)
}

func newWatcher(cfg *config.Config, o *orchestrator.Orchestrator, logger logrus.FieldLogger, patterns []string) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &watcher{
		cfg:          cfg,
		orchestrator: o,
		logger:       logger,
		patterns:     patterns,
		fsw:          fsw,
	}
	for _, root := range cfg.Output.ImportPaths {
		if err := w.addDirs(root); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// addDirs watches root and every directory below it, skipping hidden ones
func (w *watcher) addDirs(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *watcher) close() error {
	return w.fsw.Close()
}

func (w *watcher) run(ctx context.Context) error {
	w.render(ctx)
	w.logger.WithField("paths", strings.Join(w.cfg.Output.ImportPaths, ",")).Info("Watching for proto file changes")

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.handle(event) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.cfg.Output.WatchDebounce)
			fire = timer.C

		case <-fire:
			fire = nil
			w.render(ctx)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Warn("Watcher error")
		}
	}
}

// handle reports whether event should trigger a render. New directories are
// watched as they appear.
func (w *watcher) handle(event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addDirs(event.Name); err != nil {
				w.logger.WithError(err).Warn("Failed to watch new directory")
			}
			return false
		}
	}
	if filepath.Ext(event.Name) != ".proto" || event.Op == fsnotify.Chmod {
		return false
	}
	if !matchesPatterns(w.cfg.Output.ImportPaths, w.patterns, event.Name) {
		return false
	}
	w.logger.WithField("file", event.Name).Debugf("Change detected: %s", event.Op)
	return true
}

func (w *watcher) render(ctx context.Context) {
	defer observability.RecoverPanic(w.logger, "watch render")

	paths, err := renderOnce(ctx, w.orchestrator, w.cfg, w.patterns)
	if err != nil {
		w.logger.WithError(err).Error("Render failed")
	} else {
		w.logger.WithField("documents", len(paths)).Info("Documentation updated")
	}
	if w.onRender != nil {
		w.onRender(paths, err)
	}
}
