package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/audytor/internal/logger"
)

// watchDebounce collapses bursts of writes into one re-run.
var watchDebounce = 500 * time.Millisecond

var watchOpts runOptions

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the audit whenever an input file changes",
	Long: `Runs the audit once, then again each time the population, index or
overrides file changes. Every run writes a fresh verdict set.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	addRunFlags(watchCmd, &watchOpts)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if auditService == nil {
		return errors.New("audit service not configured")
	}
	ctx := commandContext(cmd)
	st := stylesFor(cmd.OutOrStdout())

	audit := func() {
		// Settings are re-read so config edits apply to the next run.
		settings, err := watchOpts.settings(cmd)
		if err != nil {
			cmd.PrintErrln(st.Error.Render(err.Error()))
			return
		}
		run, result, err := auditService.Run(ctx, watchOpts.input(), settings, watchOpts.outputDir)
		if err != nil {
			cmd.PrintErrln(st.Error.Render("audit failed: " + err.Error()))
			return
		}
		m := result.Summary.Metrics
		cmd.Printf("%s rows %d, TAK %d, NIE %d, no invoice %d -> %s\n",
			st.Muted.Render(run.FinishedAt.Format(time.TimeOnly)),
			m.Total, m.Consistent, m.Inconsistent, m.Unmatched, run.OutputDir)
	}

	w, err := newFileWatcher(watchOpts.population, watchOpts.index, watchOpts.overrides)
	if err != nil {
		return err
	}
	defer w.Close()

	audit()
	cmd.Println(st.Muted.Render("Watching inputs for changes (Ctrl+C to stop)"))
	return w.Run(ctx, watchDebounce, audit)
}

// fileWatcher reports changes to a fixed set of files. It watches their
// parent directories so editors that replace files on save are seen.
type fileWatcher struct {
	watcher *fsnotify.Watcher
	files   map[string]bool
}

func newFileWatcher(paths ...string) (*fileWatcher, error) {
	fw := &fileWatcher{files: make(map[string]bool)}
	dirs := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		fw.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	if len(fw.files) == 0 {
		return nil, errors.New("no files to watch")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	sorted := make([]string, 0, len(dirs))
	for d := range dirs {
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)
	for _, d := range sorted {
		if err := w.Add(d); err != nil {
			w.Close()
			return nil, fmt.Errorf("watch %s: %w", d, err)
		}
		logger.Debug("Watching %s", d)
	}
	fw.watcher = w
	return fw, nil
}

// relevant reports whether the event changes one of the watched files.
func (fw *fileWatcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return fw.files[abs]
}

// Run calls onChange once per burst of relevant events, after debounce
// has passed without another one. onChange never runs concurrently with
// itself. Run returns when ctx is done.
func (fw *fileWatcher) Run(ctx context.Context, debounce time.Duration, onChange func()) error {
	var timer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			if !fw.relevant(ev) {
				continue
			}
			logger.Debug("Input changed: %s", ev)
			if timer == nil {
				timer = time.AfterFunc(debounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(debounce)
			}
		case <-fire:
			onChange()
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error: %v", err)
		}
	}
}

// Close stops watching.
func (fw *fileWatcher) Close() error {
	return fw.watcher.Close()
}
