package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/mouse-blink/sift/internal/adapter"
	"github.com/mouse-blink/sift/internal/controller"
	m "github.com/mouse-blink/sift/internal/model"
)

// errStopWalk aborts a walk early once the max-files cap is hit.
var errStopWalk = errors.New("stop walk")

// PlanArgs carries one plan run's inputs.
type PlanArgs struct {
	Roots   []m.Path
	Exclude []string
	Reports m.Path
	Config  Config
}

// ViewArgs carries the view command's inputs.
type ViewArgs struct {
	Reports m.Path
}

// Workflow is the use-case layer behind the CLI commands.
type Workflow interface {
	// Plan scans the roots, decides an action per file and saves the
	// resulting plan under the reports directory.
	Plan(ctx context.Context, args PlanArgs) error

	// View renders the most recently saved plan.
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	fs    adapter.ScanFS
	store adapter.PlanStore
	ui    controller.UI
}

// NewWorkflow creates a Workflow instance with the provided
// dependencies.
func NewWorkflow(fs adapter.ScanFS, store adapter.PlanStore, ui controller.UI) Workflow {
	return &workflow{fs: fs, store: store, ui: ui}
}

func (w *workflow) Plan(ctx context.Context, args PlanArgs) error {
	cfg := args.Config.normalized()

	excludes, err := compileExcludes(args.Exclude)
	if err != nil {
		return err
	}

	infos, capped, err := w.collectFiles(ctx, args.Roots, excludes, cfg.MaxFiles)
	if err != nil {
		return fmt.Errorf("scan roots: %w", err)
	}

	slog.Info("scan collected files", "files", len(infos), "capped", capped)

	w.ui.ScanStarted(len(infos))

	records, err := NewFingerprinter(w.fs, cfg.Workers).Fingerprint(ctx, infos, func(done int) {
		w.ui.ScanProgress(done, len(infos))
	})

	w.ui.ScanFinished()

	if err != nil {
		return fmt.Errorf("fingerprint: %w", err)
	}

	clusters := NewClusterBuilder(cfg).Build(records)
	slog.Info("clustering finished", "clusters", len(clusters))

	plan := NewPlanner(cfg).BuildPlan(ctx, records, clusters, time.Now())

	if capped {
		plan.Truncated = true
		plan.Warnings = append(plan.Warnings, fmt.Sprintf("scan stopped at max-files cap (%d)", cfg.MaxFiles))
	}

	savedTo, err := w.store.Save(args.Reports, plan)
	if err != nil {
		return fmt.Errorf("save plan: %w", err)
	}

	return w.ui.ShowSummary(plan, savedTo)
}

func (w *workflow) View(_ context.Context, args ViewArgs) error {
	plan, loadedFrom, err := w.store.LoadLatest(args.Reports)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}

	return w.ui.ShowPlan(plan, loadedFrom)
}

// collectFiles walks every root and gathers walker metadata, honoring
// the exclude filters and the max-files cap. The second return value
// reports whether the cap cut the scan short.
func (w *workflow) collectFiles(ctx context.Context, roots []m.Path, excludes []*regexp.Regexp, maxFiles int) ([]adapter.FileInfo, bool, error) {
	var infos []adapter.FileInfo

	capped := false

	for _, root := range roots {
		err := w.fs.Walk(ctx, root, func(info adapter.FileInfo) error {
			if excluded(info.Path, excludes) {
				return nil
			}

			if maxFiles > 0 && len(infos) >= maxFiles {
				capped = true
				return errStopWalk
			}

			infos = append(infos, info)

			return nil
		})
		if err != nil && !errors.Is(err, errStopWalk) {
			return nil, false, err
		}

		if capped {
			break
		}
	}

	return infos, capped, nil
}

func compileExcludes(patterns []string) ([]*regexp.Regexp, error) {
	excludes := make([]*regexp.Regexp, 0, len(patterns))

	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}

		excludes = append(excludes, re)
	}

	return excludes, nil
}

func excluded(path m.Path, excludes []*regexp.Regexp) bool {
	for _, re := range excludes {
		if re.MatchString(string(path)) {
			return true
		}
	}

	return false
}
