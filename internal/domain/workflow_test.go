package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	m "github.com/mouse-blink/sift/internal/model"
)

type fakePlanStore struct {
	saved   *m.Plan
	savedTo m.Path
	saveErr error
}

func (s *fakePlanStore) Save(dir m.Path, plan *m.Plan) (m.Path, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}

	s.saved = plan
	s.savedTo = dir + "/plan-test"

	return s.savedTo, nil
}

func (s *fakePlanStore) LoadLatest(m.Path) (*m.Plan, m.Path, error) {
	if s.saved == nil {
		return nil, "", errors.New("no plans found")
	}

	return s.saved, s.savedTo, nil
}

type fakeUI struct {
	started  int
	finished int
	progress []int
	summary  *m.Plan
	shown    *m.Plan
}

func (u *fakeUI) ScanStarted(int) { u.started++ }

func (u *fakeUI) ScanProgress(done, _ int) { u.progress = append(u.progress, done) }

func (u *fakeUI) ScanFinished() { u.finished++ }
func (u *fakeUI) ShowSummary(plan *m.Plan, _ m.Path) error {
	u.summary = plan
	return nil
}

func (u *fakeUI) ShowPlan(plan *m.Plan, _ m.Path) error {
	u.shown = plan
	return nil
}

func TestWorkflow_PlanEndToEnd(t *testing.T) {
	fs := newFakeFS()
	fs.files["/data/a.txt"] = []byte("identical payload")
	fs.files["/data/b.txt"] = []byte("identical payload")
	fs.files["/data/unique.txt"] = []byte("one of a kind")

	store := &fakePlanStore{}
	ui := &fakeUI{}

	wf := NewWorkflow(fs, store, ui)

	err := wf.Plan(context.Background(), PlanArgs{
		Roots:   []m.Path{"/data"},
		Reports: "/reports",
		Config:  DefaultConfig(),
	})
	require.NoError(t, err)

	require.NotNil(t, store.saved)
	require.Len(t, store.saved.Decisions, 3)

	// The duplicate pair keeps exactly one copy.
	require.Equal(t, m.ActionKeep, store.saved.Decisions["/data/a.txt"].Action)
	require.Equal(t, m.ActionDelete, store.saved.Decisions["/data/b.txt"].Action)

	require.Equal(t, 1, ui.started)
	require.Equal(t, 1, ui.finished)
	require.Len(t, ui.progress, 3)
	require.Same(t, store.saved, ui.summary)
}

func TestWorkflow_MaxFilesCapTruncates(t *testing.T) {
	fs := newFakeFS()
	fs.files["/data/a.txt"] = []byte("a")
	fs.files["/data/b.txt"] = []byte("b")
	fs.files["/data/c.txt"] = []byte("c")

	store := &fakePlanStore{}

	cfg := DefaultConfig()
	cfg.MaxFiles = 2

	err := NewWorkflow(fs, store, &fakeUI{}).Plan(context.Background(), PlanArgs{
		Roots:   []m.Path{"/data"},
		Reports: "/reports",
		Config:  cfg,
	})
	require.NoError(t, err)

	require.Len(t, store.saved.Decisions, 2)
	require.True(t, store.saved.Truncated)
	require.NotEmpty(t, store.saved.Warnings)
	require.Contains(t, store.saved.Warnings[len(store.saved.Warnings)-1], "max-files cap")
}

func TestWorkflow_ExcludeFilters(t *testing.T) {
	fs := newFakeFS()
	fs.files["/data/keep.txt"] = []byte("keep")
	fs.files["/data/noise.log"] = []byte("noise")

	store := &fakePlanStore{}

	err := NewWorkflow(fs, store, &fakeUI{}).Plan(context.Background(), PlanArgs{
		Roots:   []m.Path{"/data"},
		Exclude: []string{`\.log$`},
		Reports: "/reports",
		Config:  DefaultConfig(),
	})
	require.NoError(t, err)

	require.Len(t, store.saved.Decisions, 1)
	_, excludedPresent := store.saved.Decisions["/data/noise.log"]
	require.False(t, excludedPresent)
}

func TestWorkflow_InvalidExcludePattern(t *testing.T) {
	err := NewWorkflow(newFakeFS(), &fakePlanStore{}, &fakeUI{}).Plan(context.Background(), PlanArgs{
		Roots:   []m.Path{"/data"},
		Exclude: []string{"("},
		Reports: "/reports",
		Config:  DefaultConfig(),
	})
	require.ErrorContains(t, err, "invalid exclude pattern")
}

func TestWorkflow_SaveFailureSurfaces(t *testing.T) {
	fs := newFakeFS()
	fs.files["/data/a.txt"] = []byte("a")

	store := &fakePlanStore{saveErr: errors.New("disk full")}

	err := NewWorkflow(fs, store, &fakeUI{}).Plan(context.Background(), PlanArgs{
		Roots:   []m.Path{"/data"},
		Reports: "/reports",
		Config:  DefaultConfig(),
	})
	require.ErrorContains(t, err, "save plan")
}

func TestWorkflow_View(t *testing.T) {
	fs := newFakeFS()
	fs.files["/data/a.txt"] = []byte("a")

	store := &fakePlanStore{}
	ui := &fakeUI{}
	wf := NewWorkflow(fs, store, ui)

	err := wf.View(context.Background(), ViewArgs{Reports: "/reports"})
	require.ErrorContains(t, err, "load plan")

	require.NoError(t, wf.Plan(context.Background(), PlanArgs{
		Roots:   []m.Path{"/data"},
		Reports: "/reports",
		Config:  DefaultConfig(),
	}))

	require.NoError(t, wf.View(context.Background(), ViewArgs{Reports: "/reports"}))
	require.Same(t, store.saved, ui.shown)
}
