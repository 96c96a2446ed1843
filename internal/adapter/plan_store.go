package adapter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	m "github.com/mouse-blink/sift/internal/model"
)

const (
	planDirPrefix    = "plan-"
	decisionsName    = "decisions.csv"
	summaryName      = "plan.yaml"
	planDirTimestamp = "20060102-150405"
)

// PlanStore persists decision plans under a reports directory and loads
// them back for viewing.
type PlanStore interface {
	// Save writes the plan into a new timestamped subdirectory of dir
	// and returns that subdirectory's path.
	Save(dir m.Path, plan *m.Plan) (m.Path, error)

	// LoadLatest reads the most recently saved plan under dir.
	LoadLatest(dir m.Path) (*m.Plan, m.Path, error)
}

// planSummary is the YAML sidecar next to the decisions CSV.
type planSummary struct {
	ID               string    `yaml:"id"`
	CreatedAt        time.Time `yaml:"created_at"`
	Files            int       `yaml:"files"`
	Keep             int       `yaml:"keep"`
	Archive          int       `yaml:"archive"`
	Delete           int       `yaml:"delete"`
	ReclaimableBytes int64     `yaml:"reclaimable_bytes"`
	Truncated        bool      `yaml:"truncated"`
	Warnings         []string  `yaml:"warnings,omitempty"`
}

var decisionsHeader = []string{
	"path", "size_bytes", "age_days", "action", "score",
	"age_score", "dup_score", "location_score",
	"cluster_id", "cluster_kind", "reason",
}

// LocalPlanStore stores plans on the local filesystem.
type LocalPlanStore struct{}

// NewLocalPlanStore constructs a LocalPlanStore.
func NewLocalPlanStore() *LocalPlanStore {
	return &LocalPlanStore{}
}

// Save writes decisions.csv plus a plan.yaml summary.
func (s *LocalPlanStore) Save(dir m.Path, plan *m.Plan) (m.Path, error) {
	runDir := filepath.Join(string(dir), planDirPrefix+time.Now().UTC().Format(planDirTimestamp))

	if err := os.MkdirAll(runDir, 0o750); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	if err := s.writeDecisions(filepath.Join(runDir, decisionsName), plan); err != nil {
		return "", err
	}

	if err := s.writeSummary(filepath.Join(runDir, summaryName), plan); err != nil {
		return "", err
	}

	slog.Info("plan saved", "dir", runDir, "decisions", len(plan.Decisions))

	return m.Path(runDir), nil
}

func (s *LocalPlanStore) writeDecisions(path string, plan *m.Plan) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", decisionsName, err)
	}

	defer func() {
		_ = f.Close()
	}()

	w := csv.NewWriter(f)

	if err := w.Write(decisionsHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, d := range plan.Sorted() {
		row := []string{
			string(d.Path),
			strconv.FormatInt(d.Size, 10),
			strconv.FormatFloat(d.AgeDays, 'f', 1, 64),
			string(d.Action),
			strconv.FormatFloat(d.Score.Total, 'f', 3, 64),
			strconv.FormatFloat(d.Score.Breakdown.Age, 'f', 3, 64),
			strconv.FormatFloat(d.Score.Breakdown.Duplication, 'f', 3, 64),
			strconv.FormatFloat(d.Score.Breakdown.Location, 'f', 3, 64),
			d.ClusterID,
			string(d.ClusterKind),
			d.Reason,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row for %s: %w", d.Path, err)
		}
	}

	w.Flush()

	return w.Error()
}

func (s *LocalPlanStore) writeSummary(path string, plan *m.Plan) error {
	counts := plan.CountByAction()
	bytes := plan.BytesByAction()

	summary := planSummary{
		ID:               uuid.NewString(),
		CreatedAt:        time.Now().UTC(),
		Files:            len(plan.Decisions),
		Keep:             counts[m.ActionKeep],
		Archive:          counts[m.ActionArchive],
		Delete:           counts[m.ActionDelete],
		ReclaimableBytes: bytes[m.ActionArchive] + bytes[m.ActionDelete],
		Truncated:        plan.Truncated,
		Warnings:         plan.Warnings,
	}

	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", summaryName, err)
	}

	return nil
}

// LoadLatest picks the lexicographically greatest plan subdirectory,
// which is the newest thanks to the timestamp naming.
func (s *LocalPlanStore) LoadLatest(dir m.Path) (*m.Plan, m.Path, error) {
	entries, err := os.ReadDir(string(dir))
	if err != nil {
		return nil, "", fmt.Errorf("read reports dir: %w", err)
	}

	var runs []string

	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), planDirPrefix) {
			runs = append(runs, entry.Name())
		}
	}

	if len(runs) == 0 {
		return nil, "", fmt.Errorf("no plans found under %s", dir)
	}

	sort.Strings(runs)
	runDir := filepath.Join(string(dir), runs[len(runs)-1])

	plan, err := s.readPlan(runDir)
	if err != nil {
		return nil, "", err
	}

	return plan, m.Path(runDir), nil
}

func (s *LocalPlanStore) readPlan(runDir string) (*m.Plan, error) {
	plan := m.NewPlan()

	summaryData, err := os.ReadFile(filepath.Join(runDir, summaryName))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", summaryName, err)
	}

	var summary planSummary
	if err := yaml.Unmarshal(summaryData, &summary); err != nil {
		return nil, fmt.Errorf("parse %s: %w", summaryName, err)
	}

	plan.Truncated = summary.Truncated
	plan.Warnings = summary.Warnings

	f, err := os.Open(filepath.Join(runDir, decisionsName))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", decisionsName, err)
	}

	defer func() {
		_ = f.Close()
	}()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", decisionsName, err)
	}

	for i, row := range rows {
		if i == 0 {
			continue
		}

		decision, err := decisionFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		plan.Add(decision)
	}

	return plan, nil
}

func decisionFromRow(row []string) (m.Decision, error) {
	if len(row) != len(decisionsHeader) {
		return m.Decision{}, fmt.Errorf("expected %d columns, got %d", len(decisionsHeader), len(row))
	}

	size, err := strconv.ParseInt(row[1], 10, 64)
	if err != nil {
		return m.Decision{}, fmt.Errorf("size: %w", err)
	}

	ageDays, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return m.Decision{}, fmt.Errorf("age_days: %w", err)
	}

	floats := make([]float64, 4)

	for i, col := range []int{4, 5, 6, 7} {
		floats[i], err = strconv.ParseFloat(row[col], 64)
		if err != nil {
			return m.Decision{}, fmt.Errorf("%s: %w", decisionsHeader[col], err)
		}
	}

	return m.Decision{
		Path:    m.Path(row[0]),
		Size:    size,
		AgeDays: ageDays,
		Action:  m.Action(row[3]),
		Score: m.Score{
			Total: floats[0],
			Breakdown: m.ScoreBreakdown{
				Age:         floats[1],
				Duplication: floats[2],
				Location:    floats[3],
			},
		},
		ClusterID:   row[8],
		ClusterKind: m.ClusterKind(row[9]),
		Reason:      row[10],
	}, nil
}
