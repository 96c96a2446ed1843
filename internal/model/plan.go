package model

import "sort"

// Action is a recommended disposition for a file. The engine only
// recommends; it never touches the file itself.
type Action string

const (
	// ActionKeep leaves the file in place.
	ActionKeep Action = "keep"
	// ActionArchive recommends moving the file to an archive location.
	ActionArchive Action = "archive"
	// ActionDelete recommends removing the file.
	ActionDelete Action = "delete"
)

// ScoreBreakdown itemizes the rule contributions behind a score. It is
// explanatory metadata for the report; the search engine consumes only
// the total.
type ScoreBreakdown struct {
	Age         float64
	Duplication float64
	Location    float64
}

// Score is a file's staleness/risk value. Higher means safer to clean.
type Score struct {
	Total     float64
	Breakdown ScoreBreakdown
}

// Decision is the planned action for a single file together with the
// evidence that produced it.
type Decision struct {
	Path        Path
	Size        int64
	AgeDays     float64
	Action      Action
	Score       Score
	ClusterID   string
	ClusterKind ClusterKind
	Reason      string
}

// Clustered reports whether the decision's file belonged to a duplicate
// cluster.
func (d Decision) Clustered() bool {
	return d.ClusterID != ""
}

// Plan maps every scanned file to a decision. It is the engine's sole
// output; the caller owns it once returned.
type Plan struct {
	Decisions map[Path]Decision

	// Truncated is set when the scan hit the max-files cap or the
	// caller's budget expired before all clusters were processed.
	Truncated bool

	// Warnings collects non-fatal per-file and per-cluster problems
	// (unreadable files, invariant violations).
	Warnings []string
}

// NewPlan returns an empty plan ready to receive decisions.
func NewPlan() *Plan {
	return &Plan{Decisions: make(map[Path]Decision)}
}

// Add records a decision, replacing any previous decision for the path.
func (p *Plan) Add(d Decision) {
	p.Decisions[d.Path] = d
}

// Sorted returns the decisions in ascending path order for deterministic
// output.
func (p *Plan) Sorted() []Decision {
	out := make([]Decision, 0, len(p.Decisions))
	for _, d := range p.Decisions {
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })

	return out
}

// CountByAction tallies decisions per action.
func (p *Plan) CountByAction() map[Action]int {
	counts := make(map[Action]int, 3)
	for _, d := range p.Decisions {
		counts[d.Action]++
	}

	return counts
}

// BytesByAction tallies file sizes per action, the basis for the
// reclaimable-space figures in the summary.
func (p *Plan) BytesByAction() map[Action]int64 {
	bytes := make(map[Action]int64, 3)
	for _, d := range p.Decisions {
		bytes[d.Action] += d.Size
	}

	return bytes
}
