package domain

import (
	"path/filepath"
	"strings"
	"time"

	m "github.com/mouse-blink/sift/internal/model"
)

// RuleKind tags a rule's contribution so the score breakdown can group
// it for the report.
type RuleKind string

const (
	// RuleAge contributes staleness based on time since modification.
	RuleAge RuleKind = "age"
	// RuleDuplication contributes for redundant cluster members.
	RuleDuplication RuleKind = "duplication"
	// RulePath contributes for files living in disposable locations.
	RulePath RuleKind = "path"
	// RuleSize contributes the large-file archival bias.
	RuleSize RuleKind = "size"
)

// RuleInput bundles what a rule may look at for one file.
type RuleInput struct {
	Record  m.FileRecord
	Cluster *m.Cluster // nil for singletons
	Now     time.Time
}

// Contribution is one rule's weighted vote for cleaning a file up.
type Contribution struct {
	Kind  RuleKind
	Value float64
}

// Rule is a single scoring heuristic. New heuristics are added by
// implementing Rule and extending the default rule set, not by patching
// branches inside the scorer.
type Rule interface {
	Evaluate(in RuleInput) Contribution
}

// AgeRule scores staleness. At or beyond the stale threshold the
// contribution is the fixed MaxWeight; below it the value decays
// linearly toward zero, staying monotonic in age.
type AgeRule struct {
	Stale     time.Duration
	MaxWeight float64
}

// Evaluate implements Rule.
func (r AgeRule) Evaluate(in RuleInput) Contribution {
	age := in.Record.AgeAt(in.Now)
	if age < 0 {
		age = 0
	}

	value := r.MaxWeight
	if age < r.Stale {
		value = r.MaxWeight * 0.5 * (float64(age) / float64(r.Stale))
	}

	return Contribution{Kind: RuleAge, Value: value}
}

// DuplicationRule scores redundant cluster members. Exact duplicates are
// the safest to remove and score highest; near duplicates carry less
// confidence; representatives and singletons contribute nothing.
type DuplicationRule struct {
	ExactWeight float64
	NearWeight  float64
}

// Evaluate implements Rule.
func (r DuplicationRule) Evaluate(in RuleInput) Contribution {
	contribution := Contribution{Kind: RuleDuplication}

	if in.Cluster == nil || in.Cluster.IsRepresentative(in.Record.Path) {
		return contribution
	}

	switch in.Cluster.Kind {
	case m.ClusterExact:
		contribution.Value = r.ExactWeight
	case m.ClusterNear:
		contribution.Value = r.NearWeight
	}

	return contribution
}

// PathRule scores files sitting in locations that are disposable by
// convention (temp and cache directories, downloaded installers).
type PathRule struct {
	Markers       []string
	InstallerExts []string
	MarkerWeight  float64
	ExtWeight     float64
}

// Evaluate implements Rule.
func (r PathRule) Evaluate(in RuleInput) Contribution {
	contribution := Contribution{Kind: RulePath}
	lower := strings.ToLower(string(in.Record.Path))

	for _, marker := range r.Markers {
		if strings.Contains(lower, marker) {
			contribution.Value += r.MarkerWeight
			break
		}
	}

	ext := strings.ToLower(filepath.Ext(lower))

	for _, installer := range r.InstallerExts {
		if ext == installer {
			contribution.Value += r.ExtWeight
			break
		}
	}

	return contribution
}

// SizeRule biases very large files toward archival.
type SizeRule struct {
	LargeBytes  int64
	HugeBytes   int64
	LargeWeight float64
	HugeWeight  float64
}

// Evaluate implements Rule.
func (r SizeRule) Evaluate(in RuleInput) Contribution {
	contribution := Contribution{Kind: RuleSize}

	switch {
	case in.Record.Size >= r.HugeBytes:
		contribution.Value = r.HugeWeight
	case in.Record.Size >= r.LargeBytes:
		contribution.Value = r.LargeWeight
	}

	return contribution
}

// Scorer computes a file's staleness/risk score from the rule set.
type Scorer interface {
	Score(record m.FileRecord, cluster *m.Cluster, now time.Time) m.Score
}

type scorer struct {
	rules []Rule
}

// NewScorer builds a Scorer with the default rule set tuned by cfg.
func NewScorer(cfg Config) Scorer {
	cfg = cfg.normalized()

	return &scorer{rules: []Rule{
		AgeRule{Stale: cfg.StaleThreshold, MaxWeight: 3.0},
		DuplicationRule{ExactWeight: 5.0, NearWeight: 2.0},
		PathRule{
			Markers:       []string{"/tmp/", "/temp/", "/cache/", "/caches/", "/downloads/"},
			InstallerExts: []string{".msi", ".dmg", ".pkg", ".deb", ".rpm", ".iso"},
			MarkerWeight:  1.5,
			ExtWeight:     1.0,
		},
		SizeRule{
			LargeBytes:  50 << 20,
			HugeBytes:   200 << 20,
			LargeWeight: 1.0,
			HugeWeight:  2.0,
		},
	}}
}

// NewScorerWithRules builds a Scorer over an explicit rule set, mainly
// for tests that need tightly controlled weights.
func NewScorerWithRules(rules ...Rule) Scorer {
	return &scorer{rules: rules}
}

// Score reduces the rule contributions to a weighted sum. The breakdown
// is explanatory metadata only; the search engine consumes the total.
func (s *scorer) Score(record m.FileRecord, cluster *m.Cluster, now time.Time) m.Score {
	var score m.Score

	for _, rule := range s.rules {
		contribution := rule.Evaluate(RuleInput{Record: record, Cluster: cluster, Now: now})
		score.Total += contribution.Value

		switch contribution.Kind {
		case RuleAge:
			score.Breakdown.Age += contribution.Value
		case RuleDuplication:
			score.Breakdown.Duplication += contribution.Value
		case RulePath, RuleSize:
			score.Breakdown.Location += contribution.Value
		}
	}

	return score
}
