package domain

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	m "github.com/mouse-blink/sift/internal/model"
)

// Decision reasons surfaced in the report.
const (
	reasonDefaultKeep    = "no cleanup signal"
	reasonUnreadable     = "unreadable, kept for safety"
	reasonStaleSingleton = "stale singleton"
	reasonRepresentative = "cluster representative"
	reasonRedundantKeep  = "kept redundant copy"
	reasonArchiveMember  = "cluster archive candidate"
	reasonDeleteMember   = "redundant duplicate"
	reasonBudget         = "budget exhausted"
	reasonSearchFailed   = "cluster search failed, kept for safety"
)

// Planner assigns an action to every scanned file: searched assignments
// for cluster members, threshold defaults for singletons.
type Planner interface {
	BuildPlan(ctx context.Context, records []m.FileRecord, clusters []m.Cluster, now time.Time) *m.Plan
}

type planner struct {
	cfg    Config
	scorer Scorer
	search *searchEngine
}

// NewPlanner constructs a Planner with the default scorer for cfg.
func NewPlanner(cfg Config) Planner {
	cfg = cfg.normalized()

	return &planner{
		cfg:    cfg,
		scorer: NewScorer(cfg),
		search: newSearchEngine(cfg),
	}
}

// BuildPlan produces a decision for every record. Clusters are searched
// independently in deterministic ID order. When the caller's context
// expires mid-run, remaining clusters fall back to keep and the plan is
// marked truncated instead of failing outright.
func (p *planner) BuildPlan(ctx context.Context, records []m.FileRecord, clusters []m.Cluster, now time.Time) *m.Plan {
	plan := m.NewPlan()

	clusterOf := make(map[m.Path]*m.Cluster)

	sorted := make([]m.Cluster, len(clusters))
	copy(sorted, clusters)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	for i := range sorted {
		for _, member := range sorted[i].Members {
			clusterOf[member.Path] = &sorted[i]
		}
	}

	scores := make(map[m.Path]m.Score, len(records))
	for _, rec := range records {
		scores[rec.Path] = p.scorer.Score(rec, clusterOf[rec.Path], now)
	}

	for i := range sorted {
		p.decideCluster(ctx, plan, &sorted[i], scores, now)
	}

	ordered := make([]m.FileRecord, len(records))
	copy(ordered, records)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Path < ordered[j].Path })

	for _, rec := range ordered {
		if _, decided := plan.Decisions[rec.Path]; decided {
			continue
		}

		p.decideSingleton(plan, rec, scores[rec.Path], now)
	}

	return plan
}

// decideCluster runs the action search for one cluster, or falls back
// to keep-everything when the budget is gone or the search signals an
// invariant violation.
func (p *planner) decideCluster(ctx context.Context, plan *m.Plan, cluster *m.Cluster, scores map[m.Path]m.Score, now time.Time) {
	if err := ctx.Err(); err != nil {
		plan.Truncated = true
		p.keepCluster(plan, cluster, scores, now, reasonBudget)

		return
	}

	assignment, cost, err := p.search.Solve(*cluster, scores)
	if err != nil {
		// Fatal for this cluster only; the rest of the plan proceeds.
		slog.Error("cluster search failed", "cluster", cluster.ID, "error", err)
		plan.Warnings = append(plan.Warnings, fmt.Sprintf("cluster %s: %v", cluster.ID, err))
		p.keepCluster(plan, cluster, scores, now, reasonSearchFailed)

		return
	}

	slog.Debug("cluster decided", "cluster", cluster.ID, "members", len(cluster.Members), "cost", cost)

	for _, member := range cluster.Members {
		action := assignment[member.Path]
		plan.Add(m.Decision{
			Path:        member.Path,
			Size:        member.Size,
			AgeDays:     ageDays(member, now),
			Action:      action,
			Score:       scores[member.Path],
			ClusterID:   cluster.ID,
			ClusterKind: cluster.Kind,
			Reason:      clusterReason(cluster, member.Path, action),
		})
	}
}

func (p *planner) keepCluster(plan *m.Plan, cluster *m.Cluster, scores map[m.Path]m.Score, now time.Time, reason string) {
	for _, member := range cluster.Members {
		plan.Add(m.Decision{
			Path:        member.Path,
			Size:        member.Size,
			AgeDays:     ageDays(member, now),
			Action:      m.ActionKeep,
			Score:       scores[member.Path],
			ClusterID:   cluster.ID,
			ClusterKind: cluster.Kind,
			Reason:      reason,
		})
	}
}

// decideSingleton applies the trivial non-search defaults: unreadable
// files are kept (never recommend removing what could not be verified),
// high-scoring stale files are archived, everything else stays.
func (p *planner) decideSingleton(plan *m.Plan, rec m.FileRecord, score m.Score, now time.Time) {
	decision := m.Decision{
		Path:    rec.Path,
		Size:    rec.Size,
		AgeDays: ageDays(rec, now),
		Action:  m.ActionKeep,
		Score:   score,
		Reason:  reasonDefaultKeep,
	}

	switch {
	case !rec.Readable():
		decision.Reason = reasonUnreadable
		plan.Warnings = append(plan.Warnings, fmt.Sprintf("%s: %v", rec.Path, rec.ScanErr))
	case score.Total > p.cfg.ArchiveThreshold:
		decision.Action = m.ActionArchive
		decision.Reason = reasonStaleSingleton
	}

	plan.Add(decision)
}

func clusterReason(cluster *m.Cluster, path m.Path, action m.Action) string {
	switch action {
	case m.ActionArchive:
		return reasonArchiveMember
	case m.ActionDelete:
		return reasonDeleteMember
	default:
		if cluster.IsRepresentative(path) {
			return reasonRepresentative
		}

		return reasonRedundantKeep
	}
}

func ageDays(rec m.FileRecord, now time.Time) float64 {
	return rec.AgeAt(now).Hours() / 24
}
