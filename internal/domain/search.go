package domain

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	m "github.com/mouse-blink/sift/internal/model"
	"github.com/mouse-blink/sift/pkg"
)

// ErrNoTerminalState reports that a cluster search exhausted its state
// space without reaching a complete assignment. Keeping is always legal
// for at least one member, so this is a defensive invariant check, not
// an expected runtime path.
var ErrNoTerminalState = errors.New("search: no legal terminal state")

// actionOrder fixes the successor generation order so equal-cost plans
// resolve identically on every run.
var actionOrder = []m.Action{m.ActionKeep, m.ActionArchive, m.ActionDelete}

// searchEngine finds the minimum-cost complete action assignment for
// one duplicate cluster via best-first search over partial assignments.
type searchEngine struct {
	cfg Config
}

func newSearchEngine(cfg Config) *searchEngine {
	return &searchEngine{cfg: cfg.normalized()}
}

// searchState is a partial assignment over the cluster's members in
// fixed ascending-path order. actions encodes the assigned prefix one
// byte per member, which doubles as the memoization key.
type searchState struct {
	actions string
	g       float64
	kept    int
}

func (s searchState) depth() int { return len(s.actions) }

// Solve returns the optimal assignment and its total cost. Members are
// processed in ascending path order; the priority queue orders states
// by f = g + h with FIFO tie-breaking, and the first terminal state
// popped is optimal because h never overestimates.
func (e *searchEngine) Solve(cluster m.Cluster, scores map[m.Path]m.Score) (map[m.Path]m.Action, float64, error) {
	members := orderedMembers(cluster)
	n := len(members)

	// Per-member step costs and legality, evaluated in isolation
	// (ignoring the must-keep-one constraint).
	costs := make([]map[m.Action]float64, n)
	for i, member := range members {
		costs[i] = e.stepCosts(cluster, member, scores[member.Path].Total)
	}

	// h(depth) = sum over unassigned members of their cheapest isolated
	// step cost. Admissible: a real completion assigns each member one
	// action costing at least that minimum. Consistent: assigning a
	// member reduces h by exactly its minimum, never more than the true
	// step cost.
	suffixMin := make([]float64, n+1)
	for i := n - 1; i >= 0; i-- {
		suffixMin[i] = suffixMin[i+1] + minCost(costs[i])
	}

	queue := pkg.NewPriorityQueue[searchState]()
	queue.Push(searchState{}, suffixMin[0])

	// Visited memoization keyed by the canonical prefix encoding keeps
	// equivalent partial states from being expanded twice.
	visited := make(map[string]struct{})

	expanded := 0

	for {
		state, ok := queue.Pop()
		if !ok {
			return nil, 0, fmt.Errorf("%w: cluster %s", ErrNoTerminalState, cluster.ID)
		}

		if _, seen := visited[state.actions]; seen {
			continue
		}

		visited[state.actions] = struct{}{}
		expanded++

		if state.depth() == n {
			if state.kept == 0 {
				// Unreachable: the final slot only admits keep when
				// nothing has been kept yet.
				continue
			}

			slog.Debug("cluster search finished",
				"cluster", cluster.ID, "members", n, "cost", state.g, "expanded", expanded)

			return decodeAssignment(members, state.actions), state.g, nil
		}

		idx := state.depth()
		lastSlot := idx == n-1

		for _, action := range actionOrder {
			cost, legal := costs[idx][action]
			if !legal {
				continue
			}

			// Safety invariant: a cluster must end with at least one
			// kept member, so the final slot cannot take a non-keep
			// action while nothing is kept.
			if lastSlot && state.kept == 0 && action != m.ActionKeep {
				continue
			}

			next := searchState{
				actions: state.actions + string(actionByte(action)),
				g:       state.g + cost,
				kept:    state.kept,
			}
			if action == m.ActionKeep {
				next.kept++
			}

			queue.Push(next, next.g+suffixMin[idx+1])
		}
	}
}

// stepCosts returns the legal actions for one member with their costs.
//
// keep costs nothing for the designated representative and a redundancy
// penalty otherwise. archive and delete trade a flat cost against a
// benefit proportional to the member's score; delete is only legal for
// exact-duplicate non-representatives or members whose score clears the
// deletion-confidence threshold.
func (e *searchEngine) stepCosts(cluster m.Cluster, member m.FileRecord, score float64) map[m.Action]float64 {
	isRep := cluster.IsRepresentative(member.Path)

	costs := make(map[m.Action]float64, 3)

	if isRep {
		costs[m.ActionKeep] = 0
	} else {
		costs[m.ActionKeep] = e.cfg.KeepPenalty
	}

	costs[m.ActionArchive] = e.cfg.ArchiveCost - e.cfg.ArchiveBenefit*score

	deleteLegal := (cluster.Kind == m.ClusterExact && !isRep) || score > e.cfg.DeleteConfidence
	if deleteLegal {
		costs[m.ActionDelete] = e.cfg.DeleteCost - e.cfg.DeleteBenefit*score
	}

	return costs
}

func orderedMembers(cluster m.Cluster) []m.FileRecord {
	members := make([]m.FileRecord, len(cluster.Members))
	copy(members, cluster.Members)
	sort.Slice(members, func(i, j int) bool { return members[i].Path < members[j].Path })

	return members
}

func minCost(costs map[m.Action]float64) float64 {
	first := true

	var min float64

	for _, action := range actionOrder {
		cost, ok := costs[action]
		if !ok {
			continue
		}

		if first || cost < min {
			min = cost
			first = false
		}
	}

	return min
}

func decodeAssignment(members []m.FileRecord, actions string) map[m.Path]m.Action {
	assignment := make(map[m.Path]m.Action, len(members))
	for i, member := range members {
		assignment[member.Path] = actionFromByte(actions[i])
	}

	return assignment
}

func actionByte(action m.Action) byte {
	switch action {
	case m.ActionArchive:
		return 'a'
	case m.ActionDelete:
		return 'd'
	default:
		return 'k'
	}
}

func actionFromByte(b byte) m.Action {
	switch b {
	case 'a':
		return m.ActionArchive
	case 'd':
		return m.ActionDelete
	default:
		return m.ActionKeep
	}
}
