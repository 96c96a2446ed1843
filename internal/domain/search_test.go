package domain

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	m "github.com/mouse-blink/sift/internal/model"
)

// searchCluster builds a cluster whose members are named m0, m1, ... in
// path order, with the first member as representative.
func searchCluster(kind m.ClusterKind, totals ...float64) (m.Cluster, map[m.Path]m.Score) {
	members := make([]m.FileRecord, len(totals))
	scores := make(map[m.Path]m.Score, len(totals))

	for i, total := range totals {
		path := m.Path(fmt.Sprintf("/data/m%d", i))
		members[i] = m.FileRecord{Path: path, Size: 1, ModTime: clusterBase, Digest: digestOf(7)}
		scores[path] = m.Score{Total: total}
	}

	return m.Cluster{
		ID:             "test-cluster",
		Kind:           kind,
		Members:        members,
		Representative: members[0].Path,
	}, scores
}

// exhaustiveMin enumerates every complete legal assignment and returns
// the cheapest total cost, as a ground truth for the search.
func exhaustiveMin(t *testing.T, engine *searchEngine, cluster m.Cluster, scores map[m.Path]m.Score) float64 {
	t.Helper()

	return minCostKeepingAtLeast(t, engine, cluster, scores, 1)
}

func TestSearchEngine_MatchesExhaustiveMinimum(t *testing.T) {
	engine := newSearchEngine(DefaultConfig())

	tests := []struct {
		name   string
		kind   m.ClusterKind
		totals []float64
	}{
		{name: "exact pair", kind: m.ClusterExact, totals: []float64{0.1, 5.1}},
		{name: "exact triple", kind: m.ClusterExact, totals: []float64{0.1, 5.1, 5.1}},
		{name: "exact mixed scores", kind: m.ClusterExact, totals: []float64{2.0, 3.0, 7.5, 1.0}},
		{name: "exact low scores", kind: m.ClusterExact, totals: []float64{0.1, 0.2, 0.3, 0.1, 0.2}},
		{name: "near low confidence", kind: m.ClusterNear, totals: []float64{1.0, 2.1, 2.1}},
		{name: "near with confident delete", kind: m.ClusterNear, totals: []float64{1.0, 3.0, 7.0}},
		{name: "near all confident", kind: m.ClusterNear, totals: []float64{6.5, 7.0, 8.0, 9.0}},
		{name: "six members", kind: m.ClusterExact, totals: []float64{0.5, 6.5, 2.0, 5.1, 0.1, 7.2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cluster, scores := searchCluster(tt.kind, tt.totals...)

			assignment, cost, err := engine.Solve(cluster, scores)
			require.NoError(t, err)
			require.Len(t, assignment, len(tt.totals))

			require.InDelta(t, exhaustiveMin(t, engine, cluster, scores), cost, 1e-9)
		})
	}
}

func TestSearchEngine_AlwaysKeepsOneMember(t *testing.T) {
	engine := newSearchEngine(DefaultConfig())

	// Every member scores high enough that deleting all of them would be
	// the cheapest unconstrained assignment.
	cluster, scores := searchCluster(m.ClusterExact, 9.0, 9.0, 9.0, 9.0)

	assignment, _, err := engine.Solve(cluster, scores)
	require.NoError(t, err)

	kept := 0

	for _, action := range assignment {
		if action == m.ActionKeep {
			kept++
		}
	}

	require.GreaterOrEqual(t, kept, 1)
}

func TestSearchEngine_ThreeIdenticalCopies(t *testing.T) {
	engine := newSearchEngine(DefaultConfig())

	// The representative scores age only; the redundant copies add the
	// exact-duplicate weight.
	cluster, scores := searchCluster(m.ClusterExact, 0.083, 5.083, 5.083)

	assignment, cost, err := engine.Solve(cluster, scores)
	require.NoError(t, err)

	require.Equal(t, m.ActionKeep, assignment["/data/m0"])
	require.Equal(t, m.ActionDelete, assignment["/data/m1"])
	require.Equal(t, m.ActionDelete, assignment["/data/m2"])

	// Strictly cheaper than retaining any second copy.
	require.Less(t, cost, minCostKeepingAtLeast(t, engine, cluster, scores, 2))
}

// minCostKeepingAtLeast is exhaustiveMin restricted to assignments that
// keep at least minKept members.
func minCostKeepingAtLeast(t *testing.T, engine *searchEngine, cluster m.Cluster, scores map[m.Path]m.Score, minKept int) float64 {
	t.Helper()

	members := orderedMembers(cluster)
	n := len(members)

	costs := make([]map[m.Action]float64, n)
	for i, member := range members {
		costs[i] = engine.stepCosts(cluster, member, scores[member.Path].Total)
	}

	best := math.Inf(1)

	total := 1
	for i := 0; i < n; i++ {
		total *= len(actionOrder)
	}

	for code := 0; code < total; code++ {
		sum := 0.0
		kept := 0
		legal := true
		rest := code

		for i := 0; i < n; i++ {
			action := actionOrder[rest%len(actionOrder)]
			rest /= len(actionOrder)

			cost, ok := costs[i][action]
			if !ok {
				legal = false
				break
			}

			if action == m.ActionKeep {
				kept++
			}

			sum += cost
		}

		if legal && kept >= minKept && sum < best {
			best = sum
		}
	}

	require.False(t, math.IsInf(best, 1))

	return best
}

func TestSearchEngine_DeleteNeedsConfidenceOutsideExactRedundancy(t *testing.T) {
	engine := newSearchEngine(DefaultConfig())

	// Near-duplicate members below the confidence threshold can never be
	// deleted, however attractive the cost would be.
	cluster, scores := searchCluster(m.ClusterNear, 1.0, 3.0, 7.0)

	assignment, _, err := engine.Solve(cluster, scores)
	require.NoError(t, err)

	require.NotEqual(t, m.ActionDelete, assignment["/data/m1"])
	require.Equal(t, m.ActionDelete, assignment["/data/m2"])
}

func TestSearchEngine_SingleMemberKeeps(t *testing.T) {
	engine := newSearchEngine(DefaultConfig())
	cluster, scores := searchCluster(m.ClusterExact, 4.0)

	assignment, cost, err := engine.Solve(cluster, scores)
	require.NoError(t, err)
	require.Equal(t, m.ActionKeep, assignment["/data/m0"])
	require.Zero(t, cost)
}

func TestSearchEngine_Deterministic(t *testing.T) {
	engine := newSearchEngine(DefaultConfig())
	cluster, scores := searchCluster(m.ClusterExact, 2.0, 3.0, 7.5, 1.0, 0.5)

	firstAssignment, firstCost, err := engine.Solve(cluster, scores)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		assignment, cost, err := engine.Solve(cluster, scores)
		require.NoError(t, err)
		require.Equal(t, firstAssignment, assignment)
		require.InDelta(t, firstCost, cost, 1e-12)
	}
}

func TestSearchEngine_RepresentativeKeepIsFree(t *testing.T) {
	engine := newSearchEngine(DefaultConfig())
	cluster, _ := searchCluster(m.ClusterExact, 0, 0)

	repCosts := engine.stepCosts(cluster, cluster.Members[0], 0)
	require.Zero(t, repCosts[m.ActionKeep])

	copyCosts := engine.stepCosts(cluster, cluster.Members[1], 0)
	require.InDelta(t, defaultKeepPenalty, copyCosts[m.ActionKeep], 1e-9)
}
