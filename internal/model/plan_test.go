package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlan_SortedOrdersByPath(t *testing.T) {
	plan := NewPlan()
	plan.Add(Decision{Path: "/b", Action: ActionKeep})
	plan.Add(Decision{Path: "/a", Action: ActionDelete})
	plan.Add(Decision{Path: "/c", Action: ActionArchive})

	sorted := plan.Sorted()

	require.Len(t, sorted, 3)
	require.Equal(t, Path("/a"), sorted[0].Path)
	require.Equal(t, Path("/b"), sorted[1].Path)
	require.Equal(t, Path("/c"), sorted[2].Path)
}

func TestPlan_AddReplacesExistingDecision(t *testing.T) {
	plan := NewPlan()
	plan.Add(Decision{Path: "/a", Action: ActionDelete})
	plan.Add(Decision{Path: "/a", Action: ActionKeep})

	require.Len(t, plan.Decisions, 1)
	require.Equal(t, ActionKeep, plan.Decisions["/a"].Action)
}

func TestPlan_Tallies(t *testing.T) {
	plan := NewPlan()
	plan.Add(Decision{Path: "/a", Size: 100, Action: ActionKeep})
	plan.Add(Decision{Path: "/b", Size: 200, Action: ActionDelete})
	plan.Add(Decision{Path: "/c", Size: 300, Action: ActionDelete})
	plan.Add(Decision{Path: "/d", Size: 50, Action: ActionArchive})

	counts := plan.CountByAction()
	require.Equal(t, 1, counts[ActionKeep])
	require.Equal(t, 1, counts[ActionArchive])
	require.Equal(t, 2, counts[ActionDelete])

	bytes := plan.BytesByAction()
	require.Equal(t, int64(100), bytes[ActionKeep])
	require.Equal(t, int64(50), bytes[ActionArchive])
	require.Equal(t, int64(500), bytes[ActionDelete])
}

func TestDigest_Sentinel(t *testing.T) {
	var zero Digest
	require.True(t, zero.IsSentinel())

	var nonzero Digest
	nonzero[0] = 1
	require.False(t, nonzero.IsSentinel())
}

func TestDecision_Clustered(t *testing.T) {
	require.False(t, Decision{}.Clustered())
	require.True(t, Decision{ClusterID: "exact-abc"}.Clustered())
}
