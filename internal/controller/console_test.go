package controller

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	m "github.com/mouse-blink/sift/internal/model"
)

func consoleForTest(t *testing.T) (*ConsoleUI, *bytes.Buffer) {
	t.Helper()

	// Escape codes would make the assertions terminal-dependent.
	previous := color.NoColor
	color.NoColor = true

	t.Cleanup(func() { color.NoColor = previous })

	buffer := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(buffer)

	return NewConsoleUI(cmd), buffer
}

func summaryPlan() *m.Plan {
	plan := m.NewPlan()
	plan.Add(m.Decision{Path: "/data/keep.txt", Size: 100, Action: m.ActionKeep, Reason: "no cleanup signal"})
	plan.Add(m.Decision{
		Path:      "/data/copy.txt",
		Size:      2048,
		AgeDays:   12,
		Action:    m.ActionDelete,
		Score:     m.Score{Total: 5.08},
		ClusterID: "exact-0101010101ab",
		Reason:    "redundant duplicate",
	})
	plan.Add(m.Decision{Path: "/data/old.iso", Size: 4096, AgeDays: 400, Action: m.ActionArchive, Reason: "stale singleton"})

	return plan
}

func TestConsoleUI_ShowSummary(t *testing.T) {
	ui, buffer := consoleForTest(t)

	require.NoError(t, ui.ShowSummary(summaryPlan(), "/reports/plan-20240301-120000"))

	out := buffer.String()
	require.Contains(t, out, "keep")
	require.Contains(t, out, "archive")
	require.Contains(t, out, "delete")
	require.Contains(t, out, "Reclaimable: 6.1 kB")
	require.Contains(t, out, "Report: /reports/plan-20240301-120000")
	require.NotContains(t, out, "truncated:")
}

func TestConsoleUI_ShowSummaryWarnings(t *testing.T) {
	ui, buffer := consoleForTest(t)

	plan := summaryPlan()
	plan.Truncated = true
	plan.Warnings = []string{"scan stopped at max-files cap (3)"}

	require.NoError(t, ui.ShowSummary(plan, "/reports/plan-x"))

	out := buffer.String()
	require.Contains(t, out, "truncated: plan is partial")
	require.Contains(t, out, "warning: scan stopped at max-files cap (3)")
}

func TestConsoleUI_ShowPlan(t *testing.T) {
	ui, buffer := consoleForTest(t)

	require.NoError(t, ui.ShowPlan(summaryPlan(), "/reports/plan-x"))

	out := buffer.String()
	require.Contains(t, out, "Plan /reports/plan-x")
	require.Contains(t, out, "/data/keep.txt")
	require.Contains(t, out, "/data/copy.txt")
	require.Contains(t, out, "/data/old.iso")
	require.Contains(t, out, "exact-0101010101ab")
	require.Contains(t, out, "Total: 3 | Keep: 1 | Archive: 1 | Delete: 1")
}

func TestConsoleUI_ScanAnnouncements(t *testing.T) {
	ui, buffer := consoleForTest(t)

	ui.ScanStarted(42)
	ui.ScanProgress(10, 42)
	ui.ScanFinished()

	out := buffer.String()
	require.Contains(t, out, "Fingerprinting 42 file(s)...")
	require.Contains(t, out, "Fingerprinting done.")
}
