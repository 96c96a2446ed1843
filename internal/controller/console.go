package controller

import (
	"bytes"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "github.com/mouse-blink/sift/internal/model"
)

var (
	keepLabel    = color.New(color.FgGreen).SprintFunc()
	archiveLabel = color.New(color.FgYellow).SprintFunc()
	deleteLabel  = color.New(color.FgRed).SprintFunc()
	warnLabel    = color.New(color.FgYellow, color.Bold).SprintFunc()
)

// ConsoleUI implements UI using the cobra command's output stream.
type ConsoleUI struct {
	cmd *cobra.Command
}

// NewConsoleUI creates a ConsoleUI writing through cmd.
func NewConsoleUI(cmd *cobra.Command) *ConsoleUI {
	return &ConsoleUI{cmd: cmd}
}

// ScanStarted announces the fingerprinting pass.
func (c *ConsoleUI) ScanStarted(total int) {
	c.printf("Fingerprinting %d file(s)...\n", total)
}

// ScanProgress is a no-op; the console UI only prints start and end.
func (c *ConsoleUI) ScanProgress(_, _ int) {}

// ScanFinished closes the fingerprinting announcement.
func (c *ConsoleUI) ScanFinished() {
	c.printf("Fingerprinting done.\n")
}

// ShowSummary prints the per-action table plus warnings.
func (c *ConsoleUI) ShowSummary(plan *m.Plan, savedTo m.Path) error {
	counts := plan.CountByAction()
	sizes := plan.BytesByAction()

	c.printf("\n%s", renderSummaryTable(counts, sizes, len(plan.Decisions)))
	c.printf("Reclaimable: %s\n", humanize.Bytes(uint64(sizes[m.ActionArchive]+sizes[m.ActionDelete])))

	c.printWarnings(plan)
	c.printf("Report: %s\n", savedTo)

	return nil
}

// ShowPlan prints every decision of a saved plan followed by the
// summary totals.
func (c *ConsoleUI) ShowPlan(plan *m.Plan, loadedFrom m.Path) error {
	c.printf("Plan %s\n\n", loadedFrom)
	c.printf("%s", renderPlanTable(plan))

	counts := plan.CountByAction()
	c.printf("\nTotal: %d | Keep: %d | Archive: %d | Delete: %d\n",
		len(plan.Decisions), counts[m.ActionKeep], counts[m.ActionArchive], counts[m.ActionDelete])

	c.printWarnings(plan)

	return nil
}

func (c *ConsoleUI) printWarnings(plan *m.Plan) {
	if plan.Truncated {
		c.printf("%s plan is partial (budget or max-files cap reached)\n", warnLabel("truncated:"))
	}

	for _, warning := range plan.Warnings {
		c.printf("%s %s\n", warnLabel("warning:"), warning)
	}
}

func (c *ConsoleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(c.cmd.OutOrStdout(), format, args...)
}

func actionLabel(action m.Action) string {
	switch action {
	case m.ActionArchive:
		return archiveLabel(string(action))
	case m.ActionDelete:
		return deleteLabel(string(action))
	default:
		return keepLabel(string(action))
	}
}

func renderSummaryTable(counts map[m.Action]int, sizes map[m.Action]int64, total int) string {
	var buffer bytes.Buffer

	table := tablewriter.NewWriter(&buffer)
	table.SetHeader([]string{"Action", "Files", "Size"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_RIGHT})

	for _, action := range []m.Action{m.ActionKeep, m.ActionArchive, m.ActionDelete} {
		table.Append([]string{
			actionLabel(action),
			fmt.Sprintf("%d", counts[action]),
			humanize.Bytes(uint64(sizes[action])),
		})
	}

	table.SetFooter([]string{"total", fmt.Sprintf("%d", total), ""})
	table.Render()

	return buffer.String()
}

func renderPlanTable(plan *m.Plan) string {
	var buffer bytes.Buffer

	table := tablewriter.NewWriter(&buffer)
	table.SetHeader([]string{"Path", "Action", "Score", "Age (d)", "Size", "Cluster"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	for _, d := range plan.Sorted() {
		cluster := d.ClusterID
		if cluster == "" {
			cluster = "-"
		}

		table.Append([]string{
			string(d.Path),
			actionLabel(d.Action),
			fmt.Sprintf("%.2f", d.Score.Total),
			fmt.Sprintf("%.0f", d.AgeDays),
			humanize.Bytes(uint64(d.Size)),
			cluster,
		})
	}

	table.Render()

	return buffer.String()
}
