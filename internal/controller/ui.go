// Package controller provides output adapters for presenting scan
// progress and decision plans.
package controller

import (
	"os"

	"github.com/mattn/go-isatty"

	m "github.com/mouse-blink/sift/internal/model"
)

// UI is the presentation boundary for the workflow. Implementations can
// print plain text or drive an interactive terminal.
type UI interface {
	// ScanStarted announces that total files are about to be
	// fingerprinted.
	ScanStarted(total int)

	// ScanProgress reports fingerprinting progress. It may be called
	// from worker goroutines.
	ScanProgress(done, total int)

	// ScanFinished closes out the progress display.
	ScanFinished()

	// ShowSummary renders the per-action totals after a plan run.
	ShowSummary(plan *m.Plan, savedTo m.Path) error

	// ShowPlan renders a previously saved plan in full.
	ShowPlan(plan *m.Plan, loadedFrom m.Path) error
}

// IsTTY reports whether the file is an interactive terminal.
func IsTTY(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
