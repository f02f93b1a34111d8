package app

import (
	"fmt"
	"io"
	"strings"
	"time"

	"inspector/internal/core/ports"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")).Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FBBF24")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748B")).Italic(true)
)

// PrintSummary renders a terminal summary of res to w.
func PrintSummary(w io.Writer, res ports.CheckResult) {
	fmt.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Checked %d files in %v", res.Checked, res.Duration.Round(time.Millisecond))))

	if res.Failed > 0 {
		fmt.Fprintln(w, failureStyle.Render(fmt.Sprintf("FOUND %d FILES WITH ERRORS:", res.Failed)))
		for _, f := range res.Files {
			if f.Status == ports.StatusOK {
				continue
			}
			fmt.Fprintf(w, "   [%s] %v\n", f.Status, f.Err)
		}
	} else {
		fmt.Fprintln(w, successStyle.Render("No file errors found."))
	}

	if len(res.UnknownParents) > 0 {
		fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("FOUND %d CLASSES WITH UNDECLARED PARENTS:", len(res.UnknownParents))))
		for _, c := range res.UnknownParents {
			fmt.Fprintf(w, "   %s extends %s in %s:%d\n", c.FQN, c.Parent, c.File, c.Line)
		}
	}

	fmt.Fprintln(w, statusStyle.Render(fmt.Sprintf(
		"units built: %d, classes indexed: %d, cache: %d memory hits, %d disk hits, %d misses",
		res.UnitsBuilt, res.Classes, res.Cache.MemoryHits, res.Cache.DiskHits, res.Cache.Misses,
	)))
	fmt.Fprintln(w, statusStyle.Render("run "+res.RunID))
}
