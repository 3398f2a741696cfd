package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/raushankrgupta/style-auditor/models"
)

func printSummary(w io.Writer, m *models.RunManifest, outDir string) {
	bold := color.New(color.Bold)
	ok, failed, skipped := m.Counts()

	fmt.Fprintln(w)
	bold.Fprintln(w, "=== Style Audit Summary ===")
	fmt.Fprintf(w, "  Run:      %s\n", m.RunID)
	fmt.Fprintf(w, "  Target:   %s\n", m.TargetURL)
	fmt.Fprintf(w, "  State:    %s\n", stateText(m.State))
	if m.Error != "" {
		fmt.Fprintf(w, "  Error:    %s\n", m.Error)
	}
	fmt.Fprintf(w, "  Pages:    %s, %s, %s\n",
		color.New(color.FgGreen).Sprintf("%d ok", ok),
		color.New(color.FgRed).Sprintf("%d failed", failed),
		color.New(color.FgYellow).Sprintf("%d skipped", skipped))

	for _, p := range m.Pages {
		line := fmt.Sprintf("    - %-10s %-8s %s", p.Name, statusText(p.Status), p.URL)
		if p.Status == models.PageOK {
			line += fmt.Sprintf(" (%d observations)", p.Observations)
		} else if p.Reason != "" {
			line += fmt.Sprintf(" (%s)", p.Reason)
		}
		fmt.Fprintln(w, line)
	}

	if !m.FinishedAt.IsZero() {
		fmt.Fprintf(w, "  Duration: %s\n", m.FinishedAt.Sub(m.StartedAt).Round(time.Millisecond))
	}
	fmt.Fprintf(w, "  Output:   %s\n", outDir)
}

func stateText(s models.RunState) string {
	if s == models.StateDone {
		return color.New(color.FgGreen).Sprint(s)
	}
	return color.New(color.FgRed).Sprint(s)
}

func statusText(s models.PageStatus) string {
	switch s {
	case models.PageOK:
		return color.New(color.FgGreen).Sprint(s)
	case models.PageFailed:
		return color.New(color.FgRed).Sprint(s)
	default:
		return color.New(color.FgYellow).Sprint(s)
	}
}
