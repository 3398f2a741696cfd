// Package report renders an aggregated Result into the structured JSON
// report, a markdown summary and its HTML rendering.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/raushankrgupta/style-auditor/aggregator"
	"github.com/raushankrgupta/style-auditor/models"
)

// Artifact names.
const (
	StructuredName = "style-analysis.json"
	SummaryName    = "style-report.md"
	HTMLName       = "style-report.html"
	ManifestName   = "run.json"
)

// Documents is the emitted report pair.
type Documents struct {
	Structured []byte
	Summary    string
}

// Meta is run context shown in the summary.
type Meta struct {
	Target        string
	ScreenshotDir string
	Screenshots   []string
}

// Emit projects result into its structured and summary forms. It does not
// modify result.
func Emit(result *aggregator.Result, meta Meta) (Documents, error) {
	if result == nil {
		result = aggregator.New()
	}
	structured, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return Documents{}, fmt.Errorf("marshal report: %w", err)
	}
	return Documents{
		Structured: structured,
		Summary:    Summary(result, meta),
	}, nil
}

// Summary renders the markdown report.
func Summary(r *aggregator.Result, meta Meta) string {
	var b strings.Builder

	title := "Website Style Analysis Report"
	if meta.Target != "" {
		title = fmt.Sprintf("%s Style Analysis Report", meta.Target)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	b.WriteString("## Typography\n")
	fmt.Fprintf(&b, "- **Fonts**: %s\n", strings.Join(r.Typography.Fonts.Values(), ", "))
	fmt.Fprintf(&b, "- **Font Sizes**: %s\n", strings.Join(r.Typography.FontSizes.Values(), ", "))
	fmt.Fprintf(&b, "- **Font Weights**: %s\n", strings.Join(r.Typography.FontWeights.Values(), ", "))
	fmt.Fprintf(&b, "- **Line Heights**: %s\n\n", strings.Join(r.Typography.LineHeights.Values(), ", "))

	b.WriteString("## Colors\n")
	b.WriteString("### Text Colors\n")
	list(&b, r.Colors.TextColors.Values())
	b.WriteString("\n### Background Colors\n")
	list(&b, r.Colors.Backgrounds.Values())

	b.WriteString("\n## Spacing\n")
	b.WriteString("### Margins\n")
	list(&b, r.Spacing.Margins.Values())
	b.WriteString("\n### Padding\n")
	list(&b, r.Spacing.Paddings.Values())

	b.WriteString("\n## Responsive Breakpoints\n")
	fmt.Fprintf(&b, "- **Mobile**: %s\n", r.Breakpoints.Mobile)
	fmt.Fprintf(&b, "- **Tablet**: %s\n", r.Breakpoints.Tablet)
	fmt.Fprintf(&b, "- **Desktop**: %s\n", r.Breakpoints.Desktop)

	b.WriteString("\n## Animations\n")
	list(&b, r.Animations.Values())

	if len(meta.Screenshots) > 0 {
		b.WriteString("\n## Screenshots\n")
		if meta.ScreenshotDir != "" {
			fmt.Fprintf(&b, "Screenshots have been saved to: %s\n", meta.ScreenshotDir)
		}
		list(&b, meta.Screenshots)
	}
	return b.String()
}

func list(b *strings.Builder, values []string) {
	for _, v := range values {
		fmt.Fprintf(b, "- %s\n", v)
	}
}

// Manifest serialises m as indented JSON.
func Manifest(m *models.RunManifest) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return buf.Bytes(), nil
}
