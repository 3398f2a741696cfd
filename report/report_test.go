package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/raushankrgupta/style-auditor/aggregator"
	"github.com/raushankrgupta/style-auditor/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult(t *testing.T) *aggregator.Result {
	t.Helper()
	r := aggregator.New()
	r.Absorb(models.SampleFromMap(map[string]string{
		"fontFamily":      "Inter, sans-serif",
		"fontSize":        "32px",
		"color":           "rgb(17, 17, 17)",
		"backgroundColor": "rgb(255, 255, 255)",
		"margin":          "0px 0px 16px",
		"padding":         "8px",
		"animation":       "fade 1s ease 0s 1 normal none running",
	}))
	r.Absorb(models.SampleFromMap(map[string]string{"fontSize": "24px"}))
	_, err := r.SetBreakpoint("mobile", "375px - Container width: 375px")
	require.NoError(t, err)
	return r
}

func TestEmitStructuredMatchesResult(t *testing.T) {
	r := sampleResult(t)
	docs, err := Emit(r, Meta{})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(docs.Structured, &decoded))
	for _, key := range []string{"typography", "colors", "spacing", "layout", "components", "breakpoints", "animations"} {
		assert.Contains(t, decoded, key)
	}

	typography := decoded["typography"].(map[string]any)
	assert.Equal(t, []any{"32px", "24px"}, typography["fontSizes"])
	assert.Equal(t, []any{}, typography["lineHeights"])
}

func TestEmitDoesNotMutateResult(t *testing.T) {
	r := sampleResult(t)
	before, err := json.Marshal(r)
	require.NoError(t, err)

	_, err = Emit(r, Meta{Target: "https://example.com"})
	require.NoError(t, err)

	after, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestSummaryHeadingsAndValues(t *testing.T) {
	docs, err := Emit(sampleResult(t), Meta{Target: "example.com"})
	require.NoError(t, err)
	s := docs.Summary

	assert.True(t, strings.HasPrefix(s, "# example.com Style Analysis Report\n"))
	for _, heading := range []string{
		"## Typography", "## Colors", "### Text Colors", "### Background Colors",
		"## Spacing", "### Margins", "### Padding", "## Responsive Breakpoints", "## Animations",
	} {
		assert.Contains(t, s, heading+"\n")
	}
	assert.Contains(t, s, "- **Font Sizes**: 32px, 24px\n")
	assert.Contains(t, s, "- rgb(17, 17, 17)\n")
	assert.Contains(t, s, "- **Mobile**: 375px - Container width: 375px\n")
	assert.Contains(t, s, "- fade 1s ease 0s 1 normal none running\n")
	assert.NotContains(t, s, "## Screenshots")
}

func TestSummaryScreenshotsSection(t *testing.T) {
	s := Summary(aggregator.New(), Meta{
		ScreenshotDir: "out/screenshots",
		Screenshots:   []string{"screenshots/home-full.png"},
	})
	assert.Contains(t, s, "## Screenshots\nScreenshots have been saved to: out/screenshots\n- screenshots/home-full.png\n")
}

func TestEmitEmptyResult(t *testing.T) {
	docs, err := Emit(nil, Meta{})
	require.NoError(t, err)
	assert.Contains(t, string(docs.Structured), `"fonts": []`)
	assert.Contains(t, docs.Summary, "# Website Style Analysis Report")
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML(Summary(sampleResult(t), Meta{}))
	require.NoError(t, err)

	out := string(html)
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<h2>Typography</h2>")
	assert.Contains(t, out, "<strong>Font Sizes</strong>: 32px, 24px")
	assert.True(t, strings.HasSuffix(out, "</html>\n"))
}

func TestManifest(t *testing.T) {
	m := &models.RunManifest{
		RunID:     "run-1",
		TargetURL: "https://example.com/?a=1&b=2",
		State:     models.StateDone,
		StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Pages:     []models.PageResult{{Name: "home", Status: models.PageOK}},
	}
	data, err := Manifest(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"target_url": "https://example.com/?a=1&b=2"`)

	var back models.RunManifest
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "run-1", back.RunID)
	assert.Equal(t, models.PageOK, back.Pages[0].Status)
}
