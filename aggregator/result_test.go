package aggregator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raushankrgupta/style-auditor/models"
)

func sample(props map[string]string) models.StyleSample {
	return models.SampleFromMap(props)
}

func TestAbsorbIsIdempotent(t *testing.T) {
	s := sample(map[string]string{
		"fontFamily":      "Inter, sans-serif",
		"fontSize":        "16px",
		"color":           "rgb(17, 17, 17)",
		"backgroundColor": "rgb(255, 255, 255)",
		"margin":          "8px",
		"animation":       "fade 1s ease 0s 1 normal none running",
	})

	once := New()
	once.Absorb(s)

	twice := New()
	twice.Absorb(s)
	twice.Absorb(s)

	a, err := json.Marshal(once)
	require.NoError(t, err)
	b, err := json.Marshal(twice)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestAbsorbKeepsFirstSeenOrder(t *testing.T) {
	r := New()
	for _, size := range []string{"32px", "24px", "32px", "16px", "24px", "32px"} {
		r.Absorb(sample(map[string]string{"fontSize": size}))
	}
	assert.Equal(t, []string{"32px", "24px", "16px"}, r.Typography.FontSizes.Values())
}

func TestAbsorbExcludesSentinels(t *testing.T) {
	r := New()
	r.Absorb(sample(map[string]string{
		"backgroundColor": "rgba(0, 0, 0, 0)",
		"color":           "rgba(0,0,0,0)",
		"margin":          "0px",
		"padding":         "0px 0px 0px 0px",
		"animation":       "none 0s ease 0s 1 normal none running",
		"maxWidth":        "none",
	}))
	r.Absorb(sample(map[string]string{"backgroundColor": "transparent", "animation": "none"}))

	assert.Zero(t, r.Colors.Backgrounds.Len())
	assert.Zero(t, r.Colors.TextColors.Len())
	assert.Zero(t, r.Spacing.Margins.Len())
	assert.Zero(t, r.Spacing.Paddings.Len())
	assert.Zero(t, r.Animations.Len())
	assert.Zero(t, r.Layout.Containers.Len())
}

func TestAbsorbSkipsAbsentAndEmptyFields(t *testing.T) {
	r := New()
	r.Absorb(models.StyleSample{FontSize: models.Field{Value: "", Set: true}})
	r.Absorb(models.StyleSample{})
	assert.True(t, r.Empty())
}

func TestAbsorbLeavesReservedSetsEmpty(t *testing.T) {
	r := New()
	r.Absorb(sample(map[string]string{
		"borderColor": "rgb(200, 200, 200)",
		"gap":         "12px",
	}))
	assert.Zero(t, r.Colors.BorderColors.Len())
	assert.Zero(t, r.Colors.AccentColors.Len())
	assert.Zero(t, r.Spacing.Gaps.Len())
}

func TestAbsorbLayoutPatterns(t *testing.T) {
	r := New()
	r.Absorb(sample(map[string]string{"display": "flex", "flexDirection": "column", "maxWidth": "1200px"}))
	r.Absorb(sample(map[string]string{"display": "grid", "gridTemplateColumns": "300px 300px"}))
	r.Absorb(sample(map[string]string{"display": "block", "gridTemplateColumns": "none"}))
	r.Absorb(sample(map[string]string{"display": "inline-flex"}))

	assert.Equal(t, []string{"1200px"}, r.Layout.Containers.Values())
	assert.Equal(t, []string{"300px 300px"}, r.Layout.GridSystems.Values())
	assert.Equal(t, []string{"flex column", "inline-flex row"}, r.Layout.FlexboxPatterns.Values())
}

func TestSetBreakpointFirstWriteWins(t *testing.T) {
	r := New()
	changed, err := r.SetBreakpoint("mobile", "375px - Container width: 375px")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = r.SetBreakpoint("mobile", "375px - Container width: 360px")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "375px - Container width: 375px", r.Breakpoints.Mobile)

	_, err = r.SetBreakpoint("watch", "200px")
	assert.Error(t, err)
}

func TestMergePreservesOrder(t *testing.T) {
	home := New()
	home.Absorb(sample(map[string]string{"fontSize": "32px", "color": "rgb(0, 0, 0)"}))
	home.Absorb(sample(map[string]string{"fontSize": "24px"}))

	listings := New()
	listings.Absorb(sample(map[string]string{"fontSize": "14px"}))
	listings.Absorb(sample(map[string]string{"fontSize": "32px", "color": "rgb(255, 0, 0)"}))
	listings.SetBreakpoint("desktop", "1440px - Container width: 1440px")

	merged := MergeAll(home, nil, listings)
	assert.Equal(t, []string{"32px", "24px", "14px"}, merged.Typography.FontSizes.Values())
	assert.Equal(t, []string{"rgb(0, 0, 0)", "rgb(255, 0, 0)"}, merged.Colors.TextColors.Values())
	assert.Equal(t, "1440px - Container width: 1440px", merged.Breakpoints.Desktop)

	// inputs are untouched
	assert.Equal(t, []string{"32px", "24px"}, home.Typography.FontSizes.Values())
}

func TestAbsorbComponentDedupsByStyle(t *testing.T) {
	r := New()
	styles := map[string]string{"backgroundColor": "rgb(0, 80, 160)", "borderRadius": "4px"}
	obs := models.Observation{Selector: "button", Found: true, Sample: sample(styles)}
	require.NoError(t, r.AbsorbComponent(ComponentButton, obs))

	obs.Selector = ".btn"
	require.NoError(t, r.AbsorbComponent(ComponentButton, obs))
	require.NoError(t, r.AbsorbComponent(ComponentButton, models.NoObservation("button", 1)))

	assert.Equal(t, 1, r.Components.Buttons.Len())
	assert.Equal(t, "button", r.Components.Buttons.Items()[0].Selector)
	assert.Error(t, r.AbsorbComponent("footer", obs))
}

func TestResultJSONSchema(t *testing.T) {
	r := New()
	r.Absorb(sample(map[string]string{"fontFamily": "Georgia", "padding": "16px"}))
	r.SetBreakpoint("tablet", "768px - Container width: 768px")

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{"typography", "colors", "spacing", "layout", "components", "breakpoints", "animations"} {
		assert.Contains(t, doc, key)
	}
	assert.Equal(t, []any{}, doc["animations"])
	assert.Equal(t, []any{"Georgia"}, doc["typography"].(map[string]any)["fonts"])
	assert.Equal(t, []any{}, doc["components"].(map[string]any)["buttons"])
	assert.Equal(t, "768px - Container width: 768px", doc["breakpoints"].(map[string]any)["tablet"])
	assert.Equal(t, "", doc["breakpoints"].(map[string]any)["mobile"])

	var back Result
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []string{"16px"}, back.Spacing.Paddings.Values())
}
