// Package aggregator folds style samples into canonical value sets per
// visual category. A Result is owned by a single goroutine; concurrent page
// analyses each fill a private Result and the run merges them afterwards.
package aggregator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/raushankrgupta/style-auditor/models"
)

type Typography struct {
	Fonts       OrderedSet `json:"fonts"`
	FontSizes   OrderedSet `json:"fontSizes"`
	FontWeights OrderedSet `json:"fontWeights"`
	LineHeights OrderedSet `json:"lineHeights"`
}

type Colors struct {
	Backgrounds  OrderedSet `json:"backgrounds"`
	TextColors   OrderedSet `json:"textColors"`
	BorderColors OrderedSet `json:"borderColors"`
	AccentColors OrderedSet `json:"accentColors"`
}

type Spacing struct {
	Margins  OrderedSet `json:"margins"`
	Paddings OrderedSet `json:"paddings"`
	Gaps     OrderedSet `json:"gaps"`
}

type Layout struct {
	Containers      OrderedSet `json:"containers"`
	GridSystems     OrderedSet `json:"gridSystems"`
	FlexboxPatterns OrderedSet `json:"flexboxPatterns"`
}

type Components struct {
	Buttons    ComponentList `json:"buttons"`
	Cards      ComponentList `json:"cards"`
	Navigation ComponentList `json:"navigation"`
}

// Breakpoints maps each viewport label to a description of the layout
// observed at that width.
type Breakpoints struct {
	Mobile  string `json:"mobile"`
	Tablet  string `json:"tablet"`
	Desktop string `json:"desktop"`
}

// Get returns the description recorded for label.
func (b *Breakpoints) Get(label string) string {
	if p := b.slot(label); p != nil {
		return *p
	}
	return ""
}

func (b *Breakpoints) slot(label string) *string {
	switch label {
	case models.Mobile.Name:
		return &b.Mobile
	case models.Tablet.Name:
		return &b.Tablet
	case models.Desktop.Name:
		return &b.Desktop
	}
	return nil
}

// Result is the run-scoped accumulator. Its JSON form is the structured report.
type Result struct {
	Typography  Typography  `json:"typography"`
	Colors      Colors      `json:"colors"`
	Spacing     Spacing     `json:"spacing"`
	Layout      Layout      `json:"layout"`
	Components  Components  `json:"components"`
	Breakpoints Breakpoints `json:"breakpoints"`
	Animations  OrderedSet  `json:"animations"`
}

// New returns an empty Result.
func New() *Result {
	return &Result{}
}

// Absorb routes every populated field of s into its category. Sentinel
// values that mean "nothing here" are dropped. Absorbing a sample twice
// leaves the Result unchanged after the first time.
func (r *Result) Absorb(s models.StyleSample) {
	addIf(&r.Typography.Fonts, s.FontFamily, nil)
	addIf(&r.Typography.FontSizes, s.FontSize, nil)
	addIf(&r.Typography.FontWeights, s.FontWeight, nil)
	addIf(&r.Typography.LineHeights, s.LineHeight, nil)

	addIf(&r.Colors.TextColors, s.Color, isTransparent)
	addIf(&r.Colors.Backgrounds, s.BackgroundColor, isTransparent)

	addIf(&r.Spacing.Margins, s.Margin, isZero)
	addIf(&r.Spacing.Paddings, s.Padding, isZero)

	addIf(&r.Layout.Containers, s.MaxWidth, isNone)
	display := strings.TrimSpace(s.Display.Value)
	if s.Display.Present() {
		switch display {
		case "grid", "inline-grid":
			addIf(&r.Layout.GridSystems, s.GridTemplateColumns, isNone)
		case "flex", "inline-flex":
			direction := "row"
			if s.FlexDirection.Present() {
				direction = s.FlexDirection.Value
			}
			r.Layout.FlexboxPatterns.Add(display + " " + direction)
		}
	}

	addIf(&r.Animations, s.Animation, isNoAnimation)
}

// ComponentKind selects one of the component lists.
type ComponentKind string

const (
	ComponentButton     ComponentKind = "button"
	ComponentCard       ComponentKind = "card"
	ComponentNavigation ComponentKind = "navigation"
)

// AbsorbComponent records the style of a component instance. Instances with
// identical styles are kept once.
func (r *Result) AbsorbComponent(kind ComponentKind, obs models.Observation) error {
	if !obs.Found {
		return nil
	}
	var list *ComponentList
	switch kind {
	case ComponentButton:
		list = &r.Components.Buttons
	case ComponentCard:
		list = &r.Components.Cards
	case ComponentNavigation:
		list = &r.Components.Navigation
	default:
		return fmt.Errorf("unknown component kind %q", kind)
	}
	list.Add(ComponentStyle{Selector: obs.Selector, Styles: obs.Sample.Map()})
	return nil
}

// SetBreakpoint records the description for a viewport label. The first
// description recorded for a label wins; it reports whether r changed.
func (r *Result) SetBreakpoint(label, description string) (bool, error) {
	p := r.Breakpoints.slot(label)
	if p == nil {
		return false, fmt.Errorf("unknown viewport label %q", label)
	}
	if *p != "" || description == "" {
		return false, nil
	}
	*p = description
	return true, nil
}

// Merge folds other into r, keeping r's values first and appending other's
// new values in other's order.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.Typography.Fonts.Union(&other.Typography.Fonts)
	r.Typography.FontSizes.Union(&other.Typography.FontSizes)
	r.Typography.FontWeights.Union(&other.Typography.FontWeights)
	r.Typography.LineHeights.Union(&other.Typography.LineHeights)

	r.Colors.Backgrounds.Union(&other.Colors.Backgrounds)
	r.Colors.TextColors.Union(&other.Colors.TextColors)
	r.Colors.BorderColors.Union(&other.Colors.BorderColors)
	r.Colors.AccentColors.Union(&other.Colors.AccentColors)

	r.Spacing.Margins.Union(&other.Spacing.Margins)
	r.Spacing.Paddings.Union(&other.Spacing.Paddings)
	r.Spacing.Gaps.Union(&other.Spacing.Gaps)

	r.Layout.Containers.Union(&other.Layout.Containers)
	r.Layout.GridSystems.Union(&other.Layout.GridSystems)
	r.Layout.FlexboxPatterns.Union(&other.Layout.FlexboxPatterns)

	r.Components.Buttons.Union(&other.Components.Buttons)
	r.Components.Cards.Union(&other.Components.Cards)
	r.Components.Navigation.Union(&other.Components.Navigation)

	for _, v := range models.Viewports {
		r.SetBreakpoint(v.Name, other.Breakpoints.Get(v.Name))
	}

	r.Animations.Union(&other.Animations)
}

// MergeAll merges results in slice order into a fresh Result. Nil entries
// (tasks that produced nothing) are skipped.
func MergeAll(results ...*Result) *Result {
	out := New()
	for _, res := range results {
		out.Merge(res)
	}
	return out
}

// Empty reports whether nothing has been absorbed.
func (r *Result) Empty() bool {
	data, err := json.Marshal(r)
	if err != nil {
		return false
	}
	empty, _ := json.Marshal(New())
	return string(data) == string(empty)
}

func addIf(set *OrderedSet, f models.Field, sentinel func(string) bool) {
	if !f.Present() {
		return
	}
	if sentinel != nil && sentinel(f.Value) {
		return
	}
	set.Add(f.Value)
}

func compact(v string) string {
	return strings.ToLower(strings.Join(strings.Fields(v), ""))
}

func isTransparent(v string) bool {
	c := compact(v)
	return c == "rgba(0,0,0,0)" || c == "transparent"
}

// isZero matches "0px" and all-zero shorthands such as "0px 0px".
func isZero(v string) bool {
	parts := strings.Fields(v)
	if len(parts) == 0 {
		return false
	}
	for _, p := range parts {
		if p != "0px" && p != "0" {
			return false
		}
	}
	return true
}

func isNone(v string) bool {
	return strings.TrimSpace(v) == "none"
}

// isNoAnimation matches "none" and the resolved shorthand of an element
// without an animation name, e.g. "none 0s ease 0s 1 normal none running".
func isNoAnimation(v string) bool {
	v = strings.TrimSpace(v)
	return v == "none" || strings.HasPrefix(v, "none ")
}
