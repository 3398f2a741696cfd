package models

// Field is a single computed-style value. Set is false when the property
// could not be read, which is different from a property that resolved to "".
type Field struct {
	Value string
	Set   bool
}

// Present reports whether the field was read and holds a non-empty value.
func (f Field) Present() bool {
	return f.Set && f.Value != ""
}

// StyleSample holds the computed style of one element
type StyleSample struct {
	FontFamily          Field
	FontSize            Field
	FontWeight          Field
	LineHeight          Field
	Color               Field
	BackgroundColor     Field
	BorderColor         Field
	Margin              Field
	Padding             Field
	Gap                 Field
	Display             Field
	FlexDirection       Field
	GridTemplateColumns Field
	GridTemplateRows    Field
	Width               Field
	MaxWidth            Field
	MinWidth            Field
	BorderRadius        Field
	BoxShadow           Field
	Transition          Field
	Transform           Field
	Animation           Field
}

// StyleProperties lists the CSSStyleDeclaration keys read for every sample,
// in StyleSample field order.
var StyleProperties = []string{
	"fontFamily",
	"fontSize",
	"fontWeight",
	"lineHeight",
	"color",
	"backgroundColor",
	"borderColor",
	"margin",
	"padding",
	"gap",
	"display",
	"flexDirection",
	"gridTemplateColumns",
	"gridTemplateRows",
	"width",
	"maxWidth",
	"minWidth",
	"borderRadius",
	"boxShadow",
	"transition",
	"transform",
	"animation",
}

// fields returns pointers to every field keyed by property name.
func (s *StyleSample) fields() map[string]*Field {
	return map[string]*Field{
		"fontFamily":          &s.FontFamily,
		"fontSize":            &s.FontSize,
		"fontWeight":          &s.FontWeight,
		"lineHeight":          &s.LineHeight,
		"color":               &s.Color,
		"backgroundColor":     &s.BackgroundColor,
		"borderColor":         &s.BorderColor,
		"margin":              &s.Margin,
		"padding":             &s.Padding,
		"gap":                 &s.Gap,
		"display":             &s.Display,
		"flexDirection":       &s.FlexDirection,
		"gridTemplateColumns": &s.GridTemplateColumns,
		"gridTemplateRows":    &s.GridTemplateRows,
		"width":               &s.Width,
		"maxWidth":            &s.MaxWidth,
		"minWidth":            &s.MinWidth,
		"borderRadius":        &s.BorderRadius,
		"boxShadow":           &s.BoxShadow,
		"transition":          &s.Transition,
		"transform":           &s.Transform,
		"animation":           &s.Animation,
	}
}

// SampleFromMap builds a StyleSample from a raw property record as returned
// by the browser. Keys missing from props stay unset; unknown keys are ignored.
func SampleFromMap(props map[string]string) StyleSample {
	var s StyleSample
	fields := s.fields()
	for name, value := range props {
		if f, ok := fields[name]; ok {
			*f = Field{Value: value, Set: true}
		}
	}
	return s
}

// Get returns the field for a property name from StyleProperties.
func (s StyleSample) Get(name string) (Field, bool) {
	f, ok := s.fields()[name]
	if !ok {
		return Field{}, false
	}
	return *f, true
}

// Map flattens the set fields back into a property record.
func (s StyleSample) Map() map[string]string {
	out := make(map[string]string)
	for name, f := range s.fields() {
		if f.Set {
			out[name] = f.Value
		}
	}
	return out
}

// Observation is the outcome of sampling one (selector, ordinal) pair.
// Found is false when no element matched (NoObservation).
type Observation struct {
	Selector   string
	Ordinal    int
	Found      bool
	ElementKey string // absolute XPath of the matched element
	Sample     StyleSample
}

// NoObservation returns the empty result for a selector/ordinal with no match.
func NoObservation(selector string, ordinal int) Observation {
	return Observation{Selector: selector, Ordinal: ordinal}
}
