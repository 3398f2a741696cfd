package aggregator

import (
	"encoding/json"
	"sort"
	"strings"
)

// ComponentStyle is the observed style of one component instance.
type ComponentStyle struct {
	Selector string            `json:"selector"`
	Styles   map[string]string `json:"styles"`
}

// signature identifies a component by its styles only, so the same button
// matched through two selectors is kept once.
func (c ComponentStyle) signature() string {
	keys := make([]string, 0, len(c.Styles))
	for k := range c.Styles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(c.Styles[k])
		b.WriteByte(';')
	}
	return b.String()
}

// ComponentList is an insertion-ordered list of distinct component styles.
type ComponentList struct {
	items []ComponentStyle
	seen  map[string]struct{}
}

// Add appends c unless a component with identical styles is present.
func (l *ComponentList) Add(c ComponentStyle) bool {
	if l.seen == nil {
		l.seen = make(map[string]struct{})
	}
	sig := c.signature()
	if _, ok := l.seen[sig]; ok {
		return false
	}
	l.seen[sig] = struct{}{}
	l.items = append(l.items, c)
	return true
}

func (l *ComponentList) Items() []ComponentStyle {
	out := make([]ComponentStyle, len(l.items))
	copy(out, l.items)
	return out
}

func (l *ComponentList) Len() int { return len(l.items) }

func (l *ComponentList) Union(other *ComponentList) {
	for _, c := range other.items {
		l.Add(c)
	}
}

func (l ComponentList) MarshalJSON() ([]byte, error) {
	if l.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.items)
}

func (l *ComponentList) UnmarshalJSON(data []byte) error {
	var items []ComponentStyle
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = ComponentList{}
	for _, c := range items {
		l.Add(c)
	}
	return nil
}
