package aggregator

import "encoding/json"

// OrderedSet keeps distinct strings in first-seen order.
type OrderedSet struct {
	values []string
	seen   map[string]struct{}
}

// Add inserts v unless it is already present. It reports whether v was new.
func (s *OrderedSet) Add(v string) bool {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[v]; ok {
		return false
	}
	s.seen[v] = struct{}{}
	s.values = append(s.values, v)
	return true
}

// Contains reports whether v has been added.
func (s *OrderedSet) Contains(v string) bool {
	_, ok := s.seen[v]
	return ok
}

// Values returns a copy of the set in insertion order.
func (s *OrderedSet) Values() []string {
	out := make([]string, len(s.values))
	copy(out, s.values)
	return out
}

func (s *OrderedSet) Len() int { return len(s.values) }

// Union adds every value of other, in other's order.
func (s *OrderedSet) Union(other *OrderedSet) {
	for _, v := range other.values {
		s.Add(v)
	}
}

// MarshalJSON encodes the set as an array; an empty set is [] rather than null.
func (s OrderedSet) MarshalJSON() ([]byte, error) {
	if s.values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.values)
}

// UnmarshalJSON rebuilds the set from an array, dropping duplicates.
func (s *OrderedSet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = OrderedSet{}
	for _, v := range values {
		s.Add(v)
	}
	return nil
}
