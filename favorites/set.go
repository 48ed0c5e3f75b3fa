// Package favorites tracks the items a user has starred on a page.
package favorites

// Set is an insertion-ordered set of identifiers. The zero value is empty
// and ready to use. It is not safe for concurrent use; each page owns one.
type Set struct {
	ids   []string
	index map[string]int

	// toggled records ids changed since Track; nil when not tracking.
	toggled map[string]bool
}

// NewSet returns a set holding ids, duplicates dropped.
func NewSet(ids ...string) *Set {
	s := &Set{}
	for _, id := range ids {
		if !s.Has(id) {
			s.add(id)
		}
	}
	return s
}

// Toggle adds id when absent and removes it when present. It reports
// whether id is a favorite afterwards.
func (s *Set) Toggle(id string) bool {
	if id == "" {
		return false
	}
	if s.toggled != nil {
		s.toggled[id] = true
	}
	if s.Has(id) {
		s.remove(id)
		return false
	}
	s.add(id)
	return true
}

// Track starts recording toggles so that a later Merge does not undo them.
// Call it when a load from the store begins.
func (s *Set) Track() {
	s.toggled = make(map[string]bool)
}

// Merge adds stored ids that are not already favorites, skipping any id
// toggled since Track, and stops tracking. Merge(nil) just stops tracking.
func (s *Set) Merge(stored []string) {
	toggled := s.toggled
	s.toggled = nil
	for _, id := range stored {
		if id == "" || toggled[id] || s.Has(id) {
			continue
		}
		s.add(id)
	}
}

// Has reports whether id is a favorite.
func (s *Set) Has(id string) bool {
	if s == nil || s.index == nil {
		return false
	}
	_, ok := s.index[id]
	return ok
}

// IDs returns the favorites in the order they were added.
func (s *Set) IDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the number of favorites.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

func (s *Set) add(id string) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
}

func (s *Set) remove(id string) {
	i := s.index[id]
	s.ids = append(s.ids[:i], s.ids[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.ids); j++ {
		s.index[s.ids[j]] = j
	}
}
