package crawler

// URLSet is a set of URLs that remembers first-insertion order. Membership is
// exact string equality.
type URLSet struct {
	index map[string]struct{}
	order []string
}

func NewURLSet() *URLSet {
	return &URLSet{index: make(map[string]struct{})}
}

// Add inserts u and reports whether it was new.
func (s *URLSet) Add(u string) bool {
	if _, ok := s.index[u]; ok {
		return false
	}
	s.index[u] = struct{}{}
	s.order = append(s.order, u)
	return true
}

func (s *URLSet) Contains(u string) bool {
	_, ok := s.index[u]
	return ok
}

func (s *URLSet) Len() int {
	return len(s.order)
}

// URLs returns the members in discovery order.
func (s *URLSet) URLs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
