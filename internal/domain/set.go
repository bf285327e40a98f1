package domain

// IDSet is an insertion ordered set of ids.
// Index fields are only ever grown through Add, which ignores ids already present.
type IDSet struct {
	order []string
	seen  map[string]struct{}
}

func NewIDSet(ids ...string) *IDSet {
	s := &IDSet{seen: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id if absent and reports whether the set changed.
func (s *IDSet) Add(id string) bool {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

func (s *IDSet) Remove(id string) bool {
	if _, ok := s.seen[id]; !ok {
		return false
	}
	delete(s.seen, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *IDSet) Contains(id string) bool {
	_, ok := s.seen[id]
	return ok
}

func (s *IDSet) Len() int {
	return len(s.order)
}

// Items returns the ids in insertion order.
func (s *IDSet) Items() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
