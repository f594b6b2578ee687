package srx

import "slices"

// splitStore collects candidate split positions together with their break
// decision. Per SRX, only the first rule matching at a position counts, so
// later claims for a recorded position are ignored unless forced.
type splitStore struct {
	decisions map[int]bool // position => isBreak
}

func newSplitStore(capacity int) *splitStore {
	return &splitStore{
		decisions: make(map[int]bool, capacity),
	}
}

// Put records a decision for pos if pos has no decision yet.
// It reports whether the decision has been stored.
func (s *splitStore) Put(pos int, isBreak bool) bool {
	if _, found := s.decisions[pos]; found {
		return false
	}
	s.decisions[pos] = isBreak
	return true
}

// Force sets pos to be a break, overriding any earlier decision.
func (s *splitStore) Force(pos int) {
	s.decisions[pos] = true
}

// Decision returns the decision recorded for pos.
func (s *splitStore) Decision(pos int) (isBreak bool, found bool) {
	isBreak, found = s.decisions[pos]
	return
}

// RemoveInside drops every decision strictly between from and to.
func (s *splitStore) RemoveInside(from, to int) {
	for pos := range s.decisions {
		if pos > from && pos < to {
			delete(s.decisions, pos)
		}
	}
}

// Len returns the number of recorded positions, breaks and exceptions alike.
func (s *splitStore) Len() int {
	return len(s.decisions)
}

// Breaks returns the positions decided as breaks, in increasing order.
func (s *splitStore) Breaks() []int {
	breaks := make([]int, 0, len(s.decisions))
	for pos, isBreak := range s.decisions {
		if isBreak {
			breaks = append(breaks, pos)
		}
	}
	slices.Sort(breaks)
	return breaks
}

// Remap translates every recorded position with f into a new store. Positions
// mapped to a negative value are dropped.
func (s *splitStore) Remap(f func(int) int) *splitStore {
	remapped := newSplitStore(len(s.decisions))
	for pos, isBreak := range s.decisions {
		if p := f(pos); p >= 0 {
			remapped.decisions[p] = isBreak
		}
	}
	return remapped
}
