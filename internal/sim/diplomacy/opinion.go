package diplomacy

import "hegemony.sim/internal/sim/fixed"

// GetOpinion returns base opinion plus the sum of all still-active modifier
// contributions for the pair at tick. Evaluated lazily at query time — there
// is no per-tick upkeep when nothing is queried — and decay is a pure
// function of tick, so two queries at the same tick always agree, sweep or
// no sweep. Unknown pairs report zero, the documented miss default.
func (s *Store) GetOpinion(a, b CountryID, tick uint64) fixed.Point {
	if !validPair(a, b) {
		return 0
	}
	key := PairKey(a, b)
	var sum fixed.Point
	if r, ok := s.relation(key); ok {
		sum = r.Base
	}
	idx, ok := s.modifierCache[key]
	for ok && idx >= 0 {
		m := &s.modifiers[idx]
		if !m.removed {
			sum += decayedValue(m, tick)
		}
		idx = m.next
	}
	return sum
}

func decayedValue(m *OpinionModifier, tick uint64) fixed.Point {
	var elapsed int64
	if tick > m.Applied {
		elapsed = int64(tick - m.Applied)
	}
	return fixed.DecayLinear(m.Magnitude, elapsed, int64(m.Duration))
}

// AddOpinionModifier appends a decaying contribution for the pair. O(chain)
// for the tail link, O(1) amortized in the flat list.
func (s *Store) AddOpinionModifier(a, b CountryID, typ uint16, magnitude fixed.Point, tick, duration uint64) bool {
	if !validPair(a, b) {
		if s.log != nil {
			s.log.Printf("diplomacy: AddOpinionModifier on invalid pair (%d,%d)", a, b)
		}
		return false
	}
	key := PairKey(a, b)
	s.ensureRelation(key)
	idx := int32(len(s.modifiers))
	s.modifiers = append(s.modifiers, OpinionModifier{
		Key:       key,
		Type:      typ,
		Magnitude: magnitude,
		Applied:   tick,
		Duration:  duration,
		next:      -1,
	})
	head, ok := s.modifierCache[key]
	if !ok {
		s.modifierCache[key] = idx
		return true
	}
	tail := head
	for s.modifiers[tail].next >= 0 {
		tail = s.modifiers[tail].next
	}
	s.modifiers[tail].next = idx
	return true
}

// RemoveOpinionModifier marks the pair's first live modifier of the given
// type as removed. Physical removal is deferred to the next decay sweep so
// mutation stays O(1) amortized.
func (s *Store) RemoveOpinionModifier(a, b CountryID, typ uint16) bool {
	if !validPair(a, b) {
		return false
	}
	key := PairKey(a, b)
	idx, ok := s.modifierCache[key]
	for ok && idx >= 0 {
		m := &s.modifiers[idx]
		if !m.removed && m.Type == typ {
			m.removed = true
			return true
		}
		idx = m.next
	}
	return false
}

// ModifierCount reports live (non-removed) entries in the flat list.
func (s *Store) ModifierCount() int {
	n := 0
	for i := range s.modifiers {
		if !s.modifiers[i].removed {
			n++
		}
	}
	return n
}

// DecayOpinionModifiers physically removes fully-decayed and mark-removed
// entries and compacts the flat list and every chain. This is the one O(n)
// operation in the subsystem; run it once per tick (or slower), never per
// relation. Entries are independent of each other, so the keep-decision is
// trivially data-parallel even though the compaction here is sequential.
// GetOpinion results are unchanged by the sweep.
func (s *Store) DecayOpinionModifiers(tick uint64) int {
	kept := s.modifiers[:0]
	tails := make(map[RelationKey]int32, len(s.modifierCache))
	cache := make(map[RelationKey]int32, len(s.modifierCache))

	removed := 0
	for i := range s.modifiers {
		m := s.modifiers[i]
		if m.removed || decayedValue(&m, tick) == 0 {
			removed++
			continue
		}
		idx := int32(len(kept))
		m.next = -1
		kept = append(kept, m)
		if tail, ok := tails[m.Key]; ok {
			kept[tail].next = idx
		} else {
			cache[m.Key] = idx
		}
		tails[m.Key] = idx
	}

	s.modifiers = kept
	s.modifierCache = cache
	return removed
}
