package diplomacy

// Treaty flags are independent booleans on the shared relation record, each
// with its own accessor. Setting one never touches the others; only
// DeclareWar clears contradictory flags.

func (s *Store) SetAlliance(a, b CountryID, on bool) bool {
	if !validPair(a, b) {
		return false
	}
	r := s.ensureRelation(PairKey(a, b))
	if r.Alliance == on {
		return false
	}
	r.Alliance = on
	if on {
		s.mirrorAlliance(a, b)
	} else {
		s.unmirrorAlliance(a, b)
	}
	return true
}

func (s *Store) AreAllied(a, b CountryID) bool {
	if !validPair(a, b) {
		return false
	}
	r, ok := s.relation(PairKey(a, b))
	return ok && r.Alliance
}

func (s *Store) SetNonAggression(a, b CountryID, on bool) bool {
	if !validPair(a, b) {
		return false
	}
	r := s.ensureRelation(PairKey(a, b))
	if r.NonAggression == on {
		return false
	}
	r.NonAggression = on
	return true
}

func (s *Store) HaveNonAggression(a, b CountryID) bool {
	if !validPair(a, b) {
		return false
	}
	r, ok := s.relation(PairKey(a, b))
	return ok && r.NonAggression
}

func (s *Store) SetGuarantee(a, b CountryID, on bool) bool {
	if !validPair(a, b) {
		return false
	}
	r := s.ensureRelation(PairKey(a, b))
	if r.Guarantee == on {
		return false
	}
	r.Guarantee = on
	return true
}

func (s *Store) HasGuarantee(a, b CountryID) bool {
	if !validPair(a, b) {
		return false
	}
	r, ok := s.relation(PairKey(a, b))
	return ok && r.Guarantee
}

func (s *Store) SetMilitaryAccess(a, b CountryID, on bool) bool {
	if !validPair(a, b) {
		return false
	}
	r := s.ensureRelation(PairKey(a, b))
	if r.MilitaryAccess == on {
		return false
	}
	r.MilitaryAccess = on
	return true
}

func (s *Store) HasMilitaryAccess(a, b CountryID) bool {
	if !validPair(a, b) {
		return false
	}
	r, ok := s.relation(PairKey(a, b))
	return ok && r.MilitaryAccess
}

// Allies returns c's direct allies, sorted.
func (s *Store) Allies(c CountryID) []CountryID {
	return sortedSet(s.alliesByCountry[c])
}

// AlliesRecursive returns the transitive closure of c's alliance graph,
// excluding c itself, sorted. Used for cascade-war resolution. The visited
// set bounds the walk, so cyclic alliance graphs terminate.
func (s *Store) AlliesRecursive(c CountryID) []CountryID {
	if c == 0 {
		return nil
	}
	visited := map[CountryID]struct{}{c: {}}
	queue := []CountryID{c}
	closure := make(map[CountryID]struct{})
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for ally := range s.alliesByCountry[cur] {
			if _, seen := visited[ally]; seen {
				continue
			}
			visited[ally] = struct{}{}
			closure[ally] = struct{}{}
			queue = append(queue, ally)
		}
	}
	return sortedSet(closure)
}

func (s *Store) mirrorAlliance(a, b CountryID) {
	for _, p := range [2][2]CountryID{{a, b}, {b, a}} {
		m := s.alliesByCountry[p[0]]
		if m == nil {
			m = make(map[CountryID]struct{})
			s.alliesByCountry[p[0]] = m
		}
		m[p[1]] = struct{}{}
	}
}

func (s *Store) unmirrorAlliance(a, b CountryID) {
	for _, p := range [2][2]CountryID{{a, b}, {b, a}} {
		m := s.alliesByCountry[p[0]]
		if m == nil {
			continue
		}
		delete(m, p[1])
		if len(m) == 0 {
			delete(s.alliesByCountry, p[0])
		}
	}
}
