package diplomacy

import (
	"sort"

	"hegemony.sim/internal/protocol"
)

// DeclareWar moves the pair Neutral -> AtWar, clears the now-contradictory
// treaty flags (alliance, non-aggression) and emits a war-declared event.
// The active-wars set and the wars-by-country mirror are updated together.
// No-op if the pair is invalid or already at war.
func (s *Store) DeclareWar(attacker, defender CountryID, tick uint64) bool {
	if !validPair(attacker, defender) {
		if s.log != nil {
			s.log.Printf("diplomacy: DeclareWar on invalid pair (%d,%d)", attacker, defender)
		}
		return false
	}
	key := PairKey(attacker, defender)
	r := s.ensureRelation(key)
	if r.AtWar {
		return false
	}
	r.AtWar = true
	if r.Alliance {
		r.Alliance = false
		s.unmirrorAlliance(attacker, defender)
	}
	r.NonAggression = false

	s.activeWars[key] = struct{}{}
	s.mirrorWar(attacker, defender)
	s.mirrorWar(defender, attacker)

	s.emit(protocol.WarDeclaredEvent{Attacker: attacker, Defender: defender, Tick: tick})
	return true
}

// MakePeace moves the pair AtWar -> Neutral and emits a peace-made event.
func (s *Store) MakePeace(attacker, defender CountryID, tick uint64) bool {
	if !validPair(attacker, defender) {
		return false
	}
	key := PairKey(attacker, defender)
	r, ok := s.relation(key)
	if !ok || !r.AtWar {
		return false
	}
	r.AtWar = false

	delete(s.activeWars, key)
	s.unmirrorWar(attacker, defender)
	s.unmirrorWar(defender, attacker)

	s.emit(protocol.PeaceMadeEvent{Attacker: attacker, Defender: defender, Tick: tick})
	return true
}

func (s *Store) IsAtWar(a, b CountryID) bool {
	if !validPair(a, b) {
		return false
	}
	_, ok := s.activeWars[PairKey(a, b)]
	return ok
}

// Enemies returns everyone c is at war with, sorted, via the O(k) mirror.
func (s *Store) Enemies(c CountryID) []CountryID {
	return sortedSet(s.warsByCountry[c])
}

// WarCount is the number of active wars in the system.
func (s *Store) WarCount() int {
	return len(s.activeWars)
}

func (s *Store) mirrorWar(c, enemy CountryID) {
	m := s.warsByCountry[c]
	if m == nil {
		m = make(map[CountryID]struct{})
		s.warsByCountry[c] = m
	}
	m[enemy] = struct{}{}
}

func (s *Store) unmirrorWar(c, enemy CountryID) {
	m := s.warsByCountry[c]
	if m == nil {
		if s.log != nil {
			s.log.Printf("diplomacy: war mirror missing for country %d", c)
		}
		return
	}
	delete(m, enemy)
	if len(m) == 0 {
		delete(s.warsByCountry, c)
	}
}

func sortedSet(m map[CountryID]struct{}) []CountryID {
	if len(m) == 0 {
		return nil
	}
	out := make([]CountryID, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
