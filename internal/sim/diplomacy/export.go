package diplomacy

import (
	"fmt"

	"hegemony.sim/internal/persistence/snapshot"
	"hegemony.sim/internal/sim/fixed"
)

// ExportV1 serializes the relation map, the flat modifier list and the
// active-wars set. Mark-removed modifiers are skipped; mirrors and chain
// links are derived state and are not exported.
func (s *Store) ExportV1() ([]snapshot.RelationV1, []snapshot.ModifierV1, []snapshot.WarV1) {
	keys := s.SortedKeys()
	rels := make([]snapshot.RelationV1, 0, len(keys))
	for _, k := range keys {
		r := s.relations[k]
		rels = append(rels, snapshot.RelationV1{
			Key:            uint32(k),
			Base:           int64(r.Base),
			Alliance:       r.Alliance,
			NonAggression:  r.NonAggression,
			Guarantee:      r.Guarantee,
			MilitaryAccess: r.MilitaryAccess,
			AtWar:          r.AtWar,
		})
	}

	mods := make([]snapshot.ModifierV1, 0, len(s.modifiers))
	for i := range s.modifiers {
		m := &s.modifiers[i]
		if m.removed {
			continue
		}
		mods = append(mods, snapshot.ModifierV1{
			Key:           uint32(m.Key),
			Type:          m.Type,
			Magnitude:     int64(m.Magnitude),
			AppliedTick:   m.Applied,
			DurationTicks: m.Duration,
		})
	}

	wars := make([]snapshot.WarV1, 0, len(s.activeWars))
	for _, k := range keys {
		if _, ok := s.activeWars[k]; ok {
			a, b := k.Split()
			wars = append(wars, snapshot.WarV1{A: uint16(a), B: uint16(b)})
		}
	}
	return rels, mods, wars
}

// RestoreV1 replaces the store's contents from persisted data, rebuilding the
// modifier chains, the war mirror and the ally mirror by replay.
func (s *Store) RestoreV1(rels []snapshot.RelationV1, mods []snapshot.ModifierV1, wars []snapshot.WarV1) error {
	s.relations = make(map[RelationKey]*Relation, len(rels))
	s.modifiers = s.modifiers[:0]
	s.modifierCache = make(map[RelationKey]int32)
	s.activeWars = make(map[RelationKey]struct{}, len(wars))
	s.warsByCountry = make(map[CountryID]map[CountryID]struct{})
	s.alliesByCountry = make(map[CountryID]map[CountryID]struct{})

	for _, rv := range rels {
		key := RelationKey(rv.Key)
		a, b := key.Split()
		if !validPair(a, b) {
			return fmt.Errorf("relation key %#x: invalid pair", rv.Key)
		}
		s.relations[key] = &Relation{
			Base:           fixed.Point(rv.Base),
			Alliance:       rv.Alliance,
			NonAggression:  rv.NonAggression,
			Guarantee:      rv.Guarantee,
			MilitaryAccess: rv.MilitaryAccess,
			AtWar:          rv.AtWar,
		}
		if rv.Alliance {
			s.mirrorAlliance(a, b)
		}
	}

	for _, mv := range mods {
		key := RelationKey(mv.Key)
		a, b := key.Split()
		if !validPair(a, b) {
			return fmt.Errorf("modifier key %#x: invalid pair", mv.Key)
		}
		if !s.AddOpinionModifier(a, b, mv.Type, fixed.Point(mv.Magnitude), mv.AppliedTick, mv.DurationTicks) {
			return fmt.Errorf("modifier key %#x: rejected", mv.Key)
		}
	}

	for _, wv := range wars {
		a, b := CountryID(wv.A), CountryID(wv.B)
		if !validPair(a, b) {
			return fmt.Errorf("war (%d,%d): invalid pair", wv.A, wv.B)
		}
		key := PairKey(a, b)
		s.ensureRelation(key).AtWar = true
		s.activeWars[key] = struct{}{}
		s.mirrorWar(a, b)
		s.mirrorWar(b, a)
	}
	return nil
}
