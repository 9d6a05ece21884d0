// Package diplomacy holds the sparse pairwise relation store: opinion math,
// war bookkeeping and treaty bookkeeping are independent read paths over one
// shared set of records, so each concern can be tested without the others.
package diplomacy

import (
	"log"
	"sort"

	"hegemony.sim/internal/protocol"
	"hegemony.sim/internal/sim/fixed"
)

// Relation is the single tagged record for a country pair. Treaties are
// orthogonal booleans, not states: any combination may coexist, and the
// mechanism layer permits declaring war on an ally (policy belongs to the
// caller). The war flag mirrors membership in the active-wars set.
type Relation struct {
	Base fixed.Point

	Alliance       bool
	NonAggression  bool
	Guarantee      bool
	MilitaryAccess bool

	AtWar bool
}

// OpinionModifier is one time-decaying contribution to a pair's opinion,
// stored in the flat shared list. next links the owning relation's chain in
// application order; removed entries stay in place until the next bulk sweep.
type OpinionModifier struct {
	Key       RelationKey
	Type      uint16
	Magnitude fixed.Point
	Applied   uint64
	Duration  uint64

	next    int32
	removed bool
}

// Store owns all pairwise diplomatic state. Simulation thread only; consumers
// query through the owning world's read path.
type Store struct {
	log  *log.Logger
	sink protocol.EventSink

	relations map[RelationKey]*Relation

	// Flat append-only modifier list shared by all pairs, plus the cache
	// mapping each pair to its first modifier's index.
	modifiers     []OpinionModifier
	modifierCache map[RelationKey]int32

	activeWars    map[RelationKey]struct{}
	warsByCountry map[CountryID]map[CountryID]struct{}

	// Mirror of the alliance flags for O(k) ally walks.
	alliesByCountry map[CountryID]map[CountryID]struct{}
}

func NewStore(logger *log.Logger, sink protocol.EventSink) *Store {
	return &Store{
		log:             logger,
		sink:            sink,
		relations:       make(map[RelationKey]*Relation),
		modifierCache:   make(map[RelationKey]int32),
		activeWars:      make(map[RelationKey]struct{}),
		warsByCountry:   make(map[CountryID]map[CountryID]struct{}),
		alliesByCountry: make(map[CountryID]map[CountryID]struct{}),
	}
}

func (s *Store) emit(ev protocol.Event) {
	if s.sink != nil {
		s.sink.Emit(ev)
	}
}

func (s *Store) relation(key RelationKey) (*Relation, bool) {
	r, ok := s.relations[key]
	return r, ok
}

func (s *Store) ensureRelation(key RelationKey) *Relation {
	if r, ok := s.relations[key]; ok {
		return r
	}
	r := &Relation{}
	s.relations[key] = r
	return r
}

func validPair(a, b CountryID) bool {
	return a != 0 && b != 0 && a != b
}

// SetBaseOpinion sets the pair's static opinion component.
func (s *Store) SetBaseOpinion(a, b CountryID, base fixed.Point) {
	if !validPair(a, b) {
		if s.log != nil {
			s.log.Printf("diplomacy: SetBaseOpinion on invalid pair (%d,%d)", a, b)
		}
		return
	}
	s.ensureRelation(PairKey(a, b)).Base = base
}

// RelationCount is the number of materialized pair records.
func (s *Store) RelationCount() int {
	return len(s.relations)
}

// SortedKeys returns all relation keys in ascending order, for deterministic
// iteration (digests, serialization).
func (s *Store) SortedKeys() []RelationKey {
	keys := make([]RelationKey, 0, len(s.relations))
	for k := range s.relations {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
