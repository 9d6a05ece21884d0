package diplomacy

import (
	"testing"

	"hegemony.sim/internal/protocol"
)

type captureSink struct {
	events []protocol.Event
}

func (c *captureSink) Emit(ev protocol.Event) {
	c.events = append(c.events, ev)
}

func TestDeclareWarMakePeace(t *testing.T) {
	sink := &captureSink{}
	s := NewStore(nil, sink)

	if !s.DeclareWar(1, 2, 5) {
		t.Fatalf("DeclareWar failed")
	}
	if !s.IsAtWar(1, 2) || !s.IsAtWar(2, 1) {
		t.Fatalf("IsAtWar must be order-independent")
	}
	if got := s.Enemies(1); len(got) != 1 || got[0] != 2 {
		t.Fatalf("Enemies(1) = %v want [2]", got)
	}
	if s.DeclareWar(1, 2, 6) {
		t.Fatalf("repeat declaration must be a no-op")
	}

	if !s.MakePeace(1, 2, 10) {
		t.Fatalf("MakePeace failed")
	}
	if s.IsAtWar(1, 2) {
		t.Fatalf("still at war after peace")
	}
	if got := s.Enemies(1); len(got) != 0 {
		t.Fatalf("Enemies(1) after peace = %v want []", got)
	}

	if len(sink.events) != 2 {
		t.Fatalf("events = %d want 2", len(sink.events))
	}
	war, ok := sink.events[0].(protocol.WarDeclaredEvent)
	if !ok || war.Attacker != 1 || war.Defender != 2 || war.Tick != 5 {
		t.Fatalf("bad war event %+v", sink.events[0])
	}
	peace, ok := sink.events[1].(protocol.PeaceMadeEvent)
	if !ok || peace.Tick != 10 {
		t.Fatalf("bad peace event %+v", sink.events[1])
	}
}

func TestDeclareWarClearsAlliance(t *testing.T) {
	s := NewStore(nil, nil)
	s.SetAlliance(1, 2, true)
	s.SetNonAggression(1, 2, true)

	// Mechanism layer permits attacking an ally; the flags must not survive.
	s.DeclareWar(1, 2, 0)
	if s.AreAllied(1, 2) {
		t.Fatalf("alliance must be cleared by war declaration")
	}
	if s.HaveNonAggression(1, 2) {
		t.Fatalf("non-aggression must be cleared by war declaration")
	}
	if got := s.Allies(1); len(got) != 0 {
		t.Fatalf("ally mirror not cleared: %v", got)
	}
	if !s.IsAtWar(1, 2) {
		t.Fatalf("not at war")
	}
}

func TestMultipleWars(t *testing.T) {
	s := NewStore(nil, nil)
	s.DeclareWar(1, 2, 0)
	s.DeclareWar(1, 3, 0)
	s.DeclareWar(4, 1, 0)
	if got := s.Enemies(1); len(got) != 3 {
		t.Fatalf("Enemies(1) = %v want 3 entries", got)
	}
	if s.WarCount() != 3 {
		t.Fatalf("WarCount = %d want 3", s.WarCount())
	}
	s.MakePeace(1, 3, 1)
	want := []CountryID{2, 4}
	got := s.Enemies(1)
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Enemies(1) = %v want %v", got, want)
	}
}

func TestInvalidWarPairs(t *testing.T) {
	s := NewStore(nil, nil)
	if s.DeclareWar(0, 1, 0) || s.DeclareWar(1, 1, 0) {
		t.Fatalf("invalid pairs must be rejected")
	}
	if s.MakePeace(1, 2, 0) {
		t.Fatalf("peace without war must be a no-op")
	}
}
