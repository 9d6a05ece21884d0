package diplomacy

import (
	"testing"

	"hegemony.sim/internal/sim/fixed"
)

func TestGetOpinionBaseAndModifier(t *testing.T) {
	s := NewStore(nil, nil)
	s.SetBaseOpinion(1, 2, fixed.FromInt(20))

	if !s.AddOpinionModifier(1, 2, 4, fixed.FromInt(-50), 0, 360) {
		t.Fatalf("add modifier failed")
	}
	if got := s.GetOpinion(1, 2, 0); got != fixed.FromInt(-30) {
		t.Fatalf("opinion at tick 0 = %v want -30", got)
	}
	// Order independence of the pair.
	if got := s.GetOpinion(2, 1, 0); got != fixed.FromInt(-30) {
		t.Fatalf("opinion must be order-independent, got %v", got)
	}
	// After full decay only the base remains.
	if got := s.GetOpinion(1, 2, 360); got != fixed.FromInt(20) {
		t.Fatalf("opinion after full decay = %v want 20", got)
	}
}

func TestOpinionMonotonicDecay(t *testing.T) {
	s := NewStore(nil, nil)
	s.AddOpinionModifier(3, 4, 1, fixed.FromInt(75), 10, 500)
	prev := s.GetOpinion(3, 4, 10)
	for tick := uint64(11); tick <= 520; tick++ {
		cur := s.GetOpinion(3, 4, tick)
		if cur > prev {
			t.Fatalf("positive modifier must decay toward base: tick %d cur %v prev %v", tick, cur, prev)
		}
		prev = cur
	}
	if prev != 0 {
		t.Fatalf("fully decayed opinion = %v want 0", prev)
	}

	s.AddOpinionModifier(5, 6, 1, fixed.FromInt(-75), 10, 500)
	prev = s.GetOpinion(5, 6, 10)
	for tick := uint64(11); tick <= 520; tick++ {
		cur := s.GetOpinion(5, 6, tick)
		if cur < prev {
			t.Fatalf("negative modifier must decay toward base: tick %d cur %v prev %v", tick, cur, prev)
		}
		prev = cur
	}
}

func TestModifierChainPerPair(t *testing.T) {
	s := NewStore(nil, nil)
	// Interleave pairs so chains thread through the shared flat list.
	s.AddOpinionModifier(1, 2, 1, fixed.FromInt(10), 0, 100)
	s.AddOpinionModifier(3, 4, 1, fixed.FromInt(7), 0, 100)
	s.AddOpinionModifier(1, 2, 2, fixed.FromInt(5), 0, 100)
	s.AddOpinionModifier(3, 4, 2, fixed.FromInt(1), 0, 100)

	if got := s.GetOpinion(1, 2, 0); got != fixed.FromInt(15) {
		t.Fatalf("pair (1,2) opinion = %v want 15", got)
	}
	if got := s.GetOpinion(3, 4, 0); got != fixed.FromInt(8) {
		t.Fatalf("pair (3,4) opinion = %v want 8", got)
	}
}

func TestRemoveOpinionModifierLazy(t *testing.T) {
	s := NewStore(nil, nil)
	s.AddOpinionModifier(1, 2, 1, fixed.FromInt(10), 0, 100)
	s.AddOpinionModifier(1, 2, 2, fixed.FromInt(5), 0, 100)

	if !s.RemoveOpinionModifier(1, 2, 1) {
		t.Fatalf("remove failed")
	}
	if s.RemoveOpinionModifier(1, 2, 1) {
		t.Fatalf("second remove of same type must find nothing")
	}
	if got := s.GetOpinion(1, 2, 0); got != fixed.FromInt(5) {
		t.Fatalf("opinion after remove = %v want 5", got)
	}
	if got := s.ModifierCount(); got != 1 {
		t.Fatalf("live modifiers = %d want 1", got)
	}
}

func TestDecaySweepCompacts(t *testing.T) {
	s := NewStore(nil, nil)
	s.AddOpinionModifier(1, 2, 1, fixed.FromInt(10), 0, 50)   // dead at 100
	s.AddOpinionModifier(1, 2, 2, fixed.FromInt(20), 0, 1000) // alive at 100
	s.AddOpinionModifier(3, 4, 1, fixed.FromInt(30), 0, 40)   // dead at 100
	s.AddOpinionModifier(3, 4, 2, fixed.FromInt(40), 90, 1000)
	s.RemoveOpinionModifier(3, 4, 2)

	before12 := s.GetOpinion(1, 2, 100)
	before34 := s.GetOpinion(3, 4, 100)

	if removed := s.DecayOpinionModifiers(100); removed != 3 {
		t.Fatalf("sweep removed %d want 3", removed)
	}
	// The sweep must not change query results at the same tick.
	if got := s.GetOpinion(1, 2, 100); got != before12 {
		t.Fatalf("sweep changed opinion (1,2): %v -> %v", before12, got)
	}
	if got := s.GetOpinion(3, 4, 100); got != before34 {
		t.Fatalf("sweep changed opinion (3,4): %v -> %v", before34, got)
	}
	if got := len(s.modifiers); got != 1 {
		t.Fatalf("flat list length after sweep = %d want 1", got)
	}
	// Chains stay usable after compaction.
	s.AddOpinionModifier(1, 2, 3, fixed.FromInt(1), 100, 1000)
	if got := s.GetOpinion(1, 2, 100); got != before12+fixed.FromInt(1) {
		t.Fatalf("chain broken after sweep: %v", got)
	}
}

func TestInvalidPairDefaults(t *testing.T) {
	s := NewStore(nil, nil)
	if got := s.GetOpinion(0, 5, 0); got != 0 {
		t.Fatalf("invalid pair opinion = %v want 0", got)
	}
	if s.AddOpinionModifier(5, 5, 1, fixed.FromInt(1), 0, 10) {
		t.Fatalf("self pair must be rejected")
	}
}
