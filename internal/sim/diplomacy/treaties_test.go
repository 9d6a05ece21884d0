package diplomacy

import "testing"

func TestTreatyFlagsIndependent(t *testing.T) {
	s := NewStore(nil, nil)
	s.SetAlliance(1, 2, true)
	s.SetGuarantee(1, 2, true)
	s.SetMilitaryAccess(1, 2, true)

	if !s.AreAllied(2, 1) {
		t.Fatalf("alliance must be order-independent")
	}
	s.SetAlliance(1, 2, false)
	if s.AreAllied(1, 2) {
		t.Fatalf("alliance not cleared")
	}
	if !s.HasGuarantee(1, 2) || !s.HasMilitaryAccess(1, 2) {
		t.Fatalf("clearing one treaty flag must not touch the others")
	}
	if s.SetGuarantee(1, 2, true) {
		t.Fatalf("setting an already-set flag must report no change")
	}
}

func TestAlliesRecursive(t *testing.T) {
	s := NewStore(nil, nil)
	// Chain 1-2-3 plus branch 2-4.
	s.SetAlliance(1, 2, true)
	s.SetAlliance(2, 3, true)
	s.SetAlliance(2, 4, true)

	got := s.AlliesRecursive(1)
	want := []CountryID{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("AlliesRecursive(1) = %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("AlliesRecursive(1) = %v want %v", got, want)
		}
	}
	if direct := s.Allies(1); len(direct) != 1 || direct[0] != 2 {
		t.Fatalf("Allies(1) = %v want [2]", direct)
	}
}

func TestAlliesRecursiveCyclicTerminates(t *testing.T) {
	s := NewStore(nil, nil)
	s.SetAlliance(1, 2, true)
	s.SetAlliance(2, 3, true)
	s.SetAlliance(3, 1, true)

	got := s.AlliesRecursive(1)
	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Fatalf("AlliesRecursive on cycle = %v want [2 3]", got)
	}
	// Self never appears in its own closure.
	for _, c := range got {
		if c == 1 {
			t.Fatalf("closure contains the root")
		}
	}
}

func TestPairKeyCanonical(t *testing.T) {
	if PairKey(7, 3) != PairKey(3, 7) {
		t.Fatalf("pair key must be order-independent")
	}
	a, b := PairKey(7, 3).Split()
	if a != 3 || b != 7 {
		t.Fatalf("Split = (%d,%d) want (3,7)", a, b)
	}
	if PairKey(3, 7).Other(3) != 7 || PairKey(3, 7).Other(7) != 3 {
		t.Fatalf("Other broken")
	}
	if PairKey(3, 7).Other(9) != 0 {
		t.Fatalf("Other with non-member must be 0")
	}
}
