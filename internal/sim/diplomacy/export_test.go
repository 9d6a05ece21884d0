package diplomacy

import (
	"testing"

	"hegemony.sim/internal/persistence/snapshot"
	"hegemony.sim/internal/sim/fixed"
)

func TestExportRestoreRoundTrip(t *testing.T) {
	s := NewStore(nil, nil)
	s.SetBaseOpinion(1, 2, fixed.FromInt(10))
	s.AddOpinionModifier(1, 2, 4, fixed.FromInt(-50), 3, 360)
	s.AddOpinionModifier(2, 3, 1, fixed.FromInt(25), 8, 100)
	s.SetAlliance(2, 3, true)
	s.SetMilitaryAccess(1, 3, true)
	s.DeclareWar(1, 2, 5)

	rels, mods, wars := s.ExportV1()

	r := NewStore(nil, nil)
	if err := r.RestoreV1(rels, mods, wars); err != nil {
		t.Fatalf("restore: %v", err)
	}

	for _, tick := range []uint64{3, 50, 400} {
		for _, pair := range [][2]CountryID{{1, 2}, {2, 3}, {1, 3}} {
			want := s.GetOpinion(pair[0], pair[1], tick)
			got := r.GetOpinion(pair[0], pair[1], tick)
			if got != want {
				t.Fatalf("opinion(%d,%d,%d) = %v want %v", pair[0], pair[1], tick, got, want)
			}
		}
	}
	if !r.IsAtWar(1, 2) || r.IsAtWar(2, 3) {
		t.Fatalf("war state not preserved")
	}
	if !r.AreAllied(2, 3) || !r.HasMilitaryAccess(1, 3) {
		t.Fatalf("treaty flags not preserved")
	}
	if got := r.AlliesRecursive(2); len(got) != 1 || got[0] != 3 {
		t.Fatalf("ally mirror not rebuilt: %v", got)
	}
	if got := r.Enemies(2); len(got) != 1 || got[0] != 1 {
		t.Fatalf("war mirror not rebuilt: %v", got)
	}
}

func TestRestoreRejectsBadData(t *testing.T) {
	r := NewStore(nil, nil)
	rels, mods, wars := NewStore(nil, nil).ExportV1()
	if err := r.RestoreV1(rels, mods, wars); err != nil {
		t.Fatalf("empty restore: %v", err)
	}
	bad := []struct {
		name string
		run  func() error
	}{
		{"self-pair relation", func() error {
			return NewStore(nil, nil).RestoreV1([]snapshot.RelationV1{{Key: 5<<16 | 5}}, nil, nil)
		}},
		{"zero war member", func() error {
			return NewStore(nil, nil).RestoreV1(nil, nil, []snapshot.WarV1{{A: 0, B: 3}})
		}},
	}
	for _, c := range bad {
		if err := c.run(); err == nil {
			t.Fatalf("%s: want error", c.name)
		}
	}
}
