package world

import (
	"testing"

	"hegemony.sim/internal/protocol"
	"hegemony.sim/internal/sim/fixed"
	"hegemony.sim/internal/sim/state"
)

type captureSink struct {
	events []protocol.Event
}

func (c *captureSink) Emit(ev protocol.Event) {
	c.events = append(c.events, ev)
}

func newTestWorld(t *testing.T) (*World, *captureSink) {
	t.Helper()
	sink := &captureSink{}
	w := New(Config{ID: "test", ProvinceCapacity: 64}, nil, sink)
	return w, sink
}

func TestOwnershipScenario(t *testing.T) {
	w, _ := newTestWorld(t)
	w.AddCountry(10)
	for id := ProvinceID(1); id <= 5; id++ {
		if code := w.AddProvince(id, state.ProvinceState{}); code != "" {
			t.Fatalf("add province %d: %s", id, code)
		}
	}
	w.InitComplete()

	w.SetOwner(3, 10)
	if got := w.GetOwner(3); got != 10 {
		t.Fatalf("GetOwner(3) = %d want 10", got)
	}
	if owned := w.OwnedProvinces(10); len(owned) != 1 || owned[0] != 3 {
		t.Fatalf("OwnedProvinces(10) = %v want [3]", owned)
	}
	if got := w.CountOwned(0); got != 4 {
		t.Fatalf("CountOwned(0) = %d want 4", got)
	}
}

func TestOpinionScenario(t *testing.T) {
	w, _ := newTestWorld(t)
	const base = 0
	w.AddOpinionModifier(1, 2, 1, fixed.FromInt(-50), 360)
	if got := w.GetOpinionAt(1, 2, 0); got != fixed.FromInt(base-50) {
		t.Fatalf("opinion at apply tick = %v want %d", got, base-50)
	}
	if got := w.GetOpinionAt(1, 2, 360); got != fixed.FromInt(base) {
		t.Fatalf("opinion after full decay = %v want %d", got, base)
	}
}

func TestWarScenario(t *testing.T) {
	w, _ := newTestWorld(t)
	for w.Tick() < 5 {
		w.EndTick()
	}
	w.DeclareWar(1, 2)
	if got := w.GetEnemies(1); len(got) != 1 || got[0] != 2 {
		t.Fatalf("GetEnemies(1) = %v want [2]", got)
	}
	for w.Tick() < 10 {
		w.EndTick()
	}
	w.MakePeace(1, 2)
	if got := w.GetEnemies(1); len(got) != 0 {
		t.Fatalf("GetEnemies(1) after peace = %v want []", got)
	}
}

func TestWarAllianceExclusive(t *testing.T) {
	w, _ := newTestWorld(t)
	w.SetAlliance(1, 2, true)
	w.DeclareWar(1, 2)
	if w.IsAtWar(1, 2) && w.AreAllied(1, 2) {
		t.Fatalf("war and alliance may never hold simultaneously")
	}
	if !w.IsAtWar(1, 2) {
		t.Fatalf("not at war after declaration")
	}
}

func TestEventOrderMatchesMutationOrder(t *testing.T) {
	w, sink := newTestWorld(t)
	w.AddProvince(1, state.ProvinceState{})
	w.AddProvince(2, state.ProvinceState{})
	w.InitComplete()
	sink.events = nil

	w.SetOwner(1, 10)
	w.DeclareWar(10, 20)
	w.SetOwner(2, 20)
	w.MakePeace(10, 20)

	wantKinds := []string{
		protocol.EventOwnershipChanged,
		protocol.EventWarDeclared,
		protocol.EventOwnershipChanged,
		protocol.EventPeaceMade,
	}
	if len(sink.events) != len(wantKinds) {
		t.Fatalf("events = %d want %d", len(sink.events), len(wantKinds))
	}
	for i, k := range wantKinds {
		if sink.events[i].Kind() != k {
			t.Fatalf("event %d kind = %s want %s", i, sink.events[i].Kind(), k)
		}
	}
}

func TestEndTickSyncsAndDrains(t *testing.T) {
	w, _ := newTestWorld(t)
	w.AddProvince(1, state.ProvinceState{})
	w.InitComplete()
	w.EndTick()

	w.SetOwner(1, 7)
	read := w.AcquireReadBuffer()
	if read[0].Owner != 0 {
		t.Fatalf("read buffer must not change before EndTick")
	}
	sum := w.EndTick()
	if sum.SyncedSlots != 1 {
		t.Fatalf("synced %d slots want 1", sum.SyncedSlots)
	}
	if len(sum.Events) != 1 {
		t.Fatalf("tick events = %d want 1", len(sum.Events))
	}
	read = w.AcquireReadBuffer()
	if read[0].Owner != 7 {
		t.Fatalf("read buffer owner = %d want 7", read[0].Owner)
	}
	if next := w.EndTick(); len(next.Events) != 0 || next.SyncedSlots != 0 {
		t.Fatalf("quiet tick must sync nothing, got %+v", next)
	}
}

func TestDecaySweepCadence(t *testing.T) {
	sink := &captureSink{}
	w := New(Config{ProvinceCapacity: 8, DecayEveryTicks: 4}, nil, sink)
	w.AddOpinionModifier(1, 2, 1, fixed.FromInt(10), 2)

	swept := 0
	for w.Tick() < 8 {
		sum := w.EndTick()
		swept += sum.SweptModifiers
	}
	if swept != 1 {
		t.Fatalf("swept %d modifiers want 1", swept)
	}
	if got := w.GetOpinion(1, 2); got != 0 {
		t.Fatalf("opinion after sweep = %v want 0", got)
	}
}

func TestSystemInitializedEvent(t *testing.T) {
	w, sink := newTestWorld(t)
	w.AddCountry(1)
	w.AddCountry(2)
	w.AddProvince(1, state.ProvinceState{})
	w.InitComplete()

	last := sink.events[len(sink.events)-1]
	init, ok := last.(protocol.SystemInitializedEvent)
	if !ok {
		t.Fatalf("last event %T", last)
	}
	if init.Provinces != 1 || init.Countries != 2 {
		t.Fatalf("bad init event %+v", init)
	}
}

func TestDuplicateCountryRejected(t *testing.T) {
	w, _ := newTestWorld(t)
	if code := w.AddCountry(5); code != "" {
		t.Fatalf("first add: %s", code)
	}
	if code := w.AddCountry(5); code != protocol.ErrDuplicate {
		t.Fatalf("duplicate country code = %q", code)
	}
	if code := w.AddCountry(0); code != protocol.ErrInvalidRef {
		t.Fatalf("country 0 code = %q", code)
	}
	if w.CountryCount() != 1 {
		t.Fatalf("country count = %d", w.CountryCount())
	}
}

func TestUnknownProvinceDefaults(t *testing.T) {
	w, sink := newTestWorld(t)
	if got := w.GetOwner(999); got != 0 {
		t.Fatalf("unknown province owner = %d want 0 (unowned)", got)
	}
	sink.events = nil
	if w.SetOwner(999, 5) {
		t.Fatalf("mutating an unknown province must be a no-op")
	}
	if len(sink.events) != 0 {
		t.Fatalf("no-op mutation emitted an event")
	}
}
