package world

import (
	"log"
	"sort"

	"hegemony.sim/internal/protocol"
	"hegemony.sim/internal/sim/diplomacy"
	"hegemony.sim/internal/sim/fixed"
	"hegemony.sim/internal/sim/state"
)

type ProvinceID = protocol.ProvinceID
type CountryID = protocol.CountryID

// World is the deterministic simulation state store. A single logical
// simulation thread owns all mutators and the write-side structures;
// consumers read through AcquireReadBuffer / FillOwnerBuffer between ticks
// and must re-acquire every tick. EndTick's partial buffer sync is the only
// synchronization barrier.
type World struct {
	cfg  Config
	log  *log.Logger
	sink protocol.EventSink

	provinces *state.Store
	diplo     *diplomacy.Store

	countries    map[CountryID]struct{}
	countryOrder []CountryID

	tick uint64

	// Events emitted since the last EndTick, for the tick log and the
	// observer feed. External sink delivery stays synchronous.
	tickEvents []protocol.Event
}

func New(cfg Config, logger *log.Logger, sink protocol.EventSink) *World {
	cfg.applyDefaults()
	w := &World{
		cfg:       cfg,
		log:       logger,
		sink:      sink,
		countries: make(map[CountryID]struct{}),
	}
	w.provinces = state.NewStore(cfg.ProvinceCapacity, cfg.SoftProvinceLimit, logger, w)
	w.diplo = diplomacy.NewStore(logger, w)
	return w
}

func (w *World) Config() Config { return w.cfg }
func (w *World) Tick() uint64   { return w.tick }

// Emit implements protocol.EventSink for the owned stores: every event is
// buffered for the current tick and forwarded synchronously, in mutation
// order, to the external sink.
func (w *World) Emit(ev protocol.Event) {
	w.tickEvents = append(w.tickEvents, ev)
	if w.sink != nil {
		w.sink.Emit(ev)
	}
}

// AddCountry registers a political entity. Duplicate ids are rejected with no
// state change.
func (w *World) AddCountry(id CountryID) string {
	if id == 0 {
		if w.log != nil {
			w.log.Printf("world: country id 0 is reserved for unowned")
		}
		return protocol.ErrInvalidRef
	}
	if _, dup := w.countries[id]; dup {
		if w.log != nil {
			w.log.Printf("world: duplicate country id %d rejected", id)
		}
		return protocol.ErrDuplicate
	}
	w.countries[id] = struct{}{}
	w.countryOrder = append(w.countryOrder, id)
	return ""
}

func (w *World) HasCountry(id CountryID) bool {
	_, ok := w.countries[id]
	return ok
}

func (w *World) CountryCount() int { return len(w.countries) }

// Countries returns the registered country ids sorted ascending.
func (w *World) Countries() []CountryID {
	out := make([]CountryID, len(w.countryOrder))
	copy(out, w.countryOrder)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AddProvince inserts a province at loader time. Returns an empty code on
// success.
func (w *World) AddProvince(id ProvinceID, st state.ProvinceState) string {
	_, code := w.provinces.Add(id, st)
	return code
}

// InitComplete propagates the loaded write buffer to the read side and
// announces the populated store to subscribers.
func (w *World) InitComplete() {
	w.provinces.SwapAndSync()
	w.Emit(protocol.SystemInitializedEvent{
		Provinces: w.provinces.IDs().Count(),
		Countries: len(w.countries),
		Tick:      w.tick,
	})
}

// Mutators. All run on the simulation thread against the write buffer at the
// current tick.

func (w *World) SetOwner(id ProvinceID, owner CountryID) bool {
	return w.provinces.SetOwner(id, owner, w.tick)
}

func (w *World) SetController(id ProvinceID, controller CountryID) bool {
	return w.provinces.SetController(id, controller)
}

func (w *World) SetFortLevel(id ProvinceID, level uint8) bool {
	return w.provinces.SetFortLevel(id, level)
}

func (w *World) SetFlag(id ProvinceID, flag state.ProvinceFlags, on bool) bool {
	return w.provinces.SetFlag(id, flag, on)
}

func (w *World) SetBaseOpinion(a, b CountryID, base fixed.Point) {
	w.diplo.SetBaseOpinion(a, b, base)
}

func (w *World) AddOpinionModifier(a, b CountryID, typ uint16, magnitude fixed.Point, duration uint64) bool {
	return w.diplo.AddOpinionModifier(a, b, typ, magnitude, w.tick, duration)
}

func (w *World) RemoveOpinionModifier(a, b CountryID, typ uint16) bool {
	return w.diplo.RemoveOpinionModifier(a, b, typ)
}

func (w *World) DeclareWar(attacker, defender CountryID) bool {
	return w.diplo.DeclareWar(attacker, defender, w.tick)
}

func (w *World) MakePeace(attacker, defender CountryID) bool {
	return w.diplo.MakePeace(attacker, defender, w.tick)
}

func (w *World) SetAlliance(a, b CountryID, on bool) bool {
	return w.diplo.SetAlliance(a, b, on)
}

// Queries.

func (w *World) GetOwner(id ProvinceID) CountryID          { return w.provinces.GetOwner(id) }
func (w *World) GetController(id ProvinceID) CountryID     { return w.provinces.GetController(id) }
func (w *World) OwnedProvinces(c CountryID) []ProvinceID   { return w.provinces.OwnedProvinces(c) }
func (w *World) CountOwned(c CountryID) int                { return w.provinces.CountOwned(c) }
func (w *World) GetOpinion(a, b CountryID) fixed.Point     { return w.diplo.GetOpinion(a, b, w.tick) }
func (w *World) GetOpinionAt(a, b CountryID, tick uint64) fixed.Point {
	return w.diplo.GetOpinion(a, b, tick)
}
func (w *World) IsAtWar(a, b CountryID) bool           { return w.diplo.IsAtWar(a, b) }
func (w *World) GetEnemies(c CountryID) []CountryID    { return w.diplo.Enemies(c) }
func (w *World) AreAllied(a, b CountryID) bool         { return w.diplo.AreAllied(a, b) }
func (w *World) GetAlliesRecursive(c CountryID) []CountryID {
	return w.diplo.AlliesRecursive(c)
}

func (w *World) Provinces() *state.Store     { return w.provinces }
func (w *World) Diplomacy() *diplomacy.Store { return w.diplo }

// Consumer read path.

func (w *World) AcquireReadBuffer() []state.ProvinceState { return w.provinces.AcquireReadBuffer() }
func (w *World) FillOwnerBuffer(dst []uint16) int         { return w.provinces.FillOwnerBuffer(dst) }

// TickLogEntry is the structured per-tick record written to the compressed
// tick log.
type TickLogEntry struct {
	Tick           uint64 `json:"tick"`
	SyncedSlots    int    `json:"synced_slots"`
	SweptModifiers int    `json:"swept_modifiers,omitempty"`
	Events         int    `json:"events,omitempty"`
	Digest         string `json:"digest,omitempty"`
}

// TickSummary is what EndTick hands back to the loop driver.
type TickSummary struct {
	Tick           uint64
	SyncedSlots    int
	SweptModifiers int
	Events         []protocol.Event
}

// EndTick closes the current tick: runs the bulk modifier sweep on its
// cadence, syncs dirty slots to the read buffer, drains the tick's event
// buffer and advances the tick counter. This is the swap point — it must not
// overlap reads of the read buffer.
func (w *World) EndTick() TickSummary {
	sum := TickSummary{Tick: w.tick}
	if w.cfg.DecayEveryTicks > 0 && w.tick > 0 && w.tick%uint64(w.cfg.DecayEveryTicks) == 0 {
		sum.SweptModifiers = w.diplo.DecayOpinionModifiers(w.tick)
	}
	sum.SyncedSlots = w.provinces.SwapAndSync()
	sum.Events = w.tickEvents
	w.tickEvents = nil
	w.tick++
	return sum
}
