package world

import (
	"fmt"

	"hegemony.sim/internal/persistence/snapshot"
	"hegemony.sim/internal/protocol"
	"hegemony.sim/internal/sim/state"
)

const snapshotVersion = 1

// ExportSnapshot captures the full persisted form of the store: the dense
// province array with its identity map and recorded count, the country
// registry, and the diplomacy storage. Derived indices are not exported.
func (w *World) ExportSnapshot() snapshot.SnapshotV1 {
	ids := w.provinces.IDs().IDs()
	states := w.provinces.AcquireWriteBuffer()
	provs := make([]snapshot.ProvinceV1, len(ids))
	for slot, id := range ids {
		st := states[slot]
		provs[slot] = snapshot.ProvinceV1{
			ID:         uint16(id),
			Owner:      uint16(st.Owner),
			Controller: uint16(st.Controller),
			Terrain:    uint8(st.Terrain),
			Fort:       st.Fort,
			Flags:      uint16(st.Flags),
		}
	}

	countries := make([]uint16, 0, len(w.countryOrder))
	for _, c := range w.countryOrder {
		countries = append(countries, uint16(c))
	}

	rels, mods, wars := w.diplo.ExportV1()

	return snapshot.SnapshotV1{
		Header:    snapshot.Header{Version: snapshotVersion, WorldID: w.cfg.ID, Tick: w.tick},
		Provinces: provs,
		Count:     w.provinces.IDs().Count(),
		Countries: countries,
		Relations: rels,
		Modifiers: mods,
		Wars:      wars,
	}
}

// RestoreSnapshot replaces the store's contents from a snapshot. Identity
// mappings are restored first, then the recorded count, then the reverse
// ownership index is rebuilt by replaying owner fields; diplomacy mirrors and
// modifier chains are rebuilt the same way. Failures are reported in the
// structured result, never panicked: bad save data is a user-visible
// load-time condition.
func (w *World) RestoreSnapshot(snap snapshot.SnapshotV1) protocol.LoadResult {
	if snap.Header.Version != snapshotVersion {
		return protocol.LoadResult{
			Code:   protocol.ErrBadSave,
			Detail: fmt.Sprintf("unsupported snapshot version %d", snap.Header.Version),
		}
	}
	if len(snap.Provinces) > w.provinces.Capacity() {
		return protocol.LoadResult{
			Code:   protocol.ErrBadSave,
			Detail: fmt.Sprintf("%d provinces exceed capacity %d", len(snap.Provinces), w.provinces.Capacity()),
		}
	}

	ids := make([]ProvinceID, len(snap.Provinces))
	states := make([]state.ProvinceState, len(snap.Provinces))
	for i, pv := range snap.Provinces {
		ids[i] = ProvinceID(pv.ID)
		states[i] = state.ProvinceState{
			Owner:      CountryID(pv.Owner),
			Controller: CountryID(pv.Controller),
			Terrain:    state.TerrainType(pv.Terrain),
			Fort:       pv.Fort,
			Flags:      state.ProvinceFlags(pv.Flags),
		}
	}
	if !w.provinces.RestoreFromSlots(ids, states, snap.Count) {
		return protocol.LoadResult{Code: protocol.ErrBadSave, Detail: "province table rejected save data"}
	}

	w.countries = make(map[CountryID]struct{}, len(snap.Countries))
	w.countryOrder = w.countryOrder[:0]
	for _, c := range snap.Countries {
		if code := w.AddCountry(CountryID(c)); code != "" {
			return protocol.LoadResult{Code: protocol.ErrBadSave, Detail: fmt.Sprintf("country %d: %s", c, code)}
		}
	}

	if err := w.diplo.RestoreV1(snap.Relations, snap.Modifiers, snap.Wars); err != nil {
		return protocol.LoadResult{Code: protocol.ErrBadSave, Detail: err.Error()}
	}

	w.tick = snap.Header.Tick
	w.tickEvents = nil
	w.Emit(protocol.SystemInitializedEvent{
		Provinces: w.provinces.IDs().Count(),
		Countries: len(w.countries),
		Tick:      w.tick,
	})
	return protocol.LoadResult{
		OK:        true,
		Provinces: len(snap.Provinces),
		Countries: len(snap.Countries),
	}
}
