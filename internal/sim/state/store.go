package state

import (
	"log"

	"hegemony.sim/internal/protocol"
)

// Store owns the province table, the identity layer and the reverse ownership
// index, and keeps the three consistent inside every mutating call. All
// mutators run on the simulation thread; consumers read through
// AcquireReadBuffer after each SwapAndSync.
type Store struct {
	log    *log.Logger
	tbl    *Table
	ids    *IDTable
	owners *OwnershipIndex
	sink   protocol.EventSink
}

func NewStore(capacity, softLimit int, logger *log.Logger, sink protocol.EventSink) *Store {
	return &Store{
		log:    logger,
		tbl:    NewTable(capacity, softLimit, logger),
		ids:    NewIDTable(capacity),
		owners: NewOwnershipIndex(logger),
		sink:   sink,
	}
}

func (s *Store) emit(ev protocol.Event) {
	if s.sink != nil {
		s.sink.Emit(ev)
	}
}

// Add inserts a new province at loader time. Returns the assigned slot and an
// empty code on success, or one of the protocol error codes; a rejected insert
// leaves all state unchanged.
func (s *Store) Add(id ProvinceID, st ProvinceState) (int, string) {
	if _, dup := s.ids.IndexOf(id); dup {
		if s.log != nil {
			s.log.Printf("store: duplicate province id %d rejected", id)
		}
		return 0, protocol.ErrDuplicate
	}
	slot, ok := s.tbl.Reserve()
	if !ok {
		return 0, protocol.ErrCapacity
	}
	if _, ok := s.ids.Add(id); !ok {
		// Unreachable after the duplicate check above; Reserve has no undo,
		// so the slot stays burned rather than risking index reuse.
		return 0, protocol.ErrDuplicate
	}
	if st.Controller == 0 {
		st.Controller = st.Owner
	}
	s.tbl.write[slot] = st
	s.tbl.MarkDirty(slot)
	s.owners.add(st.Owner, id)
	return slot, ""
}

// SetOwner changes a province's owner. The write-buffer mutation, the reverse
// index update and the event emission happen inside this one call and are not
// interruptible by another write. No-op (and no event) if the owner is
// unchanged or the id is unknown.
func (s *Store) SetOwner(id ProvinceID, newOwner CountryID, tick uint64) bool {
	slot, ok := s.ids.IndexOf(id)
	if !ok {
		if s.log != nil {
			s.log.Printf("store: SetOwner on unknown province %d", id)
		}
		return false
	}
	st := &s.tbl.write[slot]
	old := st.Owner
	if old == newOwner {
		return false
	}
	st.Owner = newOwner
	if st.Controller == old {
		// Not occupied: control follows ownership.
		st.Controller = newOwner
	}
	s.owners.remove(old, id)
	s.owners.add(newOwner, id)
	s.tbl.MarkDirty(slot)
	s.emit(protocol.OwnershipChangedEvent{Province: id, OldOwner: old, NewOwner: newOwner, Tick: tick})
	return true
}

// SetController marks occupation (controller differs from owner) or restores
// control to the owner. The under-siege flag is the caller's concern.
func (s *Store) SetController(id ProvinceID, controller CountryID) bool {
	slot, ok := s.ids.IndexOf(id)
	if !ok {
		if s.log != nil {
			s.log.Printf("store: SetController on unknown province %d", id)
		}
		return false
	}
	st := &s.tbl.write[slot]
	if st.Controller == controller {
		return false
	}
	st.Controller = controller
	s.tbl.MarkDirty(slot)
	return true
}

func (s *Store) SetFortLevel(id ProvinceID, level uint8) bool {
	slot, ok := s.ids.IndexOf(id)
	if !ok {
		return false
	}
	if s.tbl.write[slot].Fort == level {
		return false
	}
	s.tbl.write[slot].Fort = level
	s.tbl.MarkDirty(slot)
	return true
}

func (s *Store) SetFlag(id ProvinceID, flag ProvinceFlags, on bool) bool {
	slot, ok := s.ids.IndexOf(id)
	if !ok {
		return false
	}
	st := &s.tbl.write[slot]
	next := st.Flags
	if on {
		next |= flag
	} else {
		next &^= flag
	}
	if next == st.Flags {
		return false
	}
	st.Flags = next
	s.tbl.MarkDirty(slot)
	return true
}

// GetOwner reads the authoritative write side; simulation thread only.
// Unknown ids report unowned, the documented miss default: hot-path queries
// never fail on a transiently absent entity.
func (s *Store) GetOwner(id ProvinceID) CountryID {
	slot, ok := s.ids.IndexOf(id)
	if !ok {
		return 0
	}
	return s.tbl.write[slot].Owner
}

func (s *Store) GetController(id ProvinceID) CountryID {
	slot, ok := s.ids.IndexOf(id)
	if !ok {
		return 0
	}
	return s.tbl.write[slot].Controller
}

func (s *Store) GetState(id ProvinceID) (ProvinceState, bool) {
	slot, ok := s.ids.IndexOf(id)
	if !ok {
		return ProvinceState{}, false
	}
	return s.tbl.write[slot], true
}

// OwnedProvinces walks the owner's index bucket: O(k), never a table scan.
func (s *Store) OwnedProvinces(owner CountryID) []ProvinceID {
	return s.owners.Owned(owner)
}

// CountOwned is O(1). Owner 0 reports the unowned count, derived as live
// provinces minus total owned (the unowned bucket itself is never populated).
func (s *Store) CountOwned(owner CountryID) int {
	if owner == 0 {
		return s.ids.Active() - s.owners.TotalOwned()
	}
	return s.owners.Count(owner)
}

func (s *Store) IDs() *IDTable              { return s.ids }
func (s *Store) Ownership() *OwnershipIndex { return s.owners }

func (s *Store) AcquireReadBuffer() []ProvinceState  { return s.tbl.AcquireReadBuffer() }
func (s *Store) AcquireWriteBuffer() []ProvinceState { return s.tbl.AcquireWriteBuffer() }
func (s *Store) FillOwnerBuffer(dst []uint16) int    { return s.tbl.FillOwnerBuffer(dst) }
func (s *Store) SwapAndSync() int                    { return s.tbl.SwapAndSync() }
func (s *Store) DirtyCount() int                     { return s.tbl.DirtyCount() }
func (s *Store) Capacity() int                       { return s.tbl.Capacity() }

// RestoreFromSlots reloads the store from persisted slot-ordered state: the
// identity map first, then the recorded count, then the reverse index rebuilt
// by replaying owner fields. Returns false if the persisted set no longer
// fits the configured capacity.
func (s *Store) RestoreFromSlots(ids []ProvinceID, states []ProvinceState, count int) bool {
	if len(ids) != len(states) || len(ids) > s.tbl.capacity {
		return false
	}
	s.ids.Clear()
	for _, id := range ids {
		if _, ok := s.ids.Add(id); !ok {
			if s.log != nil {
				s.log.Printf("store: duplicate province id %d in save", id)
			}
			return false
		}
	}
	s.tbl.used = len(ids)
	copy(s.tbl.write, states)
	copy(s.tbl.read, states)
	s.tbl.dirty.Clear()
	s.ids.RestoreCount(count)
	s.owners.Rebuild(ids, states)
	return true
}
