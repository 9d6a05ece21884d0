package state

// IDTable is a bijection between stable province ids (assigned by the game
// data files) and dense slot indices (assigned by insertion order). Slots are
// never compacted, so an index handed out once stays valid for the session.
type IDTable struct {
	slots map[ProvinceID]int
	ids   []ProvinceID
	count int
}

func NewIDTable(capacity int) *IDTable {
	return &IDTable{
		slots: make(map[ProvinceID]int, capacity),
		ids:   make([]ProvinceID, 0, capacity),
	}
}

// Add maps id to the next dense slot. The second result is false if id is
// already mapped; the table is unchanged in that case.
func (t *IDTable) Add(id ProvinceID) (int, bool) {
	if _, dup := t.slots[id]; dup {
		return 0, false
	}
	slot := len(t.ids)
	t.slots[id] = slot
	t.ids = append(t.ids, id)
	t.count++
	return slot, true
}

// IndexOf is the single hash lookup on every hot-path query; callers keep the
// dense index for the rest of the tick instead of re-hashing.
func (t *IDTable) IndexOf(id ProvinceID) (int, bool) {
	slot, ok := t.slots[id]
	return slot, ok
}

// IDs returns the active ids in insertion (slot) order. The returned slice is
// the table's own storage; callers must not mutate or retain it across a
// Clear.
func (t *IDTable) IDs() []ProvinceID {
	return t.ids
}

// Active is the number of live mappings.
func (t *IDTable) Active() int {
	return len(t.ids)
}

// Count is the consumer-visible entity count. It survives Clear so that a
// clear-then-reload during save restoration never exposes a transient empty
// table to index-dependent consumers; see RestoreCount.
func (t *IDTable) Count() int {
	return t.count
}

// Clear drops all mappings but leaves Count at its previous value until
// RestoreCount is called.
func (t *IDTable) Clear() {
	t.slots = make(map[ProvinceID]int, cap(t.ids))
	t.ids = t.ids[:0]
}

func (t *IDTable) RestoreCount(n int) {
	t.count = n
}
