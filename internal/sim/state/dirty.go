package state

// DirtySet records which slots changed since the last buffer sync. It is a
// set, not a queue: per-slot writes within one tick are idempotent, so sync
// order does not matter.
type DirtySet struct {
	slots map[int]struct{}
}

func NewDirtySet(capacity int) *DirtySet {
	return &DirtySet{slots: make(map[int]struct{}, capacity)}
}

func (d *DirtySet) Mark(slot int) {
	d.slots[slot] = struct{}{}
}

func (d *DirtySet) Len() int {
	return len(d.slots)
}

func (d *DirtySet) Clear() {
	clear(d.slots)
}

// Drain calls fn for every dirty slot, then clears the set.
func (d *DirtySet) Drain(fn func(slot int)) int {
	n := len(d.slots)
	for slot := range d.slots {
		fn(slot)
	}
	clear(d.slots)
	return n
}
