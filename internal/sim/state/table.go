package state

import "log"

// Table holds the double-buffered dense array of province records. The
// simulation thread mutates the write buffer; renderers, UI and networking
// read the read buffer. SwapAndSync copies only dirty slots write->read and is
// the single synchronization barrier: it must not run concurrently with
// either side being touched.
//
// Both buffers are allocated once at construction. Exceeding the hard
// capacity refuses the insert rather than reallocating, because a surprise
// reallocation would invalidate every live slot index in the system.
type Table struct {
	log *log.Logger

	capacity   int
	softLimit  int
	softWarned bool

	read  []ProvinceState
	write []ProvinceState
	used  int

	dirty *DirtySet
}

func NewTable(capacity, softLimit int, logger *log.Logger) *Table {
	if capacity <= 0 {
		capacity = 1
	}
	return &Table{
		log:       logger,
		capacity:  capacity,
		softLimit: softLimit,
		read:      make([]ProvinceState, capacity),
		write:     make([]ProvinceState, capacity),
		dirty:     NewDirtySet(capacity / 8),
	}
}

func (t *Table) Capacity() int { return t.capacity }
func (t *Table) Used() int     { return t.used }

// Reserve claims the next slot for a new province. The second result is false
// when the hard capacity is exhausted.
func (t *Table) Reserve() (int, bool) {
	if t.used >= t.capacity {
		if t.log != nil {
			t.log.Printf("table: capacity %d exhausted, insert refused", t.capacity)
		}
		return 0, false
	}
	slot := t.used
	t.used++
	if t.softLimit > 0 && t.used > t.softLimit && !t.softWarned {
		t.softWarned = true
		if t.log != nil {
			t.log.Printf("table: %d provinces exceeds supported soft limit %d, expect degraded performance", t.used, t.softLimit)
		}
	}
	return slot, true
}

// AcquireWriteBuffer returns the buffer the simulation is currently mutating.
// Simulation thread only.
func (t *Table) AcquireWriteBuffer() []ProvinceState {
	return t.write[:t.used]
}

// AcquireReadBuffer returns the consumer-facing view. It is safe for
// concurrent readers between swaps; holders must re-acquire every tick and
// never retain it across a SwapAndSync.
func (t *Table) AcquireReadBuffer() []ProvinceState {
	return t.read[:t.used]
}

// MarkDirty records a mutated slot for the next sync.
func (t *Table) MarkDirty(slot int) {
	t.dirty.Mark(slot)
}

func (t *Table) DirtyCount() int {
	return t.dirty.Len()
}

// SwapAndSync propagates dirty slots from the write buffer to the read buffer
// and clears the dirty set. Returns the number of slots copied.
func (t *Table) SwapAndSync() int {
	return t.dirty.Drain(func(slot int) {
		t.read[slot] = t.write[slot]
	})
}

// FillOwnerBuffer copies every province's owner from the read buffer into dst
// in one linear pass, bypassing per-entity index lookups. Returns the number
// of slots written. Built for the texture-upload path, which wants a flat
// array every frame.
func (t *Table) FillOwnerBuffer(dst []uint16) int {
	n := t.used
	if len(dst) < n {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = uint16(t.read[i].Owner)
	}
	return n
}
