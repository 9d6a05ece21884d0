package state

import (
	"log"
	"sort"
)

// OwnershipIndex is the reverse multi-map from owning country to the set of
// owned provinces, maintained incrementally on every ownership mutation so
// "provinces of country X" never scans the full table.
//
// Bucket 0 (unowned) is deliberately never populated: it would be the largest
// bucket in the system. The unowned count is derived instead (live provinces
// minus total owned).
type OwnershipIndex struct {
	log     *log.Logger
	buckets map[CountryID]map[ProvinceID]struct{}
	total   int
}

func NewOwnershipIndex(logger *log.Logger) *OwnershipIndex {
	return &OwnershipIndex{
		log:     logger,
		buckets: make(map[CountryID]map[ProvinceID]struct{}),
	}
}

func (x *OwnershipIndex) add(owner CountryID, id ProvinceID) {
	if owner == 0 {
		return
	}
	b := x.buckets[owner]
	if b == nil {
		b = make(map[ProvinceID]struct{})
		x.buckets[owner] = b
	}
	if _, dup := b[id]; dup {
		if x.log != nil {
			x.log.Printf("ownership: province %d already in bucket %d, index state suspect", id, owner)
		}
		return
	}
	b[id] = struct{}{}
	x.total++
}

// remove is a defensive no-op when the expected entry is missing: a corrupt
// index must not take down the tick.
func (x *OwnershipIndex) remove(owner CountryID, id ProvinceID) {
	if owner == 0 {
		return
	}
	b := x.buckets[owner]
	if b == nil {
		if x.log != nil {
			x.log.Printf("ownership: no bucket for country %d removing province %d", owner, id)
		}
		return
	}
	if _, ok := b[id]; !ok {
		if x.log != nil {
			x.log.Printf("ownership: province %d missing from bucket %d", id, owner)
		}
		return
	}
	delete(b, id)
	x.total--
	if len(b) == 0 {
		delete(x.buckets, owner)
	}
}

// Owned returns the provinces owned by owner, sorted by id for deterministic
// iteration. O(k) in the bucket size. Owner 0 returns nil; derive the unowned
// set from the table if ever needed.
func (x *OwnershipIndex) Owned(owner CountryID) []ProvinceID {
	b := x.buckets[owner]
	if len(b) == 0 {
		return nil
	}
	out := make([]ProvinceID, 0, len(b))
	for id := range b {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Count is O(1): the bucket size, never a materialized list.
func (x *OwnershipIndex) Count(owner CountryID) int {
	return len(x.buckets[owner])
}

// TotalOwned is the number of provinces in any non-zero bucket.
func (x *OwnershipIndex) TotalOwned() int {
	return x.total
}

// Contains reports whether the (owner, id) pair is indexed.
func (x *OwnershipIndex) Contains(owner CountryID, id ProvinceID) bool {
	_, ok := x.buckets[owner][id]
	return ok
}

// Rebuild derives the index from persisted owner fields after a load. The
// index itself is never serialized; replaying ownership is the one source of
// truth, so a save can never carry a desynced copy.
func (x *OwnershipIndex) Rebuild(ids []ProvinceID, states []ProvinceState) {
	x.buckets = make(map[CountryID]map[ProvinceID]struct{})
	x.total = 0
	for slot, id := range ids {
		if owner := states[slot].Owner; owner != 0 {
			x.add(owner, id)
		}
	}
}
