package diplomacy

import "hegemony.sim/internal/protocol"

type CountryID = protocol.CountryID

// RelationKey is the order-independent canonical key for a country pair:
// min(a,b) in the high half, max(a,b) in the low half.
type RelationKey uint32

func PairKey(a, b CountryID) RelationKey {
	if a > b {
		a, b = b, a
	}
	return RelationKey(uint32(a)<<16 | uint32(b))
}

func (k RelationKey) Split() (CountryID, CountryID) {
	return CountryID(k >> 16), CountryID(k & 0xffff)
}

// Other returns the pair member that is not c, or 0 if c is not in the pair.
func (k RelationKey) Other(c CountryID) CountryID {
	a, b := k.Split()
	switch c {
	case a:
		return b
	case b:
		return a
	}
	return 0
}
