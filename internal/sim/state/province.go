package state

import "hegemony.sim/internal/protocol"

type ProvinceID = protocol.ProvinceID
type CountryID = protocol.CountryID

type TerrainType uint8

const (
	TerrainPlains TerrainType = iota
	TerrainForest
	TerrainHills
	TerrainMountain
	TerrainDesert
	TerrainMarsh
	TerrainOcean
)

// ProvinceFlags is a fixed-width bitset of per-province booleans. Meanings are
// assigned here rather than through an open-ended map so the record keeps its
// fixed size.
type ProvinceFlags uint16

const (
	FlagCoastal ProvinceFlags = 1 << iota
	FlagCapital
	FlagUnderSiege
	FlagImpassable
)

func (f ProvinceFlags) Has(bit ProvinceFlags) bool { return f&bit != 0 }

// ProvinceState is the packed per-province record: 8 bytes, mutated in place
// for the lifetime of the session. Owner 0 means unowned. Controller equals
// Owner unless the province is occupied.
type ProvinceState struct {
	Owner      CountryID
	Controller CountryID
	Terrain    TerrainType
	Fort       uint8
	Flags      ProvinceFlags
}
