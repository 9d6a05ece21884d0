package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// StateDigest hashes every piece of simulation state in a canonical order.
// Two worlds that processed the same mutation stream produce the same digest
// on any machine; replay and multiplayer verification compare these.
func (w *World) StateDigest(nowTick uint64) string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteU64(h, &tmp, nowTick)

	ids := w.provinces.IDs().IDs()
	states := w.provinces.AcquireWriteBuffer()
	digestWriteU64(h, &tmp, uint64(len(ids)))
	for slot, id := range ids {
		st := states[slot]
		digestWriteU64(h, &tmp, uint64(id))
		digestWriteU64(h, &tmp, uint64(st.Owner))
		digestWriteU64(h, &tmp, uint64(st.Controller))
		digestWriteU64(h, &tmp, uint64(st.Terrain)<<24|uint64(st.Fort)<<16|uint64(st.Flags))
	}

	countries := w.Countries()
	digestWriteU64(h, &tmp, uint64(len(countries)))
	for _, c := range countries {
		digestWriteU64(h, &tmp, uint64(c))
	}

	rels, mods, wars := w.diplo.ExportV1()
	digestWriteU64(h, &tmp, uint64(len(rels)))
	for _, r := range rels {
		digestWriteU64(h, &tmp, uint64(r.Key))
		digestWriteI64(h, &tmp, r.Base)
		h.Write([]byte{
			boolByte(r.Alliance),
			boolByte(r.NonAggression),
			boolByte(r.Guarantee),
			boolByte(r.MilitaryAccess),
			boolByte(r.AtWar),
		})
	}
	digestWriteU64(h, &tmp, uint64(len(mods)))
	for _, m := range mods {
		digestWriteU64(h, &tmp, uint64(m.Key))
		digestWriteU64(h, &tmp, uint64(m.Type))
		digestWriteI64(h, &tmp, m.Magnitude)
		digestWriteU64(h, &tmp, m.AppliedTick)
		digestWriteU64(h, &tmp, m.DurationTicks)
	}
	digestWriteU64(h, &tmp, uint64(len(wars)))
	for _, wr := range wars {
		digestWriteU64(h, &tmp, uint64(wr.A)<<16|uint64(wr.B))
	}

	return hex.EncodeToString(h.Sum(nil))
}

type hashWriter interface {
	Write(p []byte) (n int, err error)
}

func digestWriteU64(h hashWriter, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteI64(h hashWriter, tmp *[8]byte, v int64) {
	digestWriteU64(h, tmp, uint64(v))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
