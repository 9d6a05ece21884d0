// Package snapshot defines the versioned persisted form of the simulation
// store and its file codec (JSON header line + gob body, zstd-compressed).
//
// Derived structures (the reverse ownership index, the wars-by-country and
// allies-by-country mirrors, opinion modifier chains) are deliberately absent:
// they are rebuilt deterministically from the persisted fields on load, so a
// save can never carry a desynced copy of them.
package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

type Header struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
	Tick    uint64 `json:"tick"`
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	// Identity layer: province ids in slot order, plus the recorded count
	// (restored via RestoreCount after the table is reloaded).
	Provinces []ProvinceV1 `json:"provinces"`
	Count     int          `json:"count"`
	Countries []uint16     `json:"countries"`

	Relations []RelationV1 `json:"relations"`
	// One flat append-only list shared by all relation pairs, in application
	// order; per-relation chains are implied by list order.
	Modifiers []ModifierV1 `json:"modifiers"`
	Wars      []WarV1      `json:"wars"`
}

type ProvinceV1 struct {
	ID         uint16 `json:"id"`
	Owner      uint16 `json:"owner"`
	Controller uint16 `json:"controller"`
	Terrain    uint8  `json:"terrain"`
	Fort       uint8  `json:"fort"`
	Flags      uint16 `json:"flags"`
}

type RelationV1 struct {
	Key            uint32 `json:"key"`
	Base           int64  `json:"base"` // fixed.Point raw bits
	Alliance       bool   `json:"alliance,omitempty"`
	NonAggression  bool   `json:"non_aggression,omitempty"`
	Guarantee      bool   `json:"guarantee,omitempty"`
	MilitaryAccess bool   `json:"military_access,omitempty"`
	AtWar          bool   `json:"at_war,omitempty"`
}

type ModifierV1 struct {
	Key           uint32 `json:"key"`
	Type          uint16 `json:"type"`
	Magnitude     int64  `json:"magnitude"` // fixed.Point raw bits
	AppliedTick   uint64 `json:"applied_tick"`
	DurationTicks uint64 `json:"duration_ticks"`
}

type WarV1 struct {
	A uint16 `json:"a"`
	B uint16 `json:"b"`
}

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)
	defer bw.Flush()

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// Header line is for quick inspection; gob carries it too.
	_, _ = br.ReadBytes('\n')

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}
