package protocol

import (
	"encoding/json"
	"fmt"
)

// BaseMsg is decoded first to route on type.
type BaseMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

func DecodeBase(b []byte) (BaseMsg, error) {
	var m BaseMsg
	if err := json.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("decode base: %w", err)
	}
	if m.Type == "" {
		return m, fmt.Errorf("missing type")
	}
	return m, nil
}

// HELLO (observer -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ObserverName    string `json:"observer_name,omitempty"`
	// When true, FRAME messages include the full flat owner buffer each tick.
	WantOwners bool `json:"want_owners,omitempty"`
}

// WELCOME (server -> observer)
type WelcomeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	SessionID       string `json:"session_id"`
	WorldID         string `json:"world_id"`
	Tick            uint64 `json:"tick"`
	Provinces       int    `json:"provinces"`
	Countries       int    `json:"countries"`
}

// FRAME (server -> observer), one per simulation tick.
type FrameMsg struct {
	Type   string      `json:"type"`
	Tick   uint64      `json:"tick"`
	Owners []uint16    `json:"owners,omitempty"`
	Events []EventWire `json:"events,omitempty"`
}

// ERROR (server -> observer)
type ErrorMsg struct {
	Type   string `json:"type"`
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

// EventWire is the flattened wire form of an Event; unused fields are omitted.
type EventWire struct {
	Kind     string     `json:"kind"`
	Province ProvinceID `json:"province,omitempty"`
	OldOwner CountryID  `json:"old_owner,omitempty"`
	NewOwner CountryID  `json:"new_owner,omitempty"`
	A        CountryID  `json:"a,omitempty"`
	B        CountryID  `json:"b,omitempty"`
	Count    int        `json:"count,omitempty"`
	Tick     uint64     `json:"tick"`
}

// WireEvent flattens a typed event for the observer feed.
func WireEvent(ev Event) EventWire {
	switch e := ev.(type) {
	case OwnershipChangedEvent:
		return EventWire{Kind: e.Kind(), Province: e.Province, OldOwner: e.OldOwner, NewOwner: e.NewOwner, Tick: e.Tick}
	case WarDeclaredEvent:
		return EventWire{Kind: e.Kind(), A: e.Attacker, B: e.Defender, Tick: e.Tick}
	case PeaceMadeEvent:
		return EventWire{Kind: e.Kind(), A: e.Attacker, B: e.Defender, Tick: e.Tick}
	case SystemInitializedEvent:
		return EventWire{Kind: e.Kind(), Count: e.Provinces, Tick: e.Tick}
	default:
		return EventWire{Kind: ev.Kind()}
	}
}
