package protocol

// Events are plain data records emitted synchronously inside the mutating
// call, in mutation order. Subscribers must not retain references to internal
// storage; events carry copies of everything they need.

const (
	EventOwnershipChanged  = "OWNERSHIP_CHANGED"
	EventWarDeclared       = "WAR_DECLARED"
	EventPeaceMade         = "PEACE_MADE"
	EventSystemInitialized = "SYSTEM_INITIALIZED"
)

type Event interface {
	Kind() string
}

// EventSink receives state-transition events. Implementations must be cheap
// and non-blocking; they run on the simulation thread.
type EventSink interface {
	Emit(ev Event)
}

type OwnershipChangedEvent struct {
	Province ProvinceID `json:"province"`
	OldOwner CountryID  `json:"old_owner"`
	NewOwner CountryID  `json:"new_owner"`
	Tick     uint64     `json:"tick"`
}

func (OwnershipChangedEvent) Kind() string { return EventOwnershipChanged }

type WarDeclaredEvent struct {
	Attacker CountryID `json:"attacker"`
	Defender CountryID `json:"defender"`
	Tick     uint64    `json:"tick"`
}

func (WarDeclaredEvent) Kind() string { return EventWarDeclared }

type PeaceMadeEvent struct {
	Attacker CountryID `json:"attacker"`
	Defender CountryID `json:"defender"`
	Tick     uint64    `json:"tick"`
}

func (PeaceMadeEvent) Kind() string { return EventPeaceMade }

type SystemInitializedEvent struct {
	Provinces int    `json:"provinces"`
	Countries int    `json:"countries"`
	Tick      uint64 `json:"tick"`
}

func (SystemInitializedEvent) Kind() string { return EventSystemInitialized }
