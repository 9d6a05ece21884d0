package protocol

const (
	// Store mutation layer.
	ErrCapacity   = "E_CAPACITY"
	ErrDuplicate  = "E_DUPLICATE"
	ErrInvalidRef = "E_INVALID_REF"
	ErrSoftLimit  = "E_SOFT_LIMIT"

	// Load/restore layer.
	ErrBadSave      = "E_BAD_SAVE"
	ErrBadScenario  = "E_BAD_SCENARIO"
	ErrMissingEntry = "E_MISSING_ENTRY"

	// Observer transport.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
)

var knownCodes = map[string]struct{}{
	ErrCapacity:        {},
	ErrDuplicate:       {},
	ErrInvalidRef:      {},
	ErrSoftLimit:       {},
	ErrBadSave:         {},
	ErrBadScenario:     {},
	ErrMissingEntry:    {},
	ErrProtoBadRequest: {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}

// LoadResult is the structured outcome of a bulk load (scenario or snapshot
// restore). Load-time failures are reported here rather than thrown; a partial
// load lists every rejected entry with its code.
type LoadResult struct {
	OK        bool            `json:"ok"`
	Code      string          `json:"code,omitempty"`
	Detail    string          `json:"detail,omitempty"`
	Provinces int             `json:"provinces"`
	Countries int             `json:"countries"`
	Rejected  []LoadRejection `json:"rejected,omitempty"`
}

type LoadRejection struct {
	Province ProvinceID `json:"province,omitempty"`
	Country  CountryID  `json:"country,omitempty"`
	Code     string     `json:"code"`
}
