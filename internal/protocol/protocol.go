package protocol

const Version = "1.0"

// ProvinceID is the stable numeric id assigned to a province by the game data
// files. It never changes for the lifetime of a session; 0 is not a valid id.
type ProvinceID uint16

// CountryID identifies a political entity. 0 means "no country" (unowned).
type CountryID uint16

// Message types on the observer feed.
const (
	TypeHello   = "HELLO"
	TypeWelcome = "WELCOME"
	TypeFrame   = "FRAME"
	TypeError   = "ERROR"
)
