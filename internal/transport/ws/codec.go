package ws

import (
	"encoding/json"

	"hegemony.sim/internal/protocol"
)

func decode(b []byte, v any) error {
	return json.Unmarshal(b, v)
}

func encodeFrame(frame protocol.FrameMsg) []byte {
	b, _ := json.Marshal(frame)
	return b
}
