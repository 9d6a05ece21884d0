package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"hegemony.sim/internal/protocol"
)

func dialFeed(t *testing.T, f *Feed, wantOwners bool) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(f.Handler())
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	hello := protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, WantOwners: wantOwners}
	if err := conn.WriteJSON(hello); err != nil {
		t.Fatalf("hello: %v", err)
	}
	return conn
}

func testInfo() (string, uint64, int, int) {
	return "w1", 42, 5, 2
}

func TestHandshakeWelcome(t *testing.T) {
	f := NewFeed(testInfo, nil)
	conn := dialFeed(t, f, false)

	var welcome protocol.WelcomeMsg
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&welcome); err != nil {
		t.Fatalf("welcome: %v", err)
	}
	if welcome.Type != protocol.TypeWelcome || welcome.WorldID != "w1" || welcome.Tick != 42 {
		t.Fatalf("welcome = %+v", welcome)
	}
	if welcome.SessionID == "" {
		t.Fatalf("missing session id")
	}
}

func TestBroadcastFrame(t *testing.T) {
	f := NewFeed(testInfo, nil)
	conn := dialFeed(t, f, true)

	var welcome protocol.WelcomeMsg
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&welcome); err != nil {
		t.Fatalf("welcome: %v", err)
	}

	// The session registers during the handshake, which runs before WELCOME
	// is written, so broadcasting now is safe.
	f.Broadcast(43, []uint16{1, 1, 2, 0, 2}, []protocol.Event{
		protocol.OwnershipChangedEvent{Province: 3, OldOwner: 1, NewOwner: 2, Tick: 43},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	var frame protocol.FrameMsg
	if err := json.Unmarshal(raw, &frame); err != nil {
		t.Fatalf("frame decode: %v", err)
	}
	if frame.Tick != 43 || len(frame.Owners) != 5 || len(frame.Events) != 1 {
		t.Fatalf("frame = %+v", frame)
	}
	if frame.Events[0].Kind != protocol.EventOwnershipChanged || frame.Events[0].NewOwner != 2 {
		t.Fatalf("frame event = %+v", frame.Events[0])
	}
}

func TestRejectsBadHello(t *testing.T) {
	f := NewFeed(testInfo, nil)
	srv := httptest.NewServer(f.Handler())
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.WriteJSON(protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: "0.9"})
	var msg protocol.ErrorMsg
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != protocol.TypeError || msg.Code != protocol.ErrProtoBadRequest {
		t.Fatalf("msg = %+v", msg)
	}
	if f.SessionCount() != 0 {
		t.Fatalf("rejected hello left a session behind")
	}
}
