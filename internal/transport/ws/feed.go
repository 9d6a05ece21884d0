// Package ws serves the observer feed: rendering, UI and tooling clients
// subscribe over a websocket and receive one FRAME per simulation tick with
// the emitted events and, on request, the flat owner buffer. The feed only
// ever sees copies made on the simulation thread, so observers can never
// reach across the swap boundary into live storage.
package ws

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"hegemony.sim/internal/protocol"
)

// WelcomeInfo supplies the handshake payload; called on connect.
type WelcomeInfo func() (worldID string, tick uint64, provinces, countries int)

type Feed struct {
	log  *log.Logger
	info WelcomeInfo

	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	id         string
	out        chan []byte
	wantOwners bool
}

func NewFeed(info WelcomeInfo, logger *log.Logger) *Feed {
	return &Feed{
		log:      logger,
		info:     info,
		sessions: make(map[string]*session),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (f *Feed) SessionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

func (f *Feed) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := f.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sess := f.handshake(conn)
		if sess == nil {
			return
		}
		defer f.drop(sess.id)

		done := make(chan struct{})

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-done:
					return
				case b, ok := <-sess.out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						return
					}
				}
			}
		}()

		// Reader loop: the feed is one-way, reads only detect disconnect.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		close(done)
	}
}

func (f *Feed) handshake(conn *websocket.Conn) *session {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		f.reject(conn, protocol.ErrProtoBadRequest, "expected HELLO")
		return nil
	}
	var hello protocol.HelloMsg
	if err := decode(msg, &hello); err != nil || hello.ProtocolVersion != protocol.Version {
		f.reject(conn, protocol.ErrProtoBadRequest, "bad protocol version")
		return nil
	}

	worldID, tick, provinces, countries := f.info()
	sess := &session{
		id:         uuid.NewString(),
		out:        make(chan []byte, 32),
		wantOwners: hello.WantOwners,
	}

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       sess.id,
		WorldID:         worldID,
		Tick:            tick,
		Provinces:       provinces,
		Countries:       countries,
	}

	// Register before writing WELCOME: an observer that has seen the welcome
	// must not miss the next broadcast.
	f.mu.Lock()
	f.sessions[sess.id] = sess
	f.mu.Unlock()

	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteJSON(welcome); err != nil {
		f.drop(sess.id)
		return nil
	}
	if f.log != nil {
		f.log.Printf("ws: observer %s connected (owners=%v)", sess.id, sess.wantOwners)
	}
	return sess
}

func (f *Feed) reject(conn *websocket.Conn, code, detail string) {
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	_ = conn.WriteJSON(protocol.ErrorMsg{Type: protocol.TypeError, Code: code, Detail: detail})
}

func (f *Feed) drop(id string) {
	f.mu.Lock()
	sess, ok := f.sessions[id]
	if ok {
		delete(f.sessions, id)
	}
	f.mu.Unlock()
	if ok {
		close(sess.out)
		if f.log != nil {
			f.log.Printf("ws: observer %s disconnected", id)
		}
	}
}

// Broadcast fans one tick's frame out to every session. owners is the
// caller's copy of the flat owner buffer; sessions that did not ask for it
// get the events-only variant. Slow consumers lose frames rather than ever
// stalling the caller.
func (f *Feed) Broadcast(tick uint64, owners []uint16, events []protocol.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sessions) == 0 {
		return
	}

	wire := make([]protocol.EventWire, 0, len(events))
	for _, ev := range events {
		wire = append(wire, protocol.WireEvent(ev))
	}

	var lean, full []byte
	for _, sess := range f.sessions {
		var frame []byte
		if sess.wantOwners {
			if full == nil {
				full = encodeFrame(protocol.FrameMsg{Type: protocol.TypeFrame, Tick: tick, Owners: owners, Events: wire})
			}
			frame = full
		} else {
			if lean == nil {
				lean = encodeFrame(protocol.FrameMsg{Type: protocol.TypeFrame, Tick: tick, Events: wire})
			}
			frame = lean
		}
		select {
		case sess.out <- frame:
		default:
			// Dropped; the observer resyncs from the next frame's owners.
		}
	}
}
