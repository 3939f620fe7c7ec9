package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nebulus-dev/gantry/pkg/state"
)

// wsMessage is the frame format on the state sync channel, both
// directions.
type wsMessage struct {
	Type string      `json:"type"`
	Data state.State `json:"data,omitempty"`
}

const (
	wsTypeSnapshot = "snapshot"
	wsTypeSet      = "set"

	wsWriteTimeout = 10 * time.Second
)

// handleWebsocket upgrades the connection and keeps the client's view
// of the global store current: the full snapshot on connect, then a
// snapshot after every store change. Inbound "set" frames merge into
// the store, which fans back out to every connected client including
// the sender.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Snapshots are written from store notifications, which run on the
	// updater's goroutine. Serialize writes through a channel owned by
	// this handler; a slow client drops intermediate snapshots rather
	// than blocking every subscriber.
	snapshots := make(chan state.State, 1)
	push := func(snap state.State) {
		for {
			select {
			case snapshots <- snap:
				return
			default:
				// Full: discard the stale queued snapshot.
				select {
				case <-snapshots:
				default:
				}
			}
		}
	}

	unsubscribe := s.store.Subscribe(push)
	defer unsubscribe()

	push(s.store.GetState())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg wsMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseNormalClosure) {
					s.logger.Error("websocket read error", "error", err)
				}
				return
			}
			if msg.Type == wsTypeSet && msg.Data != nil {
				s.store.SetState(msg.Data)
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case snap := <-snapshots:
			payload, err := json.Marshal(wsMessage{Type: wsTypeSnapshot, Data: snap})
			if err != nil {
				s.logger.Error("snapshot marshal failed", "error", err)
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.logger.Error("websocket write error", "error", err)
				return
			}
		}
	}
}
