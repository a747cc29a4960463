package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/parabox-puzzle-game/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Outbound messages queued per watcher before it is considered stalled.
	sendQueueSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		return true
	},
}

// Message is the envelope delivered to watchers of a session.
type Message struct {
	SessionID string             `json:"session_id"`
	State     *service.GameState `json:"state,omitempty"`
	Event     string             `json:"event,omitempty"`
	Data      interface{}        `json:"data,omitempty"`
}

// watcher is one connected client observing a single session. Its out
// channel decouples publishing from the connection's write loop; a watcher
// whose queue fills up is detached rather than allowed to stall the hub.
type watcher struct {
	conn      *websocket.Conn
	out       chan []byte
	sessionID string
}

// Hub fans post-turn snapshots out to every watcher of a session. Publishing
// is synchronous: the payload is marshaled once and queued onto each
// watcher, so callers need no background loop for broadcasts to go out.
type Hub struct {
	mu       sync.RWMutex
	watchers map[string]map[*watcher]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		watchers: make(map[string]map[*watcher]struct{}),
	}
}

// ServeWS upgrades the request and attaches the connection as a watcher of
// the given session.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	wt := &watcher{
		conn:      conn,
		out:       make(chan []byte, sendQueueSize),
		sessionID: sessionID,
	}
	h.attach(wt)

	go wt.writeLoop()
	go wt.readLoop(h)
}

// BroadcastState delivers a post-turn world snapshot to all watchers of a
// session.
func (h *Hub) BroadcastState(sessionID string, state *service.GameState) {
	h.publish(&Message{
		SessionID: sessionID,
		State:     state,
		Event:     "state_update",
	})
}

// BroadcastEvent delivers a custom event to all watchers of a session.
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.publish(&Message{
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	})
}

// publish marshals the message once and queues it onto every watcher of the
// session. Watchers whose queues are full are detached afterwards.
func (h *Hub) publish(msg *Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal broadcast message: %v", err)
		return
	}

	var stalled []*watcher
	h.mu.RLock()
	for wt := range h.watchers[msg.SessionID] {
		select {
		case wt.out <- payload:
		default:
			stalled = append(stalled, wt)
		}
	}
	h.mu.RUnlock()

	for _, wt := range stalled {
		log.Printf("Dropping stalled watcher of session %s", wt.sessionID)
		h.detach(wt)
	}
}

// attach registers a watcher with its session.
func (h *Hub) attach(wt *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.watchers[wt.sessionID] == nil {
		h.watchers[wt.sessionID] = make(map[*watcher]struct{})
	}
	h.watchers[wt.sessionID][wt] = struct{}{}

	log.Printf("Watcher attached to session %s (total: %d)",
		wt.sessionID, len(h.watchers[wt.sessionID]))
}

// detach removes a watcher and closes its queue, which in turn ends its
// write loop. Detaching an already-detached watcher is a no-op.
func (h *Hub) detach(wt *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()

	session, ok := h.watchers[wt.sessionID]
	if !ok {
		return
	}
	if _, ok := session[wt]; !ok {
		return
	}
	delete(session, wt)
	close(wt.out)
	if len(session) == 0 {
		delete(h.watchers, wt.sessionID)
	}

	log.Printf("Watcher detached from session %s (remaining: %d)",
		wt.sessionID, len(session))
}

// watcherCount reports how many watchers a session currently has.
func (h *Hub) watcherCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers[sessionID])
}

// writeLoop drains the watcher's queue onto the connection and keeps the
// peer alive with pings. It owns all writes to the connection.
func (wt *watcher) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wt.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-wt.out:
			wt.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// detached: say goodbye and drop the connection
				wt.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := wt.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			wt.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wt.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop consumes the connection until the peer goes away. Incoming
// messages are not interpreted; the read side exists for pong handling and
// close detection.
func (wt *watcher) readLoop(h *Hub) {
	defer h.detach(wt)

	wt.conn.SetReadLimit(maxMessageSize)
	wt.conn.SetReadDeadline(time.Now().Add(pongWait))
	wt.conn.SetPongHandler(func(string) error {
		wt.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := wt.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}
