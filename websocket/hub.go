package websocket

import (
	"context"
	"sync"

	"github.com/anjiri1684/learnlingo/logger"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

const (
	EventFavorites = "favorites"
	EventSession   = "session"
)

// Event is pushed to every connection of a user.
type Event struct {
	Type    string   `json:"type"`
	IDs     []string `json:"ids,omitempty"`
	Present *bool    `json:"present,omitempty"`
}

type envelope struct {
	userID string
	event  Event
}

// peer serializes writes to one connection. Once closed it is never written
// to again, so a handler may release the Conn after Unregister returns.
type peer struct {
	conn   Conn
	mu     sync.Mutex
	closed bool
}

func (p *peer) write(e Event) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false, nil
	}
	return true, p.conn.WriteJSON(e)
}

// shut waits for an in-flight write and marks the peer closed.
func (p *peer) shut(closeConn bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if closeConn {
		_ = p.conn.Close()
	}
}

// Hub fans per-user events out to that user's open connections.
type Hub struct {
	log       logger.Logger
	mu        sync.RWMutex
	clients   map[string]map[Conn]*peer
	broadcast chan envelope
}

func NewHub(log logger.Logger, buffer int) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	if buffer <= 0 {
		buffer = 256
	}
	return &Hub{
		log:       log,
		clients:   make(map[string]map[Conn]*peer),
		broadcast: make(chan envelope, buffer),
	}
}

func (h *Hub) Register(userID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[userID]
	if !ok {
		conns = make(map[Conn]*peer)
		h.clients[userID] = conns
	}
	conns[conn] = &peer{conn: conn}
	h.log.Debug("Client registered: " + userID)
}

// Unregister removes conn and returns once no write to it is in progress.
func (h *Hub) Unregister(userID string, conn Conn) {
	h.mu.Lock()
	p := h.removeLocked(userID, conn)
	h.mu.Unlock()
	if p != nil {
		p.shut(false)
	}
	h.log.Debug("Client unregistered: " + userID)
}

func (h *Hub) removeLocked(userID string, conn Conn) *peer {
	conns, ok := h.clients[userID]
	if !ok {
		return nil
	}
	p := conns[conn]
	delete(conns, conn)
	if len(conns) == 0 {
		delete(h.clients, userID)
	}
	return p
}

// Connections counts the open connections of a user.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// PublishFavorites queues a favorites event; it never blocks and drops the event when the queue is full.
func (h *Hub) PublishFavorites(userID string, ids []string) {
	out := make([]string, len(ids))
	copy(out, ids)
	if out == nil {
		out = []string{}
	}
	h.publish(userID, Event{Type: EventFavorites, IDs: out})
}

func (h *Hub) PublishSession(userID string, present bool) {
	h.publish(userID, Event{Type: EventSession, Present: &present})
}

func (h *Hub) publish(userID string, e Event) {
	select {
	case h.broadcast <- envelope{userID: userID, event: e}:
	default:
		h.log.Warn("websocket: broadcast queue full, dropping event", map[string]interface{}{"user_id": userID, "type": e.Type})
	}
}

// Run delivers queued events until ctx is done, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case env := <-h.broadcast:
			h.deliver(env)
		}
	}
}

func (h *Hub) deliver(env envelope) {
	h.mu.RLock()
	peers := make([]*peer, 0, len(h.clients[env.userID]))
	for _, p := range h.clients[env.userID] {
		peers = append(peers, p)
	}
	h.mu.RUnlock()

	for _, p := range peers {
		wrote, err := p.write(env.event)
		if !wrote || err == nil {
			continue
		}
		h.log.Warn("websocket: write failed, dropping connection", err, map[string]interface{}{"user_id": env.userID})
		h.mu.Lock()
		if h.clients[env.userID][p.conn] == p {
			h.removeLocked(env.userID, p.conn)
		}
		h.mu.Unlock()
		p.shut(true)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	var peers []*peer
	for userID, conns := range h.clients {
		for _, p := range conns {
			peers = append(peers, p)
		}
		delete(h.clients, userID)
	}
	h.mu.Unlock()
	for _, p := range peers {
		p.shut(true)
	}
}
