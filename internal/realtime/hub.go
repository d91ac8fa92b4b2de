package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lalith-99/tasklane/internal/observ"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32

	// maxReadSize bounds client frames. Clients only send pongs and close
	// frames; anything else is read and discarded.
	maxReadSize = 512
)

// allTenants is the subscription key of SUPER_ADMIN connections.
var allTenants = uuid.Nil

type subscriber struct {
	tenantID uuid.UUID
	send     chan Event
	done     chan struct{}
	once     sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.done) })
}

// Hub fans events out to the connections of each tenant. Delivery never
// blocks: a subscriber whose buffer is full is disconnected.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]map[*subscriber]struct{}
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[uuid.UUID]map[*subscriber]struct{}),
		logger: logger,
	}
}

func (h *Hub) subscribe(tenantID uuid.UUID) *subscriber {
	s := &subscriber{
		tenantID: tenantID,
		send:     make(chan Event, sendBuffer),
		done:     make(chan struct{}),
	}

	h.mu.Lock()
	set, ok := h.subs[tenantID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[tenantID] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()

	observ.RealtimeConnections.Inc()
	return s
}

func (h *Hub) unsubscribe(s *subscriber) {
	h.mu.Lock()
	if set, ok := h.subs[s.tenantID]; ok {
		if _, ok := set[s]; ok {
			delete(set, s)
			observ.RealtimeConnections.Dec()
		}
		if len(set) == 0 {
			delete(h.subs, s.tenantID)
		}
	}
	h.mu.Unlock()
	s.close()
}

// Deliver hands ev to every subscriber of its tenant and to every
// all-tenant subscriber.
func (h *Hub) Deliver(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.deliverTo(h.subs[ev.TenantID], ev)
	if ev.TenantID != allTenants {
		h.deliverTo(h.subs[allTenants], ev)
	}
}

func (h *Hub) deliverTo(set map[*subscriber]struct{}, ev Event) {
	for s := range set {
		select {
		case s.send <- ev:
		case <-s.done:
		default:
			observ.RealtimeEventsDroppedTotal.Inc()
			h.logger.Warn("dropping slow realtime subscriber",
				zap.String("tenant_id", s.tenantID.String()),
			)
			s.close()
		}
	}
}

// Subscribers returns the number of open subscriptions for tenantID.
func (h *Hub) Subscribers(tenantID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[tenantID])
}

// Serve streams the events of tenantID to conn until the client goes away,
// the subscriber is dropped, or ctx is cancelled. It owns conn and closes
// it before returning. uuid.Nil subscribes to every tenant.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, tenantID uuid.UUID) {
	sub := h.subscribe(tenantID)
	defer h.unsubscribe(sub)
	defer conn.Close()

	go func() {
		defer sub.close()
		conn.SetReadLimit(maxReadSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		case <-sub.done:
			return
		case ev := <-sub.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				h.logger.Debug("realtime write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
