package api

import (
	"context"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lalith-99/tasklane/internal/middleware"
	"github.com/lalith-99/tasklane/internal/realtime"
	"go.uber.org/zap"
)

// RealtimeHandler upgrades authenticated requests to a websocket that
// carries change events for the caller's tenant.
type RealtimeHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	// base outlives the request; hijacked connections are not drained by
	// http.Server.Shutdown, so cancelling base is what closes them.
	base context.Context
}

// NewRealtimeHandler builds the handler. An empty origins list accepts
// any Origin header.
func NewRealtimeHandler(base context.Context, hub *realtime.Hub, origins []string) *RealtimeHandler {
	h := &RealtimeHandler{hub: hub, base: base}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return len(origins) == 0 || origin == "" || slices.Contains(origins, origin)
		},
	}
	return h
}

// Stream handles GET /ws. SUPER_ADMIN receives the events of every tenant.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	tenantID := p.TenantID
	if p.IsSuperAdmin() {
		tenantID = uuid.Nil
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		middleware.Logger(c).Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	middleware.Logger(c).Info("realtime client connected")
	h.hub.Serve(h.base, conn, tenantID)
}
