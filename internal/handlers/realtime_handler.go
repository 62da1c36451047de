package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/jestfly/community-backend/internal/realtime"
)

// RealtimeHandler upgrades HTTP requests to websocket connections and wires
// them into the hub.
type RealtimeHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewRealtimeHandler creates a new RealtimeHandler
func NewRealtimeHandler(hub *realtime.Hub, logger *zap.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// RegisterRealtimeRoutes registers the websocket endpoint
func (h *RealtimeHandler) RegisterRealtimeRoutes(g *echo.Group) {
	g.GET("/ws", h.Connect)
}

// Connect upgrades the request and registers the connection under the
// viewer's id. The read loop only drains control frames; it exists to notice
// the close, at which point the connection is unregistered.
func (h *RealtimeHandler) Connect(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Uint("user_id", currentUserID), zap.Error(err))
		return err
	}

	h.hub.Register(currentUserID, conn)
	h.logger.Info("websocket connected",
		zap.Uint("user_id", currentUserID),
		zap.Int("connections", h.hub.ConnectionCount(currentUserID)))

	defer func() {
		h.hub.Unregister(currentUserID, conn)
		conn.Close()
		h.logger.Info("websocket disconnected", zap.Uint("user_id", currentUserID))
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}
