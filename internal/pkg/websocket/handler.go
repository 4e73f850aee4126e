package websocket

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/casportal/casportal/internal/middleware"
)

// Handler upgrades authenticated requests into relay connections.
type Handler struct {
	hub    *Hub
	store  MessageStore
	logger zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, store MessageStore, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		store:  store,
		logger: logger,
	}
}

// HandleConnection upgrades the request to a websocket connection. The auth
// middleware has already resolved the caller, via the token query parameter
// since a websocket handshake cannot carry headers.
func (h *Handler) HandleConnection(c *gin.Context) {
	profile := middleware.CurrentProfile(c)
	if profile == nil {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Int64("profileId", profile.ID).Msg("failed to upgrade connection")
		return
	}

	client := &Client{
		hub:       h.hub,
		conn:      conn,
		send:      make(chan []byte, 256),
		profileID: profile.ID,
		store:     h.store,
		logger:    h.logger,
	}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
