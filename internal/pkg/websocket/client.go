package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/casportal/casportal/internal/app/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024

	// Deadline for persisting an inbound message
	saveTimeout = 5 * time.Second
)

var newline = []byte{'\n'}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: restrict origins once the portal frontend has a fixed host
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Frame types exchanged with connected clients. Inbound frames are "send"
// and "delete"; a stored send is relayed as "new", a deletion as "delete".
const (
	frameSend   = "send"
	frameDelete = "delete"
	frameNew    = "new"
)

// MessageStore persists inbound frames before they are relayed.
type MessageStore interface {
	SaveMessage(ctx context.Context, senderID, receiverID int64, content string) (*models.Message, error)
	DeleteMessage(ctx context.Context, senderID, messageID int64) (*models.Message, error)
}

// inboundFrame is what a connected client may send: a typed frame carrying
// either a new message or the id of one to delete.
type inboundFrame struct {
	Type       string `json:"type"`
	ReceiverID int64  `json:"receiverId"`
	Content    string `json:"content"`
	MessageID  int64  `json:"messageId"`
}

// Client is a middleman between one websocket connection and the hub
type Client struct {
	hub *Hub

	// The WebSocket connection
	conn *websocket.Conn

	// Buffered channel of outbound messages
	send chan []byte

	// Profile ID of the connected member
	profileID int64

	// Persists frames before fan-out
	store MessageStore

	logger zerolog.Logger
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn().Err(err).Int64("profileId", c.profileID).Msg("unexpected websocket close")
			}
			break
		}

		var inbound inboundFrame
		if err := json.Unmarshal(raw, &inbound); err != nil {
			c.logger.Debug().Err(err).Int64("profileId", c.profileID).Msg("unparseable client frame")
			continue
		}

		switch inbound.Type {
		case frameSend:
			c.handleSend(&inbound)
		case frameDelete:
			c.handleDelete(&inbound)
		default:
			c.logger.Debug().Str("type", inbound.Type).Int64("profileId", c.profileID).Msg("unknown frame type")
		}
	}
}

// handleSend persists the message first so the relayed frame carries the
// stored id; the sender id always comes from the authenticated connection.
func (c *Client) handleSend(inbound *inboundFrame) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	saved, err := c.store.SaveMessage(ctx, c.profileID, inbound.ReceiverID, inbound.Content)
	cancel()
	if err != nil {
		c.logger.Warn().Err(err).Int64("profileId", c.profileID).Msg("failed to save message")
		return
	}

	c.hub.relay <- &event{
		senderID:   saved.SenderID,
		receiverID: saved.ReceiverID,
		payload: &Message{
			Type:       frameNew,
			ID:         saved.ID,
			SenderID:   saved.SenderID,
			ReceiverID: saved.ReceiverID,
			Content:    saved.Content,
			Timestamp:  saved.DatetimeSent,
		},
	}
}

// handleDelete removes a message the connected profile sent and notifies
// both sides of the conversation.
func (c *Client) handleDelete(inbound *inboundFrame) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	deleted, err := c.store.DeleteMessage(ctx, c.profileID, inbound.MessageID)
	cancel()
	if err != nil {
		c.logger.Warn().Err(err).Int64("profileId", c.profileID).Int64("messageId", inbound.MessageID).Msg("failed to delete message")
		return
	}

	c.hub.relay <- &event{
		senderID:   deleted.SenderID,
		receiverID: deleted.ReceiverID,
		payload:    &deleteNotice{Type: frameDelete, ID: deleted.ID},
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write(newline)
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
