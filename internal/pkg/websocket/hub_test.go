package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casportal/casportal/internal/app/models"
)

type stubFrameStore struct {
	saved         *models.Message
	deleted       *models.Message
	deleteSender  int64
	deleteMessage int64
	err           error
}

func (s *stubFrameStore) SaveMessage(_ context.Context, senderID, receiverID int64, content string) (*models.Message, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.saved = &models.Message{ID: 1, SenderID: senderID, ReceiverID: receiverID, Content: content, DatetimeSent: time.Now()}
	return s.saved, nil
}

func (s *stubFrameStore) DeleteMessage(_ context.Context, senderID, messageID int64) (*models.Message, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.deleteSender = senderID
	s.deleteMessage = messageID
	return s.deleted, nil
}

// newTestHub builds a running hub with one connectionless client per
// profile id, wired straight into the clients map.
func newTestHub(t *testing.T, store MessageStore, profileIDs ...int64) (*Hub, map[int64]*Client) {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	clients := make(map[int64]*Client, len(profileIDs))
	for _, id := range profileIDs {
		client := &Client{hub: hub, send: make(chan []byte, 4), profileID: id, store: store, logger: zerolog.Nop()}
		hub.clients[id] = map[*Client]bool{client: true}
		clients[id] = client
	}
	go hub.Run()
	return hub, clients
}

func receiveFrame(t *testing.T, client *Client) map[string]any {
	t.Helper()
	select {
	case data := <-client.send:
		var frame map[string]any
		require.NoError(t, json.Unmarshal(data, &frame))
		return frame
	case <-time.After(time.Second):
		t.Fatal("no frame delivered")
		return nil
	}
}

func TestSendFrameRelaysToBothSides(t *testing.T) {
	store := &stubFrameStore{}
	_, clients := newTestHub(t, store, 1, 2)

	clients[1].handleSend(&inboundFrame{Type: frameSend, ReceiverID: 2, Content: "hello"})

	for _, id := range []int64{1, 2} {
		frame := receiveFrame(t, clients[id])
		assert.Equal(t, "new", frame["type"])
		assert.Equal(t, "hello", frame["content"])
		assert.Equal(t, float64(1), frame["senderId"])
	}
}

func TestDeleteFrameRelaysNotice(t *testing.T) {
	store := &stubFrameStore{deleted: &models.Message{ID: 7, SenderID: 1, ReceiverID: 2}}
	_, clients := newTestHub(t, store, 1, 2)

	clients[1].handleDelete(&inboundFrame{Type: frameDelete, MessageID: 7})

	// the deletion runs under the connected profile's identity
	assert.Equal(t, int64(1), store.deleteSender)
	assert.Equal(t, int64(7), store.deleteMessage)

	for _, id := range []int64{1, 2} {
		frame := receiveFrame(t, clients[id])
		assert.Equal(t, "delete", frame["type"])
		assert.Equal(t, float64(7), frame["id"])
		assert.NotContains(t, frame, "content")
	}
}

func TestRelaySkipsDisconnectedReceiver(t *testing.T) {
	store := &stubFrameStore{deleted: &models.Message{ID: 3, SenderID: 1, ReceiverID: 9}}
	_, clients := newTestHub(t, store, 1)

	// profile 9 has no live connections; only the sender hears back
	clients[1].handleDelete(&inboundFrame{Type: frameDelete, MessageID: 3})

	frame := receiveFrame(t, clients[1])
	assert.Equal(t, "delete", frame["type"])
}
