package events

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emotion-worker-go/internal/models"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBrokerDeliversEvents(t *testing.T) {
	b := NewBroker()
	srv := httptest.NewServer(httptestHandler(b))
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return b.Clients() == 1 }, time.Second, 5*time.Millisecond)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	b.Emit(models.DetectionEvent{Timestamp: at, Emotion: "Happy", Confidence: 0.9})

	var got models.DetectionEvent
	conn.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "Happy", got.Emotion)
	assert.Equal(t, 0.9, got.Confidence)
	assert.True(t, at.Equal(got.Timestamp))
}

func TestBrokerForgetsDisconnectedClients(t *testing.T) {
	b := NewBroker()
	srv := httptest.NewServer(httptestHandler(b))
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return b.Clients() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return b.Clients() == 0 }, time.Second, 5*time.Millisecond)

	// nothing to deliver to, must not block or panic
	b.Emit(models.DetectionEvent{Emotion: "Sad"})
}

func TestBrokerCloseEndsClients(t *testing.T) {
	b := NewBroker()
	srv := httptest.NewServer(httptestHandler(b))
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return b.Clients() == 1 }, time.Second, 5*time.Millisecond)

	b.Close()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	assert.Zero(t, b.Clients())
}

func TestEmitWithSlowClientDoesNotBlock(t *testing.T) {
	b := NewBroker()
	b.clients["stuck"] = &client{id: "stuck", send: make(chan []byte)}

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Emit(models.DetectionEvent{Emotion: "Fear"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked")
	}
}

func httptestHandler(b *Broker) http.HandlerFunc {
	return b.ServeWS
}
