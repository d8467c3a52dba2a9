package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHubServer(t *testing.T, h *Hub) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		h.Serve(conn, r.URL.Query().Get("user"))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func dialHub(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?user=" + userID

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Outbound {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var frame Outbound
	require.NoError(t, conn.ReadJSON(&frame))

	return frame
}

func TestHubWelcomesNewConnections(t *testing.T) {
	srv := newHubServer(t, NewHub())
	conn := dialHub(t, srv, "alice")

	frame := readFrame(t, conn)
	assert.Equal(t, "system", frame.Type)
	assert.Equal(t, "Connected to chat server", frame.Content)
	assert.Equal(t, "system", frame.UserID)
}

func TestHubBroadcastsToOthersOnly(t *testing.T) {
	hub := NewHub()
	srv := newHubServer(t, hub)

	alice := dialHub(t, srv, "alice")
	bob := dialHub(t, srv, "bob")

	readFrame(t, alice)
	readFrame(t, bob)

	require.NoError(t, alice.WriteJSON(Inbound{
		Type:        "message",
		Content:     "hello",
		MessageType: "user",
	}))

	got := readFrame(t, bob)
	assert.Equal(t, "message", got.Type)
	assert.Equal(t, "hello", got.Content)
	assert.Equal(t, "user", got.MessageType)
	assert.Equal(t, "alice", got.UserID)

	ts, err := time.Parse(time.RFC3339, got.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, 5*time.Second)

	// the next frame alice sees must be the pong, not an echo of her
	// own message
	require.NoError(t, alice.WriteJSON(Inbound{Type: "ping"}))
	assert.Equal(t, "pong", readFrame(t, alice).Type)
}

func TestHubRejectsMalformedFrames(t *testing.T) {
	hub := NewHub()
	srv := newHubServer(t, hub)

	alice := dialHub(t, srv, "alice")
	bob := dialHub(t, srv, "bob")

	readFrame(t, alice)
	readFrame(t, bob)

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("{not json")))

	got := readFrame(t, alice)
	assert.Equal(t, "error", got.Type)
	assert.Equal(t, "Invalid message format", got.Error)

	// only the offender hears about it
	bob.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var frame Outbound
	assert.Error(t, bob.ReadJSON(&frame))
}

func TestHubRejectsUnknownFrameTypes(t *testing.T) {
	srv := newHubServer(t, NewHub())
	conn := dialHub(t, srv, "alice")

	readFrame(t, conn)

	require.NoError(t, conn.WriteJSON(Inbound{Type: "subscribe"}))

	got := readFrame(t, conn)
	assert.Equal(t, "error", got.Type)
}

func TestHubCountTracksConnections(t *testing.T) {
	hub := NewHub()
	srv := newHubServer(t, hub)

	alice := dialHub(t, srv, "alice")
	readFrame(t, alice)

	assert.Equal(t, 1, hub.Count())

	alice.Close()

	assert.Eventually(t, func() bool {
		return hub.Count() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
