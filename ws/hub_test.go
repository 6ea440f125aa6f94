package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	e := echo.New()
	e.GET("/ws", ServeWS(hub))
	srv := httptest.NewServer(e)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		n, err := hub.ClientCount(context.Background())
		if err != nil {
			t.Fatalf("client count: %v", err)
		}
		if n == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d clients", want)
}

func TestHub_PublishReachesClient(t *testing.T) {
	hub, srv := startHub(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, 1)

	if err := hub.Publish("billing_update", map[string]int64{"visitId": 7}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg struct {
		Type string           `json:"type"`
		Data map[string]int64 `json:"data"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != "billing_update" || msg.Data["visitId"] != 7 {
		t.Errorf("unexpected message %s", raw)
	}
}

func TestHub_ClientDisconnectUnregisters(t *testing.T) {
	hub, srv := startHub(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	// Run tidak dijalankan, sehingga antrian broadcast akan penuh.
	hub := NewHub(zerolog.Nop())
	var err error
	for i := 0; i <= broadcastBufferSize; i++ {
		err = hub.Publish("antrian_update", i)
	}
	if err != ErrBroadcastFull {
		t.Errorf("expected ErrBroadcastFull, got %v", err)
	}
}
