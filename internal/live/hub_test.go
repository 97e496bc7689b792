package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"gofinance/internal/log"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(log.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := Upgrade(w, r)
		if err != nil {
			return
		}
		hub.Serve(conn, r.URL.Query().Get("user"), &Event{Type: "hello", Data: r.URL.Query().Get("user")})
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, user string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + user
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev map[string]any
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	return ev
}

func waitSubscribers(t *testing.T, hub *Hub, user string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers(user) != want {
		if time.Now().After(deadline) {
			t.Fatalf("subscribers(%s) = %d, want %d", user, hub.Subscribers(user), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServeSendsFirstEvent(t *testing.T) {
	_, srv := startHub(t)
	conn := dial(t, srv, "u1")

	ev := readEvent(t, conn)
	if ev["type"] != "hello" || ev["data"] != "u1" {
		t.Fatalf("unexpected first event: %v", ev)
	}
}

func TestNotifyReachesOnlyTargetUser(t *testing.T) {
	hub, srv := startHub(t)
	a := dial(t, srv, "alice")
	b := dial(t, srv, "bob")
	readEvent(t, a)
	readEvent(t, b)
	waitSubscribers(t, hub, "alice", 1)
	waitSubscribers(t, hub, "bob", 1)

	hub.Notify("alice", "dashboard", map[string]int{"generation": 3})

	ev := readEvent(t, a)
	if ev["type"] != "dashboard" {
		t.Fatalf("unexpected event: %v", ev)
	}
	data, ok := ev["data"].(map[string]any)
	if !ok || data["generation"] != float64(3) {
		t.Fatalf("unexpected payload: %v", ev["data"])
	}

	_ = b.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := b.ReadMessage(); err == nil {
		t.Fatal("bob should not receive alice's event")
	}
}

func TestNotifyFansOutToEveryConnection(t *testing.T) {
	hub, srv := startHub(t)
	first := dial(t, srv, "u")
	second := dial(t, srv, "u")
	readEvent(t, first)
	readEvent(t, second)
	waitSubscribers(t, hub, "u", 2)

	hub.Notify("u", "dashboard", "x")
	for _, c := range []*websocket.Conn{first, second} {
		if ev := readEvent(t, c); ev["data"] != "x" {
			t.Fatalf("unexpected event: %v", ev)
		}
	}
}

func TestClosedConnectionIsUnregistered(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "gone")
	readEvent(t, conn)
	waitSubscribers(t, hub, "gone", 1)

	conn.Close()
	waitSubscribers(t, hub, "gone", 0)
}

func TestNotifyAfterStopDoesNotBlock(t *testing.T) {
	hub := NewHub(log.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Notify("u", "dashboard", i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked after the hub stopped")
	}
}
