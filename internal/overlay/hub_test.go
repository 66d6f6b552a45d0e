package overlay

import (
	"context"
	"encoding/json"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	return msg
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount() = %d, want %d", hub.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBroadcastWithoutClients(t *testing.T) {
	hub := NewHub()
	if err := hub.Broadcast(EventStatus, "idle"); err != nil {
		t.Errorf("Broadcast() error: %v", err)
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d", hub.ClientCount())
	}
}

func TestBroadcastReachesClients(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(hub)
	defer server.Close()

	a := dial(t, server)
	b := dial(t, server)
	waitForClients(t, hub, 2)

	payload := map[string]interface{}{"allies": []string{"Ana"}}
	if err := hub.Broadcast(EventRoster, payload); err != nil {
		t.Fatal(err)
	}

	for _, conn := range []*websocket.Conn{a, b} {
		msg := readMessage(t, conn)
		if msg.Event != EventRoster {
			t.Errorf("event = %s, want %s", msg.Event, EventRoster)
		}
		var got map[string][]string
		if err := json.Unmarshal(msg.Data, &got); err != nil {
			t.Fatal(err)
		}
		if len(got["allies"]) != 1 || got["allies"][0] != "Ana" {
			t.Errorf("data = %v", got)
		}
	}
}

func TestLateClientGetsLatestState(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(hub)
	defer server.Close()

	hub.Broadcast(EventStatus, "running")
	hub.Broadcast(EventRanking, []string{"old"})
	hub.Broadcast(EventRanking, []string{"new"})

	conn := dial(t, server)

	first := readMessage(t, conn)
	second := readMessage(t, conn)
	if first.Event != EventStatus || second.Event != EventRanking {
		t.Fatalf("replay order = %s, %s", first.Event, second.Event)
	}
	if string(second.Data) != `["new"]` {
		t.Errorf("replayed ranking = %s, want the latest", second.Data)
	}
}

func TestClientDisconnect(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dial(t, server)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	l.Close()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.ListenAndServe(ctx, addr) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe() did not return after cancel")
	}
}
