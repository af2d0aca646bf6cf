// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

package feed

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/warview-project/warview/lib/clock"
	"github.com/warview-project/warview/lib/wire"
)

var upgrader = websocket.Upgrader{}

// streamServer is a WebSocket test server that records the "from"
// query parameter of each connection and hands the connection to the
// given session function.
type streamServer struct {
	url   string
	froms chan string
	conns chan *websocket.Conn
}

func newStreamServer(t *testing.T) *streamServer {
	t.Helper()
	server := &streamServer{
		froms: make(chan string, 16),
		conns: make(chan *websocket.Conn, 16),
	}
	httpServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		server.froms <- r.URL.Query().Get("from")
		server.conns <- conn
	}))
	t.Cleanup(httpServer.Close)
	server.url = "ws" + strings.TrimPrefix(httpServer.URL, "http")
	return server
}

func (server *streamServer) nextConn(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-server.conns:
		return conn
	case <-time.After(5 * time.Second):
		t.Fatal("no connection arrived")
		return nil
	}
}

func newTestFeed(t *testing.T, server *streamServer, clk clock.Clock, from func() int64) (*Feed, chan wire.Message) {
	t.Helper()
	messages := make(chan wire.Message, 16)
	if from == nil {
		from = func() int64 { return 0 }
	}
	feed, err := New(Config{
		URL:          server.url,
		FromProvider: from,
		Handler:      func(message wire.Message) { messages <- message },
		Clock:        clk,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(feed.Close)
	return feed, messages
}

func TestNewValidatesConfig(t *testing.T) {
	if _, err := New(Config{FromProvider: func() int64 { return 0 }, Handler: func(wire.Message) {}}); err == nil {
		t.Error("New accepted an empty URL")
	}
	if _, err := New(Config{URL: "ws://localhost/ws", Handler: func(wire.Message) {}}); err == nil {
		t.Error("New accepted a nil FromProvider")
	}
	if _, err := New(Config{URL: "ws://localhost/ws", FromProvider: func() int64 { return 0 }}); err == nil {
		t.Error("New accepted a nil Handler")
	}
}

func TestFeedDeliversDecodedMessages(t *testing.T) {
	server := newStreamServer(t)
	_, messages := newTestFeed(t, server, nil, nil)

	conn := server.nextConn(t)
	frame := `{"t": "scheduling_start", "d": {"i": 42}, "p": 1700000000000, "s": 1}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	select {
	case message := <-messages:
		start, ok := message.(wire.SchedulingStart)
		if !ok {
			t.Fatalf("message type = %T, want wire.SchedulingStart", message)
		}
		if start.Tick != 42 {
			t.Errorf("Tick = %d, want 42", start.Tick)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no message delivered")
	}
}

func TestFeedSendsFromParameter(t *testing.T) {
	server := newStreamServer(t)
	newTestFeed(t, server, nil, func() int64 { return 1699999000000 })

	server.nextConn(t)
	select {
	case from := <-server.froms:
		if from != "1699999000000" {
			t.Errorf("from = %q, want 1699999000000", from)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no connection arrived")
	}
}

func TestFeedDropsUndecodableFrames(t *testing.T) {
	server := newStreamServer(t)
	_, messages := newTestFeed(t, server, nil, nil)

	conn := server.nextConn(t)
	conn.WriteMessage(websocket.TextMessage, []byte("not json"))
	conn.WriteMessage(websocket.TextMessage, []byte(`{"t": "scheduling_start", "d": {"i": 7}, "p": 1, "s": 1}`))

	select {
	case message := <-messages:
		start, ok := message.(wire.SchedulingStart)
		if !ok || start.Tick != 7 {
			t.Fatalf("message = %#v, want the decodable frame only", message)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("decodable frame was not delivered")
	}
	select {
	case message := <-messages:
		t.Fatalf("unexpected extra message %#v", message)
	default:
	}
}

func TestFeedReconnectsWithFreshFrom(t *testing.T) {
	server := newStreamServer(t)
	fake := clock.Fake(time.Date(2026, 7, 4, 9, 0, 0, 0, time.UTC))

	from := int64(1000)
	newTestFeed(t, server, fake, func() int64 { return from })

	conn := server.nextConn(t)
	<-server.froms
	from = 2000
	conn.Close()

	// The disconnected feed registers its reconnect delay; fire it.
	// The delay is at most the base plus the jitter cap.
	fake.WaitForTimers(1)
	fake.Advance(reconnectBase + reconnectJitter)

	server.nextConn(t)
	select {
	case got := <-server.froms:
		if got != "2000" {
			t.Errorf("from on reconnect = %q, want 2000 (re-queried)", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("feed did not reconnect")
	}
}

func TestFeedCloseCancelsPendingReconnect(t *testing.T) {
	server := newStreamServer(t)
	fake := clock.Fake(time.Date(2026, 7, 4, 9, 0, 0, 0, time.UTC))
	feed, _ := newTestFeed(t, server, fake, nil)

	conn := server.nextConn(t)
	conn.Close()
	fake.WaitForTimers(1)

	// Close must return promptly even though the reconnect timer never
	// fires.
	done := make(chan struct{})
	go func() {
		feed.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close hung on a pending reconnect")
	}
}

func TestFeedConnectedFlag(t *testing.T) {
	server := newStreamServer(t)
	feed, messages := newTestFeed(t, server, nil, nil)

	conn := server.nextConn(t)
	conn.WriteMessage(websocket.TextMessage, []byte(`{"t": "scheduling_start", "d": {"i": 1}, "p": 1, "s": 1}`))
	<-messages

	if !feed.Connected() {
		t.Error("Connected() = false while the stream is established")
	}
}
