// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

package feed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/warview-project/warview/lib/clock"
	"github.com/warview-project/warview/lib/wire"
)

// Reconnection delay parameters. The fixed base plus a small random
// jitter avoids a thundering herd of dashboards reconnecting in
// lockstep after a server restart.
const (
	reconnectBase   = 1 * time.Second
	reconnectJitter = 100 * time.Millisecond
)

// Config holds configuration for creating a Feed.
type Config struct {
	// URL is the WebSocket endpoint of the event stream, for example
	// "ws://localhost:8000/ws". Required.
	URL string

	// FromProvider returns the backfill start time in Unix
	// milliseconds, appended to the stream URL as the "from" query
	// parameter on every connection attempt. Required.
	FromProvider func() int64

	// Handler receives each decoded message. Called from the feed's
	// read goroutine; it must not block for long. Required.
	Handler func(wire.Message)

	// Dialer is used to establish connections. Defaults to
	// websocket.DefaultDialer.
	Dialer *websocket.Dialer

	// Clock provides time operations for the reconnect delay.
	// Defaults to clock.Real().
	Clock clock.Clock

	// Logger is used for structured logging. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Feed is a self-healing event stream consumer. The background
// goroutine starts on New and runs until Close.
type Feed struct {
	config    Config
	endpoint  *url.URL
	connected atomic.Bool

	cancel    context.CancelFunc
	closeOnce sync.Once
	done      chan struct{}
}

// New validates the configuration and starts the stream goroutine.
func New(config Config) (*Feed, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("feed: URL is required")
	}
	if config.FromProvider == nil {
		return nil, fmt.Errorf("feed: FromProvider is required")
	}
	if config.Handler == nil {
		return nil, fmt.Errorf("feed: Handler is required")
	}
	endpoint, err := url.Parse(config.URL)
	if err != nil {
		return nil, fmt.Errorf("feed: invalid URL %q: %w", config.URL, err)
	}
	if config.Dialer == nil {
		config.Dialer = websocket.DefaultDialer
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	feed := &Feed{
		config:   config,
		endpoint: endpoint,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go feed.streamLoop(ctx)
	return feed, nil
}

// Connected reports whether the stream is currently established.
func (feed *Feed) Connected() bool { return feed.connected.Load() }

// Close shuts down the stream goroutine, cancelling any pending
// reconnect, and waits for it to exit. Safe to call multiple times.
func (feed *Feed) Close() {
	feed.closeOnce.Do(feed.cancel)
	<-feed.done
}

// streamLoop manages the connection lifecycle: connect, consume until
// disconnect, wait out the jittered delay, repeat. Runs until the
// context is cancelled.
func (feed *Feed) streamLoop(ctx context.Context) {
	defer close(feed.done)
	for {
		err := feed.runStream(ctx)
		if ctx.Err() != nil {
			return
		}

		//nolint:gosec // The random delay is for jitter, not security.
		delay := reconnectBase + time.Duration(rand.Int63n(int64(reconnectJitter)))
		feed.config.Logger.Warn("event stream disconnected",
			"error", err,
			"reconnect_in", delay,
		)

		select {
		case <-ctx.Done():
			return
		case <-feed.config.Clock.After(delay):
		}
	}
}

// runStream establishes one connection and consumes frames until the
// connection ends or the context is cancelled. Returns the error that
// ended the stream.
func (feed *Feed) runStream(ctx context.Context) error {
	endpoint := *feed.endpoint
	query := endpoint.Query()
	query.Set("from", strconv.FormatInt(feed.config.FromProvider(), 10))
	endpoint.RawQuery = query.Encode()

	conn, _, err := feed.config.Dialer.DialContext(ctx, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	defer conn.Close()

	// Close the connection when the context is cancelled. This
	// unblocks the ReadMessage call below.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	feed.connected.Store(true)
	defer feed.connected.Store(false)
	feed.config.Logger.Info("event stream connected", "url", endpoint.Redacted())

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("reading frame: %w", err)
		}
		message, err := wire.Decode(data)
		if err != nil {
			// A frame this client cannot decode is dropped, not fatal:
			// the server may speak a newer message kind.
			feed.config.Logger.Warn("dropping undecodable frame", "error", err)
			continue
		}
		feed.dispatch(message)
	}
}

// dispatch delivers one message to the handler. A panicking handler
// loses that message, not the stream.
func (feed *Feed) dispatch(message wire.Message) {
	defer func() {
		if r := recover(); r != nil {
			feed.config.Logger.Error("message handler panicked",
				"kind", message.Kind(),
				"panic", r,
			)
		}
	}()
	feed.config.Handler(message)
}
