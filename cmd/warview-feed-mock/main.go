// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

// warview-feed-mock is a stand-in game server for developing and
// demonstrating warview without a live competition. It serves the REST
// roster endpoints with a small fixed competition and emits a
// deterministic, seeded event stream over /ws: each tick schedules
// executions for every team and exploit, reports their outcomes, and
// submits the captured flags.
//
// The emitter deliberately duplicates and reorders a fraction of the
// events. The dashboard's merges are commutative and idempotent, so a
// correct client renders the same picture regardless; the mock makes
// that property visible during development.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/pflag"

	"github.com/warview-project/warview/lib/clock"
	"github.com/warview-project/warview/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var listen string
	var tickSeconds int
	var flagValidity int
	var seed int64

	flagSet := pflag.NewFlagSet("warview-feed-mock", pflag.ContinueOnError)
	flagSet.StringVar(&listen, "listen", ":8000", "address to serve REST and WebSocket on")
	flagSet.IntVar(&tickSeconds, "tick", 15, "tick length in seconds")
	flagSet.IntVar(&flagValidity, "flag-validity", 5, "flag validity window in ticks")
	flagSet.Int64Var(&seed, "seed", 1, "random seed for the event script")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("warview-feed-mock %s\n", version.Info())
		return nil
	}
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			flagSet.PrintDefaults()
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		flagSet.PrintDefaults()
		return nil
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	mock := newMockServer(tickSeconds, flagValidity, seed, clock.Real(), logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /config/server", mock.handleServerConfig)
	mux.HandleFunc("GET /competition/teams", mock.handleTeams)
	mux.HandleFunc("GET /competition/services", mock.handleServices)
	mux.HandleFunc("GET /exploits", mock.handleExploits)
	mux.HandleFunc("POST /exploits/{name}/execute", mock.handleExecuteExploit)
	mux.HandleFunc("PUT /exploits/{name}", mock.handleUpdateExploit)
	mux.HandleFunc("GET /ws", mock.handleStream)

	logger.Info("mock game server running", "listen", listen, "tick_seconds", tickSeconds)
	return http.ListenAndServe(listen, mux)
}

// mockTeam is one synthetic competitor.
type mockTeam struct {
	id   string
	name string
	ip   string
}

// mockExploit pairs an exploit with its target service.
type mockExploit struct {
	name    string
	service string
}

// mockServer holds the fixed roster and the event script parameters.
type mockServer struct {
	start        time.Time
	tickDuration time.Duration
	flagValidity int
	seed         int64
	clock        clock.Clock
	logger       *slog.Logger

	teams    []mockTeam
	services []string
	exploits []mockExploit

	// sequence numbers the emitted stream envelopes.
	sequence atomic.Int64
}

func newMockServer(tickSeconds, flagValidity int, seed int64, clk clock.Clock, logger *slog.Logger) *mockServer {
	return &mockServer{
		start:        clk.Now().UTC().Truncate(time.Second),
		tickDuration: time.Duration(tickSeconds) * time.Second,
		flagValidity: flagValidity,
		seed:         seed,
		clock:        clk,
		logger:       logger,
		teams: []mockTeam{
			{id: "1", name: "Red Pandas", ip: "10.0.1.1"},
			{id: "2", name: "Blue Herons", ip: "10.0.2.1"},
			{id: "3", name: "Null Pointers", ip: "10.0.3.1"},
			{id: "4", name: "Stack Smashers", ip: "10.0.4.1"},
		},
		services: []string{"auth", "notes"},
		exploits: []mockExploit{
			{name: "sqli", service: "auth"},
			{name: "xxe", service: "notes"},
		},
	}
}

// writeData writes a success envelope.
func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func (mock *mockServer) handleServerConfig(w http.ResponseWriter, r *http.Request) {
	writeData(w, map[string]any{
		"competition": map[string]any{
			"start":        mock.start.Format(time.RFC3339),
			"tick":         mock.tickDuration.Seconds(),
			"tickStart":    0,
			"flagValidity": mock.flagValidity,
			"flagFormat":   `FLAG\{[A-Za-z0-9]{32}\}`,
		},
	})
}

func (mock *mockServer) handleTeams(w http.ResponseWriter, r *http.Request) {
	teams := make(map[string]any, len(mock.teams))
	for _, team := range mock.teams {
		services := make(map[string]string, len(mock.services))
		for _, service := range mock.services {
			services[service] = fmt.Sprintf("%s:%d", team.ip, 5000)
		}
		teams[team.id] = map[string]any{
			"name":      team.name,
			"ipAddress": team.ip,
			"services":  services,
		}
	}
	writeData(w, teams)
}

func (mock *mockServer) handleServices(w http.ResponseWriter, r *http.Request) {
	services := make([]any, 0, len(mock.services))
	for _, name := range mock.services {
		services = append(services, map[string]any{"name": name, "hasHint": false})
	}
	writeData(w, services)
}

func (mock *mockServer) handleExploits(w http.ResponseWriter, r *http.Request) {
	exploits := make([]any, 0, len(mock.exploits))
	for _, exploit := range mock.exploits {
		exploits = append(exploits, map[string]any{
			"manifest": map[string]any{
				"name":     exploit.name,
				"service":  exploit.service,
				"replicas": 1,
				"workers":  nil,
				"enabled":  true,
				"resources": map[string]any{
					"cpuRequest": nil,
					"memRequest": nil,
					"cpuLimit":   "1",
					"memLimit":   "256Mi",
					"timeout":    30,
				},
			},
			"image": "registry.invalid/" + exploit.name + ":latest",
		})
	}
	writeData(w, exploits)
}

func (mock *mockServer) handleExecuteExploit(w http.ResponseWriter, r *http.Request) {
	mock.logger.Info("manual execution requested", "exploit", r.PathValue("name"))
	writeData(w, nil)
}

func (mock *mockServer) handleUpdateExploit(w http.ResponseWriter, r *http.Request) {
	mock.logger.Info("exploit update accepted", "exploit", r.PathValue("name"))
	writeData(w, nil)
}

var upgrader = websocket.Upgrader{
	// The mock is a development tool; any origin may connect.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleStream upgrades the connection and runs the event script until
// the client disconnects.
func (mock *mockServer) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	mock.logger.Info("stream client connected",
		"remote", r.RemoteAddr,
		"from", r.URL.Query().Get("from"),
	)
	mock.emitScript(conn)
	mock.logger.Info("stream client disconnected", "remote", r.RemoteAddr)
}

// emitScript drives one connected client: an immediate tick event,
// then a batch of execution and flag events every tick. Write errors
// end the session.
func (mock *mockServer) emitScript(conn *websocket.Conn) {
	random := rand.New(rand.NewSource(mock.seed))

	tick := int(mock.clock.Now().Sub(mock.start) / mock.tickDuration)
	if err := mock.emitTick(conn, tick); err != nil {
		return
	}
	if err := mock.emitBatch(conn, random); err != nil {
		return
	}

	ticker := mock.clock.NewTicker(mock.tickDuration)
	defer ticker.Stop()
	for range ticker.C {
		tick++
		if err := mock.emitTick(conn, tick); err != nil {
			return
		}
		if err := mock.emitBatch(conn, random); err != nil {
			return
		}
	}
}

// emitTick sends a scheduling_start event.
func (mock *mockServer) emitTick(conn *websocket.Conn, tick int) error {
	return mock.send(conn, mock.event("scheduling_start", map[string]any{"i": tick}))
}

// emitBatch sends one tick's worth of executions and flag submissions:
// every exploit runs against every team. A fraction of events is
// delivered twice, and request/result pairs are occasionally swapped,
// to exercise the client's order-independent merging. Sequence numbers
// are assigned when an event is built, not when it is sent, so a
// reordered result still references its request correctly.
func (mock *mockServer) emitBatch(conn *websocket.Conn, random *rand.Rand) error {
	for _, team := range mock.teams {
		for _, exploit := range mock.exploits {
			request := mock.event("execution_request", map[string]any{
				"n": exploit.name,
				"t": team.id,
				"a": team.ip,
			})

			captured := random.Intn(10) < 8
			status := 0
			if !captured {
				status = 1 + random.Intn(2)
			}
			result := mock.event("execution_result", map[string]any{
				"n": exploit.name,
				"t": team.id,
				"d": 200 + random.Intn(2000),
				"s": status,
				"r": request.sequence,
				"a": 1,
				"e": 0,
			})

			events := []streamEvent{request, result}
			if captured {
				flag := fmt.Sprintf("FLAG{%032x}", random.Uint64())
				events = append(events,
					mock.event("flag_submission", map[string]any{
						"f": flag, "t": team.id, "s": exploit.service, "e": exploit.name,
					}),
					mock.event("flag_submission_result", map[string]any{
						"f": flag, "t": team.id, "s": exploit.service, "e": exploit.name,
						"r": mock.verdict(random), "p": 1.0,
					}),
				)
			}

			// Swap the request/result pair sometimes; the client must
			// not care which arrives first.
			if random.Intn(5) == 0 {
				events[0], events[1] = events[1], events[0]
			}

			for _, event := range events {
				if err := mock.send(conn, event); err != nil {
					return err
				}
				// Duplicate delivery, envelope and all, as a lossy
				// broker might.
				if random.Intn(10) == 0 {
					if err := mock.send(conn, event); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// verdict picks a flag submission verdict, mostly accepting.
func (mock *mockServer) verdict(random *rand.Rand) int {
	switch random.Intn(10) {
	case 0:
		return 2 // duplicate
	case 1:
		return 6 // invalid
	default:
		return 1 // ok
	}
}

// streamEvent is one fully assembled stream frame.
type streamEvent struct {
	kind      string
	payload   map[string]any
	published int64
	sequence  int64
}

// event assembles a frame, stamping it with the current time and the
// next sequence number.
func (mock *mockServer) event(kind string, payload map[string]any) streamEvent {
	return streamEvent{
		kind:      kind,
		payload:   payload,
		published: mock.clock.Now().UnixMilli(),
		sequence:  mock.sequence.Add(1),
	}
}

func (mock *mockServer) send(conn *websocket.Conn, event streamEvent) error {
	return conn.WriteJSON(map[string]any{
		"t": event.kind,
		"d": event.payload,
		"p": event.published,
		"s": event.sequence,
	})
}
