// Package remote serves a websocket monitor: connected clients receive
// periodic grid snapshots and can drive the pause/step/shock controls.
package remote

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"heart-ca/internal/core"
	"heart-ca/internal/engine"
)

// Header precedes every binary frame, as JSON on the same connection.
type Header struct {
	Type   string `json:"type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Tick   uint64 `json:"tick"`
	Paused bool   `json:"paused"`
}

// Command is what clients send back.
type Command struct {
	Cmd string `json:"cmd"`
}

// Frame cell codes.
const (
	frameIdle       = 0
	frameFiring     = 1
	framePacemaker  = 2
	frameRefractory = 3
)

// Server broadcasts snapshots at a fixed cadence and applies client
// commands to the engine.
type Server struct {
	engine   *engine.Engine
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex

	pace *core.FixedStep
	done chan struct{}

	cells []core.Cell
	frame []byte
}

// NewServer builds a monitor around the engine broadcasting at the given
// snapshots-per-second rate.
func NewServer(e *engine.Engine, rate int) *Server {
	return &Server{
		engine: e,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]*sync.Mutex),
		pace:    core.NewFixedStep(rate),
		done:    make(chan struct{}),
	}
}

// Handler returns the mux serving the /ws endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// ListenAndServe starts the broadcast loop and blocks serving addr.
func (s *Server) ListenAndServe(addr string) error {
	go s.broadcastLoop()
	return http.ListenAndServe(addr, s.Handler())
}

// Close stops the broadcast loop and disconnects every client.
func (s *Server) Close() {
	close(s.done)
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		conn.Close()
	}
	s.clients = make(map[*websocket.Conn]*sync.Mutex)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("monitor: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	connMu := &sync.Mutex{}
	s.mu.Lock()
	s.clients[conn] = connMu
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
	}()

	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}
		switch cmd.Cmd {
		case "pause":
			s.engine.Pause()
		case "resume":
			s.engine.Resume()
		case "step":
			s.engine.Step()
		case "shock":
			s.engine.ShockAll()
		default:
			log.Printf("monitor: unknown command %q", cmd.Cmd)
		}
	}
}

func (s *Server) broadcastLoop() {
	for {
		select {
		case <-s.done:
			return
		default:
		}
		if !s.pace.ShouldStep() {
			time.Sleep(time.Millisecond)
			continue
		}
		s.broadcast()
	}
}

func (s *Server) broadcast() {
	s.mu.RLock()
	idle := len(s.clients) == 0
	s.mu.RUnlock()
	if idle {
		return
	}

	var w, h int
	s.cells, w, h = s.engine.CopyCells(s.cells)
	if len(s.frame) != len(s.cells) {
		s.frame = make([]byte, len(s.cells))
	}
	for i := range s.cells {
		s.frame[i] = cellCode(&s.cells[i])
	}
	header := Header{
		Type:   "grid",
		Width:  w,
		Height: h,
		Tick:   s.engine.Ticks(),
		Paused: s.engine.Paused(),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for conn, connMu := range s.clients {
		connMu.Lock()
		err := conn.WriteJSON(header)
		if err == nil {
			err = conn.WriteMessage(websocket.BinaryMessage, s.frame)
		}
		connMu.Unlock()
		if err != nil {
			log.Printf("monitor: dropping client: %v", err)
			conn.Close()
		}
	}
}

func cellCode(c *core.Cell) byte {
	switch {
	case c.Type == core.RestingTissue:
		return frameRefractory
	case c.Type == core.Pacemaker:
		return framePacemaker
	case c.State > 0:
		return frameFiring
	default:
		return frameIdle
	}
}
