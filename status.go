package main

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// StatusServer streams pipeline stats over a websocket so a browser page or
// external tool can watch extraction progress live.
type StatusServer struct {
	backend  *Backend
	registry *PaletteRegistry
	log      Logger

	upgrader websocket.Upgrader
	mu       sync.RWMutex
	clients  map[*websocket.Conn]*sync.Mutex
}

type statusMessage struct {
	Type     string       `json:"type"`
	Uptime   int64        `json:"uptime_seconds"`
	Palettes int          `json:"interned_palettes"`
	Backend  BackendStats `json:"backend"`
}

func NewStatusServer(backend *Backend, registry *PaletteRegistry, log Logger) *StatusServer {
	return &StatusServer{
		backend:  backend,
		registry: registry,
		log:      log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Start serves the websocket endpoint and broadcasts stats once a second.
// Blocks; run it on its own goroutine. The broadcast loop stops when the
// listener returns.
func (s *StatusServer) Start(addr string) error {
	stop := make(chan struct{})
	go s.broadcastLoop(time.Now(), stop)
	defer close(stop)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	s.log.Info("Status server listening on", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *StatusServer) broadcastLoop(start time.Time, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.broadcast(s.snapshot(start))
		case <-stop:
			return
		}
	}
}

func (s *StatusServer) snapshot(start time.Time) statusMessage {
	return statusMessage{
		Type:     "stats",
		Uptime:   int64(time.Since(start).Seconds()),
		Palettes: s.registry.Len(),
		Backend:  s.backend.Stats(),
	}
}

func (s *StatusServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("Websocket upgrade failed:", err.Error())
		return
	}
	defer conn.Close()

	connMutex := &sync.Mutex{}
	s.mu.Lock()
	s.clients[conn] = connMutex
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
	}()

	// Reads are only consumed to notice the peer going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *StatusServer) broadcast(msg statusMessage) {
	s.mu.RLock()
	conns := make(map[*websocket.Conn]*sync.Mutex, len(s.clients))
	for c, m := range s.clients {
		conns[c] = m
	}
	s.mu.RUnlock()

	for conn, mutex := range conns {
		mutex.Lock()
		err := conn.WriteJSON(msg)
		mutex.Unlock()
		if err != nil {
			conn.Close()
		}
	}
}
