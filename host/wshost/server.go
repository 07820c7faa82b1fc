// Package wshost accepts remote input over websocket and feeds it into a host event ring.
package wshost

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lixenwraith/keybridge/host"
)

const (
	sendBuffer    = 64
	writeTimeout  = 5 * time.Second
	maxMessageLen = 4096
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Server is a websocket input endpoint
// Implements service.Service and host.Source
type Server struct {
	addr string
	ring *host.Ring
	log  *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	http     *http.Server
	clients  map[string]*client

	accepted atomic.Int64
	rejected atomic.Int64
}

// client is one connected peer
type client struct {
	conn   *websocket.Conn
	peerID string
	send   chan []byte
	mu     sync.Mutex
	closed bool
}

// NewServer creates a server that will listen on addr
func NewServer(addr string, ring *host.Ring, log *slog.Logger) *Server {
	if ring == nil {
		ring = host.NewRing(host.DefaultRingSize)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		addr:    addr,
		ring:    ring,
		log:     log,
		clients: make(map[string]*client),
	}
}

// Name implements service.Service
func (s *Server) Name() string {
	return "websocket"
}

// Dependencies implements service.Service
func (s *Server) Dependencies() []string {
	return nil
}

// Init implements service.Service
// A string arg overrides the listen address
func (s *Server) Init(args ...any) error {
	for _, arg := range args {
		if addr, ok := arg.(string); ok && addr != "" {
			s.addr = addr
		}
	}
	if s.addr == "" {
		return errors.New("websocket listen address not set")
	}
	return nil
}

// Start implements service.Service
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.listener = ln

	mux := http.NewServeMux()
	mux.Handle("/input", s)
	s.http = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("websocket server failed", "error", err)
		}
	}()
	s.log.Info("websocket input listening", "addr", ln.Addr().String())
	return nil
}

// Stop implements service.Service
func (s *Server) Stop() error {
	s.mu.Lock()
	srv := s.http
	s.http = nil
	s.listener = nil
	clients := s.clients
	s.clients = make(map[string]*client)
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := srv.Shutdown(ctx)

	// Hijacked websocket connections are not tracked by Shutdown
	for _, c := range clients {
		c.close()
		c.conn.Close()
	}
	return err
}

// Addr returns the bound listen address, or the configured one before Start
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Peers returns the number of connected clients
func (s *Server) Peers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Stats returns accepted and rejected message counts
func (s *Server) Stats() (accepted, rejected int64) {
	return s.accepted.Load(), s.rejected.Load()
}

// PollEvent implements host.Source
func (s *Server) PollEvent(ev *host.Event) bool {
	return s.ring.PollEvent(ev)
}

// Ring returns the event ring fed by this server
func (s *Server) Ring() *host.Ring {
	return s.ring
}

// ServeHTTP upgrades the request and runs the client pumps
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(maxMessageLen)

	c := &client{
		conn:   conn,
		peerID: uuid.New().String(),
		send:   make(chan []byte, sendBuffer),
	}

	s.mu.Lock()
	s.clients[c.peerID] = c
	s.mu.Unlock()

	s.log.Info("peer connected", "peer", c.peerID, "remote", r.RemoteAddr)
	c.sendMessage(MsgHello, HelloPayload{PeerID: c.peerID})

	go c.writePump()
	s.readPump(c)
}

func (s *Server) readPump(c *client) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, c.peerID)
		s.mu.Unlock()
		c.close()
		c.conn.Close()
		s.log.Info("peer disconnected", "peer", c.peerID)
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read failed", "peer", c.peerID, "error", err)
			}
			return
		}

		ev, err := Decode(message)
		if err != nil {
			s.rejected.Add(1)
			s.log.Debug("rejected message", "peer", c.peerID, "error", err)
			c.sendMessage(MsgError, ErrorPayload{Error: err.Error()})
			continue
		}
		s.accepted.Add(1)
		s.ring.Push(ev)
	}
}

func (c *client) writePump() {
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

func (c *client) sendMessage(typ MessageType, payload any) {
	data, err := Encode(typ, payload)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		// Slow reader: drop the connection
		c.closed = true
		close(c.send)
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
