package observer

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	DefaultBuffer = 8
	writeTimeout  = 5 * time.Second
)

type client struct {
	id   uint64
	addr string
	out  chan []byte
}

// Server fans published frames out to connected spectators. Each client
// has a small buffer; a client that falls behind misses frames instead of
// slowing the game loop.
type Server struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader
	buffer   int

	mu      sync.Mutex
	clients map[uint64]*client
	closed  bool

	nextID  atomic.Uint64
	seq     atomic.Uint64
	dropped atomic.Uint64
}

func NewServer(buffer int, logger *slog.Logger) *Server {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger: logger,
		buffer: buffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[uint64]*client),
	}
}

// Publish stamps f with the next sequence number and queues it for every
// client without blocking.
func (s *Server) Publish(f Frame) {
	f.Seq = s.seq.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.clients) == 0 {
		return
	}
	b, err := json.Marshal(f)
	if err != nil {
		s.logger.Error("encode frame failed", "seq", f.Seq, "error", err)
		return
	}
	for _, c := range s.clients {
		select {
		case c.out <- b:
		default:
			s.dropped.Add(1)
		}
	}
}

func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Dropped counts frames not delivered to slow clients.
func (s *Server) Dropped() uint64 {
	return s.dropped.Load()
}

// Handler upgrades loopback requests to a frame stream. Messages from the
// client are read only to notice when it goes away.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			s.logger.Debug("observer upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}
		defer conn.Close()

		c, ok := s.register(r.RemoteAddr)
		if !ok {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(time.Second))
			return
		}
		s.logger.Info("observer connected", "client", c.id, "remote", c.addr)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for b := range c.out {
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					s.logger.Debug("observer write failed", "client", c.id, "error", err)
					_ = conn.Close()
					return
				}
			}
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
			_ = conn.Close()
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		s.unregister(c)
		<-done
		s.logger.Info("observer disconnected", "client", c.id)
	})
}

func (s *Server) register(addr string) (*client, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false
	}
	c := &client{id: s.nextID.Add(1), addr: addr, out: make(chan []byte, s.buffer)}
	s.clients[c.id] = c
	return c, true
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.id]; ok {
		delete(s.clients, c.id)
		close(c.out)
	}
}

// Close ends every stream and refuses new ones.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, c := range s.clients {
		delete(s.clients, id)
		close(c.out)
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
