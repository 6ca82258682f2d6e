// Package ws streams EL_STATE_CH element state-change notifications to
// browser/debug clients over a single GET /ws/events endpoint, grounded on
// the teacher's gorilla/websocket client fan-out shape but simplified to a
// one-way event sink instead of a bidirectional gateway console.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/meshx-project/meshx/pkg/bus"
	"github.com/meshx-project/meshx/pkg/models/ctl"
	"github.com/meshx-project/meshx/pkg/models/hsl"
	"github.com/meshx-project/meshx/pkg/models/lc"
	"github.com/meshx-project/meshx/pkg/models/level"
	"github.com/meshx-project/meshx/pkg/models/lightness"
	"github.com/meshx-project/meshx/pkg/models/location"
	"github.com/meshx-project/meshx/pkg/models/onoff"
	"github.com/meshx-project/meshx/pkg/models/power"
	"github.com/meshx-project/meshx/pkg/models/property"
	"github.com/meshx-project/meshx/pkg/models/xyl"
)

// stateChangeKeys is every family adapter's EL_STATE_CH key; the event
// stream subscribes to each so a debug client sees every model's changes
// regardless of which families a given board composes.
var stateChangeKeys = []bus.EventKey{
	onoff.StateChangeKey, level.StateChangeKey, power.StateChangeKey, location.StateChangeKey,
	property.StateChangeKey, lightness.StateChangeKey, ctl.StateChangeKey, hsl.StateChangeKey,
	xyl.StateChangeKey, lc.StateChangeKey,
}

// ServerConfig configures the event-stream server.
type ServerConfig struct {
	Port            int           `yaml:"port" json:"port"`
	Path            string        `yaml:"path" json:"path"`
	PingInterval    time.Duration `yaml:"ping_interval" json:"ping_interval"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ReadBufferSize  int           `yaml:"read_buffer_size" json:"read_buffer_size"`
	WriteBufferSize int           `yaml:"write_buffer_size" json:"write_buffer_size"`
	AllowedOrigins  []string      `yaml:"allowed_origins" json:"allowed_origins"`
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:            8081,
		Path:            "/ws/events",
		PingInterval:    30 * time.Second,
		WriteTimeout:    10 * time.Second,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		AllowedOrigins:  []string{"*"},
	}
}

// event is the JSON envelope broadcast for each EL_STATE_CH publish.
type event struct {
	Key  bus.EventKey `json:"key"`
	Data any          `json:"data"`
}

// Server upgrades GET /ws/events connections and fans out EL_STATE_CH
// publishes to every connected client.
type Server struct {
	mu      sync.RWMutex
	bus     *bus.Bus
	cfg     ServerConfig
	upgrade websocket.Upgrader
	clients map[*client]struct{}
	srv     *http.Server
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewServer constructs a Server that streams b's EL_STATE_CH events.
func NewServer(b *bus.Bus, cfg ServerConfig) *Server {
	s := &Server{
		bus:     b,
		cfg:     cfg,
		clients: make(map[*client]struct{}),
		upgrade: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				if len(cfg.AllowedOrigins) == 0 {
					return true
				}
				origin := r.Header.Get("Origin")
				for _, allowed := range cfg.AllowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
	}
	for _, key := range stateChangeKeys {
		k := key
		b.Subscribe(bus.ElStateCh, k, func(data any) error {
			s.broadcast(event{Key: k, Data: data})
			return nil
		})
	}
	return s
}

// Start begins serving GET /ws/events in a background goroutine.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Path, s.handleUpgrade)
	s.srv = &http.Server{Addr: fmtAddr(s.cfg.Port), Handler: mux}
	go s.srv.ListenAndServe()
	return nil
}

// Stop closes every client connection and shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	for c := range s.clients {
		c.conn.Close()
	}
	s.mu.Unlock()
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrade.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 64)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	go s.writePump(c)
	go s.readPump(c)
}

// readPump drains and discards client frames purely to detect disconnects;
// the stream is one-way.
func (s *Server) readPump(c *client) {
	defer s.removeClient(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) broadcast(ev event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

func fmtAddr(port int) string {
	if port == 0 {
		port = 8081
	}
	return fmt.Sprintf(":%d", port)
}
