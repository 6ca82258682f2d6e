// Package rest implements MeshX's debug/status HTTP surface: GET
// /api/v1/status, GET /api/v1/elements and POST
// /api/v1/elements/{id}/models/{model_id}/send, plus /health, /metrics and
// POST /api/v1/login. Bearer auth guards the router only when
// cfg.Auth.Enabled is set, and leaves /health, /metrics and the login route
// open. Grounded on the teacher's pkg/api/rest server shape.
package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meshx-project/meshx/pkg/api/middleware"
	"github.com/meshx-project/meshx/pkg/config"
	"github.com/meshx-project/meshx/pkg/node"
)

// Server is the REST debug/status API server.
type Server struct {
	node *node.Node
	cfg  config.APIConfig
	srv  *http.Server
}

// NewServer constructs a REST server fronting n, configured by cfg.
func NewServer(n *node.Node, cfg config.APIConfig) *Server {
	return &Server{node: n, cfg: cfg}
}

// Start begins serving in a background goroutine.
func (s *Server) Start() error {
	r := mux.NewRouter()
	s.registerRoutes(r)

	if s.cfg.Auth.Enabled {
		var keys []string
		for _, u := range s.cfg.Auth.Users {
			keys = append(keys, u.Key)
		}
		auth := middleware.NewAPIKeyAuth(keys, s.cfg.Auth.JWTSecret)
		r.Use(auth.Handler)
	}

	addr := s.cfg.Address
	if addr == "" {
		addr = ":8080"
	}
	s.srv = &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("meshx rest server error: %v\n", err)
		}
	}()
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}

func (s *Server) registerRoutes(r *mux.Router) {
	v1 := r.PathPrefix("/api/v1").Subrouter()

	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/api/v1/login", s.handleLogin).Methods("POST")

	v1.HandleFunc("/status", s.handleStatus).Methods("GET")
	v1.HandleFunc("/elements", s.handleListElements).Methods("GET")
	v1.HandleFunc("/elements/{id}/models/{model_id}/send", s.handleSendModel).Methods("POST")
}
