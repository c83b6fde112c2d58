package server

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lcalzada-xor/nearby/internal/adapters/web"
)

// Server serves the topology API, the websocket feed and the static
// visualization files.
type Server struct {
	Addr      string
	StaticDir string
	Store     *web.Store
	WSManager *web.WSManager

	// RequestsPerMinute limits API calls per client IP. Zero disables it.
	RequestsPerMinute int

	srv *http.Server
}

// NewServer creates a new web server.
func NewServer(addr, staticDir string, store *web.Store) *Server {
	return &Server{
		Addr:              addr,
		StaticDir:         staticDir,
		Store:             store,
		WSManager:         web.NewWSManager(store),
		RequestsPerMinute: 600,
	}
}

// Handler returns the instrumented router.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(SetupRoutes(s), "nearby-server")
}

// Run starts the server and the websocket broadcaster. It returns once ctx is
// cancelled and the server has shut down.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.WSManager.Start(ctx)

	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("Web Server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Web Server shutdown error: %v", err)
		}
	}()

	log.Printf("Web server listening on %s", ln.Addr())
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
