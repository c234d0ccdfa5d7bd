package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Server runs the venue's HTTP-over-JSON service boundary, grounded on
// polymarket-mm's api.Server: one http.ServeMux, one http.Server with
// read/write/idle timeouts, and a graceful Shutdown.
type Server struct {
	server *http.Server
	log    zerolog.Logger
}

// NewServer wires gate behind the seven REST endpoints listening on addr.
func NewServer(addr string, readTimeout, writeTimeout, idleTimeout time.Duration, gate Gate, log zerolog.Logger) *Server {
	log = log.With().Str("component", "httpapi-server").Logger()
	handlers := NewHandlers(gate, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/mid_price", handlers.HandleMidPrice)
	mux.HandleFunc("/orderbook", handlers.HandleOrderbook)
	mux.HandleFunc("/add_order", handlers.HandleAddOrder)
	mux.HandleFunc("/del_order", handlers.HandleDelOrder)
	mux.HandleFunc("/users", handlers.HandleUsers)
	mux.HandleFunc("/pnl_history/", handlers.HandlePnLHistory)
	mux.HandleFunc("/positions/", handlers.HandlePositions)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      requestIDMiddleware(log, mux),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return &Server{server: httpServer, log: log}
}

// Run starts the listener and blocks until ctx is canceled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.server.Addr).Msg("http server starting")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info().Msg("http server shutting down")
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// requestIDMiddleware stamps every request with a correlation id, the way
// a production API server logs request lineage — one uuid per request,
// independent of the book's own int64 order ids.
func requestIDMiddleware(log zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		w.Header().Set("X-Request-Id", requestID)

		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("handled request")
	})
}
