// Package httpapi exposes the REST transport of the server: the gorilla/mux
// router, the bearer-token middleware, and the handlers that map service
// results onto the wire contract (status codes and JSON bodies).
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dklimov/taskvault/internal/logging"
	"github.com/dklimov/taskvault/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type HTTPServer struct {
	address string
	logger  logging.Logger
	users   *services.UserService
	tasks   *services.TaskService
}

func NewHTTPServer(a string, l logging.Logger, us *services.UserService, ts *services.TaskService) (*HTTPServer, error) {
	return &HTTPServer{
		address: a,
		logger:  l.With("module", "http_server"),
		users:   us,
		tasks:   ts,
	}, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled, then shuts
// down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
