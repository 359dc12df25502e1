// Package supervisor runs the HTTP server and background workers under a
// suture supervisor so a crashed worker is restarted with backoff.
package supervisor

import (
	"context"
	goerrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/thejerf/suture/v4"

	"eventease/internal/logging"
)

const (
	failureThreshold = 5
	failureDecay     = 30
	failureBackoff   = 15 * time.Second
	shutdownTimeout  = 10 * time.Second
)

// New returns a supervisor whose lifecycle events go to the process logger.
func New(name string) *suture.Supervisor {
	return suture.New(name, suture.Spec{
		EventHook:        logEvent,
		FailureThreshold: failureThreshold,
		FailureDecay:     failureDecay,
		FailureBackoff:   failureBackoff,
		Timeout:          shutdownTimeout,
	})
}

func logEvent(ev suture.Event) {
	e := logging.Warn()
	if ev.Type() == suture.EventTypeServicePanic {
		e = logging.Error()
	}
	e.Fields(ev.Map()).Msg(ev.String())
}

// Server is the part of *echo.Echo the HTTP service drives.
type Server interface {
	Start(address string) error
	Shutdown(ctx context.Context) error
}

// HTTPService runs a Server until its context is cancelled.
type HTTPService struct {
	server  Server
	addr    string
	timeout time.Duration
}

// NewHTTPService wraps server listening on addr.
func NewHTTPService(server Server, addr string, timeout time.Duration) *HTTPService {
	if timeout <= 0 {
		timeout = shutdownTimeout
	}
	return &HTTPService{server: server, addr: addr, timeout: timeout}
}

// Serve implements suture.Service.
func (s *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Start(s.addr); err != nil && !goerrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

func (s *HTTPService) String() string {
	return "http-server"
}
