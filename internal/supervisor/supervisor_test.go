package supervisor

import (
	"context"
	goerrors "errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	mu       sync.Mutex
	started  chan struct{}
	stop     chan struct{}
	startErr error
	shutdown bool
}

func newFakeServer() *fakeServer {
	return &fakeServer{started: make(chan struct{}), stop: make(chan struct{})}
}

func (f *fakeServer) Start(string) error {
	close(f.started)
	if f.startErr != nil {
		return f.startErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shutdown = true
	close(f.stop)
	return nil
}

func TestHTTPService_ShutsDownOnCancel(t *testing.T) {
	srv := newFakeServer()
	svc := NewHTTPService(srv, ":0", time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	<-srv.started
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
	srv.mu.Lock()
	assert.True(t, srv.shutdown)
	srv.mu.Unlock()
}

func TestHTTPService_ReportsStartFailure(t *testing.T) {
	srv := newFakeServer()
	srv.startErr = goerrors.New("address in use")
	svc := NewHTTPService(srv, ":0", 0)

	err := svc.Serve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address in use")
	assert.Equal(t, "http-server", svc.String())
}

type countingService struct {
	mu    sync.Mutex
	runs  int
	ready chan struct{}
}

func (c *countingService) Serve(ctx context.Context) error {
	c.mu.Lock()
	c.runs++
	if c.runs == 1 {
		close(c.ready)
	}
	c.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func TestNew_RunsServicesUntilCancelled(t *testing.T) {
	sup := New("test")
	svc := &countingService{ready: make(chan struct{})}
	sup.Add(svc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	select {
	case <-svc.ready:
	case <-time.After(2 * time.Second):
		t.Fatal("service never started")
	}
	cancel()

	select {
	case <-errCh:
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not stop")
	}
	svc.mu.Lock()
	assert.Equal(t, 1, svc.runs)
	svc.mu.Unlock()
}
