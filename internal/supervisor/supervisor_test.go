package supervisor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeServer struct {
	mu       sync.Mutex
	stop     chan struct{}
	failWith error
	shutdown bool
}

func newFakeServer() *fakeServer {
	return &fakeServer{stop: make(chan struct{})}
}

func (s *fakeServer) ListenAndServe() error {
	if s.failWith != nil {
		return s.failWith
	}
	<-s.stop
	return nil
}

func (s *fakeServer) Shutdown(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.shutdown {
		s.shutdown = true
		close(s.stop)
	}
	return nil
}

func (s *fakeServer) wasShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown
}

func TestHTTPService_ShutsDownOnCancel(t *testing.T) {
	srv := newFakeServer()
	svc := NewHTTPService(srv, ":0", time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
	if !srv.wasShutdown() {
		t.Fatal("expected Shutdown to be called")
	}
}

func TestHTTPService_ListenFailure(t *testing.T) {
	srv := newFakeServer()
	srv.failWith = errors.New("address in use")
	svc := NewHTTPService(srv, ":0", 0)

	if err := svc.Serve(context.Background()); err == nil {
		t.Fatal("expected listen error")
	}
	if svc.String() != "http-server" {
		t.Fatalf("unexpected name %q", svc.String())
	}
}

type countingService struct {
	mu     sync.Mutex
	starts int
}

func (c *countingService) Serve(ctx context.Context) error {
	c.mu.Lock()
	c.starts++
	first := c.starts == 1
	c.mu.Unlock()
	if first {
		return errors.New("crashed")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (c *countingService) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.starts
}

func TestTree_RestartsFailedService(t *testing.T) {
	tree := New(Config{FailureBackoff: 10 * time.Millisecond, ShutdownTimeout: time.Second})
	svc := &countingService{}
	tree.AddJobService(svc)
	tree.AddAPIService(NewHTTPService(newFakeServer(), ":0", time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for svc.count() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected restart, got %d starts", svc.count())
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not stop")
	}
}
