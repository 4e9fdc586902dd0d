package server

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

// ShutdownHook is one step of the teardown sequence. Lower priorities run
// first: the API server stops accepting requests before the vector store
// connection and the audit logger close behind it.
type ShutdownHook struct {
	Name     string
	Priority int
	Fn       func(ctx context.Context) error
}

// ShutdownConfig configures the shutdown handler.
type ShutdownConfig struct {
	// Timeout bounds the whole hook sequence (default: 30s)
	Timeout time.Duration
	// Signals that trigger shutdown (default: SIGTERM, SIGINT)
	Signals []os.Signal
}

// DefaultShutdownConfig returns the default shutdown configuration.
func DefaultShutdownConfig() *ShutdownConfig {
	return &ShutdownConfig{
		Timeout: 30 * time.Second,
		Signals: []os.Signal{syscall.SIGTERM, syscall.SIGINT},
	}
}

// ShutdownHandler runs registered hooks in priority order when the process
// receives a shutdown signal or Shutdown is called.
type ShutdownHandler struct {
	mu           sync.Mutex
	hooks        []ShutdownHook
	timeout      time.Duration
	signals      []os.Signal
	shutdownCh   chan struct{}
	doneCh       chan struct{}
	started      bool
	shutdownOnce sync.Once
	doneOnce     sync.Once
}

// NewShutdownHandler creates a shutdown handler.
func NewShutdownHandler(config *ShutdownConfig) *ShutdownHandler {
	if config == nil {
		config = DefaultShutdownConfig()
	}

	return &ShutdownHandler{
		timeout:    config.Timeout,
		signals:    config.Signals,
		shutdownCh: make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// RegisterHook adds a shutdown hook. Hooks registered with equal priority
// keep their registration order.
func (s *ShutdownHandler) RegisterHook(name string, priority int, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hooks = append(s.hooks, ShutdownHook{Name: name, Priority: priority, Fn: fn})
	sort.SliceStable(s.hooks, func(i, j int) bool {
		return s.hooks[i].Priority < s.hooks[j].Priority
	})
}

// Start begins listening for shutdown signals.
func (s *ShutdownHandler) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, s.signals...)

	go func() {
		select {
		case sig := <-sigCh:
			log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		case <-s.shutdownCh:
		}
		signal.Stop(sigCh)
		s.runHooks()
	}()
}

// Shutdown triggers the teardown without a signal. A no-op before Start.
func (s *ShutdownHandler) Shutdown() {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return
	}

	s.shutdownOnce.Do(func() {
		close(s.shutdownCh)
	})
}

// Wait blocks until every hook has run.
func (s *ShutdownHandler) Wait() {
	<-s.doneCh
}

// WaitWithTimeout blocks until teardown completes or the timeout elapses,
// reporting which happened.
func (s *ShutdownHandler) WaitWithTimeout(timeout time.Duration) bool {
	select {
	case <-s.doneCh:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Done returns a channel closed once teardown completes.
func (s *ShutdownHandler) Done() <-chan struct{} {
	return s.doneCh
}

// ShutdownCh returns a channel closed when teardown begins.
func (s *ShutdownHandler) ShutdownCh() <-chan struct{} {
	return s.shutdownCh
}

func (s *ShutdownHandler) runHooks() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.mu.Lock()
	hooks := make([]ShutdownHook, len(s.hooks))
	copy(hooks, s.hooks)
	s.mu.Unlock()

	// A failing hook never blocks the ones behind it.
	for _, hook := range hooks {
		if err := hook.Fn(ctx); err != nil {
			log.Warn().Err(err).Str("hook", hook.Name).Msg("Shutdown hook failed")
		}
	}

	s.doneOnce.Do(func() {
		close(s.doneCh)
	})
}

// HTTPServerShutdownHook stops an HTTP listener. It runs first so no new
// pipeline work arrives while the stores close.
func HTTPServerShutdownHook(name string, shutdownFn func(ctx context.Context) error) ShutdownHook {
	return ShutdownHook{Name: name, Priority: 10, Fn: shutdownFn}
}

// VectorStoreShutdownHook closes the vector store connection after in-flight
// requests drain.
func VectorStoreShutdownHook(closeFn func() error) ShutdownHook {
	return ShutdownHook{
		Name:     "vector-store",
		Priority: 90,
		Fn: func(ctx context.Context) error {
			return closeFn()
		},
	}
}

// AuditLoggerShutdownHook flushes and closes the audit log last, so the
// other hooks' activity is still recorded.
func AuditLoggerShutdownHook(closeFn func() error) ShutdownHook {
	return ShutdownHook{
		Name:     "audit-logger",
		Priority: 95,
		Fn: func(ctx context.Context) error {
			return closeFn()
		},
	}
}

// TracingShutdownHook flushes the span exporter.
func TracingShutdownHook(shutdownFn func(ctx context.Context) error) ShutdownHook {
	return ShutdownHook{Name: "tracing", Priority: 80, Fn: shutdownFn}
}

// GracefulServer bundles the health server with the shutdown handler and
// drops readiness the moment teardown starts, so load balancers stop
// routing to the instance before its listener closes.
type GracefulServer struct {
	Health   *HealthServer
	Shutdown *ShutdownHandler
}

// NewGracefulServer creates the health/shutdown pair.
func NewGracefulServer(healthConfig *HealthConfig, shutdownConfig *ShutdownConfig) *GracefulServer {
	health := NewHealthServer(healthConfig)
	shutdown := NewShutdownHandler(shutdownConfig)

	go func() {
		<-shutdown.ShutdownCh()
		health.SetReady(false)
	}()

	return &GracefulServer{Health: health, Shutdown: shutdown}
}

// Wait blocks until teardown completes.
func (g *GracefulServer) Wait() {
	g.Shutdown.Wait()
}

// RegisterHook adds a shutdown hook.
func (g *GracefulServer) RegisterHook(name string, priority int, fn func(ctx context.Context) error) {
	g.Shutdown.RegisterHook(name, priority, fn)
}
