package diagnostics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/kbukum/appkit/bootstrap"
	"github.com/kbukum/appkit/component"
	"github.com/kbukum/appkit/config"
	"github.com/kbukum/appkit/di"
	"github.com/kbukum/appkit/logger"
	"github.com/kbukum/appkit/util"
)

const (
	componentName = "diagnostics"

	// EnvAddr is the listen address read by Hooks.
	EnvAddr = "DIAGNOSTICS_ADDR"
)

var (
	_ component.Component     = (*Server)(nil)
	_ component.HealthChecker = (*Server)(nil)
	_ component.Describable   = (*Server)(nil)
)

// Server serves the diagnostics routes on their own listener.
type Server struct {
	addr    string
	handler http.Handler
	log     *logger.Logger

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
}

// NewServer creates a diagnostics server for c listening on addr.
func NewServer(addr string, c *di.Container, opts ...Option) *Server {
	o := resolveOptions(opts)
	return &Server{
		addr:    addr,
		handler: Handler(c, opts...),
		log:     o.log,
	}
}

func (s *Server) Name() string { return componentName }

// Start binds the listener and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return fmt.Errorf("diagnostics server already started on %s", s.listener.Addr())
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("diagnostics server failed to bind %s: %w", s.addr, err)
	}
	srv := &http.Server{Handler: s.handler, ReadHeaderTimeout: 5 * time.Second}
	s.srv, s.listener = srv, ln

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("diagnostics server error", logger.ErrorFields("serve", err))
		}
	}()

	s.log.Info("diagnostics server started", logger.Fields("addr", ln.Addr().String()))
	return nil
}

// Stop shuts the server down, waiting for in-flight requests until ctx is done.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv == nil {
		return nil
	}
	err := s.srv.Shutdown(ctx)
	s.srv, s.listener = nil, nil
	if err != nil {
		return fmt.Errorf("diagnostics server shutdown: %w", err)
	}
	s.log.Info("diagnostics server stopped")
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

func (s *Server) Health(ctx context.Context) component.Health {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv == nil {
		return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "not serving"}
	}
	return component.Health{Name: componentName, Status: component.StatusHealthy}
}

func (s *Server) Describe() component.Description {
	return component.Description{
		Name:    "Diagnostics",
		Type:    "server",
		Details: "http://" + s.Addr() + defaultPrefix,
	}
}

// Hooks returns bootstrap hooks that run a diagnostics Server on the
// address in DIAGNOSTICS_ADDR, falling back to addr. The server is
// registered in the container as *Server.
func Hooks(addr string, opts ...Option) (bootstrap.InitHook, bootstrap.DisposeHook) {
	return bootstrap.ComponentHooks(func(ctx context.Context, c *di.Container, env *config.Environment) (*Server, error) {
		listen := util.Coalesce(env.String(EnvAddr, ""), addr)
		name := env.String("SERVICE_NAME", "")
		all := append([]Option{WithServiceName(name)}, opts...)
		return NewServer(listen, c, all...), nil
	})
}
