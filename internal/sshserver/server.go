// SPDX-License-Identifier: MPL-2.0

package sshserver

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/invowk/mvnmcp/internal/logging"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
)

const (
	// StateCreated indicates the server has been created but not started.
	StateCreated ServerState = iota
	// StateStarting indicates the server is in the process of starting.
	StateStarting
	// StateRunning indicates the server is running and accepting connections.
	StateRunning
	// StateStopping indicates the server is shutting down.
	StateStopping
	// StateStopped indicates the server has stopped (terminal state).
	StateStopped
	// StateFailed indicates the server failed to start or encountered a fatal error (terminal state).
	StateFailed
)

const (
	// DefaultUser is the user name reported in ConnectionInfo. Any user name
	// is accepted; only the token matters.
	DefaultUser = "mvnmcp"

	// staticClientID tags the token supplied through Config.Token.
	staticClientID = "static"
)

type (
	// ServerState represents the lifecycle state of the server.
	ServerState int32

	// SessionHandler speaks MCP on one byte stream until the stream ends or
	// ctx is canceled. *mcpserver.Server satisfies it.
	SessionHandler interface {
		Serve(ctx context.Context, in io.Reader, out io.Writer) error
	}

	// Clock supplies the current time for token expiry.
	Clock interface {
		Now() time.Time
	}

	// Token is an authentication credential. A zero ExpiresAt never expires.
	Token struct {
		Value     TokenValue
		CreatedAt time.Time
		ExpiresAt time.Time
		ClientID  string
	}

	// Config holds immutable configuration for the SSH server.
	Config struct {
		// Host is the address to bind to (default: 127.0.0.1)
		Host HostAddress
		// Port is the port to listen on (0 = auto-select)
		Port ListenPort
		// Token, when set, is accepted for the lifetime of the server.
		Token TokenValue
		// TokenTTL is how long generated tokens are valid (default: 1 hour)
		TokenTTL time.Duration
		// ShutdownTimeout is the timeout for graceful shutdown (default: 10s)
		ShutdownTimeout time.Duration
		// StartupTimeout is the max time to wait for server to be ready (default: 5s)
		StartupTimeout time.Duration
	}

	// ConnectionInfo contains information needed to connect to the SSH server.
	ConnectionInfo struct {
		Host     HostAddress
		Port     int
		Token    TokenValue
		User     string
		ExpireAt time.Time
	}

	// Option configures a Server during construction.
	Option func(*Server)

	// Server serves MCP sessions over SSH.
	// A Server instance is single-use: once stopped or failed, create a new instance.
	Server struct {
		cfg     Config
		handler SessionHandler
		clock   Clock

		state atomic.Int32

		srvMu    sync.Mutex
		srv      *ssh.Server
		listener net.Listener
		addr     string

		ctx       context.Context
		cancel    context.CancelFunc
		wg        sync.WaitGroup
		startedCh chan struct{}
		errCh     chan error
		errMu     sync.Mutex
		lastErr   error

		tokens  map[TokenValue]*Token
		tokenMu sync.RWMutex

		logger *log.Logger
	}

	realClock struct{}
)

func (realClock) Now() time.Time { return time.Now() }

// String returns a human-readable representation of the server state.
func (s ServerState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Host:            "127.0.0.1",
		Port:            0,
		TokenTTL:        time.Hour,
		ShutdownTimeout: 10 * time.Second,
		StartupTimeout:  5 * time.Second,
	}
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	if err := c.Host.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Port.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Token != "" {
		if err := c.Token.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return &InvalidSSHConfigError{FieldErrors: errs}
	}
	return nil
}

// WithClock replaces the clock used for token expiry.
func WithClock(c Clock) Option {
	return func(s *Server) {
		s.clock = c
	}
}

// WithLogger sets the parent logger. Nil means log.Default().
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		s.logger = logging.Component(l, "ssh-server")
	}
}

// New creates a server that hands each session to handler.
// The server is not started; call Start() to begin accepting connections.
func New(cfg Config, handler SessionHandler, opts ...Option) (*Server, error) {
	defaults := DefaultConfig()
	if cfg.Host == "" {
		cfg.Host = defaults.Host
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = defaults.TokenTTL
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if cfg.StartupTimeout == 0 {
		cfg.StartupTimeout = defaults.StartupTimeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if handler == nil {
		return nil, errors.New("sshserver: nil session handler")
	}

	s := &Server{
		cfg:       cfg,
		handler:   handler,
		clock:     realClock{},
		tokens:    make(map[TokenValue]*Token),
		startedCh: make(chan struct{}),
		errCh:     make(chan error, 1),
		logger:    logging.Component(nil, "ssh-server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state.Store(int32(StateCreated))

	if cfg.Token != "" {
		s.tokens[cfg.Token] = &Token{
			Value:     cfg.Token,
			CreatedAt: s.clock.Now(),
			ClientID:  staticClientID,
		}
	}

	return s, nil
}
