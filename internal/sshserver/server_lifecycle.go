// SPDX-License-Identifier: MPL-2.0

package sshserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
)

// Start starts the SSH server and blocks until either:
//   - The server is ready to accept connections (returns nil)
//   - The server fails to start (returns error)
//   - The context is cancelled (returns context error)
//   - The startup timeout is exceeded (returns error)
//
// After Start() returns nil, use Err() to monitor for runtime errors.
func (s *Server) Start(ctx context.Context) error {
	// Check for an already-cancelled context before any setup so the serve
	// goroutine cannot reach StateRunning first.
	select {
	case <-ctx.Done():
		if s.state.CompareAndSwap(int32(StateCreated), int32(StateFailed)) {
			s.setLastErr(fmt.Errorf("context cancelled before start: %w", ctx.Err()))
		}
		return s.LastError()
	default:
	}

	// Transition: Created -> Starting
	if !s.state.CompareAndSwap(int32(StateCreated), int32(StateStarting)) {
		return fmt.Errorf("cannot start server in state %s", s.State())
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())

	startupCtx, startupCancel := context.WithTimeout(ctx, s.cfg.StartupTimeout)
	defer startupCancel()

	addr := net.JoinHostPort(s.cfg.Host.String(), strconv.Itoa(int(s.cfg.Port)))
	var lc net.ListenConfig
	listener, err := lc.Listen(startupCtx, "tcp", addr)
	if err != nil {
		s.transitionToFailed(fmt.Errorf("failed to listen on %s: %w", addr, err))
		return s.LastError()
	}

	s.srvMu.Lock()
	s.listener = listener
	s.addr = listener.Addr().String()
	s.srvMu.Unlock()

	srv, err := wish.NewServer(
		wish.WithAddress(addr),
		wish.WithPublicKeyAuth(s.publicKeyHandler),
		wish.WithPasswordAuth(s.passwordHandler),
		wish.WithMiddleware(s.sessionMiddleware()),
	)
	if err != nil {
		_ = listener.Close() // Best-effort cleanup on error
		s.transitionToFailed(fmt.Errorf("failed to create SSH server: %w", err))
		return s.LastError()
	}

	s.srvMu.Lock()
	s.srv = srv
	s.srvMu.Unlock()

	s.wg.Add(1)
	go s.serve()

	s.wg.Add(1)
	go s.cleanupExpiredTokens()

	select {
	case <-s.startedCh:
		s.logger.Info("SSH server started", "address", s.addr)
		return nil

	case err := <-s.errCh:
		s.transitionToFailed(err)
		return err

	case <-startupCtx.Done():
		s.transitionToFailed(fmt.Errorf("startup timeout: %w", startupCtx.Err()))
		return s.LastError()
	}
}

// Stop gracefully stops the SSH server.
// It blocks until all connections are closed or the shutdown timeout is reached.
// Safe to call multiple times; subsequent calls are no-ops.
func (s *Server) Stop() error {
	for {
		currentState := s.State()
		switch currentState {
		case StateStopped, StateFailed:
			return nil
		case StateCreated:
			if s.state.CompareAndSwap(int32(StateCreated), int32(StateStopped)) {
				return nil
			}
			continue
		case StateStopping:
			s.wg.Wait()
			return nil
		case StateStarting, StateRunning:
			if !s.state.CompareAndSwap(int32(currentState), int32(StateStopping)) {
				continue
			}
			return s.doStop()
		default:
			return fmt.Errorf("unknown server state: %d", currentState)
		}
	}
}

// Err returns a channel that receives fatal server errors.
// Use this to monitor for unexpected failures after Start() returns.
// The channel is closed when the server stops.
func (s *Server) Err() <-chan error {
	return s.errCh
}

// State returns the current server state.
func (s *Server) State() ServerState {
	return ServerState(s.state.Load())
}

// IsRunning returns whether the server is currently running and accepting connections.
func (s *Server) IsRunning() bool {
	return s.State() == StateRunning
}

// LastError returns the error that moved the server to StateFailed.
func (s *Server) LastError() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.lastErr
}

// Address returns the server's bound address (host:port).
// Returns empty string if the server is not running.
func (s *Server) Address() string {
	select {
	case <-s.startedCh:
		s.srvMu.Lock()
		defer s.srvMu.Unlock()
		return s.addr
	default:
		return ""
	}
}

// Port returns the server's listening port, or 0 if it never started.
func (s *Server) Port() int {
	addr := s.Address()
	if addr == "" {
		return 0
	}
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0
	}
	return port
}

// Host returns the server's configured host address.
func (s *Server) Host() HostAddress {
	return s.cfg.Host
}

// Wait blocks until the server stops (either gracefully or due to error).
// Returns the error if the server failed, nil otherwise.
func (s *Server) Wait() error {
	s.wg.Wait()

	if s.State() == StateFailed {
		return s.LastError()
	}
	return nil
}

// serve runs the SSH server and handles errors.
func (s *Server) serve() {
	defer s.wg.Done()

	// Transition: Starting -> Running (signals readiness)
	if s.state.CompareAndSwap(int32(StateStarting), int32(StateRunning)) {
		close(s.startedCh)
	}

	s.srvMu.Lock()
	srv := s.srv
	listener := s.listener
	s.srvMu.Unlock()

	if srv == nil || listener == nil {
		return
	}

	if err := srv.Serve(listener); err != nil {
		if errors.Is(err, ssh.ErrServerClosed) || errors.Is(err, net.ErrClosed) {
			return
		}
		select {
		case s.errCh <- fmt.Errorf("serve error: %w", err):
		default:
			s.logger.Error("SSH server error (channel full)", "error", err)
		}
	}
}

// doStop performs the actual shutdown logic.
func (s *Server) doStop() error {
	if s.cancel != nil {
		s.cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer shutdownCancel()

	var shutdownErr error
	s.srvMu.Lock()
	if s.srv != nil {
		shutdownErr = s.srv.Shutdown(shutdownCtx)
		if shutdownErr != nil && !isClosedConnError(shutdownErr) {
			s.logger.Error("shutdown error", "error", shutdownErr)
		} else {
			shutdownErr = nil
		}
	}
	if s.listener != nil {
		_ = s.listener.Close() // Best-effort cleanup during shutdown
	}
	s.srvMu.Unlock()

	s.wg.Wait()

	s.state.Store(int32(StateStopped))
	s.logger.Info("SSH server stopped")
	close(s.errCh)

	return shutdownErr
}

// transitionToFailed sets the server state to Failed and stores the error.
func (s *Server) transitionToFailed(err error) {
	s.setLastErr(err)
	s.state.Store(int32(StateFailed))
	if s.cancel != nil {
		s.cancel()
	}
	s.srvMu.Lock()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.srvMu.Unlock()
	select {
	case s.errCh <- err:
	default:
	}
}

func (s *Server) setLastErr(err error) {
	s.errMu.Lock()
	s.lastErr = err
	s.errMu.Unlock()
}

// isClosedConnError checks if the error is a "use of closed network connection" error.
func isClosedConnError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, net.ErrClosed) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Err.Error() == "use of closed network connection"
	}
	return false
}
