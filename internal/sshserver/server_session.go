// SPDX-License-Identifier: MPL-2.0

package sshserver

import (
	"fmt"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/google/uuid"
)

// commandsRefused is written to stderr when a session asks for a command.
const commandsRefused = "mvnmcp: commands are not supported; open a session without a command to speak MCP"

// sessionMiddleware bridges command-less sessions to the MCP handler and
// refuses the rest with exit status 1.
func (s *Server) sessionMiddleware() wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			if cmd := sess.Command(); len(cmd) > 0 {
				s.logger.Warn("Refused command session", "user", sess.User(), "command", cmd)
				_, _ = fmt.Fprintln(sess.Stderr(), commandsRefused)
				_ = sess.Exit(1) // Terminal operation; error non-critical
				return
			}
			s.serveSession(sess)
		}
	}
}

func (s *Server) serveSession(sess ssh.Session) {
	id := uuid.NewString()
	clientID, _ := sess.Context().Value(clientIDKey).(string)
	logger := s.logger.With("session", id, "client", clientID)

	logger.Info("MCP session opened", "remote", sess.RemoteAddr())
	err := s.handler.Serve(sess.Context(), sess, sess)
	if err != nil {
		logger.Error("MCP session failed", "error", err)
		_ = sess.Exit(1) // Terminal operation; error non-critical
		return
	}
	logger.Info("MCP session closed")
	_ = sess.Exit(0) // Terminal operation; error non-critical
}
