// SPDX-License-Identifier: MPL-2.0

package sshserver

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/charmbracelet/ssh"
)

type ctxKey int

const (
	tokenKey ctxKey = iota
	clientIDKey
)

// GenerateToken creates a new authentication token for a client.
func (s *Server) GenerateToken(clientID string) (*Token, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	tokenValue := TokenValue(hex.EncodeToString(tokenBytes))
	now := s.clock.Now()

	token := &Token{
		Value:     tokenValue,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.TokenTTL),
		ClientID:  clientID,
	}

	s.tokenMu.Lock()
	s.tokens[tokenValue] = token
	s.tokenMu.Unlock()

	s.logger.Debug("Generated token", "client", clientID)

	return token, nil
}

// ValidateToken checks if a token is valid. Expired tokens are revoked.
func (s *Server) ValidateToken(tokenValue TokenValue) (*Token, bool) {
	s.tokenMu.RLock()
	token, exists := s.tokens[tokenValue]
	s.tokenMu.RUnlock()

	if !exists {
		return nil, false
	}

	if token.expired(s.clock.Now()) {
		s.RevokeToken(tokenValue)
		return nil, false
	}

	return token, true
}

// RevokeToken invalidates a token.
func (s *Server) RevokeToken(tokenValue TokenValue) {
	s.tokenMu.Lock()
	delete(s.tokens, tokenValue)
	s.tokenMu.Unlock()
}

// RevokeTokensForClient revokes all tokens issued to clientID.
func (s *Server) RevokeTokensForClient(clientID string) {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()

	for tokenValue, token := range s.tokens {
		if token.ClientID == clientID {
			delete(s.tokens, tokenValue)
		}
	}
}

// GetConnectionInfo issues a token for clientID and returns what a client
// needs to connect. Returns an error if the server is not running.
func (s *Server) GetConnectionInfo(clientID string) (*ConnectionInfo, error) {
	if !s.IsRunning() {
		return nil, fmt.Errorf("SSH server is not running (state: %s)", s.State())
	}

	token, err := s.GenerateToken(clientID)
	if err != nil {
		return nil, err
	}

	return &ConnectionInfo{
		Host:     s.cfg.Host,
		Port:     s.Port(),
		Token:    token.Value,
		User:     DefaultUser,
		ExpireAt: token.ExpiresAt,
	}, nil
}

func (t *Token) expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}

// removeExpiredTokens drops every expired token and reports how many went.
func (s *Server) removeExpiredTokens() int {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()

	now := s.clock.Now()
	removed := 0
	for tokenValue, token := range s.tokens {
		if token.expired(now) {
			delete(s.tokens, tokenValue)
			removed++
		}
	}
	return removed
}

// cleanupExpiredTokens periodically removes expired tokens.
func (s *Server) cleanupExpiredTokens() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if n := s.removeExpiredTokens(); n > 0 {
				s.logger.Debug("Removed expired tokens", "count", n)
			}
		}
	}
}

// passwordHandler handles password authentication using tokens.
func (s *Server) passwordHandler(ctx ssh.Context, password string) bool {
	token, valid := s.ValidateToken(TokenValue(password))
	if !valid {
		s.logger.Warn("Invalid token authentication attempt", "user", ctx.User(), "remote", ctx.RemoteAddr())
		return false
	}

	ctx.SetValue(tokenKey, token)
	ctx.SetValue(clientIDKey, token.ClientID)

	s.logger.Debug("Token authentication successful", "client", token.ClientID)
	return true
}

// publicKeyHandler rejects all public key authentication.
func (s *Server) publicKeyHandler(ssh.Context, ssh.PublicKey) bool {
	return false
}
