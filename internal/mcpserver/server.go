// SPDX-License-Identifier: MPL-2.0

// Package mcpserver exposes the build operations and project resources over
// the Model Context Protocol.
package mcpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/invowk/mvnmcp/internal/logging"
	"github.com/invowk/mvnmcp/internal/maven"
	"github.com/invowk/mvnmcp/internal/project"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	// DefaultName is the server name announced during initialization.
	DefaultName = "mvnmcp"

	ToolCompile = "maven_compile"
	ToolTest    = "maven_test"
	ToolPackage = "maven_package"
	ToolRun     = "maven_run"
)

type (
	// Options configures a Server.
	Options struct {
		Name    string
		Version string
		Logger  *log.Logger
	}

	// Server is an MCP server bound to one Maven project.
	Server struct {
		mcp     *server.MCPServer
		service *maven.Service
		reader  *project.Reader
		logger  *log.Logger
	}
)

// New registers the tools and resources. The resource list describes the
// base directory resolved at construction time.
func New(service *maven.Service, reader *project.Reader, opts Options) (*Server, error) {
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	resources, err := reader.List()
	if err != nil {
		return nil, fmt.Errorf("list project resources: %w", err)
	}

	s := &Server{
		mcp: server.NewMCPServer(
			opts.Name,
			opts.Version,
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
			server.WithRecovery(),
		),
		service: service,
		reader:  reader,
		logger:  logging.Component(opts.Logger, "mcp"),
	}

	for _, r := range resources {
		s.mcp.AddResource(
			mcp.NewResource(r.URI, r.Name,
				mcp.WithResourceDescription(r.Description),
				mcp.WithMIMEType(r.MIMEType),
			),
			s.readResource(r.MIMEType),
		)
	}

	s.mcp.AddTool(mcp.NewTool(ToolCompile,
		mcp.WithDescription("Run Maven compile (equivalent to mvnw clean compile)"),
	), s.handleCompile)

	s.mcp.AddTool(mcp.NewTool(ToolTest,
		mcp.WithDescription("Run Maven tests (equivalent to mvnw test)"),
		mcp.WithString("test_name",
			mcp.Description("Optional specific test name to run (equivalent to -Dtest=TestName)"),
		),
	), s.handleTest)

	s.mcp.AddTool(mcp.NewTool(ToolPackage,
		mcp.WithDescription("Run Maven package (equivalent to mvnw package)"),
		mcp.WithBoolean("skip_tests",
			mcp.Description("Optional flag to skip tests during packaging"),
		),
	), s.handlePackage)

	s.mcp.AddTool(mcp.NewTool(ToolRun,
		mcp.WithDescription("Run custom Maven command"),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("Maven command to run (without 'mvnw' prefix)"),
		),
	), s.handleRun)

	return s, nil
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Serve speaks the protocol over newline-delimited JSON-RPC on in and out
// until ctx is canceled or in is closed. Each call registers its own client
// session, so one Server can serve many connections at once.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	sess := newSession()
	if err := s.mcp.RegisterSession(ctx, sess); err != nil {
		return fmt.Errorf("serve MCP: register session: %w", err)
	}
	defer s.mcp.UnregisterSession(ctx, sess.SessionID())

	ctx, cancel := context.WithCancel(s.mcp.WithContext(ctx, sess))
	defer cancel()

	logger := s.logger.With("session", sess.SessionID())
	logger.Debug("serving MCP session")

	w := &messageWriter{out: out}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case n := <-sess.notifications:
				if err := w.write(n); err != nil {
					logger.Warn("dropped notification", "error", err)
				}
			}
		}
	}()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		reader := bufio.NewReader(in)
		for {
			line, err := reader.ReadString('\n')
			if strings.TrimSpace(line) != "" {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				return nil
			}
			return fmt.Errorf("serve MCP: read: %w", err)
		case line := <-lines:
			resp := s.mcp.HandleMessage(ctx, json.RawMessage(line))
			if resp == nil {
				continue
			}
			if err := w.write(resp); err != nil {
				return fmt.Errorf("serve MCP: write: %w", err)
			}
		}
	}
}

func (s *Server) readResource(mimeType string) server.ResourceHandlerFunc {
	return func(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		text, err := s.reader.Read(req.Params.URI)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: mimeType,
				Text:     text,
			},
		}, nil
	}
}

func (s *Server) handleCompile(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return outcomeResult(s.service.Compile(ctx)), nil
}

func (s *Server) handleTest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return outcomeResult(s.service.Test(ctx, req.GetString("test_name", ""))), nil
}

func (s *Server) handlePackage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return outcomeResult(s.service.Package(ctx, req.GetBool("skip_tests", false))), nil
}

func (s *Server) handleRun(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	command, err := req.RequireString("command")
	if err != nil {
		return nil, maven.ErrCommandRequired
	}
	out, err := s.service.Run(ctx, command)
	if err != nil {
		return nil, err
	}
	return outcomeResult(out), nil
}

func outcomeResult(out maven.Outcome) *mcp.CallToolResult {
	if out.Success {
		return mcp.NewToolResultText(out.Message)
	}
	return mcp.NewToolResultError(out.Message)
}

type (
	// session is the per-connection client state registered with the
	// protocol server.
	session struct {
		id            string
		notifications chan mcp.JSONRPCNotification
		initialized   atomic.Bool
	}

	// messageWriter serializes responses and notifications onto one stream.
	messageWriter struct {
		mu  sync.Mutex
		out io.Writer
	}
)

var _ server.ClientSession = (*session)(nil)

func newSession() *session {
	return &session{
		id:            uuid.NewString(),
		notifications: make(chan mcp.JSONRPCNotification, 16),
	}
}

func (c *session) SessionID() string { return c.id }

func (c *session) NotificationChannel() chan<- mcp.JSONRPCNotification { return c.notifications }

func (c *session) Initialize() { c.initialized.Store(true) }

func (c *session) Initialized() bool { return c.initialized.Load() }

func (w *messageWriter) write(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err = w.out.Write(append(data, '\n'))
	return err
}
