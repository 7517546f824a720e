package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docmeta/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

const instructions = "docmeta extracts structured metadata from documents. " +
	"Call extract_metadata with a filename and either the document text or a local path. " +
	"Past runs are available as docmeta://runs resources."

// Server is the MCP server for docmeta.
type Server struct {
	ports   *Ports
	server  *mcp.Server
	version string
}

// Option configures a Server.
type Option func(*Server)

// WithVersion overrides the reported server version.
func WithVersion(v string) Option {
	return func(s *Server) {
		if v != "" {
			s.version = v
		}
	}
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports:   ports,
		version: Version,
	}
	for _, opt := range opts {
		opt(s)
	}

	impl := &mcp.Implementation{
		Name:    "docmeta",
		Version: s.version,
	}
	s.server = mcp.NewServer(impl, &mcp.ServerOptions{Instructions: instructions})

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run serves MCP over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.Info("mcp.start: transport=stdio version=%s", s.version)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves streamable HTTP on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp.shutdown: %v", err)
		}
	}()

	logger.Info("mcp.start: transport=http addr=%s version=%s", addr, s.version)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
