package mcp

import (
	"context"
	"errors"
	"fmt"

	"figmamcp/internal/figma"
	"figmamcp/internal/logging"
	"figmamcp/internal/snapshot"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is set by build flags, defaults to "dev" for development builds.
var Version = "dev"

// instructions is sent to clients during initialization.
const instructions = `Read-only access to Figma designs.
Every tool takes a file_key: either the key itself or a full figma.com link.
Node ids may be given as 1:2 or in the URL form 1-2.`

// FigmaAPI is the subset of the Figma client the tools need.
type FigmaAPI interface {
	GetFile(ctx context.Context, fileKey string) (*figma.File, error)
	GetFileRaw(ctx context.Context, fileKey string) ([]byte, error)
	GetNodes(ctx context.Context, fileKey string, nodeIDs []string) (*figma.NodesResponse, error)
	GetImages(ctx context.Context, fileKey string, nodeIDs []string, opts figma.ImageOptions) (*figma.ImagesResponse, error)
}

// Server wraps the MCP SDK server with the Figma tools registered.
type Server struct {
	mcpServer *mcp.Server
	tools     *Tools
	logger    *log.Logger
}

// ServerOptions configures the MCP server.
type ServerOptions struct {
	// Client performs the Figma API calls. Required.
	Client FigmaAPI
	// Snapshots receives download_file output. Defaults to the working
	// directory.
	Snapshots *snapshot.Store
	// Logger defaults to a stderr logger at info level.
	Logger *log.Logger
}

// NewServer creates the Figma MCP server with all tools registered.
func NewServer(opts *ServerOptions) (*Server, error) {
	if opts == nil || opts.Client == nil {
		return nil, errors.New("figma client is required")
	}

	logger := opts.Logger
	if logger == nil {
		var err error
		logger, err = logging.New(logging.Options{})
		if err != nil {
			return nil, err
		}
	}

	snapshots := opts.Snapshots
	if snapshots == nil {
		snapshots = snapshot.New("")
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "figma",
		Version: Version,
	}, &mcp.ServerOptions{
		Instructions: instructions,
	})

	s := &Server{
		mcpServer: mcpServer,
		tools:     NewTools(opts.Client, snapshots, logger),
		logger:    logger,
	}
	s.tools.Register(mcpServer)

	return s, nil
}

// Run serves over STDIO until the client disconnects or ctx is canceled.
// A nil transport means STDIO.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	if transport == nil {
		transport = &mcp.StdioTransport{}
	}

	s.logger.Info("starting MCP server on STDIO transport", "version", Version)

	err := s.mcpServer.Run(ctx, transport)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.logger.Info("shutting down")
			return err
		}
		s.logger.Error("server stopped", "error", err)
		return fmt.Errorf("mcp server: %w", err)
	}

	s.logger.Info("client disconnected")
	return nil
}

// MCPServer returns the underlying MCP SDK server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

// Logger returns the server's logger.
func (s *Server) Logger() *log.Logger {
	return s.logger
}
