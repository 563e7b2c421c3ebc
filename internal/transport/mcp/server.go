package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/server"

	"github.com/sandevgo/buddybot/internal/core"
	"github.com/sandevgo/buddybot/pkg/log"
	"github.com/sandevgo/buddybot/pkg/srv"
)

// Server exposes the context store and the answerer as MCP tools over streamable HTTP.
type Server struct {
	mcp  *server.MCPServer
	http *server.StreamableHTTPServer
	addr string
}

var _ srv.Service = (*Server)(nil)

func NewServer(addr string, store core.ContextStore, asker Asker) *Server {
	s := server.NewMCPServer(
		core.BuddyName,
		core.BuddyVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	registerTools(s, NewTools(store, asker))

	return &Server{
		mcp:  s,
		http: server.NewStreamableHTTPServer(s),
		addr: addr,
	}
}

func registerTools(s *server.MCPServer, t *Tools) {
	s.AddTool(listChannelsTool, t.ListChannels)
	s.AddTool(getContextTool, t.GetContext)
	s.AddTool(listActionItemsTool, t.ListActionItems)
	s.AddTool(resolveActionItemTool, t.ResolveActionItem)
	s.AddTool(askTool, t.Ask)
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.addr).Msg("starting mcp server")
	if err := s.http.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

const instructions = `This server tracks team chat channels. Use list_channels to discover channels,
get_context for recent messages, list_action_items for open work, resolve_action_item to close an item
by the index list_action_items reports, and ask for a summarised answer about a channel.`
