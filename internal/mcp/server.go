package mcpserver

import (
	"context"
	"log"

	"github.com/mark3labs/mcp-go/server"

	"inkwell/internal/canvas"
	"inkwell/internal/service"
	"inkwell/internal/storage"
)

// EventEmitter mirrors the service-layer emitter so the MCP server can
// notify the frontend without importing the app package.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// CanvasCommands is the slice of canvas behavior the MCP tools need.
// The app layer implements it with its mutex held so tool calls and UI
// strokes serialize on the same surface.
type CanvasCommands interface {
	CurrentImage() ([]byte, error)
	Undo() bool
	Redo() bool
	Clear() bool
	Snapshots() []canvas.Snapshot
}

// Server exposes the drawing surface and analysis history to AI agents
// over MCP stdio.
type Server struct {
	mcp     *server.MCPServer
	emitter EventEmitter

	canvas   CanvasCommands
	analyses *service.AnalysisService
	chat     *service.ChatService
	store    *storage.AnalysisStore
}

// Deps holds all dependencies passed from the App layer to the MCP server.
type Deps struct {
	Emitter  EventEmitter
	Canvas   CanvasCommands
	Analyses *service.AnalysisService
	Chat     *service.ChatService
	Store    *storage.AnalysisStore
}

// New creates and configures a new MCP server with all tools.
func New(deps Deps) *Server {
	s := &Server{
		emitter:  deps.Emitter,
		canvas:   deps.Canvas,
		analyses: deps.Analyses,
		chat:     deps.Chat,
		store:    deps.Store,
	}

	s.mcp = server.NewMCPServer(
		"inkwell-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerCanvasTools()
	s.registerAnalysisTools()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// emitCanvasChanged notifies the frontend that an agent mutated the canvas.
func (s *Server) emitCanvasChanged(ctx context.Context) {
	s.emitter.Emit(ctx, "mcp:canvas-changed", nil)
}
