package app

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"inkwell/internal/canvas"
	"inkwell/internal/llm"
	mcpserver "inkwell/internal/mcp"
	"inkwell/internal/service"
	"inkwell/internal/storage"
)

// noopEmitter is a no-op EventEmitter used in MCP-only mode (no Wails frontend).
type noopEmitter struct{}

func (noopEmitter) Emit(_ context.Context, _ string, _ any) {}

// ServeMCP runs the app as a standalone MCP server on stdin/stdout with no GUI.
// It initializes storage, services, and runs the MCP server until interrupted.
func ServeMCP() {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".local", "share", "inkwell")
	dbPath := filepath.Join(dataDir, "inkwell.db")

	db, err := storage.New(dbPath, dataDir)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	analysesStore := storage.NewAnalysisStore(db)
	chatStore := storage.NewChatStore(db)

	emitter := noopEmitter{}
	client := llm.NewAnthropicClient(os.Getenv("ANTHROPIC_API_KEY"), os.Getenv("INKWELL_MODEL"))

	analysisSvc := service.NewAnalysisService(analysesStore, client, dataDir, emitter)
	chatSvc := service.NewChatService(analysesStore, chatStore, client, emitter)

	// Headless canvas for agent drawing sessions. Sized up front since no
	// frontend will ever send a resize.
	a := &App{canvas: canvas.New()}
	a.canvas.Resize(1024, 768, 1.0)

	mcpSrv := mcpserver.New(mcpserver.Deps{
		Emitter:  emitter,
		Canvas:   lockedCanvas{app: a},
		Analyses: analysisSvc,
		Chat:     chatSvc,
		Store:    analysesStore,
	})

	log.Println("[MCP] Starting standalone stdio server...")
	if err := mcpSrv.ServeStdio(); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
