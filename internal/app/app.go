package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"inkwell/internal/canvas"
	"inkwell/internal/docpipe"
	"inkwell/internal/llm"
	"inkwell/internal/service"
	"inkwell/internal/storage"
	"inkwell/internal/watch"
)

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx context.Context

	db       *storage.DB
	analyses *storage.AnalysisStore
	chats    *storage.ChatStore

	// The drawing surface. Wails bindings and MCP tool calls can arrive
	// on different goroutines, so every access goes through canvasMu.
	canvas   *canvas.Canvas
	canvasMu sync.Mutex

	// Number of analysis calls outstanding. Guarded by canvasMu; the
	// canvas stays disabled until this drops back to zero.
	analysesInFlight int

	analysisSvc *service.AnalysisService
	chatSvc     *service.ChatService
	janitor     *service.Janitor
	watcher     *watch.Watcher

	dataDir string

	// Pending source image loaded from a file, camera, or PDF, waiting
	// for the user to hit analyze.
	sourceMu        sync.Mutex
	sourceData      []byte
	sourceMediaType string
	sourcePath      string
}

// New creates a new App.
func New() *App {
	return &App{canvas: canvas.New()}
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	homeDir, _ := os.UserHomeDir()
	a.dataDir = filepath.Join(homeDir, ".local", "share", "inkwell")
	dbPath := filepath.Join(a.dataDir, "inkwell.db")

	db, err := storage.New(dbPath, a.dataDir)
	if err != nil {
		wailsRuntime.LogFatalf(ctx, "Failed to open database: %v", err)
		return
	}

	a.db = db
	a.analyses = storage.NewAnalysisStore(db)
	a.chats = storage.NewChatStore(db)

	client := llm.NewAnthropicClient(os.Getenv("ANTHROPIC_API_KEY"), os.Getenv("INKWELL_MODEL"))
	a.analysisSvc = service.NewAnalysisService(a.analyses, client, a.dataDir, a)
	a.chatSvc = service.NewChatService(a.analyses, a.chats, client, a)

	// File watcher: saving over a loaded source image in an external
	// editor refreshes the pending source and the preview.
	watcher, err := watch.New(func(token string, data []byte) {
		a.sourceMu.Lock()
		if a.sourcePath == token {
			a.sourceData = data
			a.sourceMediaType = docpipe.MediaTypeForPath(token)
		}
		path, mediaType := a.sourcePath, a.sourceMediaType
		a.sourceMu.Unlock()

		if path == token {
			wailsRuntime.EventsEmit(ctx, "source:updated", docpipe.BuildDataURL(mediaType, data))
		}
	})
	if err != nil {
		wailsRuntime.LogErrorf(ctx, "Failed to create file watcher: %v", err)
	}
	a.watcher = watcher

	a.janitor = service.NewJanitor(a.analyses, a.dataDir)
	a.janitor.Start()
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	if a.janitor != nil {
		a.janitor.Stop()
	}
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// Emit implements service.EventEmitter by forwarding to the Wails runtime.
func (a *App) Emit(ctx context.Context, event string, data any) {
	if a.ctx != nil {
		wailsRuntime.EventsEmit(a.ctx, event, data)
	}
}
