package app

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"inkwell/internal/canvas"
	"inkwell/internal/docpipe"
	"inkwell/internal/llm"
	"inkwell/internal/service"
	"inkwell/internal/storage"
)

// gatedClient blocks each completion until the test releases it.
type gatedClient struct {
	started chan int
	release []chan struct{}

	mu    sync.Mutex
	calls int
}

func newGatedClient(n int) *gatedClient {
	c := &gatedClient{started: make(chan int, n)}
	for i := 0; i < n; i++ {
		c.release = append(c.release, make(chan struct{}))
	}
	return c
}

func (c *gatedClient) Complete(ctx context.Context, system string, messages []llm.Message, opts *llm.RequestOptions) (*llm.Response, error) {
	c.mu.Lock()
	n := c.calls
	c.calls++
	c.mu.Unlock()

	c.started <- n
	<-c.release[n]
	return &llm.Response{Content: `{"transcription": "hello", "language": "en"}`, Model: "test-model"}, nil
}

func (c *gatedClient) CompleteWithRetry(ctx context.Context, system string, messages []llm.Message, maxRetries int, opts *llm.RequestOptions) (*llm.Response, error) {
	return c.Complete(ctx, system, messages, opts)
}

func newTestApp(t *testing.T, client llm.Client) *App {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "test.db"), dir)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	a := &App{canvas: canvas.New(), dataDir: dir, db: db}
	a.analyses = storage.NewAnalysisStore(db)
	a.chats = storage.NewChatStore(db)
	a.analysisSvc = service.NewAnalysisService(a.analyses, client, dir, a)
	a.chatSvc = service.NewChatService(a.analyses, a.chats, client, a)
	a.CanvasResized(64, 64, 1)
	return a
}

func waitStarted(t *testing.T, c *gatedClient) {
	t.Helper()
	select {
	case <-c.started:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the model call to start")
	}
}

func waitInFlight(t *testing.T, a *App, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		a.canvasMu.Lock()
		n := a.analysesInFlight
		a.canvasMu.Unlock()
		if n == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d analyses in flight", want)
}

func (a *App) canvasDisabled() bool {
	a.canvasMu.Lock()
	defer a.canvasMu.Unlock()
	return a.canvas.Disabled()
}

func (a *App) historyLen() int {
	a.canvasMu.Lock()
	defer a.canvasMu.Unlock()
	return a.canvas.History().Len()
}

// With two overlapping submissions, the first one's response coming back
// stale must not unfreeze the canvas while the second is still in flight.
func TestOverlappingAnalysesKeepCanvasFrozen(t *testing.T) {
	client := newGatedClient(2)
	a := newTestApp(t, client)

	if err := a.AnalyzeCurrentImage(); err != nil {
		t.Fatalf("first submission failed: %v", err)
	}
	waitStarted(t, client)

	if err := a.LoadSourceImage(docpipe.BuildDataURL("image/png", []byte("fake-png"))); err != nil {
		t.Fatal(err)
	}
	if err := a.AnalyzeSource("upload"); err != nil {
		t.Fatalf("second submission failed: %v", err)
	}
	waitStarted(t, client)

	if !a.canvasDisabled() {
		t.Fatal("canvas should be frozen with analyses in flight")
	}

	// Let the first, now superseded, call settle. The second is still
	// outstanding, so the canvas must stay frozen.
	close(client.release[0])
	waitInFlight(t, a, 1)
	if !a.canvasDisabled() {
		t.Fatal("stale response unfroze the canvas under an in-flight analysis")
	}

	before := a.historyLen()
	a.BeginStroke(5, 5)
	a.ExtendStroke(20, 20)
	a.EndStroke()
	if got := a.historyLen(); got != before {
		t.Fatalf("frozen canvas captured a stroke: history %d -> %d", before, got)
	}

	close(client.release[1])
	waitInFlight(t, a, 0)
	if a.canvasDisabled() {
		t.Fatal("canvas still frozen after all analyses settled")
	}
}
