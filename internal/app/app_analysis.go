package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"inkwell/internal/docpipe"
	"inkwell/internal/domain"
	"inkwell/internal/export"
	"inkwell/internal/service"
)

// ============================================================
// Analysis and chat bindings
// ============================================================

// AnalyzeCurrentImage sends the canvas content to the model. The request
// runs in the background; drawing is frozen until it settles and the result
// arrives as an analysis:completed event.
func (a *App) AnalyzeCurrentImage() error {
	a.canvasMu.Lock()
	png, err := a.canvas.CurrentImage()
	a.canvasMu.Unlock()
	if err != nil {
		return fmt.Errorf("encode canvas: %w", err)
	}
	if png == nil {
		return fmt.Errorf("nothing to analyze: the canvas is empty")
	}

	a.runAnalysis(png, "image/png", domain.SourceCanvas)
	return nil
}

// AnalyzeSource sends the pending loaded image (file, camera, or PDF page)
// to the model.
func (a *App) AnalyzeSource(source string) error {
	a.sourceMu.Lock()
	data, mediaType := a.sourceData, a.sourceMediaType
	a.sourceMu.Unlock()
	if len(data) == 0 {
		return fmt.Errorf("no source image loaded")
	}

	src := domain.AnalysisSource(source)
	switch src {
	case domain.SourceUpload, domain.SourceCamera, domain.SourcePDF:
	default:
		src = domain.SourceUpload
	}

	a.runAnalysis(data, mediaType, src)
	return nil
}

// runAnalysis freezes the canvas, runs the model call on a goroutine, and
// reports the outcome through events. Stale results (superseded by a newer
// submission) are dropped without an error event. Overlapping submissions
// each hold the freeze; input is re-enabled only when the last outstanding
// call settles, so a stale response finishing early cannot unfreeze the
// canvas under a newer in-flight call.
func (a *App) runAnalysis(image []byte, mediaType string, source domain.AnalysisSource) {
	a.canvasMu.Lock()
	a.analysesInFlight++
	a.canvas.SetDisabled(true)
	a.canvasMu.Unlock()

	a.Emit(a.ctx, "analysis:started", string(source))

	go func() {
		defer func() {
			a.canvasMu.Lock()
			a.analysesInFlight--
			if a.analysesInFlight == 0 {
				a.canvas.SetDisabled(false)
			}
			a.canvasMu.Unlock()
		}()

		ctx := a.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		_, err := a.analysisSvc.Analyze(ctx, image, mediaType, source)
		if errors.Is(err, service.ErrStale) {
			return
		}
		if err != nil {
			if a.ctx != nil {
				wailsRuntime.LogErrorf(a.ctx, "Analysis failed: %v", err)
			}
			a.Emit(a.ctx, "analysis:failed", err.Error())
		}
		// Success is announced by the service's analysis:completed event.
	}()
}

// LoadSourceImage accepts an image from the frontend (camera capture or
// drag-and-drop) as a data URL and stages it for analysis.
func (a *App) LoadSourceImage(dataURL string) error {
	data, mediaType, err := docpipe.ParseDataURL(dataURL)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return fmt.Errorf("unsupported media type %q", mediaType)
	}

	a.sourceMu.Lock()
	a.sourceData = data
	a.sourceMediaType = mediaType
	a.sourcePath = ""
	a.sourceMu.Unlock()
	return nil
}

// PickSourceFile opens a file dialog, stages the chosen image or PDF page,
// and returns a data URL for the preview. Picked files are watched so
// external edits refresh the pending source.
func (a *App) PickSourceFile() (string, error) {
	path, err := wailsRuntime.OpenFileDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title: "Choose handwriting image or scan",
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "Images and PDFs", Pattern: "*.png;*.jpg;*.jpeg;*.webp;*.gif;*.pdf"},
		},
	})
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", nil // user cancelled
	}
	return a.LoadSourceFile(path)
}

// LoadSourceFile stages a file from disk. PDFs contribute their first
// embedded page image.
func (a *App) LoadSourceFile(path string) (string, error) {
	var data []byte
	var mediaType string
	var err error

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		data, mediaType, err = docpipe.FirstPageImage(path)
	} else {
		data, err = os.ReadFile(path)
		mediaType = docpipe.MediaTypeForPath(path)
	}
	if err != nil {
		return "", err
	}

	a.sourceMu.Lock()
	a.sourceData = data
	a.sourceMediaType = mediaType
	a.sourcePath = path
	a.sourceMu.Unlock()

	if a.watcher != nil {
		if err := a.watcher.Watch(path, path); err != nil {
			wailsRuntime.LogErrorf(a.ctx, "Failed to watch %s: %v", path, err)
		}
	}
	return docpipe.BuildDataURL(mediaType, data), nil
}

// LoadPDF stages the first page image of a PDF scan for analysis and
// returns a data URL for the preview.
func (a *App) LoadPDF(path string) (string, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return "", fmt.Errorf("%s is not a PDF", path)
	}
	return a.LoadSourceFile(path)
}

// SendChatMessage asks a follow-up question about an analysis and returns
// the assistant's reply.
func (a *App) SendChatMessage(analysisID, content string) (*domain.ChatMessage, error) {
	return a.chatSvc.SendMessage(a.ctx, analysisID, content)
}

// ListChatMessages returns the stored conversation for an analysis.
func (a *App) ListChatMessages(analysisID string) ([]domain.ChatMessage, error) {
	return a.chatSvc.ListMessages(analysisID)
}

// ListAnalyses returns stored analyses, newest first.
func (a *App) ListAnalyses() ([]domain.Analysis, error) {
	return a.analyses.ListAnalyses()
}

// GetAnalysis returns one stored analysis.
func (a *App) GetAnalysis(analysisID string) (*domain.Analysis, error) {
	return a.analyses.GetAnalysis(analysisID)
}

// DeleteAnalysis removes an analysis and its chat thread.
func (a *App) DeleteAnalysis(analysisID string) error {
	return a.analyses.DeleteAnalysis(analysisID)
}

// GetSourceImage returns the pending source as a data URL, or "" when
// nothing is staged.
func (a *App) GetSourceImage() string {
	a.sourceMu.Lock()
	defer a.sourceMu.Unlock()
	if len(a.sourceData) == 0 {
		return ""
	}
	return docpipe.BuildDataURL(a.sourceMediaType, a.sourceData)
}

// ExportAnalyses pushes all stored analyses to an external database.
// Driver is one of mysql, postgres, mongodb.
func (a *App) ExportAnalyses(driver, dsn string) (int, error) {
	analyses, err := a.analyses.ListAnalyses()
	if err != nil {
		return 0, err
	}
	return export.Export(a.ctx, driver, dsn, analyses)
}
