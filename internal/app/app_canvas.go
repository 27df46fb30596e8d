package app

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"inkwell/internal/canvas"
	"inkwell/internal/docpipe"
)

// ============================================================
// Drawing surface bindings
// ============================================================

// SnapshotInfo is the frontend view of one history entry.
type SnapshotInfo struct {
	ID        uint64 `json:"id"`
	Index     int    `json:"index"`
	Current   bool   `json:"current"`
	Thumbnail string `json:"thumbnail"`
	TakenAt   string `json:"takenAt"`
}

// CanvasResized reconciles the surface with the element's new CSS size and
// device pixel ratio, then returns the frame to paint.
func (a *App) CanvasResized(width, height int, dpr float64) string {
	a.canvasMu.Lock()
	defer a.canvasMu.Unlock()
	a.canvas.Resize(width, height, dpr)
	return a.frameDataURL()
}

// BeginStroke starts a stroke at a logical coordinate and returns the frame
// with the initial dot painted.
func (a *App) BeginStroke(x, y float64) string {
	a.canvasMu.Lock()
	defer a.canvasMu.Unlock()
	a.canvas.BeginStroke(canvas.Point{X: x, Y: y}, a.canvas.Style())
	return a.frameDataURL()
}

// ExtendStroke draws the next stroke segment and returns the updated frame.
// Painting is synchronous so the frontend never shows a stale frame.
func (a *App) ExtendStroke(x, y float64) string {
	a.canvasMu.Lock()
	defer a.canvasMu.Unlock()
	a.canvas.ExtendStroke(canvas.Point{X: x, Y: y})
	return a.frameDataURL()
}

// EndStroke finishes the stroke and commits a history snapshot.
func (a *App) EndStroke() {
	a.canvasMu.Lock()
	a.canvas.EndStroke()
	a.canvasMu.Unlock()
	a.emitHistoryChanged()
}

// Undo steps back one snapshot. Returns false at the oldest entry.
func (a *App) Undo() bool {
	a.canvasMu.Lock()
	ok := a.canvas.Undo()
	frame := a.frameDataURL()
	a.canvasMu.Unlock()
	if ok {
		a.Emit(a.ctx, "canvas:frame", frame)
		a.emitHistoryChanged()
	}
	return ok
}

// Redo steps forward one snapshot. Returns false at the tail.
func (a *App) Redo() bool {
	a.canvasMu.Lock()
	ok := a.canvas.Redo()
	frame := a.frameDataURL()
	a.canvasMu.Unlock()
	if ok {
		a.Emit(a.ctx, "canvas:frame", frame)
		a.emitHistoryChanged()
	}
	return ok
}

// JumpToSnapshot repaints the surface from a history index without
// truncating the sequence.
func (a *App) JumpToSnapshot(index int) bool {
	a.canvasMu.Lock()
	ok := a.canvas.JumpTo(index)
	frame := a.frameDataURL()
	a.canvasMu.Unlock()
	if ok {
		a.Emit(a.ctx, "canvas:frame", frame)
		a.emitHistoryChanged()
	}
	return ok
}

// ClearCanvas blanks the surface as a new undoable history entry.
func (a *App) ClearCanvas() string {
	a.canvasMu.Lock()
	a.canvas.Clear()
	frame := a.frameDataURL()
	a.canvasMu.Unlock()
	a.emitHistoryChanged()
	return frame
}

// SaveCanvasImage writes the current canvas PNG to a user-chosen path and
// returns it. Returns "" when the canvas is empty or the dialog is
// cancelled. The default location is the data directory's exports folder,
// which the janitor sweeps after a week.
func (a *App) SaveCanvasImage() (string, error) {
	a.canvasMu.Lock()
	png, err := a.canvas.CurrentImage()
	a.canvasMu.Unlock()
	if err != nil {
		return "", fmt.Errorf("encode canvas: %w", err)
	}
	if png == nil {
		return "", nil
	}

	exportsDir := filepath.Join(a.dataDir, "exports")
	if err := os.MkdirAll(exportsDir, 0755); err != nil {
		return "", fmt.Errorf("create exports dir: %w", err)
	}

	path, err := wailsRuntime.SaveFileDialog(a.ctx, wailsRuntime.SaveDialogOptions{
		Title:            "Save drawing",
		DefaultDirectory: exportsDir,
		DefaultFilename:  "inkwell-" + time.Now().Format("20060102-150405") + ".png",
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "PNG image", Pattern: "*.png"},
		},
	})
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", nil // user cancelled
	}
	if err := os.WriteFile(path, png, 0644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return path, nil
}

// emitHistoryChanged pushes the refreshed snapshot strip to the frontend.
func (a *App) emitHistoryChanged() {
	a.Emit(a.ctx, "canvas:history", a.GetSnapshotThumbnails())
}

// GetCanvasFrame returns the current surface as a PNG data URL, or "" when
// the surface has not been sized yet.
func (a *App) GetCanvasFrame() string {
	a.canvasMu.Lock()
	defer a.canvasMu.Unlock()
	return a.frameDataURL()
}

// GetCurrentImage is the export binding: same PNG as GetCanvasFrame, kept
// as a separate name so the frontend's save flow reads naturally.
func (a *App) GetCurrentImage() string {
	return a.GetCanvasFrame()
}

// GetSnapshotThumbnails returns the history strip for the timeline UI.
func (a *App) GetSnapshotThumbnails() []SnapshotInfo {
	a.canvasMu.Lock()
	defer a.canvasMu.Unlock()

	history := a.canvas.History()
	snaps := history.Snapshots()
	infos := make([]SnapshotInfo, 0, len(snaps))
	for i, snap := range snaps {
		infos = append(infos, SnapshotInfo{
			ID:        snap.ID,
			Index:     i,
			Current:   i == history.Index(),
			Thumbnail: docpipe.BuildDataURL("image/jpeg", snap.Thumbnail),
			TakenAt:   snap.TakenAt.Format(time.RFC3339),
		})
	}
	return infos
}

// SetTool switches between pen and eraser.
func (a *App) SetTool(tool string) error {
	switch canvas.Tool(tool) {
	case canvas.ToolPen, canvas.ToolEraser:
	default:
		return fmt.Errorf("unknown tool %q", tool)
	}

	a.canvasMu.Lock()
	defer a.canvasMu.Unlock()
	style := a.canvas.Style()
	style.Tool = canvas.Tool(tool)
	a.canvas.SetStyle(style)
	return nil
}

// SetBrushWidth sets the stroke width in logical pixels.
func (a *App) SetBrushWidth(width float64) error {
	if width <= 0 {
		return fmt.Errorf("brush width must be positive")
	}

	a.canvasMu.Lock()
	defer a.canvasMu.Unlock()
	style := a.canvas.Style()
	style.Width = width
	a.canvas.SetStyle(style)
	return nil
}

// SetStrokeColor sets the pen color from a hex string like "#1a2b3c".
func (a *App) SetStrokeColor(hex string) error {
	c, err := parseHexColor(hex)
	if err != nil {
		return err
	}

	a.canvasMu.Lock()
	defer a.canvasMu.Unlock()
	style := a.canvas.Style()
	style.Color = c
	a.canvas.SetStyle(style)
	return nil
}

// frameDataURL encodes the surface as a PNG data URL. Callers hold canvasMu.
func (a *App) frameDataURL() string {
	png, err := a.canvas.CurrentImage()
	if err != nil {
		wailsRuntime.LogErrorf(a.ctx, "Failed to encode canvas frame: %v", err)
		return ""
	}
	if png == nil {
		return ""
	}
	return docpipe.BuildDataURL("image/png", png)
}

func parseHexColor(s string) (color.Color, error) {
	var r, g, b uint8
	switch len(s) {
	case 7:
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
			return nil, fmt.Errorf("invalid color %q", s)
		}
	case 4:
		if _, err := fmt.Sscanf(s, "#%1x%1x%1x", &r, &g, &b); err != nil {
			return nil, fmt.Errorf("invalid color %q", s)
		}
		r *= 17
		g *= 17
		b *= 17
	default:
		return nil, fmt.Errorf("invalid color %q", s)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// lockedCanvas adapts the App's mutex-guarded canvas to the command
// surface the MCP server works against.
type lockedCanvas struct {
	app *App
}

func (lc lockedCanvas) CurrentImage() ([]byte, error) {
	lc.app.canvasMu.Lock()
	defer lc.app.canvasMu.Unlock()
	return lc.app.canvas.CurrentImage()
}

func (lc lockedCanvas) Undo() bool {
	lc.app.canvasMu.Lock()
	defer lc.app.canvasMu.Unlock()
	return lc.app.canvas.Undo()
}

func (lc lockedCanvas) Redo() bool {
	lc.app.canvasMu.Lock()
	defer lc.app.canvasMu.Unlock()
	return lc.app.canvas.Redo()
}

func (lc lockedCanvas) Clear() bool {
	lc.app.canvasMu.Lock()
	defer lc.app.canvasMu.Unlock()
	if !lc.app.canvas.Ready() {
		return false
	}
	lc.app.canvas.Clear()
	return true
}

func (lc lockedCanvas) Snapshots() []canvas.Snapshot {
	lc.app.canvasMu.Lock()
	defer lc.app.canvasMu.Unlock()
	return lc.app.canvas.History().Snapshots()
}
