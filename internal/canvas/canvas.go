package canvas

import (
	"image"
	"image/color"
	"math"
)

// Canvas is the drawing surface and snapshot history engine behind the
// toolbar and pointer events. It composes the raster surface, the stroke
// input adapter, and the history manager behind a narrow command interface
// the owning page controller invokes. All operations are synchronous and
// driven from a single goroutine; none of them block.
type Canvas struct {
	surface  *Surface
	history  *History
	pen      pen
	style    Style
	disabled bool
}

func New() *Canvas {
	return &Canvas{
		surface: &Surface{},
		history: NewHistory(),
		style:   Style{Tool: ToolPen, Width: 4, Color: color.Black},
	}
}

// Resize reconciles the backing buffer with a new container geometry,
// including device-pixel-ratio changes. Live pixel content wins over the
// history snapshot so a resize arriving mid-stroke does not discard drawing
// that has not been captured yet. The first successful resize records the
// initial blank snapshot.
func (c *Canvas) Resize(w, h int, dpr float64) {
	pw := int(math.Round(float64(w) * dpr))
	ph := int(math.Round(float64(h) * dpr))
	if pw <= 0 || ph <= 0 {
		return
	}
	if cw, ch := c.surface.PhysicalSize(); cw == pw && ch == ph {
		return
	}

	live := c.surface.ReadPixels()
	c.surface.Initialize(w, h, dpr)
	if !c.surface.Ready() {
		return
	}

	switch {
	case live != nil:
		c.surface.WritePixels(live)
	case c.history.Len() > 0:
		if snap := c.history.Current(); snap != nil {
			c.surface.WritePixels(snap.Pixels)
		}
	}
	if c.history.Len() == 0 {
		c.history.Capture(c.surface.ReadPixels())
	}
}

// SetStyle replaces the configured tool, width, and color used for future
// strokes. A stroke already in progress keeps the style it started with.
func (c *Canvas) SetStyle(style Style) { c.style = style }

// Style returns the currently configured stroke style.
func (c *Canvas) Style() Style { return c.style }

// SetDisabled freezes or unfreezes stroke input. The page controller sets
// this while a remote analysis call is outstanding so the submitted image
// cannot change underneath it. Disabling drops any stroke in progress.
func (c *Canvas) SetDisabled(disabled bool) {
	c.disabled = disabled
	if disabled {
		c.pen = pen{}
	}
}

// Disabled reports whether stroke input is currently frozen.
func (c *Canvas) Disabled() bool { return c.disabled }

// Ready reports whether the surface has an allocated buffer.
func (c *Canvas) Ready() bool { return c.surface.Ready() }

// Undo steps the history pointer back one snapshot and repaints the buffer
// from it. Returns false when already at the oldest entry.
func (c *Canvas) Undo() bool {
	snap := c.history.Undo()
	if snap == nil {
		return false
	}
	c.surface.WritePixels(snap.Pixels)
	return true
}

// Redo steps the history pointer forward one snapshot and repaints. Returns
// false when already at the tail.
func (c *Canvas) Redo() bool {
	snap := c.history.Redo()
	if snap == nil {
		return false
	}
	c.surface.WritePixels(snap.Pixels)
	return true
}

// JumpTo repaints the buffer from an explicit snapshot index without
// truncating the sequence. Returns false for an out-of-range index.
func (c *Canvas) JumpTo(index int) bool {
	snap := c.history.JumpTo(index)
	if snap == nil {
		return false
	}
	c.surface.WritePixels(snap.Pixels)
	return true
}

// Clear fills the buffer with the background color and records the blank
// state as a new, restorable history entry. The history list itself is never
// cleared.
func (c *Canvas) Clear() {
	if !c.surface.Ready() {
		return
	}
	w, h, dpr := c.surface.LogicalSize()
	c.surface.Initialize(w, h, dpr)
	c.history.Capture(c.surface.ReadPixels())
}

// CurrentImage returns the current pixel content encoded as PNG. Returns nil
// bytes and no error when nothing has been drawn yet.
func (c *Canvas) CurrentImage() ([]byte, error) {
	return c.surface.EncodePNG()
}

// ReadPixels exposes a copy of the buffer for verification and previews.
func (c *Canvas) ReadPixels() *image.RGBA {
	return c.surface.ReadPixels()
}

// History returns the snapshot history for inspection (length, pointer,
// thumbnails). Mutations go through the Canvas command methods.
func (c *Canvas) History() *History { return c.history }
