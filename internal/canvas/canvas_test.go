package canvas

import (
	"bytes"
	"image/color"
	"testing"
)

func blackPen(width float64) Style {
	return Style{Tool: ToolPen, Width: width, Color: color.Black}
}

func rgbaAt(c *Canvas, x, y int) color.RGBA {
	return c.ReadPixels().RGBAAt(x, y)
}

// One diagonal stroke, then undo and redo, checking the pixel under the
// stroke path.
func TestCanvas_StrokeUndoRedoScenario(t *testing.T) {
	c := New()
	c.Resize(400, 300, 1)

	if c.History().Len() != 1 {
		t.Fatalf("initial blank snapshot missing: len=%d", c.History().Len())
	}

	c.BeginStroke(Point{X: 10, Y: 10}, blackPen(4))
	c.ExtendStroke(Point{X: 100, Y: 100})
	c.EndStroke()

	if c.History().Len() != 2 {
		t.Fatalf("history after one stroke: len=%d", c.History().Len())
	}
	if px := rgbaAt(c, 50, 50); px.R != 0 || px.G != 0 || px.B != 0 {
		t.Fatalf("pixel on stroke path not black: %+v", px)
	}

	if !c.Undo() {
		t.Fatal("undo failed")
	}
	if px := rgbaAt(c, 50, 50); px.R != 255 || px.G != 255 || px.B != 255 {
		t.Fatalf("pixel after undo not background: %+v", px)
	}

	if !c.Redo() {
		t.Fatal("redo failed")
	}
	if px := rgbaAt(c, 50, 50); px.R != 0 {
		t.Fatalf("pixel after redo not stroke color: %+v", px)
	}
}

// Undo immediately followed by redo must restore bit-identical pixel content
// and leave the history pointer where it was.
func TestCanvas_UndoRedoIsLossless(t *testing.T) {
	c := New()
	c.Resize(200, 200, 1)

	c.BeginStroke(Point{X: 20, Y: 30}, blackPen(6))
	c.ExtendStroke(Point{X: 150, Y: 90})
	c.ExtendStroke(Point{X: 60, Y: 170})
	c.EndStroke()

	before := c.ReadPixels()
	index := c.History().Index()

	c.Undo()
	c.Redo()

	after := c.ReadPixels()
	if !bytes.Equal(before.Pix, after.Pix) {
		t.Fatal("undo/redo pair changed pixel content")
	}
	if c.History().Index() != index {
		t.Fatalf("undo/redo pair moved index: %d -> %d", index, c.History().Index())
	}
}

// Draw A, draw B, undo, draw C. The history must hold exactly blank, A, C
// and B's snapshot must be gone.
func TestCanvas_DrawAfterUndoRewritesFuture(t *testing.T) {
	c := New()
	c.Resize(100, 100, 1)

	stroke := func(x float64) {
		c.BeginStroke(Point{X: x, Y: 10}, blackPen(4))
		c.ExtendStroke(Point{X: x, Y: 90})
		c.EndStroke()
	}

	stroke(20) // A
	stroke(50) // B
	idB := c.History().Current().ID
	c.Undo() // back to A
	stroke(80) // C

	if c.History().Len() != 3 {
		t.Fatalf("history length: %d", c.History().Len())
	}
	for _, s := range c.History().Snapshots() {
		if s.ID == idB {
			t.Fatal("stroke B snapshot still reachable")
		}
	}
	// A survives, B is gone, C is current.
	if px := rgbaAt(c, 50, 50); px.R != 255 {
		t.Fatalf("stroke B still painted: %+v", px)
	}
	if px := rgbaAt(c, 20, 50); px.R != 0 {
		t.Fatalf("stroke A lost: %+v", px)
	}
	if px := rgbaAt(c, 80, 50); px.R != 0 {
		t.Fatalf("stroke C missing: %+v", px)
	}
}

// Clear must record the blank state as a restorable history entry, not wipe
// the history.
func TestCanvas_ClearIsUndoable(t *testing.T) {
	c := New()
	c.Resize(100, 100, 1)

	c.BeginStroke(Point{X: 10, Y: 50}, blackPen(8))
	c.ExtendStroke(Point{X: 90, Y: 50})
	c.EndStroke()

	c.Clear()
	if c.History().Len() != 3 {
		t.Fatalf("history after clear: len=%d", c.History().Len())
	}
	if px := rgbaAt(c, 50, 50); px.R != 255 {
		t.Fatalf("canvas not blank after clear: %+v", px)
	}

	if !c.Undo() {
		t.Fatal("undo after clear failed")
	}
	if px := rgbaAt(c, 50, 50); px.R != 0 {
		t.Fatalf("stroke not restored by undo: %+v", px)
	}

	if !c.Redo() {
		t.Fatal("redo back to blank failed")
	}
	if px := rgbaAt(c, 50, 50); px.R != 255 {
		t.Fatalf("blank snapshot not restorable: %+v", px)
	}
}

// With input disabled, no stroke sequence may touch the buffer or history.
func TestCanvas_DisabledFreezesInput(t *testing.T) {
	c := New()
	c.Resize(100, 100, 1)

	before := c.ReadPixels()
	length := c.History().Len()

	c.SetDisabled(true)
	c.BeginStroke(Point{X: 10, Y: 10}, blackPen(4))
	c.ExtendStroke(Point{X: 90, Y: 90})
	c.EndStroke()

	if !bytes.Equal(before.Pix, c.ReadPixels().Pix) {
		t.Fatal("disabled canvas pixels changed")
	}
	if c.History().Len() != length {
		t.Fatalf("disabled canvas history grew: %d -> %d", length, c.History().Len())
	}

	c.SetDisabled(false)
	c.BeginStroke(Point{X: 10, Y: 10}, blackPen(4))
	c.ExtendStroke(Point{X: 90, Y: 90})
	c.EndStroke()
	if c.History().Len() != length+1 {
		t.Fatal("re-enabled canvas did not accept strokes")
	}
}

// A resize while uncommitted drawing exists must carry the live pixels over,
// not fall back to the last snapshot.
func TestCanvas_ResizePreservesLiveContent(t *testing.T) {
	c := New()
	c.Resize(100, 100, 1)

	// Thick horizontal stroke, left open (no EndStroke, so not captured).
	c.BeginStroke(Point{X: 0, Y: 50}, blackPen(10))
	c.ExtendStroke(Point{X: 100, Y: 50})

	c.Resize(200, 100, 1)

	// The stroke's horizontal midpoint moves from x=50 to x=100 under the 2x
	// stretch. Interior of a 10px-thick solid line stays dark through
	// bilinear scaling.
	if px := rgbaAt(c, 100, 50); px.R > 100 {
		t.Fatalf("live content lost on resize: %+v", px)
	}
	// History still holds only the initial blank snapshot.
	if c.History().Len() != 1 {
		t.Fatalf("resize altered history: len=%d", c.History().Len())
	}
}

func TestCanvas_ResizeSameGeometryIsNoop(t *testing.T) {
	c := New()
	c.Resize(120, 80, 2)

	before := c.ReadPixels()
	c.Resize(120, 80, 2)

	if !bytes.Equal(before.Pix, c.ReadPixels().Pix) {
		t.Fatal("redundant resize touched the buffer")
	}
	if c.History().Len() != 1 {
		t.Fatalf("redundant resize touched history: len=%d", c.History().Len())
	}
}

func TestCanvas_DevicePixelRatioScalesBuffer(t *testing.T) {
	c := New()
	c.Resize(100, 100, 2)

	pix := c.ReadPixels()
	if w := pix.Bounds().Dx(); w != 200 {
		t.Fatalf("physical width at dpr 2: %d", w)
	}

	// Logical (50,50) lands at physical (100,100).
	c.BeginStroke(Point{X: 50, Y: 50}, blackPen(6))
	c.EndStroke()
	if px := rgbaAt(c, 100, 100); px.R != 0 {
		t.Fatalf("dpr-scaled dot not painted at physical center: %+v", px)
	}
}

func TestCanvas_TapPaintsDot(t *testing.T) {
	c := New()
	c.Resize(100, 100, 1)

	c.BeginStroke(Point{X: 40, Y: 40}, blackPen(8))
	c.EndStroke()

	if px := rgbaAt(c, 40, 40); px.R != 0 {
		t.Fatalf("tap left no mark: %+v", px)
	}
	if c.History().Len() != 2 {
		t.Fatalf("tap did not capture exactly one snapshot: len=%d", c.History().Len())
	}
}

func TestCanvas_EraserPaintsBackground(t *testing.T) {
	c := New()
	c.Resize(100, 100, 1)

	c.BeginStroke(Point{X: 10, Y: 50}, blackPen(10))
	c.ExtendStroke(Point{X: 90, Y: 50})
	c.EndStroke()

	// Eraser color is ignored; it always paints background.
	c.BeginStroke(Point{X: 10, Y: 50}, Style{Tool: ToolEraser, Width: 20, Color: color.Black})
	c.ExtendStroke(Point{X: 90, Y: 50})
	c.EndStroke()

	if px := rgbaAt(c, 50, 50); px.R != 255 {
		t.Fatalf("eraser did not restore background: %+v", px)
	}
}

func TestCanvas_OpsBeforeResizeAreSilent(t *testing.T) {
	c := New()

	// No surface yet: everything degrades to a no-op.
	c.BeginStroke(Point{X: 1, Y: 1}, blackPen(4))
	c.ExtendStroke(Point{X: 2, Y: 2})
	c.EndStroke()
	c.Clear()
	if c.Undo() || c.Redo() || c.JumpTo(0) {
		t.Fatal("history ops succeeded with no surface")
	}

	img, err := c.CurrentImage()
	if err != nil {
		t.Fatalf("empty export errored: %v", err)
	}
	if img != nil {
		t.Fatal("empty export should return the nil sentinel")
	}
}

func TestCanvas_JumpToRestoresSnapshot(t *testing.T) {
	c := New()
	c.Resize(100, 100, 1)

	c.BeginStroke(Point{X: 30, Y: 30}, blackPen(6))
	c.EndStroke()
	c.BeginStroke(Point{X: 70, Y: 70}, blackPen(6))
	c.EndStroke()

	if !c.JumpTo(0) {
		t.Fatal("jump to blank snapshot failed")
	}
	if px := rgbaAt(c, 30, 30); px.R != 255 {
		t.Fatalf("blank snapshot not restored: %+v", px)
	}
	if c.History().Len() != 3 {
		t.Fatalf("jump truncated history: len=%d", c.History().Len())
	}

	if !c.JumpTo(2) {
		t.Fatal("jump to tail failed")
	}
	if px := rgbaAt(c, 70, 70); px.R != 0 {
		t.Fatalf("tail snapshot not restored: %+v", px)
	}
}
