package canvas

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
)

// Background is the fixed blank color of the drawing surface. The eraser
// paints with it, and Clear fills the whole buffer with it.
var Background = color.White

// Surface owns the physical pixel buffer. It is the only component that
// touches raw pixel memory; everything else goes through ReadPixels and
// WritePixels. Drawing operations take logical coordinates and the device
// pixel ratio is applied internally.
type Surface struct {
	dc  *gg.Context
	img *image.RGBA

	logicalW int
	logicalH int
	dpr      float64
}

// Initialize (re)allocates the backing buffer at w*dpr x h*dpr physical
// pixels and fills it with the background color. A non-positive target size
// is a silent no-op: initialization can be triggered during transient layout
// states before the container has been measured.
func (s *Surface) Initialize(w, h int, dpr float64) {
	pw := int(math.Round(float64(w) * dpr))
	ph := int(math.Round(float64(h) * dpr))
	if pw <= 0 || ph <= 0 {
		return
	}

	img := image.NewRGBA(image.Rect(0, 0, pw, ph))
	dc := gg.NewContextForRGBA(img)
	dc.SetColor(Background)
	dc.Clear()
	// All subsequent drawing happens in logical coordinates.
	dc.Scale(dpr, dpr)

	s.img = img
	s.dc = dc
	s.logicalW, s.logicalH = w, h
	s.dpr = dpr
}

// Ready reports whether a drawing buffer has been allocated.
func (s *Surface) Ready() bool { return s.dc != nil }

// LogicalSize returns the logical dimensions and device pixel ratio the
// surface was last initialized with.
func (s *Surface) LogicalSize() (w, h int, dpr float64) {
	return s.logicalW, s.logicalH, s.dpr
}

// PhysicalSize returns the buffer dimensions in physical pixels, or (0, 0)
// when no buffer exists.
func (s *Surface) PhysicalSize() (int, int) {
	if s.img == nil {
		return 0, 0
	}
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// ApplyStrokeSegment draws a rounded-cap, rounded-join line segment between
// two logical points. A zero-length segment paints a round dot so a tap
// leaves a mark. Repeating an identical call is idempotent: the pixel buffer
// is the only state touched.
func (s *Surface) ApplyStrokeSegment(from, to Point, style Style) {
	if s.dc == nil {
		return
	}
	if style.Tool == ToolEraser {
		s.dc.SetColor(Background)
	} else {
		s.dc.SetColor(style.Color)
	}
	if from == to {
		s.dc.DrawCircle(from.X, from.Y, style.Width/2)
		s.dc.Fill()
		return
	}
	s.dc.SetLineCapRound()
	s.dc.SetLineJoinRound()
	s.dc.SetLineWidth(style.Width)
	s.dc.MoveTo(from.X, from.Y)
	s.dc.LineTo(to.X, to.Y)
	s.dc.Stroke()
}

// ReadPixels returns an independent copy of the current buffer, or nil when
// the surface has never been initialized.
func (s *Surface) ReadPixels() *image.RGBA {
	if s.img == nil {
		return nil
	}
	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out
}

// WritePixels replaces the buffer contents with src. A source of matching
// dimensions is copied exactly; otherwise it is stretched to fit. Resizes
// accept pixel distortion instead of replaying strokes, so restoring across
// a size change is lossy on purpose.
func (s *Surface) WritePixels(src *image.RGBA) {
	if s.img == nil || src == nil {
		return
	}
	if src.Bounds().Eq(s.img.Bounds()) {
		draw.Draw(s.img, s.img.Bounds(), src, src.Bounds().Min, draw.Src)
		return
	}
	xdraw.BiLinear.Scale(s.img, s.img.Bounds(), src, src.Bounds(), xdraw.Src, nil)
}

// EncodePNG serializes the current buffer losslessly. It returns nil bytes
// and no error when the surface has never been initialized, so callers can
// tell "nothing drawn yet" apart from an encoding failure.
func (s *Surface) EncodePNG() ([]byte, error) {
	if s.img == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
