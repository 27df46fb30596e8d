package canvas

// pen tracks the stroke currently in progress. The surface is
// single-pointer: the input layer collapses multi-touch to the first touch
// point before events reach the canvas.
type pen struct {
	active bool
	last   Point
	style  Style
}

// BeginStroke starts a new stroke at p, capturing style for the whole
// stroke. No-op while disabled, before the surface exists, or when a stroke
// is already active.
func (c *Canvas) BeginStroke(p Point, style Style) {
	if c.disabled || !c.surface.Ready() || c.pen.active {
		return
	}
	c.pen = pen{active: true, last: p, style: style}
	c.surface.ApplyStrokeSegment(p, p, style)
}

// ExtendStroke applies a segment from the last recorded point to p. The
// segment is drawn synchronously so the rendered line never lags the
// pointer.
func (c *Canvas) ExtendStroke(p Point) {
	if c.disabled || !c.pen.active {
		return
	}
	c.surface.ApplyStrokeSegment(c.pen.last, p, c.pen.style)
	c.pen.last = p
}

// EndStroke finalizes the active stroke and captures exactly one history
// snapshot for it. No-op when no stroke is active.
func (c *Canvas) EndStroke() {
	if c.disabled || !c.pen.active {
		return
	}
	c.pen = pen{}
	c.history.Capture(c.surface.ReadPixels())
}
