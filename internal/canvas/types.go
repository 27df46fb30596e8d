package canvas

import "image/color"

// Tool selects how strokes paint onto the surface.
type Tool string

const (
	ToolPen    Tool = "pen"
	ToolEraser Tool = "eraser"
)

// Point is a logical coordinate relative to the surface's top-left origin.
// The input layer normalizes mouse and touch events to this type before they
// reach the canvas; multi-touch collapses to the first touch point.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Style is the drawing configuration for one stroke. It is captured once at
// stroke start so a mid-stroke tool change cannot affect segments already
// being applied. Color is ignored by the eraser, which always paints the
// background color.
type Style struct {
	Tool  Tool
	Width float64 // logical pixels
	Color color.Color
}
