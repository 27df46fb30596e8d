package canvas

import (
	"bytes"
	"image"
	"image/jpeg"
	"time"

	xdraw "golang.org/x/image/draw"
)

const (
	thumbnailWidth   = 96
	thumbnailQuality = 30
)

// Snapshot is an immutable capture of the pixel buffer at one point in time.
// Pixels is owned by the snapshot and never mutated after capture. Thumbnail
// is a low-quality JPEG preview for UI lists only; restoration always uses
// the full pixel copy.
type Snapshot struct {
	ID        uint64
	Pixels    *image.RGBA
	Thumbnail []byte
	TakenAt   time.Time
}

// History is a linear, non-branching sequence of snapshots with a current
// position pointer. Capturing while the pointer is not at the tail discards
// every later snapshot before appending, so a draw after undo rewrites the
// future rather than forking it.
type History struct {
	snaps   []Snapshot
	current int
	nextID  uint64
}

func NewHistory() *History {
	return &History{current: -1}
}

// Capture appends a snapshot of pixels, truncating any redo entries first,
// and moves the pointer to the new tail. The caller must pass an independent
// copy; Surface.ReadPixels already returns one.
func (h *History) Capture(pixels *image.RGBA) {
	if pixels == nil {
		return
	}
	if h.current < len(h.snaps)-1 {
		h.snaps = h.snaps[:h.current+1]
	}
	h.nextID++
	h.snaps = append(h.snaps, Snapshot{
		ID:        h.nextID,
		Pixels:    pixels,
		Thumbnail: encodeThumbnail(pixels),
		TakenAt:   time.Now(),
	})
	h.current = len(h.snaps) - 1
}

// Undo moves the pointer back one entry and returns the snapshot to restore.
// Returns nil at the oldest entry.
func (h *History) Undo() *Snapshot {
	if h.current <= 0 {
		return nil
	}
	h.current--
	return &h.snaps[h.current]
}

// Redo moves the pointer forward one entry and returns the snapshot to
// restore. Returns nil at the tail.
func (h *History) Redo() *Snapshot {
	if h.current < 0 || h.current >= len(h.snaps)-1 {
		return nil
	}
	h.current++
	return &h.snaps[h.current]
}

// JumpTo moves the pointer to an explicit index without truncating the
// sequence. Returns nil when the index is out of range.
func (h *History) JumpTo(index int) *Snapshot {
	if index < 0 || index >= len(h.snaps) {
		return nil
	}
	h.current = index
	return &h.snaps[h.current]
}

// Current returns the snapshot at the pointer, or nil when the history is
// still empty.
func (h *History) Current() *Snapshot {
	if h.current < 0 || h.current >= len(h.snaps) {
		return nil
	}
	return &h.snaps[h.current]
}

func (h *History) Len() int   { return len(h.snaps) }
func (h *History) Index() int { return h.current }

// Snapshots returns the underlying sequence for read-only iteration
// (thumbnail lists). Callers must not mutate the returned entries.
func (h *History) Snapshots() []Snapshot { return h.snaps }

// encodeThumbnail scales pixels down to a fixed-width preview and encodes it
// as a low-quality JPEG.
func encodeThumbnail(src *image.RGBA) []byte {
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil
	}
	th := b.Dy() * thumbnailWidth / b.Dx()
	if th < 1 {
		th = 1
	}
	thumb := image.NewRGBA(image.Rect(0, 0, thumbnailWidth, th))
	xdraw.ApproxBiLinear.Scale(thumb, thumb.Bounds(), src, b, xdraw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil
	}
	return buf.Bytes()
}
