package grid

import (
	"errors"
	"image"
	"image/draw"

	"golang.org/x/image/font"
)

// Shaper measures and rasterizes monospace glyph runs. It is adapted from
// the teacher's tiles.Drawer (tiles/drawer.go): same 26.6 fixed-point
// font.Face-driven metrics, generalized here to whole runs of text instead
// of single tile runes, since GridBuffer.Flush shapes a run once per
// maximal equal-highlight segment rather than per cell.
type Shaper struct {
	face     font.Face
	advanceX Fixed
	lineY    Fixed
}

// NewShaper returns a Shaper using face as the monospace font. It fails if
// the face cannot report the advance width of 'W', mirroring
// tiles.NewDrawer's own precondition.
func NewShaper(face font.Face) (*Shaper, error) {
	width, ok := face.GlyphAdvance('W')
	if !ok {
		return nil, errors.New("grid: could not get glyph advance from font face")
	}
	metrics := face.Metrics()
	return &Shaper{
		face:     face,
		advanceX: Fixed(width.Round()) * fixedScale,
		lineY:    Fixed(metrics.Height.Round()) * fixedScale,
	}, nil
}

// Metrics returns the column/row pixel metrics derived from the font face.
func (s *Shaper) Metrics() Metrics {
	return Metrics{AdvanceX: s.advanceX, LineY: s.lineY}
}

// measureWidth returns the pixel width a run of n columns occupies.
func (s *Shaper) measureWidth(cols int) Fixed {
	return Fixed(cols) * s.advanceX
}

// Rasterize renders one run of text as an RGBA bitmap with bg painted
// behind it, sized to the run's measured width and the font's line height.
// It is a seam for producing the glyph bitmap of a run; concrete drivers
// (drivers/sdldriver) use it to build a GPU texture. It is kept separate
// from shapeRun so that tests can shape runs (text/hl/width bookkeeping)
// without a real font.Face.
func (s *Shaper) Rasterize(text string, fg, bg image.Image) *image.RGBA {
	drawer := &font.Drawer{Face: s.face, Src: fg}
	w := s.measureWidth(len([]rune(text))).Round()
	h := s.lineY.Round()
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), bg, image.Point{}, draw.Src)
	drawer.Dst = img
	drawer.Dot.X = 0
	drawer.Dot.Y = s.face.Metrics().Ascent
	drawer.DrawString(text)
	return img
}
