package geo

import (
	"fmt"
	"math"
)

// Box is an axis-aligned rectangle anchored at its minimum corner. The
// coordinate space is y-up, so the anchor is the bottom-left corner.
type Box struct {
	BottomLeft *Point
	Width      float64
	Height     float64
}

func NewBox(bl *Point, width, height float64) *Box {
	return &Box{
		BottomLeft: bl,
		Width:      width,
		Height:     height,
	}
}

// NewBoxFromCorners builds the box spanning two opposite corners, given in
// any order
func NewBoxFromCorners(x1, y1, x2, y2 float64) *Box {
	return NewBox(
		NewPoint(math.Min(x1, x2), math.Min(y1, y2)),
		math.Abs(x2-x1),
		math.Abs(y2-y1),
	)
}

func (b *Box) Copy() *Box {
	if b == nil {
		return nil
	}
	return NewBox(b.BottomLeft.Copy(), b.Width, b.Height)
}

func (b *Box) Center() *Point {
	return NewPoint(b.BottomLeft.X+b.Width/2, b.BottomLeft.Y+b.Height/2)
}

// Corners returns the four corners in the order bottom-left, bottom-right,
// top-right, top-left
func (b *Box) Corners() [4]*Point {
	bl := b.BottomLeft
	br := NewPoint(bl.X+b.Width, bl.Y)
	tr := NewPoint(br.X, br.Y+b.Height)
	tl := NewPoint(bl.X, tr.Y)
	return [4]*Point{bl, br, tr, tl}
}

// Sides returns the four boundary edges
func (b *Box) Sides() [4]Segment {
	c := b.Corners()
	return [4]Segment{
		{c[0], c[1]},
		{c[1], c[2]},
		{c[2], c[3]},
		{c[3], c[0]},
	}
}

func (b *Box) Contains(p *Point) bool {
	return b.BottomLeft.X <= p.X && p.X <= b.BottomLeft.X+b.Width &&
		b.BottomLeft.Y <= p.Y && p.Y <= b.BottomLeft.Y+b.Height
}

// Expand grows the box by margin on every side. A negative margin shrinks it.
func (b *Box) Expand(margin float64) *Box {
	return NewBox(
		NewPoint(b.BottomLeft.X-margin, b.BottomLeft.Y-margin),
		b.Width+2*margin,
		b.Height+2*margin,
	)
}

func (b *Box) Intersections(s Segment) []*Point {
	pts := []*Point{}
	for _, side := range b.Sides() {
		if p := IntersectionPoint(s.Start, s.End, side.Start, side.End); p != nil {
			pts = append(pts, p)
		}
	}
	return pts
}

func (b *Box) ToString() string {
	if b == nil {
		return ""
	}
	return fmt.Sprintf("{BottomLeft: %s, Width: %v, Height: %v}", b.BottomLeft.ToString(), b.Width, b.Height)
}
