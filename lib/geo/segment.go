package geo

import (
	"fmt"
	"math"
)

type Segment struct {
	Start *Point
	End   *Point
}

func NewSegment(from, to *Point) *Segment {
	return &Segment{from, to}
}

func (segment Segment) Intersects(otherSegment Segment) bool {
	return IntersectionPoint(segment.Start, segment.End, otherSegment.Start, otherSegment.End) != nil
}

// CrossesOrTouches reports whether the two segments share at least one point.
// Unlike Intersects, parallel segments that overlap along a stretch of the
// same line count too, which is what obstacle queries need: a trace grazing a
// bounding box edge is still a collision.
func (segment Segment) CrossesOrTouches(otherSegment Segment) bool {
	x0Start, y0Start := segment.Start.X, segment.Start.Y
	x0End, y0End := segment.End.X, segment.End.Y
	x1Start, y1Start := otherSegment.Start.X, otherSegment.Start.Y
	x1End, y1End := otherSegment.End.X, otherSegment.End.Y

	if x0Start == x0End && x1Start == x1End {
		// both vertical: only a shared x with touching y ranges overlaps
		if x0End != x1Start {
			return false
		}
		return !(math.Min(y0Start, y0End) > math.Max(y1Start, y1End) ||
			math.Min(y1Start, y1End) > math.Max(y0Start, y0End))
	}

	if x0Start == x0End || x1Start == x1End {
		// one vertical: swap so segment 0 is the vertical one, express the
		// other as y = mx + b and check the crossing height
		if x1Start == x1End {
			x0Start, x0End, x1Start, x1End = x1Start, x1End, x0Start, x0End
			y0Start, y0End, y1Start, y1End = y1Start, y1End, y0Start, y0End
		}
		m := (y1End - y1Start) / (x1End - x1Start)
		b := (x1End*y1Start - x1Start*y1End) / (x1End - x1Start)
		if math.Min(x1Start, x1End) <= x0Start && x0Start <= math.Max(x1Start, x1End) {
			y := m*x0Start + b
			if math.Min(y0Start, y0End) <= y && y <= math.Max(y0Start, y0End) {
				return true
			}
		}
		return false
	}

	// neither vertical
	b0 := (y0Start*x0End - y0End*x0Start) / (x0End - x0Start)
	b1 := (y1Start*x1End - y1End*x1Start) / (x1End - x1Start)
	if (x1End-x1Start)*(y0End-y0Start) == (x0End-x0Start)*(y1End-y1Start) {
		// identical slopes: only a shared intercept with touching x ranges overlaps
		if b0 != b1 {
			return false
		}
		return !(math.Min(x0Start, x0End) > math.Max(x1Start, x1End) ||
			math.Min(x1Start, x1End) > math.Max(x0Start, x0End))
	}
	m0 := (y0End - y0Start) / (x0End - x0Start)
	m1 := (y1End - y1Start) / (x1End - x1Start)
	xIntersect := (b1 - b0) / (m0 - m1)
	return math.Min(x0Start, x0End) <= xIntersect && xIntersect <= math.Max(x0Start, x0End) &&
		math.Min(x1Start, x1End) <= xIntersect && xIntersect <= math.Max(x1Start, x1End)
}

//nolint:unused
func (s Segment) ToString() string {
	return fmt.Sprintf("%v -> %v", s.Start.ToString(), s.End.ToString())
}

func (segment Segment) Intersections(otherSegment Segment) []*Point {
	point := IntersectionPoint(segment.Start, segment.End, otherSegment.Start, otherSegment.End)
	if point == nil {
		return nil
	}
	return []*Point{point}
}

func (segment Segment) Length() float64 {
	return EuclideanDistance(segment.Start.X, segment.Start.Y, segment.End.X, segment.End.Y)
}

func (segment Segment) ToVector() Vector {
	return NewVector(segment.End.X-segment.Start.X, segment.End.Y-segment.Start.Y)
}
