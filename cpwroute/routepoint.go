package cpwroute

import (
	"math"

	"oss.terrastruct.com/cpw/lib/geo"
)

// RoutePoint is the oriented point threaded through every connection
// strategy: a position plus the unit direction travel continues in from it.
// Dir is nil for bare anchors, whose direction is inferred from a neighbor
// with withAnchorDir.
type RoutePoint struct {
	Pos *geo.Point
	Dir geo.Vector
}

func NewRoutePoint(pos *geo.Point, dir geo.Vector) RoutePoint {
	return RoutePoint{Pos: pos, Dir: dir}
}

// withAnchorDir returns p with a direction filled in when it has none: the
// unit vector along the longer axis of the displacement rectangle between
// ref and p, pointing from p back toward ref. The connector uses it as the
// stop direction at bare anchors, the meander fitter as the end direction.
func (p RoutePoint) withAnchorDir(ref RoutePoint) RoutePoint {
	if p.Dir != nil {
		return p
	}
	offsetX := geo.Round(ref.Pos.X - p.Pos.X)
	offsetY := geo.Round(ref.Pos.Y - p.Pos.Y)
	var dir geo.Vector
	if math.Abs(offsetX) >= math.Abs(offsetY) {
		dir = geo.NewVector(offsetX, 0)
	} else {
		dir = geo.NewVector(0, offsetY)
	}
	return RoutePoint{Pos: p.Pos, Dir: dir.Unit()}
}

// unitVectors returns the forward unit vector from start to end and its
// quarter-turn counter-clockwise sideways companion. With snap set, forward
// collapses onto its dominant axis first.
func unitVectors(start, end RoutePoint, snap bool) (forward, sideways geo.Vector) {
	forward = start.Pos.VectorTo(end.Pos).Unit()
	if snap {
		forward = forward.SnapToAxis()
	}
	return forward, forward.Perp()
}
