package cpwroute

import (
	"math"

	"oss.terrastruct.com/cpw/cpwdesign"
	"oss.terrastruct.com/cpw/lib/geo"
)

// Lead is the growing stub of points at one end of a route under
// construction. It is seeded from a resolved pin and only ever grows at the
// tip, tracking the direction travel continues in.
type Lead struct {
	pts geo.Route
	dir geo.Vector
}

// SeedFromPin anchors the lead at the pin's middle, pointing along the pin's
// outward normal. Returns the seeded tip.
func (l *Lead) SeedFromPin(p *cpwdesign.Pin) RoutePoint {
	l.pts = geo.Route{p.Middle.Copy()}
	l.dir = geo.NewVector(p.Normal[0], p.Normal[1])
	return l.Tip()
}

// GoStraight extends the lead by length along its current direction.
func (l *Lead) GoStraight(length float64) {
	tip := l.pts[len(l.pts)-1]
	l.pts = append(l.pts, tip.AddVector(l.dir.Multiply(length)))
}

// GoLeft turns the lead a quarter turn counter-clockwise, then extends it by
// length.
func (l *Lead) GoLeft(length float64) {
	l.dir = l.dir.Rotate(math.Pi / 2)
	l.GoStraight(length)
}

// GoRight turns the lead a quarter turn clockwise, then extends it by length.
func (l *Lead) GoRight(length float64) {
	l.dir = l.dir.Rotate(-math.Pi / 2)
	l.GoStraight(length)
}

// GoAngle turns the lead by degreesCCW (negative for clockwise), then
// extends it by length.
func (l *Lead) GoAngle(length, degreesCCW float64) {
	l.dir = l.dir.Rotate(degreesCCW * math.Pi / 180)
	l.GoStraight(length)
}

// Tip returns the last point of the lead with its current direction.
func (l *Lead) Tip() RoutePoint {
	return RoutePoint{Pos: l.pts[len(l.pts)-1], Dir: l.dir}
}

// Length is the summed length of every segment of the lead.
func (l *Lead) Length() float64 {
	return l.pts.Length()
}

// Points returns the lead's points in growth order.
func (l *Lead) Points() geo.Route {
	return l.pts
}
