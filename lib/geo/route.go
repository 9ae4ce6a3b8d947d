package geo

import (
	"math"
)

type Route []*Point

func (route Route) Length() float64 {
	l := 0.
	for i := 0; i < len(route)-1; i++ {
		l += EuclideanDistance(
			route[i].X, route[i].Y,
			route[i+1].X, route[i+1].Y,
		)
	}
	return l
}

func (route Route) Copy() Route {
	copied := make(Route, len(route))
	for i, p := range route {
		copied[i] = p.Copy()
	}
	return copied
}

// TrimCollinear drops duplicate consecutive points and interior points that
// sit on the straight line through their neighbors. The endpoints always
// survive.
func (route Route) TrimCollinear() Route {
	if len(route) < 2 {
		return route
	}
	trimmed := Route{route[0]}
	for i := 1; i < len(route); i++ {
		p := route[i]
		last := trimmed[len(trimmed)-1]
		if Round(p.X-last.X) == 0 && Round(p.Y-last.Y) == 0 {
			continue
		}
		if len(trimmed) >= 2 {
			prev := trimmed[len(trimmed)-2]
			if prev.VectorTo(last).Cross(last.VectorTo(p)) == 0 {
				trimmed[len(trimmed)-1] = p
				continue
			}
		}
		trimmed = append(trimmed, p)
	}
	return trimmed
}

func (route Route) GetBoundingBox() (bl, tr *Point) {
	minX := math.Inf(1)
	minY := math.Inf(1)
	maxX := math.Inf(-1)
	maxY := math.Inf(-1)

	for _, p := range route {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return NewPoint(minX, minY), NewPoint(maxX, maxY)
}
