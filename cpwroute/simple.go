package cpwroute

import (
	"oss.terrastruct.com/cpw/cpwdesign"
	"oss.terrastruct.com/cpw/lib/geo"
)

// connectSimple joins two oriented points with at most two corners, trying
// candidates in a fixed priority order: the direct segment, a single-corner
// elbow, a two-corner s-shape, then the same corners again with the forward
// cones relaxed from strict to inclusive. The returned route holds only the
// corner points strictly between the endpoints, so a direct connection is an
// empty, non-nil route. When no candidate passes both its alignment test and
// (with avoidCollision) its collision test, the result is
// errSimpleInfeasible.
func connectSimple(start, end RoutePoint, obstacles *cpwdesign.ObstacleIndex, avoidCollision bool) (geo.Route, error) {
	startDir := start.Dir
	endDir := end.Dir
	// The stop direction orients the s-shape candidates even at bare
	// anchors; endDir stays nil there so the end-cone tests pass.
	stopDir := end.withAnchorDir(start).Dir

	s, e := start.Pos, end.Pos
	displacement := s.VectorTo(e)

	// clear reports whether the path start -> corners -> end crosses no
	// obstacle edge. Alignment-only mode accepts everything.
	clear := func(corners ...*geo.Point) bool {
		if !avoidCollision {
			return true
		}
		route := make(geo.Route, 0, len(corners)+2)
		route = append(route, s)
		route = append(route, corners...)
		route = append(route, e)
		return obstacles.UnobstructedRoute(route)
	}

	if s.X == e.X || s.Y == e.Y {
		// A shared coordinate admits only the direct segment: every corner
		// candidate below degenerates onto the same line.
		if startDir.Dot(displacement) >= 0 &&
			(endDir == nil || displacement.Dot(endDir) <= 0) &&
			clear() {
			return geo.Route{}, nil
		}
		return nil, errSimpleInfeasible
	}

	// Treat the endpoints as opposite corners of an axis-aligned rectangle.
	// corner1 shares x with start, corner2 with end.
	corner1 := geo.NewPoint(s.X, e.Y)
	corner2 := geo.NewPoint(e.X, s.Y)

	if startDir.Dot(s.VectorTo(corner1)) > 0 && clear(corner1) {
		if endDir == nil || endDir.Dot(e.VectorTo(corner1)) >= 0 {
			return geo.Route{corner1}, nil
		}
	} else if startDir.Dot(s.VectorTo(corner2)) > 0 && clear(corner2) {
		if endDir == nil || endDir.Dot(e.VectorTo(corner2)) >= 0 {
			return geo.Route{corner2}, nil
		}
	}

	// corners 3/4 bisect the rectangle along the stop-direction axis,
	// corners 5/6 along the other one.
	var corner3, corner4, corner5, corner6 *geo.Point
	if stopDir[0] != 0 {
		corner3 = geo.NewPoint((s.X+e.X)/2, s.Y)
		corner4 = geo.NewPoint((s.X+e.X)/2, e.Y)
		corner5 = geo.NewPoint(s.X, (s.Y+e.Y)/2)
		corner6 = geo.NewPoint(e.X, (s.Y+e.Y)/2)
	} else {
		corner3 = geo.NewPoint(s.X, (s.Y+e.Y)/2)
		corner4 = geo.NewPoint(e.X, (s.Y+e.Y)/2)
		corner5 = geo.NewPoint((s.X+e.X)/2, s.Y)
		corner6 = geo.NewPoint((s.X+e.X)/2, e.Y)
	}

	if startDir.Dot(stopDir) < 0 && startDir.Dot(s.VectorTo(corner3)) > 0 && clear(corner3, corner4) {
		if endDir == nil || endDir.Dot(e.VectorTo(corner4)) > 0 {
			return geo.Route{corner3, corner4}, nil
		}
	}

	// Relaxed pass: an inclusive forward cone admits perpendicular joins.
	if startDir.Dot(s.VectorTo(corner1)) >= 0 && clear(corner1) {
		if endDir == nil || endDir.Dot(e.VectorTo(corner1)) >= 0 {
			return geo.Route{corner1}, nil
		}
	}
	if startDir.Dot(s.VectorTo(corner2)) >= 0 && clear(corner2) {
		if endDir == nil || endDir.Dot(e.VectorTo(corner2)) >= 0 {
			return geo.Route{corner2}, nil
		}
	}
	if startDir.Dot(s.VectorTo(corner3)) >= 0 && clear(corner3, corner4) {
		if endDir == nil || endDir.Dot(e.VectorTo(corner4)) >= 0 {
			return geo.Route{corner3, corner4}, nil
		}
	}
	if startDir.Dot(s.VectorTo(corner5)) >= 0 && clear(corner5, corner6) {
		if endDir == nil || endDir.Dot(e.VectorTo(corner6)) >= 0 {
			return geo.Route{corner5, corner6}, nil
		}
	}

	return nil, errSimpleInfeasible
}
