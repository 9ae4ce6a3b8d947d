package cpwroute

import (
	"errors"
	"fmt"

	"oss.terrastruct.com/cpw/lib/geo"
)

// errSimpleInfeasible reports that the simple connector could not join two
// oriented points with at most two corners. It never escapes the package:
// the pathfinder recovers from it by searching, and BuildRoute maps it to
// RouteDisconnectedError when no fallback applies.
var errSimpleInfeasible = errors.New("no direct, elbow or s-shape connection")

// PathfindingExhaustedError is returned when the grid search ran out of
// frontier before reaching the destination. Either the obstacles box the
// endpoints in or the step size is unsuited to the layout.
type PathfindingExhaustedError struct {
	Start *geo.Point
	End   *geo.Point
	Step  float64
}

func (e PathfindingExhaustedError) Error() string {
	return fmt.Sprintf("pathfinding exhausted between %s and %s at step %v", e.Start.ToString(), e.End.ToString(), e.Step)
}

// LengthInfeasibleError is returned when the requested total length is
// shorter than the shortest polyline that can join the endpoints at all.
type LengthInfeasibleError struct {
	Target  float64
	Minimum float64
}

func (e LengthInfeasibleError) Error() string {
	return fmt.Sprintf("target length %v is below the minimum feasible length %v", e.Target, e.Minimum)
}

// RouteDisconnectedError is returned when a mandatory hop between anchors
// produced no points.
type RouteDisconnectedError struct {
	Segment int
}

func (e RouteDisconnectedError) Error() string {
	return fmt.Sprintf("segment %d produced no points", e.Segment)
}
