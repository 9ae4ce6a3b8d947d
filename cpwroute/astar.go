package cpwroute

import (
	"container/heap"
	"context"
	"math"

	"cdr.dev/slog"

	"oss.terrastruct.com/cpw/cpwdesign"
	"oss.terrastruct.com/cpw/lib/geo"
	"oss.terrastruct.com/cpw/lib/log"
)

// arrivalTolerance bounds the manhattan distance at which a grid point
// counts as having reached the destination. The exact destination is then
// snapped into the path in its place so grid error never compounds.
const arrivalTolerance = 1e-8

// maxExpansions caps how many nodes one search may pop. A window that
// needs more has a step far too fine for its span; the budget surfaces as
// exhaustion instead of an unbounded walk.
const maxExpansions = 1 << 16

type astarNode struct {
	// rank is travelled plus the manhattan distance to the destination.
	// The frontier orders on (rank, x, y) so equal-cost pops are
	// deterministic.
	rank      float64
	x, y      float64
	travelled float64
	parent    *astarNode
}

type astarFrontier []*astarNode

func (f astarFrontier) Len() int { return len(f) }

func (f astarFrontier) Less(i, j int) bool {
	if f[i].rank != f[j].rank {
		return f[i].rank < f[j].rank
	}
	if f[i].x != f[j].x {
		return f[i].x < f[j].x
	}
	return f[i].y < f[j].y
}

func (f astarFrontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *astarFrontier) Push(x interface{}) { *f = append(*f, x.(*astarNode)) }

func (f *astarFrontier) Pop() interface{} {
	old := *f
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*f = old[:n-1]
	return item
}

type gridCoord struct {
	x, y float64
}

func manhattan(a, b *geo.Point) float64 {
	return math.Abs(a.X-b.X) + math.Abs(a.Y-b.Y)
}

// connectAstar searches a uniform grid of pitch step for an axis-aligned
// path from start to end, consulting obstacles at every candidate segment.
// At every popped node it first retries connectSimple toward the true
// destination and short-circuits on success, which bounds the search in open
// layouts. Neighbors whose displacement points against the current travel
// direction are discarded, so the path never doubles back on itself.
//
// The grid is clamped to a window around the endpoints and every obstacle,
// with a few steps of margin to swing around the outermost one. An
// unreachable destination therefore drains the frontier instead of flooding
// the open plane.
//
// Coordinates are marked visited when enqueued, not when dequeued. That
// keeps the frontier small but can shadow a cheaper arrival at the same
// coordinate in pathological obstacle fields; the trade-off is deliberate.
//
// The returned route holds the points strictly between start and end. An
// emptied frontier or a spent expansion budget is surfaced as
// PathfindingExhaustedError.
func connectAstar(ctx context.Context, start, end RoutePoint, obstacles *cpwdesign.ObstacleIndex, step float64, avoidCollision bool) (geo.Route, error) {
	log.Debug(ctx, "pathfinder fallback",
		slog.F("start", start.Pos.ToString()),
		slog.F("end", end.Pos.ToString()),
		slog.F("step", step))

	window := searchWindow(start.Pos, end.Pos, obstacles, step)

	frontier := &astarFrontier{{
		rank: manhattan(start.Pos, end.Pos),
		x:    start.Pos.X,
		y:    start.Pos.Y,
	}}
	visited := map[gridCoord]struct{}{
		{start.Pos.X, start.Pos.Y}: {},
	}

	displacements := []geo.Vector{
		geo.NewVector(0, 1),
		geo.NewVector(0, -1),
		geo.NewVector(1, 0),
		geo.NewVector(-1, 0),
	}

	popped := 0
	for frontier.Len() > 0 && popped < maxExpansions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		node := heap.Pop(frontier).(*astarNode)
		popped++

		tip := geo.NewPoint(node.x, node.y)
		var direction geo.Vector
		if node.parent == nil {
			direction = start.Dir
		} else {
			direction = geo.NewVector(node.x-node.parent.x, node.y-node.parent.y)
		}

		// The simple connector may have become feasible from here even
		// though it was not from the original start.
		shortcut, err := connectSimple(RoutePoint{Pos: tip, Dir: direction}, end, obstacles, avoidCollision)
		if err == nil {
			log.Debug(ctx, "pathfinder short-circuit", slog.F("expanded", popped))
			return append(reconstruct(node)[1:], shortcut...), nil
		}

		for _, disp := range displacements {
			if disp.Dot(direction) < 0 {
				continue
			}
			next := tip.AddVector(disp.Multiply(step))
			if !window.Contains(next) {
				continue
			}
			if _, seen := visited[gridCoord{next.X, next.Y}]; seen {
				continue
			}
			if !obstacles.Unobstructed(geo.Segment{Start: tip, End: next}) {
				continue
			}
			remaining := manhattan(end.Pos, next)
			if remaining < arrivalTolerance {
				// Arrived. The caller appends the exact destination, so the
				// near-destination grid point is dropped entirely.
				log.Debug(ctx, "pathfinder arrived", slog.F("expanded", popped))
				return reconstruct(node)[1:], nil
			}
			travelled := node.travelled + step
			heap.Push(frontier, &astarNode{
				rank:      travelled + remaining,
				x:         next.X,
				y:         next.Y,
				travelled: travelled,
				parent:    node,
			})
			visited[gridCoord{next.X, next.Y}] = struct{}{}
		}
	}

	return nil, PathfindingExhaustedError{Start: start.Pos, End: end.Pos, Step: step}
}

// searchWindow bounds the grid to the endpoints and every obstacle, plus
// four steps of margin.
func searchWindow(start, end *geo.Point, obstacles *cpwdesign.ObstacleIndex, step float64) *geo.Box {
	x1, y1 := math.Min(start.X, end.X), math.Min(start.Y, end.Y)
	x2, y2 := math.Max(start.X, end.X), math.Max(start.Y, end.Y)
	if b := obstacles.Bounds(); b != nil {
		x1 = math.Min(x1, b.BottomLeft.X)
		y1 = math.Min(y1, b.BottomLeft.Y)
		x2 = math.Max(x2, b.BottomLeft.X+b.Width)
		y2 = math.Max(y2, b.BottomLeft.Y+b.Height)
	}
	return geo.NewBoxFromCorners(x1, y1, x2, y2).Expand(4 * step)
}

// reconstruct rebuilds the polyline from the parent chain, merging
// collinear runs so straight stretches don't carry one vertex per grid
// step.
func reconstruct(node *astarNode) geo.Route {
	var rev geo.Route
	for n := node; n != nil; n = n.parent {
		rev = append(rev, geo.NewPoint(n.x, n.y))
	}
	path := make(geo.Route, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		path = appendMerged(path, rev[i])
	}
	return path
}

// appendMerged appends p, replacing the tip when it is collinear with its
// neighbor and p.
func appendMerged(path geo.Route, p *geo.Point) geo.Route {
	if len(path) >= 2 {
		last, prev := path[len(path)-1], path[len(path)-2]
		if prev.VectorTo(last).Cross(last.VectorTo(p)) == 0 {
			path[len(path)-1] = p
			return path
		}
	}
	return append(path, p)
}
