// Package cpwroute plans coplanar waveguide interconnects between pins of a
// placed design: straight leads off each pin, optional waypoint anchors, an
// obstacle-avoiding grid search where direct connections fail, and a meander
// that stretches the path onto a target electrical length.
package cpwroute

import (
	"context"
	"errors"
	"math"

	"cdr.dev/slog"

	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/cpw/cpwdesign"
	"oss.terrastruct.com/cpw/lib/geo"
	"oss.terrastruct.com/cpw/lib/log"
)

// Route is the finished plan for one interconnect. Points runs from the
// start pin to the end pin inclusive. RealizedLength is the electrical
// length of Points with fillet corners compensated; it may differ from
// TargetLength and the discrepancy is the caller's to judge, never
// discarded.
type Route struct {
	Start cpwdesign.PinRef `json:"start"`
	End   cpwdesign.PinRef `json:"end"`

	Points geo.Route `json:"points"`

	Width float64 `json:"width"`
	// Gap 0 renders a plain trace; positive renders the coplanar waveguide
	// cut around it.
	Gap    float64 `json:"gap,omitempty"`
	Fillet float64 `json:"fillet,omitempty"`

	Chip  string `json:"chip,omitempty"`
	Layer string `json:"layer,omitempty"`

	TargetLength   float64 `json:"target_length,omitempty"`
	RealizedLength float64 `json:"realized_length"`
}

// Store persists finished routes. The engine never commits partial work: a
// Store only ever sees routes whose planning succeeded.
type Store interface {
	Commit(ctx context.Context, r *Route) error
}

// BuildRoute plans an interconnect from opts.Start to opts.End. It reads
// the pin table and obstacle snapshot and mutates neither; committing the
// result and registering its nets is the caller's move.
//
// Each segment between consecutive anchors (and from the last anchor onto
// the end lead) is connected by the strategy configured for it. Meandered
// segments share the length budget left over once leads and the free
// manhattan flight through the anchors are spoken for; after assembly the
// residual between target and realized length is redistributed across them.
func BuildRoute(ctx context.Context, pins *cpwdesign.PinTable, obstacles *cpwdesign.ObstacleIndex, opts *Options) (_ *Route, err error) {
	defer xdefer.Errorf(&err, "failed to route %s -> %s", opts.Start, opts.End)

	if err := opts.validate(); err != nil {
		return nil, err
	}

	startPin, err := pins.Resolve(opts.Start)
	if err != nil {
		return nil, err
	}
	endPin, err := pins.Resolve(opts.End)
	if err != nil {
		return nil, err
	}

	var head, tail Lead
	head.SeedFromPin(startPin)
	tail.SeedFromPin(endPin)

	// Minimum stub of half a trace width so even a zero lead can jog.
	head.GoStraight(math.Max(opts.Lead.StartStraight, opts.TraceWidth/2))
	for _, j := range opts.Lead.StartJogs {
		head.GoAngle(j.Length, j.AngleDeg)
	}
	tail.GoStraight(math.Max(opts.Lead.EndStraight, opts.TraceWidth/2))
	for _, j := range opts.Lead.EndJogs {
		tail.GoAngle(j.Length, j.AngleDeg)
	}

	startTip := head.Tip()
	endTip := tail.Tip()

	nSegments := len(opts.Anchors) + 1
	nMeanders := 0
	for i := 0; i < nSegments; i++ {
		if opts.strategyFor(i) == StrategyMeander {
			nMeanders++
		}
	}

	// Every meandered segment gets the same budget: an equal share of the
	// length not consumed by leads or by free flight through the anchors,
	// plus its share of that free flight.
	var budget float64
	if nMeanders > 0 {
		freeM := freeManhattan(startTip.Pos, opts.Anchors, endTip.Pos)
		budget = (opts.TotalLength-head.Length()-tail.Length()-freeM)/float64(nMeanders) +
			freeM/float64(nSegments)
	}

	fitter := meanderFitter{
		spacing:           opts.Meander.Spacing,
		asymmetry:         opts.Meander.Asymmetry,
		snap:              opts.Meander.Snap,
		preventShortEdges: opts.Meander.PreventShortEdges,
		fillet:            opts.Fillet,
	}

	// flat accumulates every interior point placed so far so the next
	// segment can start from the current tip, direction included.
	var flat geo.Route
	tip := func() RoutePoint {
		if len(flat) == 0 {
			return startTip
		}
		tipPt := flat[len(flat)-1]
		var prev *geo.Point
		for i := len(flat) - 2; i >= 0; i-- {
			if !flat[i].Equals(tipPt) {
				prev = flat[i]
				break
			}
		}
		if prev == nil {
			prev = startTip.Pos
		}
		return RoutePoint{Pos: tipPt, Dir: prev.VectorTo(tipPt)}
	}

	connect := func(segment int, start, end RoutePoint) (geo.Route, error) {
		switch opts.strategyFor(segment) {
		case StrategyMeander:
			return fitter.fit(ctx, start, end, budget)
		case StrategyPathfinder:
			// The search retries the simple connector from every expanded
			// node, the start included, so there is no separate pre-try.
			return connectAstar(ctx, start, end, obstacles, opts.Step, opts.AvoidCollision)
		default:
			pts, err := connectSimple(start, end, obstacles, opts.AvoidCollision)
			if errors.Is(err, errSimpleInfeasible) {
				return nil, RouteDisconnectedError{Segment: segment}
			}
			return pts, err
		}
	}

	segments := make([]geo.Route, nSegments)
	for i, anchor := range opts.Anchors {
		seg, err := connect(i, tip(), RoutePoint{Pos: anchor})
		if err != nil {
			return nil, err
		}
		// Interior segments always close onto their anchor.
		seg = append(seg, anchor.Copy())
		segments[i] = seg
		flat = append(flat, seg...)
	}
	final, err := connect(nSegments-1, tip(), endTip)
	if err != nil {
		return nil, err
	}
	// The final segment ends on the tail lead, so unlike interior segments
	// it may legitimately be empty and contribute nothing.
	segments[nSegments-1] = final
	flat = append(flat, final...)

	assemble := func() geo.Route {
		tailPts := tail.Points()
		pts := make(geo.Route, 0, len(head.Points())+len(flat)+len(tailPts))
		pts = append(pts, head.Points()...)
		for _, seg := range segments {
			pts = append(pts, seg...)
		}
		for i := len(tailPts) - 1; i >= 0; i-- {
			pts = append(pts, tailPts[i])
		}
		return pts.TrimCollinear()
	}

	if nMeanders > 0 {
		// Local snap and short-edge adjustments each traded a little
		// length for alignment; measure what actually got built and spread
		// the residual back across the meandered segments.
		realized := routeLength(assemble(), opts.Fillet)
		residual := (opts.TotalLength - realized) / float64(nMeanders)
		for i := 0; i < nSegments; i++ {
			if opts.strategyFor(i) != StrategyMeander {
				continue
			}
			segStart := startTip
			if i > 0 {
				segStart = RoutePoint{Pos: opts.Anchors[i-1]}
			}
			segEnd := endTip
			if i < len(opts.Anchors) {
				segEnd = RoutePoint{Pos: opts.Anchors[i]}
			}
			if i < len(opts.Anchors) {
				// Shed the closing anchor, shift the extrema, close again.
				seg := segments[i]
				adjusted := fitter.adjustLength(residual, seg[:len(seg)-1], segStart, segEnd)
				segments[i] = append(adjusted, opts.Anchors[i].Copy())
			} else {
				segments[i] = fitter.adjustLength(residual, segments[i], segStart, segEnd)
			}
		}
	}

	points := assemble()
	realized := routeLength(points, opts.Fillet)
	if opts.TotalLength > 0 {
		log.Debug(ctx, "route length",
			slog.F("target", opts.TotalLength),
			slog.F("realized", realized),
		)
	}
	return &Route{
		Start:          opts.Start,
		End:            opts.End,
		Points:         points,
		Width:          opts.TraceWidth,
		Gap:            opts.TraceGap,
		Fillet:         opts.Fillet,
		Chip:           opts.Chip,
		Layer:          opts.Layer,
		TargetLength:   opts.TotalLength,
		RealizedLength: realized,
	}, nil
}

// freeManhattan is the manhattan length of the flight from the start tip
// through every anchor to the end tip.
func freeManhattan(start *geo.Point, anchors []*geo.Point, end *geo.Point) float64 {
	chain := make(geo.Route, 0, len(anchors)+2)
	chain = append(chain, start)
	chain = append(chain, anchors...)
	chain = append(chain, end)
	var length float64
	for i := 1; i < len(chain); i++ {
		length += manhattan(chain[i-1], chain[i])
	}
	return length
}

// routeLength measures pts compensating for corner rounding: every interior
// vertex trades two fillet radii of straight run for a quarter arc.
func routeLength(pts geo.Route, fillet float64) float64 {
	length := pts.Length()
	if len(pts) > 2 {
		excess := 2*fillet - 0.5*math.Pi*fillet
		length -= float64(len(pts)-2) * excess
	}
	return length
}

// AsComponent renders the route as a placeable component: its bounding box
// grown by half the trace width, with start and end pins at the terminal
// points facing back along the trace so they mate with the pins they
// connect to.
func (r *Route) AsComponent(id string) *cpwdesign.Component {
	bl, tr := r.Points.GetBoundingBox()
	half := r.Width / 2
	box := geo.NewBoxFromCorners(bl.X-half, bl.Y-half, tr.X+half, tr.Y+half)
	c := cpwdesign.NewComponent(id, box)

	first, second := r.Points[0], r.Points[1]
	last, secondLast := r.Points[len(r.Points)-1], r.Points[len(r.Points)-2]
	c.AddPin(&cpwdesign.Pin{
		Name:   "start",
		Middle: first.Copy(),
		Normal: second.VectorTo(first).Unit(),
		Width:  r.Width,
		Gap:    r.Gap,
	})
	c.AddPin(&cpwdesign.Pin{
		Name:   "end",
		Middle: last.Copy(),
		Normal: secondLast.VectorTo(last).Unit(),
		Width:  r.Width,
		Gap:    r.Gap,
	})
	return c
}
