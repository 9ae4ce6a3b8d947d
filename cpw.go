// Package cpw plans coplanar waveguide interconnects for planar chip
// designs.
//
// A Document pairs a serialized design with an ordered list of routing
// requests. Route plans one request against a live design and places the
// finished interconnect back into it as a two-pin component; RouteAll
// replays a whole document in order, so every interconnect becomes an
// obstacle for the requests after it.
package cpw

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"oss.terrastruct.com/xcontext"
	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/cpw/cpwdesign"
	"oss.terrastruct.com/cpw/cpwroute"
)

// Document is an on-disk routing job.
type Document struct {
	Design json.RawMessage `json:"design"`
	Routes []RouteRequest  `json:"routes"`
}

// RouteRequest names one interconnect to plan. The id becomes the placed
// component's id and must not collide with anything already in the design.
type RouteRequest struct {
	ID      string              `json:"id"`
	Options cpwroute.RawOptions `json:"options"`
}

type RouteOptions struct {
	// Parse converts dimension strings from raw options into design units.
	// Defaults to strconv.ParseFloat, i.e. bare numbers in design units.
	Parse cpwroute.UnitParser
	// Store receives every finished route. Nil skips persistence; the
	// design is still mutated.
	Store cpwroute.Store
}

func (opts *RouteOptions) parser() cpwroute.UnitParser {
	if opts.Parse != nil {
		return opts.Parse
	}
	return func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	}
}

// Route plans one interconnect against d and, on success, commits it to the
// store and places it into d wired to its terminal pins. The design and
// store are untouched when planning fails.
func Route(ctx context.Context, d *cpwdesign.Design, req RouteRequest, opts *RouteOptions) (_ *cpwroute.Route, err error) {
	defer xdefer.Errorf(&err, "failed to route %q", req.ID)
	if opts == nil {
		opts = &RouteOptions{}
	}
	if req.ID == "" {
		return nil, errors.New("route id is required")
	}
	if _, ok := d.Component(req.ID); ok {
		return nil, fmt.Errorf("component %q is already placed", req.ID)
	}

	ropts, err := req.Options.Resolve(opts.parser())
	if err != nil {
		return nil, err
	}

	// The route component is not placed until after planning succeeds, so
	// the snapshot never contains the interconnect being planned.
	r, err := cpwroute.BuildRoute(ctx, d.PinTable(), d.Obstacles(), ropts)
	if err != nil {
		return nil, err
	}

	// Planning is the cancellable part. Once a route exists it is committed
	// even if the deadline fired while planning wound down.
	ctx = xcontext.WithoutCancel(ctx)

	if opts.Store != nil {
		err = opts.Store.Commit(ctx, r)
		if err != nil {
			return nil, err
		}
	}

	err = d.Place(r.AsComponent(req.ID))
	if err != nil {
		return nil, err
	}
	_, err = d.Connect(ropts.Start, cpwdesign.PinRef{Component: req.ID, Pin: "start"})
	if err != nil {
		return nil, err
	}
	_, err = d.Connect(ropts.End, cpwdesign.PinRef{Component: req.ID, Pin: "end"})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Result is the outcome of routing a whole document: the design with every
// interconnect placed, and the routes in request order.
type Result struct {
	Design json.RawMessage   `json:"design"`
	Routes []*cpwroute.Route `json:"routes"`
}

// RouteAll plans every request in doc in order. Routing stops at the first
// failure; requests routed before it remain committed to the store.
func RouteAll(ctx context.Context, doc *Document, opts *RouteOptions) (_ *Result, err error) {
	defer xdefer.Errorf(&err, "failed to route document")

	d, err := cpwdesign.DeserializeDesign(doc.Design)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Routes: make([]*cpwroute.Route, 0, len(doc.Routes)),
	}
	for _, req := range doc.Routes {
		r, err := Route(ctx, d, req, opts)
		if err != nil {
			return nil, err
		}
		res.Routes = append(res.Routes, r)
	}

	res.Design, err = cpwdesign.SerializeDesign(d)
	if err != nil {
		return nil, err
	}
	return res, nil
}
