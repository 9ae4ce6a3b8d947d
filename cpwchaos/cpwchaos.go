// Package cpwchaos generates random chip designs and routing requests to
// shake rare geometry out of the router.
package cpwchaos

import (
	"fmt"
	"math"
	mathrand "math/rand"
	"strconv"
	"time"

	"oss.terrastruct.com/cpw"
	"oss.terrastruct.com/cpw/cpwdesign"
	"oss.terrastruct.com/cpw/cpwroute"
	"oss.terrastruct.com/cpw/lib/geo"
	"oss.terrastruct.com/cpw/lib/go2"
)

// cellPitch spaces component cells far enough apart that neighboring
// footprints always leave a corridor between them.
const cellPitch = 40.0

// GenDoc generates a routing document: a design of randomly sized
// components on a loose grid plus a batch of requests between their free
// pins. maxi roughly controls how much of both. Requests are not guaranteed
// to be routable; the point is that the router must survive them.
func GenDoc(maxi int) (_ *cpw.Document, err error) {
	gs := &genState{
		rand: mathrand.New(mathrand.NewSource(time.Now().UnixNano())),
		d:    cpwdesign.NewDesign(),
	}
	err = gs.gen(maxi)
	if err != nil {
		return nil, err
	}
	design, err := cpwdesign.SerializeDesign(gs.d)
	if err != nil {
		return nil, err
	}
	return &cpw.Document{Design: design, Routes: gs.reqs}, nil
}

type genState struct {
	rand *mathrand.Rand
	d    *cpwdesign.Design

	free []cpwdesign.PinRef
	reqs []cpw.RouteRequest
}

func (gs *genState) gen(maxi int) error {
	maxi = gs.rand.Intn(maxi) + 1

	// Two components up front so there is always something to route
	// between.
	for i := 0; i < 2; i++ {
		if err := gs.component(); err != nil {
			return err
		}
	}
	for i := 0; i < maxi; i++ {
		switch gs.roll(35, 65) {
		case 0:
			// 35% chance of placing another component.
			if err := gs.component(); err != nil {
				return err
			}
		case 1:
			// 65% chance of requesting a route between two free pins.
			gs.request()
		}
	}
	return nil
}

// component places a random footprint in the next free grid cell. Boxes
// keep a moat of at least 4 units to their cell border so leads always have
// room to escape.
func (gs *genState) component() error {
	i := len(gs.d.Components())
	id := fmt.Sprintf("c%d", i)

	cellX := cellPitch * float64(i%8)
	cellY := cellPitch * float64(i/8)
	w := 4 + gs.rand.Float64()*12
	h := 4 + gs.rand.Float64()*12
	x1 := cellX + 4 + gs.rand.Float64()*(cellPitch-8-w)
	y1 := cellY + 4 + gs.rand.Float64()*(cellPitch-8-h)

	c := cpwdesign.NewComponent(id, geo.NewBoxFromCorners(x1, y1, x1+w, y1+h))
	for p := 0; p < 1+gs.rand.Intn(4); p++ {
		pin := gs.pin(p, x1, y1, w, h)
		if err := c.AddPin(pin); err != nil {
			return err
		}
		gs.free = append(gs.free, cpwdesign.PinRef{Component: id, Pin: pin.Name})
	}
	return gs.d.Place(c)
}

// pin sits somewhere along a random side of the footprint, facing outward.
func (gs *genState) pin(i int, x1, y1, w, h float64) *cpwdesign.Pin {
	frac := 0.2 + gs.rand.Float64()*0.6
	var middle *geo.Point
	var normal geo.Vector
	switch gs.rand.Intn(4) {
	case 0:
		middle, normal = geo.NewPoint(x1, y1+frac*h), geo.NewVector(-1, 0)
	case 1:
		middle, normal = geo.NewPoint(x1+w, y1+frac*h), geo.NewVector(1, 0)
	case 2:
		middle, normal = geo.NewPoint(x1+frac*w, y1), geo.NewVector(0, -1)
	default:
		middle, normal = geo.NewPoint(x1+frac*w, y1+h), geo.NewVector(0, 1)
	}
	var gap float64
	if gs.roll(50, 50) == 1 {
		gap = gs.rand.Float64()
	}
	return &cpwdesign.Pin{
		Name:   fmt.Sprintf("p%d", i),
		Middle: middle,
		Normal: normal,
		Width:  0.5 + gs.rand.Float64()*1.5,
		Gap:    gap,
	}
}

// request consumes two free pins on different components. Rolls that land
// twice on the same component come up empty.
func (gs *genState) request() {
	if len(gs.free) < 2 {
		return
	}
	ai := gs.rand.Intn(len(gs.free))
	bi := gs.rand.Intn(len(gs.free))
	a, b := gs.free[ai], gs.free[bi]
	if a.Component == b.Component {
		return
	}
	if ai < bi {
		ai, bi = bi, ai
	}
	gs.free = append(gs.free[:ai], gs.free[ai+1:]...)
	gs.free = append(gs.free[:bi], gs.free[bi+1:]...)

	opts := cpwroute.RawOptions{
		Start:      a,
		End:        b,
		TraceWidth: gs.dim(0.5 + gs.rand.Float64()),
	}
	switch gs.roll(60, 20, 20) {
	case 1:
		opts.Strategies = []cpwroute.Strategy{cpwroute.StrategyMeander}
		opts.TotalLength = gs.dim(gs.manhattan(a, b) * (1.1 + gs.rand.Float64()))
		opts.Meander.Spacing = gs.dim(1 + gs.rand.Float64()*2)
	case 2:
		opts.Strategies = []cpwroute.Strategy{cpwroute.StrategyPathfinder}
		opts.Step = gs.dim(1 + gs.rand.Float64()*2)
	}
	if gs.roll(70, 30) == 1 {
		opts.Fillet = gs.dim(gs.rand.Float64() * 0.3)
	}
	if gs.roll(90, 10) == 1 {
		opts.AvoidCollision = go2.Pointer(false)
	}
	if gs.roll(80, 20) == 1 {
		opts.Lead.StartJogs = gs.jogs()
	}
	if gs.roll(80, 20) == 1 {
		opts.Anchors = []*geo.Point{gs.anchor()}
	}

	gs.reqs = append(gs.reqs, cpw.RouteRequest{
		ID:      fmt.Sprintf("bus%d", len(gs.reqs)),
		Options: opts,
	})
}

func (gs *genState) jogs() []cpwroute.RawJog {
	turns := []string{"L", "R", "S", "L45", "R30"}
	var jogs []cpwroute.RawJog
	for i := 0; i < 1+gs.rand.Intn(2); i++ {
		jogs = append(jogs, cpwroute.RawJog{
			Turn:   turns[gs.rand.Intn(len(turns))],
			Length: gs.dim(1 + gs.rand.Float64()*2),
		})
	}
	return jogs
}

// anchor lands on a grid crossing between cells, which every footprint
// keeps its moat away from.
func (gs *genState) anchor() *geo.Point {
	cells := len(gs.d.Components())
	cols := cells
	if cols > 8 {
		cols = 8
	}
	rows := (cells-1)/8 + 1
	return geo.NewPoint(
		cellPitch*float64(gs.rand.Intn(cols+1)),
		cellPitch*float64(gs.rand.Intn(rows+1)),
	)
}

func (gs *genState) manhattan(a, b cpwdesign.PinRef) float64 {
	pa := gs.middle(a)
	pb := gs.middle(b)
	return math.Abs(pa.X-pb.X) + math.Abs(pa.Y-pb.Y)
}

func (gs *genState) middle(ref cpwdesign.PinRef) *geo.Point {
	c, _ := gs.d.Component(ref.Component)
	p, _ := c.Pin(ref.Pin)
	return p.Middle
}

func (gs *genState) dim(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (gs *genState) roll(percents ...int) int {
	n := gs.rand.Intn(100)
	acc := 0
	for i, p := range percents {
		acc += p
		if n < acc {
			return i
		}
	}
	return len(percents) - 1
}
