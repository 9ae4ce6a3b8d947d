package cpwdesign

import (
	"fmt"

	"oss.terrastruct.com/cpw/lib/geo"
)

// Pin is a connection point on the boundary of a component. Middle is the
// midpoint of the pin edge and Normal the outward unit vector perpendicular
// to it. Width is the trace width a mating route should pick up, and Gap the
// dielectric gap for coplanar waveguides (0 for plain traces).
type Pin struct {
	Name   string
	Middle *geo.Point
	Normal geo.Vector
	Width  float64
	Gap    float64
}

// PinRef addresses a pin by component id and pin name.
type PinRef struct {
	Component string `json:"component"`
	Pin       string `json:"pin"`
}

func (r PinRef) String() string {
	return r.Component + "." + r.Pin
}

type PinNotFoundError struct {
	Ref PinRef
}

func (e PinNotFoundError) Error() string {
	return fmt.Sprintf("pin %s does not exist", e.Ref)
}

type PinAlreadyConnectedError struct {
	Ref PinRef
	Net int
}

func (e PinAlreadyConnectedError) Error() string {
	return fmt.Sprintf("pin %s is already connected on net %d", e.Ref, e.Net)
}

// PinTable resolves pin references for routing requests. It is a live handle
// on the design's pin and net state, not a copy.
type PinTable struct {
	design *Design
}

// Resolve returns the referenced pin. It fails with PinNotFoundError if the
// component or pin does not exist, and with PinAlreadyConnectedError if the
// pin already sits on a net.
func (t *PinTable) Resolve(ref PinRef) (*Pin, error) {
	c, ok := t.design.Component(ref.Component)
	if !ok {
		return nil, PinNotFoundError{Ref: ref}
	}
	p, ok := c.Pin(ref.Pin)
	if !ok {
		return nil, PinNotFoundError{Ref: ref}
	}
	if net, connected := t.design.nets.NetOf(ref); connected {
		return nil, PinAlreadyConnectedError{Ref: ref, Net: net}
	}
	return p, nil
}
