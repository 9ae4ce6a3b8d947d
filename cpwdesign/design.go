// Package cpwdesign models the chip design a router runs against: placed
// components with footprint boxes, named pins on their boundaries, and the
// net table wiring pins together.
package cpwdesign

import (
	"fmt"
)

type Design struct {
	order      []string
	components map[string]*Component
	nets       *Netlist
}

func NewDesign() *Design {
	return &Design{
		components: make(map[string]*Component),
		nets:       NewNetlist(),
	}
}

// Place adds a component. Component ids are unique within a design.
func (d *Design) Place(c *Component) error {
	if _, ok := d.components[c.ID]; ok {
		return fmt.Errorf("component %q is already placed", c.ID)
	}
	d.order = append(d.order, c.ID)
	d.components[c.ID] = c
	return nil
}

func (d *Design) Component(id string) (*Component, bool) {
	c, ok := d.components[id]
	return c, ok
}

// Components returns the placed components in placement order.
func (d *Design) Components() []*Component {
	out := make([]*Component, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.components[id])
	}
	return out
}

// PinTable returns the pin resolution handle routing requests use.
func (d *Design) PinTable() *PinTable {
	return &PinTable{design: d}
}

func (d *Design) Nets() *Netlist {
	return d.nets
}

// Connect wires two existing, unconnected pins together on a fresh net.
func (d *Design) Connect(a, b PinRef) (int, error) {
	for _, ref := range []PinRef{a, b} {
		c, ok := d.components[ref.Component]
		if !ok {
			return 0, PinNotFoundError{Ref: ref}
		}
		if _, ok := c.Pin(ref.Pin); !ok {
			return 0, PinNotFoundError{Ref: ref}
		}
		if net, connected := d.nets.NetOf(ref); connected {
			return 0, PinAlreadyConnectedError{Ref: ref, Net: net}
		}
	}
	return d.nets.Connect(a, b), nil
}
