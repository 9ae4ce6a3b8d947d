package cpwdesign

import (
	"fmt"

	"oss.terrastruct.com/cpw/lib/geo"
)

// Component is a placed design element: a footprint box plus named pins.
// Pins keep their insertion order.
type Component struct {
	ID  string
	Box *geo.Box

	pinNames []string
	pins     map[string]*Pin
}

func NewComponent(id string, box *geo.Box) *Component {
	return &Component{
		ID:   id,
		Box:  box,
		pins: make(map[string]*Pin),
	}
}

func (c *Component) AddPin(p *Pin) error {
	if p.Name == "" {
		return fmt.Errorf("component %q: pin must be named", c.ID)
	}
	if _, ok := c.pins[p.Name]; ok {
		return fmt.Errorf("component %q already has a pin named %q", c.ID, p.Name)
	}
	c.pinNames = append(c.pinNames, p.Name)
	c.pins[p.Name] = p
	return nil
}

func (c *Component) Pin(name string) (*Pin, bool) {
	p, ok := c.pins[name]
	return p, ok
}

// Pins returns the component's pins in insertion order.
func (c *Component) Pins() []*Pin {
	out := make([]*Pin, 0, len(c.pinNames))
	for _, name := range c.pinNames {
		out = append(out, c.pins[name])
	}
	return out
}
