package cpwdesign

import (
	"encoding/json"
	"fmt"

	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/cpw/lib/geo"
)

type SerializedDesign struct {
	Components []SerializedComponent `json:"components"`
	Nets       []NetEntry            `json:"nets,omitempty"`
}

type SerializedComponent struct {
	ID   string          `json:"id"`
	Box  *SerializedBox  `json:"box,omitempty"`
	Pins []SerializedPin `json:"pins,omitempty"`
}

// SerializedBox holds two opposite corners, in any order.
type SerializedBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

type SerializedPin struct {
	Name   string     `json:"name"`
	Middle *geo.Point `json:"middle"`
	Normal geo.Vector `json:"normal"`
	Width  float64    `json:"width"`
	Gap    float64    `json:"gap,omitempty"`
}

func DeserializeDesign(b []byte) (_ *Design, err error) {
	defer xdefer.Errorf(&err, "failed to deserialize design")

	var sd SerializedDesign
	if err := json.Unmarshal(b, &sd); err != nil {
		return nil, err
	}

	d := NewDesign()
	for _, sc := range sd.Components {
		if sc.ID == "" {
			return nil, fmt.Errorf("component without an id")
		}
		var box *geo.Box
		if sc.Box != nil {
			box = geo.NewBoxFromCorners(sc.Box.X1, sc.Box.Y1, sc.Box.X2, sc.Box.Y2)
		}
		c := NewComponent(sc.ID, box)
		for _, sp := range sc.Pins {
			p, err := deserializePin(sc, sp)
			if err != nil {
				return nil, err
			}
			if err := c.AddPin(p); err != nil {
				return nil, err
			}
		}
		if err := d.Place(c); err != nil {
			return nil, err
		}
	}

	if len(sd.Nets)%2 != 0 {
		return nil, fmt.Errorf("net table has %d entries, want pairs", len(sd.Nets))
	}
	for i := 0; i+1 < len(sd.Nets); i += 2 {
		a, b := sd.Nets[i], sd.Nets[i+1]
		if a.Net != b.Net {
			return nil, fmt.Errorf("net entries %d and %d are not a pair", i, i+1)
		}
		if _, err := d.Connect(a.Ref, b.Ref); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func deserializePin(sc SerializedComponent, sp SerializedPin) (*Pin, error) {
	if sp.Middle == nil {
		return nil, fmt.Errorf("pin %s.%s has no middle point", sc.ID, sp.Name)
	}
	if len(sp.Normal) != 2 || sp.Normal.Length() == 0 {
		return nil, fmt.Errorf("pin %s.%s has no usable normal", sc.ID, sp.Name)
	}
	if sp.Width <= 0 {
		return nil, fmt.Errorf("pin %s.%s must have a positive width", sc.ID, sp.Name)
	}
	if sp.Gap < 0 {
		return nil, fmt.Errorf("pin %s.%s must not have a negative gap", sc.ID, sp.Name)
	}
	if sc.Box != nil {
		box := geo.NewBoxFromCorners(sc.Box.X1, sc.Box.Y1, sc.Box.X2, sc.Box.Y2)
		if !box.Contains(sp.Middle) {
			return nil, fmt.Errorf("pin %s.%s sits outside its component box", sc.ID, sp.Name)
		}
	}
	return &Pin{
		Name:   sp.Name,
		Middle: sp.Middle.Copy(),
		Normal: sp.Normal.Unit(),
		Width:  sp.Width,
		Gap:    sp.Gap,
	}, nil
}

func SerializeDesign(d *Design) (_ []byte, err error) {
	defer xdefer.Errorf(&err, "failed to serialize design")

	sd := SerializedDesign{Nets: d.nets.Entries()}
	for _, c := range d.Components() {
		sc := SerializedComponent{ID: c.ID}
		if c.Box != nil {
			bl := c.Box.BottomLeft
			sc.Box = &SerializedBox{
				X1: bl.X,
				Y1: bl.Y,
				X2: bl.X + c.Box.Width,
				Y2: bl.Y + c.Box.Height,
			}
		}
		for _, p := range c.Pins() {
			sc.Pins = append(sc.Pins, SerializedPin{
				Name:   p.Name,
				Middle: p.Middle,
				Normal: p.Normal,
				Width:  p.Width,
				Gap:    p.Gap,
			})
		}
		sd.Components = append(sd.Components, sc)
	}
	return json.MarshalIndent(sd, "", "  ")
}
