package cpwroute

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/cpw/cpwdesign"
	"oss.terrastruct.com/cpw/lib/geo"
)

// UnitParser turns a dimension string like "6.0 mm" into design units.
// Parsing stays a collaborator concern; the CLI wires one in.
type UnitParser func(s string) (float64, error)

// Strategy selects how one segment between anchors is connected.
type Strategy string

const (
	StrategySimple     Strategy = "simple"
	StrategyMeander    Strategy = "meander"
	StrategyPathfinder Strategy = "pathfinder"
)

func (s Strategy) validate() error {
	switch s {
	case StrategySimple, StrategyMeander, StrategyPathfinder:
		return nil
	}
	return fmt.Errorf("unknown strategy %q", string(s))
}

// Jog is one turn-then-extend step of a jogged lead extension. Positive
// angles turn counter-clockwise.
type Jog struct {
	AngleDeg float64
	Length   float64
}

type LeadOptions struct {
	StartStraight float64
	EndStraight   float64
	StartJogs     []Jog
	EndJogs       []Jog
}

type MeanderOptions struct {
	Spacing           float64
	Asymmetry         float64
	Snap              bool
	PreventShortEdges bool
}

// Options is the validated configuration of one routing request. Anchors
// are interior waypoints in visit order; Strategies[i] picks how segment i
// is connected, where segment i runs from the previous tip to anchor i and
// the final segment closes onto the end lead. Missing entries default to
// the simple connector.
type Options struct {
	Start cpwdesign.PinRef
	End   cpwdesign.PinRef

	Lead LeadOptions

	TotalLength float64
	TraceWidth  float64
	TraceGap    float64
	Fillet      float64

	// Opaque pass-through tags recorded on the built route.
	Chip  string
	Layer string

	Meander MeanderOptions

	Anchors    []*geo.Point
	Strategies map[int]Strategy

	Step           float64
	AvoidCollision bool
}

func (o *Options) strategyFor(segment int) Strategy {
	if s, ok := o.Strategies[segment]; ok {
		return s
	}
	return StrategySimple
}

func (o *Options) hasStrategy(s Strategy) bool {
	for i := 0; i <= len(o.Anchors); i++ {
		if o.strategyFor(i) == s {
			return true
		}
	}
	return false
}

func (o *Options) validate() error {
	if o.Start == (cpwdesign.PinRef{}) || o.End == (cpwdesign.PinRef{}) {
		return fmt.Errorf("start and end pins are required")
	}
	if o.TraceWidth <= 0 {
		return fmt.Errorf("trace width must be positive, got %v", o.TraceWidth)
	}
	if o.TraceGap < 0 {
		return fmt.Errorf("trace gap must not be negative, got %v", o.TraceGap)
	}
	if o.Fillet < 0 {
		return fmt.Errorf("fillet must not be negative, got %v", o.Fillet)
	}
	if o.Lead.StartStraight < 0 || o.Lead.EndStraight < 0 {
		return fmt.Errorf("lead extensions must not be negative")
	}
	for i, a := range o.Anchors {
		if a == nil {
			return fmt.Errorf("anchor %d is missing a position", i)
		}
	}
	segments := maps.Keys(o.Strategies)
	slices.Sort(segments)
	for _, segment := range segments {
		if segment < 0 || segment > len(o.Anchors) {
			return fmt.Errorf("strategy for segment %d is out of range: %d anchors make %d segments", segment, len(o.Anchors), len(o.Anchors)+1)
		}
		if err := o.Strategies[segment].validate(); err != nil {
			return err
		}
	}
	if o.hasStrategy(StrategyMeander) {
		if o.Meander.Spacing <= 0 {
			return fmt.Errorf("meander spacing must be positive, got %v", o.Meander.Spacing)
		}
		if o.TotalLength <= 0 {
			return fmt.Errorf("total length must be positive to meander, got %v", o.TotalLength)
		}
	}
	if o.hasStrategy(StrategyPathfinder) && o.Step <= 0 {
		return fmt.Errorf("step size must be positive to pathfind, got %v", o.Step)
	}
	return nil
}

// RawOptions mirrors Options with every dimension kept as the string it
// arrived as. Resolve validates once at the boundary; past it the engine
// only sees floats.
type RawOptions struct {
	Start cpwdesign.PinRef `json:"start"`
	End   cpwdesign.PinRef `json:"end"`

	Lead RawLeadOptions `json:"lead"`

	TotalLength string `json:"total_length,omitempty"`
	TraceWidth  string `json:"trace_width"`
	TraceGap    string `json:"trace_gap,omitempty"`
	Fillet      string `json:"fillet,omitempty"`

	Chip  string `json:"chip,omitempty"`
	Layer string `json:"layer,omitempty"`

	Meander RawMeanderOptions `json:"meander"`

	Anchors    []*geo.Point `json:"anchors,omitempty"`
	Strategies []Strategy   `json:"strategies,omitempty"`

	Step           string `json:"step_size,omitempty"`
	AvoidCollision *bool  `json:"avoid_collision,omitempty"`
}

type RawLeadOptions struct {
	StartStraight string   `json:"start_straight,omitempty"`
	EndStraight   string   `json:"end_straight,omitempty"`
	StartJogs     []RawJog `json:"start_jogs,omitempty"`
	EndJogs       []RawJog `json:"end_jogs,omitempty"`
}

// RawJog is a turn written the way layouts are dictated: "L" and "R" for
// quarter turns, "L30"/"R30" for signed partial turns, "S" for straight, or
// a bare signed angle in degrees, counter-clockwise positive.
type RawJog struct {
	Turn   string `json:"turn"`
	Length string `json:"length"`
}

type RawMeanderOptions struct {
	Spacing           string `json:"spacing,omitempty"`
	Asymmetry         string `json:"asymmetry,omitempty"`
	Snap              *bool  `json:"snap,omitempty"`
	PreventShortEdges *bool  `json:"prevent_short_edges,omitempty"`
}

// Resolve parses every dimension string through parse and validates the
// result. Bools default on: collision avoidance, grid snapping and short
// edge prevention are all opted out of, not into.
func (r *RawOptions) Resolve(parse UnitParser) (_ *Options, err error) {
	defer xdefer.Errorf(&err, "failed to resolve route options")

	o := &Options{
		Start: r.Start,
		End:   r.End,
		Chip:  r.Chip,
		Layer: r.Layer,
		Meander: MeanderOptions{
			Snap:              r.Meander.Snap == nil || *r.Meander.Snap,
			PreventShortEdges: r.Meander.PreventShortEdges == nil || *r.Meander.PreventShortEdges,
		},
		AvoidCollision: r.AvoidCollision == nil || *r.AvoidCollision,
	}

	dims := []struct {
		name string
		raw  string
		out  *float64
	}{
		{"total_length", r.TotalLength, &o.TotalLength},
		{"trace_width", r.TraceWidth, &o.TraceWidth},
		{"trace_gap", r.TraceGap, &o.TraceGap},
		{"fillet", r.Fillet, &o.Fillet},
		{"lead.start_straight", r.Lead.StartStraight, &o.Lead.StartStraight},
		{"lead.end_straight", r.Lead.EndStraight, &o.Lead.EndStraight},
		{"meander.spacing", r.Meander.Spacing, &o.Meander.Spacing},
		{"meander.asymmetry", r.Meander.Asymmetry, &o.Meander.Asymmetry},
		{"step_size", r.Step, &o.Step},
	}
	for _, d := range dims {
		if d.raw == "" {
			continue
		}
		v, err := parse(d.raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.name, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%s: %q is not a finite dimension", d.name, d.raw)
		}
		*d.out = v
	}

	o.Lead.StartJogs, err = resolveJogs(r.Lead.StartJogs, parse)
	if err != nil {
		return nil, fmt.Errorf("lead.start_jogs: %w", err)
	}
	o.Lead.EndJogs, err = resolveJogs(r.Lead.EndJogs, parse)
	if err != nil {
		return nil, fmt.Errorf("lead.end_jogs: %w", err)
	}

	for _, a := range r.Anchors {
		if a == nil {
			return nil, fmt.Errorf("null anchor")
		}
		o.Anchors = append(o.Anchors, a.Copy())
	}
	if len(r.Strategies) > len(r.Anchors)+1 {
		return nil, fmt.Errorf("%d strategies for %d segments", len(r.Strategies), len(r.Anchors)+1)
	}
	for i, s := range r.Strategies {
		if s == "" {
			continue
		}
		if o.Strategies == nil {
			o.Strategies = make(map[int]Strategy)
		}
		o.Strategies[i] = s
	}

	if err := o.validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func resolveJogs(raw []RawJog, parse UnitParser) ([]Jog, error) {
	var jogs []Jog
	for i, rj := range raw {
		angle, err := parseTurn(rj.Turn)
		if err != nil {
			return nil, fmt.Errorf("jog %d: %w", i, err)
		}
		length, err := parse(rj.Length)
		if err != nil {
			return nil, fmt.Errorf("jog %d length: %w", i, err)
		}
		if math.IsNaN(length) || math.IsInf(length, 0) {
			return nil, fmt.Errorf("jog %d length: %q is not a finite dimension", i, rj.Length)
		}
		jogs = append(jogs, Jog{AngleDeg: angle, Length: length})
	}
	return jogs, nil
}

func parseTurn(turn string) (float64, error) {
	t := strings.TrimSpace(turn)
	switch t {
	case "L", "left":
		return 90, nil
	case "R", "right":
		return -90, nil
	case "S", "straight":
		return 0, nil
	}
	sign := 1.
	switch {
	case strings.HasPrefix(t, "L"), strings.HasPrefix(t, "left"):
		t = strings.TrimPrefix(strings.TrimPrefix(t, "left"), "L")
	case strings.HasPrefix(t, "R"), strings.HasPrefix(t, "right"):
		sign = -1
		t = strings.TrimPrefix(strings.TrimPrefix(t, "right"), "R")
	}
	deg, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0, fmt.Errorf("unsupported turn %q: want L, R, S, L<deg>, R<deg> or a signed angle", turn)
	}
	return sign * deg, nil
}
