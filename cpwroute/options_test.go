package cpwroute

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"oss.terrastruct.com/cpw/cpwdesign"
	"oss.terrastruct.com/cpw/lib/geo"
)

func parseBare(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

func parseMicron(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSuffix(s, " um"), 64)
}

func TestResolveDefaults(t *testing.T) {
	t.Parallel()

	r := &RawOptions{
		Start:      cpwdesign.PinRef{Component: "q1", Pin: "readout"},
		End:        cpwdesign.PinRef{Component: "q2", Pin: "readout"},
		TraceWidth: "10",
	}
	o, err := r.Resolve(parseBare)
	assert.NoError(t, err)

	assert.True(t, o.AvoidCollision)
	assert.True(t, o.Meander.Snap)
	assert.True(t, o.Meander.PreventShortEdges)
	assert.Equal(t, 0.0, o.TraceGap)
	assert.Equal(t, StrategySimple, o.strategyFor(0))
}

func TestResolveDimensions(t *testing.T) {
	t.Parallel()

	off := false
	r := &RawOptions{
		Start:       cpwdesign.PinRef{Component: "q1", Pin: "readout"},
		End:         cpwdesign.PinRef{Component: "q2", Pin: "readout"},
		TotalLength: "4000 um",
		TraceWidth:  "10 um",
		TraceGap:    "6 um",
		Fillet:      "90 um",
		Lead: RawLeadOptions{
			StartStraight: "100 um",
			EndStraight:   "50 um",
			StartJogs:     []RawJog{{Turn: "L", Length: "200 um"}},
		},
		Meander: RawMeanderOptions{
			Spacing:   "200 um",
			Asymmetry: "-50 um",
			Snap:      &off,
		},
		Strategies:     []Strategy{StrategyMeander},
		Step:           "25 um",
		AvoidCollision: &off,
	}
	o, err := r.Resolve(parseMicron)
	assert.NoError(t, err)

	assert.Equal(t, 4000.0, o.TotalLength)
	assert.Equal(t, 10.0, o.TraceWidth)
	assert.Equal(t, 6.0, o.TraceGap)
	assert.Equal(t, 90.0, o.Fillet)
	assert.Equal(t, 100.0, o.Lead.StartStraight)
	assert.Equal(t, 50.0, o.Lead.EndStraight)
	assert.Equal(t, []Jog{{AngleDeg: 90, Length: 200}}, o.Lead.StartJogs)
	assert.Equal(t, 200.0, o.Meander.Spacing)
	assert.Equal(t, -50.0, o.Meander.Asymmetry)
	assert.False(t, o.Meander.Snap)
	assert.Equal(t, 25.0, o.Step)
	assert.False(t, o.AvoidCollision)
}

func TestResolveStrategies(t *testing.T) {
	t.Parallel()

	r := &RawOptions{
		Start:       cpwdesign.PinRef{Component: "q1", Pin: "readout"},
		End:         cpwdesign.PinRef{Component: "q2", Pin: "readout"},
		TotalLength: "40",
		TraceWidth:  "1",
		Meander:     RawMeanderOptions{Spacing: "2"},
		Anchors:     []*geo.Point{geo.NewPoint(5, 5), geo.NewPoint(10, 5)},
		Strategies:  []Strategy{"", StrategyMeander, StrategyPathfinder},
		Step:        "1",
	}
	o, err := r.Resolve(parseBare)
	assert.NoError(t, err)

	// Blank entries fall back to the simple connector.
	assert.Equal(t, StrategySimple, o.strategyFor(0))
	assert.Equal(t, StrategyMeander, o.strategyFor(1))
	assert.Equal(t, StrategyPathfinder, o.strategyFor(2))
	assert.Equal(t, 2, len(o.Strategies))

	// Anchors are copied so callers cannot move them under the engine.
	assert.True(t, o.Anchors[0].Equals(r.Anchors[0]))
	assert.False(t, o.Anchors[0] == r.Anchors[0])
}

func TestResolveRejects(t *testing.T) {
	t.Parallel()

	base := func() RawOptions {
		return RawOptions{
			Start:      cpwdesign.PinRef{Component: "q1", Pin: "readout"},
			End:        cpwdesign.PinRef{Component: "q2", Pin: "readout"},
			TraceWidth: "10",
		}
	}

	for _, tc := range []struct {
		name string
		raw  func() RawOptions
	}{
		{
			name: "missing pins",
			raw: func() RawOptions {
				r := base()
				r.Start = cpwdesign.PinRef{}
				return r
			},
		},
		{
			name: "missing trace width",
			raw: func() RawOptions {
				r := base()
				r.TraceWidth = ""
				return r
			},
		},
		{
			name: "unparseable trace width",
			raw: func() RawOptions {
				r := base()
				r.TraceWidth = "ten"
				return r
			},
		},
		{
			name: "non-finite trace width",
			raw: func() RawOptions {
				r := base()
				r.TraceWidth = "NaN"
				return r
			},
		},
		{
			name: "non-finite jog length",
			raw: func() RawOptions {
				r := base()
				r.Lead.StartJogs = []RawJog{{Turn: "L", Length: "Inf"}}
				return r
			},
		},
		{
			name: "negative trace gap",
			raw: func() RawOptions {
				r := base()
				r.TraceGap = "-1"
				return r
			},
		},
		{
			name: "negative fillet",
			raw: func() RawOptions {
				r := base()
				r.Fillet = "-5"
				return r
			},
		},
		{
			name: "negative lead extension",
			raw: func() RawOptions {
				r := base()
				r.Lead.StartStraight = "-2"
				return r
			},
		},
		{
			name: "null anchor",
			raw: func() RawOptions {
				r := base()
				r.Anchors = []*geo.Point{nil}
				return r
			},
		},
		{
			name: "more strategies than segments",
			raw: func() RawOptions {
				r := base()
				r.Strategies = []Strategy{StrategySimple, StrategySimple}
				return r
			},
		},
		{
			name: "unknown strategy",
			raw: func() RawOptions {
				r := base()
				r.Strategies = []Strategy{"zigzag"}
				return r
			},
		},
		{
			name: "meander without spacing",
			raw: func() RawOptions {
				r := base()
				r.TotalLength = "40"
				r.Strategies = []Strategy{StrategyMeander}
				return r
			},
		},
		{
			name: "meander without total length",
			raw: func() RawOptions {
				r := base()
				r.Meander.Spacing = "2"
				r.Strategies = []Strategy{StrategyMeander}
				return r
			},
		},
		{
			name: "pathfinder without step size",
			raw: func() RawOptions {
				r := base()
				r.Strategies = []Strategy{StrategyPathfinder}
				return r
			},
		},
		{
			name: "bad jog turn",
			raw: func() RawOptions {
				r := base()
				r.Lead.EndJogs = []RawJog{{Turn: "U", Length: "5"}}
				return r
			},
		},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := tc.raw()
			_, err := r.Resolve(parseBare)
			assert.Error(t, err)
		})
	}
}

func TestParseTurn(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		turn string
		want float64
	}{
		{"L", 90},
		{"left", 90},
		{"R", -90},
		{"right", -90},
		{"S", 0},
		{"straight", 0},
		{"L30", 30},
		{"R45", -45},
		{"left2.5", 2.5},
		{"right15", -15},
		{"30", 30},
		{"-30", -30},
		{" L ", 90},
	} {
		tc := tc
		t.Run(tc.turn, func(t *testing.T) {
			t.Parallel()
			got, err := parseTurn(tc.turn)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := parseTurn("U")
	assert.Error(t, err)
	_, err = parseTurn("Lx")
	assert.Error(t, err)
}
