package cpwroute

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"oss.terrastruct.com/cpw/lib/geo"
	"oss.terrastruct.com/cpw/lib/log"
)

// fullRoute closes a strictly-between point list with its endpoints the way
// the orchestrator does before measuring.
func fullRoute(start RoutePoint, pts geo.Route, end RoutePoint) geo.Route {
	full := make(geo.Route, 0, len(pts)+2)
	full = append(full, start.Pos)
	full = append(full, pts...)
	full = append(full, end.Pos)
	return full
}

func TestMeanderHitsTargetLength(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)
	m := meanderFitter{spacing: 1, snap: true}

	start := at(0, 0, geo.NewVector(1, 0))
	end := at(10, 0, geo.NewVector(-1, 0))
	pts, err := m.fit(ctx, start, end, 14)
	assert.NoError(t, err)
	assert.Equal(t, 21, len(pts))
	assert.InDelta(t, 14, fullRoute(start, pts, end).Length(), 1e-6)
}

func TestMeanderParity(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)
	m := meanderFitter{spacing: 1, snap: true}

	// Same-side endpoint directions force an odd period count: 10 whole
	// periods fit, so one is dropped.
	pts, err := m.fit(ctx, at(0, 0, geo.NewVector(0, 1)), at(10, 0, geo.NewVector(0, 1)), 14)
	assert.NoError(t, err)
	assert.Equal(t, 2*9+1, len(pts))

	// Opposite sides keep the even count.
	pts, err = m.fit(ctx, at(0, 0, geo.NewVector(0, 1)), at(10, 0, geo.NewVector(0, -1)), 14)
	assert.NoError(t, err)
	assert.Equal(t, 2*10+1, len(pts))
}

func TestMeanderFirstSwing(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)
	m := meanderFitter{spacing: 1, snap: true}

	// The first excursion swings to the side the start pin points at.
	pts, err := m.fit(ctx, at(0, 0, geo.NewVector(0, 1)), at(10, 0, geo.NewVector(0, 1)), 14)
	assert.NoError(t, err)
	assert.True(t, pts[0].Y > 0)

	pts, err = m.fit(ctx, at(0, 0, geo.NewVector(0, -1)), at(10, 0, geo.NewVector(0, -1)), 14)
	assert.NoError(t, err)
	assert.True(t, pts[0].Y < 0)
}

func TestMeanderZeroPeriods(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	// The spacing does not fit once, so the hop stays straight.
	m := meanderFitter{spacing: 20, snap: true}
	pts, err := m.fit(ctx, at(0, 0, geo.NewVector(1, 0)), at(10, 0, geo.NewVector(-1, 0)), 14)
	assert.NoError(t, err)
	assert.Equal(t, geo.Route{}, pts)

	// A single period dropped by the parity rule also degrades to straight.
	m = meanderFitter{spacing: 6, snap: true}
	pts, err = m.fit(ctx, at(0, 0, geo.NewVector(0, 1)), at(10, 0, geo.NewVector(0, -1)), 14)
	assert.NoError(t, err)
	assert.Equal(t, geo.Route{}, pts)
}

func TestMeanderZeroHop(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)
	m := meanderFitter{spacing: 1, snap: true}

	pts, err := m.fit(ctx, at(3, 3, geo.NewVector(1, 0)), at(3, 3, geo.NewVector(-1, 0)), 5)
	assert.NoError(t, err)
	assert.Equal(t, geo.Route{}, pts)
}

func TestMeanderInfeasibleTarget(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)
	m := meanderFitter{spacing: 1, snap: true}

	_, err := m.fit(ctx, at(0, 0, geo.NewVector(1, 0)), at(10, 0, geo.NewVector(-1, 0)), 5)
	var infeasible LengthInfeasibleError
	assert.True(t, errors.As(err, &infeasible))
	assert.Equal(t, 5.0, infeasible.Target)
	assert.Equal(t, 10.0, infeasible.Minimum)
}

func TestMeanderPeriodCap(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)
	// A near-zero spacing over a 10 unit span asks for millions of
	// periods. The fitter refuses rather than allocating them.
	m := meanderFitter{spacing: 1e-6, snap: true}

	_, err := m.fit(ctx, at(0, 0, geo.NewVector(1, 0)), at(10, 0, geo.NewVector(-1, 0)), 20)
	assert.Error(t, err)
	var infeasible LengthInfeasibleError
	assert.False(t, errors.As(err, &infeasible))
}

func TestMeanderDiagonalFrame(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)
	// Without grid snapping the frame follows the displacement, so the
	// zig-zag tilts with the hop and the length fit still holds.
	m := meanderFitter{spacing: 1, snap: false}

	start := at(0, 0, geo.NewVector(0, 1))
	end := at(6, 8, geo.NewVector(0, 1))
	pts, err := m.fit(ctx, start, end, 14)
	assert.NoError(t, err)
	assert.Equal(t, 2*9+1, len(pts))
	assert.InDelta(t, 14, fullRoute(start, pts, end).Length(), 1e-6)
}

func TestMeanderAsymmetryOverflowClamp(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)
	m := meanderFitter{spacing: 1, asymmetry: 0.5, snap: true}

	// The asymmetry exceeds the perpendicular excursion and the start pin
	// points against it, so the first period is pinned back flush with the
	// start station.
	start := at(0, 0, geo.NewVector(1, -1))
	end := at(10, 0, geo.NewVector(1, 1))
	pts, err := m.fit(ctx, start, end, 13)
	assert.NoError(t, err)
	assert.True(t, pts[0].Equals(geo.NewPoint(0, 0)))
	assert.True(t, pts[1].Equals(geo.NewPoint(1, 0)))
	// Inner periods keep their excursion.
	assert.True(t, pts[2].Equals(geo.NewPoint(1, 0.6)))
}

func TestAdjustLengthSpreadsDelta(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)
	m := meanderFitter{spacing: 1, snap: true}

	start := at(0, 0, geo.NewVector(1, 0))
	end := at(10, 0, geo.NewVector(-1, 0))
	pts, err := m.fit(ctx, start, end, 14)
	if err != nil {
		t.Fatal(err)
	}

	grown := m.adjustLength(2, pts, start, end)
	assert.InDelta(t, 16, fullRoute(start, grown, end).Length(), 1e-6)

	shrunk := m.adjustLength(-2, pts, start, end)
	assert.InDelta(t, 12, fullRoute(start, shrunk, end).Length(), 1e-6)
}

func TestAdjustLengthSuppressesShortEndEdge(t *testing.T) {
	t.Parallel()
	m := meanderFitter{snap: true}

	// The closing pair sits flush with the end station; shifting it would
	// leave a diagonal stub, so it sits the adjustment out and the full
	// delta lands on the first pair.
	pts := geo.Route{
		geo.NewPoint(0, 1),
		geo.NewPoint(1, 1),
		geo.NewPoint(1, -1),
		geo.NewPoint(2, -1),
	}
	adjusted := m.adjustLength(1, pts, at(-1, 1, geo.NewVector(1, 0)), at(3, -1, geo.NewVector(-1, 0)))
	assert.Equal(t, geo.Route{
		geo.NewPoint(0, 1.5),
		geo.NewPoint(1, 1.5),
		geo.NewPoint(1, -1),
		geo.NewPoint(2, -1),
	}, adjusted)
}

func TestAdjustLengthLeavesShortListsAlone(t *testing.T) {
	t.Parallel()
	m := meanderFitter{snap: true}

	pts := geo.Route{geo.NewPoint(0, 1), geo.NewPoint(1, 1), geo.NewPoint(1, 0)}
	adjusted := m.adjustLength(3, pts, at(0, 0, geo.NewVector(0, 1)), at(2, 0, geo.NewVector(0, 1)))
	assert.Equal(t, pts, adjusted)
}
