package cpwroute

import (
	"context"
	"fmt"
	"math"

	"cdr.dev/slog"

	"oss.terrastruct.com/cpw/lib/geo"
	"oss.terrastruct.com/cpw/lib/log"
)

// maxMeanderPeriods bounds the period count a single hop may be asked to
// carry. A span that wants more is treating spacing as zero.
const maxMeanderPeriods = 1 << 16

// meanderFitter stretches a hop to a target length by inserting a periodic
// zig-zag between the endpoints.
type meanderFitter struct {
	spacing           float64
	asymmetry         float64
	snap              bool
	preventShortEdges bool
	fillet            float64
}

// fit produces the zig-zag between start and end whose arc length
// approximates targetLength. The result holds the extrema points strictly
// between the endpoints; an empty result means the hop is too short to
// meander at all, which is a valid outcome, not a failure. A target below
// the direct distance is LengthInfeasibleError: no polyline joining the
// endpoints can be that short.
//
// The construction follows a fixed sequence: decompose the displacement
// along a forward/sideways frame, count whole spacing periods, correct the
// count's parity so the zig-zag terminates flush with both endpoint
// orientations, pick the first swing side, then alternate between a top and
// a bottom row of extrema offset by the perpendicular excursion that
// absorbs the excess length.
func (m meanderFitter) fit(ctx context.Context, start, end RoutePoint, targetLength float64) (geo.Route, error) {
	// A zero-length hop has no frame to meander in.
	if start.Pos.Equals(end.Pos) {
		return geo.Route{}, nil
	}

	// A bare anchor end gets a direction so parity and swing selection can
	// see its orientation.
	end = end.withAnchorDir(start)

	forward, sideways := unitVectors(start, end, m.snap)

	dist := start.Pos.VectorTo(end.Pos)
	var lengthDirect float64
	if m.snap {
		lengthDirect = math.Abs(dist.Dot(forward))
	} else {
		lengthDirect = dist.Length()
	}

	if targetLength+geo.PRECISION < lengthDirect {
		return nil, LengthInfeasibleError{Target: targetLength, Minimum: lengthDirect}
	}

	periods := math.Floor(lengthDirect / m.spacing)
	if periods > maxMeanderPeriods {
		return nil, fmt.Errorf("meander spacing %v is too fine for a %v span: %v periods", m.spacing, lengthDirect, periods)
	}
	// NaN compares false and stays at zero periods.
	count := 0
	if periods >= 1 {
		count = int(periods)
	}

	// The endpoint orientations constrain the period count: same-side
	// endpoints need an odd count, opposite-side endpoints an even one.
	startSide := start.Dir.Dot(sideways)
	endSide := end.Dir.Dot(sideways)
	if geo.Round(startSide*endSide) > 0 && count%2 == 0 {
		count--
	} else if geo.Round(startSide*endSide) < 0 && count%2 == 1 {
		count--
	}

	if count < 1 {
		log.Info(ctx, "zero meanders",
			slog.F("direct", lengthDirect),
			slog.F("spacing", m.spacing))
		return geo.Route{}, nil
	}

	var firstSideways bool
	switch {
	case startSide > 0:
		firstSideways = true
	case startSide < 0:
		firstSideways = false
	case endSide > 0:
		firstSideways = count%2 == 1
	case endSide < 0:
		firstSideways = count%2 == 0
	default:
		firstSideways = true
	}

	// Excess length absorbed by each period's two perpendicular runs. A
	// negative excess clamps to a flat zig-zag rather than inverting.
	lengthExcess := targetLength - lengthDirect - 2*math.Abs(m.asymmetry)
	lengthPerp := math.Max(0, lengthExcess/(2*float64(count)))

	// count+1 roots at spacing multiples along forward, offset sideways by
	// the asymmetry; the extrema rows sit a perpendicular excursion to
	// either side.
	roots := make(geo.Route, count+1)
	top := make(geo.Route, count+1)
	bot := make(geo.Route, count+1)
	for i := range roots {
		roots[i] = start.Pos.AddVector(
			forward.Multiply(m.spacing * float64(i)).Add(sideways.Multiply(m.asymmetry)))
		top[i] = roots[i].AddVector(sideways.Multiply(lengthPerp))
		bot[i] = roots[i].AddVector(sideways.Multiply(-lengthPerp))
	}

	// Period k runs along the top row when its parity matches the first
	// swing, along the bottom row otherwise; the final root closes the
	// left-over non-meandered stretch onto the end.
	pts := make(geo.Route, 0, 2*count+1)
	for k := 0; k < count; k++ {
		row := top
		if (k%2 == 0) != firstSideways {
			row = bot
		}
		pts = append(pts, row[k].Copy(), row[k+1].Copy())
	}
	pts = append(pts, roots[count].Copy())

	n := len(pts)
	if m.snap {
		sideAxis := int(math.Abs(forward[0]))
		fwdAxis := 1 - sideAxis
		if start.Dir.Dot(end.Dir) < 0 && forward.Dot(start.Dir) <= 0 {
			// The pins point opposite ways and diverge: close sideways
			// against the previous extremum and forward against the end.
			setAxisCoord(pts[n-1], sideAxis, axisCoord(pts[n-2], sideAxis))
			setAxisCoord(pts[n-1], fwdAxis, axisCoord(end.Pos, fwdAxis))
		} else {
			setAxisCoord(pts[n-1], sideAxis, axisCoord(end.Pos, sideAxis))
			// When the closing root lands outside the zig-zag amplitude on
			// the side of the last period, the last period locks onto it.
			if issideways(pts[n-1], pts[n-3], pts[n-2]) ==
				issideways(pts[n-2], roots[0], roots[count]) {
				setAxisCoord(pts[n-2], sideAxis, axisCoord(end.Pos, sideAxis))
				setAxisCoord(pts[n-3], sideAxis, axisCoord(end.Pos, sideAxis))
			}
		}

		if math.Abs(m.asymmetry) > math.Abs(lengthPerp) {
			if !(start.Dir.Dot(end.Dir) < 0 && forward.Dot(start.Dir) <= 0) {
				// The asymmetry pushed the outer periods past the endpoint
				// stations; pin them back flush.
				if startSide*m.asymmetry < 0 {
					setAxisCoord(pts[0], sideAxis, axisCoord(start.Pos, sideAxis))
					setAxisCoord(pts[1], sideAxis, axisCoord(start.Pos, sideAxis))
				}
				if endSide*m.asymmetry < 0 {
					setAxisCoord(pts[n-2], sideAxis, axisCoord(end.Pos, sideAxis))
					setAxisCoord(pts[n-3], sideAxis, axisCoord(end.Pos, sideAxis))
				}
			}
		}
	}

	if m.preventShortEdges {
		// Nudge points sitting within a fillet's turning room of either
		// endpoint flush onto it, so rendering never meets an edge shorter
		// than the bend it needs. The extra closing root moves only when
		// the tail tip direction has a sideways component.
		x2fillet := 2 * m.fillet
		skip := 1
		if math.Abs(end.Dir.Dot(sideways)) > 0 {
			skip = 0
		}
		for axis := 0; axis < 2; axis++ {
			gap := math.Abs(geo.Round(axisCoord(end.Pos, axis) - axisCoord(pts[n-1], axis)))
			if 0 < gap && gap < x2fillet {
				col := (axis - skip + 2) % 2
				setAxisCoord(pts[n-1-skip], col, axisCoord(end.Pos, col))
				setAxisCoord(pts[n-2-skip], col, axisCoord(end.Pos, col))
			}
		}
		for axis := 0; axis < 2; axis++ {
			gap := math.Abs(geo.Round(axisCoord(start.Pos, axis) - axisCoord(pts[0], axis)))
			if 0 < gap && gap < x2fillet {
				setAxisCoord(pts[0], axis, axisCoord(start.Pos, axis))
				setAxisCoord(pts[1], axis, axisCoord(start.Pos, axis))
			}
		}
	}

	return pts, nil
}

// adjustLength spreads delta across the zig-zag's extrema, pushing each
// period further out (or pulling it in) by an equal share. Periods whose
// shift would leave a too-short edge at an endpoint sit the adjustment out,
// as does the odd closing point unless diverging opposite pins anchored it
// to the last period.
func (m meanderFitter) adjustLength(delta float64, pts geo.Route, start, end RoutePoint) geo.Route {
	if len(pts) <= 3 {
		return pts
	}
	n := len(pts)
	term := n % 2

	forward, sideways := unitVectors(start, end, m.snap)

	firstSideways := pts[0].VectorTo(pts[1]).Cross(pts[1].VectorTo(pts[2])) < 0
	lastSideways := pts[n-1-term].VectorTo(pts[n-2-term]).Cross(pts[n-2-term].VectorTo(pts[n-3-term])) >= 0

	// Alternate the shift sign per period so every period widens (or
	// narrows) symmetrically about the center line.
	adjustment := make([]float64, n)
	for i := range adjustment {
		adjustment[i] = 1
	}
	if firstSideways {
		for i := 2; i < n; i += 4 {
			adjustment[i] = -1
		}
		for i := 3; i < n; i += 4 {
			adjustment[i] = -1
		}
	} else {
		for i := 0; i < n; i += 4 {
			adjustment[i] = -1
		}
		for i := 1; i < n; i += 4 {
			adjustment[i] = -1
		}
	}

	// Suppress the first and last periods when shifting them would pinch
	// the edge at a pin below the fillet's turning room.
	filletShift := sideways.Multiply(m.fillet)
	switch {
	case firstSideways && !issideways(start.Pos.AddVector(filletShift), pts[0], pts[1]):
	case !firstSideways && issideways(start.Pos.AddVector(filletShift.Multiply(-1)), pts[0], pts[1]):
	default:
		adjustment[0], adjustment[1] = 0, 0
	}
	switch {
	case lastSideways && !issideways(end.Pos.AddVector(filletShift), pts[n-2-term], pts[n-1-term]):
	case !lastSideways && issideways(end.Pos.AddVector(filletShift.Multiply(-1)), pts[n-2-term], pts[n-1-term]):
	default:
		for i := n - 2 - term; i < n-term; i++ {
			adjustment[i] = 0
		}
	}

	notAMeander := 0
	if term == 1 {
		// The odd closing point does not meander, unless diverging
		// opposite pins anchored it to the last period, in which case it
		// shifts along but contributes no length.
		adjustment[n-1] = 0
		if start.Dir != nil && end.Dir != nil &&
			start.Dir.Dot(end.Dir) < 0 && forward.Dot(start.Dir) <= 0 {
			adjustment[n-1] = adjustment[n-2]
			if adjustment[n-1] != 0 {
				notAMeander = 1
			}
		}
	}

	shifting := 0
	for _, a := range adjustment {
		if a != 0 {
			shifting++
		}
	}
	if shifting-notAMeander <= 0 {
		return pts
	}

	shift := sideways.Multiply(delta / float64(shifting-notAMeander))
	adjusted := make(geo.Route, n)
	for i, p := range pts {
		adjusted[i] = p.AddVector(shift.Multiply(adjustment[i]))
	}
	return adjusted
}

// issideways reports whether p falls on the clockwise side of the segment
// from a to b.
func issideways(p, a, b *geo.Point) bool {
	return a.VectorTo(p).Cross(a.VectorTo(b)) < 0
}

func axisCoord(p *geo.Point, axis int) float64 {
	if axis == 0 {
		return p.X
	}
	return p.Y
}

func setAxisCoord(p *geo.Point, axis int, v float64) {
	if axis == 0 {
		p.X = v
	} else {
		p.Y = v
	}
}
