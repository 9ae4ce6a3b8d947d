package cpwdesign

import (
	"math"

	"oss.terrastruct.com/cpw/lib/geo"
)

// ObstacleIndex is a frozen snapshot of component bounding boxes taken at
// the start of a routing request. Queries never see design mutations made
// after the snapshot.
type ObstacleIndex struct {
	ids   []string
	boxes []*geo.Box
}

// Obstacles snapshots the bounding box of every placed component except the
// ones whose ids are excluded.
func (d *Design) Obstacles(exclude ...string) *ObstacleIndex {
	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	idx := &ObstacleIndex{}
	for _, c := range d.Components() {
		if _, ok := skip[c.ID]; ok {
			continue
		}
		if c.Box == nil {
			continue
		}
		idx.ids = append(idx.ids, c.ID)
		idx.boxes = append(idx.boxes, c.Box.Copy())
	}
	return idx
}

func (idx *ObstacleIndex) Len() int {
	return len(idx.boxes)
}

// Bounds returns the bounding box around every indexed obstacle, or nil
// when the index is empty.
func (idx *ObstacleIndex) Bounds() *geo.Box {
	if len(idx.boxes) == 0 {
		return nil
	}
	first := idx.boxes[0]
	x1, y1 := first.BottomLeft.X, first.BottomLeft.Y
	x2, y2 := x1+first.Width, y1+first.Height
	for _, box := range idx.boxes[1:] {
		x1 = math.Min(x1, box.BottomLeft.X)
		y1 = math.Min(y1, box.BottomLeft.Y)
		x2 = math.Max(x2, box.BottomLeft.X+box.Width)
		y2 = math.Max(y2, box.BottomLeft.Y+box.Height)
	}
	return geo.NewBoxFromCorners(x1, y1, x2, y2)
}

// Unobstructed reports whether the segment crosses no component boundary.
// A segment that merely grazes a box edge still counts as obstructed.
// Collisions are judged against boundaries only: a segment that lies
// entirely inside a box meets no edge and passes.
func (idx *ObstacleIndex) Unobstructed(seg geo.Segment) bool {
	for _, box := range idx.boxes {
		for _, side := range box.Sides() {
			if seg.CrossesOrTouches(side) {
				return false
			}
		}
	}
	return true
}

// UnobstructedRoute reports whether every consecutive segment of the
// polyline is unobstructed.
func (idx *ObstacleIndex) UnobstructedRoute(pts geo.Route) bool {
	for i := 0; i+1 < len(pts); i++ {
		if !idx.Unobstructed(geo.Segment{Start: pts[i], End: pts[i+1]}) {
			return false
		}
	}
	return true
}
