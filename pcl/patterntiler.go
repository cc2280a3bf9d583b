package pcl

import "math"

// epsilon bounds the floating drift tolerated when comparing a step matrix
// against the tile's own dimensions to decide whether a tiling is "simple"
// (spec §4.6).
const epsilon = 1e-6

// nearlyEqual reports whether a and b differ by no more than epsilon,
// breaking ties toward "equal" the way spec §4.6 requires so that a
// borderline step matrix is treated as simple rather than stepped.
func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= epsilon
}

// classifyStep decides whether tile's step matrix is a simple axis-aligned
// repeat of its own width/height (no stepped shear), per spec §4.6.
func classifyStep(tile *PatternTile) bool {
	m := tile.Step
	if !nearlyEqual(m.B, 0) || !nearlyEqual(m.C, 0) {
		return false
	}
	return nearlyEqual(math.Abs(m.A), float64(tile.Width)) && nearlyEqual(math.Abs(m.D), float64(tile.Height))
}

// PatternTiler paints rectangles with cached pattern tiles, choosing the
// simple strip-tile path when the step matrix is axis-aligned and the
// stepped rop path otherwise (spec §4.6).
type PatternTiler struct {
	Surface Surface
}

// NewPatternTiler returns a tiler painting onto sink.
func NewPatternTiler(sink Surface) *PatternTiler {
	return &PatternTiler{Surface: sink}
}

// FillRect paints rect with tile, phased so the tile's origin lands at
// phase, under rop. The simple path passes fg/bg to Surface.StripTile; the
// stepped path uses Surface.StripRop, which takes no fg/bg. When HasOverlap is set (a
// transparency group whose stepped placement can overlap itself), the
// caller must have rendered the tile with pre-composited self-overlap; the
// tiler does not re-blend across tile instances (spec §4.6 transparency
// notes).
func (t *PatternTiler) FillRect(rect Rect, tile *PatternTile, phase Point, fg, bg [3]uint8, rop byte) error {
	if tile.IsSimple || classifyStep(tile) {
		return t.Surface.StripTile(rect, tile, phase, fg, bg, rop)
	}
	return t.fillStepped(rect, tile, phase, rop)
}

// fillStepped paints rect by walking the step matrix's lattice, emitting
// one StripRop call per covered tile instance (spec §4.6 stepped path).
func (t *PatternTiler) fillStepped(rect Rect, tile *PatternTile, phase Point, rop byte) error {
	inv, ok := tile.Step.Invert()
	if !ok {
		return protocolErr("PatternTiler.FillRect", "singular step matrix")
	}

	corners := [4]Point{
		{X: rect.X0, Y: rect.Y0},
		{X: rect.X1, Y: rect.Y0},
		{X: rect.X0, Y: rect.Y1},
		{X: rect.X1, Y: rect.Y1},
	}

	minI, maxI := math.MaxInt32, -math.MaxInt32
	minJ, maxJ := math.MaxInt32, -math.MaxInt32
	for _, c := range corners {
		rel := Point{X: c.X - phase.X, Y: c.Y - phase.Y}
		lat := inv.Apply(rel)
		i := int(math.Floor(lat.X))
		j := int(math.Floor(lat.Y))
		if i < minI {
			minI = i
		}
		if i > maxI {
			maxI = i
		}
		if j < minJ {
			minJ = j
		}
		if j > maxJ {
			maxJ = j
		}
	}
	// Account for the lattice step possibly straddling a rect edge.
	minI--
	minJ--
	maxI++
	maxJ++

	for j := minJ; j <= maxJ; j++ {
		for i := minI; i <= maxI; i++ {
			origin := tile.Step.Apply(Point{X: float64(i), Y: float64(j)})
			origin.X += phase.X
			origin.Y += phase.Y
			cell := Rect{
				X0: origin.X,
				Y0: origin.Y,
				X1: origin.X + float64(tile.Width),
				Y1: origin.Y + float64(tile.Height),
			}
			clipped, overlaps := intersectRect(cell, rect)
			if !overlaps {
				continue
			}
			if err := t.Surface.StripRop(clipped, tile.TBits, tile.Step, tile, rop, origin); err != nil {
				return err
			}
		}
	}
	return nil
}

// intersectRect clips a against b, reporting ok=false if they do not
// overlap.
func intersectRect(a, b Rect) (Rect, bool) {
	r := Rect{
		X0: math.Max(a.X0, b.X0),
		Y0: math.Max(a.Y0, b.Y0),
		X1: math.Min(a.X1, b.X1),
		Y1: math.Min(a.Y1, b.Y1),
	}
	if r.X0 >= r.X1 || r.Y0 >= r.Y1 {
		return Rect{}, false
	}
	return r, true
}
