package pcl

// ropApply evaluates the 8-bit raster-operation truth table (spec §6.2/§7
// GLOSSARY) at bit index (p<<2 | s<<1 | d), the standard ternary-rop
// ordering under which 0xCC denotes plain source copy.
func ropApply(rop byte, s, p, d bool) bool {
	idx := 0
	if p {
		idx |= 4
	}
	if s {
		idx |= 2
	}
	if d {
		idx |= 1
	}
	return rop&(1<<uint(idx)) != 0
}

// sourceOneSlice extracts rop's S=1 slice and broadcasts it across both
// values of S, giving a table that behaves as if the source were always
// opaque — the second pass of the opaque-source/transparent-pattern rule
// (spec §4.8) paints a fixed color (white) and so must not actually depend
// on a source bit that pass never reads.
func sourceOneSlice(rop byte) byte {
	var out byte
	for idx := 0; idx < 8; idx++ {
		p := idx&4 != 0
		d := idx&1 != 0
		if ropApply(rop, true, p, d) {
			out |= 1 << uint(idx)
		}
	}
	return out
}

// PrintModel carries the active raster operation, source/pattern
// transparency, and the pixel-placement flag (spec §4.8).
type PrintModel struct {
	Rop byte

	SourceTransparent  bool
	PatternTransparent bool
	PixelPlacement     bool
}

// NewPrintModel returns the cold-reset default: rop 0xCC (copy source),
// both transparency flags false.
func NewPrintModel() *PrintModel {
	return &PrintModel{Rop: 0xCC}
}

// SetRop installs a new raster operation (spec §6.1 `* l # O`).
func (m *PrintModel) SetRop(rop byte) { m.Rop = rop }

// RenderPlan describes the one or two device calls needed to paint a region
// under the current transparency combination (spec §4.8).
type RenderPlan struct {
	// TwoPass is true for the opaque-source/transparent-pattern combination:
	// the caller must issue WhitePassRop under the white-pixel mask and then
	// ForegroundRop under the non-white-pixel mask (spec §4.8).
	TwoPass bool

	// SinglePassRop is used when TwoPass is false.
	SinglePassRop byte

	// ForegroundRop paints the current pattern/color everywhere the source is
	// not the palette's white index.
	ForegroundRop byte
	// WhitePassRop paints solid opaque white everywhere the source is the
	// palette's white index; it is rop's S=1 slice (spec §4.8).
	WhitePassRop byte
}

// Plan resolves how a raster or fill should be rendered under m's current
// transparency state (spec §4.8). The opaque-source + transparent-pattern
// combination is a hard two-pass contract: the white-index mask is painted
// opaque white with the rop's S=1 slice, and everywhere else is painted with
// the stored rop.
func (m *PrintModel) Plan() RenderPlan {
	if !m.SourceTransparent && m.PatternTransparent {
		return RenderPlan{
			TwoPass:       true,
			ForegroundRop: m.Rop,
			WhitePassRop:  sourceOneSlice(m.Rop),
		}
	}
	return RenderPlan{SinglePassRop: m.Rop}
}
