package pcl

// Interpreter owns every component's live state and dispatches the
// already-parsed command stream of spec §6.1. It plays the role the
// teacher's Console plays for the NES: the single place that wires
// component state together behind a narrow external surface.
type Interpreter struct {
	Palettes *PaletteStore
	Model    *PrintModel
	Raster   *RasterState
	Engine   *RasterEngine
	Cache    *PatternCache
	Tiler    *PatternTiler
	Surface  Surface

	Patterns map[PatternID]*UserPattern

	Foreground *Foreground

	currentPatternID   PatternID
	currentPatternKind PatternKind

	staged      [3]float64
	stagedCount int

	illuminant [2]float64
}

// NewInterpreter wires a fresh Interpreter around sink, with cold-reset
// default state for every owned component (spec §4.9 Cold).
func NewInterpreter(sink Surface) *Interpreter {
	raster := NewRasterState()
	model := NewPrintModel()
	palettes := NewPaletteStore()
	cache := NewPatternCache(256, 1<<20)

	it := &Interpreter{
		Palettes:   palettes,
		Model:      model,
		Raster:     raster,
		Cache:      cache,
		Tiler:      NewPatternTiler(sink),
		Surface:    sink,
		Patterns:   make(map[PatternID]*UserPattern),
		Foreground: defaultForeground(),
	}
	it.Engine = NewRasterEngine(raster, sink, palettes, model)
	return it
}

// Reset runs a Resetter over every owned component (spec §4.9).
func (it *Interpreter) Reset(kind ResetKind) error {
	r := NewResetter(it.Palettes, it.Model, it.Raster, it.Cache, it.Patterns)
	err := r.Do(kind)
	if kind.Has(ResetCold) || kind.Has(ResetPermanent) {
		it.Foreground = defaultForeground()
		it.currentPatternID = 0
		it.currentPatternKind = PatternSolidForeground
		it.staged = [3]float64{}
		it.stagedCount = 0
	}
	return err
}

// ConfigureImageData implements `* v # W` (spec §6.1): install a new palette
// descriptor. Payload length must match space_kind.
func (it *Interpreter) ConfigureImageData(payload []byte) error {
	cid, err := ParseCID(payload)
	if err != nil {
		return err
	}
	base := BuildBase(cid)
	p := buildIndexedPalette(cid, base, false, false)
	it.Palettes.SetActive(p)
	return nil
}

// SelectSimplePalette implements `* r # U` (spec §6.1): K-mono, RGB, or CMY,
// 2- or 8-entry, 1 bit per plane.
func (it *Interpreter) SelectSimplePalette(arg int16) error {
	var cid CID
	switch arg {
	case -3: // K (mono)
		cid = CID{SpaceKind: DeviceRGB, Encoding: IndexedByPlane, BitsPerIndex: 1, BitsPerPrimary: [3]uint8{8, 8, 8}}
	case 1: // RGB
		cid = CID{SpaceKind: DeviceRGB, Encoding: IndexedByPlane, BitsPerIndex: 3, BitsPerPrimary: [3]uint8{8, 8, 8}}
	case 3: // CMY
		cid = CID{SpaceKind: DeviceCMY, Encoding: IndexedByPlane, BitsPerIndex: 3, BitsPerPrimary: [3]uint8{8, 8, 8}}
	default:
		return invalidParams("Interpreter.SelectSimplePalette", "unknown simple-palette selector: %d", arg)
	}
	base := BuildBase(cid)
	p := buildIndexedPalette(cid, base, true, false)
	it.Palettes.SetActive(p)
	return nil
}

// SetIlluminant implements `* i # W` (spec §6.1): viewing illuminant (x,y),
// rejected unless y>0, x>=0, x+y<=1.
func (it *Interpreter) SetIlluminant(payload []byte) error {
	if len(payload) < 8 {
		return invalidParams("Interpreter.SetIlluminant", "payload too short: %d bytes", len(payload))
	}
	x := readBEFixed(payload[0:4])
	y := readBEFixed(payload[4:8])
	if !(y > 0 && x >= 0 && x+y <= 1) {
		return invalidParams("Interpreter.SetIlluminant", "illegal illuminant (%f,%f)", x, y)
	}
	it.illuminant = [2]float64{x, y}
	return nil
}

// readBEFixed reads a big-endian 16.16 fixed-point value.
func readBEFixed(b []byte) float64 {
	raw := int32(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
	return float64(raw) / 65536.0
}

// StageComponent implements `* v # A/B/C` (spec §6.1): stage color
// component 1/2/3 (which ∈ {0,1,2}) for the next assignment.
func (it *Interpreter) StageComponent(which int, value float64) error {
	if which < 0 || which > 2 {
		return invalidParams("Interpreter.StageComponent", "component index out of range: %d", which)
	}
	it.staged[which] = value
	if which+1 > it.stagedCount {
		it.stagedCount = which + 1
	}
	return nil
}

// AssignStagedComponents implements `* v # I` (spec §6.1): assigns staged
// components into palette slot index, then clears the staged values.
func (it *Interpreter) AssignStagedComponents(index int) error {
	np, err := it.Palettes.Active().SetEntry(index, it.staged)
	it.staged = [3]float64{}
	it.stagedCount = 0
	if err != nil {
		return err
	}
	it.Palettes.SetActive(np)
	return nil
}

// SetForegroundFromSlot implements `* v # S` (spec §6.1): build foreground
// from palette slot n mod size.
func (it *Interpreter) SetForegroundFromSlot(n int) error {
	old := it.Foreground
	it.Foreground = SetForeground(it.Palettes.Active(), n, 0)
	old.Release()
	return nil
}

// SetPatternTransparent implements `* v # O` (spec §6.1): pattern
// transparent = !arg.
func (it *Interpreter) SetPatternTransparent(arg int16) error {
	it.Model.PatternTransparent = arg == 0
	return nil
}

// SelectPatternType implements `* v # T` (spec §6.1).
func (it *Interpreter) SelectPatternType(arg int16) error {
	switch arg {
	case 0:
		it.currentPatternKind = PatternSolidForeground
	case 1:
		it.currentPatternKind = PatternSolidWhite
	case 2:
		it.currentPatternKind = PatternShading
	case 3:
		it.currentPatternKind = PatternCrossHatch
	case 4:
		it.currentPatternKind = PatternUserDefined
	default:
		return invalidParams("Interpreter.SelectPatternType", "unknown pattern type: %d", arg)
	}
	return nil
}

// SetCurrentPatternID implements `* c # G` (spec §6.1).
func (it *Interpreter) SetCurrentPatternID(id PatternID) error {
	it.currentPatternID = id
	return nil
}

// DefineUserPattern implements `* c # W` (spec §6.1): parses and stores a
// user-defined pattern under the current pattern ID.
func (it *Interpreter) DefineUserPattern(payload []byte) error {
	header, bitmap, err := ParseUserPattern(payload)
	if err != nil {
		return err
	}
	it.Patterns[it.currentPatternID] = &UserPattern{Header: header, Bitmap: bitmap}
	return nil
}

// PatternControlOp names `* c # Q` selectors (spec §6.1).
type PatternControlOp int16

const (
	PatternDeleteAll  PatternControlOp = 0
	PatternDeleteTemp PatternControlOp = 1
	PatternDeleteID   PatternControlOp = 2
	PatternMakeTemp   PatternControlOp = 4
	PatternMakePerm   PatternControlOp = 5
)

// PatternControl implements `* c # Q` (spec §6.1).
func (it *Interpreter) PatternControl(op PatternControlOp) error {
	switch op {
	case PatternDeleteAll, PatternDeleteTemp:
		for id := range it.Patterns {
			delete(it.Patterns, id)
		}
		it.Cache.FlushAll()
		return nil
	case PatternDeleteID:
		delete(it.Patterns, it.currentPatternID)
		it.Cache.Winnow(func(k PatternTileKey) bool { return k.PatternID == it.currentPatternID })
		return nil
	case PatternMakeTemp, PatternMakePerm:
		return nil
	default:
		return invalidParams("Interpreter.PatternControl", "unknown pattern control op: %d", op)
	}
}

// colorID packs an 8-bit-per-channel RGB triple into the cache key's color
// component (spec §4.5 hashing invariant).
func colorID(rgb [3]uint8) uint32 {
	return uint32(rgb[0])<<16 | uint32(rgb[1])<<8 | uint32(rgb[2])
}

// ResolveAndFillPattern is the data-flow join of spec §2: it resolves the
// active Foreground plus the active pattern source (as last set by
// SelectPatternType/SetCurrentPatternID/DefineUserPattern) into a concrete,
// cached tile, composes the PrintModel's rop/transparency plan, and paints
// rect through the PatternTiler. phase is the pattern's step-matrix origin
// in device space. Solid patterns (the common case) need no tile at all and
// paint directly.
func (it *Interpreter) ResolveAndFillPattern(rect Rect, phase Point) error {
	bg := [3]uint8{255, 255, 255}

	switch it.currentPatternKind {
	case PatternSolidForeground:
		return it.fillPlanned(rect, it.Foreground.Color)
	case PatternSolidWhite:
		return it.fillPlanned(rect, bg)
	}

	tile, err := it.resolvePatternTile()
	if err != nil {
		return err
	}

	plan := it.Model.Plan()
	if plan.TwoPass {
		if err := it.Tiler.FillRect(rect, tile, phase, bg, bg, plan.WhitePassRop); err != nil {
			return err
		}
		return it.Tiler.FillRect(rect, tile, phase, it.Foreground.Color, bg, plan.ForegroundRop)
	}
	return it.Tiler.FillRect(rect, tile, phase, it.Foreground.Color, bg, plan.SinglePassRop)
}

// fillPlanned paints rect as a uniform color under the current PrintModel
// plan. A uniform fill has no white-index mask of its own to distinguish, so
// the two-pass split collapses to the foreground rop (spec §4.8 only
// distinguishes pattern color from the source's white pixels, which do not
// arise painting a flat color).
func (it *Interpreter) fillPlanned(rect Rect, color [3]uint8) error {
	plan := it.Model.Plan()
	rop := plan.SinglePassRop
	if plan.TwoPass {
		rop = plan.ForegroundRop
	}
	return it.Surface.FillRect(rect, color, rop)
}

// resolvePatternTile looks up, or generates and inserts, the rendered tile
// for the current pattern selection and active foreground (spec §4.5
// hashing invariant: pattern id, resolved color, and halftone).
func (it *Interpreter) resolvePatternTile() (*PatternTile, error) {
	key := PatternTileKey{
		PatternID:   it.currentPatternID,
		ColorOrFgID: colorID(it.Foreground.Color),
		HalftoneID:  uint32(it.Foreground.halftone),
	}
	if tile := it.Cache.Lookup(key); tile != nil {
		return tile, nil
	}

	bits, w, h, err := it.generatePatternBits()
	if err != nil {
		return nil, err
	}

	tile := &PatternTile{
		TBits:    bits,
		Width:    w,
		Height:   h,
		Step:     Matrix2x3{A: float64(w), D: float64(h)},
		IsSimple: true,
	}
	return it.Cache.Insert(key, tile), nil
}

// generatePatternBits builds the mono tile bitmap for the active pattern
// kind (spec §3 pattern kinds); for Shading and CrossHatch the current
// pattern ID doubles as the kind's own level/index parameter, the way `* c #
// G` feeds both selectors in the command table.
func (it *Interpreter) generatePatternBits() ([]byte, int, int, error) {
	switch it.currentPatternKind {
	case PatternShading:
		return GenerateShading(int(it.currentPatternID))
	case PatternCrossHatch:
		return GenerateCrossHatch(int(it.currentPatternID))
	case PatternUserDefined:
		up, ok := it.Patterns[it.currentPatternID]
		if !ok {
			return nil, 0, 0, invalidParams("Interpreter.generatePatternBits", "undefined user pattern id: %d", it.currentPatternID)
		}
		return up.Bitmap, int(up.Header.Width), int(up.Header.Height), nil
	default:
		return nil, 0, 0, protocolErr("Interpreter.generatePatternBits", "unsupported pattern kind for tiling: %d", it.currentPatternKind)
	}
}

// SetRenderingAlgorithm implements `* t # J` (spec §6.1): dither/halftone
// selection (0..14). The core does not dictate halftone dictionaries (out of
// scope, spec §1); the selector is accepted and otherwise unimplemented.
func (it *Interpreter) SetRenderingAlgorithm(arg int16) error {
	if arg < 0 || arg > 14 {
		return invalidParams("Interpreter.SetRenderingAlgorithm", "out of range: %d", arg)
	}
	return nil
}

// PushPopPalette implements `* p # P` (spec §6.1): 0 pushes, 1 pops.
func (it *Interpreter) PushPopPalette(arg int16) error {
	if arg == 0 {
		it.Palettes.Push()
		return nil
	}
	it.Palettes.Pop()
	return nil
}

// SetRasterOperation implements `* l # O` (spec §6.1).
func (it *Interpreter) SetRasterOperation(rop byte) error {
	it.Model.SetRop(rop)
	return it.Surface.SetRop(rop)
}

// SetPixelPlacement implements `* l # R` (spec §6.1).
func (it *Interpreter) SetPixelPlacement(arg int16) error {
	it.Model.PixelPlacement = arg != 0
	return nil
}

// SetRasterResolution implements `* t # R` (spec §6.1).
func (it *Interpreter) SetRasterResolution(dpi int) error {
	it.Raster.SetResolution(dpi)
	return nil
}

// SetRasterPresentationMode implements `* r # F` (spec §6.1): 0 or 3.
func (it *Interpreter) SetRasterPresentationMode(arg int16) error {
	switch arg {
	case 0:
		it.Raster.PresentationMode3 = false
	case 3:
		it.Raster.PresentationMode3 = true
	default:
		return invalidParams("Interpreter.SetRasterPresentationMode", "out of range: %d", arg)
	}
	return nil
}

// SetRasterSourceWidth/SetRasterSourceHeight implement `* r # S/T` (spec
// §6.1).
func (it *Interpreter) SetRasterSourceWidth(n int) error {
	it.Raster.SrcWidth, it.Raster.SrcWidthSet = n, true
	return nil
}

func (it *Interpreter) SetRasterSourceHeight(n int) error {
	it.Raster.SrcHeight, it.Raster.SrcHeightSet = n, true
	return nil
}

// SetRasterDestWidth/SetRasterDestHeight implement `* t # H/V` (spec §6.1),
// in centipoints.
func (it *Interpreter) SetRasterDestWidth(cp float64) error {
	it.Raster.DestWidthCp, it.Raster.DestWidthSet = cp, true
	return nil
}

func (it *Interpreter) SetRasterDestHeight(cp float64) error {
	it.Raster.DestHeightCp, it.Raster.DestHeightSet = cp, true
	return nil
}

// SetCompressionMode implements `* b # M` (spec §6.1).
func (it *Interpreter) SetCompressionMode(mode CompressionMode) error {
	switch mode {
	case ModeUncompressed, ModeRunLength, ModePackBits, ModeDeltaRow, ModeAdaptive, ModeDeltaRowMod:
		it.Raster.CompressionMode = mode
		return nil
	default:
		return invalidParams("Interpreter.SetCompressionMode", "unknown mode: %d", mode)
	}
}

// StartRasterGraphics implements `* r # A` (spec §6.1). Like every command
// method here, callers invoke it directly; there is no Command-record
// dispatch. Unlike the others, it takes more than the command's own argument:
// the scale policy it names only resolves geometry in combination with the
// cursor position, logical-page orientation, and print-direction state that
// spec §1 places outside the core, so callers assemble a GraphicsModeParams
// from those external collaborators.
func (it *Interpreter) StartRasterGraphics(params GraphicsModeParams) error {
	return it.Engine.EnterGraphicsMode(params)
}

// TransferPlane implements `* b # V` (spec §6.1).
func (it *Interpreter) TransferPlane(payload []byte) error {
	return it.Engine.TransferPlane(payload)
}

// TransferRow implements `* b # W` (spec §6.1).
func (it *Interpreter) TransferRow(payload []byte) error {
	return it.Engine.TransferRow(payload)
}

// SkipRows implements `* b # Y` (spec §6.1).
func (it *Interpreter) SkipRows(n int) error {
	return it.Engine.SkipRows(n)
}

// SetLinePathDirection implements `* b # L` (spec §6.1): sets y_advance.
func (it *Interpreter) SetLinePathDirection(arg int16) error {
	if arg == 0 {
		it.Raster.YAdvance = 1
	} else {
		it.Raster.YAdvance = -1
	}
	return nil
}

// EndGraphicsKeep implements `* r B` (spec §6.1).
func (it *Interpreter) EndGraphicsKeep() (Point, error) {
	return it.Engine.EndGraphics(true)
}

// EndGraphicsFull implements `* r C` (spec §6.1).
func (it *Interpreter) EndGraphicsFull() (Point, error) {
	return it.Engine.EndGraphics(false)
}
