package pcl

import "math"

// ScalePolicy names the graphics-mode entry variant (spec §4.7.1).
type ScalePolicy int

const (
	NoScaleLeftMargin ScalePolicy = iota
	NoScaleCurPoint
	ScaleLeftMargin
	ScaleCurPoint
	ImplicitScale
)

// spreadTable spreads a 4-bit nibble into 4 one-bit bytes, MSB pixel first,
// used to fold one bit per pixel per plane into a byte-per-pixel
// consolidation buffer (spec §4.7.3 step 1).
var spreadTable = buildSpreadTable()

func buildSpreadTable() [16][4]byte {
	var t [16][4]byte
	for n := 0; n < 16; n++ {
		for i := 0; i < 4; i++ {
			if n&(1<<uint(3-i)) != 0 {
				t[n][i] = 1
			}
		}
	}
	return t
}

// RasterState is the persisted raster configuration (spec §3).
type RasterState struct {
	ResolutionDPI int

	SrcWidth, SrcHeight       int
	SrcWidthSet, SrcHeightSet bool

	DestWidthCp, DestHeightCp   float64
	DestWidthSet, DestHeightSet bool

	PresentationMode3 bool
	ScaleEnabled      bool
	YAdvance          int // -1 or +1
	CompressionMode   CompressionMode

	GraphicsMode bool
	ClipAll      bool

	GMarginCp float64

	PlaneIndex   int
	RowsRendered int
}

// legalResolutions are the raster resolutions the device accepts (spec §3);
// any other requested value rounds up to the next one in this list, 600 as
// ceiling.
var legalResolutions = []int{75, 100, 150, 200, 300, 600}

// roundResolution rounds dpi up to the next legal value (spec §3; 120 is
// explicitly not legal and rounds up to 150).
func roundResolution(dpi int) int {
	for _, r := range legalResolutions {
		if dpi <= r {
			return r
		}
	}
	return legalResolutions[len(legalResolutions)-1]
}

// NewRasterState returns the cold-reset default raster configuration.
func NewRasterState() *RasterState {
	return &RasterState{ResolutionDPI: 75, YAdvance: 1, CompressionMode: ModeUncompressed}
}

// SetResolution installs dpi, rounded up to a legal value (spec §6.1 `* t # R`).
func (s *RasterState) SetResolution(dpi int) { s.ResolutionDPI = roundResolution(dpi) }

// GraphicsModeParams carries the external geometry context graphics-mode
// entry needs (spec §4.7.1). Cursor position, logical page orientation, and
// print-direction bookkeeping live outside this core (spec §1); callers
// supply them already resolved into the print-direction coordinate frame,
// along with ToRasterSpace to convert a print-direction point into raster
// space once the rotation is known.
type GraphicsModeParams struct {
	Mode ScalePolicy

	PrintDirection   int // 0, 90, 180, or 270
	PageOrientation  int // 0..3
	PresentationMode3 bool
	YAdvance         int

	CurPoint    Point
	LogicalClip Rect // logical-page clip rectangle, print-direction space

	ToRasterSpace func(rot int, p Point) Point
}

// RasterEngine is the graphics-mode state machine of spec §4.7.
type RasterEngine struct {
	State *RasterState

	surface  Surface
	palettes *PaletteStore
	model    *PrintModel

	seedRows []*SeedRow
	rowBytes int // total payload bytes per row across all seed-row planes, per rasterLayout

	transform    Matrix2x3
	clipRasterXY Rect

	enumerator     ImageEnumerator
	maskEnumerator ImageEnumerator
	maskActive     bool

	rot int

	preEntryPoint Point
}

// NewRasterEngine returns an engine bound to state, a device sink, the
// active palette store (for plane count / lookup-table / white index), and
// the print model (for the white-mask activation rule).
func NewRasterEngine(state *RasterState, surface Surface, palettes *PaletteStore, model *PrintModel) *RasterEngine {
	return &RasterEngine{State: state, surface: surface, palettes: palettes, model: model}
}

// rasterLayout describes how the active CID's encoding maps pixels onto
// raster seed-row planes (spec §4.7.2, original_source/pcl/rtraster.c
// set_planes): IndexedByPlane spreads bits_per_index separate 1-bit planes;
// IndexedByPixel packs a single plane of bits_per_index-wide indices;
// DirectByPlane holds one plane per primary, each bits_per_primary wide;
// DirectByPixel packs a single plane of three concatenated
// bits_per_primary-wide fields per pixel.
type rasterLayout struct {
	nplanes      int
	bitsPerPlane []int // len == nplanes
}

// primaryBits returns the CID's declared bit depth for primary i, defaulting
// a zero value to 8 (spec §3 ParseCID normalization).
func primaryBits(cid CID, i int) int {
	b := cid.BitsPerPrimary[i]
	if b == 0 {
		b = 8
	}
	return int(b)
}

// layout reports the plane structure the active palette's encoding expects.
func (e *RasterEngine) layout() rasterLayout {
	cid := e.palettes.Active().CID()
	switch cid.Encoding {
	case IndexedByPlane:
		n := int(cid.BitsPerIndex)
		bits := make([]int, n)
		for i := range bits {
			bits[i] = 1
		}
		return rasterLayout{nplanes: n, bitsPerPlane: bits}
	case IndexedByPixel:
		return rasterLayout{nplanes: 1, bitsPerPlane: []int{int(cid.BitsPerIndex)}}
	case DirectByPlane:
		bits := make([]int, 3)
		for i := range bits {
			bits[i] = primaryBits(cid, i)
		}
		return rasterLayout{nplanes: 3, bitsPerPlane: bits}
	default: // DirectByPixel
		total := 0
		for i := 0; i < 3; i++ {
			total += primaryBits(cid, i)
		}
		return rasterLayout{nplanes: 1, bitsPerPlane: []int{total}}
	}
}

// EnterGraphicsMode performs the five-step algorithm of spec §4.7.1.
func (e *RasterEngine) EnterGraphicsMode(p GraphicsModeParams) error {
	s := e.State

	// Step 1: orientation.
	rot := ((p.PrintDirection / 90) + p.PageOrientation) & 3
	if p.PresentationMode3 {
		rot &= 2
	}
	if p.YAdvance == -1 {
		rot = (rot + 2) & 3
	}
	e.rot = rot
	s.YAdvance = p.YAdvance

	// Step 2: origin placement.
	switch p.Mode {
	case ImplicitScale:
		// s.GMarginCp already holds the persisted value.
	case NoScaleCurPoint, ScaleCurPoint:
		rp := p.ToRasterSpace(rot, p.CurPoint)
		s.GMarginCp = rp.X
	case NoScaleLeftMargin, ScaleLeftMargin:
		s.GMarginCp = 0
		if rot == 1 || rot == 3 {
			s.GMarginCp += 1200 // 1/6 inch, the preserved reference quirk
		}
	}

	clipP := p.ToRasterSpace(rot, Point{X: p.LogicalClip.X0, Y: p.LogicalClip.Y0})
	clipQ := p.ToRasterSpace(rot, Point{X: p.LogicalClip.X1, Y: p.LogicalClip.Y1})
	clipRaster := Rect{
		X0: math.Min(clipP.X, clipQ.X), Y0: math.Min(clipP.Y, clipQ.Y),
		X1: math.Max(clipP.X, clipQ.X), Y1: math.Max(clipP.Y, clipQ.Y),
	}
	// Intersect with the positive quadrant.
	if clipRaster.X0 < 0 {
		clipRaster.X0 = 0
	}
	if clipRaster.Y0 < 0 {
		clipRaster.Y0 = 0
	}

	clipSrcW := int(math.Floor(clipRaster.X1)) - int(math.Floor(clipRaster.X0))
	clipSrcH := int(math.Floor(clipRaster.Y1)) - int(math.Floor(clipRaster.Y0))
	if clipSrcW < 1 {
		clipSrcW = 1
	}
	if clipSrcH < 1 {
		clipSrcH = 1
	}

	// Step 3: scaling.
	var scaleX, scaleY float64
	fixedScale := !s.ScaleEnabled || (e.palettes.Active().fixed && p.Mode == ImplicitScale) || !s.SrcWidthSet || !s.SrcHeightSet
	switch {
	case fixedScale:
		iso := 7200.0 / float64(s.ResolutionDPI)
		scaleX, scaleY = iso, iso
	case s.DestWidthSet && s.DestHeightSet:
		scaleX = s.DestWidthCp / float64(s.SrcWidth)
		scaleY = s.DestHeightCp / float64(s.SrcHeight)
	case s.DestWidthSet:
		scaleX = s.DestWidthCp / float64(s.SrcWidth)
		scaleY = scaleX
		if p.PageOrientation == 1 || p.PageOrientation == 3 {
			scaleY = scaleX * (clipRaster.Dy() / clipRaster.Dx())
		}
	case s.DestHeightSet:
		scaleY = s.DestHeightCp / float64(s.SrcHeight)
		scaleX = scaleY
		if p.PageOrientation == 1 || p.PageOrientation == 3 {
			scaleX = scaleY * (clipRaster.Dx() / clipRaster.Dy())
		}
	default:
		sx := clipRaster.Dx() / float64(s.SrcWidth)
		sy := clipRaster.Dy() / float64(s.SrcHeight)
		iso := math.Min(sx, sy)
		scaleX, scaleY = iso, iso
	}

	// Step 4: clip computation / source dimensions.
	srcW, srcH := clipSrcW, clipSrcH
	if s.SrcWidthSet && s.SrcWidth < srcW {
		srcW = s.SrcWidth
	}
	if s.SrcHeightSet && s.SrcHeight < srcH {
		srcH = s.SrcHeight
	}
	s.SrcWidth, s.SrcHeight = srcW, srcH
	s.ClipAll = srcW <= 0 || srcH <= 0

	e.transform = Matrix2x3{A: scaleX, D: scaleY, Tx: s.GMarginCp, Ty: clipRaster.Y0}

	// Step 5: mask setup.
	e.maskActive = !e.model.SourceTransparent && e.model.PatternTransparent

	s.GraphicsMode = true
	s.PlaneIndex = 0
	s.RowsRendered = 0

	lay := e.layout()
	e.seedRows = make([]*SeedRow, lay.nplanes)
	e.rowBytes = 0
	for i, bits := range lay.bitsPerPlane {
		rb := (s.SrcWidth*bits + 7) / 8
		e.seedRows[i] = NewSeedRow(rb)
		e.rowBytes += rb
	}

	if s.ClipAll {
		return nil
	}

	var err error
	e.enumerator, err = e.surface.BeginImage(e.imageParams())
	if err != nil {
		return err
	}
	if e.maskActive {
		maskParams := ImageParams{Width: s.SrcWidth, Height: s.SrcHeight, BitsPerComponent: 1, Format: FormatChunky}
		e.maskEnumerator, err = e.surface.BeginImage(maskParams)
		if err != nil {
			return err
		}
	}
	return nil
}

// TransferPlane adds one plane to the current row (spec §4.7.2). Adaptive
// compression is illegal here.
func (e *RasterEngine) TransferPlane(payload []byte) error {
	if e.State.CompressionMode == ModeAdaptive {
		return protocolErr("RasterEngine.TransferPlane", "adaptive compression is illegal in plane-transfer")
	}
	return e.ingestPlane(payload)
}

func (e *RasterEngine) ingestPlane(payload []byte) error {
	s := e.State
	if s.ClipAll {
		s.PlaneIndex++
		return nil
	}
	idx := s.PlaneIndex
	if idx >= len(e.seedRows) {
		// Surplus plane: accepted but not wired to emission (spec §4.7.2).
		s.PlaneIndex++
		return nil
	}
	if err := DecodeRow(s.CompressionMode, e.seedRows[idx], payload); err != nil {
		return err
	}
	s.PlaneIndex++
	return nil
}

// TransferRow acts like TransferPlane plus an implicit emit-row at the end;
// under adaptive compression, one payload may emit many rows (spec §4.7.2).
func (e *RasterEngine) TransferRow(payload []byte) error {
	if e.State.CompressionMode == ModeAdaptive {
		return e.runAdaptive(payload)
	}
	if err := e.ingestPlane(payload); err != nil {
		return err
	}
	// Missing planes decode against an empty payload (spec §4.7.2).
	for e.State.PlaneIndex < len(e.seedRows) {
		if err := e.ingestPlane(nil); err != nil {
			return err
		}
	}
	return e.emitRow()
}

// runAdaptive executes the block command stream of mode 5 (spec §4.1,
// §4.7.2): each command is (cmd, param_hi, param_lo).
func (e *RasterEngine) runAdaptive(payload []byte) error {
	pos := 0
	for pos+3 <= len(payload) {
		cmd := payload[pos]
		param := int(payload[pos+1])<<8 | int(payload[pos+2])
		pos += 3

		switch {
		case cmd <= 3:
			n := param
			if pos+n > len(payload) {
				n = len(payload) - pos
			}
			if err := e.ingestPlane(payload[pos : pos+n]); err != nil {
				return err
			}
			pos += n
			for e.State.PlaneIndex < len(e.seedRows) {
				if err := e.ingestPlane(nil); err != nil {
					return err
				}
			}
			if err := e.emitRow(); err != nil {
				return err
			}
		case cmd == 4:
			if err := e.SkipRows(param); err != nil {
				return err
			}
		case cmd == 5:
			for i := 0; i < param; i++ {
				if err := e.emitRow(); err != nil {
					return err
				}
			}
		default:
			return protocolErr("RasterEngine.runAdaptive", "unknown adaptive command: %d", cmd)
		}
	}
	return nil
}

// emitRow performs the five steps of spec §4.7.3.
func (e *RasterEngine) emitRow() error {
	s := e.State
	defer func() {
		s.RowsRendered++
		s.PlaneIndex = 0
	}()

	if s.ClipAll {
		return nil
	}

	cid := e.palettes.Active().CID()
	buf := e.consolidate(cid)
	if cid.Encoding.indexed() {
		e.remap(buf)
	}

	if _, err := e.surface.ImageRow(e.enumerator, buf); err != nil {
		return err
	}

	if e.maskActive {
		mask := e.whiteMaskRow(buf, cid)
		if _, err := e.surface.ImageRow(e.maskEnumerator, mask); err != nil {
			return err
		}
	}
	return nil
}

// unpackBitField reads an nbits-wide field starting at bitOffset (MSB first)
// out of data, zero-extending past the end of data (spec §4.7.3 step 1
// applied to the non-spread encodings).
func unpackBitField(data []byte, bitOffset, nbits int) uint32 {
	var v uint32
	for i := 0; i < nbits; i++ {
		bit := bitOffset + i
		var b byte
		if byteIdx := bit / 8; byteIdx < len(data) {
			b = data[byteIdx]
		}
		v <<= 1
		if b&(1<<uint(7-bit%8)) != 0 {
			v |= 1
		}
	}
	return v
}

// consolidate turns the current seed-row planes into one row buffer, per the
// active CID's encoding (spec §4.7.3 step 1, original_source/pcl/rtraster.c
// consolidate): IndexedByPlane spreads one-bit-per-plane data into a
// byte-per-pixel index row (the historical path, via spreadTable);
// IndexedByPixel unpacks a single bits_per_index-wide plane into the same
// byte-per-pixel index row; DirectByPlane and DirectByPixel both produce a
// 3-byte-per-pixel chunky row, unpacking each primary's own bit width from
// either its own plane or its own field within a packed pixel.
func (e *RasterEngine) consolidate(cid CID) []byte {
	w := e.State.SrcWidth
	switch cid.Encoding {
	case IndexedByPlane:
		return e.consolidateIndexedByPlane(w)
	case IndexedByPixel:
		return e.consolidateIndexedByPixel(w, int(cid.BitsPerIndex))
	case DirectByPlane:
		return e.consolidateDirectByPlane(w, cid)
	default: // DirectByPixel
		return e.consolidateDirectByPixel(w, cid)
	}
}

func (e *RasterEngine) consolidateIndexedByPlane(w int) []byte {
	buf := make([]byte, w)
	for p, seed := range e.seedRows {
		for byteIdx := 0; byteIdx*8 < w; byteIdx++ {
			b := byte(0)
			if byteIdx < len(seed.Data) {
				b = seed.Data[byteIdx]
			}
			hi := b >> 4
			lo := b & 0xF
			for i := 0; i < 4; i++ {
				x := byteIdx*8 + i
				if x < w && spreadTable[hi][i] != 0 {
					buf[x] |= 1 << uint(p)
				}
			}
			for i := 0; i < 4; i++ {
				x := byteIdx*8 + 4 + i
				if x < w && spreadTable[lo][i] != 0 {
					buf[x] |= 1 << uint(p)
				}
			}
		}
	}
	return buf
}

func (e *RasterEngine) consolidateIndexedByPixel(w, bitsPerIndex int) []byte {
	buf := make([]byte, w)
	if len(e.seedRows) == 0 || bitsPerIndex <= 0 {
		return buf
	}
	data := e.seedRows[0].Data
	for x := 0; x < w; x++ {
		buf[x] = byte(unpackBitField(data, x*bitsPerIndex, bitsPerIndex))
	}
	return buf
}

// consolidateDirectByPlane unpacks each of the three per-primary planes,
// each bitsPerPlane[i] wide, into a 3-byte-per-pixel chunky row (original
// bit depth preserved in the low bits, high bits zero; ImageParams.Decode
// carries the real component range for a Surface to reinterpret them).
func (e *RasterEngine) consolidateDirectByPlane(w int, cid CID) []byte {
	buf := make([]byte, w*3)
	for p := 0; p < 3 && p < len(e.seedRows); p++ {
		bits := primaryBits(cid, p)
		data := e.seedRows[p].Data
		for x := 0; x < w; x++ {
			buf[x*3+p] = byte(unpackBitField(data, x*bits, bits))
		}
	}
	return buf
}

// consolidateDirectByPixel unpacks a single plane whose every pixel packs
// three concatenated bitsPerPrimary-wide fields, into the same
// 3-byte-per-pixel chunky row as consolidateDirectByPlane.
func (e *RasterEngine) consolidateDirectByPixel(w int, cid CID) []byte {
	buf := make([]byte, w*3)
	if len(e.seedRows) == 0 {
		return buf
	}
	data := e.seedRows[0].Data
	bitsPer := [3]int{primaryBits(cid, 0), primaryBits(cid, 1), primaryBits(cid, 2)}
	pixelBits := bitsPer[0] + bitsPer[1] + bitsPer[2]
	for x := 0; x < w; x++ {
		off := x * pixelBits
		for p := 0; p < 3; p++ {
			buf[x*3+p] = byte(unpackBitField(data, off, bitsPer[p]))
			off += bitsPer[p]
		}
	}
	return buf
}

// remap applies the active color space's lookup table in place, if any
// (spec §4.7.3 step 2). Only indexed rows pass through a lookup table; a
// direct row's bytes are primary samples, not palette slots.
func (e *RasterEngine) remap(buf []byte) {
	table := e.palettes.Active().Base().LookupTable()
	if len(table) < 256 {
		return
	}
	for i, v := range buf {
		buf[i] = table[v]
	}
}

// whiteMaskRow computes a 1-bit row, one bit per pixel (MSB first), set
// where the pixel is white (spec §4.7.3 step 4). For indexed rows that means
// buf[x] equals the palette's white slot; for direct rows, buf holds chunky
// RGB triples so the test is against the raw sample values instead.
func (e *RasterEngine) whiteMaskRow(buf []byte, cid CID) []byte {
	if cid.Encoding.indexed() {
		white := e.palettes.Active().WhiteIndex()
		out := make([]byte, (len(buf)+7)/8)
		if white < 0 {
			return out
		}
		for x, v := range buf {
			if int(v) == white {
				out[x/8] |= 1 << uint(7-x%8)
			}
		}
		return out
	}

	w := len(buf) / 3
	out := make([]byte, (w+7)/8)
	for x := 0; x < w; x++ {
		if IsWhite([3]uint8{buf[x*3], buf[x*3+1], buf[x*3+2]}) {
			out[x/8] |= 1 << uint(7-x%8)
		}
	}
	return out
}

// SkipRows handles a Y-offset / adaptive-command-4 request for n blank rows
// (spec §4.7.4). All seed rows are cleared so subsequent delta-row decoding
// behaves as if against a blank prior row.
func (e *RasterEngine) SkipRows(n int) error {
	for _, seed := range e.seedRows {
		seed.Clear()
	}

	if n <= 0 {
		return nil
	}

	if e.State.ClipAll {
		e.State.RowsRendered += n
		return nil
	}

	white := e.palettes.Active().WhiteIndex()
	solidColor, knownColor := -1, false
	if white == 0 {
		solidColor, knownColor = 0xFFFFFF, true
	} else if white < 0 {
		knownColor = false
	}
	// Zero-plane-data decodes to palette index 0; it is a single known color
	// exactly when index 0 is white or black (spec §4.7.4).
	if idx0IsBlack := e.palettes.Active().IsBlack(0); idx0IsBlack {
		solidColor, knownColor = 0x000000, true
	} else if e.palettes.Active().IsWhite(0) {
		solidColor, knownColor = 0xFFFFFF, true
	}

	if n*e.rowBytes > 1024 && knownColor {
		return e.emitSolidRectThenReopen(n, solidColor)
	}

	for i := 0; i < n; i++ {
		if err := e.emitRow(); err != nil {
			return err
		}
	}
	return nil
}

// emitSolidRectThenReopen implements the >1KiB single-color-rectangle
// optimization: close the image, paint a filled rectangle of n rows, then
// reopen the image enumerator for the remainder of the raster (spec §4.7.4).
func (e *RasterEngine) emitSolidRectThenReopen(n int, color int) error {
	s := e.State
	if err := e.surface.EndImage(e.enumerator); err != nil {
		return err
	}

	y0 := e.transform.Ty + float64(s.RowsRendered)*e.transform.D
	rect := Rect{
		X0: e.transform.Tx, Y0: y0,
		X1: e.transform.Tx + float64(s.SrcWidth)*e.transform.A,
		Y1: y0 + float64(n)*e.transform.D,
	}
	rgb := [3]uint8{uint8(color >> 16), uint8(color >> 8), uint8(color)}
	if err := e.surface.FillRect(rect, rgb, e.model.Rop); err != nil {
		return err
	}
	s.RowsRendered += n

	var err error
	e.enumerator, err = e.surface.BeginImage(e.imageParams())
	return err
}

// imageParams builds the BeginImage announcement for the active CID's
// encoding (spec §4.7.1 step 5, §6.2): indexed encodings announce index
// precision and the index Decode range; direct encodings announce the
// primary bit depth and the color space's component Decode range, so a
// correctly-consolidated row carries the metadata a Surface needs to
// reinterpret it. ImageParams.BitsPerComponent has only one field, so a
// direct CID whose three primaries declare different depths is announced
// using primary 0's depth; differing per-primary depths are rare in
// practice and consolidateDirectByPlane/Pixel still unpack each primary at
// its own declared width regardless.
func (e *RasterEngine) imageParams() ImageParams {
	s := e.State
	pal := e.palettes.Active()
	cid := pal.CID()
	base := pal.Base()

	bits := int(cid.BitsPerIndex)
	if !cid.Encoding.indexed() {
		bits = primaryBits(cid, 0)
	}

	return ImageParams{
		Width: s.SrcWidth, Height: s.SrcHeight,
		BitsPerComponent: bits,
		Format:           FormatChunky,
		Decode:           base.Decode,
	}
}

// EndGraphics leaves graphics mode (spec §4.7.5). keepState selects EndKeep
// (margin/compression preserved) vs EndFull (both reset). Calling this twice
// is a no-op the second time (spec §8 idempotence).
func (e *RasterEngine) EndGraphics(keepState bool) (Point, error) {
	s := e.State
	if !s.GraphicsMode {
		return Point{}, nil
	}

	if s.SrcHeightSet {
		for s.RowsRendered < s.SrcHeight {
			if err := e.emitRow(); err != nil {
				return Point{}, err
			}
		}
	}

	var err error
	if !s.ClipAll {
		if e.enumerator != nil {
			err = e.surface.EndImage(e.enumerator)
		}
		if e.maskActive && e.maskEnumerator != nil {
			if merr := e.surface.EndImage(e.maskEnumerator); merr != nil && err == nil {
				err = merr
			}
		}
	}
	e.enumerator = nil
	e.maskEnumerator = nil
	e.maskActive = false

	postPoint := Point{X: e.transform.Tx, Y: e.transform.Ty + float64(s.RowsRendered)*e.transform.D}

	s.GraphicsMode = false
	if !keepState {
		s.GMarginCp = 0
		s.CompressionMode = ModeUncompressed
	}

	return postPoint, err
}
