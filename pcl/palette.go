package pcl

import "math/bits"

// cmyTable holds the canonical 8-color CMY-order table: white, cyan,
// magenta, blue, yellow, green, red, black (spec §4.2, original_source
// pcl/pcindxed.c set_dev_specific_default_palette / set_colmet_default_palette).
var cmyTable = [8][3]uint8{
	{255, 255, 255}, // white
	{0, 255, 255},   // cyan
	{255, 0, 255},   // magenta
	{0, 0, 255},     // blue
	{255, 255, 0},   // yellow
	{0, 255, 0},     // green
	{255, 0, 0},     // red
	{0, 0, 0},       // black
}

// order_1/cmy_order_2/cmy_order_3/rgb_order_2/rgb_order_3/gl2_order_2/gl2_order_3
// from original_source/pcl/pcindxed.c, indexed by bits_per_index-1 clamped to
// [0,2] (1-bit, 2-bit, >=3-bit).
var (
	order1     = []byte{0, 7}
	cmyOrder2  = []byte{0, 1, 2, 7}
	cmyOrder3  = []byte{0, 1, 2, 3, 4, 5, 6, 7}
	rgbOrder2  = []byte{7, 6, 5, 0}
	rgbOrder3  = []byte{7, 6, 5, 4, 3, 2, 1, 0}
	gl2Order2  = []byte{0, 7, 6, 5}
	gl2Order3  = []byte{0, 7, 6, 5, 4, 3, 2, 1}

	cmyOrderTables = [3][]byte{order1, cmyOrder2, cmyOrder3}
	rgbOrderTables = [3][]byte{order1, rgbOrder2, rgbOrder3}
	gl2OrderTables = [3][]byte{order1, gl2Order2, gl2Order3}
)

const defaultPenWidth = 1

// Palette is the palette descriptor + data described in spec §3.
type Palette struct {
	refs *int

	cid   CID
	base  *ColorSpace
	data  []uint8 // packed 8-bit/pixel palette data, size 2^bits_per_index * 3
	width []uint8 // per-entry pen width

	decode [6]float64
	fixed  bool
	isDflt bool
}

func (p *Palette) size() int { return len(p.data) / 3 }

// CID returns the descriptor this palette was built from (spec §3).
func (p *Palette) CID() CID { return p.cid }

// Base returns the palette's underlying color space.
func (p *Palette) Base() *ColorSpace { return p.base }

// WhiteIndex returns the slot index equal to white, or -1 if none is
// (spec §4.7.3's white-mask path needs this to build the mask row).
func (p *Palette) WhiteIndex() int {
	for i := 0; i < p.size(); i++ {
		if p.IsWhite(i) {
			return i
		}
	}
	return -1
}

// newDefaultPalette builds a fresh, non-fixed 2-entry RGB default palette
// (white, black), per the "installation invariant" of spec §4.2.
func newDefaultPalette() *Palette {
	cid := CID{SpaceKind: DeviceRGB, Encoding: IndexedByPixel, BitsPerIndex: 1, BitsPerPrimary: [3]uint8{8, 8, 8}}
	base := BuildBase(cid)
	p := buildIndexedPalette(cid, base, false, false)
	p.isDflt = true
	return p
}

// buildIndexedPalette constructs an indexed Palette and populates its
// default entries per spec §4.2/§4.3 build_indexed.
func buildIndexedPalette(cid CID, base *ColorSpace, fixed, fromHPGL2 bool) *Palette {
	n := 1
	size := 1 << cid.BitsPerIndex
	p := &Palette{
		refs:  &n,
		cid:   cid,
		base:  BuildIndexed(cid, base, fixed, fromHPGL2),
		data:  make([]uint8, size*3),
		width: make([]uint8, size),
		fixed: fixed,
	}
	p.decode = p.base.Decode
	p.setDefaultEntries(0, size, fromHPGL2)
	return p
}

// Retain/Release/unshare mirror ColorSpace's copy-on-write reference
// counting (spec §5, §9 design notes).
func (p *Palette) Retain() *Palette {
	if p == nil {
		return nil
	}
	*p.refs++
	return p
}

func (p *Palette) Release() {
	if p == nil {
		return
	}
	*p.refs--
}

func (p *Palette) unshare() *Palette {
	if p.fixed {
		// Mutating a fixed palette is a no-op (spec §3 invariant); callers
		// that try to unshare one get a disposable private copy instead of
		// ever touching the shared default.
		clone := *p
		n := 1
		clone.refs = &n
		clone.data = append([]uint8(nil), p.data...)
		clone.width = append([]uint8(nil), p.width...)
		clone.fixed = false
		return &clone
	}
	if *p.refs <= 1 {
		return p
	}
	*p.refs--
	clone := *p
	n := 1
	clone.refs = &n
	clone.data = append([]uint8(nil), p.data...)
	clone.width = append([]uint8(nil), p.width...)
	return &clone
}

// orderFor picks the default-color enumeration order for bitsPerIndex,
// mirroring original_source/pcl/pcindxed.c's bit-clamp-to-2 + gl2/rgb/cmy
// selection.
func orderFor(spaceKind, originalKind SpaceKind, bitsPerIndex uint8, fromHPGL2 bool) []byte {
	idx := int(bitsPerIndex) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > 2 {
		idx = 2
	}

	if fromHPGL2 {
		return gl2OrderTables[idx]
	}
	if (spaceKind == DeviceRGB || spaceKind == ColorimetricRGB) && originalKind != DeviceCMY {
		return rgbOrderTables[idx]
	}
	return cmyOrderTables[idx]
}

// setDefaultEntries fills palette slots [start, start+num) with the default
// colors for p's space, falling back to black beyond the first 8 entries
// (spec §4.2).
func (p *Palette) setDefaultEntries(start, num int, fromHPGL2 bool) {
	order := orderFor(p.base.Kind(), p.base.OriginalKind(), p.cid.BitsPerIndex, fromHPGL2)

	cnt := num
	if start+num > 8 {
		cnt = 8 - start
	}
	if cnt < 0 {
		cnt = 0
	}

	for i := 0; i < cnt; i++ {
		slot := start + i
		if slot >= len(order) {
			break
		}
		rgb := cmyTable[order[slot]]
		p.setRawEntry(slot, rgb)
		p.width[slot] = defaultPenWidth
	}
	for i := start + cnt; i < start+num && i < p.size(); i++ {
		p.setRawEntry(i, [3]uint8{0, 0, 0})
		p.width[i] = defaultPenWidth
	}
}

func (p *Palette) setRawEntry(slot int, rgb [3]uint8) {
	copy(p.data[slot*3:slot*3+3], rgb[:])
}

// SetDefaultEntry fills slot i with the default color for that slot index
// (spec §4.2 set_default_entry).
func (p *Palette) SetDefaultEntry(i int) (*Palette, error) {
	if p.fixed {
		return p, nil
	}
	if i < 0 || i >= p.size() {
		return p, invalidParams("Palette.SetDefaultEntry", "index %d out of range [0,%d)", i, p.size())
	}
	np := p.unshare()
	np.setDefaultEntries(i, 1, false)
	return np, nil
}

// SetEntry normalizes comp using the space's black/white references and
// writes bytes into slot i (spec §4.2 set_entry). Out-of-range i is
// InvalidParameters. Mutating a fixed palette is a no-op.
func (p *Palette) SetEntry(i int, comp [3]float64) (*Palette, error) {
	if i < 0 || i >= p.size() {
		return p, invalidParams("Palette.SetEntry", "index %d out of range [0,%d)", i, p.size())
	}
	if p.fixed {
		return p, nil
	}

	np := p.unshare()
	var rgb [3]uint8
	for c := 0; c < 3; c++ {
		rgb[c] = np.base.normalize(c, comp[c])
	}
	np.setRawEntry(i, rgb)
	return np, nil
}

// GetEntry returns the stored byte-exact RGB value of slot i.
func (p *Palette) GetEntry(i int) [3]uint8 {
	var rgb [3]uint8
	copy(rgb[:], p.data[i*3:i*3+3])
	return rgb
}

// IsWhite/IsBlack test slot i in source space (spec §4.3 is_white/is_black).
func (p *Palette) IsWhite(i int) bool { return IsWhite(p.GetEntry(i)) }
func (p *Palette) IsBlack(i int) bool { return IsBlack(p.GetEntry(i)) }

// SetPenWidth sets the pen width of slot i (spec §4.2 set_pen_width).
func (p *Palette) SetPenWidth(i int, w uint8) (*Palette, error) {
	if i < 0 || i >= p.size() {
		return p, invalidParams("Palette.SetPenWidth", "index %d out of range [0,%d)", i, p.size())
	}
	if p.fixed {
		return p, nil
	}
	np := p.unshare()
	np.width[i] = w
	return np, nil
}

// nextPowerOfTwo rounds n up to the next power of two in [1,256]; 0 becomes 1
// (spec §3, §4.2 set_num_entries).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	if n > 256 {
		n = 256
	}
	return 1 << bits.Len(uint(n-1))
}

// SetNumEntries rounds n up to a power of two; if the palette grows, newly
// added entries get default colors derived from the color space (spec §4.2
// set_num_entries). Fixed palettes are unaffected (no-op).
func (p *Palette) SetNumEntries(n int, fromHPGL2 bool) (*Palette, error) {
	if p.fixed {
		return p, nil
	}

	newSize := nextPowerOfTwo(n)
	if newSize == p.size() {
		return p, nil
	}

	np := p.unshare()
	oldSize := np.size()
	newData := make([]uint8, newSize*3)
	newWidth := make([]uint8, newSize)
	copy(newData, np.data)
	copy(newWidth, np.width)
	np.data = newData
	np.width = newWidth
	np.cid.BitsPerIndex = uint8(bits.Len(uint(newSize - 1)))
	if np.cid.BitsPerIndex == 0 {
		np.cid.BitsPerIndex = 1
	}

	if newSize > oldSize {
		np.setDefaultEntries(oldSize, newSize-oldSize, fromHPGL2)
	}
	return np, nil
}

// clone returns a deep, independently-refcounted copy (used by "copy active
// to ID").
func (p *Palette) clone() *Palette {
	n := 1
	np := &Palette{
		refs:   &n,
		cid:    p.cid,
		base:   p.base.Retain(),
		data:   append([]uint8(nil), p.data...),
		width:  append([]uint8(nil), p.width...),
		decode: p.decode,
		fixed:  false,
		isDflt: false,
	}
	return np
}

// ---- PaletteStore ----

// ControlOp names PaletteStore.Control operations (spec §4.2).
type ControlOp int

const (
	DeleteAllNotOnStack ControlOp = iota
	ClearStack
	DeleteByID
	CopyActiveToID
)

// PaletteStore is the ID-keyed palette dictionary plus a LIFO stack of
// shared references (spec §3, §4.2).
type PaletteStore struct {
	palettes map[uint16]*Palette
	stack    []*Palette
	active   *Palette
	activeID uint16
}

// NewPaletteStore returns a store whose active palette is the default 2-entry
// RGB palette (spec §4.2 installation invariant).
func NewPaletteStore() *PaletteStore {
	return &PaletteStore{
		palettes: make(map[uint16]*Palette),
		active:   newDefaultPalette(),
	}
}

// Active returns the currently selected palette.
func (s *PaletteStore) Active() *Palette { return s.active }

// Select activates the palette named id, creating a default palette if
// unknown (spec §4.2 select).
func (s *PaletteStore) Select(id uint16) {
	if p, ok := s.palettes[id]; ok {
		s.active = p
		s.activeID = id
		return
	}
	p := newDefaultPalette()
	s.palettes[id] = p
	s.active = p
	s.activeID = id
}

// Install installs (possibly replacing) palette p under id.
func (s *PaletteStore) Install(id uint16, p *Palette) {
	if old, ok := s.palettes[id]; ok {
		old.Release()
	}
	s.palettes[id] = p
	if id == s.activeID {
		s.active = p
	}
}

// SetActive replaces the active palette in place (used after a mutating
// operation like SetEntry returns a new value due to copy-on-write).
func (s *PaletteStore) SetActive(p *Palette) {
	s.active = p
	s.palettes[s.activeID] = p
}

// Push saves the active palette reference onto the LIFO stack, incrementing
// its refcount (spec §4.2 push).
func (s *PaletteStore) Push() {
	s.stack = append(s.stack, s.active.Retain())
}

// Pop restores the most recently pushed palette, releasing the reference
// (spec §4.2 pop). Popping an empty stack is a no-op.
func (s *PaletteStore) Pop() {
	if len(s.stack) == 0 {
		return
	}
	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	s.active = top
	s.activeID = 0
	top.Release()
}

// Control performs a store-wide control operation (spec §4.2 control).
func (s *PaletteStore) Control(op ControlOp, id uint16) error {
	switch op {
	case DeleteAllNotOnStack:
		onStack := make(map[*Palette]bool, len(s.stack))
		for _, p := range s.stack {
			onStack[p] = true
		}
		for pid, p := range s.palettes {
			if pid == s.activeID || onStack[p] {
				continue
			}
			p.Release()
			delete(s.palettes, pid)
		}
		return nil
	case ClearStack:
		for _, p := range s.stack {
			p.Release()
		}
		s.stack = nil
		return nil
	case DeleteByID:
		if p, ok := s.palettes[id]; ok {
			p.Release()
			delete(s.palettes, id)
			if id == s.activeID {
				s.active = newDefaultPalette()
			}
		}
		return nil
	case CopyActiveToID:
		s.Install(id, s.active.clone())
		return nil
	default:
		return invalidParams("PaletteStore.Control", "unknown control op: %d", op)
	}
}

// flushAll releases every palette and stacked reference (used by the
// Resetter for Permanent resets).
func (s *PaletteStore) flushAll() {
	for _, p := range s.stack {
		p.Release()
	}
	s.stack = nil
	for id, p := range s.palettes {
		p.Release()
		delete(s.palettes, id)
	}
	s.active = newDefaultPalette()
	s.activeID = 0
}
