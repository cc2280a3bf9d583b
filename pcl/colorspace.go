package pcl

// smpteC is the SMPTE-C-like chromaticity used when a use_cie_color toggle
// rewrites a device RGB/CMY request into Colorimetric RGB (spec §4.3).
var smpteC = [4][2]float64{
	{0.640, 0.340}, // red
	{0.310, 0.595}, // green
	{0.155, 0.070}, // blue
	{0.313, 0.329}, // white
}

// ColorSpace is a built, reference-counted color space: either a base
// (device-independent or device) space, or an indexed space layered on top
// of one. Mutation is copy-on-write: Unshare clones when more than one
// owner holds the value (spec §5, §9 design notes).
type ColorSpace struct {
	refs *int

	kind     SpaceKind
	original SpaceKind // the kind before CIE substitution, for default-palette ordering
	indexed  bool

	cid CID

	// Per-primary normalization: blackref_i and inv_range_i = 255/(whiteref-blackref).
	blackRef [3]float64
	invRange [3]float64

	// Decode is the PCL Decode array: [min0,max0,min1,max1,min2,max2] for
	// direct spaces, or [0, 2^bits_per_index-1] for indexed spaces.
	Decode [6]float64

	lookupTbl []byte // color-lookup table remap, if any (update_lookup_tbl)

	useCIEColor  bool
	clusterShort bool // device clusters device-independent spaces to ColorimetricRGB on the short CID form
}

// newColorSpace returns a fresh refcounted handle with refcount 1.
func newColorSpace() *ColorSpace {
	n := 1
	return &ColorSpace{refs: &n}
}

// Retain increments the refcount and returns the same handle (a share, not a
// clone) for parent-graphics-state save (spec §5).
func (cs *ColorSpace) Retain() *ColorSpace {
	if cs == nil {
		return nil
	}
	*cs.refs++
	return cs
}

// Release decrements the refcount. Callers must not use cs after Release if
// the refcount reaches zero.
func (cs *ColorSpace) Release() {
	if cs == nil {
		return
	}
	*cs.refs--
}

// unshare returns a private, mutable copy of cs if more than one reference
// exists, otherwise cs itself (copy-on-write, spec §9 design notes).
func (cs *ColorSpace) unshare() *ColorSpace {
	if cs == nil {
		return newColorSpace()
	}
	if *cs.refs <= 1 {
		return cs
	}
	*cs.refs--
	clone := *cs
	n := 1
	clone.refs = &n
	clone.lookupTbl = append([]byte(nil), cs.lookupTbl...)
	return &clone
}

// BuildBaseOption configures BuildBase.
type BuildBaseOption func(*ColorSpace)

// WithCIEColor enables the use_cie_color substitution: a request for device
// RGB/CMY is rewritten to ColorimetricRGB with gamma=2.2, unit gain and
// SMPTE-C-like chromaticity, remembering the original kind for default
// palette ordering (spec §4.3).
func WithCIEColor(enabled bool) BuildBaseOption {
	return func(cs *ColorSpace) { cs.useCIEColor = enabled }
}

// WithClusterShortForm enables the cluster behavior that collapses all
// device-independent spaces to ColorimetricRGB on the short (six-byte) CID
// form (spec §4.3); a build-time device flag.
func WithClusterShortForm(enabled bool) BuildBaseOption {
	return func(cs *ColorSpace) { cs.clusterShort = enabled }
}

// BuildBase constructs the base (non-indexed) color space named by cid (spec
// §4.3 build_base).
func BuildBase(cid CID, opts ...BuildBaseOption) *ColorSpace {
	cs := newColorSpace()
	for _, opt := range opts {
		opt(cs)
	}

	cs.cid = cid
	cs.original = cid.SpaceKind
	cs.kind = cid.SpaceKind

	deviceIndependent := cid.SpaceKind == ColorimetricRGB || cid.SpaceKind == CIELab || cid.SpaceKind == LuminanceChrominance
	device := cid.SpaceKind == DeviceRGB || cid.SpaceKind == DeviceCMY

	if cs.clusterShort && !cid.HasLongForm && deviceIndependent {
		cs.kind = ColorimetricRGB
	}
	if cs.useCIEColor && device {
		cs.kind = ColorimetricRGB
		cs.cid.Colorimetric = ColorimetricParams{
			Gain:   [3]float64{1, 1, 1},
			Gamma:  [3]float64{2.2, 2.2, 2.2},
			Chroma: smpteC,
			MinVal: [3]float64{0, 0, 0},
			MaxVal: [3]float64{1, 1, 1},
		}
	}

	cs.setDefaultNormAndDecode()
	return cs
}

// BuildIndexed constructs an indexed space layered on a base space (spec
// §4.3 build_indexed), inheriting the base's normalization. For an indexed
// encoding Decode is the index range; for a direct encoding it is the base's
// per-primary Decode. fixed and fromHPGL2 are not used by the space itself:
// buildIndexedPalette applies them to the Palette it builds.
func BuildIndexed(cid CID, base *ColorSpace, fixed, fromHPGL2 bool) *ColorSpace {
	cs := newColorSpace()
	cs.cid = cid
	cs.kind = base.kind
	cs.original = base.original
	cs.indexed = true
	cs.useCIEColor = base.useCIEColor
	cs.clusterShort = base.clusterShort
	cs.blackRef = base.blackRef
	cs.invRange = base.invRange
	_ = fixed
	_ = fromHPGL2
	if !cid.Encoding.indexed() {
		cs.Decode = base.Decode
		return cs
	}
	cs.Decode[0] = 0
	cs.Decode[1] = float64(uint32(1)<<cid.BitsPerIndex - 1)
	return cs
}

// setDefaultNormAndDecode installs the normalization implied by the CID's
// declared bit depths (white = max code value, black = 0) until an explicit
// SetNormAndDecode call overrides it.
func (cs *ColorSpace) setDefaultNormAndDecode() {
	if cs.indexed {
		cs.Decode[0] = 0
		cs.Decode[1] = float64(uint32(1)<<cs.cid.BitsPerIndex - 1)
		return
	}
	var white [3]float64
	var black [3]float64
	for i := 0; i < 3; i++ {
		n := cs.cid.BitsPerPrimary[i]
		white[i] = float64(uint32(1)<<n - 1)
		black[i] = 0
	}
	cs.SetNormAndDecode(white, black)
}

// SetNormAndDecode stores (blackref_i, inv_range_i) and recomputes Decode
// per the formula in spec §4.3. For indexed encodings Decode is always [0,
// 2^bits_per_index-1] regardless of white/black.
func (cs *ColorSpace) SetNormAndDecode(white, black [3]float64) {
	for i := 0; i < 3; i++ {
		cs.blackRef[i] = black[i]
		rng := white[i] - black[i]
		if rng == 0 {
			rng = 1
		}
		cs.invRange[i] = 255.0 / rng
	}

	if cs.indexed {
		cs.Decode[0] = 0
		cs.Decode[1] = float64(uint32(1)<<cs.cid.BitsPerIndex - 1)
		return
	}

	for i := 0; i < 3; i++ {
		n := float64(uint32(1) << cs.cid.BitsPerPrimary[i])
		cs.Decode[2*i] = -cs.blackRef[i] * cs.invRange[i] / 255.0
		cs.Decode[2*i+1] = (n - 1 - cs.blackRef[i]) * cs.invRange[i] / 255.0
	}
}

// normalize maps a raw component value in source space into [0,255], 0 =
// minimum intensity, 255 = maximum, per spec §3.
func (cs *ColorSpace) normalize(component int, v float64) uint8 {
	n := (v - cs.blackRef[component]) * cs.invRange[component]
	if n < 0 {
		n = 0
	}
	if n > 255 {
		n = 255
	}
	return uint8(n + 0.5)
}

// UpdateLookupTbl installs a color-lookup table on a device-independent base
// space and signals that any indexed space built from it must be rebuilt
// (spec §4.3 update_lookup_tbl). Returns the (possibly cloned) handle.
func (cs *ColorSpace) UpdateLookupTbl(table []byte) *ColorSpace {
	cs = cs.unshare()
	cs.lookupTbl = append([]byte(nil), table...)
	return cs
}

// IsWhite reports whether the component triple rgb is exactly white
// (0xFFFFFF), per spec §4.3 is_white.
func IsWhite(rgb [3]uint8) bool {
	return rgb[0] == 0xFF && rgb[1] == 0xFF && rgb[2] == 0xFF
}

// IsBlack reports whether rgb is exactly black (0x000000), per spec §4.3
// is_black.
func IsBlack(rgb [3]uint8) bool {
	return rgb[0] == 0 && rgb[1] == 0 && rgb[2] == 0
}

// Kind returns the (possibly CIE-substituted) active space kind.
func (cs *ColorSpace) Kind() SpaceKind { return cs.kind }

// OriginalKind returns the space kind requested before any CIE substitution,
// used so default-palette generation still produces the original-model
// ordering (spec §4.3).
func (cs *ColorSpace) OriginalKind() SpaceKind { return cs.original }

// IsCMY reports whether the space (pre-substitution) is CMY-ordered.
func (cs *ColorSpace) IsCMY() bool { return cs.original == DeviceCMY }

// LookupTable returns the installed color-lookup table, or nil if none was
// set (spec §4.3 update_lookup_tbl).
func (cs *ColorSpace) LookupTable() []byte { return cs.lookupTbl }
