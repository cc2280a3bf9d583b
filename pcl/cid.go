package pcl

import "fmt"

// SpaceKind is the tagged color space variant selected by a CID (spec §3).
type SpaceKind byte

const (
	DeviceRGB SpaceKind = iota
	DeviceCMY
	ColorimetricRGB
	CIELab
	LuminanceChrominance
)

func (k SpaceKind) String() string {
	switch k {
	case DeviceRGB:
		return "DeviceRGB"
	case DeviceCMY:
		return "DeviceCMY"
	case ColorimetricRGB:
		return "ColorimetricRGB"
	case CIELab:
		return "CIELab"
	case LuminanceChrominance:
		return "LuminanceChrominance"
	default:
		return fmt.Sprintf("SpaceKind(%d)", byte(k))
	}
}

// paramLen returns the expected long-form parameter block length for kind,
// per spec §3: 18 device, 86 colorimetric, 30 CIELab, 122 luminance-chrominance.
func (k SpaceKind) paramLen() int {
	switch k {
	case DeviceRGB, DeviceCMY:
		return 18
	case ColorimetricRGB:
		return 86
	case CIELab:
		return 30
	case LuminanceChrominance:
		return 122
	default:
		return 0
	}
}

// Encoding selects how pixels address the palette (spec §3).
type Encoding byte

const (
	IndexedByPlane Encoding = iota
	IndexedByPixel
	DirectByPlane
	DirectByPixel
)

func (e Encoding) String() string {
	switch e {
	case IndexedByPlane:
		return "IndexedByPlane"
	case IndexedByPixel:
		return "IndexedByPixel"
	case DirectByPlane:
		return "DirectByPlane"
	case DirectByPixel:
		return "DirectByPixel"
	default:
		return fmt.Sprintf("Encoding(%d)", byte(e))
	}
}

func (e Encoding) indexed() bool {
	return e == IndexedByPlane || e == IndexedByPixel
}

// ColorimetricParams is the long-form parameter block for a ColorimetricRGB
// space: gain/gamma per primary plus the chromaticity vertices and
// component ranges, per original_source/pcl/pccid.c.
type ColorimetricParams struct {
	Gain   [3]float64
	Gamma  [3]float64
	// Chroma holds {red, green, blue, white} (x, y) vertices.
	Chroma [4][2]float64
	MinVal [3]float64
	MaxVal [3]float64
}

// CID is the Configure Image Data palette descriptor (spec §3).
type CID struct {
	SpaceKind      SpaceKind
	Encoding       Encoding
	BitsPerIndex   uint8    // 1..8, 0 means 1
	BitsPerPrimary [3]uint8 // 1..16, 0 means 8

	HasLongForm bool
	RawParams   []byte
	Colorimetric ColorimetricParams
}

const cidShortFormLen = 6

// ParseCID decodes a Configure Image Data payload (spec §3). A payload of
// exactly 6 bytes is the short form; a longer payload's tail must match the
// long-form parameter length for SpaceKind exactly, or InvalidParameters is
// returned without mutating any pre-existing state (the caller only installs
// the result after ParseCID succeeds).
func ParseCID(payload []byte) (CID, error) {
	if len(payload) < cidShortFormLen {
		return CID{}, invalidParams("ParseCID", "payload too short: %d bytes", len(payload))
	}

	cid := CID{
		SpaceKind:    SpaceKind(payload[0]),
		Encoding:     Encoding(payload[1]),
		BitsPerIndex: payload[2],
	}
	copy(cid.BitsPerPrimary[:], payload[3:6])

	if cid.BitsPerIndex == 0 {
		cid.BitsPerIndex = 1
	}
	if cid.BitsPerIndex > 8 {
		return CID{}, invalidParams("ParseCID", "bits_per_index out of range: %d", cid.BitsPerIndex)
	}
	for i := range cid.BitsPerPrimary {
		if cid.BitsPerPrimary[i] == 0 {
			cid.BitsPerPrimary[i] = 8
		}
		if cid.BitsPerPrimary[i] > 16 {
			return CID{}, invalidParams("ParseCID", "bits_per_primary[%d] out of range: %d", i, cid.BitsPerPrimary[i])
		}
	}

	switch cid.SpaceKind {
	case DeviceRGB, DeviceCMY, ColorimetricRGB, CIELab, LuminanceChrominance:
	default:
		return CID{}, invalidParams("ParseCID", "unknown space_kind: %d", cid.SpaceKind)
	}

	tail := payload[cidShortFormLen:]
	if len(tail) == 0 {
		return cid, nil
	}

	want := cid.SpaceKind.paramLen()
	if len(tail) != want {
		return CID{}, invalidParams("ParseCID", "long-form parameter length %d does not match space_kind %s (want %d)", len(tail), cid.SpaceKind, want)
	}

	cid.HasLongForm = true
	cid.RawParams = append([]byte(nil), tail...)

	if cid.SpaceKind == ColorimetricRGB {
		cid.Colorimetric = parseColorimetricParams(tail)
	}

	return cid, nil
}

// parseColorimetricParams reads the 86-byte ColorimetricRGB long form as a
// sequence of big-endian fixed-point (8.8) values: 3 gain, 3 gamma, 8
// chromaticity coordinates, 6 min/max values, padded to 86 bytes.
func parseColorimetricParams(b []byte) ColorimetricParams {
	var p ColorimetricParams
	read := func(off int) float64 {
		if off+2 > len(b) {
			return 0
		}
		raw := int16(uint16(b[off])<<8 | uint16(b[off+1]))
		return float64(raw) / 256.0
	}

	off := 0
	for i := 0; i < 3; i++ {
		p.Gain[i] = read(off)
		off += 2
	}
	for i := 0; i < 3; i++ {
		p.Gamma[i] = read(off)
		off += 2
	}
	for i := 0; i < 4; i++ {
		p.Chroma[i][0] = read(off)
		off += 2
		p.Chroma[i][1] = read(off)
		off += 2
	}
	for i := 0; i < 3; i++ {
		p.MinVal[i] = read(off)
		off += 2
	}
	for i := 0; i < 3; i++ {
		p.MaxVal[i] = read(off)
		off += 2
	}
	return p
}
