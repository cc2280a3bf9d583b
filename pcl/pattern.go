package pcl

import "image"

// PatternKind names a pattern source (spec §3, original_source pcl/pcpattyp.h
// pcl_pattern_source_t).
type PatternKind int

const (
	PatternSolidForeground PatternKind = iota
	PatternSolidWhite
	PatternShading
	PatternCrossHatch
	PatternUserDefined
	PatternCurrentPattern
	PatternRasterColor
)

// PatternID is a 16-bit pattern identifier (spec §3).
type PatternID uint16

// UserPatternHeader is the fixed-layout header preceding a user-defined
// pattern's row-packed mono bitmap (spec §3): format (0 plain, 20 with
// resolution), continuation flag, encoding (must be 1), width, height.
type UserPatternHeader struct {
	Format       byte
	Continuation bool
	Encoding     byte
	Width        uint16
	Height       uint16
}

const userPatternHeaderLen = 8

// ParseUserPattern decodes a "* c # W" payload (header + row-packed mono
// bitmap) per spec §3. A width or height of zero, or a bitmap length that
// does not equal ceil(w/8)*h, is InvalidParameters (spec §8 boundary
// behavior).
func ParseUserPattern(payload []byte) (UserPatternHeader, []byte, error) {
	if len(payload) < userPatternHeaderLen {
		return UserPatternHeader{}, nil, invalidParams("ParseUserPattern", "payload too short for header: %d bytes", len(payload))
	}

	h := UserPatternHeader{
		Format:       payload[0],
		Continuation: payload[1] != 0,
		Encoding:     payload[2],
		Width:        uint16(payload[4])<<8 | uint16(payload[5]),
		Height:       uint16(payload[6])<<8 | uint16(payload[7]),
	}

	if h.Width == 0 || h.Height == 0 {
		return UserPatternHeader{}, nil, invalidParams("ParseUserPattern", "zero width or height: %dx%d", h.Width, h.Height)
	}

	bitmap := payload[userPatternHeaderLen:]
	want := ((int(h.Width) + 7) / 8) * int(h.Height)
	if len(bitmap) != want {
		return UserPatternHeader{}, nil, invalidParams("ParseUserPattern", "bitmap length %d does not match declared size %dx%d (want %d)", len(bitmap), h.Width, h.Height, want)
	}

	return h, bitmap, nil
}

// UserPattern is a parsed, stored user-defined pattern, keyed by PatternID in
// the interpreter's pattern dictionary (distinct from the PatternCache's
// rendered-tile instances).
type UserPattern struct {
	Header UserPatternHeader
	Bitmap []byte

	// RGBAPlanes holds an 8-bit planar color pattern's channel data when the
	// pattern carries a transparency group (spec §3); nil for plain mono
	// patterns.
	RGBAPlanes [][]byte
	HasAlpha   bool
}

// crossHatchStipples are the six fixed 8x8 1-bit stipple masks used to
// procedurally generate CrossHatch(0..5) tiles (spec PART D.4, grounded on
// original_source/base/gxp1fill.c's fill-path stipple tables).
var crossHatchStipples = [6][8]byte{
	{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80}, // vertical lines
	{0xFF, 0x00, 0x00, 0x00, 0xFF, 0x00, 0x00, 0x00}, // horizontal lines
	{0x81, 0x42, 0x24, 0x18, 0x18, 0x24, 0x42, 0x81}, // diagonal cross
	{0x80, 0x40, 0x20, 0x10, 0x08, 0x04, 0x02, 0x01}, // diagonal \ (row 0 on top)
	{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80}, // diagonal / (row 0 on top)
	{0x99, 0x99, 0x66, 0x66, 0x99, 0x99, 0x66, 0x66}, // checkerboard
}

// GenerateCrossHatch procedurally builds the 8x8 mono tile bitmap for
// crosshatch level n (0..5), per spec PART D.4.
func GenerateCrossHatch(n int) ([]byte, int, int, error) {
	if n < 0 || n > 5 {
		return nil, 0, 0, invalidParams("GenerateCrossHatch", "level out of range: %d", n)
	}
	return append([]byte(nil), crossHatchStipples[n][:]...), 8, 8, nil
}

// GenerateShading procedurally builds a 1-bit 8x8 Bayer-style ordered-dither
// tile approximating intensity level (0..100), per spec PART D.4.
func GenerateShading(level int) ([]byte, int, int, error) {
	if level < 0 || level > 100 {
		return nil, 0, 0, invalidParams("GenerateShading", "level out of range: %d", level)
	}

	// 8x8 Bayer threshold matrix, values 0..63.
	bayer := [8][8]int{
		{0, 32, 8, 40, 2, 34, 10, 42},
		{48, 16, 56, 24, 50, 18, 58, 26},
		{12, 44, 4, 36, 14, 46, 6, 38},
		{60, 28, 52, 20, 62, 30, 54, 22},
		{3, 35, 11, 43, 1, 33, 9, 41},
		{51, 19, 59, 27, 49, 17, 57, 25},
		{15, 47, 7, 39, 13, 45, 5, 37},
		{63, 31, 55, 23, 61, 29, 53, 21},
	}

	threshold := (level * 64) / 100
	var bitmap [8]byte
	for y := 0; y < 8; y++ {
		var row byte
		for x := 0; x < 8; x++ {
			if bayer[y][x] < threshold {
				row |= 1 << (7 - x)
			}
		}
		bitmap[y] = row
	}
	return bitmap[:], 8, 8, nil
}

// renderedTileImage accumulates a tile's device-depth pixel data plus its
// 1-bit opacity mask, ahead of being wrapped into a PatternTile by the
// PatternCache (spec §3, §4.5).
type renderedTileImage struct {
	bits  *image.RGBA
	mask  []byte // 1-bit opacity mask, one bit per pixel, row-packed; nil means fully opaque
	alpha []byte // per-channel alpha plane, nil unless a transparency group applies
}
