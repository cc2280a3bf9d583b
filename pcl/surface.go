package pcl

// Rect is an axis-aligned device-space rectangle, left/top inclusive,
// right/bottom exclusive.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

func (r Rect) Dx() float64 { return r.X1 - r.X0 }
func (r Rect) Dy() float64 { return r.Y1 - r.Y0 }

// Point is a device- or raster-space coordinate.
type Point struct {
	X, Y float64
}

// Matrix2x3 is an affine transform [a b c d tx ty] mapping (x,y) to
// (a*x+c*y+tx, b*x+d*y+ty) — the step matrix of §3/§4.6 and the
// raster-to-device transform of §4.7.1.
type Matrix2x3 struct {
	A, B, C, D, Tx, Ty float64
}

// Identity2x3 is the identity transform.
var Identity2x3 = Matrix2x3{A: 1, D: 1}

// Apply transforms p by m.
func (m Matrix2x3) Apply(p Point) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y + m.Tx,
		Y: m.B*p.X + m.D*p.Y + m.Ty,
	}
}

// Invert returns the inverse transform, or Identity2x3 with ok=false if m is
// singular.
func (m Matrix2x3) Invert() (Matrix2x3, bool) {
	det := m.A*m.D - m.B*m.C
	if det == 0 {
		return Identity2x3, false
	}
	inv := 1 / det
	a := m.D * inv
	b := -m.B * inv
	c := -m.C * inv
	d := m.A * inv
	tx := -(a*m.Tx + c*m.Ty)
	ty := -(b*m.Tx + d*m.Ty)
	return Matrix2x3{A: a, B: b, C: c, D: d, Tx: tx, Ty: ty}, true
}

// ImageFormat distinguishes chunky (interleaved) from component-planar pixel
// layout in ImageParams (spec §6.2).
type ImageFormat int

const (
	FormatChunky ImageFormat = iota
	FormatPlanar
)

// ImageParams describes an image the core is about to stream via
// BeginImage/ImageRow/EndImage (spec §6.2).
type ImageParams struct {
	Width, Height    int
	BitsPerComponent int
	Format           ImageFormat
	Decode           [6]float64
	HasMaskColor     bool
	MaskColor        uint32
	CombineWithPaint bool
}

// ImageEnumerator is an opaque handle returned by Surface.BeginImage.
type ImageEnumerator interface{}

// Surface is the abstract device sink the core draws against (spec §6.2).
// It is an external collaborator: this package never implements it for
// production use, only for tests and the cmd/pclview demo viewer.
type Surface interface {
	FillRect(rect Rect, color [3]uint8, rop byte) error

	// StripTile paints rect by repeating tile with the given phase, for
	// simple (non-stepped) tilings.
	StripTile(rect Rect, tile *PatternTile, phase Point, fg, bg [3]uint8, rop byte) error

	// StripRop paints rect using a stepped tiling with a rop.
	StripRop(rect Rect, sourceBits []byte, raster Matrix2x3, tile *PatternTile, rop byte, phase Point) error

	BeginImage(params ImageParams) (ImageEnumerator, error)
	ImageRow(enum ImageEnumerator, row []byte) (int, error)
	EndImage(enum ImageEnumerator) error

	CopyMono(rect Rect, bits []byte, fg, bg [3]uint8, rop byte) error
	CopyColor(rect Rect, pixels []byte, rop byte) error
	CopyPlanes(rect Rect, planes [][]byte, rop byte) error

	SetRop(rop byte) error
	SetSourceTransparent(bool) error
	SetPatternTransparent(bool) error
}
