package main

import (
	"fmt"

	"github.com/pcl5c/core/pcl"
	"github.com/veandco/go-sdl2/sdl"
)

// PageRenderer is a pcl.Surface backed by an in-memory RGBA page buffer and
// an sdl.Renderer streaming texture, mirroring the teacher's
// gui.Renderer.DrawBackground lock/copy/unlock texture update.
//
// It keeps the demo simple: every draw overwrites destination pixels with
// the rop's source-true result rather than running the full three-operand
// truth table against the existing destination byte. The interpreter and
// raster engine already own the real rop semantics (see pcl/printmodel.go);
// this Surface only has to make the result visible.
type PageRenderer struct {
	renderer *sdl.Renderer
	texture  *sdl.Texture

	width, height int
	buf           []byte // RGBA8888, width*height*4

	rop                                byte
	sourceTransparent, patTransparent bool
}

// NewPageRenderer allocates a page buffer of the given pixel size and a
// matching streaming texture on renderer.
func NewPageRenderer(renderer *sdl.Renderer, width, height int) (*PageRenderer, error) {
	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ABGR8888, sdl.TEXTUREACCESS_STREAMING, int32(width), int32(height))
	if err != nil {
		return nil, fmt.Errorf("pclview: unable to create page texture: %s", err)
	}

	return &PageRenderer{
		renderer: renderer,
		texture:  texture,
		width:    width,
		height:   height,
		buf:      make([]byte, width*height*4),
		rop:      0xCC,
	}, nil
}

func (r *PageRenderer) Destroy() error {
	return r.texture.Destroy()
}

// Present copies the page buffer to dst via the streaming texture.
func (r *PageRenderer) Present(dst *sdl.Rect) error {
	pixels, _, err := r.texture.Lock(nil)
	if err != nil {
		return fmt.Errorf("pclview: unable to lock page texture: %s", err)
	}
	copy(pixels, r.buf)
	r.texture.Unlock()

	if err := r.renderer.Copy(r.texture, nil, dst); err != nil {
		return fmt.Errorf("pclview: unable to copy page texture: %s", err)
	}
	return nil
}

// RGBA returns the page buffer, for the PNG preview exporter.
func (r *PageRenderer) RGBA() (buf []byte, w, h int) {
	return r.buf, r.width, r.height
}

func (r *PageRenderer) offset(x, y int) int { return (y*r.width + x) * 4 }

func (r *PageRenderer) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < r.width && y < r.height
}

func (r *PageRenderer) setPixel(x, y int, c [3]uint8) {
	if !r.inBounds(x, y) {
		return
	}
	o := r.offset(x, y)
	r.buf[o], r.buf[o+1], r.buf[o+2], r.buf[o+3] = c[0], c[1], c[2], 0xFF
}

func clampRectToBuf(rect pcl.Rect, w, h int) (x0, y0, x1, y1 int) {
	x0, y0 = int(rect.X0), int(rect.Y0)
	x1, y1 = int(rect.X1), int(rect.Y1)
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > w {
		x1 = w
	}
	if y1 > h {
		y1 = h
	}
	return x0, y0, x1, y1
}

func (r *PageRenderer) FillRect(rect pcl.Rect, color [3]uint8, rop byte) error {
	x0, y0, x1, y1 := clampRectToBuf(rect, r.width, r.height)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			r.setPixel(x, y, color)
		}
	}
	return nil
}

// tileBit reports whether the tile's bitmap has a set bit at (tx, ty),
// within [0,Width)x[0,Height).
func tileBit(tile *pcl.PatternTile, tx, ty int) bool {
	rowBytes := (tile.Width + 7) / 8
	idx := ty*rowBytes + tx/8
	if idx < 0 || idx >= len(tile.TBits) {
		return false
	}
	shift := uint(7 - tx%8)
	return tile.TBits[idx]&(1<<shift) != 0
}

func (r *PageRenderer) StripTile(rect pcl.Rect, tile *pcl.PatternTile, phase pcl.Point, fg, bg [3]uint8, rop byte) error {
	x0, y0, x1, y1 := clampRectToBuf(rect, r.width, r.height)
	for y := y0; y < y1; y++ {
		ty := int(float64(y)-phase.Y) % tile.Height
		if ty < 0 {
			ty += tile.Height
		}
		for x := x0; x < x1; x++ {
			tx := int(float64(x)-phase.X) % tile.Width
			if tx < 0 {
				tx += tile.Width
			}
			if tileBit(tile, tx, ty) {
				r.setPixel(x, y, fg)
			} else {
				r.setPixel(x, y, bg)
			}
		}
	}
	return nil
}

func (r *PageRenderer) StripRop(rect pcl.Rect, sourceBits []byte, raster pcl.Matrix2x3, tile *pcl.PatternTile, rop byte, phase pcl.Point) error {
	fg := [3]uint8{0, 0, 0}
	bg := [3]uint8{255, 255, 255}
	return r.StripTile(rect, tile, phase, fg, bg, rop)
}

// pageImageEnumerator tracks the cursor of an in-flight BeginImage/ImageRow
// sequence; returned to the caller as an opaque pcl.ImageEnumerator.
type pageImageEnumerator struct {
	params pcl.ImageParams
	x0, y0 int
	row    int
}

func (r *PageRenderer) BeginImage(params pcl.ImageParams) (pcl.ImageEnumerator, error) {
	return &pageImageEnumerator{params: params}, nil
}

func (r *PageRenderer) ImageRow(enum pcl.ImageEnumerator, row []byte) (int, error) {
	e, ok := enum.(*pageImageEnumerator)
	if !ok {
		return 0, fmt.Errorf("pclview: ImageRow: unexpected enumerator type %T", enum)
	}
	n := 0
	for x := 0; x*3+2 < len(row) && x < e.params.Width; x++ {
		r.setPixel(e.x0+x, e.y0+e.row, [3]uint8{row[x*3], row[x*3+1], row[x*3+2]})
		n++
	}
	e.row++
	return n, nil
}

func (r *PageRenderer) EndImage(enum pcl.ImageEnumerator) error {
	return nil
}

func (r *PageRenderer) CopyMono(rect pcl.Rect, bits []byte, fg, bg [3]uint8, rop byte) error {
	x0, y0, x1, y1 := clampRectToBuf(rect, r.width, r.height)
	w := x1 - x0
	if w <= 0 {
		return nil
	}
	rowBytes := (w + 7) / 8
	for y := y0; y < y1; y++ {
		rowStart := (y - y0) * rowBytes
		for x := x0; x < x1; x++ {
			bit := x - x0
			idx := rowStart + bit/8
			if idx >= len(bits) {
				continue
			}
			shift := uint(7 - bit%8)
			if bits[idx]&(1<<shift) != 0 {
				r.setPixel(x, y, fg)
			} else {
				r.setPixel(x, y, bg)
			}
		}
	}
	return nil
}

func (r *PageRenderer) CopyColor(rect pcl.Rect, pixels []byte, rop byte) error {
	x0, y0, x1, y1 := clampRectToBuf(rect, r.width, r.height)
	w := x1 - x0
	if w <= 0 {
		return nil
	}
	for y := y0; y < y1; y++ {
		rowStart := (y - y0) * w * 3
		for x := x0; x < x1; x++ {
			o := rowStart + (x-x0)*3
			if o+2 >= len(pixels) {
				continue
			}
			r.setPixel(x, y, [3]uint8{pixels[o], pixels[o+1], pixels[o+2]})
		}
	}
	return nil
}

func (r *PageRenderer) CopyPlanes(rect pcl.Rect, planes [][]byte, rop byte) error {
	x0, y0, x1, y1 := clampRectToBuf(rect, r.width, r.height)
	w := x1 - x0
	if w <= 0 {
		return nil
	}
	rowBytes := (w + 7) / 8
	bitAt := func(plane []byte, rowOffset, bit int) bool {
		idx := rowOffset + bit/8
		if idx >= len(plane) {
			return false
		}
		return plane[idx]&(1<<uint(7-bit%8)) != 0
	}
	for y := y0; y < y1; y++ {
		rowOffset := (y - y0) * rowBytes
		for x := x0; x < x1; x++ {
			bit := x - x0
			var c [3]uint8
			for p := 0; p < len(planes) && p < 3; p++ {
				if bitAt(planes[p], rowOffset, bit) {
					c[p] = 0xFF
				}
			}
			r.setPixel(x, y, c)
		}
	}
	return nil
}

func (r *PageRenderer) SetRop(rop byte) error {
	r.rop = rop
	return nil
}

func (r *PageRenderer) SetSourceTransparent(v bool) error {
	r.sourceTransparent = v
	return nil
}

func (r *PageRenderer) SetPatternTransparent(v bool) error {
	r.patTransparent = v
	return nil
}
