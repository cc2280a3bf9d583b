package pcl

import "testing"

type fakeSurface struct {
	stripTileCalls int
	stripRopCalls  int
	lastPhase      Point
}

func (f *fakeSurface) FillRect(Rect, [3]uint8, byte) error { return nil }
func (f *fakeSurface) StripTile(rect Rect, tile *PatternTile, phase Point, fg, bg [3]uint8, rop byte) error {
	f.stripTileCalls++
	f.lastPhase = phase
	return nil
}
func (f *fakeSurface) StripRop(rect Rect, bits []byte, raster Matrix2x3, tile *PatternTile, rop byte, phase Point) error {
	f.stripRopCalls++
	return nil
}
func (f *fakeSurface) BeginImage(ImageParams) (ImageEnumerator, error) { return nil, nil }
func (f *fakeSurface) ImageRow(ImageEnumerator, []byte) (int, error)   { return 0, nil }
func (f *fakeSurface) EndImage(ImageEnumerator) error                 { return nil }
func (f *fakeSurface) CopyMono(Rect, []byte, [3]uint8, [3]uint8, byte) error { return nil }
func (f *fakeSurface) CopyColor(Rect, []byte, byte) error                   { return nil }
func (f *fakeSurface) CopyPlanes(Rect, [][]byte, byte) error                { return nil }
func (f *fakeSurface) SetRop(byte) error                                   { return nil }
func (f *fakeSurface) SetSourceTransparent(bool) error                      { return nil }
func (f *fakeSurface) SetPatternTransparent(bool) error                     { return nil }

func TestPatternTilerSimpleTilePath(t *testing.T) {
	sink := &fakeSurface{}
	tiler := NewPatternTiler(sink)

	tile := &PatternTile{Width: 4, Height: 4, IsSimple: true}
	err := tiler.FillRect(Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}, tile, Point{}, [3]uint8{}, [3]uint8{}, 0xCC)
	if err != nil {
		t.Fatalf("FillRect: %v", err)
	}
	if sink.stripTileCalls != 1 {
		t.Errorf("got %d StripTile calls, want 1", sink.stripTileCalls)
	}
	if sink.stripRopCalls != 0 {
		t.Errorf("got %d StripRop calls, want 0 for a simple tile", sink.stripRopCalls)
	}
}

func TestPatternTilerSteppedPath(t *testing.T) {
	sink := &fakeSurface{}
	tiler := NewPatternTiler(sink)

	// A sheared step matrix is never classified simple.
	tile := &PatternTile{Width: 4, Height: 4, Step: Matrix2x3{A: 4, B: 1, C: 0, D: 4}}
	err := tiler.FillRect(Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}, tile, Point{}, [3]uint8{}, [3]uint8{}, 0xCC)
	if err != nil {
		t.Fatalf("FillRect: %v", err)
	}
	if sink.stripRopCalls == 0 {
		t.Error("expected at least one StripRop call for a stepped tile")
	}
}

func TestClassifyStepSimple(t *testing.T) {
	tile := &PatternTile{Width: 4, Height: 8, Step: Matrix2x3{A: 4, D: 8}}
	if !classifyStep(tile) {
		t.Error("axis-aligned step equal to tile size should be simple")
	}
}
