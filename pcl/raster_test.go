package pcl

import "testing"

func TestRasterEngineEntryRowExit(t *testing.T) {
	sink := &fakeSurface{}
	palettes := NewPaletteStore()
	model := NewPrintModel()
	state := NewRasterState()
	state.SrcWidth, state.SrcWidthSet = 8, true
	state.SrcHeight, state.SrcHeightSet = 1, true

	engine := NewRasterEngine(state, sink, palettes, model)

	params := GraphicsModeParams{
		Mode:        NoScaleLeftMargin,
		LogicalClip: Rect{X0: 0, Y0: 0, X1: 100, Y1: 100},
		ToRasterSpace: func(rot int, p Point) Point {
			return p
		},
	}
	if err := engine.EnterGraphicsMode(params); err != nil {
		t.Fatalf("EnterGraphicsMode: %v", err)
	}
	if !state.GraphicsMode {
		t.Fatal("expected GraphicsMode to be true after entry")
	}

	if err := engine.TransferRow([]byte{0xFF}); err != nil {
		t.Fatalf("TransferRow: %v", err)
	}
	if state.RowsRendered != 1 {
		t.Errorf("got RowsRendered=%d, want 1", state.RowsRendered)
	}

	if _, err := engine.EndGraphics(true); err != nil {
		t.Fatalf("EndGraphics: %v", err)
	}
	if state.GraphicsMode {
		t.Error("expected GraphicsMode false after EndGraphics")
	}

	// A second EndGraphics call is a no-op (spec §8 idempotence).
	if _, err := engine.EndGraphics(true); err != nil {
		t.Fatalf("second EndGraphics: %v", err)
	}
}

func TestRasterEngineAdaptiveTransferPlaneRejected(t *testing.T) {
	sink := &fakeSurface{}
	palettes := NewPaletteStore()
	model := NewPrintModel()
	state := NewRasterState()
	state.CompressionMode = ModeAdaptive
	engine := NewRasterEngine(state, sink, palettes, model)

	if err := engine.TransferPlane([]byte{0, 0, 1}); err == nil {
		t.Fatal("expected ProtocolError for adaptive compression in TransferPlane")
	}
}

func TestRoundResolution(t *testing.T) {
	cases := map[int]int{50: 75, 75: 75, 120: 150, 300: 300, 601: 600}
	for in, want := range cases {
		if got := roundResolution(in); got != want {
			t.Errorf("roundResolution(%d) = %d, want %d", in, got, want)
		}
	}
}
