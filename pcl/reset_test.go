package pcl

import "testing"

func TestResetPrinterIdempotent(t *testing.T) {
	palettes := NewPaletteStore()
	model := NewPrintModel()
	raster := NewRasterState()
	cache := NewPatternCache(8, 1<<16)
	patterns := map[PatternID]*UserPattern{1: {}}

	r := NewResetter(palettes, model, raster, cache, patterns)

	if err := r.Do(ResetPrinter); err != nil {
		t.Fatalf("first Printer reset: %v", err)
	}
	if len(patterns) != 0 {
		t.Errorf("Printer reset should drop user-defined patterns, got %d left", len(patterns))
	}

	// A second Printer reset must be equivalent to the first (spec §8).
	if err := r.Do(ResetPrinter); err != nil {
		t.Fatalf("second Printer reset: %v", err)
	}
	if len(patterns) != 0 {
		t.Errorf("patterns should remain empty after a repeated reset")
	}
}

func TestResetPermanentReleasesSingletons(t *testing.T) {
	palettes := NewPaletteStore()
	model := NewPrintModel()
	raster := NewRasterState()
	cache := NewPatternCache(8, 1<<16)
	patterns := map[PatternID]*UserPattern{}

	_ = defaultForeground() // ensure the singleton exists
	r := NewResetter(palettes, model, raster, cache, patterns)
	if err := r.Do(ResetPermanent); err != nil {
		t.Fatalf("Permanent reset: %v", err)
	}
	if defaultForegroundSingleton != nil {
		t.Error("Permanent reset must release the default foreground singleton")
	}
}
