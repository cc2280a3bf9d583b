package pcl

import "testing"

func TestInterpreterConfigureImageDataInstallsPalette(t *testing.T) {
	it := NewInterpreter(&fakeSurface{})
	payload := []byte{byte(DeviceCMY), byte(IndexedByPlane), 3, 1, 1, 1}
	if err := it.ConfigureImageData(payload); err != nil {
		t.Fatalf("ConfigureImageData: %v", err)
	}
	if it.Palettes.Active().size() != 8 {
		t.Errorf("got size %d, want 8", it.Palettes.Active().size())
	}
}

func TestInterpreterStageAndAssignComponents(t *testing.T) {
	it := NewInterpreter(&fakeSurface{})
	if err := it.StageComponent(0, 64); err != nil {
		t.Fatalf("StageComponent: %v", err)
	}
	if err := it.StageComponent(1, 64); err != nil {
		t.Fatalf("StageComponent: %v", err)
	}
	if err := it.StageComponent(2, 64); err != nil {
		t.Fatalf("StageComponent: %v", err)
	}
	if err := it.AssignStagedComponents(1); err != nil {
		t.Fatalf("AssignStagedComponents: %v", err)
	}
	got := it.Palettes.Active().GetEntry(1)
	if got[0] == 0 {
		t.Errorf("expected a non-zero normalized entry, got %v", got)
	}
}

func TestInterpreterSetForegroundFromSlot(t *testing.T) {
	it := NewInterpreter(&fakeSurface{})
	if err := it.SetForegroundFromSlot(1); err != nil {
		t.Fatalf("SetForegroundFromSlot: %v", err)
	}
	if it.Foreground.Color != [3]uint8{0, 0, 0} {
		t.Errorf("got %v, want black (slot 1 of the default palette)", it.Foreground.Color)
	}
}

func TestInterpreterDefineUserPatternRoundTrip(t *testing.T) {
	it := NewInterpreter(&fakeSurface{})
	if err := it.SetCurrentPatternID(42); err != nil {
		t.Fatalf("SetCurrentPatternID: %v", err)
	}
	header := []byte{0, 0, 1, 0, 0, 8, 0, 2}
	payload := append(header, 0xFF, 0x00)
	if err := it.DefineUserPattern(payload); err != nil {
		t.Fatalf("DefineUserPattern: %v", err)
	}
	if _, ok := it.Patterns[42]; !ok {
		t.Fatal("expected pattern 42 to be stored")
	}
}

func TestInterpreterSetIlluminantRejectsIllegalValues(t *testing.T) {
	it := NewInterpreter(&fakeSurface{})
	zero := make([]byte, 8) // x=0, y=0 -> y must be > 0
	if err := it.SetIlluminant(zero); err == nil {
		t.Fatal("expected InvalidParameters for y=0")
	}
}

func TestInterpreterResetDropsPatterns(t *testing.T) {
	it := NewInterpreter(&fakeSurface{})
	it.Patterns[1] = &UserPattern{}
	if err := it.Reset(ResetPrinter); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if len(it.Patterns) != 0 {
		t.Error("Printer reset should clear user-defined patterns")
	}
}
