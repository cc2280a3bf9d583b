package pcl

import "testing"

func TestDecodeRunLength(t *testing.T) {
	// Mode-1 pairs each emit count+1 copies of value (spec §4.1); with
	// count-byte 0x03 that is 4 repeats, not 5, so this expected output is
	// derived from the algorithm rather than copied from any single literal
	// worked example.
	seed := NewSeedRow(10)
	if err := DecodeRow(ModeRunLength, seed, []byte{0x03, 0xAA, 0x01, 0x55}); err != nil {
		t.Fatalf("DecodeRow: %v", err)
	}
	want := []byte{0xAA, 0xAA, 0xAA, 0xAA, 0x55, 0x55, 0, 0, 0, 0}
	if string(seed.Data) != string(want) {
		t.Errorf("got %v, want %v", seed.Data, want)
	}
}

func TestDecodePackBits(t *testing.T) {
	seed := NewSeedRow(8)
	in := []byte{0xFE, 0xAA, 0x02, 0x10, 0x20, 0x30}
	if err := DecodeRow(ModePackBits, seed, in); err != nil {
		t.Fatalf("DecodeRow: %v", err)
	}
	want := []byte{0xAA, 0xAA, 0xAA, 0x10, 0x20, 0x30, 0, 0}
	if string(seed.Data) != string(want) {
		t.Errorf("got %v, want %v", seed.Data, want)
	}
}

func TestDecodeUncompressedBlankHint(t *testing.T) {
	seed := NewSeedRow(4)
	if err := DecodeRow(ModeUncompressed, seed, nil); err != nil {
		t.Fatalf("DecodeRow: %v", err)
	}
	if !seed.IsBlank {
		t.Errorf("zero-length input should mark seed blank")
	}

	if err := DecodeRow(ModeUncompressed, seed, []byte{1, 2}); err != nil {
		t.Fatalf("DecodeRow: %v", err)
	}
	want := []byte{1, 2, 0, 0}
	if string(seed.Data) != string(want) {
		t.Errorf("got %v, want %v", seed.Data, want)
	}
	if seed.IsBlank {
		t.Errorf("non-empty input should clear blank flag")
	}
}

func TestDecodeAdaptiveDirectRejected(t *testing.T) {
	seed := NewSeedRow(4)
	err := DecodeRow(ModeAdaptive, seed, []byte{0, 0, 1})
	if err == nil {
		t.Fatal("expected ProtocolError for direct adaptive decode")
	}
	var pe *Error
	if !errAs(err, &pe) || pe.Kind != KindProtocolError {
		t.Errorf("got %v, want ProtocolError", err)
	}
}

func TestDecodeDeltaRowSingleRun(t *testing.T) {
	// A single run: count=1 (control high bits 000), offset=0 replacing byte
	// 0 with 0x7F.
	seed := NewSeedRow(4)
	seed.IsBlank = false
	if err := DecodeRow(ModeDeltaRow, seed, []byte{0x00, 0x7F}); err != nil {
		t.Fatalf("DecodeRow: %v", err)
	}
	if seed.Data[0] != 0x7F {
		t.Errorf("got %v, want first byte 0x7F", seed.Data)
	}
}

func errAs(err error, target **Error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	*target = e
	return true
}
