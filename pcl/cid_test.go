package pcl

import "testing"

func TestParseCIDShortForm(t *testing.T) {
	payload := []byte{byte(DeviceRGB), byte(IndexedByPixel), 3, 8, 8, 8}
	cid, err := ParseCID(payload)
	if err != nil {
		t.Fatalf("ParseCID: %v", err)
	}
	if cid.SpaceKind != DeviceRGB || cid.Encoding != IndexedByPixel || cid.BitsPerIndex != 3 {
		t.Errorf("got %+v", cid)
	}
}

func TestParseCIDLongFormLengthMismatch(t *testing.T) {
	payload := append([]byte{byte(DeviceRGB), byte(IndexedByPixel), 3, 8, 8, 8}, make([]byte, 10)...)
	if _, err := ParseCID(payload); err == nil {
		t.Fatal("expected InvalidParameters for a device long form of the wrong length (want 18)")
	}
}

func TestParseCIDZeroDefaults(t *testing.T) {
	payload := []byte{byte(DeviceRGB), byte(IndexedByPixel), 0, 0, 0, 0}
	cid, err := ParseCID(payload)
	if err != nil {
		t.Fatalf("ParseCID: %v", err)
	}
	if cid.BitsPerIndex != 1 {
		t.Errorf("bits_per_index zero should default to 1, got %d", cid.BitsPerIndex)
	}
	for i, b := range cid.BitsPerPrimary {
		if b != 8 {
			t.Errorf("bits_per_primary[%d] zero should default to 8, got %d", i, b)
		}
	}
}
