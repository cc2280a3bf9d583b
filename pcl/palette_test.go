package pcl

import "testing"

func TestDefaultPaletteRoundTrip(t *testing.T) {
	store := NewPaletteStore()
	p := store.Active()

	if p.size() != 2 {
		t.Fatalf("got size %d, want 2", p.size())
	}
	if got := p.GetEntry(0); got != [3]uint8{255, 255, 255} {
		t.Errorf("entry 0 = %v, want white", got)
	}
	if got := p.GetEntry(1); got != [3]uint8{0, 0, 0} {
		t.Errorf("entry 1 = %v, want black", got)
	}
	if !p.IsWhite(0) {
		t.Error("entry 0 should be white")
	}
	if !p.IsBlack(1) {
		t.Error("entry 1 should be black")
	}
}

func TestCMYDefaultPaletteOrder(t *testing.T) {
	cid := CID{SpaceKind: DeviceCMY, Encoding: IndexedByPlane, BitsPerIndex: 3, BitsPerPrimary: [3]uint8{1, 1, 1}}
	base := BuildBase(cid)
	p := buildIndexedPalette(cid, base, false, false)

	want := [][3]uint8{
		{255, 255, 255}, {0, 255, 255}, {255, 0, 255}, {0, 0, 255},
		{255, 255, 0}, {0, 255, 0}, {255, 0, 0}, {0, 0, 0},
	}
	for i, w := range want {
		if got := p.GetEntry(i); got != w {
			t.Errorf("entry %d = %v, want %v", i, got, w)
		}
	}
}

func TestNormalization(t *testing.T) {
	cid := CID{SpaceKind: DeviceRGB, Encoding: IndexedByPixel, BitsPerIndex: 1, BitsPerPrimary: [3]uint8{8, 8, 8}}
	base := BuildBase(cid)
	base.SetNormAndDecode([3]float64{128, 128, 128}, [3]float64{0, 0, 0})
	p := buildIndexedPalette(cid, base, false, false)

	np, err := p.SetEntry(1, [3]float64{64, 64, 64})
	if err != nil {
		t.Fatalf("SetEntry: %v", err)
	}
	got := np.GetEntry(1)
	want := [3]uint8{128, 128, 128}
	if got != want {
		t.Errorf("got %v, want %v (64*(255/128)=127.5 rounds to 128)", got, want)
	}
}

func TestSetEntryOutOfRange(t *testing.T) {
	store := NewPaletteStore()
	p := store.Active()
	if _, err := p.SetEntry(p.size(), [3]float64{0, 0, 0}); err == nil {
		t.Fatal("expected InvalidParameters at index == size")
	}
}

func TestSetNumEntriesRoundsUpToPowerOfTwo(t *testing.T) {
	cid := CID{SpaceKind: DeviceRGB, Encoding: IndexedByPixel, BitsPerIndex: 1, BitsPerPrimary: [3]uint8{8, 8, 8}}
	base := BuildBase(cid)
	p := buildIndexedPalette(cid, base, false, false)

	np, err := p.SetNumEntries(5, false)
	if err != nil {
		t.Fatalf("SetNumEntries: %v", err)
	}
	if np.size() != 8 {
		t.Errorf("got size %d, want 8", np.size())
	}

	np2, err := p.SetNumEntries(0, false)
	if err != nil {
		t.Fatalf("SetNumEntries: %v", err)
	}
	if np2.size() != 1 {
		t.Errorf("got size %d, want 1 for n=0", np2.size())
	}
}

func TestFixedPaletteMutationIsNoOp(t *testing.T) {
	store := NewPaletteStore()
	store.SetActive(store.Active())
	p := store.Active()
	fixed := p.clone()
	fixed.fixed = true

	np, err := fixed.SetEntry(0, [3]float64{1, 2, 3})
	if err != nil {
		t.Fatalf("SetEntry on fixed palette should not error: %v", err)
	}
	if np.GetEntry(0) != fixed.GetEntry(0) {
		t.Error("mutating a fixed palette must be a no-op")
	}
}

func TestPaletteStorePushPop(t *testing.T) {
	store := NewPaletteStore()
	first := store.Active()
	store.Push()

	store.Select(7)
	if store.Active() == first {
		t.Fatal("Select(7) should activate a distinct new default palette")
	}

	store.Pop()
	if store.Active() != first {
		t.Error("Pop should restore the previously pushed palette")
	}
}
