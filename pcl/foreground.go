package pcl

// Foreground is a frozen (color, base-space, halftone) tuple captured from a
// palette slot at set-foreground time (spec §4.4). It is immutable after
// creation and reference-counted like ColorSpace/Palette.
type Foreground struct {
	refs *int

	Color     [3]uint8
	baseSpace *ColorSpace
	halftone  int
	fromCMY   bool
}

var defaultForegroundSingleton *Foreground

// defaultForeground returns (creating once) the singleton default
// foreground: slot 1 of the default 2-entry palette, which is black (spec
// §4.4).
func defaultForeground() *Foreground {
	if defaultForegroundSingleton != nil {
		return defaultForegroundSingleton.Retain()
	}
	n := 1
	defaultForegroundSingleton = &Foreground{
		refs:      &n,
		Color:     [3]uint8{0, 0, 0},
		baseSpace: nil,
		halftone:  0,
		fromCMY:   false,
	}
	return defaultForegroundSingleton
}

// SetForeground builds an immutable foreground from palette slot index mod
// palette.size (spec §4.4 set). When palette is fixed with 2 entries and the
// slot is 1, the singleton default foreground is returned instead of a fresh
// allocation. The default palette from NewPaletteStore is not fixed, so it
// always gets a fresh foreground.
func SetForeground(p *Palette, index int, halftone int) *Foreground {
	size := p.size()
	slot := index % size
	if slot < 0 {
		slot += size
	}

	if p.fixed && size == 2 && slot == 1 {
		return defaultForeground()
	}

	n := 1
	return &Foreground{
		refs:      &n,
		Color:     p.GetEntry(slot),
		baseSpace: p.base.Retain(),
		halftone:  halftone,
		fromCMY:   p.base.IsCMY(),
	}
}

// Retain/Release mirror ColorSpace/Palette's refcounting.
func (f *Foreground) Retain() *Foreground {
	if f == nil {
		return nil
	}
	*f.refs++
	return f
}

func (f *Foreground) Release() {
	if f == nil {
		return
	}
	*f.refs--
	if *f.refs == 0 && f.baseSpace != nil {
		f.baseSpace.Release()
	}
}

// FromCMY reports whether the foreground's source palette was CMY, which the
// overprint compositor must distinguish from RGB-origin foregrounds even
// though both are stored as 24-bit RGB (spec §4.4).
func (f *Foreground) FromCMY() bool { return f.fromCMY }

// releaseDefaultForegroundSingleton drops the process-wide default
// foreground (spec §4.9 Permanent reset).
func releaseDefaultForegroundSingleton() {
	defaultForegroundSingleton = nil
}
