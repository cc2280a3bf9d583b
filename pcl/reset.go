package pcl

// ResetKind is a bitmask naming which reset phase is in effect (spec §4.9).
type ResetKind uint8

const (
	ResetInitial ResetKind = 1 << iota
	ResetCold
	ResetPrinter
	ResetOverlay
	ResetPermanent
)

// Has reports whether kind includes bit.
func (kind ResetKind) Has(bit ResetKind) bool { return kind&bit != 0 }

// resettable is the shape of a per-component reset hook (spec §9 design
// notes). No component type implements it: Resetter.Do performs each
// component's reset inline, in its fixed order.
type resettable interface {
	doReset(kind ResetKind) error
}

// Resetter orchestrates the fixed-order multi-phase reset chain of spec
// §4.9: palette store before foreground, foreground before pattern cache,
// pattern cache winnowed before user-defined patterns are dropped.
type Resetter struct {
	palettes *PaletteStore
	model    *PrintModel
	raster   *RasterState
	cache    *PatternCache
	patterns map[PatternID]*UserPattern
}

// NewResetter binds a Resetter to the interpreter's owned state.
func NewResetter(palettes *PaletteStore, model *PrintModel, raster *RasterState, cache *PatternCache, patterns map[PatternID]*UserPattern) *Resetter {
	return &Resetter{palettes: palettes, model: model, raster: raster, cache: cache, patterns: patterns}
}

// Do runs kind through every component in the fixed dependency order.
// Applying ResetPrinter twice is equivalent to once (spec §8 idempotence):
// every step here is already idempotent (re-flushing an empty store,
// re-releasing a nil singleton, re-clearing an empty cache all no-op).
func (r *Resetter) Do(kind ResetKind) error {
	var errs errorList

	// Palette store first.
	if kind.Has(ResetPermanent) {
		r.palettes.flushAll()
	} else if kind.Has(ResetPrinter) || kind.Has(ResetCold) {
		if err := r.palettes.Control(DeleteAllNotOnStack, 0); err != nil {
			errs = errs.add(err)
		}
	}

	// Foreground next: release the process-wide singleton on a permanent
	// shutdown; a printer/cold reset just lets the next set-foreground
	// recompute from the (possibly just-flushed) palette.
	if kind.Has(ResetPermanent) {
		releaseDefaultForegroundSingleton()
	}

	// Pattern cache: winnow before the dictionary backing it is dropped.
	if r.cache != nil {
		if kind.Has(ResetPermanent) {
			r.cache.FlushAll()
		} else if kind.Has(ResetPrinter) || kind.Has(ResetCold) {
			r.cache.FlushAll()
		} else if kind.Has(ResetOverlay) {
			r.cache.Winnow(func(PatternTileKey) bool { return false })
		}
	}

	// User-defined patterns dropped last, after the cache referencing them
	// has already been winnowed.
	if kind.Has(ResetPermanent) || kind.Has(ResetPrinter) || kind.Has(ResetCold) {
		for id := range r.patterns {
			delete(r.patterns, id)
		}
	}

	if r.model != nil && (kind.Has(ResetCold) || kind.Has(ResetPermanent)) {
		*r.model = *NewPrintModel()
	}

	if r.raster != nil && (kind.Has(ResetCold) || kind.Has(ResetPermanent)) {
		*r.raster = *NewRasterState()
	}

	return errs.errOrNil()
}
