package pcl

// PatternTileKey is the content-addressing tuple for a rendered tile (spec
// §3): the defining pattern, the resolved color (palette color id, or the
// foreground identity when painting with the current color), the halftone,
// and rendering-parameter identity. RenderingParams is whatever identity the
// caller supplies; Interpreter.resolvePatternTile leaves it zero, so the
// keys it builds do not include a color-lookup-table or color-space identity.
type PatternTileKey struct {
	PatternID       PatternID
	ColorOrFgID     uint32
	HalftoneID      uint32
	RenderingParams uint32
}

// PatternTile is a cached, rendered tile (spec §3).
type PatternTile struct {
	id PatternID // generated instance id, distinct from the defining pattern id

	Key PatternTileKey

	TBits []byte // rendered tile, device-depth, possibly planar
	TMask []byte // 1-bit mask of opaque pixels; nil means every pixel is opaque
	TTrans []byte // per-channel alpha image, when transparency applies

	Width, Height int
	Step          Matrix2x3 // 2x3 step matrix
	BBox          Rect      // bounding box in tile space

	IsSimple   bool // step matrix equals tile size, cross-terms zero
	HasOverlap bool
	IsLocked   bool
	BitsUsed   int
}

// ID returns the instance id Insert assigned to this tile.
func (t *PatternTile) ID() PatternID { return t.id }

type cacheSlot struct {
	key   PatternTileKey
	tile  *PatternTile
	valid bool
}

// PatternCache is the content-addressed tile cache of spec §4.5. Slots are
// a fixed-size array addressed by id-derived hashing, evicted round-robin
// from next, bounded by both slot count (MaxTiles) and total bits
// (MaxBits).
type PatternCache struct {
	slots []cacheSlot

	maxTiles int
	maxBits  int
	bitsUsed int
	next     int

	lockedCount int
	nextID      PatternID
}

// NewPatternCache returns a cache bounded by maxTiles slots and maxBits total
// bits.
func NewPatternCache(maxTiles, maxBits int) *PatternCache {
	if maxTiles <= 0 {
		maxTiles = 1
	}
	return &PatternCache{
		slots:    make([]cacheSlot, maxTiles),
		maxTiles: maxTiles,
		maxBits:  maxBits,
	}
}

func (c *PatternCache) slotIndex(key PatternTileKey) (int, int) {
	h := uint32(key.PatternID)
	h = h*31 + key.ColorOrFgID
	h = h*31 + key.HalftoneID
	h = h*31 + key.RenderingParams
	n := uint32(c.maxTiles)
	a := int(h % n)
	b := int((h + 1) % n)
	return a, b
}

// Lookup probes slot hash(key)-mod-N and then (hash(key)+1)-mod-N, per the collision
// handling of spec §4.5.
func (c *PatternCache) Lookup(key PatternTileKey) *PatternTile {
	a, b := c.slotIndex(key)
	if c.slots[a].valid && c.slots[a].key == key {
		return c.slots[a].tile
	}
	if c.slots[b].valid && c.slots[b].key == key {
		return c.slots[b].tile
	}
	return nil
}

// bitsOf reports the storage cost of a tile for cache accounting.
func bitsOf(t *PatternTile) int {
	n := len(t.TBits)*8 + len(t.TMask)*8 + len(t.TTrans)*8
	if n == 0 {
		n = t.Width * t.Height * 8
	}
	return n
}

// EnsureSpace scans from next, evicting unlocked entries, until
// bitsUsed+nbits <= maxBits or a full wrap has occurred (spec §4.5
// ensure_space).
func (c *PatternCache) EnsureSpace(nbits int) {
	if len(c.slots) == 0 {
		return
	}
	start := c.next
	for i := 0; i < len(c.slots); i++ {
		if c.bitsUsed+nbits <= c.maxBits {
			return
		}
		idx := (start + i) % len(c.slots)
		if c.slots[idx].valid && !c.slots[idx].tile.IsLocked {
			c.evictSlot(idx)
		}
	}
}

func (c *PatternCache) evictSlot(idx int) {
	if !c.slots[idx].valid {
		return
	}
	c.bitsUsed -= bitsOf(c.slots[idx].tile)
	if c.bitsUsed < 0 {
		c.bitsUsed = 0
	}
	c.slots[idx] = cacheSlot{}
}

// Insert evicts as needed then stores tile under key, returning the stored
// tile (with its generated instance id assigned). Insertion always leaves
// bits_used <= max_bits + size_of_last_insertion and never evicts a locked
// entry (spec §8 invariant).
func (c *PatternCache) Insert(key PatternTileKey, tile *PatternTile) *PatternTile {
	c.nextID++
	tile.id = c.nextID
	tile.Key = key

	nbits := bitsOf(tile)
	c.EnsureSpace(nbits)

	a, b := c.slotIndex(key)
	target := a
	switch {
	case !c.slots[a].valid:
		target = a
	case !c.slots[a].tile.IsLocked:
		target = a
	case !c.slots[b].valid:
		target = b
	case !c.slots[b].tile.IsLocked:
		target = b
	default:
		// Both candidate slots are locked and a locked entry is never
		// evicted, so the tile is returned to the caller without being
		// stored; a later Lookup of key misses.
		target = -1
	}

	if target < 0 {
		return tile
	}

	if c.slots[target].valid {
		c.bitsUsed -= bitsOf(c.slots[target].tile)
	}
	c.slots[target] = cacheSlot{key: key, tile: tile, valid: true}
	c.bitsUsed += nbits
	c.next = (target + 1) % len(c.slots)

	return tile
}

// SetLock toggles the locked flag on the tile with instance id; fails if id
// is unknown (spec §4.5 set_lock). At most two tiles may be locked
// simultaneously (spec §3 cache invariants).
func (c *PatternCache) SetLock(id PatternID, locked bool) error {
	for i := range c.slots {
		if c.slots[i].valid && c.slots[i].tile.id == id {
			if locked && !c.slots[i].tile.IsLocked {
				if c.lockedCount >= 2 {
					return protocolErr("PatternCache.SetLock", "at most two tiles may be locked simultaneously")
				}
				c.lockedCount++
			} else if !locked && c.slots[i].tile.IsLocked {
				c.lockedCount--
			}
			c.slots[i].tile.IsLocked = locked
			return nil
		}
	}
	return invalidParams("PatternCache.SetLock", "unknown tile id: %d", id)
}

// Winnow evicts every cached tile for which pred returns true, used to purge
// patterns whose defining resource was deleted (spec §4.5 winnow).
func (c *PatternCache) Winnow(pred func(PatternTileKey) bool) {
	for i := range c.slots {
		if c.slots[i].valid && pred(c.slots[i].key) {
			if c.slots[i].tile.IsLocked {
				c.lockedCount--
			}
			c.evictSlot(i)
		}
	}
}

// FlushAll removes every entry, including locked ones (spec §4.5
// flush_all).
func (c *PatternCache) FlushAll() {
	for i := range c.slots {
		c.slots[i] = cacheSlot{}
	}
	c.bitsUsed = 0
	c.lockedCount = 0
	c.next = 0
}

// BitsUsed reports current total bits occupied, for tests and diagnostics.
func (c *PatternCache) BitsUsed() int { return c.bitsUsed }

// SlotInfo describes one cache slot for inspection tooling (cmd/pclview's
// tile inspector); it is a read-only snapshot, not a live view.
type SlotInfo struct {
	Valid  bool
	Locked bool
	Key    PatternTileKey
	Bits   int
}

// Snapshot returns a point-in-time view of every slot, in slot order.
func (c *PatternCache) Snapshot() []SlotInfo {
	out := make([]SlotInfo, len(c.slots))
	for i, s := range c.slots {
		if !s.valid {
			continue
		}
		out[i] = SlotInfo{Valid: true, Locked: s.tile.IsLocked, Key: s.key, Bits: bitsOf(s.tile)}
	}
	return out
}
