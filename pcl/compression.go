package pcl

// CompressionMode names a raster line-compression format (spec §4.1).
type CompressionMode int

const (
	ModeUncompressed CompressionMode = 0
	ModeRunLength    CompressionMode = 1
	ModePackBits     CompressionMode = 2
	ModeDeltaRow     CompressionMode = 3
	ModeAdaptive     CompressionMode = 5
	ModeDeltaRowMod  CompressionMode = 9
)

// SeedRow is a per-plane scan-line buffer retained across rows so delta-style
// compressions can decode relative to the previous row (spec §3).
type SeedRow struct {
	Size    int
	Data    []byte
	IsBlank bool
}

// NewSeedRow allocates a seed row of the given byte width, initially blank.
func NewSeedRow(size int) *SeedRow {
	return &SeedRow{Size: size, Data: make([]byte, size), IsBlank: true}
}

// Clear resets the seed row to all zero, marked blank. Used at the start of
// a skip-rows block so delta-row decoding against a blank prior row behaves
// correctly (spec §4.7.4).
func (s *SeedRow) Clear() {
	for i := range s.Data {
		s.Data[i] = 0
	}
	s.IsBlank = true
}

// predDec mimics the C postfix-decrement-in-condition idiom `i-- > 0`: it
// evaluates whether i is currently greater than zero, decrements i
// unconditionally, and returns the pre-decrement comparison. Used to port
// original_source/pcl/rtrstcmp.c's decode loops faithfully.
func predDec(i *int) bool {
	cond := *i > 0
	*i--
	return cond
}

// DecodeRow decodes input into seed per mode (spec §4.1 CompressionCodec).
// Modes 0, 1, 2, 3 and 9 are handled here; mode 5 (adaptive) is only valid
// from the raster engine's row-transfer path (see RasterEngine.TransferRow)
// and returns ProtocolError if decoded directly. Truncated input is treated
// as a successfully processed prefix. Modes 3 and 9 leave the remainder of
// the seed row untouched, so repeated rows decode against previous content;
// modes 0, 1 and 2 zero the remainder unless the seed row was already blank.
func DecodeRow(mode CompressionMode, seed *SeedRow, input []byte) error {
	switch mode {
	case ModeUncompressed:
		decodeUncompressed(seed, input)
		return nil
	case ModeRunLength:
		decodeRunLength(seed, input)
		return nil
	case ModePackBits:
		decodePackBits(seed, input)
		return nil
	case ModeDeltaRow:
		decodeDeltaRow(seed, input)
		return nil
	case ModeDeltaRowMod:
		decodeDeltaRowMod(seed, input)
		return nil
	case ModeAdaptive:
		return protocolErr("DecodeRow", "adaptive compression must be decoded via the raster engine's row-transfer path")
	default:
		return protocolErr("DecodeRow", "unknown compression mode: %d", mode)
	}
}

// decodeUncompressed implements mode 0 (spec §4.1).
func decodeUncompressed(out *SeedRow, in []byte) {
	n := len(in)
	if n > out.Size {
		n = out.Size
	}
	copy(out.Data, in[:n])
	if !out.IsBlank {
		for i := n; i < out.Size; i++ {
			out.Data[i] = 0
		}
	}
	out.IsBlank = len(in) == 0
}

// decodeRunLength implements mode 1: pairs (count, value) each emitting
// count+1 copies, truncated at seed end; an odd trailing byte is ignored
// (spec §4.1).
func decodeRunLength(out *SeedRow, in []byte) {
	pb := 0
	plim := out.Size
	pairs := len(in) / 2
	pin := 0
	for i := 0; i < pairs; i++ {
		cnt := int(in[pin]) + 1
		val := in[pin+1]
		pin += 2
		if cnt > plim-pb {
			cnt = plim - pb
		}
		for ; cnt > 0; cnt-- {
			out.Data[pb] = val
			pb++
		}
	}
	if !out.IsBlank {
		for ; pb < plim; pb++ {
			out.Data[pb] = 0
		}
	}
	out.IsBlank = len(in) == 0
}

// decodePackBits implements mode 2 (TIFF Packbits): c in [0,128) copies c+1
// literal bytes; c in (128,255] repeats the next byte 257-c times; c==128 is
// a no-op. Never reads past in (spec §4.1).
func decodePackBits(out *SeedRow, in []byte) {
	pb := 0
	plim := out.Size
	i := len(in)
	pin := 0

	for i > 0 {
		i--
		cntrl := int(in[pin])
		pin++

		if cntrl < 128 {
			cnt := cntrl + 1
			if cnt > i {
				cnt = i
			}
			start := pin
			i -= cnt
			pin += cnt
			if cnt > plim-pb {
				cnt = plim - pb
			}
			for j := 0; j < cnt; j++ {
				out.Data[pb] = in[start+j]
				pb++
			}
		} else if cntrl > 128 && predDec(&i) {
			cnt := 257 - cntrl
			if cnt > plim-pb {
				cnt = plim - pb
			}
			val := in[pin]
			pin++
			for j := 0; j < cnt; j++ {
				out.Data[pb] = val
				pb++
			}
		}
	}

	if !out.IsBlank {
		for ; pb < plim; pb++ {
			out.Data[pb] = 0
		}
	}
	out.IsBlank = len(in) == 0
}

// decodeDeltaRow implements mode 3: runs of (control, [extra offset bytes],
// replacement bytes) mutating the seed row in place from its previous
// content; writes past the end are dropped (spec §4.1, ported from
// original_source/pcl/rtrstcmp.c uncompress_3).
func decodeDeltaRow(out *SeedRow, in []byte) {
	pb := 0
	plim := out.Size
	i := len(in)
	pin := 0

	for i > 0 {
		i--
		val := int(in[pin])
		pin++
		cnt := (val >> 5) + 1
		offset := val & 0x1f

		if offset == 0x1f && predDec(&i) {
			for {
				addOffset := int(in[pin])
				pin++
				offset += addOffset
				if addOffset != 0xff || !predDec(&i) {
					break
				}
			}
		}

		if cnt > i {
			cnt = i
		}
		i -= cnt
		start := pin
		pin += cnt

		pb += offset
		if pb >= plim {
			break
		}
		if cnt > plim-pb {
			cnt = plim - pb
		}
		for j := 0; j < cnt; j++ {
			out.Data[pb] = in[start+j]
			pb++
		}
	}

	out.IsBlank = out.IsBlank && len(in) == 0
}

// decodeDeltaRowMod implements mode 9: like mode 3 but with two packings of
// the (offset, count) header byte selected by its high bit, and — under the
// compressed packing — replacement blocks of (repeat_count, value) pairs
// instead of literal bytes (spec §4.1, ported from
// original_source/pcl/rtrstcmp.c uncompress_9, including its "more_cnt"
// accumulation writing into offset rather than cnt, which is how the
// reference implementation actually behaves).
func decodeDeltaRowMod(out *SeedRow, in []byte) {
	pb := 0
	plim := out.Size
	i := len(in)
	pin := 0

	for i > 0 {
		i--
		val := int(in[pin])
		pin++

		comp := val&0x80 != 0
		var cnt, offset int
		var moreCnt, moreOffset bool

		if comp {
			offset = (val >> 5) & 0x3
			moreOffset = offset == 0x3
			cnt = (val & 0x1f) + 1
			moreCnt = cnt == 0x20
		} else {
			offset = (val >> 3) & 0xf
			moreOffset = offset == 0xf
			cnt = (val & 0x7) + 1
			moreCnt = cnt == 0x8
		}

		for moreOffset && predDec(&i) {
			extra := int(in[pin])
			pin++
			moreOffset = extra == 0xff
			offset += extra
		}
		for moreCnt && predDec(&i) {
			extra := int(in[pin])
			pin++
			moreCnt = extra == 0xff
			offset += extra
		}

		pb += offset
		if pb >= plim {
			break
		}

		if comp {
			// Consume exactly floor(i/2) (repeat_count, value) pairs; i is
			// left with its odd remainder below rather than the reference
			// decoder's unsigned-wraparound arithmetic, which otherwise
			// poisons the outer loop's remaining-input count.
			j := i / 2
			for ; j > 0; j-- {
				repCnt := int(in[pin])
				repVal := in[pin+1]
				pin += 2
				if repCnt > plim-pb {
					repCnt = plim - pb
				}
				for ; repCnt > 0; repCnt-- {
					out.Data[pb] = repVal
					pb++
				}
			}
			i -= 2 * (i / 2)
		} else {
			if cnt > i {
				cnt = i
			}
			i -= cnt
			start := pin
			pin += cnt
			if cnt > plim-pb {
				cnt = plim - pb
			}
			for k := 0; k < cnt; k++ {
				out.Data[pb] = in[start+k]
				pb++
			}
		}
	}

	out.IsBlank = out.IsBlank && len(in) == 0
}
