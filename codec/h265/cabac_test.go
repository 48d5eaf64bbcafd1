package h265

import "testing"

func TestNewContextInitRange(t *testing.T) {
	for _, init := range []uint8{0, 1, 95, 154, 200, 255} {
		for _, qp := range []int{0, 25, 51} {
			c := NewContext(init, qp)
			if c.pState() < 0 || c.pState() > 62 {
				t.Errorf("NewContext(%d,%d).pState() = %d, want [0,62]", init, qp, c.pState())
			}
		}
	}
}

func TestEncoderLenGrowsMonotonically(t *testing.T) {
	e := NewEncoder()
	prev := e.Len()
	for i := 0; i < 200; i++ {
		e.EncodeBypass(uint8(i % 2))
		cur := e.Len()
		if cur < prev {
			t.Fatalf("Len() decreased: %d -> %d at bit %d", prev, cur, i)
		}
		prev = cur
	}
	if prev != 200 {
		t.Errorf("after 200 bypass bins, Len() = %d, want 200", prev)
	}
}

func TestEmulationPrevention(t *testing.T) {
	e := NewEncoder()
	e.emit(0x00)
	e.emit(0x00)
	e.emit(0x01)
	got := e.Drain(nil)
	want := []byte{0x00, 0x00, 0x03, 0x01}
	if len(got) != len(want) {
		t.Fatalf("Drain() = % x, want % x", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Drain() = % x, want % x", got, want)
		}
	}
}

// bitReader reads MSB-first bits from a byte slice, returning 0 past the
// end (the tail of a Finish()-flushed stream is padding, not signal).
type bitReader struct {
	data []byte
	pos  int // bit position from the start of data.
}

func (r *bitReader) bit() uint32 {
	byteIdx := r.pos / 8
	if byteIdx >= len(r.data) {
		r.pos++
		return 0
	}
	shift := 7 - uint(r.pos%8)
	b := (r.data[byteIdx] >> shift) & 1
	r.pos++
	return uint32(b)
}

// refDecoder is the textbook CABAC decoding engine (HEVC clause 9.3.4.3.2),
// built directly against the same lpsTable/nextStateLPS/nextStateMPS
// tables the encoder uses, so a round-trip exercises the real tables
// rather than a second hand-copied set of constants.
type refDecoder struct {
	rng uint32
	off uint32
	br  *bitReader
}

func newRefDecoder(data []byte) *refDecoder {
	br := &bitReader{data: data}
	return &refDecoder{rng: 510, off: br.bits(9), br: br}
}

func (r *bitReader) bits(n int) uint32 {
	var v uint32
	for i := 0; i < n; i++ {
		v = v<<1 | r.bit()
	}
	return v
}

func (d *refDecoder) decodeBin(ctx *Context) uint8 {
	state := ctx.pState()
	m := ctx.mps()
	lps := uint32(lpsTable[state][(d.rng>>6)&3])
	d.rng -= lps
	var bin uint8
	if d.off >= d.rng {
		bin = 1 - m
		d.off -= d.rng
		d.rng = lps
		if state == 0 {
			m = 1 - m
		}
		state = int(nextStateLPS[state])
	} else {
		bin = m
		state = int(nextStateMPS[state])
	}
	ctx.pack(state, m)
	for d.rng < 256 {
		d.rng <<= 1
		d.off = d.off<<1 | d.br.bit()
	}
	return bin
}

func (d *refDecoder) decodeBypass() uint8 {
	d.off = d.off<<1 | d.br.bit()
	if d.off >= d.rng {
		d.off -= d.rng
		return 1
	}
	return 0
}

func (d *refDecoder) decodeTerminate() uint8 {
	d.rng -= 2
	if d.off >= d.rng {
		return 1
	}
	for d.rng < 256 {
		d.rng <<= 1
		d.off = d.off<<1 | d.br.bit()
	}
	return 0
}

// hashBit returns a deterministic pseudo-random bit for index i, used to
// build reproducible bin patterns without depending on math/rand state.
func hashBit(i, salt int) uint8 {
	h := uint32(i)*2654435761 + uint32(salt)*40503 + 1
	h ^= h >> 13
	h *= 2246822519
	h ^= h >> 15
	return uint8(h & 1)
}

// TestCABACEncodeDecodeRoundTrip drives EncodeBin/EncodeBypass/
// EncodeTerminate through a mixed sequence, including a mid-stream
// non-final terminate bin, and decodes the resulting byte stream with
// refDecoder: this is the check that would have caught the testAndWriteOut
// masking bug (§4.5's byte-shift-out step must clear the top nbits bits of
// low, not the bottom nbits bits), since TestEncoderLenGrowsMonotonically
// only exercises bypass bins and never inspects emitted byte content.
func TestCABACEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name         string
		initA, initB uint8
		qp           int
	}{
		{"qp4-mid-inits", 154, 95, 4},
		{"qp25-skewed-inits", 200, 10, 25},
		{"qp51-extreme-inits", 1, 255, 51},
	}

	const phase1, bypassN, phase2 = 150, 50, 150

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			bins := make([]uint8, 0, phase1+phase2)
			bypass := make([]uint8, bypassN)
			for i := range bypass {
				bypass[i] = hashBit(i, 1)
			}

			e := NewEncoder()
			ctxA := NewContext(c.initA, c.qp)
			ctxB := NewContext(c.initB, c.qp)

			for i := 0; i < phase1; i++ {
				b := hashBit(i, 2)
				bins = append(bins, b)
				if i%2 == 0 {
					e.EncodeBin(&ctxA, b)
				} else {
					e.EncodeBin(&ctxB, b)
				}
			}
			for _, b := range bypass {
				e.EncodeBypass(b)
			}
			e.EncodeTerminate(0)
			for i := phase1; i < phase1+phase2; i++ {
				b := hashBit(i, 2)
				bins = append(bins, b)
				if i%2 == 0 {
					e.EncodeBin(&ctxA, b)
				} else {
					e.EncodeBin(&ctxB, b)
				}
			}
			e.EncodeTerminate(1)
			e.Finish()
			raw := unescape(e.Drain(nil))

			dec := newRefDecoder(raw)
			dctxA := NewContext(c.initA, c.qp)
			dctxB := NewContext(c.initB, c.qp)

			got := make([]uint8, 0, len(bins))
			for i := 0; i < phase1; i++ {
				if i%2 == 0 {
					got = append(got, dec.decodeBin(&dctxA))
				} else {
					got = append(got, dec.decodeBin(&dctxB))
				}
			}
			for i, want := range bypass {
				if got := dec.decodeBypass(); got != want {
					t.Fatalf("bypass bit %d: got %d, want %d", i, got, want)
				}
			}
			if term := dec.decodeTerminate(); term != 0 {
				t.Fatalf("mid-stream terminate: got %d, want 0", term)
			}
			for i := phase1; i < phase1+phase2; i++ {
				if i%2 == 0 {
					got = append(got, dec.decodeBin(&dctxA))
				} else {
					got = append(got, dec.decodeBin(&dctxB))
				}
			}
			if term := dec.decodeTerminate(); term != 1 {
				t.Fatalf("final terminate: got %d, want 1", term)
			}

			for i := range bins {
				if got[i] != bins[i] {
					t.Fatalf("bin %d: decoded %d, want %d", i, got[i], bins[i])
				}
			}
		})
	}
}

func TestCommitKeepsTail(t *testing.T) {
	e := NewEncoder()
	for _, b := range []byte{1, 2, 3, 4, 5} {
		e.emit(b)
	}
	var out []byte
	out = e.Commit(out, 2)
	if len(out) != 3 || out[0] != 1 || out[1] != 2 || out[2] != 3 {
		t.Fatalf("Commit() output = % x, want [1 2 3]", out)
	}
	rest := e.Drain(nil)
	if len(rest) != 2 || rest[0] != 4 || rest[1] != 5 {
		t.Fatalf("Drain() after Commit = % x, want [4 5]", rest)
	}
}
