/*
DESCRIPTION
  cabac.go implements the context-adaptive binary arithmetic coder that
  drives the HEVC intra syntax (spec.md §4.5): context-coded bins, bypass
  bins, bin termination, and byte emission with start-code emulation
  escaping. The state machine (range/low/nbits/nbytes/bufbyte) and its
  init values are the encode-direction counterpart of the decode engine in
  this codec family's H.264 package (codec/h264/h264dec/cabac.go), reusing
  the same LPS/state-transition tables (tables.go).

AUTHORS
  Kelsey Ng <kelsey@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package h265

// ctuBufCap bounds the CABAC engine's in-struct byte buffer: enough to
// hold one CTU's worth of emitted bytes with headroom, per the
// CONCURRENCY & RESOURCE MODEL note that the coder should be a fixed-
// capacity value type so snapshotting it is a bulk memory copy.
const ctuBufCap = 32*32*3 + 64

// Context is a single CABAC context variable: a packed 7-bit state made of
// a 6-bit pStateIdx (state>>1) and a 1-bit MPS value (state&1), matching
// the reference encoder's single-byte context representation.
type Context struct {
	state uint8
}

// NewContext builds a Context from the HEVC context-initialization process
// (clause 9.3.2.2): initValue is the table entry for this context/slice
// type, qp the effective luma QP.
func NewContext(initValue uint8, qp int) Context {
	if qp < 0 {
		qp = 0
	}
	if qp > 51 {
		qp = 51
	}
	slope := int(initValue>>4)*5 - 45
	offset := (int(initValue&15) << 3) - 16
	preCtxState := (slope*qp)>>4 + offset
	if preCtxState < 1 {
		preCtxState = 1
	}
	if preCtxState > 126 {
		preCtxState = 126
	}
	if preCtxState <= 63 {
		return Context{state: uint8((63-preCtxState)<<1 | 0)}
	}
	return Context{state: uint8((preCtxState-64)<<1 | 1)}
}

// pState and mps unpack the two fields of a Context's packed state.
func (c Context) pState() int   { return int(c.state >> 1) }
func (c Context) mps() uint8    { return c.state & 1 }
func (c *Context) pack(p int, m uint8) { c.state = uint8(p<<1) | m }

// Encoder is the CABAC arithmetic coder. It is deliberately a small value
// type: every field copies by assignment, so the coding-tree driver can
// cheaply snapshot it before a speculative mode trial and discard or
// adopt the copy afterwards (spec.md §4.7 step 1 and §5).
type Encoder struct {
	rng    uint32
	low    uint32
	bits   int // nbits: bits of headroom remaining in the low window.
	nbuf   int // nbytes: run length of pending 0xFF-with-carry bytes.
	bufb   int // bufbyte: the byte held back pending carry resolution.
	buf    [ctuBufCap]byte
	n      int  // valid bytes in buf.
	zeros  int  // trailing run of emitted 0x00 bytes, capped at 2.
	finished bool
}

// NewEncoder returns a coder initialized per spec.md §3's lifecycle:
// (range=510, low=0, nbits=23, nbytes=0, bufbyte=0xFF).
func NewEncoder() *Encoder {
	return &Encoder{rng: 510, low: 0, bits: 23, nbuf: 0, bufb: 0xff}
}

// Len returns the length in bits emitted so far, including bits still
// held in the low window — "8*(emitted+pending) + 23 - nbits" per
// spec.md §4.5, used by the RDO driver to measure bit cost.
func (e *Encoder) Len() int {
	return 8*(e.n+e.nbuf) + 23 - e.bits
}

// EncodeBin codes a single context-coded bin using and updating ctx.
func (e *Encoder) EncodeBin(ctx *Context, bin uint8) {
	state := ctx.pState()
	m := ctx.mps()
	lps := uint32(lpsTable[state][(e.rng>>6)&3])
	e.rng -= lps
	if bin != m {
		k := renormTable[lps>>3]
		e.low = (e.low + e.rng) << k
		e.rng = lps << k
		if state == 0 {
			m = 1 - m
		}
		state = int(nextStateLPS[state])
		e.bits -= int(k)
	} else {
		state = int(nextStateMPS[state])
		if e.rng >= 256 {
			ctx.pack(state, m)
			return
		}
		e.rng <<= 1
		e.low <<= 1
		e.bits--
	}
	ctx.pack(state, m)
	e.testAndWriteOut()
}

// EncodeBypass codes a single equiprobable bin with no context update.
func (e *Encoder) EncodeBypass(bin uint8) {
	e.low <<= 1
	e.low += e.rng * uint32(bin)
	e.bits--
	e.testAndWriteOut()
}

// EncodeBypassBits codes the low n bits of v (MSB first) as a run of
// bypass bins, matching spec.md §4.5's "groups of up to 8 at a time"
// equiprobable coding.
func (e *Encoder) EncodeBypassBits(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		e.EncodeBypass(uint8((v >> uint(i)) & 1))
	}
}

// EncodeTerminate codes the bin that ends a CTU (or the slice, on the
// final CTU), per spec.md §4.5's terminate-bin process.
func (e *Encoder) EncodeTerminate(bin uint8) {
	e.rng -= 2
	if bin != 0 {
		e.low += e.rng
		e.low <<= 7
		e.rng = 2 << 7
		e.bits -= 7
		e.testAndWriteOut()
		return
	}
	if e.rng >= 256 {
		return
	}
	e.rng <<= 1
	e.low <<= 1
	e.bits--
	e.testAndWriteOut()
}

// testAndWriteOut shifts a pending byte out of the low window whenever
// fewer than 12 bits of headroom remain, per spec.md §4.5.
func (e *Encoder) testAndWriteOut() {
	if e.bits >= 12 {
		return
	}
	lead := int(e.low >> uint(24-e.bits))
	e.bits += 8
	e.low &= (1 << uint(32-e.bits)) - 1
	if lead == 0xff {
		e.nbuf++
		return
	}
	if e.nbuf > 0 {
		carry := lead >> 8
		e.emit(byte(e.bufb + carry))
		for ; e.nbuf > 1; e.nbuf-- {
			e.emit(byte((0xff + carry) & 0xff))
		}
	}
	e.nbuf = 1
	e.bufb = lead & 0xff
}

// Finish flushes the remaining bits and pending bytes, per spec.md §3 and
// §4.5. Must be called exactly once, after the final CTU's terminate bin.
func (e *Encoder) Finish() {
	if e.finished {
		return
	}
	e.finished = true
	if e.low>>uint(32-e.bits) != 0 {
		e.emit(byte(e.bufb + 1))
		for ; e.nbuf > 1; e.nbuf-- {
			e.emit(0x00)
		}
		e.low -= 1 << uint(32-e.bits)
	} else {
		if e.nbuf > 0 {
			e.emit(byte(e.bufb))
		}
		for ; e.nbuf > 1; e.nbuf-- {
			e.emit(0xff)
		}
	}
	remBits := 24 - e.bits
	if remBits < 0 {
		remBits = 0
	}
	nBytes := (remBits + 7) / 8
	shift := uint(nBytes*8 - remBits)
	full := (e.low >> 8) << shift
	for i := nBytes - 1; i >= 0; i-- {
		e.emit(byte((full >> uint(8*i)) & 0xff))
	}
}

// emit appends a raw byte to the coder's buffer, inserting a 0x03
// emulation-prevention byte first whenever the byte is ≤0x03 and the two
// preceding emitted bytes were both 0x00 (spec.md §3's invariant).
func (e *Encoder) emit(b byte) {
	if b <= 3 && e.zeros >= 2 {
		e.append(0x03)
		e.zeros = 0
	}
	e.append(b)
	if b == 0 {
		e.zeros++
	} else {
		e.zeros = 0
	}
}

func (e *Encoder) append(b byte) {
	e.buf[e.n] = b
	e.n++
}

// Commit transfers all but the last keep bytes of the coder's buffer to
// dst, returning the extended slice. keep should be at least 2 so the
// next emulation-prevention check still sees the trailing zero run
// (spec.md §4.5's "commit" operation).
func (e *Encoder) Commit(dst []byte, keep int) []byte {
	if e.n <= keep {
		return dst
	}
	cut := e.n - keep
	dst = append(dst, e.buf[:cut]...)
	copy(e.buf[:keep], e.buf[cut:e.n])
	e.n = keep
	return dst
}

// Drain transfers every remaining buffered byte to dst; used once, after
// Finish, to collect the last bytes of the slice.
func (e *Encoder) Drain(dst []byte) []byte {
	dst = append(dst, e.buf[:e.n]...)
	e.n = 0
	return dst
}
