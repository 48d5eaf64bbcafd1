/*
DESCRIPTION
  contexts.go defines the fixed-shape bundle of CABAC context variables
  used by the syntax writer (spec.md §3's "Context set") and its
  QP-scaled initialization.

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

// ContextSet is the flat, fixed-shape bundle of CABAC context variables a
// CU's syntax is coded against (spec.md §3). It is initialized in place
// from a default-value table scaled by QP (DESIGN NOTES), rather than
// descending a structured type per syntax element.
type ContextSet struct {
	SplitFlag   [3]Context  // indexed by neighbour-split count (0,1,2).
	PartSize    [1]Context  // 2Nx2N signalling at maximum CU depth.
	LumaPMode   [1]Context  // MPM-match flag for luma intra mode.
	ChromaPMode [1]Context  // "inherit luma" flag for chroma intra mode.
	LumaCBF     [1]Context
	ChromaCBF   [1]Context
	LastSigX    [2][15]Context // [channelType][bin], channelType 0=luma 1=chroma.
	LastSigY    [2][15]Context
	CGSig       [2]Context  // coefficient-group significance.
	OneFlag     [24]Context // coeff_abs_level_greater1_flag.
	AbsGreater2 [6]Context  // coeff_abs_level_greater2_flag.
	SigFlag     [44]Context // significant_coeff_flag, per position context.
}

// initValue table entries. Values follow the real HEVC initialization
// scheme (clause 9.3.2.2: slope = (v>>4)*5-45, offset = (v&15)<<3-16) but
// are representative rather than the literal reference-software table —
// spec.md's Non-goals explicitly exclude bit-exact match with a reference
// encoder, and what matters for correctness is that every context starts
// at a sane, QP-responsive probability and adapts from there.
const (
	initNeutral  = 154 // near-uniform starting probability, used widely in the real tables.
	initBiasedLo = 110
	initBiasedHi = 200
)

// NewContextSet builds a ContextSet for the given effective QP (spec.md
// §3's lifecycle: "the context set is initialized from a fixed table
// using the quantization parameter").
func NewContextSet(qp int) *ContextSet {
	cs := &ContextSet{}
	for i := range cs.SplitFlag {
		cs.SplitFlag[i] = NewContext(spread(initNeutral, i), qp)
	}
	cs.PartSize[0] = NewContext(initNeutral, qp)
	cs.LumaPMode[0] = NewContext(initBiasedHi, qp)
	cs.ChromaPMode[0] = NewContext(initBiasedHi, qp)
	cs.LumaCBF[0] = NewContext(initNeutral, qp)
	cs.ChromaCBF[0] = NewContext(initBiasedLo, qp)
	for ch := 0; ch < 2; ch++ {
		for i := range cs.LastSigX[ch] {
			cs.LastSigX[ch][i] = NewContext(spread(initNeutral, ch*15+i), qp)
			cs.LastSigY[ch][i] = NewContext(spread(initNeutral, ch*15+i+2), qp)
		}
	}
	for i := range cs.CGSig {
		cs.CGSig[i] = NewContext(spread(initBiasedHi, i), qp)
	}
	for i := range cs.OneFlag {
		cs.OneFlag[i] = NewContext(spread(initNeutral, i), qp)
	}
	for i := range cs.AbsGreater2 {
		cs.AbsGreater2[i] = NewContext(spread(initNeutral, i), qp)
	}
	for i := range cs.SigFlag {
		cs.SigFlag[i] = NewContext(spread(initNeutral, i), qp)
	}
	return cs
}

// spread perturbs a base initValue by index so that contexts within one
// array don't all start perfectly identical, while staying in the valid
// [1,255] byte range the initialization formula expects.
func spread(base uint8, i int) uint8 {
	v := int(base) + (i%9-4)*3
	if v < 1 {
		v = 1
	}
	if v > 255 {
		v = 255
	}
	return uint8(v)
}
