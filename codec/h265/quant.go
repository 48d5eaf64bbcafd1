/*
DESCRIPTION
  quant.go implements the rate-distortion-optimized quantizer (spec.md
  §4.3): per-coefficient level selection against a piecewise rate model
  and per-Qp distortion/rate weights, coefficient-group zeroing, sign-bit
  hiding, and dequantization.

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

// infiniteCost is the saturating sentinel for RDcost overflow (spec.md
// §4.3: "all arithmetic saturates at a sentinel 'infinite' value").
const infiniteCost = int64(1) << 40

// distWeight and bitsWeight are the per-qpd6 RDcost weights (spec.md
// §4.3's table).
var distWeight = [5]int64{11, 11, 11, 5, 1}
var bitsWeight = [5]int64{1, 4, 16, 29, 23}

// rateOf evaluates the piecewise rate-proxy model for a candidate level
// (spec.md §4.3 step 3): 0 at level 0, fixed steps at 1 and 2, and
// exponential-Golomb-shaped growth from level 3 upward.
func rateOf(level int) int64 {
	switch {
	case level <= 0:
		return 0
	case level == 1:
		return 70000
	case level == 2:
		return 90000
	}
	k := level - 3
	if k < 3 {
		return 92000 + (int64(k+1) << 15)
	}
	return 92000 + (int64(3+2*egLen(k-3)+1) << 15)
}

// egLen is the bit length of an exponential-Golomb-coded value x (i.e.
// the prefix length a real Exp-Golomb code for x would need), used to
// extend the rate model's growth past the three explicitly tabulated
// small levels.
func egLen(x int) int {
	n := x + 1
	l := 0
	for n > 0 {
		l++
		n >>= 1
	}
	return l
}

// rdoLevel selects the coded magnitude for one coefficient c (spec.md
// §4.3 steps 1-4), returning a signed level.
func rdoLevel(c int32, qpd6, log2S int) int32 {
	sign := int32(1)
	mag := c
	if mag < 0 {
		sign = -1
		mag = -mag
	}
	if mag > (1<<17)-1 {
		mag = (1 << 17) - 1
	}
	dlevel := int64(mag) << 14

	iqBits := uint(21 + qpd6 - log2S)
	round := int64(1) << (iqBits - 1)
	nominal := (dlevel + round) >> iqBits

	distShift := uint(10 - log2S)
	w := distWeight[qpd6]
	b := bitsWeight[qpd6]

	best := nominal
	bestCost := rdCost(dlevel, nominal, iqBits, distShift, w, b)
	for _, cand := range []int64{nominal - 1, nominal - 2} {
		if cand < 0 {
			cand = 0
		}
		cost := rdCost(dlevel, cand, iqBits, distShift, w, b)
		if cost < bestCost {
			bestCost = cost
			best = cand
		}
	}
	return sign * int32(best)
}

func rdCost(dlevel, level int64, iqBits, distShift uint, w, b int64) int64 {
	diff := dlevel - level*(int64(1)<<iqBits)
	if diff < 0 {
		diff = -diff
	}
	d := diff >> distShift
	dist := d * d
	rate := rateOf(int(level))
	cost := w*dist + b*rate
	if cost < 0 || cost > infiniteCost {
		return infiniteCost
	}
	return cost
}

// Quantize converts an S×S block of transform coefficients into
// quantized levels, applying RDO level selection, coefficient-group
// zeroing and sign-bit hiding (spec.md §4.3). scanType must match the
// scan order the syntax writer will use to serialize this block.
func Quantize(coeffs [][]int32, qpd6, size int, scanType ScanType) [][]int32 {
	log2S := log2(size)
	levels := make([][]int32, size)
	for y := range levels {
		levels[y] = make([]int32, size)
		for x := range levels[y] {
			levels[y][x] = rdoLevel(coeffs[y][x], qpd6, log2S)
		}
	}

	so := Scan(size, scanType)
	numPos := len(so.Pos)
	numCG := numPos / 16

	cgSum := make([]int64, numCG)
	for i := 0; i < numPos; i++ {
		p := so.Pos[i]
		v := levels[p.y][p.x]
		if v < 0 {
			v = -v
		}
		cgSum[so.CG[i]] += int64(v)
	}

	// CG-level zeroing: walk CGs from highest frequency to lowest, zeroing
	// any CG whose magnitude sum is ≤2, stopping at the first CG with a
	// larger sum (spec.md §4.3).
	seenNonZero := false
	for cg := numCG - 1; cg >= 0; cg-- {
		if seenNonZero {
			break
		}
		if cgSum[cg] <= 2 {
			for i := 0; i < numPos; i++ {
				if so.CG[i] == cg {
					p := so.Pos[i]
					levels[p.y][p.x] = 0
				}
			}
		} else {
			seenNonZero = true
		}
	}

	applySignHiding(levels, so, numCG)
	return levels
}

// applySignHiding implements spec.md §4.3's sign-bit-hiding adjustment,
// operating independently on each coefficient group.
func applySignHiding(levels [][]int32, so *ScanOrder, numCG int) {
	var totalAbs int64
	for _, row := range levels {
		for _, v := range row {
			if v < 0 {
				totalAbs += int64(-v)
			} else {
				totalAbs += int64(v)
			}
		}
	}
	if totalAbs < 2 {
		return
	}

	for cg := 0; cg < numCG; cg++ {
		firstLocal, lastLocal := -1, -1
		parity := 0
		firstSignNeg := false
		var lastPos pos
		local := 0
		for i := 0; i < len(so.Pos); i++ {
			if so.CG[i] != cg {
				continue
			}
			p := so.Pos[i]
			v := levels[p.y][p.x]
			if v != 0 {
				if firstLocal < 0 {
					firstLocal = local
					firstSignNeg = v < 0
				}
				lastLocal = local
				lastPos = p
				av := v
				if av < 0 {
					av = -av
				}
				parity ^= int(av & 1)
			}
			local++
		}
		if firstLocal < 0 {
			continue
		}
		if firstSignNeg {
			parity ^= 1
		}
		if parity == 1 && lastLocal-firstLocal >= 4 {
			v := levels[lastPos.y][lastPos.x]
			if v > 0 {
				levels[lastPos.y][lastPos.x] = v - 1
			} else {
				levels[lastPos.y][lastPos.x] = v + 1
			}
		}
	}
}

// Dequantize reconstructs coefficient magnitudes from quantized levels
// (spec.md §4.3), clipped to the coefficient range.
func Dequantize(levels [][]int32, qpd6, size int) [][]int32 {
	log2S := log2(size)
	shift := uint(7 + qpd6 - log2S)
	out := make([][]int32, size)
	for y := range levels {
		out[y] = make([]int32, size)
		for x := range levels[y] {
			out[y][x] = clip16(levels[y][x] << shift)
		}
	}
	return out
}
