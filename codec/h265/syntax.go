/*
DESCRIPTION
  syntax.go writes the per-CU HEVC intra syntax (spec.md §4.6): split
  flag, partition size, luma/chroma prediction mode with most-probable-
  mode derivation, coded-block flags, and the full coefficient-group
  significance-map / level / sign syntax.

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

// WriteSplitFlag codes split_flag for a CU whose left and above
// neighbours' split state is given; ctx = leftSplit + aboveSplit.
func WriteSplitFlag(e *Encoder, cs *ContextSet, leftSplit, aboveSplit bool, split bool) {
	ctx := 0
	if leftSplit {
		ctx++
	}
	if aboveSplit {
		ctx++
	}
	bin := uint8(0)
	if split {
		bin = 1
	}
	e.EncodeBin(&cs.SplitFlag[ctx], bin)
}

// WritePartSize codes the single part_size bin emitted at maximum CU
// depth; this encoder only ever signals 2Nx2N partitioning.
func WritePartSize(e *Encoder, cs *ContextSet) {
	e.EncodeBin(&cs.PartSize[0], 1)
}

// DeriveMPM computes the three most-probable luma intra modes from the
// left and above neighbour modes, per the HEVC 8.4.2 rule: matching
// neighbours propagate (with the two angular-adjacent modes filling the
// remaining slots), differing neighbours fill the third slot with
// whichever of {planar, DC, vertical} neither neighbour already is.
func DeriveMPM(left, above int) [3]int {
	if left == above {
		if left < 2 {
			return [3]int{0, 1, 26}
		}
		return [3]int{
			left,
			2 + (left+29)%32,
			2 + (left-2+1)%32,
		}
	}
	mpm := [3]int{left, above, 0}
	if left != 0 && above != 0 {
		mpm[2] = 0
	} else if left != 1 && above != 1 {
		mpm[2] = 1
	} else {
		mpm[2] = 26
	}
	return mpm
}

// WriteLumaPMode codes the luma intra prediction mode against its MPM
// list (spec.md §4.6 step 3).
func WriteLumaPMode(e *Encoder, cs *ContextSet, mode int, mpm [3]int) {
	for i, m := range mpm {
		if m == mode {
			e.EncodeBin(&cs.LumaPMode[0], 1)
			switch i {
			case 0:
				e.EncodeBypass(0)
			case 1:
				e.EncodeBypass(1)
				e.EncodeBypass(0)
			case 2:
				e.EncodeBypass(1)
				e.EncodeBypass(1)
			}
			return
		}
	}
	e.EncodeBin(&cs.LumaPMode[0], 0)

	sorted := mpm
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if sorted[j] > sorted[i] {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	idx := mode
	for _, m := range sorted {
		if m < mode {
			idx--
		}
	}
	e.EncodeBypassBits(uint32(idx), 5)
}

// WriteChromaPMode always signals "inherit luma" (this encoder is
// monochrome, so chroma mode is never independently coded).
func WriteChromaPMode(e *Encoder, cs *ContextSet) {
	e.EncodeBin(&cs.ChromaPMode[0], 0)
}

// WriteLumaCBF codes luma_cbf: 1 if the block has any non-zero
// coefficient.
func WriteLumaCBF(e *Encoder, cs *ContextSet, nonZero bool) {
	bin := uint8(0)
	if nonZero {
		bin = 1
	}
	e.EncodeBin(&cs.LumaCBF[0], bin)
}

// WriteChromaCBFs signals both chroma CBFs as 0 (monochrome).
func WriteChromaCBFs(e *Encoder, cs *ContextSet) {
	e.EncodeBin(&cs.ChromaCBF[0], 0)
	e.EncodeBin(&cs.ChromaCBF[0], 0)
}

var groupIdxTable = [32]int{
	0, 1, 2, 3, 4, 4, 5, 5, 6, 6, 6, 6, 7, 7, 7, 7,
	8, 8, 8, 8, 8, 8, 8, 8, 9, 9, 9, 9, 9, 9, 9, 9,
}

var minInGroup [10]int

func init() {
	seen := make([]bool, 10)
	for pos, g := range groupIdxTable {
		if !seen[g] {
			minInGroup[g] = pos
			seen[g] = true
		}
	}
}

// writeLastSigPrefix truncated-unary codes groupIdxTable[value] using ctx
// array arr starting at ctxOffset, advancing by one context every
// 1<<ctxShift bins, and returns the group index (for suffix coding).
func writeLastSigPrefix(e *Encoder, arr []Context, ctxOffset, ctxShift, value int) int {
	g := groupIdxTable[value]
	for i := 0; i < g; i++ {
		idx := ctxOffset + (i >> uint(ctxShift))
		if idx >= len(arr) {
			idx = len(arr) - 1
		}
		e.EncodeBin(&arr[idx], 1)
	}
	if g < 9 {
		idx := ctxOffset + (g >> uint(ctxShift))
		if idx >= len(arr) {
			idx = len(arr) - 1
		}
		e.EncodeBin(&arr[idx], 0)
	}
	if g > 3 {
		suffixLen := (g >> 1) - 1
		suffix := value - minInGroup[g]
		e.EncodeBypassBits(uint32(suffix), suffixLen)
	}
	return g
}

// WriteLastSigXY codes last_significant_coeff_x/y (spec.md §4.6):
// coordinates are swapped first for a vertical scan.
func WriteLastSigXY(e *Encoder, cs *ContextSet, size int, typ ScanType, x, y int) {
	if typ == ScanVertical {
		x, y = y, x
	}
	log2S := log2(size)
	ctxOffset := 3*(log2S-2) + ((log2S - 1) >> 1)
	ctxShift := (log2S + 1) >> 2
	writeLastSigPrefix(e, cs.LastSigX[0][:], ctxOffset, ctxShift, x)
	writeLastSigPrefix(e, cs.LastSigY[0][:], ctxOffset, ctxShift, y)
}

var sigFixedPattern = [8]int{0, 1, 4, 5, 2, 3, 4, 5}

// sigCtxIndex derives the significant_coeff_flag context index (spec.md
// §4.6). Raster positions 0-7 within the CG use a fixed pattern; positions
// 8-15 share one context chosen only by how many of the right/below
// neighbour CGs are significant (6, 7 or 8), so their position within the
// CG does not enter. Non-first CGs add an offset of 3.
func sigCtxIndex(localPos int, firstCG, rightSig, belowSig bool) int {
	var base int
	if localPos < 8 {
		base = sigFixedPattern[localPos]
	} else {
		n := 0
		if rightSig {
			n++
		}
		if belowSig {
			n++
		}
		base = 6 + n
	}
	if !firstCG {
		base += 3
	}
	if base > 43 {
		base = 43
	}
	return base
}

// cgCoord returns the (x,y) coordinate of CG index cg within the size/4 x
// size/4 coefficient-group grid, derived from its first scan position.
func cgCoord(so *ScanOrder, cg int) (int, int) {
	for i, c := range so.CG {
		if c == cg {
			p := so.Pos[i]
			return p.x / 4, p.y / 4
		}
	}
	return 0, 0
}

// WriteCoefficients codes the full coefficient syntax for one CU's
// quantized levels (spec.md §4.6). Callers must only invoke this when the
// block's CBF is 1 (some level is non-zero).
func WriteCoefficients(e *Encoder, cs *ContextSet, size int, typ ScanType, levels [][]int32) {
	so := Scan(size, typ)
	numPos := len(so.Pos)
	numCG := numPos / 16
	numCGSide := size / 4

	lastScanIdx := -1
	for i := numPos - 1; i >= 0; i-- {
		p := so.Pos[i]
		if levels[p.y][p.x] != 0 {
			lastScanIdx = i
			break
		}
	}
	if lastScanIdx < 0 {
		return
	}
	lastPos := so.Pos[lastScanIdx]
	lastCG := so.CG[lastScanIdx]
	WriteLastSigXY(e, cs, size, typ, lastPos.x, lastPos.y)

	sigCG := make([]bool, numCG)
	for i := 0; i <= lastScanIdx; i++ {
		p := so.Pos[i]
		if levels[p.y][p.x] != 0 {
			sigCG[so.CG[i]] = true
		}
	}

	cgGrid := make(map[int][2]int, numCG)
	for cg := 0; cg < numCG; cg++ {
		x, y := cgCoord(so, cg)
		cgGrid[cg] = [2]int{x, y}
	}
	cgAt := func(x, y int) (int, bool) {
		if x < 0 || y < 0 || x >= numCGSide || y >= numCGSide {
			return 0, false
		}
		for cg, xy := range cgGrid {
			if xy[0] == x && xy[1] == y {
				return cg, true
			}
		}
		return 0, false
	}

	prevGreater1Found := false
	for cg := lastCG; cg >= 0; cg-- {
		if cg != 0 && cg != lastCG {
			coord := cgGrid[cg]
			rcg, rok := cgAt(coord[0]+1, coord[1])
			bcg, bok := cgAt(coord[0], coord[1]+1)
			rightSig := rok && sigCG[rcg]
			belowSig := bok && sigCG[bcg]
			ctx := 0
			if rightSig || belowSig {
				ctx = 1
			}
			bin := uint8(0)
			if sigCG[cg] {
				bin = 1
			}
			e.EncodeBin(&cs.CGSig[ctx], bin)
		} else {
			sigCG[cg] = true
		}
		if !sigCG[cg] {
			continue
		}

		coord := cgGrid[cg]
		rcg, rok := cgAt(coord[0]+1, coord[1])
		bcg, bok := cgAt(coord[0], coord[1]+1)
		rightSig := rok && sigCG[rcg]
		belowSig := bok && sigCG[bcg]
		firstCG := cg == 0

		start := 15
		if cg == lastCG {
			start = lastScanIdx % 16
		}
		foundNonZero := false
		var nonZeroLocal []int
		for local := start; local >= 0; local-- {
			scanIdx := cg*16 + local
			if scanIdx == lastScanIdx {
				nonZeroLocal = append(nonZeroLocal, local)
				foundNonZero = true
				continue
			}
			p := so.Pos[scanIdx]
			isFirstInCG := local == 0
			var sig bool
			if isFirstInCG && !firstCG && !foundNonZero {
				sig = true
			} else {
				sig = levels[p.y][p.x] != 0
				x, y := p.x%4, p.y%4
				ctxIdx := sigCtxIndex(y*4+x, firstCG, rightSig, belowSig)
				bin := uint8(0)
				if sig {
					bin = 1
				}
				e.EncodeBin(&cs.SigFlag[ctxIdx], bin)
			}
			if sig {
				foundNonZero = true
				nonZeroLocal = append(nonZeroLocal, local)
			}
		}

		// nonZeroLocal was built high-to-low; that's already the coding
		// order (reverse scan).
		greater1Count := 0
		c1 := 1
		ctxSet := 0
		if !firstCG {
			ctxSet = 2
		}
		if prevGreater1Found {
			ctxSet++
		}

		type coefInfo struct {
			local int
			level int32
			base  int32
		}
		infos := make([]coefInfo, 0, len(nonZeroLocal))
		greater2Done := false
		thisCGGreater1Found := false
		for _, local := range nonZeroLocal {
			scanIdx := cg*16 + local
			p := so.Pos[scanIdx]
			lvl := levels[p.y][p.x]
			mag := lvl
			if mag < 0 {
				mag = -mag
			}
			base := int32(1)
			if greater1Count < 8 {
				g1 := mag > 1
				ctxIdx := ctxSet*4 + min3(c1)
				if ctxIdx >= len(cs.OneFlag) {
					ctxIdx = len(cs.OneFlag) - 1
				}
				bin := uint8(0)
				if g1 {
					bin = 1
				}
				e.EncodeBin(&cs.OneFlag[ctxIdx], bin)
				if g1 {
					thisCGGreater1Found = true
					c1 = 0
					if !greater2Done {
						g2 := mag > 2
						g2ctx := ctxSet
						if g2ctx >= len(cs.AbsGreater2) {
							g2ctx = len(cs.AbsGreater2) - 1
						}
						gbin := uint8(0)
						if g2 {
							gbin = 1
						}
						e.EncodeBin(&cs.AbsGreater2[g2ctx], gbin)
						greater2Done = true
						base = 2
						if g2 {
							base = 3
						}
					} else {
						base = 2
					}
				} else if c1 > 0 && c1 < 3 {
					c1++
				}
				greater1Count++
			}
			infos = append(infos, coefInfo{local: local, level: lvl, base: base})
		}
		prevGreater1Found = thisCGGreater1Found

		firstLocal, lastLocal := -1, -1
		for _, ci := range infos {
			if firstLocal < 0 || ci.local > firstLocal {
				firstLocal = ci.local
			}
			if lastLocal < 0 || ci.local < lastLocal {
				lastLocal = ci.local
			}
		}
		hideSign := firstLocal >= 0 && firstLocal-lastLocal >= 4
		// infos runs in reverse scan order, so its last entry is the
		// lowest-frequency non-zero level, whose sign applySignHiding folds
		// into the CG's parity.
		for i, ci := range infos {
			if hideSign && i == len(infos)-1 {
				continue
			}
			sign := uint8(0)
			if ci.level < 0 {
				sign = 1
			}
			e.EncodeBypass(sign)
		}

		k := 0
		for _, ci := range infos {
			mag := ci.level
			if mag < 0 {
				mag = -mag
			}
			rem := mag - ci.base
			if rem > 0 {
				writeCoeffRemaining(e, uint32(rem-1), &k)
			}
			if uint32(mag) > uint32(3<<uint(k)) && k < 4 {
				k++
			}
		}
	}
}

func min3(c1 int) int {
	if c1 > 3 {
		return 3
	}
	return c1
}

// writeCoeffRemaining bypass-codes one residual magnitude using the
// Rice/exp-Golomb hybrid of spec.md §4.6, with Rice parameter *k.
func writeCoeffRemaining(e *Encoder, value uint32, k *int) {
	kk := uint(*k)
	threshold := uint32(3) << kk
	if value < threshold {
		lenPrefix := int(value >> kk)
		for i := 0; i < lenPrefix; i++ {
			e.EncodeBypass(1)
		}
		e.EncodeBypass(0)
		if kk > 0 {
			e.EncodeBypassBits(value&((1<<kk)-1), int(kk))
		}
		return
	}
	v := value - threshold
	length := int(kk)
	for v >= (uint32(1) << uint(length)) && length < 32 {
		length++
	}
	// length is now the smallest value >= k with v < 1<<length; emit the
	// exp-Golomb-style prefix/suffix.
	prefixLen := length - int(kk) + 4
	for i := 0; i < prefixLen-1; i++ {
		e.EncodeBypass(1)
	}
	e.EncodeBypass(0)
	e.EncodeBypassBits(v, length)
}
