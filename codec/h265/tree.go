/*
DESCRIPTION
  tree.go is the recursive coding-tree driver (spec.md §4.7): per CTU it
  walks the quadtree from depth 0 (32x32) to depth 2 (8x8), at every CU
  choosing between splitting and coding a leaf by comparing their
  measured rate-distortion cost, snapshotting and restoring the CABAC
  coder and context set around each trial.

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

import "gonum.org/v1/gonum/stat"

// ctuSize is the fixed coding-tree-unit side length.
const ctuSize = 32

// flatBlockVariance bounds the sample variance below which a block is
// judged flat enough that a full 35-mode search is unlikely to beat a
// small handful of low-SAD candidates.
const flatBlockVariance = 4.0

// flatBlockCandCap caps the candidate count for flat blocks whenever the
// caller's PModeCand is larger (35 included), keeping the common
// flat-background case cheap.
const flatBlockCandCap = 3

// Driver owns every resource needed for one encode: the original and
// reconstructed planes, the committed-region tracker, the per-CTU-row
// depth/mode context maps, the live CABAC coder and context set, and the
// output byte accumulator (spec.md §5's resource policy).
type Driver struct {
	orig      *Plane
	rec       *Plane
	committed *Committed
	depthMap  *ContextMap
	modeMap   *ContextMap
	enc       *Encoder
	ctx       *ContextSet
	qpd6      int
	pmodeCand int
	ctuRowY   int
	out       []byte
	depthHist [3]int // committed-CU counts at depth 0/1/2, reset each CTU row.

	// OnRow, if set, is called after each completed CTU row with the row
	// index, the number of slice-payload bytes emitted so far, and that
	// row's leaf-CU depth histogram (ambient progress reporting; the core
	// pipeline itself stays logger-free).
	OnRow func(row, bytesSoFar int, depthHist [3]int)
}

// NewDriver builds a Driver for an image already cropped to a multiple of
// ctuSize in both dimensions.
func NewDriver(orig *Plane, qpd6, pmodeCand int) *Driver {
	w, h := orig.Width(), orig.Height()
	return &Driver{
		orig:      orig,
		rec:       NewPlane(w, h),
		committed: NewCommitted(w, h),
		depthMap:  NewContextMap(w),
		modeMap:   NewContextMap(w),
		enc:       NewEncoder(),
		ctx:       NewContextSet(6*qpd6 + 4),
		qpd6:      qpd6,
		pmodeCand: pmodeCand,
	}
}

// Run encodes every CTU of the image in raster order, returning the
// CABAC-coded slice payload (spec.md §6 step 5, minus the trailing
// finalize which the caller performs once after the last CTU).
func (d *Driver) Run() []byte {
	w, h := d.orig.Width(), d.orig.Height()
	numCTUx := w / ctuSize
	numCTUy := h / ctuSize

	for cy := 0; cy < numCTUy; cy++ {
		d.ctuRowY = cy * ctuSize
		d.depthHist = [3]int{}
		for cx := 0; cx < numCTUx; cx++ {
			d.processCU(cx*ctuSize, cy*ctuSize, ctuSize, 0)
			last := cy == numCTUy-1 && cx == numCTUx-1
			term := uint8(0)
			if last {
				term = 1
			}
			d.enc.EncodeTerminate(term)
			d.out = d.enc.Commit(d.out, 2)
		}
		d.depthMap.ScrollRow()
		d.modeMap.ScrollRow()
		if d.OnRow != nil {
			d.OnRow(cy, len(d.out), d.depthHist)
		}
	}
	return d.out
}

// Finish finalizes the CABAC coder and returns only the remaining bytes to
// append after Run's result; must be called exactly once, after Run. (Run
// already returned everything committed so far via Encoder.Commit — this
// must not re-drain into d.out, or those bytes would be duplicated by a
// caller that appends both Run's and Finish's results.)
func (d *Driver) Finish() []byte {
	d.enc.Finish()
	return d.enc.Drain(nil)
}

// Reconstructed returns the fully reconstructed image plane.
func (d *Driver) Reconstructed() *Plane { return d.rec }

// processCU codes one CU at (cx,cy) of side size at tree depth, choosing
// between a leaf encoding and a 4-way split by RDcost, and returns that
// choice's cost (spec.md §4.7 steps 1-6).
func (d *Driver) processCU(cx, cy, size, depth int) int64 {
	snapEnc := *d.enc
	snapCtx := *d.ctx

	rowInCTU := (cy - d.ctuRowY) / 8
	col := cx / 8

	var leftSplit, aboveSplit bool
	if depth < 2 {
		if lv, ok := d.depthMap.Left(rowInCTU, col); ok && int(lv) > depth {
			leftSplit = true
		}
		if av, ok := d.depthMap.Above(rowInCTU, col); ok && int(av) > depth {
			aboveSplit = true
		}
	}

	leftMode, aboveMode := 1, 1
	if lv, ok := d.modeMap.Left(rowInCTU, col); ok {
		leftMode = int(lv)
	}
	if av, ok := d.modeMap.Above(rowInCTU, col); ok {
		aboveMode = int(av)
	}
	mpm := DeriveMPM(leftMode, aboveMode)

	orig := extractBlock(d.orig.SubView(cx, cy, size, size))
	borders := GatherBorders(d.rec, d.committed, cx, cy, size)
	candCount := d.pmodeCand
	if blockVariance(orig) < flatBlockVariance && candCount > flatBlockCandCap {
		candCount = flatBlockCandCap
	}
	candidates := candidateModes(size, orig, borders, candCount)

	bestCost := int64(-1)
	var bestEnc Encoder
	var bestCtx ContextSet
	var bestRec [][]uint8
	var bestMode int

	for _, mode := range candidates {
		pred := Predict(size, mode, borders)
		res := residual(orig, pred, size)
		coeffs := Forward(size, res)
		scanType := scanTypeForMode(size, mode)
		levels := Quantize(coeffs, d.qpd6, size, scanType)
		deq := Dequantize(levels, d.qpd6, size)
		irec := Inverse(size, deq)

		rcon := make([][]uint8, size)
		nonZero := false
		for y := 0; y < size; y++ {
			rcon[y] = make([]uint8, size)
			for x := 0; x < size; x++ {
				rcon[y][x] = clip8(int32(pred[y][x]) + irec[y][x])
				if levels[y][x] != 0 {
					nonZero = true
				}
			}
		}

		trialEnc := snapEnc
		trialCtx := snapCtx
		bitsBefore := trialEnc.Len()
		if depth < 2 {
			WriteSplitFlag(&trialEnc, &trialCtx, leftSplit, aboveSplit, false)
		} else {
			WritePartSize(&trialEnc, &trialCtx)
		}
		WriteLumaPMode(&trialEnc, &trialCtx, mode, mpm)
		WriteChromaPMode(&trialEnc, &trialCtx)
		WriteLumaCBF(&trialEnc, &trialCtx, nonZero)
		if nonZero {
			WriteCoefficients(&trialEnc, &trialCtx, size, scanType, levels)
		}
		WriteChromaCBFs(&trialEnc, &trialCtx)
		bitsUsed := int64(trialEnc.Len() - bitsBefore)

		ssd := computeSSD(orig, rcon, size)
		cost := distWeight[d.qpd6]*ssd + bitsWeight[d.qpd6]*bitsUsed
		if bestCost < 0 || cost < bestCost {
			bestCost = cost
			bestEnc = trialEnc
			bestCtx = trialCtx
			bestRec = rcon
			bestMode = mode
		}
	}

	if depth < 2 {
		splitEnc := snapEnc
		splitCtx := snapCtx
		bitsBefore := splitEnc.Len()
		WriteSplitFlag(&splitEnc, &splitCtx, leftSplit, aboveSplit, true)
		splitCost := bitsWeight[d.qpd6] * int64(splitEnc.Len()-bitsBefore)

		savedEnc, savedCtx := *d.enc, *d.ctx
		savedHist := d.depthHist
		*d.enc, *d.ctx = splitEnc, splitCtx
		half := size / 2
		children := [4][2]int{
			{cx, cy}, {cx + half, cy},
			{cx, cy + half}, {cx + half, cy + half},
		}
		for _, c := range children {
			splitCost += d.processCU(c[0], c[1], half, depth+1)
		}
		splitResultEnc, splitResultCtx := *d.enc, *d.ctx
		*d.enc, *d.ctx = savedEnc, savedCtx

		if splitCost < bestCost {
			*d.enc, *d.ctx = splitResultEnc, splitResultCtx
			return splitCost
		}
		// The losing split's leaves were not committed; drop their counts.
		d.depthHist = savedHist
	}

	*d.enc, *d.ctx = bestEnc, bestCtx
	writeBlock(d.rec.SubView(cx, cy, size, size), bestRec, size)
	d.committed.MarkBlock(cx, cy, size)
	d.depthMap.Fill(rowInCTU, col, size, int8(depth))
	d.modeMap.Fill(rowInCTU, col, size, int8(bestMode))
	d.depthHist[depth]++
	return bestCost
}

// blockVariance returns the sample variance of a block's pixels, used to
// cheaply flag near-flat regions before the full candidate-mode search.
func blockVariance(block [][]uint8) float64 {
	n := len(block) * len(block[0])
	vals := make([]float64, 0, n)
	for _, row := range block {
		for _, v := range row {
			vals = append(vals, float64(v))
		}
	}
	_, variance := stat.MeanVariance(vals, nil)
	return variance
}

// candidateModes returns the modes to evaluate for one CU: all 35 if
// pmodeCand>=35, else the pmodeCand modes whose prediction has the
// lowest sum-of-absolute-differences against the original block (spec.md
// §4.7 step 3).
func candidateModes(size int, orig [][]uint8, b Borders, pmodeCand int) []int {
	if pmodeCand >= 35 {
		all := make([]int, 35)
		for i := range all {
			all[i] = i
		}
		return all
	}
	type scored struct {
		mode int
		sad  int64
	}
	scores := make([]scored, 35)
	for m := 0; m < 35; m++ {
		pred := Predict(size, m, b)
		var sad int64
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				d := int64(orig[y][x]) - int64(pred[y][x])
				if d < 0 {
					d = -d
				}
				sad += d
			}
		}
		scores[m] = scored{m, sad}
	}
	for i := 0; i < len(scores); i++ {
		for j := i + 1; j < len(scores); j++ {
			if scores[j].sad < scores[i].sad {
				scores[i], scores[j] = scores[j], scores[i]
			}
		}
	}
	n := pmodeCand
	if n > 35 {
		n = 35
	}
	if n < 1 {
		n = 1
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = scores[i].mode
	}
	return out
}

// scanTypeForMode picks the coefficient scan order for a CU of the given
// size and chosen mode (spec.md §4.4): horizontal/vertical scans only
// apply at size 8, for modes within 4 of the opposite axis direction.
func scanTypeForMode(size, mode int) ScanType {
	if size != 8 {
		return ScanDiagonal
	}
	if mode >= 6 && mode <= 14 {
		return ScanVertical
	}
	if mode >= 22 && mode <= 30 {
		return ScanHorizontal
	}
	return ScanDiagonal
}

// extractBlock copies the size×size window of v into a plain grid for the
// residual/transform/quantize chain, which needs a caller-owned scratch
// buffer rather than a borrowed view (spec DESIGN NOTES: views for borrowed
// reads, owned buffers for the per-CU scratch the pipeline mutates).
func extractBlock(v View) [][]uint8 {
	size := v.h
	out := make([][]uint8, size)
	for j := 0; j < size; j++ {
		out[j] = make([]uint8, size)
		for i := 0; i < v.w; i++ {
			out[j][i] = v.At(i, j)
		}
	}
	return out
}

func writeBlock(v View, block [][]uint8, size int) {
	for j := 0; j < size; j++ {
		for i := 0; i < size; i++ {
			v.Set(i, j, block[j][i])
		}
	}
}

func residual(orig, pred [][]uint8, size int) [][]int32 {
	out := make([][]int32, size)
	for y := 0; y < size; y++ {
		out[y] = make([]int32, size)
		for x := 0; x < size; x++ {
			out[y][x] = int32(orig[y][x]) - int32(pred[y][x])
		}
	}
	return out
}

func computeSSD(orig [][]uint8, rcon [][]uint8, size int) int64 {
	var sum int64
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := int64(orig[y][x]) - int64(rcon[y][x])
			sum += d * d
		}
	}
	return sum
}

// MarkBlock records every 8x8 unit covered by a size×size block at
// (x,y) as reconstructed.
func (c *Committed) MarkBlock(x, y, size int) {
	for j := 0; j < size; j += 8 {
		for i := 0; i < size; i += 8 {
			c.Mark(x+i, y+j)
		}
	}
}
