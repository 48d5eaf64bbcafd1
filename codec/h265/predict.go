/*
DESCRIPTION
  predict.go builds the 35 HEVC intra-prediction candidates (planar, DC,
  and 33 angular modes) from reconstructed neighbour samples, including
  border acquisition, border smoothing, and the mode-specific edge
  filters (spec.md §4.1).

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

// angleTable gives intraPredAngle for angular modes 2..34 (HEVC Table
// 8-5). Index 0 and 1 (planar, DC) are unused.
var angleTable = [35]int32{
	0, 0,
	32, 26, 21, 17, 13, 9, 5, 2, 0, -2, -5, -9, -13, -17, -21, -26, -32,
	-26, -21, -17, -13, -9, -5, -2, 0, 2, 5, 9, 13, 17, 21, 26, 32,
}

// invAngleTable gives invAngle for modes 11..25 (HEVC Table 8-6), the
// only modes with a negative intraPredAngle needing side-border
// projection. Zero elsewhere (unused).
var invAngleTable = [35]int32{}

func init() {
	vals := map[int]int32{
		11: -4096, 12: -1638, 13: -910, 14: -630, 15: -482, 16: -390, 17: -315,
		18: -256,
		19: -315, 20: -390, 21: -482, 22: -630, 23: -910, 24: -1638, 25: -4096,
	}
	for m, v := range vals {
		invAngleTable[m] = v
	}
}

// Borders holds the reconstructed-neighbour samples assembled for one CU,
// per spec.md §4.1: a single top-left corner sample, 2S left(+below)
// samples and 2S above(+right) samples.
type Borders struct {
	Corner uint8
	Left   []uint8 // length 2S: left column then left-below extension.
	Above  []uint8 // length 2S: above row then above-right extension.
}

// Committed tracks, at 8x8 granularity, which regions of the image have
// already been reconstructed — the dynamic replacement for the source's
// static per-depth/per-position left-below/above-right availability
// tables (DESIGN NOTES invites simplifying this kind of bookkeeping): a
// border sample is available exactly when the 8x8 unit containing it has
// already been committed.
type Committed struct {
	w, h int // in 8x8 units.
	grid []bool
}

// NewCommitted allocates a Committed tracker sized for an image of the
// given pixel width and height (both multiples of 8).
func NewCommitted(pixelW, pixelH int) *Committed {
	return &Committed{w: pixelW / 8, h: pixelH / 8, grid: make([]bool, (pixelW/8)*(pixelH/8))}
}

// Mark records the 8x8 unit at pixel (x,y) as reconstructed.
func (c *Committed) Mark(x, y int) {
	ux, uy := x/8, y/8
	if ux < 0 || ux >= c.w || uy < 0 || uy >= c.h {
		return
	}
	c.grid[uy*c.w+ux] = true
}

// Available reports whether the 8x8 unit containing pixel (x,y) has been
// reconstructed. Out-of-image coordinates are never available.
func (c *Committed) Available(x, y int) bool {
	if x < 0 || y < 0 {
		return false
	}
	ux, uy := x/8, y/8
	if ux >= c.w || uy >= c.h {
		return false
	}
	return c.grid[uy*c.w+ux]
}

// GatherBorders assembles Borders for a CU of side s at (cx,cy) in rec,
// using avail to determine which neighbour samples already exist. Missing
// samples fall back, in order of preference, to the nearest available
// boundary sample, then the opposite border, then the constant 128
// (spec.md §4.1).
func GatherBorders(rec *Plane, avail *Committed, cx, cy, s int) Borders {
	b := Borders{Left: make([]uint8, 2*s), Above: make([]uint8, 2*s)}

	sample := func(x, y int) (uint8, bool) {
		if x < 0 || y < 0 || x >= rec.Width() || y >= rec.Height() {
			return 0, false
		}
		if !avail.Available(x, y) {
			return 0, false
		}
		return rec.At(x, y), true
	}

	cornerOK := false
	if v, ok := sample(cx-1, cy-1); ok {
		b.Corner = v
		cornerOK = true
	} else {
		b.Corner = 128
	}

	for i := 0; i < 2*s; i++ {
		if v, ok := sample(cx-1, cy+i); ok {
			b.Left[i] = v
		}
	}
	for i := 0; i < 2*s; i++ {
		if v, ok := sample(cx+i, cy-1); ok {
			b.Above[i] = v
		}
	}

	fillMissing(b.Left, func(i int) (uint8, bool) { return sample(cx-1, cy+i) }, b.Corner)
	fillMissing(b.Above, func(i int) (uint8, bool) { return sample(cx+i, cy-1) }, b.Corner)

	// Cross-fill: when the corner is unavailable too, a wholly unavailable
	// border takes the opposite border's first sample; with neither border
	// available both stay 128.
	if !cornerOK && allZeroUnavailable(b.Left, func(i int) (uint8, bool) { return sample(cx-1, cy+i) }) &&
		!allZeroUnavailable(b.Above, func(i int) (uint8, bool) { return sample(cx+i, cy-1) }) {
		for i := range b.Left {
			b.Left[i] = b.Above[0]
		}
	}
	if !cornerOK && allZeroUnavailable(b.Above, func(i int) (uint8, bool) { return sample(cx+i, cy-1) }) &&
		!allZeroUnavailable(b.Left, func(i int) (uint8, bool) { return sample(cx-1, cy+i) }) {
		for i := range b.Above {
			b.Above[i] = b.Left[0]
		}
	}
	// An unavailable corner takes the nearest boundary sample, Left[0]
	// (which holds Above[0] after a cross-fill), or 128 if there is none.
	if !cornerOK {
		b.Corner = b.Left[0]
	}
	return b
}

// fillMissing replaces unavailable entries of a border array: each takes
// the nearest preceding available sample, a leading run with none before it
// takes the first available sample, and if no entry is available every
// entry takes corner (spec.md §4.1's fallback order).
func fillMissing(arr []uint8, src func(i int) (uint8, bool), corner uint8) {
	last := corner
	haveLast := false
	for i := range arr {
		if v, ok := src(i); ok {
			arr[i] = v
			last = v
			haveLast = true
			continue
		}
		if haveLast {
			arr[i] = last
		} else {
			arr[i] = corner
		}
	}
	// Back-fill any leading run that had no earlier available sample, now
	// that we know the first truly available value (if any).
	firstAvail := -1
	for i := range arr {
		if v, ok := src(i); ok {
			firstAvail = i
			_ = v
			break
		}
	}
	if firstAvail > 0 {
		for i := 0; i < firstAvail; i++ {
			arr[i] = arr[firstAvail]
		}
	} else if firstAvail < 0 {
		for i := range arr {
			arr[i] = corner
		}
	}
}

func allZeroUnavailable(arr []uint8, src func(i int) (uint8, bool)) bool {
	for i := range arr {
		if _, ok := src(i); ok {
			return false
		}
	}
	return true
}

// useSmoothing reports whether filtered borders are used for prediction at
// a given block size and mode (spec.md §4.1). Sizes above 16 never smooth.
// At sizes up to 16, planar always smooths and DC, horizontal and vertical
// never do (they apply their own, different, edge corrections). Of the
// other angular modes only those strictly between horizontal (10) and
// vertical (26) smooth, at size 8 only the even ones among them; modes 2-9
// and 27-34 never smooth.
func useSmoothing(size, mode int) bool {
	if size > 16 {
		return false
	}
	switch mode {
	case 0: // planar
		return true
	case 1, 10, 26: // DC, horizontal, vertical.
		return false
	}
	// Angular modes strictly between horizontal and vertical; at size 8,
	// the even ones only.
	if size == 8 {
		return mode > 10 && mode < 26 && (mode%4 == 2 || mode%4 == 0)
	}
	return mode > 10 && mode < 26
}

// smooth3 applies the 3-tap [1,2,1]/4 filter along one border array
// (spec.md §4.1). corner is the sample preceding arr[0] (bla, for both
// borders); the last sample, having no successor, is filtered [1,3]/4
// against its predecessor.
func smooth3(arr []uint8, corner uint8) []uint8 {
	n := len(arr)
	out := make([]uint8, n)
	prev := corner
	for i := 0; i < n; i++ {
		next := arr[n-1]
		if i+1 < n {
			next = arr[i+1]
		}
		if i == n-1 {
			out[i] = uint8((uint16(prev) + 3*uint16(arr[i]) + 2) >> 2)
		} else {
			out[i] = uint8((uint16(prev) + 2*uint16(arr[i]) + uint16(next) + 2) >> 2)
		}
		prev = arr[i]
	}
	return out
}

func smoothCorner(corner, left0, above0 uint8) uint8 {
	return uint8((uint16(left0) + 2*uint16(corner) + uint16(above0) + 2) >> 2)
}

// Predict produces the s×s prediction block for mode from the
// reconstructed-neighbour borders b. The luma-only edge filters
// (DC/horizontal/vertical corrections, border smoothing) are always
// applied, since this encoder is luma-only.
func Predict(s, mode int, b Borders) [][]uint8 {
	corner := b.Corner
	left := b.Left
	above := b.Above

	if useSmoothing(s, mode) {
		left = smooth3(b.Left, b.Corner)
		above = smooth3(b.Above, b.Corner)
		corner = smoothCorner(b.Corner, b.Left[0], b.Above[0])
	}

	switch mode {
	case 0:
		return predictPlanar(s, corner, left, above)
	case 1:
		return predictDC(s, left, above)
	case 10:
		return predictHorizontal(s, corner, left, above)
	case 26:
		return predictVertical(s, corner, left, above)
	default:
		return predictAngular(s, mode, corner, left, above)
	}
}

func predictPlanar(s int, corner uint8, left, above []uint8) [][]uint8 {
	log2s := log2(s)
	out := make([][]uint8, s)
	belowLeft := left[s]
	aboveRight := above[s]
	for y := 0; y < s; y++ {
		out[y] = make([]uint8, s)
		for x := 0; x < s; x++ {
			h := int32(s-1-x)*int32(left[y]) + int32(x+1)*int32(aboveRight)
			v := int32(s-1-y)*int32(above[x]) + int32(y+1)*int32(belowLeft)
			out[y][x] = clip8((h + v + int32(s)) >> uint(log2s+1))
		}
	}
	_ = corner
	return out
}

func predictDC(s int, left, above []uint8) [][]uint8 {
	var sum int32
	for i := 0; i < s; i++ {
		sum += int32(left[i]) + int32(above[i])
	}
	log2s := log2(s)
	dc := clip8((sum + int32(s)) >> uint(log2s+1))

	out := make([][]uint8, s)
	for y := 0; y < s; y++ {
		out[y] = make([]uint8, s)
		for x := 0; x < s; x++ {
			out[y][x] = dc
		}
	}
	if s <= 16 {
		out[0][0] = uint8((uint16(left[0]) + 2*uint16(dc) + uint16(above[0]) + 2) >> 2)
		for x := 1; x < s; x++ {
			out[0][x] = uint8((3*uint16(above[x]) + uint16(dc) + 2) >> 2)
		}
		for y := 1; y < s; y++ {
			out[y][0] = uint8((3*uint16(left[y]) + uint16(dc) + 2) >> 2)
		}
	}
	return out
}

func predictHorizontal(s int, corner uint8, left, above []uint8) [][]uint8 {
	out := make([][]uint8, s)
	for y := 0; y < s; y++ {
		out[y] = make([]uint8, s)
		for x := 0; x < s; x++ {
			out[y][x] = left[y]
		}
	}
	if s <= 16 {
		for x := 0; x < s; x++ {
			bias := (int32(above[x]) - int32(corner)) >> 1
			out[0][x] = clip8(int32(left[0]) + bias)
		}
	}
	return out
}

func predictVertical(s int, corner uint8, left, above []uint8) [][]uint8 {
	out := make([][]uint8, s)
	for y := 0; y < s; y++ {
		out[y] = make([]uint8, s)
		for x := 0; x < s; x++ {
			out[y][x] = above[x]
		}
	}
	if s <= 16 {
		for y := 0; y < s; y++ {
			bias := (int32(left[y]) - int32(corner)) >> 1
			out[y][0] = clip8(int32(above[0]) + bias)
		}
	}
	return out
}

// predictAngular implements the general directional predictor (spec.md
// §4.1): horizontal-group modes 2-17 use the left border as the "main"
// reference (computed via the vertical-group algorithm on swapped axes,
// then transposed); vertical-group modes 18-34 use the above border
// directly.
func predictAngular(s, mode int, corner uint8, left, above []uint8) [][]uint8 {
	angle := angleTable[mode]
	invAngle := invAngleTable[mode]

	if mode >= 18 {
		return angularCore(s, angle, invAngle, corner, above, left)
	}
	core := angularCore(s, angle, invAngle, corner, left, above)
	out := make([][]uint8, s)
	for y := 0; y < s; y++ {
		out[y] = make([]uint8, s)
	}
	for y := 0; y < s; y++ {
		for x := 0; x < s; x++ {
			out[y][x] = core[x][y]
		}
	}
	return out
}

// angularCore computes the directional prediction treating main as the
// reference that extends along increasing row index (the vertical-group
// formula), building a projected 1-D reference array of length 4s+1, with
// the corner sample at index 2s, per spec.md §4.1.
func angularCore(s int, angle, invAngle int32, corner uint8, main, side []uint8) [][]uint8 {
	c := 2 * s
	ref := make([]int32, 4*s+1)
	ref[c] = int32(corner)
	for k := 0; k < 2*s && k < len(main); k++ {
		ref[c+1+k] = int32(main[k])
	}
	if 2*s < len(ref)-c-1 {
		for k := 2 * s; k+c+1 < len(ref); k++ {
			ref[c+1+k] = int32(main[len(main)-1])
		}
	}
	if angle < 0 {
		maxNeg := s
		if maxNeg > 2*s {
			maxNeg = 2 * s
		}
		for i := 1; i <= maxNeg; i++ {
			j := (128 - invAngle*int32(i)) >> 8
			jj := int(j) - 1
			if jj < 0 {
				jj = 0
			}
			if jj >= len(side) {
				jj = len(side) - 1
			}
			ref[c-i] = int32(side[jj])
		}
	} else {
		for i := 1; i <= s; i++ {
			ref[c-i] = ref[c+1]
		}
	}

	out := make([][]uint8, s)
	for y := 0; y < s; y++ {
		out[y] = make([]uint8, s)
		pos := int32(y+1) * angle
		idx := int(pos >> 5)
		off := int(pos & 31)
		for x := 0; x < s; x++ {
			i1 := c + idx + x + 1
			i2 := i1 + 1
			if i2 >= len(ref) {
				i2 = len(ref) - 1
			}
			if i1 < 0 {
				i1 = 0
			}
			if off == 0 {
				out[y][x] = clip8(ref[i1])
			} else {
				out[y][x] = clip8(((32-int32(off))*ref[i1] + int32(off)*ref[i2] + 16) >> 5)
			}
		}
	}
	return out
}

func log2(n int) int {
	l := 0
	for n > 1 {
		n >>= 1
		l++
	}
	return l
}
