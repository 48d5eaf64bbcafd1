/*
DESCRIPTION
  scan.go builds the diagonal, horizontal and vertical coefficient scan
  orders (spec.md §4.4) as explicit (row,column) sequences, generated once
  at package init time rather than hand-listed (DESIGN NOTES).

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

// ScanType enumerates the three coefficient scan orders spec.md §4.4
// names: diagonal is the default; horizontal and vertical only appear at
// CU depth 2 (size 8) for near-vertical / near-horizontal angular modes.
type ScanType int

const (
	ScanDiagonal ScanType = iota
	ScanHorizontal
	ScanVertical
)

// pos is an (x,y) coefficient coordinate within a transform block.
type pos struct{ x, y int }

// ScanOrder is a precomputed traversal of one S×S transform block: Pos
// gives the (x,y) coordinate visited at each scan index, CG gives the
// index, in the coefficient-group scan order, of the group that scan index
// belongs to (group g covers scan indices 16g..16g+15), and Index inverts
// Pos.
type ScanOrder struct {
	Size  int
	Type  ScanType
	Pos   []pos
	CG    []int
	Index map[pos]int
}

var scanCache = map[[2]int]*ScanOrder{}

// init precomputes every (size,type) combination actually used by the
// encoder: diagonal at 8, 16 and 32; horizontal/vertical only at 8 (the
// only size at which spec.md §4.4 allows a non-diagonal scan).
func init() {
	for _, size := range []int{8, 16, 32} {
		buildScan(size, ScanDiagonal)
	}
	buildScan(8, ScanHorizontal)
	buildScan(8, ScanVertical)
}

func buildScan(size int, typ ScanType) *ScanOrder {
	numCG := size / 4
	cgOrder := rasterOrRotated(numCG, typ)
	inCG := rasterOrRotated(4, typ)

	so := &ScanOrder{Size: size, Type: typ, Index: make(map[pos]int, size*size)}
	for cgIdx, cg := range cgOrder {
		for _, ip := range inCG {
			p := pos{x: cg.x*4 + ip.x, y: cg.y*4 + ip.y}
			so.Index[p] = len(so.Pos)
			so.Pos = append(so.Pos, p)
			so.CG = append(so.CG, cgIdx)
		}
	}
	scanCache[[2]int{size, int(typ)}] = so
	return so
}

// rasterOrRotated returns the n×n traversal order for one scan type: an
// up-right diagonal sweep for ScanDiagonal, row-major for ScanHorizontal,
// column-major for ScanVertical. The same function builds both the
// CG-internal order and the inter-CG order (spec.md §4.4: "the same
// type's CG-internal order"/"inter-CG order").
func rasterOrRotated(n int, typ ScanType) []pos {
	switch typ {
	case ScanHorizontal:
		out := make([]pos, 0, n*n)
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				out = append(out, pos{x, y})
			}
		}
		return out
	case ScanVertical:
		out := make([]pos, 0, n*n)
		for x := 0; x < n; x++ {
			for y := 0; y < n; y++ {
				out = append(out, pos{x, y})
			}
		}
		return out
	default:
		return diagonalScan(n)
	}
}

// diagonalScan returns the up-right diagonal scan of an n×n grid: for each
// anti-diagonal x+y=d (d=0..2n-2), positions are visited from the highest
// y down to the lowest, i.e. bottom-left to top-right along the diagonal.
func diagonalScan(n int) []pos {
	out := make([]pos, 0, n*n)
	for d := 0; d <= 2*(n-1); d++ {
		yStart := d
		if yStart > n-1 {
			yStart = n - 1
		}
		yEnd := 0
		if d-(n-1) > 0 {
			yEnd = d - (n - 1)
		}
		for y := yStart; y >= yEnd; y-- {
			out = append(out, pos{x: d - y, y: y})
		}
	}
	return out
}

// Scan returns the precomputed ScanOrder for size and typ, building it on
// first use for any combination not already warmed at init (kept for
// robustness; every combination the encoder actually issues is built
// eagerly above).
func Scan(size int, typ ScanType) *ScanOrder {
	key := [2]int{size, int(typ)}
	if so, ok := scanCache[key]; ok {
		return so
	}
	return buildScan(size, typ)
}
