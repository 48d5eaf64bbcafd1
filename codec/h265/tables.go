/*
DESCRIPTION
  tables.go holds the compile-time constant tables the CABAC engine and
  context-initialization process need: the LPS range table and state
  transition tables (the HEVC analogues of the rangeTabLPS/stateTransxTab
  tables in this codec family's H.264 decoder), the renormalization
  shift table, and the DCT basis matrices.

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

// lpsTable provides codIRangeLPS indexed [pStateIdx][qCodIRangeIdx], i.e.
// lps = lpsTable[state][(range>>6)&3]. This is the same 64x4 table used by
// this codec family's H.264 decoder (rangeTabLPS in
// codec/h264/h264dec/rangetablps.go) — HEVC's regular-bin engine reuses
// the same JVT-derived arithmetic-coder tables as H.264's.
var lpsTable = [64][4]uint16{
	{128, 176, 208, 240}, {128, 167, 197, 227}, {128, 158, 187, 216}, {123, 150, 178, 205},
	{116, 142, 169, 195}, {111, 135, 160, 185}, {105, 128, 152, 175}, {100, 122, 144, 166},
	{95, 116, 137, 158}, {90, 110, 130, 150}, {85, 104, 123, 142}, {81, 99, 117, 135},
	{77, 94, 111, 128}, {73, 89, 105, 122}, {69, 85, 100, 116}, {66, 80, 95, 110},
	{62, 76, 90, 104}, {59, 72, 86, 99}, {56, 69, 81, 94}, {53, 65, 77, 89},
	{51, 62, 73, 85}, {48, 59, 69, 80}, {46, 56, 66, 76}, {43, 53, 63, 72},
	{41, 50, 59, 69}, {39, 48, 56, 65}, {37, 45, 54, 62}, {35, 43, 51, 59},
	{33, 41, 48, 56}, {32, 39, 46, 53}, {30, 37, 43, 50}, {29, 35, 41, 48},
	{27, 33, 39, 45}, {26, 31, 37, 43}, {24, 30, 35, 41}, {23, 28, 33, 39},
	{22, 27, 32, 37}, {21, 26, 30, 35}, {20, 24, 29, 33}, {19, 23, 27, 31},
	{18, 22, 26, 30}, {17, 21, 25, 28}, {16, 20, 23, 27}, {15, 19, 22, 25},
	{14, 18, 21, 24}, {14, 17, 20, 23}, {13, 16, 19, 22}, {12, 15, 18, 21},
	{12, 14, 17, 20}, {11, 14, 16, 19}, {11, 13, 15, 18}, {10, 12, 15, 17},
	{10, 12, 14, 16}, {9, 11, 13, 15}, {9, 11, 12, 14}, {8, 10, 12, 14},
	{8, 9, 11, 13}, {7, 9, 11, 12}, {7, 9, 10, 12}, {7, 8, 10, 11},
	{6, 8, 9, 11}, {6, 7, 9, 10}, {6, 7, 8, 9}, {2, 2, 2, 2},
}

// nextStateLPS and nextStateMPS are the state transition tables indexed by
// pStateIdx, giving the next pStateIdx after coding an LPS or MPS bin
// respectively. Mirrors stateTransxTab's TransIdxLPS/TransIdxMPS pairing
// (codec/h264/h264dec/statetransxtab.go).
var nextStateLPS = [64]uint8{
	0, 0, 1, 2, 2, 4, 4, 5, 6, 7, 8, 9, 9, 11, 11, 12,
	13, 13, 15, 15, 16, 16, 18, 18, 19, 19, 21, 21, 22, 22, 23, 24,
	24, 25, 26, 26, 27, 27, 28, 29, 29, 30, 30, 30, 31, 32, 32, 33,
	33, 33, 34, 34, 35, 35, 35, 36, 36, 36, 37, 37, 37, 38, 38, 63,
}

var nextStateMPS = [64]uint8{
	1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16,
	17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31, 32,
	33, 34, 35, 36, 37, 38, 39, 40, 41, 42, 43, 44, 45, 46, 47, 48,
	49, 50, 51, 52, 53, 54, 55, 56, 57, 58, 59, 60, 61, 62, 62, 63,
}

// renormTable gives the number of bits to shift during LPS renormalization,
// indexed by (lps>>3) for lps in [0,255]. Unlike MPS renormalization (always
// one bit at a time until range>=256), the LPS path can require up to 6
// shifts in one step, so the engine looks the count up rather than looping.
var renormTable = [32]uint8{
	6, 5, 4, 4, 3, 3, 3, 3, 2, 2, 2, 2, 2, 2, 2, 2,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
}

// dctMatrix8, dctMatrix16 and dctMatrix32 are the HEVC integer DCT-II basis
// matrices for transform sizes 8, 16 and 32 (spec.md §4.2): entries in
// [-90,90], DC row constant 64. Rather than hand-listing every entry (the
// DESIGN NOTES flag large compile-time tables like this as better
// generated than transcribed), they're built once at init time. Each
// entry with k>0 approximates
//
//	T[k][n] = 64·√2·cos(π·(2n+1)·k / (2N))
//	T[0][n] = 64
//
// but the standard's integers are not all plain roundings of this (for
// N=8, row 2 starts 83, 36 rather than 84, 35), so dctBasis folds the
// angle onto one of the standard's 31 distinct magnitudes instead.
var (
	dctMatrix8  [8][8]int32
	dctMatrix16 [16][16]int32
	dctMatrix32 [32][32]int32
)

func init() {
	for _, row := range dctBasis(8) {
		copy(dctMatrix8[row.k][:], row.vals)
	}
	for _, row := range dctBasis(16) {
		copy(dctMatrix16[row.k][:], row.vals)
	}
	for _, row := range dctBasis(32) {
		copy(dctMatrix32[row.k][:], row.vals)
	}
}

type dctRow struct {
	k    int
	vals []int32
}

// dctBasis computes the N×N integer DCT-II basis matrix described above,
// one row per basis frequency k.
func dctBasis(n int) []dctRow {
	// coef[m] is the standard's integer for 64·√2·cos(π·m/64), m in 1..31.
	coef := [32]int32{0, 90, 90, 90, 89, 88, 87, 85, 83, 82, 80, 78, 75, 73, 70, 67,
		64, 61, 57, 54, 50, 46, 43, 38, 36, 31, 25, 22, 18, 13, 9, 4}
	rows := make([]dctRow, n)
	for k := 0; k < n; k++ {
		vals := make([]int32, n)
		if k == 0 {
			for j := range vals {
				vals[j] = 64
			}
		} else {
			for j := 0; j < n; j++ {
				m := (32 / n) * k * (2*j + 1) % 128
				sign := int32(1)
				if m > 64 {
					m = 128 - m
				}
				if m > 32 {
					m, sign = 64-m, -1
				}
				vals[j] = sign * coef[m]
			}
		}
		rows[k] = dctRow{k: k, vals: vals}
	}
	return rows
}

