/*
DESCRIPTION
  transform.go implements the forward and inverse integer DCT at sizes 8,
  16 and 32 (spec.md §4.2), built on the basis matrices in tables.go as
  two separable 1-D passes with the standard intermediate-precision shift
  schedule.

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

func basis(s int) [][]int32 {
	switch s {
	case 8:
		out := make([][]int32, 8)
		for i := range out {
			out[i] = dctMatrix8[i][:]
		}
		return out
	case 16:
		out := make([][]int32, 16)
		for i := range out {
			out[i] = dctMatrix16[i][:]
		}
		return out
	case 32:
		out := make([][]int32, 32)
		for i := range out {
			out[i] = dctMatrix32[i][:]
		}
		return out
	default:
		panic("h265: unsupported transform size")
	}
}

// Forward computes the S×S forward DCT of a residual block (prediction
// error, entries within [-255,255]), returning unquantized transform
// coefficients. Implemented as two matrix multiplies by the basis matrix
// — simpler than a butterfly decomposition and, since spec.md's Non-goals
// exclude bit-exact or worst-case-optimal performance, no less correct.
func Forward(s int, res [][]int32) [][]int32 {
	m := basis(s)
	log2s := log2(s)
	shift1 := uint(log2s - 1)
	round1 := int32(1) << (shift1 - 1)
	shift2 := uint(log2s + 6)
	round2 := int32(1) << (shift2 - 1)

	tmp := make([][]int32, s)
	for u := 0; u < s; u++ {
		tmp[u] = make([]int32, s)
		for x := 0; x < s; x++ {
			var sum int32
			for y := 0; y < s; y++ {
				sum += m[u][y] * res[y][x]
			}
			tmp[u][x] = clip16((sum + round1) >> shift1)
		}
	}

	out := make([][]int32, s)
	for u := 0; u < s; u++ {
		out[u] = make([]int32, s)
	}
	for u := 0; u < s; u++ {
		for v := 0; v < s; v++ {
			var sum int32
			for x := 0; x < s; x++ {
				sum += m[v][x] * tmp[u][x]
			}
			out[u][v] = clip16((sum + round2) >> shift2)
		}
	}
	return out
}

// Inverse computes the S×S inverse DCT of dequantized coefficients,
// returning a reconstructed residual block (not yet clipped to sample
// range — the caller adds the prediction and clips with clip8).
func Inverse(s int, coeff [][]int32) [][]int32 {
	m := basis(s)
	const shift1 = 7
	const round1 = 1 << (shift1 - 1)
	const shift2 = 12
	const round2 = 1 << (shift2 - 1)

	e := make([][]int32, s)
	for y := 0; y < s; y++ {
		e[y] = make([]int32, s)
		for v := 0; v < s; v++ {
			var sum int32
			for u := 0; u < s; u++ {
				sum += m[u][y] * coeff[u][v]
			}
			e[y][v] = clip16((sum + round1) >> shift1)
		}
	}

	out := make([][]int32, s)
	for y := 0; y < s; y++ {
		out[y] = make([]int32, s)
		for x := 0; x < s; x++ {
			var sum int32
			for v := 0; v < s; v++ {
				sum += m[v][x] * e[y][v]
			}
			out[y][x] = clip16((sum + round2) >> shift2)
		}
	}
	return out
}
