/*
DESCRIPTION
  encode.go is the package's external entry point (spec.md §6): given an
  original 8-bit monochrome image, it crops to a CTU-aligned region,
  drives the coding tree across every CTU, and returns the finished HEVC
  elementary stream plus the reconstructed image.

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

import "github.com/pkg/errors"

// ErrTooSmall is returned by Encode when the input, after cropping to a
// multiple of the CTU size, is smaller than one CTU in either dimension.
var ErrTooSmall = errors.New("h265: image smaller than one coding-tree unit after cropping")

const maxDimension = 8192

// Params configures one encode (spec.md §6's qpd6 and pmode_cand).
type Params struct {
	// QPD6 selects the quantization level 0..4 (effective Qp = 6*QPD6+4).
	QPD6 int
	// PModeCand bounds the intra-mode search to the PModeCand candidates
	// with lowest SAD, 1..35; 35 (or above) tries every mode. Blocks whose
	// sample variance is below 4 try at most 3 candidates, whatever
	// PModeCand is.
	PModeCand int
	// OnRow, if set, is called after each CTU row with the row index, the
	// slice bytes emitted so far, and that row's leaf-CU depth histogram
	// (SPEC_FULL.md §2.1's verbose per-row progress line). The core
	// encoder stays logger-free; this is the seam a CLI's logger hooks
	// into.
	OnRow func(row, bytesSoFar int, depthHist [3]int)
}

// CropSize returns n clamped to maxDimension and rounded down to a
// multiple of ctuSize.
func CropSize(n int) int {
	if n > maxDimension {
		n = maxDimension
	}
	return (n / ctuSize) * ctuSize
}

// Encode compresses orig into a single-slice HEVC elementary stream,
// returning the coded bytes and the reconstructed (lossy) image actually
// coded, cropped to a multiple of ctuSize in both dimensions.
func Encode(orig *Plane, p Params) ([]byte, *Plane, error) {
	cw := CropSize(orig.Width())
	ch := CropSize(orig.Height())
	if cw < ctuSize || ch < ctuSize {
		return nil, nil, ErrTooSmall
	}
	if p.QPD6 < 0 {
		p.QPD6 = 0
	}
	if p.QPD6 > 4 {
		p.QPD6 = 4
	}
	if p.PModeCand < 1 {
		p.PModeCand = 1
	}

	cropped := NewPlane(cw, ch)
	for y := 0; y < ch; y++ {
		for x := 0; x < cw; x++ {
			cropped.Set(x, y, orig.At(x, y))
		}
	}

	var out []byte
	out = WritePrefix(out)
	out = WritePictureHeader(out, cw, ch)
	out = WriteAPSPPSTail(out)
	out = WriteSliceQPDelta(out, p.QPD6)

	d := NewDriver(cropped, p.QPD6, p.PModeCand)
	d.OnRow = p.OnRow
	out = append(out, d.Run()...)
	out = append(out, d.Finish()...)

	return out, d.Reconstructed(), nil
}
