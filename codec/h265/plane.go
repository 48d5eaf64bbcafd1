/*
DESCRIPTION
  plane.go provides the 2-D sample grid used for the original and
  reconstructed images.

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

// Plane is an owned 2-D grid of 8-bit luma samples with an explicit stride,
// replacing the teacher's raw-pointer-plus-size convention (spec DESIGN
// NOTES: prediction and transform should operate on views, not pointers).
type Plane struct {
	w, h   int
	stride int
	pix    []uint8
}

// NewPlane allocates a Plane of the given width and height, zero-filled.
func NewPlane(w, h int) *Plane {
	return &Plane{w: w, h: h, stride: w, pix: make([]uint8, w*h)}
}

// Width returns the plane width in samples.
func (p *Plane) Width() int { return p.w }

// Height returns the plane height in samples.
func (p *Plane) Height() int { return p.h }

// At returns the sample at (x,y). Callers must keep x,y within bounds;
// the prediction and border-acquisition code is responsible for clamping
// before calling At.
func (p *Plane) At(x, y int) uint8 {
	return p.pix[y*p.stride+x]
}

// Set writes the sample at (x,y), clipped to [0,255] (the type already
// enforces this, but Set documents the invariant from spec.md §3).
func (p *Plane) Set(x, y int, v uint8) {
	p.pix[y*p.stride+x] = v
}

// View is a rectangular sub-region of a Plane, read through At and written
// through Set, used to hand a
// CU-sized window to prediction/transform without copying the backing
// array. Stride is carried explicitly so callers never compute pixel
// offsets themselves.
type View struct {
	p      *Plane
	x0, y0 int
	w, h   int
}

// SubView returns a View over the w×h rectangle of p starting at (x0,y0).
func (p *Plane) SubView(x0, y0, w, h int) View {
	return View{p: p, x0: x0, y0: y0, w: w, h: h}
}

// At returns the sample at local coordinates (x,y) within the view.
func (v View) At(x, y int) uint8 {
	return v.p.At(v.x0+x, v.y0+y)
}

// Set writes the sample at local coordinates (x,y) within the view.
func (v View) Set(x, y int, val uint8) {
	v.p.Set(v.x0+x, v.y0+y, val)
}

// clip8 saturates an integer sample value to [0,255].
func clip8(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// clip16 saturates a coefficient to the [-32768,32767] range mandated by
// spec.md §3's invariant on transform coefficients.
func clip16(v int32) int32 {
	if v < -32768 {
		return -32768
	}
	if v > 32767 {
		return 32767
	}
	return v
}
