package main

import (
	"math"
	"testing"

	"github.com/ausocean/hevcstill/codec/h265"
)

func fillPlane(w, h int, f func(x, y int) uint8) *h265.Plane {
	p := h265.NewPlane(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p.Set(x, y, f(x, y))
		}
	}
	return p
}

func TestPSNRDBIdenticalPlanesIsInf(t *testing.T) {
	orig := fillPlane(8, 8, func(x, y int) uint8 { return uint8(x + y) })
	recon := fillPlane(8, 8, func(x, y int) uint8 { return uint8(x + y) })
	if got := psnrDB(orig, recon); !math.IsInf(got, 1) {
		t.Errorf("psnrDB(identical) = %v, want +Inf", got)
	}
}

func TestPSNRDBDiffersFinite(t *testing.T) {
	orig := fillPlane(8, 8, func(x, y int) uint8 { return 100 })
	recon := fillPlane(8, 8, func(x, y int) uint8 { return 90 })
	got := psnrDB(orig, recon)
	if math.IsInf(got, 0) || math.IsNaN(got) {
		t.Fatalf("psnrDB(differing) = %v, want a finite value", got)
	}
	if got <= 0 {
		t.Errorf("psnrDB(differing, diff=10) = %v, want > 0", got)
	}
}
