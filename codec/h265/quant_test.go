package h265

import "testing"

func TestRateOfMonotonic(t *testing.T) {
	prev := int64(-1)
	for l := 0; l < 40; l++ {
		r := rateOf(l)
		if r < prev {
			t.Fatalf("rateOf(%d) = %d, decreased from rateOf(%d) = %d", l, r, l-1, prev)
		}
		prev = r
	}
}

func TestRDOLevelZeroForZeroInput(t *testing.T) {
	for _, qpd6 := range []int{0, 1, 2, 3, 4} {
		for _, s := range []int{8, 16, 32} {
			if got := rdoLevel(0, qpd6, log2(s)); got != 0 {
				t.Errorf("rdoLevel(0, qpd6=%d, size=%d) = %d, want 0", qpd6, s, got)
			}
		}
	}
}

func TestRDOLevelPreservesSign(t *testing.T) {
	l := rdoLevel(-5000, 2, 3)
	if l > 0 {
		t.Errorf("rdoLevel(-5000) = %d, want <= 0", l)
	}
	l2 := rdoLevel(5000, 2, 3)
	if l2 < 0 {
		t.Errorf("rdoLevel(5000) = %d, want >= 0", l2)
	}
}

func TestQuantizeAllZeroStaysZero(t *testing.T) {
	levels := Quantize(zeroBlock(8), 2, 8, ScanDiagonal)
	for y := range levels {
		for x := range levels[y] {
			if levels[y][x] != 0 {
				t.Fatalf("Quantize(zero) produced non-zero level at [%d][%d]", y, x)
			}
		}
	}
}

func TestDequantizeClipsToRange(t *testing.T) {
	levels := [][]int32{{32767}}
	out := Dequantize(levels, 4, 8)
	if out[0][0] > 32767 || out[0][0] < -32768 {
		t.Fatalf("Dequantize produced out-of-range value %d", out[0][0])
	}
}

func TestQuantizeDequantizeRoundTripSmallBlock(t *testing.T) {
	coeffs := zeroBlock(8)
	coeffs[0][0] = 400
	coeffs[1][0] = 120
	levels := Quantize(coeffs, 1, 8, ScanDiagonal)
	deq := Dequantize(levels, 1, 8)
	if deq[0][0] == 0 {
		t.Errorf("large DC coefficient quantized away to zero")
	}
}
