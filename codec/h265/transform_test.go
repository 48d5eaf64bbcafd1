package h265

import "testing"

func zeroBlock(s int) [][]int32 {
	b := make([][]int32, s)
	for i := range b {
		b[i] = make([]int32, s)
	}
	return b
}

func TestForwardZeroIsZero(t *testing.T) {
	for _, s := range []int{8, 16, 32} {
		coeffs := Forward(s, zeroBlock(s))
		for y := 0; y < s; y++ {
			for x := 0; x < s; x++ {
				if coeffs[y][x] != 0 {
					t.Fatalf("Forward(%d, zero)[%d][%d] = %d, want 0", s, y, x, coeffs[y][x])
				}
			}
		}
	}
}

func TestForwardConstantBlockIsDCDominant(t *testing.T) {
	for _, s := range []int{8, 16, 32} {
		res := zeroBlock(s)
		for y := range res {
			for x := range res[y] {
				res[y][x] = 40
			}
		}
		coeffs := Forward(s, res)
		dc := coeffs[0][0]
		if dc == 0 {
			t.Fatalf("Forward(%d, constant) DC coefficient is 0", s)
		}
		var acSum int64
		for y := 0; y < s; y++ {
			for x := 0; x < s; x++ {
				if x == 0 && y == 0 {
					continue
				}
				v := int64(coeffs[y][x])
				if v < 0 {
					v = -v
				}
				acSum += v
			}
		}
		dcAbs := int64(dc)
		if dcAbs < 0 {
			dcAbs = -dcAbs
		}
		if acSum > dcAbs {
			t.Errorf("Forward(%d, constant): AC energy %d exceeds DC magnitude %d", s, acSum, dcAbs)
		}
	}
}

func TestInverseZeroIsZero(t *testing.T) {
	for _, s := range []int{8, 16, 32} {
		res := Inverse(s, zeroBlock(s))
		for y := 0; y < s; y++ {
			for x := 0; x < s; x++ {
				if res[y][x] != 0 {
					t.Fatalf("Inverse(%d, zero)[%d][%d] = %d, want 0", s, y, x, res[y][x])
				}
			}
		}
	}
}

func TestRoundTripApproximatelyRecoversConstant(t *testing.T) {
	for _, s := range []int{8, 16, 32} {
		res := zeroBlock(s)
		for y := range res {
			for x := range res[y] {
				res[y][x] = 30
			}
		}
		coeffs := Forward(s, res)
		back := Inverse(s, coeffs)
		for y := 0; y < s; y++ {
			for x := 0; x < s; x++ {
				diff := back[y][x] - 30
				if diff < 0 {
					diff = -diff
				}
				if diff > 5 {
					t.Fatalf("round trip at size %d: [%d][%d] = %d, want close to 30", s, y, x, back[y][x])
				}
			}
		}
	}
}
