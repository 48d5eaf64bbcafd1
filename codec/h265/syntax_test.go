package h265

import "testing"

func TestDeriveMPMSameModeLowIndex(t *testing.T) {
	mpm := DeriveMPM(0, 0)
	want := [3]int{0, 1, 26}
	if mpm != want {
		t.Errorf("DeriveMPM(0,0) = %v, want %v", mpm, want)
	}
}

func TestDeriveMPMSameModeAngular(t *testing.T) {
	mpm := DeriveMPM(10, 10)
	if mpm[0] != 10 {
		t.Errorf("DeriveMPM(10,10)[0] = %d, want 10", mpm[0])
	}
	if mpm[1] == mpm[0] || mpm[2] == mpm[0] || mpm[1] == mpm[2] {
		t.Errorf("DeriveMPM(10,10) = %v, want three distinct modes", mpm)
	}
}

func TestDeriveMPMDifferingModes(t *testing.T) {
	mpm := DeriveMPM(5, 9)
	if mpm[0] != 5 || mpm[1] != 9 {
		t.Fatalf("DeriveMPM(5,9) = %v, want [5 9 *]", mpm)
	}
	if mpm[2] == 5 || mpm[2] == 9 {
		t.Errorf("DeriveMPM(5,9)[2] = %d, collides with a neighbour mode", mpm[2])
	}
}

func TestDeriveMPMDifferingModesFillsThirdFromCanonicalSet(t *testing.T) {
	mpm := DeriveMPM(0, 26)
	if mpm[2] != 1 {
		t.Errorf("DeriveMPM(0,26)[2] = %d, want 1 (DC, since planar and vertical taken)", mpm[2])
	}
}

func TestWriteLumaPModeMPMHitDoesNotPanic(t *testing.T) {
	e := NewEncoder()
	cs := NewContextSet(24)
	mpm := DeriveMPM(3, 3)
	before := e.Len()
	WriteLumaPMode(e, cs, mpm[0], mpm)
	if e.Len() <= before {
		t.Error("WriteLumaPMode (MPM hit) did not advance the bitstream")
	}
}

func TestWriteLumaPModeNonMPMDoesNotPanic(t *testing.T) {
	e := NewEncoder()
	cs := NewContextSet(24)
	mpm := DeriveMPM(3, 3)
	mode := 0
	for mode == mpm[0] || mode == mpm[1] || mode == mpm[2] {
		mode++
	}
	before := e.Len()
	WriteLumaPMode(e, cs, mode, mpm)
	if e.Len()-before < 6 {
		t.Errorf("WriteLumaPMode (non-MPM) advanced only %d bits, want >=6", e.Len()-before)
	}
}

func TestWriteSplitFlagContextSelection(t *testing.T) {
	e := NewEncoder()
	cs := NewContextSet(10)
	before := cs.SplitFlag
	WriteSplitFlag(e, cs, false, false, false)
	WriteSplitFlag(e, cs, true, false, true)
	WriteSplitFlag(e, cs, true, true, true)
	for i := range cs.SplitFlag {
		if cs.SplitFlag[i] == before[i] {
			t.Errorf("SplitFlag[%d] context was not updated", i)
		}
	}
}

func TestWriteCoefficientsAllZeroIsNoOp(t *testing.T) {
	e := NewEncoder()
	cs := NewContextSet(16)
	before := e.Len()
	WriteCoefficients(e, cs, 8, ScanDiagonal, zeroBlock(8))
	if e.Len() != before {
		t.Errorf("WriteCoefficients(all-zero) advanced bitstream by %d bits, want 0", e.Len()-before)
	}
}

func TestWriteCoefficientsSingleDCAdvancesBitstream(t *testing.T) {
	e := NewEncoder()
	cs := NewContextSet(16)
	levels := zeroBlock(8)
	levels[0][0] = 5
	before := e.Len()
	WriteCoefficients(e, cs, 8, ScanDiagonal, levels)
	if e.Len() == before {
		t.Error("WriteCoefficients(single DC) did not advance the bitstream")
	}
}

func TestWriteCoefficientsScatteredLevelsDoesNotPanic(t *testing.T) {
	e := NewEncoder()
	cs := NewContextSet(16)
	levels := zeroBlock(8)
	levels[0][0] = -3
	levels[1][0] = 1
	levels[0][1] = 2
	levels[3][2] = -1
	levels[7][7] = 1
	for _, typ := range []ScanType{ScanDiagonal, ScanHorizontal, ScanVertical} {
		e2 := NewEncoder()
		cs2 := NewContextSet(16)
		WriteCoefficients(e2, cs2, 8, typ, levels)
	}
	_ = e
	_ = cs
}
