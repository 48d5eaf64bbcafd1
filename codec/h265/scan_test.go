package h265

import "testing"

func TestScanCoversEveryPosition(t *testing.T) {
	for _, size := range []int{8, 16, 32} {
		so := Scan(size, ScanDiagonal)
		if len(so.Pos) != size*size {
			t.Fatalf("Scan(%d, diagonal) has %d positions, want %d", size, len(so.Pos), size*size)
		}
		seen := make(map[pos]bool, size*size)
		for _, p := range so.Pos {
			if p.x < 0 || p.x >= size || p.y < 0 || p.y >= size {
				t.Fatalf("Scan(%d) position %v out of range", size, p)
			}
			if seen[p] {
				t.Fatalf("Scan(%d) position %v visited twice", size, p)
			}
			seen[p] = true
		}
	}
}

func TestScanCGGrouping(t *testing.T) {
	so := Scan(8, ScanDiagonal)
	numCG := (8 / 4) * (8 / 4)
	counts := make(map[int]int)
	for _, cg := range so.CG {
		counts[cg]++
	}
	if len(counts) != numCG {
		t.Fatalf("got %d distinct CGs, want %d", len(counts), numCG)
	}
	for cg, n := range counts {
		if n != 16 {
			t.Errorf("CG %d has %d positions, want 16", cg, n)
		}
	}
}

func TestScanIndexInverse(t *testing.T) {
	so := Scan(16, ScanHorizontal)
	if so == nil {
		t.Fatal("Scan built horizontal order lazily but returned nil")
	}
	so2 := Scan(16, ScanHorizontal)
	for i, p := range so2.Pos {
		if idx, ok := so2.Index[p]; !ok || idx != i {
			t.Fatalf("Index[%v] = %d,%v want %d,true", p, idx, ok, i)
		}
	}
}

func TestDiagonalScanOrder(t *testing.T) {
	got := diagonalScan(2)
	want := []pos{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	if len(got) != len(want) {
		t.Fatalf("diagonalScan(2) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("diagonalScan(2)[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
