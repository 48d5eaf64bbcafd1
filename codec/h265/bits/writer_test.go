package bits

import "testing"

func TestWriteUE(t *testing.T) {
	cases := []struct {
		v    uint32
		bits string
	}{
		{0, "1"},
		{1, "010"},
		{2, "011"},
		{3, "00100"},
		{4, "00101"},
		{6, "00111"},
	}
	for _, c := range cases {
		w := NewWriter()
		w.WriteUE(c.v)
		w.Align()
		got := bitString(w.Bytes(), len(c.bits))
		if got != c.bits {
			t.Errorf("WriteUE(%d) = %q, want %q", c.v, got, c.bits)
		}
	}
}

func TestWriteBits(t *testing.T) {
	w := NewWriter()
	w.WriteBits(0b101, 3)
	w.Align()
	b := w.Bytes()
	if len(b) != 1 || b[0] != 0b10100000 {
		t.Fatalf("WriteBits/Align = %08b, want 10100000", b)
	}
}

func bitString(buf []byte, n int) string {
	out := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		byteIdx := i / 8
		bitIdx := 7 - uint(i%8)
		if byteIdx >= len(buf) {
			out = append(out, '0')
			continue
		}
		if buf[byteIdx]&(1<<bitIdx) != 0 {
			out = append(out, '1')
		} else {
			out = append(out, '0')
		}
	}
	return string(out)
}
