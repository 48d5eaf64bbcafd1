/*
DESCRIPTION
  contextmap.go implements the per-CTU-row neighbour maps the coding-tree
  driver reads for split_flag context and MPM derivation (spec.md §4.7):
  a 5-row-tall (one CTU height plus one carried-over row), width/8-wide
  grid of per-8x8-unit values, scrolled after each CTU row.

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

// ctuRows8x8 is the number of 8x8 units spanning one 32x32 CTU.
const ctuRows8x8 = 4

// unsetValue marks a context-map cell with no recorded neighbour yet
// (image or slice boundary).
const unsetValue = -1

// ContextMap is a 5-row, width/8-wide grid of per-8x8-unit values (CU
// depth or intra mode) retained across one CTU row. Row 0 always holds
// the bottom edge of the previously completed CTU row; rows 1..4 are
// filled in as the current CTU row is encoded (spec.md §4.7's "+1"
// offset convention).
type ContextMap struct {
	cols int
	rows [ctuRows8x8 + 1][]int8
}

// NewContextMap allocates a map sized for an image of the given pixel
// width (spec.md §5: "width/8 entries per row, 5 rows retained").
func NewContextMap(width int) *ContextMap {
	cols := width / 8
	m := &ContextMap{cols: cols}
	for i := range m.rows {
		m.rows[i] = make([]int8, cols)
		for j := range m.rows[i] {
			m.rows[i][j] = unsetValue
		}
	}
	return m
}

// Set records value for the 8x8 unit at (rowInCTU, col), rowInCTU in
// [0,3].
func (m *ContextMap) Set(rowInCTU, col int, value int8) {
	if col < 0 || col >= m.cols {
		return
	}
	m.rows[rowInCTU+1][col] = value
}

// Above returns the value recorded directly above the 8x8 unit at
// (rowInCTU, col): for rowInCTU==0 this reads the carried-over row from
// the previous CTU row; otherwise the row above within the current CTU.
// ok is false at an image/slice boundary (no recorded value).
func (m *ContextMap) Above(rowInCTU, col int) (int8, bool) {
	if col < 0 || col >= m.cols {
		return 0, false
	}
	v := m.rows[rowInCTU][col]
	if v == unsetValue {
		return 0, false
	}
	return v, true
}

// Left returns the value recorded to the left of the 8x8 unit at
// (rowInCTU, col).
func (m *ContextMap) Left(rowInCTU, col int) (int8, bool) {
	if col-1 < 0 || col-1 >= m.cols {
		return 0, false
	}
	v := m.rows[rowInCTU+1][col-1]
	if v == unsetValue {
		return 0, false
	}
	return v, true
}

// ScrollRow copies the map's last row down into row 0 and clears the
// rest, preparing the map for the next CTU row (spec.md §4.7: "copy the
// current map's last row into its row 0").
func (m *ContextMap) ScrollRow() {
	copy(m.rows[0], m.rows[ctuRows8x8])
	for i := 1; i <= ctuRows8x8; i++ {
		for j := range m.rows[i] {
			m.rows[i][j] = unsetValue
		}
	}
}

// Fill sets value for every 8x8 unit covered by a CU of side s pixels
// whose top-left 8x8 unit is at (rowInCTU, col).
func (m *ContextMap) Fill(rowInCTU, col, s int, value int8) {
	units := s / 8
	if units < 1 {
		units = 1
	}
	for dy := 0; dy < units; dy++ {
		for dx := 0; dx < units; dx++ {
			m.Set(rowInCTU+dy, col+dx, value)
		}
	}
}
