/*
DESCRIPTION
  framing.go assembles the fixed NAL-unit scaffolding around the
  CABAC-coded slice payload (spec.md §6): the opaque VPS/SPS/PPS prefix,
  a picture-header continuation carrying the cropped width/height, the
  opaque APS/PPS tail, and the qpd6-indexed slice QP delta.

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

import "github.com/ausocean/hevcstill/codec/h265/bits"

// nalPrefix is the fixed 50-byte run of NAL-unit start codes and opaque
// VPS/SPS/PPS payloads that precedes every bitstream this encoder
// produces. Its internal structure is out of scope (spec.md §2's Non-goal
// on "fixed NAL-unit bytes"), but spec.md §9 requires it reproduced
// byte-for-byte to satisfy decoders — these are HEADER_CONTENT_1 from the
// reference source, not a placeholder.
var nalPrefix = [50]byte{
	0x00, 0x00, 0x00, 0x01, 0x40, 0x01, 0x0C, 0x01, 0xFF, 0xFF,
	0x03, 0x10, 0x00, 0x00, 0x03, 0x00, 0x00, 0x03, 0x00, 0x00,
	0x03, 0x00, 0x00, 0x03, 0x00, 0xB4, 0xF0, 0x24,
	0x00, 0x00, 0x01, 0x42, 0x01, 0x01, 0x03, 0x10, 0x00, 0x00,
	0x03, 0x00, 0x00, 0x03, 0x00, 0x00, 0x03, 0x00, 0x00, 0x03,
	0x00, 0xB4,
}

// apsppsTail is the fixed 17-byte opaque APS/PPS tail following the
// picture header (HEADER_CONTENT_2 from the reference source).
var apsppsTail = [17]byte{
	0x00, 0x00, 0x01, 0x44, 0x01, 0xC1, 0x90, 0x91, 0x81, 0xD9,
	0x20, 0x00, 0x00, 0x01, 0x26, 0x01, 0xAC,
}

// qpDeltaTable holds the slice-header QP-delta byte pair for each qpd6
// value 0..4 (HEADER_CONTENT_3 from the reference source).
var qpDeltaTable = [5][2]byte{
	{0x16, 0xDE},
	{0x10, 0xDE},
	{0x2B, 0x78},
	{0x4D, 0xE0},
	{0x97, 0x80},
}

// WritePictureHeader appends the 4-bit marker, Exp-Golomb width/height,
// and the two fixed payloads of spec.md §6 step 2 to dst, returning the
// extended, byte-aligned slice.
func WritePictureHeader(dst []byte, width, height int) []byte {
	w := bits.NewWriter()
	w.WriteBits(0x0a, 4)
	w.WriteUE(uint32(width))
	w.WriteUE(uint32(height))
	w.WriteBits(0x197ee4, 22)
	w.Align()
	dst = append(dst, w.Bytes()...)

	w2 := bits.NewWriter()
	w2.WriteBits(0x707b44, 24)
	w2.Align()
	dst = append(dst, w2.Bytes()...)
	return dst
}

// WritePrefix appends the fixed VPS/SPS/PPS prefix.
func WritePrefix(dst []byte) []byte {
	return append(dst, nalPrefix[:]...)
}

// WriteAPSPPSTail appends the fixed APS/PPS tail.
func WriteAPSPPSTail(dst []byte) []byte {
	return append(dst, apsppsTail[:]...)
}

// WriteSliceQPDelta appends the qpd6-selected slice QP-delta byte pair.
func WriteSliceQPDelta(dst []byte, qpd6 int) []byte {
	if qpd6 < 0 {
		qpd6 = 0
	}
	if qpd6 > 4 {
		qpd6 = 4
	}
	pair := qpDeltaTable[qpd6]
	return append(dst, pair[0], pair[1])
}
