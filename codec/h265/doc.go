/*
DESCRIPTION
  doc.go provides the package overview for h265.

AUTHORS
  Kelsey Ng <kelsey@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package h265 implements a single-frame, intra-only HEVC/H.265 encoder for
// 8-bit monochrome still pictures.
//
// Encode takes a grid of luma samples and produces an HEVC Main-Still-
// Picture elementary stream: fixed VPS/SPS/PPS bytes, a picture header,
// and a CABAC-coded slice built from recursive coding-tree partitioning,
// RDO-driven intra prediction mode search, integer DCT, RDO quantization
// with sign-bit hiding, and a CABAC arithmetic coder.
//
// Chroma, inter prediction, in-loop filtering, and multi-slice pictures
// are out of scope; the package emits luma only and signals empty chroma
// coded-block flags, matching a monochrome-only conformant stream.
package h265
