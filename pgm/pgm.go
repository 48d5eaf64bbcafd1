/*
DESCRIPTION
  pgm.go reads and writes binary (P5) portable graymap images, the PGM
  I/O boundary described as a sketch in spec.md §6. Header tokenizing
  reuses this codec family's generic byte scanner
  (codec/codecutil/bytescanner.go) rather than hand-rolling a second
  tokenizer.

AUTHORS
  Kelsey Ng <kelsey@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package pgm implements reading and writing of binary (P5) grayscale
// portable graymap images, the still-image container this encoder's
// command-line front end uses for input and optional reconstructed
// output.
package pgm

import (
	"bufio"
	"io"
	"strconv"

	"github.com/ausocean/hevcstill/codec/codecutil"
	"github.com/ausocean/hevcstill/codec/h265"
	"github.com/pkg/errors"
)

// MaxSampleValue is the largest PGM maxval this package accepts; samples
// must fit an 8-bit plane (spec.md §7's "bit-depth unsupported" error).
const MaxSampleValue = 255

// ErrUnsupportedDepth is returned by Decode when the PGM header's maxval
// exceeds MaxSampleValue.
var ErrUnsupportedDepth = errors.New("pgm: sample depth exceeds 8 bits")

// Decode reads a binary PGM (P5) image from r into a new Plane.
func Decode(r io.Reader) (*h265.Plane, error) {
	sc := codecutil.NewByteScanner(r, make([]byte, 4096))

	magic, err := readToken(sc)
	if err != nil {
		return nil, errors.Wrap(err, "pgm: could not read magic number")
	}
	if magic != "P5" {
		return nil, errors.Errorf("pgm: unsupported magic number %q", magic)
	}

	width, err := readIntToken(sc)
	if err != nil {
		return nil, errors.Wrap(err, "pgm: could not read width")
	}
	height, err := readIntToken(sc)
	if err != nil {
		return nil, errors.Wrap(err, "pgm: could not read height")
	}
	maxVal, err := readIntToken(sc)
	if err != nil {
		return nil, errors.Wrap(err, "pgm: could not read maxval")
	}
	if maxVal > MaxSampleValue {
		return nil, ErrUnsupportedDepth
	}

	p := h265.NewPlane(width, height)
	buf := make([]byte, width)
	for y := 0; y < height; y++ {
		n := 0
		for n < width {
			b, err := sc.ReadByte()
			if err != nil {
				return nil, errors.Wrap(err, "pgm: unexpected end of pixel data")
			}
			buf[n] = b
			n++
		}
		for x := 0; x < width; x++ {
			p.Set(x, y, buf[x])
		}
	}
	return p, nil
}

// readToken reads one whitespace-delimited token, skipping any number of
// '#' comment lines first (PGM's plain-text header allows a comment,
// running to the end of its line, wherever whitespace is allowed).
func readToken(sc *codecutil.ByteScanner) (string, error) {
	for {
		var b byte
		var err error
		for {
			b, err = sc.ReadByte()
			if err != nil {
				return "", err
			}
			if !isSpace(b) {
				break
			}
		}
		if b == '#' {
			for {
				b, err = sc.ReadByte()
				if err != nil {
					return "", err
				}
				if b == '\n' {
					break
				}
			}
			continue
		}
		tok := []byte{b}
		for {
			b, err = sc.ReadByte()
			if err != nil {
				return "", err
			}
			if isSpace(b) {
				break
			}
			tok = append(tok, b)
		}
		return string(tok), nil
	}
}

func readIntToken(sc *codecutil.ByteScanner) (int, error) {
	tok, err := readToken(sc)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(tok)
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// Encode writes p to w as a binary PGM (P5) image.
func Encode(w io.Writer, p *h265.Plane) error {
	bw := bufio.NewWriter(w)
	if _, err := io.WriteString(bw, "P5\n"); err != nil {
		return errors.Wrap(err, "pgm: could not write magic number")
	}
	if _, err := io.WriteString(bw, strconv.Itoa(p.Width())+" "+strconv.Itoa(p.Height())+"\n"); err != nil {
		return errors.Wrap(err, "pgm: could not write dimensions")
	}
	if _, err := io.WriteString(bw, strconv.Itoa(MaxSampleValue)+"\n"); err != nil {
		return errors.Wrap(err, "pgm: could not write maxval")
	}
	row := make([]byte, p.Width())
	for y := 0; y < p.Height(); y++ {
		for x := 0; x < p.Width(); x++ {
			row[x] = p.At(x, y)
		}
		if _, err := bw.Write(row); err != nil {
			return errors.Wrap(err, "pgm: could not write pixel row")
		}
	}
	return errors.Wrap(bw.Flush(), "pgm: could not flush output")
}
