/*
DESCRIPTION
  Hevcstill is a command-line front end that compresses an 8-bit
  monochrome PGM image into a single-frame HEVC Main-Still-Picture
  elementary stream.

AUTHORS
  Kelsey Ng <kelsey@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package hevcstill is a bare-bones program that compresses one PGM
// still image to an HEVC intra elementary stream.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/ausocean/hevcstill/codec/h265"
	"github.com/ausocean/hevcstill/pgm"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logging related constants.
const (
	logMaxSizeMB  = 50
	logMaxBackups = 5
	logMaxAgeDays = 28
)

func main() {
	inPath := flag.String("in", "", "path to the input PGM image")
	outPath := flag.String("out", "", "path to write the HEVC elementary stream")
	qpd6 := flag.Int("qpd6", 3, "quantization level, 0 (best quality) to 4 (smallest size)")
	pmodeCand := flag.Int("pmode_cand", 7, "number of intra-prediction modes to trial per CU, 1 to 35")
	pgmOut := flag.String("pgmout", "", "optional path to write the reconstructed PGM image")
	verbose := flag.Bool("v", false, "enable debug logging")
	logFile := flag.String("logfile", "", "optional path to a rotated log file, in addition to stderr")
	flag.Parse()

	log := newLogger(*verbose, *logFile)
	defer log.Sync()

	if *inPath == "" || *outPath == "" {
		log.Error("missing required flag", zap.String("usage", "-in <path.pgm> -out <path.hevc>"))
		os.Exit(1)
	}

	if err := run(log, *inPath, *outPath, *pgmOut, *qpd6, *pmodeCand); err != nil {
		log.Error("encode failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger, inPath, outPath, pgmOutPath string, qpd6, pmodeCand int) error {
	in, err := os.Open(inPath)
	if err != nil {
		return errors.Wrap(err, "could not open input PGM")
	}
	defer in.Close()

	orig, err := pgm.Decode(in)
	if err != nil {
		return errors.Wrap(err, "could not decode input PGM")
	}
	log.Debugw("decoded input image", "width", orig.Width(), "height", orig.Height())

	start := time.Now()
	data, recon, err := h265.Encode(orig, h265.Params{
		QPD6:      qpd6,
		PModeCand: pmodeCand,
		OnRow: func(row, bytesSoFar int, depthHist [3]int) {
			log.Debugw("ctu row encoded",
				"row", row, "bytesSoFar", bytesSoFar,
				"depth0", depthHist[0], "depth1", depthHist[1], "depth2", depthHist[2])
		},
	})
	if err != nil {
		return errors.Wrap(err, "encode failed")
	}
	log.Infow("encoded image",
		"bytes", len(data), "elapsed", time.Since(start), "psnrDB", psnrDB(orig, recon))

	out, err := os.Create(outPath)
	if err != nil {
		return errors.Wrap(err, "could not create output file")
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		return errors.Wrap(err, "could not write output file")
	}

	if pgmOutPath != "" {
		rf, err := os.Create(pgmOutPath)
		if err != nil {
			return errors.Wrap(err, "could not create reconstructed-PGM output")
		}
		defer rf.Close()
		if err := pgm.Encode(rf, recon); err != nil {
			return errors.Wrap(err, "could not write reconstructed-PGM output")
		}
	}

	fmt.Printf("wrote %d bytes to %s\n", len(data), outPath)
	return nil
}

// psnrDB computes the luma PSNR, in dB, between orig and recon (same
// dimensions as recon, which is cropped to a CTU multiple; only the
// overlapping region is compared). Used by the verbose summary line
// (SPEC_FULL.md §2.1); mse is computed with stat.Mean over the per-sample
// squared error rather than a hand-rolled running sum.
func psnrDB(orig, recon *h265.Plane) float64 {
	w, h := recon.Width(), recon.Height()
	sq := make([]float64, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := float64(orig.At(x, y)) - float64(recon.At(x, y))
			sq = append(sq, d*d)
		}
	}
	mse := stat.Mean(sq, nil)
	if mse == 0 {
		return math.Inf(1)
	}
	return 10 * math.Log10(255*255/mse)
}

// newLogger builds a zap.SugaredLogger writing to stderr, and additionally
// to a rotated log file when logPath is non-empty.
func newLogger(verbose bool, logPath string) *zap.SugaredLogger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zapcore.NewConsoleEncoder(zap.NewProductionEncoderConfig())

	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(os.Stderr), level)}
	if logPath != "" {
		rotate := &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    logMaxSizeMB,
			MaxBackups: logMaxBackups,
			MaxAge:     logMaxAgeDays,
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(rotate), level))
	}
	return zap.New(zapcore.NewTee(cores...)).Sugar()
}
