// cmd/gatesim/trace.go
// Copyright(c) 2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Increment when the Arrival representation changes.
const traceVersion = 1

// Trace holds every arrival scheduled during a run. It is written as
// msgpack, compressed with zstd.
type Trace struct {
	Version  int       `msgpack:"version"`
	Seed     int64     `msgpack:"seed"`
	Arrivals []Arrival `msgpack:"arrivals"`
}

func MakeTrace(seed int64, results []*Result) Trace {
	t := Trace{Version: traceVersion, Seed: seed}
	for _, r := range results {
		t.Arrivals = append(t.Arrivals, r.Arrivals...)
	}
	return t
}

func (t Trace) Write(w io.Writer) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return err
	}
	if err := msgpack.NewEncoder(zw).Encode(t); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func (t Trace) WriteFile(fn string) error {
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	if err := t.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func ReadTrace(r io.Reader) (Trace, error) {
	zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return Trace{}, err
	}
	defer zr.Close()

	var t Trace
	if err := msgpack.NewDecoder(zr).Decode(&t); err != nil {
		return Trace{}, err
	}
	if t.Version != traceVersion {
		return Trace{}, fmt.Errorf("trace version %d: expected %d", t.Version, traceVersion)
	}
	return t, nil
}
