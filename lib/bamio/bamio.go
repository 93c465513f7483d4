//
// Copyright (C) 2013 Wolfgang Resch
//
// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the license was not distributed with this file, you
// can obtain one at https://opensource.org/licenses/MIT.
//

// Package bamio streams alignment records from SAM/BAM files.
package bamio

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
)

// Record is one primary alignment reduced to what the density tools
// need. Pos5 is the strand-aware 5'-most aligned base (leftmost base on
// the plus strand, rightmost base on the minus strand); Pos is the
// leftmost aligned base regardless of strand. Gapped marks alignments
// whose reference span differs from the read length.
type Record struct {
	Chrom  string
	Pos    int
	Pos5   int
	Strand int8
	Mapped bool
	Gapped bool
}

// Reader streams primary alignments from a SAM or BAM file.
type Reader struct {
	f      *os.File
	rr     sam.RecordReader
	header *sam.Header
}

// Open opens a SAM or BAM file for reading. "-" reads BAM from standard
// input; files ending in ".sam" are read as SAM, everything else as BAM.
func Open(path string) (*Reader, error) {
	var (
		f   *os.File
		in  io.Reader
		err error
	)
	if path == "-" {
		in = os.Stdin
	} else {
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("bamio: %w", err)
		}
		in = f
	}
	r := &Reader{f: f}
	if strings.HasSuffix(path, ".sam") {
		sr, err := sam.NewReader(in)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("bamio: open %s: %w", path, err)
		}
		r.rr, r.header = sr, sr.Header()
	} else {
		br, err := bam.NewReader(in, 1)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("bamio: open %s: %w", path, err)
		}
		r.rr, r.header = br, br.Header()
	}
	return r, nil
}

// Header returns the SAM header of the input.
func (r *Reader) Header() *sam.Header { return r.header }

// Read returns the next primary alignment as a Record; secondary and
// supplementary alignments are skipped. It returns io.EOF at end of
// input.
func (r *Reader) Read() (Record, error) {
	for {
		rec, err := r.rr.Read()
		if err != nil {
			return Record{}, err
		}
		if rec.Flags&sam.Secondary != 0 || rec.Flags&sam.Supplementary != 0 {
			continue
		}
		return FromSAM(rec), nil
	}
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	if r.f == nil {
		return nil
	}
	return r.f.Close()
}

// FromSAM reduces a primary alignment to a Record.
func FromSAM(rec *sam.Record) Record {
	out := Record{Mapped: rec.Flags&sam.Unmapped == 0}
	if !out.Mapped {
		return out
	}
	out.Chrom = rec.Ref.Name()
	out.Pos = rec.Start()
	out.Strand = rec.Strand()
	if out.Strand == -1 {
		out.Pos5 = rec.End() - 1
	} else {
		out.Pos5 = rec.Start()
	}
	out.Gapped = rec.End()-rec.Start() != rec.Seq.Length
	return out
}
