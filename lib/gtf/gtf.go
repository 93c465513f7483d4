//
// Copyright (C) 2013 Wolfgang Resch
//
// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the license was not distributed with this file, you
// can obtain one at https://opensource.org/licenses/MIT.
//

// Package gtf streams typed annotation features from GTF/GFF2 files.
package gtf

import (
	"fmt"
	"io"
	"strings"

	"github.com/biogo/biogo/io/featio/gff"
	"github.com/brentp/xopen"
)

// Feature is one annotation record. Coordinates are 0-based half-open.
// Strand is +1 or -1, or 0 when the record carries no usable strand.
type Feature struct {
	Type   string
	Attr   map[string]string
	Chrom  string
	Start  int
	End    int
	Strand int8
}

// Reader streams features from a GTF file.
type Reader struct {
	fh *xopen.Reader
	g  *gff.Reader
}

// Open opens path for reading. "-" reads from standard input;
// gzip-compressed files are decompressed transparently.
func Open(path string) (*Reader, error) {
	fh, err := xopen.Ropen(path)
	if err != nil {
		return nil, fmt.Errorf("gtf: open %s: %w", path, err)
	}
	return &Reader{fh: fh, g: gff.NewReader(fh)}, nil
}

// NewReader streams features from r. Used for inputs that are not files.
func NewReader(r io.Reader) *Reader {
	return &Reader{g: gff.NewReader(r)}
}

// Read returns the next feature. It returns io.EOF at end of input.
func (r *Reader) Read() (Feature, error) {
	f, err := r.g.Read()
	if err != nil {
		return Feature{}, err
	}
	gf := f.(*gff.Feature)
	feat := Feature{
		Type:   gf.Feature,
		Chrom:  gf.SeqName,
		Start:  gf.FeatStart,
		End:    gf.FeatEnd,
		Strand: int8(gf.FeatStrand),
	}
	if len(gf.FeatAttributes) > 0 {
		feat.Attr = make(map[string]string, len(gf.FeatAttributes))
		for _, a := range gf.FeatAttributes {
			// GTF attribute values are usually double-quoted
			feat.Attr[a.Tag] = strings.Trim(a.Value, `"`)
		}
	}
	return feat, nil
}

// Close closes the underlying file, if the reader owns one.
func (r *Reader) Close() error {
	if r.fh == nil {
		return nil
	}
	return r.fh.Close()
}
