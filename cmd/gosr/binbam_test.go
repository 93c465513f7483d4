//
// Copyright (C) 2013 Wolfgang Resch
//
// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the license was not distributed with this file, you
// can obtain one at https://opensource.org/licenses/MIT.
//

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/wresch/gosr/lib/bamio"
)

func TestBinTrackAdd(t *testing.T) {
	track := newBinTrack(map[string]int64{"chr1": 100}, 10, false)
	if len(track.bins["chr1"][0]) != 10 {
		t.Fatalf("chr1 has %d bins, want 10", len(track.bins["chr1"][0]))
	}

	// plus-strand reads shift right from the leftmost base
	if !track.add(bamio.Record{Chrom: "chr1", Pos: 23, Pos5: 23, Strand: 1, Mapped: true}, 5) {
		t.Error("in-range plus read rejected")
	}
	if track.bins["chr1"][0][2] != 1 {
		t.Errorf("plus read not in bin 2: %v", track.bins["chr1"][0])
	}

	// minus-strand reads shift left from the 5' (rightmost) base
	if !track.add(bamio.Record{Chrom: "chr1", Pos: 46, Pos5: 55, Strand: -1, Mapped: true}, 5) {
		t.Error("in-range minus read rejected")
	}
	if track.bins["chr1"][0][5] != 1 {
		t.Errorf("minus read not in bin 5: %v", track.bins["chr1"][0])
	}

	// shifted off either end of the chromosome
	if track.add(bamio.Record{Chrom: "chr1", Pos: 0, Pos5: 3, Strand: -1, Mapped: true}, 5) {
		t.Error("read shifted below zero accepted")
	}
	if track.add(bamio.Record{Chrom: "chr1", Pos: 98, Pos5: 98, Strand: 1, Mapped: true}, 5) {
		t.Error("read shifted past the last bin accepted")
	}
}

func TestBinTrackByStrand(t *testing.T) {
	track := newBinTrack(map[string]int64{"chr1": 100}, 10, true)
	track.add(bamio.Record{Chrom: "chr1", Pos: 11, Pos5: 11, Strand: 1, Mapped: true}, 0)
	track.add(bamio.Record{Chrom: "chr1", Pos: 2, Pos5: 11, Strand: -1, Mapped: true}, 0)
	if track.bins["chr1"][0][1] != 1 {
		t.Error("plus read not in the plus array")
	}
	if track.bins["chr1"][1][1] != 1 {
		t.Error("minus read not in the minus array")
	}
}

func TestWriteWiggle(t *testing.T) {
	track := newBinTrack(map[string]int64{"chr2": 50, "chr1": 50}, 10, false)
	track.bins["chr1"][0][3] = 2
	track.bins["chr2"][0][0] = 1
	var buf bytes.Buffer
	if err := track.writeWiggle(&buf, nil, "test", "", 0.5); err != nil {
		t.Fatalf("writeWiggle: %v", err)
	}
	want := "track type=wiggle_0 alwaysZero=on visibility=full maxHeightPixels=100:80:50 name='test'\n" +
		"variableStep chrom=chr1 span=10\n" +
		"31\t1.00000000\n" +
		"variableStep chrom=chr2 span=10\n" +
		"1\t0.50000000\n"
	if buf.String() != want {
		t.Errorf("wiggle output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteWiggleByStrand(t *testing.T) {
	track := newBinTrack(map[string]int64{"chr1": 30}, 10, true)
	track.bins["chr1"][0][0] = 1
	track.bins["chr1"][1][1] = 1
	var buf bytes.Buffer
	if err := track.writeWiggle(&buf, nil, "test", " db=hg19", 1); err != nil {
		t.Fatalf("writeWiggle: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "name='test[+]' db=hg19") || !strings.Contains(out, "name='test[-]' db=hg19") {
		t.Errorf("missing per-strand track lines:\n%s", out)
	}
	if !strings.Contains(out, "11\t-1.00000000") {
		t.Errorf("minus-strand density not negated:\n%s", out)
	}
}
