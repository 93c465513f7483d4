//
// Copyright (C) 2013 Wolfgang Resch
//
// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the license was not distributed with this file, you
// can obtain one at https://opensource.org/licenses/MIT.
//

package tssd

import (
	"strings"
	"testing"

	"github.com/wresch/gosr/lib/gtf"
)

func exon(chrom string, start, end int, strand int8, exonNumber string) gtf.Feature {
	return gtf.Feature{
		Type:   "exon",
		Attr:   map[string]string{"exon_number": exonNumber},
		Chrom:  chrom,
		Start:  start,
		End:    end,
		Strand: strand,
	}
}

func TestBuilderSelectsFirstExons(t *testing.T) {
	b := NewWindowBuilder(5, 5, 0)
	feats := []gtf.Feature{
		{Type: "CDS", Chrom: "chr1", Start: 1000, End: 1100, Strand: 1},
		exon("chr1", 1000, 1100, 1, "1"),
		exon("chr1", 5000, 5100, 1, "2"),
	}
	for _, f := range feats {
		if err := b.Add(f); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if b.NFeatures != 3 {
		t.Errorf("NFeatures = %d, want 3", b.NFeatures)
	}
	if b.NCandidates != 1 {
		t.Errorf("NCandidates = %d, want 1", b.NCandidates)
	}
	if b.NUsed != 1 {
		t.Errorf("NUsed = %d, want 1", b.NUsed)
	}
}

func TestBuilderWindowBounds(t *testing.T) {
	b := NewWindowBuilder(10, 20, 5)
	if err := b.Add(exon("chr1", 1000, 1100, 1, "1")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	index := b.Freeze()
	// plus strand: anchor at feature start, upstream to the left
	win, ok := index.Query("chr1", 1000)
	if !ok {
		t.Fatal("anchor position not covered")
	}
	if win.Anchor != 1000 {
		t.Errorf("Anchor = %d, want 1000", win.Anchor)
	}
	if win.Start != 1000-15 || win.End != 1000+25+1 {
		t.Errorf("window = [%d,%d), want [985,1026)", win.Start, win.End)
	}
}

func TestBuilderMinusStrandSwapsRoles(t *testing.T) {
	b := NewWindowBuilder(10, 20, 5)
	if err := b.Add(exon("chr1", 1000, 1100, -1, "1")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	index := b.Freeze()
	// minus strand: anchor at the last base, downstream to the left
	win, ok := index.Query("chr1", 1099)
	if !ok {
		t.Fatal("anchor position not covered")
	}
	if win.Anchor != 1099 {
		t.Errorf("Anchor = %d, want 1099", win.Anchor)
	}
	if win.Start != 1099-25 || win.End != 1099+15+1 {
		t.Errorf("window = [%d,%d), want [1074,1115)", win.Start, win.End)
	}
}

func TestBuilderOverlapFirstClaimWins(t *testing.T) {
	b := NewWindowBuilder(5, 5, 0)
	if err := b.Add(exon("chr1", 1000, 1100, 1, "1")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := b.Add(exon("chr1", 1002, 1100, 1, "1")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if b.NCandidates != 2 {
		t.Errorf("NCandidates = %d, want 2", b.NCandidates)
	}
	if b.NUsed != 1 {
		t.Errorf("NUsed = %d, want 1 (second overlapping TSS dropped)", b.NUsed)
	}
	// the retained window is the first one
	win, ok := b.Freeze().Query("chr1", 1000)
	if !ok || win.Anchor != 1000 {
		t.Error("first claimed window not retained")
	}
}

func TestBuilderBadStrandFatal(t *testing.T) {
	b := NewWindowBuilder(5, 5, 0)
	if err := b.Add(exon("chr1", 0, 10, 1, "1")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	err := b.Add(exon("chr1", 5000, 5010, 0, "1"))
	if err == nil {
		t.Fatal("unstranded first exon did not error")
	}
	if !strings.Contains(err.Error(), "feature 2") {
		t.Errorf("error %q does not report the feature index", err)
	}
}

func TestBuilderMissingExonNumberFatal(t *testing.T) {
	b := NewWindowBuilder(5, 5, 0)
	err := b.Add(gtf.Feature{Type: "exon", Chrom: "chr1", Start: 0, End: 10, Strand: 1})
	if err == nil {
		t.Fatal("exon without exon_number did not error")
	}
}

func TestWindowCountIndependentOfReads(t *testing.T) {
	b := NewWindowBuilder(5, 5, 0)
	if err := b.Add(exon("chr1", 1000, 1100, 1, "1")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	used := b.NUsed
	d := NewDensity(b.Freeze(), 5, 5, 0)
	// no reads accumulated at all
	if d.NReads != 0 || b.NUsed != used {
		t.Errorf("window usage changed by accumulation phase: NUsed = %d, want %d", b.NUsed, used)
	}
}
