//
// Copyright (C) 2013 Wolfgang Resch
//
// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the license was not distributed with this file, you
// can obtain one at https://opensource.org/licenses/MIT.
//

// Package tssd computes read-density profiles around transcription
// start sites and infers the fragment size from the shift that best
// superimposes the plus- and minus-strand densities.
package tssd

import (
	"fmt"

	"github.com/wresch/gosr/lib/gindex"
	"github.com/wresch/gosr/lib/gtf"
)

// WindowBuilder collects non-overlapping TSS windows from an annotation
// stream. A transcript's first exon (type "exon", exon_number "1")
// marks its TSS. The window covers upstream/downstream core positions
// around the anchor plus a margin on both sides that only exists so the
// fragment-size search can shift the profiles on top of each other.
// Overlapping windows are resolved first come, first served: a TSS
// whose window overlaps an accepted one is dropped.
type WindowBuilder struct {
	Index      *gindex.Index
	Upstream   int
	Downstream int
	Margin     int

	NFeatures   int // features seen
	NCandidates int // first exons found
	NUsed       int // windows claimed
}

func NewWindowBuilder(upstream, downstream, margin int) *WindowBuilder {
	return &WindowBuilder{
		Index:      gindex.New(),
		Upstream:   upstream,
		Downstream: downstream,
		Margin:     margin,
	}
}

// Add consumes one annotation feature. The anchor is the 5' boundary of
// the feature under its strand; a strand other than +/- is an error.
func (b *WindowBuilder) Add(f gtf.Feature) error {
	b.NFeatures++
	if f.Type != "exon" {
		return nil
	}
	exonNumber, ok := f.Attr["exon_number"]
	if !ok {
		return fmt.Errorf("tssd: exon feature %d (%s:[%d,%d)) has no exon_number attribute", b.NFeatures, f.Chrom, f.Start, f.End)
	}
	if exonNumber != "1" {
		return nil
	}
	b.NCandidates++
	var anchor, start, end int
	switch f.Strand {
	case 1:
		anchor = f.Start
		start = anchor - (b.Upstream + b.Margin)
		end = anchor + (b.Downstream + b.Margin) + 1
	case -1:
		anchor = f.End - 1
		start = anchor - (b.Downstream + b.Margin)
		end = anchor + (b.Upstream + b.Margin) + 1
	default:
		return fmt.Errorf("tssd: bad strand in feature %d (%s:[%d,%d))", b.NFeatures, f.Chrom, f.Start, f.End)
	}
	iv := gindex.Interval{Chrom: f.Chrom, Start: start, End: end, Strand: f.Strand}
	if b.Index.TryClaim(iv, &gindex.Window{Interval: iv, Anchor: anchor}) {
		b.NUsed++
	}
	return nil
}

// Freeze ends the build phase and hands over the read-only index.
func (b *WindowBuilder) Freeze() *gindex.Index {
	b.Index.Freeze()
	return b.Index
}
