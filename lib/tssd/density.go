//
// Copyright (C) 2013 Wolfgang Resch
//
// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the license was not distributed with this file, you
// can obtain one at https://opensource.org/licenses/MIT.
//

package tssd

import (
	"github.com/sirupsen/logrus"

	"github.com/wresch/gosr/lib/bamio"
	"github.com/wresch/gosr/lib/gindex"
)

// Side selects one of the two density arrays.
type Side int8

const (
	SideLeft Side = iota
	SideRight
)

// bucketTable maps (window strand, read strand) to the density array a
// read belongs to: a read on the feature strand is the left end of a
// fragment, a read on the opposite strand its right end.
var bucketTable = map[[2]int8]Side{
	{1, 1}:   SideLeft,
	{1, -1}:  SideRight,
	{-1, 1}:  SideRight,
	{-1, -1}: SideLeft,
}

// Density accumulates per-position read counts relative to the TSS
// windows in a frozen index. Both arrays are indexed by the distance of
// the read's 5' base from the window anchor.
type Density struct {
	Left  []int
	Right []int

	NReads      int // mapped records
	NReadsOnTSS int // mapped records inside a window
	NDropped    int // records dropped for an out-of-range offset

	index *gindex.Index
}

// NewDensity sizes both arrays for upstream+downstream+1 core positions
// plus margin on each side.
func NewDensity(index *gindex.Index, upstream, downstream, margin int) *Density {
	n := upstream + downstream + 1 + 2*margin
	return &Density{
		Left:  make([]int, n),
		Right: make([]int, n),
		index: index,
	}
}

// Add consumes one alignment record. Unmapped records are ignored; a
// record whose offset falls outside the arrays is logged and dropped.
func (d *Density) Add(rec bamio.Record) {
	if !rec.Mapped {
		return
	}
	d.NReads++
	win, ok := d.index.Query(rec.Chrom, rec.Pos5)
	if !ok {
		return
	}
	d.NReadsOnTSS++
	offset := rec.Pos5 - win.Anchor
	if offset < 0 {
		offset = -offset
	}
	if offset >= len(d.Left) {
		d.NDropped++
		logrus.Errorf("pos_in_window out of bounds: %d (window %v, read at %s:%d); dropping read", offset, win.Interval, rec.Chrom, rec.Pos5)
		return
	}
	switch bucketTable[[2]int8{win.Strand, rec.Strand}] {
	case SideLeft:
		d.Left[offset]++
	case SideRight:
		d.Right[offset]++
	}
}
