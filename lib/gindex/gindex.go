//
// Copyright (C) 2013 Wolfgang Resch
//
// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the license was not distributed with this file, you
// can obtain one at https://opensource.org/licenses/MIT.
//

// Package gindex stores disjoint genomic windows, one interval tree per
// chromosome. Claims are first come, first served: an interval that
// overlaps an already accepted window is rejected and the index is left
// unchanged. The index is built once and queried read-only afterwards.
package gindex

import (
	"fmt"

	"github.com/biogo/store/interval"
)

// Interval is a 0-based half-open genomic interval.
type Interval struct {
	Chrom  string
	Start  int
	End    int
	Strand int8
}

func (iv Interval) String() string {
	strand := "+"
	if iv.Strand == -1 {
		strand = "-"
	}
	return fmt.Sprintf("%s:[%d,%d)/%s", iv.Chrom, iv.Start, iv.End, strand)
}

// Window is a claimed TSS window. Anchor is the genomic coordinate of
// the TSS itself; it lies inside the interval.
type Window struct {
	Interval
	Anchor int
}

type treeInterval struct {
	start, end int
	id         uintptr
	win        *Window
}

func (i treeInterval) Overlap(b interval.IntRange) bool {
	// Half-open interval indexing.
	return i.end > b.Start && i.start < b.End
}

func (i treeInterval) ID() uintptr { return i.id }

func (i treeInterval) Range() interval.IntRange {
	return interval.IntRange{Start: i.start, End: i.end}
}

// Index is a per-chromosome store of non-overlapping windows.
type Index struct {
	trees  map[string]*interval.IntTree
	nextID uintptr
	nUsed  int
	frozen bool
}

func New() *Index {
	return &Index{trees: make(map[string]*interval.IntTree)}
}

// Len returns the number of accepted windows.
func (x *Index) Len() int { return x.nUsed }

// TryClaim stores iv -> win unless iv overlaps a previously accepted
// interval on the same chromosome. It reports whether the claim
// succeeded. Calling TryClaim on a frozen index is a programming error
// and panics.
func (x *Index) TryClaim(iv Interval, win *Window) bool {
	if x.frozen {
		panic("gindex: TryClaim on frozen index")
	}
	t, ok := x.trees[iv.Chrom]
	if !ok {
		t = &interval.IntTree{}
		x.trees[iv.Chrom] = t
	}
	if len(t.Get(treeInterval{start: iv.Start, end: iv.End})) > 0 {
		return false
	}
	x.nextID++
	if err := t.Insert(treeInterval{start: iv.Start, end: iv.End, id: x.nextID, win: win}, false); err != nil {
		panic(fmt.Sprintf("gindex: insert %v: %v", iv, err))
	}
	x.nUsed++
	return true
}

// Freeze ends the claim phase; the index only answers queries from now on.
func (x *Index) Freeze() { x.frozen = true }

// Query returns the window covering pos on chrom, if any. Windows are
// disjoint, so at most one can match.
func (x *Index) Query(chrom string, pos int) (*Window, bool) {
	t, ok := x.trees[chrom]
	if !ok {
		return nil, false
	}
	hits := t.Get(treeInterval{start: pos, end: pos + 1})
	if len(hits) == 0 {
		return nil, false
	}
	return hits[0].(treeInterval).win, true
}
