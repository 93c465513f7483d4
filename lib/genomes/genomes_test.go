//
// Copyright (C) 2013 Wolfgang Resch
//
// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the license was not distributed with this file, you
// can obtain one at https://opensource.org/licenses/MIT.
//

package genomes

import "testing"

func testGenome(t *testing.T) *Genome {
	t.Helper()
	g, err := New([]string{"chrA", "chrB", "chrC"}, []int64{100, 250, 50})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestNewMismatched(t *testing.T) {
	if _, err := New([]string{"chrA"}, []int64{1, 2}); err == nil {
		t.Error("expected error for mismatched name/size lists")
	}
}

func TestSizeAndOrder(t *testing.T) {
	g := testGenome(t)
	cases := []struct {
		chrom string
		size  int64
		order int
	}{
		{"chrA", 100, 0},
		{"chrB", 250, 1},
		{"chrC", 50, 2},
	}
	for _, c := range cases {
		if got, ok := g.Size(c.chrom); !ok || got != c.size {
			t.Errorf("Size(%s) = %d, %v; want %d", c.chrom, got, ok, c.size)
		}
		if got, ok := g.Order(c.chrom); !ok || got != c.order {
			t.Errorf("Order(%s) = %d, %v; want %d", c.chrom, got, ok, c.order)
		}
	}
	if _, ok := g.Size("chrZ"); ok {
		t.Error("Size on unknown chromosome did not fail")
	}
	if _, ok := g.Order("chrZ"); ok {
		t.Error("Order on unknown chromosome did not fail")
	}
}

func TestSizesCopy(t *testing.T) {
	g := testGenome(t)
	sizes := g.Sizes()
	sizes["chrA"] = 1
	if got, _ := g.Size("chrA"); got != 100 {
		t.Error("Sizes did not return a copy")
	}
}

func TestBuiltin(t *testing.T) {
	for _, name := range []string{"hg19", "hg18", "mm9"} {
		g, ok := Builtin[name]
		if !ok {
			t.Fatalf("missing builtin genome %s", name)
		}
		if len(g.Chroms) == 0 {
			t.Errorf("%s has no chromosomes", name)
		}
		if size, ok := g.Size("chrM"); !ok || size == 0 {
			t.Errorf("%s: chrM size = %d, %v", name, size, ok)
		}
	}
	if size, _ := Builtin["hg19"].Size("chr1"); size != 249250621 {
		t.Errorf("hg19 chr1 size = %d", size)
	}
}
