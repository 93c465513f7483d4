//
// Copyright (C) 2013 Wolfgang Resch
//
// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the license was not distributed with this file, you
// can obtain one at https://opensource.org/licenses/MIT.
//

package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/fatih/set.v0"

	"github.com/wresch/gosr/lib/bamio"
	"github.com/wresch/gosr/lib/dsp"
	"github.com/wresch/gosr/lib/genomes"
)

var (
	binbamFragSize   int
	binbamRedundancy int
	binbamSG         int
	binbamByStrand   bool
	binbamTrackLine  string
	binbamGenome     string
	binbamOutput     string
)

var binbamCmd = &cobra.Command{
	Use:   "binbam BAMFILE BINSIZE NAME",
	Short: "Create a density track of reads in bins from a bam file",
	Long: `Calculate density of reads in bins across the genome from a bam file.
Output units are RPKM in 1-based wiggle format on stdout.

The input has to be coordinate sorted. chrM is ignored, as are gapped
and local alignments (where the aligned length is not the read length).`,
	Args: cobra.ExactArgs(3),
	RunE: runBinbam,
}

func init() {
	binbamCmd.Flags().IntVarP(&binbamFragSize, "frag-size", "f", 0, "size of fragments; reads are shifted by half fragsize")
	binbamCmd.Flags().IntVarP(&binbamRedundancy, "n-redundancy", "n", 3, "number of identical alignments per position allowed")
	binbamCmd.Flags().IntVar(&binbamSG, "sg", 0, "if greater than 0, smooth with a Savitzky-Golay filter of order 2 and this window size (in bins)")
	binbamCmd.Flags().BoolVarP(&binbamByStrand, "by-strand", "s", false, "output separate densities by strand")
	binbamCmd.Flags().StringVarP(&binbamTrackLine, "track-line", "t", "", "extra options appended to the track line")
	binbamCmd.Flags().StringVarP(&binbamGenome, "genome", "g", "", "use chromosome sizes of a builtin genome (hg19, hg18, mm9) instead of the bam header")
	binbamCmd.Flags().StringVarP(&binbamOutput, "output", "o", "-", "output file; '-' for stdout, '.gz' compresses")
	rootCmd.AddCommand(binbamCmd)
}

// binTrack holds one count array per chromosome, or two when the
// strands are kept apart (plus first).
type binTrack struct {
	bins    map[string][][]float64
	binsize int
	nStrand int
}

func newBinTrack(chromSizes map[string]int64, binsize int, byStrand bool) *binTrack {
	t := &binTrack{bins: make(map[string][][]float64), binsize: binsize, nStrand: 1}
	if byStrand {
		t.nStrand = 2
	}
	for chrom, size := range chromSizes {
		// reads in the last partial bin are discarded
		nBins := int(size) / binsize
		arrays := make([][]float64, t.nStrand)
		for i := range arrays {
			arrays[i] = make([]float64, nBins)
		}
		t.bins[chrom] = arrays
	}
	return t
}

// add counts a read in its bin; the bin is the 5' position shifted
// towards the fragment middle. It reports whether the read landed
// inside the binned genome.
func (t *binTrack) add(rec bamio.Record, shift int) bool {
	var pos, istrand int
	if rec.Strand == -1 {
		pos = rec.Pos5 - shift
		if t.nStrand == 2 {
			istrand = 1
		}
	} else {
		pos = rec.Pos + shift
	}
	arrays := t.bins[rec.Chrom]
	if pos < 0 {
		return false
	}
	bin := pos / t.binsize
	if bin >= len(arrays[istrand]) {
		return false
	}
	arrays[istrand][bin]++
	return true
}

func runBinbam(cmd *cobra.Command, args []string) error {
	pathBAM := args[0]
	binsize, err := strconv.Atoi(args[1])
	if err != nil || binsize <= 0 {
		return fmt.Errorf("BINSIZE must be a positive integer, got %q", args[1])
	}
	name := args[2]
	if err := checkInfile(pathBAM); err != nil {
		return err
	}

	br, err := bamio.Open(pathBAM)
	if err != nil {
		return err
	}
	defer br.Close()

	// chromosome sizes from a builtin genome or the bam header
	var genome *genomes.Genome
	chromSizes := make(map[string]int64)
	if binbamGenome != "" {
		var ok bool
		genome, ok = genomes.Builtin[binbamGenome]
		if !ok {
			return fmt.Errorf("unknown genome %q", binbamGenome)
		}
		chromSizes = genome.Sizes()
	} else {
		for _, ref := range br.Header().Refs() {
			chromSizes[ref.Name()] = int64(ref.Len())
		}
		if len(chromSizes) == 0 {
			return errors.New("could not extract length information for references from bam file")
		}
	}

	logrus.Info("Start binning process")
	logrus.Infof(" allowing up to %d redundant reads", binbamRedundancy)
	if binbamByStrand {
		logrus.Info("Reporting separate densities for each strand")
	}
	logrus.Infof("Track name: %s", name)
	if binbamSG > 0 {
		logrus.Infof("Smoothing output with savitzky-golay filter, order 2, width %d bins", binbamSG)
	}

	track := newBinTrack(chromSizes, binsize, binbamByStrand)
	shift := binbamFragSize / 2
	unknownChroms := set.New(set.NonThreadSafe)
	var nAln, nRmred, nIgno int

	// reads sharing chromosome and leftmost position are redundant;
	// only the first n per strand count
	processGroup := func(group []bamio.Record) {
		var nPlus, nMinus int
		for _, rec := range group {
			if rec.Strand == -1 {
				nMinus++
				if nMinus > binbamRedundancy {
					continue
				}
			} else {
				nPlus++
				if nPlus > binbamRedundancy {
					continue
				}
			}
			if rec.Chrom == "chrM" {
				nIgno++
				continue
			}
			if _, ok := track.bins[rec.Chrom]; !ok {
				if !unknownChroms.Has(rec.Chrom) {
					unknownChroms.Add(rec.Chrom)
					logrus.Warnf("reads on %s, which is not part of the reference; skipping them", rec.Chrom)
				}
				nIgno++
				continue
			}
			nRmred++
			if rec.Gapped {
				logrus.Debugf("not an end-to-end alignment, or alignment gapped: %s:%d", rec.Chrom, rec.Pos)
				nIgno++
				continue
			}
			if !track.add(rec, shift) {
				logrus.Debugf("BIN OUT OF RANGE: %s: pos[%d]", rec.Chrom, rec.Pos)
			}
		}
	}

	var group []bamio.Record
	groupChrom, groupPos := "", -1
	for {
		rec, err := br.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if !rec.Mapped {
			continue
		}
		nAln++
		if rec.Chrom != groupChrom || rec.Pos != groupPos {
			processGroup(group)
			group = group[:0]
			groupChrom, groupPos = rec.Chrom, rec.Pos
		}
		group = append(group, rec)
	}
	processGroup(group)

	if nRmred == 0 {
		return errors.New("no usable reads, cannot normalize")
	}
	rpkmFactor := (1e6 / float64(nRmred)) * (1000.0 / float64(binsize))
	logrus.Infof("Aligned reads:              %8d", nAln)
	logrus.Infof(" after removing redundancy: %8d", nRmred)
	logrus.Infof(" normalization factor:      %f", rpkmFactor)
	logrus.Infof("Ignored reads:              %8d", nIgno)

	if binbamSG > 0 {
		if err := track.smooth(binbamSG); err != nil {
			return err
		}
	}

	out, closeOut, err := openOutput(binbamOutput)
	if err != nil {
		return err
	}
	if err := track.writeWiggle(out, genome, name, binbamTrackLine, rpkmFactor); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}

func (t *binTrack) smooth(window int) error {
	for chrom, arrays := range t.bins {
		for i, b := range arrays {
			if len(b) < window {
				logrus.Warnf("%s has fewer bins (%d) than the filter window, not smoothed", chrom, len(b))
				continue
			}
			sm, err := dsp.Filter(b, window, 2)
			if err != nil {
				return err
			}
			arrays[i] = sm
		}
	}
	return nil
}

// writeWiggle emits all non-empty bins as 1-based variableStep wiggle,
// one track per strand. The minus-strand track is negated.
func (t *binTrack) writeWiggle(w io.Writer, genome *genomes.Genome, name, extraTrackLine string, factor float64) error {
	chroms := make([]string, 0, len(t.bins))
	for chrom := range t.bins {
		chroms = append(chroms, chrom)
	}
	if genome != nil {
		sort.Slice(chroms, func(i, j int) bool {
			oi, _ := genome.Order(chroms[i])
			oj, _ := genome.Order(chroms[j])
			return oi < oj
		})
	} else {
		sort.Strings(chroms)
	}
	for istrand := 0; istrand < t.nStrand; istrand++ {
		trackName, nf := name, factor
		if t.nStrand == 2 {
			strandLabel := "+"
			if istrand == 1 {
				strandLabel = "-"
				nf = -factor
			}
			trackName = fmt.Sprintf("%s[%s]", name, strandLabel)
		}
		if _, err := fmt.Fprintf(w, "track type=wiggle_0 alwaysZero=on visibility=full maxHeightPixels=100:80:50 name='%s'%s\n", trackName, extraTrackLine); err != nil {
			return err
		}
		for _, chrom := range chroms {
			if _, err := fmt.Fprintf(w, "variableStep chrom=%s span=%d\n", chrom, t.binsize); err != nil {
				return err
			}
			for bin, count := range t.bins[chrom][istrand] {
				if count <= 0 {
					continue
				}
				if _, err := fmt.Fprintf(w, "%d\t%.8f\n", bin*t.binsize+1, count*nf); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
