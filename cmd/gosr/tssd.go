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

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wresch/gosr/lib/bamio"
	"github.com/wresch/gosr/lib/gtf"
	"github.com/wresch/gosr/lib/tssd"
)

// tssdMargin is the number of positions added on each side of the
// window so the fragment-size search can shift the peaks on top of
// each other. It is trimmed from the output.
const tssdMargin = 200

var (
	tssdUpstream   int
	tssdDownstream int
	tssdFragSize   int
	tssdOutput     string
)

var tssdCmd = &cobra.Command{
	Use:   "tssd BAMFILE GTFFILE",
	Short: "Calculate read density around TSSs",
	Long: `Given reads from a bam file, calculate read density around the TSSs
listed in a GTF file. The bam file does not have to be ordered or
indexed. Overlapping TSS windows are resolved first come, first served.

Also estimates fragment size by calculating the density separately for
plus and minus strand and finding the shift that leads to optimal
overlap between the two densities.

Note that this tool calculates read counts, not coverage.`,
	Args: cobra.ExactArgs(2),
	RunE: runTssd,
}

func init() {
	tssdCmd.Flags().IntVarP(&tssdUpstream, "upstream", "u", 2000, "nts upstream of TSS to include")
	tssdCmd.Flags().IntVarP(&tssdDownstream, "downstream", "d", 2000, "nts downstream of TSS to include")
	tssdCmd.Flags().IntVarP(&tssdFragSize, "frag-size", "s", -1, "pre-determined fragment size; -1 estimates it from the data")
	tssdCmd.Flags().StringVarP(&tssdOutput, "output", "o", "-", "output file; '-' for stdout, '.gz' compresses")
	rootCmd.AddCommand(tssdCmd)
}

// accumulate streams every primary alignment into the density and
// returns the total number of records seen, unmapped ones included.
func accumulate(br *bamio.Reader, density *tssd.Density) (int, error) {
	var nTotal int
	for {
		rec, err := br.Read()
		if err == io.EOF {
			return nTotal, nil
		}
		if err != nil {
			return nTotal, err
		}
		nTotal++
		density.Add(rec)
	}
}

func runTssd(cmd *cobra.Command, args []string) error {
	pathBAM, pathGTF := args[0], args[1]
	if pathBAM == "-" && pathGTF == "-" {
		return errors.New("only one of BAMFILE and GTFFILE can read from stdin")
	}
	if tssdFragSize < -1 {
		return fmt.Errorf("invalid fragment size %d; use -1 to estimate it from the data", tssdFragSize)
	}
	for _, p := range []string{pathBAM, pathGTF} {
		if err := checkInfile(p); err != nil {
			return err
		}
	}
	logrus.Infof("Window: <-- %d --TSS-- %d -->", tssdUpstream, tssdDownstream)

	// phase one: claim non-overlapping TSS windows
	logrus.Infof("Parsing GTF file [%s]", pathGTF)
	gr, err := gtf.Open(pathGTF)
	if err != nil {
		return err
	}
	defer gr.Close()
	builder := tssd.NewWindowBuilder(tssdUpstream, tssdDownstream, tssdMargin)
	for {
		feat, err := gr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := builder.Add(feat); err != nil {
			return err
		}
	}
	logrus.Infof("found %d TSSs", builder.NCandidates)
	logrus.Infof(" of which %d were used (i.e. non-overlapping)", builder.NUsed)
	index := builder.Freeze()

	// phase two: accumulate read density on the frozen index
	br, err := bamio.Open(pathBAM)
	if err != nil {
		return err
	}
	defer br.Close()
	density := tssd.NewDensity(index, tssdUpstream, tssdDownstream, tssdMargin)
	nTotal, err := accumulate(br, density)
	if err != nil {
		return err
	}
	logrus.Infof("Alignments seen:  %9d", nTotal)
	logrus.Infof("Reads processed:  %9d", density.NReads)
	logrus.Infof("Reads on tss:     %9d", density.NReadsOnTSS)

	fragSize := tssdFragSize
	if fragSize == -1 {
		fragSize, _, err = tssd.EstimateFragSize(density.Left, density.Right, tssdMargin)
		if err != nil {
			return err
		}
		logrus.Infof("Inferred fragment size estimate: %d", fragSize)
	}

	out, closeOut, err := openOutput(tssdOutput)
	if err != nil {
		return err
	}
	renderer := tssd.NewRenderer(tssdUpstream, tssdDownstream, tssdMargin, fragSize)
	if err := renderer.Render(out, density, builder.NUsed); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}
