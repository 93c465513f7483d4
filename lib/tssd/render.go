//
// Copyright (C) 2013 Wolfgang Resch
//
// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the license was not distributed with this file, you
// can obtain one at https://opensource.org/licenses/MIT.
//

package tssd

import (
	"bufio"
	"fmt"
	"io"

	"github.com/wresch/gosr/lib/dsp"
)

// Renderer normalizes the two raw count arrays to an RPKM-like scale,
// smooths them, synthesizes the fragment-size-corrected combined
// profile, and writes all three as "position|raw|smoothed|label" lines,
// margin trimmed.
type Renderer struct {
	Upstream   int
	Downstream int
	Margin     int
	FragSize   int

	// Savitzky-Golay parameters
	SmoothWindow int
	SmoothOrder  int
}

func NewRenderer(upstream, downstream, margin, fragSize int) *Renderer {
	return &Renderer{
		Upstream:     upstream,
		Downstream:   downstream,
		Margin:       margin,
		FragSize:     fragSize,
		SmoothWindow: 101,
		SmoothOrder:  4,
	}
}

// Render writes the left, right and combined profiles for d to w.
// nTSSUsed is the number of windows accepted during the annotation
// pass. Zero mapped reads or zero windows cannot be normalized and are
// reported as errors.
func (r *Renderer) Render(w io.Writer, d *Density, nTSSUsed int) error {
	if d.NReads == 0 {
		return fmt.Errorf("tssd: no mapped reads, cannot normalize profiles")
	}
	if nTSSUsed == 0 {
		return fmt.Errorf("tssd: no TSS windows used, cannot normalize profiles")
	}
	core := r.Upstream + r.Downstream + 1
	margin := r.Margin
	if len(d.Left) != core+2*margin {
		return fmt.Errorf("tssd: profile length %d does not match window %d+%d+1 with margin %d", len(d.Left), r.Upstream, r.Downstream, margin)
	}
	if r.FragSize < 0 {
		return fmt.Errorf("tssd: negative fragment size %d", r.FragSize)
	}
	shift := r.FragSize / 2
	if shift > margin {
		return fmt.Errorf("tssd: fragment size %d exceeds twice the margin %d", r.FragSize, margin)
	}

	left := normalize(d.Left, d.NReads, nTSSUsed)
	right := normalize(d.Right, d.NReads, nTSSUsed)
	leftSmooth, err := dsp.Filter(left, r.SmoothWindow, r.SmoothOrder)
	if err != nil {
		return err
	}
	rightSmooth, err := dsp.Filter(right, r.SmoothWindow, r.SmoothOrder)
	if err != nil {
		return err
	}

	// sum the two profiles with the fragment-size shift removed,
	// restricted to the core window
	combined := make([]float64, core)
	for i := range combined {
		combined[i] = left[margin-shift+i] + right[margin+shift+i]
	}
	combinedSmooth, err := dsp.Filter(combined, r.SmoothWindow, r.SmoothOrder)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	r.emit(bw, "left", left[margin:margin+core], leftSmooth[margin:margin+core])
	r.emit(bw, "right", right[margin:margin+core], rightSmooth[margin:margin+core])
	r.emit(bw, "combined", combined, combinedSmooth)
	return bw.Flush()
}

func (r *Renderer) emit(w io.Writer, label string, raw, smooth []float64) {
	for i := range raw {
		fmt.Fprintf(w, "%d|%g|%g|%s\n", i-r.Upstream, raw[i], smooth[i], label)
	}
}

func normalize(counts []int, nReads, nTSS int) []float64 {
	factor := 1e9 / float64(nReads) / float64(nTSS)
	out := make([]float64, len(counts))
	for i, c := range counts {
		out[i] = float64(c) * factor
	}
	return out
}
