//
// Copyright (C) 2013 Wolfgang Resch
//
// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the license was not distributed with this file, you
// can obtain one at https://opensource.org/licenses/MIT.
//

package tssd

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ShiftCandidate pairs a candidate shift with the distance between the
// left and right profiles superimposed at that shift.
type ShiftCandidate struct {
	Shift    int
	Distance float64
}

// EstimateFragSize searches exhaustively for the shift that minimizes
// the Euclidean distance between the left profile shifted right and the
// right profile shifted left; true paired fragment ends converge at a
// spacing equal to the fragment length, so the estimate is twice the
// best shift. Both arrays must have margin extra positions on each side
// of the core window. Candidate distances are independent and computed
// concurrently; the argmin reduction runs after all candidates are in,
// so ties always resolve to the smallest shift, which is returned along
// with every tied candidate.
func EstimateFragSize(left, right []int, margin int) (int, []ShiftCandidate, error) {
	if len(left) != len(right) {
		return 0, nil, fmt.Errorf("tssd: profile lengths differ: %d vs %d", len(left), len(right))
	}
	n := len(left) - 2*margin
	if n <= 0 {
		return 0, nil, fmt.Errorf("tssd: margin %d leaves no core window in profiles of length %d", margin, len(left))
	}
	lf := toFloat(left)
	rf := toFloat(right)

	dists := make([]float64, margin+1)
	var g errgroup.Group
	for s := 0; s <= margin; s++ {
		s := s
		g.Go(func() error {
			b1 := margin - s
			b2 := margin + s
			d, err := stats.EuclideanDistance(lf[b1:b1+n], rf[b2:b2+n])
			if err != nil {
				return fmt.Errorf("tssd: distance at shift %d: %w", s, err)
			}
			dists[s] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, nil, err
	}

	best := dists[0]
	for _, d := range dists[1:] {
		if d < best {
			best = d
		}
	}
	var optimal []ShiftCandidate
	for s, d := range dists {
		if d == best {
			optimal = append(optimal, ShiftCandidate{Shift: s, Distance: d})
		}
	}
	if len(optimal) > 1 {
		logrus.Warnf("more than one possible shift size: %v", optimal)
	}
	return 2 * optimal[0].Shift, optimal, nil
}

func toFloat(counts []int) []float64 {
	out := make([]float64, len(counts))
	for i, c := range counts {
		out[i] = float64(c)
	}
	return out
}
