//
// Copyright (C) 2013 Wolfgang Resch
//
// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the license was not distributed with this file, you
// can obtain one at https://opensource.org/licenses/MIT.
//

// Package dsp provides signal smoothing for density profiles.
package dsp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Filter smooths values with a Savitzky-Golay filter: a least-squares
// polynomial of the given order is fit over a sliding window and
// evaluated at the window center. The output has the same length as the
// input. The window size must be odd and no larger than the signal; the
// order must be smaller than the window size.
func Filter(values []float64, window, order int) ([]float64, error) {
	if window < 1 || window%2 == 0 {
		return nil, fmt.Errorf("dsp: window size must be a positive odd number, got %d", window)
	}
	if order >= window {
		return nil, fmt.Errorf("dsp: polynomial order %d too high for window size %d", order, window)
	}
	if len(values) < window {
		return nil, fmt.Errorf("dsp: window size %d larger than signal length %d", window, len(values))
	}
	weights, err := centerWeights(window, order)
	if err != nil {
		return nil, err
	}

	// mirror the signal at both ends to dampen edge artifacts
	half := window / 2
	n := len(values)
	padded := make([]float64, n+2*half)
	copy(padded[half:], values)
	for i := 1; i <= half; i++ {
		padded[half-i] = values[0] - math.Abs(values[i]-values[0])
		padded[n+half-1+i] = values[n-1] + math.Abs(values[n-1-i]-values[n-1])
	}

	out := make([]float64, n)
	for k := range out {
		var s float64
		for i, w := range weights {
			s += w * padded[k+i]
		}
		out[k] = s
	}
	return out, nil
}

// centerWeights returns the convolution weights that evaluate the
// least-squares polynomial fit at the window center.
func centerWeights(window, order int) ([]float64, error) {
	half := window / 2
	a := mat.NewDense(window, order+1, nil)
	for i := 0; i < window; i++ {
		x := float64(i - half)
		v := 1.0
		for j := 0; j <= order; j++ {
			a.Set(i, j, v)
			v *= x
		}
	}
	var ata mat.Dense
	ata.Mul(a.T(), a)
	var inv mat.Dense
	if err := inv.Inverse(&ata); err != nil {
		return nil, fmt.Errorf("dsp: singular design matrix: %w", err)
	}
	var proj mat.Dense
	proj.Mul(&inv, a.T())
	return mat.Row(nil, 0, &proj), nil
}
