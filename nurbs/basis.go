// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package nurbs

import "fmt"

// KnotVector is a nondecreasing sequence of parameter values.
type KnotVector []float64

// validate checks that the vector is nondecreasing and has the length
// required by numCtrl control points of the given degree.
func (kv KnotVector) validate(degree, numCtrl int) error {
	if len(kv) != numCtrl+degree+1 {
		return fmt.Errorf("%w: knot count must equal control point count + degree + 1", ErrInvalidSurface)
	}
	for i := 1; i < len(kv); i++ {
		if kv[i] < kv[i-1] {
			return fmt.Errorf("%w: knot vector is not nondecreasing", ErrInvalidSurface)
		}
	}
	if kv[degree] >= kv[numCtrl] {
		return fmt.Errorf("%w: knot vector has an empty domain", ErrInvalidSurface)
	}
	return nil
}

// span returns the index i of the knot span [kv[i], kv[i+1]) containing u,
// where n is the index of the last control point and p the degree.
func (kv KnotVector) span(n, p int, u float64) int {
	if u >= kv[n+1] {
		return n
	}
	if u <= kv[p] {
		return p
	}

	low, high := p, n+1
	mid := (low + high) / 2
	for u < kv[mid] || u >= kv[mid+1] {
		if u < kv[mid] {
			high = mid
		} else {
			low = mid
		}
		mid = (low + high) / 2
	}
	return mid
}

// derivativeBasis evaluates the nonzero basis functions of degree p on span
// i and their derivatives up to order n at u. ders[k][j] is the k-th
// derivative of N(i-p+j, p). Orders above p are zero.
// (Algorithm A2.3, The NURBS Book, Piegl & Tiller 2nd edition.)
func derivativeBasis(i int, u float64, p, n int, kv KnotVector) [][]float64 {
	ders := make([][]float64, n+1)
	for k := range ders {
		ders[k] = make([]float64, p+1)
	}
	if n > p {
		n = p
	}

	ndu := make([][]float64, p+1)
	for j := range ndu {
		ndu[j] = make([]float64, p+1)
	}
	left := make([]float64, p+1)
	right := make([]float64, p+1)

	ndu[0][0] = 1
	for j := 1; j <= p; j++ {
		left[j] = u - kv[i+1-j]
		right[j] = kv[i+j] - u
		saved := 0.0
		for r := 0; r < j; r++ {
			// Lower triangle holds knot differences.
			ndu[j][r] = right[r+1] + left[j-r]
			temp := ndu[r][j-1] / ndu[j][r]

			ndu[r][j] = saved + right[r+1]*temp
			saved = left[j-r] * temp
		}
		ndu[j][j] = saved
	}

	for j := 0; j <= p; j++ {
		ders[0][j] = ndu[j][p]
	}

	a := [2][]float64{make([]float64, p+1), make([]float64, p+1)}
	for r := 0; r <= p; r++ {
		s1, s2 := 0, 1
		a[0][0] = 1

		for k := 1; k <= n; k++ {
			d := 0.0
			rk := r - k
			pk := p - k

			if r >= k {
				a[s2][0] = a[s1][0] / ndu[pk+1][rk]
				d = a[s2][0] * ndu[rk][pk]
			}

			j1 := 1
			if rk < -1 {
				j1 = -rk
			}
			j2 := p - r
			if r-1 <= pk {
				j2 = k - 1
			}

			for j := j1; j <= j2; j++ {
				a[s2][j] = (a[s1][j] - a[s1][j-1]) / ndu[pk+1][rk+j]
				d += a[s2][j] * ndu[rk+j][pk]
			}

			if r <= pk {
				a[s2][k] = -a[s1][k-1] / ndu[pk+1][r]
				d += a[s2][k] * ndu[r][pk]
			}

			ders[k][r] = d
			s1, s2 = s2, s1
		}
	}

	r := float64(p)
	for k := 1; k <= n; k++ {
		for j := 0; j <= p; j++ {
			ders[k][j] *= r
		}
		r *= float64(p - k)
	}

	return ders
}
