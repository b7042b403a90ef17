// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package nurbs evaluates rational B-spline surface patches and inverts
// them, finding the parameter position of a point lying on the patch.
package nurbs

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/combin"
)

const (
	defaultTolerance = 1e-6
	defaultSamples   = 16

	maxNewtonIterations = 20
	cosineEps           = 1e-9
)

var ErrInvalidSurface = errors.New("nurbs: invalid surface")

type Options struct {
	// Maximum distance between a point and the surface for UVFromPoint to
	// accept the point.
	Tolerance float64
	// Number of seed intervals per parameter direction for ClosestParam.
	Samples int
}

type Option func(*Options) error

func WithTolerance(tol float64) Option {
	return func(o *Options) error {
		if tol <= 0 {
			return errors.New("nurbs: tolerance must be positive")
		}
		o.Tolerance = tol
		return nil
	}
}

func WithSamples(n int) Option {
	return func(o *Options) error {
		if n < 1 {
			return errors.New("nurbs: samples must be at least 1")
		}
		o.Samples = n
		return nil
	}
}

// hpoint is a control point in homogeneous form (w*x, w*y, w*z, w).
type hpoint struct {
	v r3.Vector
	w float64
}

func (p hpoint) add(o hpoint) hpoint {
	return hpoint{v: p.v.Add(o.v), w: p.w + o.w}
}

func (p hpoint) mul(m float64) hpoint {
	return hpoint{v: p.v.Mul(m), w: p.w * m}
}

// Surface is a rational B-spline patch. Control points are indexed [i][j]
// with i along u and j along v.
type Surface struct {
	degreeU, degreeV int
	controlPoints    [][]hpoint
	knotsU, knotsV   KnotVector

	opts Options
}

// NewSurface builds a patch from its control net. A nil weights slice
// makes the patch non-rational.
func NewSurface(degreeU, degreeV int, controlPoints [][]r3.Vector, weights [][]float64,
	knotsU, knotsV []float64, setters ...Option) (*Surface, error) {
	opts := Options{
		Tolerance: defaultTolerance,
		Samples:   defaultSamples,
	}
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, err
		}
	}

	if degreeU < 1 || degreeV < 1 {
		return nil, fmt.Errorf("%w: degrees must be at least 1", ErrInvalidSurface)
	}
	if len(controlPoints) == 0 || len(controlPoints[0]) == 0 {
		return nil, fmt.Errorf("%w: empty control net", ErrInvalidSurface)
	}
	if weights != nil && len(weights) != len(controlPoints) {
		return nil, fmt.Errorf("%w: weights do not match control net", ErrInvalidSurface)
	}

	numV := len(controlPoints[0])
	cps := make([][]hpoint, len(controlPoints))
	for i, row := range controlPoints {
		if len(row) != numV {
			return nil, fmt.Errorf("%w: control net is not rectangular", ErrInvalidSurface)
		}
		if weights != nil && len(weights[i]) != numV {
			return nil, fmt.Errorf("%w: weights do not match control net", ErrInvalidSurface)
		}
		cps[i] = make([]hpoint, numV)
		for j, p := range row {
			w := 1.0
			if weights != nil {
				w = weights[i][j]
			}
			if w <= 0 {
				return nil, fmt.Errorf("%w: weights must be positive", ErrInvalidSurface)
			}
			cps[i][j] = hpoint{v: p.Mul(w), w: w}
		}
	}

	s := &Surface{
		degreeU:       degreeU,
		degreeV:       degreeV,
		controlPoints: cps,
		knotsU:        append(KnotVector(nil), knotsU...),
		knotsV:        append(KnotVector(nil), knotsV...),
		opts:          opts,
	}
	if err := s.knotsU.validate(degreeU, len(cps)); err != nil {
		return nil, err
	}
	if err := s.knotsV.validate(degreeV, numV); err != nil {
		return nil, err
	}
	return s, nil
}

// Domain returns the valid parameter rectangle.
func (s *Surface) Domain() r2.Rect {
	return r2.RectFromPoints(
		r2.Point{X: s.knotsU[s.degreeU], Y: s.knotsV[s.degreeV]},
		r2.Point{X: s.knotsU[len(s.controlPoints)], Y: s.knotsV[len(s.controlPoints[0])]},
	)
}

// Point evaluates the surface at uv.
func (s *Surface) Point(uv r2.Point) r3.Vector {
	return s.Derivatives(uv, 0)[0][0]
}

// Normal returns the unit normal Su x Sv at uv.
func (s *Surface) Normal(uv r2.Point) r3.Vector {
	d := s.Derivatives(uv, 1)
	return d[1][0].Cross(d[0][1]).Normalize()
}

// Derivatives returns skl[k][l], the k-th derivative in u and l-th in v of
// the surface at uv, for k+l <= d.
// (Algorithms A3.6 and A4.4, The NURBS Book.)
func (s *Surface) Derivatives(uv r2.Point, d int) [][]r3.Vector {
	n := len(s.controlPoints) - 1
	m := len(s.controlPoints[0]) - 1
	p, q := s.degreeU, s.degreeV
	du := min(d, p)
	dv := min(d, q)

	uspan := s.knotsU.span(n, p, uv.X)
	vspan := s.knotsV.span(m, q, uv.Y)
	nu := derivativeBasis(uspan, uv.X, p, du, s.knotsU)
	nv := derivativeBasis(vspan, uv.Y, q, dv, s.knotsV)

	aders := make([][]hpoint, d+1)
	for k := range aders {
		aders[k] = make([]hpoint, d+1)
	}
	temp := make([]hpoint, q+1)
	for k := 0; k <= du; k++ {
		for j := 0; j <= q; j++ {
			temp[j] = hpoint{}
			for r := 0; r <= p; r++ {
				cp := s.controlPoints[uspan-p+r][vspan-q+j]
				temp[j] = temp[j].add(cp.mul(nu[k][r]))
			}
		}
		for l := 0; l <= min(d-k, dv); l++ {
			for j := 0; j <= q; j++ {
				aders[k][l] = aders[k][l].add(temp[j].mul(nv[l][j]))
			}
		}
	}

	skl := make([][]r3.Vector, d+1)
	for k := range skl {
		skl[k] = make([]r3.Vector, d+1)
	}
	for k := 0; k <= d; k++ {
		for l := 0; l <= d-k; l++ {
			v := aders[k][l].v
			for j := 1; j <= l; j++ {
				v = v.Sub(skl[k][l-j].Mul(binomial(l, j) * aders[0][j].w))
			}
			for i := 1; i <= k; i++ {
				v = v.Sub(skl[k-i][l].Mul(binomial(k, i) * aders[i][0].w))
				var v2 r3.Vector
				for j := 1; j <= l; j++ {
					v2 = v2.Add(skl[k-i][l-j].Mul(binomial(l, j) * aders[i][j].w))
				}
				v = v.Sub(v2.Mul(binomial(k, i)))
			}
			skl[k][l] = v.Mul(1 / aders[0][0].w)
		}
	}
	return skl
}

// ClosestParam returns the parameter position whose surface point is
// nearest to pt. The search is seeded from a regular sample grid and
// refined with Newton iteration on
//
//	f = Su(u,v) . r = 0
//	g = Sv(u,v) . r = 0,  r = S(u,v) - pt
func (s *Surface) ClosestParam(pt r3.Vector) r2.Point {
	dom := s.Domain()

	best := math.MaxFloat64
	var uv r2.Point
	n := s.opts.Samples
	for i := 0; i <= n; i++ {
		for j := 0; j <= n; j++ {
			c := r2.Point{
				X: dom.X.Lo + dom.X.Length()*float64(i)/float64(n),
				Y: dom.Y.Lo + dom.Y.Length()*float64(j)/float64(n),
			}
			if d := s.Point(c).Sub(pt).Norm2(); d < best {
				best = d
				uv = c
			}
		}
	}

	eps := s.opts.Tolerance * 1e-2
	for range maxNewtonIterations {
		e := s.Derivatives(uv, 2)
		r := e[0][0].Sub(pt)
		su, sv := e[1][0], e[0][1]
		suu, svv, suv := e[2][0], e[0][2], e[1][1]

		// Point coincidence.
		dist := r.Norm()
		if dist < eps {
			return uv
		}
		// Zero cosine: r is perpendicular to both tangents.
		if math.Abs(su.Dot(r)) <= cosineEps*su.Norm()*dist &&
			math.Abs(sv.Dot(r)) <= cosineEps*sv.Norm()*dist {
			return uv
		}

		j := mat.NewDense(2, 2, []float64{
			su.Dot(su) + suu.Dot(r), su.Dot(sv) + suv.Dot(r),
			su.Dot(sv) + suv.Dot(r), sv.Dot(sv) + svv.Dot(r),
		})
		k := mat.NewVecDense(2, []float64{-su.Dot(r), -sv.Dot(r)})
		var delta mat.VecDense
		if err := delta.SolveVec(j, k); err != nil {
			return uv
		}

		next := dom.ClampPoint(r2.Point{X: uv.X + delta.AtVec(0), Y: uv.Y + delta.AtVec(1)})
		step := su.Mul(next.X - uv.X).Norm() + sv.Mul(next.Y - uv.Y).Norm()
		uv = next
		if step < eps {
			return uv
		}
	}
	return uv
}

// UVFromPoint inverts the surface at pt. It reports false if no parameter
// position reproduces pt within the surface tolerance.
func (s *Surface) UVFromPoint(pt r3.Vector) (r2.Point, bool) {
	uv := s.ClosestParam(pt)
	if s.Point(uv).Distance(pt) > s.opts.Tolerance {
		return r2.Point{}, false
	}
	return uv, true
}

func binomial(n, k int) float64 {
	return float64(combin.Binomial(n, k))
}
