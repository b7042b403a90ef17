// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package surface

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

const (
	numSteinerPoints = 6
)

// AddSteinerPoints appends interior samples to a sphere's chart points and
// their 3D vertices, keeping both slices the same length. The samples form a
// regular grid inside the bounding box of pts; samples farther than pi from
// the chart origin are skipped since they would fold past the antipode.
//
// Only spheres get samples. The surface must have been prepared by
// LowerVerts for the same vertex set.
func (s *Surface) AddSteinerPoints(pts []r2.Point, verts []Vertex) ([]r2.Point, []Vertex) {
	if s.kind != Sphere || len(pts) == 0 {
		return pts, verts
	}
	sp := s.sphere

	bound := r2.EmptyRect()
	for _, p := range pts {
		bound = bound.AddPoint(p)
	}
	lo, hi := bound.Lo(), bound.Hi()

	for x := range numSteinerPoints {
		xFrac := float64(x+1) / float64(numSteinerPoints+1)
		u := xFrac*hi.X + (1-xFrac)*lo.X
		for y := range numSteinerPoints {
			yFrac := float64(y+1) / float64(numSteinerPoints+1)
			v := yFrac*hi.Y + (1-yFrac)*lo.Y

			p := r2.Point{X: u, Y: v}
			angle := p.Norm()
			if angle > math.Pi {
				continue
			}

			// Position in the chart frame, then in world space.
			local := r3.Vector{X: math.Cos(angle)}
			if angle >= chartEps {
				yz := p.Normalize().Mul(math.Sin(angle))
				local.Y = yz.X
				local.Z = yz.Y
			}
			pos := sp.mat.apply(local.Mul(sp.radius))

			pts = append(pts, p)
			verts = append(verts, Vertex{
				Pos:  pos,
				Norm: s.Normal(pos, p),
			})
		}
	}
	return pts, verts
}
