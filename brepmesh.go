// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package brepmesh triangulates the faces of a boundary representation model
// by lowering their vertices into the chart of the face's surface and
// triangulating there.
package brepmesh

import (
	"errors"
	"fmt"
	"slices"

	"github.com/2dChan/brepmesh/delaunay"
	"github.com/2dChan/brepmesh/hull"
	"github.com/2dChan/brepmesh/surface"
	"github.com/golang/geo/r2"
)

const (
	defaultEps = 1e-12
)

// Mesh is the triangulation of one face.
type Mesh struct {
	Vertices []surface.Vertex
	// Chart position of each vertex.
	Points []r2.Point
	// NOTE: Winding is corrected by the surface's Sign.
	Triangles [][3]int
	// Indices of the vertices on the chart's outer boundary, counterclockwise
	// around the chart centroid.
	Boundary []int
}

type MeshOptions struct {
	Eps           float64
	SteinerPoints bool
}

type MeshOption func(*MeshOptions) error

func WithEps(eps float64) MeshOption {
	return func(o *MeshOptions) error {
		if eps <= 0 {
			return errors.New("brepmesh: eps must be positive")
		}
		o.Eps = eps
		return nil
	}
}

// WithSteinerPoints enables interior samples for surfaces that provide them.
func WithSteinerPoints(enabled bool) MeshOption {
	return func(o *MeshOptions) error {
		o.SteinerPoints = enabled
		return nil
	}
}

// NewMesh triangulates the convex hull of the chart positions of verts on s.
// Holes and concave parts of the face's boundary are filled, not cut out.
// The vertices are copied; the returned mesh carries their normals.
func NewMesh(s *surface.Surface, verts []surface.Vertex, setters ...MeshOption) (*Mesh, error) {
	opts := MeshOptions{
		Eps: defaultEps,
	}
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, err
		}
	}

	verts = slices.Clone(verts)
	pts, err := s.LowerVerts(verts)
	if err != nil {
		return nil, err
	}
	if opts.SteinerPoints {
		pts, verts = s.AddSteinerPoints(pts, verts)
	}

	dt, err := delaunay.NewTriangulation(pts, delaunay.WithEps(opts.Eps))
	if err != nil {
		return nil, err
	}

	m := &Mesh{
		Vertices:  verts,
		Points:    pts,
		Triangles: dt.Triangles,
		Boundary:  chartBoundary(pts, dt.Triangles),
	}
	if s.Sign() {
		for i := range m.Triangles {
			t := &m.Triangles[i]
			t[1], t[2] = t[2], t[1]
		}
	}
	return m, nil
}

func (m *Mesh) NumTriangles() int {
	return len(m.Triangles)
}

// Triangle returns a view of the i-th triangle.
// It returns an error if the index is out of range.
func (m *Mesh) Triangle(i int) (Triangle, error) {
	if i < 0 || i >= len(m.Triangles) {
		return Triangle{}, fmt.Errorf("Triangle: index %d out of range [0 %d)", i, len(m.Triangles))
	}
	return Triangle{idx: i, m: m}, nil
}

// chartBoundary collects the start vertex of every boundary half-edge of the
// CCW chart triangulation, ordered by pseudo-angle around the centroid.
// Half-edge 3t+k runs from tris[t][k] to tris[t][(k+1)%3].
func chartBoundary(pts []r2.Point, tris [][3]int) []int {
	interior := make(map[[2]int]struct{}, 3*len(tris))
	for _, t := range tris {
		for k := range 3 {
			interior[[2]int{t[k], t[(k+1)%3]}] = struct{}{}
		}
	}

	var center r2.Point
	for _, p := range pts {
		center = center.Add(p)
	}
	center = center.Mul(1 / float64(len(pts)))

	h := hull.New(center, pts)
	for i, t := range tris {
		for k := range 3 {
			a, b := t[k], t[(k+1)%3]
			if _, ok := interior[[2]int{b, a}]; ok || h.Contains(hull.PointIndex(a)) {
				continue
			}
			h.Insert(hull.PointIndex(a), hull.EdgeIndex(3*i+k))
		}
	}

	boundary := make([]int, 0, h.Len())
	for e := range h.Values() {
		boundary = append(boundary, tris[e/3][e%3])
	}
	return boundary
}
