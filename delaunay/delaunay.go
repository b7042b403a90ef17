// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package delaunay triangulates planar chart points by lifting them onto a
// paraboloid and keeping the lower faces of the lifted convex hull.
package delaunay

import (
	"errors"
	"math"
	"slices"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/markus-wa/quickhull-go/v2"
)

const (
	defaultEps = 1e-12
)

type Triangulation struct {
	Vertices []r2.Point
	// CCW in the plane.
	Triangles [][3]int
	// NOTE: Per vertex, sorted so that NextVertex of each triangle is
	// PrevVertex of the following one. Fans of boundary vertices start at
	// the boundary.
	IncidentTriangleIndices []int
	IncidentTriangleOffsets []int
}

func (dt *Triangulation) IncidentTriangles(vIdx int) []int {
	if vIdx < 0 || vIdx+1 >= len(dt.IncidentTriangleOffsets) {
		panic("IncidentTriangles: vIdx out of range")
	}
	start := dt.IncidentTriangleOffsets[vIdx]
	end := dt.IncidentTriangleOffsets[vIdx+1]
	return dt.IncidentTriangleIndices[start:end]
}

func (dt *Triangulation) TriangleVertices(tIdx int) (r2.Point, r2.Point, r2.Point) {
	if tIdx < 0 || tIdx >= len(dt.Triangles) {
		panic("TriangleVertices: tIdx out of bounds")
	}
	t := dt.Triangles[tIdx]
	return dt.Vertices[t[0]], dt.Vertices[t[1]], dt.Vertices[t[2]]
}

type TriangulationOptions struct {
	Eps float64
}

type TriangulationOption func(*TriangulationOptions) error

func WithEps(eps float64) TriangulationOption {
	return func(o *TriangulationOptions) error {
		if eps <= 0 {
			return errors.New("delaunay: eps must be positive")
		}
		o.Eps = eps
		return nil
	}
}

// NewTriangulation returns the Delaunay triangulation of points. Points not
// touched by any triangle, such as duplicates, get no incident triangles.
func NewTriangulation(points []r2.Point, setters ...TriangulationOption) (*Triangulation, error) {
	opts := TriangulationOptions{
		Eps: defaultEps,
	}
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, err
		}
	}

	numVertices := len(points)
	if numVertices < 3 {
		return nil,
			errors.New("delaunay: insufficient vertices for triangulation (minimum 3 required)")
	}

	lifted := liftToParaboloid(points)
	if collinear(lifted, opts.Eps) {
		return nil, errors.New("delaunay: degenerate input, vertices are collinear")
	}
	qh := new(quickhull.QuickHull)
	ch := qh.ConvexHull(lifted, true, true, opts.Eps)
	if len(ch.Indices)%3 != 0 {
		return nil, errors.New("delaunay: inconsistent number of indices returned from QuickHull")
	}

	var centroid r3.Vector
	for _, p := range lifted {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Mul(1 / float64(numVertices))

	dt := &Triangulation{
		Vertices: points,
	}
	// Cocircular input lifts to a flat hull whose two sides repeat each
	// other's triangles.
	seen := make(map[[3]int]struct{})
	for i := 0; i < len(ch.Indices); i += 3 {
		t := [3]int{ch.Indices[i], ch.Indices[i+1], ch.Indices[i+2]}
		if slices.ContainsFunc(t[:], func(v int) bool { return v < 0 || v >= numVertices }) {
			continue
		}
		if !isLowerFace(t, lifted, centroid, opts.Eps) {
			continue
		}
		sortTriangleVerticesCCW(&t, points)

		key := t
		slices.Sort(key[:])
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		dt.Triangles = append(dt.Triangles, t)
	}
	if len(dt.Triangles) == 0 {
		return nil, errors.New("delaunay: no lower faces in lifted hull")
	}

	dt.buildIncidentTriangles()
	return dt, nil
}

// liftToParaboloid maps points to z = x² + y² after normalizing them into
// the unit box around their bounding rectangle's center.
func liftToParaboloid(points []r2.Point) []r3.Vector {
	bound := r2.RectFromPoints(points...)
	center := bound.Center()
	size := bound.Size()
	scale := math.Max(size.X, size.Y)
	if scale == 0 {
		scale = 1
	}

	lifted := make([]r3.Vector, len(points))
	for i, p := range points {
		q := p.Sub(center).Mul(1 / scale)
		lifted[i] = r3.Vector{X: q.X, Y: q.Y, Z: q.Dot(q)}
	}
	return lifted
}

// collinear reports whether the XY projections of lifted all lie within eps
// of one line.
func collinear(lifted []r3.Vector, eps float64) bool {
	origin := r2.Point{X: lifted[0].X, Y: lifted[0].Y}
	var dir r2.Point
	for _, p := range lifted {
		if d := (r2.Point{X: p.X, Y: p.Y}).Sub(origin); d.Norm() > dir.Norm() {
			dir = d
		}
	}
	if dir.Norm() <= eps {
		return true
	}
	dir = dir.Normalize()
	for _, p := range lifted {
		d := r2.Point{X: p.X, Y: p.Y}.Sub(origin)
		if math.Abs(dir.Cross(d)) > eps {
			return false
		}
	}
	return true
}

// isLowerFace reports whether the hull face t looks down the Z axis. Faces
// seen edge-on from below come from collinear points and are rejected.
func isLowerFace(t [3]int, lifted []r3.Vector, centroid r3.Vector, eps float64) bool {
	a, b, c := lifted[t[0]], lifted[t[1]], lifted[t[2]]
	norm := b.Sub(a).Cross(c.Sub(a))
	length := norm.Norm()
	if math.Abs(norm.Z) <= eps*length {
		return false
	}
	if norm.Z > 0 {
		norm = norm.Mul(-1)
	}
	// The hull's interior lies above a lower face.
	return centroid.Sub(a).Dot(norm) <= eps*length
}

func (dt *Triangulation) buildIncidentTriangles() {
	numVertices := len(dt.Vertices)
	numTriangles := len(dt.Triangles)
	dt.IncidentTriangleIndices = make([]int, numTriangles*3)
	dt.IncidentTriangleOffsets = make([]int, numVertices+1)

	for _, t := range dt.Triangles {
		for _, v := range t {
			dt.IncidentTriangleOffsets[v+1]++
		}
	}
	for i := range numVertices {
		dt.IncidentTriangleOffsets[i+1] += dt.IncidentTriangleOffsets[i]
	}

	nxt := make([]int, numVertices)
	copy(nxt, dt.IncidentTriangleOffsets[:numVertices])
	for i, t := range dt.Triangles {
		for _, v := range t {
			dt.IncidentTriangleIndices[nxt[v]] = i
			nxt[v]++
		}
	}

	for i := range numVertices {
		sortIncidentTriangleIndicesCCW(i, dt.IncidentTriangles(i), dt.Triangles)
	}
}

func sortTriangleVerticesCCW(t *[3]int, v []r2.Point) {
	p0, p1, p2 := v[t[0]], v[t[1]], v[t[2]]
	if p1.Sub(p0).Cross(p2.Sub(p0)) < 0 {
		t[1], t[2] = t[2], t[1]
	}
}

func sortIncidentTriangleIndicesCCW(vIdx int, incidentTris []int, tris [][3]int) {
	n := len(incidentTris)

	// An open fan must start at the triangle with no predecessor.
	for i := range n {
		prv := PrevVertex(tris[incidentTris[i]], vIdx)
		first := true
		for j := range n {
			if j != i && NextVertex(tris[incidentTris[j]], vIdx) == prv {
				first = false
				break
			}
		}
		if first {
			incidentTris[0], incidentTris[i] = incidentTris[i], incidentTris[0]
			break
		}
	}

	for i := 1; i < n; i++ {
		nxt := NextVertex(tris[incidentTris[i-1]], vIdx)
		for j := i; j < n; j++ {
			prv := PrevVertex(tris[incidentTris[j]], vIdx)
			if nxt == prv {
				incidentTris[i], incidentTris[j] = incidentTris[j], incidentTris[i]
				break
			}
		}
	}
}

func PrevVertex(t [3]int, vIdx int) int {
	switch vIdx {
	case t[0]:
		return t[2]
	case t[1]:
		return t[0]
	case t[2]:
		return t[1]
	}
	panic("PrevVertex: vIdx not in triangle")
}

func NextVertex(t [3]int, vIdx int) int {
	switch vIdx {
	case t[0]:
		return t[1]
	case t[1]:
		return t[2]
	case t[2]:
		return t[0]
	}
	panic("NextVertex: vIdx not in triangle")
}
