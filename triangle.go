// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package brepmesh

import (
	"fmt"

	"github.com/2dChan/brepmesh/surface"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// Triangle is a view structure for accessing a triangle in a Mesh.
type Triangle struct {
	idx int
	m   *Mesh
}

// Index returns the index of the triangle in the Mesh's Triangles.
func (t Triangle) Index() int {
	return t.idx
}

// VertexIndices returns the indices of the triangle's vertices in the Mesh's
// Vertices, in outward winding order.
func (t Triangle) VertexIndices() [3]int {
	return t.m.Triangles[t.idx]
}

// Vertex returns the k-th vertex of the triangle.
// It returns an error if k is out of range.
func (t Triangle) Vertex(k int) (surface.Vertex, error) {
	if k < 0 || k >= 3 {
		return surface.Vertex{}, fmt.Errorf("Vertex: index %d out of range [0 3)", k)
	}
	return t.m.Vertices[t.m.Triangles[t.idx][k]], nil
}

// Point returns the chart position of the k-th vertex of the triangle.
// It returns an error if k is out of range.
func (t Triangle) Point(k int) (r2.Point, error) {
	if k < 0 || k >= 3 {
		return r2.Point{}, fmt.Errorf("Point: index %d out of range [0 3)", k)
	}
	return t.m.Points[t.m.Triangles[t.idx][k]], nil
}

// Normal returns the unit normal of the flat triangle, following its
// winding.
func (t Triangle) Normal() r3.Vector {
	tri := t.m.Triangles[t.idx]
	a := t.m.Vertices[tri[0]].Pos
	b := t.m.Vertices[tri[1]].Pos
	c := t.m.Vertices[tri[2]].Pos
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}

// Area returns the area of the flat triangle in 3D.
func (t Triangle) Area() float64 {
	tri := t.m.Triangles[t.idx]
	a := t.m.Vertices[tri[0]].Pos
	b := t.m.Vertices[tri[1]].Pos
	c := t.m.Vertices[tri[2]].Pos
	return b.Sub(a).Cross(c.Sub(a)).Norm() / 2
}
