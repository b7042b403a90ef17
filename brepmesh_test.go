// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package brepmesh

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/2dChan/brepmesh/hull"
	"github.com/2dChan/brepmesh/nurbs"
	"github.com/2dChan/brepmesh/surface"
	"github.com/2dChan/brepmesh/utils"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// MeshOptions

func TestWithEps(t *testing.T) {
	tests := []struct {
		name    string
		eps     float64
		wantErr bool
	}{
		{"eps positive", 0.5, false},
		{"eps zero", 0, true},
		{"eps negative", -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &MeshOptions{Eps: defaultEps}
			opt := WithEps(tt.eps)
			err := opt(opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("WithEps(%v) error = %v, wantErr %v", tt.eps, err, tt.wantErr)
			}
			if err == nil && opts.Eps != tt.eps {
				t.Errorf("WithEps(%v) opts.Eps = %v, want %v", tt.eps, opts.Eps, tt.eps)
			}
		})
	}
}

func TestWithSteinerPoints(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		opts := &MeshOptions{SteinerPoints: !enabled}
		if err := WithSteinerPoints(enabled)(opts); err != nil {
			t.Errorf("WithSteinerPoints(%v) error = %v, want nil", enabled, err)
		}
		if opts.SteinerPoints != enabled {
			t.Errorf("WithSteinerPoints(%v) opts.SteinerPoints = %v, want %v", enabled, opts.SteinerPoints, enabled)
		}
	}
}

// Mesh

func TestNewMesh_InvalidOption(t *testing.T) {
	s := mustNewPlane(t)
	if _, err := NewMesh(s, squareVerts(), WithEps(0)); err == nil {
		t.Errorf("NewMesh(..., WithEps(0)) error = nil, want non-nil")
	}
}

func TestNewMesh_Plane(t *testing.T) {
	verts := squareVerts()
	m := mustNewMesh(t, mustNewPlane(t), verts)

	if got := m.NumTriangles(); got != 4 {
		t.Errorf("m.NumTriangles() = %v, want 4", got)
	}
	if diff := cmp.Diff([]int{0, 1, 2, 3}, m.Boundary); diff != "" {
		t.Errorf("m.Boundary mismatch (-want +got):\n%s", diff)
	}

	wantPoints := make([]r2.Point, len(verts))
	for i, v := range verts {
		wantPoints[i] = r2.Point{X: v.Pos.X, Y: v.Pos.Y}
	}
	if diff := cmp.Diff(wantPoints, m.Points, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("m.Points mismatch (-want +got):\n%s", diff)
	}

	up := r3.Vector{Z: 1}
	for i, v := range m.Vertices {
		if v.Norm != up {
			t.Errorf("m.Vertices[%d].Norm = %v, want %v", i, v.Norm, up)
		}
	}
	// The caller's vertices are left untouched.
	for i, v := range verts {
		if v.Norm != (r3.Vector{}) {
			t.Errorf("verts[%d].Norm = %v, want zero", i, v.Norm)
		}
	}
}

func TestNewMesh_WindingFollowsSign(t *testing.T) {
	tests := []struct {
		name  string
		s     *surface.Surface
		verts []surface.Vertex
	}{
		{"plane", mustNewPlane(t), squareVerts()},
		{"sphere", mustNewSphere(t), capVerts(50, math.Pi/3)},
		{"cylinder", mustNewCylinder(t), cylinderVerts()},
		{"spline", surface.NewSpline(mustNewSaddle(t)), saddleVerts()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustNewMesh(t, tt.s, tt.verts)
			if m.NumTriangles() == 0 {
				t.Fatalf("m.NumTriangles() = 0, want > 0")
			}
			for i, tri := range m.Triangles {
				a, b, c := m.Points[tri[0]], m.Points[tri[1]], m.Points[tri[2]]
				ccw := b.Sub(a).Cross(c.Sub(a)) > 0
				if ccw == tt.s.Sign() {
					t.Errorf("m.Triangles[%d] chart winding ccw = %v with Sign() = %v", i, ccw, tt.s.Sign())
				}
			}
		})
	}
}

func TestNewMesh_FillsChartHole(t *testing.T) {
	// A full turn of the cylinder lowers to an annulus; the inner ring is
	// the top edge.
	const numRing = 8
	var verts []surface.Vertex
	for _, z := range []float64{0, 2} {
		for k := range numRing {
			theta := float64(k) * 2 * math.Pi / numRing
			verts = append(verts, surface.Vertex{
				Pos: r3.Vector{X: math.Cos(theta), Y: math.Sin(theta), Z: z},
			})
		}
	}
	m := mustNewMesh(t, mustNewCylinder(t), verts)

	capped := 0
	for _, tri := range m.Triangles {
		if tri[0] >= numRing && tri[1] >= numRing && tri[2] >= numRing {
			capped++
		}
	}
	// An octagon with no interior points splits into 6 triangles.
	if capped != numRing-2 {
		t.Errorf("triangles inside the inner ring = %v, want %v", capped, numRing-2)
	}
	if got := len(m.Boundary); got != numRing {
		t.Errorf("len(m.Boundary) = %v, want %v", got, numRing)
	}
}

func TestNewMesh_BoundarySorted(t *testing.T) {
	m := mustNewMesh(t, mustNewSphere(t), capVerts(200, math.Pi/4))
	if len(m.Boundary) < 3 {
		t.Fatalf("len(m.Boundary) = %v, want at least 3", len(m.Boundary))
	}

	var center r2.Point
	for _, p := range m.Points {
		center = center.Add(p)
	}
	center = center.Mul(1 / float64(len(m.Points)))

	seen := make(map[int]bool)
	prev := -1.0
	for i, v := range m.Boundary {
		if seen[v] {
			t.Errorf("m.Boundary[%d] = %v repeats", i, v)
		}
		seen[v] = true

		d := m.Points[v].Sub(center)
		angle := hull.PseudoAngle(d.X, d.Y)
		if angle < prev {
			t.Errorf("m.Boundary[%d] pseudo-angle %v below previous %v", i, angle, prev)
		}
		prev = angle
	}
}

func TestNewMesh_SteinerPoints(t *testing.T) {
	tests := []struct {
		name     string
		s        *surface.Surface
		verts    []surface.Vertex
		steiner  bool
		wantVert int
	}{
		{"sphere enabled", mustNewSphere(t), capVerts(30, math.Pi/4), true, 30 + 36},
		{"sphere disabled", mustNewSphere(t), capVerts(30, math.Pi/4), false, 30},
		{"plane enabled", mustNewPlane(t), squareVerts(), true, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustNewMesh(t, tt.s, tt.verts, WithSteinerPoints(tt.steiner))
			if got := len(m.Vertices); got != tt.wantVert {
				t.Errorf("len(m.Vertices) = %v, want %v", got, tt.wantVert)
			}
			if len(m.Points) != len(m.Vertices) {
				t.Errorf("len(m.Points) = %v, want %v", len(m.Points), len(m.Vertices))
			}
		})
	}
}

func TestNewMesh_Errors(t *testing.T) {
	offSurface := saddleVerts()
	offSurface[3].Pos.Z += 1

	collinear := []surface.Vertex{
		{Pos: r3.Vector{X: 0}},
		{Pos: r3.Vector{X: 1}},
		{Pos: r3.Vector{X: 2}},
	}

	tests := []struct {
		name    string
		s       *surface.Surface
		verts   []surface.Vertex
		wantErr error
	}{
		{"could not lower", surface.NewSpline(mustNewSaddle(t)), offSurface, surface.ErrCouldNotLower},
		{"degenerate sphere frame", mustNewSphere(t), capVerts(1, math.Pi/4), surface.ErrDegenerateFrame},
		{"collinear", mustNewPlane(t), collinear, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMesh(tt.s, tt.verts)
			if err == nil {
				t.Fatalf("NewMesh(...) error = nil, want non-nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("NewMesh(...) error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// Benchmarks

func BenchmarkNewMesh(b *testing.B) {
	sizes := []int{1e+2, 1e+3, 1e+4, 1e+5}
	for _, pointsCnt := range sizes {
		b.Run(fmt.Sprintf("N%d", pointsCnt), func(b *testing.B) {
			s, err := surface.NewSphere(r3.Vector{}, 1)
			if err != nil {
				b.Fatalf("surface.NewSphere(...) error = %v, want nil", err)
			}
			verts := capVerts(pointsCnt, math.Pi/3)

			b.ReportAllocs()
			b.ResetTimer()
			for b.Loop() {
				_, err := NewMesh(s, verts, WithSteinerPoints(true))
				if err != nil {
					b.Fatalf("NewMesh(...) error = %v, want nil", err)
				}
			}
		})
	}
}

// Helpers

func mustNewMesh(t *testing.T, s *surface.Surface, verts []surface.Vertex, opts ...MeshOption) *Mesh {
	t.Helper()
	m, err := NewMesh(s, verts, opts...)
	if err != nil {
		t.Fatalf("NewMesh(...) error = %v, want nil", err)
	}
	return m
}

func mustNewPlane(t *testing.T) *surface.Surface {
	t.Helper()
	s, err := surface.NewPlane(r3.Vector{Z: 1}, r3.Vector{X: 1}, r3.Vector{})
	if err != nil {
		t.Fatalf("surface.NewPlane(...) error = %v, want nil", err)
	}
	return s
}

func mustNewSphere(t *testing.T) *surface.Surface {
	t.Helper()
	s, err := surface.NewSphere(r3.Vector{}, 1)
	if err != nil {
		t.Fatalf("surface.NewSphere(...) error = %v, want nil", err)
	}
	return s
}

func mustNewCylinder(t *testing.T) *surface.Surface {
	t.Helper()
	s, err := surface.NewCylinder(r3.Vector{Z: 1}, r3.Vector{X: 1}, r3.Vector{}, 1)
	if err != nil {
		t.Fatalf("surface.NewCylinder(...) error = %v, want nil", err)
	}
	return s
}

// mustNewSaddle returns the bilinear patch S(u,v) = (u, v, uv) on [0,1]².
func mustNewSaddle(t *testing.T) *nurbs.Surface {
	t.Helper()
	net := [][]r3.Vector{
		{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
		{{X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 1}},
	}
	s, err := nurbs.NewSurface(1, 1, net, nil, []float64{0, 0, 1, 1}, []float64{0, 0, 1, 1})
	if err != nil {
		t.Fatalf("nurbs.NewSurface(...) error = %v, want nil", err)
	}
	return s
}

// squareVerts returns the corners of [-1,1]² in the XY plane, counterclockwise
// from (-1,-1), followed by the origin.
func squareVerts() []surface.Vertex {
	return []surface.Vertex{
		{Pos: r3.Vector{X: -1, Y: -1}},
		{Pos: r3.Vector{X: 1, Y: -1}},
		{Pos: r3.Vector{X: 1, Y: 1}},
		{Pos: r3.Vector{X: -1, Y: 1}},
		{Pos: r3.Vector{}},
	}
}

func capVerts(n int, maxColatitude float64) []surface.Vertex {
	points := utils.GenerateCapPoints(n, 0, r3.Vector{}, 1, s1.Angle(maxColatitude))
	verts := make([]surface.Vertex, n)
	for i, p := range points {
		verts[i].Pos = p
	}
	return verts
}

// cylinderVerts samples a quarter of the unit cylinder around Z at three
// heights.
func cylinderVerts() []surface.Vertex {
	var verts []surface.Vertex
	for _, z := range []float64{0, 1, 2} {
		for k := range 5 {
			theta := float64(k) * math.Pi / 8
			verts = append(verts, surface.Vertex{
				Pos: r3.Vector{X: math.Cos(theta), Y: math.Sin(theta), Z: z},
			})
		}
	}
	return verts
}

func saddleVerts() []surface.Vertex {
	var verts []surface.Vertex
	for i := range 4 {
		for j := range 4 {
			u, v := float64(i)/3, float64(j)/3
			verts = append(verts, surface.Vertex{Pos: r3.Vector{X: u, Y: v, Z: u * v}})
		}
	}
	return verts
}
