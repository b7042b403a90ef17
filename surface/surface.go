// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package surface projects points lying on a CAD surface into a 2D chart
// suitable for planar triangulation, and maps chart samples back to 3D.
package surface

import (
	"errors"
	"fmt"
	"math"

	"github.com/2dChan/brepmesh/nurbs"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

const (
	chartEps = 0x1p-52
)

var (
	ErrCouldNotLower   = errors.New("surface: could not lower point")
	ErrDegenerateFrame = errors.New("surface: degenerate reference frame")
)

// Kind identifies the geometric primitive behind a Surface.
type Kind int

const (
	Plane Kind = iota
	Cylinder
	Sphere
	Spline
)

func (k Kind) String() string {
	switch k {
	case Plane:
		return "Plane"
	case Cylinder:
		return "Cylinder"
	case Sphere:
		return "Sphere"
	case Spline:
		return "Spline"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Vertex is a mesh vertex. Norm is written by LowerVerts.
type Vertex struct {
	Pos   r3.Vector
	Norm  r3.Vector
	Color r3.Vector
}

type plane struct {
	normal r3.Vector
	matI   transform
}

type cylinder struct {
	location r3.Vector
	axis     r3.Vector
	matI     transform
	radius   float64

	// Local Z extent of the vertices passed to the last Prepare.
	zMin, zMax float64
}

type sphere struct {
	location r3.Vector
	mat      transform // chart frame to world
	matI     transform // world to chart frame
	radius   float64
}

// Surface is one of Plane, Cylinder, Sphere or Spline. Only the payload
// matching kind is set.
type Surface struct {
	kind     Kind
	plane    *plane
	cylinder *cylinder
	sphere   *sphere
	spline   *nurbs.Surface
}

// NewPlane returns the plane through location with normal axis. refDirection
// becomes the chart's X axis.
func NewPlane(axis, refDirection, location r3.Vector) (*Surface, error) {
	_, matI, err := frame(axis, refDirection, location)
	if err != nil {
		return nil, err
	}
	return &Surface{
		kind:  Plane,
		plane: &plane{normal: axis, matI: matI},
	}, nil
}

// NewCylinder returns the cylinder of the given radius around the axis
// through location.
func NewCylinder(axis, refDirection, location r3.Vector, radius float64) (*Surface, error) {
	if radius <= 0 {
		return nil, errors.New("surface: radius must be positive")
	}
	_, matI, err := frame(axis, refDirection, location)
	if err != nil {
		return nil, err
	}
	return &Surface{
		kind: Cylinder,
		cylinder: &cylinder{
			location: location,
			axis:     axis,
			matI:     matI,
			radius:   radius,
		},
	}, nil
}

// NewSphere returns the sphere of the given radius centered at location.
// Its chart frame is chosen by Prepare.
func NewSphere(location r3.Vector, radius float64) (*Surface, error) {
	if radius <= 0 {
		return nil, errors.New("surface: radius must be positive")
	}
	return &Surface{
		kind: Sphere,
		sphere: &sphere{
			location: location,
			mat:      identity(),
			matI:     identity(),
			radius:   radius,
		},
	}, nil
}

// NewSpline wraps a free-form patch. Its chart is the patch's parameter domain.
func NewSpline(s *nurbs.Surface) *Surface {
	return &Surface{kind: Spline, spline: s}
}

// Kind returns the primitive behind s.
func (s *Surface) Kind() Kind {
	return s.kind
}

// Prepare computes per-vertex-set state and must run before Lower.
//
// A cylinder records the local Z extent of verts. A sphere builds its chart
// frame from the first and last vertex, so the chart orientation depends on
// vertex order. Planes and splines need nothing.
func (s *Surface) Prepare(verts []Vertex) error {
	switch s.kind {
	case Cylinder:
		c := s.cylinder
		c.zMin = math.Inf(1)
		c.zMax = math.Inf(-1)
		for _, v := range verts {
			p := c.matI.apply(v.Pos)
			c.zMin = math.Min(c.zMin, p.Z)
			c.zMax = math.Max(c.zMax, p.Z)
		}
	case Sphere:
		sp := s.sphere
		if len(verts) < 2 {
			return fmt.Errorf("%w: sphere needs at least 2 vertices, got %d", ErrDegenerateFrame, len(verts))
		}
		refDirection := verts[0].Pos.Sub(sp.location).Normalize()
		d1 := verts[len(verts)-1].Pos.Sub(sp.location).Normalize()
		axis := refDirection.Cross(d1).Normalize()

		mat, matI, err := frame(axis, refDirection, sp.location)
		if err != nil {
			return err
		}
		sp.mat = mat
		sp.matI = matI
	}
	return nil
}

// Lower maps a point lying on the surface to its chart coordinates.
func (s *Surface) Lower(p r3.Vector) (r2.Point, error) {
	switch s.kind {
	case Plane:
		q := s.plane.matI.apply(p)
		return r2.Point{X: q.X, Y: q.Y}, nil

	case Cylinder:
		// Z shrinks the radius from 1 to 0.5 instead of unrolling to
		// theta-z, which would need a seam.
		c := s.cylinder
		q := c.matI.apply(p)
		z := 0.0
		if c.zMax > c.zMin {
			z = (q.Z - c.zMin) / (c.zMax - c.zMin)
		}
		scale := 1 / (1 + z)
		return r2.Point{X: q.X * scale, Y: q.Y * scale}, nil

	case Sphere:
		// Azimuthal equidistant around the frame's X axis: the distance
		// from the origin is the angle from the pole, in [0, pi].
		sp := s.sphere
		q := sp.matI.apply(p).Mul(1 / sp.radius)
		yz := r2.Point{X: q.Y, Y: q.Z}
		r := yz.Norm()
		if r < chartEps {
			return yz, nil
		}
		angle := math.Atan2(r, q.X)
		return yz.Mul(angle / r), nil

	case Spline:
		uv, ok := s.spline.UVFromPoint(p)
		if !ok {
			return r2.Point{}, fmt.Errorf("%w: %v", ErrCouldNotLower, p)
		}
		return uv, nil
	}
	panic(fmt.Sprintf("Lower: unknown surface kind %v", s.kind))
}

// Normal returns the surface normal at p, whose chart position is uv.
//
// Cylinder and spline normals point the opposite way to plane and sphere
// normals; Sign reports which kinds need their winding flipped.
func (s *Surface) Normal(p r3.Vector, uv r2.Point) r3.Vector {
	switch s.kind {
	case Plane:
		return s.plane.normal
	case Sphere:
		return p.Sub(s.sphere.location).Normalize()
	case Cylinder:
		c := s.cylinder
		proj := p.Sub(c.location).Dot(c.axis)
		nearest := c.location.Add(c.axis.Mul(proj))
		return p.Sub(nearest).Normalize().Mul(-1)
	case Spline:
		return s.spline.Normal(uv)
	}
	panic(fmt.Sprintf("Normal: unknown surface kind %v", s.kind))
}

// Sign reports whether triangles built in this surface's chart must have
// their winding inverted to face outward.
func (s *Surface) Sign() bool {
	switch s.kind {
	case Cylinder, Spline:
		return true
	}
	return false
}

// LowerVerts prepares the surface for verts, then lowers every vertex,
// writing its normal back into verts. The returned points are in the same
// order as verts.
func (s *Surface) LowerVerts(verts []Vertex) ([]r2.Point, error) {
	if err := s.Prepare(verts); err != nil {
		return nil, err
	}
	pts := make([]r2.Point, 0, len(verts))
	for i := range verts {
		proj, err := s.Lower(verts[i].Pos)
		if err != nil {
			return nil, err
		}
		verts[i].Norm = s.Normal(verts[i].Pos, proj)
		pts = append(pts, proj)
	}
	return pts, nil
}
