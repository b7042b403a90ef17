// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package surface

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// transform is a 4x4 homogeneous matrix acting on points.
type transform struct {
	m *mat.Dense
}

func identity() transform {
	return transform{m: mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})}
}

func (t transform) apply(p r3.Vector) r3.Vector {
	var out mat.VecDense
	out.MulVec(t.m, mat.NewVecDense(4, []float64{p.X, p.Y, p.Z, 1}))
	return r3.Vector{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

func (t transform) inverse() (transform, error) {
	var inv mat.Dense
	if err := inv.Inverse(t.m); err != nil {
		return transform{}, fmt.Errorf("%w: %v", ErrDegenerateFrame, err)
	}
	return transform{m: &inv}, nil
}

// MakeAffineTransform returns the matrix mapping local coordinates to world
// coordinates for the frame with the given world-space axes and origin.
func MakeAffineTransform(zWorld, xWorld, yWorld, originWorld r3.Vector) *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		xWorld.X, yWorld.X, zWorld.X, originWorld.X,
		xWorld.Y, yWorld.Y, zWorld.Y, originWorld.Y,
		xWorld.Z, yWorld.Z, zWorld.Z, originWorld.Z,
		0, 0, 0, 1,
	})
}

// MakeRigidTransform is MakeAffineTransform with the Y axis completed as
// zWorld x xWorld.
func MakeRigidTransform(zWorld, xWorld, originWorld r3.Vector) *mat.Dense {
	return MakeAffineTransform(zWorld, xWorld, zWorld.Cross(xWorld), originWorld)
}

// frame builds the world-to-local transform of a rigid frame.
func frame(zWorld, xWorld, originWorld r3.Vector) (toWorld, toLocal transform, err error) {
	toWorld = transform{m: MakeRigidTransform(zWorld, xWorld, originWorld)}
	toLocal, err = toWorld.inverse()
	return toWorld, toLocal, err
}
