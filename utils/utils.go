// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package utils provides deterministic point generators for tests, benchmarks and examples.

package utils

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// GenerateRandomPoints generates points uniformly distributed in the unit disk.
// The seed parameter ensures reproducibility.
func GenerateRandomPoints(cnt int, seed int64) []r2.Point {
	//nolint:gosec
	random := rand.New(rand.NewSource(seed))
	points := make([]r2.Point, cnt)

	for i := range cnt {
		r := math.Sqrt(random.Float64())
		theta := random.Float64() * 2 * math.Pi
		points[i] = r2.Point{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
	}

	return points
}

// GenerateCirclePoints generates cnt evenly spaced points on the unit circle
// in shuffled order. The seed parameter ensures reproducibility.
func GenerateCirclePoints(cnt int, seed int64) []r2.Point {
	//nolint:gosec
	random := rand.New(rand.NewSource(seed))
	points := make([]r2.Point, cnt)

	for i := range cnt {
		theta := float64(i) * 2 * math.Pi / float64(cnt)
		points[i] = r2.Point{X: math.Cos(theta), Y: math.Sin(theta)}
	}
	random.Shuffle(cnt, func(i, j int) {
		points[i], points[j] = points[j], points[i]
	})

	return points
}

// GenerateCapPoints generates random points on the sphere of the given
// center and radius, restricted to the cap within maxColatitude of the +Z pole.
// The seed parameter ensures reproducibility.
func GenerateCapPoints(cnt int, seed int64, center r3.Vector, radius float64, maxColatitude s1.Angle) []r3.Vector {
	//nolint:gosec
	random := rand.New(rand.NewSource(seed))
	points := make([]r3.Vector, cnt)

	for i := range cnt {
		p := s2.PointFromLatLng(s2.LatLng{
			Lat: s1.Angle(math.Pi/2) - s1.Angle(random.Float64())*maxColatitude,
			Lng: s1.Angle((random.Float64()*2 - 1) * math.Pi),
		})
		points[i] = center.Add(p.Vector.Mul(radius))
	}

	return points
}
