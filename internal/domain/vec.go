package domain

import (
	"fmt"
	"math"
)

// Vec3 is a point or direction in the simulation's world space. Y is up.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

func (v Vec3) Mul(scalar float64) Vec3 {
	return Vec3{X: v.X * scalar, Y: v.Y * scalar, Z: v.Z * scalar}
}

func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns the unit vector pointing the same way, or the zero
// vector when v has no meaningful length.
func (v Vec3) Normalized() Vec3 {
	length := v.Length()
	if length < 1e-9 {
		return Vec3{}
	}
	return v.Mul(1 / length)
}

func (v Vec3) Dist(other Vec3) float64 {
	return v.Sub(other).Length()
}

// Floor projects the point onto the walking plane.
func (v Vec3) Floor() Vec3 {
	return Vec3{X: v.X, Z: v.Z}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}
