package orrery

import (
	"math"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
)

const (
	deg2rad = math.Pi / 180
)

// Vector3 is a Cartesian vector. Units depend on the context: km, km/s or display units.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// NewVector3 returns a Vector3 from a 3x1 slice.
func NewVector3(v []float64) Vector3 {
	return Vector3{v[0], v[1], v[2]}
}

// Slice returns the vector as a 3x1 slice.
func (v Vector3) Slice() []float64 {
	return []float64{v.X, v.Y, v.Z}
}

// Add returns v+o.
func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v-o.
func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns the vector multiplied by f.
func (v Vector3) Scale(f float64) Vector3 {
	return Vector3{v.X * f, v.Y * f, v.Z * f}
}

// Dot performs the inner product via mat64/BLAS.
func (v Vector3) Dot(o Vector3) float64 {
	return mat64.Dot(mat64.NewVector(3, v.Slice()), mat64.NewVector(3, o.Slice()))
}

// Norm returns the Euclidean norm.
func (v Vector3) Norm() float64 {
	return norm(v.Slice())
}

// Unit returns the unit vector, or the nil vector if v is (almost) nil.
func (v Vector3) Unit() Vector3 {
	return NewVector3(unit(v.Slice()))
}

// IsFinite returns whether no component is NaN or infinite.
func (v Vector3) IsFinite() bool {
	for _, c := range v.Slice() {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// EqualWithinAbs returns whether each component of v is within tol of o.
func (v Vector3) EqualWithinAbs(o Vector3, tol float64) bool {
	return floats.EqualApprox(v.Slice(), o.Slice(), tol)
}

// norm returns the norm of a given vector which is supposed to be 3x1.
func norm(v []float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// unit returns the unit vector of a given vector.
func unit(a []float64) (b []float64) {
	n := norm(a)
	if floats.EqualWithinAbs(n, 0, 1e-12) {
		return []float64{0, 0, 0}
	}
	b = make([]float64, len(a))
	for i, val := range a {
		b[i] = val / n
	}
	return
}

// Deg2rad converts degrees to radians, and enforced only positive numbers.
func Deg2rad(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a * deg2rad
}

// Rad2deg converts radians to degrees, and enforced only positive numbers.
func Rad2deg(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a / deg2rad
}
