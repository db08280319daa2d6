package orrery

import (
	"math"

	"github.com/gonum/matrix/mat64"
)

// PQW2Ecliptic converts a perifocal (PQW) vector to the ecliptic frame
// given the inclination, argument of perihelion and longitude of the ascending node (radians).
func PQW2Ecliptic(i, ω, Ω float64, vI []float64) []float64 {
	var iω, Ωiω mat64.Dense
	iω.Mul(R1(-i), R3(-ω))
	Ωiω.Mul(R3(-Ω), &iω)
	return MxV33(&Ωiω, vI)
}

// R1 rotation about the 1st axis.
func R1(x float64) *mat64.Dense {
	s, c := math.Sincos(x)
	return mat64.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R3 rotation about the 3rd axis.
func R3(x float64) *mat64.Dense {
	s, c := math.Sincos(x)
	return mat64.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// MxV33 multiplies a matrix with a vector. Note that there is no dimension check!
func MxV33(m *mat64.Dense, v []float64) (o []float64) {
	vVec := mat64.NewVector(len(v), v)
	var rVec mat64.Vector
	rVec.MulVec(m, vVec)
	return []float64{rVec.At(0, 0), rVec.At(1, 0), rVec.At(2, 0)}
}
