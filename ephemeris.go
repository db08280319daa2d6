package orrery

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/kepler"
	sunit "github.com/soniakeys/unit"
)

// keplerPlaces is the number of decimal places requested from the Kepler equation solver.
const keplerPlaces = 12

// OrbitalElements are heliocentric elements referred to the ecliptic and equinox of J2000.
// Angles are in degrees, the semi-major axis is in AU. Rates are per Julian century
// since the epoch and may all be left to zero.
type OrbitalElements struct {
	A  float64 // Semi-major axis
	E  float64 // Eccentricity
	I  float64 // Inclination
	L  float64 // Mean longitude
	LP float64 // Longitude of perihelion
	N  float64 // Longitude of the ascending node

	DA, DE, DI, DL, DLP, DN float64

	Epoch float64 // Julian date of the elements, zero means J2000
}

// EpochJD returns the Julian date of the elements.
func (el OrbitalElements) EpochJD() float64 {
	if el.Epoch == 0 {
		return base.J2000
	}
	return el.Epoch
}

// At returns the osculating elements T Julian centuries after the epoch.
func (el OrbitalElements) At(T float64) OrbitalElements {
	return OrbitalElements{
		A:     el.A + T*el.DA,
		E:     el.E + T*el.DE,
		I:     el.I + T*el.DI,
		L:     el.L + T*el.DL,
		LP:    el.LP + T*el.DLP,
		N:     el.N + T*el.DN,
		Epoch: el.Epoch,
	}
}

// Frozen returns the osculating elements at dt without rates, with dt as their epoch.
// Propagated with KeplerianEphemeris they describe a fixed ellipse through the position
// of el at dt, which closes after exactly KeplerPeriod.
func (el OrbitalElements) Frozen(dt time.Time) OrbitalElements {
	jd := julian.TimeToJD(dt.UTC())
	osc := el.at(jd)
	osc.L = osc.LP + Rad2deg(el.meanAnomaly(osc, jd))
	osc.Epoch = jd
	return osc
}

func (el OrbitalElements) at(jd float64) OrbitalElements {
	return el.At((jd - el.EpochJD()) / base.JulianCentury)
}

// meanAnomaly returns the mean anomaly (radians) of osc, the osculating elements of el at jd.
// Without a mean longitude rate the mean motion follows from Kepler's third law.
func (el OrbitalElements) meanAnomaly(osc OrbitalElements, jd float64) float64 {
	M := Deg2rad(osc.L - osc.LP)
	if el.DL == 0 {
		aKm := osc.SemiMajorAxisKm()
		n := math.Sqrt(SunGM / (aKm * aKm * aKm))
		M = math.Mod(M+n*(jd-el.EpochJD())*secondsPerDay, 2*math.Pi)
		if M < 0 {
			M += 2 * math.Pi
		}
	}
	return M
}

// SemiMajorAxisKm returns the semi-major axis in kilometers.
func (el OrbitalElements) SemiMajorAxisKm() float64 {
	return el.A * AU
}

// Validate returns an error if these elements cannot describe a closed orbit.
func (el OrbitalElements) Validate() error {
	aKm := el.SemiMajorAxisKm()
	if !(aKm > 0) || math.IsInf(aKm, 0) {
		return &DegenerateOrbitError{A: aKm}
	}
	if el.E < 0 || el.E >= 1 || math.IsNaN(el.E) {
		return fmt.Errorf("eccentricity %f is not elliptical", el.E)
	}
	return nil
}

// String implements the stringer interface.
func (el OrbitalElements) String() string {
	return fmt.Sprintf("a=%.6f AU e=%.6f i=%.3f L=%.3f ϖ=%.3f Ω=%.3f", el.A, el.E, el.I, el.L, el.LP, el.N)
}

// StateVector is a position (km) and velocity (km/s) in the heliocentric ecliptic frame.
type StateVector struct {
	R, V Vector3
}

// EphemerisProvider returns the state of a body from its elements at the provided instant.
// Implementations must be pure.
type EphemerisProvider func(el OrbitalElements, dt time.Time) StateVector

// KeplerianEphemeris is the default EphemerisProvider. The orbit is a two body orbit around
// the Sun whose elements drift with their secular rates. When no mean longitude rate is
// provided, the mean motion follows from Kepler's third law.
func KeplerianEphemeris(el OrbitalElements, dt time.Time) StateVector {
	jd := julian.TimeToJD(dt.UTC())
	osc := el.at(jd)

	aKm := osc.SemiMajorAxisKm()
	M := el.meanAnomaly(osc, jd)
	ω := Deg2rad(osc.LP - osc.N)
	Ω := Deg2rad(osc.N)
	i := Deg2rad(osc.I)

	E, err := kepler.Kepler2(osc.E, sunit.Angle(M), keplerPlaces)
	if err != nil {
		// Kepler3 always converges, albeit slower.
		E = kepler.Kepler3(osc.E, sunit.Angle(M))
	}
	ν := kepler.True(E, osc.E).Rad()
	r := kepler.Radius(E, osc.E, aKm)

	sinν, cosν := math.Sincos(ν)
	p := aKm * (1 - osc.E*osc.E)
	R := []float64{r * cosν, r * sinν, 0}
	vp := math.Sqrt(SunGM / p)
	V := []float64{-vp * sinν, vp * (osc.E + cosν), 0}
	return StateVector{
		R: NewVector3(PQW2Ecliptic(i, ω, Ω, R)),
		V: NewVector3(PQW2Ecliptic(i, ω, Ω, V)),
	}
}
