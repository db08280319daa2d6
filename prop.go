package orrery

import (
	"errors"
	"math"
	"time"

	kitlog "github.com/go-kit/kit/log"
)

const (
	// DefaultDisplayScale converts kilometers to display units.
	DefaultDisplayScale = 1e-6
	secondsPerDay       = 86400.0
)

// KeplerPeriod returns the period in seconds of a heliocentric orbit of the
// provided semi-major axis (in km), T = 2π sqrt(a³/μ).
func KeplerPeriod(aKm float64) (float64, error) {
	if !(aKm > 0) || math.IsInf(aKm, 0) {
		return 0, &DegenerateOrbitError{A: aKm}
	}
	return 2 * math.Pi * math.Sqrt(math.Pow(aKm, 3)/SunGM), nil
}

// SampledState is a state vector at a given instant.
type SampledState struct {
	DT    time.Time
	State StateVector
}

// Propagator computes the placement and the orbit trace of bodies.
// All returned positions are in display units, i.e. kilometers multiplied by Scale.
type Propagator struct {
	Scale   float64
	catalog Catalog
	ephem   EphemerisProvider
	logger  kitlog.Logger
}

// NewPropagator returns a new Propagator. A nil ephemeris defaults to KeplerianEphemeris and a
// non-positive scale to DefaultDisplayScale.
func NewPropagator(cat Catalog, ephem EphemerisProvider, scale float64, logger kitlog.Logger) *Propagator {
	if ephem == nil {
		ephem = KeplerianEphemeris
	}
	if !(scale > 0) {
		scale = DefaultDisplayScale
	}
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	if cat == nil {
		cat = Catalog{}
	}
	return &Propagator{scale, cat, ephem, kitlog.With(logger, "subsys", "prop")}
}

// Elements returns the orbital elements of this body, if any.
func (p *Propagator) Elements(b BodyDefinition) (OrbitalElements, bool) {
	return p.catalog.Lookup(b.Key())
}

// CurrentPosition returns the position of the body at the provided instant.
// Bodies without (usable) elements are placed at their semi-major axis on the X axis,
// whatever the instant.
func (p *Propagator) CurrentPosition(b BodyDefinition, dt time.Time) Vector3 {
	if el, ok := p.Elements(b); ok {
		err := el.Validate()
		if err == nil {
			R := p.ephem(el, dt.UTC()).R
			if R.IsFinite() {
				return R.Scale(p.Scale)
			}
			err = &DegenerateOrbitError{Body: b.Key(), A: el.SemiMajorAxisKm()}
		}
		p.logger.Log("level", "warning", "body", b.Key(), "err", err, "message", "using circular placement")
	}
	return Vector3{b.SemiMajorAxisKm, 0, 0}.Scale(p.Scale)
}

// OrbitTrace returns sampleCount+1 points of the orbit of this body, starting at dt0.
// A sampleCount lower than one is treated as one.
func (p *Propagator) OrbitTrace(b BodyDefinition, dt0 time.Time, sampleCount int) ([]Vector3, error) {
	states, err := p.SampleStates(b, dt0, sampleCount)
	if err != nil {
		return nil, err
	}
	pts := make([]Vector3, len(states))
	for i, s := range states {
		pts[i] = s.State.R.Scale(p.Scale)
	}
	return pts, nil
}

// SampleStates returns sampleCount+1 states (in km and km/s) evenly spaced over one
// orbit of this body, starting at dt0. Bodies with elements are sampled over the Keplerian
// period of their elements frozen at dt0, others on a circle of their semi-major axis.
func (p *Propagator) SampleStates(b BodyDefinition, dt0 time.Time, sampleCount int) ([]SampledState, error) {
	if sampleCount < 1 {
		sampleCount = 1
	}
	dt0 = dt0.UTC()
	el, ok := p.Elements(b)
	if !ok {
		return circularStates(b, dt0, sampleCount), nil
	}
	if err := el.Validate(); err != nil {
		return nil, withBody(err, b.Key())
	}
	// The secular drift is ignored over one revolution so that the trace closes.
	osc := el.Frozen(dt0)
	if err := osc.Validate(); err != nil {
		return nil, withBody(err, b.Key())
	}
	period, err := KeplerPeriod(osc.SemiMajorAxisKm())
	if err != nil {
		return nil, withBody(err, b.Key())
	}
	step := period / float64(sampleCount)
	states := make([]SampledState, sampleCount+1)
	for k := range states {
		dt := addSeconds(dt0, float64(k)*step)
		state := p.ephem(osc, dt)
		if !state.R.IsFinite() || !state.V.IsFinite() {
			return nil, &DegenerateOrbitError{Body: b.Key(), A: osc.SemiMajorAxisKm()}
		}
		states[k] = SampledState{dt, state}
	}
	return states, nil
}

// circularStates samples a circle of the body's semi-major axis. The positions do not depend on time,
// the instants only spread over the body's nominal period for exporting.
func circularStates(b BodyDefinition, dt0 time.Time, sampleCount int) []SampledState {
	a := b.SemiMajorAxisKm
	var v float64
	if a > 0 {
		v = math.Sqrt(SunGM / a)
	}
	step := b.OrbitalPeriodDays * secondsPerDay / float64(sampleCount)
	states := make([]SampledState, sampleCount+1)
	for k := range states {
		sθ, cθ := math.Sincos(2 * math.Pi * float64(k) / float64(sampleCount))
		states[k] = SampledState{
			DT:    addSeconds(dt0, float64(k)*step),
			State: StateVector{R: Vector3{a * cθ, a * sθ, 0}, V: Vector3{-v * sθ, v * cθ, 0}},
		}
	}
	return states
}

// withBody names the body of a DegenerateOrbitError.
func withBody(err error, key BodyKey) error {
	var degen *DegenerateOrbitError
	if errors.As(err, &degen) {
		return &DegenerateOrbitError{Body: key, A: degen.A}
	}
	return err
}

// addSeconds adds a possibly very large number of seconds to dt without overflowing time.Duration.
func addSeconds(dt time.Time, seconds float64) time.Time {
	days := math.Floor(seconds / secondsPerDay)
	rem := seconds - days*secondsPerDay
	return dt.AddDate(0, 0, int(days)).Add(time.Duration(rem * float64(time.Second)))
}
