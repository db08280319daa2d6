package orrery

import (
	"fmt"
	"strings"
)

const (
	// AU is one astronomical unit in kilometers.
	AU = 1.49597870700e8
	// SunGM is the gravitational parameter μ of the Sun in km^3/s^2.
	SunGM = 1.32712440017987e11
)

// BodyKey is the identity of a body: the lowercase name shared by the body catalog,
// the orbital elements catalog and the scene nodes.
type BodyKey string

// KeyOf returns the key of the provided name, whatever its case.
func KeyOf(name string) BodyKey {
	return BodyKey(strings.ToLower(strings.TrimSpace(name)))
}

// BodyDefinition defines a celestial body of the model. It is never mutated.
type BodyDefinition struct {
	Name              string
	RadiusKm          float64
	SemiMajorAxisKm   float64
	OrbitalPeriodDays float64
	ColorHex          uint32
}

// Key returns the identity of this body.
func (b BodyDefinition) Key() BodyKey {
	return KeyOf(b.Name)
}

// String implements the Stringer interface.
func (b BodyDefinition) String() string {
	return b.Name + " body"
}

// BodyFromString returns the body from its name.
func BodyFromString(name string) (BodyDefinition, error) {
	key := KeyOf(name)
	for _, b := range Bodies() {
		if b.Key() == key {
			return b, nil
		}
	}
	return BodyDefinition{}, fmt.Errorf("undefined body '%s'", name)
}

// Bodies returns the fixed catalog of bodies, sorted by distance to the Sun.
func Bodies() []BodyDefinition {
	return []BodyDefinition{Sun, Mercury, Venus, Earth, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto}
}

/* Definitions */

// Sun is our closest star.
var Sun = BodyDefinition{"Sun", 695700, 0, 0, 0xffcc33}

// Mercury is fast.
var Mercury = BodyDefinition{"Mercury", 2439.7, 57909050, 87.969, 0x999999}

// Venus is poisonous.
var Venus = BodyDefinition{"Venus", 6051.8, 108208601, 224.701, 0xe8cda2}

// Earth is home.
var Earth = BodyDefinition{"Earth", 6378.1363, 149598023, 365.256, 0x33bb33}

// Mars is the vacation place.
var Mars = BodyDefinition{"Mars", 3396.19, 227939282.5616, 686.980, 0xbb3333}

// Jupiter is big.
var Jupiter = BodyDefinition{"Jupiter", 71492.0, 778298361, 4332.589, 0xd8ca9d}

// Saturn floats and that's really cool.
var Saturn = BodyDefinition{"Saturn", 60268.0, 1429394133, 10759.22, 0xe3d6a1}

// Uranus is no joke.
var Uranus = BodyDefinition{"Uranus", 25559.0, 2875038615, 30688.5, 0x9fe3e8}

// Neptune is windy.
var Neptune = BodyDefinition{"Neptune", 24764.0, 4504449769, 60195.0, 0x3f54ba}

// Pluto is not a planet and had that down ranking coming.
var Pluto = BodyDefinition{"Pluto", 1188.3, 5915799000, 90560.0, 0xbfa58a}
