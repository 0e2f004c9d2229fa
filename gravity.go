package satprop

import (
	"fmt"
	"math"
	"strings"
)

// GravityModel is one of the fixed gravitational-constant sets a record may be
// propagated with. All propagation constants derive from the tuple
// {Radius, μ, J2, J3, J4}; the reciprocal time unit and ke are kept explicitly
// because the legacy set pins ke to its historically published value rather
// than recomputing it from μ.
type GravityModel struct {
	Name   string
	Radius float64 // Equatorial radius (km)
	μ      float64 // Gravitational parameter (km³/s²)
	ke     float64 // sqrt(GM) in (earth radii)^1.5 per minute
	tumin  float64 // Minutes per canonical time unit
	j2     float64
	j3     float64
	j4     float64
	// Derived propagation constants.
	ck2    float64 // J2/2
	ck4    float64 // -3 J4 / 8
	a3ovk2 float64 // -J3/CK2
	s      float64 // Fitting parameter: 1 + 78 km in earth radii
	qoms2t float64 // ((120-78) km in earth radii)^4
}

// GM returns μ (which is unexported because it's a lowercase letter).
func (g GravityModel) GM() float64 {
	return g.μ
}

// Ke returns sqrt(GM) expressed in earth radii and minutes.
func (g GravityModel) Ke() float64 {
	return g.ke
}

// J returns the zonal harmonic J_n. Only J2 through J4 are carried.
func (g GravityModel) J(n uint8) float64 {
	switch n {
	case 2:
		return g.j2
	case 3:
		return g.j3
	case 4:
		return g.j4
	default:
		return 0.0
	}
}

// String implements the Stringer interface.
func (g GravityModel) String() string {
	return g.Name + " gravity"
}

// Equals returns whether the provided gravity model is the same set.
func (g GravityModel) Equals(o GravityModel) bool {
	return g.Name == o.Name && g.Radius == o.Radius && g.μ == o.μ && g.ke == o.ke
}

func newGravityModel(name string, radius, μ, ke, j2, j3, j4 float64) GravityModel {
	if ke == 0 {
		ke = 60.0 / math.Sqrt(radius*radius*radius/μ)
	}
	return GravityModel{
		Name:   name,
		Radius: radius,
		μ:      μ,
		ke:     ke,
		tumin:  1.0 / ke,
		j2:     j2,
		j3:     j3,
		j4:     j4,
		ck2:    0.5 * j2,
		ck4:    -0.375 * j4,
		a3ovk2: -j3 / (0.5 * j2),
		s:      1.0 + 78.0/radius,
		qoms2t: math.Pow((120.0-78.0)/radius, 4),
	}
}

/* Definitions */

// WGS72Old is the legacy near-earth constant set, with ke fixed to the value
// published alongside the original models instead of recomputed from μ.
var WGS72Old = newGravityModel("WGS-72 (legacy)", 6378.135, 398600.79964,
	0.0743669161, 0.001082616, -0.00000253881, -0.00000165597)

// WGS72 is the WGS-72 derived set used by the distributed element catalogs.
var WGS72 = newGravityModel("WGS-72", 6378.135, 398600.8,
	0, 0.001082616, -0.00000253881, -0.00000165597)

// WGS84 is the WGS-84 derived set.
var WGS84 = newGravityModel("WGS-84", 6378.137, 398600.5,
	0, 0.00108262998905, -0.00000253215306, -0.00000161098761)

// GravityModelFromString returns the model for a configured name.
func GravityModelFromString(name string) (GravityModel, error) {
	switch strings.ToLower(name) {
	case "72old", "wgs72old":
		return WGS72Old, nil
	case "72", "wgs72":
		return WGS72, nil
	case "84", "wgs84":
		return WGS84, nil
	default:
		return GravityModel{}, fmt.Errorf("undefined gravity model '%s'", name)
	}
}
