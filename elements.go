package satprop

import (
	"fmt"
	"time"
)

// Elements is a published element set converted to internal units (radians,
// radians per minute and powers thereof, dimensionless drag term), plus the
// gravity model it is to be propagated with.
//
// The orbital fields are unexported: every mutation must go through a setter
// so the per-model initialization caches can be invalidated. Identity fields
// never affect propagation and may be set freely. A record must not be
// mutated while another goroutine propagates it; exclusive access during
// mutation is the caller's responsibility.
type Elements struct {
	Name           string
	CatalogNumber  int
	IntlDesignator string

	epoch   time.Time
	n       float64 // Mean motion (rad/min), as published (Kozai mean)
	e       float64 // Eccentricity
	i       float64 // Inclination (rad)
	Ω       float64 // Right ascension of the ascending node (rad)
	ω       float64 // Argument of perigee (rad)
	m       float64 // Mean anomaly (rad)
	ndot    float64 // First mean-motion derivative over two (rad/min²)
	nddot   float64 // Second mean-motion derivative over six (rad/min³)
	bstar   float64 // Drag term B* (1/earth radii)
	gravity GravityModel

	version uint64
	caches  map[Model]*propCache
}

// NewElements creates a record from pre-decoded numeric fields. Unit
// conversion from catalog text formats is a parsing collaborator's job.
func NewElements(epoch time.Time, meanMotion, ecc, incl, raan, argp, meanAnom, ndot, nddot, bstar float64) *Elements {
	return &Elements{
		epoch:   epoch,
		n:       meanMotion,
		e:       ecc,
		i:       incl,
		Ω:       raan,
		ω:       argp,
		m:       meanAnom,
		ndot:    ndot,
		nddot:   nddot,
		bstar:   bstar,
		gravity: DefaultGravityModel(),
	}
}

// Validate enforces the hard element-range preconditions. It must pass before
// any model runs.
func (s *Elements) Validate() error {
	if s.e < 0 || s.e >= 1 {
		return &BadElementsError{Field: "eccentricity", Value: s.e}
	}
	if s.n < 0 {
		return &BadElementsError{Field: "mean motion", Value: s.n}
	}
	return nil
}

// String implements the Stringer interface.
func (s *Elements) String() string {
	return fmt.Sprintf("%s#%d: n=%.8f e=%.7f i=%.4f Ω=%.4f ω=%.4f M=%.4f @ %s",
		s.Name, s.CatalogNumber, s.n, s.e, Rad2deg(s.i), Rad2deg(s.Ω), Rad2deg(s.ω), Rad2deg(s.m), s.epoch.Format(time.RFC3339))
}

// Epoch returns the epoch of the record.
func (s *Elements) Epoch() time.Time { return s.epoch }

// MeanMotion returns the published (Kozai mean) mean motion in rad/min.
func (s *Elements) MeanMotion() float64 { return s.n }

// Eccentricity returns the eccentricity.
func (s *Elements) Eccentricity() float64 { return s.e }

// Inclination returns the inclination in radians.
func (s *Elements) Inclination() float64 { return s.i }

// RAAN returns the right ascension of the ascending node in radians.
func (s *Elements) RAAN() float64 { return s.Ω }

// ArgPerigee returns the argument of perigee in radians.
func (s *Elements) ArgPerigee() float64 { return s.ω }

// MeanAnomaly returns the mean anomaly in radians.
func (s *Elements) MeanAnomaly() float64 { return s.m }

// NDot returns the first mean-motion derivative term in rad/min².
func (s *Elements) NDot() float64 { return s.ndot }

// NDDot returns the second mean-motion derivative term in rad/min³.
func (s *Elements) NDDot() float64 { return s.nddot }

// Bstar returns the B* drag term.
func (s *Elements) Bstar() float64 { return s.bstar }

// GravityModel returns the gravity model the record propagates with.
func (s *Elements) GravityModel() GravityModel { return s.gravity }

// Period returns the unperturbed orbital period derived from the published
// mean motion.
func (s *Elements) Period() time.Duration {
	if s.n <= 0 {
		return 0
	}
	return time.Duration(twoπ / s.n * float64(time.Minute))
}

// DeepSpace reports whether the record falls in the deep-space regime, i.e.
// whether the period recovered from the Kozai mean motion is at least 225
// minutes. It never touches the caches.
func (s *Elements) DeepSpace() bool {
	if s.n <= 0 {
		return false
	}
	xnodp, _ := kozaiRecover(s)
	return twoπ/xnodp >= deepSpaceLimit
}

// Recovered returns the un-biased mean motion (rad/min) and semi-major axis
// (earth radii) derived from the published Kozai mean elements.
func (s *Elements) Recovered() (meanMotion, semiMajorAxis float64) {
	return kozaiRecover(s)
}

// invalidate bumps the record version; caches are reused only when their
// stored version matches.
func (s *Elements) invalidate() {
	s.version++
}

// SetEpoch replaces the epoch of the record.
func (s *Elements) SetEpoch(epoch time.Time) {
	s.epoch = epoch
	s.invalidate()
}

// SetMeanMotion replaces the mean motion (rad/min).
func (s *Elements) SetMeanMotion(n float64) {
	s.n = n
	s.invalidate()
}

// SetEccentricity replaces the eccentricity.
func (s *Elements) SetEccentricity(e float64) {
	s.e = e
	s.invalidate()
}

// SetInclination replaces the inclination (rad).
func (s *Elements) SetInclination(i float64) {
	s.i = i
	s.invalidate()
}

// SetRAAN replaces the right ascension of the ascending node (rad).
func (s *Elements) SetRAAN(raan float64) {
	s.Ω = raan
	s.invalidate()
}

// SetArgPerigee replaces the argument of perigee (rad).
func (s *Elements) SetArgPerigee(argp float64) {
	s.ω = argp
	s.invalidate()
}

// SetMeanAnomaly replaces the mean anomaly (rad).
func (s *Elements) SetMeanAnomaly(m float64) {
	s.m = m
	s.invalidate()
}

// SetNDot replaces the first mean-motion derivative term (rad/min²).
func (s *Elements) SetNDot(ndot float64) {
	s.ndot = ndot
	s.invalidate()
}

// SetNDDot replaces the second mean-motion derivative term (rad/min³).
func (s *Elements) SetNDDot(nddot float64) {
	s.nddot = nddot
	s.invalidate()
}

// SetBstar replaces the B* drag term.
func (s *Elements) SetBstar(bstar float64) {
	s.bstar = bstar
	s.invalidate()
}

// SetGravityModel selects the constant set the record propagates with and
// drops every cached initialization.
func (s *Elements) SetGravityModel(g GravityModel) {
	s.gravity = g
	s.invalidate()
}

// cache returns the up-to-date initialization cache for the model, or nil.
func (s *Elements) cache(m Model) *propCache {
	c, found := s.caches[m]
	if !found || c.version != s.version {
		return nil
	}
	return c
}

// storeCache records a freshly computed initialization for the model.
func (s *Elements) storeCache(m Model, c *propCache) {
	if s.caches == nil {
		s.caches = make(map[Model]*propCache)
	}
	c.version = s.version
	s.caches[m] = c
}
