package satprop

import (
	"fmt"
	"math"
	"time"
)

// deepSpaceLimit is the orbital period, in minutes, at and above which a
// record belongs to the deep-space regime.
const deepSpaceLimit = 225.0

// Model selects a propagation model. The zero value is the no-op model.
type Model uint8

const (
	// ModelNoOp returns a zero state at any time. It exists so callers can
	// exercise their plumbing without doing any orbital math.
	ModelNoOp Model = iota
	// ModelSimple is the near-earth model with linear drag only.
	ModelSimple
	// ModelNearEarthPrecise is the standard near-earth model with the full
	// quartic drag polynomial.
	ModelNearEarthPrecise
	// ModelNearEarthHighPrec additionally folds the record's published
	// mean-motion derivatives into the secular update.
	ModelNearEarthHighPrec
	// ModelDeepSpace4 pairs the standard drag order with the lunar, solar
	// and resonance perturbations.
	ModelDeepSpace4
	// ModelDeepSpace8 pairs the high-precision drag order with the deep
	// space perturbations.
	ModelDeepSpace8
	// ModelUnified picks the near-earth or deep-space model from the
	// record's recovered period.
	ModelUnified
)

var modelNames = map[Model]string{
	ModelNoOp:              "no-op",
	ModelSimple:            "simple",
	ModelNearEarthPrecise:  "near-earth-precise",
	ModelNearEarthHighPrec: "near-earth-highprec",
	ModelDeepSpace4:        "deep-space-4",
	ModelDeepSpace8:        "deep-space-8",
	ModelUnified:           "unified",
}

func (m Model) String() string {
	if name, found := modelNames[m]; found {
		return name
	}
	return fmt.Sprintf("model(%d)", uint8(m))
}

// ModelFromName returns the model with the given name.
func ModelFromName(name string) (Model, error) {
	for m, n := range modelNames {
		if n == name {
			return m, nil
		}
	}
	return ModelNoOp, fmt.Errorf("unknown propagation model %q", name)
}

// deepSpace reports whether the model carries the deep-space perturbations.
func (m Model) deepSpace() bool {
	return m == ModelDeepSpace4 || m == ModelDeepSpace8
}

func (m Model) order() dragOrder {
	switch m {
	case ModelSimple:
		return dragSimple
	case ModelNearEarthHighPrec, ModelDeepSpace8:
		return dragHighPrec
	default:
		return dragPrecise
	}
}

// State is a propagated inertial state. Position in km, velocity in km/s.
// Code carries the informational status of the propagation; fatal conditions
// are returned as errors instead.
type State struct {
	R, V  []float64
	Epoch time.Time
	Code  StatusCode
}

// Radius returns the distance from the geocenter in km.
func (s State) Radius() float64 {
	return norm(s.R)
}

// Speed returns the inertial speed in km/s.
func (s State) Speed() float64 {
	return norm(s.V)
}

// AngularMomentum returns the specific angular momentum vector R×V in km²/s.
func (s State) AngularMomentum() []float64 {
	return cross(s.R, s.V)
}

// FlightPathAngle returns the angle between the velocity and the local
// horizontal in radians, positive when ascending.
func (s State) FlightPathAngle() float64 {
	return math.Asin(dot(s.R, s.V) / (s.Radius() * s.Speed()))
}

// propCache is the per-record, per-model initialization, reused across calls
// until the record is mutated.
type propCache struct {
	version uint64
	ne      *nearEarthCoeffs
	ds      *deepSpace
}

// Propagate computes the inertial state of the record at the given time.
// ModelUnified selects the near-earth or deep-space model from the record's
// period; asking a fixed model for the wrong regime is an error, raised
// before any cache is touched.
func (s *Elements) Propagate(m Model, at time.Time) (State, error) {
	if m == ModelNoOp {
		return State{R: make([]float64, 3), V: make([]float64, 3), Epoch: at}, nil
	}
	if s.n <= 0 {
		return State{}, &PropagationError{Code: StatusBadMeanMotion}
	}
	if err := s.Validate(); err != nil {
		return State{}, err
	}

	deep := s.DeepSpace()
	resolved := m
	if m == ModelUnified {
		if deep {
			resolved = ModelDeepSpace4
		} else {
			resolved = ModelNearEarthPrecise
		}
	} else if resolved.deepSpace() != deep {
		return State{}, &WrongRegimeError{Model: m, DeepSpace: deep}
	}

	c := s.cache(resolved)
	if c == nil {
		ne := newNearEarthCoeffs(s, resolved.order())
		c = &propCache{ne: ne}
		if resolved.deepSpace() {
			c.ds = newDeepSpace(s, ne)
		}
		s.storeCache(resolved, c)
	}

	tsince := at.Sub(s.epoch).Minutes()
	var st meanState
	if c.ds != nil {
		st = deepMean(c.ne, c.ds, tsince)
	} else {
		st = c.ne.secular(tsince)
	}

	if st.xn <= 0 {
		return State{}, &PropagationError{Code: StatusBadMeanMotion, Tsince: tsince}
	}
	if st.e >= 1.0 || st.e < -0.001 || st.a < 0.95 {
		return State{}, &PropagationError{Code: StatusBadMeanElements, Tsince: tsince}
	}
	if st.e < 1e-6 {
		st.e = 1e-6
	}

	out, err := c.ne.complete(st, tsince)
	if err != nil {
		return State{}, err
	}
	out.Epoch = at
	return out, nil
}

// deepMean runs the deep-space secular and periodic stages between the
// near-earth drag bookkeeping, in the classic ordering.
func deepMean(k *nearEarthCoeffs, d *deepSpace, tsince float64) meanState {
	xmdf := k.m0 + k.xmdot*tsince
	omgadf := k.ω0 + k.omgdot*tsince
	xnoddf := k.Ω0 + k.xnodot*tsince
	tsq := tsince * tsince
	xnode := xnoddf + k.xnodcf*tsq
	tempa := 1.0 - k.c1*tsince
	tempe := k.bstar * k.c4 * tsince
	templ := k.t2cof * tsq
	if k.order == dragHighPrec {
		xmdf += k.ndot*tsq + k.nddot*tsq*tsince
		tempa *= k.ndotFactor(tsince)
	}

	ds := d.secular(xmdf, omgadf, xnode, tsince)
	if ds.xn <= 0 {
		// Resonance integration drove the mean motion out of range; the
		// caller turns this into the status error.
		return meanState{xn: ds.xn}
	}

	a := math.Pow(k.g.ke/ds.xn, 2.0/3.0) * tempa * tempa
	ds.e -= tempe
	ds.xll += k.xnodp * templ

	ds = d.periodics(ds, tsince)
	if ds.e < 1e-6 {
		ds.e = 1e-6
	}

	xl := ds.xll + ds.ω + ds.Ω
	xn := k.g.ke / math.Pow(a, 1.5)
	return meanState{a: a, e: ds.e, xl: xl, xn: xn, ω: ds.ω, Ω: ds.Ω, i: ds.i}
}
