package satprop

import (
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestNearEarthInit(t *testing.T) {
	rec := testLEO()
	k := newNearEarthCoeffs(rec, dragPrecise)
	if k.xnodp <= 0 || k.aodp <= 1 {
		t.Fatalf("recovered elements xnodp=%v aodp=%v", k.xnodp, k.aodp)
	}
	if k.perigee < 200 || k.perigee > 600 {
		t.Fatalf("perigee %f km out of the expected band", k.perigee)
	}
	if k.truncated {
		t.Fatal("perigee above 220 km must keep the full drag polynomial")
	}
	if k.epochStatus != StatusOK {
		t.Fatalf("epoch status %s", k.epochStatus)
	}
	// The simple order always truncates.
	if !newNearEarthCoeffs(rec, dragSimple).truncated {
		t.Fatal("simple order did not truncate the drag polynomial")
	}
}

func TestNearEarthLowPerigeeFitting(t *testing.T) {
	// Around 150 km perigee the fitting parameters are lowered; the init
	// must not blow up and drag must still act in the decaying direction.
	rec := testLEO()
	rec.SetMeanMotion(rev2radmin(16.55))
	rec.SetEccentricity(0.001)
	k := newNearEarthCoeffs(rec, dragPrecise)
	if k.perigee >= 156 {
		t.Fatalf("perigee %f km, wanted a low-perigee case", k.perigee)
	}
	if !k.truncated {
		t.Fatal("perigee below 220 km must truncate the drag polynomial")
	}
	st := k.secular(60)
	if st.a >= k.aodp {
		t.Fatalf("semi-major grew under drag: %v -> %v", k.aodp, st.a)
	}
}

func TestSecularAtEpoch(t *testing.T) {
	rec := testLEO()
	k := newNearEarthCoeffs(rec, dragPrecise)
	st := k.secular(0)
	if !floats.EqualWithinAbs(st.a, k.aodp, 1e-12) {
		t.Fatalf("a(0) = %v, expected %v", st.a, k.aodp)
	}
	if !floats.EqualWithinAbs(st.e, rec.Eccentricity(), 1e-12) {
		t.Fatalf("e(0) = %v, expected %v", st.e, rec.Eccentricity())
	}
	exp := k.g.ke / math.Pow(k.aodp, 1.5)
	if !floats.EqualWithinAbs(st.xn, exp, 1e-15) {
		t.Fatalf("xn(0) = %v, expected %v", st.xn, exp)
	}
}

func TestSecularMeanMotionFollowsDrag(t *testing.T) {
	// The mean motion handed to the short-period stage must come from the
	// contracted semi-major axis, not stay pinned at its epoch value.
	rec := testLEO()
	rec.SetBstar(1e-3)
	k := newNearEarthCoeffs(rec, dragPrecise)
	st := k.secular(1440)
	exp := k.g.ke / math.Pow(st.a, 1.5)
	if !floats.EqualWithinAbs(st.xn, exp, 1e-12) {
		t.Fatalf("xn(1440) = %.9f, expected %.9f", st.xn, exp)
	}
	atEpoch := k.g.ke / math.Pow(k.aodp, 1.5)
	if st.xn <= atEpoch {
		t.Fatalf("mean motion %v did not rise as the orbit contracted from %v", st.xn, atEpoch)
	}
}

func TestSecularDrag(t *testing.T) {
	rec := testLEO()
	k := newNearEarthCoeffs(rec, dragPrecise)
	st := k.secular(1440)
	if st.a >= k.aodp {
		t.Fatalf("semi-major did not shrink under drag: %v -> %v", k.aodp, st.a)
	}
	if st.e >= rec.Eccentricity() {
		t.Fatalf("eccentricity did not shrink under drag: %v -> %v", rec.Eccentricity(), st.e)
	}
}

func TestCompleteCircular(t *testing.T) {
	// A drag-free circular orbit: the radius stays near a·R⊕ and the speed
	// near the circular speed at every point of the orbit.
	rec := testLEO()
	rec.SetEccentricity(0)
	rec.SetBstar(0)
	k := newNearEarthCoeffs(rec, dragPrecise)
	g := rec.GravityModel()
	for _, tsince := range []float64{0, 23, 46.5, 90, 360} {
		st := k.secular(tsince)
		out, err := k.complete(st, tsince)
		if err != nil {
			t.Fatalf("t=%f: %s", tsince, err)
		}
		r := norm(out.R)
		expR := k.aodp * g.Radius
		if math.Abs(r-expR) > 15 {
			t.Fatalf("t=%f: radius %f km, expected about %f", tsince, r, expR)
		}
		v := norm(out.V)
		expV := math.Sqrt(g.GM() / r)
		if math.Abs(v-expV) > 0.02 {
			t.Fatalf("t=%f: speed %f km/s, expected about %f", tsince, v, expV)
		}
		for _, c := range out.R {
			if math.IsNaN(c) {
				t.Fatalf("t=%f: NaN position %v", tsince, out.R)
			}
		}
	}
}

func TestCompleteZeroEccNoNaN(t *testing.T) {
	rec := testLEO()
	rec.SetEccentricity(0)
	k := newNearEarthCoeffs(rec, dragPrecise)
	st := k.secular(500)
	st.e = 0 // force the degenerate case through the periodic stage
	out, err := k.complete(st, 500)
	if err != nil {
		t.Fatal(err)
	}
	for i := range out.R {
		if math.IsNaN(out.R[i]) || math.IsNaN(out.V[i]) {
			t.Fatalf("NaN state at zero eccentricity: R=%v V=%v", out.R, out.V)
		}
	}
}

func TestHighPrecNdotFactor(t *testing.T) {
	rec := testLEO()
	rec.SetNDot(1e-9) // rad/min², already over two
	precise := newNearEarthCoeffs(rec, dragPrecise)
	high := newNearEarthCoeffs(rec, dragHighPrec)
	if f := precise.ndotFactor(1440); f != 1.0 {
		t.Fatalf("precise order applied the derivative factor: %v", f)
	}
	f := high.ndotFactor(1440)
	if f >= 1.0 {
		t.Fatalf("positive ndot must contract the orbit, factor %v", f)
	}
	// Mean anomaly runs ahead of the precise order.
	stp := precise.secular(1440)
	sth := high.secular(1440)
	if sth.xl <= stp.xl {
		t.Fatalf("high-precision mean longitude %v not ahead of %v", sth.xl, stp.xl)
	}
}

func TestKeplerConvergence(t *testing.T) {
	// High eccentricity near perigee is the hard case for the solver.
	rec := testMolniya()
	rec.SetMeanMotion(rev2radmin(12.0)) // near-earth variant of the shape
	rec.SetEccentricity(0.6)
	k := newNearEarthCoeffs(rec, dragPrecise)
	for _, tsince := range []float64{0, 30, 60, 90, 119} {
		st := k.secular(tsince)
		out, err := k.complete(st, tsince)
		if err != nil {
			t.Fatalf("t=%f: %s", tsince, err)
		}
		r := norm(out.R)
		g := rec.GravityModel()
		// Vis-viva consistency ties position and speed together.
		expV := math.Sqrt(g.GM() * (2.0/r - 1.0/(st.a*g.Radius)))
		if !floats.EqualWithinAbs(norm(out.V), expV, 0.05) {
			t.Fatalf("t=%f: speed %f km/s, vis-viva %f", tsince, norm(out.V), expV)
		}
	}
}
