package satprop

import (
	"math"
	"testing"
	"time"

	"github.com/gonum/floats"
)

// rev2radmin converts a catalog mean motion in rev/day to rad/min.
func rev2radmin(revPerDay float64) float64 {
	return revPerDay * twoπ / 1440.0
}

// testLEO is an ISS-like low orbit, period around 93 minutes.
func testLEO() *Elements {
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := NewElements(epoch,
		rev2radmin(15.5), 0.0006,
		Deg2rad(51.64), Deg2rad(100.0), Deg2rad(90.0), Deg2rad(30.0),
		0, 0, 3.0e-5)
	rec.Name = "LEOSAT"
	rec.CatalogNumber = 90001
	return rec
}

// testGEO sits in the synchronous resonance band.
func testGEO() *Elements {
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := NewElements(epoch,
		rev2radmin(1.0027), 0.0002,
		Deg2rad(5.0), Deg2rad(80.0), Deg2rad(30.0), Deg2rad(10.0),
		0, 0, 0)
	rec.Name = "GEOSAT"
	rec.CatalogNumber = 90002
	return rec
}

// testMolniya sits in the half-day resonance band with high eccentricity.
func testMolniya() *Elements {
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := NewElements(epoch,
		rev2radmin(2.006), 0.74,
		Deg2rad(63.4), Deg2rad(230.0), Deg2rad(270.0), Deg2rad(10.0),
		0, 0, 1.0e-5)
	rec.Name = "MOLSAT"
	rec.CatalogNumber = 90003
	return rec
}

// magicIncl is the inclination at which the Kozai correction vanishes
// (3cos²i = 1), so the recovered mean motion equals the published one.
var magicIncl = math.Acos(1.0 / math.Sqrt(3.0))

func TestElementsValidate(t *testing.T) {
	rec := testLEO()
	if err := rec.Validate(); err != nil {
		t.Fatalf("valid record rejected: %s", err)
	}
	rec.SetEccentricity(1.5)
	if err := rec.Validate(); err == nil {
		t.Fatal("eccentricity 1.5 accepted")
	} else if _, ok := err.(*BadElementsError); !ok {
		t.Fatalf("expected *BadElementsError, got %T", err)
	}
	rec.SetEccentricity(-0.1)
	if err := rec.Validate(); err == nil {
		t.Fatal("negative eccentricity accepted")
	}
}

func TestElementsPeriod(t *testing.T) {
	rec := testLEO()
	exp := 1440.0 / 15.5
	if got := rec.Period().Minutes(); !floats.EqualWithinAbs(got, exp, 1e-3) {
		t.Fatalf("period = %f min, expected %f", got, exp)
	}
	// The duration is built directly, not through text formatting.
	rec.SetMeanMotion(twoπ / 100.0)
	if d := rec.Period(); d < 100*time.Minute-time.Microsecond || d > 100*time.Minute+time.Microsecond {
		t.Fatalf("period = %s, expected 100m0s", d)
	}
}

func TestKozaiRecovery(t *testing.T) {
	// At the magic inclination the correction vanishes exactly.
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := rev2radmin(14.2)
	rec := NewElements(epoch, n, 0, magicIncl, 0, 0, 0, 0, 0, 0)
	xnodp, aodp := rec.Recovered()
	if !floats.EqualWithinAbs(xnodp, n, 1e-15) {
		t.Fatalf("recovered mean motion %v, expected %v", xnodp, n)
	}
	exp := math.Pow(rec.GravityModel().Ke()/n, 2.0/3.0)
	if !floats.EqualWithinAbs(aodp, exp, 1e-12) {
		t.Fatalf("recovered semi-major %v, expected %v", aodp, exp)
	}

	// In general the correction is small for low orbits.
	leo := testLEO()
	xnodp, _ = leo.Recovered()
	if rel := math.Abs(xnodp-leo.MeanMotion()) / leo.MeanMotion(); rel > 5e-3 {
		t.Fatalf("Kozai correction %e unexpectedly large", rel)
	}

	// Round trip: substituting the recovered pair back into the Kozai
	// relation, n = n'·(1+δ₀) with δ₀ = corr/a₀² and a₀ = a''(1-δ₀),
	// reproduces the published mean motion.
	for _, rec := range []*Elements{leo, testGEO(), testMolniya()} {
		xnodp, aodp := rec.Recovered()
		g := rec.GravityModel()
		cosio := math.Cos(rec.Inclination())
		β02 := 1.0 - rec.Eccentricity()*rec.Eccentricity()
		corr := 1.5 * g.ck2 * (3.0*cosio*cosio - 1.0) / (math.Sqrt(β02) * β02)
		δ := corr / (aodp * aodp)
		for i := 0; i < 4; i++ {
			a0 := aodp * (1.0 - δ)
			δ = corr / (a0 * a0)
		}
		if back := xnodp * (1.0 + δ); !floats.EqualWithinAbs(back, rec.MeanMotion(), 1e-12) {
			t.Fatalf("%s: round-tripped mean motion %.15f, published %.15f", rec.Name, back, rec.MeanMotion())
		}
	}
}

func TestRegimeBoundary(t *testing.T) {
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(periodMin float64) *Elements {
		return NewElements(epoch, twoπ/periodMin, 0, magicIncl, 0, 0, 0, 0, 0, 0)
	}
	if !mk(225.001).DeepSpace() {
		t.Fatal("225.001 min period not classified deep-space")
	}
	if mk(224.999).DeepSpace() {
		t.Fatal("224.999 min period classified deep-space")
	}
	if !mk(1436.0).DeepSpace() {
		t.Fatal("geosynchronous period not classified deep-space")
	}
}

func TestSettersInvalidateCache(t *testing.T) {
	rec := testLEO()
	if _, err := rec.Propagate(ModelNearEarthPrecise, rec.Epoch()); err != nil {
		t.Fatal(err)
	}
	if rec.cache(ModelNearEarthPrecise) == nil {
		t.Fatal("cache not populated after propagation")
	}
	rec.SetMeanAnomaly(Deg2rad(31.0))
	if rec.cache(ModelNearEarthPrecise) != nil {
		t.Fatal("cache survived a record mutation")
	}
	// Propagating again rebuilds it for the new version.
	if _, err := rec.Propagate(ModelNearEarthPrecise, rec.Epoch()); err != nil {
		t.Fatal(err)
	}
	if rec.cache(ModelNearEarthPrecise) == nil {
		t.Fatal("cache not rebuilt")
	}
}

func TestCachePerModel(t *testing.T) {
	rec := testLEO()
	for _, m := range []Model{ModelSimple, ModelNearEarthPrecise, ModelNearEarthHighPrec} {
		if _, err := rec.Propagate(m, rec.Epoch().Add(10*time.Minute)); err != nil {
			t.Fatalf("%s: %s", m, err)
		}
		if rec.cache(m) == nil {
			t.Fatalf("%s: no cache stored", m)
		}
	}
}
