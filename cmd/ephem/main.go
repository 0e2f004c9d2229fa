// ephem generates an ephemeris table for a satellite from its mean elements.
//
// Element inputs use the usual catalog units (revolutions per day, degrees);
// they are converted to the propagator's internal radians and minutes here.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/satpass/satprop"
)

const (
	minsPerDay = 1440.0
	π          = 3.141592653589793
)

func main() {
	var (
		name    = flag.String("name", "", "satellite name")
		epochS  = flag.String("epoch", "", "element epoch, RFC3339 (required)")
		n       = flag.Float64("n", 0, "mean motion, rev/day (required)")
		ecc     = flag.Float64("e", 0, "eccentricity")
		incl    = flag.Float64("i", 0, "inclination, degrees")
		raan    = flag.Float64("raan", 0, "right ascension of ascending node, degrees")
		argp    = flag.Float64("argp", 0, "argument of perigee, degrees")
		ma      = flag.Float64("m", 0, "mean anomaly, degrees")
		ndot    = flag.Float64("ndot", 0, "first mean-motion derivative over two, rev/day²")
		nddot   = flag.Float64("nddot", 0, "second mean-motion derivative over six, rev/day³")
		bstar   = flag.Float64("bstar", 0, "drag term B*, 1/earth-radii")
		modelS  = flag.String("model", "unified", "propagation model")
		gravS   = flag.String("gravity", "", "gravity model (72old, 72, 84); defaults to the configured model")
		startT  = flag.Float64("start", 0, "first offset from epoch, minutes")
		stepT   = flag.Float64("step", 10, "step between states, minutes")
		count   = flag.Int("count", 10, "number of states")
	)
	flag.Parse()

	if *epochS == "" || *n <= 0 {
		flag.Usage()
		os.Exit(2)
	}
	epoch, err := time.Parse(time.RFC3339, *epochS)
	if err != nil {
		fatalf("invalid epoch: %s", err)
	}
	model, err := satprop.ModelFromName(*modelS)
	if err != nil {
		fatalf("%s", err)
	}

	rec := satprop.NewElements(epoch,
		*n*2*π/minsPerDay,
		*ecc,
		satprop.Deg2rad(*incl),
		satprop.Deg2rad(*raan),
		satprop.Deg2rad(*argp),
		satprop.Deg2rad(*ma),
		*ndot*2*π/(minsPerDay*minsPerDay),
		*nddot*2*π/(minsPerDay*minsPerDay*minsPerDay),
		*bstar)
	rec.Name = *name
	if *gravS != "" {
		g, err := satprop.GravityModelFromString(*gravS)
		if err != nil {
			fatalf("%s", err)
		}
		rec.SetGravityModel(g)
	}
	if err := rec.Validate(); err != nil {
		fatalf("invalid elements: %s", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "t (min)\tx (km)\ty (km)\tz (km)\tvx (km/s)\tvy (km/s)\tvz (km/s)\tr (km)\tfpa (deg)\tincl (deg)\tstatus\t")
	for i := 0; i < *count; i++ {
		tmin := *startT + float64(i)**stepT
		at := epoch.Add(time.Duration(tmin * float64(time.Minute)))
		state, err := rec.Propagate(model, at)
		if err != nil {
			w.Flush()
			fatalf("t=%+.1f min: %s", tmin, err)
		}
		h := state.AngularMomentum()
		incl := math.Acos(h[2] / math.Sqrt(h[0]*h[0]+h[1]*h[1]+h[2]*h[2]))
		fmt.Fprintf(w, "%+.1f\t%.3f\t%.3f\t%.3f\t%.6f\t%.6f\t%.6f\t%.3f\t%+.4f\t%.4f\t%s\t\n",
			tmin, state.R[0], state.R[1], state.R[2],
			state.V[0], state.V[1], state.V[2],
			state.Radius(), state.FlightPathAngle()*180/π, incl*180/π, state.Code)
	}
	w.Flush()
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "ephem: "+format+"\n", args...)
	os.Exit(1)
}
