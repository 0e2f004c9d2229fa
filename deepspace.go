package satprop

import "math"

// Deep-space perturbation constants, from Spacetrack Report #3.
const (
	zns    = 1.19459e-5
	c1ss   = 2.9864797e-6
	zes    = 1.675e-2
	znl    = 1.5835218e-4
	c1l    = 4.7968065e-7
	zel    = 5.490e-2
	zcosgs = 0.1945905
	zsings = -0.98088458
	zcosis = 0.91744867
	zsinis = 0.39785416
	thdt   = 4.3752691e-3 // Earth rotation, rad/min

	q22 = 1.7891679e-6
	q31 = 2.1460748e-6
	q33 = 2.2123015e-7

	root22 = 1.7891679e-6
	root32 = 3.7393792e-7
	root44 = 7.3636953e-9
	root52 = 1.1428639e-7
	root54 = 2.1765803e-9

	g22 = 5.7686396
	g32 = 9.5240898e-1
	g44 = 1.8014998
	g52 = 1.0508330
	g54 = 4.4108898

	fasx2 = 0.13130908
	fasx4 = 2.8843198
	fasx6 = 0.37448087

	stepp = 720.0    // Integrator step, minutes
	step2 = 259200.0 // stepp²/2

	// periodicRefresh is how far the time argument must move before the
	// lunar and solar trigonometric terms are recomputed.
	periodicRefresh = 30.0

	// lyddaneLimit switches the inclination-dependent application of the
	// periodic corrections to the Lyddane form near the equator.
	lyddaneLimit = 0.2
)

// Resonance regimes handled by the secular integrator.
type resonance uint8

const (
	resonanceNone resonance = iota
	resonanceSynchronous
	resonanceHalfDay
)

// Synchronous band on the recovered mean motion (rad/min), roughly periods
// between 20 and 30 hours.
const (
	syncLow  = 0.0034906585
	syncHigh = 0.0052359877
)

// Half-day band, periods near 12 hours, significant only above e = 0.5.
const (
	halfDayLow  = 0.00826
	halfDayHigh = 0.00924
	halfDayEcc  = 0.5
)

// thirdBodyGeom is the epoch geometry and strength of one perturbing body.
type thirdBodyGeom struct {
	zcosg, zsing float64
	zcosi, zsini float64
	zcosh, zsinh float64
	cc, zn, ze   float64
}

// thirdBody holds the periodic coefficients and secular contribution of one
// perturbing body, computed once at initialization.
type thirdBody struct {
	zn, ze, zmo float64

	e2, e3         float64
	xi2, xi3       float64
	xl2, xl3, xl4  float64
	gh2, gh3, gh4  float64
	h2, h3         float64

	se, si, sl, sgh, sh float64
}

// periodicBlock is one body's contribution to the five periodic corrections.
type periodicBlock struct {
	pe, pinc, pl, pgh, ph float64
}

// deepSpace carries the lunar, solar and resonance state for orbits with
// periods of 225 minutes and above.
type deepSpace struct {
	thgr   float64 // Sidereal time at epoch
	xnq    float64 // Recovered mean motion
	eq     float64 // Epoch eccentricity
	xqncl  float64 // Epoch inclination
	xmao   float64 // Epoch mean anomaly
	omegaq float64 // Epoch argument of perigee
	omgdt  float64 // Secular perigee rate

	sun, moon thirdBody

	// Combined secular rates on mean anomaly, perigee, node, eccentricity
	// and inclination.
	ssl, ssg, ssh, sse, ssi float64

	kind resonance

	// Synchronous terms.
	del1, del2, del3 float64

	// Half-day terms.
	d2201, d2211 float64
	d3210, d3222 float64
	d4410, d4422 float64
	d5220, d5232 float64
	d5421, d5433 float64

	xlamo, xfact float64

	// Integrator state, mutated during propagation.
	xli, xni, atime float64

	// Periodic cache, refreshed every periodicRefresh minutes.
	savtsn float64
	cached periodicBlock
}

// dsState is the mean-element state threaded through the deep-space secular
// and periodic stages. Everything is by value; no stage aliases another.
type dsState struct {
	xll    float64 // Mean anomaly term (plus the drag longitude correction)
	ω, Ω   float64
	e, i   float64
	xn     float64
}

// thirdBodyTerms evaluates the lunar-solar expansion for one body. The solar
// and lunar cases differ only in the geometry handed in.
func thirdBodyTerms(geo thirdBodyGeom, eq, siniq, cosiq, sinomo, cosomo, rteqsq, xnoi, xqncl float64) thirdBody {
	eqsq := eq * eq
	bsq := rteqsq * rteqsq

	a1 := geo.zcosg*geo.zcosh + geo.zsing*geo.zcosi*geo.zsinh
	a3 := -geo.zsing*geo.zcosh + geo.zcosg*geo.zcosi*geo.zsinh
	a7 := -geo.zcosg*geo.zsinh + geo.zsing*geo.zcosi*geo.zcosh
	a8 := geo.zsing * geo.zsini
	a9 := geo.zsing*geo.zsinh + geo.zcosg*geo.zcosi*geo.zcosh
	a10 := geo.zcosg * geo.zsini
	a2 := cosiq*a7 + siniq*a8
	a4 := cosiq*a9 + siniq*a10
	a5 := -siniq*a7 + cosiq*a8
	a6 := -siniq*a9 + cosiq*a10

	x1 := a1*cosomo + a2*sinomo
	x2 := a3*cosomo + a4*sinomo
	x3 := -a1*sinomo + a2*cosomo
	x4 := -a3*sinomo + a4*cosomo
	x5 := a5 * sinomo
	x6 := a6 * sinomo
	x7 := a5 * cosomo
	x8 := a6 * cosomo

	z31 := 12.0*x1*x1 - 3.0*x3*x3
	z32 := 24.0*x1*x2 - 6.0*x3*x4
	z33 := 12.0*x2*x2 - 3.0*x4*x4
	z1 := 3.0*(a1*a1+a2*a2) + z31*eqsq
	z2 := 6.0*(a1*a3+a2*a4) + z32*eqsq
	z3 := 3.0*(a3*a3+a4*a4) + z33*eqsq
	z11 := -6.0*a1*a5 + eqsq*(-24.0*x1*x7-6.0*x3*x5)
	z12 := -6.0*(a1*a6+a3*a5) + eqsq*(-24.0*(x2*x7+x1*x8)-6.0*(x3*x6+x4*x5))
	z13 := -6.0*a3*a6 + eqsq*(-24.0*x2*x8-6.0*x4*x6)
	z21 := 6.0*a2*a5 + eqsq*(24.0*x1*x5-6.0*x3*x7)
	z22 := 6.0*(a4*a5+a2*a6) + eqsq*(24.0*(x2*x5+x1*x6)-6.0*(x4*x7+x3*x8))
	z23 := 6.0*a4*a6 + eqsq*(24.0*x2*x6-6.0*x4*x8)
	z1 = z1 + z1 + bsq*z31
	z2 = z2 + z2 + bsq*z32
	z3 = z3 + z3 + bsq*z33

	s3 := geo.cc * xnoi
	s2 := -0.5 * s3 / rteqsq
	s4 := s3 * rteqsq
	s1 := -15.0 * eq * s4
	s5 := x1*x3 + x2*x4
	s6 := x2*x3 + x1*x4
	s7 := x2*x4 - x1*x3

	b := thirdBody{zn: geo.zn, ze: geo.ze}
	b.se = s1 * geo.zn * s5
	b.si = s2 * geo.zn * (z11 + z13)
	b.sl = -geo.zn * s3 * (z1 + z3 - 14.0 - 6.0*eqsq)
	b.sgh = s4 * geo.zn * (z31 + z33 - 6.0)
	b.sh = -geo.zn * s2 * (z21 + z23)
	// Apsidal terms degenerate near the equator.
	if xqncl < 5.2359877e-2 {
		b.sh = 0
	}
	b.e2 = 2.0 * s1 * s6
	b.e3 = 2.0 * s1 * s7
	b.xi2 = 2.0 * s2 * z12
	b.xi3 = 2.0 * s2 * (z13 - z11)
	b.xl2 = -2.0 * s3 * z2
	b.xl3 = -2.0 * s3 * (z3 - z1)
	b.xl4 = -2.0 * s3 * (-21.0 - 9.0*eqsq) * geo.ze
	b.gh2 = 2.0 * s4 * z32
	b.gh3 = 2.0 * s4 * (z33 - z31)
	b.gh4 = -18.0 * s4 * geo.ze
	b.h2 = -2.0 * s2 * z22
	b.h3 = -2.0 * s2 * (z23 - z21)
	return b
}

// newDeepSpace performs the deep-space initialization for the record using
// the already recovered near-earth coefficients.
func newDeepSpace(rec *Elements, k *nearEarthCoeffs) *deepSpace {
	d := &deepSpace{
		thgr:   gstime(rec.epoch),
		xnq:    k.xnodp,
		eq:     rec.e,
		xqncl:  rec.i,
		xmao:   rec.m,
		omegaq: rec.ω,
		omgdt:  k.omgdot,
		savtsn: 1e20,
	}

	eqsq := rec.e * rec.e
	rteqsq := math.Sqrt(1.0 - eqsq)
	siniq := k.sinio
	cosiq := k.cosio
	cosq2 := cosiq * cosiq
	sinomo := math.Sin(rec.ω)
	cosomo := math.Cos(rec.ω)
	sinq := math.Sin(rec.Ω)
	cosq := math.Cos(rec.Ω)
	aqnv := 1.0 / k.aodp
	xnoi := 1.0 / d.xnq

	// Lunar geometry at epoch.
	day := daysSince1950(rec.epoch) + 18261.5
	xnodce := 4.5236020 - 9.2422029e-4*day
	stem := math.Sin(xnodce)
	ctem := math.Cos(xnodce)
	zcosil := 0.91375164 - 0.03568096*ctem
	zsinil := math.Sqrt(1.0 - zcosil*zcosil)
	zsinhl := 0.089683511 * stem / zsinil
	zcoshl := math.Sqrt(1.0 - zsinhl*zsinhl)
	c := 4.7199672 + 0.22997150*day
	gam := 5.8351514 + 0.0019443680*day
	zmol := mod2π(c - gam)
	zx := 0.39785416 * stem / zsinil
	zy := zcoshl*ctem + 0.91744867*zsinhl*stem
	zx = math.Atan2(zx, zy) + gam - xnodce
	zcosgl := math.Cos(zx)
	zsingl := math.Sin(zx)
	zmos := mod2π(6.2565837 + 0.017201977*day)

	d.sun = thirdBodyTerms(thirdBodyGeom{
		zcosg: zcosgs, zsing: zsings,
		zcosi: zcosis, zsini: zsinis,
		zcosh: cosq, zsinh: sinq,
		cc: c1ss, zn: zns, ze: zes,
	}, rec.e, siniq, cosiq, sinomo, cosomo, rteqsq, xnoi, rec.i)
	d.sun.zmo = zmos

	d.moon = thirdBodyTerms(thirdBodyGeom{
		zcosg: zcosgl, zsing: zsingl,
		zcosi: zcosil, zsini: zsinil,
		zcosh: zcoshl*cosq + zsinhl*sinq,
		zsinh: sinq*zcoshl - cosq*zsinhl,
		cc: c1l, zn: znl, ze: zel,
	}, rec.e, siniq, cosiq, sinomo, cosomo, rteqsq, xnoi, rec.i)
	d.moon.zmo = zmol

	for _, b := range []thirdBody{d.sun, d.moon} {
		d.sse += b.se
		d.ssi += b.si
		d.ssl += b.sl
		d.ssg += b.sgh
		if b.sh != 0 {
			d.ssg -= cosiq / siniq * b.sh
			d.ssh += b.sh / siniq
		}
	}

	xpidot := k.omgdot + k.xnodot
	eoc := rec.e * eqsq

	switch {
	case d.xnq > syncLow && d.xnq < syncHigh:
		d.kind = resonanceSynchronous
		g200 := 1.0 + eqsq*(-2.5+0.8125*eqsq)
		g310 := 1.0 + 2.0*eqsq
		g300 := 1.0 + eqsq*(-6.0+6.60937*eqsq)
		f220 := 0.75 * (1.0 + cosiq) * (1.0 + cosiq)
		f311 := 0.9375*siniq*siniq*(1.0+3.0*cosiq) - 0.75*(1.0+cosiq)
		f330 := 1.0 + cosiq
		f330 = 1.875 * f330 * f330 * f330
		d.del1 = 3.0 * d.xnq * d.xnq * aqnv * aqnv
		d.del2 = 2.0 * d.del1 * f220 * g200 * q22
		d.del3 = 3.0 * d.del1 * f330 * g300 * q33 * aqnv
		d.del1 = d.del1 * f311 * g310 * q31 * aqnv
		d.xlamo = rec.m + rec.Ω + rec.ω - d.thgr
		bfact := k.xmdot + xpidot - thdt + d.ssl + d.ssg + d.ssh
		d.xfact = bfact - d.xnq

	case d.xnq >= halfDayLow && d.xnq <= halfDayHigh && rec.e >= halfDayEcc:
		d.kind = resonanceHalfDay
		eq := rec.e
		g201 := -0.306 - (eq-0.64)*0.44
		var g211, g310, g322, g410, g422, g520 float64
		if eq <= 0.65 {
			g211 = 3.616 - 13.247*eq + 16.290*eqsq
			g310 = -19.302 + 117.390*eq - 228.419*eqsq + 156.591*eoc
			g322 = -18.9068 + 109.7927*eq - 214.6334*eqsq + 146.5816*eoc
			g410 = -41.122 + 242.694*eq - 471.094*eqsq + 313.953*eoc
			g422 = -146.407 + 841.880*eq - 1629.014*eqsq + 1083.435*eoc
			g520 = -532.114 + 3017.977*eq - 5740.0*eqsq + 3708.276*eoc
		} else {
			g211 = -72.099 + 331.819*eq - 508.738*eqsq + 266.724*eoc
			g310 = -346.844 + 1582.851*eq - 2415.925*eqsq + 1246.113*eoc
			g322 = -342.585 + 1554.908*eq - 2366.899*eqsq + 1215.972*eoc
			g410 = -1052.797 + 4758.686*eq - 7193.992*eqsq + 3651.957*eoc
			g422 = -3581.69 + 16178.11*eq - 24462.77*eqsq + 12422.52*eoc
			if eq <= 0.715 {
				g520 = 1464.74 - 4664.75*eq + 3763.64*eqsq
			} else {
				g520 = -5149.66 + 29936.92*eq - 54087.36*eqsq + 31324.56*eoc
			}
		}
		var g533, g521, g532 float64
		if eq < 0.7 {
			g533 = -919.2277 + 4988.61*eq - 9064.77*eqsq + 5542.21*eoc
			g521 = -822.71072 + 4568.6173*eq - 8491.4146*eqsq + 4640.7466*eoc
			g532 = -853.666 + 4690.25*eq - 8624.77*eqsq + 5341.4*eoc
		} else {
			g533 = -37995.78 + 161616.52*eq - 229838.2*eqsq + 109377.94*eoc
			g521 = -51752.104 + 218913.95*eq - 309468.16*eqsq + 146349.42*eoc
			g532 = -40023.88 + 170470.89*eq - 242699.48*eqsq + 115605.82*eoc
		}

		sini2 := siniq * siniq
		f220 := 0.75 * (1.0 + 2.0*cosiq + cosq2)
		f221 := 1.5 * sini2
		f321 := 1.875 * siniq * (1.0 - 2.0*cosiq - 3.0*cosq2)
		f322 := -1.875 * siniq * (1.0 + 2.0*cosiq - 3.0*cosq2)
		f441 := 35.0 * sini2 * f220
		f442 := 39.3750 * sini2 * sini2
		f522 := 9.84375 * siniq * (sini2*(1.0-2.0*cosiq-5.0*cosq2) +
			0.33333333*(-2.0+4.0*cosiq+6.0*cosq2))
		f523 := siniq * (4.92187512*sini2*(-2.0-4.0*cosiq+10.0*cosq2) +
			6.56250012*(1.0+2.0*cosiq-3.0*cosq2))
		f542 := 29.53125 * siniq * (2.0 - 8.0*cosiq + cosq2*(-12.0+8.0*cosiq+10.0*cosq2))
		f543 := 29.53125 * siniq * (-2.0 - 8.0*cosiq + cosq2*(12.0+8.0*cosiq-10.0*cosq2))

		xno2 := d.xnq * d.xnq
		ainv2 := aqnv * aqnv
		temp1 := 3.0 * xno2 * ainv2
		temp := temp1 * root22
		d.d2201 = temp * f220 * g201
		d.d2211 = temp * f221 * g211
		temp1 *= aqnv
		temp = temp1 * root32
		d.d3210 = temp * f321 * g310
		d.d3222 = temp * f322 * g322
		temp1 *= aqnv
		temp = 2.0 * temp1 * root44
		d.d4410 = temp * f441 * g410
		d.d4422 = temp * f442 * g422
		temp1 *= aqnv
		temp = temp1 * root52
		d.d5220 = temp * f522 * g520
		d.d5232 = temp * f523 * g532
		temp = 2.0 * temp1 * root54
		d.d5421 = temp * f542 * g521
		d.d5433 = temp * f543 * g533
		d.xlamo = rec.m + 2.0*rec.Ω - 2.0*d.thgr
		bfact := k.xmdot + k.xnodot + k.xnodot - thdt - thdt +
			d.ssl + d.ssh + d.ssh
		d.xfact = bfact - d.xnq
	}

	if d.kind != resonanceNone {
		d.xli = d.xlamo
		d.xni = d.xnq
		d.atime = 0
	}
	return d
}

// dots evaluates the resonance accelerations at the current integrator state.
func (d *deepSpace) dots() (xndot, xnddt, xldot float64) {
	if d.kind == resonanceSynchronous {
		xndot = d.del1*math.Sin(d.xli-fasx2) +
			d.del2*math.Sin(2.0*(d.xli-fasx4)) +
			d.del3*math.Sin(3.0*(d.xli-fasx6))
		xnddt = d.del1*math.Cos(d.xli-fasx2) +
			2.0*d.del2*math.Cos(2.0*(d.xli-fasx4)) +
			3.0*d.del3*math.Cos(3.0*(d.xli-fasx6))
	} else {
		xomi := d.omegaq + d.omgdt*d.atime
		x2omi := xomi + xomi
		x2li := d.xli + d.xli
		xndot = d.d2201*math.Sin(x2omi+d.xli-g22) +
			d.d2211*math.Sin(d.xli-g22) +
			d.d3210*math.Sin(xomi+d.xli-g32) +
			d.d3222*math.Sin(-xomi+d.xli-g32) +
			d.d4410*math.Sin(x2omi+x2li-g44) +
			d.d4422*math.Sin(x2li-g44) +
			d.d5220*math.Sin(xomi+d.xli-g52) +
			d.d5232*math.Sin(-xomi+d.xli-g52) +
			d.d5421*math.Sin(xomi+x2li-g54) +
			d.d5433*math.Sin(-xomi+x2li-g54)
		xnddt = d.d2201*math.Cos(x2omi+d.xli-g22) +
			d.d2211*math.Cos(d.xli-g22) +
			d.d3210*math.Cos(xomi+d.xli-g32) +
			d.d3222*math.Cos(-xomi+d.xli-g32) +
			d.d5220*math.Cos(xomi+d.xli-g52) +
			d.d5232*math.Cos(-xomi+d.xli-g52) +
			2.0*(d.d4410*math.Cos(x2omi+x2li-g44)+
				d.d4422*math.Cos(x2li-g44)+
				d.d5421*math.Cos(xomi+x2li-g54)+
				d.d5433*math.Cos(-xomi+x2li-g54))
	}
	xldot = d.xni + d.xfact
	xnddt *= xldot
	return
}

// secular applies the deep-space secular rates and, for resonant orbits,
// advances the numerical integrator to tsince. The integrator restarts from
// epoch whenever tsince is on the other side of epoch from the last call or
// closer to epoch than the stored state.
func (d *deepSpace) secular(xll, omgadf, xnode, tsince float64) dsState {
	st := dsState{
		xll: xll + d.ssl*tsince,
		ω:   omgadf + d.ssg*tsince,
		Ω:   xnode + d.ssh*tsince,
		e:   d.eq + d.sse*tsince,
		i:   d.xqncl + d.ssi*tsince,
		xn:  d.xnq,
	}
	if st.i < 0 {
		st.i = -st.i
		st.Ω += math.Pi
		st.ω -= math.Pi
	}
	if d.kind == resonanceNone {
		return st
	}

	if d.atime == 0 || tsince*d.atime <= 0 || math.Abs(tsince) < math.Abs(d.atime) {
		d.atime = 0
		d.xni = d.xnq
		d.xli = d.xlamo
	}
	delt := stepp
	if tsince < 0 {
		delt = -stepp
	}
	for math.Abs(tsince-d.atime) >= stepp {
		xndot, xnddt, xldot := d.dots()
		d.xli += xldot*delt + xndot*step2
		d.xni += xndot*delt + xnddt*step2
		d.atime += delt
	}
	ft := tsince - d.atime
	xndot, xnddt, xldot := d.dots()
	st.xn = d.xni + xndot*ft + xnddt*ft*ft*0.5
	xl := d.xli + xldot*ft + xndot*ft*ft*0.5
	temp := -st.Ω + d.thgr + tsince*thdt
	if d.kind == resonanceSynchronous {
		st.xll = xl - st.ω + temp
	} else {
		st.xll = xl + temp + temp
	}
	return st
}

// bodyPeriodics evaluates one body's long-period corrections at tsince.
func bodyPeriodics(b thirdBody, tsince float64) periodicBlock {
	zm := b.zmo + b.zn*tsince
	zf := zm + 2.0*b.ze*math.Sin(zm)
	sinzf := math.Sin(zf)
	f2 := 0.5*sinzf*sinzf - 0.25
	f3 := -0.5 * sinzf * math.Cos(zf)
	return periodicBlock{
		pe:   b.e2*f2 + b.e3*f3,
		pinc: b.xi2*f2 + b.xi3*f3,
		pl:   b.xl2*f2 + b.xl3*f3 + b.xl4*sinzf,
		pgh:  b.gh2*f2 + b.gh3*f3 + b.gh4*sinzf,
		ph:   b.h2*f2 + b.h3*f3,
	}
}

// periodics applies the lunar and solar periodic corrections to the state.
// The trigonometric terms are recomputed only when tsince has moved by
// periodicRefresh minutes or more since the last evaluation, so repeated
// calls at the same time argument reuse identical corrections.
func (d *deepSpace) periodics(st dsState, tsince float64) dsState {
	if math.Abs(d.savtsn-tsince) >= periodicRefresh {
		d.savtsn = tsince
		sun := bodyPeriodics(d.sun, tsince)
		moon := bodyPeriodics(d.moon, tsince)
		d.cached = periodicBlock{
			pe:   sun.pe + moon.pe,
			pinc: sun.pinc + moon.pinc,
			pl:   sun.pl + moon.pl,
			pgh:  sun.pgh + moon.pgh,
			ph:   sun.ph + moon.ph,
		}
	}
	p := d.cached

	st.i += p.pinc
	st.e += p.pe
	sinis := math.Sin(st.i)
	cosis := math.Cos(st.i)

	if d.xqncl >= lyddaneLimit {
		// High inclination: the corrections apply directly.
		ph := p.ph / math.Sin(d.xqncl)
		pgh := p.pgh - math.Cos(d.xqncl)*ph
		st.ω += pgh
		st.Ω += ph
		st.xll += p.pl
		return st
	}

	// Lyddane form near the equator, working on the projected node vector.
	sinok := math.Sin(st.Ω)
	cosok := math.Cos(st.Ω)
	alfdp := sinis*sinok + p.ph*cosok + p.pinc*cosis*sinok
	betdp := sinis*cosok - p.ph*sinok + p.pinc*cosis*cosok
	xls := st.xll + st.ω + cosis*st.Ω + p.pl + p.pgh - p.pinc*st.Ω*sinis
	xnoh := st.Ω
	st.Ω = math.Atan2(alfdp, betdp)
	// Keep the node on the same branch as before the correction.
	if math.Abs(xnoh-st.Ω) > math.Pi {
		st.Ω += sign(xnoh-st.Ω) * twoπ
	}
	st.xll += p.pl
	st.ω = xls - st.xll - cosis*st.Ω
	return st
}
