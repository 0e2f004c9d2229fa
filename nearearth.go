package satprop

import "math"

// dragOrder selects the drag fidelity of the shared near-earth update. The
// three near-earth models are one parameterized update, not three copies.
type dragOrder uint8

const (
	// dragSimple keeps only the linear drag terms.
	dragSimple dragOrder = iota
	// dragPrecise carries the full quartic drag polynomial.
	dragPrecise
	// dragHighPrec additionally folds the record's published mean-motion
	// derivatives into the secular update.
	dragHighPrec
)

// kozaiRecover computes the un-biased ("Brouwer") mean motion and semi-major
// axis from the published Kozai mean elements by fixed-point correction.
// Mean motion in rad/min, semi-major axis in earth radii.
func kozaiRecover(rec *Elements) (xnodp, aodp float64) {
	g := rec.gravity
	a1 := math.Pow(g.ke/rec.n, 2.0/3.0)
	cosio := math.Cos(rec.i)
	θ2 := cosio * cosio
	x3thm1 := 3.0*θ2 - 1.0
	β02 := 1.0 - rec.e*rec.e
	β0 := math.Sqrt(β02)
	corr := 1.5 * g.ck2 * x3thm1 / (β0 * β02)
	δ1 := corr / (a1 * a1)
	a0 := a1 * (1.0 - δ1*(1.0/3.0+δ1*(1.0+134.0/81.0*δ1)))
	δ0 := corr / (a0 * a0)
	xnodp = rec.n / (1.0 + δ0)
	aodp = a0 / (1.0 - δ0)
	return
}

// nearEarthCoeffs is the one-time initialization shared by every model: the
// recovered mean elements and the secular, drag and periodic coefficients.
// It snapshots the record fields it needs so no aliasing survives the init.
type nearEarthCoeffs struct {
	g     GravityModel
	order dragOrder

	// Snapshot of the record.
	e0, i0, ω0, Ω0, m0  float64
	bstar, ndot, nddot  float64

	// Recovered mean elements.
	xnodp float64 // rad/min
	aodp  float64 // earth radii

	// Epoch inclination functions, used by the secular rates. The periodic
	// stage rederives its own from the current inclination.
	cosio, sinio float64

	// Secular rates.
	xmdot, omgdot, xnodot float64
	xnodcf                float64

	// Drag coefficients.
	eta, c1, c4, c5        float64
	d2, d3, d4             float64
	t2cof, t3cof, t4cof    float64
	t5cof                  float64
	omgcof, xmcof          float64
	delmo, sinmo           float64
	truncated              bool // Perigee below 220 km: linear drag only

	perigee     float64 // km above the surface at epoch
	epochStatus StatusCode
}

// newNearEarthCoeffs performs the one-time near-earth initialization for the
// record at the given drag order.
func newNearEarthCoeffs(rec *Elements, order dragOrder) *nearEarthCoeffs {
	g := rec.gravity
	k := &nearEarthCoeffs{
		g:     g,
		order: order,
		e0:    rec.e,
		i0:    rec.i,
		ω0:    rec.ω,
		Ω0:    rec.Ω,
		m0:    rec.m,
		bstar: rec.bstar,
		ndot:  rec.ndot,
		nddot: rec.nddot,
	}
	k.xnodp, k.aodp = kozaiRecover(rec)

	k.cosio = math.Cos(rec.i)
	k.sinio = math.Sin(rec.i)
	θ2 := k.cosio * k.cosio
	x3thm1 := 3.0*θ2 - 1.0
	x1mth2 := 1.0 - θ2

	eosq := rec.e * rec.e
	β02 := 1.0 - eosq
	β0 := math.Sqrt(β02)

	// Fitting parameters are lowered for perigees below 156 km.
	k.perigee = (k.aodp*(1.0-rec.e) - 1.0) * g.Radius
	if k.aodp*(1.0-rec.e) < 1.0 {
		k.epochStatus = StatusSubOrbital
	}
	s4, qoms24 := g.s, g.qoms2t
	if k.perigee < 156.0 {
		s4 = k.perigee - 78.0
		if k.perigee < 98.0 {
			s4 = 20.0
		}
		qoms24 = math.Pow((120.0-s4)/g.Radius, 4)
		s4 = s4/g.Radius + 1.0
	}
	k.truncated = order == dragSimple || k.perigee < 220.0

	pinvsq := 1.0 / (k.aodp * k.aodp * β02 * β02)
	tsi := 1.0 / (k.aodp - s4)
	k.eta = k.aodp * rec.e * tsi
	etasq := k.eta * k.eta
	eeta := rec.e * k.eta
	psisq := math.Abs(1.0 - etasq)
	if psisq == 0 {
		psisq = 1e-12
	}
	coef := qoms24 * math.Pow(tsi, 4)
	coef1 := coef / math.Pow(psisq, 3.5)

	c2 := coef1 * k.xnodp * (k.aodp*(1.0+1.5*etasq+eeta*(4.0+etasq)) +
		0.75*g.ck2*tsi/psisq*x3thm1*(8.0+3.0*etasq*(8.0+etasq)))
	k.c1 = rec.bstar * c2
	k.c4 = 2.0 * k.xnodp * coef1 * k.aodp * β02 *
		(k.eta*(2.0+0.5*etasq) + rec.e*(0.5+2.0*etasq) -
			2.0*g.ck2*tsi/(k.aodp*psisq)*
				(-3.0*x3thm1*(1.0-2.0*eeta+etasq*(1.5-0.5*eeta))+
					0.75*x1mth2*(2.0*etasq-eeta*(1.0+etasq))*math.Cos(2.0*rec.ω)))

	θ4 := θ2 * θ2
	temp1 := 3.0 * g.ck2 * pinvsq * k.xnodp
	temp2 := temp1 * g.ck2 * pinvsq
	temp3 := 1.25 * g.ck4 * pinvsq * pinvsq * k.xnodp
	k.xmdot = k.xnodp + 0.5*temp1*β0*x3thm1 +
		0.0625*temp2*β0*(13.0-78.0*θ2+137.0*θ4)
	x1m5th := 1.0 - 5.0*θ2
	k.omgdot = -0.5*temp1*x1m5th +
		0.0625*temp2*(7.0-114.0*θ2+395.0*θ4) +
		temp3*(3.0-36.0*θ2+49.0*θ4)
	xhdot1 := -temp1 * k.cosio
	k.xnodot = xhdot1 + (0.5*temp2*(4.0-19.0*θ2)+
		2.0*temp3*(3.0-7.0*θ2))*k.cosio
	k.xnodcf = 3.5 * β02 * xhdot1 * k.c1
	k.t2cof = 1.5 * k.c1

	var c3 float64
	if rec.e > 1.0e-4 {
		c3 = coef * tsi * g.a3ovk2 * k.xnodp * k.sinio / rec.e
	}
	k.c5 = 2.0 * coef1 * k.aodp * β02 * (1.0 + 2.75*(etasq+eeta) + eeta*etasq)
	k.omgcof = rec.bstar * c3 * math.Cos(rec.ω)
	if rec.e > 1.0e-4 {
		k.xmcof = -2.0 / 3.0 * coef * rec.bstar / eeta
	}
	k.delmo = math.Pow(1.0+k.eta*math.Cos(rec.m), 3)
	k.sinmo = math.Sin(rec.m)

	if !k.truncated {
		c1sq := k.c1 * k.c1
		k.d2 = 4.0 * k.aodp * tsi * c1sq
		dtemp := k.d2 * tsi * k.c1 / 3.0
		k.d3 = (17.0*k.aodp + s4) * dtemp
		k.d4 = 0.5 * dtemp * k.aodp * tsi * (221.0*k.aodp + 31.0*s4) * k.c1
		k.t3cof = k.d2 + 2.0*c1sq
		k.t4cof = 0.25 * (3.0*k.d3 + k.c1*(12.0*k.d2+10.0*c1sq))
		k.t5cof = 0.2 * (3.0*k.d4 + 12.0*k.c1*k.d3 + 6.0*k.d2*k.d2 +
			15.0*c1sq*(2.0*k.d2+c1sq))
	}
	return k
}

// meanState holds the secularly updated mean elements handed to the Kepler
// and short-period stage. Angles in radians, a in earth radii, xn in rad/min.
type meanState struct {
	a, e   float64
	xl     float64 // Mean longitude M + ω + Ω
	xn     float64
	ω, Ω, i float64
}

// ndotFactor is the semi-major contraction implied by the published
// mean-motion derivatives; only the high-precision order applies it.
func (k *nearEarthCoeffs) ndotFactor(tsince float64) float64 {
	if k.order != dragHighPrec || (k.ndot == 0 && k.nddot == 0) {
		return 1.0
	}
	xn := k.xnodp + 2.0*k.ndot*tsince + 3.0*k.nddot*tsince*tsince
	if xn <= 0 {
		return 1.0
	}
	return math.Pow(k.xnodp/xn, 1.0/3.0)
}

// secular applies the near-earth secular gravity and drag corrections and
// returns the mean elements at tsince minutes after epoch.
func (k *nearEarthCoeffs) secular(tsince float64) meanState {
	xmdf := k.m0 + k.xmdot*tsince
	omgadf := k.ω0 + k.omgdot*tsince
	xnoddf := k.Ω0 + k.xnodot*tsince

	ω := omgadf
	xmp := xmdf
	tsq := tsince * tsince
	xnode := xnoddf + k.xnodcf*tsq
	tempa := 1.0 - k.c1*tsince
	tempe := k.bstar * k.c4 * tsince
	templ := k.t2cof * tsq

	if !k.truncated {
		delomg := k.omgcof * tsince
		var delm float64
		if k.eta != 0 {
			delm = k.xmcof * (math.Pow(1.0+k.eta*math.Cos(xmdf), 3) - k.delmo)
		}
		temp := delomg + delm
		xmp += temp
		ω -= temp
		tcube := tsq * tsince
		tfour := tsince * tcube
		tempa = tempa - k.d2*tsq - k.d3*tcube - k.d4*tfour
		tempe += k.bstar * k.c5 * (math.Sin(xmp) - k.sinmo)
		templ += k.t3cof*tcube + tfour*(k.t4cof+tsince*k.t5cof)
	}
	if k.order == dragHighPrec {
		xmp += k.ndot*tsq + k.nddot*tsq*tsince
		tempa *= k.ndotFactor(tsince)
	}

	a := k.aodp * tempa * tempa
	e := k.e0 - tempe
	xl := xmp + ω + xnode + k.xnodp*templ
	// The osculating mean motion tracks the drag-contracted semi-major axis.
	xn := k.g.ke / math.Pow(a, 1.5)
	return meanState{a: a, e: e, xl: xl, xn: xn, ω: ω, Ω: xnode, i: k.i0}
}

// keplerIterations bounds the fixed-point solve of Kepler's equation.
const keplerIterations = 10

// keplerTolerance is the residual below which the solve stops (radians).
const keplerTolerance = 1e-6

// complete solves Kepler's equation in eccentricity-vector form, applies the
// long- and short-period periodic corrections and rotates the orbit-plane
// state into the inertial frame. Position in km, velocity in km/s.
func (k *nearEarthCoeffs) complete(st meanState, tsince float64) (State, error) {
	g := k.g
	β2 := 1.0 - st.e*st.e

	// The periodic corrections may have moved the inclination, so the
	// inclination functions are rederived from the current state.
	sinio, cosio := math.Sincos(st.i)
	θ2 := cosio * cosio
	x3thm1 := 3.0*θ2 - 1.0
	x1mth2 := 1.0 - θ2
	x7thm1 := 7.0*θ2 - 1.0
	aycof := 0.25 * g.a3ovk2 * sinio
	// Guarded against the retrograde-equatorial pole at cosio = -1.
	var xlcof float64
	if math.Abs(cosio+1.0) > 1.5e-12 {
		xlcof = 0.125 * g.a3ovk2 * sinio * (3.0 + 5.0*cosio) / (1.0 + cosio)
	} else {
		xlcof = 0.125 * g.a3ovk2 * sinio * (3.0 + 5.0*cosio) / 1.5e-12
	}

	// Long-period periodics. The eccentricity vector (axn, ayn) keeps this
	// stage well defined at e = 0: nothing here divides by the eccentricity.
	axn := st.e * math.Cos(st.ω)
	temp := 1.0 / (st.a * β2)
	xll := temp * xlcof * axn
	aynl := temp * aycof
	xlt := st.xl + xll
	ayn := st.e*math.Sin(st.ω) + aynl

	elsq := axn*axn + ayn*ayn
	if elsq >= 1.0 {
		return State{}, &PropagationError{Code: StatusBadPerturbedEcc, Tsince: tsince}
	}

	// Kepler's equation, fixed-point iteration on the eccentric longitude.
	capu := mod2π(xlt - st.Ω)
	epw := capu
	var sinepw, cosepw, ecose, esine float64
	for i := 0; i < keplerIterations; i++ {
		sinepw, cosepw = math.Sincos(epw)
		ecose = axn*cosepw + ayn*sinepw
		esine = axn*sinepw - ayn*cosepw
		du := (capu - epw + esine) / (1.0 - ecose)
		epw += du
		if math.Abs(du) < keplerTolerance {
			sinepw, cosepw = math.Sincos(epw)
			ecose = axn*cosepw + ayn*sinepw
			esine = axn*sinepw - ayn*cosepw
			break
		}
	}

	// Short-period preliminary quantities.
	pl := st.a * (1.0 - elsq)
	if pl < 0 {
		return State{}, &PropagationError{Code: StatusBadSemiLatusRectum, Tsince: tsince}
	}
	r := st.a * (1.0 - ecose)
	if r == 0 {
		r = 1e-9
	}
	invR := 1.0 / r
	rdot := g.ke * math.Sqrt(st.a) * esine * invR
	rfdot := g.ke * math.Sqrt(pl) * invR
	βl := math.Sqrt(1.0 - elsq)
	temp3 := 1.0 / (1.0 + βl)
	cosu := st.a * invR * (cosepw - axn + ayn*esine*temp3)
	sinu := st.a * invR * (sinepw - ayn - axn*esine*temp3)
	u := math.Atan2(sinu, cosu)
	sin2u := 2.0 * sinu * cosu
	cos2u := 2.0*cosu*cosu - 1.0
	invPl := 1.0 / pl
	temp4 := g.ck2 * invPl
	temp5 := temp4 * invPl

	// Short-period corrections at twice the orbital frequency.
	rk := r*(1.0-1.5*temp5*βl*x3thm1) + 0.5*temp4*x1mth2*cos2u
	uk := u - 0.25*temp5*x7thm1*sin2u
	xnodek := st.Ω + 1.5*temp5*cosio*sin2u
	xinck := st.i + 1.5*temp5*cosio*sinio*cos2u
	rdotk := rdot - st.xn*temp4*x1mth2*sin2u
	rfdotk := rfdot + st.xn*temp4*(x1mth2*cos2u+1.5*x3thm1)

	// Orientation vectors and the rotation to the inertial frame.
	sinuk, cosuk := math.Sincos(uk)
	sinik, cosik := math.Sincos(xinck)
	sinnok, cosnok := math.Sincos(xnodek)
	xmx := -sinnok * cosik
	xmy := cosnok * cosik
	ux := xmx*sinuk + cosnok*cosuk
	uy := xmy*sinuk + sinnok*cosuk
	uz := sinik * sinuk
	vx := xmx*cosuk - cosnok*sinuk
	vy := xmy*cosuk - sinnok*sinuk
	vz := sinik * cosuk

	vFactor := g.Radius / 60.0
	out := State{
		R: []float64{rk * ux * g.Radius, rk * uy * g.Radius, rk * uz * g.Radius},
		V: []float64{
			(rdotk*ux + rfdotk*vx) * vFactor,
			(rdotk*uy + rfdotk*vy) * vFactor,
			(rdotk*uz + rfdotk*vz) * vFactor,
		},
		Code: k.epochStatus,
	}
	if rk < 1.0 {
		out.Code = StatusDecayed
	}
	return out, nil
}
