package satprop

import "fmt"

// StatusCode is the numeric status taxonomy owned by the unified model. It is
// re-evaluated on every call; codes 1-4 denote analytic breakdown and abort
// the call, codes 5-6 are informational and still yield a state vector.
type StatusCode int

const (
	// StatusOK means the propagation completed cleanly.
	StatusOK StatusCode = iota
	// StatusBadMeanElements: mean eccentricity left [-0.001, 1) or the mean
	// semi-major axis dropped below 0.95 earth radii.
	StatusBadMeanElements
	// StatusBadMeanMotion: mean motion is not strictly positive.
	StatusBadMeanMotion
	// StatusBadPerturbedEcc: the perturbed eccentricity left [0, 1].
	StatusBadPerturbedEcc
	// StatusBadSemiLatusRectum: the semi-latus rectum turned negative.
	StatusBadSemiLatusRectum
	// StatusSubOrbital: the epoch perigee sits below one earth radius.
	StatusSubOrbital
	// StatusDecayed: the computed radius dropped below one earth radius.
	StatusDecayed
)

var statusMessages = map[StatusCode]string{
	StatusOK:                 "ok",
	StatusBadMeanElements:    "mean eccentricity or semi-major axis out of range",
	StatusBadMeanMotion:      "mean motion is not positive",
	StatusBadPerturbedEcc:    "perturbed eccentricity out of [0, 1]",
	StatusBadSemiLatusRectum: "semi-latus rectum is negative",
	StatusSubOrbital:         "perigee below one earth radius at epoch",
	StatusDecayed:            "computed radius below one earth radius (decayed)",
}

// Fatal returns whether this status aborts the call without a state vector.
func (c StatusCode) Fatal() bool {
	return c >= StatusBadMeanElements && c <= StatusBadSemiLatusRectum
}

// String implements the Stringer interface.
func (c StatusCode) String() string {
	if msg, found := statusMessages[c]; found {
		return msg
	}
	return fmt.Sprintf("unknown status %d", int(c))
}

// PropagationError reports an analytic breakdown at a specific evaluation
// time. Only fatal status codes are ever carried by an error.
type PropagationError struct {
	Code   StatusCode
	Tsince float64 // Minutes since epoch
}

func (e *PropagationError) Error() string {
	return fmt.Sprintf("propagation failed %.3f min after epoch: %s (code %d)", e.Tsince, e.Code, int(e.Code))
}

// BadElementsError reports an element record which fails validation; the
// record must be corrected, retrying is meaningless.
type BadElementsError struct {
	Field string
	Value float64
}

func (e *BadElementsError) Error() string {
	return fmt.Sprintf("bad elements: %s = %g out of range", e.Field, e.Value)
}

// WrongRegimeError reports a model applied outside its orbital regime, e.g. a
// deep-space-only model invoked on a record whose period is below 225 minutes.
type WrongRegimeError struct {
	Model     Model
	DeepSpace bool // Regime of the record, not of the model
}

func (e *WrongRegimeError) Error() string {
	regime := "near-earth"
	if e.DeepSpace {
		regime = "deep-space"
	}
	return fmt.Sprintf("model %s cannot propagate a %s record", e.Model, regime)
}
