package dpsd

import "math"

// maxExpArg bounds the argument fed to math.Exp. Beyond roughly 709 the
// result overflows to +Inf, which would poison the objective value, so
// extreme unconstrained inputs are clamped instead.
const maxExpArg = 700

// expClamped is exp(z) with the argument clamped to keep the result finite
// and strictly positive.
func expClamped(z float64) float64 {
	if z > maxExpArg {
		z = maxExpArg
	} else if z < -maxExpArg {
		z = -maxExpArg
	}
	return math.Exp(z)
}

// logistic maps any real z to (0,1) via exp(z)/(1+exp(z)), computed in the
// numerically stable branch for either sign.
func logistic(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// Logit is the inverse of the logistic transform, log(p/(1-p)).
// Values at the boundaries map to the clamped exponent range so that a
// round trip through Decode stays finite.
func Logit(p float64) float64 {
	switch {
	case p <= 0:
		return -maxExpArg
	case p >= 1:
		return maxExpArg
	}
	return math.Log(p / (1 - p))
}

// logClamped is log(x) with non-positive inputs mapped to the clamped
// exponent floor rather than -Inf.
func logClamped(x float64) float64 {
	if x <= 0 {
		return -maxExpArg
	}
	return math.Log(x)
}
