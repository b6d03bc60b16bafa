package dpsd

// Variant identifies one of the four DPSD model parameterizations.
// The two configuration switches (equal variance, shared recollection)
// determine the length and layout of the internal parameter vector, so the
// variant is fixed once per fit and threaded through sampling, evaluation
// and decoding.
type Variant int

const (
	// SeparateRecollectionEqualVar estimates independent target/lure
	// recollection rates with the target distribution fixed at unit variance.
	SeparateRecollectionEqualVar Variant = iota
	// SeparateRecollectionFreeVar estimates independent recollection rates
	// and a free target standard deviation.
	SeparateRecollectionFreeVar
	// SharedRecollectionEqualVar estimates a single recollection rate shared
	// by targets and lures, with unit target variance.
	SharedRecollectionEqualVar
	// SharedRecollectionFreeVar estimates a single shared recollection rate
	// and a free target standard deviation.
	SharedRecollectionFreeVar
)

// VariantFor maps the two configuration switches to a model variant.
func VariantFor(equalVariance, equalRecollection bool) Variant {
	switch {
	case equalRecollection && equalVariance:
		return SharedRecollectionEqualVar
	case equalRecollection && !equalVariance:
		return SharedRecollectionFreeVar
	case !equalRecollection && equalVariance:
		return SeparateRecollectionEqualVar
	default:
		return SeparateRecollectionFreeVar
	}
}

func (v Variant) String() string {
	switch v {
	case SeparateRecollectionEqualVar:
		return "separate-recollection/equal-variance"
	case SeparateRecollectionFreeVar:
		return "separate-recollection/free-variance"
	case SharedRecollectionEqualVar:
		return "shared-recollection/equal-variance"
	case SharedRecollectionFreeVar:
		return "shared-recollection/free-variance"
	default:
		return "unknown"
	}
}

// EqualVariance reports whether the target standard deviation is fixed at 1.
func (v Variant) EqualVariance() bool {
	return v == SeparateRecollectionEqualVar || v == SharedRecollectionEqualVar
}

// SharedRecollection reports whether target and lure recollection are a
// single parameter.
func (v Variant) SharedRecollection() bool {
	return v == SharedRecollectionEqualVar || v == SharedRecollectionFreeVar
}

// Internal vector layout:
//
//	[ zR_target, (zR_lure), log-familiarity, (log-sd_target), c1..ck ]
//
// zR_lure is present only for separate-recollection variants, log-sd_target
// only for free-variance variants. Criteria are unconstrained and used as-is.

func (v Variant) lureIndex() int {
	if v.SharedRecollection() {
		return -1
	}
	return 1
}

func (v Variant) famIndex() int {
	if v.SharedRecollection() {
		return 1
	}
	return 2
}

func (v Variant) sdIndex() int {
	if v.EqualVariance() {
		return -1
	}
	return v.famIndex() + 1
}

func (v Variant) critOffset() int {
	off := v.famIndex() + 1
	if !v.EqualVariance() {
		off++
	}
	return off
}

// NumParams returns the internal vector length for k criteria.
func (v Variant) NumParams(k int) int {
	return v.critOffset() + k
}

// Params is the natural, bounded parameter set of the model.
type Params struct {
	RecollectionTarget float64   // in [0,1]
	RecollectionLure   float64   // in [0,1]
	Familiarity        float64   // > 0
	SDTarget           float64   // > 0, exactly 1 under equal variance
	Criteria           []float64 // unbounded decision thresholds
}

// StartDist holds the truncated-normal starting-draw parameters for a
// variant. The values are calibration constants carried over unchanged.
type StartDist struct {
	FamiliarityMean float64
	FamiliaritySD   float64
	SDTargetMean    float64
	SDTargetSD      float64
}

// StartDist returns the starting-draw distribution parameters for v.
func (v Variant) StartDist() StartDist {
	switch v {
	case SeparateRecollectionFreeVar:
		return StartDist{FamiliarityMean: 0.4, FamiliaritySD: 0.4, SDTargetMean: 1, SDTargetSD: 0.5}
	case SharedRecollectionFreeVar:
		return StartDist{FamiliarityMean: 0.4, FamiliaritySD: 0.4, SDTargetMean: 1, SDTargetSD: 0.4}
	default:
		return StartDist{FamiliarityMean: 0.4, FamiliaritySD: 0.1}
	}
}

// Decode maps an internal vector to natural parameters via the variant's
// inverse transforms: logistic for recollection rates, exponential for
// familiarity and target sd, identity for criteria.
func (v Variant) Decode(x []float64) Params {
	p := Params{
		RecollectionTarget: logistic(x[0]),
		Familiarity:        expClamped(x[v.famIndex()]),
		SDTarget:           1,
	}
	if i := v.lureIndex(); i >= 0 {
		p.RecollectionLure = logistic(x[i])
	} else {
		p.RecollectionLure = p.RecollectionTarget
	}
	if i := v.sdIndex(); i >= 0 {
		p.SDTarget = expClamped(x[i])
	}
	p.Criteria = append([]float64(nil), x[v.critOffset():]...)
	return p
}

// Encode maps natural parameters to an internal vector. It is the inverse of
// Decode away from the transform boundaries and is used to build starting
// vectors and synthetic test fixtures.
func (v Variant) Encode(p Params) []float64 {
	x := make([]float64, v.NumParams(len(p.Criteria)))
	x[0] = Logit(p.RecollectionTarget)
	if i := v.lureIndex(); i >= 0 {
		x[i] = Logit(p.RecollectionLure)
	}
	x[v.famIndex()] = logClamped(p.Familiarity)
	if i := v.sdIndex(); i >= 0 {
		x[i] = logClamped(p.SDTarget)
	}
	copy(x[v.critOffset():], p.Criteria)
	return x
}
