package dpsd

import "gonum.org/v1/gonum/stat/distuv"

// Predict computes the model-implied cumulative hit and false-alarm rates
// for the given natural parameters, one pair per criterion.
//
// Targets sit at mean -familiarity/2 with sd sd_target, lures at
// +familiarity/2 with unit sd. Recollection is a high-threshold process: a
// recollected target is endorsed regardless of criterion, a recollected lure
// is never endorsed.
func Predict(p Params) (hits, falseAlarms []float64) {
	target := distuv.Normal{Mu: -p.Familiarity / 2, Sigma: p.SDTarget}
	lure := distuv.Normal{Mu: p.Familiarity / 2, Sigma: 1}

	hits = make([]float64, len(p.Criteria))
	falseAlarms = make([]float64, len(p.Criteria))
	for i, c := range p.Criteria {
		hits[i] = (1-p.RecollectionTarget)*target.CDF(c) + p.RecollectionTarget
		falseAlarms[i] = (1 - p.RecollectionLure) * lure.CDF(c)
	}
	return hits, falseAlarms
}

// Evaluate decodes the internal vector x under variant v and returns the
// total squared error between predicted and observed cumulative rates.
// Pure and deterministic; falseAlarms and hits must have the same length as
// the criterion block of x.
func Evaluate(v Variant, x, falseAlarms, hits []float64) float64 {
	p := v.Decode(x)
	predHits, predFAs := Predict(p)

	var sse float64
	for i := range p.Criteria {
		dh := hits[i] - predHits[i]
		df := falseAlarms[i] - predFAs[i]
		sse += dh*dh + df*df
	}
	return sse
}

// Objective binds observed data to a variant and returns the closure
// minimized by the local optimizer.
func Objective(v Variant, falseAlarms, hits []float64) func([]float64) float64 {
	return func(x []float64) float64 {
		return Evaluate(v, x, falseAlarms, hits)
	}
}
