package fit

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cwbudde/dpsdfit/internal/dpsd"
)

// Starting-draw ranges shared by all variants.
const (
	recollectionStartMin = 0.2
	recollectionStartMax = 0.7
	criterionStartMin    = -5
	criterionStartMax    = 5
)

// startSampler draws randomized starting vectors for one attempt. Each
// attempt owns its sampler and random source, so attempts stay independent
// and reproducible under concurrent execution.
type startSampler struct {
	variant      dpsd.Variant
	k            int
	recollection distuv.Uniform
	familiarity  distuv.Normal
	sdTarget     distuv.Normal
	criterion    distuv.Uniform
}

func newStartSampler(variant dpsd.Variant, k int, seed uint64) *startSampler {
	src := rand.NewSource(seed)
	start := variant.StartDist()
	return &startSampler{
		variant: variant,
		k:       k,
		recollection: distuv.Uniform{
			Min: recollectionStartMin,
			Max: recollectionStartMax,
			Src: src,
		},
		familiarity: distuv.Normal{
			Mu:    start.FamiliarityMean,
			Sigma: start.FamiliaritySD,
			Src:   src,
		},
		sdTarget: distuv.Normal{
			Mu:    start.SDTargetMean,
			Sigma: start.SDTargetSD,
			Src:   src,
		},
		criterion: distuv.Uniform{
			Min: criterionStartMin,
			Max: criterionStartMax,
			Src: src,
		},
	}
}

// sample assembles one starting vector in the variant's internal layout.
// Target and lure recollection start from the same draw even when estimated
// independently; familiarity and sd draws are truncated below at zero.
func (s *startSampler) sample() []float64 {
	r := s.recollection.Rand()

	p := dpsd.Params{
		RecollectionTarget: r,
		RecollectionLure:   r,
		Familiarity:        truncPositive(s.familiarity),
		SDTarget:           1,
		Criteria:           make([]float64, s.k),
	}
	if !s.variant.EqualVariance() {
		p.SDTarget = truncPositive(s.sdTarget)
	}
	for i := range p.Criteria {
		p.Criteria[i] = s.criterion.Rand()
	}

	return s.variant.Encode(p)
}

// truncPositive samples d truncated below at zero by rejection.
func truncPositive(d distuv.Normal) float64 {
	for {
		if v := d.Rand(); v > 0 {
			return v
		}
	}
}
