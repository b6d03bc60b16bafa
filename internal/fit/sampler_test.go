package fit

import (
	"testing"

	"github.com/cwbudde/dpsdfit/internal/dpsd"
)

func TestSamplerLayoutAndRanges(t *testing.T) {
	variants := []dpsd.Variant{
		dpsd.SeparateRecollectionEqualVar,
		dpsd.SeparateRecollectionFreeVar,
		dpsd.SharedRecollectionEqualVar,
		dpsd.SharedRecollectionFreeVar,
	}

	const k = 4
	for _, v := range variants {
		t.Run(v.String(), func(t *testing.T) {
			for seed := uint64(1); seed <= 50; seed++ {
				x := newStartSampler(v, k, seed).sample()
				if len(x) != v.NumParams(k) {
					t.Fatalf("start vector length = %d, want %d", len(x), v.NumParams(k))
				}

				p := v.Decode(x)
				if p.RecollectionTarget <= recollectionStartMin || p.RecollectionTarget >= recollectionStartMax {
					t.Errorf("seed %d: starting recollection %v outside (%v, %v)",
						seed, p.RecollectionTarget, recollectionStartMin, recollectionStartMax)
				}
				// Target and lure coordinates start from the same draw
				if p.RecollectionLure != p.RecollectionTarget {
					t.Errorf("seed %d: lure start %v != target start %v", seed, p.RecollectionLure, p.RecollectionTarget)
				}
				if p.Familiarity <= 0 {
					t.Errorf("seed %d: starting familiarity %v not positive", seed, p.Familiarity)
				}
				if p.SDTarget <= 0 {
					t.Errorf("seed %d: starting sd %v not positive", seed, p.SDTarget)
				}
				if v.EqualVariance() && p.SDTarget != 1 {
					t.Errorf("seed %d: sd start = %v, want 1 under equal variance", seed, p.SDTarget)
				}
				for i, c := range p.Criteria {
					if c < criterionStartMin || c > criterionStartMax {
						t.Errorf("seed %d: criterion %d start %v outside [%v, %v]",
							seed, i, c, criterionStartMin, criterionStartMax)
					}
				}
			}
		})
	}
}

func TestSamplerDeterministicPerSeed(t *testing.T) {
	v := dpsd.SeparateRecollectionFreeVar

	a := newStartSampler(v, 3, 42).sample()
	b := newStartSampler(v, 3, 42).sample()
	if len(a) != len(b) {
		t.Fatalf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("coordinate %d differs for same seed: %v vs %v", i, a[i], b[i])
		}
	}

	c := newStartSampler(v, 3, 43).sample()
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical starting vectors")
	}
}

func TestAttemptSeedsDistinct(t *testing.T) {
	seen := make(map[uint64]int)
	for i := 0; i < 1000; i++ {
		s := attemptSeed(1, i)
		if prev, dup := seen[s]; dup {
			t.Fatalf("attempts %d and %d share seed %d", prev, i, s)
		}
		seen[s] = i
	}
}
