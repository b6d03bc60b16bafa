package dpsd

import (
	"math"
	"testing"
)

func TestVariantFor(t *testing.T) {
	tests := []struct {
		name              string
		equalVariance     bool
		equalRecollection bool
		want              Variant
	}{
		{"separate equal-var", true, false, SeparateRecollectionEqualVar},
		{"separate free-var", false, false, SeparateRecollectionFreeVar},
		{"shared equal-var", true, true, SharedRecollectionEqualVar},
		{"shared free-var", false, true, SharedRecollectionFreeVar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VariantFor(tt.equalVariance, tt.equalRecollection)
			if got != tt.want {
				t.Errorf("VariantFor(%v, %v) = %v, want %v", tt.equalVariance, tt.equalRecollection, got, tt.want)
			}
			if got.EqualVariance() != tt.equalVariance {
				t.Errorf("EqualVariance() = %v, want %v", got.EqualVariance(), tt.equalVariance)
			}
			if got.SharedRecollection() != tt.equalRecollection {
				t.Errorf("SharedRecollection() = %v, want %v", got.SharedRecollection(), tt.equalRecollection)
			}
		})
	}
}

func TestNumParams(t *testing.T) {
	// Layout: zR_target, (zR_lure), log-familiarity, (log-sd), k criteria
	tests := []struct {
		variant Variant
		k       int
		want    int
	}{
		{SeparateRecollectionEqualVar, 3, 6},
		{SeparateRecollectionFreeVar, 3, 7},
		{SharedRecollectionEqualVar, 3, 5},
		{SharedRecollectionFreeVar, 3, 6},
		{SeparateRecollectionEqualVar, 5, 8},
	}

	for _, tt := range tests {
		if got := tt.variant.NumParams(tt.k); got != tt.want {
			t.Errorf("%v.NumParams(%d) = %d, want %d", tt.variant, tt.k, got, tt.want)
		}
	}
}

func allVariants() []Variant {
	return []Variant{
		SeparateRecollectionEqualVar,
		SeparateRecollectionFreeVar,
		SharedRecollectionEqualVar,
		SharedRecollectionFreeVar,
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	truth := Params{
		RecollectionTarget: 0.35,
		RecollectionLure:   0.2,
		Familiarity:        1.4,
		SDTarget:           1.25,
		Criteria:           []float64{-1.2, 0, 0.8},
	}

	for _, v := range allVariants() {
		t.Run(v.String(), func(t *testing.T) {
			in := truth
			if v.SharedRecollection() {
				in.RecollectionLure = in.RecollectionTarget
			}
			if v.EqualVariance() {
				in.SDTarget = 1
			}

			x := v.Encode(in)
			if len(x) != v.NumParams(len(in.Criteria)) {
				t.Fatalf("Encode length = %d, want %d", len(x), v.NumParams(len(in.Criteria)))
			}

			out := v.Decode(x)
			const tol = 1e-12
			if math.Abs(out.RecollectionTarget-in.RecollectionTarget) > tol {
				t.Errorf("RecollectionTarget = %v, want %v", out.RecollectionTarget, in.RecollectionTarget)
			}
			if math.Abs(out.RecollectionLure-in.RecollectionLure) > tol {
				t.Errorf("RecollectionLure = %v, want %v", out.RecollectionLure, in.RecollectionLure)
			}
			if math.Abs(out.Familiarity-in.Familiarity) > tol {
				t.Errorf("Familiarity = %v, want %v", out.Familiarity, in.Familiarity)
			}
			if math.Abs(out.SDTarget-in.SDTarget) > tol {
				t.Errorf("SDTarget = %v, want %v", out.SDTarget, in.SDTarget)
			}
			for i := range in.Criteria {
				if math.Abs(out.Criteria[i]-in.Criteria[i]) > tol {
					t.Errorf("Criteria[%d] = %v, want %v", i, out.Criteria[i], in.Criteria[i])
				}
			}
		})
	}
}

func TestDecodeBounds(t *testing.T) {
	// Any real-valued internal vector must decode to bounded parameters,
	// including extreme coordinates that would overflow a naive exp.
	vectors := [][]float64{
		{0, 0, 0, 0, 0, 0, 0, 0},
		{50, -50, 10, -10, 3, -3, 0, 1},
		{1e6, -1e6, 1e6, -1e6, 5, -5, 2, -2},
	}

	for _, v := range allVariants() {
		for _, raw := range vectors {
			x := raw[:v.NumParams(3)]
			p := v.Decode(x)

			if p.RecollectionTarget < 0 || p.RecollectionTarget > 1 {
				t.Errorf("%v: RecollectionTarget %v out of [0,1]", v, p.RecollectionTarget)
			}
			if p.RecollectionLure < 0 || p.RecollectionLure > 1 {
				t.Errorf("%v: RecollectionLure %v out of [0,1]", v, p.RecollectionLure)
			}
			if p.Familiarity <= 0 || math.IsInf(p.Familiarity, 0) {
				t.Errorf("%v: Familiarity %v not positive finite", v, p.Familiarity)
			}
			if p.SDTarget <= 0 || math.IsInf(p.SDTarget, 0) {
				t.Errorf("%v: SDTarget %v not positive finite", v, p.SDTarget)
			}
			if v.EqualVariance() && p.SDTarget != 1 {
				t.Errorf("%v: SDTarget = %v, want exactly 1", v, p.SDTarget)
			}
			if v.SharedRecollection() && p.RecollectionTarget != p.RecollectionLure {
				t.Errorf("%v: recollection rates differ: %v vs %v", v, p.RecollectionTarget, p.RecollectionLure)
			}
			if len(p.Criteria) != 3 {
				t.Errorf("%v: got %d criteria, want 3", v, len(p.Criteria))
			}
		}
	}
}

func TestStartDist(t *testing.T) {
	tests := []struct {
		variant Variant
		want    StartDist
	}{
		{SeparateRecollectionEqualVar, StartDist{FamiliarityMean: 0.4, FamiliaritySD: 0.1}},
		{SeparateRecollectionFreeVar, StartDist{FamiliarityMean: 0.4, FamiliaritySD: 0.4, SDTargetMean: 1, SDTargetSD: 0.5}},
		{SharedRecollectionEqualVar, StartDist{FamiliarityMean: 0.4, FamiliaritySD: 0.1}},
		{SharedRecollectionFreeVar, StartDist{FamiliarityMean: 0.4, FamiliaritySD: 0.4, SDTargetMean: 1, SDTargetSD: 0.4}},
	}

	for _, tt := range tests {
		if got := tt.variant.StartDist(); got != tt.want {
			t.Errorf("%v.StartDist() = %+v, want %+v", tt.variant, got, tt.want)
		}
	}
}
