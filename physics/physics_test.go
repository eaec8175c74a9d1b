package physics

import (
	"math"
	"testing"

	"latticelab/core"
)

var graphene = core.TightBindingParameters{T1: 2.8, T2: 0.1}

func TestEigenvalueOrdering(t *testing.T) {
	tests := []struct {
		name   string
		params core.TightBindingParameters
	}{
		{"graphene", graphene},
		{"with NNN hopping", core.TightBindingParameters{T1: 2.8, T2: 0.3}},
		{"with onsite shift", core.TightBindingParameters{T1: 2.8, T2: 0.1, Onsite: 1.5}},
		{"with spin-orbit", core.TightBindingParameters{T1: 2.8, T2: 0.1, LambdaSO: 0.05}},
		{"with strain", core.TightBindingParameters{T1: 2.8, T2: 0.1, Exx: 0.02, Eyy: -0.01, Exy: 0.005}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := -20; i <= 20; i++ {
				for j := -20; j <= 20; j++ {
					kx := GammaK * float64(i) / 20
					ky := GammaK * float64(j) / 20
					e := CalculateEigenvalues(kx, ky, tt.params)
					if e.EnergyMinus > e.EnergyPlus {
						t.Fatalf("E-(%g) > E+(%g) at k=(%g, %g)", e.EnergyMinus, e.EnergyPlus, kx, ky)
					}
				}
			}
		})
	}
}

func TestValidateDiracPoint(t *testing.T) {
	v := ValidateDiracPoint()
	if !v.IsValid {
		t.Fatalf("Dirac validation failed: |f1(K)| = %g", v.F1Magnitude)
	}
	if v.F1Magnitude >= 1e-10 {
		t.Errorf("|f1(K)| = %g, want < 1e-10", v.F1Magnitude)
	}
}

func TestGapClosesAtK(t *testing.T) {
	// {t1=2.8, t2=0.1, no SO, no strain}: both bands touch at K and the
	// Dirac-referenced energies put the touching point at zero.
	e := CalculateEigenvalues(GammaK, 0, graphene)
	if gap := e.EnergyPlus - e.EnergyMinus; gap > 1e-9 {
		t.Errorf("gap at K = %g, want 0", gap)
	}
	if math.Abs(e.EnergyPlus) > 1e-9 || math.Abs(e.EnergyMinus) > 1e-9 {
		t.Errorf("E(K) = (%g, %g), want (0, 0)", e.EnergyMinus, e.EnergyPlus)
	}
}

func TestSpinOrbitOpensGap(t *testing.T) {
	lambda := 0.05
	p := core.TightBindingParameters{T1: 2.8, LambdaSO: lambda}
	e := CalculateEigenvalues(GammaK, 0, p)
	want := 2 * 3 * math.Sqrt(3) * lambda // gap = 2*|m(K)| = 6*sqrt(3)*lambda
	if gap := e.EnergyPlus - e.EnergyMinus; math.Abs(gap-want) > 1e-9 {
		t.Errorf("spin-orbit gap at K = %g, want %g", gap, want)
	}
}

func TestGenerateKPathLabels(t *testing.T) {
	path := GenerateKPath(300)
	if len(path.Labels) != 3 {
		t.Fatalf("got %d labels, want 3", len(path.Labels))
	}
	if path.Labels[0].Position != 0 {
		t.Errorf("first label at %g, want 0", path.Labels[0].Position)
	}
	for i := 1; i < len(path.Labels); i++ {
		if path.Labels[i].Position <= path.Labels[i-1].Position {
			t.Errorf("label positions not strictly increasing: %v", path.Labels)
		}
	}

	// The segment boundaries are fixed by the reciprocal radii.
	if math.Abs(path.Labels[1].Position-GammaM) > 1e-9 {
		t.Errorf("M label at %g, want GammaM = %g", path.Labels[1].Position, GammaM)
	}
	wantK := GammaM + 2*math.Pi/(3*core.LatticeConstant)
	if math.Abs(path.Labels[2].Position-wantK) > 1e-9 {
		t.Errorf("K label at %g, want %g", path.Labels[2].Position, wantK)
	}
}

func TestBandStructureAlignment(t *testing.T) {
	res := CalculateBandStructure(graphene, 300)
	n := len(res.Path.Distances)
	if n != 300 {
		t.Fatalf("path length = %d, want 300", n)
	}
	if len(res.Valence) != n || len(res.Conduction) != n || len(res.Path.Points) != n {
		t.Fatalf("misaligned arrays: valence=%d conduction=%d points=%d path=%d",
			len(res.Valence), len(res.Conduction), len(res.Path.Points), n)
	}
	for i := range res.Valence {
		if res.Valence[i] > res.Conduction[i] {
			t.Fatalf("valence above conduction at index %d", i)
		}
	}
}

func TestDOSMassConservation(t *testing.T) {
	// Range covering the whole Dirac-referenced spectrum with slack, so
	// no state falls outside and the normalized mass must come out 1.
	r := EnergyRange{Min: -10, Max: 10}
	dos := CalculateDOS(graphene, r, 100, 200)
	mass := 0.0
	for _, d := range dos.Density {
		mass += d * dos.BinWidth
	}
	if math.Abs(mass-1) > 0.01 {
		t.Errorf("histogram mass = %g, want 1.0 within 1%%", mass)
	}
}

func TestDOSDropsOutOfRangeSamples(t *testing.T) {
	// A range covering only part of the spectrum keeps less than the
	// full mass but never errors.
	dos := CalculateDOS(graphene, EnergyRange{Min: -1, Max: 1}, 40, 120)
	mass := 0.0
	for _, d := range dos.Density {
		mass += d * dos.BinWidth
	}
	if mass >= 1 || mass <= 0 {
		t.Errorf("partial-range mass = %g, want in (0, 1)", mass)
	}
}

func TestDOSDropsSamplesBelowRangeMin(t *testing.T) {
	// A range entirely above the spectrum must stay empty. With a single
	// wide bin, truncation toward zero would fold every below-range
	// sample into bin 0.
	dos := CalculateDOS(graphene, EnergyRange{Min: 50, Max: 70}, 1, 80)
	if dos.Density[0] != 0 {
		t.Errorf("above-spectrum histogram mass = %g, want 0", dos.Density[0]*dos.BinWidth)
	}

	// Splitting one range at an interior energy must conserve mass: the
	// upper piece only keeps samples at or above its lower edge.
	whole := CalculateDOS(graphene, EnergyRange{Min: -2, Max: 2}, 4, 120)
	lower := CalculateDOS(graphene, EnergyRange{Min: -2, Max: 0}, 2, 120)
	upper := CalculateDOS(graphene, EnergyRange{Min: 0, Max: 2}, 2, 120)
	wholeMass, splitMass := 0.0, 0.0
	for _, d := range whole.Density {
		wholeMass += d * whole.BinWidth
	}
	for _, d := range lower.Density {
		splitMass += d * lower.BinWidth
	}
	for _, d := range upper.Density {
		splitMass += d * upper.BinWidth
	}
	if math.Abs(wholeMass-splitMass) > 1e-12 {
		t.Errorf("split mass %g != whole mass %g", splitMass, wholeMass)
	}
}

func TestDOSLinearApproxNearDirac(t *testing.T) {
	p := core.TightBindingParameters{T1: 2.8}
	dos := CalculateDOS(p, EnergyRange{Min: -10, Max: 10}, 200, 400)
	// Compare histogram and analytic line in the window 0.3..1.0 eV where
	// the cone approximation holds and bins are populated.
	for i, e := range dos.Energies {
		if math.Abs(e) < 0.3 || math.Abs(e) > 1.0 {
			continue
		}
		rel := math.Abs(dos.Density[i]-dos.LinearApprox[i]) / dos.LinearApprox[i]
		if rel > 0.35 {
			t.Errorf("at E=%g eV histogram %g vs linear %g (rel %g)", e, dos.Density[i], dos.LinearApprox[i], rel)
		}
	}
}

func TestBrillouinZoneGeometry(t *testing.T) {
	bz := GetBrillouinZoneData()
	if len(bz.Hexagon) != 7 {
		t.Fatalf("hexagon has %d points, want 7 (closed)", len(bz.Hexagon))
	}
	if bz.Hexagon[0] != bz.Hexagon[6] {
		t.Errorf("hexagon not closed: %v vs %v", bz.Hexagon[0], bz.Hexagon[6])
	}
	for i, pt := range bz.Hexagon[:6] {
		if r := math.Hypot(pt.Kx, pt.Ky); math.Abs(r-GammaK) > 1e-12 {
			t.Errorf("corner %d at radius %g, want %g", i, r, GammaK)
		}
	}
	if r := math.Hypot(bz.M.Kx, bz.M.Ky); math.Abs(r-GammaM) > 1e-12 {
		t.Errorf("|Gamma-M| = %g, want %g", r, GammaM)
	}
	if len(bz.Path) != 150 {
		t.Errorf("sampled path has %d points, want 150", len(bz.Path))
	}
	if len(bz.IrreducibleWedge) != 4 {
		t.Errorf("wedge has %d points, want 4", len(bz.IrreducibleWedge))
	}
}
