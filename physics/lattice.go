// Package physics implements the two-band tight-binding model of the
// honeycomb lattice: band energies, the high-symmetry k-path, density of
// states and Brillouin-zone geometry. Everything here is synchronous CPU
// code; the GPU solvers live in the solvers package.
package physics

import (
	"math"

	"latticelab/core"
)

// DiracTolerance is the |f1(K)| bound below which the Dirac-point
// self-check passes.
const DiracTolerance = 1e-10

// Reciprocal radii, derived from the lattice constant and nothing else.
// GammaK is the distance Gamma->K, GammaM the distance Gamma->M.
var (
	GammaK = 4 * math.Pi / (3 * core.LatticeConstant)
	GammaM = 2 * math.Pi / (math.Sqrt(3) * core.LatticeConstant)
)

// Nearest-neighbor bond vectors of the A sublattice. With these three,
// f1 vanishes exactly at K = (4*pi/(3a), 0).
var nnVectors = [3]core.KPoint{
	{Kx: core.LatticeConstant / 2, Ky: core.LatticeConstant / (2 * math.Sqrt(3))},
	{Kx: -core.LatticeConstant / 2, Ky: core.LatticeConstant / (2 * math.Sqrt(3))},
	{Kx: 0, Ky: -core.LatticeConstant / math.Sqrt(3)},
}

// Next-nearest-neighbor vectors, one per +/- pair. The six-vector sum
// f2 is 2*(cos(k.a1)+cos(k.a2)+cos(k.a3)).
var nnnVectors = [3]core.KPoint{
	{Kx: core.LatticeConstant, Ky: 0},
	{Kx: core.LatticeConstant / 2, Ky: math.Sqrt(3) * core.LatticeConstant / 2},
	{Kx: -core.LatticeConstant / 2, Ky: math.Sqrt(3) * core.LatticeConstant / 2},
}

// StructureFactorNN computes f1(k) = sum_i w_i * exp(i k.delta_i) over the
// three nearest-neighbor bonds. Strain enters through the per-bond hopping
// weight w_i = 1 - beta*eps_i, where eps_i is the normal strain along the
// bond direction. At zero strain every w_i is 1.
func StructureFactorNN(kx, ky float64, p core.TightBindingParameters) core.Complex {
	f1 := core.Complex{}
	for _, d := range nnVectors {
		invLen := 1 / math.Hypot(d.Kx, d.Ky)
		ux, uy := d.Kx*invLen, d.Ky*invLen
		eps := p.Exx*ux*ux + p.Eyy*uy*uy + 2*p.Exy*ux*uy
		w := 1 - core.Gruneisen*eps
		f1 = f1.Add(core.Expi(kx*d.Kx + ky*d.Ky).Scale(w))
	}
	return f1
}

// StructureFactorNNN computes the real six-vector sum
// f2(k) = 2*sum_i cos(k.a_i) over the next-nearest-neighbor shell.
func StructureFactorNNN(kx, ky float64) float64 {
	f2 := 0.0
	for _, d := range nnnVectors {
		f2 += math.Cos(kx*d.Kx + ky*d.Ky)
	}
	return 2 * f2
}

// spinOrbitMass is the Kane-Mele next-nearest-neighbor term
// m(k) = 2*lambda*(sin(k.a1) - sin(k.a2) + sin(k.a3)). |m(K)| = 3*sqrt(3)*lambda,
// so the band gap at K is 6*sqrt(3)*lambda; it vanishes identically for lambda = 0.
func spinOrbitMass(kx, ky float64, lambda float64) float64 {
	if lambda == 0 {
		return 0
	}
	s := math.Sin(kx*nnnVectors[0].Kx+ky*nnnVectors[0].Ky) -
		math.Sin(kx*nnnVectors[1].Kx+ky*nnnVectors[1].Ky) +
		math.Sin(kx*nnnVectors[2].Kx+ky*nnnVectors[2].Ky)
	return 2 * lambda * s
}

// CalculateEigenvalues evaluates both band energies at (kx, ky):
//
//	E+/- = -t2*f2 +/- sqrt((t1*|f1|)^2 + m_so^2) + onsite
//
// With lambda_so = 0 this reduces to E+/- = -t2*f2 +/- t1*|f1| + onsite.
// Energies are referenced to the Dirac point: f2(K) = -3, so the NNN term
// carries a +3 shift and both bands sit at exactly onsite when they touch
// at K. Total over finite inputs; there is no error path.
func CalculateEigenvalues(kx, ky float64, p core.TightBindingParameters) core.Eigenvalues {
	f1 := StructureFactorNN(kx, ky, p)
	f2 := StructureFactorNNN(kx, ky)
	gap := math.Hypot(p.T1*f1.Abs(), spinOrbitMass(kx, ky, p.LambdaSO))
	base := -p.T2*(f2+3) + p.Onsite
	return core.Eigenvalues{
		EnergyPlus:  base + gap,
		EnergyMinus: base - gap,
	}
}

// DiracValidation reports the unstrained |f1| at the K point.
type DiracValidation struct {
	F1Magnitude float64
	IsValid     bool
}

// ValidateDiracPoint checks that the nearest-neighbor structure factor
// vanishes at K = (4*pi/(3a), 0). A correctness self-check for the lattice
// geometry, not a runtime error path: if the reciprocal radii were ever
// decoupled from the lattice constant this is the test that fails.
func ValidateDiracPoint() DiracValidation {
	f1 := StructureFactorNN(GammaK, 0, core.TightBindingParameters{})
	mag := f1.Abs()
	return DiracValidation{F1Magnitude: mag, IsValid: mag < DiracTolerance}
}
