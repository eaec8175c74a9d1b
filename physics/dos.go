package physics

import (
	"math"

	"latticelab/core"
)

// EnergyRange bounds the DOS histogram.
type EnergyRange struct {
	Min float64
	Max float64
}

// CalculateDOS histograms both band energies over a uniform nK x nK mesh
// covering [-GammaK, GammaK]^2. Density is normalized by
// (totalStates * binWidth), so for a range covering the full spectrum the
// histogram mass sums to 1 within sampling tolerance. Samples falling
// outside the range are silently dropped; that is the documented policy,
// not an error.
func CalculateDOS(p core.TightBindingParameters, r EnergyRange, nBins, nKPoints int) core.DOSResult {
	if nBins < 1 {
		nBins = 1
	}
	if nKPoints < 2 {
		nKPoints = 2
	}
	binWidth := (r.Max - r.Min) / float64(nBins)
	counts := make([]float64, nBins)

	step := 2 * GammaK / float64(nKPoints-1)
	for i := 0; i < nKPoints; i++ {
		kx := -GammaK + float64(i)*step
		for j := 0; j < nKPoints; j++ {
			ky := -GammaK + float64(j)*step
			e := CalculateEigenvalues(kx, ky, p)
			for _, energy := range [2]float64{e.EnergyMinus, e.EnergyPlus} {
				if energy < r.Min {
					continue
				}
				bin := int((energy - r.Min) / binWidth)
				if bin < nBins {
					counts[bin]++
				}
			}
		}
	}

	totalStates := float64(2 * nKPoints * nKPoints)
	res := core.DOSResult{
		Energies:     make([]float64, nBins),
		Density:      make([]float64, nBins),
		LinearApprox: make([]float64, nBins),
		BinWidth:     binWidth,
	}
	for b := 0; b < nBins; b++ {
		center := r.Min + (float64(b)+0.5)*binWidth
		res.Energies[b] = center
		res.Density[b] = counts[b] / (totalStates * binWidth)
		res.LinearApprox[b] = linearDOS(center, p)
	}
	return res
}

// linearDOS is the analytic Dirac-cone approximation under the same
// sampled-square normalization as the histogram. The square
// [-GammaK, GammaK]^2 holds four full Dirac cones in its interior and two
// halves on the kx = +/-GammaK edges, five effective cones, each linear in
// |E - onsite| with Fermi velocity v_F = (sqrt(3)/2)*t1*a. Only meaningful
// near the Dirac point; it diverges from the histogram past the van Hove
// shoulder.
func linearDOS(energy float64, p core.TightBindingParameters) float64 {
	vF := math.Sqrt(3) / 2 * p.T1 * core.LatticeConstant
	if vF == 0 {
		return 0
	}
	sampledArea := 4 * GammaK * GammaK
	return 5 * math.Pi * math.Abs(energy-p.Onsite) / (sampledArea * vF * vF)
}
