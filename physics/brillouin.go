package physics

import (
	"math"

	"latticelab/core"
)

// bzPathSamples is the resolution of the sampled Gamma->M->K->Gamma walk
// included with the Brillouin-zone geometry.
const bzPathSamples = 150

// GetBrillouinZoneData derives the full reciprocal-space geometry from the
// lattice constant: the closed hexagonal zone boundary, the four
// high-symmetry points, a sampled path for overlays, and the irreducible
// Gamma-M-K wedge.
func GetBrillouinZoneData() core.BrillouinZoneData {
	gamma, m, k := highSymmetryPoints()

	// Zone corners sit at radius GammaK, every 60 degrees starting from K.
	hexagon := make([]core.KPoint, 7)
	for i := 0; i < 6; i++ {
		theta := float64(i) * math.Pi / 3
		hexagon[i] = core.KPoint{
			Kx: GammaK * math.Cos(theta),
			Ky: GammaK * math.Sin(theta),
		}
	}
	hexagon[6] = hexagon[0]

	path := GenerateKPath(bzPathSamples)

	return core.BrillouinZoneData{
		Hexagon:          hexagon,
		Gamma:            gamma,
		K:                k,
		KPrime:           hexagon[1],
		M:                m,
		Path:             path.Points,
		IrreducibleWedge: []core.KPoint{gamma, m, k, gamma},
	}
}
