package physics

import (
	"math"

	"latticelab/core"
)

// highSymmetryPoints returns Gamma, M and K in the order the standard
// band-structure walk visits them.
func highSymmetryPoints() (gamma, m, k core.KPoint) {
	a := core.LatticeConstant
	gamma = core.KPoint{}
	m = core.KPoint{Kx: math.Pi / a, Ky: math.Pi / (math.Sqrt(3) * a)}
	k = core.KPoint{Kx: GammaK, Ky: 0}
	return
}

// GenerateKPath samples the Gamma->M->K->Gamma walk with floor(n/3) points
// per segment. Distances carry the cumulative arc length, so plots come out
// with correct relative segment widths; Labels marks Gamma, M and K at the
// exact distances where the path reaches them.
func GenerateKPath(n int) core.KPath {
	per := n / 3
	if per < 2 {
		per = 2
	}
	gamma, m, k := highSymmetryPoints()
	segments := [3][2]core.KPoint{{gamma, m}, {m, k}, {k, gamma}}
	names := [3]string{"Γ", "M", "K"}

	path := core.KPath{
		Distances: make([]float64, 0, 3*per),
		Points:    make([]core.KPoint, 0, 3*per),
		Labels:    make([]core.KPathLabel, 0, 3),
	}

	dist := 0.0
	var prev core.KPoint
	for s, seg := range segments {
		path.Labels = append(path.Labels, core.KPathLabel{Name: names[s], Position: dist})
		for i := 0; i < per; i++ {
			t := float64(i) / float64(per-1)
			pt := core.KPoint{
				Kx: seg[0].Kx + (seg[1].Kx-seg[0].Kx)*t,
				Ky: seg[0].Ky + (seg[1].Ky-seg[0].Ky)*t,
			}
			if len(path.Points) > 0 {
				dist += math.Hypot(pt.Kx-prev.Kx, pt.Ky-prev.Ky)
			}
			path.Distances = append(path.Distances, dist)
			path.Points = append(path.Points, pt)
			prev = pt
		}
	}
	return path
}

// CalculateBandStructure maps the standard k-path through
// CalculateEigenvalues. Valence and Conduction are index-aligned with
// Path.Distances; for n=300 all three arrays have length 300.
func CalculateBandStructure(p core.TightBindingParameters, n int) core.BandStructureResult {
	path := GenerateKPath(n)
	res := core.BandStructureResult{
		Path:       path,
		Valence:    make([]float64, len(path.Points)),
		Conduction: make([]float64, len(path.Points)),
	}
	for i, pt := range path.Points {
		e := CalculateEigenvalues(pt.Kx, pt.Ky, p)
		res.Valence[i] = e.EnergyMinus
		res.Conduction[i] = e.EnergyPlus
	}
	return res
}
