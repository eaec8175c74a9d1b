package core

// TightBindingParameters configures one band-structure calculation. Immutable
// per call, caller-supplied; the engine never validates finiteness.
type TightBindingParameters struct {
	T1       float64 // nearest-neighbor hopping (eV)
	T2       float64 // next-nearest-neighbor hopping (eV)
	LambdaSO float64 // intrinsic spin-orbit strength (eV)
	Exx      float64 // strain tensor components (dimensionless)
	Eyy      float64
	Exy      float64
	Onsite   float64 // onsite energy shift (eV)
}

// KPoint is a reciprocal-space coordinate.
type KPoint struct {
	Kx float64
	Ky float64
}

// Eigenvalues holds the two band energies at one k-point.
type Eigenvalues struct {
	EnergyPlus  float64
	EnergyMinus float64
}

// KPathLabel marks a high-symmetry point along the sampled path.
type KPathLabel struct {
	Name     string
	Position float64 // cumulative arc-length coordinate
}

// KPath is the sampled Gamma->M->K->Gamma walk through reciprocal space.
// Distances and Points are index-aligned.
type KPath struct {
	Distances []float64
	Points    []KPoint
	Labels    []KPathLabel
}

// BandStructureResult pairs the k-path with the two band-energy arrays.
// Valence and Conduction are index-aligned with Path.Distances.
type BandStructureResult struct {
	Path       KPath
	Valence    []float64
	Conduction []float64
}

// DOSResult is a normalized density-of-states histogram plus the analytic
// linear Dirac-cone approximation evaluated at the same bin centers.
type DOSResult struct {
	Energies     []float64 // bin centers
	Density      []float64 // normalized: sum(Density[i]*binWidth) ~= 1
	LinearApprox []float64
	BinWidth     float64
}

// BrillouinZoneData is the reciprocal-space geometry of the honeycomb
// lattice, derived purely from the lattice constant.
type BrillouinZoneData struct {
	Hexagon          []KPoint // 7 points, closed polygon
	Gamma            KPoint
	K                KPoint
	KPrime           KPoint
	M                KPoint
	Path             []KPoint // sampled Gamma->M->K->Gamma
	IrreducibleWedge []KPoint // Gamma-M-K triangle, closed (4 points)
}

// Vec3 is a host-side magnetization or field triple.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// PerformanceSample is the result of one CPU-vs-GPU comparison. Ephemeral;
// the comparator makes no attempt to average out run-to-run variance.
type PerformanceSample struct {
	CPUTimeMs float64
	GPUTimeMs float64
	Speedup   float64
	GPUsed    bool
	CPUResult interface{}
	GPUResult interface{}
}
