package core

// Physical constants and fixed lattice geometry. Units follow the usual
// tight-binding conventions: energies in eV, lengths in angstrom, times in
// the caller's choice as long as gamma*dt stays dimensionless.
const (
	// LatticeConstant is the honeycomb lattice constant a in angstrom.
	// The reciprocal radii GammaK = 4*pi/(3a) and GammaM = 2*pi/(sqrt(3)*a)
	// are derived from it everywhere; they are never parameterized
	// independently, otherwise the Dirac-point check drifts off K.
	LatticeConstant = 2.46

	// HBar in eV*fs, used by the wavefunction phase rotation.
	HBar = 0.6582119569

	// Gruneisen is the bond-hopping strain sensitivity beta in
	// t_i = t1*(1 - beta*eps_i) for each nearest-neighbor bond.
	Gruneisen = 3.37

	// DefaultGamma is the gyromagnetic ratio used by the magnetization
	// solver when the caller passes zero (rad/(T*ns), scaled).
	DefaultGamma = 0.1761
)
