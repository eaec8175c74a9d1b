package core

import "math"

// Complex is an immutable complex value used by the lattice Hamiltonian and
// the wavefunction solver. Plain value semantics; operations return new values.
//
// math/cmplx covers most of this, but the GPU solvers need (re, im) pairs laid
// out explicitly for float32 packing, so we carry our own small type instead of
// converting back and forth through complex128.
type Complex struct {
	Re float64
	Im float64
}

func NewComplex(re, im float64) Complex { return Complex{Re: re, Im: im} }

// Expi returns exp(i*theta) on the unit circle.
func Expi(theta float64) Complex {
	return Complex{Re: math.Cos(theta), Im: math.Sin(theta)}
}

func (c Complex) Add(o Complex) Complex { return Complex{c.Re + o.Re, c.Im + o.Im} }

func (c Complex) Sub(o Complex) Complex { return Complex{c.Re - o.Re, c.Im - o.Im} }

func (c Complex) Mul(o Complex) Complex {
	return Complex{
		Re: c.Re*o.Re - c.Im*o.Im,
		Im: c.Re*o.Im + c.Im*o.Re,
	}
}

func (c Complex) Scale(s float64) Complex { return Complex{c.Re * s, c.Im * s} }

func (c Complex) Conj() Complex { return Complex{c.Re, -c.Im} }

// Abs is the magnitude |c|.
func (c Complex) Abs() float64 { return math.Hypot(c.Re, c.Im) }

// Abs2 is |c|^2 without the square root.
func (c Complex) Abs2() float64 { return c.Re*c.Re + c.Im*c.Im }

// Phase is the argument in (-pi, pi].
func (c Complex) Phase() float64 { return math.Atan2(c.Im, c.Re) }

// Normalize scales c to unit magnitude. Zero stays zero.
func (c Complex) Normalize() Complex {
	m := c.Abs()
	if m == 0 {
		return Complex{}
	}
	return Complex{c.Re / m, c.Im / m}
}
