// Package qmath provides the exact complex arithmetic and dense complex
// matrix operations the simulator is built on. Every operation is pure:
// inputs are never mutated and results share no storage with them.
package qmath

import (
	"errors"
	"math"
	"math/cmplx"
)

// Complex is the amplitude value type used throughout the simulator.
type Complex = complex128

// Arithmetic failures. Both are programming-error-level conditions: user
// input is validated long before it reaches this package.
var (
	ErrDivisionByZero    = errors.New("qmath: division by zero")
	ErrDimensionMismatch = errors.New("qmath: dimension mismatch")
)

// Add returns a + b.
func Add(a, b Complex) Complex { return a + b }

// Sub returns a - b.
func Sub(a, b Complex) Complex { return a - b }

// Mul returns a * b.
func Mul(a, b Complex) Complex { return a * b }

// Div returns a / b, failing when the denominator magnitude is zero.
func Div(a, b Complex) (Complex, error) {
	if cmplx.Abs(b) == 0 {
		return 0, ErrDivisionByZero
	}
	return a / b, nil
}

// Abs returns the magnitude |a|.
func Abs(a Complex) float64 { return cmplx.Abs(a) }

// Arg returns the argument (phase angle) of a in (-pi, pi].
func Arg(a Complex) float64 { return cmplx.Phase(a) }

// Conj returns the complex conjugate of a.
func Conj(a Complex) Complex { return cmplx.Conj(a) }

// Scale returns a scaled by the real factor s.
func Scale(a Complex, s float64) Complex { return a * complex(s, 0) }

// ExpI returns the unit-circle exponential e^(i*theta) = cos(theta) + i*sin(theta).
func ExpI(theta float64) Complex { return complex(math.Cos(theta), math.Sin(theta)) }

// ApproxEqual reports whether a and b are within tol of each other.
func ApproxEqual(a, b Complex, tol float64) bool { return cmplx.Abs(a-b) <= tol }
