package qmath

import "fmt"

// Matrix is a dense row-major complex matrix. Gate matrices are always
// square with a power-of-two dimension (2^k for a k-qubit gate); the
// general operations below do not assume that.
type Matrix [][]Complex

// Zero returns a rows x cols matrix of zeros.
func Zero(rows, cols int) Matrix {
	m := make(Matrix, rows)
	for i := range m {
		m[i] = make([]Complex, cols)
	}
	return m
}

// Identity returns the n x n identity matrix.
func Identity(n int) Matrix {
	m := Zero(n, n)
	for i := range m {
		m[i][i] = 1
	}
	return m
}

// Rows returns the number of rows in m.
func (m Matrix) Rows() int { return len(m) }

// Cols returns the number of columns in m, or 0 for an empty matrix.
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Clone returns a deep copy of m.
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = make([]Complex, len(row))
		copy(out[i], row)
	}
	return out
}

// Equal reports whether m and other have the same shape and all entries
// within tol of each other.
func (m Matrix) Equal(other Matrix, tol float64) bool {
	if m.Rows() != other.Rows() || m.Cols() != other.Cols() {
		return false
	}
	for i, row := range m {
		for j, v := range row {
			if !ApproxEqual(v, other[i][j], tol) {
				return false
			}
		}
	}
	return true
}

// MatMul returns the matrix product a*b, failing when the inner
// dimensions differ.
func MatMul(a, b Matrix) (Matrix, error) {
	if a.Cols() != b.Rows() {
		return nil, fmt.Errorf("%w: %dx%d * %dx%d", ErrDimensionMismatch, a.Rows(), a.Cols(), b.Rows(), b.Cols())
	}
	out := Zero(a.Rows(), b.Cols())
	for i := range out {
		for k := 0; k < a.Cols(); k++ {
			v := a[i][k]
			if v == 0 {
				continue
			}
			for j := range out[i] {
				out[i][j] += v * b[k][j]
			}
		}
	}
	return out, nil
}

// Kron returns the Kronecker (tensor) product of a and b.
func Kron(a, b Matrix) Matrix {
	br, bc := b.Rows(), b.Cols()
	out := Zero(a.Rows()*br, a.Cols()*bc)
	for i, arow := range a {
		for j, av := range arow {
			if av == 0 {
				continue
			}
			for bi, brow := range b {
				for bj, bv := range brow {
					out[i*br+bi][j*bc+bj] = av * bv
				}
			}
		}
	}
	return out
}
