package pairwise

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a dense row-major matrix of float64 values. Unlike mat.Dense
// either dimension may be zero, which lets empty inputs flow through the
// distance computation without special casing at the call site. Matrix
// satisfies mat.Matrix so it can be handed to gonum routines directly.
type Matrix struct {
	rows int
	cols int
	data []float64
}

var _ mat.Matrix = (*Matrix)(nil)

// NewMatrix creates a rows x cols matrix backed by data. If data is nil a zero
// filled slice is allocated. The matrix takes ownership of data.
func NewMatrix(rows, cols int, data []float64) (*Matrix, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("%w: negative dimensions %dx%d", ErrBadShape, rows, cols)
	}
	size, ok := mulSize(rows, cols)
	if !ok {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, rows, cols)
	}
	if data == nil {
		data = make([]float64, size)
	}
	if len(data) != size {
		return nil, fmt.Errorf("%w: %dx%d needs %d values, got %d", ErrBadShape, rows, cols, size, len(data))
	}
	return &Matrix{rows: rows, cols: cols, data: data}, nil
}

// FromRows copies a slice of equal length rows into a new matrix. An empty
// slice yields a 0x0 matrix, use NewMatrix(0, cols, nil) to keep the column
// count of an empty input.
func FromRows(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 {
		return &Matrix{}, nil
	}
	cols := len(rows[0])
	m, err := NewMatrix(len(rows), cols, nil)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrBadShape, i, len(row), cols)
		}
		copy(m.data[i*cols:], row)
	}
	return m, nil
}

// FromDense copies any gonum matrix.
func FromDense(a mat.Matrix) *Matrix {
	r, c := a.Dims()
	m := &Matrix{rows: r, cols: c, data: make([]float64, r*c)}
	if d, ok := a.(*mat.Dense); ok {
		raw := d.RawMatrix()
		for i := 0; i < r; i++ {
			copy(m.data[i*c:(i+1)*c], raw.Data[i*raw.Stride:i*raw.Stride+c])
		}
		return m
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.data[i*c+j] = a.At(i, j)
		}
	}
	return m
}

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (int, int) { return m.rows, m.cols }

// At returns the element at row i, column j. It panics on out of range
// indices following the mat.Matrix contract.
func (m *Matrix) At(i, j int) float64 {
	if uint(i) >= uint(m.rows) {
		panic(mat.ErrRowAccess)
	}
	if uint(j) >= uint(m.cols) {
		panic(mat.ErrColAccess)
	}
	return m.data[i*m.cols+j]
}

// T returns the implicit transpose.
func (m *Matrix) T() mat.Matrix {
	return mat.Transpose{Matrix: m}
}

// RawRow returns row i without copying. Callers must not modify it on input
// matrices.
func (m *Matrix) RawRow(i int) []float64 {
	if uint(i) >= uint(m.rows) {
		panic(mat.ErrRowAccess)
	}
	return m.data[i*m.cols : (i+1)*m.cols : (i+1)*m.cols]
}

// RawData returns the row-major backing slice without copying.
func (m *Matrix) RawData() []float64 {
	return m.data
}

// ToRows copies the matrix into a slice of rows.
func (m *Matrix) ToRows() [][]float64 {
	rows := make([][]float64, m.rows)
	for i := range rows {
		rows[i] = make([]float64, m.cols)
		copy(rows[i], m.data[i*m.cols:])
	}
	return rows
}

// Dense returns a mat.Dense sharing the backing data. gonum does not allow
// zero sized dense matrices so nil is returned if either dimension is zero.
func (m *Matrix) Dense() *mat.Dense {
	if m.rows == 0 || m.cols == 0 {
		return nil
	}
	return mat.NewDense(m.rows, m.cols, m.data)
}

// rowBand returns rows [from, to) as a dense view, nil if the band or the
// column count is empty.
func (m *Matrix) rowBand(from, to int) *mat.Dense {
	if to <= from || m.cols == 0 {
		return nil
	}
	return mat.NewDense(to-from, m.cols, m.data[from*m.cols:to*m.cols])
}

// mulSize returns a*b and whether it fits an int.
func mulSize(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	size := a * b
	if size/b != a || size < 0 {
		return 0, false
	}
	return size, true
}
