package pairwise

import (
	"math"

	"github.com/liebenlito/pairdist/distance"
	"gonum.org/v1/gonum/mat"
)

// expansionPlan holds the parts of |x-y|^2 = |x|^2 + |y|^2 - 2 x.y that only
// depend on Y so that every band of X can share them.
type expansionPlan struct {
	yNorms []float64
	// nil when Y has no rows or no columns
	yDense *mat.Dense
}

func newExpansionPlan(y *Matrix) expansionPlan {
	norms := make([]float64, y.rows)
	for j := range norms {
		norms[j] = distance.SquaredNorm(y.data[j*y.cols : (j+1)*y.cols])
	}
	return expansionPlan{yNorms: norms, yDense: y.Dense()}
}

func (p expansionPlan) band(x, out *Matrix, from, to int) {
	n2 := len(p.yNorms)
	if to <= from || n2 == 0 {
		return
	}
	// ---------------------------
	// The cross term is written straight into the output rows, out is freshly
	// allocated so a zero column count leaves it at zero.
	if p.yDense != nil {
		cross := mat.NewDense(to-from, n2, out.data[from*n2:to*n2])
		cross.Mul(x.rowBand(from, to), p.yDense.T())
	}
	// ---------------------------
	for i := from; i < to; i++ {
		xNorm := distance.SquaredNorm(x.data[i*x.cols : (i+1)*x.cols])
		row := out.data[i*n2 : (i+1)*n2]
		for j, yNorm := range p.yNorms {
			// Cancellation can push near zero distances slightly negative, the
			// absolute value folds them back.
			row[j] = math.Abs(xNorm + yNorm - 2*row[j])
		}
	}
}
