package pairwise

import (
	"github.com/liebenlito/pairdist/distance"
	"gonum.org/v1/gonum/floats"
)

/* The broadcast formulation materialises x[:, newaxis, :] - y[newaxis, :, :]
 * as an (N1, N2, m) tensor before reducing over m. Each cell only ever needs
 * its own m long slice of that tensor, so we keep a single difference buffer
 * per band and reuse it for every pair. The arithmetic per cell is the same:
 * subtract, square, sum. */

func directBand(x, y, out *Matrix, from, to int) {
	m := x.cols
	n2 := y.rows
	diff := make([]float64, m)
	for i := from; i < to; i++ {
		xi := x.data[i*m : (i+1)*m]
		row := out.data[i*n2 : (i+1)*n2]
		for j := range row {
			floats.SubTo(diff, xi, y.data[j*m:(j+1)*m])
			row[j] = distance.SquaredNorm(diff)
		}
	}
}
