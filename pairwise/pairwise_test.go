package pairwise_test

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync/atomic"
	"testing"

	"github.com/liebenlito/pairdist/pairwise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var strategies = []pairwise.Strategy{pairwise.Direct, pairwise.Expansion}

func randMatrix(t testing.TB, rows, cols int, scale float64) *pairwise.Matrix {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = scale * rand.Float64()
	}
	m, err := pairwise.NewMatrix(rows, cols, data)
	require.NoError(t, err)
	return m
}

// naive is the textbook double loop used as ground truth.
func naive(x, y *pairwise.Matrix) [][]float64 {
	out := make([][]float64, x.Rows())
	for i := range out {
		out[i] = make([]float64, y.Rows())
		for j := range out[i] {
			var sum float64
			for k := 0; k < x.Cols(); k++ {
				d := x.At(i, k) - y.At(j, k)
				sum += d * d
			}
			out[i][j] = sum
		}
	}
	return out
}

func TestCompute_Concrete(t *testing.T) {
	x, err := pairwise.FromRows([][]float64{{0, 0}, {3, 4}})
	require.NoError(t, err)
	want := [][]float64{{0, 25}, {25, 0}}
	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			got, err := pairwise.Compute(x, x, s)
			require.NoError(t, err)
			require.Equal(t, want, got.ToRows())
		})
	}
}

func TestCompute_Correctness(t *testing.T) {
	x := randMatrix(t, 37, 12, 10)
	y := randMatrix(t, 21, 12, 10)
	want := naive(x, y)
	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			got, err := pairwise.Compute(x, y, s)
			require.NoError(t, err)
			r, c := got.Dims()
			require.Equal(t, 37, r)
			require.Equal(t, 21, c)
			for i := 0; i < r; i++ {
				for j := 0; j < c; j++ {
					assert.InDelta(t, want[i][j], got.At(i, j), 1e-9)
				}
			}
		})
	}
}

func TestCompute_Equivalence(t *testing.T) {
	x := randMatrix(t, 200, 50, 10)
	y := randMatrix(t, 150, 50, 10)
	direct, err := pairwise.Compute(x, y, pairwise.Direct)
	require.NoError(t, err)
	expansion, err := pairwise.Compute(x, y, pairwise.Expansion)
	require.NoError(t, err)
	// Squared distances are in the order of 50*100, the expansion loses a few
	// ulps to cancellation.
	for i, v := range direct.RawData() {
		require.InDelta(t, v, expansion.RawData()[i], 1e-8)
	}
}

func TestCompute_SelfDistance(t *testing.T) {
	x := randMatrix(t, 64, 16, 10)
	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			d, err := pairwise.Compute(x, x, s)
			require.NoError(t, err)
			for i := 0; i < d.Rows(); i++ {
				assert.InDelta(t, 0, d.At(i, i), 1e-9, "diagonal %d", i)
				for j := 0; j < d.Cols(); j++ {
					assert.InDelta(t, d.At(i, j), d.At(j, i), 1e-9)
					assert.GreaterOrEqual(t, d.At(i, j), 0.0)
				}
			}
		})
	}
}

func TestCompute_NonNegativeUnderCancellation(t *testing.T) {
	// Large, nearly identical rows make |x|^2 + |y|^2 - 2x.y cancel badly.
	base := make([]float64, 64)
	for i := range base {
		base[i] = 1e6 + rand.Float64()
	}
	rows := make([][]float64, 8)
	for i := range rows {
		rows[i] = make([]float64, len(base))
		for k := range base {
			rows[i][k] = base[k] + 1e-7*rand.Float64()
		}
	}
	x, err := pairwise.FromRows(rows)
	require.NoError(t, err)
	d, err := pairwise.Compute(x, x, pairwise.Expansion)
	require.NoError(t, err)
	for _, v := range d.RawData() {
		require.GreaterOrEqual(t, v, 0.0)
	}
}

func TestCompute_DimensionMismatch(t *testing.T) {
	x := randMatrix(t, 3, 5, 1)
	y := randMatrix(t, 4, 6, 1)
	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			_, err := pairwise.Compute(x, y, s)
			require.ErrorIs(t, err, pairwise.ErrDimensionMismatch)
			_, err = pairwise.ComputeContext(context.Background(), x, y, pairwise.Options{Strategy: s})
			require.ErrorIs(t, err, pairwise.ErrDimensionMismatch)
		})
	}
}

func TestCompute_Empty(t *testing.T) {
	x, err := pairwise.NewMatrix(0, 4, nil)
	require.NoError(t, err)
	y := randMatrix(t, 7, 4, 1)
	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			d, err := pairwise.Compute(x, y, s)
			require.NoError(t, err)
			r, c := d.Dims()
			require.Equal(t, 0, r)
			require.Equal(t, 7, c)
			require.Empty(t, d.RawData())
			// And the other way around
			d, err = pairwise.Compute(y, x, s)
			require.NoError(t, err)
			r, c = d.Dims()
			require.Equal(t, 7, r)
			require.Equal(t, 0, c)
		})
	}
}

func TestCompute_ZeroColumns(t *testing.T) {
	x, err := pairwise.NewMatrix(3, 0, nil)
	require.NoError(t, err)
	y, err := pairwise.NewMatrix(2, 0, nil)
	require.NoError(t, err)
	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			d, err := pairwise.Compute(x, y, s)
			require.NoError(t, err)
			require.Equal(t, [][]float64{{0, 0}, {0, 0}, {0, 0}}, d.ToRows())
		})
	}
}

func TestCompute_InvalidInput(t *testing.T) {
	x := randMatrix(t, 2, 2, 1)
	_, err := pairwise.Compute(nil, x, pairwise.Direct)
	require.ErrorIs(t, err, pairwise.ErrNilMatrix)
	_, err = pairwise.Compute(x, nil, pairwise.Expansion)
	require.ErrorIs(t, err, pairwise.ErrNilMatrix)
	_, err = pairwise.Compute(x, x, pairwise.Strategy(42))
	require.ErrorIs(t, err, pairwise.ErrUnknownStrategy)
}

func TestCompute_DoesNotModifyInputs(t *testing.T) {
	x := randMatrix(t, 10, 3, 1)
	y := randMatrix(t, 5, 3, 1)
	xRows, yRows := x.ToRows(), y.ToRows()
	for _, s := range strategies {
		_, err := pairwise.Compute(x, y, s)
		require.NoError(t, err)
	}
	require.Equal(t, xRows, x.ToRows())
	require.Equal(t, yRows, y.ToRows())
}

func TestCompute_NaNPropagates(t *testing.T) {
	x, err := pairwise.FromRows([][]float64{{math.NaN(), 0}, {1, 1}})
	require.NoError(t, err)
	for _, s := range strategies {
		d, err := pairwise.Compute(x, x, s)
		require.NoError(t, err)
		require.True(t, math.IsNaN(d.At(0, 1)))
		require.False(t, math.IsNaN(d.At(1, 1)))
	}
}

// ---------------------------

func TestComputeContext_MatchesCompute(t *testing.T) {
	x := randMatrix(t, 1000, 20, 10)
	y := randMatrix(t, 300, 20, 10)
	for _, s := range strategies {
		for _, tileRows := range []int{1, 7, 256, 5000} {
			t.Run(fmt.Sprintf("%s/tile=%d", s, tileRows), func(t *testing.T) {
				want, err := pairwise.Compute(x, y, s)
				require.NoError(t, err)
				var covered atomic.Int64
				got, err := pairwise.ComputeContext(context.Background(), x, y, pairwise.Options{
					Strategy: s,
					Workers:  4,
					TileRows: tileRows,
					OnTile:   func(rows int) { covered.Add(int64(rows)) },
				})
				require.NoError(t, err)
				require.Equal(t, int64(1000), covered.Load())
				for i, v := range want.RawData() {
					require.InDelta(t, v, got.RawData()[i], 1e-9)
				}
			})
		}
	}
}

func TestComputeContext_Cancelled(t *testing.T) {
	x := randMatrix(t, 100, 4, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pairwise.ComputeContext(ctx, x, x, pairwise.Options{Strategy: pairwise.Direct, TileRows: 10})
	require.ErrorIs(t, err, context.Canceled)
}

func TestComputeContext_MaxElements(t *testing.T) {
	x := randMatrix(t, 100, 4, 1)
	_, err := pairwise.ComputeContext(context.Background(), x, x, pairwise.Options{MaxElements: 9999})
	require.ErrorIs(t, err, pairwise.ErrTooLarge)
	d, err := pairwise.ComputeContext(context.Background(), x, x, pairwise.Options{MaxElements: 10000})
	require.NoError(t, err)
	require.Equal(t, 100, d.Rows())
}

func TestParseStrategy(t *testing.T) {
	for _, s := range strategies {
		got, err := pairwise.ParseStrategy(s.String())
		require.NoError(t, err)
		require.Equal(t, s, got)
	}
	_, err := pairwise.ParseStrategy("manhattan")
	require.ErrorIs(t, err, pairwise.ErrUnknownStrategy)
}

// ---------------------------

func BenchmarkCompute(b *testing.B) {
	// The original experiment: 2000 samples with 50 features against itself.
	x := randMatrix(b, 2000, 50, 10)
	for _, s := range strategies {
		b.Run(s.String(), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := pairwise.Compute(x, x, s); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
