/*
Package pairwise computes the matrix of squared Euclidean distances between
the rows of two matrices X (N1 x m) and Y (N2 x m):

	D[i][j] = sum_k (X[i][k] - Y[j][k])^2

Two strategies are offered. Direct subtracts every pair of rows and is the
ground truth. Expansion rewrites the distance as |x|^2 + |y|^2 - 2 x.y so the
bulk of the work becomes a single matrix product, trading a little precision
for far less memory traffic at large N.

Inputs are never modified and the returned matrix is owned by the caller.
*/
package pairwise

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultTileRows is the number of X rows handed to a worker at a time.
const DefaultTileRows = 256

type Options struct {
	Strategy Strategy
	// Maximum number of concurrent tiles, 0 means GOMAXPROCS
	Workers int
	// Rows of X per tile, 0 means DefaultTileRows
	TileRows int
	// Upper bound on N1*N2 output elements, 0 means no bound
	MaxElements int
	// Called after each tile completes with the number of rows it covered.
	// It may be called concurrently.
	OnTile func(rows int)
}

// Compute returns the N1 x N2 squared distance matrix between the rows of x
// and y using the given strategy. It runs on the calling goroutine.
func Compute(x, y *Matrix, s Strategy) (*Matrix, error) {
	out, err := prepare(x, y, s, 0)
	if err != nil {
		return nil, err
	}
	bandFn := bandFunc(x, y, out, s)
	bandFn(0, x.rows)
	return out, nil
}

// ComputeContext is Compute with the rows of x split into tiles that are
// processed concurrently. Tiles write disjoint rows of the output so no
// ordering between them is required. The context is checked before every
// tile, on cancellation the partial output is discarded.
func ComputeContext(ctx context.Context, x, y *Matrix, opts Options) (*Matrix, error) {
	out, err := prepare(x, y, opts.Strategy, opts.MaxElements)
	if err != nil {
		return nil, err
	}
	// ---------------------------
	tileRows := opts.TileRows
	if tileRows <= 0 {
		tileRows = DefaultTileRows
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	log.Debug().Str("strategy", opts.Strategy.String()).Int("rows", x.rows).Int("cols", y.rows).Int("dim", x.cols).Int("tileRows", tileRows).Int("workers", workers).Msg("pairwise compute")
	// ---------------------------
	bandFn := bandFunc(x, y, out, opts.Strategy)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for from := 0; from < x.rows; from += tileRows {
		to := min(from+tileRows, x.rows)
		// Go blocks once the limit is reached so this also stops scheduling
		// new tiles soon after cancellation.
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			bandFn(from, to)
			if opts.OnTile != nil {
				opts.OnTile(to - from)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("pairwise compute cancelled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pairwise compute cancelled: %w", err)
	}
	return out, nil
}

// prepare validates the inputs and allocates the output.
func prepare(x, y *Matrix, s Strategy, maxElements int) (*Matrix, error) {
	if x == nil || y == nil {
		return nil, ErrNilMatrix
	}
	if !s.valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, s)
	}
	if x.cols != y.cols {
		return nil, fmt.Errorf("%w: x is %dx%d, y is %dx%d", ErrDimensionMismatch, x.rows, x.cols, y.rows, y.cols)
	}
	size, ok := mulSize(x.rows, y.rows)
	if !ok {
		return nil, fmt.Errorf("%w: %dx%d overflows", ErrTooLarge, x.rows, y.rows)
	}
	if maxElements > 0 && size > maxElements {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d elements", ErrTooLarge, x.rows, y.rows, maxElements)
	}
	return &Matrix{rows: x.rows, cols: y.rows, data: make([]float64, size)}, nil
}

func bandFunc(x, y, out *Matrix, s Strategy) func(from, to int) {
	if s == Expansion {
		plan := newExpansionPlan(y)
		return func(from, to int) { plan.band(x, out, from, to) }
	}
	return func(from, to int) { directBand(x, y, out, from, to) }
}
