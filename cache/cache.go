/*
Package cache keeps computed distance matrices in a diskstore so repeated runs
over the same inputs can skip the computation. Entries are keyed by a hash of
the strategy and both input matrices, a hit therefore always corresponds to
the exact same inputs up to hash collisions.
*/
package cache

import (
	"context"
	"fmt"
	"hash"

	"github.com/cespare/xxhash"
	"github.com/liebenlito/pairdist/conversion"
	"github.com/liebenlito/pairdist/diskstore"
	"github.com/liebenlito/pairdist/pairwise"
	"github.com/rs/zerolog/log"
)

const RESULTBUCKET = "results"

type ResultCache struct {
	store diskstore.DiskStore
}

func NewResultCache(store diskstore.DiskStore) (*ResultCache, error) {
	if err := store.CreateBucketsIfNotExists([]string{RESULTBUCKET}); err != nil {
		return nil, fmt.Errorf("could not create result bucket: %w", err)
	}
	return &ResultCache{store: store}, nil
}

func writeMatrix(d hash.Hash64, m *pairwise.Matrix) {
	d.Write(conversion.Uint64ToBytes(uint64(m.Rows())))
	d.Write(conversion.Uint64ToBytes(uint64(m.Cols())))
	d.Write(conversion.Float64ToBytes(m.RawData()))
}

// Key returns the cache key for computing the distances between x and y with
// the given strategy. Shapes are hashed along with the data so that a 2x3
// and a 3x2 matrix with the same values do not collide.
func Key(x, y *pairwise.Matrix, s pairwise.Strategy) []byte {
	d := xxhash.New()
	d.Write([]byte{byte(s)})
	writeMatrix(d, x)
	writeMatrix(d, y)
	return conversion.Uint64ToBytes(d.Sum64())
}

// Get returns the cached result if present. A miss is not an error.
func (c *ResultCache) Get(x, y *pairwise.Matrix, s pairwise.Strategy) (*pairwise.Matrix, bool, error) {
	key := Key(x, y, s)
	var result *pairwise.Matrix
	err := c.store.Read(RESULTBUCKET, func(b diskstore.ReadOnlyBucket) error {
		val := b.Get(key)
		if val == nil {
			return nil
		}
		// Decoding copies the data out of the transaction.
		m, err := conversion.DecodeMatrix(val)
		if err != nil {
			return fmt.Errorf("could not decode cached result: %w", err)
		}
		result = m
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, result != nil, nil
}

func (c *ResultCache) Put(x, y *pairwise.Matrix, s pairwise.Strategy, result *pairwise.Matrix) error {
	val, err := conversion.EncodeMatrix(result)
	if err != nil {
		return err
	}
	key := Key(x, y, s)
	return c.store.Write(RESULTBUCKET, func(b diskstore.Bucket) error {
		return b.Put(key, val)
	})
}

// Len returns the number of cached results.
func (c *ResultCache) Len() (int, error) {
	count := 0
	err := c.store.Read(RESULTBUCKET, func(b diskstore.ReadOnlyBucket) error {
		return b.ForEach(func(k, v []byte) error {
			count++
			return nil
		})
	})
	return count, err
}

// GetOrCompute returns the cached result or computes and stores it. The bool
// reports whether the result came from the cache.
func (c *ResultCache) GetOrCompute(ctx context.Context, x, y *pairwise.Matrix, opts pairwise.Options) (*pairwise.Matrix, bool, error) {
	if x == nil || y == nil {
		return nil, false, pairwise.ErrNilMatrix
	}
	result, ok, err := c.Get(x, y, opts.Strategy)
	if err != nil {
		// A corrupt entry is treated as a miss and overwritten below.
		log.Warn().Err(err).Str("path", c.store.Path()).Msg("could not read cached result")
	}
	if ok {
		return result, true, nil
	}
	result, err = pairwise.ComputeContext(ctx, x, y, opts)
	if err != nil {
		return nil, false, err
	}
	if err := c.Put(x, y, opts.Strategy, result); err != nil {
		return nil, false, fmt.Errorf("could not store result: %w", err)
	}
	return result, false, nil
}
