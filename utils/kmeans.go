package utils

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/liebenlito/pairdist/distance"
	"github.com/liebenlito/pairdist/pairwise"
	"github.com/rs/zerolog/log"
)

var ErrInvalidK = errors.New("invalid number of clusters")

const DefaultMaxIter = 100

/* KMeans follows the standard naive algorithm, also known as Lloyd's
 * algorithm. The assignment stage is where squared distances pay off, we only
 * need the closest centroid so the square root is never taken and the whole
 * N x K distance matrix comes out of a single pairwise computation. */
type KMeans struct {
	// Number of clusters
	K int
	// Maximum number of iterations, 0 means DefaultMaxIter
	MaxIter int
	// Optional source of randomness for picking the first centroid
	Rand *rand.Rand
	// ---------------------------
	// Cluster centroids, K x m
	Centroids *pairwise.Matrix
	// Labels index into the rows of Centroids
	Labels []int
	// Number of iterations run before convergence or MaxIter
	Iterations int
}

// Fit performs the KMeans clustering algorithm on the rows of X.
func (km *KMeans) Fit(X *pairwise.Matrix) error {
	if X == nil {
		return pairwise.ErrNilMatrix
	}
	n, m := X.Dims()
	if km.K <= 0 || km.K > n {
		return fmt.Errorf("%w: K=%d for %d points", ErrInvalidK, km.K, n)
	}
	logger := log.With().Str("module", "kmeans").Int("size", n).Int("k", km.K).Logger()
	// ---------------------------
	/* Initialise centroids by repeatedly picking the point furthest from the
	 * existing centroids. This takes more time than random picks but helps
	 * converge faster. */
	startTime := time.Now()
	centroidDists := make([]float64, n)
	for i := range centroidDists {
		centroidDists[i] = math.Inf(1)
	}
	centroids, err := pairwise.NewMatrix(km.K, m, nil)
	if err != nil {
		return err
	}
	alreadyCentroid := make(map[int]struct{})
	first := km.intN(n)
	alreadyCentroid[first] = struct{}{}
	copy(centroids.RawRow(0), X.RawRow(first))
	for i := 1; i < km.K; i++ {
		furthestDist := -1.0
		furthestId := 0
		for j := 0; j < n; j++ {
			if _, ok := alreadyCentroid[j]; ok {
				continue
			}
			centroidDist := distance.SquaredEuclidean(X.RawRow(j), centroids.RawRow(i-1))
			if centroidDist < centroidDists[j] {
				centroidDists[j] = centroidDist
			}
			if centroidDists[j] > furthestDist {
				furthestDist = centroidDists[j]
				furthestId = j
			}
		}
		alreadyCentroid[furthestId] = struct{}{}
		copy(centroids.RawRow(i), X.RawRow(furthestId))
	}
	logger.Debug().Dur("duration", time.Since(startTime)).Msg("initialising centroids")
	// ---------------------------
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}
	// The sums are used to calculate the mean and then update the centroids
	centroidSums := make([]float64, km.K*m)
	centroidCounts := make([]int, km.K)
	// ---------------------------
	startTime = time.Now()
	maxIter := km.MaxIter
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}
	iter := 0
	for ; iter < maxIter; iter++ {
		// ---------------------------
		// Assignment stage, answer the question: which cluster does each point
		// belong to?
		dists, err := pairwise.Compute(X, centroids, pairwise.Expansion)
		if err != nil {
			return fmt.Errorf("could not compute centroid distances: %w", err)
		}
		changeCount := 0
		for i := 0; i < n; i++ {
			row := dists.RawRow(i)
			closest := 0
			for j := 1; j < km.K; j++ {
				if row[j] < row[closest] {
					closest = j
				}
			}
			if labels[i] != closest {
				changeCount++
				labels[i] = closest
			}
		}
		if changeCount == 0 {
			break
		}
		// ---------------------------
		// Update stage, answer the question: what is the new centroid of each cluster?
		clear(centroidSums)
		clear(centroidCounts)
		for i, label := range labels {
			centroidCounts[label]++
			sum := centroidSums[label*m : (label+1)*m]
			for j, v := range X.RawRow(i) {
				sum[j] += v
			}
		}
		for c := 0; c < km.K; c++ {
			// Empty clusters keep their previous centroid
			if centroidCounts[c] == 0 {
				continue
			}
			row := centroids.RawRow(c)
			for j := range row {
				row[j] = centroidSums[c*m+j] / float64(centroidCounts[c])
			}
		}
	}
	logger.Debug().Dur("duration", time.Since(startTime)).Int("iterations", iter).Msg("fitting KMeans")
	// ---------------------------
	km.Centroids = centroids
	km.Labels = labels
	km.Iterations = iter
	return nil
}

func (km *KMeans) intN(n int) int {
	if km.Rand != nil {
		return km.Rand.IntN(n)
	}
	return rand.IntN(n)
}
