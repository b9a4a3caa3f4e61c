package distance

// VecFunc operates on two equal length vectors.
type VecFunc func(x, y []float64) float64

var dotProductImpl VecFunc = dotProductPureGo

// SquaredEuclidean returns sum_k (x[k]-y[k])^2. The vectors must have the
// same length.
func SquaredEuclidean(x, y []float64) float64 {
	return squaredEuclideanPureGo(x, y)
}

// Dot returns the dot product of x and y.
func Dot(x, y []float64) float64 {
	return dotProductImpl(x, y)
}

// SquaredNorm returns the squared L2 norm of x.
func SquaredNorm(x []float64) float64 {
	return dotProductImpl(x, x)
}

// Implementation reports which dot kernel is active, "gonum" or "pure".
func Implementation() string {
	if hasASMSupport() {
		return "gonum"
	}
	return "pure"
}
