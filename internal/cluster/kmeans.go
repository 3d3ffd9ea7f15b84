package cluster

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// fit is the outcome of one K-Means run.
type fit struct {
	centroids [][]float64
	labels    []int
	inertia   float64
}

// runKMeans fits K-Means with k-means++ initialization. Each restart
// derives its RNG from the base seed, so runs over identical input are
// byte-identical. The restart with the lowest inertia wins.
func runKMeans(X [][]float64, k int, seed int64, restarts, maxIter int, tol float64) fit {
	best := fit{inertia: math.Inf(1)}
	for r := 0; r < restarts; r++ {
		rng := rand.New(rand.NewSource(seed + int64(r)))
		candidate := lloyd(X, k, rng, maxIter, tol)
		if candidate.inertia < best.inertia {
			best = candidate
		}
	}
	return best
}

func lloyd(X [][]float64, k int, rng *rand.Rand, maxIter int, tol float64) fit {
	centroids := seedPlusPlus(X, k, rng)
	labels := make([]int, len(X))

	for iter := 0; iter < maxIter; iter++ {
		assign(X, centroids, labels)
		moved := update(X, centroids, labels)
		if moved <= tol {
			break
		}
	}

	assign(X, centroids, labels)
	inertia := 0.0
	for i, row := range X {
		d := floats.Distance(row, centroids[labels[i]], 2)
		inertia += d * d
	}
	return fit{centroids: centroids, labels: labels, inertia: inertia}
}

// seedPlusPlus picks initial centroids: the first uniformly, the rest
// weighted by squared distance to the nearest already-chosen centroid.
func seedPlusPlus(X [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(X[rng.Intn(len(X))]))

	d2 := make([]float64, len(X))
	for len(centroids) < k {
		total := 0.0
		for i, row := range X {
			nearest := math.Inf(1)
			for _, c := range centroids {
				d := floats.Distance(row, c, 2)
				if dd := d * d; dd < nearest {
					nearest = dd
				}
			}
			d2[i] = nearest
			total += nearest
		}

		if total == 0 {
			// All points coincide with chosen centroids.
			centroids = append(centroids, clone(X[rng.Intn(len(X))]))
			continue
		}

		target := rng.Float64() * total
		idx := len(X) - 1
		acc := 0.0
		for i, w := range d2 {
			acc += w
			if acc >= target {
				idx = i
				break
			}
		}
		centroids = append(centroids, clone(X[idx]))
	}
	return centroids
}

func assign(X, centroids [][]float64, labels []int) {
	for i, row := range X {
		bestD := math.Inf(1)
		for c, centroid := range centroids {
			d := floats.Distance(row, centroid, 2)
			if d < bestD {
				bestD = d
				labels[i] = c
			}
		}
	}
}

// update recomputes centroids as member means and returns the total
// squared centroid movement. An emptied cluster is reseeded with the
// point farthest from its current centroid.
func update(X, centroids [][]float64, labels []int) float64 {
	k := len(centroids)
	dims := len(centroids[0])
	sums := make([][]float64, k)
	counts := make([]int, k)
	for c := range sums {
		sums[c] = make([]float64, dims)
	}
	for i, row := range X {
		floats.Add(sums[labels[i]], row)
		counts[labels[i]]++
	}

	moved := 0.0
	for c := range centroids {
		if counts[c] == 0 {
			centroids[c] = clone(X[farthestPoint(X, centroids, labels)])
			moved += 1 // force another iteration
			continue
		}
		next := sums[c]
		floats.Scale(1/float64(counts[c]), next)
		d := floats.Distance(centroids[c], next, 2)
		moved += d * d
		centroids[c] = next
	}
	return moved
}

func farthestPoint(X, centroids [][]float64, labels []int) int {
	worst, idx := -1.0, 0
	for i, row := range X {
		d := floats.Distance(row, centroids[labels[i]], 2)
		if d > worst {
			worst = d
			idx = i
		}
	}
	return idx
}

func clone(row []float64) []float64 {
	out := make([]float64, len(row))
	copy(out, row)
	return out
}
