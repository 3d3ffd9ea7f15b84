package cluster

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// silhouette computes the mean silhouette coefficient. Points in
// singleton clusters contribute zero. Requires 2 <= k < n.
func silhouette(X [][]float64, labels []int, k int) float64 {
	n := len(X)
	counts := make([]int, k)
	for _, l := range labels {
		counts[l]++
	}

	total := 0.0
	sums := make([]float64, k)
	for i := range X {
		for c := range sums {
			sums[c] = 0
		}
		for j := range X {
			if i == j {
				continue
			}
			sums[labels[j]] += floats.Distance(X[i], X[j], 2)
		}

		own := labels[i]
		if counts[own] <= 1 {
			continue
		}
		a := sums[own] / float64(counts[own]-1)

		b := math.Inf(1)
		for c := 0; c < k; c++ {
			if c == own || counts[c] == 0 {
				continue
			}
			if mean := sums[c] / float64(counts[c]); mean < b {
				b = mean
			}
		}

		if maxAB := math.Max(a, b); maxAB > 0 {
			total += (b - a) / maxAB
		}
	}
	return total / float64(n)
}

// daviesBouldin computes the Davies-Bouldin index (lower is better):
// the mean over clusters of the worst-case ratio of summed intra-cluster
// scatter to centroid separation.
func daviesBouldin(X [][]float64, labels []int, centroids [][]float64) float64 {
	k := len(centroids)
	counts := make([]int, k)
	scatter := make([]float64, k)
	for i, row := range X {
		c := labels[i]
		counts[c]++
		scatter[c] += floats.Distance(row, centroids[c], 2)
	}
	for c := range scatter {
		if counts[c] > 0 {
			scatter[c] /= float64(counts[c])
		}
	}

	sum := 0.0
	for i := 0; i < k; i++ {
		worst := 0.0
		for j := 0; j < k; j++ {
			if i == j {
				continue
			}
			sep := floats.Distance(centroids[i], centroids[j], 2)
			if sep == 0 {
				continue
			}
			if ratio := (scatter[i] + scatter[j]) / sep; ratio > worst {
				worst = ratio
			}
		}
		sum += worst
	}
	return sum / float64(k)
}

// calinskiHarabasz computes the Calinski-Harabasz score (higher is
// better): between-cluster dispersion over within-cluster dispersion,
// each normalized by its degrees of freedom.
func calinskiHarabasz(X [][]float64, labels []int, centroids [][]float64) float64 {
	n := len(X)
	k := len(centroids)
	if k <= 1 || n <= k {
		return 0
	}

	dims := len(X[0])
	grand := make([]float64, dims)
	for _, row := range X {
		floats.Add(grand, row)
	}
	floats.Scale(1/float64(n), grand)

	counts := make([]int, k)
	within := 0.0
	for i, row := range X {
		c := labels[i]
		counts[c]++
		d := floats.Distance(row, centroids[c], 2)
		within += d * d
	}

	between := 0.0
	for c, centroid := range centroids {
		d := floats.Distance(centroid, grand, 2)
		between += float64(counts[c]) * d * d
	}

	if within == 0 {
		return 0
	}
	return (between / float64(k-1)) / (within / float64(n-k))
}
