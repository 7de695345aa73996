package battery

import (
	"math"
	"math/rand"
)

// kmeansCluster runs seeded k-means with ten restarts, keeping the assignment
// with the lowest inertia. Deterministic for a fixed seed.
func kmeansCluster(X Matrix, k int, seed int64) Result {
	n, p := X.Dims()
	if n < 2 || p < 2 {
		return failed("kmeans", KindClustering, "insufficient data")
	}
	if k < 2 {
		k = 3
	}
	if k > n {
		k = n
	}

	rng := rand.New(rand.NewSource(seed))
	bestInertia := math.Inf(1)
	var bestLabels []int
	var bestCentroids [][]float64
	for restart := 0; restart < 10; restart++ {
		labels, centroids, inertia := kmeansOnce(X, k, rng)
		if inertia < bestInertia {
			bestInertia = inertia
			bestLabels = labels
			bestCentroids = centroids
		}
	}

	return Result{
		Algorithm: "kmeans",
		Kind:      KindClustering,
		Clustering: &ClusteringResult{
			Labels:     bestLabels,
			Clusters:   k,
			Silhouette: silhouette(X, bestLabels, k),
			Centroids:  bestCentroids,
			Inertia:    bestInertia,
		},
	}
}

func kmeansOnce(X Matrix, k int, rng *rand.Rand) (labels []int, centroids [][]float64, inertia float64) {
	n, p := X.Dims()
	// Initialize centroids from distinct random samples.
	perm := rng.Perm(n)
	centroids = make([][]float64, k)
	for c := 0; c < k; c++ {
		centroids[c] = append([]float64(nil), X[perm[c%n]]...)
	}
	labels = make([]int, n)
	for iter := 0; iter < 100; iter++ {
		changed := false
		for i := range X {
			best, bestD := 0, math.Inf(1)
			for c := range centroids {
				if d := euclidean(X[i], centroids[c]); d < bestD {
					best, bestD = c, d
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}
		// Recompute centroids; empty clusters keep their previous position.
		counts := make([]int, k)
		sums := make([][]float64, k)
		for c := range sums {
			sums[c] = make([]float64, p)
		}
		for i, l := range labels {
			counts[l]++
			for j := 0; j < p; j++ {
				sums[l][j] += X[i][j]
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			for j := 0; j < p; j++ {
				centroids[c][j] = sums[c][j] / float64(counts[c])
			}
		}
		if !changed {
			break
		}
	}
	for i, l := range labels {
		d := euclidean(X[i], centroids[l])
		inertia += d * d
	}
	return labels, centroids, inertia
}

// hierarchicalCluster runs agglomerative clustering with average linkage,
// cutting the tree at k clusters. MergeHeights records the linkage distance
// of every agglomeration step for the hierarchy chart.
func hierarchicalCluster(X Matrix, k int) Result {
	n, p := X.Dims()
	if n < 2 || p < 2 {
		return failed("hierarchical", KindClustering, "insufficient data")
	}
	if k < 2 {
		k = 3
	}
	if k > n {
		k = n
	}

	// active[i] holds the member indices of cluster i; nil means merged away.
	active := make([][]int, n)
	for i := range active {
		active[i] = []int{i}
	}
	// Pairwise sample distances, computed once.
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := 0; j < i; j++ {
			d := euclidean(X[i], X[j])
			dist[i][j] = d
			dist[j][i] = d
		}
	}
	avgLink := func(a, b []int) float64 {
		var s float64
		for _, i := range a {
			for _, j := range b {
				s += dist[i][j]
			}
		}
		return s / float64(len(a)*len(b))
	}

	remaining := n
	var heights []float64
	for remaining > 1 {
		bi, bj, bd := -1, -1, math.Inf(1)
		for i := 0; i < n; i++ {
			if active[i] == nil {
				continue
			}
			for j := i + 1; j < n; j++ {
				if active[j] == nil {
					continue
				}
				if d := avgLink(active[i], active[j]); d < bd {
					bi, bj, bd = i, j, d
				}
			}
		}
		heights = append(heights, bd)
		active[bi] = append(active[bi], active[bj]...)
		active[bj] = nil
		remaining--
		if remaining == k {
			// Snapshot the k-cluster cut; keep merging to finish the heights.
			labels := make([]int, n)
			next := 0
			for i := 0; i < n; i++ {
				if active[i] == nil {
					continue
				}
				for _, m := range active[i] {
					labels[m] = next
				}
				next++
			}
			return Result{
				Algorithm: "hierarchical",
				Kind:      KindClustering,
				Clustering: &ClusteringResult{
					Labels:       labels,
					Clusters:     k,
					Silhouette:   silhouette(X, labels, k),
					MergeHeights: finishHeights(active, heights, avgLink, n),
				},
			}
		}
	}
	// k >= n: every sample is its own cluster.
	labels := make([]int, n)
	for i := range labels {
		labels[i] = i
	}
	return Result{
		Algorithm:  "hierarchical",
		Kind:       KindClustering,
		Clustering: &ClusteringResult{Labels: labels, Clusters: n, Silhouette: 0},
	}
}

// finishHeights continues merging the snapshot to record the full hierarchy.
func finishHeights(active [][]int, heights []float64, avgLink func(a, b []int) float64, n int) []float64 {
	work := make([][]int, len(active))
	for i, c := range active {
		if c != nil {
			work[i] = append([]int(nil), c...)
		}
	}
	remaining := 0
	for _, c := range work {
		if c != nil {
			remaining++
		}
	}
	for remaining > 1 {
		bi, bj, bd := -1, -1, math.Inf(1)
		for i := 0; i < n; i++ {
			if work[i] == nil {
				continue
			}
			for j := i + 1; j < n; j++ {
				if work[j] == nil {
					continue
				}
				if d := avgLink(work[i], work[j]); d < bd {
					bi, bj, bd = i, j, d
				}
			}
		}
		heights = append(heights, bd)
		work[bi] = append(work[bi], work[bj]...)
		work[bj] = nil
		remaining--
	}
	return heights
}

// silhouette computes the mean silhouette coefficient. Single-member clusters
// contribute zero; a degenerate single-cluster labelling scores zero.
func silhouette(X Matrix, labels []int, k int) float64 {
	n := len(X)
	if n < 2 {
		return 0
	}
	present := map[int]bool{}
	for _, l := range labels {
		present[l] = true
	}
	if len(present) < 2 {
		return 0
	}
	var total float64
	for i := 0; i < n; i++ {
		var intra, intraN float64
		interMean := map[int]*struct {
			sum float64
			n   int
		}{}
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			d := euclidean(X[i], X[j])
			if labels[j] == labels[i] {
				intra += d
				intraN++
			} else {
				e := interMean[labels[j]]
				if e == nil {
					e = &struct {
						sum float64
						n   int
					}{}
					interMean[labels[j]] = e
				}
				e.sum += d
				e.n++
			}
		}
		if intraN == 0 {
			continue // singleton cluster contributes 0
		}
		a := intra / intraN
		b := math.Inf(1)
		for _, e := range interMean {
			if m := e.sum / float64(e.n); m < b {
				b = m
			}
		}
		if m := math.Max(a, b); m > 0 {
			total += (b - a) / m
		}
	}
	return total / float64(n)
}
