package battery

import (
	"fmt"
	"math"
	"sort"
)

// knnClassify runs a k-nearest-neighbour classifier over the standardized
// samples-by-features matrix with the given labels. k is capped at n-1.
func knnClassify(X Matrix, labels []int, k int) Result {
	n, p := X.Dims()
	if n < 2 || p < 2 {
		return failed("knn", KindClassification, "insufficient data")
	}
	if k < 1 {
		k = 3
	}
	if k > n-1 {
		k = n - 1
	}
	nClasses := maxLabel(labels) + 1

	predict := func(trainX Matrix, trainY []int, x []float64) int {
		kk := k
		if kk > len(trainX) {
			kk = len(trainX)
		}
		return knnVote(trainX, trainY, x, kk, nClasses)
	}

	preds := make([]int, n)
	for i := range X {
		preds[i] = predict(X, labels, X[i])
	}
	cvMean, cvStd := crossValidate(X, labels, func(trX Matrix, trY []int, teX Matrix) []int {
		out := make([]int, len(teX))
		for i := range teX {
			out[i] = predict(trX, trY, teX[i])
		}
		return out
	})

	return Result{
		Algorithm: "knn",
		Kind:      KindClassification,
		Classification: &ClassificationResult{
			Predictions: preds,
			TrueLabels:  labels,
			Accuracy:    accuracy(labels, preds),
			CVAccuracy:  cvMean,
			CVStd:       cvStd,
			Confusion:   confusion(labels, preds, nClasses),
		},
	}
}

func knnVote(trainX Matrix, trainY []int, x []float64, k, nClasses int) int {
	type nd struct {
		d float64
		y int
	}
	ds := make([]nd, len(trainX))
	for i := range trainX {
		ds[i] = nd{d: euclidean(trainX[i], x), y: trainY[i]}
	}
	sort.SliceStable(ds, func(i, j int) bool { return ds[i].d < ds[j].d })
	votes := make([]int, nClasses)
	for i := 0; i < k && i < len(ds); i++ {
		votes[ds[i].y]++
	}
	best := 0
	for c := 1; c < nClasses; c++ {
		if votes[c] > votes[best] {
			best = c
		}
	}
	return best
}

// logisticClassify trains a one-vs-rest logistic regression by gradient
// descent with fixed iterations and step size, so identical input yields
// identical weights. It also ranks features by aggregate |weight|.
func logisticClassify(X Matrix, labels []int, featureNames []string) Result {
	n, p := X.Dims()
	if n < 2 || p < 2 {
		return failed("logistic", KindClassification, "insufficient data")
	}
	nClasses := maxLabel(labels) + 1
	if nClasses < 2 {
		return failed("logistic", KindClassification, "need at least two classes")
	}

	train := func(trX Matrix, trY []int) ([][]float64, []float64) {
		return logisticTrain(trX, trY, nClasses)
	}
	predictAll := func(w [][]float64, b []float64, teX Matrix) []int {
		out := make([]int, len(teX))
		for i := range teX {
			out[i] = logisticPredict(w, b, teX[i])
		}
		return out
	}

	w, b := train(X, labels)
	preds := predictAll(w, b, X)
	cvMean, cvStd := crossValidate(X, labels, func(trX Matrix, trY []int, teX Matrix) []int {
		cw, cb := train(trX, trY)
		return predictAll(cw, cb, teX)
	})

	// Aggregate per-feature |weight| across the one-vs-rest models.
	agg := make([]float64, p)
	for _, wc := range w {
		for j, v := range wc {
			agg[j] += math.Abs(v)
		}
	}
	importance := topWeights(agg, featureNames, 20)

	return Result{
		Algorithm: "logistic",
		Kind:      KindClassification,
		Classification: &ClassificationResult{
			Predictions: preds,
			TrueLabels:  labels,
			Accuracy:    accuracy(labels, preds),
			CVAccuracy:  cvMean,
			CVStd:       cvStd,
			Confusion:   confusion(labels, preds, nClasses),
			Importance:  importance,
		},
	}
}

const (
	logisticIters = 200
	logisticStep  = 0.1
	logisticL2    = 1e-3
)

func logisticTrain(X Matrix, y []int, nClasses int) (w [][]float64, b []float64) {
	n, p := X.Dims()
	w = make([][]float64, nClasses)
	b = make([]float64, nClasses)
	for c := 0; c < nClasses; c++ {
		w[c] = make([]float64, p)
		for iter := 0; iter < logisticIters; iter++ {
			gw := make([]float64, p)
			var gb float64
			for i := 0; i < n; i++ {
				t := 0.0
				if y[i] == c {
					t = 1.0
				}
				z := b[c]
				for j := 0; j < p; j++ {
					z += w[c][j] * X[i][j]
				}
				e := sigmoid(z) - t
				for j := 0; j < p; j++ {
					gw[j] += e * X[i][j]
				}
				gb += e
			}
			inv := 1.0 / float64(n)
			for j := 0; j < p; j++ {
				w[c][j] -= logisticStep * (gw[j]*inv + logisticL2*w[c][j])
			}
			b[c] -= logisticStep * gb * inv
		}
	}
	return w, b
}

func logisticPredict(w [][]float64, b []float64, x []float64) int {
	best, bestScore := 0, math.Inf(-1)
	for c := range w {
		z := b[c]
		for j := range x {
			z += w[c][j] * x[j]
		}
		if z > bestScore {
			best, bestScore = c, z
		}
	}
	return best
}

func sigmoid(z float64) float64 { return 1.0 / (1.0 + math.Exp(-z)) }

// crossValidate runs k-fold cross validation with k = min(5, n/2), never
// below 2, using contiguous folds so the split is deterministic.
func crossValidate(X Matrix, y []int, fit func(trainX Matrix, trainY []int, testX Matrix) []int) (mean, std float64) {
	n := len(X)
	k := n / 2
	if k > 5 {
		k = 5
	}
	if k < 2 {
		return 0, 0
	}
	accs := make([]float64, 0, k)
	for f := 0; f < k; f++ {
		lo := f * n / k
		hi := (f + 1) * n / k
		var trX, teX Matrix
		var trY, teY []int
		for i := 0; i < n; i++ {
			if i >= lo && i < hi {
				teX = append(teX, X[i])
				teY = append(teY, y[i])
			} else {
				trX = append(trX, X[i])
				trY = append(trY, y[i])
			}
		}
		if len(teX) == 0 || len(trX) == 0 {
			continue
		}
		preds := fit(trX, trY, teX)
		accs = append(accs, accuracy(teY, preds))
	}
	if len(accs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, a := range accs {
		sum += a
	}
	mean = sum / float64(len(accs))
	var ss float64
	for _, a := range accs {
		d := a - mean
		ss += d * d
	}
	std = math.Sqrt(ss / float64(len(accs)))
	return mean, std
}

func accuracy(truth, pred []int) float64 {
	if len(truth) == 0 {
		return 0
	}
	hits := 0
	for i := range truth {
		if truth[i] == pred[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(truth))
}

func confusion(truth, pred []int, nClasses int) [][]int {
	cm := make([][]int, nClasses)
	for i := range cm {
		cm[i] = make([]int, nClasses)
	}
	for i := range truth {
		cm[truth[i]][pred[i]]++
	}
	return cm
}

func maxLabel(labels []int) int {
	m := 0
	for _, l := range labels {
		if l > m {
			m = l
		}
	}
	return m
}

func topWeights(vals []float64, names []string, n int) []FeatureWeight {
	out := make([]FeatureWeight, len(vals))
	for i, v := range vals {
		name := fmt.Sprintf("feature_%d", i+1)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		out[i] = FeatureWeight{Name: name, Weight: v}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Weight) > math.Abs(out[j].Weight)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
