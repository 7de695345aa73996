package battery

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// lassoSelect fits a lasso regression by cyclic coordinate descent against the
// strategy-provided target and reports the retained (non-zero) features.
func lassoSelect(X Matrix, y []float64, alpha float64, featureNames []string) Result {
	n, p := X.Dims()
	if n < 2 || p < 2 {
		return failed("lasso", KindFeatureSelection, "insufficient data")
	}
	if alpha <= 0 {
		alpha = 0.1
	}

	w := make([]float64, p)
	pred := make([]float64, n)
	colSq := make([]float64, p)
	for j := 0; j < p; j++ {
		for i := 0; i < n; i++ {
			colSq[j] += X[i][j] * X[i][j]
		}
	}
	lambda := alpha * float64(n)
	for iter := 0; iter < 100; iter++ {
		var maxDelta float64
		for j := 0; j < p; j++ {
			if colSq[j] == 0 {
				continue // zero-variance column, coefficient stays 0
			}
			var rho float64
			for i := 0; i < n; i++ {
				rho += X[i][j] * (y[i] - pred[i] + w[j]*X[i][j])
			}
			next := softThreshold(rho, lambda) / colSq[j]
			if next != w[j] {
				delta := next - w[j]
				for i := 0; i < n; i++ {
					pred[i] += delta * X[i][j]
				}
				if ad := math.Abs(delta); ad > maxDelta {
					maxDelta = ad
				}
				w[j] = next
			}
		}
		if maxDelta < 1e-7 {
			break
		}
	}

	retained := 0
	for _, v := range w {
		if math.Abs(v) > 1e-6 {
			retained++
		}
	}
	return Result{
		Algorithm: "lasso",
		Kind:      KindFeatureSelection,
		FeatureSelection: &FeatureSelectionResult{
			Alpha:        alpha,
			Coefficients: w,
			Retained:     retained,
			TopFeatures:  topWeights(w, featureNames, 20),
		},
	}
}

func softThreshold(x, lambda float64) float64 {
	switch {
	case x > lambda:
		return x - lambda
	case x < -lambda:
		return x + lambda
	default:
		return 0
	}
}

// ridgeRegress solves ridge regression in its dual form, w = Xᵀ(XXᵀ+αI)⁻¹y,
// which keeps the linear solve at sample dimension even when features number
// in the thousands.
func ridgeRegress(X Matrix, y []float64, alpha float64, featureNames []string) Result {
	n, p := X.Dims()
	if n < 2 || p < 2 {
		return failed("ridge", KindFeatureSelection, "insufficient data")
	}
	if alpha <= 0 {
		alpha = 1.0
	}

	flat := make([]float64, 0, n*p)
	for i := range X {
		flat = append(flat, X[i]...)
	}
	Xd := mat.NewDense(n, p, flat)

	K := mat.NewDense(n, n, nil)
	K.Mul(Xd, Xd.T())
	for i := 0; i < n; i++ {
		K.Set(i, i, K.At(i, i)+alpha)
	}

	yv := mat.NewVecDense(n, append([]float64(nil), y...))
	var a mat.VecDense
	if err := a.SolveVec(K, yv); err != nil {
		return failed("ridge", KindFeatureSelection, "singular system: "+err.Error())
	}

	var wv mat.VecDense
	wv.MulVec(Xd.T(), &a)
	w := make([]float64, p)
	for j := 0; j < p; j++ {
		w[j] = wv.AtVec(j)
	}

	retained := 0
	for _, v := range w {
		if math.Abs(v) > 1e-6 {
			retained++
		}
	}
	return Result{
		Algorithm: "ridge",
		Kind:      KindFeatureSelection,
		FeatureSelection: &FeatureSelectionResult{
			Alpha:        alpha,
			Coefficients: w,
			Retained:     retained,
			TopFeatures:  topWeights(w, featureNames, 20),
		},
	}
}
