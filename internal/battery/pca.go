package battery

import (
	"gonum.org/v1/gonum/mat"
)

// analyzePCA computes principal axes of the standardized matrix via thin SVD
// and returns explained-variance fractions plus the 2-D sample projection.
func analyzePCA(X Matrix) Result {
	n, p := X.Dims()
	if n < 2 || p < 2 {
		return failed("pca", KindDimensionReduction, "insufficient data")
	}

	flat := make([]float64, 0, n*p)
	for i := range X {
		flat = append(flat, X[i]...)
	}
	var svd mat.SVD
	if ok := svd.Factorize(mat.NewDense(n, p, flat), mat.SVDThin); !ok {
		return failed("pca", KindDimensionReduction, "svd did not converge")
	}
	values := svd.Values(nil)

	var total float64
	variances := make([]float64, len(values))
	for i, s := range values {
		v := s * s / float64(n-1)
		variances[i] = v
		total += v
	}
	explained := make([]float64, len(variances))
	if total > 0 {
		for i, v := range variances {
			explained[i] = v / total
		}
	}

	var u mat.Dense
	svd.UTo(&u)
	proj := make([]Point, n)
	for i := 0; i < n; i++ {
		var x, y float64
		if len(values) > 0 {
			x = u.At(i, 0) * values[0]
		}
		if len(values) > 1 {
			y = u.At(i, 1) * values[1]
		}
		proj[i] = Point{X: x, Y: y}
	}

	return Result{
		Algorithm: "pca",
		Kind:      KindDimensionReduction,
		DimensionReduction: &DimensionReductionResult{
			ExplainedVariance: explained,
			Projection:        proj,
		},
	}
}

// project2D maps arbitrary-dimensional rows into the first two principal axes
// strictly for chart rendering. It never feeds analysis numerics.
func project2D(X Matrix) []Point {
	n, p := X.Dims()
	if n == 0 {
		return nil
	}
	if p <= 2 {
		pts := make([]Point, n)
		for i := range X {
			var x, y float64
			if p > 0 {
				x = X[i][0]
			}
			if p > 1 {
				y = X[i][1]
			}
			pts[i] = Point{X: x, Y: y}
		}
		return pts
	}
	r := analyzePCA(X)
	if r.Failed {
		pts := make([]Point, n)
		for i := range X {
			pts[i] = Point{X: X[i][0], Y: X[i][1]}
		}
		return pts
	}
	return r.DimensionReduction.Projection
}

// projectOnto maps extra rows (e.g. k-means centroids) into the same 2-D
// coordinate frame computed for the sample rows, by recomputing the axes over
// the combined matrix and splitting the projection.
func projectWithExtras(X Matrix, extras Matrix) (samples []Point, extra []Point) {
	n, _ := X.Dims()
	combined := make(Matrix, 0, len(X)+len(extras))
	combined = append(combined, X...)
	combined = append(combined, extras...)
	pts := project2D(combined)
	if len(pts) < n {
		return pts, nil
	}
	return pts[:n], pts[n:]
}
