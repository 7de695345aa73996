// Package battery executes a fixed, ordered set of numeric analyses over an
// expression matrix with per-analysis failure isolation: one misbehaving
// analysis is recorded as failed and never aborts its siblings.
package battery

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrNoSamples is the only structural error the runner surfaces to callers;
// everything else degrades into per-analysis failed results.
var ErrNoSamples = errors.New("expression matrix has no samples")

// Params configures a battery run.
type Params struct {
	Classes    int     // label classes for the classifiers (default 2)
	Neighbors  int     // k for the k-NN classifier (default 3)
	Clusters   int     // target cluster count (default 3)
	LassoAlpha float64 // lasso regularization strength (default 0.1)
	RidgeAlpha float64 // ridge regularization strength (default 1.0)
	Seed       int64   // RNG seed for k-means restarts and synthetic targets
	Parallel   bool    // fan analyses out across goroutines

	Labels LabelStrategy  // nil means ModuloLabels
	Target TargetStrategy // nil means SeededGaussianTarget{Seed}
}

// DefaultParams mirrors the conventional analysis defaults.
func DefaultParams() Params {
	return Params{Classes: 2, Neighbors: 3, Clusters: 3, LassoAlpha: 0.1, RidgeAlpha: 1.0, Seed: 42, Parallel: true}
}

func (p Params) withDefaults() Params {
	if p.Classes < 2 {
		p.Classes = 2
	}
	if p.Neighbors < 1 {
		p.Neighbors = 3
	}
	if p.Clusters < 2 {
		p.Clusters = 3
	}
	if p.LassoAlpha <= 0 {
		p.LassoAlpha = 0.1
	}
	if p.RidgeAlpha <= 0 {
		p.RidgeAlpha = 1.0
	}
	if p.Labels == nil {
		p.Labels = ModuloLabels{}
	}
	if p.Target == nil {
		p.Target = SeededGaussianTarget{Seed: p.Seed}
	}
	return p
}

// Run executes the battery over a genes-by-samples expression matrix. The
// matrix is transposed so analyses see samples as rows, then z-score
// standardized. Results come back in a fixed order regardless of execution
// order: knn, logistic, hierarchical, kmeans, lasso, ridge, pca.
func Run(ctx context.Context, expr Matrix, featureNames []string, p Params) ([]Result, error) {
	p = p.withDefaults()

	X := Standardize(Transpose(expr))
	n, _ := X.Dims()
	if n == 0 {
		return nil, ErrNoSamples
	}

	labels := p.Labels.Labels(n, p.Classes)
	target := p.Target.Target(n)

	type analysis struct {
		name string
		kind Kind
		run  func() Result
	}
	analyses := []analysis{
		{"knn", KindClassification, func() Result { return knnClassify(X, labels, p.Neighbors) }},
		{"logistic", KindClassification, func() Result { return logisticClassify(X, labels, featureNames) }},
		{"hierarchical", KindClustering, func() Result { return hierarchicalCluster(X, p.Clusters) }},
		{"kmeans", KindClustering, func() Result { return kmeansCluster(X, p.Clusters, p.Seed) }},
		{"lasso", KindFeatureSelection, func() Result { return lassoSelect(X, target, p.LassoAlpha, featureNames) }},
		{"ridge", KindFeatureSelection, func() Result { return ridgeRegress(X, target, p.RidgeAlpha, featureNames) }},
		{"pca", KindDimensionReduction, func() Result { return analyzePCA(X) }},
	}

	results := make([]Result, len(analyses))
	runOne := func(i int) {
		a := analyses[i]
		results[i] = guarded(a.name, a.kind, a.run)
	}

	if p.Parallel {
		g, _ := errgroup.WithContext(ctx)
		for i := range analyses {
			i := i
			g.Go(func() error {
				runOne(i)
				return nil
			})
		}
		// Analyses never return errors; the group is used purely as a join.
		_ = g.Wait()
	} else {
		for i := range analyses {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			runOne(i)
		}
	}

	attachProjections(X, results)
	return results, nil
}

// guarded runs one analysis inside its own failure boundary. A panic becomes
// a failed result for that analysis only.
func guarded(name string, kind Kind, run func() Result) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = failed(name, kind, fmt.Sprintf("analysis panicked: %v", r))
		}
	}()
	return run()
}

// attachProjections decorates successful results with 2-D chart coordinates.
// Numeric outputs are always computed on the full-dimensional data; the
// projection exists only for rendering.
func attachProjections(X Matrix, results []Result) {
	var shared []Point
	for i := range results {
		r := &results[i]
		if r.Failed {
			continue
		}
		switch {
		case r.Classification != nil:
			if shared == nil {
				shared = project2D(X)
			}
			r.Classification.Projection = shared
		case r.Clustering != nil:
			if len(r.Clustering.Centroids) > 0 {
				pts, cpts := projectWithExtras(X, r.Clustering.Centroids)
				r.Clustering.Projection = pts
				r.Clustering.CentroidProj = cpts
				continue
			}
			if shared == nil {
				shared = project2D(X)
			}
			r.Clustering.Projection = shared
		}
	}
}
