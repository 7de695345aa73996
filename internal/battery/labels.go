package battery

import "math/rand"

// LabelStrategy provides class labels for the supervised analyses. Real
// phenotype labels can be substituted without touching the runner; the default
// assigns positional demo labels the way the upstream pipeline did before
// sample metadata existed.
type LabelStrategy interface {
	Labels(nSamples, nClasses int) []int
}

// TargetStrategy provides the continuous response for the regression analyses.
type TargetStrategy interface {
	Target(nSamples int) []float64
}

// ModuloLabels assigns label i % nClasses to sample i.
type ModuloLabels struct{}

func (ModuloLabels) Labels(nSamples, nClasses int) []int {
	if nClasses < 2 {
		nClasses = 2
	}
	out := make([]int, nSamples)
	for i := range out {
		out[i] = i % nClasses
	}
	return out
}

// FixedLabels returns a caller-supplied label vector, truncated or cycled to
// the sample count.
type FixedLabels []int

func (f FixedLabels) Labels(nSamples, nClasses int) []int {
	out := make([]int, nSamples)
	for i := range out {
		if len(f) > 0 {
			out[i] = f[i%len(f)]
		}
	}
	return out
}

// SeededGaussianTarget draws a standard-normal response from a fixed seed so
// regression outputs are reproducible run to run.
type SeededGaussianTarget struct {
	Seed int64
}

func (s SeededGaussianTarget) Target(nSamples int) []float64 {
	rng := rand.New(rand.NewSource(s.Seed))
	out := make([]float64, nSamples)
	for i := range out {
		out[i] = rng.NormFloat64()
	}
	return out
}

// FixedTarget returns a caller-supplied response vector.
type FixedTarget []float64

func (f FixedTarget) Target(nSamples int) []float64 {
	out := make([]float64, nSamples)
	for i := range out {
		if len(f) > 0 {
			out[i] = f[i%len(f)]
		}
	}
	return out
}
