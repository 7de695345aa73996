package battery

// Kind tags the category of an analysis result.
type Kind string

const (
	KindClassification     Kind = "classification"
	KindClustering         Kind = "clustering"
	KindFeatureSelection   Kind = "feature_selection"
	KindDimensionReduction Kind = "dimension_reduction"
)

// Point is a 2-D chart coordinate.
type Point struct {
	X, Y float64
}

// FeatureWeight ranks one feature by an algorithm-specific weight.
type FeatureWeight struct {
	Name   string
	Weight float64
}

// ClassificationResult carries the numeric outputs of a classifier run on the
// full-dimensional standardized matrix. Projection exists only for chart
// rendering and never feeds back into the numbers.
type ClassificationResult struct {
	Predictions []int
	TrueLabels  []int
	Accuracy    float64
	CVAccuracy  float64
	CVStd       float64
	Confusion   [][]int
	Importance  []FeatureWeight // nil for algorithms without importances
	Projection  []Point
}

// ClusteringResult carries cluster assignments and cohesion scores.
type ClusteringResult struct {
	Labels       []int
	Clusters     int
	Silhouette   float64
	Centroids    [][]float64 // k-means only
	Inertia      float64     // k-means within-cluster sum of squares
	MergeHeights []float64   // hierarchical only, one per agglomeration step
	Projection   []Point
	CentroidProj []Point
}

// FeatureSelectionResult carries regularized-regression coefficients.
type FeatureSelectionResult struct {
	Alpha        float64
	Coefficients []float64
	Retained     int // features with non-zero influence
	TopFeatures  []FeatureWeight
}

// DimensionReductionResult carries principal axes and explained variance.
type DimensionReductionResult struct {
	ExplainedVariance []float64 // fraction per axis, descending
	Projection        []Point   // samples in the first two axes
}

// Result is the tagged outcome of one analysis in the battery. A failed
// result carries a reason and no numeric payload; it never aborts siblings.
type Result struct {
	Algorithm string
	Kind      Kind
	Failed    bool
	Reason    string

	Classification     *ClassificationResult
	Clustering         *ClusteringResult
	FeatureSelection   *FeatureSelectionResult
	DimensionReduction *DimensionReductionResult
}

func failed(algorithm string, kind Kind, reason string) Result {
	return Result{Algorithm: algorithm, Kind: kind, Failed: true, Reason: reason}
}
