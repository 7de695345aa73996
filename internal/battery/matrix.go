package battery

import "math"

// Matrix is a dense row-major numeric matrix. Within the battery, rows are
// samples and columns are features (genes).
type Matrix [][]float64

// Dims returns row and column counts.
func (m Matrix) Dims() (rows, cols int) {
	if len(m) == 0 {
		return 0, 0
	}
	return len(m), len(m[0])
}

// Transpose returns a new matrix with rows and columns swapped. The caller
// hands the battery a genes-by-samples expression matrix; analyses run on the
// samples-by-genes orientation.
func Transpose(in Matrix) Matrix {
	r, c := in.Dims()
	if r == 0 || c == 0 {
		return Matrix{}
	}
	out := make(Matrix, c)
	for j := 0; j < c; j++ {
		out[j] = make([]float64, r)
		for i := 0; i < r; i++ {
			out[j][i] = in[i][j]
		}
	}
	return out
}

// Standardize z-scores every column in place-safe fashion (a new matrix is
// returned). A zero-variance column becomes all zeros rather than dividing by
// zero.
func Standardize(in Matrix) Matrix {
	rows, cols := in.Dims()
	if rows == 0 || cols == 0 {
		return Matrix{}
	}
	out := make(Matrix, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}
	for j := 0; j < cols; j++ {
		var sum float64
		for i := 0; i < rows; i++ {
			sum += in[i][j]
		}
		mean := sum / float64(rows)
		var ss float64
		for i := 0; i < rows; i++ {
			d := in[i][j] - mean
			ss += d * d
		}
		std := math.Sqrt(ss / float64(rows))
		if std == 0 {
			continue // column stays all-zero
		}
		for i := 0; i < rows; i++ {
			out[i][j] = (in[i][j] - mean) / std
		}
	}
	return out
}

func euclidean(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return math.Sqrt(s)
}
