package classifier

import (
	"fmt"
	"math"
)

// scaler standardizes a row as (x - mean) / scale before inference.
// A nil scaler passes rows through untouched.
type scaler struct {
	mean  []float64
	scale []float64
}

func newScaler(spec *ScalerSpec, dim int) (*scaler, error) {
	if spec == nil {
		return nil, nil
	}
	if len(spec.Mean) != dim || len(spec.Scale) != dim {
		return nil, fmt.Errorf("%w: scaler needs %d means and scales, got %d and %d",
			ErrInvalidArtifact, dim, len(spec.Mean), len(spec.Scale))
	}
	for i := 0; i < dim; i++ {
		if !finite(spec.Mean[i]) || !finite(spec.Scale[i]) {
			return nil, fmt.Errorf("%w: scaler column %d is not finite", ErrInvalidArtifact, i)
		}
	}
	return &scaler{mean: spec.Mean, scale: spec.Scale}, nil
}

func (s *scaler) apply(row []float64) []float64 {
	if s == nil {
		return row
	}
	out := make([]float64, len(row))
	for i, x := range row {
		out[i] = x - s.mean[i]
		// zero-variance columns are centred only
		if s.scale[i] != 0 {
			out[i] /= s.scale[i]
		}
	}
	return out
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
