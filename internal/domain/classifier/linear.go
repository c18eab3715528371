package classifier

import (
	"context"
	"fmt"
)

// linearModel thresholds a linear decision function at zero. It covers
// logistic regression and linear SVMs exported with their coefficients.
type linearModel struct {
	base
	coef      []float64
	intercept float64
}

func newLinear(spec *LinearSpec, b base) (*linearModel, error) {
	if spec == nil {
		return nil, fmt.Errorf("%w: kind %q needs a linear section", ErrInvalidArtifact, KindLinear)
	}
	if len(b.classes) != 2 {
		return nil, fmt.Errorf("%w: linear model needs exactly 2 classes, got %d", ErrInvalidArtifact, len(b.classes))
	}
	if len(spec.Coefficients) != b.dim {
		return nil, fmt.Errorf("%w: %d coefficients for %d features", ErrInvalidArtifact, len(spec.Coefficients), b.dim)
	}
	for i, c := range spec.Coefficients {
		if !finite(c) {
			return nil, fmt.Errorf("%w: coefficient %d is not finite", ErrInvalidArtifact, i)
		}
	}
	if !finite(spec.Intercept) {
		return nil, fmt.Errorf("%w: intercept is not finite", ErrInvalidArtifact)
	}
	return &linearModel{base: b, coef: spec.Coefficients, intercept: spec.Intercept}, nil
}

// Predict implements Classifier.
func (m *linearModel) Predict(ctx context.Context, batch [][]float64) ([]int, error) {
	return m.rows(ctx, batch, m.label)
}

func (m *linearModel) decision(row []float64) float64 {
	z := m.intercept
	for i, x := range row {
		z += m.coef[i] * x
	}
	return z
}

func (m *linearModel) label(row []float64) int {
	if m.decision(row) > 0 {
		return m.classes[1]
	}
	return m.classes[0]
}
