// Package classifier defines the contract for the pre-trained binary model and
// the Go-readable artifact formats it is loaded from.
package classifier

import (
	"context"
	"fmt"
)

// Kind names a supported model family.
type Kind string

// Supported model kinds.
const (
	KindLinear       Kind = "linear"
	KindDecisionTree Kind = "decision_tree"
	KindRandomForest Kind = "random_forest"
)

// Classifier predicts one label per row of a batch.
//
// Implementations are immutable after construction and safe for concurrent
// use without synchronization.
type Classifier interface {
	// Predict returns len(batch) labels, honoring ctx for cancellation.
	Predict(ctx context.Context, batch [][]float64) ([]int, error)

	// Dimension is the row width the model expects.
	Dimension() int

	// Kind reports the model family.
	Kind() Kind

	// Classes lists the labels the model can emit.
	Classes() []int
}

// base carries what every model family shares.
type base struct {
	kind    Kind
	dim     int
	classes []int
	scaler  *scaler
}

func (b *base) Dimension() int { return b.dim }
func (b *base) Kind() Kind     { return b.kind }

func (b *base) Classes() []int {
	out := make([]int, len(b.classes))
	copy(out, b.classes)
	return out
}

// rows validates batch shape and applies the scaler, calling fn per prepared row.
func (b *base) rows(ctx context.Context, batch [][]float64, fn func(row []float64) int) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if len(batch) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrShapeMismatch)
	}
	out := make([]int, len(batch))
	for i, row := range batch {
		if len(row) != b.dim {
			return nil, fmt.Errorf("%w: row %d has %d features, model expects %d", ErrShapeMismatch, i, len(row), b.dim)
		}
		out[i] = fn(b.scaler.apply(row))
	}
	return out, nil
}
