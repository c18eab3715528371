package classifier

import (
	"context"
	"fmt"
)

// forestModel takes a majority vote over its trees. Ties go to the smallest
// label so results do not depend on map iteration order.
type forestModel struct {
	base
	trees []*tree
}

func newForest(spec *ForestSpec, b base) (*forestModel, error) {
	if spec == nil || len(spec.Trees) == 0 {
		return nil, fmt.Errorf("%w: forest has no trees", ErrInvalidArtifact)
	}
	trees := make([]*tree, len(spec.Trees))
	for i := range spec.Trees {
		t, err := newTree(&spec.Trees[i], b.dim, b.classes)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		trees[i] = t
	}
	return &forestModel{base: b, trees: trees}, nil
}

// Predict implements Classifier.
func (m *forestModel) Predict(ctx context.Context, batch [][]float64) ([]int, error) {
	return m.rows(ctx, batch, m.vote)
}

func (m *forestModel) vote(row []float64) int {
	counts := make(map[int]int, len(m.classes))
	for _, t := range m.trees {
		counts[t.eval(row)]++
	}
	best, bestCount := 0, -1
	for _, c := range m.classes {
		if n := counts[c]; n > bestCount || (n == bestCount && c < best) {
			best, bestCount = c, n
		}
	}
	return best
}
