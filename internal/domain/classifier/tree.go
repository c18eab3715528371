package classifier

import (
	"context"
	"fmt"
	"slices"
)

// tree is a flat-array binary decision tree rooted at node 0.
// Rows with row[feature] <= threshold descend left.
type tree struct {
	nodes []NodeSpec
}

func newTree(spec *TreeSpec, dim int, classes []int) (*tree, error) {
	if spec == nil || len(spec.Nodes) == 0 {
		return nil, fmt.Errorf("%w: tree has no nodes", ErrInvalidArtifact)
	}
	n := len(spec.Nodes)
	for i, node := range spec.Nodes {
		if node.Leaf {
			if !slices.Contains(classes, node.Label) {
				return nil, fmt.Errorf("%w: node %d label %d is not a declared class", ErrInvalidArtifact, i, node.Label)
			}
			continue
		}
		if node.Feature < 0 || node.Feature >= dim {
			return nil, fmt.Errorf("%w: node %d splits on feature %d of %d", ErrInvalidArtifact, i, node.Feature, dim)
		}
		if node.Left < 0 || node.Left >= n || node.Right < 0 || node.Right >= n {
			return nil, fmt.Errorf("%w: node %d has children out of range", ErrInvalidArtifact, i)
		}
		if !finite(node.Threshold) {
			return nil, fmt.Errorf("%w: node %d threshold is not finite", ErrInvalidArtifact, i)
		}
	}
	if err := checkAcyclic(spec.Nodes); err != nil {
		return nil, err
	}
	return &tree{nodes: spec.Nodes}, nil
}

// checkAcyclic walks every path from the root and fails if a node repeats on
// one path, which would make evaluation loop forever.
func checkAcyclic(nodes []NodeSpec) error {
	const (
		unvisited = iota
		onPath
		done
	)
	state := make([]uint8, len(nodes))
	type frame struct {
		idx   int
		child int // 0: left next, 1: right next, 2: finished
	}
	stack := []frame{{idx: 0}}
	state[0] = onPath
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		node := nodes[top.idx]
		if node.Leaf || top.child == 2 {
			state[top.idx] = done
			stack = stack[:len(stack)-1]
			continue
		}
		next := node.Left
		if top.child == 1 {
			next = node.Right
		}
		top.child++
		switch state[next] {
		case onPath:
			return fmt.Errorf("%w: cycle through node %d", ErrInvalidArtifact, next)
		case unvisited:
			state[next] = onPath
			stack = append(stack, frame{idx: next})
		}
	}
	return nil
}

func (t *tree) eval(row []float64) int {
	idx := 0
	for {
		node := t.nodes[idx]
		if node.Leaf {
			return node.Label
		}
		if row[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

// treeModel is a single decision tree.
type treeModel struct {
	base
	tree *tree
}

func newTreeModel(spec *TreeSpec, b base) (*treeModel, error) {
	t, err := newTree(spec, b.dim, b.classes)
	if err != nil {
		return nil, err
	}
	return &treeModel{base: b, tree: t}, nil
}

// Predict implements Classifier.
func (m *treeModel) Predict(ctx context.Context, batch [][]float64) ([]int, error) {
	return m.rows(ctx, batch, m.tree.eval)
}
