package nn

import "fmt"

// leafNode marks a node without children
const leafNode = -1

// Tree is a flattened binary decision tree. Node i tests
// x[Feature[i]] <= Threshold[i] and descends to Left[i] or Right[i];
// leaves have Left[i] == Right[i] == -1 and carry Value[i].
type Tree struct {
	Feature   []int     `json:"feature"`
	Threshold []float64 `json:"threshold"`
	Left      []int     `json:"children_left"`
	Right     []int     `json:"children_right"`
	Value     []float64 `json:"value"`
}

// Eval walks the tree for x and returns the leaf value
func (t *Tree) Eval(x []float64) float64 {
	node := 0
	for t.Left[node] != leafNode {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.Left[node]
		} else {
			node = t.Right[node]
		}
	}
	return t.Value[node]
}

// Nodes returns the number of nodes
func (t *Tree) Nodes() int {
	return len(t.Value)
}

// validate checks array lengths and that every child index points forward,
// which guarantees Eval terminates.
func (t *Tree) validate(width int) error {
	n := len(t.Value)
	if n == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	if len(t.Feature) != n || len(t.Threshold) != n || len(t.Left) != n || len(t.Right) != n {
		return fmt.Errorf("tree arrays have inconsistent lengths")
	}

	for i := 0; i < n; i++ {
		left, right := t.Left[i], t.Right[i]
		if left == leafNode && right == leafNode {
			continue
		}
		if left <= i || left >= n || right <= i || right >= n {
			return fmt.Errorf("node %d: child index out of range (left=%d right=%d)", i, left, right)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= width {
			return fmt.Errorf("node %d: feature %d outside input width %d", i, t.Feature[i], width)
		}
	}
	return nil
}
