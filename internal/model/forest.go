package model

import (
	"fmt"
)

// Tree is one regression tree stored as a flat node list; node 0 is the root
type Tree struct {
	Nodes []TreeNode `yaml:"nodes" json:"nodes"`
}

// TreeNode goes left when x[Feature] <= Threshold
type TreeNode struct {
	Feature   int     `yaml:"feature" json:"feature"`
	Threshold float64 `yaml:"threshold" json:"threshold"`
	Left      int     `yaml:"left" json:"left"`
	Right     int     `yaml:"right" json:"right"`
	Value     float64 `yaml:"value" json:"value"`
	Leaf      bool    `yaml:"leaf" json:"leaf"`
}

// Forest averages the outputs of its trees
type Forest struct {
	version   string
	nFeatures int
	trees     []Tree
}

// NewForest validates every tree so Predict can walk nodes without bounds surprises
func NewForest(p Params) (*Forest, error) {
	if p.NFeatures <= 0 {
		return nil, fmt.Errorf("%w: forest requires n_features", ErrInvalidParams)
	}
	if len(p.Trees) == 0 {
		return nil, fmt.Errorf("%w: forest has no trees", ErrInvalidParams)
	}
	for t, tree := range p.Trees {
		if err := validateTree(tree, p.NFeatures); err != nil {
			return nil, fmt.Errorf("%w: tree %d: %v", ErrInvalidParams, t, err)
		}
	}

	trees := make([]Tree, len(p.Trees))
	for i, tree := range p.Trees {
		trees[i] = Tree{Nodes: append([]TreeNode(nil), tree.Nodes...)}
	}
	return &Forest{version: p.Version, nFeatures: p.NFeatures, trees: trees}, nil
}

func validateTree(tree Tree, nFeatures int) error {
	if len(tree.Nodes) == 0 {
		return fmt.Errorf("no nodes")
	}
	for i, node := range tree.Nodes {
		if node.Leaf {
			continue
		}
		if node.Feature < 0 || node.Feature >= nFeatures {
			return fmt.Errorf("node %d: feature index %d out of range", i, node.Feature)
		}
		// children must come after their parent, which also rules out cycles
		if node.Left <= i || node.Left >= len(tree.Nodes) || node.Right <= i || node.Right >= len(tree.Nodes) {
			return fmt.Errorf("node %d: invalid children %d/%d", i, node.Left, node.Right)
		}
	}
	return nil
}

func (f *Forest) Predict(vector []float64) (float64, error) {
	if err := checkShape(vector, f.nFeatures); err != nil {
		return 0, err
	}
	var sum float64
	for _, tree := range f.trees {
		sum += tree.predict(vector)
	}
	return checkOutput(sum / float64(len(f.trees)))
}

func (t Tree) predict(vector []float64) float64 {
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.Leaf {
			return node.Value
		}
		if vector[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

func (f *Forest) Features() int   { return f.nFeatures }
func (f *Forest) Kind() string    { return KindForest }
func (f *Forest) Version() string { return f.version }
