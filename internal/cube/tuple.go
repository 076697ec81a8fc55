// Package cube resolves a hierarchical aggregation tree into a dense,
// position-indexed 3-D cell grid. The pipeline re-derives a flat tuple list
// on every update and compares only scalar depth summaries across updates,
// so no tree diffing or cross-update node bookkeeping is needed.
package cube

import (
	"github.com/gridlens/cubelens/internal/aggtree"
)

// NumAxes mirrors the axis count of the input model.
const NumAxes = aggtree.NumAxes

// PathTuple is one discovered data point: three per-axis member-key paths,
// the originating nodes along each path, and the numeric measure value.
// Path lengths vary per tuple; ragged hierarchies are expected.
type PathTuple struct {
	Paths [NumAxes][]string
	Nodes [NumAxes][]*aggtree.Node
	Value float64

	// Source is the node carrying the measure payload.
	Source *aggtree.Node
}

// Depth returns the path length of the tuple on the given axis.
func (t *PathTuple) Depth(axis int) int {
	return len(t.Paths[axis])
}

// Traverse walks the aggregation tree depth-first and emits one PathTuple
// per node carrying a measure payload. Each branch of the recursion sees an
// independent copy of the running per-axis paths, and traversal continues
// below measure nodes: a node may carry both a realized sub-total and
// deeper children.
func Traverse(root *aggtree.Node, levels []aggtree.Level) []PathTuple {
	if root == nil {
		return nil
	}

	var tuples []PathTuple

	var paths [NumAxes][]string

	var nodes [NumAxes][]*aggtree.Node

	walkChildren(root, 0, levels, paths, nodes, &tuples)

	return tuples
}

func walkChildren(
	parent *aggtree.Node,
	level int,
	levels []aggtree.Level,
	paths [NumAxes][]string,
	nodes [NumAxes][]*aggtree.Node,
	tuples *[]PathTuple,
) {
	for _, child := range parent.Children {
		if child == nil {
			continue
		}

		walkNode(child, level, levels, paths, nodes, tuples)
	}
}

func walkNode(
	node *aggtree.Node,
	level int,
	levels []aggtree.Level,
	paths [NumAxes][]string,
	nodes [NumAxes][]*aggtree.Node,
	tuples *[]PathTuple,
) {
	if level < len(levels) && levels[level].Axis.Assigned() {
		axis := int(levels[level].Axis)
		paths[axis] = appendPath(paths[axis], node.Key())
		nodes[axis] = appendNode(nodes[axis], node)
	}

	if node.HasMeasure() {
		*tuples = append(*tuples, PathTuple{
			Paths:  paths,
			Nodes:  nodes,
			Value:  node.MeasureValue(),
			Source: node,
		})
	}

	walkChildren(node, level+1, levels, paths, nodes, tuples)
}

// appendPath returns a fresh slice; sibling branches must never observe each
// other's segments through a shared backing array.
func appendPath(path []string, segment string) []string {
	next := make([]string, len(path)+1)
	copy(next, path)
	next[len(path)] = segment

	return next
}

func appendNode(path []*aggtree.Node, node *aggtree.Node) []*aggtree.Node {
	next := make([]*aggtree.Node, len(path)+1)
	copy(next, path)
	next[len(path)] = node

	return next
}
