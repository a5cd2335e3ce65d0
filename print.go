package ethogram

import (
	"fmt"

	tp "github.com/xlab/treeprint"
)

// parentNode is satisfied by every composite and decorator node, which
// all expose their children for structural traversal (printing,
// inspection) even though Children() isn't part of the core Node
// contract.
type parentNode interface {
	Children() []Node
}

// TreePrint renders the subtree rooted at root the way the teacher's
// own TreePrint does. Each node's label comes from a switch on its
// concrete type plus its Name(); children are reached through the
// parentNode interface. This package's Node already carries Name() and
// Type(), so no separate naming interface is needed.
func TreePrint(root Node) string {
	tree := tp.New()
	p(root, tree)
	return tree.String()
}

func p(node Node, tree tp.Tree) {
	label := labelFor(node)
	if node.Name() != "" {
		label += fmt.Sprintf(": %s", node.Name())
	}

	parent, ok := node.(parentNode)
	if !ok {
		tree.AddNode(label)
		return
	}

	branch := tree.AddBranch(label)
	for _, child := range parent.Children() {
		p(child, branch)
	}
}

func labelFor(node Node) string {
	switch node.(type) {
	case *ActionFunc:
		return "ActionFunc"
	case *ConditionFunc:
		return "ConditionFunc"
	case *StatefulActionNode:
		return "StatefulAction"
	case *Sequence:
		return "Sequence"
	case *SequenceStar:
		return "SequenceStar"
	case *ReactiveSequence:
		return "ReactiveSequence"
	case *Fallback:
		return "Fallback"
	case *ReactiveFallback:
		return "ReactiveFallback"
	case *IfThenElse:
		return "IfThenElse"
	case *WhileDoElse:
		return "WhileDoElse"
	case *Parallel:
		return "Parallel"
	case *ParallelAll:
		return "ParallelAll"
	case *Inverter:
		return "Inverter"
	case *ForceSuccess:
		return "ForceSuccess"
	case *ForceFailure:
		return "ForceFailure"
	case *Repeat:
		return "Repeat"
	case *Retry:
		return "Retry"
	case *RunOnce:
		return "RunOnce"
	case *KeepRunningUntilFailure:
		return "KeepRunningUntilFailure"
	case *Label:
		return "Label"
	case *SubTreeNode:
		return "SubTree"
	default:
		return node.Type().String()
	}
}
