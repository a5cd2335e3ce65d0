package ethogram

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"strings"
)

// xmlNode is a generic, recursive decoding target for behavior tree
// elements, which — unlike a flat data schema such as a tech-tree
// description — are heterogeneous and not representable as one static
// Go struct. Grounded on the os.ReadFile + xml.Unmarshal idiom used
// for flat schemas elsewhere in the pack, generalized with the
// standard recursive-any encoding/xml pattern.
type xmlNode struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Nodes   []xmlNode  `xml:",any"`
}

func (n xmlNode) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

type xmlBehaviorTree struct {
	ID    string    `xml:"ID,attr"`
	Nodes []xmlNode `xml:",any"`
}

type xmlRoot struct {
	XMLName  xml.Name          `xml:"root"`
	MainTree string            `xml:"main_tree_to_execute,attr"`
	Trees    []xmlBehaviorTree `xml:"BehaviorTree"`
}

// Constructor builds a Node instance for one XML element, given its
// bound NodeConfig and already-built children (empty for a leaf).
type Constructor func(cfg NodeConfig, children []Node) (Node, error)

type registryEntry struct {
	kind        NodeType
	ports       PortsList
	minChildren int
	maxChildren int // -1 means unbounded
	constructor Constructor
}

// Registry maps an XML element name to the node type it builds, the
// PortsList declared for that type, and its child-count constraints.
// Generalizes Solifugus-teraglest's BehaviorTreeLibrary name→template
// lookup used for selecting AI behavior trees, here a name→constructor lookup
// consulted at build time rather than at tick time.
type Registry struct {
	entries map[string]registryEntry
}

// NewRegistry creates an empty type registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registryEntry)}
}

// Register adds a node type under name. minChildren/maxChildren bound
// how many XML child elements an instance may have; maxChildren of -1
// means unbounded. Registering an already-registered name is a
// programming error and panics, mirroring the factory's general policy
// that its own invariant violations (not input-driven failures) panic.
func (r *Registry) Register(name string, kind NodeType, ports PortsList, minChildren, maxChildren int, ctor Constructor) {
	if _, exists := r.entries[name]; exists {
		panic(fmt.Sprintf("ethogram: node type %q already registered", name))
	}
	r.entries[name] = registryEntry{kind: kind, ports: ports, minChildren: minChildren, maxChildren: maxChildren, constructor: ctor}
}

func (r *Registry) lookup(name string) (registryEntry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

var thresholdPorts = PortsList{
	"success_threshold": InputPortWithDefault("success_threshold", "0", "children required to succeed (0 = all children)"),
	"failure_threshold": InputPortWithDefault("failure_threshold", "0", "children required to fail (0 = all children)"),
}

var cyclesPorts = PortsList{
	"num_cycles": InputPort("num_cycles", "repeat/retry budget; -1 for unlimited"),
}

// RegisterBuiltins registers every control and decorator node type
// spec.md §6 reserves, so an XML document never needs to redeclare
// them explicitly.
func RegisterBuiltins(r *Registry) {
	r.Register("Sequence", ControlNodeType, nil, 1, -1, func(cfg NodeConfig, children []Node) (Node, error) {
		return NewSequence(cfg.Name, children...), nil
	})
	r.Register("ReactiveSequence", ControlNodeType, nil, 1, -1, func(cfg NodeConfig, children []Node) (Node, error) {
		return NewReactiveSequence(cfg.Name, children...), nil
	})
	r.Register("SequenceStar", ControlNodeType, nil, 1, -1, func(cfg NodeConfig, children []Node) (Node, error) {
		return NewSequenceStar(cfg.Name, children...), nil
	})
	r.Register("Fallback", ControlNodeType, nil, 1, -1, func(cfg NodeConfig, children []Node) (Node, error) {
		return NewFallback(cfg.Name, children...), nil
	})
	r.Register("ReactiveFallback", ControlNodeType, nil, 1, -1, func(cfg NodeConfig, children []Node) (Node, error) {
		return NewReactiveFallback(cfg.Name, children...), nil
	})
	r.Register("IfThenElse", ControlNodeType, nil, 2, 3, func(cfg NodeConfig, children []Node) (Node, error) {
		return NewIfThenElse(cfg.Name, children...), nil
	})
	r.Register("WhileDoElse", ControlNodeType, nil, 2, 3, func(cfg NodeConfig, children []Node) (Node, error) {
		return NewWhileDoElse(cfg.Name, children...), nil
	})
	r.Register("Parallel", ControlNodeType, thresholdPorts, 1, -1, func(cfg NodeConfig, children []Node) (Node, error) {
		successThreshold, err := GetInput[int](cfg, "success_threshold")
		if err != nil {
			return nil, fmt.Errorf("%w: %s: success_threshold: %v", ErrBadAttribute, cfg.Name, err)
		}
		failureThreshold, err := GetInput[int](cfg, "failure_threshold")
		if err != nil {
			return nil, fmt.Errorf("%w: %s: failure_threshold: %v", ErrBadAttribute, cfg.Name, err)
		}
		return NewParallel(cfg.Name, successThreshold, failureThreshold, children...), nil
	})
	r.Register("ParallelAll", ControlNodeType, nil, 1, -1, func(cfg NodeConfig, children []Node) (Node, error) {
		return NewParallelAll(cfg.Name, children...), nil
	})
	r.Register("Inverter", DecoratorNodeType, nil, 1, 1, func(cfg NodeConfig, children []Node) (Node, error) {
		return NewInverter(cfg.Name, children[0]), nil
	})
	r.Register("ForceSuccess", DecoratorNodeType, nil, 1, 1, func(cfg NodeConfig, children []Node) (Node, error) {
		return NewForceSuccess(cfg.Name, children[0]), nil
	})
	r.Register("ForceFailure", DecoratorNodeType, nil, 1, 1, func(cfg NodeConfig, children []Node) (Node, error) {
		return NewForceFailure(cfg.Name, children[0]), nil
	})
	r.Register("Repeat", DecoratorNodeType, cyclesPorts, 1, 1, func(cfg NodeConfig, children []Node) (Node, error) {
		n, err := GetInput[int](cfg, "num_cycles")
		if err != nil {
			return nil, fmt.Errorf("%w: %s: num_cycles: %v", ErrBadAttribute, cfg.Name, err)
		}
		return NewRepeat(cfg.Name, n, children[0]), nil
	})
	r.Register("Retry", DecoratorNodeType, cyclesPorts, 1, 1, func(cfg NodeConfig, children []Node) (Node, error) {
		n, err := GetInput[int](cfg, "num_cycles")
		if err != nil {
			return nil, fmt.Errorf("%w: %s: num_cycles: %v", ErrBadAttribute, cfg.Name, err)
		}
		return NewRetry(cfg.Name, n, children[0]), nil
	})
	r.Register("RunOnce", DecoratorNodeType, nil, 1, 1, func(cfg NodeConfig, children []Node) (Node, error) {
		return NewRunOnce(cfg.Name, children[0]), nil
	})
	r.Register("KeepRunningUntilFailure", DecoratorNodeType, nil, 1, 1, func(cfg NodeConfig, children []Node) (Node, error) {
		return NewKeepRunningUntilFailure(cfg.Name, children[0]), nil
	})
}

// SubTreeNode ticks a nested BehaviorTree's root and forwards its
// status, giving a subtree reference the same uniform Node contract as
// any other node.
type SubTreeNode struct {
	BaseNode
	inner Node
}

func newSubTreeNode(name string, inner Node) *SubTreeNode {
	return &SubTreeNode{BaseNode: NewBaseNode(name), inner: inner}
}

func (s *SubTreeNode) Children() []Node { return []Node{s.inner} }
func (s *SubTreeNode) Type() NodeType   { return SubTreeNodeType }

func (s *SubTreeNode) Tick(ctx context.Context) (NodeStatus, error) {
	status, err := tickChild(ctx, s.inner)
	return s.setStatus(status), err
}

func (s *SubTreeNode) Halt() {
	s.inner.Halt()
	s.resetStatus()
}

// Document is a parsed (but not yet built) XML tree description: the
// set of declared BehaviorTree elements and the designated main tree.
type Document struct {
	trees    map[string]xmlBehaviorTree
	mainID   string
	registry *Registry
}

// ParseDocument parses an XML tree description and validates its
// top-level shape (spec.md §4.7): a <root> containing one or more
// <BehaviorTree ID="..."> elements, each with exactly one root child,
// and a resolvable main_tree_to_execute. It does not construct any
// Node yet — that happens per-Build call, since a SubTree reference is
// a fresh instance every time it's encountered.
func ParseDocument(data []byte, registry *Registry) (*Document, error) {
	var root xmlRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrXMLMalformed, err)
	}

	trees := make(map[string]xmlBehaviorTree, len(root.Trees))
	for _, t := range root.Trees {
		if t.ID == "" {
			return nil, fmt.Errorf("%w: BehaviorTree missing ID attribute", ErrBadAttribute)
		}
		if len(t.Nodes) != 1 {
			return nil, fmt.Errorf("%w: BehaviorTree %q must have exactly one root child, got %d", ErrWrongChildCount, t.ID, len(t.Nodes))
		}
		trees[t.ID] = t
	}

	mainID := root.MainTree
	if mainID == "" {
		if len(trees) != 1 {
			return nil, fmt.Errorf("%w: main_tree_to_execute required when more than one BehaviorTree is declared", ErrBadAttribute)
		}
		for id := range trees {
			mainID = id
		}
	}
	if _, ok := trees[mainID]; !ok {
		return nil, fmt.Errorf("%w: main tree %q", ErrMissingSubTree, mainID)
	}

	return &Document{trees: trees, mainID: mainID, registry: registry}, nil
}

// LoadDocument reads path and parses it as an XML tree description.
// Mirrors the teacher pack's os.ReadFile + xml.Unmarshal + wrapped-error
// idiom for loading flat XML-described data files.
func LoadDocument(path string, registry *Registry) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ethogram: failed to read tree file %s: %w", path, err)
	}
	doc, err := ParseDocument(data, registry)
	if err != nil {
		return nil, fmt.Errorf("ethogram: failed to parse tree file %s: %w", path, err)
	}
	return doc, nil
}

// MainID returns the id of the document's designated main tree.
func (d *Document) MainID() string { return d.mainID }

// TreeIDs returns every BehaviorTree id the document declares.
func (d *Document) TreeIDs() []string {
	ids := make([]string, 0, len(d.trees))
	for id := range d.trees {
		ids = append(ids, id)
	}
	return ids
}

// Build constructs a fresh Tree rooted at the BehaviorTree named id,
// using bb as its root blackboard and configured by opts.
func (d *Document) Build(id string, bb *Blackboard, opts ...TreeOption) (*Tree, error) {
	bt, ok := d.trees[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingSubTree, id)
	}
	root, err := d.buildNode(bt.Nodes[0], bb, map[string]bool{id: true})
	if err != nil {
		return nil, err
	}
	return NewTree(id, root, bb, opts...), nil
}

// BuildMain constructs a fresh Tree rooted at the document's main
// BehaviorTree, using bb as its root blackboard and configured by opts.
func (d *Document) BuildMain(bb *Blackboard, opts ...TreeOption) (*Tree, error) {
	return d.Build(d.mainID, bb, opts...)
}

// blackboardRef reports whether value has the "{k}" form spec.md §6
// reserves for a blackboard reference, returning the bare key k if so.
func blackboardRef(value string) (string, bool) {
	if len(value) >= 2 && strings.HasPrefix(value, "{") && strings.HasSuffix(value, "}") {
		return value[1 : len(value)-1], true
	}
	return "", false
}

func parseAttrBinding(value string) PortBinding {
	if key, ok := blackboardRef(value); ok {
		return BlackboardKey(key)
	}
	return Literal(value)
}

func (d *Document) buildNode(el xmlNode, bb *Blackboard, visiting map[string]bool) (Node, error) {
	if el.XMLName.Local == "SubTree" {
		return d.buildSubTree(el, bb, visiting)
	}

	entry, ok := d.registry.lookup(el.XMLName.Local)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNodeType, el.XMLName.Local)
	}

	name, _ := el.attr("name")
	if name == "" {
		name = el.XMLName.Local
	}

	bindings := make(map[string]PortBinding, len(el.Attrs))
	for _, a := range el.Attrs {
		if a.Name.Local == "name" {
			continue
		}
		bindings[a.Name.Local] = parseAttrBinding(a.Value)
	}

	n := len(el.Nodes)
	if entry.kind == ActionNodeType && n != 0 {
		return nil, fmt.Errorf("%w: %s", ErrChildrenNotAllowed, name)
	}
	if n < entry.minChildren || (entry.maxChildren >= 0 && n > entry.maxChildren) {
		return nil, fmt.Errorf("%w: %s has %d children", ErrWrongChildCount, name, n)
	}

	children := make([]Node, 0, n)
	for _, c := range el.Nodes {
		child, err := d.buildNode(c, bb, visiting)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	cfg := NewNodeConfig(name, bb, entry.ports, bindings)
	return entry.constructor(cfg, children)
}

func (d *Document) buildSubTree(el xmlNode, parentBB *Blackboard, visiting map[string]bool) (Node, error) {
	id, ok := el.attr("ID")
	if !ok || id == "" {
		return nil, fmt.Errorf("%w: SubTree missing ID attribute", ErrBadAttribute)
	}
	if visiting[id] {
		return nil, fmt.Errorf("%w: %s", ErrCyclicSubTree, id)
	}
	bt, ok := d.trees[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingSubTree, id)
	}
	if len(el.Nodes) != 0 {
		return nil, fmt.Errorf("%w: SubTree %s", ErrChildrenNotAllowed, id)
	}

	name, _ := el.attr("name")
	if name == "" {
		name = id
	}

	childBB := NewChild(parentBB)
	for _, a := range el.Attrs {
		if a.Name.Local == "ID" || a.Name.Local == "name" {
			continue
		}
		if parentKey, ok := blackboardRef(a.Value); ok {
			childBB.AddSubtreeRemapping(a.Name.Local, parentKey)
		} else {
			childBB.SetLiteral(a.Name.Local, a.Value)
		}
	}

	nextVisiting := make(map[string]bool, len(visiting)+1)
	for k, v := range visiting {
		nextVisiting[k] = v
	}
	nextVisiting[id] = true

	inner, err := d.buildNode(bt.Nodes[0], childBB, nextVisiting)
	if err != nil {
		return nil, err
	}
	return newSubTreeNode(name, inner), nil
}
