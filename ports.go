package ethogram

import "fmt"

// PortDirection is the declared direction of a Port.
type PortDirection int

const (
	// Input ports are read-only from the node's perspective.
	Input PortDirection = iota
	// Output ports are written by the node.
	Output
	// InOut ports are both read and written.
	InOut
)

// Port declares one named input or output slot on a node type. Ports
// are declared once per node type and are stable across instances.
type Port struct {
	Name        string
	Direction   PortDirection
	Default     string // string form; parsed per typed fetch
	HasDefault  bool
	Description string
}

// InputPort declares an input port with no default value.
func InputPort(name, description string) Port {
	return Port{Name: name, Direction: Input, Description: description}
}

// InputPortWithDefault declares an input port with a fallback literal,
// used when the instance's attribute is absent.
func InputPortWithDefault(name, def, description string) Port {
	return Port{Name: name, Direction: Input, Default: def, HasDefault: true, Description: description}
}

// OutputPort declares a port a node writes to.
func OutputPort(name, description string) Port {
	return Port{Name: name, Direction: Output, Description: description}
}

// PortsList maps port name to its declaration, for one node type.
type PortsList map[string]Port

// BindingKind tags the shape of a PortBinding.
type BindingKind int

const (
	// Unbound means no attribute was present for this port on this
	// instance.
	Unbound BindingKind = iota
	// BoundLiteral means the XML attribute held a bare string, not
	// wrapped in "{...}".
	BoundLiteral
	// BoundKey means the XML attribute was "{k}": read/write
	// blackboard entry k.
	BoundKey
)

// PortBinding is, for one node instance, how one named port is bound:
// to a literal string, to a blackboard key, or to nothing.
type PortBinding struct {
	Kind    BindingKind
	Literal string
	Key     string
}

// Literal constructs a literal PortBinding.
func Literal(s string) PortBinding {
	return PortBinding{Kind: BoundLiteral, Literal: s}
}

// BlackboardKey constructs a blackboard-reference PortBinding.
func BlackboardKey(key string) PortBinding {
	return PortBinding{Kind: BoundKey, Key: key}
}

// NodeConfig is a node instance's construction-time context: its port
// bindings, the blackboard scope it runs in, and its human-readable
// name. The factory creates it at build time; it is read-only
// thereafter.
type NodeConfig struct {
	Name       string
	Blackboard *Blackboard
	bindings   map[string]PortBinding
	ports      PortsList
}

// NewNodeConfig builds a NodeConfig for an instance named name, bound
// to bb, with the given per-instance bindings and ports (the node
// type's stable PortsList). The bindings are stored as given; they are
// not checked against ports.
func NewNodeConfig(name string, bb *Blackboard, ports PortsList, bindings map[string]PortBinding) NodeConfig {
	if bindings == nil {
		bindings = map[string]PortBinding{}
	}
	return NodeConfig{Name: name, Blackboard: bb, bindings: bindings, ports: ports}
}

// binding returns the PortBinding declared for portName, or Unbound if
// none was supplied on this instance.
func (c NodeConfig) binding(portName string) PortBinding {
	if b, ok := c.bindings[portName]; ok {
		return b
	}
	return PortBinding{Kind: Unbound}
}

// GetInput reads portName as type T following the read ladder: bound
// blackboard key, then literal, then the port's declared default,
// else ErrPortNotProvided.
func GetInput[T any](c NodeConfig, portName string) (T, error) {
	var zero T
	b := c.binding(portName)

	switch b.Kind {
	case BoundKey:
		return Get[T](c.Blackboard, b.Key)
	case BoundLiteral:
		return parseLiteral[T](b.Literal)
	}

	port, declared := c.ports[portName]
	if declared && port.HasDefault {
		return parseLiteral[T](port.Default)
	}

	return zero, fmt.Errorf("%w: port %q on node %q", ErrPortNotProvided, portName, c.Name)
}

// SetOutput writes value to portName. It fails with ErrPortNotWritable
// unless the instance's binding for portName is a blackboard key.
func SetOutput[T any](c NodeConfig, portName string, value T) error {
	b := c.binding(portName)
	if b.Kind != BoundKey {
		return fmt.Errorf("%w: port %q on node %q", ErrPortNotWritable, portName, c.Name)
	}
	c.Blackboard.Set(b.Key, value)
	return nil
}
