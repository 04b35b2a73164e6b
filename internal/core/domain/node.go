package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// Node is the declarative description of a build artifact or input: either
// virtual (no filesystem identity) or filesystem-backed (identified by its
// name interpreted as a path).
type Node struct {
	Name      string
	IsVirtual bool
	Producers []string // command names producing this node; today at most one
}

// NewNode applies the "<name>" virtual-naming heuristic: names both prefixed
// with "<" and suffixed with ">" are virtual by default.
func NewNode(name string) *Node {
	return &Node{Name: name, IsVirtual: isVirtualByName(name)}
}

func isVirtualByName(name string) bool {
	return strings.HasPrefix(name, "<") && strings.HasSuffix(name, ">")
}

// ConfigureAttribute recognizes only "is-virtual"; any other attribute, or an
// "is-virtual" value other than "true"/"false", returns ErrUnknownNodeAttribute.
func (n *Node) ConfigureAttribute(name, value string) error {
	if name != "is-virtual" {
		return zerr.With(ErrUnknownNodeAttribute, "attribute", name)
	}
	switch value {
	case "true":
		n.IsVirtual = true
	case "false":
		n.IsVirtual = false
	default:
		return zerr.With(ErrUnknownNodeAttribute, "is-virtual value", value)
	}
	return nil
}

// GetFileInfo is defined only for non-virtual nodes; calling it on a virtual
// node is a programming error, matching the contract in the node model.
func (n *Node) GetFileInfo() (FileInfo, error) {
	if n.IsVirtual {
		return FileInfo{}, ErrVirtualNodeFileInfo
	}
	return StatFileInfo(n.Name)
}

// HasProducer reports whether the node is produced by a command.
func (n *Node) HasProducer() bool { return len(n.Producers) > 0 }

// AddProducer records name as a producer of n, returning ErrMultipleProducers
// if n already has a distinct producer (multi-producer nodes are a reserved
// extension; today this is a hard failure).
func (n *Node) AddProducer(name string) error {
	for _, p := range n.Producers {
		if p == name {
			return nil
		}
	}
	if len(n.Producers) > 0 {
		return zerr.With(ErrMultipleProducers, "node", n.Name)
	}
	n.Producers = append(n.Producers, name)
	return nil
}
