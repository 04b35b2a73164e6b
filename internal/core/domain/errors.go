// Package domain holds the core build-graph value types: keys, values, nodes,
// commands, targets, and the codec between them.
package domain

import "go.trai.ch/zerr"

var (
	// ErrUnknownKeyTag is returned when decoding a key with an unrecognized tag byte.
	ErrUnknownKeyTag = zerr.New("unknown key tag")

	// ErrUnknownValueTag is returned when decoding a value with an unrecognized tag byte.
	ErrUnknownValueTag = zerr.New("unknown value tag")

	// ErrTruncatedBytes is returned when a key or value byte string is shorter than its tag demands.
	ErrTruncatedBytes = zerr.New("truncated encoding")

	// ErrVirtualNodeFileInfo is returned when get_file_info is called on a virtual node.
	ErrVirtualNodeFileInfo = zerr.New("virtual nodes have no file info")

	// ErrUnknownNodeAttribute is returned when a node declares an attribute other than is-virtual.
	ErrUnknownNodeAttribute = zerr.New("unknown node attribute")

	// ErrUnknownCommandAttribute is returned when a command declares an attribute its tool doesn't recognize.
	ErrUnknownCommandAttribute = zerr.New("unknown command attribute")

	// ErrMultipleProducers is returned when a node is declared with more than one producing command.
	ErrMultipleProducers = zerr.New("node has multiple producers")

	// ErrScalarValueExpected is returned when a task protocol method receives a non-scalar value where one is required.
	ErrScalarValueExpected = zerr.New("expected scalar node value")
)
