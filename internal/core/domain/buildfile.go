package domain

// BuildFile is the loaded model produced by the build-file loader: tables of
// targets, commands, and nodes keyed by name, plus the client identity the
// file declared. Nodes/commands/targets are created during load and live
// for the duration of a build.
type BuildFile struct {
	ClientName    string
	ClientVersion uint32

	Targets  map[string]*Target
	Commands map[string]*Command
	Nodes    map[string]*Node
}

// NewBuildFile constructs an empty build file model.
func NewBuildFile() *BuildFile {
	return &BuildFile{
		Targets:  map[string]*Target{},
		Commands: map[string]*Command{},
		Nodes:    map[string]*Node{},
	}
}

// AddNode registers n, creating it if absent and returning the canonical
// instance (nodes referenced by multiple commands share one Node).
func (f *BuildFile) AddNode(n *Node) *Node {
	if existing, ok := f.Nodes[n.Name]; ok {
		return existing
	}
	f.Nodes[n.Name] = n
	return n
}

// GetOrCreateNode returns the declared node with name, or constructs and
// caches a dynamic one (applying the virtual-naming heuristic) if absent.
func (f *BuildFile) GetOrCreateNode(name string) *Node {
	if n, ok := f.Nodes[name]; ok {
		return n
	}
	n := NewNode(name)
	f.Nodes[name] = n
	return n
}
