package domain

// Command is the declarative description of an action that produces Outputs
// from Inputs using a named Tool. The tool-specific behavior (signature
// mixing, validity, execution) lives in the buildsystem package's
// ExternalCommand implementations; Command itself is pure data, matching
// the narrow engine/core coupling the design favors.
type Command struct {
	Name        string
	Tool        string
	Description string
	Inputs      []string // node names
	Outputs     []string // node names
	Attributes  map[string]string
}

// NewCommand constructs an empty command for the given tool.
func NewCommand(name, tool string) *Command {
	return &Command{Name: name, Tool: tool, Attributes: map[string]string{}}
}

// ConfigureDescription sets the human-readable description shown instead of
// Args when a shell-like command runs.
func (c *Command) ConfigureDescription(desc string) { c.Description = desc }

// ConfigureInputs sets the command's declared input node names.
func (c *Command) ConfigureInputs(inputs []string) { c.Inputs = inputs }

// ConfigureOutputs sets the command's declared output node names.
func (c *Command) ConfigureOutputs(outputs []string) { c.Outputs = outputs }

// ConfigureAttribute records an arbitrary tool-specific attribute. Whether
// the attribute is recognized is validated by the tool, not here.
func (c *Command) ConfigureAttribute(name, value string) {
	if c.Attributes == nil {
		c.Attributes = map[string]string{}
	}
	c.Attributes[name] = value
}

// OutputIndex returns the index of name within Outputs, or -1.
func (c *Command) OutputIndex(name string) int {
	for i, o := range c.Outputs {
		if o == name {
			return i
		}
	}
	return -1
}
