package plugin

import "github.com/rohanthewiz/serr"

// ToolDef binds a declared tool id to its factory and availability gate.
type ToolDef struct {
	ID string

	// CreateTool builds a fresh Tool for one execution context. Factories
	// must not perform I/O or mutate shared state.
	CreateTool func(pc *Context) Tool

	// IsAvailable reports whether the tool can run with the given env vars.
	// Nil means always available. It must not touch the network.
	IsAvailable func(env map[string]string) bool
}

// Export is everything a plugin hands the platform at registration time.
type Export struct {
	Manifest Manifest
	Tools    []ToolDef

	// OnLoad runs once after the plugin set is composed; OnUnload runs at
	// shutdown. Both are optional.
	OnLoad   func() error
	OnUnload func()

	// ValidateConfig vets coerced config before a tool runs. Nil, or a nil
	// return, means the config is acceptable. The error message is surfaced
	// to the user as the rejection reason.
	ValidateConfig func(cfg Values) error
}

// Check verifies export invariants: a valid manifest, a factory for every
// declared tool, and no tool the manifest does not declare.
func (e *Export) Check() error {
	if err := e.Manifest.Check(); err != nil {
		return err
	}
	declared := make(map[string]bool, len(e.Manifest.Tools))
	for _, t := range e.Manifest.Tools {
		declared[t.ID] = true
	}
	seen := make(map[string]bool, len(e.Tools))
	for _, td := range e.Tools {
		if td.ID == "" {
			return serr.New("tool definition has no id", "plugin", e.Manifest.Identifier)
		}
		if td.CreateTool == nil {
			return serr.New("tool has no factory", "plugin", e.Manifest.Identifier, "tool", td.ID)
		}
		if seen[td.ID] {
			return serr.New("duplicate tool definition", "plugin", e.Manifest.Identifier, "tool", td.ID)
		}
		if !declared[td.ID] {
			return serr.New("tool is not declared in the manifest", "plugin", e.Manifest.Identifier, "tool", td.ID)
		}
		seen[td.ID] = true
	}
	for _, t := range e.Manifest.Tools {
		if !seen[t.ID] {
			return serr.New("declared tool has no definition", "plugin", e.Manifest.Identifier, "tool", t.ID)
		}
	}
	return nil
}

// Tool returns the definition registered under a tool id.
func (e *Export) Tool(id string) (ToolDef, bool) {
	for _, td := range e.Tools {
		if td.ID == id {
			return td, true
		}
	}
	return ToolDef{}, false
}

// Declaration returns the manifest declaration for a tool id.
func (e *Export) Declaration(id string) (ToolDeclaration, bool) {
	for _, t := range e.Manifest.Tools {
		if t.ID == id {
			return t, true
		}
	}
	return ToolDeclaration{}, false
}
