package tool

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrToolNotFound = goerr.New("tool not found")
	ErrInvalidArgs  = goerr.New("invalid tool arguments")
)

// Registry manages the closed set of tools available to the agent
type Registry struct {
	tools    map[string]Tool
	allTools []Tool
}

// New creates a new tool registry with the given tools
func New(tools ...Tool) *Registry {
	r := &Registry{
		tools:    make(map[string]Tool),
		allTools: tools,
	}

	for _, t := range tools {
		r.tools[t.Name()] = t
	}

	return r
}

// Lookup returns the tool registered under name
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Prompts returns all tool declarations concatenated for the system prompt
func (r *Registry) Prompts() string {
	var prompts []string
	for _, t := range r.allTools {
		if prompt := t.Prompt(); prompt != "" {
			prompts = append(prompts, prompt)
		}
	}
	return strings.Join(prompts, "\n")
}

// Execute validates the directive arguments against the tool's schema and
// runs the tool.
func (r *Registry) Execute(ctx context.Context, d *Directive) (string, error) {
	t, ok := r.tools[d.Tool]
	if !ok {
		return "", goerr.Wrap(ErrToolNotFound, "unknown tool", goerr.V("name", d.Tool))
	}

	if spec := t.Spec(); spec != nil {
		for _, key := range spec.Required {
			if _, ok := d.Args[key]; !ok {
				return "", goerr.Wrap(ErrInvalidArgs, "missing required argument",
					goerr.V("tool", d.Tool), goerr.V("argument", key))
			}
		}
	}

	return t.Execute(ctx, d.Args)
}
