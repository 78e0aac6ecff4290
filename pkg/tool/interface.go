package tool

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
)

// Tool represents a capability the agent may invoke when the model requests
// it through a directive embedded in its output.
type Tool interface {
	// Name is the identifier the model uses in a directive
	Name() string

	// Spec returns the JSON schema of the directive arguments
	Spec() *jsonschema.Schema

	// Prompt returns the declaration of this tool for the system prompt
	Prompt() string

	// Execute runs the tool and returns its result text, which becomes the
	// final answer of the turn
	Execute(ctx context.Context, args map[string]string) (string, error)
}
