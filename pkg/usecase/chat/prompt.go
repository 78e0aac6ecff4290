package chat

import (
	"strings"

	"github.com/m-mizutani/tapir/pkg/tool"
)

// buildPrompt assembles the language model input from the persona preamble,
// retrieved memory context, the user query and the tool declarations. Pure
// function: deterministic, no side effects.
//
// The declared directive syntax is a contract with resolveAnswer: the model
// is told to request tools through the exact fenced block the response
// parser recognizes.
func buildPrompt(persona, memory, query, toolDecls string) string {
	lines := []string{persona}

	if memory != "" {
		lines = append(lines, "MEMORY:\n"+memory)
	}

	lines = append(lines, "QUESTION: "+query)

	if toolDecls != "" {
		lines = append(lines,
			"TOOLS:\n"+toolDecls,
			"If a tool is needed, respond with exactly one block:",
			tool.DirectiveOpen,
			`{"tool": "<name>", "args": {"<key>": "<value>"}}`,
			tool.DirectiveClose,
		)
	}

	lines = append(lines, "Think first, then act.")

	return strings.Join(lines, "\n")
}
