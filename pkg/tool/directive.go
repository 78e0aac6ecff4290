package tool

import (
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Directive grammar: the model requests a tool by emitting a fenced JSON
// block. The prompt builder declares these markers to the model and the
// response parser recognizes them, so they must stay in lockstep.
const (
	DirectiveOpen  = "```json"
	DirectiveClose = "```"
)

var ErrMalformedDirective = goerr.New("malformed tool directive")

// Directive is the parsed form of a tool request embedded in model output.
// It is ephemeral and scoped to one turn.
type Directive struct {
	Tool string            `json:"tool"`
	Args map[string]string `json:"args"`
}

// ExtractDirective locates the first fenced JSON block in raw model output
// and returns the payload between the markers. Returns false if no opening
// marker is present or the block is never closed.
func ExtractDirective(raw string) (string, bool) {
	start := strings.Index(raw, DirectiveOpen)
	if start < 0 {
		return "", false
	}
	start += len(DirectiveOpen)

	end := strings.Index(raw[start:], DirectiveClose)
	if end < 0 {
		return "", false
	}

	return strings.TrimSpace(raw[start : start+end]), true
}

// ParseDirective deserializes an extracted payload. A JSON error, a missing
// tool name or missing args all yield ErrMalformedDirective.
func ParseDirective(payload string) (*Directive, error) {
	var raw struct {
		Tool *string            `json:"tool"`
		Args *map[string]string `json:"args"`
	}

	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, goerr.Wrap(ErrMalformedDirective, "invalid JSON payload", goerr.V("cause", err.Error()))
	}
	if raw.Tool == nil || *raw.Tool == "" {
		return nil, goerr.Wrap(ErrMalformedDirective, "missing tool name")
	}
	if raw.Args == nil {
		return nil, goerr.Wrap(ErrMalformedDirective, "missing args")
	}

	return &Directive{
		Tool: *raw.Tool,
		Args: *raw.Args,
	}, nil
}
