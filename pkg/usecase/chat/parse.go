package chat

import (
	"context"
	"strings"

	"github.com/m-mizutani/tapir/pkg/model"
	"github.com/m-mizutani/tapir/pkg/tool"
	"github.com/m-mizutani/tapir/pkg/utils/logging"
)

// resolveAnswer decides the final answer for raw model output.
//
// Without a directive block the raw text is the answer. A directive that is
// unterminated, unparseable, names an unknown tool, carries invalid
// arguments or whose tool fails at execution is demoted to the raw text:
// the user sees the model's literal output rather than an error. A
// successfully dispatched tool's result replaces the model narrative
// entirely.
func (s *Session) resolveAnswer(ctx context.Context, raw string) (string, model.TurnOutcome) {
	logger := logging.From(ctx)

	payload, ok := tool.ExtractDirective(raw)
	if !ok {
		if strings.Contains(raw, tool.DirectiveOpen) {
			logger.Debug("unterminated directive block, answering with raw text")
			return raw, model.OutcomeFallback
		}
		return raw, model.OutcomeDirect
	}

	directive, err := tool.ParseDirective(payload)
	if err != nil {
		logger.Debug("malformed directive, answering with raw text", "error", err)
		return raw, model.OutcomeFallback
	}

	logger.Debug("dispatching tool directive", "tool", directive.Tool, "args", directive.Args)

	result, err := s.registry.Execute(ctx, directive)
	if err != nil {
		logger.Debug("tool dispatch failed, answering with raw text",
			"tool", directive.Tool, "error", err)
		return raw, model.OutcomeFallback
	}

	return result, model.OutcomeTool
}
