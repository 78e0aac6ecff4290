package chat

import (
	"context"
	_ "embed"
	"strings"

	"github.com/m-mizutani/tapir/pkg/adapter"
	"github.com/m-mizutani/tapir/pkg/model"
	"github.com/m-mizutani/tapir/pkg/repository"
	"github.com/m-mizutani/tapir/pkg/tool"
	"github.com/m-mizutani/tapir/pkg/utils/logging"
)

// contextLimit is the number of prior records retrieved per turn
const contextLimit = 3

// modelErrorAnswer is surfaced and persisted when the model invocation
// itself fails, so failures remain visible in later memory retrieval.
const modelErrorAnswer = "model error"

//go:embed prompt/persona.md
var personaPrompt string

// Session is the per-turn orchestrator: retrieve memory, build the prompt,
// invoke the model, dispatch directives and persist the turn. Turns are
// processed strictly sequentially; no stage is reordered or retried.
type Session struct {
	repo     repository.Repository
	gemini   adapter.Gemini
	registry *tool.Registry
	persona  string
}

// NewInput contains dependencies for a chat session
type NewInput struct {
	Repo     repository.Repository
	Gemini   adapter.Gemini
	Registry *tool.Registry

	// Persona overrides the embedded persona preamble when non-empty
	Persona string
}

func New(input NewInput) *Session {
	persona := input.Persona
	if persona == "" {
		persona = strings.TrimSpace(personaPrompt)
	}

	registry := input.Registry
	if registry == nil {
		registry = tool.New()
	}

	return &Session{
		repo:     input.Repo,
		gemini:   input.Gemini,
		registry: registry,
		persona:  persona,
	}
}

// Ask processes one complete turn and returns it with the final answer set.
// Dependency failures degrade inside the turn (empty context, sentinel
// answer, unpersisted memory); the only error returned is an empty query.
func (s *Session) Ask(ctx context.Context, query string) (*model.Turn, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, model.ErrEmptyQuery
	}

	logger := logging.From(ctx)
	turn := model.NewTurn(query)

	texts, err := s.repo.QuerySimilar(ctx, query, contextLimit)
	if err != nil {
		logger.Warn("memory query failed, proceeding without context", "error", err)
		texts = nil
	}
	turn.Context = strings.Join(texts, "\n")
	logger.Debug("memory retrieved", "records", len(texts))

	prompt := buildPrompt(s.persona, turn.Context, query, s.registry.Prompts())

	raw, err := s.gemini.Generate(ctx, prompt)
	if err != nil {
		logger.Warn("model invocation failed", "error", err)
		turn.FinalAnswer = modelErrorAnswer
		turn.Outcome = model.OutcomeModelError
	} else {
		turn.FinalAnswer, turn.Outcome = s.resolveAnswer(ctx, raw)
	}

	if err := s.repo.PutRecord(ctx, turn.Record()); err != nil {
		logger.Warn("failed to persist turn", "turn", turn.ID, "error", err)
	}

	logger.Debug("turn completed", "turn", turn.ID, "outcome", turn.Outcome)
	return turn, nil
}
