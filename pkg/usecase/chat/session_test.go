package chat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/tapir/pkg/model"
	"github.com/m-mizutani/tapir/pkg/tool"
	"github.com/m-mizutani/tapir/pkg/usecase/chat"
)

// Mock Repository
type mockRepository struct {
	records  map[model.RecordID]*model.MemoryRecord
	similar  []string
	queryErr error
	putErr   error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		records: make(map[model.RecordID]*model.MemoryRecord),
	}
}

func (m *mockRepository) PutRecord(ctx context.Context, record *model.MemoryRecord) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.records[record.ID] = record
	return nil
}

func (m *mockRepository) QuerySimilar(ctx context.Context, text string, limit int) ([]string, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if len(m.similar) > limit {
		return m.similar[:limit], nil
	}
	return m.similar, nil
}

func (m *mockRepository) Close() error {
	return nil
}

// Mock Gemini adapter
type mockGemini struct {
	response   string
	err        error
	lastPrompt string
}

func (m *mockGemini) Generate(ctx context.Context, prompt string) (string, error) {
	m.lastPrompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockGemini) Embedding(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

// Mock search tool
type mockSearch struct {
	result    string
	err       error
	calls     int
	lastQuery string
}

func (m *mockSearch) Name() string {
	return "web_search"
}

func (m *mockSearch) Spec() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"query": {Type: "string"},
		},
		Required: []string{"query"},
	}
}

func (m *mockSearch) Prompt() string {
	return `web_search: search the web. Arguments: {"query": "..."}`
}

func (m *mockSearch) Execute(ctx context.Context, args map[string]string) (string, error) {
	m.calls++
	m.lastQuery = args["query"]
	return m.result, m.err
}

func newSession(repo *mockRepository, gemini *mockGemini, search *mockSearch) *chat.Session {
	return chat.New(chat.NewInput{
		Repo:     repo,
		Gemini:   gemini,
		Registry: tool.New(search),
	})
}

func TestAskRejectsEmptyQuery(t *testing.T) {
	session := newSession(newMockRepository(), &mockGemini{response: "hi"}, &mockSearch{})

	_, err := session.Ask(context.Background(), "   ")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrEmptyQuery))
}

func TestAskWithEmptyMemory(t *testing.T) {
	repo := newMockRepository()
	gemini := &mockGemini{response: "direct answer"}
	session := newSession(repo, gemini, &mockSearch{})

	turn, err := session.Ask(context.Background(), "hello")
	gt.NoError(t, err)
	gt.Equal(t, turn.Context, "")
	gt.Equal(t, turn.FinalAnswer, "direct answer")
	gt.Equal(t, turn.Outcome, model.OutcomeDirect)

	// An empty store must not leave a memory section in the prompt
	gt.S(t, gemini.lastPrompt).NotContains("MEMORY:")
	gt.S(t, gemini.lastPrompt).Contains("QUESTION: hello")
}

func TestAskWithRetrievedMemory(t *testing.T) {
	repo := newMockRepository()
	repo.similar = []string{"Q: who | A: someone", "Q: where | A: somewhere"}
	gemini := &mockGemini{response: "grounded answer"}
	session := newSession(repo, gemini, &mockSearch{})

	turn, err := session.Ask(context.Background(), "who?")
	gt.NoError(t, err)
	gt.Equal(t, turn.Context, "Q: who | A: someone\nQ: where | A: somewhere")
	gt.S(t, gemini.lastPrompt).Contains("MEMORY:")
	gt.S(t, gemini.lastPrompt).Contains("Q: who | A: someone")
}

func TestAskDispatchesDirective(t *testing.T) {
	repo := newMockRepository()
	gemini := &mockGemini{
		response: "I should look this up.\n```json\n{\"tool\": \"web_search\", \"args\": {\"query\": \"x\"}}\n```",
	}
	search := &mockSearch{result: "search hits"}
	session := newSession(repo, gemini, search)

	turn, err := session.Ask(context.Background(), "what is x?")
	gt.NoError(t, err)

	// The tool ran exactly once and its result replaced the model narrative
	gt.Equal(t, search.calls, 1)
	gt.Equal(t, search.lastQuery, "x")
	gt.Equal(t, turn.FinalAnswer, "search hits")
	gt.Equal(t, turn.Outcome, model.OutcomeTool)
}

func TestAskUnknownToolFallsBack(t *testing.T) {
	raw := "```json\n{\"tool\": \"no_such_tool\", \"args\": {\"query\": \"x\"}}\n```"
	search := &mockSearch{result: "should not appear"}
	session := newSession(newMockRepository(), &mockGemini{response: raw}, search)

	turn, err := session.Ask(context.Background(), "hm")
	gt.NoError(t, err)
	gt.Equal(t, turn.FinalAnswer, raw)
	gt.Equal(t, turn.Outcome, model.OutcomeFallback)
	gt.Equal(t, search.calls, 0)
}

func TestAskUnterminatedDirectiveFallsBack(t *testing.T) {
	raw := "```json\n{\"tool\": \"web_search\""
	session := newSession(newMockRepository(), &mockGemini{response: raw}, &mockSearch{})

	turn, err := session.Ask(context.Background(), "hm")
	gt.NoError(t, err)
	gt.Equal(t, turn.FinalAnswer, raw)
	gt.Equal(t, turn.Outcome, model.OutcomeFallback)
}

func TestAskMalformedPayloadFallsBack(t *testing.T) {
	raw := "```json\nnot a json object\n```"
	session := newSession(newMockRepository(), &mockGemini{response: raw}, &mockSearch{})

	turn, err := session.Ask(context.Background(), "hm")
	gt.NoError(t, err)
	gt.Equal(t, turn.FinalAnswer, raw)
	gt.Equal(t, turn.Outcome, model.OutcomeFallback)
}

func TestAskToolErrorFallsBack(t *testing.T) {
	raw := "```json\n{\"tool\": \"web_search\", \"args\": {\"query\": \"x\"}}\n```"
	search := &mockSearch{err: goerr.New("provider exploded")}
	session := newSession(newMockRepository(), &mockGemini{response: raw}, search)

	turn, err := session.Ask(context.Background(), "hm")
	gt.NoError(t, err)
	gt.Equal(t, search.calls, 1)
	gt.Equal(t, turn.FinalAnswer, raw)
	gt.Equal(t, turn.Outcome, model.OutcomeFallback)
}

func TestAskPersistsTurn(t *testing.T) {
	repo := newMockRepository()
	session := newSession(repo, &mockGemini{response: "the answer"}, &mockSearch{})

	turn, err := session.Ask(context.Background(), "the question")
	gt.NoError(t, err)

	// Exactly one composite record pairing query and answer
	gt.V(t, len(repo.records)).Equal(1)
	record := repo.records[model.RecordID("turn_"+string(turn.ID))]
	gt.NotNil(t, record)
	gt.S(t, record.Text).Contains("the question")
	gt.S(t, record.Text).Contains("the answer")
}

func TestAskModelErrorDegrades(t *testing.T) {
	repo := newMockRepository()
	gemini := &mockGemini{err: goerr.New("backend down")}
	session := newSession(repo, gemini, &mockSearch{})

	turn, err := session.Ask(context.Background(), "anything")
	gt.NoError(t, err)
	gt.Equal(t, turn.FinalAnswer, "model error")
	gt.Equal(t, turn.Outcome, model.OutcomeModelError)

	// The sentinel answer is persisted so the failure stays visible
	gt.V(t, len(repo.records)).Equal(1)
	record := repo.records[model.RecordID("turn_"+string(turn.ID))]
	gt.NotNil(t, record)
	gt.S(t, record.Text).Contains("model error")
}

func TestAskMemoryFailureDegrades(t *testing.T) {
	repo := newMockRepository()
	repo.queryErr = goerr.New("store unavailable")
	gemini := &mockGemini{response: "still answered"}
	session := newSession(repo, gemini, &mockSearch{})

	turn, err := session.Ask(context.Background(), "hello")
	gt.NoError(t, err)
	gt.Equal(t, turn.Context, "")
	gt.Equal(t, turn.FinalAnswer, "still answered")
}

func TestAskPersistFailureDoesNotFailTurn(t *testing.T) {
	repo := newMockRepository()
	repo.putErr = goerr.New("disk full")
	session := newSession(repo, &mockGemini{response: "fine"}, &mockSearch{})

	turn, err := session.Ask(context.Background(), "hello")
	gt.NoError(t, err)
	gt.Equal(t, turn.FinalAnswer, "fine")
}
