package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var ErrEmptyQuery = goerr.New("query is empty")

type TurnID string

// NewTurnID generates a new unique TurnID
func NewTurnID() TurnID {
	return TurnID(uuid.New().String())
}

// TurnOutcome classifies how the final answer of a turn was produced
type TurnOutcome string

const (
	// OutcomeDirect: the model answered without requesting a tool
	OutcomeDirect TurnOutcome = "direct"
	// OutcomeTool: a tool directive was dispatched and its result became the answer
	OutcomeTool TurnOutcome = "tool"
	// OutcomeFallback: a directive was present but malformed, unknown or failed,
	// so the raw model text was surfaced instead
	OutcomeFallback TurnOutcome = "fallback"
	// OutcomeModelError: the model invocation itself failed
	OutcomeModelError TurnOutcome = "model_error"
)

// Turn represents one complete query-to-answer cycle. It is owned by the
// chat session for its lifetime and shares no state across turns.
type Turn struct {
	ID          TurnID
	Query       string
	Context     string
	FinalAnswer string
	Outcome     TurnOutcome
	CreatedAt   time.Time
}

// NewTurn creates a turn for the given query
func NewTurn(query string) *Turn {
	return &Turn{
		ID:        NewTurnID(),
		Query:     query,
		CreatedAt: time.Now(),
	}
}

// Record builds the composite memory record pairing the original query and
// the final answer, to be persisted when the turn completes.
func (t *Turn) Record() *MemoryRecord {
	return NewMemoryRecord(
		RecordID("turn_"+string(t.ID)),
		"Q: "+t.Query+" | A: "+t.FinalAnswer,
	)
}
