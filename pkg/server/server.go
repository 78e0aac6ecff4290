package server

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/m-mizutani/tapir/pkg/model"
	"github.com/m-mizutani/tapir/pkg/usecase/chat"
	"github.com/m-mizutani/tapir/pkg/usecase/ingest"
	"github.com/m-mizutani/tapir/pkg/utils/logging"
)

// Server is the HTTP shell around the agent: it constructs queries from
// requests, invokes the chat session and renders the final answer. It
// carries no logic of its own.
type Server struct {
	session     *chat.Session
	pipeline    *ingest.Pipeline
	folders     []string
	turnTimeout time.Duration
}

// NewInput contains dependencies for the HTTP shell
type NewInput struct {
	Session     *chat.Session
	Pipeline    *ingest.Pipeline
	Folders     []string
	TurnTimeout time.Duration
}

func New(input NewInput) *Server {
	folders := input.Folders
	if len(folders) == 0 {
		folders = ingest.DefaultFolders
	}

	timeout := input.TurnTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &Server{
		session:     input.Session,
		pipeline:    input.Pipeline,
		folders:     folders,
		turnTimeout: timeout,
	}
}

// Handler returns the route mux of the shell
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /ingest", s.handleIngest)
	return mux
}

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<body>
<h1>Avatar</h1>
<form action="/chat" method="post">
  <input name="q" placeholder="Ask a question..." size="60">
  <button type="submit">Send</button>
</form>
<form action="/ingest" method="post">
  <button type="submit">Ingest source folders</button>
</form>
</body>
</html>
`))

var answerTmpl = template.Must(template.New("answer").Parse(`<!DOCTYPE html>
<html>
<body>
<p><b>You:</b> {{.Query}}</p>
<pre>{{.Answer}}</pre>
<a href="/">&larr; Back</a>
</body>
</html>
`))

var ingestTmpl = template.Must(template.New("ingest").Parse(`<!DOCTYPE html>
<html>
<body>
<p>Ingested {{.Ingested}} file(s), skipped {{.Skipped}}, failed {{.Failed}}.</p>
<a href="/">&larr; Back</a>
</body>
</html>
`))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if err := indexTmpl.Execute(w, nil); err != nil {
		logging.From(r.Context()).Warn("failed to render index", "error", err)
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.turnTimeout)
	defer cancel()

	turn, err := s.session.Ask(ctx, r.FormValue("q"))
	if err != nil {
		if errors.Is(err, model.ErrEmptyQuery) {
			http.Error(w, "query is empty", http.StatusBadRequest)
			return
		}
		logging.From(ctx).Error("turn failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := struct {
		Query  string
		Answer string
	}{
		Query:  turn.Query,
		Answer: turn.FinalAnswer,
	}
	if err := answerTmpl.Execute(w, data); err != nil {
		logging.From(ctx).Warn("failed to render answer", "error", err)
	}
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	result, err := s.pipeline.Run(r.Context(), s.folders)
	if err != nil {
		logging.From(r.Context()).Error("ingestion failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := ingestTmpl.Execute(w, result); err != nil {
		logging.From(r.Context()).Warn("failed to render ingest result", "error", err)
	}
}
