package websearch_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/tapir/pkg/model"
	"github.com/m-mizutani/tapir/pkg/tool/websearch"
)

const instantAnswerBody = `{
	"Heading": "Go (programming language)",
	"AbstractText": "Go is a statically typed language.",
	"AbstractURL": "https://en.wikipedia.org/wiki/Go",
	"RelatedTopics": [
		{"Text": "Gopher - The Go mascot", "FirstURL": "https://go.dev/blog/gopher"},
		{"Text": "Goroutine - A lightweight thread", "FirstURL": "https://go.dev/tour/concurrency"},
		{"Text": "Channels - Typed conduits", "FirstURL": "https://go.dev/tour/channels"}
	]
}`

func TestWebSearchSchema(t *testing.T) {
	x := websearch.New()

	gt.Equal(t, x.Name(), "web_search")
	gt.S(t, x.Prompt()).Contains("web_search")

	spec := x.Spec()
	gt.NotNil(t, spec)
	gt.Map(t, spec.Properties).HasKey("query")
	gt.Equal(t, spec.Required, []string{"query"})
}

func TestWebSearchExecute(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(instantAnswerBody))
	}))
	defer srv.Close()

	x := websearch.New(websearch.WithBaseURL(srv.URL))

	result, err := x.Execute(context.Background(), map[string]string{"query": "golang"})
	gt.NoError(t, err)
	gt.Equal(t, gotQuery, "golang")

	var hits []model.SearchHit
	gt.NoError(t, json.Unmarshal([]byte(result), &hits))

	// Abstract plus related topics, bounded at 3
	gt.A(t, hits).Length(3)
	gt.Equal(t, hits[0].Title, "Go (programming language)")
	gt.Equal(t, hits[0].URL, "https://en.wikipedia.org/wiki/Go")
	gt.Equal(t, hits[1].Title, "Gopher")
	gt.S(t, hits[1].Snippet).Contains("mascot")
}

func TestWebSearchUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Connection refused from here on

	x := websearch.New(websearch.WithBaseURL(srv.URL))

	result, err := x.Execute(context.Background(), map[string]string{"query": "golang"})
	gt.NoError(t, err)
	gt.Equal(t, result, websearch.NoNetworkResult)
}

func TestWebSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	x := websearch.New(websearch.WithBaseURL(srv.URL))

	result, err := x.Execute(context.Background(), map[string]string{"query": "golang"})
	gt.NoError(t, err)
	gt.Equal(t, result, websearch.NoNetworkResult)
}
