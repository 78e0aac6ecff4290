package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/tapir/pkg/model"
	"github.com/m-mizutani/tapir/pkg/utils/logging"
)

const defaultBaseURL = "https://api.duckduckgo.com"

// NoNetworkResult is returned instead of an error when the search provider
// is unreachable. The turn proceeds with this sentinel as the answer.
const NoNetworkResult = "no network access"

const maxResults = 3

// WebSearch queries the DuckDuckGo Instant Answer API and serializes a
// bounded list of hits for direct inclusion in a user-facing answer.
type WebSearch struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*WebSearch)

// WithBaseURL overrides the search endpoint, mainly for tests
func WithBaseURL(baseURL string) Option {
	return func(x *WebSearch) {
		x.baseURL = baseURL
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(x *WebSearch) {
		x.httpClient = httpClient
	}
}

// New creates a new web_search tool
func New(opts ...Option) *WebSearch {
	x := &WebSearch{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(x)
	}

	return x
}

func (x *WebSearch) Name() string {
	return "web_search"
}

func (x *WebSearch) Spec() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"query": {
				Type:        "string",
				Description: "Search query to look up on the web",
			},
		},
		Required: []string{"query"},
	}
}

func (x *WebSearch) Prompt() string {
	return `web_search: search the web for current information. Arguments: {"query": "what to search for"}`
}

// Execute runs the search. Provider unavailability degrades to the
// NoNetworkResult sentinel, never an error.
func (x *WebSearch) Execute(ctx context.Context, args map[string]string) (string, error) {
	query := args["query"]
	logger := logging.From(ctx)
	logger.Debug("searching the web", "query", query)

	hits, err := x.search(ctx, query)
	if err != nil {
		logger.Warn("web search failed", "error", err)
		return NoNetworkResult, nil
	}

	result, err := json.MarshalIndent(hits, "", "  ")
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal search hits")
	}

	logger.Debug("web search succeeded", "hits", len(hits))
	return string(result), nil
}

// instantAnswer is the subset of the DuckDuckGo Instant Answer response
// the tool consumes.
type instantAnswer struct {
	Heading       string         `json:"Heading"`
	AbstractText  string         `json:"AbstractText"`
	AbstractURL   string         `json:"AbstractURL"`
	RelatedTopics []relatedTopic `json:"RelatedTopics"`
}

type relatedTopic struct {
	Text     string         `json:"Text"`
	FirstURL string         `json:"FirstURL"`
	Topics   []relatedTopic `json:"Topics"`
}

func (x *WebSearch) search(ctx context.Context, query string) ([]model.SearchHit, error) {
	endpoint := x.baseURL + "/?q=" + url.QueryEscape(query) + "&format=json&no_html=1"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request")
	}

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("search API returned error", goerr.V("status", resp.StatusCode))
	}

	var answer instantAnswer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return nil, goerr.Wrap(err, "failed to decode response")
	}

	return collectHits(&answer), nil
}

// collectHits flattens an instant answer into at most maxResults hits
func collectHits(answer *instantAnswer) []model.SearchHit {
	hits := make([]model.SearchHit, 0, maxResults)

	if answer.AbstractText != "" {
		hits = append(hits, model.SearchHit{
			Title:   answer.Heading,
			URL:     answer.AbstractURL,
			Snippet: answer.AbstractText,
		})
	}

	var walk func(topics []relatedTopic)
	walk = func(topics []relatedTopic) {
		for _, topic := range topics {
			if len(hits) >= maxResults {
				return
			}
			if len(topic.Topics) > 0 {
				walk(topic.Topics)
				continue
			}
			if topic.FirstURL == "" {
				continue
			}
			hits = append(hits, model.SearchHit{
				Title:   topicTitle(topic.Text),
				URL:     topic.FirstURL,
				Snippet: topic.Text,
			})
		}
	}
	walk(answer.RelatedTopics)

	return hits
}

// topicTitle takes the leading phrase of a related topic text as its title
func topicTitle(text string) string {
	if idx := strings.Index(text, " - "); idx > 0 {
		return text[:idx]
	}
	return text
}
