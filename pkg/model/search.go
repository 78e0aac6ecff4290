package model

// SearchHit is one web search result in the fixed shape included in answers
type SearchHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}
