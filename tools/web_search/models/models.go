package models

// Result is one organic hit from a search provider.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	// Content is full page text when the provider returns it inline.
	Content string `json:"content,omitempty"`
}
