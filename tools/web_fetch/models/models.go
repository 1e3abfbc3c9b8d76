package models

// Page is the raw output of a renderer for one URL.
type Page struct {
	URL         string `json:"url"`
	HTML        string `json:"-"`
	ContentType string `json:"content_type"`
	HTMLHash    string `json:"html_hash"`
	Status      int    `json:"status"`
	RenderMS    int    `json:"render_ms"`
}
