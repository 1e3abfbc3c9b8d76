package digest

import (
	"strings"

	"github.com/mohammad-safakhou/skimmer/models"
)

// BuildCorpus concatenates non-empty documents in order, each chunk headed by
// its source URL. It returns "" when no document has text.
func BuildCorpus(docs []models.SourceDocument) string {
	var b strings.Builder
	for _, d := range docs {
		text := strings.TrimSpace(d.Text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("--- Content from ")
		b.WriteString(d.URL)
		b.WriteString(" ---\n")
		b.WriteString(text)
	}
	return b.String()
}
