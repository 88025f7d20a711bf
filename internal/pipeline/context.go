package pipeline

import (
	"fmt"
	"strings"

	"github.com/dojosearch/dojosearch/internal/models"
)

// estimateTokens approximates token count at 4 characters per token. Good
// enough for budget enforcement; the generator never sees an unbounded
// context either way.
func estimateTokens(text string) int {
	return len(text) / 4
}

// truncateToBudget drops lowest-similarity documents until the combined
// context fits the token budget. Input must already be sorted best-first.
// At least one document is always kept.
func truncateToBudget(docs []models.RetrievedDocument, budget int) []models.RetrievedDocument {
	if budget <= 0 || len(docs) == 0 {
		return docs
	}

	total := 0
	for i, doc := range docs {
		total += estimateTokens(doc.Title) + estimateTokens(doc.Content)
		if total > budget && i > 0 {
			return docs[:i]
		}
	}
	return docs
}

// buildContext formats documents into the context block handed to the
// generator.
func buildContext(docs []models.RetrievedDocument) string {
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		part := fmt.Sprintf("## %s\n", doc.Title)
		if doc.URL != "" {
			part += fmt.Sprintf("Source: %s\n", doc.URL)
		}
		part += doc.Content + "\n"
		parts = append(parts, part)
	}
	return strings.Join(parts, "\n---\n")
}

// suggestQueries derives related-query suggestions from document titles, in
// citation order, deduplicated, capped at maxSuggestions.
func suggestQueries(normalized string, docs []models.RetrievedDocument, maxSuggestions int) []string {
	seen := make(map[string]struct{}, len(docs))
	var out []string
	for _, doc := range docs {
		suggestion := models.Normalize(doc.Title)
		if suggestion == "" || suggestion == normalized {
			continue
		}
		if _, dup := seen[suggestion]; dup {
			continue
		}
		seen[suggestion] = struct{}{}
		out = append(out, suggestion)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
