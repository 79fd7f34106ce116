package rag

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/xxxsen/advisor/internal/model"
)

const (
	DefaultTopK         = 5
	DefaultSnippetChars = 900
	minTokenLen         = 3
)

var tokenRegex = regexp.MustCompile(`[A-Za-z0-9]+`)

// FindTopRelevantSnippets scores each page by how many of its tokens appear
// in the question, normalised by the square root of the page token count,
// and returns the best topK pages with a snippet around the first match.
func FindTopRelevantSnippets(pages []model.PageText, question string, topK, snippetMaxChars int) []model.RagHit {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if snippetMaxChars <= 0 {
		snippetMaxChars = DefaultSnippetChars
	}
	query := QueryTokens(question)
	if len(query) == 0 || len(pages) == 0 {
		return nil
	}
	hits := make([]model.RagHit, 0, len(pages))
	for _, p := range pages {
		if p.Text == "" {
			continue
		}
		tokens := tokenize(p.Text)
		if len(tokens) == 0 {
			continue
		}
		overlap := 0
		for _, tok := range tokens {
			if _, ok := query[tok]; ok {
				overlap++
			}
		}
		if overlap == 0 {
			continue
		}
		hits = append(hits, model.RagHit{
			Page:    p.PageNumber,
			Score:   float64(overlap) / math.Sqrt(float64(len(tokens))),
			Snippet: makeSnippet(p.Text, query, snippetMaxChars),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

// QueryTokens returns the lowercased set of alphanumeric runs of at least
// three characters.
func QueryTokens(text string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range tokenize(text) {
		out[tok] = struct{}{}
	}
	return out
}

func tokenize(text string) []string {
	raw := tokenRegex.FindAllString(text, -1)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		if len(tok) < minTokenLen {
			continue
		}
		out = append(out, strings.ToLower(tok))
	}
	return out
}

func makeSnippet(text string, query map[string]struct{}, maxChars int) string {
	runes := []rune(text)
	idx := firstMatch(text, query)
	if idx < 0 {
		idx = 0
	}
	start := idx - maxChars/3
	if start < 0 {
		start = 0
	}
	end := start + maxChars
	if end > len(runes) {
		end = len(runes)
	}
	snippet := strings.TrimSpace(string(runes[start:end]))
	if start > 0 {
		snippet = "… " + snippet
	}
	if end < len(runes) {
		snippet += " …"
	}
	return snippet
}

// firstMatch returns the rune offset of the earliest occurrence of any query
// token in text, ignoring ASCII case, or -1.
func firstMatch(text string, query map[string]struct{}) int {
	lower := asciiLower(text)
	best := -1
	for tok := range query {
		i := strings.Index(lower, tok)
		if i < 0 {
			continue
		}
		if best < 0 || i < best {
			best = i
		}
	}
	if best < 0 {
		return -1
	}
	return utf8.RuneCountInString(text[:best])
}

// asciiLower lowercases A-Z only so byte offsets stay aligned with text.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
