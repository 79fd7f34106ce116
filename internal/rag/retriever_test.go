package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/advisor/internal/model"
)

func TestFindTopRelevantSnippetsEmptyQuery(t *testing.T) {
	pages := []model.PageText{{PageNumber: 1, Text: "anything at all"}}
	require.Empty(t, FindTopRelevantSnippets(pages, "a", 5, 900))
	require.Empty(t, FindTopRelevantSnippets(pages, "is it ok", 5, 900))
	require.Empty(t, FindTopRelevantSnippets(nil, "graduation requirements", 5, 900))
}

func TestFindTopRelevantSnippetsSkipsIrrelevantPages(t *testing.T) {
	pages := []model.PageText{
		{PageNumber: 1, Text: "Parking permits and campus map."},
		{PageNumber: 2, Text: "Graduation requires 120 credits including the capstone."},
		{PageNumber: 3, Text: "--- ## ::"},
	}
	hits := FindTopRelevantSnippets(pages, "How many credits for graduation?", 5, 900)
	require.Len(t, hits, 1)
	require.Equal(t, 2, hits[0].Page)
	require.Greater(t, hits[0].Score, 0.0)
}

func TestFindTopRelevantSnippetsOrdersByScore(t *testing.T) {
	dense := "capstone capstone project"
	diluted := "capstone " + strings.Repeat("filler words here ", 30)
	pages := []model.PageText{
		{PageNumber: 1, Text: diluted},
		{PageNumber: 2, Text: dense},
		{PageNumber: 3, Text: "capstone course"},
	}
	hits := FindTopRelevantSnippets(pages, "Capstone", 2, 900)
	require.Len(t, hits, 2)
	require.Equal(t, 2, hits[0].Page)
	require.Equal(t, 3, hits[1].Page)
	require.GreaterOrEqual(t, hits[0].Score, hits[1].Score)
}

func TestFindTopRelevantSnippetsTieKeepsPageOrder(t *testing.T) {
	pages := []model.PageText{
		{PageNumber: 4, Text: "algebra basics"},
		{PageNumber: 2, Text: "algebra basics"},
	}
	hits := FindTopRelevantSnippets(pages, "algebra", 5, 900)
	require.Len(t, hits, 2)
	require.Equal(t, 4, hits[0].Page)
	require.Equal(t, 2, hits[1].Page)
}

func TestMakeSnippetWindow(t *testing.T) {
	text := strings.Repeat("x", 100) + "TARGET" + strings.Repeat("y", 100)
	snippet := makeSnippet(text, QueryTokens("target"), 30)
	require.True(t, strings.HasPrefix(snippet, "… "))
	require.True(t, strings.HasSuffix(snippet, " …"))
	body := strings.TrimSuffix(strings.TrimPrefix(snippet, "… "), " …")
	require.Len(t, body, 30)
	require.Equal(t, 10, strings.Index(body, "TARGET"))
}

func TestMakeSnippetAtBounds(t *testing.T) {
	snippet := makeSnippet("target near start", QueryTokens("target"), 900)
	require.Equal(t, "target near start", snippet)
}

func TestFirstMatchUsesEarliestToken(t *testing.T) {
	text := "Électives: the zeta course then alpha"
	idx := firstMatch(text, QueryTokens("alpha zeta"))
	require.Equal(t, strings.Index(text, "zeta")-1, idx)
}
