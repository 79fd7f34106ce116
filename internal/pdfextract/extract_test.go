package pdfextract

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	pages []string
	fail  map[int]bool
}

func (f *fakeSource) NumPage() int {
	return len(f.pages)
}

func (f *fakeSource) PageText(num int) (string, error) {
	if f.fail[num] {
		return "", errors.New("broken page")
	}
	return f.pages[num-1], nil
}

func TestExtractFromSkipsBlankPages(t *testing.T) {
	src := &fakeSource{pages: []string{"  first page ", "   \n\t", "third"}}
	res := extractFrom(src, 10, 1000)
	require.False(t, res.NoText)
	require.Len(t, res.Pages, 2)
	require.Equal(t, 1, res.Pages[0].PageNumber)
	require.Equal(t, "first page", res.Pages[0].Text)
	require.Equal(t, 3, res.Pages[1].PageNumber)
	require.Equal(t, len("first page")+len("third"), res.TotalChars)
}

func TestExtractFromRespectsLimits(t *testing.T) {
	tests := []struct {
		name      string
		pages     []string
		maxPages  int
		maxChars  int
		wantPages int
		wantChars int
	}{
		{name: "page limit", pages: []string{"aaaa", "bbbb", "cccc"}, maxPages: 2, maxChars: 100, wantPages: 2, wantChars: 8},
		{name: "char budget truncates", pages: []string{"aaaa", "bbbb", "cccc"}, maxPages: 10, maxChars: 6, wantPages: 2, wantChars: 6},
		{name: "budget exhausted exactly", pages: []string{"aaaa", "bbbb"}, maxPages: 10, maxChars: 4, wantPages: 1, wantChars: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := extractFrom(&fakeSource{pages: tt.pages}, tt.maxPages, tt.maxChars)
			require.Len(t, res.Pages, tt.wantPages)
			require.Equal(t, tt.wantChars, res.TotalChars)
			require.LessOrEqual(t, res.TotalChars, tt.maxChars)
			sum := 0
			for _, p := range res.Pages {
				sum += utf8.RuneCountInString(p.Text)
			}
			require.Equal(t, res.TotalChars, sum)
		})
	}
}

func TestExtractFromNoTextReturnsNotice(t *testing.T) {
	res := extractFrom(&fakeSource{pages: []string{"", "  "}}, 25, 200_000)
	require.True(t, res.NoText)
	require.Len(t, res.Pages, 1)
	require.Equal(t, 1, res.Pages[0].PageNumber)
	require.Equal(t, OCRNotice, res.Pages[0].Text)
}

func TestExtractFromSkipsFailingPages(t *testing.T) {
	src := &fakeSource{pages: []string{"one", "two"}, fail: map[int]bool{1: true}}
	res := extractFrom(src, 25, 100)
	require.Len(t, res.Pages, 1)
	require.Equal(t, 2, res.Pages[0].PageNumber)
}

func TestTruncateRunesKeepsRuneBoundaries(t *testing.T) {
	s := strings.Repeat("é", 5)
	out := truncateRunes(s, 3)
	require.True(t, utf8.ValidString(out))
	require.Equal(t, 3, utf8.RuneCountInString(out))
}

func TestExtractRejectsGarbage(t *testing.T) {
	_, err := Extract([]byte("definitely not a pdf"), 25, 1000)
	require.ErrorIs(t, err, ErrUnreadable)

	_, err = Extract(nil, 25, 1000)
	require.ErrorIs(t, err, ErrUnreadable)
}
