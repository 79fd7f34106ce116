package pdfextract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/xxxsen/advisor/internal/model"
)

const (
	DefaultMaxPages = 25
	DefaultMaxChars = 200_000
)

// OCRNotice replaces the page list when no page yields text.
const OCRNotice = "(No text extracted. If the PDF is scanned (image-only), OCR is required.)"

var ErrUnreadable = errors.New("unreadable pdf")

type Result struct {
	Pages      []model.PageText
	TotalChars int
	// NoText is set when the page list only holds the OCR notice.
	NoText bool
}

type pageSource interface {
	NumPage() int
	PageText(num int) (string, error)
}

type pdfSource struct {
	reader *pdf.Reader
}

func (s *pdfSource) NumPage() int {
	return s.reader.NumPage()
}

func (s *pdfSource) PageText(num int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read page %d: %v", num, r)
		}
	}()
	p := s.reader.Page(num)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}

// Extract reads page text from a PDF, stopping after maxPages pages or once
// maxChars characters have been collected.
func Extract(data []byte, maxPages, maxChars int) (res *Result, err error) {
	if len(data) == 0 {
		return nil, ErrUnreadable
	}
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return extractFrom(&pdfSource{reader: reader}, maxPages, maxChars), nil
}

func extractFrom(src pageSource, maxPages, maxChars int) *Result {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	total := src.NumPage()
	if total > maxPages {
		total = maxPages
	}
	res := &Result{}
	budget := maxChars
	for i := 1; i <= total && budget > 0; i++ {
		text, err := src.PageText(i)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		text = truncateRunes(text, budget)
		n := utf8.RuneCountInString(text)
		res.Pages = append(res.Pages, model.PageText{PageNumber: i, Text: text})
		res.TotalChars += n
		budget -= n
	}
	if len(res.Pages) == 0 {
		res.Pages = []model.PageText{{PageNumber: 1, Text: OCRNotice}}
		res.TotalChars = utf8.RuneCountInString(OCRNotice)
		res.NoText = true
	}
	return res
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	count := 0
	for idx := range s {
		if count == limit {
			return s[:idx]
		}
		count++
	}
	return s
}
