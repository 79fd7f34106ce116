package service

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/xxxsen/advisor/internal/model"
)

type RenderedMessage struct {
	Role      model.Role `json:"role"`
	HTML      string     `json:"html"`
	Timestamp int64      `json:"timestamp"`
}

// TranscriptRenderer turns stored chat messages into HTML. Raw HTML in
// message content is escaped.
type TranscriptRenderer struct {
	md goldmark.Markdown
}

func NewTranscriptRenderer() *TranscriptRenderer {
	return &TranscriptRenderer{md: goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)}
}

func (r *TranscriptRenderer) Render(msgs []model.ChatMessage) ([]RenderedMessage, error) {
	out := make([]RenderedMessage, 0, len(msgs))
	for _, m := range msgs {
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(m.Content), &buf); err != nil {
			return nil, err
		}
		out = append(out, RenderedMessage{Role: m.Role, HTML: buf.String(), Timestamp: m.Timestamp})
	}
	return out, nil
}
