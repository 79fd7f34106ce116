package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/advisor/internal/model"
)

func TestTranscriptRendererRender(t *testing.T) {
	r := NewTranscriptRenderer()
	out, err := r.Render([]model.ChatMessage{
		{Role: model.RoleUser, Content: "What about **CS 301**?", Timestamp: 10},
		{Role: model.RoleAssistant, Content: "Sources:\n- Bulletin (p. 4)\n\n<script>alert(1)</script>", Timestamp: 11},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, model.RoleUser, out[0].Role)
	require.Contains(t, out[0].HTML, "<strong>CS 301</strong>")
	require.EqualValues(t, 11, out[1].Timestamp)
	require.Contains(t, out[1].HTML, "<li>Bulletin (p. 4)</li>")
	require.False(t, strings.Contains(out[1].HTML, "<script>"))
}

func TestTranscriptRendererEmpty(t *testing.T) {
	out, err := NewTranscriptRenderer().Render(nil)
	require.NoError(t, err)
	require.Empty(t, out)
}
