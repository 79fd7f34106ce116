package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/advisor/internal/pkg/errcode"
	appErr "github.com/xxxsen/advisor/internal/pkg/errors"
	"github.com/xxxsen/advisor/internal/pkg/response"
	"github.com/xxxsen/advisor/internal/service"
	"github.com/xxxsen/advisor/internal/session"
)

type ChatHandler struct {
	chat     *service.ChatService
	sessions session.Store
	renderer *service.TranscriptRenderer
}

func NewChatHandler(chat *service.ChatService, sessions session.Store) *ChatHandler {
	return &ChatHandler{chat: chat, sessions: sessions, renderer: service.NewTranscriptRenderer()}
}

// Send accepts a multipart form with an optional "message" and an optional
// "file" holding a bulletin PDF.
func (h *ChatHandler) Send(c *gin.Context) {
	up, closeFn, err := formUpload(c, "file")
	defer closeFn()
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "failed to read file")
		return
	}
	req := service.SendRequest{
		StudentID: getUserID(c),
		Message:   c.PostForm("message"),
		File:      up,
	}
	res, err := h.chat.SendMessage(c.Request.Context(), sessionState(c, h.sessions), req)
	if err != nil {
		if res != nil && errors.Is(err, appErr.ErrUpstream) {
			logutil.GetLogger(c.Request.Context()).Error("chat turn failed",
				zap.String("conversation_id", res.ConversationID), zap.Error(err))
			response.Error(c, errcode.ErrUpstream, service.ApologyMessage)
			return
		}
		handleError(c, err)
		return
	}
	response.Success(c, res)
}

func (h *ChatHandler) History(c *gin.Context) {
	id, msgs, err := h.chat.History(c.Request.Context(), sessionState(c, h.sessions))
	if err != nil {
		handleError(c, err)
		return
	}
	if c.Query("format") != "html" {
		response.Success(c, gin.H{"conversation_id": id, "messages": msgs})
		return
	}
	rendered, err := h.renderer.Render(msgs)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"conversation_id": id, "messages": rendered})
}

func (h *ChatHandler) Clear(c *gin.Context) {
	if err := h.chat.Clear(c.Request.Context(), sessionState(c, h.sessions)); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *ChatHandler) RemoveBulletin(c *gin.Context) {
	if err := h.chat.RemoveBulletin(c.Request.Context(), sessionState(c, h.sessions)); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}
