package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/advisor/internal/ai"
	"github.com/xxxsen/advisor/internal/catalog"
	"github.com/xxxsen/advisor/internal/chatlog"
	"github.com/xxxsen/advisor/internal/config"
	"github.com/xxxsen/advisor/internal/filestore"
	"github.com/xxxsen/advisor/internal/metrics"
	"github.com/xxxsen/advisor/internal/model"
	"github.com/xxxsen/advisor/internal/pdfextract"
	appErr "github.com/xxxsen/advisor/internal/pkg/errors"
	"github.com/xxxsen/advisor/internal/prompt"
	"github.com/xxxsen/advisor/internal/rag"
	"github.com/xxxsen/advisor/internal/session"
)

// ApologyMessage is recorded in place of an answer when the completion
// service or the student records store fails.
const ApologyMessage = "I’m having trouble processing that right now. Please try again."

var questionCodeRegex = regexp.MustCompile(`(?i)\b([A-Z]{2,4})\s*(\d{3})\b`)

// DocumentSearcher returns supporting document excerpts relevant to a question.
type DocumentSearcher interface {
	Search(ctx context.Context, question, courseCode string) []model.DocumentHit
}

type SendRequest struct {
	StudentID string
	Message   string
	File      *Upload
}

type SendResult struct {
	ConversationID string              `json:"conversation_id"`
	Intent         prompt.Intent       `json:"intent,omitempty"`
	Reply          string              `json:"reply"`
	Citations      []model.Citation    `json:"citations"`
	Messages       []model.ChatMessage `json:"messages"`
}

type ChatService struct {
	snapshots *StudentContextService
	logs      chatlog.Store
	completer Completer
	bulletins BulletinStore
	loader    *pdfLoader
	docs      DocumentSearcher
	metrics   *metrics.Metrics
	cfg       config.ChatConfig
	now       func() time.Time
}

func NewChatService(
	snapshots *StudentContextService,
	logs chatlog.Store,
	completer Completer,
	bulletins BulletinStore,
	files filestore.Store,
	docs DocumentSearcher,
	m *metrics.Metrics,
	cfg config.ChatConfig,
) *ChatService {
	return &ChatService{
		snapshots: snapshots,
		logs:      logs,
		completer: completer,
		bulletins: bulletins,
		loader:    &pdfLoader{files: files},
		docs:      docs,
		metrics:   m,
		cfg:       cfg,
		now:       time.Now,
	}
}

type turn struct {
	intent    prompt.Intent
	reply     string
	citations []model.Citation
	bypassed  bool
}

// SendMessage runs one chat turn: an optional bulletin upload followed by an
// optional question. When the answer cannot be produced the apology is still
// persisted and the returned error wraps ErrUpstream.
func (s *ChatService) SendMessage(ctx context.Context, st *session.State, req SendRequest) (*SendResult, error) {
	convID, err := st.ConversationID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: session: %w", appErr.ErrUpstream, err)
	}
	logger := logutil.GetLogger(ctx).With(zap.String("conversation_id", convID))
	res := &SendResult{ConversationID: convID, Citations: []model.Citation{}}

	if req.File != nil {
		msgs, err := s.acceptUpload(ctx, st, convID, req.File)
		if err != nil {
			s.metrics.ObserveTurn("", metrics.OutcomeRejected)
			return nil, err
		}
		res.Messages = msgs
	}

	text := strings.TrimSpace(req.Message)
	if text == "" {
		if res.Messages == nil {
			if res.Messages, err = s.logs.Load(ctx, convID); err != nil {
				return nil, err
			}
		}
		return res, nil
	}

	prior, err := s.logs.Load(ctx, convID)
	if err != nil {
		return nil, err
	}
	userMsg := model.ChatMessage{Role: model.RoleUser, Content: text, Timestamp: s.now().Unix()}

	t, turnErr := s.answer(ctx, st, req.StudentID, text, prior)
	if turnErr != nil {
		logger.Error("chat turn failed", zap.String("intent", string(t.intent)), zap.Error(turnErr))
		t.reply = ApologyMessage
		t.citations = nil
	}
	assistant := model.ChatMessage{Role: model.RoleAssistant, Content: t.reply, Timestamp: s.now().Unix()}
	msgs, err := s.logs.Append(ctx, convID, userMsg, assistant)
	if err != nil {
		return nil, err
	}
	res.Intent = t.intent
	res.Reply = t.reply
	res.Messages = msgs
	if t.citations != nil {
		res.Citations = t.citations
	}

	switch {
	case turnErr != nil:
		s.metrics.ObserveTurn(string(t.intent), metrics.OutcomeFailed)
		if !appErr.IsUpstream(turnErr) {
			turnErr = fmt.Errorf("%w: %w", appErr.ErrUpstream, turnErr)
		}
		return res, turnErr
	case t.bypassed:
		s.metrics.ObserveTurn(string(t.intent), metrics.OutcomeBypassed)
	default:
		s.metrics.ObserveTurn(string(t.intent), metrics.OutcomeCompleted)
	}
	return res, nil
}

// acceptUpload validates, extracts and parses an uploaded bulletin, caches it
// for the session and records a confirmation message.
func (s *ChatService) acceptUpload(ctx context.Context, st *session.State, convID string, up *Upload) ([]model.ChatMessage, error) {
	data, err := readPDFUpload(up, s.cfg.MaxUploadBytes())
	if err != nil {
		return nil, err
	}
	extracted, err := pdfextract.Extract(data, s.cfg.MaxPages, s.cfg.MaxChars)
	if err != nil {
		logutil.GetLogger(ctx).Error("pdf processing failed", zap.String("file", up.FileName), zap.Error(err))
		return nil, appErr.Reject(msgUnreadablePDF)
	}
	plan := catalog.Parse(extracted.Pages)
	if err := st.SetCatalog(ctx, &session.Catalog{
		FileName: up.FileName,
		Pages:    extracted.Pages,
		Plan:     plan,
	}); err != nil {
		return nil, fmt.Errorf("%w: cache catalog: %w", appErr.ErrUpstream, err)
	}
	s.metrics.ObservePages("upload", len(extracted.Pages))
	confirm := model.ChatMessage{
		Role:      model.RoleSystem,
		Content:   uploadSummary(up.FileName, extracted, plan),
		Timestamp: s.now().Unix(),
	}
	return s.logs.Append(ctx, convID, confirm)
}

func uploadSummary(name string, res *pdfextract.Result, plan *model.DegreePlan) string {
	return fmt.Sprintf("✅ Loaded PDF: %s. Extracted %d page(s), %s chars. Parsed %d course item(s) (Required: %d, Electives: %d).",
		name, len(res.Pages), groupThousands(res.TotalChars), plan.Total(), len(plan.Required), len(plan.Electives))
}

func (s *ChatService) answer(ctx context.Context, st *session.State, studentID, text string, prior []model.ChatMessage) (turn, error) {
	t := turn{intent: prompt.Classify(text)}
	snap, err := s.studentSnapshot(ctx, st, studentID)
	if err != nil {
		return t, err
	}
	if t.intent == prompt.IntentProfile {
		t.reply, t.bypassed = prompt.ProfileAnswer(snap), true
		return t, nil
	}

	cat, err := s.catalog(ctx, st)
	if err != nil {
		return t, err
	}
	if cat == nil || cat.Plan.IsEmpty() {
		t.reply, t.bypassed = prompt.NoCatalogMessage, true
		return t, nil
	}
	history := toTurns(prior)

	if t.intent == prompt.IntentPlanning {
		rec := catalog.Recommend(cat.Plan, snap.CompletedCodes(), s.cfg.RecommendCount)
		if len(rec) == 0 {
			t.reply, t.bypassed = prompt.NothingToRecommendMessage, true
			return t, nil
		}
		p := prompt.BuildPlanning(prompt.PlanningInput{
			Question:    text,
			Student:     snap,
			CatalogName: cat.FileName,
			Recommended: rec,
		})
		t.reply, err = s.complete(ctx, p, history)
		return t, err
	}

	snippets := rag.FindTopRelevantSnippets(cat.Pages, text, s.cfg.RagTopK, s.cfg.SnippetChars)
	var docs []model.DocumentHit
	if s.docs != nil {
		docs = s.docs.Search(ctx, text, courseCodeInQuestion(text))
	}
	p := prompt.BuildGeneral(prompt.GeneralInput{
		Question:    text,
		Student:     snap,
		CatalogName: cat.FileName,
		Plan:        cat.Plan,
		Snippets:    snippets,
		Documents:   docs,
	})
	reply, err := s.complete(ctx, p, history)
	if err != nil {
		return t, err
	}
	t.citations = prompt.Citations(cat.FileName, cat.AcademicYear, snippets, docs)
	t.reply = reply + prompt.CitationBlock(t.citations)
	return t, nil
}

func (s *ChatService) complete(ctx context.Context, p string, history []ai.Turn) (string, error) {
	start := time.Now()
	reply, err := s.completer.Generate(ctx, p, history)
	s.metrics.ObserveCompletion(start, err)
	if err != nil {
		return "", fmt.Errorf("%w: completion: %w", appErr.ErrUpstream, err)
	}
	return reply, nil
}

// studentSnapshot returns the cached snapshot, building it on first use. A
// student without a record gets a nil snapshot, which renders as the
// "no context" marker and is cached like any other result.
func (s *ChatService) studentSnapshot(ctx context.Context, st *session.State, studentID string) (*model.StudentSnapshot, error) {
	snap, ok, err := st.StudentSnapshot(ctx)
	if err != nil {
		logutil.GetLogger(ctx).Warn("read cached student context failed", zap.Error(err))
	}
	if ok {
		return snap, nil
	}
	if studentID == "" {
		return nil, nil
	}
	snap, err = s.snapshots.Build(ctx, studentID)
	if err != nil {
		if !appErr.IsNotFound(err) {
			return nil, err
		}
		logutil.GetLogger(ctx).Warn("no student record", zap.String("student_id", studentID))
		snap = nil
	}
	if err := st.SetStudentSnapshot(ctx, snap); err != nil {
		logutil.GetLogger(ctx).Warn("cache student context failed", zap.Error(err))
	}
	return snap, nil
}

// catalog returns the session catalog, loading the newest active major
// bulletin when none is cached. A nil catalog means none is available.
func (s *ChatService) catalog(ctx context.Context, st *session.State) (*session.Catalog, error) {
	cat, ok, err := st.Catalog(ctx)
	if err != nil {
		logutil.GetLogger(ctx).Warn("read cached catalog failed", zap.Error(err))
	}
	if ok {
		return cat, nil
	}
	if s.bulletins == nil {
		return nil, nil
	}
	removed, err := st.CatalogRemoved(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: session: %w", appErr.ErrUpstream, err)
	}
	if removed {
		return nil, nil
	}
	b, err := s.bulletins.LatestActive(ctx, model.BulletinCategoryMajor)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: latest bulletin: %w", appErr.ErrUpstream, err)
	}
	extracted, err := s.loader.load(ctx, b.Locator, s.cfg.MaxPages, s.cfg.MaxChars)
	if err != nil {
		if errors.Is(err, pdfextract.ErrUnreadable) {
			logutil.GetLogger(ctx).Warn("published bulletin is unreadable", zap.Int64("bulletin_id", b.ID), zap.Error(err))
			return nil, nil
		}
		return nil, err
	}
	s.metrics.ObservePages("bulletin", len(extracted.Pages))
	cat = &session.Catalog{
		FileName:     b.FileName,
		AcademicYear: b.AcademicYear,
		Pages:        extracted.Pages,
		Plan:         catalog.Parse(extracted.Pages),
	}
	if err := st.SetCatalog(ctx, cat); err != nil {
		logutil.GetLogger(ctx).Warn("cache catalog failed", zap.Error(err))
	}
	logutil.GetLogger(ctx).Info("bulletin loaded for session",
		zap.Int64("bulletin_id", b.ID), zap.Int("pages", len(extracted.Pages)), zap.Int("courses", cat.Plan.Total()))
	return cat, nil
}

// History returns the stored messages of the session conversation.
func (s *ChatService) History(ctx context.Context, st *session.State) (string, []model.ChatMessage, error) {
	id, ok, err := st.PeekConversationID(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("%w: session: %w", appErr.ErrUpstream, err)
	}
	if !ok {
		return "", []model.ChatMessage{}, nil
	}
	msgs, err := s.logs.Load(ctx, id)
	if err != nil {
		return "", nil, err
	}
	return id, msgs, nil
}

// Clear wipes the conversation log and every value cached for the session.
func (s *ChatService) Clear(ctx context.Context, st *session.State) error {
	id, ok, err := st.PeekConversationID(ctx)
	if err != nil {
		return fmt.Errorf("%w: session: %w", appErr.ErrUpstream, err)
	}
	if ok {
		if err := s.logs.Clear(ctx, id); err != nil {
			return err
		}
	}
	return st.Reset(ctx)
}

// RemoveBulletin drops only the cached catalog. History and student context stay.
func (s *ChatService) RemoveBulletin(ctx context.Context, st *session.State) error {
	return st.RemoveCatalog(ctx)
}

func toTurns(msgs []model.ChatMessage) []ai.Turn {
	out := make([]ai.Turn, 0, len(msgs))
	for _, m := range msgs {
		role := ai.RoleUser
		if m.Role == model.RoleAssistant {
			role = ai.RoleModel
		}
		out = append(out, ai.Turn{Role: role, Text: m.Content})
	}
	return out
}

func courseCodeInQuestion(text string) string {
	m := questionCodeRegex.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1]) + " " + m[2]
}

func groupThousands(n int) string {
	s := strconv.Itoa(n)
	var sb strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
