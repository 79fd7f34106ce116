package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/advisor/internal/config"
	"github.com/xxxsen/advisor/internal/filestore"
	"github.com/xxxsen/advisor/internal/model"
	appErr "github.com/xxxsen/advisor/internal/pkg/errors"
	"github.com/xxxsen/advisor/internal/rag"
)

type DocumentMeta struct {
	DocumentType string
	CourseCode   string
	Year         string
	Description  string
	UploadedBy   string
}

type SupportingDocService struct {
	docs   DocumentStore
	files  filestore.Store
	loader *pdfLoader
	cfg    config.ChatConfig
	now    func() time.Time
}

func NewSupportingDocService(docs DocumentStore, files filestore.Store, cfg config.ChatConfig) *SupportingDocService {
	return &SupportingDocService{docs: docs, files: files, loader: &pdfLoader{files: files}, cfg: cfg, now: time.Now}
}

func (s *SupportingDocService) Upload(ctx context.Context, up *Upload, meta DocumentMeta) (*model.SupportingDocument, error) {
	data, contentType, err := readDocumentUpload(up, s.cfg.MaxUploadBytes())
	if err != nil {
		return nil, err
	}
	key := path.Join("documents", uuid.NewString()+up.ext())
	locator, err := s.files.Save(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: store document: %w", appErr.ErrUpstream, err)
	}
	doc := &model.SupportingDocument{
		Name:         up.FileName,
		DocumentType: strings.TrimSpace(meta.DocumentType),
		DocumentYear: strings.TrimSpace(meta.Year),
		CourseCode:   model.NormalizeCode(meta.CourseCode),
		Locator:      locator,
		Description:  strings.TrimSpace(meta.Description),
		IsActive:     true,
		UploadedBy:   meta.UploadedBy,
		Ctime:        s.now().Unix(),
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("%w: record document: %w", appErr.ErrUpstream, err)
	}
	return doc, nil
}

func (s *SupportingDocService) List(ctx context.Context) ([]model.SupportingDocument, error) {
	return s.docs.List(ctx)
}

func (s *SupportingDocService) Deactivate(ctx context.Context, id int64) error {
	return s.docs.Deactivate(ctx, id)
}

// Search retrieves excerpts from active PDF documents. Documents that fail to
// download or extract are skipped, so the result is best effort.
func (s *SupportingDocService) Search(ctx context.Context, question, courseCode string) []model.DocumentHit {
	logger := logutil.GetLogger(ctx)
	if len(rag.QueryTokens(question)) == 0 {
		return nil
	}
	limit := s.cfg.MaxDocuments
	docs, err := s.docs.ListActive(ctx, courseCode, limit*2)
	if err != nil {
		logger.Error("list supporting documents failed", zap.Error(err))
		return nil
	}
	out := make([]model.DocumentHit, 0, limit)
	for _, d := range docs {
		if len(out) >= limit {
			break
		}
		if !strings.EqualFold(path.Ext(d.Name), ".pdf") && !strings.EqualFold(path.Ext(d.Locator), ".pdf") {
			continue
		}
		extracted, err := s.loader.load(ctx, d.Locator, s.cfg.DocMaxPages, s.cfg.DocMaxChars)
		if err != nil {
			logger.Warn("skip supporting document", zap.Int64("document_id", d.ID), zap.String("name", d.Name), zap.Error(err))
			continue
		}
		hits := rag.FindTopRelevantSnippets(extracted.Pages, question, s.cfg.DocTopK, s.cfg.DocSnippetChars)
		if len(hits) == 0 {
			continue
		}
		out = append(out, model.DocumentHit{
			DocumentID:   d.ID,
			Name:         d.Name,
			DocumentType: d.DocumentType,
			DocumentYear: d.DocumentYear,
			CourseCode:   d.CourseCode,
			Hits:         hits,
		})
	}
	return out
}
