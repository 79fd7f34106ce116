package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/advisor/internal/catalog"
	"github.com/xxxsen/advisor/internal/config"
	"github.com/xxxsen/advisor/internal/filestore"
	"github.com/xxxsen/advisor/internal/metrics"
	"github.com/xxxsen/advisor/internal/model"
	"github.com/xxxsen/advisor/internal/pdfextract"
	appErr "github.com/xxxsen/advisor/internal/pkg/errors"
)

type BulletinMeta struct {
	Year        int
	Category    string
	Description string
	UploadedBy  string
}

type BulletinUploadResult struct {
	Bulletin       *model.Bulletin `json:"bulletin"`
	PagesExtracted int             `json:"pages_extracted"`
	TotalChars     int             `json:"total_chars"`
	CoursesFound   int             `json:"courses_found"`
}

type BulletinService struct {
	bulletins BulletinStore
	files     filestore.Store
	metrics   *metrics.Metrics
	cfg       config.ChatConfig
	now       func() time.Time
}

func NewBulletinService(bulletins BulletinStore, files filestore.Store, m *metrics.Metrics, cfg config.ChatConfig) *BulletinService {
	return &BulletinService{bulletins: bulletins, files: files, metrics: m, cfg: cfg, now: time.Now}
}

// AcademicYear renders a starting year as "2024-2025".
func AcademicYear(year int) string {
	return strconv.Itoa(year) + "-" + strconv.Itoa(year+1)
}

func bulletinKey(meta BulletinMeta, fileName string, ts int64) string {
	base := strings.ReplaceAll(path.Base(strings.ReplaceAll(fileName, "\\", "/")), " ", "_")
	name := fmt.Sprintf("%d_%s", ts, base)
	if meta.Category == model.BulletinCategoryMinor {
		return path.Join("minors", name)
	}
	return path.Join("bulletins", strconv.Itoa(meta.Year), name)
}

// Upload validates and stores a bulletin PDF, reports what could be parsed
// from it and publishes it.
func (s *BulletinService) Upload(ctx context.Context, up *Upload, meta BulletinMeta) (*BulletinUploadResult, error) {
	if meta.Year < 1900 || meta.Year > 9999 {
		return nil, appErr.Reject("A valid academic year is required.")
	}
	switch meta.Category {
	case "":
		meta.Category = model.BulletinCategoryMajor
	case model.BulletinCategoryMajor, model.BulletinCategoryMinor:
	default:
		return nil, appErr.Reject("Category must be Major or Minor.")
	}
	data, err := readPDFUpload(up, s.cfg.MaxUploadBytes())
	if err != nil {
		return nil, err
	}
	extracted, err := pdfextract.Extract(data, s.cfg.MaxPages, s.cfg.MaxChars)
	if err != nil {
		logutil.GetLogger(ctx).Error("bulletin extraction failed", zap.String("file", up.FileName), zap.Error(err))
		return nil, appErr.Reject(msgUnreadablePDF)
	}
	plan := catalog.Parse(extracted.Pages)
	s.metrics.ObservePages("admin_upload", len(extracted.Pages))

	now := s.now().Unix()
	locator, err := s.files.Save(ctx, bulletinKey(meta, up.FileName, now), bytes.NewReader(data), int64(len(data)), "application/pdf")
	if err != nil {
		return nil, fmt.Errorf("%w: store bulletin: %w", appErr.ErrUpstream, err)
	}
	b := &model.Bulletin{
		FileName:     up.FileName,
		Locator:      locator,
		Category:     meta.Category,
		AcademicYear: AcademicYear(meta.Year),
		Description:  strings.TrimSpace(meta.Description),
		Pages:        len(extracted.Pages),
		Courses:      plan.Total(),
		IsActive:     true,
		UploadedBy:   meta.UploadedBy,
		Ctime:        now,
	}
	if err := s.bulletins.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("%w: record bulletin: %w", appErr.ErrUpstream, err)
	}
	logutil.GetLogger(ctx).Info("bulletin uploaded",
		zap.Int64("bulletin_id", b.ID), zap.String("locator", locator), zap.Int("courses", b.Courses))
	return &BulletinUploadResult{
		Bulletin:       b,
		PagesExtracted: len(extracted.Pages),
		TotalChars:     extracted.TotalChars,
		CoursesFound:   plan.Total(),
	}, nil
}

func (s *BulletinService) List(ctx context.Context, activeOnly bool) ([]model.Bulletin, error) {
	return s.bulletins.List(ctx, activeOnly)
}

func (s *BulletinService) Deactivate(ctx context.Context, id int64) error {
	return s.bulletins.Deactivate(ctx, id)
}
