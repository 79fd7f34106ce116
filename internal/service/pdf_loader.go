package service

import (
	"context"
	"fmt"

	"github.com/xxxsen/advisor/internal/filestore"
	"github.com/xxxsen/advisor/internal/pdfextract"
	appErr "github.com/xxxsen/advisor/internal/pkg/errors"
)

// pdfLoader fetches stored PDFs by locator and extracts their page text.
type pdfLoader struct {
	files filestore.Store
}

func (l *pdfLoader) load(ctx context.Context, locator string, maxPages, maxChars int) (*pdfextract.Result, error) {
	data, err := filestore.Download(ctx, l.files, locator)
	if err != nil {
		return nil, fmt.Errorf("%w: download %s: %w", appErr.ErrUpstream, locator, err)
	}
	res, err := pdfextract.Extract(data, maxPages, maxChars)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", locator, err)
	}
	return res, nil
}
