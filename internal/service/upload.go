package service

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	appErr "github.com/xxxsen/advisor/internal/pkg/errors"
)

const (
	msgOnlyPDF       = "Only PDF files are allowed."
	msgPDFTooLarge   = "PDF is too large (max %dMB)."
	msgUnreadablePDF = "Could not read the PDF. If it is scanned (image-only), OCR is required."
	msgDocumentType  = "Only PDF, Word or text documents are allowed."
	msgDocumentSize  = "Document is too large (max %dMB)."
)

var documentExts = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".doc":  "application/msword",
	".txt":  "text/plain",
}

// Upload is a file received from a caller. Size is the declared size and is
// checked before any byte is read.
type Upload struct {
	FileName string
	Size     int64
	Reader   io.Reader
}

func (u *Upload) ext() string {
	return strings.ToLower(filepath.Ext(u.FileName))
}

func readPDFUpload(up *Upload, maxBytes int64) ([]byte, error) {
	if up.ext() != ".pdf" {
		return nil, appErr.Reject(msgOnlyPDF)
	}
	tooLarge := appErr.Reject(fmt.Sprintf(msgPDFTooLarge, maxBytes>>20))
	if up.Size > maxBytes {
		return nil, tooLarge
	}
	data, err := readLimited(up.Reader, maxBytes)
	if err != nil {
		if errors.Is(err, errTooLarge) {
			return nil, tooLarge
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, appErr.Reject(msgUnreadablePDF)
	}
	return data, nil
}

func readDocumentUpload(up *Upload, maxBytes int64) ([]byte, string, error) {
	contentType, ok := documentExts[up.ext()]
	if !ok {
		return nil, "", appErr.Reject(msgDocumentType)
	}
	tooLarge := appErr.Reject(fmt.Sprintf(msgDocumentSize, maxBytes>>20))
	if up.Size > maxBytes {
		return nil, "", tooLarge
	}
	data, err := readLimited(up.Reader, maxBytes)
	if err != nil {
		if errors.Is(err, errTooLarge) {
			return nil, "", tooLarge
		}
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", appErr.Reject("Document is empty.")
	}
	return data, contentType, nil
}

var errTooLarge = errors.New("upload exceeds limit")

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, errTooLarge
	}
	return data, nil
}
