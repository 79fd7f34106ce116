package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/xxxsen/advisor/internal/model"
)

const (
	keyConversationID = "conversation_id"
	keyPdfName        = "pdf_name"
	keyPdfYear        = "pdf_year"
	keyPdfPages       = "pdf_pages"
	keyCatalog        = "catalog"
	keyStudent        = "student_context"
	keyCatalogRemoved = "catalog_removed"

	noStudentRecord = "null"
)

// Catalog is the parsed bulletin cached for one session.
type Catalog struct {
	FileName     string
	AcademicYear string
	Pages        []model.PageText
	Plan         *model.DegreePlan
}

// State is the per-session conversation context: conversation id, cached
// catalog and cached student snapshot.
type State struct {
	store Store
	sid   string
}

func NewState(store Store, sid string) *State {
	return &State{store: store, sid: sid}
}

func (s *State) SessionID() string {
	return s.sid
}

// ConversationID returns the current conversation id, creating one if absent.
func (s *State) ConversationID(ctx context.Context) (string, error) {
	id, ok, err := s.store.Get(ctx, s.sid, keyConversationID)
	if err != nil {
		return "", err
	}
	if ok && id != "" {
		return id, nil
	}
	id = strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := s.store.Set(ctx, s.sid, keyConversationID, id); err != nil {
		return "", err
	}
	return id, nil
}

// PeekConversationID returns the conversation id without creating one.
func (s *State) PeekConversationID(ctx context.Context) (string, bool, error) {
	id, ok, err := s.store.Get(ctx, s.sid, keyConversationID)
	if err != nil || !ok || id == "" {
		return "", false, err
	}
	return id, true, nil
}

func (s *State) Catalog(ctx context.Context) (*Catalog, bool, error) {
	raw, ok, err := s.store.Get(ctx, s.sid, keyCatalog)
	if err != nil || !ok {
		return nil, false, err
	}
	plan := &model.DegreePlan{}
	if err := json.Unmarshal([]byte(raw), plan); err != nil {
		return nil, false, fmt.Errorf("decode cached catalog: %w", err)
	}
	out := &Catalog{Plan: plan}
	if out.FileName, _, err = s.store.Get(ctx, s.sid, keyPdfName); err != nil {
		return nil, false, err
	}
	if out.AcademicYear, _, err = s.store.Get(ctx, s.sid, keyPdfYear); err != nil {
		return nil, false, err
	}
	rawPages, ok, err := s.store.Get(ctx, s.sid, keyPdfPages)
	if err != nil {
		return nil, false, err
	}
	if ok {
		if err := json.Unmarshal([]byte(rawPages), &out.Pages); err != nil {
			return nil, false, fmt.Errorf("decode cached pages: %w", err)
		}
	}
	return out, true, nil
}

func (s *State) SetCatalog(ctx context.Context, c *Catalog) error {
	plan, err := json.Marshal(c.Plan)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	pages, err := json.Marshal(c.Pages)
	if err != nil {
		return fmt.Errorf("encode pages: %w", err)
	}
	for _, kv := range [][2]string{
		{keyPdfName, c.FileName},
		{keyPdfYear, c.AcademicYear},
		{keyPdfPages, string(pages)},
		{keyCatalog, string(plan)},
	} {
		if err := s.store.Set(ctx, s.sid, kv[0], kv[1]); err != nil {
			return err
		}
	}
	return s.store.Delete(ctx, s.sid, keyCatalogRemoved)
}

func (s *State) InvalidateCatalog(ctx context.Context) error {
	return s.store.Delete(ctx, s.sid, keyPdfName, keyPdfYear, keyPdfPages, keyCatalog)
}

// RemoveCatalog drops the cached catalog and keeps the published bulletin
// from being loaded again until the next upload or reset.
func (s *State) RemoveCatalog(ctx context.Context) error {
	if err := s.InvalidateCatalog(ctx); err != nil {
		return err
	}
	return s.store.Set(ctx, s.sid, keyCatalogRemoved, "1")
}

func (s *State) CatalogRemoved(ctx context.Context) (bool, error) {
	v, ok, err := s.store.Get(ctx, s.sid, keyCatalogRemoved)
	if err != nil {
		return false, err
	}
	return ok && v == "1", nil
}

// StudentSnapshot returns the cached snapshot. A cached lookup that found no
// student record yields (nil, true).
func (s *State) StudentSnapshot(ctx context.Context) (*model.StudentSnapshot, bool, error) {
	raw, ok, err := s.store.Get(ctx, s.sid, keyStudent)
	if err != nil || !ok {
		return nil, false, err
	}
	if raw == noStudentRecord {
		return nil, true, nil
	}
	snap := &model.StudentSnapshot{}
	if err := json.Unmarshal([]byte(raw), snap); err != nil {
		return nil, false, fmt.Errorf("decode cached student: %w", err)
	}
	return snap, true, nil
}

// SetStudentSnapshot caches snap; a nil snap records that the student has
// no record so the store is not asked again this session.
func (s *State) SetStudentSnapshot(ctx context.Context, snap *model.StudentSnapshot) error {
	if snap == nil {
		return s.store.Set(ctx, s.sid, keyStudent, noStudentRecord)
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode student: %w", err)
	}
	return s.store.Set(ctx, s.sid, keyStudent, string(raw))
}

func (s *State) InvalidateStudentContext(ctx context.Context) error {
	return s.store.Delete(ctx, s.sid, keyStudent)
}

// Reset drops every cached value including the conversation id.
func (s *State) Reset(ctx context.Context) error {
	return s.store.Destroy(ctx, s.sid)
}
