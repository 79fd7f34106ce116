package chatlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/advisor/internal/model"
)

const currentVersion = 1

var (
	ErrInvalidID = errors.New("invalid conversation id")

	idRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

type Store interface {
	Load(ctx context.Context, id string) ([]model.ChatMessage, error)
	Save(ctx context.Context, id string, messages []model.ChatMessage) error
	Append(ctx context.Context, id string, messages ...model.ChatMessage) ([]model.ChatMessage, error)
	Clear(ctx context.Context, id string) error
}

type logFile struct {
	Version  int                 `json:"version"`
	Messages []model.ChatMessage `json:"messages"`
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// FileStore keeps one JSON file per conversation. Every operation on an id
// runs under that id's mutex so concurrent appends never lose messages.
type FileStore struct {
	dir string

	mu    sync.Mutex
	locks map[string]*lockEntry
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("chat log dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chat log dir: %w", err)
	}
	return &FileStore{dir: dir, locks: make(map[string]*lockEntry)}, nil
}

func (s *FileStore) Load(ctx context.Context, id string) ([]model.ChatMessage, error) {
	if !idRegex.MatchString(id) {
		return nil, ErrInvalidID
	}
	unlock := s.lock(id)
	defer unlock()
	return s.read(ctx, id)
}

func (s *FileStore) Save(ctx context.Context, id string, messages []model.ChatMessage) error {
	if !idRegex.MatchString(id) {
		return ErrInvalidID
	}
	unlock := s.lock(id)
	defer unlock()
	return s.write(id, messages)
}

// Append loads the log, adds messages and writes it back, returning the
// full updated log.
func (s *FileStore) Append(ctx context.Context, id string, messages ...model.ChatMessage) ([]model.ChatMessage, error) {
	if !idRegex.MatchString(id) {
		return nil, ErrInvalidID
	}
	unlock := s.lock(id)
	defer unlock()
	current, err := s.read(ctx, id)
	if err != nil {
		return nil, err
	}
	current = append(current, messages...)
	if err := s.write(id, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *FileStore) Clear(ctx context.Context, id string) error {
	if !idRegex.MatchString(id) {
		return ErrInvalidID
	}
	unlock := s.lock(id)
	defer unlock()
	if err := os.Remove(s.path(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove chat log: %w", err)
	}
	return nil
}

func (s *FileStore) read(ctx context.Context, id string) ([]model.ChatMessage, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.ChatMessage{}, nil
		}
		return nil, fmt.Errorf("read chat log: %w", err)
	}
	var file logFile
	if err := json.Unmarshal(data, &file); err == nil {
		if file.Messages == nil {
			file.Messages = []model.ChatMessage{}
		}
		return file.Messages, nil
	}
	// logs written before versioning were a bare array
	var legacy []model.ChatMessage
	if err := json.Unmarshal(data, &legacy); err == nil {
		if legacy == nil {
			legacy = []model.ChatMessage{}
		}
		return legacy, nil
	}
	logutil.GetLogger(ctx).Warn("discard unreadable chat log", zap.String("conversation_id", id))
	return []model.ChatMessage{}, nil
}

func (s *FileStore) write(id string, messages []model.ChatMessage) error {
	if messages == nil {
		messages = []model.ChatMessage{}
	}
	data, err := json.MarshalIndent(logFile{Version: currentVersion, Messages: messages}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode chat log: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, id+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp chat log: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write chat log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close chat log: %w", err)
	}
	if err := os.Rename(tmpName, s.path(id)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace chat log: %w", err)
	}
	return nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *FileStore) lock(id string) func() {
	s.mu.Lock()
	entry, ok := s.locks[id]
	if !ok {
		entry = &lockEntry{}
		s.locks[id] = entry
	}
	entry.refs++
	s.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		s.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}
