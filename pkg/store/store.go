package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chenBenjamin97/lunge-classifier/pkg/pose"
)

//ErrNotFound is returned when a session has no classified frame yet
var ErrNotFound = errors.New("no classification for session")

//Record is the classification of one frame of a live session
type Record struct {
	SessionID  string      `json:"session_id"`
	Frame      int         `json:"frame"`
	CapturedAt time.Time   `json:"captured_at"`
	Result     pose.Result `json:"result"`
}

//ResultStore keeps the newest Record of every session. Older records of a session are overwritten.
type ResultStore interface {
	SetLatest(ctx context.Context, rec Record) error
	Latest(ctx context.Context, sessionID string) (Record, error)
	Close() error
}

//MemoryStore is a ResultStore living in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) SetLatest(_ context.Context, rec Record) error {
	s.mu.Lock()
	s.records[rec.SessionID] = rec
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Latest(_ context.Context, sessionID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[sessionID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
