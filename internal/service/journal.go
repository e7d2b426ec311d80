package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jask/voltalert/internal/database/repository"
	"github.com/jask/voltalert/internal/events"
	"github.com/jask/voltalert/internal/logging"
)

const defaultJournalBuffer = 1024

// JournalService persists alert lifecycle events published on the bus.
type JournalService struct {
	Journal *repository.JournalRepo
	Log     *logging.Logger
	Timeout time.Duration
	// Buffer is the subscription buffer; bursts beyond it are dropped and counted.
	Buffer int

	mu    sync.Mutex
	stats JournalStats
}

// JournalStats counts what happened to lifecycle events.
type JournalStats struct {
	Written int
	Failed  int
	Dropped int
}

// Attach subscribes the journal to every lifecycle event and returns the
// unsubscribe func. Writes happen on the bus subscriber goroutine.
func (s *JournalService) Attach(bus *events.Bus) func() {
	buffer := s.Buffer
	if buffer <= 0 {
		buffer = defaultJournalBuffer
	}
	return bus.SubscribeAll(s.Record, events.WithBuffer(buffer), events.OnDrop(s.dropped))
}

func (s *JournalService) dropped(events.Event) {
	s.mu.Lock()
	s.stats.Dropped++
	s.mu.Unlock()
}

// Record writes one event. Failures are logged and counted, never returned,
// because the queue must not depend on the journal.
func (s *JournalService) Record(e events.Event) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	entry := repository.JournalEntry{
		ID:        uuid.NewString(),
		AlertID:   e.AlertID.String(),
		Kind:      string(e.Type),
		Title:     e.Title,
		Message:   e.Message,
		Button:    e.Button,
		Pending:   e.Pending,
		CreatedAt: e.Timestamp,
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	err := s.Journal.Insert(ctx, entry)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.stats.Failed++
		s.Log.Errorf("journal %s %q: %v", e.Type, e.Title, err)
		return
	}
	s.stats.Written++
}

// Stats returns written, failed and dropped counts.
func (s *JournalService) Stats() JournalStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Summary returns the number of journal entries per event kind.
func (s *JournalService) Summary(ctx context.Context) (map[string]int, error) {
	counts, err := s.Journal.CountByKind(ctx)
	if err != nil {
		return nil, fmt.Errorf("count journal: %w", err)
	}
	return counts, nil
}

// History returns the newest limit entries, oldest first.
func (s *JournalService) History(ctx context.Context, kind string, limit int) ([]repository.JournalEntry, error) {
	entries, err := s.Journal.List(ctx, repository.JournalFilter{Kind: kind, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	return entries, nil
}
