package memstore

import (
	"context"
	"sync"

	domain "github.com/gitworth/gitworth/internal/domain/analysis"
)

// maxJournalEntries bounds the failure journal; stage failures are
// diagnostic, not part of the record lifecycle, so old entries may drop.
const maxJournalEntries = 1000

// FailureJournal is an in-memory log of stage failures, newest last.
type FailureJournal struct {
	mu      sync.Mutex
	entries []domain.StageFailure
}

func NewFailureJournal() *FailureJournal {
	return &FailureJournal{}
}

// Record appends a failure entry, dropping the oldest past the cap.
func (j *FailureJournal) Record(ctx context.Context, f domain.StageFailure) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries = append(j.entries, f)
	if len(j.entries) > maxJournalEntries {
		j.entries = j.entries[len(j.entries)-maxJournalEntries:]
	}
	return nil
}

// Latest returns up to limit entries, newest first.
func (j *FailureJournal) Latest(ctx context.Context, limit int) ([]domain.StageFailure, error) {
	if limit <= 0 {
		limit = defaultLatestLimit
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]domain.StageFailure, 0, limit)
	for i := len(j.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, j.entries[i])
	}
	return out, nil
}
