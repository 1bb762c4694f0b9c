package repository

import (
	"context"
	"sort"
	"sync"

	"BodyMetrics/internal/domain/models"
)

// MemoryResultStore keeps bounded per-subject history in process.
// It backs history when ClickHouse is disabled.
type MemoryResultStore struct {
	mu         sync.RWMutex
	perSubject int
	bySubject  map[string][]models.StoredResult
}

// NewMemoryResultStore keeps at most perSubject rows for each subject.
func NewMemoryResultStore(perSubject int) *MemoryResultStore {
	if perSubject <= 0 {
		perSubject = 1000
	}
	return &MemoryResultStore{perSubject: perSubject, bySubject: make(map[string][]models.StoredResult)}
}

func (s *MemoryResultStore) Init(context.Context) error { return nil }

func (s *MemoryResultStore) Store(_ context.Context, a *models.Assessment) error {
	if a == nil || a.SubjectID == "" {
		return nil
	}
	rows := make([]models.StoredResult, 0, len(a.Results))
	for _, r := range a.Results {
		rows = append(rows, models.StoredResult{
			AssessmentID: a.ID,
			SubjectID:    a.SubjectID,
			MeasuredAt:   a.MeasuredAt,
			Mode:         a.Mode,
			ResultRecord: r,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// same order as the ClickHouse history query: measured_at DESC, assessment_id, position
	merged := append(rows, s.bySubject[a.SubjectID]...)
	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].MeasuredAt.Equal(merged[j].MeasuredAt) {
			return merged[i].MeasuredAt.After(merged[j].MeasuredAt)
		}
		return merged[i].AssessmentID < merged[j].AssessmentID
	})
	if len(merged) > s.perSubject {
		merged = merged[:s.perSubject]
	}
	s.bySubject[a.SubjectID] = merged
	return nil
}

func (s *MemoryResultStore) History(_ context.Context, subjectID string, limit int) ([]models.StoredResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.bySubject[subjectID]
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]models.StoredResult, len(rows))
	copy(out, rows)
	return out, nil
}

func (s *MemoryResultStore) Health(context.Context) error { return nil }

func (s *MemoryResultStore) Close() error { return nil }
