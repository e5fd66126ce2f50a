package quiz

import (
	"context"
	"sort"
	"sync"

	"github.com/quizforge/quizforge/internal/difficulty"
)

// MemoryStore is a map-backed Store for tests and local hacking.
type MemoryStore struct {
	mu      sync.RWMutex
	quizzes map[string]Quiz
	subs    []Submission
	subIdx  map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		quizzes: map[string]Quiz{},
		subIdx:  map[string]int{},
	}
}

func (m *MemoryStore) PutQuiz(_ context.Context, q Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quizzes[q.ID] = q
	return nil
}

func (m *MemoryStore) GetQuiz(_ context.Context, id string) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, ErrNotFound
	}
	return q, nil
}

func (m *MemoryStore) ListQuizzes(_ context.Context, userID string, opts ListOpts) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := []Quiz{}
	for _, q := range m.quizzes {
		if q.UserID == userID {
			all = append(all, q)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt > all[j].CreatedAt })

	out := []Summary{}
	for i, q := range all {
		if i < opts.Offset {
			continue
		}
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
		out = append(out, Summary{
			ID:           q.ID,
			Subject:      q.Subject,
			Difficulty:   q.Difficulty,
			NumQuestions: len(q.Questions),
			CreatedAt:    q.CreatedAt,
		})
	}
	return out, nil
}

func (m *MemoryStore) PutSubmission(_ context.Context, sub Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub.Suggestions == nil {
		sub.Suggestions = []string{}
	}
	m.subIdx[sub.ID] = len(m.subs)
	m.subs = append(m.subs, sub)
	return nil
}

func (m *MemoryStore) GetSubmission(_ context.Context, id string) (Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.subIdx[id]
	if !ok {
		return Submission{}, ErrNotFound
	}
	return m.subs[i], nil
}

func (m *MemoryStore) ListSubmissions(_ context.Context, userID string, opts ListOpts) ([]Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []Submission{}
	for _, sub := range m.recentLocked(userID, "") {
		if opts.Offset > 0 {
			opts.Offset--
			continue
		}
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
		out = append(out, sub)
	}
	return out, nil
}

func (m *MemoryStore) MarkEmailSent(_ context.Context, submissionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.subIdx[submissionID]
	if !ok {
		return ErrNotFound
	}
	m.subs[i].EmailSent = true
	return nil
}

func (m *MemoryStore) RecentResults(_ context.Context, userID, subject string, limit int) ([]difficulty.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = difficulty.HistoryWindow
	}
	out := []difficulty.Result{}
	for _, sub := range m.recentLocked(userID, subject) {
		if len(out) >= limit {
			break
		}
		out = append(out, difficulty.Result{Score: sub.Score, Total: sub.Total})
	}
	return out, nil
}

// recentLocked returns the user's submissions most recent first, with
// insertion order breaking timestamp ties. Callers hold at least mu.RLock.
func (m *MemoryStore) recentLocked(userID, subject string) []Submission {
	out := []Submission{}
	for i := len(m.subs) - 1; i >= 0; i-- {
		sub := m.subs[i]
		if sub.UserID != userID {
			continue
		}
		if subject != "" && sub.Subject != subject {
			continue
		}
		out = append(out, sub)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt > out[j].SubmittedAt })
	return out
}
