// Package audit appends domain events to the append-only event log and
// serves them back for the admin view.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Event types recorded by the service.
const (
	EventUserRegistered   = "user.registered"
	EventGuestCreated     = "guest.created"
	EventQuizCreated      = "quiz.created"
	EventSubmissionScored = "submission.scored"
	EventEmailSent        = "email.sent"
	EventEmailFailed      = "email.failed"
)

type Event struct {
	Offset    int64           `json:"offset"`
	Type      string          `json:"type"`
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	CreatedAt int64           `json:"created_at"`
}

// Recorder is the write side of the log. Handlers depend on this so tests
// can capture events without a database.
type Recorder interface {
	Record(ctx context.Context, typ, key string, data any)
}

type Log struct{ db *sql.DB }

func NewLog(db *sql.DB) *Log { return &Log{db: db} }

// Record appends one event. Failures are logged, never returned: audit
// trouble must not fail the request that triggered it.
func (l *Log) Record(ctx context.Context, typ, key string, data any) {
	buf, err := json.Marshal(data)
	if err != nil {
		log.Printf("audit: marshal %s event: %v", typ, err)
		buf = []byte(`{}`)
	}
	if _, err := l.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		typ, key, string(buf), time.Now().Unix()); err != nil {
		log.Printf("audit: append %s event: %v", typ, err)
	}
}

// Recent returns up to limit events, newest first.
func (l *Log) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT "offset", typ, key, data, created_at FROM event_log ORDER BY "offset" DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var e Event
		var data string
		if err := rows.Scan(&e.Offset, &e.Type, &e.Key, &data, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Data = json.RawMessage(data)
		out = append(out, e)
	}
	return out, rows.Err()
}

// MemoryRecorder collects events in memory for tests.
type MemoryRecorder struct {
	mu     sync.Mutex
	Events []Event
}

func (m *MemoryRecorder) Record(_ context.Context, typ, key string, data any) {
	buf, _ := json.Marshal(data)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, Event{
		Offset:    int64(len(m.Events) + 1),
		Type:      typ,
		Key:       key,
		Data:      buf,
		CreatedAt: time.Now().Unix(),
	})
}

// Types returns the recorded event types in order.
func (m *MemoryRecorder) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Events))
	for _, e := range m.Events {
		out = append(out, e.Type)
	}
	return out
}
