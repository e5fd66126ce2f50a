package audit

import (
	"context"
	"testing"

	"github.com/quizforge/quizforge/internal/db"
)

func TestLogRoundTrip(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(ctx, db.DriverSQLite, "file:auditlog?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	l := NewLog(conn)
	l.Record(ctx, EventQuizCreated, "qz-1", map[string]string{"subject": "physics"})
	l.Record(ctx, EventSubmissionScored, "sub-1", map[string]int{"score": 3})

	events, err := l.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Type != EventSubmissionScored || events[1].Type != EventQuizCreated {
		t.Fatalf("got order %s, %s; want newest first", events[0].Type, events[1].Type)
	}
	if events[1].Key != "qz-1" {
		t.Errorf("key = %q", events[1].Key)
	}
	if string(events[0].Data) != `{"score":3}` {
		t.Errorf("data = %s", events[0].Data)
	}
	if events[0].Offset <= events[1].Offset {
		t.Errorf("offsets %d, %d not increasing", events[1].Offset, events[0].Offset)
	}
}

func TestRecentLimit(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(ctx, db.DriverSQLite, "file:auditlimit?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	l := NewLog(conn)
	for i := 0; i < 5; i++ {
		l.Record(ctx, EventEmailSent, "sub-x", nil)
	}
	events, err := l.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want limit respected", len(events))
	}
}
