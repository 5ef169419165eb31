package audit

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecentTurns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	turns := []Entry{
		{TraceID: "t_1", Identity: "@kim:example.org", Message: "어제 외식 12000원", Tool: "create_expense", OK: true, Reply: "등록 완료"},
		{TraceID: "t_2", Identity: "@kim:example.org", Message: "날씨 어때?", OK: false, Reply: "가계부 도우미예요"},
		{TraceID: "t_3", Identity: "@lee:example.org", Message: "최근 지출", Tool: "list_expenses", OK: true},
	}
	for _, e := range turns {
		if err := s.RecordTurn(ctx, e); err != nil {
			t.Fatalf("RecordTurn: %v", err)
		}
	}

	got, err := s.RecentTurns(ctx, "@kim:example.org", 10)
	if err != nil {
		t.Fatalf("RecentTurns: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d turns, want 2", len(got))
	}
	// Newest first.
	if got[0].TraceID != "t_2" || got[1].TraceID != "t_1" {
		t.Errorf("wrong order: %s, %s", got[0].TraceID, got[1].TraceID)
	}
	if got[1].Tool != "create_expense" || !got[1].OK {
		t.Errorf("tool fields not persisted: %+v", got[1])
	}
	if got[0].Tool != "" {
		t.Errorf("empty tool must round-trip as empty, got %q", got[0].Tool)
	}
}

func TestRecentTurnsLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := s.RecordTurn(ctx, Entry{TraceID: "t", Identity: "x", Message: "m"}); err != nil {
			t.Fatalf("RecordTurn: %v", err)
		}
	}
	got, err := s.RecentTurns(ctx, "x", 3)
	if err != nil {
		t.Fatalf("RecentTurns: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("got %d turns, want 3", len(got))
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.db")
	s1, err := New(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s1.Close()
	s2, err := New(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	s2.Close()
}
