package store

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/me/busdesk/pkg/model"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	st, err := NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestMigrateIdempotent(t *testing.T) {
	st := testStore(t)
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestNoticesPopOnce(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	for _, n := range []model.Notice{
		{ClientID: "c1", Level: model.NoticeSuccess, Message: "Schedule updated"},
		{ClientID: "c2", Level: model.NoticeError, Message: "Failed to delete bus."},
		{ClientID: "c1", Level: model.NoticeNeutral, Message: "No changes were made."},
	} {
		if err := st.PushNotice(ctx, n); err != nil {
			t.Fatalf("PushNotice: %v", err)
		}
	}

	got, err := st.PopNotices(ctx, "c1")
	if err != nil {
		t.Fatalf("PopNotices: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d notices, want 2", len(got))
	}
	if got[0].Message != "Schedule updated" || got[1].Level != model.NoticeNeutral {
		t.Errorf("notices = %+v", got)
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	again, err := st.PopNotices(ctx, "c1")
	if err != nil {
		t.Fatalf("PopNotices: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("second pop returned %d notices", len(again))
	}

	other, _ := st.PopNotices(ctx, "c2")
	if len(other) != 1 {
		t.Errorf("c2 notices = %d, want 1", len(other))
	}
}

func TestPruneNotices(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	old := time.Now().Add(-2 * time.Hour)

	st.PushNotice(ctx, model.Notice{ClientID: "c1", Level: model.NoticeSuccess, Message: "old", CreatedAt: old})
	st.PushNotice(ctx, model.Notice{ClientID: "c1", Level: model.NoticeSuccess, Message: "new"})

	n, err := st.PruneNotices(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("PruneNotices: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d, want 1", n)
	}
	left, _ := st.PopNotices(ctx, "c1")
	if len(left) != 1 || left[0].Message != "new" {
		t.Errorf("remaining = %+v", left)
	}
}

func TestActionJournal(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	recs := []model.ActionRecord{
		{ClientID: "c1", OwnerID: "own_1", Collection: model.CollectionSchedules, EntityID: "s1", Field: "price", OldValue: "450", NewValue: "500", Outcome: model.OutcomeApplied, Message: "Schedule updated"},
		{ClientID: "c1", Collection: model.CollectionOwners, EntityID: "o1", Field: "isBlocked", OldValue: "false", NewValue: "true", Outcome: model.OutcomeApplied},
		{ClientID: "c2", OwnerID: "own_1", Collection: model.CollectionSchedules, EntityID: "s1", Field: "price", OldValue: "500", NewValue: "500", Outcome: model.OutcomeUnchanged},
	}
	for _, r := range recs {
		if err := st.RecordAction(ctx, r); err != nil {
			t.Fatalf("RecordAction: %v", err)
		}
	}

	all, total, err := st.ListActions(ctx, ActionFilter{}, model.DefaultListOptions())
	if err != nil {
		t.Fatalf("ListActions: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Fatalf("total = %d, len = %d, want 3", total, len(all))
	}
	if all[0].Outcome != model.OutcomeUnchanged {
		t.Errorf("newest first: got %q", all[0].Outcome)
	}

	bySchedule, total, err := st.ListActions(ctx, ActionFilter{Collection: model.CollectionSchedules, EntityID: "s1"}, model.DefaultListOptions())
	if err != nil {
		t.Fatalf("ListActions: %v", err)
	}
	if total != 2 || bySchedule[1].NewValue != "500" || bySchedule[1].OwnerID != "own_1" {
		t.Errorf("schedule actions = %+v", bySchedule)
	}

	page, total, _ := st.ListActions(ctx, ActionFilter{ClientID: "c1"}, model.ListOptions{Limit: 1, Offset: 1})
	if total != 2 || len(page) != 1 || page[0].Collection != model.CollectionSchedules {
		t.Errorf("paged c1 actions = %+v (total %d)", page, total)
	}
}

func TestPragmasApplyToEveryConnection(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "busdesk.db"), logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	conn1, err := st.db.Conn(ctx)
	if err != nil {
		t.Fatalf("conn1: %v", err)
	}
	defer conn1.Close()
	conn2, err := st.db.Conn(ctx)
	if err != nil {
		t.Fatalf("conn2: %v", err)
	}
	defer conn2.Close()

	for i, conn := range []*sql.Conn{conn1, conn2} {
		var timeout int
		if err := conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout); err != nil {
			t.Fatalf("conn%d busy_timeout: %v", i+1, err)
		}
		if timeout != 5000 {
			t.Errorf("conn%d busy_timeout = %d, want 5000", i+1, timeout)
		}
		var mode string
		if err := conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
			t.Fatalf("conn%d journal_mode: %v", i+1, err)
		}
		if !strings.EqualFold(mode, "wal") {
			t.Errorf("conn%d journal_mode = %q, want wal", i+1, mode)
		}
	}
}

func TestDSNAppendsPragmas(t *testing.T) {
	if got, want := dsn("/tmp/a.db"), "/tmp/a.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"; got != want {
		t.Errorf("dsn = %q, want %q", got, want)
	}
	if got := dsn("file:a.db?mode=rwc"); !strings.HasPrefix(got, "file:a.db?mode=rwc&_pragma=") {
		t.Errorf("dsn with query = %q", got)
	}
}
