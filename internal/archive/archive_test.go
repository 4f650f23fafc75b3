package archive

import (
	"path/filepath"
	"testing"
	"time"

	"sagaview/internal/scopelog"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "scopes.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func testScope(id string, started time.Time) *scopelog.Scope {
	return &scopelog.Scope{
		MessageID:   id,
		MessageType: "OrderSubmitted",
		Started:     started,
		Entries: []scopelog.Entry{
			{Timestamp: started, OffsetMs: 0, Level: scopelog.LevelInfo, Message: "received"},
			{Timestamp: started.Add(5 * time.Millisecond), OffsetMs: 5, Level: scopelog.LevelError, Message: "boom"},
		},
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "scopes.db")
	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestCloseNilDB(t *testing.T) {
	a := &Archive{}
	if err := a.Close(); err != nil {
		t.Errorf("Close on nil db should not error: %v", err)
	}
}

func TestSaveAndQueryScope(t *testing.T) {
	a := openTestArchive(t)
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := a.SaveScope(testScope("m1", started)); err != nil {
		t.Fatalf("SaveScope failed: %v", err)
	}

	scopes, err := a.RecentScopes(10)
	if err != nil {
		t.Fatalf("RecentScopes failed: %v", err)
	}
	if len(scopes) != 1 {
		t.Fatalf("got %d scopes, want 1", len(scopes))
	}
	if scopes[0].MessageID != "m1" || scopes[0].MessageType != "OrderSubmitted" {
		t.Errorf("scope row = %+v", scopes[0])
	}
	if scopes[0].Entries != 2 {
		t.Errorf("entry count = %d, want 2", scopes[0].Entries)
	}
	if !scopes[0].Started.Equal(started) {
		t.Errorf("started = %v, want %v", scopes[0].Started, started)
	}
}

func TestSaveScopeIdempotent(t *testing.T) {
	a := openTestArchive(t)
	started := time.Now()

	for i := 0; i < 3; i++ {
		if err := a.SaveScope(testScope("m1", started)); err != nil {
			t.Fatalf("SaveScope #%d failed: %v", i, err)
		}
	}

	scopes, err := a.RecentScopes(10)
	if err != nil {
		t.Fatalf("RecentScopes failed: %v", err)
	}
	if len(scopes) != 1 {
		t.Errorf("got %d scopes after replay, want 1", len(scopes))
	}
	if scopes[0].Entries != 2 {
		t.Errorf("entry count after replay = %d, want 2", scopes[0].Entries)
	}
}

func TestSaveScopeNilAndEmptyID(t *testing.T) {
	a := openTestArchive(t)

	if err := a.SaveScope(nil); err != nil {
		t.Errorf("SaveScope(nil) = %v", err)
	}
	if err := a.SaveScope(&scopelog.Scope{}); err != nil {
		t.Errorf("SaveScope(empty id) = %v", err)
	}

	scopes, _ := a.RecentScopes(10)
	if len(scopes) != 0 {
		t.Errorf("empty saves produced %d scopes", len(scopes))
	}
}

func TestRecentScopesNewestFirst(t *testing.T) {
	a := openTestArchive(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"m1", "m2", "m3"} {
		if err := a.SaveScope(testScope(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("SaveScope failed: %v", err)
		}
	}

	scopes, err := a.RecentScopes(2)
	if err != nil {
		t.Fatalf("RecentScopes failed: %v", err)
	}
	if len(scopes) != 2 {
		t.Fatalf("got %d scopes, want 2 (limit)", len(scopes))
	}
	if scopes[0].MessageID != "m3" || scopes[1].MessageID != "m2" {
		t.Errorf("order = [%s, %s], want [m3, m2]", scopes[0].MessageID, scopes[1].MessageID)
	}
}

func TestEntries(t *testing.T) {
	a := openTestArchive(t)
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := a.SaveScope(testScope("m1", started)); err != nil {
		t.Fatalf("SaveScope failed: %v", err)
	}

	entries, err := a.Entries("m1")
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Message != "received" || entries[1].Message != "boom" {
		t.Error("entry order not preserved")
	}
	if entries[1].OffsetMs != 5 {
		t.Errorf("offset = %d, want 5", entries[1].OffsetMs)
	}
	if entries[1].Level != scopelog.LevelError {
		t.Errorf("level = %v, want Error", entries[1].Level)
	}
}

func TestEntriesUnknownScope(t *testing.T) {
	a := openTestArchive(t)
	entries, err := a.Entries("nope")
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries for unknown scope", len(entries))
	}
}
