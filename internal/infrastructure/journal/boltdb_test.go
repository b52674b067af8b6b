package journal

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "journal.db"), "activity")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppendAndBatchPreserveOrder(t *testing.T) {
	store := openTestStore(t)

	base := time.Now()
	for i, action := range []string{"task.create", "task.checklist", "task.verify"} {
		err := store.Append(Entry{
			TaskID:    "t1",
			ActorID:   "admin-1",
			Action:    action,
			Timestamp: base.Add(time.Duration(i) * time.Millisecond),
		})
		if err != nil {
			t.Fatalf("append %q: %v", action, err)
		}
	}

	entries, err := store.Batch(10)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("batch size = %d, want 3", len(entries))
	}
	for i, want := range []string{"task.create", "task.checklist", "task.verify"} {
		if entries[i].Action != want {
			t.Fatalf("entry %d action = %q, want %q", i, entries[i].Action, want)
		}
		if entries[i].ID == "" {
			t.Fatalf("entry %d missing generated id", i)
		}
	}
}

func TestBatchHonorsLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		if err := store.Append(Entry{TaskID: "t1", Action: "task.edit"}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	entries, err := store.Batch(2)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("batch size = %d, want 2", len(entries))
	}
}

func TestRemoveAndSize(t *testing.T) {
	store := openTestStore(t)

	if err := store.Append(Entry{TaskID: "t1", Action: "task.create"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(Entry{TaskID: "t2", Action: "task.delete"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	entries, err := store.Batch(10)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if err := store.Remove(entries[0]); err != nil {
		t.Fatalf("remove: %v", err)
	}

	size, err := store.Size()
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if size != 1 {
		t.Fatalf("size = %d, want 1", size)
	}

	remaining, _ := store.Batch(10)
	if len(remaining) != 1 || remaining[0].TaskID != "t2" {
		t.Fatalf("unexpected remaining entries: %+v", remaining)
	}
}

func TestRequeuePushesEntryToTheBack(t *testing.T) {
	store := openTestStore(t)

	base := time.Now().Add(-time.Minute)
	if err := store.Append(Entry{TaskID: "first", Action: "task.create", Timestamp: base}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(Entry{TaskID: "second", Action: "task.create", Timestamp: base.Add(time.Second)}); err != nil {
		t.Fatalf("append: %v", err)
	}

	entries, _ := store.Batch(10)
	head := entries[0]
	if err := store.Remove(head); err != nil {
		t.Fatalf("remove: %v", err)
	}
	head.Retries++
	if err := store.Requeue(head); err != nil {
		t.Fatalf("requeue: %v", err)
	}

	entries, _ = store.Batch(10)
	if len(entries) != 2 {
		t.Fatalf("size after requeue = %d, want 2", len(entries))
	}
	if entries[0].TaskID != "second" || entries[1].TaskID != "first" {
		t.Fatalf("requeued entry not at the back: %+v", entries)
	}
	if entries[1].Retries != 1 {
		t.Fatalf("retries = %d, want 1", entries[1].Retries)
	}
}

func TestCleanupDropsOldEntries(t *testing.T) {
	store := openTestStore(t)

	old := time.Now().Add(-48 * time.Hour)
	if err := store.Append(Entry{TaskID: "stale", Action: "task.edit", Timestamp: old}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(Entry{TaskID: "fresh", Action: "task.edit"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := store.Cleanup(time.Now().Add(-24 * time.Hour)); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	entries, _ := store.Batch(10)
	if len(entries) != 1 || entries[0].TaskID != "fresh" {
		t.Fatalf("cleanup kept wrong entries: %+v", entries)
	}
}
