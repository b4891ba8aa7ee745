package journal

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/starford/headsync/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "headsync-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func rename(from, to string) models.Rename {
	return models.Rename{From: from, To: to, Slug: "s", Trigger: "command", RenamedAt: time.Now().UTC()}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM renames`).Scan(&count); err != nil {
		t.Fatalf("renames table missing: %v", err)
	}
}

func TestRecordAndRecent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	r := rename("Untitled.md", "hello.md")
	r.Heading = "Hello"
	r.Checksum = "abc"
	id, err := db.RecordRename(ctx, r)
	if err != nil {
		t.Fatalf("RecordRename: %v", err)
	}
	if id != 1 {
		t.Errorf("id = %d, want 1", id)
	}
	_, _ = db.RecordRename(ctx, rename("b.md", "c.md"))

	got, err := db.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].To != "c.md" || got[1].Heading != "Hello" || got[1].Checksum != "abc" {
		t.Errorf("recent = %+v", got)
	}
}

func TestRecentLimit(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, _ = db.RecordRename(ctx, rename("a.md", "b.md"))
	}
	got, _ := db.Recent(ctx, 3)
	if len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}
	got, _ = db.Recent(ctx, 0)
	if len(got) != 5 {
		t.Errorf("default limit len = %d, want 5", len(got))
	}
}

func TestHistory(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_, _ = db.RecordRename(ctx, rename("Untitled.md", "draft.md"))
	_, _ = db.RecordRename(ctx, rename("other.md", "unrelated.md"))
	_, _ = db.RecordRename(ctx, rename("draft.md", "final.md"))

	hist, err := db.History(ctx, "final.md")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("history = %+v", hist)
	}
	if hist[0].From != "draft.md" || hist[1].From != "Untitled.md" {
		t.Errorf("history order = %+v", hist)
	}

	// A later note taking an old name is not part of the chain.
	_, _ = db.RecordRename(ctx, rename("x.md", "Untitled.md"))
	hist, _ = db.History(ctx, "final.md")
	if len(hist) != 2 {
		t.Errorf("history after reuse = %+v", hist)
	}

	none, err := db.History(ctx, "never.md")
	if err != nil || len(none) != 0 {
		t.Errorf("history for unknown path = %+v, %v", none, err)
	}
}
