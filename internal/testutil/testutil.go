// Package testutil provides shared test helpers for setting up vaults and journals.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/headsync/internal/journal"
	"github.com/starford/headsync/internal/storage"
)

// TestJournal creates a temporary rename journal that is automatically cleaned up.
func TestJournal(t *testing.T) *journal.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "headsync-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := journal.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, *storage.FS) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// WriteNote writes content to rel inside the vault, creating parent dirs.
func WriteNote(t *testing.T, vaultDir, rel, content string) {
	t.Helper()
	full := filepath.Join(vaultDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// Exists reports whether rel exists inside the vault.
func Exists(vaultDir, rel string) bool {
	_, err := os.Stat(filepath.Join(vaultDir, filepath.FromSlash(rel)))
	return err == nil
}
