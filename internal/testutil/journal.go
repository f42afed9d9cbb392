package testutil

import (
	"testing"

	"wallsort/internal/journal"
)

// NewTestJournal opens a migrated in-memory SQLite journal that is closed
// when the test completes.
func NewTestJournal(t *testing.T) *journal.SQLiteJournal {
	t.Helper()

	j, err := journal.NewSQLiteJournal(":memory:")
	if err != nil {
		t.Fatalf("opening test journal: %v", err)
	}
	t.Cleanup(func() {
		j.Close()
	})
	return j
}
