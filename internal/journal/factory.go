package journal

import (
	"fmt"
	"os"
	"path/filepath"

	"wallsort/internal/config"
)

// FileName is the journal database file inside data_dir.
const FileName = "wallsort.db"

// NewJournalFromConfig creates a Store based on the journal config type.
func NewJournalFromConfig(cfg config.JournalConfig) (Store, error) {
	switch cfg.Type {
	case "", config.JournalNone:
		return disabledStore{}, nil
	case config.JournalSQLite:
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite journal")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
		return NewSQLiteJournal(filepath.Join(cfg.DataDir, FileName))
	case config.JournalMemory:
		return NewSQLiteJournal(":memory:")
	default:
		return nil, fmt.Errorf("unknown journal type: %s", cfg.Type)
	}
}
