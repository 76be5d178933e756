package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/quantora/riskdesk/pkg/domain"
	"github.com/quantora/riskdesk/pkg/domain/workspace"
	"github.com/quantora/riskdesk/pkg/logger"
)

// SQLiteStore keeps the snapshot slots in a single-table SQLite database.
// Each slot is one row; collection slots hold JSON, single-value slots hold
// the raw string.
type SQLiteStore struct {
	db *sql.DB
}

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	slot       TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// NewSQLiteStore opens (creating if needed) the snapshot database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db %s: %w", path, err)
	}
	if _, err := db.Exec(snapshotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init snapshot schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) put(slot, data string) error {
	_, err := s.db.Exec(
		`INSERT INTO snapshots (slot, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(slot) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		slot, data,
	)
	if err != nil {
		return fmt.Errorf("save slot %s: %w", slot, err)
	}
	return nil
}

func (s *SQLiteStore) get(slot string) (string, bool) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM snapshots WHERE slot = ?`, slot).Scan(&data)
	if err != nil {
		return "", false
	}
	return data, true
}

func (s *SQLiteStore) putJSON(slot string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", slot, err)
	}
	return s.put(slot, string(data))
}

func (s *SQLiteStore) getJSON(slot string, v interface{}) bool {
	data, ok := s.get(slot)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		logger.WarnCF("persistence", "Corrupt slot, using default", map[string]interface{}{
			"slot": slot, "error": err.Error(),
		})
		return false
	}
	return true
}

func (s *SQLiteStore) SaveWidgets(widgets []workspace.Widget) error {
	return s.putJSON(SlotWidgets, widgets)
}

func (s *SQLiteStore) LoadWidgets() []workspace.Widget {
	var widgets []workspace.Widget
	if !s.getJSON(SlotWidgets, &widgets) || widgets == nil {
		return []workspace.Widget{}
	}
	return widgets
}

func (s *SQLiteStore) SaveTabs(tabs []workspace.Tab) error {
	return s.putJSON(SlotTabs, tabs)
}

func (s *SQLiteStore) LoadTabs() []workspace.Tab {
	var tabs []workspace.Tab
	if !s.getJSON(SlotTabs, &tabs) || len(tabs) == 0 {
		return DefaultTabs()
	}
	return tabs
}

func (s *SQLiteStore) SaveActiveTab(id domain.EntityID) error {
	return s.put(SlotActiveTab, id.String())
}

func (s *SQLiteStore) LoadActiveTab() (domain.EntityID, bool) {
	raw, ok := s.get(SlotActiveTab)
	if !ok || raw == "" {
		return "", false
	}
	return domain.EntityID(raw), true
}

func (s *SQLiteStore) SaveMessages(messages []workspace.Message) error {
	return s.putJSON(SlotMessages, truncateMessages(messages))
}

func (s *SQLiteStore) LoadMessages() []workspace.Message {
	var messages []workspace.Message
	if !s.getJSON(SlotMessages, &messages) || messages == nil {
		return []workspace.Message{}
	}
	return messages
}

func (s *SQLiteStore) SaveTheme(theme domain.Theme) error {
	return s.put(SlotTheme, theme.String())
}

func (s *SQLiteStore) LoadTheme() (domain.Theme, bool) {
	raw, ok := s.get(SlotTheme)
	theme := domain.Theme(raw)
	if !ok || !theme.Valid() {
		return "", false
	}
	return theme, true
}

// Clear removes the four session slots. The theme slot is not touched.
func (s *SQLiteStore) Clear() error {
	_, err := s.db.Exec(
		`DELETE FROM snapshots WHERE slot IN (?, ?, ?, ?)`,
		SlotWidgets, SlotTabs, SlotActiveTab, SlotMessages,
	)
	if err != nil {
		return fmt.Errorf("clear snapshots: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// Verify interface compliance at compile time.
var _ Store = (*SQLiteStore)(nil)
