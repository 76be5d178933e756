package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quantora/riskdesk/pkg/domain"
	"github.com/quantora/riskdesk/pkg/domain/workspace"
	"github.com/quantora/riskdesk/pkg/logger"
)

// FileStore persists each slot as one file under a base directory.
// Collection slots are JSON arrays; active-tab-id and theme are raw strings.
type FileStore struct {
	baseDir string
}

// NewFileStore creates the base directory if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir %s: %w", baseDir, err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) path(slot string) string {
	return filepath.Join(s.baseDir, slot+".json")
}

func (s *FileStore) writeJSON(slot string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", slot, err)
	}
	return os.WriteFile(s.path(slot), data, 0o644)
}

// readJSON returns false when the slot is absent or unreadable; the caller
// falls back to its default. Corrupt content is logged, never propagated.
func (s *FileStore) readJSON(slot string, v interface{}) bool {
	data, err := os.ReadFile(s.path(slot))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		logger.WarnCF("persistence", "Corrupt slot, using default", map[string]interface{}{
			"slot": slot, "error": err.Error(),
		})
		return false
	}
	return true
}

func (s *FileStore) writeRaw(slot, value string) error {
	return os.WriteFile(s.path(slot), []byte(value), 0o644)
}

func (s *FileStore) readRaw(slot string) (string, bool) {
	data, err := os.ReadFile(s.path(slot))
	if err != nil || len(data) == 0 {
		return "", false
	}
	return string(data), true
}

func (s *FileStore) SaveWidgets(widgets []workspace.Widget) error {
	return s.writeJSON(SlotWidgets, widgets)
}

func (s *FileStore) LoadWidgets() []workspace.Widget {
	var widgets []workspace.Widget
	if !s.readJSON(SlotWidgets, &widgets) || widgets == nil {
		return []workspace.Widget{}
	}
	return widgets
}

func (s *FileStore) SaveTabs(tabs []workspace.Tab) error {
	return s.writeJSON(SlotTabs, tabs)
}

func (s *FileStore) LoadTabs() []workspace.Tab {
	var tabs []workspace.Tab
	if !s.readJSON(SlotTabs, &tabs) || len(tabs) == 0 {
		return DefaultTabs()
	}
	return tabs
}

func (s *FileStore) SaveActiveTab(id domain.EntityID) error {
	return s.writeRaw(SlotActiveTab, id.String())
}

func (s *FileStore) LoadActiveTab() (domain.EntityID, bool) {
	raw, ok := s.readRaw(SlotActiveTab)
	return domain.EntityID(raw), ok
}

func (s *FileStore) SaveMessages(messages []workspace.Message) error {
	return s.writeJSON(SlotMessages, truncateMessages(messages))
}

func (s *FileStore) LoadMessages() []workspace.Message {
	var messages []workspace.Message
	if !s.readJSON(SlotMessages, &messages) || messages == nil {
		return []workspace.Message{}
	}
	return messages
}

func (s *FileStore) SaveTheme(theme domain.Theme) error {
	return s.writeRaw(SlotTheme, theme.String())
}

func (s *FileStore) LoadTheme() (domain.Theme, bool) {
	raw, ok := s.readRaw(SlotTheme)
	theme := domain.Theme(raw)
	if !ok || !theme.Valid() {
		return "", false
	}
	return theme, true
}

// Clear removes the four session slots. The theme slot is not touched.
func (s *FileStore) Clear() error {
	var firstErr error
	for _, slot := range []string{SlotWidgets, SlotTabs, SlotActiveTab, SlotMessages} {
		if err := os.Remove(s.path(slot)); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *FileStore) Close() error { return nil }

// Verify interface compliance at compile time.
var _ Store = (*FileStore)(nil)
