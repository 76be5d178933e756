package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantora/riskdesk/pkg/domain"
	"github.com/quantora/riskdesk/pkg/domain/workspace"
)

// both backends must satisfy the same contract
func stores(t *testing.T) map[string]Store {
	t.Helper()

	fileStore, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	sqliteStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqliteStore.Close() })

	return map[string]Store{"file": fileStore, "sqlite": sqliteStore}
}

func TestLoadDefaultsWhenEmpty(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, store.LoadWidgets())
			assert.Empty(t, store.LoadMessages())

			tabs := store.LoadTabs()
			require.Len(t, tabs, 1)
			assert.Equal(t, "Overview", tabs[0].Name)
			assert.True(t, tabs[0].IsActive)

			_, ok := store.LoadActiveTab()
			assert.False(t, ok)

			_, ok = store.LoadTheme()
			assert.False(t, ok)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			tab := workspace.NewTab("Credit", true)
			widget := workspace.NewWidget(domain.WidgetRiskExposure, tab.ID)
			widget.AddColumn("notional")
			widget.AddColumn("notional") // duplicates survive

			msg := workspace.NewMessage(workspace.MessageAI, "reply",
				workspace.MessageAction{Kind: workspace.ActionAddRiskWidget, Label: "Add risk widget"})

			require.NoError(t, store.SaveTabs([]workspace.Tab{tab}))
			require.NoError(t, store.SaveWidgets([]workspace.Widget{widget}))
			require.NoError(t, store.SaveActiveTab(tab.ID))
			require.NoError(t, store.SaveMessages([]workspace.Message{msg}))
			require.NoError(t, store.SaveTheme(domain.ThemeLight))

			assert.Equal(t, []workspace.Tab{tab}, store.LoadTabs())

			widgets := store.LoadWidgets()
			require.Len(t, widgets, 1)
			assert.Equal(t, widget.ID, widgets[0].ID)
			assert.Equal(t, []string{"notional", "notional"}, widgets[0].Columns)

			activeID, ok := store.LoadActiveTab()
			require.True(t, ok)
			assert.Equal(t, tab.ID, activeID)

			messages := store.LoadMessages()
			require.Len(t, messages, 1)
			assert.Equal(t, msg.Content, messages[0].Content)
			// actions persist as data (kind + label); behavior is rebound by
			// the action registry after reload
			require.Len(t, messages[0].Actions, 1)
			assert.Equal(t, workspace.ActionAddRiskWidget, messages[0].Actions[0].Kind)

			theme, ok := store.LoadTheme()
			require.True(t, ok)
			assert.Equal(t, domain.ThemeLight, theme)
		})
	}
}

func TestSaveMessagesTruncatesToMostRecent(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			messages := make([]workspace.Message, 0, 75)
			for i := 0; i < 75; i++ {
				messages = append(messages, workspace.NewMessage(workspace.MessageUser, fmt.Sprintf("m%d", i)))
			}

			require.NoError(t, store.SaveMessages(messages))

			loaded := store.LoadMessages()
			require.Len(t, loaded, MaxPersistedMessages)
			assert.Equal(t, "m25", loaded[0].Content, "oldest kept entry")
			assert.Equal(t, "m74", loaded[len(loaded)-1].Content, "newest entry")
		})
	}
}

func TestClearKeepsTheme(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			tab := workspace.NewTab("Scratch", true)
			require.NoError(t, store.SaveTabs([]workspace.Tab{tab}))
			require.NoError(t, store.SaveWidgets([]workspace.Widget{workspace.NewWidget(domain.WidgetVarTrend, tab.ID)}))
			require.NoError(t, store.SaveActiveTab(tab.ID))
			require.NoError(t, store.SaveMessages([]workspace.Message{workspace.NewMessage(workspace.MessageUser, "hi")}))
			require.NoError(t, store.SaveTheme(domain.ThemeLight))

			require.NoError(t, store.Clear())

			assert.Empty(t, store.LoadWidgets())
			assert.Empty(t, store.LoadMessages())
			tabs := store.LoadTabs()
			require.Len(t, tabs, 1)
			assert.Equal(t, "Overview", tabs[0].Name)
			_, ok := store.LoadActiveTab()
			assert.False(t, ok)

			theme, ok := store.LoadTheme()
			require.True(t, ok, "theme is a standing preference and survives reset")
			assert.Equal(t, domain.ThemeLight, theme)
		})
	}
}

func TestFileStoreCorruptSlotFallsBack(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, SlotWidgets+".json"), []byte("{not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, SlotTabs+".json"), []byte("[[["), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, SlotTheme+".json"), []byte("sepia"), 0o644))

	assert.Empty(t, store.LoadWidgets())

	tabs := store.LoadTabs()
	require.Len(t, tabs, 1)
	assert.Equal(t, "Overview", tabs[0].Name)

	_, ok := store.LoadTheme()
	assert.False(t, ok, "unrecognized theme value is treated as absent")
}
