// Package persistence keeps the durable snapshot slots (widgets, tabs,
// active tab, recent messages, theme) synchronized with the corresponding bus
// topics, and provides the initial values the services hydrate from at
// startup. Writes are best-effort and write-through; loads never fail hard —
// a missing or corrupt slot yields its documented default.
package persistence

import (
	"github.com/quantora/riskdesk/pkg/domain"
	"github.com/quantora/riskdesk/pkg/domain/workspace"
)

// Slot names. These are the storage keys; both backends use them verbatim.
const (
	SlotWidgets   = "widgets"
	SlotTabs      = "tabs"
	SlotActiveTab = "active-tab-id"
	SlotMessages  = "messages"
	SlotTheme     = "theme"
)

// MaxPersistedMessages bounds the stored transcript. Saves truncate to the
// most recent entries before writing.
const MaxPersistedMessages = 50

// Store is the snapshot persistence contract. Load methods return typed
// defaults for missing or corrupt slots and never return an error; Save
// methods may fail and callers are expected to log and continue (the current
// write fails, previously persisted data is untouched). Clear removes the
// four session slots but leaves the theme — a standing user preference, not
// session state.
type Store interface {
	SaveWidgets(widgets []workspace.Widget) error
	LoadWidgets() []workspace.Widget

	SaveTabs(tabs []workspace.Tab) error
	LoadTabs() []workspace.Tab

	SaveActiveTab(id domain.EntityID) error
	LoadActiveTab() (domain.EntityID, bool)

	SaveMessages(messages []workspace.Message) error
	LoadMessages() []workspace.Message

	SaveTheme(theme domain.Theme) error
	LoadTheme() (domain.Theme, bool)

	Clear() error
	Close() error
}

// DefaultTabs is the tab list used when no persisted tabs exist: a single
// active "Overview" tab.
func DefaultTabs() []workspace.Tab {
	return []workspace.Tab{workspace.NewTab(workspace.DefaultTabName, true)}
}

// truncateMessages returns the most recent MaxPersistedMessages entries.
func truncateMessages(messages []workspace.Message) []workspace.Message {
	if len(messages) <= MaxPersistedMessages {
		return messages
	}
	return messages[len(messages)-MaxPersistedMessages:]
}
