// Package workspace defines the workspace bounded context: the widgets placed
// on the dashboard, the tabs that partition them, and the assistant
// conversation transcript.
package workspace

import (
	"github.com/quantora/riskdesk/pkg/domain"
)

// ---------------------------------------------------------------------------
// Widget
// ---------------------------------------------------------------------------

// Widget is a typed, positioned unit of dashboard content belonging to one
// tab. Widget order in the service's list is placement order within a tab.
type Widget struct {
	ID      domain.EntityID   `json:"id"`
	Type    domain.WidgetType `json:"type"`
	Title   string            `json:"title"`
	Columns []string          `json:"columns"`
	TabID   domain.EntityID   `json:"tabId"`
}

// NewWidget creates a widget of the given type on the given tab.
// The title is resolved from the closed type lookup; unknown types get the
// generic "Widget" title.
func NewWidget(widgetType domain.WidgetType, tabID domain.EntityID) Widget {
	return Widget{
		ID:      domain.NewID(),
		Type:    widgetType,
		Title:   widgetType.Title(),
		Columns: make([]string, 0),
		TabID:   tabID,
	}
}

// AddColumn appends a column id. Duplicates are allowed and preserved in
// insertion order.
func (w *Widget) AddColumn(columnID string) {
	w.Columns = append(w.Columns, columnID)
}

// ---------------------------------------------------------------------------
// Tab
// ---------------------------------------------------------------------------

// Tab is a named workspace partition. Exactly one tab is active at a time.
type Tab struct {
	ID       domain.EntityID `json:"id"`
	Name     string          `json:"name"`
	IsActive bool            `json:"isActive"`
}

// NewTab creates a tab with the given name.
func NewTab(name string, active bool) Tab {
	return Tab{
		ID:       domain.NewID(),
		Name:     name,
		IsActive: active,
	}
}

// DefaultTabName is the name of the tab created when no persisted state
// exists.
const DefaultTabName = "Overview"

// ---------------------------------------------------------------------------
// Conversation messages
// ---------------------------------------------------------------------------

// MessageType classifies transcript entries.
type MessageType string

const (
	MessageUser   MessageType = "user"
	MessageAI     MessageType = "ai"
	MessageSystem MessageType = "system"
)

// ActionKind identifies an assistant-offered action. Actions are pure data;
// the behavior behind a kind is bound by the workspace service's action
// registry, so actions survive persistence and can be re-invoked after a
// reload.
type ActionKind string

const (
	ActionAddRiskWidget   ActionKind = "add-risk-widget"
	ActionCustomizeWidget ActionKind = "customize-widget"
	ActionDeselectWidget  ActionKind = "deselect-widget"
)

// MessageAction is an action offered alongside an assistant message.
type MessageAction struct {
	Kind  ActionKind `json:"kind"`
	Label string     `json:"label"`
}

// Message is one entry in the append-only conversation transcript.
// Insertion order is chronological order.
type Message struct {
	ID        domain.EntityID  `json:"id"`
	Content   string           `json:"content"`
	Type      MessageType      `json:"type"`
	Timestamp domain.Timestamp `json:"timestamp"`
	Actions   []MessageAction  `json:"actions,omitempty"`
}

// NewMessage creates a transcript message.
func NewMessage(msgType MessageType, content string, actions ...MessageAction) Message {
	return Message{
		ID:        domain.NewID(),
		Content:   content,
		Type:      msgType,
		Timestamp: domain.Now(),
		Actions:   actions,
	}
}
