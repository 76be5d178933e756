// Package app provides the application services that own all riskdesk state
// and the Container composition root that wires them. Every mutation goes
// through a service operation; every operation ends by publishing the updated
// collection on its *-changed topic, then the fine-grained event topic.
// No state is module-level: tests construct isolated instances.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/quantora/riskdesk/pkg/bus"
	"github.com/quantora/riskdesk/pkg/domain"
	"github.com/quantora/riskdesk/pkg/domain/workspace"
	"github.com/quantora/riskdesk/pkg/infrastructure/persistence"
	"github.com/quantora/riskdesk/pkg/logger"
	"github.com/quantora/riskdesk/pkg/providers"
)

// WorkspaceService is the single source of truth for widgets, tabs, the
// active tab, the conversation transcript, widget selection, and assistant
// processing state. Other components read via accessors or bus subscriptions
// and mutate only through these operations.
type WorkspaceService struct {
	bus       *bus.Bus
	store     persistence.Store
	responder providers.Responder
	delay     time.Duration

	mu          sync.Mutex
	widgets     []workspace.Widget
	tabs        []workspace.Tab
	activeTabID domain.EntityID
	messages    []workspace.Message
	selectedID  *domain.EntityID
	inflight    int
}

// NewWorkspaceService creates the service and hydrates it from the store.
// Missing or corrupt slots fall back to the documented defaults: a single
// active "Overview" tab and empty widget/message lists. Loaded state is
// sanity-checked — orphan widgets are dropped and the active tab is forced to
// resolve to an existing tab.
func NewWorkspaceService(b *bus.Bus, store persistence.Store, responder providers.Responder, responseDelay time.Duration) *WorkspaceService {
	s := &WorkspaceService{
		bus:       b,
		store:     store,
		responder: responder,
		delay:     responseDelay,
	}
	s.hydrate()
	return s
}

func (s *WorkspaceService) hydrate() {
	tabs := s.store.LoadTabs()
	if len(tabs) == 0 {
		tabs = persistence.DefaultTabs()
	}

	activeID, ok := s.store.LoadActiveTab()
	if !ok || !tabHasID(tabs, activeID) {
		activeID = tabs[0].ID
	}
	for i := range tabs {
		tabs[i].IsActive = tabs[i].ID == activeID
	}

	widgets := make([]workspace.Widget, 0)
	for _, w := range s.store.LoadWidgets() {
		if tabHasID(tabs, w.TabID) {
			widgets = append(widgets, w)
		}
	}

	s.tabs = tabs
	s.activeTabID = activeID
	s.widgets = widgets
	s.messages = s.store.LoadMessages()

	logger.InfoCF("workspace", "Hydrated workspace state", map[string]interface{}{
		"tabs":     len(tabs),
		"widgets":  len(widgets),
		"messages": len(s.messages),
	})
}

// Rehydrate reloads state from the store (used after a session reset, which
// behaves like a full client reload) and republishes the
// collection topics so every subscriber converges on the reloaded state.
func (s *WorkspaceService) Rehydrate() {
	s.mu.Lock()
	s.selectedID = nil
	s.hydrate()
	tabs := s.tabsSnapshot()
	widgets := s.widgetsSnapshot()
	messages := s.messagesSnapshot()
	activeID := s.activeTabID
	s.mu.Unlock()

	s.bus.Publish(bus.TopicTabsChanged, tabs)
	s.bus.Publish(bus.TopicWidgetsChanged, widgets)
	s.bus.Publish(bus.TopicActiveTabChanged, activeID)
	s.bus.Publish(bus.TopicMessagesChanged, messages)
	s.bus.Publish(bus.TopicSelectWidget, (*domain.EntityID)(nil))
	s.bus.Publish(bus.TopicLoadState, nil)
}

func tabHasID(tabs []workspace.Tab, id domain.EntityID) bool {
	for _, t := range tabs {
		if t.ID == id {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Accessors — always return copies
// ---------------------------------------------------------------------------

// Widgets returns the flat widget list in placement order.
func (s *WorkspaceService) Widgets() []workspace.Widget {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]workspace.Widget(nil), s.widgets...)
}

// Tabs returns the tab list.
func (s *WorkspaceService) Tabs() []workspace.Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]workspace.Tab(nil), s.tabs...)
}

// ActiveTabID returns the id of the active tab.
func (s *WorkspaceService) ActiveTabID() domain.EntityID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeTabID
}

// Messages returns the transcript in chronological order.
func (s *WorkspaceService) Messages() []workspace.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]workspace.Message(nil), s.messages...)
}

// SelectedWidgetID returns the selected widget id, nil when none.
func (s *WorkspaceService) SelectedWidgetID() *domain.EntityID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedID == nil {
		return nil
	}
	id := *s.selectedID
	return &id
}

// IsProcessing reports whether at least one assistant request is in flight.
func (s *WorkspaceService) IsProcessing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

func (s *WorkspaceService) widgetsSnapshot() []workspace.Widget {
	return append([]workspace.Widget(nil), s.widgets...)
}

func (s *WorkspaceService) tabsSnapshot() []workspace.Tab {
	return append([]workspace.Tab(nil), s.tabs...)
}

func (s *WorkspaceService) messagesSnapshot() []workspace.Message {
	return append([]workspace.Message(nil), s.messages...)
}

// ---------------------------------------------------------------------------
// Widget operations
// ---------------------------------------------------------------------------

// AddWidgetByType creates a widget of the given type on the active tab and
// appends it to the widget list. Unknown types get the generic "Widget"
// title.
func (s *WorkspaceService) AddWidgetByType(widgetType domain.WidgetType) workspace.Widget {
	s.mu.Lock()
	w := workspace.NewWidget(widgetType, s.activeTabID)
	s.widgets = append(s.widgets, w)
	widgets := s.widgetsSnapshot()
	s.mu.Unlock()

	s.bus.Publish(bus.TopicWidgetsChanged, widgets)
	s.bus.Publish(bus.TopicAddWidget, w)
	return w
}

// RemoveWidget removes a widget by id; no-op if absent. Removing the
// selected widget also deselects it.
func (s *WorkspaceService) RemoveWidget(id domain.EntityID) {
	s.mu.Lock()
	idx := -1
	for i, w := range s.widgets {
		if w.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.widgets = append(s.widgets[:idx:idx], s.widgets[idx+1:]...)
	deselected := s.selectedID != nil && *s.selectedID == id
	if deselected {
		s.selectedID = nil
	}
	widgets := s.widgetsSnapshot()
	s.mu.Unlock()

	s.bus.Publish(bus.TopicWidgetsChanged, widgets)
	s.bus.Publish(bus.TopicRemoveWidget, id)
	if deselected {
		s.bus.Publish(bus.TopicSelectWidget, (*domain.EntityID)(nil))
	}
}

// RemoveWidgetByType removes every widget of the given type across all tabs.
// No-op if none exist.
func (s *WorkspaceService) RemoveWidgetByType(widgetType domain.WidgetType) {
	s.mu.Lock()
	kept := s.widgets[:0:0]
	deselected := false
	for _, w := range s.widgets {
		if w.Type == widgetType {
			if s.selectedID != nil && *s.selectedID == w.ID {
				s.selectedID = nil
				deselected = true
			}
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) == len(s.widgets) {
		s.mu.Unlock()
		return
	}
	s.widgets = kept
	widgets := s.widgetsSnapshot()
	s.mu.Unlock()

	s.bus.Publish(bus.TopicWidgetsChanged, widgets)
	s.bus.Publish(bus.TopicRemoveWidgetByType, widgetType)
	if deselected {
		s.bus.Publish(bus.TopicSelectWidget, (*domain.EntityID)(nil))
	}
}

// AddColumnToWidget appends a column id to the widget's column list.
// Duplicates are allowed and preserved in order; no-op if the widget is
// absent.
func (s *WorkspaceService) AddColumnToWidget(id domain.EntityID, columnID string) {
	s.mu.Lock()
	found := false
	for i := range s.widgets {
		if s.widgets[i].ID == id {
			s.widgets[i].AddColumn(columnID)
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return
	}
	widgets := s.widgetsSnapshot()
	s.mu.Unlock()

	s.bus.Publish(bus.TopicWidgetsChanged, widgets)
	s.bus.Publish(bus.TopicAddColumnToWidget, bus.ColumnAdded{
		WidgetID: id.String(),
		ColumnID: columnID,
	})
}

// ReorderWidgets moves the element at from to position to. Indices refer to
// the flat, global widget list; callers working from the active-tab-filtered
// view must re-derive global indices first. Out-of-range indices are a
// validation no-op.
func (s *WorkspaceService) ReorderWidgets(from, to int) {
	s.mu.Lock()
	if from < 0 || from >= len(s.widgets) || to < 0 || to >= len(s.widgets) || from == to {
		s.mu.Unlock()
		return
	}
	w := s.widgets[from]
	rest := append(s.widgets[:from:from], s.widgets[from+1:]...)
	s.widgets = append(rest[:to:to], append([]workspace.Widget{w}, rest[to:]...)...)
	widgets := s.widgetsSnapshot()
	s.mu.Unlock()

	s.bus.Publish(bus.TopicWidgetsChanged, widgets)
	s.bus.Publish(bus.TopicReorderWidgets, bus.WidgetsReordered{From: from, To: to})
}

// ---------------------------------------------------------------------------
// Tab operations
// ---------------------------------------------------------------------------

// AddWorkspaceTab creates a tab named "Tab {n}" (n = 1 + existing tab count),
// marks it active and deactivates all others.
func (s *WorkspaceService) AddWorkspaceTab() workspace.Tab {
	s.mu.Lock()
	tab := workspace.NewTab(fmt.Sprintf("Tab %d", len(s.tabs)+1), true)
	for i := range s.tabs {
		s.tabs[i].IsActive = false
	}
	s.tabs = append(s.tabs, tab)
	s.activeTabID = tab.ID
	tabs := s.tabsSnapshot()
	s.mu.Unlock()

	s.bus.Publish(bus.TopicTabsChanged, tabs)
	s.bus.Publish(bus.TopicAddTab, tab)
	s.bus.Publish(bus.TopicActiveTabChanged, tab.ID)
	return tab
}

// SetActiveTab activates the given tab. No-op if it is already active or
// unknown.
func (s *WorkspaceService) SetActiveTab(id domain.EntityID) {
	s.mu.Lock()
	if id == s.activeTabID || !tabHasID(s.tabs, id) {
		s.mu.Unlock()
		return
	}
	for i := range s.tabs {
		s.tabs[i].IsActive = s.tabs[i].ID == id
	}
	s.activeTabID = id
	tabs := s.tabsSnapshot()
	s.mu.Unlock()

	s.bus.Publish(bus.TopicTabsChanged, tabs)
	s.bus.Publish(bus.TopicActiveTabChanged, id)
}

// RemoveWorkspaceTab removes a tab and cascades to delete every widget on it.
// Removing the last remaining tab is refused with ErrLastTab. If the removed
// tab was active, the tab now occupying the same position becomes active,
// falling back to the new last tab.
func (s *WorkspaceService) RemoveWorkspaceTab(id domain.EntityID) error {
	s.mu.Lock()
	if len(s.tabs) <= 1 {
		s.mu.Unlock()
		return workspace.ErrLastTab
	}
	idx := -1
	for i, t := range s.tabs {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}

	wasActive := s.tabs[idx].IsActive
	s.tabs = append(s.tabs[:idx:idx], s.tabs[idx+1:]...)

	kept := s.widgets[:0:0]
	for _, w := range s.widgets {
		if w.TabID == id {
			if s.selectedID != nil && *s.selectedID == w.ID {
				s.selectedID = nil
			}
			continue
		}
		kept = append(kept, w)
	}
	s.widgets = kept

	if wasActive {
		newIdx := idx
		if newIdx > len(s.tabs)-1 {
			newIdx = len(s.tabs) - 1
		}
		s.activeTabID = s.tabs[newIdx].ID
	}
	for i := range s.tabs {
		s.tabs[i].IsActive = s.tabs[i].ID == s.activeTabID
	}

	tabs := s.tabsSnapshot()
	widgets := s.widgetsSnapshot()
	activeID := s.activeTabID
	s.mu.Unlock()

	s.bus.Publish(bus.TopicTabsChanged, tabs)
	s.bus.Publish(bus.TopicWidgetsChanged, widgets)
	s.bus.Publish(bus.TopicActiveTabChanged, activeID)
	s.bus.Publish(bus.TopicRemoveTab, id)
	return nil
}

// RenameWorkspaceTab updates a tab's name. Empty or whitespace-only names and
// unknown ids are a validation no-op.
func (s *WorkspaceService) RenameWorkspaceTab(id domain.EntityID, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	s.mu.Lock()
	found := false
	for i := range s.tabs {
		if s.tabs[i].ID == id {
			s.tabs[i].Name = name
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return
	}
	tabs := s.tabsSnapshot()
	s.mu.Unlock()

	s.bus.Publish(bus.TopicTabsChanged, tabs)
	s.bus.Publish(bus.TopicRenameTab, bus.TabRenamed{TabID: id.String(), Name: name})
}

// ---------------------------------------------------------------------------
// Selection and conversation
// ---------------------------------------------------------------------------

// SelectWidget sets the selected-widget pointer (nil deselects). Selecting a
// widget also surfaces a system message in the assistant transcript
// referencing the widget's title. Unknown ids are a validation no-op.
func (s *WorkspaceService) SelectWidget(id *domain.EntityID) {
	if id == nil {
		s.mu.Lock()
		s.selectedID = nil
		s.mu.Unlock()
		s.bus.Publish(bus.TopicSelectWidget, (*domain.EntityID)(nil))
		return
	}

	s.mu.Lock()
	var title string
	found := false
	for _, w := range s.widgets {
		if w.ID == *id {
			title = w.Title
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return
	}
	selected := *id
	s.selectedID = &selected
	msg := workspace.NewMessage(workspace.MessageSystem,
		fmt.Sprintf("Selected the %s widget. Ask me anything about it or use the actions below.", title))
	s.messages = append(s.messages, msg)
	messages := s.messagesSnapshot()
	s.mu.Unlock()

	s.bus.Publish(bus.TopicSelectWidget, &selected)
	s.bus.Publish(bus.TopicNewMessage, msg)
	s.bus.Publish(bus.TopicMessagesChanged, messages)
}

// SendMessage appends a user message and schedules the assistant reply after
// the configured latency. Empty or whitespace-only content is a validation
// no-op: no message, no processing change. Overlapping sends are correlated,
// not serialized — each send produces exactly one reply, appended in
// completion order, and the published processing flag stays true until every
// in-flight request has resolved.
func (s *WorkspaceService) SendMessage(content string) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}

	userMsg := workspace.NewMessage(workspace.MessageUser, content)

	s.mu.Lock()
	s.messages = append(s.messages, userMsg)
	s.inflight++
	first := s.inflight == 1
	messages := s.messagesSnapshot()
	s.mu.Unlock()

	s.bus.Publish(bus.TopicSendMessage, content)
	s.bus.Publish(bus.TopicNewMessage, userMsg)
	s.bus.Publish(bus.TopicMessagesChanged, messages)
	if first {
		s.bus.Publish(bus.TopicProcessingStateChanged, true)
	}

	time.AfterFunc(s.delay, func() {
		s.completeSend(content)
	})
}

// selectedSnapshotLocked builds the responder's view of the selection.
// Caller holds s.mu.
func (s *WorkspaceService) selectedSnapshotLocked() *providers.SelectedWidget {
	if s.selectedID == nil {
		return nil
	}
	for _, w := range s.widgets {
		if w.ID == *s.selectedID {
			return &providers.SelectedWidget{ID: w.ID, Type: w.Type, Title: w.Title}
		}
	}
	return nil
}

// completeSend produces the assistant reply. The selection is read here, not
// at submit time, so a deselect or widget removal during the simulated
// latency yields the no-selection reply.
func (s *WorkspaceService) completeSend(content string) {
	s.mu.Lock()
	selected := s.selectedSnapshotLocked()
	s.mu.Unlock()

	reply, err := s.responder.Respond(context.Background(), content, selected)
	if err != nil {
		logger.ErrorCF("workspace", "Responder failed", map[string]interface{}{
			"error": err.Error(),
		})
		reply = providers.Reply{Content: "Sorry, I couldn't process that request."}
	}

	aiMsg := workspace.NewMessage(workspace.MessageAI, reply.Content, reply.Actions...)

	s.mu.Lock()
	s.messages = append(s.messages, aiMsg)
	s.inflight--
	done := s.inflight == 0
	messages := s.messagesSnapshot()
	s.mu.Unlock()

	s.bus.Publish(bus.TopicNewMessage, aiMsg)
	if done {
		s.bus.Publish(bus.TopicProcessingStateChanged, false)
	}
	s.bus.Publish(bus.TopicMessagesChanged, messages)
}

// InvokeMessageAction executes the behavior bound to an action kind on a
// transcript message. Actions are pure data; this registry is the single
// place kinds map to behavior, so actions keep working after a reload.
func (s *WorkspaceService) InvokeMessageAction(messageID domain.EntityID, kind workspace.ActionKind) error {
	s.mu.Lock()
	var action *workspace.MessageAction
	for _, m := range s.messages {
		if m.ID != messageID {
			continue
		}
		for i := range m.Actions {
			if m.Actions[i].Kind == kind {
				action = &m.Actions[i]
			}
		}
		break
	}
	selectedID := s.selectedID
	s.mu.Unlock()

	if action == nil {
		return workspace.ErrActionNotFound
	}

	switch kind {
	case workspace.ActionAddRiskWidget:
		s.AddWidgetByType(domain.WidgetRiskExposure)
	case workspace.ActionCustomizeWidget:
		if selectedID == nil {
			return workspace.ErrNoSelection
		}
		s.appendSystemNote("Pick a column from the data catalog to add it to the selected widget.")
	case workspace.ActionDeselectWidget:
		s.SelectWidget(nil)
	default:
		return fmt.Errorf("unknown action kind %q", kind)
	}
	return nil
}

func (s *WorkspaceService) appendSystemNote(content string) {
	msg := workspace.NewMessage(workspace.MessageSystem, content)
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	messages := s.messagesSnapshot()
	s.mu.Unlock()

	s.bus.Publish(bus.TopicNewMessage, msg)
	s.bus.Publish(bus.TopicMessagesChanged, messages)
}
