package bus

// Topic taxonomy. Every topic's payload shape is fixed for the lifetime of a
// deployment; the comment next to each constant names the payload type.
//
// Collection topics (*-changed) always carry the full updated collection;
// the event-specific topic that follows carries the fine-grained change.

const (
	// Workspace context — widgets
	TopicWidgetsChanged     Topic = "workspace.widgets-changed"      // []workspace.Widget
	TopicAddWidget          Topic = "workspace.add-widget"           // workspace.Widget
	TopicRemoveWidget       Topic = "workspace.remove-widget"        // domain.EntityID
	TopicRemoveWidgetByType Topic = "workspace.remove-widget-by-type" // domain.WidgetType
	TopicAddColumnToWidget  Topic = "workspace.add-column-to-widget" // ColumnAdded
	TopicReorderWidgets     Topic = "workspace.reorder-widgets"      // WidgetsReordered
	TopicSelectWidget       Topic = "workspace.select-widget"        // *domain.EntityID (nil = deselect)

	// Workspace context — tabs
	TopicTabsChanged      Topic = "workspace.tabs-changed"       // []workspace.Tab
	TopicAddTab           Topic = "workspace.add-tab"            // workspace.Tab
	TopicRemoveTab        Topic = "workspace.remove-tab"         // domain.EntityID
	TopicRenameTab        Topic = "workspace.rename-tab"         // TabRenamed
	TopicActiveTabChanged Topic = "workspace.active-tab-changed" // domain.EntityID

	// Chat context
	TopicSendMessage            Topic = "chat.send-message"             // string
	TopicNewMessage             Topic = "chat.new-message"              // workspace.Message
	TopicProcessingStateChanged Topic = "chat.processing-state-changed" // bool
	TopicMessagesChanged        Topic = "chat.messages-changed"         // []workspace.Message

	// Theme context
	TopicThemeChanged Topic = "theme.theme-changed" // domain.Theme

	// Persistence context
	TopicSaveState  Topic = "persistence.save-state"  // string (slot name)
	TopicLoadState  Topic = "persistence.load-state"  // nil
	TopicResetState Topic = "persistence.reset-state" // nil

	// Agent context — raw simulated event records for detail widgets
	TopicAgentDataQuality         Topic = "agent.data-quality-alert"  // notify.AgentInsight
	TopicAgentRemediation         Topic = "agent.remediation-action"  // notify.RemediationAction
	TopicAgentLearning            Topic = "agent.learning-update"     // notify.LearningEvent
	TopicAgentNotificationClicked Topic = "agent.notification-clicked" // notify.Notification

	// Notification context
	TopicNewNotification     Topic = "notification.new-notification"     // notify.Notification
	TopicNotificationClicked Topic = "notification.notification-clicked" // domain.EntityID
	TopicPermissionChanged   Topic = "notification.permission-changed"   // domain.PermissionState
)

// ColumnAdded is the payload for TopicAddColumnToWidget.
type ColumnAdded struct {
	WidgetID string `json:"widgetId"`
	ColumnID string `json:"columnId"`
}

// WidgetsReordered is the payload for TopicReorderWidgets. Indices refer to
// the flat, global widget list; callers working from a tab-filtered view must
// re-derive global indices before invoking the reorder operation.
type WidgetsReordered struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// TabRenamed is the payload for TopicRenameTab.
type TabRenamed struct {
	TabID string `json:"tabId"`
	Name  string `json:"name"`
}
