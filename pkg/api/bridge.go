package api

import (
	"time"

	"github.com/quantora/riskdesk/pkg/bus"
)

// forwardedTopics are the bus topics mirrored to WebSocket clients. The view
// layer renders exclusively from these.
var forwardedTopics = []bus.Topic{
	bus.TopicWidgetsChanged,
	bus.TopicAddWidget,
	bus.TopicRemoveWidget,
	bus.TopicRemoveWidgetByType,
	bus.TopicAddColumnToWidget,
	bus.TopicReorderWidgets,
	bus.TopicSelectWidget,
	bus.TopicTabsChanged,
	bus.TopicAddTab,
	bus.TopicRemoveTab,
	bus.TopicRenameTab,
	bus.TopicActiveTabChanged,
	bus.TopicNewMessage,
	bus.TopicProcessingStateChanged,
	bus.TopicMessagesChanged,
	bus.TopicThemeChanged,
	bus.TopicAgentDataQuality,
	bus.TopicAgentRemediation,
	bus.TopicAgentLearning,
	bus.TopicAgentNotificationClicked,
	bus.TopicNewNotification,
	bus.TopicPermissionChanged,
}

// EventBridge forwards bus publishes to the WebSocket hub as WSEvent frames.
type EventBridge struct {
	bus  *bus.Bus
	hub  *WSHub
	subs []*bus.Subscription
}

// NewEventBridge creates a detached bridge.
func NewEventBridge(b *bus.Bus, hub *WSHub) *EventBridge {
	return &EventBridge{bus: b, hub: hub}
}

// Attach subscribes the bridge to every forwarded topic.
func (eb *EventBridge) Attach() {
	for _, topic := range forwardedTopics {
		t := topic
		eb.subs = append(eb.subs, eb.bus.Subscribe(t, func(payload interface{}) {
			eb.hub.Broadcast(WSEvent{
				Type:      t.String(),
				Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
				Data:      payload,
			})
		}))
	}
}

// Detach removes all bridge subscriptions.
func (eb *EventBridge) Detach() {
	for _, sub := range eb.subs {
		sub.Unsubscribe()
	}
	eb.subs = nil
}
