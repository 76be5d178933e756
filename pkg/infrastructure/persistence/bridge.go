package persistence

import (
	"github.com/quantora/riskdesk/pkg/bus"
	"github.com/quantora/riskdesk/pkg/domain"
	"github.com/quantora/riskdesk/pkg/domain/workspace"
	"github.com/quantora/riskdesk/pkg/logger"
)

// Bridge mirrors every relevant bus publish into the snapshot store
// (write-through, no batching). Storage failures are logged and swallowed —
// the in-memory state and the publish that carried it are never affected.
type Bridge struct {
	bus     *bus.Bus
	store   Store
	subs    []*bus.Subscription
	onReset func()
}

// NewBridge creates a detached bridge. onReset is invoked after a reset-state
// publish has cleared the session slots; the serve entrypoint uses it to
// re-hydrate services from defaults. It may be nil.
func NewBridge(b *bus.Bus, store Store, onReset func()) *Bridge {
	return &Bridge{bus: b, store: store, onReset: onReset}
}

// Attach subscribes the bridge to the persisted topics. Idempotent-unsafe:
// call once; Detach before re-attaching.
func (br *Bridge) Attach() {
	br.subs = append(br.subs,
		br.bus.Subscribe(bus.TopicWidgetsChanged, br.saveWidgets),
		br.bus.Subscribe(bus.TopicTabsChanged, br.saveTabs),
		br.bus.Subscribe(bus.TopicActiveTabChanged, br.saveActiveTab),
		br.bus.Subscribe(bus.TopicMessagesChanged, br.saveMessages),
		br.bus.Subscribe(bus.TopicThemeChanged, br.saveTheme),
		br.bus.Subscribe(bus.TopicResetState, br.reset),
	)
}

// Detach removes all bridge subscriptions.
func (br *Bridge) Detach() {
	for _, sub := range br.subs {
		sub.Unsubscribe()
	}
	br.subs = nil
}

// done logs a write-through failure; successful writes announce the slot on
// the save-state topic.
func (br *Bridge) done(slot string, err error) {
	if err != nil {
		logger.ErrorCF("persistence", "Write-through failed", map[string]interface{}{
			"slot": slot, "error": err.Error(),
		})
		return
	}
	br.bus.Publish(bus.TopicSaveState, slot)
}

func (br *Bridge) saveWidgets(payload interface{}) {
	widgets, ok := payload.([]workspace.Widget)
	if !ok {
		return
	}
	br.done(SlotWidgets, br.store.SaveWidgets(widgets))
}

func (br *Bridge) saveTabs(payload interface{}) {
	tabs, ok := payload.([]workspace.Tab)
	if !ok {
		return
	}
	br.done(SlotTabs, br.store.SaveTabs(tabs))
}

func (br *Bridge) saveActiveTab(payload interface{}) {
	id, ok := payload.(domain.EntityID)
	if !ok {
		return
	}
	br.done(SlotActiveTab, br.store.SaveActiveTab(id))
}

func (br *Bridge) saveMessages(payload interface{}) {
	messages, ok := payload.([]workspace.Message)
	if !ok {
		return
	}
	br.done(SlotMessages, br.store.SaveMessages(messages))
}

func (br *Bridge) saveTheme(payload interface{}) {
	theme, ok := payload.(domain.Theme)
	if !ok {
		return
	}
	br.done(SlotTheme, br.store.SaveTheme(theme))
}

// reset clears the session slots (theme survives) and hands control to the
// onReset hook so the process can reinitialize from defaults.
func (br *Bridge) reset(interface{}) {
	if err := br.store.Clear(); err != nil {
		logger.ErrorCF("persistence", "Reset clear failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	logger.InfoCF("persistence", "Session state cleared", nil)
	if br.onReset != nil {
		br.onReset()
	}
}
