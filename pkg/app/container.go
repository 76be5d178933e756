package app

import (
	"math/rand"
	"time"

	"github.com/quantora/riskdesk/pkg/bus"
	"github.com/quantora/riskdesk/pkg/infrastructure/persistence"
	"github.com/quantora/riskdesk/pkg/providers"
)

// Container is the composition root. All services are constructed once here
// and passed by reference; there is no module-level mutable state anywhere in
// the system, so tests can build fully isolated containers.
type Container struct {
	Bus           *bus.Bus
	Store         persistence.Store
	Bridge        *persistence.Bridge
	Workspace     *WorkspaceService
	Notifications *NotificationService
	Theme         *ThemeService
}

// NewContainer wires a fully functional application: bus, persistence
// bridge, and the workspace / notification / theme services, hydrated from
// the store. alerter, hint and rng may be nil for defaults.
func NewContainer(
	store persistence.Store,
	responder providers.Responder,
	alerter Alerter,
	hint SystemHint,
	responseDelay time.Duration,
	rng *rand.Rand,
) *Container {
	b := bus.New()

	c := &Container{
		Bus:   b,
		Store: store,
	}

	// The bridge subscribes first so the write-through mirror runs before any
	// later subscriber on the same topics. The reset hook reinitializes every
	// service holding session state: the workspace rehydrates from the cleared
	// store and the notification list empties, as a full client reload would.
	c.Bridge = persistence.NewBridge(b, store, func() {
		c.Workspace.Rehydrate()
		c.Notifications.ClearAllNotifications()
	})
	c.Bridge.Attach()

	c.Workspace = NewWorkspaceService(b, store, responder, responseDelay)
	c.Notifications = NewNotificationService(b, c.Workspace, alerter, rng)
	c.Theme = NewThemeService(b, store, hint)
	c.Theme.Initialize()

	return c
}

// ResetSession clears the persisted session state (theme excluded) and
// reinitializes the workspace from defaults. It is triggered through the bus
// so any subscriber can observe the reset.
func (c *Container) ResetSession() {
	c.Bus.Publish(bus.TopicResetState, nil)
}

// Close tears the application down: simulation timers, subscriptions, bus,
// store.
func (c *Container) Close() {
	c.Notifications.Close()
	c.Bridge.Detach()
	c.Bus.Close()
	_ = c.Store.Close()
}
