package app

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/adhocore/gronx"

	"github.com/quantora/riskdesk/pkg/bus"
	"github.com/quantora/riskdesk/pkg/domain"
	"github.com/quantora/riskdesk/pkg/domain/notify"
	"github.com/quantora/riskdesk/pkg/logger"
)

// Probability bands for the simulated agent.
const (
	bandHigh = 0.7
	bandMid  = 0.4

	dispatchInsight     = 0.4
	dispatchRemediation = 0.7
)

// NotificationService owns the notification list (newest first) and
// synthesizes the three categories of simulated upstream agent events. It
// reaches into the workspace only through the public AddWidgetByType
// operation, triggered by notification clicks.
type NotificationService struct {
	bus       *bus.Bus
	workspace *WorkspaceService
	alerter   Alerter

	rngMu sync.Mutex
	rng   *rand.Rand

	mu            sync.Mutex
	notifications []notify.Notification
	stopSim       chan struct{}

	clickSub *bus.Subscription
}

// NewNotificationService creates the service and subscribes it to the
// notification-clicked topic. rng may be nil; a time-seeded source is used.
func NewNotificationService(b *bus.Bus, ws *WorkspaceService, alerter Alerter, rng *rand.Rand) *NotificationService {
	if alerter == nil {
		alerter = LogAlerter{}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &NotificationService{
		bus:       b,
		workspace: ws,
		alerter:   alerter,
		rng:       rng,
	}
	s.clickSub = b.Subscribe(bus.TopicNotificationClicked, s.handleClicked)
	return s
}

// Close stops the simulation and detaches the click subscription.
func (s *NotificationService) Close() {
	s.StopSimulation()
	s.clickSub.Unsubscribe()
}

// Notifications returns the list, newest first.
func (s *NotificationService) Notifications() []notify.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notify.Notification(nil), s.notifications...)
}

// AddNotification creates and prepends a notification, publishes it, and
// attempts platform delivery. Platform absence or failure degrades to the
// in-app toast path (consumers of new-notification render it) with a log
// trail; the returned record is unaffected.
func (s *NotificationService) AddNotification(title, body string, notifType notify.NotificationType, data interface{}) notify.Notification {
	n := notify.NewNotification(title, body, notifType, data)

	s.mu.Lock()
	s.notifications = append([]notify.Notification{n}, s.notifications...)
	s.mu.Unlock()

	s.bus.Publish(bus.TopicNewNotification, n)

	if !s.alerter.Supported() {
		logger.DebugCF("notify", "Platform notifications unsupported, toast only", nil)
		return n
	}
	if err := s.alerter.Show(n); err != nil {
		logger.WarnCF("notify", "Platform notification failed, toast only", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return n
}

// RequestNotificationPermission asks the platform for permission and
// publishes the resulting state. Fails soft with "denied" when the platform
// has no notification capability.
func (s *NotificationService) RequestNotificationPermission() domain.PermissionState {
	state := domain.PermissionDenied
	if s.alerter.Supported() {
		state = s.alerter.RequestPermission()
	}
	s.bus.Publish(bus.TopicPermissionChanged, state)
	return state
}

// MarkNotificationAsRead flips the read flag; no-op if absent.
func (s *NotificationService) MarkNotificationAsRead(id domain.EntityID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
			return
		}
	}
}

// ClearAllNotifications resets the list. No per-item publishes; consumers
// observe the empty list on their next read.
func (s *NotificationService) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = nil
}

// ---------------------------------------------------------------------------
// Simulated agent events
// ---------------------------------------------------------------------------

func (s *NotificationService) roll() float64 {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Float64()
}

func (s *NotificationService) intn(n int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Intn(n)
}

var insightSources = []string{"trade-feed", "position-ledger", "market-data", "reference-data"}

var insightFindings = []string{
	"Stale prices detected on FX forward curve",
	"Duplicate trade identifiers in overnight batch",
	"Counterparty legal entity mapping gap",
	"Missing collateral haircuts for repo book",
	"Settlement date outliers in equity swaps feed",
}

// SimulateDataQualityInsight builds a randomized data-quality finding,
// publishes the raw record for detail widgets, and raises a notification.
func (s *NotificationService) SimulateDataQualityInsight() notify.AgentInsight {
	severity := notify.SeverityLow
	switch r := s.roll(); {
	case r > bandHigh:
		severity = notify.SeverityHigh
	case r > bandMid:
		severity = notify.SeverityMedium
	}

	finding := insightFindings[s.intn(len(insightFindings))]
	insight := notify.AgentInsight{
		ID:              domain.NewID(),
		Title:           finding,
		Description:     fmt.Sprintf("The data-quality agent flagged a %s-severity issue during continuous validation.", severity),
		Severity:        severity,
		Source:          insightSources[s.intn(len(insightSources))],
		DetectedAt:      domain.Now(),
		AffectedRecords: 10 + s.intn(4990),
	}

	s.bus.Publish(bus.TopicAgentDataQuality, insight)
	s.AddNotification("Data Quality Alert", insight.Title, notify.TypeDataQualityAlert, insight)
	return insight
}

var remediationTitles = []string{
	"Re-priced stale FX forward curve",
	"Quarantined duplicate trade records",
	"Backfilled counterparty entity mapping",
	"Applied default collateral haircuts",
	"Rolled settlement dates to next business day",
}

// SimulateRemediationAction builds a randomized remediation record,
// publishes it, and raises a notification.
func (s *NotificationService) SimulateRemediationAction() notify.RemediationAction {
	status := notify.RemediationPending
	switch r := s.roll(); {
	case r > bandHigh:
		status = notify.RemediationCompleted
	case r > bandMid:
		status = notify.RemediationInProgress
	}

	action := notify.RemediationAction{
		ID:          domain.NewID(),
		Title:       remediationTitles[s.intn(len(remediationTitles))],
		Description: fmt.Sprintf("Remediation is %s. Details are available in the remediation history.", status),
		Status:      status,
		Automated:   s.roll() > 0.5,
		ExecutedAt:  domain.Now(),
	}

	s.bus.Publish(bus.TopicAgentRemediation, action)
	s.AddNotification("Remediation Action", action.Title, notify.TypeRemediationAction, action)
	return action
}

var learningTitles = []string{
	"Recurring quality pattern in month-end loads",
	"Outlier threshold tuned for volatility feed",
	"Anomaly model retrained on remediation outcomes",
	"New validation rule learned for rating changes",
}

// SimulateLearningEvent builds a randomized learning record, publishes it,
// and raises a notification.
func (s *NotificationService) SimulateLearningEvent() notify.LearningEvent {
	kind := notify.LearningPatternDetected
	switch r := s.roll(); {
	case r > bandHigh:
		kind = notify.LearningModelImproved
	case r > bandMid:
		kind = notify.LearningThresholdAdjusted
	}

	event := notify.LearningEvent{
		ID:          domain.NewID(),
		Title:       learningTitles[s.intn(len(learningTitles))],
		Description: fmt.Sprintf("The learning agent recorded a %s event.", kind),
		Kind:        kind,
		Confidence:  0.6 + s.roll()*0.4,
		LearnedAt:   domain.Now(),
	}

	s.bus.Publish(bus.TopicAgentLearning, event)
	s.AddNotification("Learning Update", event.Title, notify.TypeLearningUpdate, event)
	return event
}

// dispatchOne rolls once and triggers exactly one simulator: roughly 40%
// data-quality, 30% remediation, 30% learning.
func (s *NotificationService) dispatchOne() {
	switch r := s.roll(); {
	case r < dispatchInsight:
		s.SimulateDataQualityInsight()
	case r < dispatchRemediation:
		s.SimulateRemediationAction()
	default:
		s.SimulateLearningEvent()
	}
}

// StartSimulation starts the repeating agent-event timer. Starting again
// replaces the previous timer; timers never accumulate.
func (s *NotificationService) StartSimulation(interval time.Duration) {
	s.StopSimulation()

	stop := make(chan struct{})
	s.mu.Lock()
	s.stopSim = stop
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.dispatchOne()
			case <-stop:
				return
			}
		}
	}()

	logger.InfoCF("notify", "Agent simulation started", map[string]interface{}{
		"interval": interval.String(),
	})
}

// StartSimulationCron schedules the simulation on a cron expression (minute
// granularity) instead of a fixed interval. It occupies the same single
// timer slot as StartSimulation.
func (s *NotificationService) StartSimulationCron(expr string) error {
	g := gronx.New()
	if !g.IsValid(expr) {
		return fmt.Errorf("invalid cron expression %q", expr)
	}

	s.StopSimulation()

	stop := make(chan struct{})
	s.mu.Lock()
	s.stopSim = stop
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				due, err := g.IsDue(expr, time.Now())
				if err != nil {
					logger.ErrorCF("notify", "Cron evaluation failed", map[string]interface{}{
						"expr": expr, "error": err.Error(),
					})
					continue
				}
				if due {
					s.dispatchOne()
				}
			case <-stop:
				return
			}
		}
	}()

	logger.InfoCF("notify", "Agent simulation scheduled", map[string]interface{}{
		"cron": expr,
	})
	return nil
}

// StopSimulation halts the active timer, if any. Idempotent.
func (s *NotificationService) StopSimulation() {
	s.mu.Lock()
	stop := s.stopSim
	s.stopSim = nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
	}
}

// ---------------------------------------------------------------------------
// Notification click handling
// ---------------------------------------------------------------------------

// widgetForCategory maps a notification category to the widget type a click
// opens.
var widgetForCategory = map[notify.NotificationType]domain.WidgetType{
	notify.TypeDataQualityAlert:  domain.WidgetAgentInsights,
	notify.TypeRemediationAction: domain.WidgetRemediationHistory,
	notify.TypeLearningUpdate:    domain.WidgetLearningProgress,
}

func (s *NotificationService) handleClicked(payload interface{}) {
	id, ok := payload.(domain.EntityID)
	if !ok {
		return
	}

	s.mu.Lock()
	var clicked *notify.Notification
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
			n := s.notifications[i]
			clicked = &n
			break
		}
	}
	s.mu.Unlock()

	if clicked == nil {
		return
	}

	if widgetType, ok := widgetForCategory[clicked.Type]; ok && s.workspace != nil {
		s.workspace.AddWidgetByType(widgetType)
	}
	s.bus.Publish(bus.TopicAgentNotificationClicked, *clicked)
}
