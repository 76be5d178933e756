// Package notify defines the notification bounded context: the notification
// center entries and the simulated upstream agent event records they carry.
package notify

import (
	"github.com/quantora/riskdesk/pkg/domain"
)

// ---------------------------------------------------------------------------
// Notification
// ---------------------------------------------------------------------------

// NotificationType is the closed set of notification categories.
type NotificationType string

const (
	TypeDataQualityAlert  NotificationType = "data-quality-alert"
	TypeRemediationAction NotificationType = "remediation-action"
	TypeLearningUpdate    NotificationType = "learning-update"
)

// Valid returns true if the notification type is recognized.
func (nt NotificationType) Valid() bool {
	switch nt {
	case TypeDataQualityAlert, TypeRemediationAction, TypeLearningUpdate:
		return true
	}
	return false
}

// Notification is one entry in the notification center, newest first.
// Only the Read flag is ever mutated after creation.
type Notification struct {
	ID        domain.EntityID  `json:"id"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Timestamp domain.Timestamp `json:"timestamp"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
	Data      interface{}      `json:"data,omitempty"`
}

// NewNotification creates an unread notification.
func NewNotification(title, body string, notifType NotificationType, data interface{}) Notification {
	return Notification{
		ID:        domain.NewID(),
		Title:     title,
		Body:      body,
		Timestamp: domain.Now(),
		Type:      notifType,
		Read:      false,
		Data:      data,
	}
}

// ---------------------------------------------------------------------------
// Agent event records — read-only value records, never mutated
// ---------------------------------------------------------------------------

// Severity grades a data-quality insight.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// AgentInsight describes a data-quality finding from the upstream agent.
type AgentInsight struct {
	ID              domain.EntityID  `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Severity        Severity         `json:"severity"`
	Source          string           `json:"source"`
	DetectedAt      domain.Timestamp `json:"detectedAt"`
	AffectedRecords int              `json:"affectedRecords"`
}

// RemediationStatus tracks a remediation action's progress.
type RemediationStatus string

const (
	RemediationCompleted  RemediationStatus = "completed"
	RemediationInProgress RemediationStatus = "in-progress"
	RemediationPending    RemediationStatus = "pending"
)

// RemediationAction describes a fix the upstream agent applied or queued.
type RemediationAction struct {
	ID          domain.EntityID   `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      RemediationStatus `json:"status"`
	Automated   bool              `json:"automated"`
	ExecutedAt  domain.Timestamp  `json:"executedAt"`
}

// LearningKind classifies a learning event.
type LearningKind string

const (
	LearningPatternDetected   LearningKind = "pattern-detected"
	LearningThresholdAdjusted LearningKind = "threshold-adjusted"
	LearningModelImproved     LearningKind = "model-improved"
)

// LearningEvent describes an upstream model-learning milestone.
type LearningEvent struct {
	ID          domain.EntityID  `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Kind        LearningKind     `json:"kind"`
	Confidence  float64          `json:"confidence"`
	LearnedAt   domain.Timestamp `json:"learnedAt"`
}
