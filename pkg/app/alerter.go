package app

import (
	"github.com/quantora/riskdesk/pkg/domain"
	"github.com/quantora/riskdesk/pkg/domain/notify"
	"github.com/quantora/riskdesk/pkg/logger"
)

// Alerter abstracts the platform notification capability. When the platform
// has none (headless runs, denied permission), the service degrades to the
// in-app toast path; per-notification delivery is always best-effort.
type Alerter interface {
	// Supported reports whether the platform can show notifications at all.
	Supported() bool
	// RequestPermission asks the platform for notification permission.
	RequestPermission() domain.PermissionState
	// Show displays one notification.
	Show(n notify.Notification) error
}

// LogAlerter is the default headless alerter: permission is always granted
// and notifications are written to the log.
type LogAlerter struct{}

func (LogAlerter) Supported() bool { return true }

func (LogAlerter) RequestPermission() domain.PermissionState { return domain.PermissionGranted }

func (LogAlerter) Show(n notify.Notification) error {
	logger.InfoCF("alerter", "Notification", map[string]interface{}{
		"title": n.Title,
		"body":  n.Body,
		"type":  string(n.Type),
	})
	return nil
}

// NoopAlerter models a platform without notification capability; permission
// requests fail soft with "denied".
type NoopAlerter struct{}

func (NoopAlerter) Supported() bool { return false }

func (NoopAlerter) RequestPermission() domain.PermissionState { return domain.PermissionDenied }

func (NoopAlerter) Show(notify.Notification) error { return nil }
