package app

import (
	"sync"

	"github.com/quantora/riskdesk/pkg/bus"
	"github.com/quantora/riskdesk/pkg/domain"
	"github.com/quantora/riskdesk/pkg/infrastructure/persistence"
	"github.com/quantora/riskdesk/pkg/logger"
)

// SystemHint probes the platform's dark/light preference. The headless
// default reports dark.
type SystemHint interface {
	PreferredTheme() domain.Theme
}

// DarkHint is the default SystemHint.
type DarkHint struct{}

func (DarkHint) PreferredTheme() domain.Theme { return domain.ThemeDark }

// ThemeService holds the single current theme value, persists it and
// broadcasts changes. The theme is a standing user preference: it survives a
// session-state reset.
type ThemeService struct {
	bus   *bus.Bus
	store persistence.Store
	hint  SystemHint

	mu          sync.Mutex
	current     domain.Theme
	initialized bool
}

// NewThemeService creates the service. hint may be nil; dark is assumed.
func NewThemeService(b *bus.Bus, store persistence.Store, hint SystemHint) *ThemeService {
	if hint == nil {
		hint = DarkHint{}
	}
	return &ThemeService{bus: b, store: store, hint: hint}
}

// Initialize resolves the startup theme: stored preference, then the system
// hint, then dark. It runs once; later calls are a no-op.
func (s *ThemeService) Initialize() domain.Theme {
	s.mu.Lock()
	if s.initialized {
		current := s.current
		s.mu.Unlock()
		return current
	}
	theme, ok := s.store.LoadTheme()
	if !ok {
		theme = s.hint.PreferredTheme()
		if !theme.Valid() {
			theme = domain.ThemeDark
		}
	}
	s.current = theme
	s.initialized = true
	s.mu.Unlock()

	s.bus.Publish(bus.TopicThemeChanged, theme)
	return theme
}

// Current returns the current theme.
func (s *ThemeService) Current() domain.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetTheme updates the theme, persists it and republishes. Setting the
// already-current value still republishes; subscribers are expected to be
// idempotent on repeated identical values. Invalid values are a validation
// no-op.
func (s *ThemeService) SetTheme(theme domain.Theme) {
	if !theme.Valid() {
		logger.WarnCF("theme", "Ignoring invalid theme", map[string]interface{}{
			"theme": theme.String(),
		})
		return
	}

	s.mu.Lock()
	s.current = theme
	s.initialized = true
	s.mu.Unlock()

	if err := s.store.SaveTheme(theme); err != nil {
		logger.ErrorCF("theme", "Theme persist failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	s.bus.Publish(bus.TopicThemeChanged, theme)
}
