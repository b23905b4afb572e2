package driving

import "github.com/custodia-labs/audytor/internal/core/domain"

// SettingsService manages audit settings.
type SettingsService interface {
	// Get retrieves the effective settings: defaults, then the config
	// file, then environment overrides.
	Get() (*domain.AuditSettings, error)

	// Save validates and persists settings.
	Save(settings *domain.AuditSettings) error

	// Set updates a single setting by config key.
	Set(key, value string) error

	// Unset removes a stored setting, restoring its default.
	Unset(key string) error

	// Validate checks settings are within range.
	Validate(settings *domain.AuditSettings) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AuditSettings

	// Keys lists the supported config keys in display order.
	Keys() []string
}
