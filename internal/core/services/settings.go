package services

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/custodia-labs/audytor/internal/core/domain"
	"github.com/custodia-labs/audytor/internal/core/ports/driven"
	"github.com/custodia-labs/audytor/internal/core/ports/driving"
	"github.com/custodia-labs/audytor/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyAmountTolerance = "matching.amount_tolerance"
	KeyDateWindowDays  = "matching.date_window_days"
	KeyWeightFilename  = "tiebreak.weight_fname"
	KeyMinSellerPct    = "tiebreak.min_seller_pct"
	KeyWorkers         = "run.workers"
	KeyTopN            = "report.top_n"
)

// EnvPrefix prefixes environment variables that override config keys.
// matching.amount_tolerance is read from AUDYTOR_MATCHING_AMOUNT_TOLERANCE.
const EnvPrefix = "AUDYTOR_"

var settingsKeys = []string{
	KeyAmountTolerance,
	KeyDateWindowDays,
	KeyWeightFilename,
	KeyMinSellerPct,
	KeyWorkers,
	KeyTopN,
}

// SettingsService manages audit settings.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
	validate    *validator.Validate
}

// NewSettingsService creates a new settings service.
// Environment overrides are read from the process environment.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
		validate:    validator.New(),
	}
}

// WithEnv replaces the environment lookup. Used by tests.
func (s *SettingsService) WithEnv(lookup func(string) (string, bool)) *SettingsService {
	s.lookupEnv = lookup
	return s
}

// EnvVar returns the environment variable overriding a config key.
func EnvVar(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Get retrieves effective settings: defaults, then stored values, then
// environment overrides. Unparsable values are logged and fall back to
// defaults; out-of-range values are an error.
func (s *SettingsService) Get() (*domain.AuditSettings, error) {
	settings := domain.DefaultAuditSettings()

	for _, key := range settingsKeys {
		raw, source, ok := s.raw(key)
		if !ok {
			continue
		}
		if err := applySetting(&settings, key, raw); err != nil {
			logger.Warn("Ignoring %s from %s, using default: %v", key, source, err)
		}
	}

	if err := s.Validate(&settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Save validates and persists settings.
func (s *SettingsService) Save(settings *domain.AuditSettings) error {
	if err := s.Validate(settings); err != nil {
		return err
	}
	values := map[string]any{
		KeyAmountTolerance: settings.Matching.AmountTolerance.String(),
		KeyDateWindowDays:  settings.Matching.DateWindowDays,
		KeyWeightFilename:  settings.TieBreak.WeightFilename,
		KeyMinSellerPct:    settings.TieBreak.MinSellerPct,
		KeyWorkers:         settings.Run.Workers,
		KeyTopN:            settings.Report.TopN,
	}
	for _, key := range settingsKeys {
		if err := s.configStore.Set(key, values[key]); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return nil
}

// Set updates a single setting by config key.
func (s *SettingsService) Set(key, value string) error {
	current := domain.DefaultAuditSettings()
	if stored, err := s.stored(); err == nil {
		current = *stored
	}
	if err := applySetting(&current, key, value); err != nil {
		return err
	}
	if err := s.Validate(&current); err != nil {
		return err
	}
	return s.Save(&current)
}

// Unset removes a stored setting so its default applies again.
func (s *SettingsService) Unset(key string) error {
	if !slices.Contains(settingsKeys, key) {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidSettings, key)
	}
	if err := s.configStore.Delete(key); err != nil {
		return fmt.Errorf("unset %s: %w", key, err)
	}
	return nil
}

// Validate checks settings are within range.
func (s *SettingsService) Validate(settings *domain.AuditSettings) error {
	if settings.Matching.AmountTolerance.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidSettings, KeyAmountTolerance)
	}
	if err := s.validate.Struct(settings); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s fails %s=%s", domain.ErrInvalidSettings, fe.Namespace(), fe.Tag(), fe.Param())
		}
		return fmt.Errorf("%w: %w", domain.ErrInvalidSettings, err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AuditSettings {
	return domain.DefaultAuditSettings()
}

// Keys lists the supported config keys in display order.
func (s *SettingsService) Keys() []string {
	out := make([]string, len(settingsKeys))
	copy(out, settingsKeys)
	return out
}

// stored reads settings from the config store only, ignoring the
// environment, so Set never persists an environment override.
func (s *SettingsService) stored() (*domain.AuditSettings, error) {
	settings := domain.DefaultAuditSettings()
	for _, key := range settingsKeys {
		if raw, ok := s.fromStore(key); ok {
			_ = applySetting(&settings, key, raw)
		}
	}
	return &settings, s.Validate(&settings)
}

// raw returns the value for key and where it came from.
func (s *SettingsService) raw(key string) (value, source string, ok bool) {
	if s.lookupEnv != nil {
		if v, found := s.lookupEnv(EnvVar(key)); found && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), EnvVar(key), true
		}
	}
	value, ok = s.fromStore(key)
	return value, s.configStore.Path(), ok
}

func (s *SettingsService) fromStore(key string) (string, bool) {
	v, ok := s.configStore.Get(key)
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, t != ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	default:
		return fmt.Sprint(t), true
	}
}

// applySetting parses value into the field named by key.
func applySetting(settings *domain.AuditSettings, key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case KeyAmountTolerance:
		d, err := decimal.NewFromString(strings.ReplaceAll(value, ",", "."))
		if err != nil {
			return fmt.Errorf("%w: %s: %q is not a decimal", domain.ErrInvalidSettings, key, value)
		}
		settings.Matching.AmountTolerance = d
	case KeyWeightFilename:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %q is not a number", domain.ErrInvalidSettings, key, value)
		}
		settings.TieBreak.WeightFilename = f
	case KeyDateWindowDays, KeyMinSellerPct, KeyWorkers, KeyTopN:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %q is not an integer", domain.ErrInvalidSettings, key, value)
		}
		switch key {
		case KeyDateWindowDays:
			settings.Matching.DateWindowDays = n
		case KeyMinSellerPct:
			settings.TieBreak.MinSellerPct = n
		case KeyWorkers:
			settings.Run.Workers = n
		case KeyTopN:
			settings.Report.TopN = n
		}
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidSettings, key)
	}
	return nil
}
