// Package config defines process configuration and its layered loading.
//
// Conventions follow the rest of the service: New builds defaults, Load
// layers an optional YAML file and ROTA_-prefixed environment variables on
// top, and external errors are wrapped with this package's sentinels.
package config

// Config contains process configuration. Policy knobs are kept flat so the
// env mapping stays mechanical (ROTA_ELITE_TARGET -> elite_target).
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DatasetPath points at the CSV export loaded on startup. Empty means
	// start with an empty snapshot.
	DatasetPath string `koanf:"dataset_path"`

	// BatchWorkers bounds the summary fan-out pool. Zero means one per CPU.
	BatchWorkers int `koanf:"batch_workers"`

	// Engine policy knobs; see app.Policy for semantics.
	AreaScope            string  `koanf:"area_scope"`
	MinPresenceSeconds   float64 `koanf:"min_presence_seconds"`
	EliteTarget          int     `koanf:"elite_target"`
	BonusMinAcceptance   float64 `koanf:"bonus_min_acceptance_pct"`
	HourlyBonusValue     string  `koanf:"hourly_bonus_value"` // decimal string, reais
	PromotionStart       string  `koanf:"promotion_start"`    // YYYY-MM-DD
	PromotionEnd         string  `koanf:"promotion_end"`      // YYYY-MM-DD
	PromotionMinAccept   float64 `koanf:"promotion_min_acceptance_pct"`
	PromotionMinComplete float64 `koanf:"promotion_min_completion_pct"`
	AbsenceLookbackDays  int     `koanf:"absence_lookback_days"`
	AbsenceMinStreak     int     `koanf:"absence_min_streak"`
	ProjectionEnabled    bool    `koanf:"projection_enabled"`
}

// New creates a Config carrying the defaults. Policy fields left empty fall
// back to app.DefaultPolicy at wiring time.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		Addr:         ":9080",
		BatchWorkers: 0,
	}
}
