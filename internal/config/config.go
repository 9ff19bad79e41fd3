package config

import (
	"fmt"
	"slices"

	"github.com/Veraticus/spice-ask/internal/common"
	"github.com/Veraticus/spice-ask/internal/confidence"
	"github.com/spf13/viper"
)

// Output formats accepted by `spice ask`.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// DefaultDatabasePath is used when database.path is unset.
const DefaultDatabasePath = "~/.local/share/spice/spice.db"

// Config is the typed view of the settings spice reads from viper.
type Config struct {
	DatabasePath string
	Logging      LoggingConfig
	Ask          AskConfig
	Confidence   confidence.Config
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  string
	Format string
}

// AskConfig controls how answers are printed.
type AskConfig struct {
	Format string
}

// SetDefaults registers the default value of every key Load reads.
func SetDefaults(v *viper.Viper) {
	c := confidence.DefaultConfig()

	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("ask.format", FormatTable)
	v.SetDefault("confidence.likely_threshold", c.LikelyThreshold)
	v.SetDefault("confidence.uncertain_floor", c.UncertainFloor)
	v.SetDefault("confidence.small_purchase_max", c.SmallPurchaseMax)
	v.SetDefault("confidence.typical_max", c.TypicalMax)
	v.SetDefault("confidence.moderate_max", c.ModerateMax)
}

// Load builds a Config from v and validates it. Unset keys take their
// defaults.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	conf := confidence.DefaultConfig()
	conf.LikelyThreshold = v.GetInt("confidence.likely_threshold")
	conf.UncertainFloor = v.GetInt("confidence.uncertain_floor")
	conf.SmallPurchaseMax = v.GetFloat64("confidence.small_purchase_max")
	conf.TypicalMax = v.GetFloat64("confidence.typical_max")
	conf.ModerateMax = v.GetFloat64("confidence.moderate_max")

	cfg := Config{
		DatabasePath: ExpandPath(v.GetString("database.path")),
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Ask:        AskConfig{Format: v.GetString("ask.format")},
		Confidence: conf,
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every setting.
func (c Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if !slices.Contains([]string{"console", "json"}, c.Logging.Format) {
		return fmt.Errorf("%w: logging.format %q", common.ErrInvalidConfig, c.Logging.Format)
	}
	if !slices.Contains([]string{FormatTable, FormatJSON}, c.Ask.Format) {
		return fmt.Errorf("%w: ask.format %q", common.ErrInvalidConfig, c.Ask.Format)
	}
	if err := c.Confidence.Validate(); err != nil {
		return fmt.Errorf("confidence: %w", err)
	}
	return nil
}
