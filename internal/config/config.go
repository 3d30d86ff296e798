// Package config loads tool configuration from file and environment,
// with sane defaults for every threshold so the tools run with no config
// at all.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/rguichard/jtriage/internal/gc"
	"github.com/rguichard/jtriage/internal/thread"
)

// Config is the complete application configuration.
type Config struct {
	GC      GCConfig      `mapstructure:"gc"`
	Thread  ThreadConfig  `mapstructure:"thread"`
	Reports ReportsConfig `mapstructure:"reports"`
	History HistoryConfig `mapstructure:"history"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// GCConfig holds the GC detector thresholds.
type GCConfig struct {
	GrowthRegionsPerMin float64 `mapstructure:"growth_regions_per_min"`
	DeltaRegions        int     `mapstructure:"delta_regions"`
	OccupancyPct        float64 `mapstructure:"occupancy_pct"`
	PauseMS             float64 `mapstructure:"pause_ms"`
	EvacFailures        int     `mapstructure:"evac_failures"`
	HumongousFreqPct    float64 `mapstructure:"humongous_freq_pct"`
	HumongousPeak       int     `mapstructure:"humongous_peak"`
	GapSeconds          float64 `mapstructure:"gap_seconds"`
	MetaspaceKBPerMin   float64 `mapstructure:"metaspace_kb_per_min"`
	MetaspaceTriggerPct float64 `mapstructure:"metaspace_trigger_pct"`
	TLABSlowRatioPct    float64 `mapstructure:"tlab_slow_ratio_pct"`
	TLABWastePct        float64 `mapstructure:"tlab_waste_pct"`
}

// ThreadConfig holds the thread-dump detector thresholds.
type ThreadConfig struct {
	ContentionWaiters int     `mapstructure:"contention_waiters"`
	PoolMinThreads    int     `mapstructure:"pool_min_threads"`
	PoolWaitingPct    float64 `mapstructure:"pool_waiting_pct"`
	StuckGroupSize    int     `mapstructure:"stuck_group_size"`
}

// ReportsConfig controls where rendered reports land.
type ReportsConfig struct {
	Dir string `mapstructure:"dir"`
}

// HistoryConfig controls the local run-history database.
type HistoryConfig struct {
	Path    string `mapstructure:"path"`
	Enabled bool   `mapstructure:"enabled"`
}

type LoggingConfig struct {
	Verbose bool `mapstructure:"verbose"`
}

// Load reads configuration from an explicit file path, or from the
// default locations when path is empty. A missing default file is fine;
// a missing explicit file is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("JTRIAGE")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("jtriage")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "jtriage"))
		}
		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	gcDefaults := gc.DefaultThresholds()
	v.SetDefault("gc.growth_regions_per_min", gcDefaults.GrowthRegionsPerMin)
	v.SetDefault("gc.delta_regions", gcDefaults.DeltaRegions)
	v.SetDefault("gc.occupancy_pct", gcDefaults.OccupancyPct)
	v.SetDefault("gc.pause_ms", gcDefaults.PauseMS)
	v.SetDefault("gc.evac_failures", gcDefaults.EvacFailures)
	v.SetDefault("gc.humongous_freq_pct", gcDefaults.HumongousFreqPct)
	v.SetDefault("gc.humongous_peak", gcDefaults.HumongousPeak)
	v.SetDefault("gc.gap_seconds", gcDefaults.GapSeconds)
	v.SetDefault("gc.metaspace_kb_per_min", gcDefaults.MetaspaceKBPerMin)
	v.SetDefault("gc.metaspace_trigger_pct", gcDefaults.MetaspaceTriggerPct)
	v.SetDefault("gc.tlab_slow_ratio_pct", gcDefaults.TLABSlowRatioPct)
	v.SetDefault("gc.tlab_waste_pct", gcDefaults.TLABWastePct)

	threadDefaults := thread.DefaultThresholds()
	v.SetDefault("thread.contention_waiters", threadDefaults.ContentionWaiters)
	v.SetDefault("thread.pool_min_threads", threadDefaults.PoolMinThreads)
	v.SetDefault("thread.pool_waiting_pct", threadDefaults.PoolWaitingPct)
	v.SetDefault("thread.stuck_group_size", threadDefaults.StuckGroupSize)

	v.SetDefault("reports.dir", ".")
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", defaultHistoryPath())
	v.SetDefault("logging.verbose", false)
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "jtriage", "history.db")
	}
	return filepath.Join(home, ".local", "share", "jtriage", "history.db")
}

// Validate checks that every threshold is in domain.
func (c *Config) Validate() error {
	if c.GC.GrowthRegionsPerMin <= 0 {
		return fmt.Errorf("gc.growth_regions_per_min must be positive")
	}
	if c.GC.DeltaRegions <= 0 {
		return fmt.Errorf("gc.delta_regions must be positive")
	}
	if c.GC.PauseMS <= 0 {
		return fmt.Errorf("gc.pause_ms must be positive")
	}
	if c.GC.OccupancyPct <= 0 || c.GC.OccupancyPct > 100 {
		return fmt.Errorf("gc.occupancy_pct must be in (0, 100]")
	}
	if c.GC.HumongousFreqPct <= 0 || c.GC.HumongousFreqPct > 100 {
		return fmt.Errorf("gc.humongous_freq_pct must be in (0, 100]")
	}
	if c.GC.GapSeconds <= 0 {
		return fmt.Errorf("gc.gap_seconds must be positive")
	}
	if c.Thread.ContentionWaiters < 1 {
		return fmt.Errorf("thread.contention_waiters must be at least 1")
	}
	if c.Thread.PoolWaitingPct <= 0 || c.Thread.PoolWaitingPct > 100 {
		return fmt.Errorf("thread.pool_waiting_pct must be in (0, 100]")
	}
	if c.Reports.Dir == "" {
		return fmt.Errorf("reports.dir is required")
	}
	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history.path is required when history is enabled")
	}
	return nil
}

// GCThresholds maps the configuration onto the analyzer's threshold set.
func (c *Config) GCThresholds() gc.Thresholds {
	return gc.Thresholds{
		GrowthRegionsPerMin: c.GC.GrowthRegionsPerMin,
		DeltaRegions:        c.GC.DeltaRegions,
		OccupancyPct:        c.GC.OccupancyPct,
		PauseMS:             c.GC.PauseMS,
		EvacFailures:        c.GC.EvacFailures,
		HumongousFreqPct:    c.GC.HumongousFreqPct,
		HumongousPeak:       c.GC.HumongousPeak,
		GapSeconds:          c.GC.GapSeconds,
		MetaspaceKBPerMin:   c.GC.MetaspaceKBPerMin,
		MetaspaceTriggerPct: c.GC.MetaspaceTriggerPct,
		TLABSlowRatioPct:    c.GC.TLABSlowRatioPct,
		TLABWastePct:        c.GC.TLABWastePct,
	}
}

// ThreadThresholds maps the configuration onto the thread analyzer's
// threshold set.
func (c *Config) ThreadThresholds() thread.Thresholds {
	return thread.Thresholds{
		ContentionWaiters: c.Thread.ContentionWaiters,
		PoolMinThreads:    c.Thread.PoolMinThreads,
		PoolWaitingPct:    c.Thread.PoolWaitingPct,
		StuckGroupSize:    c.Thread.StuckGroupSize,
	}
}
