package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Log         LogConfig         `yaml:"log"`
	Pricing     PricingConfig     `yaml:"pricing"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
	Rental      RentalConfig      `yaml:"rental"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// PricingConfig contains the standard pricing rule rates
type PricingConfig struct {
	Currency              string  `yaml:"currency"`
	LateFeePerHour        string  `yaml:"late_fee_per_hour"`
	GracePeriodHours      int     `yaml:"grace_period_hours"`
	MileageOveragePerKm   string  `yaml:"mileage_overage_per_km"`
	FuelRefillPerTenth    string  `yaml:"fuel_refill_per_tenth"`
	ApplyWeekendSurcharge bool    `yaml:"apply_weekend_surcharge"`
	WeekendMultiplier     float64 `yaml:"weekend_multiplier"`
	PeakSeasonMonths      []int   `yaml:"peak_season_months"`
	PeakSeasonMultiplier  float64 `yaml:"peak_season_multiplier"`
}

// MaintenanceConfig contains maintenance gate settings
type MaintenanceConfig struct {
	WarningWindowKm int `yaml:"warning_window_km"`
}

// RentalConfig contains lifecycle engine settings
type RentalConfig struct {
	OverdueGraceHours int `yaml:"overdue_grace_hours"`
}

// SchedulerConfig contains cron expressions for the sweep jobs
type SchedulerConfig struct {
	SweepOverdueRentals  string `yaml:"sweep_overdue_rentals"`
	SweepMaintenanceDue  string `yaml:"sweep_maintenance_due"`
	SweepPickupReminders string `yaml:"sweep_pickup_reminders"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Pricing: PricingConfig{
			Currency:             "USD",
			LateFeePerHour:       "25.00",
			GracePeriodHours:     1,
			MileageOveragePerKm:  "0.50",
			FuelRefillPerTenth:   "10.00",
			WeekendMultiplier:    1.2,
			PeakSeasonMultiplier: 1.3,
		},
		Maintenance: MaintenanceConfig{WarningWindowKm: 500},
		Rental:      RentalConfig{OverdueGraceHours: 1},
		Scheduler: SchedulerConfig{
			SweepOverdueRentals:  "0 0 * * * *",
			SweepMaintenanceDue:  "0 30 2 * * *",
			SweepPickupReminders: "0 0 9 * * *",
		},
	}
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
	if val := os.Getenv("PRICING_CURRENCY"); val != "" {
		c.Pricing.Currency = val
	}
	if val := os.Getenv("PRICING_GRACE_PERIOD_HOURS"); val != "" {
		if hours, err := strconv.Atoi(val); err == nil {
			c.Pricing.GracePeriodHours = hours
		}
	}
	if val := os.Getenv("MAINTENANCE_WARNING_WINDOW_KM"); val != "" {
		if km, err := strconv.Atoi(val); err == nil {
			c.Maintenance.WarningWindowKm = km
		}
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Pricing.Currency == "" {
		return fmt.Errorf("pricing currency must be set")
	}
	if c.Pricing.GracePeriodHours < 0 {
		return fmt.Errorf("grace period hours must not be negative")
	}
	if c.Maintenance.WarningWindowKm < 0 {
		return fmt.Errorf("maintenance warning window must not be negative")
	}
	if c.Rental.OverdueGraceHours < 0 {
		return fmt.Errorf("overdue grace hours must not be negative")
	}
	for _, month := range c.Pricing.PeakSeasonMonths {
		if month < 1 || month > 12 {
			return fmt.Errorf("peak season month %d out of range", month)
		}
	}
	return nil
}

// PeakMonths converts the configured month numbers to time.Month.
func (c *Config) PeakMonths() []time.Month {
	months := make([]time.Month, 0, len(c.Pricing.PeakSeasonMonths))
	for _, m := range c.Pricing.PeakSeasonMonths {
		months = append(months, time.Month(m))
	}
	return months
}
