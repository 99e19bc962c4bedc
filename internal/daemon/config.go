// Package daemon holds the service configuration and the sweep scheduler.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/stride-works/stride/internal/app/admission"
	"github.com/stride-works/stride/internal/app/identity"
	"github.com/stride-works/stride/internal/app/income"
	"github.com/stride-works/stride/internal/app/stipend"
	"github.com/stride-works/stride/internal/app/support"
)

// Config is the full daemon configuration, loaded from TOML.
// Every business threshold lives here so tests and deployments can
// override policy without touching code.
type Config struct {
	API       APIConfig       `toml:"api"`
	Database  DatabaseConfig  `toml:"database"`
	Identity  IdentityConfig  `toml:"identity"`
	Income    IncomeConfig    `toml:"income"`
	Stipend   StipendConfig   `toml:"stipend"`
	Support   SupportConfig   `toml:"support"`
	Admission AdmissionConfig `toml:"admission"`
	Sweep     SweepConfig     `toml:"sweep"`
}

// APIConfig configures the HTTP listener.
type APIConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Metrics bool   `toml:"metrics"`
}

// Addr returns the host:port listen address.
func (c APIConfig) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// IdentityConfig holds the level promotion thresholds in INCOME_PROOF units.
type IdentityConfig struct {
	EarnerThresholdUnits   int64 `toml:"earner_threshold_units"`
	CatalystThresholdUnits int64 `toml:"catalyst_threshold_units"`
}

// IncomeConfig holds the fixed exchange-rate table (USD per native unit).
type IncomeConfig struct {
	Rates map[string]float64 `toml:"rates"`
}

// StipendConfig holds the stipend policy.
type StipendConfig struct {
	MinMomentum       int64   `toml:"min_momentum"`
	StandardThreshold int64   `toml:"standard_threshold"`
	BonusThreshold    int64   `toml:"bonus_threshold"`
	BaseAmounts       []int64 `toml:"base_amounts"`
	DecayPercent      int64   `toml:"decay_percent"`
	ReactivationBonus int64   `toml:"reactivation_bonus"`
	InactivityDays    int     `toml:"inactivity_days"`
}

// SupportConfig holds the support gate policy.
type SupportConfig struct {
	MinMomentum   int64 `toml:"min_momentum"`
	CooldownHours int   `toml:"cooldown_hours"`
}

// AdmissionConfig holds the dispatcher policy.
type AdmissionConfig struct {
	TokenTTLDays int `toml:"token_ttl_days"`
}

// SweepConfig holds the cron schedules for the daily sweeps.
type SweepConfig struct {
	DecaySchedule      string `toml:"decay_schedule"`
	InactivitySchedule string `toml:"inactivity_schedule"`
}

// DefaultConfig returns production defaults. A missing config file is not
// an error — the daemon runs entirely on these.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:    "127.0.0.1",
			Port:    8390,
			Metrics: true,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(homeDir(), ".stride", "stride.db"),
		},
		Identity: IdentityConfig{
			EarnerThresholdUnits:   100,
			CatalystThresholdUnits: 50_000,
		},
		Income: IncomeConfig{
			Rates: map[string]float64{
				"USD": 1.0,
				"NGN": 0.00065,
			},
		},
		Stipend: StipendConfig{
			MinMomentum:       50,
			StandardThreshold: 100,
			BonusThreshold:    200,
			BaseAmounts:       []int64{0, 5_000, 10_000, 15_000, 20_000, 25_000},
			DecayPercent:      5,
			ReactivationBonus: 25,
			InactivityDays:    7,
		},
		Support: SupportConfig{
			MinMomentum:   50,
			CooldownHours: 24,
		},
		Admission: AdmissionConfig{
			TokenTTLDays: 7,
		},
		Sweep: SweepConfig{
			// Decay must run exactly once per day; the scheduler owns
			// that guarantee, not the stipend service.
			DecaySchedule:      "0 3 * * *",
			InactivitySchedule: "30 3 * * *",
		},
	}
}

// Load reads the TOML file at path over the defaults. A missing file
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config as TOML, creating parent directories.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

// ─── Service Config Projections ─────────────────────────────────────────────

// IdentityService converts to the identity service config.
func (c Config) IdentityService() identity.Config {
	return identity.Config{
		EarnerThresholdUnits:   c.Identity.EarnerThresholdUnits,
		CatalystThresholdUnits: c.Identity.CatalystThresholdUnits,
	}
}

// IncomeService converts to the income service config.
func (c Config) IncomeService() income.Config {
	return income.Config{Rates: c.Income.Rates}
}

// StipendService converts to the stipend service config.
func (c Config) StipendService() stipend.Config {
	return stipend.Config{
		MinMomentum:       c.Stipend.MinMomentum,
		StandardThreshold: c.Stipend.StandardThreshold,
		BonusThreshold:    c.Stipend.BonusThreshold,
		BaseAmounts:       c.Stipend.BaseAmounts,
		DecayPercent:      c.Stipend.DecayPercent,
		ReactivationBonus: c.Stipend.ReactivationBonus,
		InactivityWindow:  time.Duration(c.Stipend.InactivityDays) * 24 * time.Hour,
	}
}

// SupportService converts to the support gate config.
func (c Config) SupportService() support.Config {
	return support.Config{
		MinMomentum: c.Support.MinMomentum,
		Cooldown:    time.Duration(c.Support.CooldownHours) * time.Hour,
	}
}

// AdmissionService converts to the admission dispatcher config.
func (c Config) AdmissionService() admission.Config {
	return admission.Config{
		TokenTTL: time.Duration(c.Admission.TokenTTLDays) * 24 * time.Hour,
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
