package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"readiness/internal/analysis"
	"readiness/internal/health"
	"readiness/internal/logging"
)

// Config represents the application configuration
type Config struct {
	Athlete  AthleteConfig `json:"athlete"`
	Model    ModelConfig   `json:"model"`
	LogLevel string        `json:"log_level"`
}

// AthleteConfig holds athlete-specific settings
type AthleteConfig struct {
	RestingHR float64 `json:"resting_hr"`
	MaxHR     float64 `json:"max_hr"`
	Sex       string  `json:"sex"`
	VO2Max    float64 `json:"vo2_max"`
}

// ModelConfig overrides the reference model constants. Zero values keep the
// reference value.
type ModelConfig struct {
	YellowThreshold   float64            `json:"yellow_threshold,omitempty"`
	RedThreshold      float64            `json:"red_threshold,omitempty"`
	BaseRatePerHour   float64            `json:"base_rate_per_hour,omitempty"`
	LearningPhaseDays int                `json:"learning_phase_days,omitempty"`
	LearningBoost     float64            `json:"learning_boost,omitempty"`
	ZoneFloors        []float64          `json:"zone_floors,omitempty"`
	ZoneWeights       []float64          `json:"zone_weights,omitempty"`
	SportMultipliers  map[string]float64 `json:"sport_multipliers,omitempty"`
	EpocA             float64            `json:"epoc_a,omitempty"`
	EpocK             float64            `json:"epoc_k,omitempty"`
	StressLoadCap     float64            `json:"stress_load_cap,omitempty"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Athlete: AthleteConfig{
			RestingHR: 50,
			MaxHR:     185,
			Sex:       string(health.SexMale),
			VO2Max:    45,
		},
		LogLevel: "info",
	}
}

// Load reads the configuration from ~/.recovery/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration at path, fills defaults, then applies
// RECOVERY_* environment overrides
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills missing values from DefaultConfig
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Athlete.RestingHR == 0 {
		c.Athlete.RestingHR = defaults.Athlete.RestingHR
	}
	if c.Athlete.MaxHR == 0 {
		c.Athlete.MaxHR = defaults.Athlete.MaxHR
	}
	if c.Athlete.Sex == "" {
		c.Athlete.Sex = defaults.Athlete.Sex
	}
	if c.Athlete.VO2Max == 0 {
		c.Athlete.VO2Max = defaults.Athlete.VO2Max
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
}

// ApplyEnv overrides athlete settings and log level from the environment
func (c *Config) ApplyEnv(getenv func(string) string) error {
	floats := []struct {
		key string
		dst *float64
	}{
		{"RECOVERY_MAX_HR", &c.Athlete.MaxHR},
		{"RECOVERY_RESTING_HR", &c.Athlete.RestingHR},
		{"RECOVERY_VO2_MAX", &c.Athlete.VO2Max},
	}
	for _, f := range floats {
		v := getenv(f.key)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", f.key, err)
		}
		*f.dst = parsed
	}

	if v := getenv("RECOVERY_SEX"); v != "" {
		c.Athlete.Sex = strings.ToLower(strings.TrimSpace(v))
	}
	if v := getenv("RECOVERY_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Save writes the configuration to ~/.recovery/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes the configuration to path
func SaveTo(path string, cfg *Config) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	return SaveTo(path, &example)
}

// Validate checks athlete values and that the model overrides produce a
// valid parameter set
func (c *Config) Validate() error {
	if c.Athlete.MaxHR <= 0 {
		return fmt.Errorf("athlete.max_hr must be positive, got %v", c.Athlete.MaxHR)
	}
	if c.Athlete.RestingHR < 0 {
		return fmt.Errorf("athlete.resting_hr must not be negative, got %v", c.Athlete.RestingHR)
	}
	if c.Athlete.RestingHR >= c.Athlete.MaxHR {
		return fmt.Errorf("athlete.resting_hr (%v) must be less than athlete.max_hr (%v)", c.Athlete.RestingHR, c.Athlete.MaxHR)
	}
	switch health.Sex(c.Athlete.Sex) {
	case health.SexUnspecified, health.SexMale, health.SexFemale:
	default:
		return fmt.Errorf("athlete.sex must be \"male\" or \"female\", got %q", c.Athlete.Sex)
	}
	if c.Athlete.VO2Max < 0 {
		return fmt.Errorf("athlete.vo2_max must not be negative, got %v", c.Athlete.VO2Max)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	_, err := c.AnalysisParams()
	return err
}

// Profile converts the athlete section into an analysis profile
func (c *Config) Profile() health.Profile {
	return health.Profile{
		MaxHR:     c.Athlete.MaxHR,
		RestingHR: c.Athlete.RestingHR,
		Sex:       health.Sex(c.Athlete.Sex),
		VO2Max:    c.Athlete.VO2Max,
	}
}

// AnalysisParams starts from the reference parameters, applies the model
// overrides and the athlete's VO2max, and validates the result
func (c *Config) AnalysisParams() (analysis.Params, error) {
	p := analysis.DefaultParams()
	m := c.Model

	if m.YellowThreshold != 0 {
		p.Debt.YellowMax = m.YellowThreshold
	}
	if m.RedThreshold != 0 {
		p.Debt.RedMax = m.RedThreshold
	}
	if m.BaseRatePerHour != 0 {
		p.Debt.BaseRatePerHour = m.BaseRatePerHour
	}
	if m.LearningPhaseDays != 0 {
		p.Debt.LearningPhaseDays = m.LearningPhaseDays
	}
	if m.LearningBoost != 0 {
		p.Debt.LearningBoost = m.LearningBoost
	}
	if len(m.ZoneFloors) > 0 {
		zt, err := analysis.NewZoneTable(m.ZoneFloors...)
		if err != nil {
			return p, fmt.Errorf("model.zone_floors: %w", err)
		}
		p.Load.Zones = zt
	}
	if len(m.ZoneWeights) > 0 {
		if len(m.ZoneWeights) != len(p.Load.ZoneWeights) {
			return p, fmt.Errorf("model.zone_weights: %w: need %d weights, got %d",
				analysis.ErrInvalidParams, len(p.Load.ZoneWeights), len(m.ZoneWeights))
		}
		copy(p.Load.ZoneWeights[:], m.ZoneWeights)
	}
	for sport, mult := range m.SportMultipliers {
		p.Load.SportMultipliers[strings.ToLower(sport)] = mult
	}
	if m.EpocA != 0 {
		p.Epoc.A = m.EpocA
	}
	if m.EpocK != 0 {
		p.Epoc.K = m.EpocK
	}
	if m.StressLoadCap != 0 {
		p.Modifier.StressLoadCap = m.StressLoadCap
	}
	if c.Athlete.VO2Max > 0 {
		p.Epoc.VO2Max = c.Athlete.VO2Max
	}

	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("model: %w", err)
	}
	return p, nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".recovery"), nil
}
