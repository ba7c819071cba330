// Package config provides configuration management for the BetMaster decision engine.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Sources    []SourceConfig   `mapstructure:"sources" validate:"required,min=1,dive"`
	Ratings    RatingsConfig    `mapstructure:"ratings" validate:"required"`
	Engine     EngineConfig     `mapstructure:"engine" validate:"required"`
	Model      ModelConfig      `mapstructure:"model" validate:"required"`
	Confidence ConfidenceConfig `mapstructure:"confidence" validate:"required"`
	Staking    StakingConfig    `mapstructure:"staking" validate:"required"`
	Gate       GateConfig       `mapstructure:"gate" validate:"required"`
	Execution  ExecutionConfig  `mapstructure:"execution" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
	Health     HealthConfig     `mapstructure:"health" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// SourceConfig represents one odds source
type SourceConfig struct {
	Name           string `mapstructure:"name" validate:"required"`
	Kind           string `mapstructure:"kind" validate:"required,oneof=http stream"`
	URL            string `mapstructure:"url" validate:"required"`
	APIKey         string `mapstructure:"api_key"`
	Enabled        bool   `mapstructure:"enabled"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
}

// RatingsConfig represents the team ratings provider configuration
type RatingsConfig struct {
	URL                  string `mapstructure:"url" validate:"required,url"`
	APIKey               string `mapstructure:"api_key"`
	CacheTTLSeconds      int    `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	StalenessWindowHours int    `mapstructure:"staleness_window_hours" validate:"required,gt=0"`
	TimeoutSeconds       int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
}

// EngineConfig represents refresh-cycle and aggregation configuration
type EngineConfig struct {
	RefreshIntervalSeconds   int     `mapstructure:"refresh_interval_seconds" validate:"required,gt=0"`
	SourceTimeoutSeconds     int     `mapstructure:"source_timeout_seconds" validate:"required,gt=0"`
	KickoffToleranceMinutes  int     `mapstructure:"kickoff_tolerance_minutes" validate:"required,gt=0"`
	PriceDivergenceTolerance float64 `mapstructure:"price_divergence_tolerance" validate:"required,gt=0"`
	MaxMatchMinute           int     `mapstructure:"max_match_minute" validate:"required,gt=0,lte=90"`
	LeagueHomeGoals          float64 `mapstructure:"league_home_goals" validate:"required,gt=0"`
	LeagueAwayGoals          float64 `mapstructure:"league_away_goals" validate:"required,gt=0"`
}

// ModelConfig represents scoreline model parameters
type ModelConfig struct {
	GoalCutoff         int     `mapstructure:"goal_cutoff" validate:"required,gte=1"`
	Rho                float64 `mapstructure:"rho" validate:"gte=-1,lte=1"`
	PressureBoost      float64 `mapstructure:"pressure_boost" validate:"gte=0"`
	PressureCap        float64 `mapstructure:"pressure_cap" validate:"gte=0"`
	FatigueStartMinute int     `mapstructure:"fatigue_start_minute" validate:"required,gt=0,lte=90"`
	FatigueMaxDiscount float64 `mapstructure:"fatigue_max_discount" validate:"gte=0,lt=1"`
}

// ConfidenceWeights are the ensemble weights; they must sum to 1
type ConfidenceWeights struct {
	Edge       float64 `mapstructure:"edge" validate:"gte=0,lte=1"`
	Agreement  float64 `mapstructure:"agreement" validate:"gte=0,lte=1"`
	Form       float64 `mapstructure:"form" validate:"gte=0,lte=1"`
	HeadToHead float64 `mapstructure:"head_to_head" validate:"gte=0,lte=1"`
	HomeAway   float64 `mapstructure:"home_away" validate:"gte=0,lte=1"`
}

// ConfidenceConfig represents confidence scorer configuration
type ConfidenceConfig struct {
	Weights              ConfidenceWeights `mapstructure:"weights" validate:"required"`
	LowConfidenceCeiling float64           `mapstructure:"low_confidence_ceiling" validate:"required,gt=0,lte=100"`
	MinDisplay           float64           `mapstructure:"min_display" validate:"gte=0,lte=100"`
}

// StakeBracket maps a minimum confidence to a stake range
type StakeBracket struct {
	MinConfidence float64 `mapstructure:"min_confidence" validate:"gte=0,lte=100"`
	StakeMin      float64 `mapstructure:"stake_min" validate:"gte=0"`
	StakeMax      float64 `mapstructure:"stake_max" validate:"gte=0"`
}

// StakingConfig represents stake sizing configuration
type StakingConfig struct {
	Bankroll         float64        `mapstructure:"bankroll" validate:"required,gt=0"`
	KellyMaxFraction float64        `mapstructure:"kelly_max_fraction" validate:"required,gt=0,lte=1"`
	Brackets         []StakeBracket `mapstructure:"brackets" validate:"required,min=1,dive"`
	MaxStakePerBet   float64        `mapstructure:"max_stake_per_bet" validate:"required,gt=0"`
	Currency         string         `mapstructure:"currency" validate:"required,len=3"`
}

// GateConfig represents safety gate configuration
type GateConfig struct {
	AutoActThreshold         float64 `mapstructure:"auto_act_threshold" validate:"required,gt=0,lte=100"`
	DailyLossLimit           float64 `mapstructure:"daily_loss_limit" validate:"required,gt=0"`
	SnapshotStalenessSeconds int     `mapstructure:"snapshot_staleness_seconds" validate:"required,gt=0"`
	PriceMovementTolerance   float64 `mapstructure:"price_movement_tolerance" validate:"required,gt=0"`
	MaxDailyBets             int     `mapstructure:"max_daily_bets" validate:"required,gt=0"`
}

// ExecutionConfig represents the execution collaborator configuration
type ExecutionConfig struct {
	Mode           string `mapstructure:"mode" validate:"required,oneof=paper live"`
	URL            string `mapstructure:"url" validate:"omitempty,url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// HealthConfig represents health probe server configuration
type HealthConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsPaperMode checks if execution runs in paper mode
func (c *Config) IsPaperMode() bool {
	return c.Execution.Mode == "paper"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// RefreshInterval returns the cycle cadence as a duration
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Engine.RefreshIntervalSeconds) * time.Second
}

// SourceTimeout returns the per-source fetch timeout as a duration
func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.Engine.SourceTimeoutSeconds) * time.Second
}

// KickoffTolerance returns the kickoff grouping tolerance as a duration
func (c *Config) KickoffTolerance() time.Duration {
	return time.Duration(c.Engine.KickoffToleranceMinutes) * time.Minute
}

// SnapshotStaleness returns the gate's staleness window as a duration
func (c *Config) SnapshotStaleness() time.Duration {
	return time.Duration(c.Gate.SnapshotStalenessSeconds) * time.Second
}

// RatingsStalenessWindow returns the ratings staleness window as a duration
func (c *Config) RatingsStalenessWindow() time.Duration {
	return time.Duration(c.Ratings.StalenessWindowHours) * time.Hour
}

// EnabledSources returns the configured sources with enabled=true
func (c *Config) EnabledSources() []SourceConfig {
	out := make([]SourceConfig, 0, len(c.Sources))
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}
