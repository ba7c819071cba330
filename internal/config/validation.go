// Package config provides configuration management for the BetMaster decision engine.
package config

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

const weightSumTolerance = 1e-9

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	// Confidence weights must sum to exactly 1
	w := cfg.Confidence.Weights
	sum := w.Edge + w.Agreement + w.Form + w.HeadToHead + w.HomeAway
	if math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("confidence weights must sum to 1, got %.12f", sum)
	}

	// Stake brackets: thresholds strictly increasing, ranges well-formed
	prev := -1.0
	for i, b := range cfg.Staking.Brackets {
		if b.MinConfidence <= prev {
			return fmt.Errorf("staking bracket %d: min_confidence %.2f must be strictly greater than previous %.2f", i, b.MinConfidence, prev)
		}
		if b.StakeMin > b.StakeMax {
			return fmt.Errorf("staking bracket %d: stake_min %.2f exceeds stake_max %.2f", i, b.StakeMin, b.StakeMax)
		}
		prev = b.MinConfidence
	}

	if cfg.Model.PressureBoost > 0 && cfg.Model.PressureCap < cfg.Model.PressureBoost {
		return fmt.Errorf("model pressure_cap %.2f must be at least pressure_boost %.2f", cfg.Model.PressureCap, cfg.Model.PressureBoost)
	}

	if cfg.Execution.Mode == "live" && cfg.Execution.URL == "" {
		return fmt.Errorf("execution url is required in live mode")
	}

	if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "url":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}
