// Package config loads pool settings from YAML or JSON files with
// environment variable overrides, so an embedding system can tune the
// worker ceiling and reap policy without recompiling.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"
)

// Validator validates a loaded configuration.
type Validator interface {
	Validate(config interface{}) error
}

// ValidatorFunc is a function that validates configuration
type ValidatorFunc func(config interface{}) error

func (f ValidatorFunc) Validate(config interface{}) error {
	return f(config)
}

// Load loads configuration from a file into target, detecting YAML or JSON
// by extension. Unknown extensions default to YAML.
func Load(path string, target interface{}) error {
	if strings.HasSuffix(path, ".json") {
		return LoadJSON(path, target)
	}
	return LoadYAML(path, target)
}

// LoadWithEnv loads configuration from a file and applies environment
// variable overrides of the form PREFIX_FIELD_SUBFIELD
// (e.g. SPINDLE_POOL_MAX_THREADS).
func LoadWithEnv(path string, prefix string, target interface{}) error {
	if err := Load(path, target); err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}
	if err := ApplyEnvOverrides(prefix, target); err != nil {
		return fmt.Errorf("failed to apply env overrides: %w", err)
	}
	return nil
}

// ApplyEnvOverrides applies environment variable overrides to a pointer to
// a configuration struct.
func ApplyEnvOverrides(prefix string, target interface{}) error {
	if prefix == "" {
		prefix = "SPINDLE"
	}
	val := reflect.ValueOf(target)
	if val.Kind() != reflect.Ptr || val.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("target must be a pointer to a struct")
	}
	return applyEnvToStruct(prefix, val.Elem())
}

func applyEnvToStruct(prefix string, val reflect.Value) error {
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		if !field.CanSet() {
			continue
		}

		envKey := prefix + "_" + strings.ToUpper(fieldType.Name)
		envKey = strings.ReplaceAll(envKey, "-", "_")

		// Durations are structurally int64 but parse as "60s", so they
		// must be handled before the nested-struct walk.
		if field.Type() == durationType || field.Type() == wrappedDurationType {
			if envValue := os.Getenv(envKey); envValue != "" {
				d, err := time.ParseDuration(envValue)
				if err != nil {
					return fmt.Errorf("failed to set field %s from env %s: %w", fieldType.Name, envKey, err)
				}
				field.SetInt(int64(d))
			}
			continue
		}

		if field.Kind() == reflect.Struct {
			if err := applyEnvToStruct(envKey, field); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		if err := setFieldFromEnv(field, envValue); err != nil {
			return fmt.Errorf("failed to set field %s from env %s: %w", fieldType.Name, envKey, err)
		}
	}
	return nil
}

var (
	durationType        = reflect.TypeOf(time.Duration(0))
	wrappedDurationType = reflect.TypeOf(Duration(0))
)

func setFieldFromEnv(field reflect.Value, envValue string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(envValue)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var intVal int64
		if _, err := fmt.Sscanf(envValue, "%d", &intVal); err != nil {
			return fmt.Errorf("invalid integer value: %s", envValue)
		}
		field.SetInt(intVal)
	case reflect.Float32, reflect.Float64:
		var floatVal float64
		if _, err := fmt.Sscanf(envValue, "%f", &floatVal); err != nil {
			return fmt.Errorf("invalid float value: %s", envValue)
		}
		field.SetFloat(floatVal)
	case reflect.Bool:
		field.SetBool(strings.ToLower(envValue) == "true" || envValue == "1")
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}

// Validate runs validators against a loaded configuration.
func Validate(config interface{}, validators ...Validator) error {
	for _, validator := range validators {
		if err := validator.Validate(config); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}
	return nil
}
