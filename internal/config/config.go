// Package config provides layered configuration for psybuilder.
// Values are loaded with the priority: process environment > local .env
// > config-dir .env > built-in defaults. All keys use the PSYB_ prefix.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"psybuilder/internal/logger"
)

// Environment keys recognized in .env files and the process environment.
const (
	KeyOutputDir      = "PSYB_OUTPUT_DIR"
	KeyTriggerAddress = "PSYB_TRIGGER_ADDRESS"
	KeySerialPort     = "PSYB_SERIAL_PORT"
)

// Config holds the resolved configuration values.
type Config struct {
	// OutputDir is where compiled scripts land when no explicit output
	// path is given. Empty means next to the experiment file.
	OutputDir string
	// TriggerAddress is the default parallel-port address for tagger
	// components whose experiment file names none.
	TriggerAddress string
	// SerialPort is the default serial device path for appliance
	// components whose experiment file names none.
	SerialPort string
}

// Load resolves configuration from all layers. Missing .env files are
// not errors; a malformed one is skipped with a warning.
func Load() *Config {
	values := map[string]string{
		KeyOutputDir:      "",
		KeyTriggerAddress: "0x0378",
		KeySerialPort:     "/dev/ttyUSB0",
	}

	// Lowest priority first so later layers overwrite earlier ones
	if dir, err := os.UserConfigDir(); err == nil {
		mergeEnvFile(values, filepath.Join(dir, "psybuilder", ".env"))
	}
	mergeEnvFile(values, ".env")
	for key := range values {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			values[key] = v
		}
	}

	return &Config{
		OutputDir:      values[KeyOutputDir],
		TriggerAddress: values[KeyTriggerAddress],
		SerialPort:     values[KeySerialPort],
	}
}

// mergeEnvFile overlays recognized keys from an .env file onto values.
func mergeEnvFile(values map[string]string, path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	parsed, err := godotenv.Read(path)
	if err != nil {
		logger.Warn("Skipping malformed .env file", "path", path, "error", err)
		return
	}
	for key := range values {
		if v, ok := parsed[key]; ok && v != "" {
			values[key] = v
		}
	}
}
