package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir()) // no local .env
	t.Setenv(KeyOutputDir, "")
	t.Setenv(KeyTriggerAddress, "")
	t.Setenv(KeySerialPort, "")

	cfg := Load()
	assert.Empty(t, cfg.OutputDir, "no output dir means scripts land next to the experiment file")
	assert.Equal(t, "0x0378", cfg.TriggerAddress)
	assert.Equal(t, "/dev/ttyUSB0", cfg.SerialPort)
}

func TestLoad_LocalEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(dir)
	t.Setenv(KeyTriggerAddress, "")

	envContents := KeyTriggerAddress + "=0x03BC\n" + KeySerialPort + "=/dev/ttyACM0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(envContents), 0600))

	cfg := Load()
	assert.Equal(t, "0x03BC", cfg.TriggerAddress)
	assert.Equal(t, "/dev/ttyACM0", cfg.SerialPort)
}

func TestLoad_EnvironmentWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(KeyTriggerAddress+"=0x03BC\n"), 0600))
	t.Setenv(KeyTriggerAddress, "0x0278")

	cfg := Load()
	assert.Equal(t, "0x0278", cfg.TriggerAddress)
}

func TestLoad_MalformedEnvFileSkipped(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(dir)
	t.Setenv(KeyTriggerAddress, "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("not valid env syntax ==="), 0600))

	cfg := Load()
	assert.Equal(t, "0x0378", cfg.TriggerAddress, "malformed file falls back to defaults")
}
