package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	t.Setenv("MOTION_TEST_KEY", "  value ")
	assert.Equal(t, "value", Get("MOTION_TEST_KEY", "fallback"))

	t.Setenv("MOTION_TEST_KEY", "   ")
	assert.Equal(t, "fallback", Get("MOTION_TEST_KEY", "fallback"))
}

func TestGetBool(t *testing.T) {
	t.Setenv("MOTION_TEST_BOOL", "true")
	assert.True(t, GetBool("MOTION_TEST_BOOL", false))

	t.Setenv("MOTION_TEST_BOOL", "maybe")
	assert.True(t, GetBool("MOTION_TEST_BOOL", true))
}

func TestLoadDotEnv(t *testing.T) {
	// godotenv never overrides variables that are already set.
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("TELEMETRY_ADDR", "")
	t.Setenv("TELEMETRY_LOOP", "")
	t.Setenv("DRIVE_FILE", "")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("TELEMETRY_LOOP")

	file := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(file, []byte("LOG_LEVEL=debug\nTELEMETRY_LOOP=1\n"), 0o600))

	cfg, loaded := Load(file)
	assert.True(t, loaded)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.TelemetryLoop)
	assert.Equal(t, ":8090", cfg.TelemetryAddr)
	assert.Empty(t, cfg.DriveFile)
}

func TestLoadMissingFile(t *testing.T) {
	_, loaded := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.False(t, loaded)
}
