package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileFallsBackToDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().HTTP.Addr, cfg.HTTP.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLOverridesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "http:\n  addr: \":9090\"\nbook:\n  tick_size: \"0.01\"\n  max_order_volume: \"500\"\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "0.01", cfg.Book.TickSize)
}

func TestValidate_RejectsMalformedDecimals(t *testing.T) {
	cfg := Default()
	cfg.Book.TickSize = "not-a-number"
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsEmptyAddr(t *testing.T) {
	cfg := Default()
	cfg.HTTP.Addr = ""
	assert.Error(t, cfg.Validate())
}

func TestBookConfig_DecimalAccessorsFallBackOnBadInput(t *testing.T) {
	c := BookConfig{TickSize: "bogus", MaxOrderVolume: "bogus"}
	assert.False(t, c.TickSizeDecimal().IsZero())
	assert.False(t, c.MaxOrderVolumeDecimal().IsZero())
}
