package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 2048, cfg.WorldSize)
	assert.True(t, cfg.Steps.Margolus.Enabled)
	assert.Equal(t, 1, cfg.Steps.Margolus.PassCount)
}

func TestLoadOverridesDefaults(t *testing.T) {
	cfg, err := Load([]byte("world_size: 512\nsteps:\n  margolus:\n    pass_count: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.WorldSize)
	assert.Equal(t, 3, cfg.Steps.Margolus.PassCount)
	// Untouched fields keep the embedded default.
	assert.True(t, cfg.Steps.LiquidSpread.Enabled)
}

func TestLoadRejectsNonPowerOfTwoWorldSize(t *testing.T) {
	_, err := Load([]byte("world_size: 1000\n"))
	require.Error(t, err)
}

func TestLoadRejectsNegativePassCount(t *testing.T) {
	_, err := Load([]byte("steps:\n  liquid_spread:\n    pass_count: -1\n"))
	require.Error(t, err)
}

func TestLoadRejectsForceBleedOutOfRange(t *testing.T) {
	_, err := Load([]byte("force_bleed: 1.5\n"))
	require.Error(t, err)
}

func TestLoadRejectsZeroEquilibriumInterval(t *testing.T) {
	_, err := Load([]byte("ambient_heat:\n  equilibrium_interval: 0\n"))
	require.Error(t, err)
}

func TestMustLoadDefaultDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() { MustLoadDefault() })
}
