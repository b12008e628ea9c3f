package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurbano/sandymarton/sim"
)

func TestLoadDefaultTable(t *testing.T) {
	tbl, err := LoadDefault()
	require.NoError(t, err)
	require.NotNil(t, tbl)

	sand := tbl.Entry(35)
	assert.Equal(t, "sand", sand.Name)
	assert.True(t, sim.IsSolid(35))

	stone := tbl.Entry(17)
	assert.Equal(t, "stone", stone.Name)
	assert.True(t, sim.IsStatic(17))
}

func TestTransitionPrecedence(t *testing.T) {
	tbl := MustLoadDefault()

	// S6: water above boiling becomes steam.
	got, fired := tbl.Transition(64, 500)
	assert.True(t, fired)
	assert.Equal(t, sim.MaterialID(65), got)

	// S6: steam below its condensation point becomes water.
	got, fired = tbl.Transition(65, 200)
	assert.True(t, fired)
	assert.Equal(t, sim.MaterialID(64), got)

	// Lava at 1600K is above its 1100K freeze threshold and has no boil or
	// melt target, so nothing fires.
	got, fired = tbl.Transition(66, 1600)
	assert.False(t, fired) // lava has no boil target in the default table
	_ = got

	// EMPTY never transitions.
	got, fired = tbl.Transition(0, 65535)
	assert.False(t, fired)
	assert.Equal(t, sim.MaterialID(0), got)
}

func TestLoadRejectsBadTransitionTarget(t *testing.T) {
	bad := []byte("id,name,default_temperature_k,density,friction,conductivity,melting_point_k,boiling_point_k,condensation_point_k,melt_target,freeze_target,boil_target,condense_target,color_r,color_g,color_b,color_a\n" +
		"10,broken,293,1,0.5,0.5,0,0,0,200,-1,-1,-1,0,0,0,255\n")
	_, err := Load(bad)
	require.Error(t, err)
}

func TestLoadRejectsInvertedMeltBoil(t *testing.T) {
	bad := []byte("id,name,default_temperature_k,density,friction,conductivity,melting_point_k,boiling_point_k,condensation_point_k,melt_target,freeze_target,boil_target,condense_target,color_r,color_g,color_b,color_a\n" +
		"10,broken,293,1,0.5,0.5,500,100,0,-1,-1,-1,-1,0,0,0,255\n")
	_, err := Load(bad)
	require.Error(t, err)
}
