package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupDefaults(t *testing.T) {
	tp, ok := Lookup("Grass")
	require.True(t, ok)
	assert.Equal(t, Grass, tp)

	tp, ok = Lookup("  stone ")
	require.True(t, ok)
	assert.Equal(t, Stone, tp)

	_, ok = Lookup("obsidian")
	assert.False(t, ok)
}

func TestRegisterCustomType(t *testing.T) {
	const Obsidian Type = 42
	assert.False(t, IsRegistered(Obsidian))

	Register(Obsidian, "Obsidian")
	defer func() {
		registryMu.Lock()
		delete(byName, names[Obsidian])
		delete(names, Obsidian)
		registryMu.Unlock()
	}()

	assert.True(t, IsRegistered(Obsidian))
	assert.Equal(t, "obsidian", Obsidian.String())
	tp, ok := Lookup("OBSIDIAN")
	require.True(t, ok)
	assert.Equal(t, Obsidian, tp)
	assert.Contains(t, Names(), "obsidian")
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "grass", Grass.String())
	assert.Equal(t, "type(200)", Type(200).String())
	assert.True(t, Air.IsAir())
	assert.False(t, Dirt.IsAir())
}
