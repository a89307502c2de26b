package vrp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupProfile(t *testing.T) {
	p, err := LookupProfile("Conservative")
	require.NoError(t, err)
	assert.Equal(t, ProfileConservative, p.Name)
	assert.Equal(t, Thresholds{Excellent: 2.0, Good: 1.5, Marginal: 1.2}, p.Thresholds)

	p, err = LookupProfile("")
	require.NoError(t, err)
	assert.Equal(t, ProfileLegacy, p.Name)

	_, err = LookupProfile("yolo")
	assert.Error(t, err)
}

func TestResolveCustomProfile(t *testing.T) {
	p, err := ResolveProfile("custom", Thresholds{Excellent: 3, Good: 2, Marginal: 1})
	require.NoError(t, err)
	assert.Equal(t, ProfileCustom, p.Name)

	_, err = ResolveProfile("CUSTOM", Thresholds{Excellent: 2, Good: 2, Marginal: 1})
	assert.Error(t, err)

	_, err = ResolveProfile("CUSTOM", Thresholds{Excellent: 3, Good: 2, Marginal: 0})
	assert.Error(t, err)
}

func TestBuiltinProfilesAreValid(t *testing.T) {
	for _, name := range ProfileNames() {
		p, err := LookupProfile(name)
		require.NoError(t, err)
		assert.NoError(t, p.Thresholds.Validate(), name)
	}
}
