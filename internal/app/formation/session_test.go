package formation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrySupersedesPendingReadyCheck(t *testing.T) {
	r := NewRegistry()
	first, err := r.Begin(context.Background(), "g1", "c1", []string{"a", "b"})
	require.NoError(t, err)

	second, err := r.Begin(context.Background(), "g1", "c1", []string{"c", "d"})
	require.NoError(t, err)

	assert.True(t, r.Superseded(first))
	assert.Error(t, first.ctx.Err())
	assert.False(t, r.InFormation("g1", "a"))
	assert.True(t, r.InFormation("g1", "c"))

	assert.False(t, r.End(first))
	assert.True(t, r.InFormation("g1", "c"))

	assert.True(t, r.End(second))
	assert.False(t, r.InFormation("g1", "c"))
}

func TestRegistryRejectsBurstAfterReadyPhase(t *testing.T) {
	r := NewRegistry()
	s, err := r.Begin(context.Background(), "g1", "c1", []string{"a", "b"})
	require.NoError(t, err)
	require.True(t, r.Advance(s, PhaseTeams))

	_, err = r.Begin(context.Background(), "g1", "c1", []string{"c", "d"})
	assert.ErrorIs(t, err, ErrFormationInFlight)

	// otros guilds siguen independientes
	_, err = r.Begin(context.Background(), "g2", "c2", []string{"a", "b"})
	assert.NoError(t, err)
}

func TestRegistryForget(t *testing.T) {
	r := NewRegistry()
	s, err := r.Begin(context.Background(), "g1", "c1", []string{"a", "b"})
	require.NoError(t, err)

	r.Forget("g1")
	assert.Error(t, s.ctx.Err())
	assert.False(t, r.Advance(s, PhaseTeams))
	assert.False(t, r.End(s))
}
