package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/league-queue-bot/internal/app/formation/formationtest"
	"github.com/jose-valero/league-queue-bot/internal/domain"
)

func newConfigService(t *testing.T) (*ConfigService, *formationtest.Configs, *memQueue) {
	t.Helper()
	configs := formationtest.NewConfigs()
	queue := newMemQueue()
	return NewConfigService(configs, queue, nil), configs, queue
}

func TestSetCapacityEmptiesQueue(t *testing.T) {
	svc, configs, queue := newConfigService(t)
	ctx := context.Background()
	require.NoError(t, queue.Insert(ctx, guild, "u1", "u2", "u3"))

	n, err := svc.SetCapacity(ctx, guild, 6)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	cfg, err := configs.Get(ctx, guild)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Capacity)
	left, _ := queue.List(ctx, guild)
	assert.Empty(t, left)

	_, err = svc.SetCapacity(ctx, guild, 6)
	assert.ErrorIs(t, err, ErrUnchanged)
}

func TestSetCapacityRejectsInvalid(t *testing.T) {
	svc, configs, queue := newConfigService(t)
	ctx := context.Background()
	require.NoError(t, queue.Insert(ctx, guild, "u1"))

	for _, c := range []int{0, 1, 7, 101} {
		_, err := svc.SetCapacity(ctx, guild, c)
		assert.ErrorIs(t, err, domain.ErrInvalidConfig, "capacity %d", c)
	}
	// draft de capitanes con más de diez jugadores
	_, err := svc.SetCapacity(ctx, guild, 12)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	cfg, _ := configs.Get(ctx, guild)
	assert.Equal(t, 10, cfg.Capacity)
	left, _ := queue.List(ctx, guild)
	assert.Equal(t, []string{"u1"}, left)
}

func TestSetMethods(t *testing.T) {
	svc, _, _ := newConfigService(t)
	ctx := context.Background()

	cfg, err := svc.SetTeamMethod(ctx, guild, " Autobalance ")
	require.NoError(t, err)
	assert.Equal(t, domain.TeamAutobalance, cfg.TeamMethod)

	_, err = svc.SetTeamMethod(ctx, guild, "autobalance")
	assert.ErrorIs(t, err, ErrUnchanged)

	_, err = svc.SetTeamMethod(ctx, guild, "coinflip")
	var me *domain.MethodError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "team", me.Axis)

	cfg, err = svc.SetCaptainMethod(ctx, guild, "rank")
	require.NoError(t, err)
	assert.Equal(t, domain.CaptainRank, cfg.CaptainMethod)

	cfg, err = svc.SetMapMethod(ctx, guild, "vote")
	require.NoError(t, err)
	assert.Equal(t, domain.MapVote, cfg.MapMethod)
}

func TestEditMapPool(t *testing.T) {
	svc, _, _ := newConfigService(t)
	ctx := context.Background()

	cfg, err := svc.EditMapPool(ctx, guild, []string{"+de_ancient", "-de_dust2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"de_ancient", "de_inferno", "de_mirage", "de_nuke", "de_overpass", "de_train", "de_vertigo"}, cfg.MapPool)

	_, err = svc.EditMapPool(ctx, guild, []string{"+de_ancient"})
	assert.ErrorIs(t, err, ErrUnchanged)

	_, err = svc.EditMapPool(ctx, guild, []string{"+de_atlantis"})
	assert.ErrorIs(t, err, domain.ErrUnknownMap)

	_, err = svc.EditMapPool(ctx, guild, []string{"de_nuke"})
	assert.ErrorIs(t, err, ErrPoolSyntax)

	_, err = svc.EditMapPool(ctx, guild, []string{"-de_ancient", "-de_inferno", "-de_mirage", "-de_nuke", "-de_overpass"})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestForgetDropsGuildConfig(t *testing.T) {
	svc, configs, _ := newConfigService(t)
	ctx := context.Background()
	_, err := svc.SetCapacity(ctx, guild, 4)
	require.NoError(t, err)

	require.NoError(t, svc.Forget(ctx, guild))

	cfg, err := configs.Get(ctx, guild)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultGuildConfig(guild).Capacity, cfg.Capacity)
}
