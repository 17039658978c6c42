package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/league")
	t.Setenv("DISCORD_BOT_TOKEN", "abc")
	t.Setenv("LEAGUE_API_URL", "https://api.league.gg")
	t.Setenv("LEAGUE_API_KEY", "key")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Bot abc", cfg.DiscordToken)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 60*time.Second, cfg.ReadyTimeout)
	assert.Equal(t, 10*time.Minute, cfg.DraftTimeout)
	assert.Equal(t, 10*time.Minute, cfg.BanTimeout)
	assert.Equal(t, time.Minute, cfg.VoteTimeout)
	assert.Equal(t, 5*time.Minute, cfg.RatingCacheTTL)
	assert.Zero(t, cfg.MapVoteCandidates)
	assert.Empty(t, cfg.DiscordGuild)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DISCORD_BOT_TOKEN", "Bot already")
	t.Setenv("DISCORD_GUILD_IDS", "1, 2,,3")
	t.Setenv("DISCORD_ADMIN_ROLE_IDS", " 77 ")
	t.Setenv("READY_TIMEOUT", "5s")
	t.Setenv("MAP_VOTE_CANDIDATES", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Bot already", cfg.DiscordToken)
	assert.Equal(t, []string{"1", "2", "3"}, cfg.DiscordGuild)
	assert.Equal(t, []string{"77"}, cfg.AdminRoleIDs)
	assert.Equal(t, 5*time.Second, cfg.ReadyTimeout)
	assert.Equal(t, 2, cfg.MapVoteCandidates)
}

func TestLoadMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("LEAGUE_API_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsNegativeCandidates(t *testing.T) {
	setRequired(t)
	t.Setenv("MAP_VOTE_CANDIDATES", "-1")

	_, err := Load()
	assert.Error(t, err)
}
