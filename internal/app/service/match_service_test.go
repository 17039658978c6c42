package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/league-queue-bot/internal/domain"
)

func TestParseStatus(t *testing.T) {
	cases := map[string]domain.MatchStatus{
		"match_status_finished":  domain.MatchFinished,
		"ENDED":                  domain.MatchFinished,
		"match_status_cancelled": domain.MatchCancelled,
		"aborted":                domain.MatchCancelled,
		"LIVE":                   domain.MatchStarted,
		"match_status_started":   domain.MatchStarted,
	}
	for raw, want := range cases {
		got, err := parseStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := parseStatus("warmup")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

type invalidated struct {
	users []string
	err   error
}

func (i *invalidated) Invalidate(_ context.Context, userIDs ...string) error {
	i.users = append(i.users, userIDs...)
	return i.err
}

func TestHandleMatchEvent(t *testing.T) {
	repo := &memMatches{records: map[string]domain.MatchRecord{
		"m-1": {ID: "s-1", GuildID: guild, MatchID: "m-1", TeamOne: []string{"a", "b"}, TeamTwo: []string{"c", "d"}, Status: domain.MatchStarted},
	}}
	cache := &invalidated{}
	svc := NewMatchService(repo, cache, zerolog.Nop())
	ctx := context.Background()

	ok, err := svc.HandleMatchEvent(ctx, "m-1", "match_status_started")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, cache.users)

	ok, err = svc.HandleMatchEvent(ctx, "m-1", "match_status_finished")
	require.NoError(t, err)
	assert.True(t, ok)
	rec, err := repo.Get(ctx, "m-1")
	require.NoError(t, err)
	assert.Equal(t, domain.MatchFinished, rec.Status)
	assert.Equal(t, []string{"a", "b", "c", "d"}, cache.users)

	ok, err = svc.HandleMatchEvent(ctx, "other", "finished")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, cache.users, 4)
}

func TestHandleMatchEventIgnoresCacheFailures(t *testing.T) {
	repo := &memMatches{records: map[string]domain.MatchRecord{
		"m-1": {MatchID: "m-1", TeamOne: []string{"a"}, TeamTwo: []string{"b"}, Status: domain.MatchStarted},
	}}
	svc := NewMatchService(repo, &invalidated{err: errors.New("redis down")}, zerolog.Nop())

	ok, err := svc.HandleMatchEvent(context.Background(), "m-1", "ended")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHandleMatchEventWithoutCache(t *testing.T) {
	repo := &memMatches{records: map[string]domain.MatchRecord{"m-1": {MatchID: "m-1"}}}
	svc := NewMatchService(repo, nil, zerolog.Nop())

	ok, err := svc.HandleMatchEvent(context.Background(), "m-1", "finished")
	require.NoError(t, err)
	assert.True(t, ok)
}
