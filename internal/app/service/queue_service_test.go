package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/league-queue-bot/internal/app/formation"
	"github.com/jose-valero/league-queue-bot/internal/app/formation/formationtest"
	"github.com/jose-valero/league-queue-bot/internal/domain"
)

const (
	guild   = "g1"
	channel = "c1"
	wait    = 2 * time.Second
)

type fixture struct {
	queue     *memQueue
	bans      *memBans
	configs   *formationtest.Configs
	players   *formationtest.Ratings
	servers   *formationtest.MatchServers
	messenger *formationtest.Messenger
	hub       *formation.Hub
	orch      *formation.Orchestrator
	locks     *GuildLocks
	svc       *QueueService
}

func newFixture(t *testing.T, cfg domain.GuildConfig, users ...string) *fixture {
	t.Helper()
	f := &fixture{
		queue:     newMemQueue(),
		bans:      newMemBans(),
		configs:   formationtest.NewConfigs(cfg),
		players:   &formationtest.Ratings{ByUser: map[string]domain.Rating{}},
		servers:   &formationtest.MatchServers{Server: domain.MatchServer{ID: "m-1", IP: "1.2.3.4", Port: 27015}},
		messenger: formationtest.NewMessenger(),
		hub:       formation.NewHub(),
		locks:     NewGuildLocks(),
	}
	for _, u := range users {
		f.players.ByUser[u] = domain.Rating{UserID: u}
	}
	f.orch = formation.NewOrchestrator(formation.Deps{
		Hub:       f.hub,
		Messenger: f.messenger,
		Configs:   f.configs,
		Ratings:   f.players,
		Matches:   f.servers,
		Queue:     f.queue,
	}, formation.WithSeed(3))
	t.Cleanup(f.orch.Close)

	f.svc = NewQueueService(f.players, f.queue, f.bans, f.configs, f.orch, f.locks, nil, zerolog.Nop())
	f.orch.SetIdleHook(func(guildID, channelID string) {
		_, _ = f.svc.TryBurst(context.Background(), guildID, channelID)
	})
	return f
}

func cfgWith(capacity int, teams domain.TeamMethod, captains domain.CaptainMethod, maps domain.MapMethod) domain.GuildConfig {
	cfg := domain.DefaultGuildConfig(guild)
	cfg.Capacity = capacity
	cfg.TeamMethod = teams
	cfg.CaptainMethod = captains
	cfg.MapMethod = maps
	return cfg
}

func (f *fixture) join(t *testing.T, userID string) JoinResult {
	t.Helper()
	res, err := f.svc.Join(context.Background(), guild, channel, userID)
	require.NoError(t, err)
	return res
}

func (f *fixture) readyUp(t *testing.T, users ...string) *formationtest.Panel {
	t.Helper()
	added := f.messenger.NextAdded(t, wait)
	require.Equal(t, []string{formation.ReadyEmoji}, added.Emojis)
	for _, u := range users {
		f.hub.Publish(formation.Reaction{MessageID: added.Panel.MessageID(), Emoji: formation.ReadyEmoji, UserID: u})
	}
	return added.Panel
}

func (f *fixture) waitFormations(t *testing.T) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		f.orch.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(wait):
		require.FailNow(t, "formations did not finish")
	}
}

func TestJoinRejections(t *testing.T) {
	f := newFixture(t, cfgWith(4, domain.TeamRandom, domain.CaptainVolunteer, domain.MapRandom), "u1", "u2", "u3")
	ctx := context.Background()

	assert.Equal(t, JoinNotLinked, f.join(t, "stranger").Status)

	until := time.Now().Add(time.Hour)
	_, err := f.svc.Ban(ctx, guild, []string{"u2"}, &until)
	require.NoError(t, err)
	res := f.join(t, "u2")
	assert.Equal(t, JoinBanned, res.Status)
	require.NotNil(t, res.Until)
	assert.WithinDuration(t, until, *res.Until, time.Second)

	f.players.ByUser["u3"] = domain.Rating{UserID: "u3", InMatch: true}
	assert.Equal(t, JoinAlreadyInMatch, f.join(t, "u3").Status)

	res = f.join(t, "u1")
	assert.Equal(t, JoinAdded, res.Status)
	assert.Equal(t, []string{"u1"}, res.Queue)
	assert.Equal(t, 4, res.Capacity)
	assert.False(t, res.Burst)

	assert.Equal(t, JoinAlreadyQueued, f.join(t, "u1").Status)
}

func TestJoinQueueFull(t *testing.T) {
	f := newFixture(t, cfgWith(2, domain.TeamRandom, domain.CaptainVolunteer, domain.MapRandom), "u3")
	require.NoError(t, f.queue.Insert(context.Background(), guild, "u1", "u2"))

	assert.Equal(t, JoinQueueFull, f.join(t, "u3").Status)
}

func TestBurstRandomTeamsRandomMap(t *testing.T) {
	f := newFixture(t, cfgWith(2, domain.TeamRandom, domain.CaptainVolunteer, domain.MapRandom), "u1", "u2")

	assert.False(t, f.join(t, "u1").Burst)
	res := f.join(t, "u2")
	assert.Equal(t, JoinAdded, res.Status)
	assert.True(t, res.Burst)

	view, err := f.svc.View(context.Background(), guild)
	require.NoError(t, err)
	assert.Empty(t, view.Users)

	// los del roster no pueden volver a la cola mientras se forma la partida
	assert.Equal(t, JoinAlreadyInMatch, f.join(t, "u1").Status)

	panel := f.readyUp(t, "u1", "u2")
	f.waitFormations(t)

	assert.Contains(t, panel.Last().Description, "connect 1.2.3.4:27015")
	reqs := f.servers.Requests()
	require.Len(t, reqs, 1)
	assert.ElementsMatch(t, []string{"u1", "u2"}, append(append([]string(nil), reqs[0].TeamOne...), reqs[0].TeamTwo...))
}

func TestBurstCaptainsRandomCaptains(t *testing.T) {
	roster := []string{"u1", "u2", "u3", "u4"}
	f := newFixture(t, cfgWith(4, domain.TeamCaptains, domain.CaptainRandom, domain.MapRandom), roster...)

	for _, u := range roster {
		f.join(t, u)
	}
	panel := f.readyUp(t, roster...)

	draft := f.messenger.NextAdded(t, wait)
	require.Len(t, draft.Emojis, 2)
	for _, u := range roster {
		f.hub.Publish(formation.Reaction{MessageID: panel.MessageID(), Emoji: draft.Emojis[0], UserID: u})
	}
	f.waitFormations(t)

	reqs := f.servers.Requests()
	require.Len(t, reqs, 1)
	assert.Len(t, reqs[0].TeamOne, 2)
	assert.Len(t, reqs[0].TeamTwo, 2)
}

func TestBurstWaitsForRunningFormation(t *testing.T) {
	f := newFixture(t, cfgWith(2, domain.TeamCaptains, domain.CaptainVolunteer, domain.MapRandom), "u1", "u2", "u3", "u4", "u5")

	f.join(t, "u1")
	require.True(t, f.join(t, "u2").Burst)
	panel := f.readyUp(t, "u1", "u2")
	f.messenger.NextAdded(t, wait) // draft esperando voluntarios

	f.join(t, "u3")
	res := f.join(t, "u4")
	assert.Equal(t, JoinAdded, res.Status)
	assert.False(t, res.Burst)
	assert.Equal(t, JoinQueueFull, f.join(t, "u5").Status)

	// termina el draft; el hook de idle dispara el burst pendiente
	f.hub.Publish(formation.Reaction{MessageID: panel.MessageID(), Emoji: formation.NumberEmojis[0], UserID: "u1"})
	next := f.messenger.NextAdded(t, wait)
	assert.NotEqual(t, panel.MessageID(), next.Panel.MessageID())

	view, err := f.svc.View(context.Background(), guild)
	require.NoError(t, err)
	assert.Empty(t, view.Users)
	assert.True(t, f.orch.Registry().InFormation(guild, "u3"))
}

func TestNotReadyPlayersAreFreed(t *testing.T) {
	f := newFixture(t, cfgWith(2, domain.TeamRandom, domain.CaptainVolunteer, domain.MapRandom), "u1", "u2")
	f.orch = formation.NewOrchestrator(formation.Deps{
		Hub:       f.hub,
		Messenger: f.messenger,
		Configs:   f.configs,
		Ratings:   f.players,
		Matches:   f.servers,
		Queue:     f.queue,
	}, formation.WithTimeouts(formation.Timeouts{Ready: 50 * time.Millisecond}))
	t.Cleanup(f.orch.Close)
	f.svc = NewQueueService(f.players, f.queue, f.bans, f.configs, f.orch, f.locks, nil, zerolog.Nop())

	f.join(t, "u1")
	f.join(t, "u2")
	f.readyUp(t, "u1")
	f.waitFormations(t)

	assert.Empty(t, f.servers.Requests())
	assert.Equal(t, JoinAdded, f.join(t, "u1").Status)
	assert.Equal(t, JoinAdded, f.join(t, "u2").Status)
}

func TestLeaveRemoveEmpty(t *testing.T) {
	f := newFixture(t, cfgWith(10, domain.TeamRandom, domain.CaptainVolunteer, domain.MapRandom), "u1", "u2", "u3")
	ctx := context.Background()
	for _, u := range []string{"u1", "u2", "u3"} {
		f.join(t, u)
	}

	ok, err := f.svc.Leave(ctx, guild, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.svc.Leave(ctx, guild, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.svc.Remove(ctx, guild, "u2", false)
	assert.ErrorIs(t, err, ErrForbidden)
	ok, err = f.svc.Remove(ctx, guild, "u2", true)
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := f.svc.EmptyAll(ctx, guild)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBanEvictsAndUnban(t *testing.T) {
	f := newFixture(t, cfgWith(10, domain.TeamRandom, domain.CaptainVolunteer, domain.MapRandom), "u1", "u2")
	ctx := context.Background()
	f.join(t, "u1")
	f.join(t, "u2")

	evicted, err := f.svc.Ban(ctx, guild, []string{"u1", "u9"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, evicted)

	res := f.join(t, "u1")
	assert.Equal(t, JoinBanned, res.Status)
	assert.Nil(t, res.Until)

	unbanned, err := f.svc.Unban(ctx, guild, []string{"u1", "u2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, unbanned)
	assert.Equal(t, JoinAdded, f.join(t, "u1").Status)
}

func TestExpiredBanAllowsJoin(t *testing.T) {
	f := newFixture(t, cfgWith(10, domain.TeamRandom, domain.CaptainVolunteer, domain.MapRandom), "u1")
	past := time.Now().Add(-time.Minute)
	_, err := f.svc.Ban(context.Background(), guild, []string{"u1"}, &past)
	require.NoError(t, err)

	assert.Equal(t, JoinAdded, f.join(t, "u1").Status)
}

func TestFullQueueBurstsOnceForEveryCapacity(t *testing.T) {
	for c := domain.MinCapacity; c <= domain.MaxCapacity; c += 2 {
		t.Run(fmt.Sprintf("capacity %d", c), func(t *testing.T) {
			users := make([]string, c)
			for i := range users {
				users[i] = fmt.Sprintf("u%d", i+1)
			}
			f := newFixture(t, cfgWith(c, domain.TeamRandom, domain.CaptainVolunteer, domain.MapRandom), users...)

			bursts := 0
			for _, u := range users {
				res := f.join(t, u)
				require.Equal(t, JoinAdded, res.Status)
				if res.Burst {
					bursts++
				}
			}
			assert.Equal(t, 1, bursts)

			view, err := f.svc.View(context.Background(), guild)
			require.NoError(t, err)
			assert.Empty(t, view.Users)

			f.messenger.NextAdded(t, wait)
			assert.Len(t, f.messenger.Panels(), 1)
			for _, u := range users {
				assert.True(t, f.orch.Registry().InFormation(guild, u))
			}
		})
	}
}

func TestCapacityChangeWaitsForJoin(t *testing.T) {
	f := newFixture(t, cfgWith(4, domain.TeamRandom, domain.CaptainVolunteer, domain.MapRandom), "u1", "u2", "u3", "u4")
	ctx := context.Background()
	require.NoError(t, f.queue.Insert(ctx, guild, "u1", "u2", "u3"))
	configs := NewConfigService(f.configs, f.queue, f.locks)

	// el join se frena justo después de leer la cola
	listed := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f.queue.onList = func() {
		once.Do(func() {
			close(listed)
			<-release
		})
	}

	joined := make(chan JoinResult, 1)
	go func() {
		res, err := f.svc.Join(ctx, guild, channel, "u4")
		assert.NoError(t, err)
		joined <- res
	}()
	select {
	case <-listed:
	case <-time.After(wait):
		require.FailNow(t, "join never listed the queue")
	}

	emptied := make(chan int, 1)
	go func() {
		n, err := configs.SetCapacity(ctx, guild, 2)
		assert.NoError(t, err)
		emptied <- n
	}()
	select {
	case <-emptied:
		require.FailNow(t, "capacity changed while a join held the guild")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case res := <-joined:
		assert.Equal(t, JoinAdded, res.Status)
		assert.True(t, res.Burst)
	case <-time.After(wait):
		require.FailNow(t, "join did not finish")
	}
	select {
	case n := <-emptied:
		// la cola ya se vació con el burst; el cambio no encuentra a nadie
		assert.Equal(t, 0, n)
	case <-time.After(wait):
		require.FailNow(t, "capacity change did not finish")
	}

	cfg, err := f.configs.Get(ctx, guild)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Capacity)
	left, err := f.queue.List(ctx, guild)
	require.NoError(t, err)
	assert.Empty(t, left)
}
