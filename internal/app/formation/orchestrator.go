package formation

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/jose-valero/league-queue-bot/internal/domain"
	"github.com/jose-valero/league-queue-bot/internal/infra/metrics"
)

type GuildConfigs interface {
	Get(ctx context.Context, guildID string) (domain.GuildConfig, error)
}

type RatingSource interface {
	GetPlayers(ctx context.Context, userIDs []string) ([]domain.Rating, error)
}

type MatchServerClient interface {
	StartMatch(ctx context.Context, req domain.MatchRequest) (domain.MatchServer, error)
}

// QueueEvictor saca usuarios de la cola persistida (lo implementa storage.QueueRepo).
type QueueEvictor interface {
	Delete(ctx context.Context, guildID string, userIDs ...string) ([]string, error)
}

type MatchRecorder interface {
	Insert(ctx context.Context, m domain.MatchRecord) error
}

type Timeouts struct {
	Ready time.Duration
	Draft time.Duration
	Ban   time.Duration
	Vote  time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		Ready: 60 * time.Second,
		Draft: 600 * time.Second,
		Ban:   600 * time.Second,
		Vote:  60 * time.Second,
	}
}

func (t Timeouts) withDefaults() Timeouts {
	d := DefaultTimeouts()
	if t.Ready <= 0 {
		t.Ready = d.Ready
	}
	if t.Draft <= 0 {
		t.Draft = d.Draft
	}
	if t.Ban <= 0 {
		t.Ban = d.Ban
	}
	if t.Vote <= 0 {
		t.Vote = d.Vote
	}
	return t
}

type Outcome string

const (
	OutcomeStarted    Outcome = "started"
	OutcomeNotReady   Outcome = "not_ready"
	OutcomeSuperseded Outcome = "superseded"
	OutcomeTimedOut   Outcome = "timed_out"
	OutcomeNoServer   Outcome = "no_server"
	OutcomeFailed     Outcome = "failed"
)

// Result es el resumen de una formación terminada.
type Result struct {
	Outcome Outcome
	Unready []string
	Teams   Teams
	Picks   int // picks del draft, 0 si no hubo draft
	Map     domain.Map
	Server  domain.MatchServer
	Err     error
}

type Deps struct {
	Hub       *Hub
	Messenger Messenger
	Configs   GuildConfigs
	Ratings   RatingSource
	Matches   MatchServerClient
	Queue     QueueEvictor
	Records   MatchRecorder // opcional
}

type Option func(*Orchestrator)

func WithTimeouts(t Timeouts) Option { return func(o *Orchestrator) { o.timeouts = t.withDefaults() } }

// WithVoteCandidates fija cuántos mapas entran a la votación; 0 = todo el pool.
func WithVoteCandidates(n int) Option { return func(o *Orchestrator) { o.voteCandidates = n } }

func WithWebURL(u string) Option { return func(o *Orchestrator) { o.webURL = u } }

func WithSeed(seed int64) Option { return func(o *Orchestrator) { o.rng = newLockedRand(seed) } }

func WithMetrics(m metrics.QueueMetrics) Option { return func(o *Orchestrator) { o.metrics = m } }

func WithLogger(l zerolog.Logger) Option { return func(o *Orchestrator) { o.log = l } }

// Orchestrator corre ready check -> equipos -> mapa -> servidor para cada burst de cola.
type Orchestrator struct {
	Deps

	registry       *Registry
	timeouts       Timeouts
	voteCandidates int
	webURL         string
	rng            *lockedRand
	metrics        metrics.QueueMetrics
	log            zerolog.Logger

	base   context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
	idleMu sync.RWMutex
	onIdle func(guildID, channelID string)
}

func NewOrchestrator(d Deps, opts ...Option) *Orchestrator {
	base, stop := context.WithCancel(context.Background())
	o := &Orchestrator{
		Deps:     d,
		registry: NewRegistry(),
		timeouts: DefaultTimeouts(),
		rng:      newLockedRand(0),
		metrics:  metrics.Noop{},
		log:      zerolog.Nop(),
		base:     base,
		stop:     stop,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Registry() *Registry { return o.registry }

// SetIdleHook registra una función que se llama cuando un guild queda sin formación activa.
func (o *Orchestrator) SetIdleHook(fn func(guildID, channelID string)) {
	o.idleMu.Lock()
	defer o.idleMu.Unlock()
	o.onIdle = fn
}

// Begin reserva la formación del guild con el roster ya fijo. No arranca nada todavía:
// el llamador vacía la cola y después llama Launch (o Abort si falló).
func (o *Orchestrator) Begin(guildID, channelID string, roster []string) (*Session, error) {
	if len(roster)%2 != 0 {
		return nil, domain.ErrOddRoster
	}
	return o.registry.Begin(o.base, guildID, channelID, roster)
}

func (o *Orchestrator) Abort(s *Session) { o.registry.End(s) }

// Launch corre la formación en background.
func (o *Orchestrator) Launch(s *Session) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.Run(s)
	}()
}

// Close cancela las formaciones en curso y espera que terminen.
func (o *Orchestrator) Close() {
	o.stop()
	o.wg.Wait()
}

// Wait espera las formaciones lanzadas (tests).
func (o *Orchestrator) Wait() { o.wg.Wait() }

// Run corre la formación completa de forma sincrónica.
func (o *Orchestrator) Run(s *Session) (res Result) {
	log := o.log.With().Str("guild", s.GuildID).Str("session", s.ID).Logger()
	ctx := log.WithContext(s.ctx)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("formation panic")
			res = Result{Outcome: OutcomeFailed, Err: eris.Errorf("panic: %v", rec)}
		}
		o.metrics.FormationOutcome(string(res.Outcome))
		log.Info().Str("outcome", string(res.Outcome)).Err(res.Err).Dur("elapsed", time.Since(s.StartedAt)).Msg("formation finished")

		if o.registry.End(s) && res.Outcome != OutcomeSuperseded {
			o.idle(s.GuildID, s.ChannelID)
		}
	}()

	cfg, err := o.Configs.Get(ctx, s.GuildID)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Err: eris.Wrap(err, "load guild config")}
	}

	panel, err := o.Messenger.Send(ctx, s.ChannelID, readyView(s.Roster, o.timeouts.Ready))
	if err != nil {
		return Result{Outcome: OutcomeFailed, Err: eris.Wrap(err, "send ready panel")}
	}
	// ediciones finales con un contexto propio: la sesión pudo haber sido cancelada
	finish := func(v View) {
		ectx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := panel.ClearOptions(ectx); err != nil {
			log.Debug().Err(err).Msg("final panel clear failed")
		}
		if err := panel.Edit(ectx, v); err != nil {
			log.Warn().Err(err).Msg("final panel edit failed")
		}
	}

	// 1) ready check
	phaseStart := time.Now()
	ready, err := NewReadyCheck(o.Hub, panel, s.Roster, o.timeouts.Ready).Run(ctx)
	o.metrics.PhaseElapsed(string(PhaseReady), time.Since(phaseStart))
	if err != nil {
		if o.registry.Superseded(s) {
			finish(supersededView())
			return Result{Outcome: OutcomeSuperseded, Err: ErrSuperseded}
		}
		finish(problemView(err))
		return Result{Outcome: OutcomeFailed, Err: err}
	}
	if !ready.AllReady {
		ectx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if _, err := o.Queue.Delete(ectx, s.GuildID, ready.Unready...); err != nil {
			log.Error().Err(err).Strs("users", ready.Unready).Msg("evict unready players")
		}
		cancel()
		finish(notReadyView(ready.Unready))
		return Result{Outcome: OutcomeNotReady, Unready: ready.Unready}
	}
	if !o.registry.Advance(s, PhaseTeams) {
		finish(supersededView())
		return Result{Outcome: OutcomeSuperseded, Err: ErrSuperseded}
	}
	logPanel(ctx, "clear_options", panel.ClearOptions(ctx))

	// 2) equipos
	phaseStart = time.Now()
	teams, picks, err := o.formTeams(ctx, s, cfg, panel)
	o.metrics.PhaseElapsed(string(PhaseTeams), time.Since(phaseStart))
	if err != nil {
		finish(problemView(err))
		return failed(err)
	}
	log.Info().Strs("team_one", teams[0]).Strs("team_two", teams[1]).Msg("teams formed")

	// 3) mapa
	o.registry.Advance(s, PhaseMap)
	phaseStart = time.Now()
	mapPick, err := o.selectMap(ctx, s, cfg, teams, panel)
	o.metrics.PhaseElapsed(string(PhaseMap), time.Since(phaseStart))
	if err != nil {
		finish(problemView(err))
		return failed(err)
	}

	// 4) servidor
	o.registry.Advance(s, PhaseServer)
	logPanel(ctx, "edit", panel.Edit(ctx, fetchingView(teams, mapPick)))
	req := domain.MatchRequest{TeamOne: teams[0], TeamTwo: teams[1], Map: mapPick.DevName}
	if nr, ok := o.Messenger.(NameResolver); ok {
		req.Names = nr.DisplayNames(ctx, s.GuildID, s.Roster)
	}
	phaseStart = time.Now()
	server, err := o.Matches.StartMatch(ctx, req)
	o.metrics.PhaseElapsed(string(PhaseServer), time.Since(phaseStart))
	if err != nil {
		finish(problemView(err))
		return Result{Outcome: OutcomeNoServer, Teams: teams, Picks: picks, Map: mapPick, Err: err}
	}

	if o.Records != nil {
		rec := domain.MatchRecord{
			ID:      s.ID,
			GuildID: s.GuildID,
			MatchID: server.ID,
			TeamOne: teams[0],
			TeamTwo: teams[1],
			Map:     mapPick.DevName,
			Server:  server,
			Status:  domain.MatchStarted,
		}
		if err := o.Records.Insert(ctx, rec); err != nil {
			log.Error().Err(err).Msg("record match")
		}
	}

	finish(serverView(server, teams, mapPick, o.webURL))
	return Result{Outcome: OutcomeStarted, Teams: teams, Picks: picks, Map: mapPick, Server: server}
}

func failed(err error) Result {
	if eris.Is(err, ErrTimedOut) {
		return Result{Outcome: OutcomeTimedOut, Err: err}
	}
	return Result{Outcome: OutcomeFailed, Err: err}
}

func (o *Orchestrator) idle(guildID, channelID string) {
	o.idleMu.RLock()
	fn := o.onIdle
	o.idleMu.RUnlock()
	if fn != nil {
		fn(guildID, channelID)
	}
}

func (o *Orchestrator) formTeams(ctx context.Context, s *Session, cfg domain.GuildConfig, panel Panel) (Teams, int, error) {
	switch cfg.TeamMethod {
	case domain.TeamAutobalance:
		ratings, err := o.Ratings.GetPlayers(ctx, s.Roster)
		if err != nil {
			return Teams{}, 0, eris.Wrap(err, "fetch ratings")
		}
		teams, err := Autobalance(s.Roster, ratings)
		if err != nil {
			return Teams{}, 0, err
		}
		logPanel(ctx, "edit", panel.Edit(ctx, teamsView("Equipos balanceados", teams)))
		return teams, 0, nil

	case domain.TeamRandom:
		teams, err := RandomTeams(s.Roster, o.rng)
		if err != nil {
			return Teams{}, 0, err
		}
		logPanel(ctx, "edit", panel.Edit(ctx, teamsView("Equipos al azar", teams)))
		return teams, 0, nil

	case domain.TeamCaptains:
		var captains []string
		switch cfg.CaptainMethod {
		case domain.CaptainRank:
			ratings, err := o.Ratings.GetPlayers(ctx, s.Roster)
			if err != nil {
				return Teams{}, 0, eris.Wrap(err, "fetch ratings")
			}
			captains = rankCaptains(s.Roster, ratings)
		case domain.CaptainRandom:
			captains = randomCaptains(s.Roster, o.rng)
		case domain.CaptainVolunteer:
		default:
			return Teams{}, 0, &domain.MethodError{Axis: "captain", Value: string(cfg.CaptainMethod)}
		}
		d, err := NewDraft(o.Hub, panel, s.Roster, captains, o.timeouts.Draft)
		if err != nil {
			return Teams{}, 0, err
		}
		teams, err := d.Run(ctx)
		return teams, d.Picks(), err

	default:
		return Teams{}, 0, &domain.MethodError{Axis: "team", Value: string(cfg.TeamMethod)}
	}
}

func (o *Orchestrator) selectMap(ctx context.Context, s *Session, cfg domain.GuildConfig, teams Teams, panel Panel) (domain.Map, error) {
	pool, err := domain.PoolMaps(cfg.MapPool)
	if err != nil {
		return domain.Map{}, err
	}
	if len(pool) == 0 {
		return domain.Map{}, eris.Wrap(domain.ErrInvalidConfig, "empty map pool")
	}

	switch cfg.MapMethod {
	case domain.MapCaptains:
		b, err := NewMapBan(o.Hub, panel, [2]string{teams[0][0], teams[1][0]}, pool, o.timeouts.Ban)
		if err != nil {
			return domain.Map{}, err
		}
		return b.Run(ctx)

	case domain.MapVote:
		v, err := NewMapVote(o.Hub, panel, s.Roster, voteCandidates(pool, o.voteCandidates, o.rng), o.timeouts.Vote, o.rng)
		if err != nil {
			return domain.Map{}, err
		}
		return v.Run(ctx)

	case domain.MapRandom:
		return pool[o.rng.Intn(len(pool))], nil

	default:
		return domain.Map{}, &domain.MethodError{Axis: "map", Value: string(cfg.MapMethod)}
	}
}
