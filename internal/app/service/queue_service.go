package service

import (
	"context"
	"time"

	"github.com/elliotchance/pie/v2"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/jose-valero/league-queue-bot/internal/app/formation"
	"github.com/jose-valero/league-queue-bot/internal/domain"
	"github.com/jose-valero/league-queue-bot/internal/infra/metrics"
)

var ErrForbidden = eris.New("missing kick permission")

type JoinStatus string

const (
	JoinAdded          JoinStatus = "added"
	JoinAlreadyQueued  JoinStatus = "already_queued"
	JoinQueueFull      JoinStatus = "queue_full"
	JoinNotLinked      JoinStatus = "not_linked"
	JoinAlreadyInMatch JoinStatus = "already_in_match"
	JoinBanned         JoinStatus = "banned"
)

type JoinResult struct {
	Status   JoinStatus
	Until    *time.Time // solo con JoinBanned; nil = indefinido
	Queue    []string   // cola después del join
	Capacity int
	Burst    bool // la cola se llenó y arrancó una formación
}

type QueueView struct {
	Users    []string
	Capacity int
}

type QueueService struct {
	players PlayerAPI
	queue   QueueRepo
	bans    BanRepo
	guilds  GuildRepo
	former  Former
	metrics metrics.QueueMetrics
	log     zerolog.Logger
	locks   *GuildLocks
}

func NewQueueService(players PlayerAPI, queue QueueRepo, bans BanRepo, guilds GuildRepo, former Former, locks *GuildLocks, m metrics.QueueMetrics, log zerolog.Logger) *QueueService {
	if m == nil {
		m = metrics.Noop{}
	}
	if locks == nil {
		locks = NewGuildLocks()
	}
	return &QueueService{
		players: players,
		queue:   queue,
		bans:    bans,
		guilds:  guilds,
		former:  former,
		metrics: m,
		log:     log,
		locks:   locks,
	}
}

// Join mete al usuario en la cola. Si la cola queda llena, el roster se entrega a la formación
// y la cola se vacía dentro del mismo lock del guild.
func (s *QueueService) Join(ctx context.Context, guildID, channelID, userID string) (res JoinResult, err error) {
	defer func() {
		if err == nil {
			s.metrics.QueueJoin(string(res.Status))
		}
	}()

	// valida vinculación (fuera del lock: es una llamada HTTP)
	player, err := s.players.GetPlayer(ctx, userID)
	if eris.Is(err, domain.ErrNotLinked) {
		return JoinResult{Status: JoinNotLinked}, nil
	}
	if err != nil {
		return JoinResult{}, eris.Wrap(err, "get player")
	}

	unlock := s.locks.lock(guildID)
	defer unlock()

	bans, err := s.bans.List(ctx, guildID)
	if err != nil {
		return JoinResult{}, err
	}
	if until, ok := bans[userID]; ok {
		return JoinResult{Status: JoinBanned, Until: until}, nil
	}

	cfg, err := s.guilds.Get(ctx, guildID)
	if err != nil {
		return JoinResult{}, err
	}
	queued, err := s.queue.List(ctx, guildID)
	if err != nil {
		return JoinResult{}, err
	}
	res = JoinResult{Queue: queued, Capacity: cfg.Capacity}

	switch {
	case pie.Contains(queued, userID):
		res.Status = JoinAlreadyQueued
		return res, nil
	case len(queued) >= cfg.Capacity:
		res.Status = JoinQueueFull
		return res, nil
	case player.InMatch || s.former.Registry().InFormation(guildID, userID):
		res.Status = JoinAlreadyInMatch
		return res, nil
	}

	if err := s.queue.Insert(ctx, guildID, userID); err != nil {
		return JoinResult{}, err
	}
	res.Status = JoinAdded
	res.Queue = append(queued, userID)

	if len(res.Queue) == cfg.Capacity {
		res.Burst, err = s.burst(ctx, guildID, channelID, res.Queue)
		if err != nil {
			return JoinResult{}, err
		}
		if res.Burst {
			res.Queue = nil
		}
	}
	return res, nil
}

// TryBurst reintenta el burst de una cola que quedó llena mientras había una formación en curso.
func (s *QueueService) TryBurst(ctx context.Context, guildID, channelID string) (bool, error) {
	unlock := s.locks.lock(guildID)
	defer unlock()

	cfg, err := s.guilds.Get(ctx, guildID)
	if err != nil {
		return false, err
	}
	queued, err := s.queue.List(ctx, guildID)
	if err != nil {
		return false, err
	}
	if len(queued) != cfg.Capacity {
		return false, nil
	}
	return s.burst(ctx, guildID, channelID, queued)
}

// burst asume el lock del guild tomado.
func (s *QueueService) burst(ctx context.Context, guildID, channelID string, roster []string) (bool, error) {
	sess, err := s.former.Begin(guildID, channelID, roster)
	if eris.Is(err, formation.ErrFormationInFlight) {
		// la cola queda llena; se reintenta cuando termine la formación actual
		s.log.Info().Str("guild", guildID).Msg("queue full while a formation is running")
		return false, nil
	}
	if err != nil {
		return false, eris.Wrap(err, "begin formation")
	}

	if _, err := s.queue.DeleteAll(ctx, guildID); err != nil {
		s.former.Abort(sess)
		return false, err
	}
	s.metrics.QueueBurst(len(roster))
	s.log.Info().Str("guild", guildID).Str("session", sess.ID).Strs("roster", roster).Msg("queue burst")
	s.former.Launch(sess)
	return true, nil
}

func (s *QueueService) Leave(ctx context.Context, guildID, userID string) (bool, error) {
	unlock := s.locks.lock(guildID)
	defer unlock()

	removed, err := s.queue.Delete(ctx, guildID, userID)
	if err != nil {
		return false, err
	}
	return pie.Contains(removed, userID), nil
}

// Remove saca a otro usuario; requiere permiso de kick.
func (s *QueueService) Remove(ctx context.Context, guildID, userID string, requesterCanKick bool) (bool, error) {
	if !requesterCanKick {
		return false, ErrForbidden
	}
	return s.Leave(ctx, guildID, userID)
}

func (s *QueueService) EmptyAll(ctx context.Context, guildID string) (int, error) {
	unlock := s.locks.lock(guildID)
	defer unlock()

	removed, err := s.queue.DeleteAll(ctx, guildID)
	if err != nil {
		return 0, err
	}
	return len(removed), nil
}

// Ban registra el ban (until nil = indefinido) y saca a los usuarios de la cola.
func (s *QueueService) Ban(ctx context.Context, guildID string, userIDs []string, until *time.Time) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	unlock := s.locks.lock(guildID)
	defer unlock()

	if err := s.bans.Insert(ctx, guildID, until, userIDs...); err != nil {
		return nil, err
	}
	return s.queue.Delete(ctx, guildID, userIDs...)
}

// Unban devuelve los usuarios que efectivamente estaban baneados.
func (s *QueueService) Unban(ctx context.Context, guildID string, userIDs []string) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	return s.bans.Delete(ctx, guildID, userIDs...)
}

func (s *QueueService) View(ctx context.Context, guildID string) (QueueView, error) {
	cfg, err := s.guilds.Get(ctx, guildID)
	if err != nil {
		return QueueView{}, err
	}
	queued, err := s.queue.List(ctx, guildID)
	if err != nil {
		return QueueView{}, err
	}
	return QueueView{Users: queued, Capacity: cfg.Capacity}, nil
}
