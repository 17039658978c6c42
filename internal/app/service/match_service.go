package service

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/jose-valero/league-queue-bot/internal/domain"
)

var ErrUnknownStatus = eris.New("unknown match status")

// MatchService aplica los eventos del webhook de la liga sobre los matches registrados.
type MatchService struct {
	repo    MatchRepo
	ratings RatingInvalidator // nil sin cache de ratings
	log     zerolog.Logger
}

func NewMatchService(repo MatchRepo, ratings RatingInvalidator, log zerolog.Logger) *MatchService {
	return &MatchService{repo: repo, ratings: ratings, log: log}
}

// HandleMatchEvent devuelve false si el match no es de este bot. Cuando un match termina
// se invalidan los ratings cacheados de sus jugadores.
func (m *MatchService) HandleMatchEvent(ctx context.Context, matchID, rawStatus string) (bool, error) {
	status, err := parseStatus(rawStatus)
	if err != nil {
		return false, err
	}
	m.log.Info().Str("match", matchID).Str("status", string(status)).Msg("match event")

	ok, err := m.repo.UpdateStatus(ctx, matchID, status)
	if err != nil {
		return false, err
	}
	if !ok {
		m.log.Debug().Str("match", matchID).Msg("match not tracked")
		return false, nil
	}
	if status == domain.MatchFinished && m.ratings != nil {
		m.invalidateRatings(ctx, matchID)
	}
	return true, nil
}

// invalidateRatings solo loguea sus errores; el evento ya quedó aplicado.
func (m *MatchService) invalidateRatings(ctx context.Context, matchID string) {
	rec, err := m.repo.Get(ctx, matchID)
	if err != nil {
		m.log.Warn().Err(err).Str("match", matchID).Msg("load finished match")
		return
	}
	players := append(append([]string(nil), rec.TeamOne...), rec.TeamTwo...)
	if err := m.ratings.Invalidate(ctx, players...); err != nil {
		m.log.Warn().Err(err).Str("match", matchID).Msg("invalidate ratings")
	}
}

// parseStatus acepta los nombres que manda la liga ("match_status_finished", "CANCELLED", ...).
func parseStatus(raw string) (domain.MatchStatus, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "finish"), strings.Contains(s, "ended"):
		return domain.MatchFinished, nil
	case strings.Contains(s, "cancel"), strings.Contains(s, "abort"):
		return domain.MatchCancelled, nil
	case strings.Contains(s, "start"), strings.Contains(s, "live"), strings.Contains(s, "ongoing"):
		return domain.MatchStarted, nil
	default:
		return "", eris.Wrapf(ErrUnknownStatus, "status %q", raw)
	}
}
