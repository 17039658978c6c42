package service

import (
	"context"

	"github.com/elliotchance/pie/v2"

	"github.com/jose-valero/league-queue-bot/internal/domain"
)

const LeaderboardSize = 5

type StatsService struct {
	players PlayerAPI
	ratings RatingSource
}

func NewStatsService(players PlayerAPI, ratings RatingSource) *StatsService {
	return &StatsService{players: players, ratings: ratings}
}

// Stats devuelve el rating del usuario; domain.ErrNotLinked si no tiene cuenta en la liga.
func (s *StatsService) Stats(ctx context.Context, userID string) (domain.Rating, error) {
	return s.players.GetPlayer(ctx, userID)
}

// Leaders ordena a los miembros con cuenta por score y después por partidas jugadas.
func (s *StatsService) Leaders(ctx context.Context, memberIDs []string) ([]domain.Rating, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}
	rs, err := s.ratings.GetPlayers(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	rs = pie.SortUsing(rs, func(a, b domain.Rating) bool {
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.MatchesPlayed() > b.MatchesPlayed()
	})
	if len(rs) > LeaderboardSize {
		rs = rs[:LeaderboardSize]
	}
	return rs, nil
}
