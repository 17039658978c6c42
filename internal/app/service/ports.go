package service

import (
	"context"
	"time"

	"github.com/jose-valero/league-queue-bot/internal/app/formation"
	"github.com/jose-valero/league-queue-bot/internal/domain"
)

// Lo implementa internal/adapters/league.Client
type PlayerAPI interface {
	GetPlayer(ctx context.Context, userID string) (domain.Rating, error)
}

// Lo implementa internal/infra/cache.RatingCache (o el league.Client directo)
type RatingSource interface {
	GetPlayers(ctx context.Context, userIDs []string) ([]domain.Rating, error)
}

// Lo implementa internal/infra/cache.RatingCache
type RatingInvalidator interface {
	Invalidate(ctx context.Context, userIDs ...string) error
}

// Lo implementa internal/infra/storage.QueueRepo
type QueueRepo interface {
	List(ctx context.Context, guildID string) ([]string, error)
	Insert(ctx context.Context, guildID string, userIDs ...string) error
	Delete(ctx context.Context, guildID string, userIDs ...string) ([]string, error)
	DeleteAll(ctx context.Context, guildID string) ([]string, error)
}

// Lo implementa internal/infra/storage.BanRepo
type BanRepo interface {
	List(ctx context.Context, guildID string) (map[string]*time.Time, error)
	Insert(ctx context.Context, guildID string, until *time.Time, userIDs ...string) error
	Delete(ctx context.Context, guildID string, userIDs ...string) ([]string, error)
}

// Lo implementa internal/infra/storage.GuildRepo
type GuildRepo interface {
	Get(ctx context.Context, guildID string) (domain.GuildConfig, error)
	Upsert(ctx context.Context, g domain.GuildConfig) error
	Delete(ctx context.Context, guildID string) error
}

// Lo implementa internal/infra/storage.MatchRepo
type MatchRepo interface {
	Get(ctx context.Context, matchID string) (domain.MatchRecord, error)
	UpdateStatus(ctx context.Context, matchID string, status domain.MatchStatus) (bool, error)
}

// Lo implementa formation.Orchestrator
type Former interface {
	Begin(guildID, channelID string, roster []string) (*formation.Session, error)
	Launch(s *formation.Session)
	Abort(s *formation.Session)
	Registry() *formation.Registry
}
