package main

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/caarlos0/env"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/jose-valero/league-queue-bot/internal/domain"
	"github.com/jose-valero/league-queue-bot/internal/infra/logging"
)

const matchRetention = 30 * 24 * time.Hour

type janitorConfig struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// Lo implementa *pgxpool.Pool
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type report struct {
	ExpiredBans int64 `json:"expired_bans"`
	OldMatches  int64 `json:"old_matches"`
}

func cleanup(ctx context.Context, db execer, now time.Time) (report, error) {
	var rep report

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := db.Exec(ctx, `DELETE FROM banned_users WHERE unban_at IS NOT NULL AND unban_at <= $1`, now)
	if err != nil {
		return rep, eris.Wrap(err, "delete expired bans")
	}
	rep.ExpiredBans = tag.RowsAffected()

	tag, err = db.Exec(ctx, `
DELETE FROM matches
 WHERE updated_at < $1
   AND status IN ($2, $3)`,
		now.Add(-matchRetention), string(domain.MatchFinished), string(domain.MatchCancelled))
	if err != nil {
		return rep, eris.Wrap(err, "delete old matches")
	}
	rep.OldMatches = tag.RowsAffected()
	return rep, nil
}

func newHandler(pool *pgxpool.Pool, log zerolog.Logger) func(ctx context.Context) (report, error) {
	return func(ctx context.Context) (report, error) {
		rep, err := cleanup(ctx, pool, time.Now())
		if err != nil {
			log.Error().Err(err).Msg("janitor")
			return rep, err
		}
		log.Info().Int64("expired_bans", rep.ExpiredBans).Int64("old_matches", rep.OldMatches).Msg("janitor done")
		return rep, nil
	}
}

func main() {
	var cfg janitorConfig
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}
	logging.Setup(cfg.LogLevel)
	log := logging.Component("janitor")

	pcfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("parse database url")
	}
	pcfg.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(context.Background(), pcfg)
	if err != nil {
		log.Fatal().Err(err).Msg("pool")
	}
	defer pool.Close()

	lambda.Start(newHandler(pool, log))
}
