package storage

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

var ErrNotFound = eris.New("not found")

// Open abre el pool database/sql sobre el driver pgx y hace ping.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, eris.Wrap(err, "open postgres")
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "ping postgres")
	}
	return db, nil
}

// Migrate aplica las migraciones embebidas que falten y loguea cada versión aplicada.
func Migrate(ctx context.Context, db *sql.DB, log zerolog.Logger) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return eris.Wrap(err, "migrations dir")
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return eris.Wrap(err, "goose provider")
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return eris.Wrap(err, "goose up")
	}
	for _, r := range results {
		log.Info().Int64("version", r.Source.Version).Dur("took", r.Duration).Msg("migration applied")
	}
	return nil
}

// ensureGuild crea la fila del guild con los defaults si todavía no existe.
func ensureGuild(ctx context.Context, db *sql.DB, guildID string) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO guilds (guild_id) VALUES ($1)
ON CONFLICT (guild_id) DO NOTHING
`, guildID)
	return eris.Wrap(err, "ensure guild")
}
