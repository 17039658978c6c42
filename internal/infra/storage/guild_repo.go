package storage

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rotisserie/eris"

	"github.com/jose-valero/league-queue-bot/internal/domain"
)

type GuildRepo struct{ db *sql.DB }

func NewGuildRepo(db *sql.DB) *GuildRepo { return &GuildRepo{db: db} }

// Get trae la config del guild; si no existe crea la fila con los defaults.
func (r *GuildRepo) Get(ctx context.Context, guildID string) (domain.GuildConfig, error) {
	var (
		g                      domain.GuildConfig
		team, captain, mapMeth string
		pool                   []string
	)
	err := r.db.QueryRowContext(ctx, `
SELECT guild_id, capacity, team_method, captain_method, map_method, map_pool
  FROM guilds
 WHERE guild_id = $1
`, guildID).Scan(&g.GuildID, &g.Capacity, &team, &captain, &mapMeth, pq.Array(&pool))
	if eris.Is(err, sql.ErrNoRows) {
		// crea default
		if err := ensureGuild(ctx, r.db, guildID); err != nil {
			return domain.GuildConfig{}, err
		}
		return r.Get(ctx, guildID)
	}
	if err != nil {
		return domain.GuildConfig{}, eris.Wrap(err, "get guild")
	}

	// un string raro en la base es un bug de config: falla fuerte
	if g.TeamMethod, err = domain.ParseTeamMethod(team); err != nil {
		return domain.GuildConfig{}, eris.Wrapf(err, "guild %s", guildID)
	}
	if g.CaptainMethod, err = domain.ParseCaptainMethod(captain); err != nil {
		return domain.GuildConfig{}, eris.Wrapf(err, "guild %s", guildID)
	}
	if g.MapMethod, err = domain.ParseMapMethod(mapMeth); err != nil {
		return domain.GuildConfig{}, eris.Wrapf(err, "guild %s", guildID)
	}
	g.MapPool = pool
	return g, nil
}

func (r *GuildRepo) Upsert(ctx context.Context, g domain.GuildConfig) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO guilds
  (guild_id, capacity, team_method, captain_method, map_method, map_pool, created_at, updated_at)
VALUES
  ($1, $2, $3, $4, $5, $6, now(), now())
ON CONFLICT (guild_id) DO UPDATE SET
  capacity       = EXCLUDED.capacity,
  team_method    = EXCLUDED.team_method,
  captain_method = EXCLUDED.captain_method,
  map_method     = EXCLUDED.map_method,
  map_pool       = EXCLUDED.map_pool,
  updated_at     = now()
`, g.GuildID, g.Capacity, string(g.TeamMethod), string(g.CaptainMethod), string(g.MapMethod), pq.Array(g.MapPool))
	return eris.Wrap(err, "upsert guild")
}

// Delete se usa cuando el bot sale del guild; las tablas hijas caen en cascada.
func (r *GuildRepo) Delete(ctx context.Context, guildID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM guilds WHERE guild_id = $1`, guildID)
	return eris.Wrap(err, "delete guild")
}
