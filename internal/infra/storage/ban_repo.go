package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/rotisserie/eris"
)

type BanRepo struct{ db *sql.DB }

func NewBanRepo(db *sql.DB) *BanRepo { return &BanRepo{db: db} }

// List borra primero los bans vencidos y devuelve el resto (nil = indefinido).
func (r *BanRepo) List(ctx context.Context, guildID string) (map[string]*time.Time, error) {
	if _, err := r.db.ExecContext(ctx, `
DELETE FROM banned_users
 WHERE guild_id = $1 AND unban_at IS NOT NULL AND unban_at <= now()
`, guildID); err != nil {
		return nil, eris.Wrap(err, "expire bans")
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT user_id, unban_at
  FROM banned_users
 WHERE guild_id = $1
`, guildID)
	if err != nil {
		return nil, eris.Wrap(err, "list bans")
	}
	defer rows.Close()

	out := map[string]*time.Time{}
	for rows.Next() {
		var id string
		var until sql.NullTime
		if err := rows.Scan(&id, &until); err != nil {
			return nil, eris.Wrap(err, "scan ban")
		}
		if until.Valid {
			t := until.Time
			out[id] = &t
		} else {
			out[id] = nil
		}
	}
	return out, eris.Wrap(rows.Err(), "rows")
}

// Insert banea (o re-banea con la nueva fecha) a los usuarios.
func (r *BanRepo) Insert(ctx context.Context, guildID string, until *time.Time, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	if err := ensureGuild(ctx, r.db, guildID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO banned_users (guild_id, user_id, unban_at)
SELECT $1, u, $3 FROM unnest($2::text[]) AS u
ON CONFLICT (guild_id, user_id) DO UPDATE SET unban_at = EXCLUDED.unban_at
`, guildID, pq.Array(userIDs), until)
	return eris.Wrap(err, "insert bans")
}

func (r *BanRepo) Delete(ctx context.Context, guildID string, userIDs ...string) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, `
DELETE FROM banned_users
 WHERE guild_id = $1 AND user_id = ANY($2)
RETURNING user_id
`, guildID, pq.Array(userIDs))
	if err != nil {
		return nil, eris.Wrap(err, "delete bans")
	}
	return scanIDs(rows)
}
