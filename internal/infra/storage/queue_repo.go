package storage

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rotisserie/eris"
)

type QueueRepo struct{ db *sql.DB }

func NewQueueRepo(db *sql.DB) *QueueRepo { return &QueueRepo{db: db} }

// List devuelve los usuarios en cola por orden de llegada.
func (r *QueueRepo) List(ctx context.Context, guildID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT user_id
  FROM queued_users
 WHERE guild_id = $1
 ORDER BY joined_at ASC, user_id ASC
`, guildID)
	if err != nil {
		return nil, eris.Wrap(err, "list queue")
	}
	return scanIDs(rows)
}

// Insert agrega usuarios; los que ya estaban se ignoran.
func (r *QueueRepo) Insert(ctx context.Context, guildID string, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	if err := ensureGuild(ctx, r.db, guildID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO queued_users (guild_id, user_id)
SELECT $1, u FROM unnest($2::text[]) AS u
ON CONFLICT (guild_id, user_id) DO NOTHING
`, guildID, pq.Array(userIDs))
	return eris.Wrap(err, "insert queue")
}

// Delete saca usuarios de la cola y devuelve los que efectivamente estaban.
func (r *QueueRepo) Delete(ctx context.Context, guildID string, userIDs ...string) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, `
DELETE FROM queued_users
 WHERE guild_id = $1 AND user_id = ANY($2)
RETURNING user_id
`, guildID, pq.Array(userIDs))
	if err != nil {
		return nil, eris.Wrap(err, "delete queue")
	}
	return scanIDs(rows)
}

// DeleteAll vacía la cola del guild y devuelve quiénes estaban.
func (r *QueueRepo) DeleteAll(ctx context.Context, guildID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
DELETE FROM queued_users
 WHERE guild_id = $1
RETURNING user_id
`, guildID)
	if err != nil {
		return nil, eris.Wrap(err, "empty queue")
	}
	return scanIDs(rows)
}

func scanIDs(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "scan id")
		}
		out = append(out, id)
	}
	return out, eris.Wrap(rows.Err(), "rows")
}
