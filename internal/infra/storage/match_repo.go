package storage

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rotisserie/eris"

	"github.com/jose-valero/league-queue-bot/internal/domain"
)

type MatchRepo struct{ db *sql.DB }

func NewMatchRepo(db *sql.DB) *MatchRepo { return &MatchRepo{db: db} }

func (r *MatchRepo) Insert(ctx context.Context, m domain.MatchRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO matches
  (id, guild_id, match_id, team_one, team_two, map, server_ip, server_port, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		m.ID, m.GuildID, m.MatchID, pq.Array(m.TeamOne), pq.Array(m.TeamTwo),
		m.Map, m.Server.IP, m.Server.Port, string(m.Status),
	)
	return eris.Wrap(err, "insert match")
}

func (r *MatchRepo) Get(ctx context.Context, matchID string) (domain.MatchRecord, error) {
	var (
		m      domain.MatchRecord
		status string
	)
	err := r.db.QueryRowContext(ctx, `
SELECT id, guild_id, match_id, team_one, team_two, map, server_ip, server_port, status, created_at, updated_at
  FROM matches
 WHERE match_id = $1
 ORDER BY created_at DESC
 LIMIT 1
`, matchID).Scan(
		&m.ID, &m.GuildID, &m.MatchID, pq.Array(&m.TeamOne), pq.Array(&m.TeamTwo),
		&m.Map, &m.Server.IP, &m.Server.Port, &status, &m.CreatedAt, &m.UpdatedAt,
	)
	if eris.Is(err, sql.ErrNoRows) {
		return domain.MatchRecord{}, ErrNotFound
	}
	if err != nil {
		return domain.MatchRecord{}, eris.Wrap(err, "get match")
	}
	m.Status = domain.MatchStatus(status)
	m.Server.ID = m.MatchID
	return m, nil
}

// UpdateStatus devuelve false si el match no existe.
func (r *MatchRepo) UpdateStatus(ctx context.Context, matchID string, status domain.MatchStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE matches SET status = $2, updated_at = now() WHERE match_id = $1
`, matchID, string(status))
	if err != nil {
		return false, eris.Wrap(err, "update match status")
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
