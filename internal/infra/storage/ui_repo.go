package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
)

// PanelRef apunta al último panel de cola publicado en un guild.
type PanelRef struct {
	GuildID   string
	ChannelID string
	MessageID string
	UpdatedAt time.Time
}

type UIRepo struct{ db *sql.DB }

func NewUIRepo(db *sql.DB) *UIRepo { return &UIRepo{db: db} }

// Get devuelve ErrNotFound si el guild nunca publicó un panel.
func (r *UIRepo) Get(ctx context.Context, guildID string) (PanelRef, error) {
	ref := PanelRef{GuildID: guildID}
	err := r.db.QueryRowContext(ctx,
		`SELECT queue_channel_id, queue_message_id, updated_at FROM guild_ui WHERE guild_id = $1`,
		guildID,
	).Scan(&ref.ChannelID, &ref.MessageID, &ref.UpdatedAt)
	switch {
	case eris.Is(err, sql.ErrNoRows):
		return PanelRef{}, ErrNotFound
	case err != nil:
		return PanelRef{}, eris.Wrapf(err, "get panel ref of guild %s", guildID)
	}
	return ref, nil
}

func (r *UIRepo) Upsert(ctx context.Context, ref PanelRef) error {
	if err := ensureGuild(ctx, r.db, ref.GuildID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO guild_ui (guild_id, queue_channel_id, queue_message_id)
VALUES ($1, $2, $3)
ON CONFLICT (guild_id) DO UPDATE
   SET queue_channel_id = EXCLUDED.queue_channel_id,
       queue_message_id = EXCLUDED.queue_message_id,
       updated_at       = now()
`, ref.GuildID, ref.ChannelID, ref.MessageID)
	return eris.Wrapf(err, "upsert panel ref of guild %s", ref.GuildID)
}

// Delete olvida el panel (por ejemplo si alguien borró el mensaje a mano).
func (r *UIRepo) Delete(ctx context.Context, guildID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM guild_ui WHERE guild_id = $1`, guildID)
	return eris.Wrapf(err, "delete panel ref of guild %s", guildID)
}
