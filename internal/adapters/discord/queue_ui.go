package discord

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rotisserie/eris"

	"github.com/jose-valero/league-queue-bot/internal/infra/storage"
)

// atajos de tunning (para los timers y ajustar aqui)
const (
	uiDebounce   = 250 * time.Millisecond
	ctxRenderMax = 3 * time.Second
)

// publishQueueUI manda un panel nuevo al canal y borra el anterior del guild.
func (r *Router) publishQueueUI(ctx context.Context, guildID, channelID, title string) error {
	defer step("ui.publish")()

	view, err := r.queue.View(ctx, guildID)
	if err != nil {
		return err
	}
	msg, err := r.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:          []*discordgo.MessageEmbed{queueEmbed(title, view)},
		Components:      []discordgo.MessageComponent{queueButtons()},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return eris.Wrap(err, "send queue panel")
	}

	prev, err := r.uiStorage.Get(ctx, guildID)
	switch {
	case err == nil && prev.MessageID != "":
		if err := r.s.ChannelMessageDelete(prev.ChannelID, prev.MessageID, discordgo.WithContext(ctx)); err != nil {
			r.log.Debug().Err(err).Str("guild", guildID).Msg("previous queue panel already gone")
		}
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		r.log.Warn().Err(err).Str("guild", guildID).Msg("read queue panel ref")
	}
	return r.uiStorage.Upsert(ctx, storage.PanelRef{GuildID: guildID, ChannelID: channelID, MessageID: msg.ID})
}

// refreshQueueUI re-renderiza el último panel en su lugar, con debounce por guild.
func (r *Router) refreshQueueUI(guildID string) {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()
	if t := r.refreshTimers[guildID]; t != nil {
		t.Stop()
	}
	r.refreshTimers[guildID] = time.AfterFunc(uiDebounce, func() {
		defer step("ui.refresh")()
		ctx, cancel := context.WithTimeout(context.Background(), ctxRenderMax)
		defer cancel()

		ref, err := r.uiStorage.Get(ctx, guildID)
		if err != nil || ref.ChannelID == "" || ref.MessageID == "" {
			return
		}
		view, err := r.queue.View(ctx, guildID)
		if err != nil {
			r.log.Warn().Err(err).Str("guild", guildID).Msg("render queue panel")
			return
		}
		embeds := []*discordgo.MessageEmbed{queueEmbed("", view)}
		comps := []discordgo.MessageComponent{queueButtons()}
		_, err = r.s.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel:    ref.ChannelID,
			ID:         ref.MessageID,
			Embeds:     &embeds,
			Components: &comps,
		}, discordgo.WithContext(ctx))
		if err != nil {
			var re *discordgo.RESTError
			if errors.As(err, &re) && re.Message != nil && re.Message.Code == discordgo.ErrCodeUnknownMessage {
				// borraron el panel a mano; dejamos de editarlo hasta el próximo /view
				if err := r.uiStorage.Delete(ctx, guildID); err != nil {
					r.log.Warn().Err(err).Str("guild", guildID).Msg("forget queue panel")
				}
				return
			}
			if errors.As(err, &re) && re.Response != nil {
				r.log.Warn().
					Int("status", re.Response.StatusCode).
					Str("retry_after", re.Response.Header.Get("Retry-After")).
					Str("bucket", re.Response.Header.Get("X-RateLimit-Bucket")).
					Msg("edit queue panel")
				return
			}
			r.log.Warn().Err(err).Str("guild", guildID).Msg("edit queue panel")
		}
	})
}

func queueButtons() discordgo.MessageComponent {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Style:    discordgo.PrimaryButton,
				Label:    "Unirme",
				CustomID: "queue_join",
				Emoji:    &discordgo.ComponentEmoji{Name: "🎮"},
			},
			discordgo.Button{
				Style:    discordgo.SecondaryButton,
				Label:    "Salir",
				CustomID: "queue_leave",
				Emoji:    &discordgo.ComponentEmoji{Name: "👋"},
			},
			discordgo.Button{
				Style:    discordgo.SecondaryButton,
				Label:    "Admin",
				CustomID: "admin_panel",
				Emoji:    &discordgo.ComponentEmoji{Name: "👮"},
			},
		},
	}
}
