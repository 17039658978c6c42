package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// tope de opciones de un select de Discord
const selectMaxOptions = 25

func (r *Router) handleMessageComponent(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	data := ic.MessageComponentData()
	log := r.log.With().Str("component_id", data.CustomID).Str("by", ic.Member.User.ID).Str("guild", ic.GuildID).Logger()

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("panic in component")
			ReplyEphemeral(s, ic, "❌ Ocurrió un error inesperado.")
		}
	}()

	_ = DeferEphemeral(s, ic)

	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	guildID, userID := ic.GuildID, ic.Member.User.ID

	switch data.CustomID {

	case "queue_join":
		defer step("component.queue_join.total")()
		if !r.clickLimiter.Allow(userID) {
			ReplyEphemeral(s, ic, "⏳ Espera un segundo…")
			return
		}
		res, err := r.queue.Join(ctx, guildID, ic.ChannelID, userID)
		if err != nil {
			log.Warn().Err(err).Msg("queue join")
			ReplyEphemeral(s, ic, errReply(err))
			return
		}
		ReplyEphemeral(s, ic, joinReply(res))
		r.refreshQueueUI(guildID)

	case "queue_leave":
		if !r.clickLimiter.Allow(userID) {
			ReplyEphemeral(s, ic, "⏳ Espera un segundo…")
			return
		}
		removed, err := r.queue.Leave(ctx, guildID, userID)
		if err != nil {
			log.Warn().Err(err).Msg("queue leave")
			ReplyEphemeral(s, ic, errReply(err))
			return
		}
		if !removed {
			ReplyEphemeral(s, ic, "ℹ️ No estabas en la cola.")
			return
		}
		ReplyEphemeral(s, ic, "👋 Saliste de la cola.")
		r.refreshQueueUI(guildID)

	//--> solo con permiso de kick
	case "admin_panel":
		if !r.clickLimiter.Allow(userID) {
			ReplyEphemeral(s, ic, "⏳ Espera un segundo…")
			return
		}
		if !r.requirePerm(s, ic, discordgo.PermissionKickMembers) {
			return
		}
		view, err := r.queue.View(ctx, guildID)
		if err != nil {
			ReplyEphemeral(s, ic, errReply(err))
			return
		}
		if len(view.Users) == 0 {
			ReplyEphemeral(s, ic, "ℹ️ La cola está vacía.")
			return
		}
		names := memberNames(ctx, s, guildID, view.Users)
		_, err = s.FollowupMessageCreate(ic.Interaction, true, &discordgo.WebhookParams{
			Content:    "Elige un jugador para **sacar de la cola**:",
			Components: []discordgo.MessageComponent{kickSelect(view.Users, names)},
			Flags:      discordgo.MessageFlagsEphemeral,
		})
		if err != nil {
			log.Warn().Err(err).Msg("show admin panel")
			ReplyEphemeral(s, ic, "⚠️ No pude mostrar el panel admin.")
		}

	case "kick_select":
		if len(data.Values) == 0 {
			ReplyEphemeral(s, ic, "⚠️ Selección inválida.")
			return
		}
		uid := strings.TrimPrefix(data.Values[0], "uid:")
		removed, err := r.queue.Remove(ctx, guildID, uid, r.hasPerm(s, ic, discordgo.PermissionKickMembers))
		if err != nil {
			ReplyEphemeral(s, ic, errReply(err))
			return
		}
		if !removed {
			ReplyEphemeral(s, ic, "ℹ️ Ese jugador no estaba en la cola.")
			return
		}
		ReplyEphemeral(s, ic, "✅ Jugador sacado de la cola.")
		r.refreshQueueUI(guildID)
	}
}

func kickSelect(userIDs []string, names map[string]string) discordgo.MessageComponent {
	if len(userIDs) > selectMaxOptions {
		userIDs = userIDs[:selectMaxOptions]
	}
	opts := make([]discordgo.SelectMenuOption, 0, len(userIDs))
	for i, id := range userIDs {
		name := names[id]
		if name == "" {
			name = id
		}
		opts = append(opts, discordgo.SelectMenuOption{
			Label:       shorten(fmt.Sprintf("%02d) %s", i+1, name), 100),
			Value:       "uid:" + id,
			Description: id,
		})
	}
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    "kick_select",
				Placeholder: "Selecciona a quién sacar",
				Options:     opts,
			},
		},
	}
}
