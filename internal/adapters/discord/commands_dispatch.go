// esta es la logica de InteractionApplicationCommand de discordgo
// aqui solo vamos a manejar logica de la interaccion del usuario y despachar a los servicios correspondientes
package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/elliotchance/pie/v2"
	"github.com/rotisserie/eris"

	"github.com/jose-valero/league-queue-bot/internal/app/service"
	"github.com/jose-valero/league-queue-bot/internal/domain"
)

const memberPage = 1000

func (r *Router) handleSlashCommand(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	cmd := ic.ApplicationCommandData()
	log := r.log.With().Str("cmd", cmd.Name).Str("by", ic.Member.User.ID).Str("guild", ic.GuildID).Logger()
	log.Debug().Msg("slash command")

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("panic in slash command")
			ReplyEphemeral(s, ic, "❌ Ocurrió un error inesperado procesando el comando. Contacta con un administrador.")
		}
	}()
	defer step("cmd." + cmd.Name)()

	_ = DeferEphemeral(s, ic)
	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	guildID, userID := ic.GuildID, ic.Member.User.ID
	fail := func(err error) {
		log.Warn().Err(err).Msg("command failed")
		ReplyEphemeral(s, ic, errReply(err))
	}

	switch cmd.Name {

	//--> para unirte en la cola
	case "join":
		res, err := r.queue.Join(ctx, guildID, ic.ChannelID, userID)
		if err != nil {
			fail(err)
			return
		}
		ReplyEphemeral(s, ic, joinReply(res))
		switch {
		case res.Burst:
			r.refreshQueueUI(guildID)
		case res.Status == service.JoinAdded:
			r.postQueueUI(ctx, ic, displayName(ic.Member)+" entró a la cola")
		}

	case "leave":
		removed, err := r.queue.Leave(ctx, guildID, userID)
		if err != nil {
			fail(err)
			return
		}
		if !removed {
			ReplyEphemeral(s, ic, "ℹ️ No estabas en la cola.")
			return
		}
		ReplyEphemeral(s, ic, "👋 Saliste de la cola.")
		r.postQueueUI(ctx, ic, displayName(ic.Member)+" salió de la cola")

	case "view":
		r.postQueueUI(ctx, ic, "")
		ReplyEphemeral(s, ic, "📋 Cola publicada.")

	//--> solo con permiso de kick (lo valida el servicio)
	case "remove":
		target, name, ok := optUser(ic, "user")
		if !ok {
			ReplyEphemeral(s, ic, "Menciona al jugador que quieres sacar.")
			return
		}
		removed, err := r.queue.Remove(ctx, guildID, target, r.hasPerm(s, ic, discordgo.PermissionKickMembers))
		if err != nil {
			fail(err)
			return
		}
		if !removed {
			ReplyEphemeral(s, ic, "ℹ️ "+name+" no estaba en la cola.")
			return
		}
		ReplyEphemeral(s, ic, "✅ "+name+" fue sacado de la cola.")
		r.postQueueUI(ctx, ic, name+" fue sacado de la cola")

	case "empty":
		if !r.requirePerm(s, ic, discordgo.PermissionKickMembers) {
			return
		}
		n, err := r.queue.EmptyAll(ctx, guildID)
		if err != nil {
			fail(err)
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("🧹 Se vació la cola (%d jugadores).", n))
		r.postQueueUI(ctx, ic, "Se vació la cola")

	case "ban":
		if !r.requirePerm(s, ic, discordgo.PermissionBanMembers) {
			return
		}
		raw, _ := optStr(ic, "users")
		users := parseIDs(raw)
		if len(users) == 0 {
			ReplyEphemeral(s, ic, "Menciona a los jugadores que quieres banear.")
			return
		}
		rawDur, _ := optStr(ic, "duration")
		dur, err := parseBanDuration(rawDur)
		if err != nil {
			fail(err)
			return
		}
		var until *time.Time
		if dur > 0 {
			t := time.Now().Add(dur)
			until = &t
		}
		evicted, err := r.queue.Ban(ctx, guildID, users, until)
		if err != nil {
			fail(err)
			return
		}
		msg := "🚫 Baneados " + mentionContent(users)
		if until == nil {
			msg += " indefinidamente."
		} else {
			msg += " por " + formatBanDuration(dur) + "."
		}
		ReplyEphemeral(s, ic, msg)
		if len(evicted) > 0 {
			r.refreshQueueUI(guildID)
		}

	case "unban":
		if !r.requirePerm(s, ic, discordgo.PermissionBanMembers) {
			return
		}
		raw, _ := optStr(ic, "users")
		users := parseIDs(raw)
		if len(users) == 0 {
			ReplyEphemeral(s, ic, "Menciona a los jugadores que quieres desbanear.")
			return
		}
		unbanned, err := r.queue.Unban(ctx, guildID, users)
		if err != nil {
			fail(err)
			return
		}
		if len(unbanned) == 0 {
			ReplyEphemeral(s, ic, "ℹ️ Ninguno de esos jugadores estaba baneado.")
			return
		}
		ReplyEphemeral(s, ic, "✅ Desbaneados "+mentionContent(unbanned)+".")

	//--> configuración: sin argumento muestra el valor actual
	case "cap":
		n, ok := optInt(ic, "capacity")
		if !ok {
			r.showConfig(ctx, s, ic, func(cfg domain.GuildConfig) string {
				return fmt.Sprintf("La capacidad actual es **%d**.", cfg.Capacity)
			})
			return
		}
		if !r.requirePerm(s, ic, discordgo.PermissionAdministrator) {
			return
		}
		emptied, err := r.config.SetCapacity(ctx, guildID, n)
		if err != nil {
			fail(err)
			return
		}
		msg := fmt.Sprintf("✅ Capacidad cambiada a **%d**.", n)
		if emptied > 0 {
			msg += fmt.Sprintf(" Se vació la cola (%d jugadores).", emptied)
		}
		ReplyEphemeral(s, ic, msg)
		r.refreshQueueUI(guildID)

	case "teams":
		r.methodCommand(ctx, s, ic, "equipos", r.config.SetTeamMethod,
			func(cfg domain.GuildConfig) string { return cfg.TeamMethod.String() })

	case "captains":
		r.methodCommand(ctx, s, ic, "capitanes", r.config.SetCaptainMethod,
			func(cfg domain.GuildConfig) string { return cfg.CaptainMethod.String() })

	case "maps":
		r.methodCommand(ctx, s, ic, "mapa", r.config.SetMapMethod,
			func(cfg domain.GuildConfig) string { return cfg.MapMethod.String() })

	case "mpool":
		raw, ok := optStr(ic, "edits")
		if !ok || strings.TrimSpace(raw) == "" {
			cfg, err := r.config.Show(ctx, guildID)
			if err != nil {
				fail(err)
				return
			}
			ReplyEphemeral(s, ic, "", configEmbed(cfg))
			return
		}
		if !r.requirePerm(s, ic, discordgo.PermissionAdministrator) {
			return
		}
		cfg, err := r.config.EditMapPool(ctx, guildID, strings.Fields(raw))
		if err != nil {
			fail(err)
			return
		}
		ReplyEphemeral(s, ic, "✅ Pool actualizado.", configEmbed(cfg))

	case "stats":
		target, name, ok := optUser(ic, "user")
		if !ok {
			target, name = userID, displayName(ic.Member)
		}
		rating, err := r.stats.Stats(ctx, target)
		if eris.Is(err, domain.ErrNotLinked) {
			ReplyEphemeral(s, ic, "🔗 No pude obtener las estadísticas de **"+name+"**: la cuenta no está vinculada.")
			return
		}
		if err != nil {
			fail(err)
			return
		}
		ReplyPublic(s, ic, statsEmbed(name, rating))

	case "leaders":
		members, err := s.GuildMembers(guildID, "", memberPage, discordgo.WithContext(ctx))
		if err != nil {
			fail(eris.Wrap(err, "list guild members"))
			return
		}
		humans := pie.Filter(members, func(m *discordgo.Member) bool { return m.User != nil && !m.User.Bot })
		ids := pie.Map(humans, func(m *discordgo.Member) string { return m.User.ID })
		top, err := r.stats.Leaders(ctx, ids)
		if err != nil {
			fail(err)
			return
		}
		names := make(map[string]string, len(humans))
		for _, m := range humans {
			names[m.User.ID] = displayName(m)
		}
		rows := pie.Map(top, func(rt domain.Rating) leaderRow { return leaderRow{Name: names[rt.UserID], Rating: rt} })
		ReplyPublic(s, ic, leadersEmbed(rows))
	}
}

// ---------- helpers ----------

func (r *Router) postQueueUI(ctx context.Context, ic *discordgo.InteractionCreate, title string) {
	if err := r.publishQueueUI(ctx, ic.GuildID, ic.ChannelID, title); err != nil {
		r.log.Warn().Err(err).Str("guild", ic.GuildID).Msg("publish queue panel")
	}
}

func (r *Router) showConfig(ctx context.Context, s *discordgo.Session, ic *discordgo.InteractionCreate, render func(domain.GuildConfig) string) {
	cfg, err := r.config.Show(ctx, ic.GuildID)
	if err != nil {
		ReplyEphemeral(s, ic, errReply(err))
		return
	}
	ReplyEphemeral(s, ic, render(cfg))
}

// methodCommand comparte la lógica de teams/captains/maps.
func (r *Router) methodCommand(
	ctx context.Context,
	s *discordgo.Session,
	ic *discordgo.InteractionCreate,
	label string,
	set func(ctx context.Context, guildID, raw string) (domain.GuildConfig, error),
	current func(domain.GuildConfig) string,
) {
	raw, ok := optStr(ic, "method")
	if !ok {
		r.showConfig(ctx, s, ic, func(cfg domain.GuildConfig) string {
			return fmt.Sprintf("El método de %s es **%s**.", label, current(cfg))
		})
		return
	}
	if !r.requirePerm(s, ic, discordgo.PermissionAdministrator) {
		return
	}
	cfg, err := set(ctx, ic.GuildID, raw)
	if err != nil {
		ReplyEphemeral(s, ic, errReply(err))
		return
	}
	ReplyEphemeral(s, ic, fmt.Sprintf("✅ Método de %s: **%s**.", label, current(cfg)))
}
