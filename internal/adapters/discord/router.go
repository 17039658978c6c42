package discord

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/jose-valero/league-queue-bot/internal/app/formation"
	"github.com/jose-valero/league-queue-bot/internal/app/service"
	"github.com/jose-valero/league-queue-bot/internal/infra/storage"
)

const clickWindow = time.Second

// Intents que necesita el router: comandos, reacciones de los paneles y listado de miembros para leaders.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMessageReactions |
	discordgo.IntentsGuildMembers

// Lo implementa storage.UIRepo
type UIStore interface {
	Get(ctx context.Context, guildID string) (storage.PanelRef, error)
	Upsert(ctx context.Context, ref storage.PanelRef) error
	Delete(ctx context.Context, guildID string) error
}

type Settings struct {
	GuildIDs     []string // vacío = comandos globales
	AdminRoleIDs []string
}

type Router struct {
	s            *discordgo.Session
	guildIDs     []string
	adminRoleIDs []string

	queue    *service.QueueService
	config   *service.ConfigService
	stats    *service.StatsService
	hub      *formation.Hub
	registry *formation.Registry

	uiStorage    UIStore
	clickLimiter *userLimiter
	log          zerolog.Logger

	refreshMu     sync.Mutex
	refreshTimers map[string]*time.Timer
}

func NewRouter(
	s *discordgo.Session,
	settings Settings,
	queue *service.QueueService,
	config *service.ConfigService,
	stats *service.StatsService,
	hub *formation.Hub,
	registry *formation.Registry,
	uiStorage UIStore,
	log zerolog.Logger,
) *Router {
	return &Router{
		s:             s,
		guildIDs:      settings.GuildIDs,
		adminRoleIDs:  settings.AdminRoleIDs,
		queue:         queue,
		config:        config,
		stats:         stats,
		hub:           hub,
		registry:      registry,
		uiStorage:     uiStorage,
		clickLimiter:  newUserLimiter(clickWindow),
		log:           log,
		refreshTimers: map[string]*time.Timer{},
	}
}

// Register crea los slash commands en cada guild configurado, o globales si no hay ninguno.
func (r *Router) Register() error {
	appID := r.s.State.User.ID
	targets := r.guildIDs
	if len(targets) == 0 {
		targets = []string{""}
	}
	for _, guildID := range targets {
		for _, cmd := range Commands {
			if _, err := r.s.ApplicationCommandCreate(appID, guildID, cmd); err != nil {
				return eris.Wrapf(err, "register /%s in guild %q", cmd.Name, guildID)
			}
		}
		r.log.Info().Str("guild", guildID).Int("commands", len(Commands)).Msg("commands registered")
	}
	return nil
}

func (r *Router) Handlers() {
	r.s.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		if ic.GuildID == "" || ic.Member == nil || ic.Member.User == nil {
			return
		}
		switch ic.Type {
		case discordgo.InteractionApplicationCommand:
			r.handleSlashCommand(s, ic)
		case discordgo.InteractionMessageComponent:
			r.handleMessageComponent(s, ic)
		}
	})

	// reacciones → sesiones de formación (ready check, draft, bans, votación)
	r.s.AddHandler(func(s *discordgo.Session, mr *discordgo.MessageReactionAdd) {
		if s.State.User != nil && mr.UserID == s.State.User.ID {
			return
		}
		r.hub.Publish(reactionFrom(mr))
	})

	// Unavailable = caída de Discord, no es que nos hayan sacado del guild
	r.s.AddHandler(func(s *discordgo.Session, gd *discordgo.GuildDelete) {
		if gd.Guild == nil || gd.Unavailable {
			return
		}
		r.registry.Forget(gd.ID)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.config.Forget(ctx, gd.ID); err != nil {
			r.log.Warn().Err(err).Str("guild", gd.ID).Msg("forget guild config")
		}
		r.log.Info().Str("guild", gd.ID).Msg("removed from guild")
	})
}

// ---------- helpers ----------

func reactionFrom(mr *discordgo.MessageReactionAdd) formation.Reaction {
	return formation.Reaction{
		MessageID: mr.MessageID,
		Emoji:     mr.Emoji.Name,
		UserID:    mr.UserID,
	}
}
