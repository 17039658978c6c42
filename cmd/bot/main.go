package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	discordrouter "github.com/jose-valero/league-queue-bot/internal/adapters/discord"
	"github.com/jose-valero/league-queue-bot/internal/adapters/httpapi"
	"github.com/jose-valero/league-queue-bot/internal/adapters/league"
	"github.com/jose-valero/league-queue-bot/internal/app/formation"
	"github.com/jose-valero/league-queue-bot/internal/app/service"
	"github.com/jose-valero/league-queue-bot/internal/infra/cache"
	"github.com/jose-valero/league-queue-bot/internal/infra/config"
	"github.com/jose-valero/league-queue-bot/internal/infra/logging"
	"github.com/jose-valero/league-queue-bot/internal/infra/metrics"
	"github.com/jose-valero/league-queue-bot/internal/infra/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Setup("info")
		log.Fatal().Err(err).Msg("config")
	}
	logging.Setup(cfg.LogLevel)
	mainLog := logging.Component("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		mainLog.Fatal().Err(err).Msg("db")
	}
	defer db.Close()
	if err := storage.Migrate(ctx, db, logging.Component("migrate")); err != nil {
		mainLog.Fatal().Err(err).Msg("migrate")
	}
	mainLog.Info().Msg("✅ DB lista y migrada")

	// Repos
	queueRepo := storage.NewQueueRepo(db)
	banRepo := storage.NewBanRepo(db)
	guildRepo := storage.NewGuildRepo(db)
	uiRepo := storage.NewUIRepo(db)
	matchRepo := storage.NewMatchRepo(db)

	// API de la liga, con cache de ratings si hay Redis
	leagueClient := league.New(cfg.LeagueAPIURL, cfg.LeagueAPIKey, league.WithLogger(logging.Component("league")))
	var ratings formation.RatingSource = leagueClient
	var invalidator service.RatingInvalidator
	if cfg.RedisURL != "" {
		rdb, err := cache.Dial(ctx, cfg.RedisURL)
		if err != nil {
			mainLog.Warn().Err(err).Msg("rating cache disabled")
		} else {
			defer rdb.Close()
			rc := cache.NewRatingCache(rdb, leagueClient, cfg.RatingCacheTTL, logging.Component("cache"))
			ratings, invalidator = rc, rc
		}
	}

	// Métricas
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(registry)

	// Discord session (antes de la formación, que publica los paneles)
	s, err := discordgo.New(cfg.DiscordToken)
	if err != nil {
		mainLog.Fatal().Err(err).Msg("discord session")
	}
	s.Identify.Intents = discordrouter.Intents

	hub := formation.NewHub()
	orch := formation.NewOrchestrator(
		formation.Deps{
			Hub:       hub,
			Messenger: discordrouter.NewMessenger(s, logging.Component("panels")),
			Configs:   guildRepo,
			Ratings:   ratings,
			Matches:   leagueClient,
			Queue:     queueRepo,
			Records:   matchRepo,
		},
		formation.WithTimeouts(formation.Timeouts{
			Ready: cfg.ReadyTimeout,
			Draft: cfg.DraftTimeout,
			Ban:   cfg.BanTimeout,
			Vote:  cfg.VoteTimeout,
		}),
		formation.WithVoteCandidates(cfg.MapVoteCandidates),
		formation.WithWebURL(cfg.LeagueWebURL),
		formation.WithSeed(time.Now().UnixNano()),
		formation.WithMetrics(m),
		formation.WithLogger(logging.Component("formation")),
	)
	defer orch.Close()

	// Services
	locks := service.NewGuildLocks()
	queueSvc := service.NewQueueService(leagueClient, queueRepo, banRepo, guildRepo, orch, locks, m, logging.Component("queue"))
	configSvc := service.NewConfigService(guildRepo, queueRepo, locks)
	statsSvc := service.NewStatsService(leagueClient, ratings)
	matchSvc := service.NewMatchService(matchRepo, invalidator, logging.Component("matches"))

	// una cola que se llenó durante otra formación arranca cuando esa termina
	orch.SetIdleHook(func(guildID, channelID string) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := queueSvc.TryBurst(ctx, guildID, channelID); err != nil {
			mainLog.Warn().Err(err).Str("guild", guildID).Msg("deferred burst")
		}
	})

	// HTTP: webhook de la liga, healthz y métricas
	web := httpapi.New(cfg.LeagueWebhookSecret, matchSvc, db, registry, logging.Component("http"))
	go func() {
		if err := web.Run(ctx, cfg.HTTPAddr); err != nil {
			mainLog.Error().Err(err).Msg("http")
		}
	}()

	// Router
	r := discordrouter.NewRouter(
		s,
		discordrouter.Settings{GuildIDs: cfg.DiscordGuild, AdminRoleIDs: cfg.AdminRoleIDs},
		queueSvc,
		configSvc,
		statsSvc,
		hub,
		orch.Registry(),
		uiRepo,
		logging.Component("discord"),
	)
	r.Handlers()

	if err := s.Open(); err != nil {
		mainLog.Fatal().Err(err).Msg("discord open")
	}
	defer s.Close()
	mainLog.Info().Str("user", s.State.User.Username).Str("id", s.State.User.ID).Msg("✅ conectado")

	if err := r.Register(); err != nil {
		mainLog.Fatal().Err(err).Msg("registrando comandos")
	}

	// Esperar señal
	<-ctx.Done()
	mainLog.Info().Msg("apagando")
}
