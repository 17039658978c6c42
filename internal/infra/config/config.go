package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/rotisserie/eris"
)

type Config struct {
	DatabaseURL  string   `env:"DATABASE_URL,required"`
	DiscordToken string   `env:"DISCORD_BOT_TOKEN,required"`
	DiscordGuild []string `env:"DISCORD_GUILD_IDS" envSeparator:","` // vacío = comandos globales
	AdminRoleIDs []string `env:"DISCORD_ADMIN_ROLE_IDS" envSeparator:","`

	LeagueAPIURL        string `env:"LEAGUE_API_URL,required"`
	LeagueAPIKey        string `env:"LEAGUE_API_KEY,required"`
	LeagueWebURL        string `env:"LEAGUE_WEB_URL"`
	LeagueWebhookSecret string `env:"LEAGUE_WEBHOOK_SECRET"`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	RedisURL       string        `env:"REDIS_URL"`
	RatingCacheTTL time.Duration `env:"RATING_CACHE_TTL" envDefault:"5m"`

	ReadyTimeout      time.Duration `env:"READY_TIMEOUT" envDefault:"60s"`
	DraftTimeout      time.Duration `env:"DRAFT_TIMEOUT" envDefault:"600s"`
	BanTimeout        time.Duration `env:"BAN_TIMEOUT" envDefault:"600s"`
	VoteTimeout       time.Duration `env:"VOTE_TIMEOUT" envDefault:"60s"`
	MapVoteCandidates int           `env:"MAP_VOTE_CANDIDATES" envDefault:"0"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, eris.Wrap(err, "failed to parse environment")
	}
	for name, v := range map[string]string{
		"DATABASE_URL":      cfg.DatabaseURL,
		"DISCORD_BOT_TOKEN": cfg.DiscordToken,
		"LEAGUE_API_URL":    cfg.LeagueAPIURL,
		"LEAGUE_API_KEY":    cfg.LeagueAPIKey,
	} {
		if strings.TrimSpace(v) == "" {
			return Config{}, eris.Errorf("%s is empty", name)
		}
	}
	cfg.DiscordToken = botToken(cfg.DiscordToken)
	cfg.DiscordGuild = compact(cfg.DiscordGuild)
	cfg.AdminRoleIDs = compact(cfg.AdminRoleIDs)
	if cfg.MapVoteCandidates < 0 {
		return Config{}, eris.Errorf("MAP_VOTE_CANDIDATES must be >= 0, got %d", cfg.MapVoteCandidates)
	}
	return cfg, nil
}

// discordgo necesita el prefijo "Bot " en el token.
func botToken(t string) string {
	t = strings.TrimSpace(t)
	if t == "" || strings.HasPrefix(strings.ToLower(t), "bot ") {
		return t
	}
	return "Bot " + t
}

func compact(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
