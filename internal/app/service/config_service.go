package service

import (
	"context"
	"slices"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/rotisserie/eris"

	"github.com/jose-valero/league-queue-bot/internal/domain"
)

var (
	ErrUnchanged  = eris.New("value already set")
	ErrPoolSyntax = eris.New("map pool edits must look like +de_map or -de_map")
)

// ConfigService maneja los comandos de admin que cambian la configuración del guild.
type ConfigService struct {
	guilds GuildRepo
	queue  QueueRepo
	locks  *GuildLocks
}

// locks tiene que ser el mismo que usa QueueService: SetCapacity vacía la cola y no puede
// intercalarse con un Join del mismo guild.
func NewConfigService(guilds GuildRepo, queue QueueRepo, locks *GuildLocks) *ConfigService {
	if locks == nil {
		locks = NewGuildLocks()
	}
	return &ConfigService{guilds: guilds, queue: queue, locks: locks}
}

func (s *ConfigService) Show(ctx context.Context, guildID string) (domain.GuildConfig, error) {
	return s.guilds.Get(ctx, guildID)
}

// SetCapacity cambia la capacidad y vacía la cola para no disparar bursts con la capacidad vieja.
// Devuelve cuántos usuarios salieron de la cola.
func (s *ConfigService) SetCapacity(ctx context.Context, guildID string, capacity int) (int, error) {
	var emptied int
	err := s.update(ctx, guildID, func(cfg *domain.GuildConfig) error {
		if cfg.Capacity == capacity {
			return ErrUnchanged
		}
		cfg.Capacity = capacity
		if err := cfg.Validate(); err != nil {
			return err
		}
		removed, err := s.queue.DeleteAll(ctx, guildID)
		if err != nil {
			return err
		}
		emptied = len(removed)
		return nil
	})
	return emptied, err
}

func (s *ConfigService) SetTeamMethod(ctx context.Context, guildID, raw string) (domain.GuildConfig, error) {
	m, err := domain.ParseTeamMethod(raw)
	if err != nil {
		return domain.GuildConfig{}, err
	}
	return s.set(ctx, guildID, func(cfg *domain.GuildConfig) bool {
		if cfg.TeamMethod == m {
			return false
		}
		cfg.TeamMethod = m
		return true
	})
}

func (s *ConfigService) SetCaptainMethod(ctx context.Context, guildID, raw string) (domain.GuildConfig, error) {
	m, err := domain.ParseCaptainMethod(raw)
	if err != nil {
		return domain.GuildConfig{}, err
	}
	return s.set(ctx, guildID, func(cfg *domain.GuildConfig) bool {
		if cfg.CaptainMethod == m {
			return false
		}
		cfg.CaptainMethod = m
		return true
	})
}

func (s *ConfigService) SetMapMethod(ctx context.Context, guildID, raw string) (domain.GuildConfig, error) {
	m, err := domain.ParseMapMethod(raw)
	if err != nil {
		return domain.GuildConfig{}, err
	}
	return s.set(ctx, guildID, func(cfg *domain.GuildConfig) bool {
		if cfg.MapMethod == m {
			return false
		}
		cfg.MapMethod = m
		return true
	})
}

// EditMapPool aplica ediciones "+de_x" / "-de_y" sobre el pool actual.
func (s *ConfigService) EditMapPool(ctx context.Context, guildID string, edits []string) (domain.GuildConfig, error) {
	add, del, err := parsePoolEdits(edits)
	if err != nil {
		return domain.GuildConfig{}, err
	}
	return s.set(ctx, guildID, func(cfg *domain.GuildConfig) bool {
		next := pie.Filter(cfg.MapPool, func(dn string) bool { return !pie.Contains(del, dn) })
		next = append(next, add...)
		if norm, err := domain.NormalizePool(next); err == nil {
			next = norm
		}
		if slices.Equal(next, cfg.MapPool) {
			return false
		}
		cfg.MapPool = next
		return true
	})
}

func parsePoolEdits(edits []string) (add, del []string, err error) {
	for _, e := range edits {
		e = strings.ToLower(strings.TrimSpace(e))
		if len(e) < 2 || (e[0] != '+' && e[0] != '-') {
			return nil, nil, eris.Wrapf(ErrPoolSyntax, "edit %q", e)
		}
		dn := e[1:]
		if _, ok := domain.MapByDevName(dn); !ok {
			return nil, nil, eris.Wrapf(domain.ErrUnknownMap, "map %q", dn)
		}
		if e[0] == '+' {
			add = append(add, dn)
		} else {
			del = append(del, dn)
		}
	}
	return add, del, nil
}

// Forget borra la configuración del guild (y en cascada su cola, bans y panel) cuando el bot sale.
func (s *ConfigService) Forget(ctx context.Context, guildID string) error {
	unlock := s.locks.lock(guildID)
	defer unlock()
	return s.guilds.Delete(ctx, guildID)
}

// ---------- helpers ----------

// set aplica un cambio, valida y persiste; ErrUnchanged si no hubo cambio.
func (s *ConfigService) set(ctx context.Context, guildID string, apply func(*domain.GuildConfig) bool) (domain.GuildConfig, error) {
	var out domain.GuildConfig
	err := s.update(ctx, guildID, func(cfg *domain.GuildConfig) error {
		if !apply(cfg) {
			return ErrUnchanged
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		out = *cfg
		return nil
	})
	return out, err
}

func (s *ConfigService) update(ctx context.Context, guildID string, fn func(*domain.GuildConfig) error) error {
	unlock := s.locks.lock(guildID)
	defer unlock()

	cfg, err := s.guilds.Get(ctx, guildID)
	if err != nil {
		return err
	}
	if err := fn(&cfg); err != nil {
		return err
	}
	return s.guilds.Upsert(ctx, cfg)
}
