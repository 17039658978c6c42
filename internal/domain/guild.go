package domain

import (
	"fmt"

	"github.com/rotisserie/eris"
)

const (
	MinCapacity = 2
	MaxCapacity = 100
	MinMapPool  = 3

	// MaxDraftRoster es el tope de jugadores para el draft de capitanes (un emoji numérico por jugador).
	MaxDraftRoster = 10
)

var ErrInvalidConfig = eris.New("invalid guild config")

type GuildConfig struct {
	GuildID       string
	Capacity      int
	TeamMethod    TeamMethod
	CaptainMethod CaptainMethod
	MapMethod     MapMethod
	MapPool       []string
}

func DefaultGuildConfig(guildID string) GuildConfig {
	pool := make([]string, len(DefaultMapPool))
	copy(pool, DefaultMapPool)
	return GuildConfig{
		GuildID:       guildID,
		Capacity:      10,
		TeamMethod:    TeamCaptains,
		CaptainMethod: CaptainVolunteer,
		MapMethod:     MapCaptains,
		MapPool:       pool,
	}
}

func (g GuildConfig) Validate() error {
	if g.Capacity < MinCapacity || g.Capacity > MaxCapacity {
		return eris.Wrapf(ErrInvalidConfig, "capacity %d out of range [%d,%d]", g.Capacity, MinCapacity, MaxCapacity)
	}
	if g.Capacity%2 != 0 {
		return eris.Wrapf(ErrInvalidConfig, "capacity %d must be even", g.Capacity)
	}
	if _, err := ParseTeamMethod(string(g.TeamMethod)); err != nil {
		return eris.Wrap(ErrInvalidConfig, err.Error())
	}
	if _, err := ParseCaptainMethod(string(g.CaptainMethod)); err != nil {
		return eris.Wrap(ErrInvalidConfig, err.Error())
	}
	if _, err := ParseMapMethod(string(g.MapMethod)); err != nil {
		return eris.Wrap(ErrInvalidConfig, err.Error())
	}
	if g.TeamMethod == TeamCaptains && g.Capacity > MaxDraftRoster {
		return eris.Wrapf(ErrInvalidConfig, "captain draft supports at most %d players", MaxDraftRoster)
	}
	maps, err := PoolMaps(g.MapPool)
	if err != nil {
		return eris.Wrap(ErrInvalidConfig, err.Error())
	}
	if len(maps) < MinMapPool {
		return eris.Wrapf(ErrInvalidConfig, "map pool needs at least %d maps", MinMapPool)
	}
	return nil
}

func (g GuildConfig) String() string {
	return fmt.Sprintf("capacity=%d teams=%s captains=%s maps=%s pool=%v",
		g.Capacity, g.TeamMethod, g.CaptainMethod, g.MapMethod, g.MapPool)
}
