package league

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/jose-valero/league-queue-bot/internal/domain"
)

// flexInt acepta números, strings numéricos y null (la API mezcla los tres).
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

// flexString acepta ids como string o número.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

// --- Players ---
type playerDTO struct {
	ID          flexString `json:"id"`
	Steam       flexString `json:"steam"`
	Discord     flexString `json:"discord"`
	DiscordName string     `json:"discord_name"`
	Score       flexInt    `json:"score"`
	Kills       flexInt    `json:"kills"`
	Deaths      flexInt    `json:"deaths"`
	Assists     flexInt    `json:"assists"`
	MatchWin    flexInt    `json:"match_win"`
	MatchDraw   flexInt    `json:"match_draw"`
	MatchLose   flexInt    `json:"match_lose"`
	InMatch     bool       `json:"inMatch"`
}

func (p playerDTO) toDomain() domain.Rating {
	return domain.Rating{
		UserID:    string(p.Discord),
		SteamID:   string(p.Steam),
		Name:      p.DiscordName,
		Score:     int(p.Score),
		Kills:     int(p.Kills),
		Deaths:    int(p.Deaths),
		Assists:   int(p.Assists),
		MatchWin:  int(p.MatchWin),
		MatchDraw: int(p.MatchDraw),
		MatchLose: int(p.MatchLose),
		InMatch:   p.InMatch,
	}
}

type playersRequest struct {
	DiscordIDs []string `json:"discordIds"`
}

// --- Matches ---
type startMatchRequest struct {
	TeamOne map[string]string `json:"team_one"`
	TeamTwo map[string]string `json:"team_two"`
	Maps    string            `json:"maps,omitempty"`
}

type matchServerDTO struct {
	MatchID flexString `json:"match_id"`
	IP      string     `json:"ip"`
	Port    flexInt    `json:"port"`
}
