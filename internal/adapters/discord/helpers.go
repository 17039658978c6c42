package discord

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rotisserie/eris"
	"github.com/xhit/go-str2duration/v2"
)

// maxBanDuration es el tope de un ban con duración; para más, ban indefinido.
const maxBanDuration = 365 * 24 * time.Hour

var (
	reMention = regexp.MustCompile(`<@!?(\d+)>`)

	ErrBadDuration = eris.New("duration must look like 1d2h30m")
)

// parseIDs acepta menciones o IDs numéricos sueltos, sin repetidos.
func parseIDs(raw string) []string {
	ids := []string{}
	seen := map[string]bool{}
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, tok := range strings.Fields(raw) {
		for _, m := range reMention.FindAllStringSubmatch(tok, -1) {
			add(m[1])
		}
		if reMention.MatchString(tok) {
			continue
		}
		if _, err := strconv.ParseUint(tok, 10, 64); err == nil {
			add(tok)
		}
	}
	return ids
}

// parseBanDuration lee "1d2h30m" (también acepta w, h, m sueltos). Vacío = ban indefinido (0, nil).
// Rechaza menos de un minuto, negativos y más de maxBanDuration.
func parseBanDuration(raw string) (time.Duration, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return 0, nil
	}
	d, err := str2duration.ParseDuration(raw)
	if err != nil {
		return 0, eris.Wrapf(ErrBadDuration, "got %q", raw)
	}
	if d < time.Minute || d > maxBanDuration {
		return 0, eris.Wrapf(ErrBadDuration, "got %q (%s)", raw, d)
	}
	return d.Truncate(time.Minute), nil
}

func formatBanDuration(d time.Duration) string {
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	mins := int(d / time.Minute)

	var b strings.Builder
	if days > 0 {
		fmt.Fprintf(&b, "%dd", days)
	}
	if hours > 0 {
		fmt.Fprintf(&b, "%dh", hours)
	}
	if mins > 0 || b.Len() == 0 {
		fmt.Fprintf(&b, "%dm", mins)
	}
	return b.String()
}

func displayName(m *discordgo.Member) string {
	if m == nil {
		return ""
	}
	if m.Nick != "" {
		return m.Nick
	}
	if m.User == nil {
		return ""
	}
	if m.User.GlobalName != "" {
		return m.User.GlobalName
	}
	return m.User.Username
}

func optStr(ic *discordgo.InteractionCreate, name string) (string, bool) {
	for _, o := range ic.ApplicationCommandData().Options {
		if o.Name == name && o.Type == discordgo.ApplicationCommandOptionString {
			return o.StringValue(), true
		}
	}
	return "", false
}

func optInt(ic *discordgo.InteractionCreate, name string) (int, bool) {
	for _, o := range ic.ApplicationCommandData().Options {
		if o.Name == name && o.Type == discordgo.ApplicationCommandOptionInteger {
			return int(o.IntValue()), true
		}
	}
	return 0, false
}

// optUser devuelve el ID y, si Discord lo resolvió, el nombre visible.
func optUser(ic *discordgo.InteractionCreate, name string) (id, display string, ok bool) {
	data := ic.ApplicationCommandData()
	for _, o := range data.Options {
		if o.Name != name || o.Type != discordgo.ApplicationCommandOptionUser {
			continue
		}
		id = fmt.Sprint(o.Value)
		display = id
		if data.Resolved != nil {
			if u := data.Resolved.Users[id]; u != nil {
				display = displayName(&discordgo.Member{User: u})
			}
			if m := data.Resolved.Members[id]; m != nil && m.Nick != "" {
				display = m.Nick
			}
		}
		return id, display, true
	}
	return "", "", false
}
