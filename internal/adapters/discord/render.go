package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/league-queue-bot/internal/app/formation"
	"github.com/jose-valero/league-queue-bot/internal/app/service"
	"github.com/jose-valero/league-queue-bot/internal/domain"
)

const (
	embedColor    = 0xF5A623
	leaderNameMax = 12
)

func viewEmbed(v formation.View) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       v.Title,
		Description: v.Description,
		Color:       embedColor,
	}
	for _, f := range v.Fields {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	if v.Footer != "" {
		e.Footer = &discordgo.MessageEmbedFooter{Text: v.Footer}
	}
	if v.ImageURL != "" {
		e.Image = &discordgo.MessageEmbedImage{URL: v.ImageURL}
	}
	if v.ThumbnailURL != "" {
		e.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: v.ThumbnailURL}
	}
	return e
}

// mentionContent va en el content del mensaje: las menciones dentro de un embed no notifican.
func mentionContent(userIDs []string) string {
	parts := make([]string, len(userIDs))
	for i, id := range userIDs {
		parts[i] = "<@" + id + ">"
	}
	return strings.Join(parts, " ")
}

func queueEmbed(title string, v service.QueueView) *discordgo.MessageEmbed {
	if title == "" {
		title = "Jugadores en cola"
	}
	desc := "_La cola está vacía..._"
	if len(v.Users) > 0 {
		var b strings.Builder
		for i, id := range v.Users {
			fmt.Fprintf(&b, "%d. <@%s>\n", i+1, id)
		}
		desc = b.String()
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s (%d/%d)", title, len(v.Users), v.Capacity),
		Description: desc,
		Color:       embedColor,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Los jugadores reciben una notificación cuando se llena la cola"},
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

func configEmbed(cfg domain.GuildConfig) *discordgo.MessageEmbed {
	maps, _ := domain.PoolMaps(cfg.MapPool)
	names := make([]string, len(maps))
	for i, m := range maps {
		names[i] = m.Name
	}
	return &discordgo.MessageEmbed{
		Title: "Configuración de la cola",
		Color: embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Capacidad", Value: fmt.Sprint(cfg.Capacity), Inline: true},
			{Name: "Equipos", Value: cfg.TeamMethod.String(), Inline: true},
			{Name: "Capitanes", Value: cfg.CaptainMethod.String(), Inline: true},
			{Name: "Mapa", Value: cfg.MapMethod.String(), Inline: true},
			{Name: "Pool", Value: strings.Join(names, ", ")},
		},
	}
}

func statsEmbed(name string, r domain.Rating) *discordgo.MessageEmbed {
	desc := "```ml\n" +
		fmt.Sprintf(" Puntaje:           %6d \n", r.Score) +
		fmt.Sprintf(" Partidas jugadas:  %6d \n", r.MatchesPlayed()) +
		fmt.Sprintf(" Victorias:         %6s \n", fmt.Sprintf("%.2f%%", r.WinPercent()*100)) +
		fmt.Sprintf(" K/D:               %6.2f ", r.KDRatio()) +
		"```"
	return &discordgo.MessageEmbed{
		Author:      &discordgo.MessageEmbedAuthor{Name: name},
		Description: desc,
		Color:       embedColor,
	}
}

type leaderRow struct {
	Name   string
	Rating domain.Rating
}

func leadersEmbed(rows []leaderRow) *discordgo.MessageEmbed {
	if len(rows) == 0 {
		return &discordgo.MessageEmbed{Title: "¡Nadie en este server tiene ranking!", Color: embedColor}
	}
	var b strings.Builder
	b.WriteString("```ml\n")
	fmt.Fprintf(&b, "    %-*s  %6s  %8s  %6s \n", leaderNameMax, "Jugador", "Score", "Winrate", "Jugó")
	for i, row := range rows {
		fmt.Fprintf(&b, " %d. %-*s  %6d  %8s  %6d \n",
			i+1, leaderNameMax, shorten(row.Name, leaderNameMax),
			row.Rating.Score, fmt.Sprintf("%.2f%%", row.Rating.WinPercent()*100), row.Rating.MatchesPlayed())
	}
	b.WriteString("```")
	return &discordgo.MessageEmbed{Title: "Tabla de posiciones", Description: b.String(), Color: embedColor}
}

// shorten corta a max runas dejando "..." al final.
func shorten(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
