package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/league-queue-bot/internal/domain"
)

var noDM = false

var Commands = []*discordgo.ApplicationCommand{
	{Name: "join", Description: "Unirte a la cola", DMPermission: &noDM},
	{Name: "leave", Description: "Salir de la cola", DMPermission: &noDM},
	{Name: "view", Description: "Ver quién está en la cola", DMPermission: &noDM},
	{
		Name:         "remove",
		Description:  "Sacar a un jugador de la cola (requiere permiso de kick)",
		DMPermission: &noDM,
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "Jugador a sacar",
			Required:    true,
		}},
	},
	{Name: "empty", Description: "Vaciar la cola (requiere permiso de kick)", DMPermission: &noDM},
	{
		Name:         "cap",
		Description:  "Ver o cambiar la capacidad de la cola (admins)",
		DMPermission: &noDM,
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "capacity",
			Description: "Nueva capacidad (par, entre 2 y 100)",
		}},
	},
	{
		Name:         "ban",
		Description:  "Banear jugadores de la cola (requiere permiso de ban)",
		DMPermission: &noDM,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "users",
				Description: "Menciones de los jugadores",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "duration",
				Description: "Duración tipo 1d2h30m (vacío = indefinido)",
			},
		},
	},
	{
		Name:         "unban",
		Description:  "Quitar el ban de la cola (requiere permiso de ban)",
		DMPermission: &noDM,
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "users",
			Description: "Menciones de los jugadores",
			Required:    true,
		}},
	},
	methodCommand("teams", "Ver o cambiar cómo se arman los equipos (admins)", domain.TeamMethods),
	methodCommand("captains", "Ver o cambiar cómo se eligen los capitanes (admins)", domain.CaptainMethods),
	methodCommand("maps", "Ver o cambiar cómo se elige el mapa (admins)", domain.MapMethods),
	{
		Name:         "mpool",
		Description:  "Ver o editar el pool de mapas (admins)",
		DMPermission: &noDM,
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "edits",
			Description: "Ej: +de_vertigo -de_train",
		}},
	},
	{
		Name:         "stats",
		Description:  "Ver las estadísticas de la liga",
		DMPermission: &noDM,
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "Jugador (por defecto vos)",
		}},
	},
	{Name: "leaders", Description: "Top 5 del server", DMPermission: &noDM},
}

func methodCommand[M ~string](name, desc string, methods []M) *discordgo.ApplicationCommand {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(methods))
	for i, m := range methods {
		choices[i] = &discordgo.ApplicationCommandOptionChoice{Name: string(m), Value: string(m)}
	}
	return &discordgo.ApplicationCommand{
		Name:         name,
		Description:  desc,
		DMPermission: &noDM,
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "method",
			Description: "Método",
			Choices:     choices,
		}},
	}
}
