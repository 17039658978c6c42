package formation

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/jose-valero/league-queue-bot/internal/domain"
)

func readyView(roster []string, timeout time.Duration) View {
	return View{
		Title:       "¡La cola se llenó! Confirma que estás listo",
		Description: mentionList(roster, "\n"),
		Mentions:    roster,
		Footer:      fmt.Sprintf("Reacciona con %s dentro de %s", ReadyEmoji, timeout.Round(time.Second)),
	}
}

func notReadyView(unready []string) View {
	lines := make([]string, len(unready))
	for i, id := range unready {
		lines[i] = ":heavy_multiplication_x:  " + mention(id)
	}
	return View{
		Title:       "¡No todos estaban listos!",
		Description: strings.Join(lines, "\n"),
		Footer:      "Los jugadores que faltaron fueron sacados de la cola",
	}
}

func supersededView() View {
	return View{Title: "Ready check cancelado", Description: "Se llenó una cola nueva antes de que todos confirmaran."}
}

func problemView(err error) View {
	switch {
	case eris.Is(err, domain.ErrNoServer):
		return View{Title: "No hay servidores disponibles", Description: "Intenta más tarde."}
	case eris.Is(err, ErrTimedOut):
		return View{Title: "Se acabó el tiempo", Description: "La formación se canceló. Vuelvan a entrar a la cola."}
	default:
		return View{Title: "Hubo un problema armando la partida", Description: "Intenta más tarde."}
	}
}

func teamFields(teams Teams) []Field {
	return []Field{
		{Name: "Equipo 1", Value: mentionList(teams[0], "\n"), Inline: true},
		{Name: "Equipo 2", Value: mentionList(teams[1], "\n"), Inline: true},
	}
}

func teamsView(title string, teams Teams) View {
	return View{Title: title, Fields: teamFields(teams)}
}

func fetchingView(teams Teams, m domain.Map) View {
	return View{
		Title:        "Buscando servidor...",
		Fields:       teamFields(teams),
		ThumbnailURL: m.IconURL(),
	}
}

func serverView(server domain.MatchServer, teams Teams, m domain.Map, webURL string) View {
	desc := fmt.Sprintf("URL: %s\nComando: `%s`", server.ConnectURL(), server.ConnectCommand())
	if page := server.MatchPage(webURL); page != "" {
		desc += "\nPartida: " + page
	}
	return View{
		Title:       fmt.Sprintf("¡Servidor listo! Mapa: %s", m.Name),
		Description: desc,
		Mentions:    append(append([]string(nil), teams[0]...), teams[1]...),
		Fields:      teamFields(teams),
		ImageURL:    m.ImageURL(),
		Footer:      "El servidor se cierra si no se conectan en 5 minutos",
	}
}
