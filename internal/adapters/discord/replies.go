package discord

import (
	"errors"
	"fmt"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/rotisserie/eris"

	"github.com/jose-valero/league-queue-bot/internal/app/service"
	"github.com/jose-valero/league-queue-bot/internal/domain"
)

func joinReply(res service.JoinResult) string {
	switch res.Status {
	case service.JoinAdded:
		if res.Burst {
			return "✅ Entraste a la cola. ¡Cola llena! Reacciona al ready check."
		}
		return fmt.Sprintf("✅ Entraste a la cola (%d/%d).", len(res.Queue), res.Capacity)
	case service.JoinAlreadyQueued:
		return "ℹ️ Ya estás en la cola."
	case service.JoinQueueFull:
		return "⛔ La cola está llena."
	case service.JoinNotLinked:
		return "🔗 Tu cuenta no está vinculada con la liga."
	case service.JoinAlreadyInMatch:
		return "🎮 Ya estás en una partida."
	case service.JoinBanned:
		if res.Until == nil {
			return "🚫 Estás baneado de la cola indefinidamente."
		}
		return fmt.Sprintf("🚫 Estás baneado de la cola hasta <t:%d:f>.", res.Until.Unix())
	}
	return "⚠️ No se pudo unir a la cola."
}

// errReply traduce los errores de los servicios a texto para el usuario.
func errReply(err error) string {
	var me *domain.MethodError
	switch {
	case eris.Is(err, service.ErrForbidden):
		return "🔒 No tienes permisos para esta acción."
	case eris.Is(err, service.ErrUnchanged):
		return "ℹ️ Ese valor ya estaba configurado."
	case eris.Is(err, service.ErrPoolSyntax):
		return "⚠️ Usa `+de_mapa` para agregar o `-de_mapa` para quitar."
	case eris.Is(err, domain.ErrUnknownMap):
		names := pie.Map(domain.Catalog, func(m domain.Map) string { return m.DevName })
		return "⚠️ Mapa desconocido. Disponibles: " + strings.Join(names, ", ")
	case eris.Is(err, domain.ErrInvalidConfig):
		return "⚠️ Configuración inválida: " + err.Error()
	case errors.As(err, &me):
		return fmt.Sprintf("⚠️ Método desconocido: %q", me.Value)
	case eris.Is(err, ErrBadDuration):
		return "⚠️ Duración inválida, usa algo como `1d2h30m`."
	case eris.Is(err, domain.ErrNotLinked):
		return "🔗 Esa cuenta no está vinculada con la liga."
	}
	return "⚠️ Ocurrió un error, intenta de nuevo."
}
