package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/elliotchance/pie/v2"
)

// memberHasPerm: dueño del guild, bit Administrator, el permiso pedido o alguno de los roles de admin del bot.
func memberHasPerm(m *discordgo.Member, ownerID string, perm int64, adminRoleIDs []string) bool {
	if m == nil || m.User == nil {
		return false
	}
	if ownerID != "" && m.User.ID == ownerID {
		return true
	}
	if m.Permissions&discordgo.PermissionAdministrator != 0 || m.Permissions&perm == perm {
		return true
	}
	return pie.FindFirstUsing(m.Roles, func(rid string) bool { return pie.Contains(adminRoleIDs, rid) }) >= 0
}

func (r *Router) hasPerm(s *discordgo.Session, ic *discordgo.InteractionCreate, perm int64) bool {
	ownerID := ""
	if g, _ := s.State.Guild(ic.GuildID); g != nil {
		ownerID = g.OwnerID
	}
	return memberHasPerm(ic.Member, ownerID, perm, r.adminRoleIDs)
}

// requirePerm responde al usuario si le falta el permiso.
func (r *Router) requirePerm(s *discordgo.Session, ic *discordgo.InteractionCreate, perm int64) bool {
	if r.hasPerm(s, ic, perm) {
		return true
	}
	ReplyEphemeral(s, ic, "🔒 No tienes permisos para esta acción.")
	return false
}
