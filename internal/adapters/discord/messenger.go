package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/jose-valero/league-queue-bot/internal/app/formation"
)

// Messenger publica los paneles de la formación (ready check, draft, bans, votación, servidor).
type Messenger struct {
	s   *discordgo.Session
	log zerolog.Logger
}

func NewMessenger(s *discordgo.Session, log zerolog.Logger) *Messenger {
	return &Messenger{s: s, log: log}
}

func (m *Messenger) Send(ctx context.Context, channelID string, v formation.View) (formation.Panel, error) {
	msg, err := m.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:         mentionContent(v.Mentions),
		Embeds:          []*discordgo.MessageEmbed{viewEmbed(v)},
		AllowedMentions: &discordgo.MessageAllowedMentions{Users: v.Mentions},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, eris.Wrapf(err, "send panel to channel %s", channelID)
	}
	return &panel{s: m.s, channelID: channelID, messageID: msg.ID}, nil
}

// DisplayNames resuelve apodos del guild; los que no se encuentran quedan afuera del mapa.
func (m *Messenger) DisplayNames(ctx context.Context, guildID string, userIDs []string) map[string]string {
	return memberNames(ctx, m.s, guildID, userIDs)
}

type panel struct {
	s         *discordgo.Session
	channelID string
	messageID string
}

func (p *panel) MessageID() string { return p.messageID }

func (p *panel) Edit(ctx context.Context, v formation.View) error {
	content := mentionContent(v.Mentions)
	embeds := []*discordgo.MessageEmbed{viewEmbed(v)}
	_, err := p.s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:         p.channelID,
		ID:              p.messageID,
		Content:         &content,
		Embeds:          &embeds,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}, discordgo.WithContext(ctx))
	return eris.Wrapf(err, "edit panel %s", p.messageID)
}

// AddOptions agrega las reacciones en orden; Discord no garantiza el orden si van en paralelo.
func (p *panel) AddOptions(ctx context.Context, emojis ...string) error {
	for _, e := range emojis {
		if err := p.s.MessageReactionAdd(p.channelID, p.messageID, e, discordgo.WithContext(ctx)); err != nil {
			return eris.Wrapf(err, "add reaction %s to %s", e, p.messageID)
		}
	}
	return nil
}

func (p *panel) RemoveOption(ctx context.Context, emoji string) error {
	err := p.s.MessageReactionsRemoveEmoji(p.channelID, p.messageID, emoji, discordgo.WithContext(ctx))
	return eris.Wrapf(err, "remove reaction %s from %s", emoji, p.messageID)
}

func (p *panel) ClearOptions(ctx context.Context) error {
	err := p.s.MessageReactionsRemoveAll(p.channelID, p.messageID, discordgo.WithContext(ctx))
	return eris.Wrapf(err, "clear reactions of %s", p.messageID)
}

// ---------- helpers ----------

func memberNames(ctx context.Context, s *discordgo.Session, guildID string, userIDs []string) map[string]string {
	out := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		m, err := s.State.Member(guildID, id)
		if err != nil || m == nil {
			m, err = s.GuildMember(guildID, id, discordgo.WithContext(ctx))
			if err != nil {
				continue
			}
			_ = s.State.MemberAdd(m)
		}
		if name := displayName(m); name != "" {
			out[id] = name
		}
	}
	return out
}
