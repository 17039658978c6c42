package discord

import (
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// unknown webhook: la interacción todavía no tiene respuesta diferida
const errUnknownWebhook = 10015

// Defer efímero (para trabajos >3s)
func DeferEphemeral(s *discordgo.Session, ic *discordgo.InteractionCreate) error {
	err := s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Warn().Err(err).Str("component", "discord").Msg("defer ephemeral")
	}
	return err
}

func ReplyEphemeral(s *discordgo.Session, ic *discordgo.InteractionCreate, content string, embeds ...*discordgo.MessageEmbed) {
	_, err := s.FollowupMessageCreate(ic.Interaction, true, &discordgo.WebhookParams{
		Content:         content,
		Embeds:          embeds,
		Flags:           discordgo.MessageFlagsEphemeral,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err == nil {
		return
	}

	// Fallback sólo si todavía no hay respuesta
	var reqErr *discordgo.RESTError
	if errors.As(err, &reqErr) && reqErr.Message != nil && reqErr.Message.Code == errUnknownWebhook {
		_ = s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: content,
				Flags:   discordgo.MessageFlagsEphemeral,
				Embeds:  embeds,
			},
		})
		return
	}
	log.Warn().Err(err).Str("component", "discord").Msg("reply ephemeral")
}

// ReplyPublic responde visible para todo el canal (stats, leaders).
func ReplyPublic(s *discordgo.Session, ic *discordgo.InteractionCreate, embeds ...*discordgo.MessageEmbed) {
	_, err := s.ChannelMessageSendComplex(ic.ChannelID, &discordgo.MessageSend{
		Embeds:          embeds,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err != nil {
		log.Warn().Err(err).Str("component", "discord").Str("channel", ic.ChannelID).Msg("reply public")
		ReplyEphemeral(s, ic, "", embeds...)
		return
	}
	ReplyEphemeral(s, ic, "👍")
}
