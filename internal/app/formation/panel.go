package formation

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const ReadyEmoji = "\u2705"

// NumberEmojis son las opciones numeradas de los menús (draft, bans y votación).
var NumberEmojis = []string{
	"1\ufe0f\u20e3", "2\ufe0f\u20e3", "3\ufe0f\u20e3", "4\ufe0f\u20e3", "5\ufe0f\u20e3",
	"6\ufe0f\u20e3", "7\ufe0f\u20e3", "8\ufe0f\u20e3", "9\ufe0f\u20e3", "\U0001f51f",
}

type Field struct {
	Name   string
	Value  string
	Inline bool
}

// View es lo que se dibuja en un panel; el adapter decide cómo (embed de Discord).
type View struct {
	Title        string
	Description  string
	Mentions     []string
	Fields       []Field
	Footer       string
	ImageURL     string
	ThumbnailURL string
}

// Messenger publica paneles en un canal.
type Messenger interface {
	Send(ctx context.Context, channelID string, v View) (Panel, error)
}

// Panel envuelve un mensaje ya publicado y las opciones (reacciones) que tiene.
type Panel interface {
	MessageID() string
	Edit(ctx context.Context, v View) error
	AddOptions(ctx context.Context, emojis ...string) error
	RemoveOption(ctx context.Context, emoji string) error
	ClearOptions(ctx context.Context) error
}

// NameResolver es opcional: si el Messenger lo implementa se usan los nombres visibles al pedir el server.
type NameResolver interface {
	DisplayNames(ctx context.Context, guildID string, userIDs []string) map[string]string
}

func mention(userID string) string { return "<@" + userID + ">" }

func mentionList(userIDs []string, sep string) string {
	parts := make([]string, len(userIDs))
	for i, id := range userIDs {
		parts[i] = mention(id)
	}
	return strings.Join(parts, sep)
}

func emojiIndex(emoji string) int {
	emoji = normalizeEmoji(emoji)
	for i, e := range NumberEmojis {
		if normalizeEmoji(e) == emoji {
			return i
		}
	}
	return -1
}

func numbered(i int, text string) string {
	return fmt.Sprintf("%s  %s", NumberEmojis[i], text)
}

// logPanel registra en debug un update de panel fallido que no corta la sesión.
// El logger viaja en el contexto (zerolog.Ctx); sin logger no hace nada.
func logPanel(ctx context.Context, op string, err error) {
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("op", op).Msg("panel update failed")
	}
}
