package formation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/elliotchance/pie/v2"

	"github.com/jose-valero/league-queue-bot/internal/domain"
)

// banOrder devuelve qué capitán banea en cada turno para un pool de k mapas.
// Con k par se invierte para compensar quién hace el último ban.
func banOrder(k int) []int {
	order := make([]int, 0, k-1)
	for i := 0; i < k-1; i++ {
		if k%2 == 1 {
			order = append(order, i%2)
		} else {
			order = append(order, 1-i%2)
		}
	}
	return order
}

type banState struct {
	captains [2]string
	pool     []domain.Map
	left     []string // dev names
	order    []int
	index    int
}

func newBanState(captains [2]string, pool []domain.Map) *banState {
	s := &banState{captains: captains, pool: pool, order: banOrder(len(pool))}
	for _, m := range pool {
		s.left = append(s.left, m.DevName)
	}
	return s
}

func (s *banState) done() bool { return len(s.left) <= 1 }

func (s *banState) active() string { return s.captains[s.order[s.index]] }

func (s *banState) ban(userID, devName string) error {
	if s.done() {
		return pickErr(ReasonUnavailable, userID)
	}
	if userID != s.active() {
		if userID == s.captains[0] || userID == s.captains[1] {
			return pickErr(ReasonNotYourTurn, userID)
		}
		return pickErr(ReasonNotCaptain, userID)
	}
	if !pie.Contains(s.left, devName) {
		return pickErr(ReasonUnavailable, userID)
	}
	s.left = remove(s.left, devName)
	s.index++
	return nil
}

// MapBan corre el veto de mapas entre los dos capitanes.
type MapBan struct {
	hub     *Hub
	panel   Panel
	state   *banState
	timeout time.Duration
}

func NewMapBan(hub *Hub, panel Panel, captains [2]string, pool []domain.Map, timeout time.Duration) (*MapBan, error) {
	if len(pool) > len(NumberEmojis) {
		return nil, ErrRosterTooLarge
	}
	if len(pool) == 0 {
		return nil, domain.ErrInvalidConfig
	}
	return &MapBan{hub: hub, panel: panel, state: newBanState(captains, pool), timeout: timeout}, nil
}

// Bans es la cantidad de vetos aplicados.
func (b *MapBan) Bans() int { return b.state.index }

// Run bloquea hasta que quede un mapa. El timeout es un fallo duro (ErrTimedOut).
func (b *MapBan) Run(ctx context.Context) (domain.Map, error) {
	sub := b.hub.Subscribe(b.panel.MessageID())
	defer sub.Close()

	if b.state.done() {
		return b.result(), nil
	}
	if err := b.panel.Edit(ctx, b.view("¡Arrancó el veto de mapas!")); err != nil {
		return domain.Map{}, err
	}
	opts := make([]string, len(b.state.pool))
	for i := range b.state.pool {
		opts[i] = NumberEmojis[i]
	}
	if err := b.panel.AddOptions(ctx, opts...); err != nil {
		return domain.Map{}, err
	}

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return domain.Map{}, ctx.Err()
		case <-timer.C:
			sub.Close()
			return domain.Map{}, ErrTimedOut
		case r := <-sub.C:
			idx := emojiIndex(r.Emoji)
			if idx < 0 || idx >= len(b.state.pool) {
				continue
			}
			m := b.state.pool[idx]
			if err := b.state.ban(r.UserID, m.DevName); err != nil {
				if pe, ok := err.(*PickError); ok && pe.Reason == ReasonNotCaptain {
					continue
				}
				logPanel(ctx, "edit", b.panel.Edit(ctx, b.view(fmt.Sprintf("%s: %s", mention(r.UserID), err.Error()))))
				continue
			}
			if b.state.done() {
				sub.Close()
				logPanel(ctx, "clear_options", b.panel.ClearOptions(ctx))
				return b.result(), nil
			}
			logPanel(ctx, "remove_option", b.panel.RemoveOption(ctx, NumberEmojis[idx]))
			v := b.view(fmt.Sprintf("%s vetó **%s**", mention(r.UserID), m.Name))
			v.ThumbnailURL = m.IconURL()
			logPanel(ctx, "edit", b.panel.Edit(ctx, v))
		}
	}
}

func (b *MapBan) result() domain.Map {
	m, _ := domain.MapByDevName(b.state.left[0])
	return m
}

func (b *MapBan) view(title string) View {
	lines := make([]string, len(b.state.pool))
	for i, m := range b.state.pool {
		if pie.Contains(b.state.left, m.DevName) {
			lines[i] = numbered(i, m.Name)
		} else {
			lines[i] = fmt.Sprintf(":heavy_multiplication_x:  ~~%s~~", m.Name)
		}
	}
	v := View{Title: title, Description: strings.Join(lines, "\n")}
	if !b.state.done() {
		v.Fields = []Field{{Name: "Turno", Value: mention(b.state.active())}}
		v.Mentions = []string{b.state.active()}
		v.Footer = "Reacciona con el número del mapa para vetarlo"
	}
	return v
}
