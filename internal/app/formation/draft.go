package formation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/elliotchance/pie/v2"

	"github.com/jose-valero/league-queue-bot/internal/domain"
)

// snakeTeam devuelve qué equipo elige en el pick i: 1,2,2,1,1,2,2,1...
func snakeTeam(i int) int {
	switch i % 4 {
	case 0, 3:
		return 0
	default:
		return 1
	}
}

// draftState es el estado puro del draft, sin I/O. Lo usa una sola goroutine.
type draftState struct {
	roster    []string
	teams     Teams
	left      []string
	pickIndex int
	picks     int
	volunteer bool
}

// newDraftState arma el draft; captains debe tener 0 (voluntarios) o 2 usuarios.
func newDraftState(roster, captains []string) *draftState {
	d := &draftState{roster: roster, volunteer: len(captains) == 0}
	for _, id := range roster {
		if !pie.Contains(captains, id) {
			d.left = append(d.left, id)
		}
	}
	for i, c := range captains {
		d.teams[i] = []string{c}
	}
	d.autoAssign()
	return d
}

func (d *draftState) teamSize() int { return len(d.roster) / 2 }

func (d *draftState) done() bool { return len(d.left) == 0 }

func (d *draftState) openCaptainSlot() int {
	for i, t := range d.teams {
		if len(t) == 0 {
			return i
		}
	}
	return -1
}

func (d *draftState) captainOf(userID string) int {
	for i, t := range d.teams {
		if len(t) > 0 && t[0] == userID {
			return i
		}
	}
	return -1
}

// activePicker es el capitán al que le toca; vacío mientras falte un capitán.
func (d *draftState) activePicker() string {
	if d.openCaptainSlot() >= 0 {
		return ""
	}
	return d.teams[snakeTeam(d.pickIndex)][0]
}

type pickOutcome struct {
	Captain bool // el usuario tomó un lugar de capitán
	Team    int
	UserID  string
}

// pick aplica las reglas en orden; un error nunca cambia el estado.
func (d *draftState) pick(picker, pickee string) (pickOutcome, error) {
	if !pie.Contains(d.roster, picker) {
		return pickOutcome{}, pickErr(ReasonNotInSession, picker)
	}
	if slot := d.openCaptainSlot(); slot >= 0 && d.volunteer {
		// voluntario: el primero que actúe sin ser capitán toma el lugar
		if !pie.Contains(d.left, picker) {
			return pickOutcome{}, pickErr(ReasonNotYourTurn, picker)
		}
		d.left = remove(d.left, picker)
		d.teams[slot] = []string{picker}
		d.autoAssign()
		return pickOutcome{Captain: true, Team: slot, UserID: picker}, nil
	}
	if picker == pickee {
		return pickOutcome{}, pickErr(ReasonPickSelf, picker)
	}
	if !pie.Contains(d.left, pickee) {
		return pickOutcome{}, pickErr(ReasonUnavailable, picker)
	}
	if active := d.activePicker(); picker != active {
		if d.captainOf(picker) >= 0 {
			return pickOutcome{}, pickErr(ReasonNotYourTurn, picker)
		}
		return pickOutcome{}, pickErr(ReasonNotCaptain, picker)
	}
	t := snakeTeam(d.pickIndex)
	if len(d.teams[t]) >= d.teamSize() {
		return pickOutcome{}, pickErr(ReasonTeamFull, picker)
	}

	d.left = remove(d.left, pickee)
	d.teams[t] = append(d.teams[t], pickee)
	d.pickIndex++
	d.picks++
	d.autoAssign()
	return pickOutcome{Team: t, UserID: pickee}, nil
}

// autoAssign manda al último jugador sin equipo al equipo más chico (empate: equipo uno).
func (d *draftState) autoAssign() {
	if len(d.left) != 1 {
		return
	}
	t := 0
	if len(d.teams[1]) < len(d.teams[0]) {
		t = 1
	}
	d.teams[t] = append(d.teams[t], d.left[0])
	d.left = nil
	d.picks++
}

func remove(ids []string, id string) []string {
	return pie.Filter(ids, func(s string) bool { return s != id })
}

// Draft corre el draft de capitanes sobre un panel.
type Draft struct {
	hub     *Hub
	panel   Panel
	state   *draftState
	timeout time.Duration
	emojis  map[string]string // userID -> emoji
}

func NewDraft(hub *Hub, panel Panel, roster, captains []string, timeout time.Duration) (*Draft, error) {
	if len(roster)%2 != 0 {
		return nil, domain.ErrOddRoster
	}
	if len(roster) > len(NumberEmojis) {
		return nil, ErrRosterTooLarge
	}
	d := &Draft{
		hub:     hub,
		panel:   panel,
		state:   newDraftState(roster, captains),
		timeout: timeout,
		emojis:  map[string]string{},
	}
	for i, id := range roster {
		d.emojis[id] = NumberEmojis[i]
	}
	return d, nil
}

// Picks cuenta los picks hechos, incluida la asignación automática del último.
func (d *Draft) Picks() int { return d.state.picks }

// Run bloquea hasta que no queden jugadores. El timeout es un fallo duro (ErrTimedOut).
func (d *Draft) Run(ctx context.Context) (Teams, error) {
	sub := d.hub.Subscribe(d.panel.MessageID())
	defer sub.Close()

	if err := d.panel.Edit(ctx, d.view("¡Arrancó el draft!")); err != nil {
		return Teams{}, err
	}
	if d.state.done() {
		return d.state.teams, nil
	}
	if err := d.panel.AddOptions(ctx, d.optionsLeft()...); err != nil {
		return Teams{}, err
	}

	timer := time.NewTimer(d.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return Teams{}, ctx.Err()
		case <-timer.C:
			sub.Close()
			return Teams{}, ErrTimedOut
		case r := <-sub.C:
			title, changed := d.handle(r)
			if title == "" {
				continue
			}
			if d.state.done() {
				sub.Close()
				logPanel(ctx, "clear_options", d.panel.ClearOptions(ctx))
				logPanel(ctx, "edit", d.panel.Edit(ctx, d.view("¡Equipos listos!")))
				return d.state.teams, nil
			}
			for _, id := range changed {
				logPanel(ctx, "remove_option", d.panel.RemoveOption(ctx, d.emojis[id]))
			}
			logPanel(ctx, "edit", d.panel.Edit(ctx, d.view(title)))
		}
	}
}

// handle procesa una reacción y devuelve el título a mostrar y los usuarios que salieron del pool.
func (d *Draft) handle(r Reaction) (string, []string) {
	idx := emojiIndex(r.Emoji)
	if idx < 0 || idx >= len(d.state.roster) {
		return "", nil
	}
	pickee := d.state.roster[idx]
	before := append([]string(nil), d.state.left...)

	out, err := d.state.pick(r.UserID, pickee)
	if err != nil {
		if pe, ok := err.(*PickError); ok && pe.Reason == ReasonNotInSession {
			return "", nil
		}
		return fmt.Sprintf("%s: %s", mention(r.UserID), err.Error()), nil
	}

	gone := pie.Filter(before, func(id string) bool { return !pie.Contains(d.state.left, id) })
	if out.Captain {
		return fmt.Sprintf("%s es capitán del equipo %d", mention(out.UserID), out.Team+1), gone
	}
	return fmt.Sprintf("%s eligió a %s", mention(r.UserID), mention(out.UserID)), gone
}

func (d *Draft) optionsLeft() []string {
	out := make([]string, 0, len(d.state.left))
	for _, id := range d.state.roster {
		if pie.Contains(d.state.left, id) {
			out = append(out, d.emojis[id])
		}
	}
	return out
}

func (d *Draft) view(title string) View {
	v := View{Title: title}
	for i, team := range d.state.teams {
		name := fmt.Sprintf("Equipo %d", i+1)
		val := "_sin capitán_"
		if len(team) > 0 {
			val = mentionList(team, "\n")
		}
		v.Fields = append(v.Fields, Field{Name: name, Value: val, Inline: true})
	}
	var pool []string
	for i, id := range d.state.roster {
		if pie.Contains(d.state.left, id) {
			pool = append(pool, numbered(i, mention(id)))
		}
	}
	if len(pool) > 0 {
		v.Fields = append(v.Fields, Field{Name: "Jugadores", Value: strings.Join(pool, "\n")})
	}
	if d.state.openCaptainSlot() >= 0 {
		v.Footer = "Reacciona con cualquier número para ser capitán"
	} else if !d.state.done() {
		v.Footer = "Los capitanes eligen reaccionando con el número del jugador"
	}
	return v
}
