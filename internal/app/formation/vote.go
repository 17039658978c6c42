package formation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/elliotchance/pie/v2"

	"github.com/jose-valero/league-queue-bot/internal/domain"
)

type voteState struct {
	voters     []string
	candidates []domain.Map
	votes      map[string]int // userID -> índice de candidato
}

func newVoteState(voters []string, candidates []domain.Map) *voteState {
	return &voteState{voters: voters, candidates: candidates, votes: map[string]int{}}
}

func (s *voteState) vote(userID string, idx int) error {
	if !pie.Contains(s.voters, userID) {
		return pickErr(ReasonNotInSession, userID)
	}
	if _, ok := s.votes[userID]; ok {
		return pickErr(ReasonAlreadyVoted, userID)
	}
	if idx < 0 || idx >= len(s.candidates) {
		return pickErr(ReasonUnavailable, userID)
	}
	s.votes[userID] = idx
	return nil
}

func (s *voteState) done() bool { return len(s.votes) >= len(s.voters) }

func (s *voteState) tally() []int {
	out := make([]int, len(s.candidates))
	for _, idx := range s.votes {
		out[idx]++
	}
	return out
}

// winner elige entre los más votados al azar; sin votos empatan todos.
func (s *voteState) winner(rng *lockedRand) domain.Map {
	counts := s.tally()
	best := -1
	var leaders []int
	for i, c := range counts {
		switch {
		case c > best:
			best = c
			leaders = []int{i}
		case c == best:
			leaders = append(leaders, i)
		}
	}
	return s.candidates[leaders[rng.Intn(len(leaders))]]
}

// voteCandidates elige n mapas al azar del pool; n <= 0 o n >= len(pool) usa el pool completo.
func voteCandidates(pool []domain.Map, n int, rng *lockedRand) []domain.Map {
	if n <= 0 || n >= len(pool) {
		return pool
	}
	idx := pie.Sort(rng.Perm(len(pool))[:n])
	out := make([]domain.Map, n)
	for i, p := range idx {
		out[i] = pool[p]
	}
	return out
}

// MapVote es la votación abierta a todo el roster. El timeout no es fatal: se cuenta lo que haya.
type MapVote struct {
	hub     *Hub
	panel   Panel
	state   *voteState
	timeout time.Duration
	rng     *lockedRand
}

func NewMapVote(hub *Hub, panel Panel, voters []string, candidates []domain.Map, timeout time.Duration, rng *lockedRand) (*MapVote, error) {
	if len(candidates) == 0 {
		return nil, domain.ErrInvalidConfig
	}
	if len(candidates) > len(NumberEmojis) {
		return nil, ErrRosterTooLarge
	}
	return &MapVote{hub: hub, panel: panel, state: newVoteState(voters, candidates), timeout: timeout, rng: rng}, nil
}

func (v *MapVote) Run(ctx context.Context) (domain.Map, error) {
	sub := v.hub.Subscribe(v.panel.MessageID())
	defer sub.Close()

	if err := v.panel.Edit(ctx, v.view()); err != nil {
		return domain.Map{}, err
	}
	opts := make([]string, len(v.state.candidates))
	for i := range v.state.candidates {
		opts[i] = NumberEmojis[i]
	}
	if err := v.panel.AddOptions(ctx, opts...); err != nil {
		return domain.Map{}, err
	}

	timer := time.NewTimer(v.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return domain.Map{}, ctx.Err()
		case <-timer.C:
			sub.Close()
			logPanel(ctx, "clear_options", v.panel.ClearOptions(ctx))
			return v.state.winner(v.rng), nil
		case r := <-sub.C:
			if err := v.state.vote(r.UserID, emojiIndex(r.Emoji)); err != nil {
				continue
			}
			if v.state.done() {
				sub.Close()
				logPanel(ctx, "clear_options", v.panel.ClearOptions(ctx))
				return v.state.winner(v.rng), nil
			}
			logPanel(ctx, "edit", v.panel.Edit(ctx, v.view()))
		}
	}
}

func (v *MapVote) view() View {
	counts := v.state.tally()
	lines := make([]string, len(v.state.candidates))
	for i, m := range v.state.candidates {
		lines[i] = numbered(i, fmt.Sprintf("%s (%d)", m.Name, counts[i]))
	}
	return View{
		Title:       "¡Vota el mapa!",
		Description: strings.Join(lines, "\n"),
		Footer:      fmt.Sprintf("%d/%d votos", len(v.state.votes), len(v.state.voters)),
	}
}
