package formation

import (
	"context"
	"time"

	"github.com/elliotchance/pie/v2"
)

type ReadyResult struct {
	Ready    []string // en orden de roster
	Unready  []string
	AllReady bool
}

// ReadyCheck espera que todo el roster confirme con ReadyEmoji antes del deadline.
type ReadyCheck struct {
	hub     *Hub
	panel   Panel
	roster  []string
	timeout time.Duration
	acked   map[string]bool
}

func NewReadyCheck(hub *Hub, panel Panel, roster []string, timeout time.Duration) *ReadyCheck {
	return &ReadyCheck{hub: hub, panel: panel, roster: roster, timeout: timeout, acked: map[string]bool{}}
}

// ack registra la confirmación; true cuando los acks cubren todo el roster.
func (rc *ReadyCheck) ack(userID string) bool {
	if pie.Contains(rc.roster, userID) {
		rc.acked[userID] = true
	}
	for _, id := range rc.roster {
		if !rc.acked[id] {
			return false
		}
	}
	return true
}

func (rc *ReadyCheck) result(all bool) ReadyResult {
	return ReadyResult{
		Ready:    pie.Filter(rc.roster, func(id string) bool { return rc.acked[id] }),
		Unready:  pie.Filter(rc.roster, func(id string) bool { return !rc.acked[id] }),
		AllReady: all,
	}
}

// Run bloquea hasta AllReady, el timeout (AllReady=false) o la cancelación del ctx (error).
func (rc *ReadyCheck) Run(ctx context.Context) (ReadyResult, error) {
	sub := rc.hub.Subscribe(rc.panel.MessageID())
	defer sub.Close()

	if err := rc.panel.AddOptions(ctx, ReadyEmoji); err != nil {
		return ReadyResult{}, err
	}

	timer := time.NewTimer(rc.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return rc.result(false), ctx.Err()
		case <-timer.C:
			// primero se suelta el listener, después se decide
			sub.Close()
			return rc.result(false), nil
		case r := <-sub.C:
			if r.Emoji != ReadyEmoji {
				continue
			}
			if rc.ack(r.UserID) {
				sub.Close()
				return rc.result(true), nil
			}
		}
	}
}
