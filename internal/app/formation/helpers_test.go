package formation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// stubPanel avisa por added cada AddOptions, que las sesiones llaman después de suscribirse.
type stubPanel struct {
	id        string
	added     chan []string
	removeErr error

	mu    sync.Mutex
	views []View
}

func newStubPanel(id string) *stubPanel {
	return &stubPanel{id: id, added: make(chan []string, 16)}
}

func (p *stubPanel) MessageID() string { return p.id }

func (p *stubPanel) Edit(_ context.Context, v View) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.views = append(p.views, v)
	return nil
}

func (p *stubPanel) AddOptions(_ context.Context, emojis ...string) error {
	p.added <- emojis
	return nil
}

func (p *stubPanel) RemoveOption(context.Context, string) error { return p.removeErr }
func (p *stubPanel) ClearOptions(context.Context) error         { return nil }

func (p *stubPanel) lastView() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.views[len(p.views)-1]
}

func waitOptions(t *testing.T, p *stubPanel) []string {
	t.Helper()
	select {
	case e := <-p.added:
		return e
	case <-time.After(2 * time.Second):
		require.FailNow(t, "session never added its options")
		return nil
	}
}

func react(h *Hub, p *stubPanel, emoji, userID string) {
	h.Publish(Reaction{MessageID: p.id, Emoji: emoji, UserID: userID})
}

func reasonOf(t *testing.T, err error) PickReason {
	t.Helper()
	var pe *PickError
	require.ErrorAs(t, err, &pe)
	return pe.Reason
}
