package formation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversOnlyToSubscribedMessage(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("m1")
	defer sub.Close()

	assert.False(t, h.Publish(Reaction{MessageID: "m2", Emoji: ReadyEmoji, UserID: "u1"}))
	require.True(t, h.Publish(Reaction{MessageID: "m1", Emoji: ReadyEmoji, UserID: "u1"}))

	r := <-sub.C
	assert.Equal(t, "u1", r.UserID)
	assert.Empty(t, sub.C)
}

func TestHubNormalizesKeycaps(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("m1")
	defer sub.Close()

	h.Publish(Reaction{MessageID: "m1", Emoji: "1\u20e3", UserID: "u1"})
	r := <-sub.C
	assert.Equal(t, 0, emojiIndex(r.Emoji))
	assert.Equal(t, 9, emojiIndex("\U0001f51f"))
	assert.Equal(t, -1, emojiIndex(ReadyEmoji))
}

func TestSubscriptionCloseDetaches(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("m1")

	sub.Close()
	sub.Close()

	assert.True(t, sub.Closed())
	assert.False(t, h.Publish(Reaction{MessageID: "m1", Emoji: ReadyEmoji, UserID: "u1"}))
	assert.Empty(t, h.subs)
}

func TestFullSubscriptionDoesNotStallOtherMessages(t *testing.T) {
	h := NewHub()
	slow := h.Subscribe("m1")
	defer slow.Close()
	for i := 0; i < subscriptionBuffer; i++ {
		require.True(t, h.Publish(Reaction{MessageID: "m1", Emoji: ReadyEmoji, UserID: "u1"}))
	}

	blocked := make(chan bool, 1)
	go func() { blocked <- h.Publish(Reaction{MessageID: "m1", Emoji: ReadyEmoji, UserID: "u2"}) }()
	time.Sleep(20 * time.Millisecond)

	// otro guild se suscribe, recibe y se desengancha mientras m1 sigue lleno
	other := make(chan Reaction, 1)
	go func() {
		sub := h.Subscribe("m2")
		defer sub.Close()
		h.Publish(Reaction{MessageID: "m2", Emoji: ReadyEmoji, UserID: "u3"})
		other <- <-sub.C
	}()
	select {
	case r := <-other:
		assert.Equal(t, "u3", r.UserID)
	case <-time.After(time.Second):
		require.FailNow(t, "a full subscription stalled the hub")
	}

	<-slow.C
	select {
	case ok := <-blocked:
		assert.True(t, ok)
	case <-time.After(time.Second):
		require.FailNow(t, "pending reaction was not delivered")
	}
}

func TestCloseReleasesBlockedPublish(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("m1")
	for i := 0; i < subscriptionBuffer; i++ {
		h.Publish(Reaction{MessageID: "m1", Emoji: ReadyEmoji, UserID: "u1"})
	}

	blocked := make(chan bool, 1)
	go func() { blocked <- h.Publish(Reaction{MessageID: "m1", Emoji: ReadyEmoji, UserID: "u2"}) }()
	time.Sleep(20 * time.Millisecond)
	sub.Close()

	select {
	case ok := <-blocked:
		assert.False(t, ok)
	case <-time.After(time.Second):
		require.FailNow(t, "publish stayed blocked after close")
	}
}
