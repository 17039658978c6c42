package discord

import (
	"sync"
	"time"
)

// a partir de este tamaño Allow barre las entradas vencidas
const limiterSweepAt = 512

type userLimiter struct {
	mu   sync.Mutex
	next map[string]time.Time
	win  time.Duration
	now  func() time.Time
}

func newUserLimiter(window time.Duration) *userLimiter {
	return &userLimiter{next: map[string]time.Time{}, win: window, now: time.Now}
}

// Allow deja pasar un click por usuario y ventana.
func (l *userLimiter) Allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if until, ok := l.next[userID]; ok && now.Before(until) {
		return false
	}
	if len(l.next) >= limiterSweepAt {
		for id, until := range l.next {
			if !now.Before(until) {
				delete(l.next, id)
			}
		}
	}
	l.next[userID] = now.Add(l.win)
	return true
}
