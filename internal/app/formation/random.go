package formation

import (
	"math/rand"
	"sync"
	"time"
)

// lockedRand es un *rand.Rand compartible entre las sesiones de distintos guilds.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedRand(seed int64) *lockedRand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *lockedRand) Perm(n int) []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Perm(n)
}

// shuffled devuelve una copia mezclada de ids.
func (l *lockedRand) shuffled(ids []string) []string {
	out := make([]string, len(ids))
	for i, p := range l.Perm(len(ids)) {
		out[i] = ids[p]
	}
	return out
}
