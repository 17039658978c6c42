package service

import "sync"

// GuildLocks serializa las escrituras de cola y de configuración de un mismo guild;
// guilds distintos no se bloquean. QueueService y ConfigService comparten la misma instancia.
type GuildLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewGuildLocks() *GuildLocks {
	return &GuildLocks{locks: map[string]*sync.Mutex{}}
}

func (g *GuildLocks) lock(guildID string) func() {
	g.mu.Lock()
	m, ok := g.locks[guildID]
	if !ok {
		m = &sync.Mutex{}
		g.locks[guildID] = m
	}
	g.mu.Unlock()

	m.Lock()
	return m.Unlock
}
