package service

import (
	"context"
	"sync"
	"time"

	"github.com/elliotchance/pie/v2"

	"github.com/jose-valero/league-queue-bot/internal/domain"
	"github.com/jose-valero/league-queue-bot/internal/infra/storage"
)

type memQueue struct {
	mu      sync.Mutex
	byGuild map[string][]string

	// onList corre después de leer la cola y antes de devolverla.
	onList func()
}

func newMemQueue() *memQueue { return &memQueue{byGuild: map[string][]string{}} }

func (q *memQueue) List(_ context.Context, guildID string) ([]string, error) {
	q.mu.Lock()
	out := append([]string(nil), q.byGuild[guildID]...)
	q.mu.Unlock()
	if q.onList != nil {
		q.onList()
	}
	return out, nil
}

func (q *memQueue) Insert(_ context.Context, guildID string, userIDs ...string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, id := range userIDs {
		if !pie.Contains(q.byGuild[guildID], id) {
			q.byGuild[guildID] = append(q.byGuild[guildID], id)
		}
	}
	return nil
}

func (q *memQueue) Delete(_ context.Context, guildID string, userIDs ...string) ([]string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var removed []string
	q.byGuild[guildID] = pie.Filter(q.byGuild[guildID], func(id string) bool {
		if pie.Contains(userIDs, id) {
			removed = append(removed, id)
			return false
		}
		return true
	})
	return removed, nil
}

func (q *memQueue) DeleteAll(_ context.Context, guildID string) ([]string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	removed := q.byGuild[guildID]
	delete(q.byGuild, guildID)
	return removed, nil
}

type memBans struct {
	mu   sync.Mutex
	bans map[string]map[string]*time.Time
}

func newMemBans() *memBans { return &memBans{bans: map[string]map[string]*time.Time{}} }

func (b *memBans) List(_ context.Context, guildID string) (map[string]*time.Time, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := map[string]*time.Time{}
	for id, until := range b.bans[guildID] {
		if until != nil && until.Before(time.Now()) {
			delete(b.bans[guildID], id)
			continue
		}
		out[id] = until
	}
	return out, nil
}

func (b *memBans) Insert(_ context.Context, guildID string, until *time.Time, userIDs ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bans[guildID] == nil {
		b.bans[guildID] = map[string]*time.Time{}
	}
	for _, id := range userIDs {
		b.bans[guildID][id] = until
	}
	return nil
}

func (b *memBans) Delete(_ context.Context, guildID string, userIDs ...string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var removed []string
	for _, id := range userIDs {
		if _, ok := b.bans[guildID][id]; ok {
			delete(b.bans[guildID], id)
			removed = append(removed, id)
		}
	}
	return removed, nil
}

type memMatches struct {
	mu      sync.Mutex
	records map[string]domain.MatchRecord
}

func (m *memMatches) Get(_ context.Context, matchID string) (domain.MatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[matchID]
	if !ok {
		return domain.MatchRecord{}, storage.ErrNotFound
	}
	return r, nil
}

func (m *memMatches) UpdateStatus(_ context.Context, matchID string, status domain.MatchStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[matchID]
	if !ok {
		return false, nil
	}
	r.Status = status
	m.records[matchID] = r
	return true, nil
}
