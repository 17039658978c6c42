// Package formationtest tiene dobles en memoria de los puertos de formation para tests.
package formationtest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/elliotchance/pie/v2"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/league-queue-bot/internal/app/formation"
	"github.com/jose-valero/league-queue-bot/internal/domain"
)

// Added se emite cada vez que un panel agrega opciones: a partir de ahí la sesión ya está escuchando.
type Added struct {
	Panel  *Panel
	Emojis []string
}

type Messenger struct {
	Added chan Added

	mu      sync.Mutex
	seq     int
	panels  []*Panel
	SendErr error
}

func NewMessenger() *Messenger {
	return &Messenger{Added: make(chan Added, 256)}
}

func (m *Messenger) Send(_ context.Context, channelID string, v formation.View) (formation.Panel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return nil, m.SendErr
	}
	m.seq++
	p := &Panel{id: fmt.Sprintf("msg-%d", m.seq), ChannelID: channelID, added: m.Added}
	p.views = append(p.views, v)
	m.panels = append(m.panels, p)
	return p, nil
}

func (m *Messenger) Panels() []*Panel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Panel(nil), m.panels...)
}

// NextAdded espera el próximo AddOptions o falla el test.
func (m *Messenger) NextAdded(t testing.TB, within time.Duration) Added {
	t.Helper()
	select {
	case a := <-m.Added:
		return a
	case <-time.After(within):
		require.FailNow(t, "no options were added in time")
		return Added{}
	}
}

type Panel struct {
	ChannelID string

	id    string
	added chan<- Added

	mu      sync.Mutex
	views   []formation.View
	options []string
}

func (p *Panel) MessageID() string { return p.id }

func (p *Panel) Edit(_ context.Context, v formation.View) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.views = append(p.views, v)
	return nil
}

func (p *Panel) AddOptions(_ context.Context, emojis ...string) error {
	p.mu.Lock()
	p.options = append(p.options, emojis...)
	p.mu.Unlock()

	select {
	case p.added <- Added{Panel: p, Emojis: emojis}:
	default:
	}
	return nil
}

func (p *Panel) RemoveOption(_ context.Context, emoji string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.options = pie.Filter(p.options, func(e string) bool { return e != emoji })
	return nil
}

func (p *Panel) ClearOptions(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.options = nil
	return nil
}

func (p *Panel) Views() []formation.View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]formation.View(nil), p.views...)
}

func (p *Panel) Last() formation.View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.views[len(p.views)-1]
}

func (p *Panel) Options() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.options...)
}

// ---------- puertos ----------

type Configs struct {
	mu   sync.Mutex
	cfgs map[string]domain.GuildConfig
}

func NewConfigs(cfgs ...domain.GuildConfig) *Configs {
	c := &Configs{cfgs: map[string]domain.GuildConfig{}}
	for _, cfg := range cfgs {
		c.cfgs[cfg.GuildID] = cfg
	}
	return c
}

func (c *Configs) Get(_ context.Context, guildID string) (domain.GuildConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cfg, ok := c.cfgs[guildID]; ok {
		return cfg, nil
	}
	return domain.DefaultGuildConfig(guildID), nil
}

func (c *Configs) Upsert(_ context.Context, cfg domain.GuildConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfgs[cfg.GuildID] = cfg
	return nil
}

func (c *Configs) Delete(_ context.Context, guildID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cfgs, guildID)
	return nil
}

// Ratings devuelve los ratings cargados, en el orden pedido; Err fuerza un fallo.
type Ratings struct {
	ByUser map[string]domain.Rating
	Err    error
}

func (r *Ratings) GetPlayers(_ context.Context, userIDs []string) ([]domain.Rating, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]domain.Rating, 0, len(userIDs))
	for _, id := range userIDs {
		if rt, ok := r.ByUser[id]; ok {
			out = append(out, rt)
		}
	}
	return out, nil
}

func (r *Ratings) GetPlayer(_ context.Context, userID string) (domain.Rating, error) {
	if r.Err != nil {
		return domain.Rating{}, r.Err
	}
	rt, ok := r.ByUser[userID]
	if !ok {
		return domain.Rating{}, domain.ErrNotLinked
	}
	return rt, nil
}

type MatchServers struct {
	Server domain.MatchServer
	Err    error

	mu       sync.Mutex
	requests []domain.MatchRequest
}

func (m *MatchServers) StartMatch(_ context.Context, req domain.MatchRequest) (domain.MatchServer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.Err != nil {
		return domain.MatchServer{}, m.Err
	}
	return m.Server, nil
}

func (m *MatchServers) Requests() []domain.MatchRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.MatchRequest(nil), m.requests...)
}

// Evictions registra los Delete que hace el orquestador sobre la cola.
type Evictions struct {
	mu      sync.Mutex
	Evicted []string
}

func (e *Evictions) Delete(_ context.Context, _ string, userIDs ...string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Evicted = append(e.Evicted, userIDs...)
	return nil, nil
}

func (e *Evictions) Users() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.Evicted...)
}

type Records struct {
	mu      sync.Mutex
	records []domain.MatchRecord
}

func (r *Records) Insert(_ context.Context, m domain.MatchRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, m)
	return nil
}

func (r *Records) All() []domain.MatchRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.MatchRecord(nil), r.records...)
}
