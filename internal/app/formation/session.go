package formation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Phase string

const (
	PhaseReady  Phase = "ready"
	PhaseTeams  Phase = "teams"
	PhaseMap    Phase = "map"
	PhaseServer Phase = "server"
)

// Session es una formación en curso: el roster queda fijo desde el burst.
type Session struct {
	ID        string
	GuildID   string
	ChannelID string
	Roster    []string
	StartedAt time.Time

	phase      Phase
	superseded bool
	ctx        context.Context
	cancel     context.CancelFunc
}

// Registry guarda la formación activa de cada guild.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: map[string]*Session{}}
}

// Begin registra una formación nueva para el guild. Si la anterior sigue en el ready check
// se cancela y se reemplaza; si ya pasó esa etapa devuelve ErrFormationInFlight.
func (r *Registry) Begin(parent context.Context, guildID, channelID string, roster []string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.sessions[guildID]; ok {
		if prev.phase != PhaseReady {
			return nil, ErrFormationInFlight
		}
		prev.superseded = true
		prev.cancel()
	}

	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		ID:        uuid.NewString(),
		GuildID:   guildID,
		ChannelID: channelID,
		Roster:    append([]string(nil), roster...),
		StartedAt: time.Now(),
		phase:     PhaseReady,
		ctx:       ctx,
		cancel:    cancel,
	}
	r.sessions[guildID] = s
	return s, nil
}

// Advance mueve la sesión de fase; false si fue reemplazada o cancelada.
func (r *Registry) Advance(s *Session, p Phase) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.superseded || s.ctx.Err() != nil {
		return false
	}
	s.phase = p
	return true
}

// End saca la sesión del registro y libera su contexto. Devuelve true si todavía era la activa.
func (r *Registry) End(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer s.cancel()
	if r.sessions[s.GuildID] != s {
		return false
	}
	delete(r.sessions, s.GuildID)
	return true
}

// Forget cancela y olvida la formación del guild (el bot salió del servidor).
func (r *Registry) Forget(guildID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[guildID]; ok {
		s.cancel()
		delete(r.sessions, guildID)
	}
}

// InFormation indica si el usuario es parte de la formación activa del guild.
func (r *Registry) InFormation(guildID, userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[guildID]
	if !ok {
		return false
	}
	for _, id := range s.Roster {
		if id == userID {
			return true
		}
	}
	return false
}

// Superseded indica si la sesión fue reemplazada por un burst nuevo.
func (r *Registry) Superseded(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return s.superseded
}
