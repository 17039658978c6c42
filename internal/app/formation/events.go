package formation

import (
	"strings"
	"sync"
)

const subscriptionBuffer = 64

// Reaction es un click de un usuario sobre una opción de un panel.
type Reaction struct {
	MessageID string
	Emoji     string
	UserID    string
}

// Hub reparte reacciones entrantes a las sesiones suscritas a cada mensaje.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: map[string]map[*Subscription]struct{}{}}
}

type Subscription struct {
	C <-chan Reaction

	c         chan Reaction
	done      chan struct{}
	once      sync.Once
	hub       *Hub
	messageID string
}

// Subscribe empieza a recibir las reacciones de messageID. Hay que llamar Close en todos los caminos de salida.
func (h *Hub) Subscribe(messageID string) *Subscription {
	c := make(chan Reaction, subscriptionBuffer)
	s := &Subscription{C: c, c: c, done: make(chan struct{}), hub: h, messageID: messageID}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[messageID] == nil {
		h.subs[messageID] = map[*Subscription]struct{}{}
	}
	h.subs[messageID][s] = struct{}{}
	return s
}

// Publish entrega la reacción a los suscriptores del mensaje; devuelve false si nadie la escuchaba.
// Si el buffer de una sesión está lleno espera a esa sesión, sin retener el lock del hub.
func (h *Hub) Publish(r Reaction) bool {
	r.Emoji = normalizeEmoji(r.Emoji)

	h.mu.RLock()
	subs := make([]*Subscription, 0, len(h.subs[r.MessageID]))
	for s := range h.subs[r.MessageID] {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	delivered := false
	for _, s := range subs {
		if s.Closed() {
			continue
		}
		select {
		case s.c <- r:
			delivered = true
		case <-s.done:
		}
	}
	return delivered
}

// Close desengancha la suscripción; después de Close no llegan más eventos. Es idempotente.
func (s *Subscription) Close() {
	s.once.Do(func() {
		// done primero: libera un Publish bloqueado en esta suscripción
		close(s.done)

		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		delete(s.hub.subs[s.messageID], s)
		if len(s.hub.subs[s.messageID]) == 0 {
			delete(s.hub.subs, s.messageID)
		}
	})
}

// Closed indica si la suscripción ya fue cerrada.
func (s *Subscription) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Discord a veces manda los keycaps con el selector de variación U+FE0F y a veces no.
func normalizeEmoji(e string) string {
	return strings.ReplaceAll(e, "\ufe0f", "")
}
