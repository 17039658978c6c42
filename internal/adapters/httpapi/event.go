package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

const (
	SecretHeader = "X-League-Secret"

	maxBody = 1 << 20
)

// MatchEvent es un cambio de estado de partida enviado por la liga.
type MatchEvent struct {
	MatchID string
	Status  string
}

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		MatchID string `json:"match_id"`
		Status  string `json:"status"`
	} `json:"payload"`
}

// DecodeMatchEvent lee el body del webhook. ok=false si el evento no es un match_status_* con match_id.
// El estado sale del sufijo del evento salvo que el payload traiga uno explícito.
func DecodeMatchEvent(body io.Reader) (MatchEvent, bool, error) {
	var evt webhookEvent
	if err := json.NewDecoder(body).Decode(&evt); err != nil {
		return MatchEvent{}, false, eris.Wrap(err, "decode webhook payload")
	}
	event := strings.ToLower(evt.Event)
	if !strings.HasPrefix(event, "match_status_") || evt.Payload.MatchID == "" {
		return MatchEvent{}, false, nil
	}
	status := strings.TrimPrefix(event, "match_status_")
	if evt.Payload.Status != "" {
		status = evt.Payload.Status
	}
	return MatchEvent{MatchID: evt.Payload.MatchID, Status: status}, true, nil
}

// SecretMatches compara en tiempo constante; un secreto vacío nunca matchea.
func SecretMatches(got, want string) bool {
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
