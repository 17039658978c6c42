package formation

import "github.com/rotisserie/eris"

var (
	ErrFormationInFlight = eris.New("a match formation is already running for this guild")
	ErrTimedOut          = eris.New("session timed out")
	ErrSuperseded        = eris.New("ready check superseded by a new queue burst")
	ErrRosterTooLarge    = eris.New("roster too large for a reaction menu")
)

// PickReason identifica por qué se rechazó un pick, ban o voto.
type PickReason int

const (
	ReasonPickSelf PickReason = iota + 1
	ReasonNotYourTurn
	ReasonNotCaptain
	ReasonTeamFull
	ReasonNotInSession
	ReasonUnavailable
	ReasonAlreadyVoted
)

// PickError es un error de input del usuario: se muestra en el panel y no cambia el estado.
type PickError struct {
	Reason PickReason
	UserID string
}

func (e *PickError) Error() string {
	switch e.Reason {
	case ReasonPickSelf:
		return "no te puedes elegir a ti mismo"
	case ReasonNotYourTurn:
		return "no es tu turno"
	case ReasonNotCaptain:
		return "no eres capitán"
	case ReasonTeamFull:
		return "tu equipo ya está lleno"
	case ReasonNotInSession:
		return "no estás en esta partida"
	case ReasonUnavailable:
		return "esa opción ya no está disponible"
	case ReasonAlreadyVoted:
		return "ya votaste"
	default:
		return "acción inválida"
	}
}

func pickErr(reason PickReason, userID string) error {
	return &PickError{Reason: reason, UserID: userID}
}
