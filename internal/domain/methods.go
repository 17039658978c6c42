package domain

import (
	"fmt"
	"strings"
)

// TeamMethod define cómo se arman los equipos al llenarse la cola.
type TeamMethod string

const (
	TeamCaptains    TeamMethod = "captains"
	TeamAutobalance TeamMethod = "autobalance"
	TeamRandom      TeamMethod = "random"
)

// CaptainMethod define cómo se eligen los capitanes del draft.
type CaptainMethod string

const (
	CaptainVolunteer CaptainMethod = "volunteer"
	CaptainRank      CaptainMethod = "rank"
	CaptainRandom    CaptainMethod = "random"
)

// MapMethod define cómo se elige el mapa.
type MapMethod string

const (
	MapCaptains MapMethod = "captains"
	MapVote     MapMethod = "vote"
	MapRandom   MapMethod = "random"
)

var (
	TeamMethods    = []TeamMethod{TeamCaptains, TeamAutobalance, TeamRandom}
	CaptainMethods = []CaptainMethod{CaptainVolunteer, CaptainRank, CaptainRandom}
	MapMethods     = []MapMethod{MapCaptains, MapVote, MapRandom}
)

// MethodError se devuelve cuando un string no corresponde a ningún método conocido.
type MethodError struct {
	Axis  string
	Value string
}

func (e *MethodError) Error() string {
	return fmt.Sprintf("unknown %s method %q", e.Axis, e.Value)
}

func ParseTeamMethod(s string) (TeamMethod, error) {
	m := TeamMethod(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range TeamMethods {
		if v == m {
			return m, nil
		}
	}
	return "", &MethodError{Axis: "team", Value: s}
}

func ParseCaptainMethod(s string) (CaptainMethod, error) {
	m := CaptainMethod(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range CaptainMethods {
		if v == m {
			return m, nil
		}
	}
	return "", &MethodError{Axis: "captain", Value: s}
}

func ParseMapMethod(s string) (MapMethod, error) {
	m := MapMethod(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range MapMethods {
		if v == m {
			return m, nil
		}
	}
	return "", &MethodError{Axis: "map", Value: s}
}

func (m TeamMethod) String() string    { return string(m) }
func (m CaptainMethod) String() string { return string(m) }
func (m MapMethod) String() string     { return string(m) }
