package domain

import (
	"fmt"
	"strings"
	"time"
)

// MatchServer es lo que devuelve la API al pedir un servidor.
type MatchServer struct {
	ID   string
	IP   string
	Port int
}

func (m MatchServer) Address() string { return fmt.Sprintf("%s:%d", m.IP, m.Port) }

func (m MatchServer) ConnectURL() string { return "steam://connect/" + m.Address() }

func (m MatchServer) ConnectCommand() string { return "connect " + m.Address() }

// MatchPage arma el link a la web de la liga; vacío si no hay web configurada.
func (m MatchServer) MatchPage(webURL string) string {
	if webURL == "" {
		return ""
	}
	return strings.TrimRight(webURL, "/") + "/match/" + m.ID
}

// MatchRequest es lo que se manda a la API para pedir un servidor.
type MatchRequest struct {
	TeamOne []string
	TeamTwo []string
	Names   map[string]string // userID -> nombre visible, opcional
	Map     string            // dev name, vacío = lo decide la API
}

type MatchStatus string

const (
	MatchStarted   MatchStatus = "started"
	MatchFinished  MatchStatus = "finished"
	MatchCancelled MatchStatus = "cancelled"
)

// MatchRecord es el registro persistido de un match creado por el bot.
type MatchRecord struct {
	ID        string // id de la sesión de formación
	GuildID   string
	MatchID   string // id del match en la API
	TeamOne   []string
	TeamTwo   []string
	Map       string
	Server    MatchServer
	Status    MatchStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
