package domain

// Rating es la vista de un jugador que expone la API de la liga.
type Rating struct {
	UserID    string
	SteamID   string
	Name      string
	Score     int
	Kills     int
	Deaths    int
	Assists   int
	MatchWin  int
	MatchDraw int
	MatchLose int
	InMatch   bool
}

func (r Rating) MatchesPlayed() int { return r.MatchWin + r.MatchDraw + r.MatchLose }

func (r Rating) KDRatio() float64 {
	if r.Deaths == 0 {
		return 0
	}
	return float64(r.Kills) / float64(r.Deaths)
}

func (r Rating) WinPercent() float64 {
	if r.MatchWin+r.MatchLose == 0 {
		return 0
	}
	return float64(r.MatchWin) / float64(r.MatchWin+r.MatchLose)
}
