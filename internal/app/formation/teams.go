package formation

import (
	"github.com/elliotchance/pie/v2"

	"github.com/jose-valero/league-queue-bot/internal/domain"
)

// Teams son los dos equipos; el primero de cada slice es el capitán cuando hubo draft.
type Teams [2][]string

func (t Teams) Contains(userID string) bool {
	for _, team := range t {
		for _, id := range team {
			if id == userID {
				return true
			}
		}
	}
	return false
}

// scoreOf arma el mapa userID -> score; los que no vinieron en ratings cuentan 0.
func scoreOf(ratings []domain.Rating) map[string]int {
	out := make(map[string]int, len(ratings))
	for _, r := range ratings {
		out[r.UserID] = r.Score
	}
	return out
}

// byScore ordena el roster por score descendente; a igual score se respeta el orden del roster.
func byScore(roster []string, ratings []domain.Rating) []string {
	scores := scoreOf(ratings)
	return pie.SortStableUsing(roster, func(a, b string) bool { return scores[a] > scores[b] })
}

// Autobalance reparte de mayor a menor score: al equipo con menos jugadores,
// y a igual cantidad al de menor suma de score (empate: equipo uno).
func Autobalance(roster []string, ratings []domain.Rating) (Teams, error) {
	if len(roster)%2 != 0 {
		return Teams{}, domain.ErrOddRoster
	}
	scores := scoreOf(ratings)
	var (
		teams Teams
		sums  [2]int
	)
	for _, id := range byScore(roster, ratings) {
		t := 0
		switch {
		case len(teams[1]) < len(teams[0]):
			t = 1
		case len(teams[0]) < len(teams[1]):
			t = 0
		case sums[1] < sums[0]:
			t = 1
		}
		teams[t] = append(teams[t], id)
		sums[t] += scores[id]
	}
	return teams, nil
}

// RandomTeams mezcla el roster y lo parte a la mitad.
func RandomTeams(roster []string, rng *lockedRand) (Teams, error) {
	if len(roster)%2 != 0 {
		return Teams{}, domain.ErrOddRoster
	}
	mixed := rng.shuffled(roster)
	half := len(mixed) / 2
	return Teams{mixed[:half:half], mixed[half:]}, nil
}

// rankCaptains devuelve los dos mejores por score.
func rankCaptains(roster []string, ratings []domain.Rating) []string {
	return byScore(roster, ratings)[:2]
}

// randomCaptains devuelve dos usuarios distintos al azar.
func randomCaptains(roster []string, rng *lockedRand) []string {
	return rng.shuffled(roster)[:2]
}
