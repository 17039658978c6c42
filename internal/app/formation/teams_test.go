package formation

import (
	"testing"

	"github.com/elliotchance/pie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/league-queue-bot/internal/domain"
)

func ratings(scores map[string]int) []domain.Rating {
	out := make([]domain.Rating, 0, len(scores))
	for id, s := range scores {
		out = append(out, domain.Rating{UserID: id, Score: s})
	}
	return out
}

func TestAutobalance(t *testing.T) {
	roster := []string{"d", "c", "b", "a"}
	rt := ratings(map[string]int{"a": 100, "b": 90, "c": 80, "d": 70})

	teams, err := Autobalance(roster, rt)
	require.NoError(t, err)
	assert.Equal(t, Teams{{"a", "d"}, {"b", "c"}}, teams)

	again, err := Autobalance(roster, rt)
	require.NoError(t, err)
	assert.Equal(t, teams, again)
}

func TestAutobalanceMissingRatingsCountAsZero(t *testing.T) {
	teams, err := Autobalance([]string{"a", "b", "c", "d"}, ratings(map[string]int{"c": 10}))
	require.NoError(t, err)
	assert.Equal(t, Teams{{"c", "d"}, {"a", "b"}}, teams)
}

func TestTeamsRejectOddRoster(t *testing.T) {
	_, err := Autobalance([]string{"a", "b", "c"}, nil)
	assert.ErrorIs(t, err, domain.ErrOddRoster)

	_, err = RandomTeams([]string{"a", "b", "c"}, newLockedRand(1))
	assert.ErrorIs(t, err, domain.ErrOddRoster)
}

func TestRandomTeamsPartition(t *testing.T) {
	roster := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	teams, err := RandomTeams(roster, newLockedRand(7))
	require.NoError(t, err)

	require.Len(t, teams[0], 5)
	require.Len(t, teams[1], 5)
	all := append(append([]string(nil), teams[0]...), teams[1]...)
	assert.ElementsMatch(t, roster, all)
	for _, id := range teams[0] {
		assert.False(t, pie.Contains(teams[1], id))
	}
}

func TestCaptainPolicies(t *testing.T) {
	roster := []string{"a", "b", "c", "d"}
	assert.Equal(t, []string{"c", "a"}, rankCaptains(roster, ratings(map[string]int{"a": 50, "b": 10, "c": 70, "d": 50})))

	got := randomCaptains(roster, newLockedRand(3))
	require.Len(t, got, 2)
	assert.NotEqual(t, got[0], got[1])
	assert.Subset(t, roster, got)
}
