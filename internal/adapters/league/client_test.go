package league

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/league-queue-bot/internal/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", "secret", WithHTTPClient(srv.Client()))
}

func TestGetPlayer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("authentication"))
		assert.Equal(t, "/player/discord/111", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":7,"discord":"111","steam":"7656","discord_name":"ana","score":"1500","kills":20,"deaths":null,"match_win":3,"match_lose":1,"inMatch":true}`))
	})

	r, err := c.GetPlayer(context.Background(), "111")
	require.NoError(t, err)
	assert.Equal(t, "111", r.UserID)
	assert.Equal(t, "7656", r.SteamID)
	assert.Equal(t, 1500, r.Score)
	assert.Equal(t, 20, r.Kills)
	assert.Zero(t, r.Deaths)
	assert.True(t, r.InMatch)
	assert.Equal(t, 4, r.MatchesPlayed())
}

func TestGetPlayerNotLinked(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := c.GetPlayer(context.Background(), "111")
	assert.True(t, eris.Is(err, domain.ErrNotLinked))
}

func TestGetPlayersPreservesOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body playersRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"1", "2", "3"}, body.DiscordIDs)
		_, _ = w.Write([]byte(`[{"discord":3,"score":30},{"discord":"1","score":10},{"discord":"2","score":20}]`))
	})

	rs, err := c.GetPlayers(context.Background(), []string{"1", "2", "3"})
	require.NoError(t, err)
	require.Len(t, rs, 3)
	assert.Equal(t, "1", rs[0].UserID)
	assert.Equal(t, "2", rs[1].UserID)
	assert.Equal(t, "3", rs[2].UserID)
	assert.Equal(t, 30, rs[2].Score)
}

func TestStartMatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/match/start", r.URL.Path)
		var body startMatchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"1": "ana"}, body.TeamOne)
		assert.Equal(t, map[string]string{"2": "2"}, body.TeamTwo)
		assert.Equal(t, "de_nuke", body.Maps)
		_, _ = w.Write([]byte(`{"match_id":1,"ip":"1.2.3.4","port":27015}`))
	})

	srv, err := c.StartMatch(context.Background(), domain.MatchRequest{
		TeamOne: []string{"1"},
		TeamTwo: []string{"2"},
		Names:   map[string]string{"1": "ana"},
		Map:     "de_nuke",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MatchServer{ID: "1", IP: "1.2.3.4", Port: 27015}, srv)
}

func TestStartMatchUnavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no servers", http.StatusServiceUnavailable)
	})

	_, err := c.StartMatch(context.Background(), domain.MatchRequest{TeamOne: []string{"1"}, TeamTwo: []string{"2"}})
	assert.True(t, eris.Is(err, domain.ErrNoServer))
}

func TestRetryAfterOnce(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"discord":"5"}`))
	})

	r, err := c.GetPlayer(context.Background(), "5")
	require.NoError(t, err)
	assert.Equal(t, "5", r.UserID)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.GetPlayers(context.Background(), []string{"1"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "boom", apiErr.Body)
}
