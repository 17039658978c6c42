package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/league-queue-bot/internal/infra/metrics"
)

type fakeMatches struct {
	calls [][2]string
	err   error
}

func (f *fakeMatches) HandleMatchEvent(_ context.Context, matchID, status string) (bool, error) {
	f.calls = append(f.calls, [2]string{matchID, status})
	return f.err == nil && matchID == "m-1", f.err
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func post(t *testing.T, h http.Handler, secret, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/league/webhook", strings.NewReader(body))
	if secret != "" {
		req.Header.Set(SecretHeader, secret)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWebhookAppliesMatchStatus(t *testing.T) {
	m := &fakeMatches{}
	h := New("s3cret", m, nil, nil, zerolog.Nop()).Handler()

	rec := post(t, h, "s3cret", `{"event":"match_status_finished","payload":{"match_id":"m-1"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tracked":true}`, rec.Body.String())

	rec = post(t, h, "s3cret", `{"event":"MATCH_STATUS_UPDATE","payload":{"match_id":"m-2","status":"cancelled"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tracked":false}`, rec.Body.String())

	assert.Equal(t, [][2]string{{"m-1", "finished"}, {"m-2", "cancelled"}}, m.calls)
}

func TestWebhookRejects(t *testing.T) {
	m := &fakeMatches{}
	h := New("s3cret", m, nil, nil, zerolog.Nop()).Handler()

	assert.Equal(t, http.StatusForbidden, post(t, h, "", `{}`).Code)
	assert.Equal(t, http.StatusForbidden, post(t, h, "s3cre", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, h, "s3cret", `{not json`).Code)
	assert.Equal(t, http.StatusNoContent, post(t, h, "s3cret", `{"event":"hub_user_added","payload":{}}`).Code)

	m.err = eris.New("unknown match status")
	assert.Equal(t, http.StatusUnprocessableEntity, post(t, h, "s3cret", `{"event":"match_status_warmup","payload":{"match_id":"m-1"}}`).Code)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/league/webhook", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestWebhookDisabledWithoutSecret(t *testing.T) {
	h := New("", &fakeMatches{}, nil, nil, zerolog.Nop()).Handler()
	assert.Equal(t, http.StatusNotFound, post(t, h, "", `{}`).Code)
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	New("", nil, fakePinger{}, nil, zerolog.Nop()).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	New("", nil, fakePinger{err: eris.New("down")}, nil, zerolog.Nop()).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.NewMetrics(reg).QueueJoin("added")

	srv := httptest.NewServer(New("", nil, nil, reg, zerolog.Nop()).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `league_queue_joins_total{result="added"} 1`)
}
