package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// MatchEvents lo implementa service.MatchService
type MatchEvents interface {
	HandleMatchEvent(ctx context.Context, matchID, status string) (bool, error)
}

// Pinger lo implementa *sql.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	secret  string
	matches MatchEvents
	db      Pinger
	mux     *http.ServeMux
	log     zerolog.Logger
}

// New arma el server. Con secret vacío el webhook no se expone; registry nil deja /metrics afuera.
func New(secret string, matches MatchEvents, db Pinger, registry *prometheus.Registry, log zerolog.Logger) *Server {
	s := &Server{secret: secret, matches: matches, db: db, mux: http.NewServeMux(), log: log}
	s.routes(registry)
	return s
}

func (s *Server) routes(registry *prometheus.Registry) {
	if s.secret != "" && s.matches != nil {
		s.mux.HandleFunc("/league/webhook", s.handleWebhook)
	}
	s.mux.HandleFunc("/healthz", s.handleHealth)
	if registry != nil {
		s.mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
}

func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !SecretMatches(r.Header.Get(SecretHeader), s.secret) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	evt, ok, err := DecodeMatchEvent(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}
	if !ok {
		// otros eventos de la liga no nos interesan
		w.WriteHeader(http.StatusNoContent)
		return
	}
	matchID, status := evt.MatchID, evt.Status

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	tracked, err := s.matches.HandleMatchEvent(ctx, matchID, status)
	if err != nil {
		s.log.Warn().Err(err).Str("match", matchID).Str("status", status).Msg("webhook event rejected")
		http.Error(w, "cannot apply event", http.StatusUnprocessableEntity)
		return
	}
	s.log.Info().Str("match", matchID).Str("status", status).Bool("tracked", tracked).Msg("webhook match event")

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"tracked": tracked})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	_, _ = w.Write([]byte("ok"))
}

// Run escucha en addr hasta que se cancele ctx.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("http listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return eris.Wrap(err, "http server")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return eris.Wrap(srv.Shutdown(shutdownCtx), "http shutdown")
	}
}
