// Lambda detrás de API Gateway para el webhook de la liga (alternativa a /league/webhook del bot).
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/caarlos0/env"
	"github.com/rs/zerolog"

	"github.com/jose-valero/league-queue-bot/internal/adapters/httpapi"
	"github.com/jose-valero/league-queue-bot/internal/app/service"
	"github.com/jose-valero/league-queue-bot/internal/infra/cache"
	"github.com/jose-valero/league-queue-bot/internal/infra/logging"
	"github.com/jose-valero/league-queue-bot/internal/infra/storage"
)

type lambdaConfig struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	Secret      string `env:"LEAGUE_WEBHOOK_SECRET,required"`
	RedisURL    string `env:"REDIS_URL"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

type webhook struct {
	secret  string
	matches httpapi.MatchEvents
	log     zerolog.Logger
}

func (h *webhook) handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	h.log.Debug().
		Str("path", req.RawPath).
		Str("ip", req.RequestContext.HTTP.SourceIP).
		Bool("b64", req.IsBase64Encoded).
		Msg("webhook hit")

	if !httpapi.SecretMatches(header(req.Headers, httpapi.SecretHeader), h.secret) {
		return reply(http.StatusUnauthorized, "unauthorized"), nil
	}

	body := req.Body
	if req.IsBase64Encoded {
		dec, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return reply(http.StatusBadRequest, "invalid base64"), nil
		}
		body = string(dec)
	}

	evt, ok, err := httpapi.DecodeMatchEvent(strings.NewReader(body))
	if err != nil {
		return reply(http.StatusBadRequest, "bad payload"), nil
	}
	if !ok {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusNoContent}, nil
	}

	tracked, err := h.matches.HandleMatchEvent(ctx, evt.MatchID, evt.Status)
	if err != nil {
		h.log.Warn().Err(err).Str("match", evt.MatchID).Str("status", evt.Status).Msg("webhook event rejected")
		return reply(http.StatusUnprocessableEntity, "cannot apply event"), nil
	}
	out, _ := json.Marshal(map[string]bool{"tracked": tracked})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(out),
	}, nil
}

// API Gateway v2 manda los headers en minúscula, pero no siempre.
func header(h map[string]string, name string) string {
	if v, ok := h[strings.ToLower(name)]; ok {
		return v
	}
	for k, v := range h {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func reply(code int, body string) events.APIGatewayV2HTTPResponse {
	return events.APIGatewayV2HTTPResponse{StatusCode: code, Body: body}
}

func main() {
	var cfg lambdaConfig
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}
	logging.Setup(cfg.LogLevel)
	log := logging.Component("webhook")

	db, err := storage.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db open")
	}
	// con Redis, un match terminado limpia los ratings cacheados que usa el bot
	var invalidator service.RatingInvalidator
	if cfg.RedisURL != "" {
		rdb, err := cache.Dial(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("rating cache disabled")
		} else {
			invalidator = cache.NewRatingCache(rdb, nil, 0, logging.Component("cache"))
		}
	}
	h := &webhook{
		secret:  cfg.Secret,
		matches: service.NewMatchService(storage.NewMatchRepo(db), invalidator, logging.Component("matches")),
		log:     log,
	}
	lambda.Start(h.handle)
}
