package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/jose-valero/league-queue-bot/internal/domain"
)

const keyPrefix = "league:rating:"

// RatingSource es lo que se cachea (lo implementa league.Client).
type RatingSource interface {
	GetPlayers(ctx context.Context, userIDs []string) ([]domain.Rating, error)
}

// RatingCache es un read-through sobre Redis para los ratings que se usan al armar equipos.
type RatingCache struct {
	rdb *redis.Client
	src RatingSource
	ttl time.Duration
	log zerolog.Logger
}

func NewRatingCache(rdb *redis.Client, src RatingSource, ttl time.Duration, log zerolog.Logger) *RatingCache {
	return &RatingCache{rdb: rdb, src: src, ttl: ttl, log: log}
}

// Dial parsea la URL de Redis y verifica la conexión.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, eris.Wrap(err, "parse redis url")
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, eris.Wrap(err, "redis ping")
	}
	return rdb, nil
}

// GetPlayers devuelve los ratings en el orden de userIDs. Si Redis falla se va directo a la fuente.
func (c *RatingCache) GetPlayers(ctx context.Context, userIDs []string) ([]domain.Rating, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = keyPrefix + id
	}

	found := make(map[string]domain.Rating, len(userIDs))
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		c.log.Warn().Err(err).Msg("rating cache read failed")
		vals = nil
	}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var r domain.Rating
		if err := json.Unmarshal([]byte(s), &r); err != nil {
			continue
		}
		found[userIDs[i]] = r
	}

	var missing []string
	for _, id := range userIDs {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		fresh, err := c.src.GetPlayers(ctx, missing)
		if err != nil {
			return nil, err
		}
		pipe := c.rdb.Pipeline()
		for _, r := range fresh {
			found[r.UserID] = r
			b, err := json.Marshal(r)
			if err != nil {
				continue
			}
			pipe.Set(ctx, keyPrefix+r.UserID, b, c.ttl)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			c.log.Warn().Err(err).Msg("rating cache write failed")
		}
	}

	out := make([]domain.Rating, 0, len(userIDs))
	for _, id := range userIDs {
		if r, ok := found[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// Invalidate borra los ratings de los usuarios (por ejemplo al terminar un match).
func (c *RatingCache) Invalidate(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = keyPrefix + id
	}
	return eris.Wrap(c.rdb.Del(ctx, keys...).Err(), "rating cache invalidate")
}
