package league

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"

	"github.com/jose-valero/league-queue-bot/internal/domain"
)

// GetPlayer trae el rating de un usuario de Discord. Si no está linkeado devuelve domain.ErrNotLinked.
func (c *Client) GetPlayer(ctx context.Context, userID string) (domain.Rating, error) {
	var dto playerDTO
	err := c.doJSON(ctx, http.MethodGet, "/player/discord/"+url.PathEscape(userID), nil, &dto)
	if eris.Is(err, ErrNotFound) {
		return domain.Rating{}, domain.ErrNotLinked
	}
	if err != nil {
		return domain.Rating{}, eris.Wrapf(err, "get player %s", userID)
	}
	r := dto.toDomain()
	if r.UserID == "" {
		r.UserID = userID
	}
	return r, nil
}

// GetPlayers trae varios ratings y los devuelve en el mismo orden que userIDs.
// Los usuarios que la API no conoce se omiten.
func (c *Client) GetPlayers(ctx context.Context, userIDs []string) ([]domain.Rating, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var dtos []playerDTO
	if err := c.doJSON(ctx, http.MethodPost, "/players/discord", playersRequest{DiscordIDs: userIDs}, &dtos); err != nil {
		return nil, eris.Wrap(err, "get players")
	}
	byID := make(map[string]domain.Rating, len(dtos))
	for _, d := range dtos {
		r := d.toDomain()
		byID[r.UserID] = r
	}
	out := make([]domain.Rating, 0, len(userIDs))
	for _, id := range userIDs {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// StartMatch pide un servidor para los dos equipos. Cualquier fallo de la API se reporta como domain.ErrNoServer.
func (c *Client) StartMatch(ctx context.Context, req domain.MatchRequest) (domain.MatchServer, error) {
	body := startMatchRequest{
		TeamOne: namesFor(req.TeamOne, req.Names),
		TeamTwo: namesFor(req.TeamTwo, req.Names),
		Maps:    req.Map,
	}
	var dto matchServerDTO
	if err := c.doJSON(ctx, http.MethodPost, "/match/start", body, &dto); err != nil {
		return domain.MatchServer{}, eris.Wrap(domain.ErrNoServer, err.Error())
	}
	if dto.IP == "" || dto.Port == 0 {
		return domain.MatchServer{}, eris.Wrap(domain.ErrNoServer, "empty server in response")
	}
	return domain.MatchServer{ID: string(dto.MatchID), IP: dto.IP, Port: int(dto.Port)}, nil
}

func namesFor(ids []string, names map[string]string) map[string]string {
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if n := names[id]; n != "" {
			out[id] = n
		} else {
			out[id] = id
		}
	}
	return out
}
