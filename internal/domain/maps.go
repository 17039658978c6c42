package domain

import "github.com/rotisserie/eris"

const (
	mapImageFolder = "https://raw.githubusercontent.com/csgo-league/csgo-league-bot/develop/assets/maps/images/"
	mapIconFolder  = "https://raw.githubusercontent.com/csgo-league/csgo-league-bot/develop/assets/maps/icons/"
)

var ErrUnknownMap = eris.New("unknown map")

type Map struct {
	Name    string
	DevName string
}

func (m Map) ImageURL() string { return mapImageFolder + m.DevName + ".jpg" }
func (m Map) IconURL() string  { return mapIconFolder + m.DevName + ".png" }

// Catalog es la lista fija de mapas que el bot conoce, en orden de presentación.
var Catalog = []Map{
	{Name: "Ancient", DevName: "de_ancient"},
	{Name: "Cache", DevName: "de_cache"},
	{Name: "Cobblestone", DevName: "de_cbble"},
	{Name: "Dust II", DevName: "de_dust2"},
	{Name: "Inferno", DevName: "de_inferno"},
	{Name: "Mirage", DevName: "de_mirage"},
	{Name: "Nuke", DevName: "de_nuke"},
	{Name: "Overpass", DevName: "de_overpass"},
	{Name: "Train", DevName: "de_train"},
	{Name: "Vertigo", DevName: "de_vertigo"},
}

var DefaultMapPool = []string{
	"de_dust2", "de_inferno", "de_mirage", "de_nuke", "de_overpass", "de_train", "de_vertigo",
}

func MapByDevName(devName string) (Map, bool) {
	for _, m := range Catalog {
		if m.DevName == devName {
			return m, true
		}
	}
	return Map{}, false
}

// PoolMaps resuelve los dev names de un pool contra el catálogo, respetando el orden del catálogo.
func PoolMaps(pool []string) ([]Map, error) {
	in := make(map[string]bool, len(pool))
	for _, dn := range pool {
		if _, ok := MapByDevName(dn); !ok {
			return nil, eris.Wrapf(ErrUnknownMap, "map %q", dn)
		}
		in[dn] = true
	}
	out := make([]Map, 0, len(in))
	for _, m := range Catalog {
		if in[m.DevName] {
			out = append(out, m)
		}
	}
	return out, nil
}

// NormalizePool deja el pool sin duplicados y en orden de catálogo.
func NormalizePool(pool []string) ([]string, error) {
	maps, err := PoolMaps(pool)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(maps))
	for i, m := range maps {
		out[i] = m.DevName
	}
	return out, nil
}
