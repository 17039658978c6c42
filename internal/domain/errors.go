package domain

import "github.com/rotisserie/eris"

var (
	ErrNotLinked = eris.New("player not linked")
	ErrNoServer  = eris.New("no match server available")
	ErrOddRoster = eris.New("roster must have an even number of players")
)
