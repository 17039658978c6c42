package discord

import (
	"time"

	"github.com/rs/zerolog/log"
)

func step(label string) func() {
	start := time.Now()
	return func() {
		log.Debug().Str("component", "discord").Str("step", label).Dur("elapsed", time.Since(start)).Msg("trace")
	}
}
