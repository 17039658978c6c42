package league

import (
	"fmt"

	"github.com/rotisserie/eris"
)

var ErrNotFound = eris.New("not found")

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("league api status %d: %s", e.Status, e.Body)
}
