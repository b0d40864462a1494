package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs are lexicographically sortable
// by creation time and unique across processes, so invoice numbers derived
// from them survive concurrent or rapid successive runs.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
