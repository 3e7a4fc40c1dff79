// Package session keeps the review state of a dictation session between
// utterances. Each append parses the new utterance and merges it into the
// stored state; appends to one session are serialised.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/MrWong99/painvoice/internal/merge"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session: not found")

// Record is the persisted state of one review session.
type Record struct {
	State     merge.ReviewState `json:"state"`
	Appends   int               `json:"appends"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Store persists session records. Implementations expire records after
// their configured TTL and must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, id string) (Record, error)
	Put(ctx context.Context, id string, rec Record) error
	Delete(ctx context.Context, id string) error
}
