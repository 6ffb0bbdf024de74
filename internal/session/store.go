// Package session persists quote controller snapshots between HTTP requests.
package session

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-quoteform/pkg/quote"
)

// ErrNotFound is returned when a session is missing or expired.
var ErrNotFound = errors.New("session: not found")

// Store loads and saves controller snapshots keyed by session id.
type Store interface {
	Get(ctx context.Context, id string) (quote.Snapshot, error)
	Save(ctx context.Context, id string, snap quote.Snapshot) error
	Delete(ctx context.Context, id string) error
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like one produced by NewID.
func ValidID(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func cloneSnapshot(snap quote.Snapshot) quote.Snapshot {
	out := snap
	if snap.Values != nil {
		out.Values = make(map[string]string, len(snap.Values))
		for k, v := range snap.Values {
			out.Values[k] = v
		}
	}
	return out
}
