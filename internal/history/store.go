// Package history records finished practice attempts so learners can see
// progress over time. The scoring core never reads history; the store is a
// write-behind of the session layer and the tool degrades to an in-memory
// store when no database is configured.
package history

import (
	"context"
	"time"

	"github.com/ecantero/habla/internal/align"
	"github.com/ecantero/habla/internal/paragraph"
)

// Attempt is one completed, evaluated scoring pass. Unevaluated attempts
// (empty transcript) are never recorded.
type Attempt struct {
	// ID is assigned by the store on Record.
	ID int64

	// Tier is the difficulty tier of the practiced paragraph.
	Tier paragraph.Difficulty

	// Paragraph is the authored text that was practiced.
	Paragraph string

	// Transcript is the raw recognized text the attempt was scored on.
	Transcript string

	// Score, Band, and the verdict counts mirror the attempt's
	// [align.Summary].
	Score   int
	Band    align.Band
	Correct int
	Close   int
	Poor    int

	// CreatedAt is when the attempt was recorded.
	CreatedAt time.Time
}

// Store persists completed attempts. Implementations must be safe for
// concurrent use.
type Store interface {
	// Record appends an attempt and fills in its ID and CreatedAt.
	Record(ctx context.Context, a *Attempt) error

	// ListRecent returns up to limit attempts, newest first. A limit of 0
	// or less returns an empty slice.
	ListRecent(ctx context.Context, limit int) ([]Attempt, error)
}
