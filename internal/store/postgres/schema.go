// Package postgres persists the painvoice data that outlives a request: the
// users' medication lists and the context segments produced for a voice note.
//
// Both tables share a single [pgxpool.Pool]. [Migrate] is idempotent and runs
// on every [NewStore].
//
//	store, err := postgres.NewStore(ctx, dsn)
//	if err != nil { … }
//	defer store.Close()
//
//	meds, _ := store.ListMedications(ctx, userID)
//	_ = store.ReplaceSegments(ctx, voiceNoteID, segs, segmenter.Version())
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ─────────────────────────────────────────────────────────────────────────────
// Medication list
// ─────────────────────────────────────────────────────────────────────────────

const ddlMedications = `
CREATE TABLE IF NOT EXISTS medications (
    id          TEXT         PRIMARY KEY,
    user_id     TEXT         NOT NULL,
    name        TEXT         NOT NULL,
    created_at  TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_medications_user_id
    ON medications (user_id);
`

// ─────────────────────────────────────────────────────────────────────────────
// Voice note segments
// ─────────────────────────────────────────────────────────────────────────────

const ddlSegments = `
CREATE TABLE IF NOT EXISTS voice_note_segments (
    id                  UUID         PRIMARY KEY,
    voice_note_id       TEXT         NOT NULL,
    segment_index       INTEGER      NOT NULL,
    segment_type        TEXT         NOT NULL,
    source_text         TEXT         NOT NULL,
    medication_name     TEXT         NOT NULL DEFAULT '',
    medication_dose     TEXT         NOT NULL DEFAULT '',
    medication_role     TEXT         NOT NULL DEFAULT '',
    effect_rating       TEXT         NOT NULL DEFAULT '',
    timing_relation     TEXT         NOT NULL DEFAULT '',
    time_reference      TEXT         NOT NULL DEFAULT '',
    factor_type         TEXT         NOT NULL DEFAULT '',
    factor_value        TEXT         NOT NULL DEFAULT '',
    normalized_summary  TEXT         NOT NULL DEFAULT '',
    confidence          DOUBLE PRECISION NOT NULL,
    is_ambiguous        BOOLEAN      NOT NULL DEFAULT false,
    nlp_version         TEXT         NOT NULL,
    created_at          TIMESTAMPTZ  NOT NULL DEFAULT now(),
    UNIQUE (voice_note_id, segment_index)
);

CREATE INDEX IF NOT EXISTS idx_voice_note_segments_note
    ON voice_note_segments (voice_note_id);
`

// Migrate creates all tables and indexes the store needs. It is safe to call
// on every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range []string{ddlMedications, ddlSegments} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres migrate: %w", err)
		}
	}
	return nil
}
