package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrWong99/painvoice/internal/segment"
	"github.com/MrWong99/painvoice/pkg/types"
)

// ErrEmptyID is returned when a user or voice note ID is blank.
var ErrEmptyID = errors.New("postgres store: empty id")

// Store is the PostgreSQL-backed medication and segment store. All methods
// are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to dsn, pings the server and runs [Migrate].
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres store: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: ping: %w", err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: migrate: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Ping checks the connection; it backs the readiness check.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases all pooled connections.
func (s *Store) Close() {
	s.pool.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// Medications
// ─────────────────────────────────────────────────────────────────────────────

// ListMedications returns the medication list of userID in the order the
// user added them. An unknown user yields an empty, non-nil slice.
func (s *Store) ListMedications(ctx context.Context, userID string) ([]types.UserMedication, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrEmptyID
	}
	const q = `
		SELECT id, name
		FROM   medications
		WHERE  user_id = $1
		ORDER  BY created_at, name`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres store: list medications: %w", err)
	}
	meds, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.UserMedication, error) {
		var m types.UserMedication
		err := row.Scan(&m.ID, &m.Name)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres store: list medications: %w", err)
	}
	if meds == nil {
		meds = []types.UserMedication{}
	}
	return meds, nil
}

// AddMedication stores name on userID's list and returns the new row.
func (s *Store) AddMedication(ctx context.Context, userID, name string) (types.UserMedication, error) {
	name = strings.TrimSpace(name)
	if strings.TrimSpace(userID) == "" || name == "" {
		return types.UserMedication{}, ErrEmptyID
	}
	med := types.UserMedication{ID: uuid.NewString(), Name: name}
	const q = `INSERT INTO medications (id, user_id, name) VALUES ($1, $2, $3)`
	if _, err := s.pool.Exec(ctx, q, med.ID, userID, med.Name); err != nil {
		return types.UserMedication{}, fmt.Errorf("postgres store: add medication: %w", err)
	}
	return med, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Segments
// ─────────────────────────────────────────────────────────────────────────────

// segmentColumns is the COPY column order of voice_note_segments.
var segmentColumns = []string{
	"id", "voice_note_id", "segment_index", "segment_type", "source_text",
	"medication_name", "medication_dose", "medication_role", "effect_rating",
	"timing_relation", "time_reference", "factor_type", "factor_value",
	"normalized_summary", "confidence", "is_ambiguous", "nlp_version",
}

// ReplaceSegments replaces every stored segment of voiceNoteID with segs in
// a single transaction. An empty segs clears the note.
func (s *Store) ReplaceSegments(ctx context.Context, voiceNoteID string, segs []segment.ContextSegment, version string) error {
	if strings.TrimSpace(voiceNoteID) == "" {
		return ErrEmptyID
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM voice_note_segments WHERE voice_note_id = $1`, voiceNoteID); err != nil {
			return fmt.Errorf("postgres store: replace segments: delete: %w", err)
		}
		if len(segs) == 0 {
			return nil
		}

		rows := make([][]any, 0, len(segs))
		for _, seg := range segs {
			rows = append(rows, []any{
				uuid.New(), voiceNoteID, seg.Index, string(seg.Type), seg.SourceText,
				seg.MedicationName, seg.MedicationDose, seg.MedicationRole, seg.EffectRating,
				seg.TimingRelation, seg.TimeReference, seg.FactorType, seg.FactorValue,
				seg.NormalizedSummary, seg.Confidence, seg.IsAmbiguous, version,
			})
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"voice_note_segments"}, segmentColumns, pgx.CopyFromRows(rows)); err != nil {
			return fmt.Errorf("postgres store: replace segments: insert: %w", err)
		}
		return nil
	})
}

// ListSegments returns the stored segments of voiceNoteID ordered by index,
// together with the parser version that produced them.
func (s *Store) ListSegments(ctx context.Context, voiceNoteID string) ([]segment.ContextSegment, string, error) {
	const q = `
		SELECT segment_index, segment_type, source_text,
		       medication_name, medication_dose, medication_role, effect_rating,
		       timing_relation, time_reference, factor_type, factor_value,
		       normalized_summary, confidence, is_ambiguous, nlp_version
		FROM   voice_note_segments
		WHERE  voice_note_id = $1
		ORDER  BY segment_index`

	rows, err := s.pool.Query(ctx, q, voiceNoteID)
	if err != nil {
		return nil, "", fmt.Errorf("postgres store: list segments: %w", err)
	}

	var version string
	segs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (segment.ContextSegment, error) {
		var (
			seg segment.ContextSegment
			typ string
		)
		err := row.Scan(
			&seg.Index, &typ, &seg.SourceText,
			&seg.MedicationName, &seg.MedicationDose, &seg.MedicationRole, &seg.EffectRating,
			&seg.TimingRelation, &seg.TimeReference, &seg.FactorType, &seg.FactorValue,
			&seg.NormalizedSummary, &seg.Confidence, &seg.IsAmbiguous, &version,
		)
		seg.Type = segment.Type(typ)
		return seg, err
	})
	if err != nil {
		return nil, "", fmt.Errorf("postgres store: list segments: %w", err)
	}
	if segs == nil {
		segs = []segment.ContextSegment{}
	}
	return segs, version, nil
}
