package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"scholarship_catalog/internal/domain"
)

const scholarshipColumns = `
	external_id, source_id, slug, title, description, country, degree_offered,
	university, provider, program_duration, official_link, source_link,
	deadline, posted_at, created_at, updated_at`

type ScholarshipStore struct {
	db *sqlx.DB
}

func NewScholarshipStore(db *sqlx.DB) *ScholarshipStore {
	return &ScholarshipStore{db: db}
}

// Upsert inserts the scholarship or refreshes the stored row when the
// incoming copy is newer. Rows without an updated_at are always refreshed.
func (s *ScholarshipStore) Upsert(ctx context.Context, sch *domain.Scholarship) (int64, error) {
	exec := GetExecutor(ctx, s.db)

	query := `
		INSERT INTO scholarships (` + scholarshipColumns + `
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
		ON CONFLICT (source_id, external_id) DO UPDATE SET
			slug = EXCLUDED.slug,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			country = EXCLUDED.country,
			degree_offered = EXCLUDED.degree_offered,
			university = EXCLUDED.university,
			provider = EXCLUDED.provider,
			program_duration = EXCLUDED.program_duration,
			official_link = EXCLUDED.official_link,
			source_link = EXCLUDED.source_link,
			deadline = EXCLUDED.deadline,
			posted_at = EXCLUDED.posted_at,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at
		WHERE scholarships.updated_at IS NULL
			OR EXCLUDED.updated_at IS NULL
			OR scholarships.updated_at < EXCLUDED.updated_at
		RETURNING id`

	var id int64
	err := exec.QueryRowxContext(ctx, query,
		sch.ID,
		sch.SourceID,
		sch.Slug,
		sch.Title,
		sch.Description,
		sch.Country,
		sch.DegreeOffered,
		sch.University,
		sch.Provider,
		sch.ProgramDuration,
		sch.OfficialLink,
		sch.SourceLink,
		sch.Deadline,
		sch.PostedAt,
		sch.CreatedAt,
		sch.UpdatedAt,
	).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		err = exec.QueryRowxContext(ctx,
			"SELECT id FROM scholarships WHERE source_id = $1 AND external_id = $2",
			sch.SourceID, sch.ID,
		).Scan(&id)
	}

	if err != nil {
		return 0, err
	}

	return id, nil
}

// GetExistingBySourceAndIDs maps the known external ids of a source to their
// stored updated_at. A zero time means the row carries no update stamp.
func (s *ScholarshipStore) GetExistingBySourceAndIDs(ctx context.Context, sourceID string, ids []string) (map[string]time.Time, error) {
	if len(ids) == 0 {
		return make(map[string]time.Time), nil
	}

	query := `SELECT external_id, updated_at FROM scholarships WHERE source_id = $1 AND external_id = ANY($2)`

	rows, err := GetExecutor(ctx, s.db).QueryxContext(ctx, query, sourceID, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]time.Time)
	for rows.Next() {
		var extID string
		var updated sql.NullTime
		if err := rows.Scan(&extID, &updated); err != nil {
			return nil, err
		}
		result[extID] = updated.Time
	}

	return result, rows.Err()
}

// ListAll returns every stored scholarship. The catalog works on full
// snapshots, so there is no paging here.
func (s *ScholarshipStore) ListAll(ctx context.Context) ([]domain.Scholarship, error) {
	query := `SELECT ` + scholarshipColumns + ` FROM scholarships ORDER BY id`

	var out []domain.Scholarship
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &out, query); err != nil {
		return nil, err
	}
	return out, nil
}
