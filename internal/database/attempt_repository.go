package database

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/oposbot/pkg/models"
)

// DefaultPageSize is the number of rows fetched per query when reading all attempts
const DefaultPageSize = 1000

// Missing counts and scores read as zero
const attemptColumns = `id, user_identity,
	COALESCE(user_name, '') AS user_name,
	COALESCE(correct_count, 0) AS correct_count,
	COALESCE(incorrect_count, 0) AS incorrect_count,
	COALESCE(normalized_score, 0) AS normalized_score,
	COALESCE(category, '') AS category,
	occurred_at`

// AttemptRepository handles database operations for test attempts
type AttemptRepository struct {
	db       *sqlx.DB
	PageSize int
}

// NewAttemptRepository creates a new repository instance
func NewAttemptRepository(db *sqlx.DB) *AttemptRepository {
	return &AttemptRepository{db: db, PageSize: DefaultPageSize}
}

// Create inserts a new attempt
func (r *AttemptRepository) Create(ctx context.Context, attempt *models.Attempt) error {
	query := r.db.Rebind(`
		INSERT INTO attempts (
			user_identity, user_name, correct_count, incorrect_count,
			normalized_score, category, occurred_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	var category interface{}
	if attempt.Category != "" {
		category = attempt.Category
	}

	err := r.db.QueryRowxContext(ctx, query,
		attempt.UserIdentity,
		attempt.UserName,
		attempt.CorrectCount,
		attempt.IncorrectCount,
		attempt.NormalizedScore,
		category,
		attempt.OccurredAt.UTC(),
	).Scan(&attempt.ID)
	if err != nil {
		return errors.Wrap(err, "failed to create attempt")
	}
	return nil
}

// ListAll returns every attempt, newest first, reading page by page
func (r *AttemptRepository) ListAll(ctx context.Context) ([]models.Attempt, error) {
	pageSize := r.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	query := r.db.Rebind(`
		SELECT ` + attemptColumns + `
		FROM attempts
		ORDER BY occurred_at DESC, id DESC
		LIMIT ? OFFSET ?
	`)

	var all []models.Attempt
	for page := 0; ; page++ {
		var batch []models.Attempt
		if err := r.db.SelectContext(ctx, &batch, query, pageSize, page*pageSize); err != nil {
			return nil, errors.Wrapf(err, "failed to list attempts (page %d)", page)
		}
		all = append(all, batch...)
		if len(batch) < pageSize {
			break
		}
	}
	return all, nil
}

// ListByUser returns the attempts of one user, newest first
func (r *AttemptRepository) ListByUser(ctx context.Context, identity string) ([]models.Attempt, error) {
	var attempts []models.Attempt
	err := r.db.SelectContext(ctx, &attempts, r.db.Rebind(`
		SELECT `+attemptColumns+`
		FROM attempts
		WHERE user_identity = ?
		ORDER BY occurred_at DESC, id DESC
	`), identity)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list user attempts")
	}
	return attempts, nil
}

// Count returns the number of stored attempts
func (r *AttemptRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM attempts`); err != nil {
		return 0, errors.Wrap(err, "failed to count attempts")
	}
	return count, nil
}
