package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/pratik-mahalle/upscaler/internal/domain/profile"
	"github.com/pratik-mahalle/upscaler/internal/pkg/errors"
	"github.com/pratik-mahalle/upscaler/internal/pkg/metrics"
)

// ProfileRepository implements profile.Repository
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *sql.DB) profile.Repository {
	return &ProfileRepository{db: db}
}

// Create inserts a new profile
func (r *ProfileRepository) Create(ctx context.Context, p *profile.Profile) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO profiles (id, credits, is_premium, total_upscales, first_name, last_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Credits, p.IsPremium, p.TotalUpscales, p.FirstName, p.LastName,
		now.UnixMilli(), now.UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Conflict("Profile already exists")
		}
		return errors.DatabaseError("Failed to create profile", err)
	}
	return nil
}

// GetByID retrieves a profile by user ID
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*profile.Profile, error) {
	defer func(start time.Time) { metrics.RecordDBQuery("select", "profiles", time.Since(start)) }(time.Now())

	query := `
		SELECT id, credits, is_premium, total_upscales, first_name, last_name, created_at, updated_at
		FROM profiles WHERE id = $1
	`

	var p profile.Profile
	var firstName, lastName sql.NullString
	var createdAt, updatedAt int64

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Credits, &p.IsPremium, &p.TotalUpscales, &firstName, &lastName, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("User profile")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get profile", err)
	}

	if firstName.Valid {
		p.FirstName = &firstName.String
	}
	if lastName.Valid {
		p.LastName = &lastName.String
	}
	p.CreatedAt = millis(createdAt)
	p.UpdatedAt = millis(updatedAt)

	return &p, nil
}

// DeductCredits charges a non-premium profile in a single conditional update
func (r *ProfileRepository) DeductCredits(ctx context.Context, id string, amount int64) (int64, int64, bool, error) {
	defer func(start time.Time) { metrics.RecordDBQuery("update", "profiles", time.Since(start)) }(time.Now())

	query := `
		UPDATE profiles
		SET credits = credits - $1, total_upscales = total_upscales + 1, updated_at = $3
		WHERE id = $2 AND is_premium = FALSE AND credits >= $1
		RETURNING credits, total_upscales
	`

	var credits, total int64
	err := r.db.QueryRowContext(ctx, query, amount, id, time.Now().UnixMilli()).Scan(&credits, &total)
	if err == sql.ErrNoRows {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, errors.DatabaseError("Failed to update credits", err)
	}
	return credits, total, true, nil
}

// Stats returns aggregate counters over all profiles
func (r *ProfileRepository) Stats(ctx context.Context) (*profile.Stats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN is_premium THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN is_premium THEN 0 ELSE credits END), 0)
		FROM profiles
	`

	var s profile.Stats
	if err := r.db.QueryRowContext(ctx, query).Scan(&s.Profiles, &s.PremiumProfiles, &s.CreditsOutstanding); err != nil {
		return nil, errors.DatabaseError("Failed to get profile stats", err)
	}
	return &s, nil
}
