package repository

import (
	"context"
	"errors"
	"fmt"

	"photo-rating-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

// PhotoRepository handles database operations for photos
type PhotoRepository struct {
	db DBTX
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db DBTX) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// Create creates a new photo
func (r *PhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	query := `
		INSERT INTO photos (id, user_id, file_path, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		photo.ID, photo.UserID, photo.FilePath, photo.IsActive, photo.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create photo: %w", err)
	}
	return nil
}

// GetOwned retrieves a photo owned by ownerID and locks it
func (r *PhotoRepository) GetOwned(ctx context.Context, id, ownerID string) (*models.Photo, error) {
	query := `
		SELECT id, user_id, file_path, is_active, created_at
		FROM photos
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`
	return r.getOne(ctx, query, id, ownerID)
}

// GetRatable retrieves an active photo not owned by raterID and locks it
func (r *PhotoRepository) GetRatable(ctx context.Context, id, raterID string) (*models.Photo, error) {
	query := `
		SELECT id, user_id, file_path, is_active, created_at
		FROM photos
		WHERE id = $1 AND is_active AND user_id <> $2
		FOR UPDATE
	`
	return r.getOne(ctx, query, id, raterID)
}

func (r *PhotoRepository) getOne(ctx context.Context, query string, args ...any) (*models.Photo, error) {
	var photo models.Photo
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&photo.ID, &photo.UserID, &photo.FilePath, &photo.IsActive, &photo.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPhotoNotFound
		}
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return &photo, nil
}

// SetActive updates the active flag of a photo
func (r *PhotoRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE photos SET is_active = $2 WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("failed to update photo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrPhotoNotFound
	}
	return nil
}

// Delete deletes a photo and, through the foreign key, its ratings
func (r *PhotoRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM photos WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrPhotoNotFound
	}
	return nil
}

// ListByOwner retrieves all photos of a user in upload order
func (r *PhotoRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Photo, error) {
	query := `
		SELECT id, user_id, file_path, is_active, created_at
		FROM photos
		WHERE user_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get photos: %w", err)
	}
	defer rows.Close()

	var photos []*models.Photo
	for rows.Next() {
		var photo models.Photo
		if err := rows.Scan(&photo.ID, &photo.UserID, &photo.FilePath, &photo.IsActive, &photo.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, &photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	return photos, nil
}

// ListCandidates retrieves active photos of other users that raterID has not rated yet
func (r *PhotoRepository) ListCandidates(ctx context.Context, raterID string, filter models.CandidateFilter) ([]*models.Candidate, error) {
	query := `
		SELECT p.id, p.file_path, u.id, u.gender, u.age
		FROM photos p
		JOIN users u ON u.id = p.user_id
		WHERE p.is_active
		  AND p.user_id <> $1
		  AND NOT EXISTS (SELECT 1 FROM ratings r WHERE r.photo_id = p.id AND r.rater_id = $1)
	`
	args := []any{raterID}
	if filter.Gender != nil {
		args = append(args, *filter.Gender)
		query += fmt.Sprintf(" AND u.gender = $%d", len(args))
	}
	if filter.MinAge != nil {
		args = append(args, *filter.MinAge)
		query += fmt.Sprintf(" AND u.age >= $%d", len(args))
	}
	if filter.MaxAge != nil {
		args = append(args, *filter.MaxAge)
		query += fmt.Sprintf(" AND u.age <= $%d", len(args))
	}
	query += " ORDER BY p.created_at, p.id"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*models.Candidate
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.FilePath, &c.Owner.ID, &c.Owner.Gender, &c.Owner.Age); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidates: %w", err)
	}

	return candidates, nil
}
