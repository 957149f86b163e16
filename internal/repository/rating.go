package repository

import (
	"context"
	"fmt"

	"photo-rating-backend/internal/models"
)

// RatingRepository handles database operations for ratings
type RatingRepository struct {
	db DBTX
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db DBTX) *RatingRepository {
	return &RatingRepository{db: db}
}

// Create inserts a rating; (photo_id, rater_id) is unique
func (r *RatingRepository) Create(ctx context.Context, rating *models.Rating) error {
	query := `
		INSERT INTO ratings (id, photo_id, rater_id, score, rater_gender, rater_age, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		rating.ID, rating.PhotoID, rating.RaterID, rating.Score,
		rating.RaterGender, rating.RaterAge, rating.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateRating
		}
		return fmt.Errorf("failed to create rating: %w", err)
	}
	return nil
}

// Exists checks if raterID already rated photoID
func (r *RatingRepository) Exists(ctx context.Context, photoID, raterID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM ratings WHERE photo_id = $1 AND rater_id = $2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, photoID, raterID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check rating existence: %w", err)
	}
	return exists, nil
}

// ListByPhotoIDs retrieves the ratings of several photos keyed by photo ID
func (r *RatingRepository) ListByPhotoIDs(ctx context.Context, photoIDs []string) (map[string][]models.Rating, error) {
	result := make(map[string][]models.Rating, len(photoIDs))
	if len(photoIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT id, photo_id, rater_id, score, rater_gender, rater_age, created_at
		FROM ratings
		WHERE photo_id = ANY($1)
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query, photoIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get ratings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rating models.Rating
		err := rows.Scan(
			&rating.ID, &rating.PhotoID, &rating.RaterID, &rating.Score,
			&rating.RaterGender, &rating.RaterAge, &rating.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		result[rating.PhotoID] = append(result[rating.PhotoID], rating)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ratings: %w", err)
	}

	return result, nil
}
