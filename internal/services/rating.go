package services

import (
	"context"
	"errors"
	"time"

	"photo-rating-backend/internal/models"
	"photo-rating-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Score bounds
const (
	MinScore = 1
	MaxScore = 5
)

// RatingService records ratings and moves points from photo owners to raters
type RatingService struct {
	store    repository.Store
	ledger   *Ledger
	notifier Notifier
}

// NewRatingService creates a new rating service
func NewRatingService(store repository.Store, ledger *Ledger, notifier Notifier) *RatingService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &RatingService{store: store, ledger: ledger, notifier: notifier}
}

// Rate records score for photoID by raterID and returns the rater's new balance.
// The rater gains RatingReward points and the owner loses RatingCharge points,
// without a floor on the owner's balance.
func (s *RatingService) Rate(ctx context.Context, photoID, raterID string, score int) (int, error) {
	if score < MinScore || score > MaxScore {
		return 0, ErrInvalidScore
	}

	var (
		raterPoints int
		ownerPoints int
		ownerID     string
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		photo, err := tx.Photos().GetRatable(ctx, photoID, raterID)
		if err != nil {
			return photoError(err)
		}
		ownerID = photo.UserID

		if err := tx.Users().LockByIDs(ctx, raterID, ownerID); err != nil {
			return ledgerError(err)
		}

		exists, err := tx.Ratings().Exists(ctx, photoID, raterID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateRating
		}

		rater, err := tx.Users().GetByID(ctx, raterID)
		if err != nil {
			return ledgerError(err)
		}

		rating := &models.Rating{
			ID:          uuid.New().String(),
			PhotoID:     photoID,
			RaterID:     raterID,
			Score:       score,
			RaterGender: rater.Gender,
			RaterAge:    rater.Age,
			CreatedAt:   time.Now().UTC(),
		}
		if err := tx.Ratings().Create(ctx, rating); err != nil {
			if errors.Is(err, repository.ErrDuplicateRating) {
				return ErrDuplicateRating
			}
			return photoError(err)
		}

		ledger := s.ledger.bind(tx)
		if raterPoints, err = ledger.Adjust(ctx, raterID, RatingReward); err != nil {
			return err
		}
		if ownerPoints, err = ledger.Adjust(ctx, ownerID, -RatingCharge); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info().
		Str("photo_id", photoID).
		Str("rater_id", raterID).
		Str("owner_id", ownerID).
		Int("score", score).
		Msg("Photo rated")
	s.notifier.PhotoRated(ownerID, photoID, score, ownerPoints)

	return raterPoints, nil
}

// ComputeStats aggregates ratings. All four age buckets are always present.
func ComputeStats(ratings []models.Rating) models.PhotoStats {
	stats := models.PhotoStats{
		TotalRatings: len(ratings),
		GenderStats:  make(map[string]int),
		AgeStats: map[string]int{
			models.AgeUnder20: 0,
			models.Age20To30:  0,
			models.Age30To40:  0,
			models.AgeOver40:  0,
		},
	}
	if len(ratings) == 0 {
		return stats
	}

	sum := 0
	for _, r := range ratings {
		sum += r.Score
		stats.GenderStats[r.RaterGender]++
		stats.AgeStats[AgeBucket(r.RaterAge)]++
	}
	stats.AverageScore = float64(sum) / float64(len(ratings))

	return stats
}

// AgeBucket returns the stats bucket for age
func AgeBucket(age int) string {
	switch {
	case age < 20:
		return models.AgeUnder20
	case age < 30:
		return models.Age20To30
	case age < 40:
		return models.Age30To40
	default:
		return models.AgeOver40
	}
}
