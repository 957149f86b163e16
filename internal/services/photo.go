package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"photo-rating-backend/internal/models"
	"photo-rating-backend/internal/repository"
	"photo-rating-backend/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PhotoService handles photo uploads, activation and deletion
type PhotoService struct {
	store    repository.Store
	ledger   *Ledger
	storage  storage.Storage
	notifier Notifier
}

// NewPhotoService creates a new photo service
func NewPhotoService(store repository.Store, ledger *Ledger, storage storage.Storage, notifier Notifier) *PhotoService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &PhotoService{
		store:    store,
		ledger:   ledger,
		storage:  storage,
		notifier: notifier,
	}
}

// UploadFile is a validated image ready to be stored
type UploadFile struct {
	Ext         string
	ContentType string
	Body        io.Reader
}

// ToggleResult is the state of a photo after Toggle
type ToggleResult struct {
	IsActive bool
	Points   int
}

// Upload stores the blob and creates an inactive photo owned by ownerID
func (s *PhotoService) Upload(ctx context.Context, ownerID string, file UploadFile) (*models.Photo, error) {
	photoID := uuid.New().String()
	key := fmt.Sprintf("photos/%s/%s%s", ownerID, photoID, file.Ext)

	if err := s.storage.Save(ctx, key, file.Body, file.ContentType); err != nil {
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}

	photo := &models.Photo{
		ID:        photoID,
		UserID:    ownerID,
		FilePath:  key,
		IsActive:  false,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Photos().Create(ctx, photo); err != nil {
		if delErr := s.storage.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			log.Warn().Err(delErr).Str("key", key).Msg("Failed to remove orphaned blob")
		}
		return nil, fmt.Errorf("failed to create photo record: %w", err)
	}

	log.Info().Str("user_id", ownerID).Str("photo_id", photoID).Msg("Photo uploaded")
	return photo, nil
}

// URL returns the address a stored photo can be fetched from
func (s *PhotoService) URL(photo *models.Photo) string {
	return s.storage.URL(photo.FilePath)
}

// Toggle flips the active flag of a photo owned by ownerID.
// Activation costs ActivationCost points; deactivation is free.
func (s *PhotoService) Toggle(ctx context.Context, photoID, ownerID string) (*ToggleResult, error) {
	var result ToggleResult
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		photo, err := tx.Photos().GetOwned(ctx, photoID, ownerID)
		if err != nil {
			return photoError(err)
		}
		ledger := s.ledger.bind(tx)

		if photo.IsActive {
			if err := tx.Photos().SetActive(ctx, photo.ID, false); err != nil {
				return err
			}
			points, err := ledger.Balance(ctx, ownerID)
			if err != nil {
				return err
			}
			result = ToggleResult{IsActive: false, Points: points}
			return nil
		}

		points, err := ledger.Charge(ctx, ownerID, ActivationCost)
		if err != nil {
			return err
		}
		if err := tx.Photos().SetActive(ctx, photo.ID, true); err != nil {
			return err
		}
		result = ToggleResult{IsActive: true, Points: points}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", ownerID).
		Str("photo_id", photoID).
		Bool("is_active", result.IsActive).
		Int("points", result.Points).
		Msg("Photo toggled")
	s.notifier.PointsUpdated(ownerID, result.Points)

	return &result, nil
}

// Delete removes a photo owned by ownerID and returns the owner's balance.
// Deleting an active photo costs DeletionCost points.
func (s *PhotoService) Delete(ctx context.Context, photoID, ownerID string) (int, error) {
	var (
		points int
		key    string
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		photo, err := tx.Photos().GetOwned(ctx, photoID, ownerID)
		if err != nil {
			return photoError(err)
		}
		key = photo.FilePath
		ledger := s.ledger.bind(tx)

		if photo.IsActive {
			points, err = ledger.Charge(ctx, ownerID, DeletionCost)
		} else {
			points, err = ledger.Balance(ctx, ownerID)
		}
		if err != nil {
			return err
		}

		return photoError(tx.Photos().Delete(ctx, photo.ID))
	})
	if err != nil {
		return 0, err
	}

	// the row is gone, a leftover blob is only wasted space
	if err := s.storage.Delete(context.WithoutCancel(ctx), key); err != nil {
		log.Warn().Err(err).Str("photo_id", photoID).Str("key", key).Msg("Failed to delete photo blob")
	}

	log.Info().Str("user_id", ownerID).Str("photo_id", photoID).Int("points", points).Msg("Photo deleted")
	s.notifier.PointsUpdated(ownerID, points)

	return points, nil
}

// ListMine returns the photos of ownerID with their rating statistics
func (s *PhotoService) ListMine(ctx context.Context, ownerID string) ([]*models.PhotoWithStats, error) {
	photos, err := s.store.Photos().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(photos))
	for i, p := range photos {
		ids[i] = p.ID
	}
	ratings, err := s.store.Ratings().ListByPhotoIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]*models.PhotoWithStats, 0, len(photos))
	for _, p := range photos {
		result = append(result, &models.PhotoWithStats{
			ID:         p.ID,
			FilePath:   p.FilePath,
			URL:        s.storage.URL(p.FilePath),
			IsActive:   p.IsActive,
			PhotoStats: ComputeStats(ratings[p.ID]),
		})
	}
	return result, nil
}

func photoError(err error) error {
	if errors.Is(err, repository.ErrPhotoNotFound) {
		return fmt.Errorf("photo %w", ErrNotFound)
	}
	return err
}
