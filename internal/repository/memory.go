package repository

import (
	"context"
	"maps"
	"slices"
	"sync"

	"photo-rating-backend/internal/models"
)

// MemoryStore is a process-local Store used for development and tests.
// Transactions serialise on one mutex and restore a snapshot when the
// callback fails.
type MemoryStore struct {
	mu   *sync.Mutex
	data *memoryData
	inTx bool
}

type memoryData struct {
	users      map[string]models.User
	emails     map[string]string
	photos     map[string]models.Photo
	photoOrder []string
	ratings    map[string][]models.Rating
}

func (d *memoryData) clone() *memoryData {
	ratings := make(map[string][]models.Rating, len(d.ratings))
	for k, v := range d.ratings {
		ratings[k] = slices.Clone(v)
	}
	return &memoryData{
		users:      maps.Clone(d.users),
		emails:     maps.Clone(d.emails),
		photos:     maps.Clone(d.photos),
		photoOrder: slices.Clone(d.photoOrder),
		ratings:    ratings,
	}
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu: &sync.Mutex{},
		data: &memoryData{
			users:   make(map[string]models.User),
			emails:  make(map[string]string),
			photos:  make(map[string]models.Photo),
			ratings: make(map[string][]models.Rating),
		},
	}
}

func (s *MemoryStore) Users() UserStore     { return memoryUsers{s} }
func (s *MemoryStore) Photos() PhotoStore   { return memoryPhotos{s} }
func (s *MemoryStore) Ratings() RatingStore { return memoryRatings{s} }

// WithTx runs fn while holding the store lock
func (s *MemoryStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	tx := &MemoryStore{mu: s.mu, data: s.data, inTx: true}
	if err := fn(tx); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

// acquire locks the store unless the caller already holds it through WithTx
func (s *MemoryStore) acquire() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) Create(_ context.Context, user *models.User) error {
	defer r.s.acquire()()
	d := r.s.data
	if _, taken := d.emails[user.Email]; taken {
		return ErrDuplicateEmail
	}
	d.users[user.ID] = *user
	d.emails[user.Email] = user.ID
	return nil
}

func (r memoryUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	defer r.s.acquire()()
	user, ok := r.s.data.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (r memoryUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	defer r.s.acquire()()
	id, ok := r.s.data.emails[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	user := r.s.data.users[id]
	return &user, nil
}

func (r memoryUsers) LockByIDs(_ context.Context, ids ...string) error {
	defer r.s.acquire()()
	for _, id := range ids {
		if _, ok := r.s.data.users[id]; !ok {
			return ErrUserNotFound
		}
	}
	return nil
}

func (r memoryUsers) AddPoints(_ context.Context, id string, delta int) (int, error) {
	defer r.s.acquire()()
	user, ok := r.s.data.users[id]
	if !ok {
		return 0, ErrUserNotFound
	}
	user.Points += delta
	r.s.data.users[id] = user
	return user.Points, nil
}

func (r memoryUsers) ChargePoints(_ context.Context, id string, cost int) (int, error) {
	defer r.s.acquire()()
	user, ok := r.s.data.users[id]
	if !ok {
		return 0, ErrUserNotFound
	}
	if user.Points < cost {
		return 0, ErrInsufficientBalance
	}
	user.Points -= cost
	r.s.data.users[id] = user
	return user.Points, nil
}

func (r memoryUsers) UpdateProfile(_ context.Context, id, gender string, age int) error {
	return r.update(id, func(u *models.User) {
		u.Gender = gender
		u.Age = age
	})
}

func (r memoryUsers) SetResetToken(_ context.Context, id string, token *string) error {
	return r.update(id, func(u *models.User) { u.ResetToken = token })
}

func (r memoryUsers) UpdatePassword(_ context.Context, id, passwordHash string) error {
	return r.update(id, func(u *models.User) {
		u.PasswordHash = passwordHash
		u.ResetToken = nil
	})
}

func (r memoryUsers) update(id string, fn func(u *models.User)) error {
	defer r.s.acquire()()
	user, ok := r.s.data.users[id]
	if !ok {
		return ErrUserNotFound
	}
	fn(&user)
	r.s.data.users[id] = user
	return nil
}

type memoryPhotos struct{ s *MemoryStore }

func (r memoryPhotos) Create(_ context.Context, photo *models.Photo) error {
	defer r.s.acquire()()
	d := r.s.data
	d.photos[photo.ID] = *photo
	d.photoOrder = append(d.photoOrder, photo.ID)
	return nil
}

func (r memoryPhotos) GetOwned(_ context.Context, id, ownerID string) (*models.Photo, error) {
	defer r.s.acquire()()
	photo, ok := r.s.data.photos[id]
	if !ok || photo.UserID != ownerID {
		return nil, ErrPhotoNotFound
	}
	return &photo, nil
}

func (r memoryPhotos) GetRatable(_ context.Context, id, raterID string) (*models.Photo, error) {
	defer r.s.acquire()()
	photo, ok := r.s.data.photos[id]
	if !ok || !photo.IsActive || photo.UserID == raterID {
		return nil, ErrPhotoNotFound
	}
	return &photo, nil
}

func (r memoryPhotos) SetActive(_ context.Context, id string, active bool) error {
	defer r.s.acquire()()
	photo, ok := r.s.data.photos[id]
	if !ok {
		return ErrPhotoNotFound
	}
	photo.IsActive = active
	r.s.data.photos[id] = photo
	return nil
}

func (r memoryPhotos) Delete(_ context.Context, id string) error {
	defer r.s.acquire()()
	d := r.s.data
	if _, ok := d.photos[id]; !ok {
		return ErrPhotoNotFound
	}
	delete(d.photos, id)
	delete(d.ratings, id)
	d.photoOrder = slices.DeleteFunc(d.photoOrder, func(pid string) bool { return pid == id })
	return nil
}

func (r memoryPhotos) ListByOwner(_ context.Context, ownerID string) ([]*models.Photo, error) {
	defer r.s.acquire()()
	var photos []*models.Photo
	for _, id := range r.s.data.photoOrder {
		photo := r.s.data.photos[id]
		if photo.UserID == ownerID {
			photos = append(photos, &photo)
		}
	}
	return photos, nil
}

func (r memoryPhotos) ListCandidates(_ context.Context, raterID string, filter models.CandidateFilter) ([]*models.Candidate, error) {
	defer r.s.acquire()()
	d := r.s.data
	var candidates []*models.Candidate
	for _, id := range d.photoOrder {
		photo := d.photos[id]
		if !photo.IsActive || photo.UserID == raterID {
			continue
		}
		if slices.ContainsFunc(d.ratings[id], func(rt models.Rating) bool { return rt.RaterID == raterID }) {
			continue
		}
		owner := d.users[photo.UserID]
		if filter.Gender != nil && owner.Gender != *filter.Gender {
			continue
		}
		if filter.MinAge != nil && owner.Age < *filter.MinAge {
			continue
		}
		if filter.MaxAge != nil && owner.Age > *filter.MaxAge {
			continue
		}
		candidates = append(candidates, &models.Candidate{
			ID:       photo.ID,
			FilePath: photo.FilePath,
			Owner:    models.Owner{ID: owner.ID, Gender: owner.Gender, Age: owner.Age},
		})
	}
	return candidates, nil
}

type memoryRatings struct{ s *MemoryStore }

func (r memoryRatings) Create(_ context.Context, rating *models.Rating) error {
	defer r.s.acquire()()
	d := r.s.data
	if _, ok := d.photos[rating.PhotoID]; !ok {
		return ErrPhotoNotFound
	}
	if slices.ContainsFunc(d.ratings[rating.PhotoID], func(rt models.Rating) bool { return rt.RaterID == rating.RaterID }) {
		return ErrDuplicateRating
	}
	d.ratings[rating.PhotoID] = append(d.ratings[rating.PhotoID], *rating)
	return nil
}

func (r memoryRatings) Exists(_ context.Context, photoID, raterID string) (bool, error) {
	defer r.s.acquire()()
	return slices.ContainsFunc(r.s.data.ratings[photoID], func(rt models.Rating) bool { return rt.RaterID == raterID }), nil
}

func (r memoryRatings) ListByPhotoIDs(_ context.Context, photoIDs []string) (map[string][]models.Rating, error) {
	defer r.s.acquire()()
	result := make(map[string][]models.Rating, len(photoIDs))
	for _, id := range photoIDs {
		if ratings := r.s.data.ratings[id]; len(ratings) > 0 {
			result[id] = slices.Clone(ratings)
		}
	}
	return result, nil
}
