package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"photo-rating-backend/internal/config"
	"photo-rating-backend/internal/models"
	"photo-rating-backend/internal/repository"
	"photo-rating-backend/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type event struct {
	kind    string
	userID  string
	photoID string
	score   int
	points  int
}

// recordingNotifier keeps every event for assertions
type recordingNotifier struct {
	mu     sync.Mutex
	events []event
}

func (n *recordingNotifier) PhotoRated(ownerID, photoID string, score, points int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event{kind: MessagePhotoRated, userID: ownerID, photoID: photoID, score: score, points: points})
}

func (n *recordingNotifier) PointsUpdated(userID string, points int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event{kind: MessagePointsUpdated, userID: userID, points: points})
}

func (n *recordingNotifier) last() (event, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.events) == 0 {
		return event{}, false
	}
	return n.events[len(n.events)-1], true
}

type testEnv struct {
	store    *repository.MemoryStore
	storage  *storage.LocalStorage
	notifier *recordingNotifier
	ledger   *Ledger
	photos   *PhotoService
	ratings  *RatingService
	feed     *FeedService
	users    *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := repository.NewMemoryStore()
	blobs, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatal(err)
	}
	notifier := &recordingNotifier{}
	ledger := NewLedger(store)

	users := NewUserService(store.Users(), config.JWTConfig{
		Secret:      "test-secret",
		Expiry:      time.Hour,
		ResetExpiry: 15 * time.Minute,
	})
	users.hashCost = bcrypt.MinCost

	return &testEnv{
		store:    store,
		storage:  blobs,
		notifier: notifier,
		ledger:   ledger,
		photos:   NewPhotoService(store, ledger, blobs, notifier),
		ratings:  NewRatingService(store, ledger, notifier),
		feed:     NewFeedService(store, blobs),
		users:    users,
	}
}

// createUser inserts a user with the given balance and demographics
func (e *testEnv) createUser(t *testing.T, points int, gender string, age int) *models.User {
	t.Helper()
	id := uuid.New().String()
	user := &models.User{
		ID:        id,
		Email:     id + "@example.com",
		Points:    points,
		Gender:    gender,
		Age:       age,
		CreatedAt: time.Now(),
	}
	if err := e.store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// createPhoto inserts a photo row without a blob
func (e *testEnv) createPhoto(t *testing.T, ownerID string, active bool) *models.Photo {
	t.Helper()
	id := uuid.New().String()
	photo := &models.Photo{
		ID:        id,
		UserID:    ownerID,
		FilePath:  "photos/" + ownerID + "/" + id + ".jpg",
		IsActive:  active,
		CreatedAt: time.Now(),
	}
	if err := e.store.Photos().Create(context.Background(), photo); err != nil {
		t.Fatalf("failed to create photo: %v", err)
	}
	return photo
}

func (e *testEnv) balance(t *testing.T, userID string) int {
	t.Helper()
	points, err := e.ledger.Balance(context.Background(), userID)
	if err != nil {
		t.Fatalf("failed to get balance: %v", err)
	}
	return points
}

func (e *testEnv) isActive(t *testing.T, photo *models.Photo) bool {
	t.Helper()
	p, err := e.store.Photos().GetOwned(context.Background(), photo.ID, photo.UserID)
	if err != nil {
		t.Fatalf("failed to get photo: %v", err)
	}
	return p.IsActive
}

func (e *testEnv) ratingsOf(t *testing.T, photoID string) []models.Rating {
	t.Helper()
	ratings, err := e.store.Ratings().ListByPhotoIDs(context.Background(), []string{photoID})
	if err != nil {
		t.Fatalf("failed to list ratings: %v", err)
	}
	return ratings[photoID]
}
