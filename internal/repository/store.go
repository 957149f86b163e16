package repository

import (
	"context"
	"errors"

	"photo-rating-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrPhotoNotFound       = errors.New("photo not found")
	ErrDuplicateEmail      = errors.New("email already exists")
	ErrDuplicateRating     = errors.New("rating already exists")
	ErrInsufficientBalance = errors.New("insufficient points balance")
)

// Store groups the repositories. A Store handed to the WithTx callback is bound
// to a single transaction; calling WithTx on it again reuses that transaction.
type Store interface {
	Users() UserStore
	Photos() PhotoStore
	Ratings() RatingStore
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// UserStore persists users and their points balance
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// LockByIDs takes row locks on the given users in ascending id order.
	LockByIDs(ctx context.Context, ids ...string) error
	AddPoints(ctx context.Context, id string, delta int) (int, error)
	// ChargePoints debits cost only if the balance is at least cost.
	ChargePoints(ctx context.Context, id string, cost int) (int, error)
	UpdateProfile(ctx context.Context, id, gender string, age int) error
	SetResetToken(ctx context.Context, id string, token *string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// PhotoStore persists photos. The Get methods lock the returned row until the
// surrounding transaction ends.
type PhotoStore interface {
	Create(ctx context.Context, photo *models.Photo) error
	GetOwned(ctx context.Context, id, ownerID string) (*models.Photo, error)
	GetRatable(ctx context.Context, id, raterID string) (*models.Photo, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Photo, error)
	ListCandidates(ctx context.Context, raterID string, filter models.CandidateFilter) ([]*models.Candidate, error)
}

// RatingStore persists ratings
type RatingStore interface {
	Create(ctx context.Context, rating *models.Rating) error
	Exists(ctx context.Context, photoID, raterID string) (bool, error)
	ListByPhotoIDs(ctx context.Context, photoIDs []string) (map[string][]models.Rating, error)
}

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store on top of a pgx connection pool
type PostgresStore struct {
	pool    *pgxpool.Pool
	users   *UserRepository
	photos  *PhotoRepository
	ratings *RatingRepository
}

// NewPostgresStore creates a store backed by the given pool
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	s := newPostgresStore(pool)
	s.pool = pool
	return s
}

func newPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{
		users:   NewUserRepository(db),
		photos:  NewPhotoRepository(db),
		ratings: NewRatingRepository(db),
	}
}

func (s *PostgresStore) Users() UserStore     { return s.users }
func (s *PostgresStore) Photos() PhotoStore   { return s.photos }
func (s *PostgresStore) Ratings() RatingStore { return s.ratings }

// WithTx runs fn in a transaction, committing if fn returns nil
func (s *PostgresStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if s.pool == nil {
		return fn(s)
	}
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(newPostgresStore(tx))
	})
}

// isUniqueViolation reports whether err is a postgres unique_violation
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
