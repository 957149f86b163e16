package handlers

import (
	"net/http"
	"time"

	"photo-rating-backend/internal/middleware"
	"photo-rating-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// RouterConfig wires services into the HTTP surface
type RouterConfig struct {
	Users   *services.UserService
	Ledger  *services.Ledger
	Photos  *services.PhotoService
	Ratings *services.RatingService
	Feed    *services.FeedService
	Hub     *services.WSHub

	// UploadsDir is served under /uploads when set
	UploadsDir string

	AuthRequests int
	AuthWindow   time.Duration
}

// NewRouter builds the application router
func NewRouter(cfg RouterConfig) http.Handler {
	userHandler := NewUserHandler(cfg.Users, cfg.Ledger)
	photoHandler := NewPhotoHandler(cfg.Photos)
	ratingHandler := NewRatingHandler(cfg.Ratings, cfg.Feed)
	wsHandler := NewWebSocketHandler(cfg.Hub, cfg.Users, cfg.Ledger)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogging)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			if cfg.AuthRequests > 0 {
				r.Use(httprate.Limit(
					cfg.AuthRequests,
					cfg.AuthWindow,
					httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
				))
			}
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.Post("/forgot-password", userHandler.ForgotPassword)
			r.Post("/reset-password", userHandler.ResetPassword)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.Users))
			r.Put("/profile", userHandler.UpdateProfile)
			r.Get("/points", userHandler.GetPoints)
			r.Post("/upload-photo", photoHandler.UploadPhoto)
			r.Put("/photo/{id}/toggle-active", photoHandler.ToggleActive)
			r.Delete("/photo/{id}", photoHandler.DeletePhoto)
			r.Get("/my-photos", photoHandler.MyPhotos)
			r.Get("/photos-for-evaluation", ratingHandler.PhotosForEvaluation)
			r.Post("/rate-photo/{id}", ratingHandler.RatePhoto)
		})
	})

	if cfg.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/ws", wsHandler.HandleWebSocket)

	return r
}
