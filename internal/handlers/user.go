package handlers

import (
	"net/http"

	"photo-rating-backend/internal/middleware"
	"photo-rating-backend/internal/models"
	"photo-rating-backend/internal/services"
)

// UserHandler handles account HTTP requests
type UserHandler struct {
	userService *services.UserService
	ledger      *services.Ledger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, ledger *services.Ledger) *UserHandler {
	return &UserHandler{
		userService: userService,
		ledger:      ledger,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
}

type profileRequest struct {
	Gender *string `json:"gender"`
	Age    *int    `json:"age"`
}

// Register handles POST /api/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	result, err := h.userService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "Registration failed")
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// Login handles POST /api/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	result, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "Login failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ForgotPassword handles POST /api/forgot-password
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.userService.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, r, err, "Password reset failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message":    "Password reset token generated",
		"resetToken": token,
	})
}

// ResetPassword handles POST /api/reset-password
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.userService.ResetPassword(r.Context(), req.ResetToken, req.NewPassword); err != nil {
		writeServiceError(w, r, err, "Password reset failed")
		return
	}

	respondJSON(w, http.StatusOK, MessageResponse{Message: "Password reset successful"})
}

// UpdateProfile handles PUT /api/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userService.UpdateProfile(ctx, userID, services.ProfileUpdate{
		Gender: req.Gender,
		Age:    req.Age,
	})
	if err != nil {
		writeServiceError(w, r, err, "Profile update failed")
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Message string       `json:"message"`
		User    *models.User `json:"user"`
	}{"Profile updated", user})
}

// GetPoints handles GET /api/points
func (h *UserHandler) GetPoints(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	points, err := h.ledger.Balance(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err, "Fetching points failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"points": points})
}
