package handlers

import (
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/aivodrive/internal/auth"
	"github.com/ukydev/aivodrive/internal/db"
	"github.com/ukydev/aivodrive/internal/middleware"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/respond"
	"github.com/ukydev/aivodrive/internal/validation"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService    *auth.Service
	userCollection db.UserCollection
	clock          Clock
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, userCollection db.UserCollection) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		userCollection: userCollection,
	}
}

// Login handles user login by email and password
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq models.LoginRequest
	if !decodeValid(w, r, &loginReq) {
		return
	}

	// Find user by email
	user, err := h.userCollection.FindUserByEmail(r.Context(), loginReq.Email)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			storeError(w, err, "User")
			return
		}
		respond.Error(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	// Check if user is active
	if !user.IsActive {
		respond.Error(w, http.StatusUnauthorized, "Account is deactivated")
		return
	}

	// Verify password
	if !h.authService.CheckPassword(loginReq.Password, user.PasswordHash) {
		respond.Error(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		log.WithError(err).Error("Failed to generate token")
		respond.Error(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	// Update last login; a failure does not fail the login
	if err := h.userCollection.UpdateLastLogin(r.Context(), user.ID.Hex()); err != nil {
		log.WithError(err).WithField("user_id", user.ID.Hex()).Warn("Failed to update last login")
	} else {
		now := h.clock.now()
		user.LastLogin = &now
	}

	log.WithFields(log.Fields{"user_id": user.ID.Hex(), "role": user.Role}).Info("User logged in")
	respond.Data(w, http.StatusOK, models.LoginResponse{Token: token, User: *user})
}

// GetProfile returns the current user's profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "User context not found")
		return
	}

	user, err := h.userCollection.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		storeError(w, err, "User")
		return
	}
	respond.Data(w, http.StatusOK, user)
}

// UpdateProfile updates the name, email and phone of the current user and
// returns the stored profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var updateReq models.ProfileUpdate
	if !decodeValid(w, r, &updateReq) {
		return
	}

	// Get current user
	user, err := h.userCollection.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		storeError(w, err, "User")
		return
	}

	if email := strings.ToLower(strings.TrimSpace(updateReq.Email)); email != "" && email != user.Email {
		// Check if email is already taken by another user
		existing, err := h.userCollection.FindUserByEmail(r.Context(), email)
		switch {
		case err == nil && existing.ID != user.ID:
			respond.Error(w, http.StatusConflict, "Email already exists")
			return
		case err != nil && !errors.Is(err, db.ErrNotFound):
			storeError(w, err, "User")
			return
		}
		updateReq.Email = email
	}

	user.Merge(models.User{
		Name:      strings.TrimSpace(updateReq.Name),
		Email:     updateReq.Email,
		Phone:     updateReq.Phone,
		UpdatedAt: h.clock.now(),
	})

	if err := h.userCollection.UpdateUser(r.Context(), claims.UserID, *user); err != nil {
		storeError(w, err, "User")
		return
	}
	respond.Data(w, http.StatusOK, user)
}

// ChangePassword changes the current user's password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var passwordReq validation.PasswordChange
	if !decodeValid(w, r, &passwordReq) {
		return
	}

	// Validate new password
	if err := h.authService.ValidatePassword(passwordReq.NewPassword); err != nil {
		respond.ErrorWithData(w, http.StatusUnprocessableEntity, "Validation failed",
			validation.Errors{"newPassword": err.Error()})
		return
	}

	// Get current user
	user, err := h.userCollection.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		storeError(w, err, "User")
		return
	}

	// Verify current password
	if !h.authService.CheckPassword(passwordReq.CurrentPassword, user.PasswordHash) {
		respond.Error(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}

	newPasswordHash, err := h.authService.HashPassword(passwordReq.NewPassword)
	if err != nil {
		log.WithError(err).Error("Failed to hash password")
		respond.Error(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user.PasswordHash = newPasswordHash
	user.UpdatedAt = h.clock.now()
	if err := h.userCollection.UpdateUser(r.Context(), claims.UserID, *user); err != nil {
		storeError(w, err, "User")
		return
	}
	respond.NoContent(w)
}
