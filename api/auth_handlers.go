package api

import (
	"errors"
	"net/http"
	"slices"
	"time"

	"forensics/core"
	"forensics/storage"

	"golang.org/x/crypto/bcrypt"
)

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" example:"investigator@company.com"`
	Password string `json:"password" example:"demo123"`
}

// LoginResponse carries the signed token and the public user
type LoginResponse struct {
	Success bool            `json:"success"`
	Token   string          `json:"token"`
	User    core.PublicUser `json:"user"`
}

// UserResponse wraps the current user
type UserResponse struct {
	Success bool            `json:"success"`
	User    core.PublicUser `json:"user"`
}

// MessageResponse is a plain acknowledgement
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// checkPassword accepts the stored bcrypt hash, or a demo password when demo mode is on
func (a *API) checkPassword(user *core.User, password string) bool {
	if user.PasswordHash != "" && bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil {
		return true
	}
	return a.config.Auth.DemoMode && slices.Contains(a.config.Auth.DemoPasswords, password)
}

// login godoc
//
//	@Summary		Log in
//	@Description	Exchanges email and password for a JWT
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body		LoginRequest	true	"Credentials"
//	@Success		200			{object}	LoginResponse
//	@Failure		400			{object}	errorResponse	"Email and password are required"
//	@Failure		401			{object}	errorResponse	"Invalid credentials"
//	@Failure		429			{object}	errorResponse	"Too many login attempts"
//	@Router			/api/auth/login [post]
func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := a.decodeJSONBody(w, r, &req); err != nil {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required", nil, a.logger)
		return
	}

	user, err := a.repo.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			a.logger.Warnw("Login failed: unknown account", "email", req.Email)
			writeError(w, http.StatusUnauthorized, "Invalid credentials", nil, a.logger)
			return
		}
		a.writeServiceError(w, err, "Login failed")
		return
	}

	if !a.checkPassword(user, req.Password) {
		a.logger.Warnw("Login failed: bad password", "email", req.Email)
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil, a.logger)
		return
	}

	token, _, err := generateJWT(user, a.config.Auth, time.Now())
	if err != nil {
		a.writeServiceError(w, err, "Login failed")
		return
	}

	a.logger.Infow("User logged in",
		"user_id", user.ID,
		"email", user.Email,
		"role", user.Role)

	a.respondJSON(w, LoginResponse{Success: true, Token: token, User: user.Public()}, http.StatusOK)
}

// logout godoc
//
//	@Summary		Log out
//	@Description	Records the logout. Tokens are stateless and stay valid until expiry.
//	@Tags			auth
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		200	{object}	MessageResponse
//	@Router			/api/auth/logout [post]
func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserID(r.Context())
	a.logger.Infow("User logged out", "user_id", userID)
	a.respondJSON(w, MessageResponse{Success: true, Message: "Logged out successfully"}, http.StatusOK)
}

// me godoc
//
//	@Summary		Current user
//	@Tags			auth
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		200	{object}	UserResponse
//	@Failure		401	{object}	errorResponse	"Unauthorized"
//	@Failure		404	{object}	errorResponse	"User not found"
//	@Router			/api/auth/me [get]
func (a *API) me(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", nil, a.logger)
		return
	}

	user, err := a.repo.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found", err, a.logger)
			return
		}
		a.writeServiceError(w, err, "Failed to load user")
		return
	}

	a.respondJSON(w, UserResponse{Success: true, User: user.Public()}, http.StatusOK)
}
