package controller

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"chem-purchase-assistant/app/session"
	"chem-purchase-assistant/models"
	"chem-purchase-assistant/service"
)

// AuthController handles registration, login and session queries
type AuthController struct {
	auth     service.AuthServiceInterface
	sessions *session.Manager
	logger   *zap.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(auth service.AuthServiceInterface, sessions *session.Manager, logger *zap.Logger) *AuthController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthController{auth: auth, sessions: sessions, logger: logger}
}

// Register handles POST /register
// Example request: {"username": "alice", "password": "s3cret!"}
// Example response (201): {"username": "alice"}
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req models.CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := c.auth.Register(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, service.ErrCredentialsRequired):
		writeError(w, http.StatusBadRequest, "Username and password are required.")
	case errors.Is(err, service.ErrInvalidUsername):
		writeError(w, http.StatusBadRequest, "Username must be 1-64 characters without spaces.")
	case errors.Is(err, service.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, "Password must be between 6 and 72 characters.")
	case errors.Is(err, service.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "Username already exists. Please choose a different one.")
	case err != nil:
		c.logger.Error("register failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Registration failed")
	default:
		writeJSON(w, http.StatusCreated, models.CurrentUserResponse{Username: &user.Username})
	}
}

// Login handles POST /login and sets the session cookie
// Example request: {"username": "alice", "password": "s3cret!"}
// Example response: {"username": "alice"}
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req models.CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := c.auth.Authenticate(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, service.ErrCredentialsRequired):
		writeError(w, http.StatusBadRequest, "Username and password are required.")
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid username or password.")
		return
	case err != nil:
		c.logger.Error("login failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	data, err := c.sessions.Issue(w, user)
	if err != nil {
		c.logger.Error("failed to issue session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	c.logger.Info("session started", zap.String("session_id", data.ID), zap.String("username", data.Username))
	writeJSON(w, http.StatusOK, models.CurrentUserResponse{Username: &user.Username})
}

// Logout handles POST /logout. Sessions are stateless, so this only expires the
// client's cookie; a copied cookie stays valid until its max age runs out.
// Example response: {"message": "You have been logged out."}
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if data, ok := session.FromContext(r.Context()); ok {
		c.logger.Info("session ended", zap.String("session_id", data.ID), zap.String("username", data.Username))
	}
	c.sessions.Clear(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "You have been logged out."})
}

// CurrentUser handles GET /get_current_user
// Example response: {"username": "alice"}, or 401 {"username": null}
func (c *AuthController) CurrentUser(w http.ResponseWriter, r *http.Request) {
	data, ok := session.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.CurrentUserResponse{})
		return
	}
	writeJSON(w, http.StatusOK, models.CurrentUserResponse{Username: &data.Username})
}
