package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"taskdeck/middleware"
	"taskdeck/models"
	"taskdeck/utils"
)

// UserStore is the slice of the user store the auth handlers need.
type UserStore interface {
	Create(ctx context.Context, username, passwordHash string) (models.User, error)
	ByUsername(ctx context.Context, username string) (models.User, error)
}

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

type AuthHandler struct {
	users  UserStore
	tokens TokenIssuer
	log    *logrus.Logger
}

func NewAuthHandler(users UserStore, tokens TokenIssuer, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, log: log}
}

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signupResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// Signup registers a new user. Duplicate usernames are rejected before any
// row is written, via the unique constraint on users.username.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := utils.ValidateUsername(req.Username); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		h.log.WithError(err).Error("hashing password")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, err := h.users.Create(r.Context(), req.Username, passwordHash)
	if err != nil {
		if errors.Is(err, utils.ErrUsernameTaken) {
			writeError(w, http.StatusBadRequest, "Username already registered")
			return
		}
		h.log.WithError(err).Error("creating user")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.log.WithField("username", user.Username).Info("user registered")
	writeJSON(w, http.StatusOK, signupResponse{ID: user.ID, Username: user.Username})
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login verifies form credentials and returns a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")
	if username == "" || password == "" {
		writeError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	user, err := h.users.ByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "Invalid credentials")
			return
		}
		h.log.WithError(err).Error("looking up user")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		writeError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	token, err := h.tokens.Issue(user.Username)
	if err != nil {
		h.log.WithError(err).Error("issuing token")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.log.WithFields(logrus.Fields{
		"request_id": middleware.GetRequestID(r.Context()),
		"username":   user.Username,
	}).Info("login successful")
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}
