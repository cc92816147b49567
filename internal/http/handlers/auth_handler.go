package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/alexedwards/argon2id"

	"github.com/thetoretto/hotpoint-bookings/internal/http/response"
	"github.com/thetoretto/hotpoint-bookings/internal/repo/postgres"
	"github.com/thetoretto/hotpoint-bookings/internal/utils"
	"github.com/thetoretto/hotpoint-bookings/pkg/auth"
	"github.com/thetoretto/hotpoint-bookings/pkg/logger"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken string    `json:"access_token"`
	User        *userView `json:"user"`
}

type userView struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if h.users == nil {
		response.WriteError(w, http.StatusServiceUnavailable, "accounts are not available", response.CodeUnavailable)
		return
	}
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	req.Email = utils.NormalizeEmail(req.Email)
	if !utils.IsValidEmail(req.Email) {
		response.BadRequest(w, "a valid email is required")
		return
	}
	if len(req.Password) < 8 {
		response.BadRequest(w, "password must be at least 8 characters")
		return
	}
	role := req.Role
	switch role {
	case "":
		role = auth.RolePassenger
	case auth.RolePassenger, auth.RoleDriver:
	default:
		response.BadRequest(w, "invalid role")
		return
	}

	existing, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		logger.ErrorContext(r.Context(), "lookup user", "error", err)
		response.InternalError(w, "could not register")
		return
	}
	if existing != nil {
		response.WriteError(w, http.StatusConflict, "email already registered", response.CodeEmailExists)
		return
	}

	hash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		logger.ErrorContext(r.Context(), "hash password", "error", err)
		response.InternalError(w, "could not register")
		return
	}
	u, err := h.users.Create(r.Context(), req.Email, hash, strings.TrimSpace(req.Name), utils.NormalizePhone(req.Phone), role)
	if err != nil {
		logger.ErrorContext(r.Context(), "create user", "error", err)
		response.InternalError(w, "could not register")
		return
	}

	h.issueTokens(w, r, u, http.StatusCreated)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if h.users == nil {
		response.WriteError(w, http.StatusServiceUnavailable, "accounts are not available", response.CodeUnavailable)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	req.Email = utils.NormalizeEmail(req.Email)

	u, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		logger.ErrorContext(r.Context(), "lookup user", "error", err)
		response.InternalError(w, "could not log in")
		return
	}
	if u == nil {
		response.Unauthorized(w, "invalid email or password")
		return
	}
	match, err := argon2id.ComparePasswordAndHash(req.Password, u.PasswordHash)
	if err != nil || !match {
		response.Unauthorized(w, "invalid email or password")
		return
	}

	h.issueTokens(w, r, u, http.StatusOK)
}

func (h *Handlers) issueTokens(w http.ResponseWriter, r *http.Request, u *postgres.User, status int) {
	token, err := auth.NewAccessToken(u.ID, u.Email, u.Role, h.cfg.Auth.JWTSecret, h.cfg.Auth.AccessTokenTTL)
	if err != nil {
		logger.ErrorContext(r.Context(), "sign token", "error", err)
		response.InternalError(w, "could not issue token")
		return
	}
	response.WriteJSON(w, status, authResponse{
		AccessToken: token,
		User:        &userView{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role},
	})
}
