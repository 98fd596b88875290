package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/penshort/accounts/internal/auth"
	"github.com/penshort/accounts/internal/handler/dto"
	"github.com/penshort/accounts/internal/model"
	"github.com/penshort/accounts/internal/service"
)

// UserHandler handles registration, login and profile endpoints.
type UserHandler struct {
	registry *service.Registry
	authn    *service.Authenticator
	tokens   *service.TokenIssuer
	logger   *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(registry *service.Registry, authn *service.Authenticator, tokens *service.TokenIssuer, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		registry: registry,
		authn:    authn,
		tokens:   tokens,
		logger:   logger,
	}
}

// Create handles POST /api/user/create.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.registry.Create(r.Context(), service.CreateUserInput{
		Email:       req.Email,
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.Name,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, user.ToCreateResponse())
}

// Login handles POST /api/user/login.
// Every authentication failure produces the same response.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authn.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(r.Context(), user)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.TokenResponse{Token: token.Value})
}

// Me handles GET /api/user/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	view, err := h.registry.View(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// UpdateMe handles PATCH /api/user/me.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.registry.Update(r.Context(), auth.UserIDFromContext(r.Context()), service.UpdateUserInput{
		Email:       req.Email.OrEmpty(),
		Username:    req.Username.OrEmpty(),
		Password:    req.Password.OrEmpty(),
		DisplayName: req.Name.OrEmpty(),
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user.View())
}

// Logout handles POST /api/user/logout.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.tokens.Revoke(r.Context(), auth.UserIDFromContext(r.Context())); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeJSON decodes the request body into v, writing an error response on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return false
	}
	return true
}

// handleServiceError maps service errors to HTTP responses.
func (h *UserHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: dto.ErrorBody{
			Code:    "VALIDATION_FAILED",
			Message: "Validation failed",
			Fields:  verr.FieldMap(),
		}})
	case service.IsAuthenticationError(err):
		writeError(w, http.StatusBadRequest, "AUTHENTICATION_FAILED", err.Error())
	case errors.Is(err, service.ErrNotFound):
		// The token outlived its owner; treat it like any other bad credential.
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
	default:
		h.logger.Error("request failed",
			"error", err,
			"path", r.URL.Path,
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
