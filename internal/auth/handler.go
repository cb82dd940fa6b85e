// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/catalog-backend/internal/core"
	"github.com/carterperez-dev/templates/catalog-backend/internal/metrics"
	"github.com/carterperez-dev/templates/catalog-backend/internal/middleware"
	"github.com/carterperez-dev/templates/catalog-backend/internal/user"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts /auth. limiter guards the credential endpoints and
// may be nil.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	limiter func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if limiter != nil {
				r.Use(limiter)
			}
			r.Post("/login", h.Login)
			r.Post("/register", h.Register)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/me", h.GetMe)
		})
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			metrics.RecordAuth("login", "rejected")
			core.JSONError(w, core.UnauthorizedError("invalid credentials"))
			return
		}
		metrics.RecordAuth("login", "error")
		core.InternalServerError(w, err)
		return
	}

	metrics.RecordAuth("login", "success")
	core.OK(w, resp)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrUsernameExists):
			metrics.RecordAuth("register", "rejected")
			core.JSONError(w, core.DuplicateError("username"))
		case errors.Is(err, user.ErrUsernameTooLong):
			metrics.RecordAuth("register", "rejected")
			core.BadRequest(w, fmt.Sprintf(
				"username must be at most %d characters",
				user.MaxUsernameLen,
			))
		case errors.Is(err, core.ErrInvalidInput):
			metrics.RecordAuth("register", "rejected")
			core.BadRequest(w, "username and password required")
		default:
			metrics.RecordAuth("register", "error")
			core.InternalServerError(w, err)
		}
		return
	}

	metrics.RecordAuth("register", "success")
	core.Created(w, resp)
}

// GetMe answers from the verified claims alone; it never reads the store.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		core.Unauthorized(w, "")
		return
	}

	core.OK(w, MeResponse{
		Username: claims.Username,
		Role:     claims.Role,
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "username and password required")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}

	return true
}
