package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/useradmin/internal/api/shared"
	"github.com/phrazzld/useradmin/internal/domain"
	"github.com/phrazzld/useradmin/internal/platform/logger"
	"github.com/phrazzld/useradmin/internal/redact"
	"github.com/phrazzld/useradmin/internal/service"
	"github.com/phrazzld/useradmin/internal/service/auth"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	userService      service.UserService
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userService service.UserService,
	jwtService auth.JWTService,
	passwordVerifier auth.PasswordVerifier,
) *AuthHandler {
	return &AuthHandler{
		userService:      userService,
		jwtService:       jwtService,
		passwordVerifier: passwordVerifier,
	}
}

// Register handles POST /api/auth/register. New accounts get the default role.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user := domain.NewUser(req.Email, req.Password)
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Age = req.Age

	created, err := h.userService.CreateUser(r.Context(), user)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	resp, err := toUserResponse(created)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login. Unknown emails, wrong passwords and
// lookup failures all answer 401 with the same message.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), slog.Default())

	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.LoadUserByUsername(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, service.ErrUsernameNotFound) {
			log.Error("failed to load user for login", "error", redact.Error(err))
		}
		h.rejectCredentials(w, r)
		return
	}

	if err := h.passwordVerifier.Compare(user.Password, req.Password); err != nil {
		log.Debug("password verification failed", "user_id", user.ID)
		h.rejectCredentials(w, r)
		return
	}

	token, expiresAt, err := h.jwtService.GenerateToken(r.Context(), user)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	log.Info("user logged in", "user_id", user.ID)
	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
		Email:     user.Email,
		Roles:     domain.RoleNames(user.Roles),
	})
}

func (h *AuthHandler) rejectCredentials(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithError(w, r, http.StatusUnauthorized, GetSafeErrorMessage(auth.ErrInvalidCredentials))
}
