package api

import (
	"net/http"
	"strings"

	"github.com/phrazzld/useradmin/internal/api/shared"
	"github.com/phrazzld/useradmin/internal/domain"
	"github.com/phrazzld/useradmin/internal/service"
)

// UserHandler serves the current-user endpoint and the admin user and role
// endpoints.
type UserHandler struct {
	userService service.UserService
	roleService service.RoleService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService, roleService service.RoleService) *UserHandler {
	return &UserHandler{
		userService: userService,
		roleService: roleService,
	}
}

// CurrentUser handles GET /api/user.
func (h *UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	user := h.userService.GetCurrentUser(r.Context(), principal)
	if user == nil {
		HandleAPIError(w, r, service.ErrUserNotFound, "")
		return
	}
	h.respondWithUser(w, r, http.StatusOK, user)
}

// Index handles GET /api/admin/users.
func (h *UserHandler) Index(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.Index(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list users")
		return
	}

	resp, err := toUserResponses(users)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Show handles GET /api/admin/users/{id}.
func (h *UserHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.userService.Show(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if user == nil {
		HandleAPIError(w, r, service.ErrUserNotFound, "")
		return
	}
	h.respondWithUser(w, r, http.StatusOK, user)
}

// Create handles POST /api/admin/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	roles, err := h.roleService.ResolveRoles(r.Context(), req.Roles)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user := domain.NewUser(req.Email, req.Password)
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Age = req.Age
	user.Roles = roles

	created, err := h.userService.CreateUser(r.Context(), user)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	h.respondWithUser(w, r, http.StatusCreated, created)
}

// Update handles PUT /api/admin/users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	roles, err := h.roleService.ResolveRoles(r.Context(), req.Roles)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		req.Email = &email
	}

	updated, err := h.userService.UpdateUser(r.Context(), service.UpdateUserParams{
		ID:        id,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Email:     req.Email,
		Age:       req.Age,
		Roles:     roles,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	h.respondWithUser(w, r, http.StatusOK, updated)
}

// Delete handles DELETE /api/admin/users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Roles handles GET /api/admin/roles.
func (h *UserHandler) Roles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roleService.ListRoles(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list roles")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toRoleResponses(roles))
}

func (h *UserHandler) respondWithUser(w http.ResponseWriter, r *http.Request, status int, user *domain.User) {
	resp, err := toUserResponse(user)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, status, resp)
}
