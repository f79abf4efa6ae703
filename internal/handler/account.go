package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/habitloop/habitloop/internal/ctxkeys"
	"github.com/habitloop/habitloop/internal/render"
	"github.com/habitloop/habitloop/internal/service"
)

type AccountHandler struct {
	authService    *service.AuthService
	userService    *service.UserService
	profileService *service.ProfileService
}

func NewAccountHandler(
	authService *service.AuthService,
	userService *service.UserService,
	profileService *service.ProfileService,
) *AccountHandler {
	return &AccountHandler{
		authService:    authService,
		userService:    userService,
		profileService: profileService,
	}
}

func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	profile := ctxkeys.Profile(r.Context())

	render.JSON(w, http.StatusOK, map[string]any{
		"user":    user,
		"profile": profile,
	})
}

type updateMeRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// UpdateMe changes the display name and/or requests an email change.
// Email changes take effect only after the new address is verified.
func (h *AccountHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req updateMeRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name != nil {
		err := h.profileService.UpdateName(user.ID, *req.Name)
		if err != nil {
			render.Error(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	emailChangeRequested := false
	if req.Email != nil && *req.Email != user.Email {
		err := h.authService.RequestEmailChange(user.ID, *req.Email)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrEmailAlreadyExists):
				render.Error(w, http.StatusConflict, "email already in use")
			case errors.Is(err, service.ErrInvalidEmail):
				render.Error(w, http.StatusBadRequest, "invalid email address")
			default:
				slog.Error("failed to request email change", "error", err, "user_id", user.ID)
				render.Error(w, http.StatusInternalServerError, "failed to request email change")
			}
			return
		}
		emailChangeRequested = true
	}

	profile, err := h.profileService.ByUserID(user.ID)
	if err != nil {
		slog.Error("failed to reload profile", "error", err, "user_id", user.ID)
		render.Error(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	render.JSON(w, http.StatusOK, map[string]any{
		"profile":                profile,
		"email_change_requested": emailChangeRequested,
	})
}

func (h *AccountHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	// Limit the whole form to a bit over the 5MB image cap
	err := r.ParseMultipartForm(6 << 20)
	if err != nil {
		render.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	_, header, err := r.FormFile("avatar")
	if err != nil {
		render.Error(w, http.StatusBadRequest, "avatar file is required")
		return
	}

	url, err := h.profileService.UploadAvatar(user.ID, header)
	if err != nil {
		if isValidationError(err) {
			render.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("failed to upload avatar", "error", err, "user_id", user.ID)
		render.Error(w, http.StatusInternalServerError, "failed to upload avatar")
		return
	}

	render.JSON(w, http.StatusOK, map[string]string{"avatar_url": url})
}

func (h *AccountHandler) RemoveAvatar(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.profileService.RemoveAvatar(user.ID)
	if err != nil {
		slog.Error("failed to remove avatar", "error", err, "user_id", user.ID)
		render.Error(w, http.StatusInternalServerError, "failed to remove avatar")
		return
	}

	render.JSON(w, http.StatusOK, map[string]string{"message": "avatar removed"})
}

func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.userService.DeleteAccount(user.ID)
	if err != nil {
		slog.Error("failed to delete account", "error", err, "user_id", user.ID)
		render.Error(w, http.StatusInternalServerError, "failed to delete account")
		return
	}

	h.authService.ClearJWTCookie(w)
	render.JSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
}
