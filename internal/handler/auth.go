package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/habitloop/habitloop/internal/model"
	"github.com/habitloop/habitloop/internal/render"
	"github.com/habitloop/habitloop/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.SignUp(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyExists):
			render.Error(w, http.StatusConflict, "email already registered")
		case errors.Is(err, service.ErrInvalidEmail):
			render.Error(w, http.StatusBadRequest, "invalid email address")
		default:
			if isValidationError(err) {
				render.Error(w, http.StatusBadRequest, err.Error())
				return
			}
			slog.Error("failed to sign up", "error", err)
			render.Error(w, http.StatusInternalServerError, "failed to create account")
		}
		return
	}

	render.JSON(w, http.StatusCreated, map[string]any{
		"user":    user,
		"message": "check your email to verify your account",
	})
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	user, err := h.authService.VerifyEmail(token)
	if err != nil {
		render.Error(w, http.StatusBadRequest, "invalid or expired verification link")
		return
	}

	h.issueSession(w, user)
	render.JSON(w, http.StatusOK, map[string]any{"user": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			render.Error(w, http.StatusUnauthorized, "invalid email or password")
		case errors.Is(err, service.ErrEmailNotVerified):
			render.Error(w, http.StatusForbidden, "email not verified")
		default:
			slog.Error("failed to log in", "error", err)
			render.Error(w, http.StatusInternalServerError, "failed to log in")
		}
		return
	}

	h.issueSession(w, user)
	render.JSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	render.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.authService.ForgotPassword(req.Email)
	if err != nil && !errors.Is(err, service.ErrInvalidEmail) {
		slog.Error("failed to process forgot password", "error", err)
		render.Error(w, http.StatusInternalServerError, "failed to send reset email")
		return
	}

	// Same response whether or not the account exists
	render.JSON(w, http.StatusOK, map[string]string{
		"message": "if that email is registered, a reset link is on its way",
	})
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.ResetPassword(req.Token, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			render.Error(w, http.StatusBadRequest, "invalid or expired reset link")
			return
		}
		if isValidationError(err) {
			render.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("failed to reset password", "error", err)
		render.Error(w, http.StatusInternalServerError, "failed to reset password")
		return
	}

	h.issueSession(w, user)
	render.JSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func (h *AuthHandler) VerifyEmailChange(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	user, err := h.authService.VerifyEmailChange(token)
	if err != nil {
		render.Error(w, http.StatusBadRequest, "invalid or expired verification link")
		return
	}

	render.JSON(w, http.StatusOK, map[string]any{"user": user})
}

// issueSession signs a JWT for the user and sets the session cookie.
func (h *AuthHandler) issueSession(w http.ResponseWriter, user *model.User) {
	token, err := h.authService.GenerateJWT(user)
	if err != nil {
		slog.Error("failed to generate JWT", "error", err, "user_id", user.ID)
		return
	}
	h.authService.SetJWTCookie(w, token, time.Now().Add(h.authService.JWTExpiry()))
}

// isValidationError distinguishes user-input errors (reported verbatim
// with a 400) from internal ones. Validation helpers return plain
// errors.New values without wrapped causes.
func isValidationError(err error) bool {
	return errors.Unwrap(err) == nil
}
