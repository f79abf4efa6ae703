package service

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/habitloop/habitloop/internal/model"
	"github.com/habitloop/habitloop/internal/repository"
)

type UserService struct {
	userRepo     repository.UserRepository
	profileRepo  repository.ProfileRepository
	profiles     *ProfileService
	emailService *EmailService
}

func NewUserService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	profiles *ProfileService,
	emailService *EmailService,
) *UserService {
	return &UserService{
		userRepo:     userRepo,
		profileRepo:  profileRepo,
		profiles:     profiles,
		emailService: emailService,
	}
}

func (s *UserService) ByID(id string) (*model.User, error) {
	return s.userRepo.ByID(id)
}

// DeleteAccount permanently removes the user and everything they own.
// Habits, completions, profile and tokens go with the user row via
// foreign key cascades; the avatar object is removed from storage first.
func (s *UserService) DeleteAccount(userID string) error {
	user, err := s.userRepo.ByID(userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	name := localPart(user.Email)
	if profile, err := s.profileRepo.ByUserID(userID); err == nil {
		if profile.Name != "" {
			name = profile.Name
		}
		if profile.AvatarURL != nil {
			if err := s.profiles.RemoveAvatar(userID); err != nil {
				slog.Warn("failed to remove avatar during account deletion", "error", err, "user_id", userID)
			}
		}
	}

	err = s.userRepo.Delete(userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if err := s.emailService.SendAccountDeletedEmail(user.Email, name); err != nil {
		slog.Warn("failed to send account deleted email", "error", err, "email", user.Email)
	}

	slog.Info("account deleted", "user_id", userID)
	return nil
}

func localPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
