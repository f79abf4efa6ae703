package service

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/habitloop/habitloop/internal/model"
	"github.com/habitloop/habitloop/internal/repository"
	"github.com/habitloop/habitloop/internal/storage"
	"github.com/habitloop/habitloop/internal/validation"
)

type ProfileService struct {
	profileRepo repository.ProfileRepository
	storage     storage.Storage
}

func NewProfileService(profileRepo repository.ProfileRepository, storage storage.Storage) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		storage:     storage,
	}
}

func (s *ProfileService) ByUserID(userID string) (*model.Profile, error) {
	return s.profileRepo.ByUserID(userID)
}

// EnsureProfile returns the user's profile, creating it on first access.
// New profiles default the display name to the email local part.
func (s *ProfileService) EnsureProfile(user *model.User) (*model.Profile, error) {
	profile, err := s.profileRepo.ByUserID(user.ID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repository.ErrProfileNotFound) {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	name := localPart(user.Email)

	now := time.Now()
	profile = &model.Profile{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.profileRepo.Create(profile)
	if err != nil {
		// A concurrent request may have created it first; the user_id
		// UNIQUE constraint makes the losing insert fail.
		if existing, getErr := s.profileRepo.ByUserID(user.ID); getErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	slog.Info("profile created", "user_id", user.ID, "name", name)
	return profile, nil
}

func (s *ProfileService) UpdateName(userID, name string) error {
	name = strings.TrimSpace(name)

	err := validation.ValidateName(name)
	if err != nil {
		return err
	}

	return s.profileRepo.UpdateName(userID, name)
}

// UploadAvatar validates and stores the image, replacing any previous
// avatar object, and persists the new URL on the profile.
func (s *ProfileService) UploadAvatar(userID string, header *multipart.FileHeader) (string, error) {
	err := validation.ValidateFile(header, validation.ImageConstraints)
	if err != nil {
		return "", err
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	path := fmt.Sprintf("avatars/%s%s", uuid.New().String(), ext)

	err = s.storage.Save(path, file)
	if err != nil {
		return "", fmt.Errorf("failed to store avatar: %w", err)
	}

	// Remove the old object after the new one is safely stored.
	if profile, err := s.profileRepo.ByUserID(userID); err == nil && profile.AvatarURL != nil {
		if oldPath := avatarPath(*profile.AvatarURL); oldPath != "" {
			if err := s.storage.Delete(oldPath); err != nil {
				slog.Warn("failed to delete old avatar", "error", err, "user_id", userID)
			}
		}
	}

	url := s.storage.URL(path)
	err = s.profileRepo.UpdateAvatarURL(userID, &url)
	if err != nil {
		return "", fmt.Errorf("failed to update profile: %w", err)
	}

	slog.Info("avatar uploaded", "user_id", userID, "path", path)
	return url, nil
}

// RemoveAvatar deletes the stored object and clears the profile URL.
func (s *ProfileService) RemoveAvatar(userID string) error {
	profile, err := s.profileRepo.ByUserID(userID)
	if err != nil {
		return fmt.Errorf("failed to get profile: %w", err)
	}

	if profile.AvatarURL != nil {
		if path := avatarPath(*profile.AvatarURL); path != "" {
			if err := s.storage.Delete(path); err != nil {
				slog.Warn("failed to delete avatar object", "error", err, "user_id", userID)
			}
		}
	}

	return s.profileRepo.UpdateAvatarURL(userID, nil)
}

// avatarPath extracts the storage key ("avatars/<id>.<ext>") from a
// stored avatar URL. Returns "" when the URL doesn't contain one.
func avatarPath(url string) string {
	idx := strings.Index(url, "avatars/")
	if idx < 0 {
		return ""
	}
	path := url[idx:]
	// Presigned URLs carry query parameters after the key.
	if q := strings.Index(path, "?"); q >= 0 {
		path = path[:q]
	}
	return path
}
