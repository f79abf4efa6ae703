package service

import (
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/habitloop/habitloop/internal/db"
	"github.com/habitloop/habitloop/internal/model"
	"github.com/habitloop/habitloop/internal/repository"
)

// fakeStorage records saved and deleted object keys.
type fakeStorage struct {
	saved   []string
	deleted []string
}

func (f *fakeStorage) Save(path string, file io.Reader) error {
	f.saved = append(f.saved, path)
	return nil
}

func (f *fakeStorage) Delete(path string) error {
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeStorage) URL(path string) string {
	return "https://files.example.com/" + path
}

func newProfileService(t *testing.T) (*ProfileService, *fakeStorage, *sqlx.DB) {
	t.Helper()

	conn, err := sqlx.Connect("sqlite", ":memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	require.NoError(t, db.RunMigrations(conn.DB, "sqlite"))
	t.Cleanup(func() { _ = conn.Close() })

	storage := &fakeStorage{}
	return NewProfileService(repository.NewProfileRepository(conn), storage), storage, conn
}

func TestEnsureProfileCreatesOnce(t *testing.T) {
	profiles, _, conn := newProfileService(t)

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        "jane.doe@example.com",
		PasswordHash: "x",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, repository.NewUserRepository(conn).Create(user))

	profile, err := profiles.EnsureProfile(user)
	require.NoError(t, err)
	assert.Equal(t, "jane.doe", profile.Name)
	assert.Nil(t, profile.AvatarURL)

	// Second access returns the same profile
	again, err := profiles.EnsureProfile(user)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID)

	var count int
	require.NoError(t, conn.Get(&count, `SELECT COUNT(*) FROM profiles WHERE user_id = $1`, user.ID))
	assert.Equal(t, 1, count)
}

func TestRemoveAvatarDeletesObject(t *testing.T) {
	profiles, storage, conn := newProfileService(t)

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        "ava@example.com",
		PasswordHash: "x",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, repository.NewUserRepository(conn).Create(user))

	_, err := profiles.EnsureProfile(user)
	require.NoError(t, err)

	url := "https://files.example.com/avatars/abc.png?X-Amz-Signature=sig"
	require.NoError(t, repository.NewProfileRepository(conn).UpdateAvatarURL(user.ID, &url))

	require.NoError(t, profiles.RemoveAvatar(user.ID))

	assert.Equal(t, []string{"avatars/abc.png"}, storage.deleted)

	profile, err := profiles.ByUserID(user.ID)
	require.NoError(t, err)
	assert.Nil(t, profile.AvatarURL)
}

func TestAvatarPath(t *testing.T) {
	assert.Equal(t, "avatars/x.png", avatarPath("https://bucket.s3.eu-central-1.amazonaws.com/avatars/x.png"))
	assert.Equal(t, "avatars/x.png", avatarPath("http://localhost:9000/bucket/avatars/x.png?X-Amz-Expires=604800"))
	assert.Equal(t, "", avatarPath("https://example.com/something-else.png"))
}
