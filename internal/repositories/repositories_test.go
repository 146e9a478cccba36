package repositories_test

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"gamereview/internal/models"
	"gamereview/internal/repositories"
	"gamereview/pkg/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStore is a mock implementation of kvstore.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockStore) Set(ctx context.Context, key, value string) error {
	args := m.Called(key, value)
	return args.Error(0)
}

func (m *MockStore) Remove(ctx context.Context, key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestKVUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewKVUserRepository(kvstore.NewMemoryStore())

	_, err := repo.GetByEmail(ctx, "a@b.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	ann := &models.User{ID: "u1", Email: "a@b.com", Password: "secret1", Name: "Ann", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, ann))
	require.NoError(t, repo.Create(ctx, &models.User{ID: "u2", Email: "c@d.com", Password: "secret2"}))

	second, err := repo.GetByEmail(ctx, "c@d.com")
	require.NoError(t, err)
	assert.Equal(t, "u2", second.ID)

	found, err := repo.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", found.ID)
	assert.Equal(t, "Ann", found.Name)

	// Email lookups are case-sensitive
	_, err = repo.GetByEmail(ctx, "A@b.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestKVUserRepository_CorruptCollectionReadsEmpty(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, repositories.UsersKey, "{not json"))
	repo := repositories.NewKVUserRepository(store)

	_, err := repo.GetByEmail(ctx, "a@b.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	// A new user replaces the unreadable collection
	require.NoError(t, repo.Create(ctx, &models.User{ID: "u1", Email: "a@b.com"}))
	found, err := repo.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", found.ID)
}

func TestKVUserRepository_WriteFailurePropagates(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	repo := repositories.NewKVUserRepository(store)

	store.On("Get", repositories.UsersKey).Return("", errors.New("disk unavailable")).Once()
	store.On("Set", repositories.UsersKey, mock.AnythingOfType("string")).Return(errors.New("disk full")).Once()

	err := repo.Create(ctx, &models.User{ID: "u1", Email: "a@b.com"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	store.AssertExpectations(t)
}

func TestKVSessionRepository(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	repo := repositories.NewKVSessionRepository(store)

	session, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)

	require.NoError(t, repo.Save(ctx, &models.Session{UserID: "u1", Email: "a@b.com", Name: "Ann", LoggedIn: true}))
	require.NoError(t, repo.Save(ctx, &models.Session{UserID: "u2", Email: "c@d.com", Name: "c", LoggedIn: true}))

	raw, err := store.Get(ctx, repositories.SessionKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"userId":"u2","email":"c@d.com","name":"c","loggedIn":true}`, raw)

	session, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u2", session.UserID)

	require.NoError(t, repo.Clear(ctx))
	require.NoError(t, repo.Clear(ctx))
	session, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestKVReviewRepository_PartitionsByUser(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	repo := repositories.NewKVReviewRepository(store)

	require.NoError(t, repo.SaveAll(ctx, "u1", []models.Review{{ID: "r1", UserID: "u1", GameName: "Chrono Trigger", Stars: 5}}))
	require.NoError(t, repo.SaveAll(ctx, "u2", []models.Review{{ID: "r2", UserID: "u2", GameName: "Doom", Stars: 3}}))

	reviews, err := repo.GetAll(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "r1", reviews[0].ID)

	_, err = store.Get(ctx, repositories.ReviewsKey("u2"))
	assert.NoError(t, err)

	reviews, err = repo.GetAll(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, reviews)

	require.NoError(t, repo.SaveAll(ctx, "u1", nil))
	raw, err := store.Get(ctx, repositories.ReviewsKey("u1"))
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestKVReviewRepository_NullImageRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	repo := repositories.NewKVReviewRepository(store)

	require.NoError(t, repo.SaveAll(ctx, "u1", []models.Review{{ID: "r1", UserID: "u1", GameName: "Celeste", ReviewText: "Tight", Stars: 5}}))

	raw, err := store.Get(ctx, repositories.ReviewsKey("u1"))
	require.NoError(t, err)
	assert.Contains(t, raw, `"imageUri":null`)

	reviews, err := repo.GetAll(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, reviews[0].ImageURI)
}
