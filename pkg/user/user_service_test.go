package user

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"recipehub/domain"
	"recipehub/entities"
	"recipehub/internal/config"
	"recipehub/pkg/jwt"
)

type fakeImageStore struct{}

func (fakeImageStore) UploadFile(_ context.Context, fileName string, _ []byte, _ string, dir string, _ ...string) (string, error) {
	return dir + "/" + fileName, nil
}
func (fakeImageStore) DeleteFile(context.Context, string) error { return nil }
func (fakeImageStore) GetObjectKeyFromLink(link string) string  { return link }

func (fakeImageStore) GetPublicLinkKey(objectKey string) string {
	return "https://cdn.test/" + objectKey
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// every pooled connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&entities.User{},
		&entities.Subscription{},
		&entities.Tag{},
		&entities.Ingredient{},
		&entities.Recipe{},
		&entities.RecipeIngredient{},
		&entities.Favorite{},
		&entities.ShoppingCart{},
	))
	return db
}

func newTestService(t *testing.T) (UserService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	cfg := &config.Config{
		AppURL:      "http://localhost:8080",
		ItemsOnPage: 6,
	}
	service := NewUserService(
		NewUserRepository(db),
		jwt.NewJWTService("test-secret"),
		fakeImageStore{},
		nil,
		cfg,
	)
	return service, db
}

func register(t *testing.T, service UserService, email, username string) domain.RegisterResponse {
	t.Helper()

	res, err := service.Register(context.Background(), domain.RegisterRequest{
		Email:     email,
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  "password123",
	})
	require.NoError(t, err)
	return res
}

func TestRegisterAndLogin(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	res := register(t, service, "cook@example.com", "cook")
	assert.Equal(t, "cook@example.com", res.Email)
	assert.NotEmpty(t, res.ID)

	login, err := service.Login(ctx, domain.LoginRequest{
		Email:    "cook@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, login.AuthToken)

	_, err = service.Login(ctx, domain.LoginRequest{
		Email:    "cook@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, domain.ErrCredentialsInvalid)

	_, err = service.Login(ctx, domain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, domain.ErrCredentialsInvalid)
}

func TestRegisterDuplicates(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	register(t, service, "cook@example.com", "cook")

	_, err := service.Register(ctx, domain.RegisterRequest{
		Email:     "cook@example.com",
		Username:  "cook2",
		FirstName: "Test",
		LastName:  "User",
		Password:  "password123",
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	// a username collision with a fresh email reports the username
	_, err = service.Register(ctx, domain.RegisterRequest{
		Email:     "cook2@example.com",
		Username:  "cook",
		FirstName: "Test",
		LastName:  "User",
		Password:  "password123",
	})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestSetPassword(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	res := register(t, service, "cook@example.com", "cook")

	err := service.SetPassword(ctx, domain.SetPasswordRequest{
		NewPassword:     "new-password",
		CurrentPassword: "wrong",
	}, res.ID)
	assert.ErrorIs(t, err, domain.ErrWrongPassword)

	err = service.SetPassword(ctx, domain.SetPasswordRequest{
		NewPassword:     "password123",
		CurrentPassword: "password123",
	}, res.ID)
	assert.ErrorIs(t, err, domain.ErrSamePassword)

	err = service.SetPassword(ctx, domain.SetPasswordRequest{
		NewPassword:     "new-password",
		CurrentPassword: "password123",
	}, res.ID)
	require.NoError(t, err)

	_, err = service.Login(ctx, domain.LoginRequest{
		Email:    "cook@example.com",
		Password: "new-password",
	})
	require.NoError(t, err)
}

func TestSubscriptions(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	follower := register(t, service, "reader@example.com", "reader")
	author := register(t, service, "cook@example.com", "cook")

	authorUUID := uuid.MustParse(author.ID)
	require.NoError(t, db.Create(&entities.Recipe{
		ID:          uuid.New(),
		AuthorID:    authorUUID,
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		CookingTime: 20,
		ShortLink:   uuid.New(),
	}).Error)

	_, err := service.Subscribe(ctx, follower.ID, follower.ID, 0)
	assert.ErrorIs(t, err, domain.ErrSelfSubscription)

	_, err = service.Subscribe(ctx, follower.ID, uuid.NewString(), 0)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	sub, err := service.Subscribe(ctx, follower.ID, author.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, author.ID, sub.ID)
	assert.True(t, sub.IsSubscribed)
	assert.EqualValues(t, 1, sub.RecipesCount)
	require.Len(t, sub.Recipes, 1)
	assert.Equal(t, "Pancakes", sub.Recipes[0].Name)

	_, err = service.Subscribe(ctx, follower.ID, author.ID, 0)
	assert.ErrorIs(t, err, domain.ErrAlreadySubscribed)

	detail, err := service.GetUserDetail(ctx, author.ID, follower.ID)
	require.NoError(t, err)
	assert.True(t, detail.IsSubscribed)

	subs, count, err := service.GetSubscriptions(ctx, follower.ID, 1, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	require.Len(t, subs, 1)
	assert.Equal(t, "cook", subs[0].Username)

	require.NoError(t, service.Unsubscribe(ctx, follower.ID, author.ID))
	err = service.Unsubscribe(ctx, follower.ID, author.ID)
	assert.ErrorIs(t, err, domain.ErrNotSubscribed)
}

func TestGetUsersLimitCap(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		require.NoError(t, db.Create(&entities.User{
			ID:       uuid.New(),
			Email:    fmt.Sprintf("user%d@example.com", i),
			Username: fmt.Sprintf("user%d", i),
			Password: "hashed",
		}).Error)
	}

	// an oversized limit is clamped to the configured page size
	users, count, err := service.GetUsers(ctx, "", 1, 1000)
	require.NoError(t, err)
	assert.EqualValues(t, 8, count)
	assert.Len(t, users, 6)
}

func TestAvatarLifecycle(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	res := register(t, service, "cook@example.com", "cook")

	updated, err := service.UpdateAvatar(ctx, domain.UpdateAvatarRequest{
		Avatar: "data:image/png;base64,aW1hZ2UtYnl0ZXM=",
	}, res.ID)
	require.NoError(t, err)
	assert.Contains(t, updated.Avatar, "avatars/")

	_, err = service.UpdateAvatar(ctx, domain.UpdateAvatarRequest{Avatar: "%%%"}, res.ID)
	assert.ErrorIs(t, err, domain.ErrAvatarRequired)

	require.NoError(t, service.DeleteAvatar(ctx, res.ID))

	me, err := service.Me(ctx, res.ID)
	require.NoError(t, err)
	assert.Empty(t, me.Avatar)
}
