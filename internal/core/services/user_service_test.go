package services

import (
	"context"
	"testing"

	"smartwash-backend/internal/adapters/persistence/models"
	"smartwash-backend/internal/adapters/persistence/repositories"
	"smartwash-backend/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestUserService(db *gorm.DB) *UserService {
	return NewUserService(repositories.NewUserRepository(db))
}

// seedUserWithPassword creates a user whose password verifies against plain
func seedUserWithPassword(t *testing.T, db *gorm.DB, username, plain string) *models.User {
	t.Helper()

	hashed, err := password.Hash(plain)
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hashed,
		Role:     models.RoleCustomer,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestListUsers(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(db)
	ctx := context.Background()

	seedUser(t, db, "alice", 0)
	seedUser(t, db, "bob", 0)
	seedUser(t, db, "carol", 0)

	out, err := svc.ListUsers(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.Total)
	assert.Len(t, out.Users, 2)
	assert.Equal(t, 2, out.TotalPages)
}

func TestUpdateUserByAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(db)
	ctx := context.Background()

	user := seedUser(t, db, "alice", 0)

	role := models.RoleAdmin
	inactive := false
	updated, err := svc.UpdateUserByAdmin(ctx, user.ID, &AdminUpdateUserInput{
		Role:     &role,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)
	assert.False(t, updated.IsActive)

	bogus := "superuser"
	_, err = svc.UpdateUserByAdmin(ctx, user.ID, &AdminUpdateUserInput{Role: &bogus})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.UpdateUserByAdmin(ctx, 999, &AdminUpdateUserInput{Role: &role})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUser(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(db)
	ctx := context.Background()

	admin := seedUser(t, db, "admin", 0)
	user := seedUser(t, db, "alice", 0)

	// admins cannot delete themselves
	assert.ErrorIs(t, svc.DeleteUser(ctx, admin.ID, admin.ID), ErrCannotDeleteSelf)

	require.NoError(t, svc.DeleteUser(ctx, user.ID, admin.ID))

	_, err := svc.GetUserByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfile(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(db)
	ctx := context.Background()

	user := seedUser(t, db, "alice", 0)
	seedUser(t, db, "bob", 0)

	updated, err := svc.UpdateProfile(ctx, user.ID, &UpdateProfileInput{
		Email:       "Alice.New@Example.com",
		PhoneNumber: "0901234567",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice.new@example.com", updated.Email)
	assert.Equal(t, "0901234567", updated.PhoneNumber)

	_, err = svc.UpdateProfile(ctx, user.ID, &UpdateProfileInput{
		Email: "bob@example.com",
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyTaken)
}

func TestChangePassword(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(db)
	ctx := context.Background()

	user := seedUserWithPassword(t, db, "alice", "oldpassword")

	err := svc.ChangePassword(ctx, user.ID, &ChangePasswordInput{
		CurrentPassword: "wrongpassword",
		NewPassword:     "newpassword1",
	})
	assert.ErrorIs(t, err, ErrWrongPassword)

	err = svc.ChangePassword(ctx, user.ID, &ChangePasswordInput{
		CurrentPassword: "oldpassword",
		NewPassword:     "short",
	})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	err = svc.ChangePassword(ctx, user.ID, &ChangePasswordInput{
		CurrentPassword: "oldpassword",
		NewPassword:     "newpassword1",
	})
	require.NoError(t, err)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.True(t, password.Verify("newpassword1", stored.Password))
	assert.False(t, password.Verify("oldpassword", stored.Password))
}
