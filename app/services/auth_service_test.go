package services

import (
	"testing"

	"github.com/saristore/saristore/app/models"
	"github.com/saristore/saristore/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerInput(username string) RegisterInput {
	return RegisterInput{
		StoreName: "Aling Nena's",
		Username:  username,
		Password:  "secret123",
		FirstName: "Nena",
		LastName:  "Reyes",
		Email:     "nena@example.com",
	}
}

func TestRegisterCreatesStoreAndAdmin(t *testing.T) {
	db := newTestDB(t)

	svc := NewAuthService(db)
	result, err := svc.Register(registerInput("nena"))
	require.NoError(t, err)

	assert.Equal(t, models.RoleAdmin, result.User.Role)
	assert.Equal(t, "USR001", result.User.UserCode)
	assert.NotZero(t, result.User.StoreID)

	claims, err := auth.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, result.User.StoreID, claims.StoreID)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	var store models.Store
	require.NoError(t, db.First(&store, result.User.StoreID).Error)
	assert.Equal(t, "ST001", store.StoreCode)

	_, err = svc.Register(registerInput("nena"))
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)

	svc := NewAuthService(db)
	_, err := svc.Register(registerInput("nena"))
	require.NoError(t, err)

	result, err := svc.Login("nena", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "nena", result.User.Username)

	_, err = svc.Login("nena", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("nobody", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "unknown user reads the same as a bad password")
}

func TestAddStaff(t *testing.T) {
	db := newTestDB(t)

	svc := NewAuthService(db)
	owner, err := svc.Register(registerInput("nena"))
	require.NoError(t, err)

	staff, err := svc.AddStaff(owner.User.StoreID, StaffInput{
		Username:  "benjie",
		Password:  "secret123",
		Role:      models.RoleCashier,
		FirstName: "Benjie",
		LastName:  "Reyes",
		Email:     "benjie@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCashier, staff.Role)
	assert.Equal(t, "USR002", staff.UserCode)
	assert.Equal(t, owner.User.StoreID, staff.StoreID)

	_, err = svc.AddStaff(owner.User.StoreID, StaffInput{Username: "x", Password: "y", Role: "Owner"})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestChangePassword(t *testing.T) {
	db := newTestDB(t)

	svc := NewAuthService(db)
	result, err := svc.Register(registerInput("nena"))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(result.User.ID, "wrong", "next12345"), ErrInvalidCredentials)
	require.NoError(t, svc.ChangePassword(result.User.ID, "secret123", "next12345"))

	_, err = svc.Login("nena", "next12345")
	assert.NoError(t, err)
}
