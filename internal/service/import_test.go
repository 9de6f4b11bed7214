package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/customer-auth/internal/utils"
)

func TestImportUsers_DefaultsAndHashing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inactive := false

	n, err := f.svc.ImportUsers(ctx, []NewUser{
		{CustomerID: "c-2", Email: " two@test.com ", Password: "secret", Country: "at", Language: "fr"},
		{CustomerID: "c-3", Email: "three@test.com", Country: "CH", Language: "de", IsActive: &inactive},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	two := f.store.get("c-2")
	assert.Equal(t, "two@test.com", two.Email)
	assert.Equal(t, "AT", two.Country)
	assert.Equal(t, "en", two.Language)
	assert.True(t, two.IsActive)
	assert.True(t, f.hasher.VerifyPassword(&two, "secret"))

	three := f.store.get("c-3")
	assert.Equal(t, "de", three.Language)
	assert.False(t, three.IsActive)
	assert.Empty(t, three.PasswordHash)

	_, err = f.svc.Login(ctx, "two@test.com", "secret")
	assert.NoError(t, err)
}

func TestImportUsers_InvalidRecordAbortsBatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ImportUsers(context.Background(), []NewUser{
		{CustomerID: "c-2", Email: "two@test.com", Country: "AT"},
		{CustomerID: "c-3", Email: "not-an-email", Country: "Austria"},
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "country")
	assert.Contains(t, err.Error(), "record 2")

	_, err = f.svc.UserByID(context.Background(), "c-2")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestImportUsers_HashWithoutSalt(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ImportUsers(context.Background(), []NewUser{
		{CustomerID: "c-2", Email: "two@test.com", Country: "AT", HashedPassword: "$2a$04$abc"},
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "salt")
}

func TestImportUsers_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ImportUsers(context.Background(), []NewUser{
		{CustomerID: "c-2", Email: testEmail, Country: "AT"},
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "email")
}

func TestImportUsers_Empty(t *testing.T) {
	f := newFixture(t)
	n, err := f.svc.ImportUsers(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestImportUsers_LegacyBcryptPairCanLogIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("legacy-pw"), bcrypt.MinCost)
	require.NoError(t, err)

	n, err := f.svc.ImportUsers(ctx, []NewUser{{
		CustomerID:     "c-legacy",
		Email:          "legacy@test.com",
		HashedPassword: string(hash),
		Salt:           string(hash[:29]),
		Country:        "DE",
	}})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = f.svc.Login(ctx, "legacy@test.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	u, err := f.svc.Login(ctx, "legacy@test.com", "legacy-pw")
	require.NoError(t, err)
	assert.Equal(t, "c-legacy", u.CustomerID)

	// The successful login moved the account to the current scheme.
	stored := f.store.get("c-legacy")
	assert.False(t, utils.IsLegacyCredential(&stored))
	assert.NotEqual(t, string(hash), stored.PasswordHash)

	_, err = f.svc.Login(ctx, "legacy@test.com", "legacy-pw")
	assert.NoError(t, err)
}

func TestImportUsers_RejectsUnknownHashFormat(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ImportUsers(context.Background(), []NewUser{
		{CustomerID: "c-2", Email: "two@test.com", Country: "AT", HashedPassword: "md5:abc", Salt: "xyz"},
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Contains(t, verr.Fields, "hashed_password")

	_, err = f.svc.UserByID(context.Background(), "c-2")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
