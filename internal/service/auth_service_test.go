package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"inkwell/internal/featureflags"
	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(users *userRepoStub, issuer *issuerStub, revoker TokenRevoker, flags string) *AuthService {
	return NewAuthService(users, issuer, revoker, featureflags.NewManager(flags), WithHashCost(bcrypt.MinCost))
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes password and issues token", func(t *testing.T) {
		var stored *models.User
		users := noopUserRepo()
		users.createFn = func(_ context.Context, u *models.User) error {
			u.ID = 12
			stored = u
			return nil
		}
		issuer := &issuerStub{}
		svc := newAuthService(users, issuer, nil, "")

		token, err := svc.Register(ctx, RegisterInput{Username: " ada ", Email: " Ada@Example.com ", Password: "secret"})
		require.NoError(t, err)
		assert.Equal(t, "token-for-user", token)
		assert.Equal(t, []uint{12}, issuer.issued)

		require.NotNil(t, stored)
		assert.Equal(t, "ada", stored.Username)
		assert.Equal(t, "ada@example.com", stored.Email)
		assert.NotEqual(t, "secret", stored.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret")))
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := newAuthService(noopUserRepo(), &issuerStub{}, nil, "")
		for _, in := range []RegisterInput{
			{Email: "a@b.co", Password: "x"},
			{Username: "a", Password: "x"},
			{Username: "a", Email: "a@b.co"},
		} {
			_, err := svc.Register(ctx, in)
			assertAppErrorCode(t, err, models.CodeValidation)
		}
	})

	t.Run("invalid email", func(t *testing.T) {
		svc := newAuthService(noopUserRepo(), &issuerStub{}, nil, "")
		_, err := svc.Register(ctx, RegisterInput{Username: "ada", Email: "not-an-email", Password: "x"})
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("password longer than bcrypt accepts", func(t *testing.T) {
		svc := newAuthService(noopUserRepo(), &issuerStub{}, nil, "")
		_, err := svc.Register(ctx, RegisterInput{Username: "ada", Email: "a@b.co", Password: strings.Repeat("p", 73)})
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("strict signup enforces policy", func(t *testing.T) {
		svc := newAuthService(noopUserRepo(), &issuerStub{}, nil, "strict_signup=on")

		_, err := svc.Register(ctx, RegisterInput{Username: "ada", Email: "a@b.co", Password: "weak"})
		assertAppErrorCode(t, err, models.CodeValidation)

		_, err = svc.Register(ctx, RegisterInput{Username: "_x", Email: "a@b.co", Password: "Str0ng!pass"})
		assertAppErrorCode(t, err, models.CodeValidation)

		_, err = svc.Register(ctx, RegisterInput{Username: "ada", Email: "a@b.co", Password: "Str0ng!pass"})
		assert.NoError(t, err)
	})

	t.Run("strict signup rollout buckets by email", func(t *testing.T) {
		const flags = "strict_signup=50%"
		m := featureflags.NewManager(flags)
		var inside, outside string
		for i := 0; inside == "" || outside == ""; i++ {
			email := fmt.Sprintf("user%d@example.com", i)
			if m.EnabledFor(featureflags.StrictSignup, email) {
				inside = email
			} else {
				outside = email
			}
		}
		svc := newAuthService(noopUserRepo(), &issuerStub{}, nil, flags)

		_, err := svc.Register(ctx, RegisterInput{Username: "ada", Email: strings.ToUpper(inside), Password: "weak"})
		assertAppErrorCode(t, err, models.CodeValidation)

		_, err = svc.Register(ctx, RegisterInput{Username: "ada", Email: outside, Password: "weak"})
		assert.NoError(t, err)
	})

	t.Run("duplicate user propagates", func(t *testing.T) {
		users := noopUserRepo()
		users.createFn = func(_ context.Context, _ *models.User) error { return models.NewDuplicateUserError() }
		issuer := &issuerStub{}
		svc := newAuthService(users, issuer, nil, "")

		token, err := svc.Register(ctx, RegisterInput{Username: "ada", Email: "a@b.co", Password: "x"})
		assertAppErrorCode(t, err, models.CodeDuplicateUser)
		assert.Empty(t, token)
		assert.Empty(t, issuer.issued)
	})

	t.Run("issuer failure is internal", func(t *testing.T) {
		svc := newAuthService(noopUserRepo(), &issuerStub{err: errors.New("no key")}, nil, "")
		_, err := svc.Register(ctx, RegisterInput{Username: "ada", Email: "a@b.co", Password: "x"})
		assertAppErrorCode(t, err, models.CodeInternal)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.MinCost)
	require.NoError(t, err)

	users := noopUserRepo()
	users.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		if email == "ada@example.com" {
			return &models.User{ID: 5, Email: email, Password: string(hash)}, nil
		}
		return nil, nil
	}

	t.Run("success", func(t *testing.T) {
		issuer := &issuerStub{}
		svc := newAuthService(users, issuer, nil, "")
		token, err := svc.Login(ctx, LoginInput{Email: "ADA@example.com", Password: "right"})
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, []uint{5}, issuer.issued)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		svc := newAuthService(users, &issuerStub{}, nil, "")

		_, wrongPassword := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "wrong"})
		_, unknownEmail := svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "right"})

		assertAppErrorCode(t, wrongPassword, models.CodeInvalidCredentials)
		assertAppErrorCode(t, unknownEmail, models.CodeInvalidCredentials)
		assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := newAuthService(users, &issuerStub{}, nil, "")
		_, err := svc.Login(ctx, LoginInput{Email: "ada@example.com"})
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		broken := noopUserRepo()
		broken.getByEmailFn = func(_ context.Context, _ string) (*models.User, error) {
			return nil, models.NewInternalError(errors.New("db down"))
		}
		svc := newAuthService(broken, &issuerStub{}, nil, "")
		_, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "right"})
		assertAppErrorCode(t, err, models.CodeInternal)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	expiresAt := time.Now().Add(time.Hour)

	revoker := &revokerStub{}
	svc := newAuthService(noopUserRepo(), &issuerStub{}, revoker, "")
	require.NoError(t, svc.Logout(ctx, "jti-1", expiresAt))
	assert.Equal(t, "jti-1", revoker.jti)
	assert.Equal(t, expiresAt, revoker.expiresAt)

	err := svc.Logout(ctx, "", expiresAt)
	assertAppErrorCode(t, err, models.CodeUnauthenticated)

	failing := newAuthService(noopUserRepo(), &issuerStub{}, &revokerStub{err: errors.New("redis down")}, "")
	assertAppErrorCode(t, failing.Logout(ctx, "jti-1", expiresAt), models.CodeInternal)

	unconfigured := newAuthService(noopUserRepo(), &issuerStub{}, nil, "")
	assertAppErrorCode(t, unconfigured.Logout(ctx, "jti-1", expiresAt), models.CodeInternal)
}
