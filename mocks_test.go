package userauth_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	userauth "github.com/cmontedonico/go-userauth"
)

// MockLogger implements userauth.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// MockCredentialStore implements userauth.CredentialStore
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) GetByEmail(ctx context.Context, email string) (*userauth.User, error) {
	args := m.Called(ctx, email)
	var user *userauth.User
	if v := args.Get(0); v != nil {
		user = v.(*userauth.User)
	}
	return user, args.Error(1)
}

func (m *MockCredentialStore) Register(ctx context.Context, user *userauth.User) (*userauth.User, error) {
	args := m.Called(ctx, user)
	var out *userauth.User
	if v := args.Get(0); v != nil {
		out = v.(*userauth.User)
	}
	return out, args.Error(1)
}

// MockLivenessStore implements userauth.LivenessStore
type MockLivenessStore struct {
	mock.Mock
}

func (m *MockLivenessStore) GetByID(ctx context.Context, id uuid.UUID) (*userauth.User, error) {
	args := m.Called(ctx, id)
	var user *userauth.User
	if v := args.Get(0); v != nil {
		user = v.(*userauth.User)
	}
	return user, args.Error(1)
}

// MockTokenCodec implements userauth.TokenCodec
type MockTokenCodec struct {
	mock.Mock
}

func (m *MockTokenCodec) Mint(subject, email string) (string, *userauth.SessionClaims, error) {
	args := m.Called(subject, email)
	var claims *userauth.SessionClaims
	if v := args.Get(1); v != nil {
		claims = v.(*userauth.SessionClaims)
	}
	return args.String(0), claims, args.Error(2)
}

func (m *MockTokenCodec) Decode(raw string) (*userauth.SessionClaims, error) {
	args := m.Called(raw)
	var claims *userauth.SessionClaims
	if v := args.Get(0); v != nil {
		claims = v.(*userauth.SessionClaims)
	}
	return claims, args.Error(1)
}
