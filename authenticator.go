package userauth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
)

// CredentialStore is the narrow slice of the user store the credential
// service needs. The Users repository satisfies it directly.
type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	Register(ctx context.Context, user *User) (*User, error)
}

// LoginResult carries everything the transport returns on a successful
// login: the profile, the opaque token, and its expiry.
type LoginResult struct {
	User      *Profile  `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CredentialService orchestrates registration and login over the hasher,
// the token service, and the user store.
type CredentialService struct {
	store  CredentialStore
	tokens TokenCodec
	logger Logger
}

func NewCredentialService(store CredentialStore, tokens TokenCodec) *CredentialService {
	return &CredentialService{
		store:  store,
		tokens: tokens,
		logger: defLogger{},
	}
}

func (s *CredentialService) WithLogger(logger Logger) *CredentialService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Register validates the payload, enforces case-insensitive email
// uniqueness, hashes the password, and persists the record. The returned
// profile never includes the hash.
func (s *CredentialService) Register(ctx context.Context, req RegisterRequest) (*Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, WrapValidation(err)
	}

	email := NormalizeEmail(req.Email)

	if _, err := s.store.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.IsNotFound(err) {
		s.logger.Error("Register uniqueness lookup failed", "error", err)
		return nil, errors.Wrap(err, ErrStoreUnavailable.Category, ErrStoreUnavailable.Message).
			WithTextCode(ErrStoreUnavailable.TextCode).
			WithCode(ErrStoreUnavailable.Code)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		s.logger.Error("Register failed to hash password", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	user, err := s.store.Register(ctx, &User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
	})
	if err != nil {
		s.logger.Error("Register failed to persist user", "error", err)
		return nil, errors.Wrap(err, ErrStoreUnavailable.Category, ErrStoreUnavailable.Message).
			WithTextCode(ErrStoreUnavailable.TextCode).
			WithCode(ErrStoreUnavailable.Code)
	}

	return user.Profile(), nil
}

// Login verifies credentials and mints a session token. Unknown email,
// wrong password, and deactivated accounts all come back as
// ErrInvalidCredentials so nothing can be enumerated from the outcome.
func (s *CredentialService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := req.Validate(); err != nil {
		return nil, WrapValidation(err)
	}

	user, err := s.store.GetByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		if errors.IsNotFound(err) {
			// Burn a compare so an unknown email costs about the same as a
			// wrong password.
			_ = ComparePasswordAndHash(req.Password, RandomPasswordHash())
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Login lookup failed", "error", err)
		return nil, errors.Wrap(err, ErrStoreUnavailable.Category, ErrStoreUnavailable.Message).
			WithTextCode(ErrStoreUnavailable.TextCode).
			WithCode(ErrStoreUnavailable.Code)
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := ComparePasswordAndHash(req.Password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, claims, err := s.tokens.Mint(user.ID.String(), user.Email)
	if err != nil {
		s.logger.Error("Login failed to mint token", "error", err)
		return nil, err
	}

	return &LoginResult{
		User:      user.Profile(),
		Token:     token,
		ExpiresAt: claims.Expires(),
	}, nil
}
