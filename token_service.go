package userauth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenCodec mints and decodes session tokens.
type TokenCodec interface {
	Mint(subject, email string) (string, *SessionClaims, error)
	Decode(raw string) (*SessionClaims, error)
}

// TokenService is the HS256 implementation of TokenCodec. The signing key
// is injected once at construction and never read ad hoc, so tests can
// supply a fixed secret.
type TokenService struct {
	signingKey      []byte
	tokenExpiration int
	issuer          string
	logger          Logger
}

var _ TokenCodec = (*TokenService)(nil)

// NewTokenService creates a new TokenService. tokenExpiration is the
// validity window in hours.
func NewTokenService(signingKey []byte, tokenExpiration int, issuer string, logger Logger) *TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenService{
		signingKey:      signingKey,
		tokenExpiration: tokenExpiration,
		issuer:          issuer,
		logger:          logger,
	}
}

// Mint builds session claims for the subject, signs them with the
// process-wide secret, and returns the opaque token alongside the claims
// so callers can report the expiry to the client.
func (ts *TokenService) Mint(subject, email string) (string, *SessionClaims, error) {
	now := time.Now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ts.tokenExpiration) * time.Hour)),
		},
		Email: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		ts.logger.Error("TokenService failed to sign session claims", "error", err)
		return "", nil, errors.Wrap(err, errors.CategoryInternal, "failed to sign session claims")
	}

	return signed, claims, nil
}

// Decode verifies the signature and structural shape of the claims. It
// does not enforce expiry; callers check SessionClaims.IsExpired after a
// successful decode. Signature mismatch, malformed structure, and
// unsupported algorithms all come back as ErrTokenMalformed.
func (ts *TokenService) Decode(raw string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService decode encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, jwt.WithoutClaimsValidation())

	if err != nil {
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode).
			WithCode(ErrTokenMalformed.Code)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		ts.logger.Error("TokenService decode could not map claims")
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
