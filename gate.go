package userauth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/cmontedonico/go-userauth/middleware/authgate"
)

// PublicRoutes is the fixed allow-list of operations that bypass the
// gate: health, registration, and login.
var PublicRoutes = []authgate.Route{
	{Method: fiber.MethodGet, Path: "/api/health"},
	{Method: fiber.MethodPost, Path: "/api/auth/register"},
	{Method: fiber.MethodPost, Path: "/api/auth/login"},
}

// LivenessStore is the narrow store slice the gate's liveness check
// needs. The Users repository satisfies it directly.
type LivenessStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

// NewAuthGate wires the token service and the user store into the gate
// middleware. Admitted claims land in fiber Locals and in the request
// context, retrievable with ClaimsFromContext.
func NewAuthGate(tokens TokenCodec, store LivenessStore) fiber.Handler {
	return authgate.New(authgate.Config{
		Decoder: authgate.DecoderFunc(func(raw string) (authgate.Claims, error) {
			return tokens.Decode(raw)
		}),
		Liveness: LivenessCheck(store),
		Skip:     authgate.SkipRoutes(PublicRoutes...),
		ContextEnricher: func(ctx context.Context, claims authgate.Claims) context.Context {
			if sc, ok := claims.(*SessionClaims); ok {
				return WithClaimsContext(ctx, sc)
			}
			return ctx
		},
	})
}

// LivenessCheck verifies the claimed subject still exists and is active.
// An unknown, unparseable, or deactivated subject rejects as revoked; a
// store fault surfaces as unavailable, never as an auth rejection.
func LivenessCheck(store LivenessStore) func(ctx context.Context, subject string) error {
	return func(ctx context.Context, subject string) error {
		id, err := uuid.Parse(subject)
		if err != nil {
			return authgate.ErrSubjectRevoked
		}

		user, err := store.GetByID(ctx, id)
		if err != nil {
			if errors.IsNotFound(err) {
				return authgate.ErrSubjectRevoked
			}
			return errors.Wrap(err, ErrStoreUnavailable.Category, ErrStoreUnavailable.Message).
				WithTextCode(ErrStoreUnavailable.TextCode).
				WithCode(ErrStoreUnavailable.Code)
		}

		if !user.IsActive {
			return authgate.ErrSubjectRevoked
		}

		return nil
	}
}
