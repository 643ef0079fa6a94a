// Package authgate is the request-interception policy: it classifies each
// request as public or protected, rejects missing, malformed, expired, or
// revoked proof of identity, and attaches the verified claims to the
// request for downstream handlers.
//
// It lives in its own package, mirroring the split between the auth core
// and its middleware, so the gate depends only on small local interfaces
// and the core can depend on the gate without an import cycle.
package authgate

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// Claims is the decoded proof of identity the gate admits a request with.
// It mirrors the core's SessionClaims without importing it.
type Claims interface {
	UserID() string
	IsExpired() bool
}

// Decoder verifies a raw token's authenticity and returns its claims.
// Expiry is the gate's explicit, separate check.
type Decoder interface {
	Decode(raw string) (Claims, error)
}

// DecoderFunc adapts a function into a Decoder.
type DecoderFunc func(raw string) (Claims, error)

func (f DecoderFunc) Decode(raw string) (Claims, error) {
	if f == nil {
		return nil, ErrMissingToken
	}
	return f(raw)
}

// Route is one (method, path) pair on the public allow-list.
type Route struct {
	Method string
	Path   string
}

// ErrMissingToken covers an absent or malformed Authorization header.
var ErrMissingToken = errors.New("missing or malformed authorization header", errors.CategoryAuth).
	WithTextCode("UNAUTHENTICATED").
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is the rejection for authentic but stale claims. The
// response is indistinguishable from any other rejection.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED").
	WithCode(errors.CodeUnauthorized)

// ErrSubjectRevoked is the rejection for a subject that is unknown or no
// longer active. It makes deactivation effective for unexpired tokens.
var ErrSubjectRevoked = errors.New("subject is unknown or inactive", errors.CategoryAuth).
	WithTextCode("SUBJECT_REVOKED").
	WithCode(errors.CodeUnauthorized)

type Config struct {
	// Decoder is required.
	Decoder Decoder

	// Liveness checks the claimed subject against the user store. Return
	// nil to admit, an auth-category error to reject, anything else to
	// surface a store fault. Optional; skipped when nil.
	Liveness func(ctx context.Context, subject string) error

	// Skip returns true for public requests, which pass through untouched
	// with no identity attached.
	Skip func(c *fiber.Ctx) bool

	// ContextKey is the fiber Locals key for the admitted claims.
	// Defaults to "claims".
	ContextKey string

	// AuthScheme defaults to "Bearer".
	AuthScheme string

	// ContextEnricher propagates claims into the request's standard
	// context after admission.
	ContextEnricher func(ctx context.Context, claims Claims) context.Context

	// ErrorHandler maps rejections to responses. The default collapses
	// every auth failure to one uniform 401 and everything else to a 500.
	ErrorHandler func(c *fiber.Ctx, err error) error
}

// New returns the gate middleware. Each request is independently judged;
// there are no retries and no shared state between requests.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Skip != nil && cfg.Skip(c) {
			return c.Next()
		}

		raw, err := FromAuthHeader(c.Get(fiber.HeaderAuthorization), cfg.AuthScheme)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		claims, err := cfg.Decoder.Decode(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		// Decode success proves authenticity, not liveness.
		if claims.IsExpired() {
			return cfg.ErrorHandler(c, ErrTokenExpired)
		}

		if cfg.Liveness != nil {
			if err := cfg.Liveness(c.UserContext(), claims.UserID()); err != nil {
				return cfg.ErrorHandler(c, err)
			}
		}

		c.Locals(cfg.ContextKey, claims)

		if cfg.ContextEnricher != nil {
			c.SetUserContext(cfg.ContextEnricher(c.UserContext(), claims))
		}

		return c.Next()
	}
}

func configDefault(config ...Config) Config {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Decoder == nil {
		panic("authgate: Config.Decoder is required")
	}
	if cfg.ContextKey == "" {
		cfg.ContextKey = "claims"
	}
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}

	return cfg
}

// FromAuthHeader extracts the raw token from an "Authorization: <scheme>
// <token>" header. Absence and a malformed scheme are the same failure.
func FromAuthHeader(header, scheme string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], scheme) {
		return "", ErrMissingToken
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", ErrMissingToken
	}

	return token, nil
}

// SkipRoutes builds a Skip filter from a static allow-list of (method,
// path) pairs, checked before any auth logic runs.
func SkipRoutes(routes ...Route) func(c *fiber.Ctx) bool {
	allow := make(map[string]struct{}, len(routes))
	for _, r := range routes {
		allow[strings.ToUpper(r.Method)+" "+r.Path] = struct{}{}
	}

	return func(c *fiber.Ctx) bool {
		_, ok := allow[c.Method()+" "+c.Path()]
		return ok
	}
}

// ClaimsFromLocals returns the admitted claims stored by the gate.
func ClaimsFromLocals(c *fiber.Ctx, key string) (Claims, bool) {
	if key == "" {
		key = "claims"
	}
	claims, ok := c.Locals(key).(Claims)
	return claims, ok
}

// defaultErrorHandler fails closed: auth-category errors collapse to one
// uniform 401 with no reason detail, anything else is a 500.
func defaultErrorHandler(c *fiber.Ctx, err error) error {
	var rich *errors.Error
	if errors.As(err, &rich) {
		switch rich.Category {
		case errors.CategoryAuth, errors.CategoryAuthz:
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "unauthorized",
			})
		}
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   "internal server error",
	})
}
