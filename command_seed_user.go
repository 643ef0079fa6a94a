package userauth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// SeedUserMessage provisions an account outside the HTTP flow, e.g. the
// initial admin on first boot. It is idempotent on email.
type SeedUserMessage struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	// UseHashid derives a stable ID from the email so repeated seeds of
	// the same account agree across environments.
	UseHashid bool
}

func (e SeedUserMessage) Type() string { return "user.seed" }

type SeedUserHandler struct {
	repo   RepositoryManager
	logger Logger
}

func NewSeedUserHandler(repo RepositoryManager) *SeedUserHandler {
	return &SeedUserHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

func (h *SeedUserHandler) WithLogger(logger Logger) *SeedUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *SeedUserHandler) Execute(ctx context.Context, event SeedUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user seeding",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *SeedUserHandler) execute(ctx context.Context, event SeedUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := h.repo.Users().GetByEmailTx(ctx, tx, event.Email)
		if err == nil {
			h.logger.Info("seed user already present", "email", existing.Email)
			return nil
		}
		if !goerrors.IsNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "seed lookup failed")
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user := &User{
			Email:        event.Email,
			PasswordHash: hash,
			FirstName:    event.FirstName,
			LastName:     event.LastName,
		}

		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Email); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		h.logger.Info("seeded user", "email", user.Email, "id", user.ID.String())
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user seeding transaction failed")
	}

	return nil
}
