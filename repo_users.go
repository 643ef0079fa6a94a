package userauth

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var setUserActiveSQL = `UPDATE "users" AS "usr"
SET
	"is_active" = ?,
	"updated_at" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
);`

// Users is the store consumed by the auth core. Lookups return a
// repository not-found error that is distinct from store-level failures.
type Users interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error)

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)

	UpdateNames(ctx context.Context, id uuid.UUID, firstName, lastName string) (*User, error)

	Deactivate(ctx context.Context, id uuid.UUID) (*User, error)
	Reinstate(ctx context.Context, id uuid.UUID) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var _ Users = (*users)(nil)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

// GetByEmailTx matches case-insensitively and does not filter on
// is_active: uniqueness holds across active and inactive records, and the
// caller decides what an inactive match means.
func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("lower(?TableAlias.email) = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": NormalizeEmail(email),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.GetByIDTx(ctx, a.db, id)
}

func (a *users) GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)
	return a.Repository.CreateTx(ctx, tx, user)
}

func (a *users) UpdateNames(ctx context.Context, id uuid.UUID, firstName, lastName string) (*User, error) {
	now := time.Now()
	_, err := a.db.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"first_name" = ?,
			"last_name" = ?,
			"updated_at" = ?
		WHERE
			("usr".id = ?)
			AND "usr"."deleted_at" IS NULL;
	`, firstName, lastName, now, id).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return a.GetByID(ctx, id)
}

// Deactivate revokes account trust: the gate rejects already-issued,
// unexpired tokens for this user from the next request on.
func (a *users) Deactivate(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.setActive(ctx, id, false)
}

func (a *users) Reinstate(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.setActive(ctx, id, true)
}

func (a *users) setActive(ctx context.Context, id uuid.UUID, active bool) (*User, error) {
	// NOTE: raw SQL because the ORM update drops zero-valued booleans.
	_, err := a.db.NewRaw(setUserActiveSQL, active, time.Now(), id).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return a.GetByID(ctx, id)
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	record.Email = NormalizeEmail(record.Email)

	// New accounts start trusted; deactivation is a later, explicit step.
	record.IsActive = true

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
