package userauth

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
)

// ApiResponse is the uniform envelope returned by every endpoint.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
}

// RegisterRequest payload
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone_number,omitempty"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
			// bcrypt ignores input past 72 bytes
			validation.Length(8, 72),
		),
		validation.Field(
			&r.Phone,
			validation.By(validPhoneNumber),
		),
	)
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// UpdateProfileRequest payload for profile mutations. Only display names
// are mutable here; identity and trust fields have their own flows.
type UpdateProfileRequest struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Validate will run validation rules
func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.FirstName,
			validation.Length(1, 255),
		),
		validation.Field(
			&r.LastName,
			validation.Length(0, 255),
		),
	)
}

func validPhoneNumber(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	num, err := phonenumbers.Parse(s, "US")
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return errors.New("must be a valid phone number", errors.CategoryValidation)
	}
	return nil
}

// ProfileStore is the store slice the profile endpoints need.
type ProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateNames(ctx context.Context, id uuid.UUID, firstName, lastName string) (*User, error)
}

// AuthController exposes the HTTP surface: registration, login, health,
// and the current-user profile endpoints.
type AuthController struct {
	Logger      Logger
	Credentials *CredentialService
	Users       ProfileStore
}

func NewAuthController(credentials *CredentialService, users ProfileStore) *AuthController {
	return &AuthController{
		Logger:      defLogger{},
		Credentials: credentials,
		Users:       users,
	}
}

func (a *AuthController) WithLogger(logger Logger) *AuthController {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// RegisterRoutes mounts the API. The gate middleware must already be
// mounted on the app; the public allow-list matches these paths.
func (a *AuthController) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")

	api.Get("/health", a.Health)
	api.Post("/auth/register", a.Register)
	api.Post("/auth/login", a.Login)

	api.Get("/users/me", a.CurrentUser)
	api.Post("/users/me", a.UpdateCurrentUser)
}

func (a *AuthController) Health(c *fiber.Ctx) error {
	return respond(c, fiber.Map{"status": "ok"})
}

func (a *AuthController) Register(c *fiber.Ctx) error {
	payload := new(RegisterRequest)
	if err := c.BodyParser(payload); err != nil {
		return a.renderError(c, WrapValidation(err))
	}

	profile, err := a.Credentials.Register(c.UserContext(), *payload)
	if err != nil {
		return a.renderError(c, err)
	}

	return respond(c, profile)
}

func (a *AuthController) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)
	if err := c.BodyParser(payload); err != nil {
		return a.renderError(c, WrapValidation(err))
	}

	result, err := a.Credentials.Login(c.UserContext(), *payload)
	if err != nil {
		return a.renderError(c, err)
	}

	return respond(c, result)
}

func (a *AuthController) CurrentUser(c *fiber.Ctx) error {
	user, err := a.identityFromRequest(c)
	if err != nil {
		return a.renderError(c, err)
	}

	return respond(c, user.Profile())
}

func (a *AuthController) UpdateCurrentUser(c *fiber.Ctx) error {
	user, err := a.identityFromRequest(c)
	if err != nil {
		return a.renderError(c, err)
	}

	payload := new(UpdateProfileRequest)
	if err := c.BodyParser(payload); err != nil {
		return a.renderError(c, WrapValidation(err))
	}
	if err := payload.Validate(); err != nil {
		return a.renderError(c, WrapValidation(err))
	}

	first := user.FirstName
	if payload.FirstName != "" {
		first = payload.FirstName
	}
	last := user.LastName
	if payload.LastName != "" {
		last = payload.LastName
	}

	updated, err := a.Users.UpdateNames(c.UserContext(), user.ID, first, last)
	if err != nil {
		return a.renderError(c, err)
	}

	return respond(c, updated.Profile())
}

// identityFromRequest resolves the record behind the gate-attached
// claims. The gate already checked liveness; a miss here is a race with
// deletion and still rejects.
func (a *AuthController) identityFromRequest(c *fiber.Ctx) (*User, error) {
	claims, ok := ClaimsFromContext(c.UserContext())
	if !ok {
		return nil, ErrUnauthenticated
	}

	id, err := uuid.Parse(claims.UserID())
	if err != nil {
		return nil, ErrUnauthenticated
	}

	user, err := a.Users.GetByID(c.UserContext(), id)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrUnauthenticated
		}
		return nil, errors.Wrap(err, ErrStoreUnavailable.Category, ErrStoreUnavailable.Message).
			WithTextCode(ErrStoreUnavailable.TextCode).
			WithCode(ErrStoreUnavailable.Code)
	}

	return user, nil
}

func respond(c *fiber.Ctx, data any) error {
	return c.JSON(ApiResponse{Success: true, Data: data})
}

// renderError maps rich errors to transport statuses. Auth failures are
// uniform and reason-free; validation keeps field detail; nothing else
// leaks internals.
func (a *AuthController) renderError(c *fiber.Ctx, err error) error {
	var rich *errors.Error
	if !errors.As(err, &rich) {
		rich = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Error(
		"request error",
		"category", rich.Category,
		"text_code", rich.TextCode,
		"details", print.MaybePrettyJSON(rich.Metadata),
	)

	switch rich.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return c.Status(fiber.StatusUnauthorized).JSON(ApiResponse{
			Success: false,
			Error:   "unauthorized",
		})
	case errors.CategoryValidation:
		return c.Status(fiber.StatusBadRequest).JSON(ApiResponse{
			Success: false,
			Error:   rich.Message,
			Details: rich.Metadata,
		})
	case errors.CategoryConflict:
		return c.Status(fiber.StatusConflict).JSON(ApiResponse{
			Success: false,
			Error:   rich.Message,
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(ApiResponse{
			Success: false,
			Error:   "internal server error",
		})
	}
}
