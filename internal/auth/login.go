package auth

import (
	"context"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-blog/internal/auth/password"
	"github.com/goliatone/go-blog/models"
)

// FormError is a field-level login failure shown next to the input.
type FormError struct {
	code    string
	message string
}

func (e FormError) Error() string { return e.message }

// Code returns the stable error identifier.
func (e FormError) Code() string { return e.code }

var (
	// ErrInvalidUser is reported on the shortname field when no such user exists.
	ErrInvalidUser error = FormError{code: "auth.invalid_user", message: "Invalid user"}
	// ErrBadPassword is reported on the password field when the hash does not match.
	ErrBadPassword error = FormError{code: "auth.bad_password", message: "Bad password"}
)

var (
	ErrNoSession      = errors.New("auth: no session")
	ErrSessionExpired = errors.New("auth: session expired")
)

// LoginForm is the submitted login form.
type LoginForm struct {
	Shortname string `json:"shortname"`
	Password  string `json:"password"`
	Remember  bool   `json:"remember"`
}

// Validate checks that both credentials were supplied.
func (f LoginForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Shortname, validation.Required, validation.By(notBlank)),
		validation.Field(&f.Password, validation.Required),
	)
}

func notBlank(value any) error {
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return validation.ErrRequired
	}
	return nil
}

// UserFinder loads users by shortname.
type UserFinder interface {
	Get(ctx context.Context, shortname string) (*models.User, error)
}

// ValidateLogin checks form against the stored users. Failures are returned as
// validation.Errors keyed by form field.
func ValidateLogin(ctx context.Context, users UserFinder, form LoginForm) (*models.User, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	user, err := users.Get(ctx, strings.TrimSpace(form.Shortname))
	if err != nil {
		if models.IsNotFound(err) {
			return nil, validation.Errors{"shortname": ErrInvalidUser}
		}
		return nil, err
	}
	if !ComparePassword(user.PasswordHash, form.Password) {
		return nil, validation.Errors{"password": ErrBadPassword}
	}
	return user, nil
}

// HashPassword hashes plain with the default bcrypt cost.
func HashPassword(plain string) (string, error) {
	return password.Hash(plain, password.DefaultCost)
}

// ComparePassword reports whether plain matches hash.
func ComparePassword(hash, plain string) bool {
	return password.Compare(hash, plain)
}

// FieldErrors flattens validation errors into field -> message.
func FieldErrors(err error) map[string]string {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return nil
	}
	out := make(map[string]string, len(errs))
	for field, fieldErr := range errs {
		if fieldErr != nil {
			out[field] = fieldErr.Error()
		}
	}
	return out
}
