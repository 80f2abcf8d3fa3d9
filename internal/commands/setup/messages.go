// Package setupcmd holds the commands that prepare a blog database and its
// accounts.
package setupcmd

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-blog/models"
)

const (
	initDatabaseMessageType = "blog.setup.init_database"
	createUserMessageType   = "blog.setup.create_user"
	purgeSessionsType       = "blog.setup.purge_sessions"
)

// InitDatabaseCommand creates the schema and seeds the default account.
type InitDatabaseCommand struct {
	DefaultUser     string `json:"default_user"`
	DefaultPassword string `json:"default_password"`
}

// Type implements command.Message.
func (InitDatabaseCommand) Type() string { return initDatabaseMessageType }

func (cmd InitDatabaseCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.DefaultUser, validation.Required, validation.By(validSlug)),
		validation.Field(&cmd.DefaultPassword, validation.Required),
	)
}

// CreateUserCommand adds an account that can log into the admin console.
type CreateUserCommand struct {
	Shortname string `json:"shortname"`
	Name      string `json:"name"`
	Password  string `json:"password"`
}

// Type implements command.Message.
func (CreateUserCommand) Type() string { return createUserMessageType }

func (cmd CreateUserCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Shortname, validation.Required, validation.By(validSlug)),
		validation.Field(&cmd.Name, validation.Required),
		validation.Field(&cmd.Password, validation.Required),
	)
}

// PurgeSessionsCommand deletes login sessions that have expired.
type PurgeSessionsCommand struct{}

// Type implements command.Message.
func (PurgeSessionsCommand) Type() string { return purgeSessionsType }

func validSlug(value any) error {
	s, _ := value.(string)
	if s == "" || models.IsValidSlug(s) {
		return nil
	}
	return validation.NewError("blog.setup.slug_invalid", "must be lowercase letters, digits and dashes")
}
