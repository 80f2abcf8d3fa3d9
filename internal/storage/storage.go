// Package storage opens the blog database and manages its schema.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-blog/internal/auth/password"
	"github.com/goliatone/go-blog/models"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	ErrUnsupportedDriver = errors.New("storage: unsupported driver")
	ErrDSNRequired       = errors.New("storage: dsn is required")
)

// Config selects the database driver and connection string.
type Config struct {
	Driver string
	DSN    string
}

// Open connects to the configured database and registers the blog models.
func Open(cfg Config) (*bun.DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, ErrDSNRequired
	}

	var db *bun.DB
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverSQLite, "sqlite3":
		sqldb, err := sql.Open("sqlite3", withForeignKeys(dsn))
		if err != nil {
			return nil, err
		}
		db = bun.NewDB(sqldb, sqlitedialect.New())
	case DriverPostgres, "postgresql":
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, err
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	RegisterModels(db)
	return db, nil
}

// RegisterModels registers the join models bun needs for m2m relations.
func RegisterModels(db *bun.DB) {
	db.RegisterModel((*models.PostTag)(nil))
}

type table struct {
	model       any
	foreignKeys []string
}

func tables() []table {
	return []table{
		{model: (*models.User)(nil)},
		{model: (*models.Tag)(nil)},
		{
			model:       (*models.Post)(nil),
			foreignKeys: []string{`("user_shortname") REFERENCES "users" ("shortname")`},
		},
		{
			model: (*models.PostTag)(nil),
			foreignKeys: []string{
				`("post_slug") REFERENCES "posts" ("slug") ON DELETE CASCADE`,
				`("tag_slug") REFERENCES "tags" ("slug") ON DELETE CASCADE`,
			},
		},
		{
			model:       (*models.Service)(nil),
			foreignKeys: []string{`("user_shortname") REFERENCES "users" ("shortname") ON DELETE CASCADE`},
		},
		{
			model:       (*models.Session)(nil),
			foreignKeys: []string{`("shortname") REFERENCES "users" ("shortname") ON DELETE CASCADE`},
		},
		{model: (*models.ActivityEntry)(nil)},
	}
}

// CreateSchema creates every blog table that does not exist yet.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	for _, t := range tables() {
		q := db.NewCreateTable().Model(t.model).IfNotExists()
		for _, fk := range t.foreignKeys {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("storage: create table for %T: %w", t.model, err)
		}
	}
	return nil
}

// SeedDefaultUser creates the bootstrap account when no user with that
// shortname exists. It reports whether a user was created.
func SeedDefaultUser(ctx context.Context, db bun.IDB, name, plain string, cost int) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, models.ErrShortnameRequired
	}

	exists, err := db.NewSelect().Model((*models.User)(nil)).Where("shortname = ?", name).Exists(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	hashed, err := password.Hash(plain, cost)
	if err != nil {
		return false, err
	}
	user := &models.User{Shortname: name, Name: name, PasswordHash: hashed}
	if _, err := db.NewInsert().Model(user).Exec(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_fk=") || strings.Contains(dsn, "_foreign_keys=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_fk=1"
}
