package testsupport

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-blog/internal/storage"
)

var dbCounter atomic.Int64

// NewSQLiteMemoryDB opens a private in-memory SQLite database with foreign
// keys enabled.
func NewSQLiteMemoryDB(name string) (*sql.DB, error) {
	name = strings.NewReplacer("/", "_", " ", "_").Replace(name)
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_fk=1", name, dbCounter.Add(1))
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	sqldb.SetMaxOpenConns(1)
	return sqldb, nil
}

// NewBunDB returns a bun database with the blog schema applied. It is closed
// when the test finishes.
func NewBunDB(t testing.TB) *bun.DB {
	t.Helper()

	sqldb, err := NewSQLiteMemoryDB(t.Name())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	storage.RegisterModels(db)
	if err := storage.CreateSchema(context.Background(), db); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
