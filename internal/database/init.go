package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Database struct {
	MysqlClient *sql.DB
}

func NewDatabase(client *sql.DB) *Database {
	return &Database{
		MysqlClient: client,
	}
}

// Migrate runs every embedded migration in file name order. Migrations are
// written to be idempotent, so running them on each start is safe.
func (d *Database) Migrate(ctx context.Context) error {
	entries, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}

	sort.Strings(entries)

	for _, name := range entries {
		c, err := migrations.ReadFile(name)
		if err != nil {
			return err
		}

		if _, err = d.MysqlClient.ExecContext(ctx, string(c)); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", name, err)
		}
	}

	return nil
}
