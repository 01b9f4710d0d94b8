package db

import (
	"context"
	"database/sql"

	_ "embed"

	"health-chatbot/internal/config"
)

//go:embed schema_postgres.sql
var schemaPostgres string

//go:embed schema_sqlite.sql
var schemaSQLite string

// Migrate applies the schema for the selected engine. The DDL only creates
// tables and indexes that do not already exist, so it is safe to run at every
// startup.
func Migrate(ctx context.Context, db *sql.DB, engine config.Engine) error {
	schema := schemaPostgres
	if engine == config.EngineSQLite {
		schema = schemaSQLite
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}
