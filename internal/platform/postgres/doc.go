// Package postgres provides PostgreSQL-backed implementations of the storage
// interfaces defined in internal/store and internal/job. It uses gorm over the
// pgx driver, maps driver errors onto the store sentinel errors, and owns the
// embedded goose migrations that define the schema.
package postgres
