// Package testdb provides database fixtures for tests outside the postgres package.
//
// Open returns a private in-memory SQLite database with the schema created from
// the gorm models, so service and handler tests exercise the real stores without
// a running server. OpenPostgres connects to the database named by
// TASKFLOW_TEST_DATABASE_URL, applies the goose migrations and skips the test when
// the variable is unset. WithTx runs a test inside a transaction that is always
// rolled back.
package testdb
