// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing business rules to remain
// independent of specific database technologies or persistence details.
//
// Implementations live in internal/platform/postgres and share the
// sentinel errors declared here so that callers can match failures with
// errors.Is regardless of the backing driver.
package store
