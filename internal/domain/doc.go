// Package domain contains the core business entities (users, tasks and
// reports) and their validation rules. It is independent of any specific
// infrastructure or delivery mechanism.
package domain
