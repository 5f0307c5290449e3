// Package service contains the application use cases behind the HTTP handlers.
//
// UserService manages profiles and accounts, TaskService implements task CRUD
// and favorites with a cache-aside read path, and ReportService schedules
// report jobs and delivers their results over the user's socket. Authentication
// flows live in the auth subpackage.
//
// Services depend on the store interfaces, never on a database driver, and
// return sentinel errors from store, domain and this package, wrapped with
// context, for the API layer to map onto status codes.
package service
