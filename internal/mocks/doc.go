// Package mocks provides shared test doubles for the store, auth and job
// interfaces.
//
// UserStore, TaskStore and JobQueue are testify mocks: set expectations with
// On and verify them with AssertExpectations. MockJWTService uses function
// fields with fixed defaults for tests that only need canned tokens.
//
//	users := new(mocks.UserStore)
//	users.On("GetByID", mock.Anything, userID).Return(user, nil)
//	svc := service.NewUserService(users, jwt, cache.NewMemory(), registry, logger)
//	...
//	users.AssertExpectations(t)
package mocks
