// Package auth issues and validates the JWTs used by the API and the
// WebSocket gateway, hashes passwords and refresh tokens with bcrypt, and
// implements the sign-up, sign-in, refresh, password reset and logout flows.
//
// Access, refresh and socket tokens are signed with separate secrets and carry
// their type in the "type" claim, so a token issued for one purpose is rejected
// everywhere else.
package auth
