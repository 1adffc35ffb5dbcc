// Package credential provides the opaque credential token the
// reconciliation layer carries around.
//
// The core only ever compares tokens for equality and tests for
// presence; it never validates them. Validation belongs to the auth
// collaborator that issued the token. For JWT-shaped tokens a
// best-effort subject extraction is available to derive a default user
// identifier.
package credential
