// Package password implements password hashing and verification with bcrypt.
//
// Hashes are standard bcrypt strings ($2a$/$2b$ prefixed) and verify against
// records produced by any bcrypt implementation at any cost.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Password policy and the
// decision of when to write a new hash belong to the caller.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords; callers supply plaintext and receive hashes.
//   - Import any other package from this module.
//   - Log plaintext passwords.
package password
