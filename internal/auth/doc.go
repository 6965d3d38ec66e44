// Package auth provides authentication and authorisation for patra.
//
// It implements a layered access model with:
//   - bcrypt password hashing with a self-describing stored format
//   - stateless HS256 JWT access tokens (signature and expiry checks only,
//     no token storage)
//   - an enumeration-safe Authenticator that answers identically for
//     unknown emails and wrong passwords
//   - an ordered Gate (token → principal → active → admin) plus an
//     owner-or-admin check for record ownership
//
// Authentication and authorisation are deliberately separate: an inactive
// principal can still prove who they are, but the Gate refuses them
// everything past that point.
package auth
