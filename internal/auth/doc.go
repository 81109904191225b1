// Package auth validates the bearer tokens that protect the lead endpoints.
//
// Tokens are HS256 JWTs signed with a shared secret. Expiry is mandatory;
// the issuer is checked when one is configured.
package auth
