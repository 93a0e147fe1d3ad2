// Package token mints and verifies the two credential kinds used by
// hireauth: short-lived stateless access tokens and long-lived refresh
// tokens. Both are HS256 JWTs carrying {account id, role}, signed with
// distinct secrets so a compromised access-signing key cannot be used to
// forge refresh sessions.
package token
