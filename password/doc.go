// Package password hashes and verifies account passwords with Argon2id,
// encoded in the PHC string format. Policy (minimum length and so on) lives
// with the engine; this package only does the crypto.
package password
