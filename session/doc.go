// Package session implements the server-side refresh-session registry: a
// Redis-backed, per-account bounded FIFO of outstanding refresh tokens.
//
// Each account maps to one sorted set whose members are the opaque token
// strings and whose scores are creation timestamps. Admission and capacity
// eviction run inside a single Lua script, so concurrent logins from many
// devices cannot overshoot the cap or evict out of order. Expiry is enforced
// lazily: membership queries first prune entries older than the configured
// lifetime, and the whole key carries a Redis TTL as a physical-purge
// backstop. An expired session is therefore never observable through
// Contains, whether or not it has been purged yet.
package session
