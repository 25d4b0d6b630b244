// Package authclient manages the client side of an authenticated session for
// a role-gated content management front end: establishing, persisting,
// validating, refreshing, and tearing down a session, plus the policy layer
// that gates navigable surfaces by role.
//
// Session lifecycle:
//   - Manager owns the in-memory account and a small state machine
//     (uninitialized, initializing, unauthenticated, authenticated,
//     refreshing). Initialize runs once per process, restores a persisted
//     session after confirming validity with the backend authority, and
//     forces a logout whenever local state cannot be trusted.
//   - Whether a session is authenticated is always derived from the in-memory
//     account AND the persisted access token; it is never cached, so an
//     out-of-band token removal is observed on the next read.
//
// Credential storage:
//   - CredentialStore is a synchronous key/value contract over durable client
//     storage. Backends cover an in-memory map, an (optionally encrypted)
//     JSON file, Redis, and an embedded sqlite database via Bun.
//
// Route gating:
//   - Guard evaluates a required-role set against the current session
//     snapshot and yields a decision: wait while the verdict is unknown,
//     redirect to login or the access-denied surface, or allow. Guards
//     subscribe to session notifications, so a session invalidated mid-visit
//     re-blocks on the next evaluation. Role checks are membership only;
//     there is no role hierarchy.
package authclient
