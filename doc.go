// Package userauth provides the authentication and request-authorization
// core for a multi-user HTTP service: password hashing, signed session
// tokens, credential verification, and the request gate that decides which
// requests reach protected handlers.
//
// Components:
//   - HashPassword / ComparePasswordAndHash wrap bcrypt with a tunable
//     work factor. Malformed stored hashes compare as mismatches so the
//     call site cannot tell a broken hash from a wrong password.
//   - TokenService mints and decodes HS256 session claims. Decoding only
//     proves authenticity; expiry is an explicit, separate check so the
//     gate controls the full admit/reject decision.
//   - CredentialService orchestrates registration (uniqueness, hashing,
//     persistence) and login (lookup, verification, token minting).
//   - middleware/authgate is the per-request policy: public allow-list,
//     bearer extraction, decode, expiry, and a liveness lookup that makes
//     account deactivation effective for already-issued tokens.
//
// All identity-relevant failures are fail-closed: ambiguity rejects the
// request, and rejection responses never explain why.
package userauth
