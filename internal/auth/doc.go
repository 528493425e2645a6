// Package auth is the authentication gate for capability-hub.
//
// # Sessions
//
// A practice lead logs in with a username and password that are checked
// against the credentials store (bcrypt). On success a 256-bit random token
// is minted and stored in the session table along with the lead's username,
// role and practice area. The token is handed to the browser as the
// HTTP-only session_token cookie.
//
// Sessions are opaque: there is no signed payload to inspect and no expiry.
// A session lives until logout or until the session table is discarded.
//
// # Authorization
//
// Mutating registry operations require a session whose role is
// practice_lead:
//
//	lead, err := gate.RequirePracticeLead(ctx, token)
//
// For HTTP handlers, RequirePracticeLeadHTTP does the same check and stores
// the lead on the request context, where LeadFromContext retrieves it.
package auth
