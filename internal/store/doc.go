// Package store holds the session table for capability-hub.
//
// # Backends
//
//   - MemorySessionStore: process-local map, the default. Sessions are lost on restart.
//   - SQLiteSessionStore: modernc.org/sqlite in WAL mode, for several processes
//     sharing one session file.
//
// Both satisfy SessionStore and are safe for concurrent use.
//
// # Data Model
//
// A Session maps an opaque token to the practice lead who logged in:
//
//	CREATE TABLE sessions (
//	    token TEXT PRIMARY KEY,
//	    username TEXT NOT NULL,
//	    role TEXT NOT NULL,
//	    practice_area TEXT NOT NULL DEFAULT '',
//	    created_at TEXT NOT NULL
//	);
//
// Password hashes are never stored in a session. Sessions do not expire.
//
// # Errors
//
//   - ErrSessionNotFound: GetSession was given an unknown token
//
// DeleteSession is idempotent. All methods accept context.Context for
// cancellation.
package store
