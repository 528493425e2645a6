// Package server is the HTTP surface of capability-hub.
//
// # Routes
//
//	POST   /login                            HTTP Basic (or JSON) credentials, sets session_token
//	POST   /logout                           clears the session, never fails
//	GET    /me                               the session owner
//	GET    /                                 302 to /static/index.html
//	GET    /static/*                         embedded front-end
//	GET    /capabilities                     every capability, keyed by name in seed order
//	GET    /capabilities/{name}              one capability
//	POST   /capabilities/{name}/register     ?email=, practice lead only
//	DELETE /capabilities/{name}/unregister   ?email=, practice lead only
//	GET    /health, /health/ready            liveness and readiness
//
// Roster routes check the session before looking up the capability, so an
// anonymous request for an unknown name gets 401 rather than 404.
//
// # Middleware
//
// Every request passes through otelhttp, the request logger (which assigns
// X-Request-ID) and the CORS policy. /login is additionally rate limited per
// client IP.
//
// # Listeners
//
// The server listens on server.http_addr, or joins a tailnet via tsnet when
// tailscale.enabled is set. Funnel and tailnet HTTPS are both supported.
package server
