// ABOUTME: HTTP side of the auth gate: session cookie handling and the practice lead middleware
// ABOUTME: Reads the session_token cookie and adds the verified lead to the request context

package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// SessionCookieName is the name of the session cookie.
const SessionCookieName = "session_token"

// CookieOptions controls the optional hardening attributes of the session
// cookie. The zero value sets neither Secure nor SameSite.
type CookieOptions struct {
	Secure   bool
	SameSite http.SameSite
}

// ParseSameSite maps a config value to an http.SameSite. Unknown or empty
// values leave the attribute unset.
func ParseSameSite(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return 0
	}
}

// TokenFromRequest returns the session token cookie value, or "".
func TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SetSessionCookie writes the HTTP-only session cookie.
func SetSessionCookie(w http.ResponseWriter, token string, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// RequirePracticeLeadHTTP wraps a handler so it only runs for a practice lead
// session. The lead is available to next via LeadFromContext.
func (g *Gate) RequirePracticeLeadHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lead, err := g.RequirePracticeLead(r.Context(), TokenFromRequest(r))
		if err != nil {
			if errors.Is(err, ErrUnauthorized) {
				writeDetail(w, http.StatusUnauthorized, "Practice lead authentication required.")
				return
			}
			g.logger.Error("session lookup failed", "error", err, "path", r.URL.Path)
			writeDetail(w, http.StatusInternalServerError, "internal server error")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithLead(r.Context(), lead)))
	})
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
