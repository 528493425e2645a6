// ABOUTME: Tests for session cookie helpers and the practice lead HTTP middleware
// ABOUTME: Covers cookie attributes, token extraction, 401 bodies and context propagation

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/capability-hub/internal/credentials"
)

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, TokenFromRequest(req))

	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "abc"})
	assert.Equal(t, "abc", TokenFromRequest(req))
}

func TestSetSessionCookie_Defaults(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "tok", CookieOptions{})

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, SessionCookieName, c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure)
	assert.NotContains(t, rec.Header().Get("Set-Cookie"), "SameSite")
}

func TestSetSessionCookie_Hardened(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "tok", CookieOptions{Secure: true, SameSite: ParseSameSite("Strict")})

	header := rec.Header().Get("Set-Cookie")
	assert.Contains(t, header, "Secure")
	assert.Contains(t, header, "SameSite=Strict")
}

func TestClearSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	ClearSessionCookie(rec, CookieOptions{})

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestParseSameSite(t *testing.T) {
	assert.Equal(t, http.SameSiteLaxMode, ParseSameSite("lax"))
	assert.Equal(t, http.SameSiteStrictMode, ParseSameSite("strict"))
	assert.Equal(t, http.SameSiteNoneMode, ParseSameSite("none"))
	assert.Equal(t, http.SameSite(0), ParseSameSite(""))
	assert.Equal(t, http.SameSite(0), ParseSameSite("bogus"))
}

func TestRequirePracticeLeadHTTP(t *testing.T) {
	g, _ := newTestGate(t)
	ctx := context.Background()

	var seen *credentials.PracticeLead
	handler := g.RequirePracticeLeadHTTP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = LeadFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	leadSession, err := g.Login(ctx, "jane", "s3cret")
	require.NoError(t, err)
	consultantSession, err := g.Login(ctx, "carl", "consult")
	require.NoError(t, err)

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"no cookie", "", http.StatusUnauthorized},
		{"unknown token", "forged", http.StatusUnauthorized},
		{"non-lead role", consultantSession.Token, http.StatusUnauthorized},
		{"practice lead", leadSession.Token, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodPost, "/capabilities/x/register", nil)
			if tt.token != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.token})
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Nil(t, seen)
				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, "Practice lead authentication required.", body["detail"])
				return
			}
			require.NotNil(t, seen)
			assert.Equal(t, "jane", seen.Username)
		})
	}
}

func TestRequirePracticeLeadHTTP_BackendError(t *testing.T) {
	g := NewGate(credentials.NewStore(nil), failingStore{}, nil)
	handler := g.RequirePracticeLeadHTTP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tok"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
