// ABOUTME: Tests for the JSON API: login, logout, /me, capability listing and roster changes
// ABOUTME: Covers auth-before-lookup ordering, conflict responses and registry immutability on failure

package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/capability-hub/internal/auth"
	"github.com/2389/capability-hub/internal/registry"
)

func TestLogin_Success(t *testing.T) {
	env := newDefaultEnv(t)

	rec := env.do(t, http.MethodPost, "/login", nil, func(r *http.Request) {
		r.SetBasicAuth("jane", "s3cret")
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Login successful", body.Message)
	assert.Equal(t, "practice_lead", body.Role)
	assert.Equal(t, "Technology", body.PracticeArea)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.SessionCookieName, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	assert.Equal(t, 1, env.sessionCount(t))
}

func TestLogin_JSONBody(t *testing.T) {
	env := newDefaultEnv(t)

	rec := env.do(t, http.MethodPost, "/login", strings.NewReader(`{"username":"jane","password":"s3cret"}`), func(r *http.Request) {
		r.Header.Set("Content-Type", "application/json")
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.sessionCount(t))
}

func TestLogin_Rejected(t *testing.T) {
	tests := []struct {
		name string
		user string
		pass string
	}{
		{"wrong password", "jane", "wrong"},
		{"unknown user", "nobody", "s3cret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newDefaultEnv(t)

			rec := env.do(t, http.MethodPost, "/login", nil, func(r *http.Request) {
				r.SetBasicAuth(tt.user, tt.pass)
			})
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Invalid username or password.", decodeDetail(t, rec))
			assert.Empty(t, rec.Result().Cookies())
			assert.Equal(t, 0, env.sessionCount(t))
		})
	}
}

func TestLogin_MissingCredentials(t *testing.T) {
	env := newDefaultEnv(t)

	rec := env.do(t, http.MethodPost, "/login", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")
	assert.Equal(t, 0, env.sessionCount(t))
}

func TestLogin_RateLimited(t *testing.T) {
	env := newTestEnv(t, "ratelimit:\n  login_per_minute: 1\n  login_burst: 2\n", registry.DefaultCatalog())

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodPost, "/login", nil, func(r *http.Request) {
			r.SetBasicAuth("jane", "wrong")
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/login", nil, func(r *http.Request) {
		r.SetBasicAuth("jane", "s3cret")
	})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, 0, env.sessionCount(t))
}

func TestLogin_RateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	env := newTestEnv(t, "ratelimit:\n  login_per_minute: 1\n  login_burst: 2\n", registry.DefaultCatalog())

	limited := 0
	for i := 0; i < 6; i++ {
		rec := env.do(t, http.MethodPost, "/login", nil, func(r *http.Request) {
			r.SetBasicAuth("jane", "wrong")
			r.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		})
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 4, limited)
}

func TestLogout_Idempotent(t *testing.T) {
	env := newDefaultEnv(t)
	cookie := env.login(t, "jane", "s3cret")

	first := env.do(t, http.MethodPost, "/logout", nil, withCookie(cookie))
	second := env.do(t, http.MethodPost, "/logout", nil, withCookie(cookie))
	anonymous := env.do(t, http.MethodPost, "/logout", nil, nil)

	for _, rec := range []*httptest.ResponseRecorder{first, second, anonymous} {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Logged out"}`, rec.Body.String())
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, auth.SessionCookieName, cookies[0].Name)
		assert.Less(t, cookies[0].MaxAge, 0)
	}

	assert.Equal(t, 0, env.sessionCount(t))
}

func TestMe(t *testing.T) {
	env := newDefaultEnv(t)

	rec := env.do(t, http.MethodGet, "/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	cookie := env.login(t, "jane", "s3cret")
	rec = env.do(t, http.MethodGet, "/me", nil, withCookie(cookie))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"username":"jane","role":"practice_lead","practice_area":"Technology"}`, rec.Body.String())

	env.do(t, http.MethodPost, "/logout", nil, withCookie(cookie))
	rec = env.do(t, http.MethodGet, "/me", nil, withCookie(cookie))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoot_Redirects(t *testing.T) {
	env := newDefaultEnv(t)

	rec := env.do(t, http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/static/index.html", rec.Header().Get("Location"))
}

func TestRoot_RedirectTargetServesIndex(t *testing.T) {
	env := newDefaultEnv(t)

	rec := env.do(t, http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusFound, rec.Code)

	rec = env.do(t, http.MethodGet, rec.Header().Get("Location"), nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
	assert.Contains(t, rec.Body.String(), "<html")
}

func TestStatic(t *testing.T) {
	env := newDefaultEnv(t)

	rec := env.do(t, http.MethodGet, "/static/index.html", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	rec = env.do(t, http.MethodGet, "/static/app.js", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/static/nope.js", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListCapabilities_FreshProcess(t *testing.T) {
	env := newDefaultEnv(t)

	rec := env.do(t, http.MethodGet, "/capabilities", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	fresh, err := registry.New(registry.DefaultCatalog())
	require.NoError(t, err)
	want, err := json.Marshal(fresh.List())
	require.NoError(t, err)
	assert.JSONEq(t, string(want), rec.Body.String())

	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 9)
}

func TestGetCapability(t *testing.T) {
	env := newDefaultEnv(t)

	rec := env.do(t, http.MethodGet, "/capabilities/UX%2FUI%20Design", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var c map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Equal(t, "User experience design and digital product innovation", c["description"])

	rec = env.do(t, http.MethodGet, "/capabilities/Nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Capability not found", decodeDetail(t, rec))
}

func consultantsOf(t *testing.T, env *testEnv, name string) []string {
	t.Helper()
	c, ok := env.registry.Get(name)
	require.True(t, ok)
	return c.Consultants.Emails()
}

func TestRegister_CloudArchitectureScenario(t *testing.T) {
	env := newDefaultEnv(t)
	cookie := env.login(t, "jane", "s3cret")

	rec := env.do(t, http.MethodPost, "/capabilities/Cloud%20Architecture/register?email=carol@x.com", nil, withCookie(cookie))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Registered carol@x.com for Cloud Architecture"}`, rec.Body.String())
	assert.Equal(t, []string{"alice.smith@slalom.com", "bob.johnson@slalom.com", "carol@x.com"}, consultantsOf(t, env, "Cloud Architecture"))

	rec = env.do(t, http.MethodDelete, "/capabilities/Cloud%20Architecture/unregister?email=dave@x.com", nil, withCookie(cookie))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Consultant is not registered for this capability", decodeDetail(t, rec))
	assert.Equal(t, []string{"alice.smith@slalom.com", "bob.johnson@slalom.com", "carol@x.com"}, consultantsOf(t, env, "Cloud Architecture"))
}

func TestRegister_TwiceConflicts(t *testing.T) {
	env := newDefaultEnv(t)
	cookie := env.login(t, "jane", "s3cret")

	target := "/capabilities/Cybersecurity/register?email=new@x.com"
	first := env.do(t, http.MethodPost, target, nil, withCookie(cookie))
	second := env.do(t, http.MethodPost, target, nil, withCookie(cookie))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusBadRequest, second.Code)
	assert.Equal(t, "Consultant is already registered for this capability", decodeDetail(t, second))
}

func TestUnregister_Success(t *testing.T) {
	env := newDefaultEnv(t)
	cookie := env.login(t, "jane", "s3cret")

	rec := env.do(t, http.MethodDelete, "/capabilities/Agile%20Coaching/unregister?email=henry.king@slalom.com", nil, withCookie(cookie))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Unregistered henry.king@slalom.com from Agile Coaching"}`, rec.Body.String())
	assert.Equal(t, []string{"charlotte.young@slalom.com"}, consultantsOf(t, env, "Agile Coaching"))
}

func TestRegister_EscapedCapabilityName(t *testing.T) {
	env := newDefaultEnv(t)
	cookie := env.login(t, "jane", "s3cret")

	rec := env.do(t, http.MethodPost, "/capabilities/UX%2FUI%20Design/register?email=pat%40x.com", nil, withCookie(cookie))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Registered pat@x.com for UX/UI Design"}`, rec.Body.String())
	assert.Contains(t, consultantsOf(t, env, "UX/UI Design"), "pat@x.com")
}

func TestRosterChange_UnknownCapability(t *testing.T) {
	env := newDefaultEnv(t)
	cookie := env.login(t, "jane", "s3cret")

	rec := env.do(t, http.MethodPost, "/capabilities/Nope/register?email=a@x.com", nil, withCookie(cookie))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Capability not found", decodeDetail(t, rec))

	rec = env.do(t, http.MethodDelete, "/capabilities/Nope/unregister?email=a@x.com", nil, withCookie(cookie))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRosterChange_AuthCheckedBeforeLookup(t *testing.T) {
	env := newDefaultEnv(t)

	rec := env.do(t, http.MethodPost, "/capabilities/Nope/register?email=a@x.com", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Practice lead authentication required.", decodeDetail(t, rec))

	rec = env.do(t, http.MethodDelete, "/capabilities/Nope/unregister?email=a@x.com", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Missing email is also reported only after auth passes.
	rec = env.do(t, http.MethodPost, "/capabilities/Cybersecurity/register", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRosterChange_UnauthorizedLeavesRegistryUnchanged(t *testing.T) {
	env := newDefaultEnv(t)
	consultant := env.login(t, "carl", "consult")
	forged := &http.Cookie{Name: auth.SessionCookieName, Value: "forged-token"}

	before, err := json.Marshal(env.registry.List())
	require.NoError(t, err)

	for name, cookie := range map[string]*http.Cookie{
		"no session":     nil,
		"forged session": forged,
		"non-lead role":  consultant,
	} {
		t.Run(name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/capabilities/Cloud%20Architecture/register?email=x@x.com", nil, withCookie(cookie))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			rec = env.do(t, http.MethodDelete, "/capabilities/Cloud%20Architecture/unregister?email=alice.smith@slalom.com", nil, withCookie(cookie))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}

	after, err := json.Marshal(env.registry.List())
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestRosterChange_MissingEmail(t *testing.T) {
	env := newDefaultEnv(t)
	cookie := env.login(t, "jane", "s3cret")

	rec := env.do(t, http.MethodPost, "/capabilities/Cybersecurity/register", nil, withCookie(cookie))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodDelete, "/capabilities/Cybersecurity/unregister?email=", nil, withCookie(cookie))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRosterChange_WrongMethod(t *testing.T) {
	env := newDefaultEnv(t)

	rec := env.do(t, http.MethodGet, "/capabilities/Cybersecurity/register?email=a@x.com", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
