package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraconstructs/taskapi/internal/auth"
	"github.com/terraconstructs/taskapi/internal/db/models"
	"github.com/terraconstructs/taskapi/internal/telemetry"
)

type stubChecker struct {
	principal *auth.Principal
	header    string
}

func (s *stubChecker) Check(_ context.Context, header string) (*auth.Principal, bool) {
	s.header = header
	return s.principal, s.principal != nil
}

type stubResolver struct {
	user *models.User
	err  error
}

func (s *stubResolver) Resolve(_ context.Context, p *auth.Principal) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	p.LocalUserID = s.user.ID
	return s.user, nil
}

func TestRequireAuthentication_Denied(t *testing.T) {
	called := false
	h := RequireAuthentication(AuthnDependencies{
		Checker:  &stubChecker{},
		Resolver: &stubResolver{},
		Logger:   zerolog.Nop(),
	})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), `Bearer realm="taskapi"`)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
}

func TestRequireAuthentication_Admitted(t *testing.T) {
	checker := &stubChecker{principal: &auth.Principal{ExternalSubject: "auth0|1", Method: auth.MethodBearer}}
	user := &models.User{ID: "u-1", Username: "bruce"}

	var gotUser *models.User
	var gotPrincipal *auth.Principal
	h := RequireAuthentication(AuthnDependencies{
		Checker:  checker,
		Resolver: &stubResolver{user: user},
		Logger:   zerolog.Nop(),
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = auth.CurrentUser(r.Context())
		gotPrincipal, _ = auth.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "Bearer tok", checker.header)
	assert.Same(t, user, gotUser)
	require.NotNil(t, gotPrincipal)
	assert.Equal(t, "u-1", gotPrincipal.LocalUserID)
}

func TestRequireAuthentication_ResolverFailure(t *testing.T) {
	h := RequireAuthentication(AuthnDependencies{
		Checker:  &stubChecker{principal: &auth.Principal{ExternalSubject: "auth0|1"}},
		Resolver: &stubResolver{err: errors.New("db down")},
		Logger:   zerolog.Nop(),
	})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	metrics, err := telemetry.NewServerMetrics()
	require.NoError(t, err)

	h := RequestLogger(zerolog.New(&buf), metrics)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("no"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/tasks/1", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "PUT", line["method"])
	assert.Equal(t, float64(http.StatusForbidden), line["status"])
	assert.Equal(t, float64(2), line["bytes"])
}
