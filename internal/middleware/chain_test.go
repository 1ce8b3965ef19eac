package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bux-api/internal/config"
	"bux-api/internal/models"
	"bux-api/internal/pkg/token"
	"bux-api/internal/repository"
	"bux-api/internal/services"
	"bux-api/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testOrigin = "http://localhost:3000"
	testAPIKey = "an0qrr5i9u0q4km27hv2hue3ywx3uu"
)

type chainFixture struct {
	users  repository.UserRepository
	usage  repository.UsageRepository
	quota  services.QuotaService
	auth   services.AuthService
	tokens *token.Manager
	reader *models.User
	admin  *models.User
}

func newChainFixture(t *testing.T, max int, todayCount int) *chainFixture {
	t.Helper()
	gdb := testutil.NewDB(t)
	keys := testutil.RSAKeyPair(t)
	tokens, err := token.NewManager(keys.PrivatePEM, keys.PublicPEM, 0)
	require.NoError(t, err)

	f := &chainFixture{
		users:  repository.NewUserRepository(gdb),
		usage:  repository.NewUsageRepository(gdb),
		tokens: tokens,
	}
	f.quota = services.NewQuotaService(f.users, f.usage, config.NewQuotaConfig(max))
	f.auth = services.NewAuthService(f.users, tokens, 10)

	f.reader = &models.User{
		Name:   "reader",
		Email:  "reader@example.com",
		Hash:   "hash",
		Salt:   "salt",
		Host:   testOrigin,
		APIKey: testAPIKey,
		Usage:  []models.UsageEntry{{Date: models.UsageDate(time.Now()), Count: todayCount}},
	}
	require.NoError(t, f.users.Create(context.Background(), f.reader))

	f.admin = &models.User{
		Name:    "admin",
		Email:   "admin@example.com",
		Hash:    "hash",
		Salt:    "salt",
		IsAdmin: true,
		Host:    testOrigin,
		APIKey:  "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzz",
	}
	require.NoError(t, f.users.Create(context.Background(), f.admin))
	return f
}

func (f *chainFixture) bearer(t *testing.T, user *models.User) string {
	t.Helper()
	issued, err := f.auth.IssueToken(user)
	require.NoError(t, err)
	return "Bearer " + issued.Token
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (f *chainFixture) protected(requiresAuth, admin bool) http.Handler {
	var h http.Handler = http.HandlerFunc(okHandler)
	if admin {
		h = AdminMiddleware()(h)
	}
	h = AuthMiddleware(f.auth, requiresAuth)(h)
	return APIKeyMiddleware(f.quota)(h)
}

func request(origin, apiKey, authorization string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if apiKey != "" {
		req.Header.Set(APIKeyHeader, apiKey)
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestQuotaLayerRejectsMissingOrUnknownKeys(t *testing.T) {
	f := newChainFixture(t, 100, 0)
	h := f.protected(true, false)

	tests := []struct {
		name   string
		origin string
		apiKey string
	}{
		{"no headers", "", ""},
		{"no origin", "", testAPIKey},
		{"no key", testOrigin, ""},
		{"origin mismatch", "http://other.example", testAPIKey},
		{"unknown key", testOrigin, "000000000000000000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, request(tt.origin, tt.apiKey, f.bearer(t, f.reader)))

			assert.Equal(t, http.StatusForbidden, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, map[string]interface{}{"code": float64(403), "message": "Not authorized."}, body["error"])
		})
	}
}

func TestQuotaLayerBoundary(t *testing.T) {
	f := newChainFixture(t, 100, 99)
	h := f.protected(true, false)
	auth := f.bearer(t, f.reader)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, request(testOrigin, testAPIKey, auth))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "100", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, request(testOrigin, testAPIKey, auth))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	body := decode(t, rec)
	assert.Equal(t, map[string]interface{}{"code": float64(429), "message": "Max API calls exceeded."}, body["error"])

	entry, err := f.usage.GetByUserAndDate(context.Background(), f.reader.ID, models.UsageDate(time.Now()))
	require.NoError(t, err)
	assert.Equal(t, 100, entry.Count)
}

func TestAuthLayer(t *testing.T) {
	f := newChainFixture(t, 100, 0)
	h := f.protected(true, false)

	other := testutil.RSAKeyPair(t)
	forger, err := token.NewManager(other.PrivatePEM, other.PublicPEM, 0)
	require.NoError(t, err)
	forged, err := forger.Issue(token.Identity{Subject: f.reader.ID.String()})
	require.NoError(t, err)

	tests := []struct {
		name          string
		authorization string
		wantStatus    int
		wantMsg       string
	}{
		{"missing header", "", http.StatusBadRequest, "Bad request"},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusBadRequest, "Bad request"},
		{"not a jwt", "Bearer abc", http.StatusBadRequest, "Bad request"},
		{"extra parts", "Bearer a.b.c extra", http.StatusBadRequest, "Bad request"},
		{"bad signature", "Bearer " + forged.Token, http.StatusUnauthorized, "You are not authorized"},
		{"garbage token", "Bearer a.b.c", http.StatusUnauthorized, "You are not authorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, request(testOrigin, testAPIKey, tt.authorization))

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantMsg, body["msg"])
		})
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, request(testOrigin, testAPIKey, f.bearer(t, f.reader)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthLayerAttachesIdentities(t *testing.T) {
	f := newChainFixture(t, 100, 0)

	var gotUser, gotClient *models.User
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = services.UserFromContext(r.Context())
		gotClient, _ = services.APIClientFromContext(r.Context())
	})
	h := APIKeyMiddleware(f.quota)(AuthMiddleware(f.auth, true)(inner))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, request(testOrigin, testAPIKey, f.bearer(t, f.admin)))

	require.NotNil(t, gotUser)
	require.NotNil(t, gotClient)
	assert.Equal(t, f.admin.ID, gotUser.ID)
	assert.Equal(t, f.reader.ID, gotClient.ID)
}

func TestAuthLayerDisabled(t *testing.T) {
	f := newChainFixture(t, 100, 0)

	rec := httptest.NewRecorder()
	f.protected(false, false).ServeHTTP(rec, request(testOrigin, testAPIKey, ""))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	f.protected(false, true).ServeHTTP(rec, request(testOrigin, testAPIKey, ""))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminLayer(t *testing.T) {
	f := newChainFixture(t, 100, 0)
	h := f.protected(true, true)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, request(testOrigin, testAPIKey, f.bearer(t, f.reader)))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied.", decode(t, rec)["msg"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, request(testOrigin, testAPIKey, f.bearer(t, f.admin)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminLayerFailsClosedWithoutIdentity(t *testing.T) {
	rec := httptest.NewRecorder()
	AdminMiddleware()(http.HandlerFunc(okHandler)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
