package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qualikit/qualikit/backend/go-services/internal/config"
	"github.com/qualikit/qualikit/backend/go-services/internal/models"
	"github.com/qualikit/qualikit/backend/go-services/internal/sessions"
	"github.com/qualikit/qualikit/backend/go-services/internal/users"
)

// fake user repo
type fakeUserRepo struct{}

func (f *fakeUserRepo) UpsertBySub(ctx context.Context, u *models.User) (*models.User, error) {
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	return u, nil
}

func (f *fakeUserRepo) GetBySub(ctx context.Context, sub string) (*models.User, error) {
	return &models.User{Sub: sub, Email: "a@b.c", Name: "Alice"}, nil
}

// fake sessions repo
type fakeSessionsRepo struct {
	store map[string]*sessions.Session
}

func (f *fakeSessionsRepo) Create(ctx context.Context, s *sessions.Session) error {
	if f.store == nil {
		f.store = map[string]*sessions.Session{}
	}
	f.store[s.RefreshToken] = s
	return nil
}
func (f *fakeSessionsRepo) GetByRefresh(ctx context.Context, refresh string) (*sessions.Session, error) {
	s, ok := f.store[refresh]
	if !ok {
		return nil, nil
	}
	return s, nil
}
func (f *fakeSessionsRepo) DeleteByRefresh(ctx context.Context, refresh string) error {
	delete(f.store, refresh)
	return nil
}

func newAuthTestRouter(cfg *config.Config) *gin.Engine {
	uSvc := users.NewService(&fakeUserRepo{})
	sSvc := sessions.NewService(&fakeSessionsRepo{})
	h := NewAuthHandler(cfg, uSvc, sSvc)
	r := gin.New()
	h.Register(r.Group("/"))
	return r
}

func TestLoginAuthCodeSuccess(t *testing.T) {
	// craft an id_token with payload claims
	claims := map[string]interface{}{"sub": "test-sub", "email": "a@b.c", "name": "Alice"}
	b, _ := json.Marshal(claims)
	payload := base64.RawURLEncoding.EncodeToString(b)
	idToken := "hdr." + payload + ".sig"

	// token server
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "at", "id_token": idToken})
	}))
	defer tokenSrv.Close()

	cfg := &config.Config{}
	cfg.Keycloak.URL = tokenSrv.URL
	cfg.Keycloak.Realm = "realm"
	cfg.Keycloak.ClientID = "cid"
	cfg.Keycloak.ClientSecret = "csecret"
	cfg.JWT.Secret = "auth-test-secret-32-bytes-xxxxxx"

	// enable insecure token parsing
	_ = os.Setenv("ALLOW_INSECURE_TOKEN", "true")
	defer os.Unsetenv("ALLOW_INSECURE_TOKEN")

	r := newAuthTestRouter(cfg)
	reqBody := `{"mode":"auth_code","code":"abc","redirect_uri":"http://localhost/cb"}`
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.NotEmpty(t, got["access_token"])
	assert.NotEmpty(t, got["refresh_token"])
}

func TestLoginRejectsUnknownMode(t *testing.T) {
	r := newAuthTestRouter(&config.Config{})
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"mode":"magic"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefreshRoundtrip(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "auth-test-secret-32-bytes-xxxxxx"
	cfg.JWT.AccessTokenTTL = time.Minute

	uSvc := users.NewService(&fakeUserRepo{})
	repo := &fakeSessionsRepo{}
	sSvc := sessions.NewService(repo)
	h := NewAuthHandler(cfg, uSvc, sSvc)
	r := gin.New()
	h.Register(r.Group("/"))

	rft, err := sSvc.CreateSession(context.Background(), "test-sub", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/auth/refresh", strings.NewReader(`{"refresh_token":"`+rft+`"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.NotEmpty(t, got["access_token"])

	// unknown refresh token is rejected
	req = httptest.NewRequest("POST", "/auth/refresh", strings.NewReader(`{"refresh_token":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutRemovesSession(t *testing.T) {
	cfg := &config.Config{}
	uSvc := users.NewService(&fakeUserRepo{})
	repo := &fakeSessionsRepo{}
	sSvc := sessions.NewService(repo)
	h := NewAuthHandler(cfg, uSvc, sSvc)
	r := gin.New()
	h.Register(r.Group("/"))

	rft, err := sSvc.CreateSession(context.Background(), "test-sub", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/auth/logout", strings.NewReader(`{"refresh_token":"`+rft+`"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	_, ok := repo.store[rft]
	assert.False(t, ok)
}

func TestRequestAuthCodeToken_Error(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(400)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Code not valid"}`))
	}))
	defer tokenSrv.Close()

	_, err := requestAuthCodeToken(context.Background(), tokenSrv.URL, "qualikit", "cid", "csecret", "bad", "http://cb")
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "token endpoint returned 400")
	}
}

func TestParseExpFromJWT(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	b, _ := json.Marshal(map[string]interface{}{"exp": exp})
	tok := "hdr." + base64.RawURLEncoding.EncodeToString(b) + ".sig"
	got, err := parseExpFromJWT(tok)
	require.NoError(t, err)
	assert.Equal(t, exp, got.Unix())

	_, err = parseExpFromJWT("garbage")
	assert.Error(t, err)
}
