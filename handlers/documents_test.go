package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qualikit/qualikit/backend/go-services/internal/areas"
	docrepo "github.com/qualikit/qualikit/backend/go-services/internal/document/repository"
	"github.com/qualikit/qualikit/backend/go-services/internal/governance"
	tktrepo "github.com/qualikit/qualikit/backend/go-services/internal/ticket/repository"
)

// testActor injects claims the way AuthMiddleware would, keyed off the
// X-Test-Sub header, so handler tests can act as different identities
// without real tokens.
func testActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sub := c.GetHeader("X-Test-Sub"); sub != "" {
			c.Set("claims", map[string]interface{}{"sub": sub})
		}
		c.Next()
	}
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	areaRepo := areas.NewMemoryAreaRepository()
	areaSvc := areas.NewService(areaRepo)
	require.NoError(t, areaSvc.Upsert(context.Background(), &areas.Area{ID: "area-1", Name: "Production", OwnerSub: "owner-1"}))

	isAdmin := func(ctx context.Context, sub string) (bool, error) { return sub == "admin-1", nil }
	svc := governance.NewService(docrepo.NewMemoryRepo(), tktrepo.NewMemoryRepo(), areaSvc, isAdmin, nil)

	g := gin.New()
	api := g.Group("/api/v1", testActor())
	NewDocumentHandler(svc).Register(api)
	NewTicketHandler(svc, nil).Register(api)
	NewAreaHandler(areaSvc).Register(api)
	return g
}

func doJSON(t *testing.T, g *gin.Engine, method, path, sub, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sub != "" {
		req.Header.Set("X-Test-Sub", sub)
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func createTestDocument(t *testing.T, g *gin.Engine) string {
	t.Helper()
	body := `{"code":"SOP-001","name":"Cleaning SOP","version":"1.0","mode":"editor","content":"wash hands","reviewerSub":"rev-1","approverSub":"app-1"}`
	w := doJSON(t, g, http.MethodPost, "/api/v1/documents", "creator-1", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var d map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	id, ok := d["id"].(string)
	require.True(t, ok)
	return id
}

func TestDocumentLifecycleOverHTTP(t *testing.T) {
	g := newTestRouter(t)
	id := createTestDocument(t, g)

	// GET
	w := doJSON(t, g, http.MethodGet, "/api/v1/documents/"+id, "creator-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var d map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, "draft", d["state"])

	// creator submits for review
	w = doJSON(t, g, http.MethodPost, "/api/v1/documents/"+id+"/transition", "creator-1", `{"target":"in_review"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// reviewer forwards to approval
	w = doJSON(t, g, http.MethodPost, "/api/v1/documents/"+id+"/transition", "rev-1", `{"target":"pending_approval"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// approver publishes
	w = doJSON(t, g, http.MethodPost, "/api/v1/documents/"+id+"/transition", "app-1", `{"target":"approved"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, "approved", d["state"])

	// list contains the document
	w = doJSON(t, g, http.MethodGet, "/api/v1/documents", "creator-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id)
}

func TestTransitionStatusMapping(t *testing.T) {
	g := newTestRouter(t)
	id := createTestDocument(t, g)

	// skipping a stage is unprocessable
	w := doJSON(t, g, http.MethodPost, "/api/v1/documents/"+id+"/transition", "creator-1", `{"target":"approved"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// a stranger cannot submit
	w = doJSON(t, g, http.MethodPost, "/api/v1/documents/"+id+"/transition", "stranger", `{"target":"in_review"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// unknown document is 404
	w = doJSON(t, g, http.MethodPost, "/api/v1/documents/nope/transition", "creator-1", `{"target":"in_review"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestObsoleteRequiresAdminOverHTTP(t *testing.T) {
	g := newTestRouter(t)
	id := createTestDocument(t, g)
	for _, step := range []struct{ sub, target string }{
		{"creator-1", "in_review"},
		{"rev-1", "pending_approval"},
		{"app-1", "approved"},
	} {
		w := doJSON(t, g, http.MethodPost, fmt.Sprintf("/api/v1/documents/%s/transition", id), step.sub, fmt.Sprintf(`{"target":%q}`, step.target))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := doJSON(t, g, http.MethodPost, "/api/v1/documents/"+id+"/transition", "app-1", `{"target":"obsolete"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, g, http.MethodPost, "/api/v1/documents/"+id+"/transition", "admin-1", `{"target":"obsolete"}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestPatchDocument(t *testing.T) {
	g := newTestRouter(t)
	id := createTestDocument(t, g)

	// creator edits content while in draft
	w := doJSON(t, g, http.MethodPatch, "/api/v1/documents/"+id, "creator-1", `{"content":"wash hands twice","visibility":"public"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var d map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, "wash hands twice", d["content"])
	assert.Equal(t, "public", d["visibility"])

	// a non-creator cannot edit
	w = doJSON(t, g, http.MethodPatch, "/api/v1/documents/"+id, "rev-1", `{"content":"oops"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// invalid visibility is rejected before it reaches the facade
	w = doJSON(t, g, http.MethodPatch, "/api/v1/documents/"+id, "creator-1", `{"visibility":"secret"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateDocumentValidation(t *testing.T) {
	g := newTestRouter(t)

	// missing required fields
	w := doJSON(t, g, http.MethodPost, "/api/v1/documents", "creator-1", `{"name":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// editor mode with a file key is contradictory
	w = doJSON(t, g, http.MethodPost, "/api/v1/documents", "creator-1", `{"code":"SOP-002","name":"x","version":"1.0","mode":"editor","content":"c","fileKey":"k"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
