package authz

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/meridian-hr/meridian/internal/shared"
)

func newTestHandler(store *memStore) (*Handler, *Resolver) {
	resolver := NewResolver(store, testLogger())
	guard := NewGuard(resolver, store, testLogger(), nopMetrics{})
	manager := NewManager(store, resolver, nil, testLogger())
	return NewHandler(testLogger(), manager, guard, resolver), resolver
}

func mountTestRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/authz", h.MountRoutes)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, userID, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != "" {
		sess := &shared.Session{}
		sess.SetUser(userID)
		req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestActivatePreviewEndpoint(t *testing.T) {
	store := newMemStore()
	store.assignments[1] = []Assignment{{Role: "superadmin"}}
	h, resolver := newTestHandler(store)
	router := mountTestRouter(h)

	rec, body := doJSON(t, router, http.MethodPost, "/authz/preview", "1", `{"role":"team_lead"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["success"])
	require.Equal(t, RoleTeamLead, resolver.EffectiveRole(context.Background(), 1))
}

func TestActivatePreviewAcceptsSynonym(t *testing.T) {
	store := newMemStore()
	store.assignments[1] = []Assignment{{Role: "superadmin"}}
	h, resolver := newTestHandler(store)
	router := mountTestRouter(h)

	rec, body := doJSON(t, router, http.MethodPost, "/authz/preview", "1", `{"role":"Teamleiter"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["success"])
	require.Equal(t, RoleTeamLead, resolver.EffectiveRole(context.Background(), 1))
}

func TestActivatePreviewUnknownRoleRejected(t *testing.T) {
	store := newMemStore()
	store.assignments[1] = []Assignment{{Role: "superadmin"}}
	h, _ := newTestHandler(store)
	router := mountTestRouter(h)

	rec, body := doJSON(t, router, http.MethodPost, "/authz/preview", "1", `{"role":"auditor"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, false, body["success"])
	require.NotEmpty(t, body["error"])
}

func TestActivatePreviewForbiddenForNonSuperadmin(t *testing.T) {
	store := newMemStore()
	store.assignments[2] = []Assignment{{Role: "admin"}}
	h, _ := newTestHandler(store)
	router := mountTestRouter(h)

	rec, body := doJSON(t, router, http.MethodPost, "/authz/preview", "2", `{"role":"employee"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, false, body["success"])
}

func TestPreviewEndpointValidation(t *testing.T) {
	store := newMemStore()
	store.assignments[1] = []Assignment{{Role: "superadmin"}}
	h, _ := newTestHandler(store)
	router := mountTestRouter(h)

	rec, body := doJSON(t, router, http.MethodPost, "/authz/preview", "1", `{"role":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, false, body["success"])

	rec, _ = doJSON(t, router, http.MethodPost, "/authz/preview", "1", `{invalid`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreviewEndpointRequiresLogin(t *testing.T) {
	store := newMemStore()
	h, _ := newTestHandler(store)
	router := mountTestRouter(h)

	rec, _ := doJSON(t, router, http.MethodPost, "/authz/preview", "", `{"role":"employee"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestImpersonationEndpoints(t *testing.T) {
	store := newMemStore()
	store.assignments[1] = []Assignment{{Role: "superadmin"}}
	h, _ := newTestHandler(store)
	router := mountTestRouter(h)
	tenant := uuid.New()

	rec, body := doJSON(t, router, http.MethodPost, "/authz/impersonation", "1", `{"tenant_id":"`+tenant.String()+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["success"])
	require.True(t, store.impersonations[1].Active)

	rec, body = doJSON(t, router, http.MethodDelete, "/authz/impersonation", "1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["success"])
	require.NotContains(t, store.impersonations, int64(1))
}

func TestImpersonationEndpointRejectsBadTenant(t *testing.T) {
	store := newMemStore()
	store.assignments[1] = []Assignment{{Role: "superadmin"}}
	h, _ := newTestHandler(store)
	router := mountTestRouter(h)

	rec, body := doJSON(t, router, http.MethodPost, "/authz/impersonation", "1", `{"tenant_id":"not-a-uuid"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, false, body["success"])
}

func TestCheckEndpoint(t *testing.T) {
	store := newMemStore()
	store.assignments[7] = []Assignment{{Role: "employee"}}
	h, _ := newTestHandler(store)
	router := mountTestRouter(h)

	rec, body := doJSON(t, router, http.MethodGet, "/authz/check?path=/documents&action=delete", "7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["visible"])
	require.Equal(t, false, body["action_allowed"])

	rec, _ = doJSON(t, router, http.MethodGet, "/authz/check", "7", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEffectiveRoleEndpoint(t *testing.T) {
	store := newMemStore()
	store.assignments[7] = []Assignment{{Role: "hr"}}
	h, _ := newTestHandler(store)
	router := mountTestRouter(h)

	rec, body := doJSON(t, router, http.MethodGet, "/authz/role", "7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "hr_admin", body["role"])
}
