package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eventops-platform/internal/admin"
	"eventops-platform/internal/auth"
	"eventops-platform/internal/config"
	"eventops-platform/internal/grant"
	"eventops-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

// identity injects an authenticated subject the way the auth middleware would.
func identity(subject, email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), subject, email))
		c.Next()
	}
}

func newGrantRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := grant.NewService(grant.NewMemoryRepo(), config.GrantConfig{TTL: 10 * time.Minute, MaxFileNameLen: 128})
	h := Handlers{Grants: svc}

	r := gin.New()
	r.POST("/v1/uploads/grants", identity("s1", "s1@example.com"), h.IssueUploadGrant)
	r.POST("/v1/uploads/grants/anon", h.IssueUploadGrant)
	return r
}

func postJSON(r http.Handler, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIssueUploadGrantOK(t *testing.T) {
	r := newGrantRouter(t)
	before := time.Now()

	w := postJSON(r, "/v1/uploads/grants", grant.IssueRequest{
		EventID:     "e1",
		IncidentID:  "i1",
		FileName:    "photo.jpg",
		ContentType: "image/jpeg",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		GrantID              string `json:"grant_id"`
		TargetPath           string `json:"target_path"`
		ExpiresAtEpochMillis int64  `json:"expires_at_epoch_millis"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.GrantID == "" {
		t.Fatal("empty grant id")
	}
	if !strings.HasPrefix(resp.TargetPath, "events/e1/incidents/i1/") {
		t.Fatalf("target path = %q", resp.TargetPath)
	}
	lo := before.Add(10 * time.Minute).UnixMilli()
	hi := time.Now().Add(10 * time.Minute).UnixMilli()
	if resp.ExpiresAtEpochMillis < lo || resp.ExpiresAtEpochMillis > hi {
		t.Fatalf("expires_at_epoch_millis = %d, want within [%d, %d]", resp.ExpiresAtEpochMillis, lo, hi)
	}
}

func TestIssueUploadGrantRejectsNonImage(t *testing.T) {
	r := newGrantRouter(t)

	w := postJSON(r, "/v1/uploads/grants", grant.IssueRequest{
		EventID:     "e1",
		IncidentID:  "i1",
		FileName:    "doc.pdf",
		ContentType: "application/pdf",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestIssueUploadGrantUnauthenticated(t *testing.T) {
	r := newGrantRouter(t)

	w := postJSON(r, "/v1/uploads/grants/anon", grant.IssueRequest{
		EventID:     "e1",
		IncidentID:  "i1",
		FileName:    "photo.jpg",
		ContentType: "image/jpeg",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestIssueUploadGrantDistinctPerCall(t *testing.T) {
	r := newGrantRouter(t)

	req := grant.IssueRequest{EventID: "e1", IncidentID: "i1", FileName: "p.png", ContentType: "image/png"}
	w1 := postJSON(r, "/v1/uploads/grants", req)
	w2 := postJSON(r, "/v1/uploads/grants", req)
	if w1.Code != http.StatusOK || w2.Code != http.StatusOK {
		t.Fatalf("statuses = %d, %d", w1.Code, w2.Code)
	}
	var a, b struct {
		GrantID    string `json:"grant_id"`
		TargetPath string `json:"target_path"`
	}
	_ = json.Unmarshal(w1.Body.Bytes(), &a)
	_ = json.Unmarshal(w2.Body.Bytes(), &b)
	if a.GrantID == b.GrantID || a.TargetPath == b.TargetPath {
		t.Fatalf("identical issuance: %q vs %q", a.TargetPath, b.TargetPath)
	}
}

func TestSetAccountRoleEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	store := rbac.NewMemoryStore()
	if err := store.UpsertAccountRole(ctx, "root", rbac.AccountRoleAdmin); err != nil {
		t.Fatal(err)
	}
	res := rbac.NewResolver(store, store, store)
	svc := admin.NewService(store, res, rbac.NewEngine(), nil)
	h := Handlers{Admin: svc}

	r := gin.New()
	r.POST("/v1/admin/roles", identity("root", "root@example.com"), h.SetAccountRole)
	r.POST("/v1/admin/roles/anon", identity("nobody", "n@example.com"), h.SetAccountRole)

	w := postJSON(r, "/v1/admin/roles", setAccountRoleRequest{SubjectID: "s2", Role: "support"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if got, err := store.AccountRole(ctx, "s2"); err != nil || got != rbac.AccountRoleSupport {
		t.Fatalf("stored role = %q, err %v", got, err)
	}

	w = postJSON(r, "/v1/admin/roles", setAccountRoleRequest{SubjectID: "s3", Role: "warlord"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown role status = %d", w.Code)
	}

	w = postJSON(r, "/v1/admin/roles/anon", setAccountRoleRequest{SubjectID: "s4", Role: "support"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-admin status = %d", w.Code)
	}
}
