package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
)

func newAuthRouter(tokens *service.TokenService, allowed ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/professors/:id/timetable", JWT(tokens), RBAC(allowed...), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func bearer(t *testing.T, tokens *service.TokenService, userID string, role models.UserRole) string {
	t.Helper()
	issued, err := tokens.Issue(userID, role, "", "")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + issued.AccessToken
}

func TestJWTAndRBAC(t *testing.T) {
	tokens := service.NewTokenService(service.TokenConfig{Secret: "secret"})
	router := newAuthRouter(tokens, string(models.RoleAdmin), SelfAccess)

	cases := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{name: "missing header", path: "/professors/P1/timetable", want: http.StatusUnauthorized},
		{name: "malformed header", path: "/professors/P1/timetable", header: "Token abc", want: http.StatusUnauthorized},
		{name: "empty bearer", path: "/professors/P1/timetable", header: "Bearer ", want: http.StatusUnauthorized},
		{name: "bad token", path: "/professors/P1/timetable", header: "Bearer abc", want: http.StatusUnauthorized},
		{name: "admin", path: "/professors/P1/timetable", header: bearer(t, tokens, "A1", models.RoleAdmin), want: http.StatusNoContent},
		{name: "superadmin", path: "/professors/P1/timetable", header: bearer(t, tokens, "S1", models.RoleSuperAdmin), want: http.StatusNoContent},
		{name: "self", path: "/professors/P1/timetable", header: bearer(t, tokens, "P1", models.RoleProfessor), want: http.StatusNoContent},
		{name: "other professor", path: "/professors/P1/timetable", header: bearer(t, tokens, "P2", models.RoleProfessor), want: http.StatusForbidden},
		{name: "student", path: "/professors/P1/timetable", header: bearer(t, tokens, "ST1", models.RoleStudent), want: http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			router.ServeHTTP(recorder, req)
			if recorder.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, recorder.Code)
			}
		})
	}
}

func TestResponseMetaCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	if ExtractMeta(c) != nil {
		t.Fatalf("expected no meta before middleware")
	}
	SetCacheHit(c, true)
	meta := ExtractMeta(c)
	if meta == nil || meta["cache_hit"] != true {
		t.Fatalf("unexpected meta: %v", meta)
	}
	if got := recorder.Header().Get(CacheStatusHeader); got != "HIT" {
		t.Fatalf("expected HIT header, got %q", got)
	}
}

func TestMetricsSkipsHealthChecksAndLabelsUnmatched(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics))
	router.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/published/:year/:group", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/metrics", "/published/Y1/G1", "/published/Y1/G2", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := metrics.Snapshot().RequestsTotal; got != 3 {
		t.Fatalf("expected 3 observed requests, got %d", got)
	}
}
