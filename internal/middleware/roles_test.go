package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/munhub-dev/munhub/internal/types"
	"github.com/stretchr/testify/assert"
)

func rolesRouter(gate gin.HandlerFunc, as types.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/guarded",
		func(ctx *gin.Context) {
			if as != "" {
				ctx.Set(types.ContextUserKey, types.AuthenticatedUser{ID: 1, Role: as})
			}
			ctx.Next()
		},
		gate,
		func(ctx *gin.Context) { ctx.String(http.StatusOK, "ok") },
	)
	return r
}

func TestRequireRoles(t *testing.T) {
	gate := RequireRoles(types.RoleRegistrationAdmin, types.RoleSuperAdmin)

	cases := []struct {
		name string
		role types.Role
		want int
	}{
		{"allowed role passes", types.RoleRegistrationAdmin, http.StatusOK},
		{"other allowed role passes", types.RoleSuperAdmin, http.StatusOK},
		{"delegate is forbidden", types.RoleDelegate, http.StatusForbidden},
		{"unrelated admin is forbidden", types.RoleHospitalityAdmin, http.StatusForbidden},
		{"no inherited access for software admin", types.RoleSoftwareAdmin, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/guarded", nil)

			rolesRouter(gate, tc.role).ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRequireRolesWithoutUser(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)

	rolesRouter(RequireRoles(types.RoleSuperAdmin), "").ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
