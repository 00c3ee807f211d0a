package middleware

import (
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/uniconsult/internal/app/models"
	"github.com/yigit/uniconsult/internal/app/models/dto"
)

// Guarded page prefixes and the role each requires. An empty role admits any signed in user.
var pagePrefixes = []struct {
	prefix string
	role   models.RoleType
}{
	{"/dashboard", ""},
	{"/student", models.RoleStudent},
	{"/faculty", models.RoleFaculty},
	{"/admin", models.RoleAdmin},
}

// Entry pages bounce signed in users to the dashboard
var entryPages = map[string]bool{"/": true, "/login": true, "/register": true}

func underPrefix(p, prefix string) bool {
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

// pageRole reports whether p is a guarded page and which role it needs
func pageRole(p string) (models.RoleType, bool) {
	for _, g := range pagePrefixes {
		if underPrefix(p, g.prefix) {
			return g.role, true
		}
	}
	return "", false
}

func needsIdentity(p string) bool {
	_, gated := pageRole(p)
	return gated || entryPages[p]
}

// Decide returns where a page request for p must be redirected, given the
// caller's verified role (nil when unauthenticated). An empty result lets it through.
func Decide(p string, role *models.RoleType) string {
	p = path.Clean("/" + p)
	required, gated := pageRole(p)

	switch {
	case role == nil && gated:
		return "/login?redirect=" + url.QueryEscape(p)
	case role == nil:
		return ""
	case gated && required != "" && *role != required:
		return "/dashboard?error=unauthorized"
	case entryPages[p]:
		return "/dashboard"
	}
	return ""
}

func isBackendPath(p string) bool {
	for _, prefix := range []string{"/api", "/swagger", "/metrics", "/health"} {
		if underPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// PageGuard redirects page requests according to Decide. API routes are left
// to JWTAuth and RoleRequired.
func (m *AuthMiddleware) PageGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if c.Request.Method != http.MethodGet || isBackendPath(p) || !needsIdentity(path.Clean(p)) {
			c.Next()
			return
		}

		var role *models.RoleType
		session, err := m.Resolve(c)
		switch {
		case err == nil:
			r := session.User.RoleType
			role = &r
		case !isAuthFailure(err):
			m.logger.Warn().Err(err).Str("path", p).Msg("Page session check failed")
		}

		if target := Decide(p, role); target != "" {
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

// StaticPages serves the frontend bundle in webRoot for unmatched routes,
// falling back to index.html. Unknown API paths get a JSON 404.
func StaticPages(webRoot string, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if webRoot == "" || isBackendPath(p) || c.Request.Method != http.MethodGet {
			c.JSON(http.StatusNotFound, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Route not found")))
			return
		}

		file := filepath.Join(webRoot, filepath.FromSlash(path.Clean("/"+p)))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}

		index := filepath.Join(webRoot, "index.html")
		if _, err := os.Stat(index); err != nil {
			logger.Debug().Str("path", p).Msg("No frontend bundle for page")
			c.JSON(http.StatusNotFound, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Page not found")))
			return
		}
		c.File(index)
	}
}
