package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/newsroom-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var admin = models.Identity{UserID: "u-1", Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin}

func TestIssueAndParse(t *testing.T) {
	m := NewManager("secret", time.Hour)

	token, expiresAt, err := m.Issue(admin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	id, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, admin, *id)
}

func TestParse_Rejects(t *testing.T) {
	m := NewManager("secret", time.Hour)
	other := NewManager("other-secret", time.Hour)

	foreign, _, err := other.Issue(admin)
	require.NoError(t, err)

	expired := NewManager("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	stale, _, err := expired.Issue(admin)
	require.NoError(t, err)

	badRole := models.Identity{UserID: "u-2", Email: "x@example.com", Role: "ROOT"}
	roleToken, _, err := m.Issue(badRole)
	require.NoError(t, err)

	none := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, Claims{UserID: "u-1", Role: models.RoleAdmin})
	unsigned, err := none.SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"expired":      stale,
		"unknown role": roleToken,
		"alg none":     unsigned,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Parse(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func newRouter(m *Manager, handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Identify(m, ""))
	all := append(handlers, func(c *gin.Context) {
		id := IdentityFrom(c)
		if id == nil {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id.UserID})
	})
	r.GET("/", all...)
	return r
}

func TestIdentify(t *testing.T) {
	m := NewManager("secret", time.Hour)
	token, _, err := m.Issue(admin)
	require.NoError(t, err)
	r := newRouter(m)

	tests := []struct {
		name  string
		setup func(req *http.Request)
		want  string
	}{
		{"no token", func(req *http.Request) {}, `{"anonymous":true}`},
		{"bearer", func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) }, `{"id":"u-1"}`},
		{"cookie", func(req *http.Request) { req.AddCookie(&http.Cookie{Name: DefaultCookie, Value: token}) }, `{"id":"u-1"}`},
		{"invalid bearer", func(req *http.Request) { req.Header.Set("Authorization", "Bearer nope") }, `{"anonymous":true}`},
		{"basic scheme", func(req *http.Request) { req.Header.Set("Authorization", "Basic "+token) }, `{"anonymous":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	m := NewManager("secret", time.Hour)
	adminToken, _, err := m.Issue(admin)
	require.NoError(t, err)
	userToken, _, err := m.Issue(models.Identity{UserID: "u-2", Email: "u@example.com", Role: models.RoleUser})
	require.NoError(t, err)

	r := newRouter(m, RequireAdmin())

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"user", userToken, http.StatusForbidden},
		{"admin", adminToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
