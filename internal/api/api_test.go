package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/newsroom-api/internal/api"
	"github.com/newsroom-api/internal/auth"
	"github.com/newsroom-api/internal/config"
	"github.com/newsroom-api/internal/mocks"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/service"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	router   *gin.Engine
	services *service.Services
	store    *mocks.Store
	audit    *mocks.MockAuditLog
	images   *mocks.MemoryImageStore
	tokens   *auth.Manager
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repos, store := mocks.NewRepositories()
	audit := mocks.NewMockAuditLog()
	images := mocks.NewMemoryImageStore()

	cfg := config.Defaults()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Uploads.Dir = t.TempDir()

	services := service.NewServices(repos, service.Infra{
		Audit:  audit,
		Cache:  mocks.NewMemoryCache(),
		Images: images,
	}, cfg, zerolog.Nop())

	tokens := auth.NewManager(cfg.Auth.JWTSecret, time.Hour)
	router := api.NewRouter(services, tokens, cfg, zerolog.Nop())

	return &testServer{router: router, services: services, store: store, audit: audit, images: images, tokens: tokens}
}

// addUser stores a user with the given password and returns a bearer token for it
func (s *testServer) addUser(t *testing.T, role models.Role, email, password string) (*models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	name := "Test " + string(role)
	user := &models.User{ID: uuid.NewString(), Email: email, Name: &name, PasswordHash: string(hash), Role: role}
	s.store.Users[user.ID] = user

	token, _, err := s.tokens.Issue(models.Identity{UserID: user.ID, Name: name, Email: email, Role: role})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return user, token
}

func (s *testServer) addCategory(name, slug string) *models.Category {
	c := &models.Category{ID: uuid.NewString(), Name: name, Slug: slug, CreatedAt: time.Now()}
	s.store.Categories[c.ID] = c
	return c
}

func (s *testServer) addArticle(title, categoryID, authorID string) *models.Article {
	a := &models.Article{
		ID: uuid.NewString(), Title: title, Published: true, CategoryID: categoryID, AuthorID: authorID,
		Content:   `[{"type":"paragraph","content":[{"type":"text","text":"Body of ` + title + `"}]}]`,
		CreatedAt: time.Now(),
	}
	s.store.Articles[a.ID] = a
	return a
}

func (s *testServer) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) doJSON(method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewReader(data)
	}
	return s.do(method, path, token, body, "application/json")
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return response
}

func TestHealthEndpoint(t *testing.T) {
	s := setupTestServer(t)

	w := s.do("GET", "/health", "", nil, "")

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	response := decode(t, w)
	if response["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", response["status"])
	}
	if response["service"] != "newsroom-api" {
		t.Errorf("Expected service name, got %v", response["service"])
	}
}

func TestHealthEndpoint_FailingDependency(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repos, _ := mocks.NewRepositories()
	cfg := config.Defaults()
	cfg.Uploads.Dir = t.TempDir()
	services := service.NewServices(repos, service.Infra{Audit: mocks.NewMockAuditLog()}, cfg, zerolog.Nop())

	router := api.NewRouter(services, auth.NewManager("s", time.Hour), cfg, zerolog.Nop(),
		api.HealthCheck{Name: "database", Check: func(context.Context) error { return nil }},
		api.HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }},
	)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
	response := decode(t, w)
	components := response["components"].(map[string]interface{})
	if components["database"] != "ok" || components["redis"] != "connection refused" {
		t.Errorf("Unexpected components: %v", components)
	}
}

func TestLoginAndMe(t *testing.T) {
	s := setupTestServer(t)
	s.addUser(t, models.RoleAdmin, "admin@example.com", "password123")

	w := s.doJSON("POST", "/v1/auth/login", "", map[string]string{"email": "admin@example.com", "password": "password123"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	response := decode(t, w)
	token, _ := response["token"].(string)
	if token == "" {
		t.Fatal("Expected a token in the login response")
	}
	if response["expires_at"] == nil {
		t.Error("Expected expires_at in the login response")
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), "token=") {
		t.Errorf("Expected session cookie, got %q", w.Header().Get("Set-Cookie"))
	}

	w = s.do("GET", "/v1/auth/me", token, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	user := decode(t, w)["user"].(map[string]interface{})
	if user["email"] != "admin@example.com" || user["role"] != "ADMIN" {
		t.Errorf("Unexpected identity: %v", user)
	}
}

func TestMe_Cookie(t *testing.T) {
	s := setupTestServer(t)
	_, token := s.addUser(t, models.RoleUser, "reader@example.com", "pw")

	req := httptest.NewRequest("GET", "/v1/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 with cookie session, got %d", w.Code)
	}

	w = s.do("GET", "/v1/auth/me", "", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 when anonymous, got %d", w.Code)
	}
}

func TestLogin_Rejected(t *testing.T) {
	s := setupTestServer(t)
	s.addUser(t, models.RoleUser, "reader@example.com", "right")

	tests := []struct {
		name    string
		payload interface{}
		status  int
		message string
	}{
		{"wrong password", map[string]string{"email": "reader@example.com", "password": "wrong"}, http.StatusUnauthorized, "Invalid credentials"},
		{"unknown user", map[string]string{"email": "ghost@example.com", "password": "right"}, http.StatusUnauthorized, "Invalid credentials"},
		{"missing password", map[string]string{"email": "reader@example.com"}, http.StatusBadRequest, "Email and password are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.doJSON("POST", "/v1/auth/login", "", tt.payload)
			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
			if msg := decode(t, w)["error"]; msg != tt.message {
				t.Errorf("Expected error %q, got %v", tt.message, msg)
			}
		})
	}
}

func TestDashboard_RequiresAdmin(t *testing.T) {
	s := setupTestServer(t)
	_, userToken := s.addUser(t, models.RoleUser, "reader@example.com", "pw")
	_, adminToken := s.addUser(t, models.RoleAdmin, "admin@example.com", "pw")

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"invalid token", "not-a-token", http.StatusUnauthorized},
		{"user", userToken, http.StatusForbidden},
		{"admin", adminToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, path := range []string{"/v1/dashboard/stats", "/v1/dashboard/users", "/v1/dashboard/logs"} {
				w := s.do("GET", path, tt.token, nil, "")
				if w.Code != tt.status {
					t.Errorf("%s: expected status %d, got %d", path, tt.status, w.Code)
				}
			}
		})
	}
}

func TestDashboardStats(t *testing.T) {
	s := setupTestServer(t)
	_, adminToken := s.addUser(t, models.RoleAdmin, "admin@example.com", "pw")
	analytics := &mocks.MockAnalyticsService{Stats: &models.DashboardStats{
		Stats:        models.StatsSummary{TotalArticles: 42, ArticlesChange: 12.5},
		MonthlyViews: []models.MonthlyPoint{{Month: "Mar 2026", Views: 7, Articles: 2}},
	}}
	s.services.Analytics = analytics

	w := s.do("GET", "/v1/dashboard/stats", adminToken, nil, "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if analytics.Calls != 1 {
		t.Errorf("Expected 1 stats computation, got %d", analytics.Calls)
	}
	stats := decode(t, w)["stats"].(map[string]interface{})
	if stats["totalArticles"].(float64) != 42 || stats["articlesChange"].(float64) != 12.5 {
		t.Errorf("Unexpected stats: %v", stats)
	}
}

func TestCreateNews_Multipart(t *testing.T) {
	s := setupTestServer(t)
	_, adminToken := s.addUser(t, models.RoleAdmin, "admin@example.com", "pw")
	cat := s.addCategory("Technology", "technology")

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.WriteField("title", "Launch")
	writer.WriteField("content", `[{"type":"paragraph","content":[{"type":"text","text":"Hi"}]}]`)
	writer.WriteField("categoryId", cat.ID)
	part, _ := writer.CreateFormFile("file", "my photo.png")
	part.Write([]byte("png-bytes"))
	writer.Close()

	w := s.do("POST", "/v1/dashboard/news", adminToken, body, writer.FormDataContentType())

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	response := decode(t, w)
	if response["success"] != true {
		t.Errorf("Expected success, got %v", response["success"])
	}
	news := response["news"].(map[string]interface{})
	image, _ := news["image"].(string)
	if !strings.HasPrefix(image, "/uploads/") || !strings.HasSuffix(image, "-myphoto.png") {
		t.Errorf("Unexpected image URL %q", image)
	}
	if len(s.images.Files) != 1 {
		t.Errorf("Expected 1 stored image, got %d", len(s.images.Files))
	}
	if !s.audit.HasMessage("News created: Launch") {
		t.Error("Expected an audit record for the new article")
	}
}

func TestCreateNews_Validation(t *testing.T) {
	s := setupTestServer(t)
	_, adminToken := s.addUser(t, models.RoleAdmin, "admin@example.com", "pw")

	w := s.doJSON("POST", "/v1/dashboard/news", adminToken, map[string]string{"title": "No body"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
	response := decode(t, w)
	if response["error"] != "Missing required fields" {
		t.Errorf("Unexpected error %v", response["error"])
	}
	if _, ok := response["details"]; !ok {
		t.Error("Expected field details")
	}
}

func TestNewsCRUD(t *testing.T) {
	s := setupTestServer(t)
	admin, adminToken := s.addUser(t, models.RoleAdmin, "admin@example.com", "pw")
	cat := s.addCategory("Technology", "technology")
	article := s.addArticle("Original", cat.ID, admin.ID)

	w := s.doJSON("PUT", "/v1/dashboard/news/"+article.ID, adminToken, map[string]string{
		"title": "Edited", "content": article.Content, "categoryId": cat.ID,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if s.store.Articles[article.ID].Title != "Edited" {
		t.Errorf("Expected title to be updated, got %s", s.store.Articles[article.ID].Title)
	}

	w = s.do("GET", "/v1/dashboard/news/"+article.ID, adminToken, nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	w = s.do("DELETE", "/v1/dashboard/news/"+article.ID, adminToken, nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	w = s.do("GET", "/v1/dashboard/news/"+article.ID, adminToken, nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after delete, got %d", w.Code)
	}
}

func TestSearchAndViewNews(t *testing.T) {
	s := setupTestServer(t)
	admin, _ := s.addUser(t, models.RoleAdmin, "admin@example.com", "pw")
	tech := s.addCategory("Technology", "technology")
	sports := s.addCategory("Sports", "sports")
	article := s.addArticle("Chips", tech.ID, admin.ID)
	s.addArticle("Derby", sports.ID, admin.ID)

	w := s.do("GET", "/v1/news?category=technology", "", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	response := decode(t, w)
	if response["total"].(float64) != 1 || response["limit"].(float64) != 9 {
		t.Errorf("Unexpected page: total=%v limit=%v", response["total"], response["limit"])
	}

	w = s.do("GET", "/v1/news/"+article.ID, "", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	view := decode(t, w)
	if view["text"] != "Body of Chips" || view["views"].(float64) != 1 {
		t.Errorf("Unexpected view: text=%v views=%v", view["text"], view["views"])
	}

	w = s.do("GET", "/v1/news/"+uuid.NewString(), "", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestComments(t *testing.T) {
	s := setupTestServer(t)
	author, authorToken := s.addUser(t, models.RoleUser, "author@example.com", "pw")
	_, otherToken := s.addUser(t, models.RoleUser, "other@example.com", "pw")
	cat := s.addCategory("Technology", "technology")
	article := s.addArticle("Chips", cat.ID, author.ID)
	path := "/v1/news/" + article.ID + "/comments"

	w := s.doJSON("POST", path, "", map[string]string{"content": "hi"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
	if msg := decode(t, w)["error"]; msg != "You must be logged in to comment" {
		t.Errorf("Unexpected error %v", msg)
	}

	w = s.doJSON("POST", path, authorToken, map[string]string{"content": "   "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for blank comment, got %d", w.Code)
	}

	w = s.doJSON("POST", path, authorToken, map[string]string{"content": "First!"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	commentID := decode(t, w)["comment"].(map[string]interface{})["id"].(string)

	w = s.doJSON("POST", path, otherToken, map[string]string{"content": "Reply", "parentId": commentID})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201 for reply, got %d", w.Code)
	}

	w = s.do("GET", path, "", nil, "")
	var tree []*models.Comment
	if err := json.Unmarshal(w.Body.Bytes(), &tree); err != nil {
		t.Fatalf("Failed to decode comments: %v", err)
	}
	if len(tree) != 1 || len(tree[0].Replies) != 1 {
		t.Fatalf("Expected one thread with one reply, got %d threads", len(tree))
	}

	w = s.do("DELETE", "/v1/comments/"+commentID, otherToken, nil, "")
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", w.Code)
	}

	w = s.do("DELETE", "/v1/comments/"+commentID, authorToken, nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if len(s.store.Comments) != 0 {
		t.Errorf("Expected replies to be deleted with the parent, %d left", len(s.store.Comments))
	}
}

func TestCommentDelete_InternalError(t *testing.T) {
	s := setupTestServer(t)
	_, token := s.addUser(t, models.RoleUser, "reader@example.com", "pw")
	s.services.Comment = &mocks.MockCommentService{
		DeleteFunc: func(ctx context.Context, actor *models.Identity, id string) error {
			return errors.New("driver: bad connection")
		},
	}

	w := s.do("DELETE", "/v1/comments/"+uuid.NewString(), token, nil, "")

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
	if msg := decode(t, w)["error"]; msg != "Internal server error" {
		t.Errorf("Expected generic message, got %v", msg)
	}
}

func TestCategories(t *testing.T) {
	s := setupTestServer(t)
	_, adminToken := s.addUser(t, models.RoleAdmin, "admin@example.com", "pw")

	w := s.doJSON("POST", "/v1/dashboard/categories", adminToken, map[string]string{"name": "Tech & Business"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	category := decode(t, w)["category"].(map[string]interface{})
	if category["slug"] != "tech-business" {
		t.Errorf("Expected slug tech-business, got %v", category["slug"])
	}

	w = s.doJSON("POST", "/v1/dashboard/categories", adminToken, map[string]string{"name": "Tech & Business"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for duplicate, got %d", w.Code)
	}

	w = s.do("GET", "/v1/categories/tech-business", "", nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected lookup by slug, got %d", w.Code)
	}
	w = s.do("GET", "/v1/categories/"+category["id"].(string), "", nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected lookup by id, got %d", w.Code)
	}
	w = s.do("GET", "/v1/categories/missing", "", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestUsers(t *testing.T) {
	s := setupTestServer(t)
	admin, adminToken := s.addUser(t, models.RoleAdmin, "admin@example.com", "pw")

	w := s.doJSON("POST", "/v1/dashboard/users", adminToken, map[string]string{"email": "new@example.com", "password": "secret"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	user := decode(t, w)["user"].(map[string]interface{})
	if user["role"] != "USER" {
		t.Errorf("Expected default role USER, got %v", user["role"])
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Error("Response must not expose the password hash")
	}

	w = s.do("DELETE", "/v1/dashboard/users/"+admin.ID, adminToken, nil, "")
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403 for self-delete, got %d", w.Code)
	}

	w = s.do("GET", "/v1/dashboard/users/"+uuid.NewString(), adminToken, nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestLogs(t *testing.T) {
	s := setupTestServer(t)
	admin, adminToken := s.addUser(t, models.RoleAdmin, "admin@example.com", "pw")
	identity := &models.Identity{UserID: admin.ID, Email: admin.Email, Role: models.RoleAdmin}
	s.audit.Append(context.Background(), models.LogInfo, "Category created: Tech", nil, identity)
	s.audit.Append(context.Background(), models.LogWarn, "Unauthorized attempt to create news", nil, nil)

	w := s.do("GET", "/v1/dashboard/logs?level=WARN", adminToken, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	logs := decode(t, w)["logs"].([]interface{})
	if len(logs) != 1 {
		t.Errorf("Expected 1 WARN entry, got %d", len(logs))
	}

	w = s.do("DELETE", "/v1/dashboard/logs", adminToken, nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if len(s.audit.Entries) != 0 {
		t.Errorf("Expected log to be cleared, %d entries left", len(s.audit.Entries))
	}
}
