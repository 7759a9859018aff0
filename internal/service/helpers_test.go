package service_test

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/newsroom-api/internal/config"
	"github.com/newsroom-api/internal/mocks"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/service"
	"github.com/rs/zerolog"
)

// fakeClock starts at a fixed instant and advances a second per reading
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(time.Second)
	return now
}

type testEnv struct {
	svc    *service.Services
	store  *mocks.Store
	repos  *mocksRepos
	audit  *mocks.MockAuditLog
	cache  *mocks.MemoryCache
	images *mocks.MemoryImageStore
	clock  *fakeClock
}

type mocksRepos struct {
	article *mocks.MockArticleRepository
	comment *mocks.MockCommentRepository
	stats   *mocks.MockStatsRepository
	user    *mocks.MockUserRepository
	cat     *mocks.MockCategoryRepository
}

func newEnv(t *testing.T, mutate ...func(cfg *config.Config)) *testEnv {
	t.Helper()

	repos, store := mocks.NewRepositories()
	cfg := config.Defaults()
	for _, m := range mutate {
		m(cfg)
	}

	env := &testEnv{
		store:  store,
		audit:  mocks.NewMockAuditLog(),
		cache:  mocks.NewMemoryCache(),
		images: mocks.NewMemoryImageStore(),
		clock:  &fakeClock{t: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)},
		repos: &mocksRepos{
			article: repos.Article.(*mocks.MockArticleRepository),
			comment: repos.Comment.(*mocks.MockCommentRepository),
			stats:   repos.Stats.(*mocks.MockStatsRepository),
			user:    repos.User.(*mocks.MockUserRepository),
			cat:     repos.Category.(*mocks.MockCategoryRepository),
		},
	}
	env.svc = service.NewServices(repos, service.Infra{
		Audit:  env.audit,
		Cache:  env.cache,
		Images: env.images,
		Now:    env.clock.Now,
	}, cfg, zerolog.Nop())

	return env
}

func (e *testEnv) seedUser(role models.Role, email string) *models.Identity {
	id := uuid.NewString()
	name := "User " + email
	e.store.Users[id] = &models.User{
		ID: id, Email: email, Name: &name, Role: role,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	return &models.Identity{UserID: id, Name: name, Email: email, Role: role}
}

func (e *testEnv) seedCategory(name, slug string) *models.Category {
	c := &models.Category{ID: uuid.NewString(), Name: name, Slug: slug, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	e.store.Categories[c.ID] = c
	return c
}

func (e *testEnv) seedArticle(title, categoryID, authorID string, createdAt time.Time, views int, published bool) *models.Article {
	a := &models.Article{
		ID: uuid.NewString(), Title: title, Content: `[{"type":"paragraph","content":[{"type":"text","text":"` + title + ` body"}]}]`,
		Published: published, Views: views, CategoryID: categoryID, AuthorID: authorID,
		CreatedAt: createdAt, UpdatedAt: createdAt,
	}
	e.store.Articles[a.ID] = a
	return a
}

func (e *testEnv) seedComment(articleID, authorID string, parentID *string, createdAt time.Time) *models.Comment {
	c := &models.Comment{
		ID: uuid.NewString(), Content: "comment", ArticleID: articleID, AuthorID: authorID,
		ParentID: parentID, CreatedAt: createdAt,
	}
	e.store.Comments[c.ID] = c
	return c
}
