package mocks

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/repository"
)

// Store is the shared in-memory state behind the mock repositories, so that
// joins, cascades and aggregates behave like the real schema.
type Store struct {
	mu         sync.Mutex
	Articles   map[string]*models.Article
	Categories map[string]*models.Category
	Users      map[string]*models.User
	Comments   map[string]*models.Comment
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		Articles:   make(map[string]*models.Article),
		Categories: make(map[string]*models.Category),
		Users:      make(map[string]*models.User),
		Comments:   make(map[string]*models.Comment),
	}
}

// NewRepositories creates mock repositories over one shared store
func NewRepositories() (*repository.Repositories, *Store) {
	store := NewStore()
	return &repository.Repositories{
		Article:  &MockArticleRepository{Store: store},
		Category: &MockCategoryRepository{Store: store},
		User:     &MockUserRepository{Store: store},
		Comment:  &MockCommentRepository{Store: store},
		Stats:    &MockStatsRepository{Store: store},
	}, store
}

func (s *Store) articleWithRelations(a *models.Article) *models.Article {
	out := *a
	if c, ok := s.Categories[a.CategoryID]; ok {
		out.Category = &models.CategoryRef{ID: c.ID, Name: c.Name, Slug: c.Slug}
	}
	if u, ok := s.Users[a.AuthorID]; ok {
		out.Author = &models.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return &out
}

func (s *Store) articleCount(match func(*models.Article) bool) int {
	n := 0
	for _, a := range s.Articles {
		if match(a) {
			n++
		}
	}
	return n
}

func (s *Store) deleteCommentTree(id string) {
	delete(s.Comments, id)
	for cid, c := range s.Comments {
		if c.ParentID != nil && *c.ParentID == id {
			s.deleteCommentTree(cid)
		}
	}
}

// MockArticleRepository is a mock implementation of ArticleRepository
type MockArticleRepository struct {
	*Store
	Err           error
	ViewIncrError error
}

var _ repository.ArticleRepository = (*MockArticleRepository)(nil)

func (m *MockArticleRepository) sorted(match func(*models.Article) bool) []*models.Article {
	out := []*models.Article{}
	for _, a := range m.Articles {
		if match(a) {
			out = append(out, m.articleWithRelations(a))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (m *MockArticleRepository) List(ctx context.Context) ([]*models.Article, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(*models.Article) bool { return true }), nil
}

func (m *MockArticleRepository) Search(ctx context.Context, search models.ArticleSearch) ([]*models.Article, int, error) {
	if m.Err != nil {
		return nil, 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	q := strings.ToLower(search.Query)
	matches := m.sorted(func(a *models.Article) bool {
		if !a.Published {
			return false
		}
		c := m.Categories[a.CategoryID]
		if search.CategorySlug != "" && (c == nil || c.Slug != search.CategorySlug) {
			return false
		}
		if q == "" {
			return true
		}
		return strings.Contains(strings.ToLower(a.Title), q) ||
			strings.Contains(strings.ToLower(a.Content), q) ||
			(c != nil && strings.Contains(strings.ToLower(c.Name), q))
	})

	total := len(matches)
	start := search.Offset
	if start > total {
		start = total
	}
	end := total
	if search.Limit > 0 && start+search.Limit < total {
		end = start + search.Limit
	}
	return matches[start:end], total, nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Articles[id]
	if !ok {
		return nil, nil
	}
	return m.articleWithRelations(a), nil
}

func (m *MockArticleRepository) Exists(ctx context.Context, id string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Articles[id]
	return ok, nil
}

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Categories[article.CategoryID]; !ok {
		return repository.ErrInUse
	}
	stored := *article
	stored.Category, stored.Author = nil, nil
	m.Articles[article.ID] = &stored
	return nil
}

func (m *MockArticleRepository) Update(ctx context.Context, article *models.Article) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.Articles[article.ID]
	if !ok {
		return sql.ErrNoRows
	}
	stored.Title = article.Title
	stored.Content = article.Content
	stored.Image = article.Image
	stored.CategoryID = article.CategoryID
	stored.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockArticleRepository) Delete(ctx context.Context, id string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Articles[id]; !ok {
		return false, nil
	}
	delete(m.Articles, id)
	for cid, c := range m.Comments {
		if c.ArticleID == id {
			delete(m.Comments, cid)
		}
	}
	return true, nil
}

func (m *MockArticleRepository) IncrementViews(ctx context.Context, id string) error {
	if m.ViewIncrError != nil {
		return m.ViewIncrError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.Articles[id]; ok {
		a.Views++
	}
	return nil
}

// MockCategoryRepository is a mock implementation of CategoryRepository
type MockCategoryRepository struct {
	*Store
	Err error
}

var _ repository.CategoryRepository = (*MockCategoryRepository)(nil)

func (m *MockCategoryRepository) withCount(c *models.Category) *models.Category {
	out := *c
	out.ArticleCount = m.articleCount(func(a *models.Article) bool { return a.CategoryID == c.ID })
	return &out
}

func (m *MockCategoryRepository) slugTaken(slug, exceptID string) bool {
	for _, c := range m.Categories {
		if c.Slug == slug && c.ID != exceptID {
			return true
		}
	}
	return false
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Category{}
	for _, c := range m.Categories {
		out = append(out, m.withCount(c))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Categories[id]
	if !ok {
		return nil, nil
	}
	return m.withCount(c), nil
}

func (m *MockCategoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Categories {
		if c.Slug == slug {
			return m.withCount(c), nil
		}
	}
	return nil, nil
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slugTaken(category.Slug, "") {
		return repository.ErrDuplicate
	}
	stored := *category
	m.Categories[category.ID] = &stored
	return nil
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.Categories[category.ID]
	if !ok {
		return sql.ErrNoRows
	}
	if m.slugTaken(category.Slug, category.ID) {
		return repository.ErrDuplicate
	}
	stored.Name = category.Name
	stored.Slug = category.Slug
	stored.UpdatedAt = time.Now().UTC()
	category.CreatedAt = stored.CreatedAt
	category.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Categories[id]; !ok {
		return false, nil
	}
	if m.articleCount(func(a *models.Article) bool { return a.CategoryID == id }) > 0 {
		return false, repository.ErrInUse
	}
	delete(m.Categories, id)
	return true, nil
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	*Store
	Err error
}

var _ repository.UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) withCount(u *models.User) *models.User {
	out := *u
	out.ArticleCount = m.articleCount(func(a *models.Article) bool { return a.AuthorID == u.ID })
	return &out
}

func (m *MockUserRepository) byEmail(email string) *models.User {
	for _, u := range m.Users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (m *MockUserRepository) List(ctx context.Context) ([]*models.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.User{}
	for _, u := range m.Users {
		out = append(out, m.withCount(u))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return nil, nil
	}
	return m.withCount(u), nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.byEmail(email)
	if u == nil {
		return nil, nil
	}
	return m.withCount(u), nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byEmail(user.Email) != nil {
		return repository.ErrDuplicate
	}
	stored := *user
	m.Users[user.ID] = &stored
	return nil
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *models.User) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing := m.byEmail(user.Email); existing != nil {
		user.ID = existing.ID
	}
	stored := *user
	m.Users[user.ID] = &stored
	return nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Users[user.ID]; !ok {
		return sql.ErrNoRows
	}
	if other := m.byEmail(user.Email); other != nil && other.ID != user.ID {
		return repository.ErrDuplicate
	}
	stored := *user
	stored.UpdatedAt = time.Now().UTC()
	m.Users[user.ID] = &stored
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Users[id]; !ok {
		return false, nil
	}
	if m.articleCount(func(a *models.Article) bool { return a.AuthorID == id }) > 0 {
		return false, repository.ErrInUse
	}
	delete(m.Users, id)
	for cid, c := range m.Comments {
		if c.AuthorID == id {
			delete(m.Comments, cid)
		}
	}
	return true, nil
}

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	*Store
	Err error
}

var _ repository.CommentRepository = (*MockCommentRepository)(nil)

func (m *MockCommentRepository) withAuthor(c *models.Comment) *models.Comment {
	out := *c
	out.Replies = nil
	if u, ok := m.Users[c.AuthorID]; ok {
		out.Author = models.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return &out
}

func (m *MockCommentRepository) ListByArticle(ctx context.Context, articleID string) ([]*models.Comment, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Comment{}
	for _, c := range m.Comments {
		if c.ArticleID == articleID {
			out = append(out, m.withAuthor(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Comments[id]
	if !ok {
		return nil, nil
	}
	return m.withAuthor(c), nil
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Articles[comment.ArticleID]; !ok {
		return repository.ErrInUse
	}
	stored := *comment
	stored.Replies = nil
	m.Comments[comment.ID] = &stored
	return nil
}

func (m *MockCommentRepository) Delete(ctx context.Context, id string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Comments[id]; !ok {
		return false, nil
	}
	m.deleteCommentTree(id)
	return true, nil
}

// MockStatsRepository is a mock implementation of StatsRepository
type MockStatsRepository struct {
	*Store
	Err error
	// MonthBucketCalls counts MonthBucket queries
	MonthBucketCalls int
}

var _ repository.StatsRepository = (*MockStatsRepository)(nil)

func (m *MockStatsRepository) CountArticles(ctx context.Context) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Articles), nil
}

func (m *MockStatsRepository) CountUsers(ctx context.Context) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Users), nil
}

func (m *MockStatsRepository) CountCategories(ctx context.Context) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Categories), nil
}

func (m *MockStatsRepository) SumViews(ctx context.Context) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := 0
	for _, a := range m.Articles {
		sum += a.Views
	}
	return sum, nil
}

func (m *MockStatsRepository) MonthBucket(ctx context.Context, from, to time.Time) (models.MonthBucket, error) {
	if m.Err != nil {
		return models.MonthBucket{}, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MonthBucketCalls++
	var b models.MonthBucket
	for _, a := range m.Articles {
		if !a.CreatedAt.Before(from) && a.CreatedAt.Before(to) {
			b.Articles++
			b.Views += a.Views
		}
	}
	return b, nil
}

func (m *MockStatsRepository) TopCategories(ctx context.Context, limit int) ([]models.CategoryCount, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.CategoryCount{}
	for _, c := range m.Categories {
		out = append(out, models.CategoryCount{
			Name:  c.Name,
			Count: m.articleCount(func(a *models.Article) bool { return a.CategoryID == c.ID }),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Name < out[j].Name
		}
		return out[i].Count > out[j].Count
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockStatsRepository) TopArticles(ctx context.Context, limit int) ([]models.TopArticle, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.TopArticle{}
	for _, a := range m.Articles {
		t := models.TopArticle{ID: a.ID, Title: a.Title, Views: a.Views, CreatedAt: a.CreatedAt}
		if c, ok := m.Categories[a.CategoryID]; ok {
			t.Category = models.CategoryRef{ID: c.ID, Name: c.Name, Slug: c.Slug}
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Views == out[j].Views {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Views > out[j].Views
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockStatsRepository) RecentArticles(ctx context.Context, limit int) ([]models.RecentArticle, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.RecentArticle{}
	for _, a := range m.Articles {
		r := models.RecentArticle{ID: a.ID, Title: a.Title, CreatedAt: a.CreatedAt}
		if u, ok := m.Users[a.AuthorID]; ok {
			r.Author = models.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
