package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/newsroom-api/internal/blocks"
	"github.com/newsroom-api/internal/cache"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/repository"
	"github.com/newsroom-api/internal/storage"
	"github.com/newsroom-api/internal/validation"
	"github.com/rs/zerolog"
)

// MaxPageSize caps the public listing page size
const MaxPageSize = 100

// articleService is the concrete implementation of ArticleService
type articleService struct {
	articles   repository.ArticleRepository
	categories repository.CategoryRepository
	audit      AuditLog
	cache      cache.PageCache
	images     storage.ImageStore
	maxUpload  int64
	now        func() time.Time
	log        zerolog.Logger
}

// renderedBody is what the page cache holds for an article
type renderedBody struct {
	Text   string        `json:"text"`
	HTML   string        `json:"html"`
	Blocks []blocks.Node `json:"blocks"`
}

func newArticleService(
	articles repository.ArticleRepository,
	categories repository.CategoryRepository,
	infra Infra,
	maxUpload int64,
	log zerolog.Logger,
) *articleService {
	return &articleService{
		articles:   articles,
		categories: categories,
		audit:      infra.Audit,
		cache:      infra.Cache,
		images:     infra.Images,
		maxUpload:  maxUpload,
		now:        infra.Now,
		log:        log.With().Str("service", "article").Logger(),
	}
}

// List returns every article, newest first
func (s *articleService) List(ctx context.Context) ([]*models.Article, error) {
	articles, err := s.articles.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list articles")
		return nil, storeFailure("Failed to load news", err)
	}
	return articles, nil
}

// Search returns one page of published articles
func (s *articleService) Search(ctx context.Context, q SearchQuery) (*models.ArticlePage, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = models.DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	slug := strings.TrimSpace(q.CategorySlug)
	if slug == "all" {
		slug = ""
	}

	articles, total, err := s.articles.Search(ctx, models.ArticleSearch{
		Query:        strings.TrimSpace(q.Query),
		CategorySlug: slug,
		Limit:        limit,
		Offset:       (page - 1) * limit,
	})
	if err != nil {
		s.log.Error().Err(err).Str("query", q.Query).Msg("Failed to search articles")
		return nil, storeFailure("Failed to search news", err)
	}

	for _, a := range articles {
		a.Excerpt = blocks.ToText(a.Content)
	}

	return &models.ArticlePage{
		Articles: articles,
		Total:    total,
		Page:     page,
		Limit:    limit,
		Pages:    int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// Get returns an article with relations, nil when missing or on failure
func (s *articleService) Get(ctx context.Context, id string) (*models.Article, error) {
	if !validation.IsValidUUID(id) {
		return nil, nil
	}
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Str("article_id", id).Msg("Failed to load article")
		return nil, nil
	}
	return article, nil
}

// View counts a read and returns the article with its rendered body
func (s *articleService) View(ctx context.Context, id string) (*ArticleView, error) {
	if !validation.IsValidUUID(id) {
		return nil, notFound("News not found")
	}

	if err := s.articles.IncrementViews(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("article_id", id).Msg("Failed to increment views")
	}

	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, storeFailure("Failed to load news", err)
	}
	if article == nil {
		return nil, notFound("News not found")
	}

	body := s.render(ctx, article)
	return &ArticleView{Article: article, Text: body.Text, HTML: body.HTML, Blocks: body.Blocks}, nil
}

func (s *articleService) render(ctx context.Context, article *models.Article) renderedBody {
	key := cache.RenderKey(article.ID)
	if cached, ok := s.cache.Get(ctx, key); ok {
		var body renderedBody
		if err := json.Unmarshal(cached, &body); err == nil {
			return body
		}
	}

	body := renderedBody{
		Text:   blocks.ToText(article.Content),
		HTML:   blocks.ToHTML(article.Content),
		Blocks: blocks.Render(article.Content),
	}
	if data, err := json.Marshal(body); err == nil {
		s.cache.Set(ctx, key, data)
	}
	return body
}

// Create publishes a new article authored by actor
func (s *articleService) Create(ctx context.Context, actor *models.Identity, in *models.ArticleInput, upload *Upload) (*models.Article, error) {
	if err := requireUser(actor, "Unauthorized"); err != nil {
		s.audit.Append(ctx, models.LogWarn, "Unauthorized attempt to create news", nil, nil)
		return nil, err
	}

	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	image, err := s.storeImage(ctx, actor, upload, "Failed to upload image during news creation")
	if err != nil {
		return nil, err
	}
	if image == nil {
		image = optionalString(in.Image)
	}

	now := s.now().UTC()
	article := &models.Article{
		ID:         uuid.New().String(),
		Title:      strings.TrimSpace(in.Title),
		Content:    in.Content,
		Image:      image,
		Published:  true,
		CategoryID: in.CategoryID,
		AuthorID:   actor.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.articles.Create(ctx, article); err != nil {
		s.log.Error().Err(err).Msg("Failed to create article")
		s.audit.Append(ctx, models.LogError, "Failed to create news", map[string]string{"error": err.Error()}, actor)
		return nil, storeFailure("Failed to create news", err)
	}

	s.audit.Append(ctx, models.LogInfo, "News created: "+article.Title,
		map[string]string{"newsId": article.ID, "authorId": actor.UserID}, actor)
	s.log.Info().Str("article_id", article.ID).Str("author_id", actor.UserID).Msg("Article created")

	return article, nil
}

// Update edits an article. The image is kept unless a new upload or URL is given.
func (s *articleService) Update(ctx context.Context, actor *models.Identity, id string, in *models.ArticleInput, upload *Upload) (*models.Article, error) {
	if err := requireUser(actor, "Unauthorized"); err != nil {
		return nil, err
	}
	if !validation.IsValidUUID(id) {
		return nil, notFound("News not found")
	}
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, storeFailure("Failed to update news", err)
	}
	if article == nil {
		return nil, notFound("News not found")
	}

	image, err := s.storeImage(ctx, actor, upload, "Failed to upload image during news update")
	if err != nil {
		return nil, err
	}
	if image == nil {
		image = optionalString(in.Image)
	}
	if image != nil {
		article.Image = image
	}

	article.Title = strings.TrimSpace(in.Title)
	article.Content = in.Content
	article.CategoryID = in.CategoryID

	if err := s.articles.Update(ctx, article); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("News not found")
		}
		s.log.Error().Err(err).Str("article_id", id).Msg("Failed to update article")
		return nil, storeFailure("Failed to update news", err)
	}

	s.cache.InvalidateArticle(ctx, id)
	s.audit.Append(ctx, models.LogInfo, "News updated: "+article.Title, map[string]string{"newsId": id}, actor)

	return article, nil
}

// Delete removes an article and its comments
func (s *articleService) Delete(ctx context.Context, actor *models.Identity, id string) error {
	if err := requireUser(actor, "Unauthorized"); err != nil {
		return err
	}
	if !validation.IsValidUUID(id) {
		return notFound("News not found")
	}

	deleted, err := s.articles.Delete(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Str("article_id", id).Msg("Failed to delete article")
		return storeFailure("Failed to delete news", err)
	}
	if !deleted {
		return notFound("News not found")
	}

	s.cache.InvalidateArticle(ctx, id)
	s.audit.Append(ctx, models.LogInfo, "News deleted", map[string]string{"newsId": id}, actor)

	return nil
}

func (s *articleService) validate(ctx context.Context, in *models.ArticleInput) error {
	if errs := validation.ValidateArticle(in); len(errs) > 0 {
		for _, e := range errs {
			if strings.HasSuffix(e.Message, "is required") {
				return invalid("Missing required fields", errs...)
			}
		}
		return invalid(errs[0].Message, errs...)
	}

	category, err := s.categories.GetByID(ctx, in.CategoryID)
	if err != nil {
		return storeFailure("Failed to load category", err)
	}
	if category == nil {
		return invalid("Category not found", validation.ValidationError{
			Field: "categoryId", Message: "Category not found", Value: in.CategoryID,
		})
	}
	return nil
}

// storeImage saves an upload and returns its URL, or nil when there is nothing to store
func (s *articleService) storeImage(ctx context.Context, actor *models.Identity, upload *Upload, auditMessage string) (*string, error) {
	if upload == nil || upload.Body == nil || upload.Size <= 0 {
		return nil, nil
	}
	if s.maxUpload > 0 && upload.Size > s.maxUpload {
		return nil, invalid("Image is too large", validation.ValidationError{
			Field: "file", Message: "Image is too large", Value: upload.Size,
		})
	}

	name := storage.FileName(s.now(), upload.Name)
	url, err := s.images.Save(ctx, name, upload.Body, upload.ContentType)
	if err != nil {
		s.log.Error().Err(err).Str("file", name).Msg("Failed to save image")
		s.audit.Append(ctx, models.LogError, auditMessage, map[string]string{"error": err.Error()}, actor)
		return nil, storageFailure("Failed to upload image", err)
	}
	return &url, nil
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
