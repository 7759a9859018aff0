package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/newsroom-api/internal/cache"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/repository"
	"github.com/newsroom-api/internal/validation"
	"github.com/rs/zerolog"
)

// commentService is the concrete implementation of CommentService
type commentService struct {
	comments repository.CommentRepository
	articles repository.ArticleRepository
	audit    AuditLog
	cache    cache.PageCache
	maxDepth int
	now      func() time.Time
	log      zerolog.Logger
}

func newCommentService(
	comments repository.CommentRepository,
	articles repository.ArticleRepository,
	audit AuditLog,
	pages cache.PageCache,
	maxDepth int,
	now func() time.Time,
	log zerolog.Logger,
) *commentService {
	if maxDepth < 0 {
		maxDepth = models.DefaultReplyDepth
	}
	return &commentService{
		comments: comments,
		articles: articles,
		audit:    audit,
		cache:    pages,
		maxDepth: maxDepth,
		now:      now,
		log:      log.With().Str("service", "comment").Logger(),
	}
}

// ListByArticle returns the article's comment threads. Failures yield an empty list.
func (s *commentService) ListByArticle(ctx context.Context, articleID string) ([]*models.Comment, error) {
	if !validation.IsValidUUID(articleID) {
		return []*models.Comment{}, nil
	}

	key := cache.CommentsKey(articleID)
	if cached, ok := s.cache.Get(ctx, key); ok {
		var tree []*models.Comment
		if err := json.Unmarshal(cached, &tree); err == nil {
			return tree, nil
		}
	}

	flat, err := s.comments.ListByArticle(ctx, articleID)
	if err != nil {
		s.log.Error().Err(err).Str("article_id", articleID).Msg("Failed to load comments")
		return []*models.Comment{}, nil
	}

	tree := BuildTree(flat, s.maxDepth)
	if data, err := json.Marshal(tree); err == nil {
		s.cache.Set(ctx, key, data)
	}
	return tree, nil
}

// Create posts a comment or a reply as actor
func (s *commentService) Create(ctx context.Context, actor *models.Identity, in *models.CommentInput) (*models.Comment, error) {
	if err := requireUser(actor, "You must be logged in to comment"); err != nil {
		return nil, err
	}
	if errs := validation.ValidateComment(in); len(errs) > 0 {
		return nil, invalid(errs[0].Message, errs...)
	}

	exists, err := s.articles.Exists(ctx, in.ArticleID)
	if err != nil {
		s.log.Error().Err(err).Str("article_id", in.ArticleID).Msg("Failed to check article")
		return nil, storeFailure("Failed to post comment", err)
	}
	if !exists {
		return nil, notFound("News not found")
	}

	var parentID *string
	if in.ParentID != "" {
		parent, err := s.comments.GetByID(ctx, in.ParentID)
		if err != nil {
			return nil, storeFailure("Failed to post comment", err)
		}
		if parent == nil {
			return nil, invalid("Parent comment not found")
		}
		if parent.ArticleID != in.ArticleID {
			return nil, invalid("Reply must be on the same article as its parent")
		}
		parentID = &parent.ID
	}

	comment := &models.Comment{
		ID:        uuid.New().String(),
		Content:   strings.TrimSpace(in.Content),
		AuthorID:  actor.UserID,
		ArticleID: in.ArticleID,
		ParentID:  parentID,
		CreatedAt: s.now().UTC(),
		Author:    models.UserRef{ID: actor.UserID, Email: actor.Email},
	}
	if actor.Name != "" {
		name := actor.Name
		comment.Author.Name = &name
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		s.log.Error().Err(err).Str("article_id", in.ArticleID).Msg("Failed to create comment")
		return nil, storeFailure("Failed to post comment", err)
	}

	s.cache.InvalidateArticle(ctx, in.ArticleID)
	return comment, nil
}

// Delete removes a comment and its replies. Only the author or an admin may delete.
func (s *commentService) Delete(ctx context.Context, actor *models.Identity, id string) error {
	if err := requireUser(actor, "Unauthorized"); err != nil {
		return err
	}
	if !validation.IsValidUUID(id) {
		return notFound("Comment not found")
	}

	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return storeFailure("Failed to delete comment", err)
	}
	if comment == nil {
		return notFound("Comment not found")
	}

	if comment.AuthorID != actor.UserID && !actor.IsAdmin() {
		return forbidden("You can only delete your own comments")
	}

	deleted, err := s.comments.Delete(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Str("comment_id", id).Msg("Failed to delete comment")
		return storeFailure("Failed to delete comment", err)
	}
	if !deleted {
		return notFound("Comment not found")
	}

	s.cache.InvalidateArticle(ctx, comment.ArticleID)

	if comment.AuthorID != actor.UserID {
		s.audit.Append(ctx, models.LogInfo, "Comment deleted by admin", map[string]string{
			"commentId": id,
			"newsId":    comment.ArticleID,
			"authorId":  comment.AuthorID,
		}, actor)
	}
	return nil
}
