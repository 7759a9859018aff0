package models

import (
	"time"
)

// Comment represents a comment on an article. ParentID is nil for top-level comments.
type Comment struct {
	ID        string     `json:"id" db:"id"`
	Content   string     `json:"content" db:"content"`
	AuthorID  string     `json:"authorId" db:"author_id"`
	ArticleID string     `json:"newsId" db:"article_id"`
	ParentID  *string    `json:"parentId" db:"parent_id"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	Author    UserRef    `json:"author" db:"-"`
	Replies   []*Comment `json:"replies,omitempty" db:"-"`
}

// DefaultReplyDepth is how many levels of replies are returned below a top-level comment
const DefaultReplyDepth = 2
