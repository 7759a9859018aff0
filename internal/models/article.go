package models

import (
	"time"
)

// Article represents a news article
type Article struct {
	ID         string    `json:"id" db:"id"`
	Title      string    `json:"title" db:"title"`
	Content    string    `json:"content" db:"content"` // Serialized block document
	Image      *string   `json:"image" db:"image"`
	Published  bool      `json:"published" db:"published"`
	Views      int       `json:"views" db:"views"`
	CategoryID string    `json:"categoryId" db:"category_id"`
	AuthorID   string    `json:"authorId" db:"author_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`

	Category *CategoryRef `json:"category,omitempty" db:"-"`
	Author   *UserRef     `json:"author,omitempty" db:"-"`
	Excerpt  string       `json:"excerpt,omitempty" db:"-"` // Plain-text rendering for cards
}

// CategoryRef is the category projection embedded in article responses
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ArticleSearch filters the public article listing
type ArticleSearch struct {
	Query        string
	CategorySlug string
	Limit        int
	Offset       int
}

// DefaultPageSize matches the public listing which loads nine cards at a time
const DefaultPageSize = 9

// ArticlePage is one page of the public listing
type ArticlePage struct {
	Articles []*Article `json:"news"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	Limit    int        `json:"limit"`
	Pages    int        `json:"pages"`
}
