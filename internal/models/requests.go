package models

// ArticleInput is the create/update payload for an article
type ArticleInput struct {
	Title      string `json:"title" form:"title"`
	Content    string `json:"content" form:"content"`
	CategoryID string `json:"categoryId" form:"categoryId"`
	Image      string `json:"image" form:"image"` // Optional external image URL
}

// CategoryInput is the create/update payload for a category
type CategoryInput struct {
	Name string `json:"name" form:"name"`
}

// UserInput is the create/update payload for a user
type UserInput struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`
}

// CommentInput is the payload for posting a comment or reply
type CommentInput struct {
	Content   string `json:"content" form:"content"`
	ArticleID string `json:"newsId" form:"newsId"`
	ParentID  string `json:"parentId" form:"parentId"`
}

// LoginRequest is the credential login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
