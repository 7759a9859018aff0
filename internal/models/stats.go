package models

import (
	"time"
)

// DashboardStats is the admin dashboard payload
type DashboardStats struct {
	Stats                StatsSummary    `json:"stats"`
	MonthlyViews         []MonthlyPoint  `json:"monthlyViews"`
	CategoryDistribution []CategoryShare `json:"categoryDistribution"`
	TopArticles          []TopArticle    `json:"topArticles"`
	RecentNews           []RecentArticle `json:"recentNews"`
}

// StatsSummary holds the headline counters
type StatsSummary struct {
	TotalArticles     int     `json:"totalArticles"`
	TotalUsers        int     `json:"totalUsers"`
	TotalCategories   int     `json:"totalCategories"`
	TotalViews        int     `json:"totalViews"`
	ThisMonthArticles int     `json:"thisMonthArticles"`
	ArticlesChange    float64 `json:"articlesChange"`
	ViewsChange       float64 `json:"viewsChange"`
}

// MonthlyPoint is one calendar-month bucket
type MonthlyPoint struct {
	Month    string `json:"month"`
	Views    int    `json:"views"`
	Articles int    `json:"articles"`
}

// CategoryShare is a category's share of all articles
type CategoryShare struct {
	Name       string `json:"name"`
	Value      int    `json:"value"`
	Percentage string `json:"percentage"`
}

// TopArticle is an entry of the most-viewed list
type TopArticle struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Views     int         `json:"views"`
	Category  CategoryRef `json:"category"`
	CreatedAt time.Time   `json:"createdAt"`
}

// RecentArticle is an entry of the newest-articles list
type RecentArticle struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    UserRef   `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// CategoryCount is a category name with its article count
type CategoryCount struct {
	Name  string
	Count int
}

// MonthBucket is the aggregate of articles created within one month
type MonthBucket struct {
	Articles int
	Views    int
}
