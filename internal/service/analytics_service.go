package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/repository"
	"github.com/rs/zerolog"
)

const (
	// TrailingMonths is the length of the monthly views series
	TrailingMonths = 12
	// TopN bounds the category, top article and recent article lists
	TopN = 5
)

// analyticsService is the concrete implementation of AnalyticsService
type analyticsService struct {
	stats repository.StatsRepository
	now   func() time.Time
	log   zerolog.Logger
}

func newAnalyticsService(stats repository.StatsRepository, now func() time.Time, log zerolog.Logger) *analyticsService {
	return &analyticsService{
		stats: stats,
		now:   now,
		log:   log.With().Str("service", "analytics").Logger(),
	}
}

// DashboardStats computes the dashboard figures. Any store failure yields the
// zeroed result.
func (s *analyticsService) DashboardStats(ctx context.Context) *models.DashboardStats {
	result, err := s.compute(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to compute dashboard stats")
		return EmptyStats()
	}
	return result
}

func (s *analyticsService) compute(ctx context.Context) (*models.DashboardStats, error) {
	result := EmptyStats()
	var err error

	if result.Stats.TotalArticles, err = s.stats.CountArticles(ctx); err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}
	if result.Stats.TotalUsers, err = s.stats.CountUsers(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if result.Stats.TotalCategories, err = s.stats.CountCategories(ctx); err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	if result.Stats.TotalViews, err = s.stats.SumViews(ctx); err != nil {
		return nil, fmt.Errorf("sum views: %w", err)
	}

	now := s.now().UTC()
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	buckets := make([]models.MonthBucket, TrailingMonths)
	for i := 0; i < TrailingMonths; i++ {
		start := thisMonth.AddDate(0, i-(TrailingMonths-1), 0)
		bucket, err := s.stats.MonthBucket(ctx, start, start.AddDate(0, 1, 0))
		if err != nil {
			return nil, fmt.Errorf("month bucket %s: %w", start.Format("2006-01"), err)
		}
		buckets[i] = bucket
		result.MonthlyViews = append(result.MonthlyViews, models.MonthlyPoint{
			Month:    start.Format("Jan 2006"),
			Views:    bucket.Views,
			Articles: bucket.Articles,
		})
	}

	current, previous := buckets[TrailingMonths-1], buckets[TrailingMonths-2]
	result.Stats.ThisMonthArticles = current.Articles
	result.Stats.ArticlesChange = PercentChange(current.Articles, previous.Articles)
	result.Stats.ViewsChange = PercentChange(current.Views, previous.Views)

	categories, err := s.stats.TopCategories(ctx, TopN)
	if err != nil {
		return nil, fmt.Errorf("top categories: %w", err)
	}
	for _, c := range categories {
		result.CategoryDistribution = append(result.CategoryDistribution, models.CategoryShare{
			Name:       c.Name,
			Value:      c.Count,
			Percentage: SharePercentage(c.Count, result.Stats.TotalArticles),
		})
	}

	if result.TopArticles, err = s.stats.TopArticles(ctx, TopN); err != nil {
		return nil, fmt.Errorf("top articles: %w", err)
	}
	if result.RecentNews, err = s.stats.RecentArticles(ctx, TopN); err != nil {
		return nil, fmt.Errorf("recent articles: %w", err)
	}

	return result, nil
}

// EmptyStats is the zeroed dashboard result
func EmptyStats() *models.DashboardStats {
	return &models.DashboardStats{
		MonthlyViews:         []models.MonthlyPoint{},
		CategoryDistribution: []models.CategoryShare{},
		TopArticles:          []models.TopArticle{},
		RecentNews:           []models.RecentArticle{},
	}
}

// PercentChange is the month-over-month change in percent, rounded to one
// decimal. It is 0 when the previous value is 0.
func PercentChange(current, previous int) float64 {
	if previous == 0 {
		return 0
	}
	change := float64(current-previous) / float64(previous) * 100
	return math.Round(change*10) / 10
}

// SharePercentage formats part/total as a percentage with one decimal
func SharePercentage(part, total int) string {
	if total == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(part)/float64(total)*100)
}
