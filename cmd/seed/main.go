package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/newsroom-api/internal/config"
	"github.com/newsroom-api/internal/database"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/repository"
	"github.com/newsroom-api/internal/validation"
	"github.com/newsroom-api/pkg/logger"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "password123"
)

var categoryNames = []string{"Technology", "Business", "Sports", "Entertainment", "Science", "Health"}

type sampleArticle struct {
	title    string
	category string
	views    int
	body     string
}

var sampleArticles = []sampleArticle{
	{
		title:    "Chipmakers race to ship the next generation of AI accelerators",
		category: "technology",
		views:    1250,
		body: `[{"type":"heading","props":{"level":2},"content":[{"type":"text","text":"A crowded field"}]},` +
			`{"type":"paragraph","content":[{"type":"text","text":"Three vendors announced new parts this week."}]},` +
			`{"type":"bulletListItem","content":[{"type":"text","text":"Lower power draw"}]},` +
			`{"type":"bulletListItem","content":[{"type":"text","text":"Larger on-chip memory"}]}]`,
	},
	{
		title:    "Quarterly earnings beat expectations across retail",
		category: "business",
		views:    830,
		body: `[{"type":"paragraph","content":[{"type":"text","text":"Retailers reported stronger than expected results."}]},` +
			`{"type":"numberedListItem","content":[{"type":"text","text":"Revenue up four percent"}]},` +
			`{"type":"numberedListItem","content":[{"type":"text","text":"Margins stable"}]}]`,
	},
	{
		title:    "Late goal settles the derby",
		category: "sports",
		views:    2100,
		body:     `[{"type":"paragraph","content":[{"type":"text","text":"A stoppage-time header decided a tense match."}]}]`,
	},
	{
		title:    "Festival line-up announced",
		category: "entertainment",
		views:    460,
		body:     `[{"type":"paragraph","content":[{"type":"text","text":"Organisers revealed forty acts for the summer festival."}]}]`,
	},
	{
		title:    "Telescope captures the faintest galaxy yet",
		category: "science",
		views:    975,
		body: `[{"type":"heading","props":{"level":3},"content":[{"type":"text","text":"Looking back in time"}]},` +
			`{"type":"paragraph","content":[{"type":"text","text":"The light left the galaxy thirteen billion years ago."}]}]`,
	},
	{
		title:    "Short walks linked to better sleep",
		category: "health",
		views:    610,
		body:     `[{"type":"paragraph","content":[{"type":"text","text":"A new study followed two thousand adults for a year."}]}]`,
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(config.LogConfig{})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.New(cfg.Log)

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := seed(ctx, repository.New(db), log); err != nil {
		log.Fatal().Err(err).Msg("Seeding failed")
	}
	log.Info().Msg("Seeding completed")
}

func seed(ctx context.Context, repos *repository.Repositories, log zerolog.Logger) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	name := "Admin"
	now := time.Now().UTC()
	admin := &models.User{
		ID:           uuid.New().String(),
		Email:        adminEmail,
		Name:         &name,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repos.User.Upsert(ctx, admin); err != nil {
		return err
	}
	log.Info().Str("email", adminEmail).Msg("Admin user ready")

	categories := make(map[string]*models.Category, len(categoryNames))
	for _, n := range categoryNames {
		slug := validation.Slugify(n)
		existing, err := repos.Category.GetBySlug(ctx, slug)
		if err != nil {
			return err
		}
		if existing == nil {
			existing = &models.Category{ID: uuid.New().String(), Name: n, Slug: slug, CreatedAt: now, UpdatedAt: now}
			if err := repos.Category.Create(ctx, existing); err != nil {
				return err
			}
		}
		categories[slug] = existing
	}
	log.Info().Int("count", len(categories)).Msg("Categories ready")

	count, err := repos.Stats.CountArticles(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		log.Info().Int("articles", count).Msg("Articles already present, skipping samples")
		return nil
	}

	for i, s := range sampleArticles {
		created := now.AddDate(0, 0, -i*9)
		article := &models.Article{
			ID:         uuid.New().String(),
			Title:      s.title,
			Content:    s.body,
			Published:  true,
			Views:      s.views,
			CategoryID: categories[s.category].ID,
			AuthorID:   admin.ID,
			CreatedAt:  created,
			UpdatedAt:  created,
		}
		if err := repos.Article.Create(ctx, article); err != nil {
			return err
		}
	}
	log.Info().Int("count", len(sampleArticles)).Msg("Sample articles created")

	return nil
}
