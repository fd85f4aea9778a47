package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type Index struct {
	Name string
	SQL  string
}

// Postgres gets partial and full-text indexes; SQLite gets the plain subset.
var postgresIndexes = []Index{
	{"idx_articles_published_active_date", `CREATE INDEX IF NOT EXISTS idx_articles_published_active_date ON articles (is_published, is_active, published_at DESC)`},
	{"idx_articles_category_published", `CREATE INDEX IF NOT EXISTS idx_articles_category_published ON articles (category_id, is_published, published_at DESC) WHERE is_active = true AND is_published = true`},
	{"idx_articles_author_published", `CREATE INDEX IF NOT EXISTS idx_articles_author_published ON articles (author_id, published_at DESC) WHERE is_published = true AND is_active = true`},
	{"idx_categories_order", `CREATE INDEX IF NOT EXISTS idx_categories_order ON categories (sort_order, name)`},
	{"idx_home_banners_active_date", `CREATE INDEX IF NOT EXISTS idx_home_banners_active_date ON home_banners (is_active, created_at DESC)`},
	{"idx_advertisements_active_size", `CREATE INDEX IF NOT EXISTS idx_advertisements_active_size ON advertisements (is_active, size)`},
	{"idx_live_updates_active_date", `CREATE INDEX IF NOT EXISTS idx_live_updates_active_date ON live_updates (is_active, created_at DESC)`},
	{"idx_web_stories_active_date", `CREATE INDEX IF NOT EXISTS idx_web_stories_active_date ON web_stories (is_active, created_at DESC)`},
	{"idx_authors_email_active", `CREATE INDEX IF NOT EXISTS idx_authors_email_active ON authors (email) WHERE is_active = true`},
	{"idx_articles_title_gin", `CREATE INDEX IF NOT EXISTS idx_articles_title_gin ON articles USING gin(to_tsvector('english', title))`},
	{"idx_articles_content_gin", `CREATE INDEX IF NOT EXISTS idx_articles_content_gin ON articles USING gin(to_tsvector('english', content))`},
}

var sqliteIndexes = []Index{
	{"idx_articles_published_active_date", `CREATE INDEX IF NOT EXISTS idx_articles_published_active_date ON articles (is_published, is_active, published_at DESC)`},
	{"idx_articles_category_published", `CREATE INDEX IF NOT EXISTS idx_articles_category_published ON articles (category_id, is_published, published_at DESC)`},
	{"idx_articles_author_published", `CREATE INDEX IF NOT EXISTS idx_articles_author_published ON articles (author_id, published_at DESC)`},
	{"idx_categories_order", `CREATE INDEX IF NOT EXISTS idx_categories_order ON categories (sort_order, name)`},
	{"idx_home_banners_active_date", `CREATE INDEX IF NOT EXISTS idx_home_banners_active_date ON home_banners (is_active, created_at DESC)`},
	{"idx_advertisements_active_size", `CREATE INDEX IF NOT EXISTS idx_advertisements_active_size ON advertisements (is_active, size)`},
	{"idx_live_updates_active_date", `CREATE INDEX IF NOT EXISTS idx_live_updates_active_date ON live_updates (is_active, created_at DESC)`},
	{"idx_web_stories_active_date", `CREATE INDEX IF NOT EXISTS idx_web_stories_active_date ON web_stories (is_active, created_at DESC)`},
}

var analyzedTables = []string{
	"articles",
	"categories",
	"sub_categories",
	"tags",
	"home_banners",
	"advertisements",
	"live_updates",
	"authors",
	"web_stories",
}

// Indexes returns the performance indexes for the connected dialect.
func (s *Store) Indexes() []Index {
	if s.Dialect() == DriverPostgres {
		return postgresIndexes
	}
	return sqliteIndexes
}

// CreateIndexes applies every index, continuing past failures.
func (s *Store) CreateIndexes(ctx context.Context, logger *zap.Logger) (created, failed int) {
	for _, idx := range s.Indexes() {
		if err := s.db.WithContext(ctx).Exec(idx.SQL).Error; err != nil {
			logger.Warn("index creation failed", zap.String("index", idx.Name), zap.Error(err))
			failed++
			continue
		}
		logger.Info("index created", zap.String("index", idx.Name))
		created++
	}
	return created, failed
}

// AnalyzeTables refreshes planner statistics per table, then globally.
func (s *Store) AnalyzeTables(ctx context.Context, logger *zap.Logger) (int, error) {
	analyzed := 0
	for _, table := range analyzedTables {
		if err := s.db.WithContext(ctx).Exec(fmt.Sprintf("ANALYZE %s", table)).Error; err != nil {
			logger.Warn("analyze failed", zap.String("table", table), zap.Error(err))
			continue
		}
		analyzed++
	}
	if err := s.db.WithContext(ctx).Exec("ANALYZE").Error; err != nil {
		return analyzed, fmt.Errorf("global analyze: %w", err)
	}
	return analyzed, nil
}
