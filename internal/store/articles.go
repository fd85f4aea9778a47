package store

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"newsdesk-service/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ArticleFilter struct {
	CategoryID    *uint
	SubCategoryID *uint
	TagID         *uint
	FeaturedOnly  bool
	Limit         int
	Offset        int
}

func (s *Store) published(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Article{}).
		Where("articles.is_published = ? AND articles.is_active = ?", true, true)
}

func withArticleRelations(q *gorm.DB) *gorm.DB {
	return q.Preload("Author").Preload("Category").Preload("SubCategory").Preload("Tags")
}

func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ListArticles returns published, active articles, newest first.
func (s *Store) ListArticles(ctx context.Context, f ArticleFilter) ([]models.Article, error) {
	q := withArticleRelations(s.published(ctx))
	if f.CategoryID != nil {
		q = q.Where("articles.category_id = ?", *f.CategoryID)
	}
	if f.SubCategoryID != nil {
		q = q.Where("articles.sub_category_id = ?", *f.SubCategoryID)
	}
	if f.TagID != nil {
		q = q.Joins("JOIN article_tags ON article_tags.article_id = articles.id").
			Where("article_tags.tag_id = ?", *f.TagID)
	}
	if f.FeaturedOnly {
		q = q.Where("articles.is_featured = ?", true)
	}
	limit, offset := pageBounds(f.Limit, f.Offset)

	var out []models.Article
	err := q.Order("articles.published_at DESC").Order("articles.id DESC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	return out, translate(err)
}

// SearchArticles matches the query against title and summary, case-insensitively.
func (s *Store) SearchArticles(ctx context.Context, query string, limit int) ([]models.Article, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	query = strings.NewReplacer("%", "", "_", "").Replace(query)
	if query == "" {
		return nil, nil
	}
	limit, _ = pageBounds(limit, 0)
	like := "%" + query + "%"

	var out []models.Article
	err := withArticleRelations(s.published(ctx)).
		Where("LOWER(articles.title) LIKE ? OR LOWER(articles.summary) LIKE ?", like, like).
		Order("articles.published_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, translate(err)
}

func (s *Store) GetArticleBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.Article, error) {
	q := s.db.WithContext(ctx).Model(&models.Article{})
	if publishedOnly {
		q = s.published(ctx)
	}
	var a models.Article
	if err := withArticleRelations(q).Where("articles.slug = ?", slug).First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// SaveArticle inserts or updates a and replaces its tag set.
func (s *Store) SaveArticle(ctx context.Context, a *models.Article) error {
	tags := a.Tags
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if a.ID == 0 {
			err = tx.Omit(clause.Associations).Create(a).Error
		} else {
			err = tx.Omit(clause.Associations).Save(a).Error
		}
		if err != nil {
			return err
		}
		if err := tx.Model(a).Association("Tags").Replace(tags); err != nil {
			return err
		}
		a.Tags = tags
		return nil
	}))
}

// RecordView counts one view of an article from ip.
func (s *Store) RecordView(ctx context.Context, articleID uint, ip string) error {
	now := time.Now()
	view := models.ArticleView{
		Base:        models.Base{CreatedAt: now, UpdatedAt: now},
		ArticleID:   articleID,
		IPAddr:      ip,
		Count:       1,
		Impressions: 1,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "article_id"}, {Name: "ip_addr"}},
		DoUpdates: clause.Assignments(map[string]any{
			"count":       gorm.Expr("article_views.count + 1"),
			"impressions": gorm.Expr("article_views.impressions + 1"),
			"updated_at":  now,
		}),
	}).Create(&view).Error
	return translate(err)
}

// ViewCount sums views of an article across client addresses.
func (s *Store) ViewCount(ctx context.Context, articleID uint) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&models.ArticleView{}).
		Where("article_id = ?", articleID).
		Select("COALESCE(SUM(count), 0)").
		Scan(&total).Error
	return total, translate(err)
}
